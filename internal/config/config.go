// Package config loads engine parameters from YAML files and the
// environment into the flat dotted-key form the engine parses.
package config

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// EnvPrefix marks environment variables that override file values.
// EVOLVE_GA_SIZE sets ga.size.
const EnvPrefix = "EVOLVE_"

const (
	KeyGenerations = "run.generations"
	KeyFitnessGoal = "run.fitness_goal"
	KeyTarget      = "run.target"
	KeySamples     = "run.samples"
)

// Params is a flat set of named values keyed by dotted names.
type Params map[string]string

// Defaults returns a complete parameter set for a small regression run.
func Defaults() Params {
	return Params{
		"ga.size":       "50",
		"ga.crossover":  "0.9",
		"ga.mutation":   "0.1",
		"ga.elitism":    "0.1",
		"ga.tournament": "3",
		"ga.seed":       "0",
		KeyGenerations:  "50",
		KeyTarget:       "square",
		KeySamples:      "21",
	}
}

// Keys returns the parameter names in sorted order.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Load layers the defaults, the YAML file at path (skipped when path is
// empty) and EVOLVE_* environment variables, later layers winning.
func Load(path string) (Params, error) {
	params := Defaults()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		fromFile, err := Parse(data)
		if err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
		for k, v := range fromFile {
			params[k] = v
		}
	}
	ApplyEnv(params, os.Environ())
	return params, nil
}

// Parse decodes a YAML document in flat (ga.size: 10) or nested
// (ga: {size: 10}) form, or any mix of the two.
func Parse(data []byte) (Params, error) {
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	params := make(Params)
	if err := flatten("", doc, params); err != nil {
		return nil, err
	}
	return params, nil
}

func flatten(prefix string, node map[string]any, out Params) error {
	for k, v := range node {
		key := strings.ToLower(strings.TrimSpace(k))
		if prefix != "" {
			key = prefix + "." + key
		}
		switch val := v.(type) {
		case map[string]any:
			if err := flatten(key, val, out); err != nil {
				return err
			}
		case []any:
			return fmt.Errorf("key %s: lists are not supported", key)
		case nil:
			out[key] = ""
		default:
			out[key] = fmt.Sprint(val)
		}
	}
	return nil
}

// ApplyEnv overrides params from KEY=VALUE pairs carrying EnvPrefix. The
// first underscore after the prefix separates the section from the name.
func ApplyEnv(params Params, environ []string) {
	for _, kv := range environ {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(name, EnvPrefix) {
			continue
		}
		rest := strings.ToLower(strings.TrimPrefix(name, EnvPrefix))
		section, field, ok := strings.Cut(rest, "_")
		if !ok || section == "" || field == "" {
			continue
		}
		params[section+"."+field] = value
	}
}
