package evo

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	KeySize       = "ga.size"
	KeyCrossover  = "ga.crossover"
	KeyMutation   = "ga.mutation"
	KeyElitism    = "ga.elitism"
	KeyTournament = "ga.tournament"
	KeySeed       = "ga.seed"
)

// Config holds the engine parameters.
type Config struct {
	Size           int     `validate:"gt=0"`
	CrossoverRate  float64 `validate:"gte=0,lte=1"`
	MutationRate   float64 `validate:"gte=0,lte=1"`
	ElitismRate    float64 `validate:"gte=0,lte=1"`
	TournamentSize int     `validate:"gte=1,ltefield=Size"`
	// Seed for the engine's random source; 0 picks a time-based seed.
	Seed int64
}

// ConfigurationError reports a missing, malformed or out-of-range engine
// parameter. It is fatal: the engine is never built.
type ConfigurationError struct {
	Key    string
	Value  string
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("config %s: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("config %s=%q: %s", e.Key, e.Value, e.Reason)
}

var fieldKeys = map[string]string{
	"Size":           KeySize,
	"CrossoverRate":  KeyCrossover,
	"MutationRate":   KeyMutation,
	"ElitismRate":    KeyElitism,
	"TournamentSize": KeyTournament,
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// ParseConfig reads engine parameters from a flat set of named values.
func ParseConfig(params map[string]string) (Config, error) {
	var cfg Config
	var err error

	if cfg.Size, err = requireInt(params, KeySize); err != nil {
		return Config{}, err
	}
	if cfg.CrossoverRate, err = requireFloat(params, KeyCrossover); err != nil {
		return Config{}, err
	}
	if cfg.MutationRate, err = requireFloat(params, KeyMutation); err != nil {
		return Config{}, err
	}
	if cfg.ElitismRate, err = requireFloat(params, KeyElitism); err != nil {
		return Config{}, err
	}
	if cfg.TournamentSize, err = requireInt(params, KeyTournament); err != nil {
		return Config{}, err
	}
	if raw, ok := params[KeySeed]; ok && strings.TrimSpace(raw) != "" {
		seed, perr := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
		if perr != nil {
			return Config{}, &ConfigurationError{Key: KeySeed, Value: raw, Reason: "not an integer"}
		}
		cfg.Seed = seed
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks ranges: size > 0, rates in [0, 1], tournament in
// [1, size].
func (c Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &ConfigurationError{Key: "ga", Reason: err.Error()}
	}
	fe := fieldErrs[0]
	return &ConfigurationError{
		Key:    fieldKeys[fe.Field()],
		Value:  fmt.Sprint(fe.Value()),
		Reason: describeRule(fe),
	}
}

func describeRule(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gt":
		return "must be > " + fe.Param()
	case "gte":
		return "must be >= " + fe.Param()
	case "lte":
		return "must be <= " + fe.Param()
	case "ltefield":
		return "must not exceed " + fieldKeys[fe.Param()]
	default:
		return "failed " + fe.Tag()
	}
}

func requireInt(params map[string]string, key string) (int, error) {
	raw, ok := params[key]
	if !ok || strings.TrimSpace(raw) == "" {
		return 0, &ConfigurationError{Key: key, Reason: "missing"}
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, &ConfigurationError{Key: key, Value: raw, Reason: "not an integer"}
	}
	return v, nil
}

func requireFloat(params map[string]string, key string) (float64, error) {
	raw, ok := params[key]
	if !ok || strings.TrimSpace(raw) == "" {
		return 0, &ConfigurationError{Key: key, Reason: "missing"}
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, &ConfigurationError{Key: key, Value: raw, Reason: "not a number"}
	}
	return v, nil
}
