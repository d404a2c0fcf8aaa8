package task

import (
	"fmt"
	"math"
	"sort"
)

// Sample is one input/expected-output pair.
type Sample struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

type Target struct {
	Name string
	Func func(x float64) float64
}

var targets = map[string]Target{
	"square": {Name: "square", Func: func(x float64) float64 { return x*x + 1 }},
	"cubic":  {Name: "cubic", Func: func(x float64) float64 { return x*x*x - 2*x }},
	"cos":    {Name: "cos", Func: func(x float64) float64 { return 2 * math.Cos(x) }},
	"step": {Name: "step", Func: func(x float64) float64 {
		if x > 0 {
			return 3
		}
		return -3
	}},
}

func LookupTarget(name string) (Target, error) {
	t, ok := targets[name]
	if !ok {
		return Target{}, fmt.Errorf("unknown target: %s", name)
	}
	return t, nil
}

func TargetNames() []string {
	names := make([]string, 0, len(targets))
	for name := range targets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Grid samples f at n evenly spaced points over [from, to].
func Grid(f func(float64) float64, from, to float64, n int) []Sample {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []Sample{{X: from, Y: f(from)}}
	}
	step := (to - from) / float64(n-1)
	samples := make([]Sample, n)
	for i := range samples {
		x := from + step*float64(i)
		samples[i] = Sample{X: x, Y: f(x)}
	}
	return samples
}

// score turns a total absolute error into a fitness in (WorstFitness, 0].
func score(totalError float64) float64 {
	if math.IsNaN(totalError) || math.IsInf(totalError, 0) || totalError >= math.MaxFloat64 {
		return worst
	}
	return -totalError
}
