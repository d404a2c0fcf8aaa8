package task

import (
	"fmt"
	"math"
	"math/rand"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"evolve/internal/evo"
	"evolve/internal/expr"
	"evolve/internal/program"
)

const worst = evo.WorstFitness

const (
	KeyStepBudget       = "program.step_budget"
	KeyProgramLength    = "program.length"
	KeyProgramRegisters = "program.registers"
	KeyMaxJump          = "program.max_jump"
	KeyExprMaxDepth     = "expr.max_depth"
)

// ProgramRegression scores programs on how closely register 0 matches the
// samples after running with the input in register 1.
type ProgramRegression struct {
	Generator      program.Generator
	Samples        []Sample
	StepBudget     int
	InputRegister  int
	OutputRegister int
}

func NewProgramRegression(params map[string]string, samples []Sample) (ProgramRegression, error) {
	gen := program.DefaultGenerator()
	var err error
	if gen.Length, err = optionalInt(params, KeyProgramLength, gen.Length, 1); err != nil {
		return ProgramRegression{}, err
	}
	if gen.Registers, err = optionalInt(params, KeyProgramRegisters, gen.Registers, 2); err != nil {
		return ProgramRegression{}, err
	}
	if gen.MaxJump, err = optionalInt(params, KeyMaxJump, gen.MaxJump, 1); err != nil {
		return ProgramRegression{}, err
	}
	budget, err := optionalInt(params, KeyStepBudget, program.DefaultStepBudget, 1)
	if err != nil {
		return ProgramRegression{}, err
	}
	if len(samples) == 0 {
		return ProgramRegression{}, fmt.Errorf("at least one sample is required")
	}
	return ProgramRegression{
		Generator:      gen,
		Samples:        samples,
		StepBudget:     budget,
		InputRegister:  1,
		OutputRegister: 0,
	}, nil
}

func (r ProgramRegression) Random(rng *rand.Rand) *program.Chromosome {
	return r.Generator.Random(rng)
}

func (r ProgramRegression) Fitness(c *program.Chromosome) float64 {
	total := 0.0
	for _, s := range r.Samples {
		res := c.Execute(map[int]decimal.Decimal{r.InputRegister: decimal.NewFromFloat(s.X)}, r.StepBudget)
		if res.Err != nil {
			recordFault("program", res.Err)
			return worst
		}
		out, err := c.Program.Memory.Load(r.OutputRegister)
		if err != nil {
			recordFault("program", err)
			return worst
		}
		total += math.Abs(s.Y - out.InexactFloat64())
	}
	return score(total)
}

// ExprRegression scores expression trees by absolute error over the
// samples, binding the generator's input variable to each sample.
type ExprRegression struct {
	Generator expr.Generator
	Samples   []Sample
}

func NewExprRegression(params map[string]string, samples []Sample) (ExprRegression, error) {
	gen, err := expr.DefaultGenerator(expr.NewVar("x"))
	if err != nil {
		return ExprRegression{}, err
	}
	if gen.MaxDepth, err = optionalInt(params, KeyExprMaxDepth, gen.MaxDepth, 1); err != nil {
		return ExprRegression{}, err
	}
	if len(samples) == 0 {
		return ExprRegression{}, fmt.Errorf("at least one sample is required")
	}
	return ExprRegression{Generator: gen, Samples: samples}, nil
}

func (r ExprRegression) Random(rng *rand.Rand) *expr.Tree {
	return r.Generator.Random(rng)
}

func (r ExprRegression) Fitness(t *expr.Tree) float64 {
	total := 0.0
	for _, s := range r.Samples {
		r.Generator.Input.Set(decimal.NewFromFloat(s.X))
		v, err := t.Eval()
		if err != nil {
			recordFault("expr", err)
			return worst
		}
		total += math.Abs(s.Y - v.InexactFloat64())
	}
	return score(total)
}

func optionalInt(params map[string]string, key string, fallback, min int) (int, error) {
	raw, ok := params[key]
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, &evo.ConfigurationError{Key: key, Value: raw, Reason: "not an integer"}
	}
	if v < min {
		return 0, &evo.ConfigurationError{Key: key, Value: raw, Reason: fmt.Sprintf("must be >= %d", min)}
	}
	return v, nil
}
