package expr

import (
	"math"

	"github.com/shopspring/decimal"

	"evolve/internal/interval"
)

type leaf struct{}

func (leaf) Arity() int            { return 0 }
func (leaf) Children() []Evaluable { return nil }

// Constant is a fixed exact value.
type Constant struct {
	leaf
	Value decimal.Decimal
}

func Const(v int64) *Constant {
	return &Constant{Value: decimal.NewFromInt(v)}
}

func (c *Constant) Domain() interval.Interval { return interval.All }

func (c *Constant) Image() interval.Interval {
	return interval.Point(c.Value.InexactFloat64())
}

func (c *Constant) Eval() (decimal.Decimal, error) { return c.Value, nil }

func (c *Constant) Clone() Evaluable { return &Constant{Value: c.Value} }

func (c *Constant) String() string { return c.Value.String() }

// Input evaluates to the current value of its variable.
type Input struct {
	leaf
	X *Var
}

func (in *Input) Domain() interval.Interval { return interval.All }

func (in *Input) Image() interval.Interval { return interval.All }

func (in *Input) Eval() (decimal.Decimal, error) { return in.X.Get(), nil }

func (in *Input) Clone() Evaluable { return &Input{X: in.X} }

func (in *Input) String() string { return in.X.Name }

var unitImage = interval.Closed(-1, 1)

// Cos is cos(x) of the input variable.
type Cos struct {
	leaf
	X *Var
}

func (c *Cos) Domain() interval.Interval { return interval.All }

func (c *Cos) Image() interval.Interval { return unitImage }

func (c *Cos) Eval() (decimal.Decimal, error) { return c.X.Get().Cos(), nil }

func (c *Cos) Clone() Evaluable { return &Cos{X: c.X} }

func (c *Cos) String() string { return "cos(" + c.X.Name + ")" }

// Sin is sin(x) of the input variable.
type Sin struct {
	leaf
	X *Var
}

func (s *Sin) Domain() interval.Interval { return interval.All }

func (s *Sin) Image() interval.Interval { return unitImage }

func (s *Sin) Eval() (decimal.Decimal, error) { return s.X.Get().Sin(), nil }

func (s *Sin) Clone() Evaluable { return &Sin{X: s.X} }

func (s *Sin) String() string { return "sin(" + s.X.Name + ")" }

// Abs is |x| of the input variable.
type Abs struct {
	leaf
	X *Var
}

func (a *Abs) Domain() interval.Interval { return interval.All }

func (a *Abs) Image() interval.Interval {
	return interval.New(interval.MustRange(interval.Inclusive(0), interval.Exclusive(math.Inf(1))))
}

func (a *Abs) Eval() (decimal.Decimal, error) { return a.X.Get().Abs(), nil }

func (a *Abs) Clone() Evaluable { return &Abs{X: a.X} }

func (a *Abs) String() string { return "|" + a.X.Name + "|" }
