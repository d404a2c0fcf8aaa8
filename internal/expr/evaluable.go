package expr

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"evolve/internal/interval"
)

// DivisionScale is the number of fractional digits kept by division.
const DivisionScale = 16

var ErrDivisionByZero = errors.New("division by zero")

// Evaluable is a node of an expression tree. Domain and Image are static
// metadata; Eval does not check them.
type Evaluable interface {
	Arity() int
	// Children returns the owned child slice. Callers may replace entries
	// but must not retain the slice.
	Children() []Evaluable
	Domain() interval.Interval
	Image() interval.Interval
	Eval() (decimal.Decimal, error)
	Clone() Evaluable
	String() string
}

// IllegalArityError reports a node built with the wrong number of children.
type IllegalArityError struct {
	Node string
	Want int
	Got  int
}

func (e *IllegalArityError) Error() string {
	return fmt.Sprintf("%s: illegal arity: want %d children, got %d", e.Node, e.Want, e.Got)
}

// Var is the input cell read by leaf functions. A fitness task sets it
// before each evaluation.
type Var struct {
	Name  string
	value decimal.Decimal
}

func NewVar(name string) *Var {
	return &Var{Name: name, value: decimal.Zero}
}

func (v *Var) Set(x decimal.Decimal) { v.value = x }

func (v *Var) Get() decimal.Decimal { return v.value }

// Depth is 1 for a leaf.
func Depth(e Evaluable) int {
	deepest := 0
	for _, child := range e.Children() {
		if d := Depth(child); d > deepest {
			deepest = d
		}
	}
	return deepest + 1
}

func NodeCount(e Evaluable) int {
	n := 1
	for _, child := range e.Children() {
		n += NodeCount(child)
	}
	return n
}
