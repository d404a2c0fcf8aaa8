package expr

import (
	"fmt"

	"github.com/shopspring/decimal"

	"evolve/internal/interval"
)

// Operation owns a fixed number of children. Operations declare their own
// domain and image; they are not derived from the children.
type Operation struct {
	name     string
	children []Evaluable
}

func newOperation(name string, arity int, children []Evaluable) (Operation, error) {
	if len(children) != arity {
		return Operation{}, &IllegalArityError{Node: name, Want: arity, Got: len(children)}
	}
	for i, child := range children {
		if child == nil {
			return Operation{}, fmt.Errorf("%s: child %d is nil", name, i)
		}
	}
	owned := make([]Evaluable, arity)
	copy(owned, children)
	return Operation{name: name, children: owned}, nil
}

func (o *Operation) Arity() int { return len(o.children) }

func (o *Operation) Children() []Evaluable { return o.children }

func (o *Operation) Child(i int) Evaluable { return o.children[i] }

func (o *Operation) Domain() interval.Interval { return interval.All }

func (o *Operation) Image() interval.Interval { return interval.All }

// evalAll evaluates every child in order.
func (o *Operation) evalAll() ([]decimal.Decimal, error) {
	values := make([]decimal.Decimal, len(o.children))
	for i, child := range o.children {
		v, err := child.Eval()
		if err != nil {
			return nil, err
		}
		values[i] = v
	}
	return values, nil
}

func (o *Operation) clone() Operation {
	children := make([]Evaluable, len(o.children))
	for i, child := range o.children {
		children[i] = child.Clone()
	}
	return Operation{name: o.name, children: children}
}

// Greater is the 4-ary a > b ? t : f. Both branches are evaluated before
// one is selected.
type Greater struct {
	Operation
}

func NewGreater(children ...Evaluable) (*Greater, error) {
	op, err := newOperation("greater", 4, children)
	if err != nil {
		return nil, err
	}
	return &Greater{Operation: op}, nil
}

func (g *Greater) Eval() (decimal.Decimal, error) {
	v, err := g.evalAll()
	if err != nil {
		return decimal.Zero, err
	}
	if v[0].Cmp(v[1]) > 0 {
		return v[2], nil
	}
	return v[3], nil
}

func (g *Greater) Clone() Evaluable { return &Greater{Operation: g.clone()} }

func (g *Greater) String() string {
	return fmt.Sprintf("(%s > %s ? %s : %s)", g.children[0], g.children[1], g.children[2], g.children[3])
}

type BinaryOp int

const (
	OpAdd BinaryOp = iota
	OpSub
	OpMul
	OpDiv
)

var binarySymbols = [...]string{
	OpAdd: "+",
	OpSub: "-",
	OpMul: "*",
	OpDiv: "/",
}

var binaryNames = [...]string{
	OpAdd: "add",
	OpSub: "sub",
	OpMul: "mul",
	OpDiv: "div",
}

// Binary applies an arithmetic operator to two children.
type Binary struct {
	Operation
	Op BinaryOp
}

func NewBinary(op BinaryOp, children ...Evaluable) (*Binary, error) {
	if op < OpAdd || op > OpDiv {
		return nil, fmt.Errorf("unknown binary op %d", int(op))
	}
	base, err := newOperation(binaryNames[op], 2, children)
	if err != nil {
		return nil, err
	}
	return &Binary{Operation: base, Op: op}, nil
}

func (b *Binary) Eval() (decimal.Decimal, error) {
	v, err := b.evalAll()
	if err != nil {
		return decimal.Zero, err
	}
	switch b.Op {
	case OpAdd:
		return v[0].Add(v[1]), nil
	case OpSub:
		return v[0].Sub(v[1]), nil
	case OpMul:
		return v[0].Mul(v[1]), nil
	case OpDiv:
		if v[1].IsZero() {
			return decimal.Zero, ErrDivisionByZero
		}
		return v[0].DivRound(v[1], DivisionScale), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown binary op %d", int(b.Op))
	}
}

func (b *Binary) Clone() Evaluable { return &Binary{Operation: b.clone(), Op: b.Op} }

func (b *Binary) String() string {
	return fmt.Sprintf("(%s %s %s)", b.children[0], binarySymbols[b.Op], b.children[1])
}

// Neg negates its only child.
type Neg struct {
	Operation
}

func NewNeg(children ...Evaluable) (*Neg, error) {
	op, err := newOperation("neg", 1, children)
	if err != nil {
		return nil, err
	}
	return &Neg{Operation: op}, nil
}

func (n *Neg) Eval() (decimal.Decimal, error) {
	v, err := n.children[0].Eval()
	if err != nil {
		return decimal.Zero, err
	}
	return v.Neg(), nil
}

func (n *Neg) Clone() Evaluable { return &Neg{Operation: n.clone()} }

func (n *Neg) String() string { return fmt.Sprintf("-%s", n.children[0]) }
