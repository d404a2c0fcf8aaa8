package program

import (
	"fmt"

	"github.com/shopspring/decimal"

	"evolve/internal/operand"
)

const (
	// Scale is the number of fractional digits kept by mul and div.
	Scale = 16
)

// MaxMagnitude bounds register values so evolved loops cannot grow
// decimals without limit.
var MaxMagnitude = decimal.New(1, 18)

// Instruction is one line of a program. Execute returns how many lines the
// program counter advances.
type Instruction interface {
	Execute(m *operand.Memory) (int, error)
	String() string
}

// Jmp always advances by Lines.
type Jmp struct {
	Lines int
}

func (j Jmp) Execute(_ *operand.Memory) (int, error) { return j.Lines, nil }

func (j Jmp) String() string { return fmt.Sprintf("jmp %d", j.Lines) }

type Condition int

const (
	Less Condition = iota
	LessEqual
	Greater
	GreaterEqual
	Equal
	NotEqual
)

var conditionMnemonics = [...]string{
	Less:         "jl",
	LessEqual:    "jle",
	Greater:      "jg",
	GreaterEqual: "jge",
	Equal:        "je",
	NotEqual:     "jne",
}

func (c Condition) holds(cmp int) bool {
	switch c {
	case Less:
		return cmp < 0
	case LessEqual:
		return cmp <= 0
	case Greater:
		return cmp > 0
	case GreaterEqual:
		return cmp >= 0
	case Equal:
		return cmp == 0
	case NotEqual:
		return cmp != 0
	default:
		return false
	}
}

func (c Condition) String() string {
	if c < 0 || int(c) >= len(conditionMnemonics) {
		return fmt.Sprintf("j?%d", int(c))
	}
	return conditionMnemonics[c]
}

// Branch compares Src against Dest and jumps by Lines when Cond holds,
// otherwise falls through to the next line.
type Branch struct {
	Lines int
	Cond  Condition
	Src   operand.Operand
	Dest  operand.Operand
}

func Jl(lines int, src, dest operand.Operand) Branch {
	return Branch{Lines: lines, Cond: Less, Src: src, Dest: dest}
}

func Jle(lines int, src, dest operand.Operand) Branch {
	return Branch{Lines: lines, Cond: LessEqual, Src: src, Dest: dest}
}

func Jg(lines int, src, dest operand.Operand) Branch {
	return Branch{Lines: lines, Cond: Greater, Src: src, Dest: dest}
}

func Jge(lines int, src, dest operand.Operand) Branch {
	return Branch{Lines: lines, Cond: GreaterEqual, Src: src, Dest: dest}
}

func Je(lines int, src, dest operand.Operand) Branch {
	return Branch{Lines: lines, Cond: Equal, Src: src, Dest: dest}
}

func Jne(lines int, src, dest operand.Operand) Branch {
	return Branch{Lines: lines, Cond: NotEqual, Src: src, Dest: dest}
}

func (b Branch) Execute(m *operand.Memory) (int, error) {
	src, err := b.Src.Get(m)
	if err != nil {
		return 0, err
	}
	dest, err := b.Dest.Get(m)
	if err != nil {
		return 0, err
	}
	if b.Cond.holds(src.Cmp(dest)) {
		return b.Lines, nil
	}
	return 1, nil
}

func (b Branch) String() string {
	return fmt.Sprintf("%s %d, %s, %s", b.Cond, b.Lines, b.Src, b.Dest)
}

type ArithOp int

const (
	Mov ArithOp = iota
	Add
	Sub
	Mul
	Div
)

var arithMnemonics = [...]string{
	Mov: "mov",
	Add: "add",
	Sub: "sub",
	Mul: "mul",
	Div: "div",
}

func (op ArithOp) String() string {
	if op < 0 || int(op) >= len(arithMnemonics) {
		return fmt.Sprintf("op?%d", int(op))
	}
	return arithMnemonics[op]
}

// Arith computes Dest = Dest <op> Src (Dest = Src for mov) and always
// advances one line.
type Arith struct {
	Op   ArithOp
	Dest operand.Register
	Src  operand.Operand
}

func (a Arith) Execute(m *operand.Memory) (int, error) {
	src, err := a.Src.Get(m)
	if err != nil {
		return 0, err
	}
	var result decimal.Decimal
	if a.Op == Mov {
		result = src
	} else {
		dest, err := a.Dest.Get(m)
		if err != nil {
			return 0, err
		}
		result, err = apply(a.Op, dest, src)
		if err != nil {
			return 0, err
		}
	}
	if result.Abs().GreaterThan(MaxMagnitude) {
		return 0, ErrOverflow
	}
	if err := a.Dest.Set(m, result); err != nil {
		return 0, err
	}
	return 1, nil
}

func apply(op ArithOp, dest, src decimal.Decimal) (decimal.Decimal, error) {
	switch op {
	case Add:
		return dest.Add(src), nil
	case Sub:
		return dest.Sub(src), nil
	case Mul:
		return dest.Mul(src).Round(Scale), nil
	case Div:
		if src.IsZero() {
			return decimal.Zero, ErrDivisionByZero
		}
		return dest.DivRound(src, Scale), nil
	default:
		return decimal.Zero, fmt.Errorf("unknown arithmetic op %d", int(op))
	}
}

func (a Arith) String() string {
	return fmt.Sprintf("%s %s, %s", a.Op, a.Dest, a.Src)
}
