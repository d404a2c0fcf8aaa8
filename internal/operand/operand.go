package operand

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var ErrRegisterOutOfRange = errors.New("register out of range")

// Memory is the register file of a single program. It is never shared
// between chromosomes.
type Memory struct {
	cells []decimal.Decimal
}

func NewMemory(size int) *Memory {
	if size < 0 {
		size = 0
	}
	cells := make([]decimal.Decimal, size)
	for i := range cells {
		cells[i] = decimal.Zero
	}
	return &Memory{cells: cells}
}

func (m *Memory) Len() int { return len(m.cells) }

func (m *Memory) Load(index int) (decimal.Decimal, error) {
	if index < 0 || index >= len(m.cells) {
		return decimal.Zero, fmt.Errorf("%w: r%d of %d", ErrRegisterOutOfRange, index, len(m.cells))
	}
	return m.cells[index], nil
}

func (m *Memory) Store(index int, v decimal.Decimal) error {
	if index < 0 || index >= len(m.cells) {
		return fmt.Errorf("%w: r%d of %d", ErrRegisterOutOfRange, index, len(m.cells))
	}
	m.cells[index] = v
	return nil
}

// Reset zeroes every register.
func (m *Memory) Reset() {
	for i := range m.cells {
		m.cells[i] = decimal.Zero
	}
}

func (m *Memory) Clone() *Memory {
	cells := make([]decimal.Decimal, len(m.cells))
	copy(cells, m.cells)
	return &Memory{cells: cells}
}

// Operand is a readable value. Memory is passed explicitly so that
// instruction lists can move between chromosomes without rebinding.
type Operand interface {
	Get(m *Memory) (decimal.Decimal, error)
	String() string
}

// Immediate is a constant operand.
type Immediate struct {
	Value decimal.Decimal
}

func Imm(v int64) Immediate { return Immediate{Value: decimal.NewFromInt(v)} }

func (i Immediate) Get(_ *Memory) (decimal.Decimal, error) { return i.Value, nil }

func (i Immediate) String() string { return i.Value.String() }

// Register addresses a memory slot and can be used as a destination.
type Register struct {
	Index int
}

func Reg(index int) Register { return Register{Index: index} }

func (r Register) Get(m *Memory) (decimal.Decimal, error) { return m.Load(r.Index) }

func (r Register) Set(m *Memory, v decimal.Decimal) error { return m.Store(r.Index, v) }

func (r Register) String() string { return fmt.Sprintf("r%d", r.Index) }
