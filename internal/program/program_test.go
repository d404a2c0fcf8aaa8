package program

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evolve/internal/operand"
)

func TestJlJumpsOnlyWhenSrcLessThanDest(t *testing.T) {
	taken, err := Jl(3, operand.Imm(1), operand.Imm(2)).Execute(nil)
	require.NoError(t, err)
	assert.Equal(t, 3, taken)

	notTaken, err := Jl(3, operand.Imm(2), operand.Imm(1)).Execute(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, notTaken)

	equal, err := Jl(3, operand.Imm(2), operand.Imm(2)).Execute(nil)
	require.NoError(t, err)
	assert.Equal(t, 1, equal)
}

func TestConditionalJumpFamily(t *testing.T) {
	one, two := operand.Imm(1), operand.Imm(2)
	cases := []struct {
		inst Branch
		want int
	}{
		{Jle(5, one, one), 5},
		{Jle(5, two, one), 1},
		{Jg(5, two, one), 5},
		{Jg(5, one, one), 1},
		{Jge(5, one, one), 5},
		{Jge(5, one, two), 1},
		{Je(5, one, one), 5},
		{Je(5, one, two), 1},
		{Jne(5, one, two), 5},
		{Jne(5, two, two), 1},
	}
	for _, tc := range cases {
		got, err := tc.inst.Execute(nil)
		require.NoError(t, err)
		assert.Equal(t, tc.want, got, tc.inst.String())
	}
}

func TestBranchComparesExactly(t *testing.T) {
	m := operand.NewMemory(2)
	require.NoError(t, m.Store(0, decimal.RequireFromString("0.1").Add(decimal.RequireFromString("0.2"))))
	require.NoError(t, m.Store(1, decimal.RequireFromString("0.3")))

	got, err := Je(4, operand.Reg(0), operand.Reg(1)).Execute(m)
	require.NoError(t, err)
	assert.Equal(t, 4, got)
}

func TestArithmeticWritesDestination(t *testing.T) {
	p := New([]Instruction{
		Arith{Op: Mov, Dest: operand.Reg(0), Src: operand.Imm(6)},
		Arith{Op: Add, Dest: operand.Reg(0), Src: operand.Imm(4)},
		Arith{Op: Sub, Dest: operand.Reg(0), Src: operand.Imm(1)},
		Arith{Op: Mul, Dest: operand.Reg(0), Src: operand.Imm(2)},
		Arith{Op: Div, Dest: operand.Reg(0), Src: operand.Imm(3)},
	}, 1)

	res := p.Run(0)
	require.NoError(t, res.Err)
	assert.Equal(t, 5, res.Steps)

	v, err := p.Memory.Load(0)
	require.NoError(t, err)
	assert.Equal(t, "6", v.String())
}

func TestRunCountsLoopIterations(t *testing.T) {
	// r0 counts to 5 using a backwards conditional jump.
	p := New([]Instruction{
		Arith{Op: Add, Dest: operand.Reg(0), Src: operand.Imm(1)},
		Jl(-1, operand.Reg(0), operand.Imm(5)),
	}, 1)

	res := p.Run(100)
	require.NoError(t, res.Err)
	assert.Equal(t, 10, res.Steps)
	v, _ := p.Memory.Load(0)
	assert.Equal(t, "5", v.String())
}

func TestInfiniteLoopIsAbortedAtBudget(t *testing.T) {
	p := New([]Instruction{
		Jmp{Lines: 1},
		Jmp{Lines: -1},
	}, 0)

	res := p.Run(50)
	require.True(t, res.Faulted())
	assert.Equal(t, 50, res.Steps)
	assert.ErrorIs(t, res.Err, ErrStepBudgetExceeded)
	assert.ErrorIs(t, res.Err, ErrExecutionFault)
}

func TestDefaultBudgetIsFinite(t *testing.T) {
	p := New([]Instruction{Jmp{Lines: 0}}, 0)
	res := p.Run(0)
	assert.ErrorIs(t, res.Err, ErrStepBudgetExceeded)
	assert.Equal(t, DefaultStepBudget, res.Steps)
}

func TestJumpOutOfRangeFaults(t *testing.T) {
	backwards := New([]Instruction{Jmp{Lines: -1}}, 0).Run(10)
	assert.ErrorIs(t, backwards.Err, ErrJumpOutOfRange)

	past := New([]Instruction{Jmp{Lines: 3}, Jmp{Lines: 1}}, 0).Run(10)
	assert.ErrorIs(t, past.Err, ErrJumpOutOfRange)

	exact := New([]Instruction{Jmp{Lines: 2}, Jmp{Lines: -5}}, 0).Run(10)
	assert.NoError(t, exact.Err)
}

func TestDivisionByZeroFault(t *testing.T) {
	p := New([]Instruction{
		Arith{Op: Mov, Dest: operand.Reg(0), Src: operand.Imm(1)},
		Arith{Op: Div, Dest: operand.Reg(0), Src: operand.Reg(1)},
	}, 2)

	res := p.Run(10)
	require.Error(t, res.Err)
	assert.ErrorIs(t, res.Err, ErrDivisionByZero)

	var fault *Fault
	require.True(t, errors.As(res.Err, &fault))
	assert.Equal(t, 1, fault.PC)
	assert.Equal(t, "div r0, r1", fault.Instruction)
}

func TestOverflowFault(t *testing.T) {
	p := New([]Instruction{
		Arith{Op: Mov, Dest: operand.Reg(0), Src: operand.Imm(10)},
		Arith{Op: Mul, Dest: operand.Reg(0), Src: operand.Reg(0)},
		Jmp{Lines: -1},
	}, 1)

	res := p.Run(1000)
	assert.ErrorIs(t, res.Err, ErrOverflow)
}

func TestRegisterFaultIsExecutionFault(t *testing.T) {
	res := New([]Instruction{Arith{Op: Mov, Dest: operand.Reg(4), Src: operand.Imm(1)}}, 1).Run(10)
	assert.ErrorIs(t, res.Err, operand.ErrRegisterOutOfRange)
	assert.ErrorIs(t, res.Err, ErrExecutionFault)
}

func TestEmptyProgramCompletes(t *testing.T) {
	res := New(nil, 1).Run(10)
	assert.NoError(t, res.Err)
	assert.Zero(t, res.Steps)
}

func TestRandomProgramsAlwaysTerminate(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	gen := DefaultGenerator()
	for i := 0; i < 200; i++ {
		c := gen.Random(rng)
		res := c.Execute(map[int]decimal.Decimal{1: decimal.NewFromInt(int64(i))}, 500)
		assert.LessOrEqual(t, res.Steps, 500)
	}
}

func TestProgramString(t *testing.T) {
	p := New([]Instruction{
		Jl(3, operand.Imm(1), operand.Reg(2)),
		Arith{Op: Add, Dest: operand.Reg(0), Src: operand.Imm(-2)},
		Jmp{Lines: -2},
	}, 3)
	assert.Equal(t, "jl 3, 1, r2\nadd r0, -2\njmp -2", p.String())
}
