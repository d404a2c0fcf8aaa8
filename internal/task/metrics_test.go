package task

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evolve/internal/expr"
	"evolve/internal/operand"
	"evolve/internal/program"
)

func TestFaultReason(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&program.Fault{Err: program.ErrDivisionByZero}, "division_by_zero"},
		{expr.ErrDivisionByZero, "division_by_zero"},
		{&program.Fault{Err: program.ErrJumpOutOfRange}, "jump_out_of_range"},
		{&program.Fault{Err: program.ErrStepBudgetExceeded}, "step_budget_exceeded"},
		{&program.Fault{Err: program.ErrOverflow}, "overflow"},
		{&program.Fault{Err: operand.ErrRegisterOutOfRange}, "register_out_of_range"},
		{errors.New("other"), "other"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, faultReason(tc.err), "%v", tc.err)
	}
}

func TestFitnessFaultsAreCounted(t *testing.T) {
	budget := evaluationFaults.WithLabelValues("program", "step_budget_exceeded")
	programDiv := evaluationFaults.WithLabelValues("program", "division_by_zero")
	exprDiv := evaluationFaults.WithLabelValues("expr", "division_by_zero")
	budgetBefore := testutil.ToFloat64(budget)
	programDivBefore := testutil.ToFloat64(programDiv)
	exprDivBefore := testutil.ToFloat64(exprDiv)

	programs, err := NewProgramRegression(map[string]string{KeyStepBudget: "16"}, squareSamples(t))
	require.NoError(t, err)

	loop := program.NewChromosome([]program.Instruction{program.Jmp{Lines: 0}}, 2)
	programs.Fitness(loop)
	assert.Equal(t, 1.0, testutil.ToFloat64(budget)-budgetBefore)

	div := program.NewChromosome([]program.Instruction{
		program.Arith{Op: program.Mov, Dest: operand.Reg(0), Src: operand.Imm(1)},
		program.Arith{Op: program.Div, Dest: operand.Reg(0), Src: operand.Reg(1)},
	}, 2)
	programs.Fitness(div)
	assert.Equal(t, 1.0, testutil.ToFloat64(programDiv)-programDivBefore)

	trees, err := NewExprRegression(nil, squareSamples(t))
	require.NoError(t, err)
	quotient, err := expr.NewBinary(expr.OpDiv, expr.Const(1), &expr.Input{X: trees.Generator.Input})
	require.NoError(t, err)
	trees.Fitness(&expr.Tree{Root: quotient})
	assert.Equal(t, 1.0, testutil.ToFloat64(exprDiv)-exprDivBefore)
}
