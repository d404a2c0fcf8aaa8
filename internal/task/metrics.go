package task

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"evolve/internal/expr"
	"evolve/internal/operand"
	"evolve/internal/program"
)

// evaluationFaults counts evaluations converted to the worst fitness.
// Labels: representation (program, expr), reason
var evaluationFaults = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "evolve",
	Subsystem: "task",
	Name:      "evaluation_faults_total",
	Help:      "Chromosome evaluations that faulted and were penalized",
}, []string{"representation", "reason"})

func faultReason(err error) string {
	switch {
	case errors.Is(err, program.ErrDivisionByZero), errors.Is(err, expr.ErrDivisionByZero):
		return "division_by_zero"
	case errors.Is(err, program.ErrJumpOutOfRange):
		return "jump_out_of_range"
	case errors.Is(err, program.ErrStepBudgetExceeded):
		return "step_budget_exceeded"
	case errors.Is(err, program.ErrOverflow):
		return "overflow"
	case errors.Is(err, operand.ErrRegisterOutOfRange):
		return "register_out_of_range"
	default:
		return "other"
	}
}

func recordFault(representation string, err error) {
	evaluationFaults.WithLabelValues(representation, faultReason(err)).Inc()
}
