package program

import (
	"errors"
	"fmt"
)

var (
	ErrExecutionFault     = errors.New("execution fault")
	ErrDivisionByZero     = errors.New("division by zero")
	ErrJumpOutOfRange     = errors.New("jump out of range")
	ErrStepBudgetExceeded = errors.New("step budget exceeded")
	ErrOverflow           = errors.New("value exceeds magnitude limit")
)

// Fault is a runtime failure of an evolved program. It matches
// ErrExecutionFault as well as its cause.
type Fault struct {
	PC          int
	Instruction string
	Err         error
}

func (f *Fault) Error() string {
	if f.Instruction == "" {
		return fmt.Sprintf("pc=%d: %v", f.PC, f.Err)
	}
	return fmt.Sprintf("pc=%d %q: %v", f.PC, f.Instruction, f.Err)
}

func (f *Fault) Unwrap() []error {
	return []error{ErrExecutionFault, f.Err}
}
