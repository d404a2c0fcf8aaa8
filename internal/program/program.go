package program

import (
	"strings"

	"evolve/internal/operand"
)

// DefaultStepBudget bounds execution when the caller does not configure a
// budget.
const DefaultStepBudget = 10_000

// Program is an instruction list plus the memory it runs against.
type Program struct {
	Instructions []Instruction
	Memory       *operand.Memory
}

func New(instructions []Instruction, registers int) *Program {
	return &Program{
		Instructions: instructions,
		Memory:       operand.NewMemory(registers),
	}
}

// Result describes one execution. Err is nil only when the program counter
// left the program by stepping exactly past its last line.
type Result struct {
	Steps int
	Err   error
}

func (r Result) Faulted() bool { return r.Err != nil }

// Run executes from line 0 until the program counter leaves [0, N) or the
// step budget is spent. A budget <= 0 selects DefaultStepBudget. Faults are
// returned in the result, never raised. Reaching pc == N, by stepping or by
// jumping, is a clean halt. Any other exit fails with ErrJumpOutOfRange and
// the fitness layer penalizes it like any other fault.
func (p *Program) Run(budget int) Result {
	if budget <= 0 {
		budget = DefaultStepBudget
	}
	n := len(p.Instructions)
	pc, steps := 0, 0
	for pc >= 0 && pc < n {
		if steps >= budget {
			return Result{Steps: steps, Err: &Fault{PC: pc, Err: ErrStepBudgetExceeded}}
		}
		inst := p.Instructions[pc]
		offset, err := inst.Execute(p.Memory)
		steps++
		if err != nil {
			return Result{Steps: steps, Err: &Fault{PC: pc, Instruction: inst.String(), Err: err}}
		}
		pc += offset
	}
	if pc != n {
		return Result{Steps: steps, Err: &Fault{PC: pc, Err: ErrJumpOutOfRange}}
	}
	return Result{Steps: steps}
}

func (p *Program) Len() int { return len(p.Instructions) }

func (p *Program) String() string {
	lines := make([]string, len(p.Instructions))
	for i, inst := range p.Instructions {
		lines[i] = inst.String()
	}
	return strings.Join(lines, "\n")
}
