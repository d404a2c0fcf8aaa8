package program

import (
	"math/rand"

	"evolve/internal/operand"
)

// Generator builds random instructions and programs.
type Generator struct {
	Length       int
	Registers    int
	MinImmediate int64
	MaxImmediate int64
	MaxJump      int
}

func DefaultGenerator() Generator {
	return Generator{
		Length:       12,
		Registers:    4,
		MinImmediate: -5,
		MaxImmediate: 5,
		MaxJump:      4,
	}
}

func (g Generator) normalized() Generator {
	if g.Length <= 0 {
		g.Length = 1
	}
	if g.Registers <= 0 {
		g.Registers = 1
	}
	if g.MaxImmediate < g.MinImmediate {
		g.MinImmediate, g.MaxImmediate = g.MaxImmediate, g.MinImmediate
	}
	if g.MaxJump <= 0 {
		g.MaxJump = 1
	}
	return g
}

func (g Generator) Random(rng *rand.Rand) *Chromosome {
	g = g.normalized()
	instructions := make([]Instruction, g.Length)
	for i := range instructions {
		instructions[i] = g.instruction(rng)
	}
	return NewChromosome(instructions, g.Registers)
}

func (g Generator) Instruction(rng *rand.Rand) Instruction {
	return g.normalized().instruction(rng)
}

const (
	jumpKinds  = 1
	condKinds  = int(NotEqual) + 1
	arithKinds = int(Div) + 1
)

func (g Generator) instruction(rng *rand.Rand) Instruction {
	kind := rng.Intn(jumpKinds + condKinds + arithKinds)
	switch {
	case kind < jumpKinds:
		return Jmp{Lines: g.offset(rng)}
	case kind < jumpKinds+condKinds:
		return Branch{
			Lines: g.offset(rng),
			Cond:  Condition(kind - jumpKinds),
			Src:   g.operand(rng),
			Dest:  g.operand(rng),
		}
	default:
		return Arith{
			Op:   ArithOp(kind - jumpKinds - condKinds),
			Dest: g.register(rng),
			Src:  g.operand(rng),
		}
	}
}

// offset is a non-zero jump distance in [-MaxJump, MaxJump].
func (g Generator) offset(rng *rand.Rand) int {
	n := rng.Intn(g.MaxJump) + 1
	if rng.Intn(2) == 0 {
		return -n
	}
	return n
}

func (g Generator) register(rng *rand.Rand) operand.Register {
	return operand.Reg(rng.Intn(g.Registers))
}

func (g Generator) operand(rng *rand.Rand) operand.Operand {
	if rng.Intn(2) == 0 {
		return g.register(rng)
	}
	span := g.MaxImmediate - g.MinImmediate + 1
	return operand.Imm(g.MinImmediate + rng.Int63n(span))
}
