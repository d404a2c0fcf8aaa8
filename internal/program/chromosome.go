package program

import (
	"math/rand"

	"github.com/shopspring/decimal"

	"evolve/internal/operand"
)

// Chromosome is an evolvable program. Instructions are immutable values, so
// children may reuse them; memory is always private to one chromosome.
type Chromosome struct {
	Program *Program
}

func NewChromosome(instructions []Instruction, registers int) *Chromosome {
	return &Chromosome{Program: New(instructions, registers)}
}

func (c *Chromosome) Clone() *Chromosome {
	instructions := make([]Instruction, len(c.Program.Instructions))
	copy(instructions, c.Program.Instructions)
	return &Chromosome{Program: &Program{
		Instructions: instructions,
		Memory:       operand.NewMemory(c.Program.Memory.Len()),
	}}
}

// Crossover returns a child shaped like c where every line that other also
// has is taken from other with probability rate.
func (c *Chromosome) Crossover(rng *rand.Rand, other *Chromosome, rate float64) *Chromosome {
	child := c.Clone()
	donor := other.Program.Instructions
	for i := range child.Program.Instructions {
		if i >= len(donor) {
			break
		}
		if rng.Float64() < rate {
			child.Program.Instructions[i] = donor[i]
		}
	}
	return child
}

// Mutate replaces each line with the seed's line at the same position
// (wrapping around a shorter seed) with probability rate.
func (c *Chromosome) Mutate(rng *rand.Rand, seed *Chromosome, rate float64) {
	fresh := seed.Program.Instructions
	if len(fresh) == 0 {
		return
	}
	for i := range c.Program.Instructions {
		if rng.Float64() < rate {
			c.Program.Instructions[i] = fresh[i%len(fresh)]
		}
	}
}

// Execute resets memory, loads inputs into their registers and runs the
// program. Output registers are read by the caller from c.Program.Memory.
func (c *Chromosome) Execute(inputs map[int]decimal.Decimal, budget int) Result {
	c.Program.Memory.Reset()
	for index, v := range inputs {
		if err := c.Program.Memory.Store(index, v); err != nil {
			return Result{Err: &Fault{PC: 0, Err: err}}
		}
	}
	return c.Program.Run(budget)
}

func (c *Chromosome) String() string { return c.Program.String() }
