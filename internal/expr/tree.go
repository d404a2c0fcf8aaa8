package expr

import (
	"fmt"
	"math/rand"

	"github.com/shopspring/decimal"
)

// Tree is an evolvable expression. Trees deeper than DepthLimit after
// crossover or mutation are discarded in favour of the receiver.
type Tree struct {
	Root       Evaluable
	DepthLimit int
}

func (t *Tree) Clone() *Tree {
	return &Tree{Root: t.Root.Clone(), DepthLimit: t.DepthLimit}
}

func (t *Tree) Eval() (decimal.Decimal, error) { return t.Root.Eval() }

func (t *Tree) String() string { return t.Root.String() }

func (t *Tree) fits(root Evaluable) bool {
	return t.DepthLimit <= 0 || Depth(root) <= t.DepthLimit
}

// Crossover returns a copy of t where, with probability rate, one random
// subtree has been replaced by a copy of a random subtree of other.
func (t *Tree) Crossover(rng *rand.Rand, other *Tree, rate float64) *Tree {
	child := t.Clone()
	if rng.Float64() >= rate {
		return child
	}
	targets := slots(&child.Root)
	donors := slots(&other.Root)
	*targets[rng.Intn(len(targets))] = (*donors[rng.Intn(len(donors))]).Clone()
	if !t.fits(child.Root) {
		return t.Clone()
	}
	return child
}

// Mutate visits every node top-down; with probability rate the subtree
// rooted there is replaced by a copy of a random subtree of seed.
func (t *Tree) Mutate(rng *rand.Rand, seed *Tree, rate float64) {
	before := t.Root.Clone()
	donors := slots(&seed.Root)
	mutateAt(rng, &t.Root, donors, rate)
	if !t.fits(t.Root) {
		t.Root = before
	}
}

func mutateAt(rng *rand.Rand, slot *Evaluable, donors []*Evaluable, rate float64) {
	if rng.Float64() < rate {
		*slot = (*donors[rng.Intn(len(donors))]).Clone()
		return
	}
	children := (*slot).Children()
	for i := range children {
		mutateAt(rng, &children[i], donors, rate)
	}
}

// slots lists the addresses holding every node of the tree in pre-order,
// starting with the root itself.
func slots(root *Evaluable) []*Evaluable {
	out := []*Evaluable{root}
	children := (*root).Children()
	for i := range children {
		out = append(out, slots(&children[i])...)
	}
	return out
}

// Generator grows random trees from a catalog.
type Generator struct {
	MaxDepth int
	Input    *Var
	ConstMin int64
	ConstMax int64
	// ConstProbability is the chance a leaf is a constant rather than a
	// catalog leaf.
	ConstProbability float64
	Catalog          Catalog
}

func DefaultGenerator(x *Var) (Generator, error) {
	catalog, err := NewCatalog()
	if err != nil {
		return Generator{}, err
	}
	return Generator{
		MaxDepth:         4,
		Input:            x,
		ConstMin:         -5,
		ConstMax:         5,
		ConstProbability: 0.3,
		Catalog:          catalog,
	}, nil
}

func (g Generator) Random(rng *rand.Rand) *Tree {
	depth := g.MaxDepth
	if depth <= 0 {
		depth = 1
	}
	return &Tree{Root: g.grow(rng, depth), DepthLimit: depth * 2}
}

func (g Generator) grow(rng *rand.Rand, depth int) Evaluable {
	leafOnly := depth <= 1 || len(g.Catalog.Operations) == 0
	if !leafOnly && rng.Intn(2) == 0 {
		spec := g.Catalog.Operations[rng.Intn(len(g.Catalog.Operations))]
		children := make([]Evaluable, spec.Arity)
		for i := range children {
			children[i] = g.grow(rng, depth-1)
		}
		return g.build(spec, children)
	}
	return g.leaf(rng)
}

func (g Generator) leaf(rng *rand.Rand) Evaluable {
	if len(g.Catalog.Leaves) == 0 || rng.Float64() < g.ConstProbability {
		lo, hi := g.ConstMin, g.ConstMax
		if hi < lo {
			lo, hi = hi, lo
		}
		return Const(lo + rng.Int63n(hi-lo+1))
	}
	spec := g.Catalog.Leaves[rng.Intn(len(g.Catalog.Leaves))]
	return g.build(spec, nil)
}

// build panics on constructor errors. NewCatalog has already run every
// constructor, so an error here means the catalog was assembled by hand
// from a miswired spec.
func (g Generator) build(spec NodeSpec, children []Evaluable) Evaluable {
	node, err := spec.New(g.Input, children)
	if err != nil {
		panic(fmt.Errorf("node %s: %w", spec.Name, err))
	}
	return node
}
