package expr

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrNodeExists   = errors.New("node already registered")
	ErrNodeNotFound = errors.New("node not found")
)

// Constructor builds a node from its children. Leaves receive no children
// and read x.
type Constructor func(x *Var, children []Evaluable) (Evaluable, error)

type NodeSpec struct {
	Name  string
	Arity int
	New   Constructor
}

var nodeRegistry = struct {
	mu sync.RWMutex
	m  map[string]NodeSpec
}{
	m: make(map[string]NodeSpec),
}

func init() {
	initializeBuiltInNodes()
}

func initializeBuiltInNodes() {
	MustRegister(NodeSpec{Name: "x", Arity: 0, New: func(x *Var, _ []Evaluable) (Evaluable, error) {
		return &Input{X: x}, nil
	}})
	MustRegister(NodeSpec{Name: "cos", Arity: 0, New: func(x *Var, _ []Evaluable) (Evaluable, error) {
		return &Cos{X: x}, nil
	}})
	MustRegister(NodeSpec{Name: "sin", Arity: 0, New: func(x *Var, _ []Evaluable) (Evaluable, error) {
		return &Sin{X: x}, nil
	}})
	MustRegister(NodeSpec{Name: "abs", Arity: 0, New: func(x *Var, _ []Evaluable) (Evaluable, error) {
		return &Abs{X: x}, nil
	}})
	for _, op := range []BinaryOp{OpAdd, OpSub, OpMul, OpDiv} {
		op := op
		MustRegister(NodeSpec{Name: binaryNames[op], Arity: 2, New: func(_ *Var, children []Evaluable) (Evaluable, error) {
			return NewBinary(op, children...)
		}})
	}
	MustRegister(NodeSpec{Name: "neg", Arity: 1, New: func(_ *Var, children []Evaluable) (Evaluable, error) {
		return NewNeg(children...)
	}})
	MustRegister(NodeSpec{Name: "greater", Arity: 4, New: func(_ *Var, children []Evaluable) (Evaluable, error) {
		return NewGreater(children...)
	}})
}

func Register(spec NodeSpec) error {
	if spec.Name == "" {
		return errors.New("node name is required")
	}
	if spec.Arity < 0 {
		return fmt.Errorf("node %s: arity must be >= 0", spec.Name)
	}
	if spec.New == nil {
		return fmt.Errorf("node %s: constructor is required", spec.Name)
	}

	nodeRegistry.mu.Lock()
	defer nodeRegistry.mu.Unlock()

	if _, exists := nodeRegistry.m[spec.Name]; exists {
		return fmt.Errorf("%w: %s", ErrNodeExists, spec.Name)
	}
	nodeRegistry.m[spec.Name] = spec
	return nil
}

func MustRegister(spec NodeSpec) {
	if err := Register(spec); err != nil {
		panic(err)
	}
}

func Lookup(name string) (NodeSpec, error) {
	nodeRegistry.mu.RLock()
	defer nodeRegistry.mu.RUnlock()

	spec, ok := nodeRegistry.m[name]
	if !ok {
		return NodeSpec{}, fmt.Errorf("%w: %s", ErrNodeNotFound, name)
	}
	return spec, nil
}

// Build constructs a registered node and checks the child count against the
// registered arity.
func Build(name string, x *Var, children ...Evaluable) (Evaluable, error) {
	spec, err := Lookup(name)
	if err != nil {
		return nil, err
	}
	if len(children) != spec.Arity {
		return nil, &IllegalArityError{Node: name, Want: spec.Arity, Got: len(children)}
	}
	return spec.New(x, children)
}

func ListNodes() []string {
	nodeRegistry.mu.RLock()
	defer nodeRegistry.mu.RUnlock()

	names := make([]string, 0, len(nodeRegistry.m))
	for name := range nodeRegistry.m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Catalog partitions registered nodes into leaves and operations for the
// random tree generator.
type Catalog struct {
	Leaves     []NodeSpec
	Operations []NodeSpec
}

// NewCatalog resolves names against the registry. No names selects every
// registered node. Each constructor is tried once with placeholder children
// so that a spec whose arity disagrees with its constructor fails here.
func NewCatalog(names ...string) (Catalog, error) {
	if len(names) == 0 {
		names = ListNodes()
	}
	var c Catalog
	input := NewVar("x")
	for _, name := range names {
		spec, err := Lookup(name)
		if err != nil {
			return Catalog{}, err
		}
		children := make([]Evaluable, spec.Arity)
		for i := range children {
			children[i] = Const(0)
		}
		if _, err := spec.New(input, children); err != nil {
			return Catalog{}, fmt.Errorf("node %s: %w", name, err)
		}
		if spec.Arity == 0 {
			c.Leaves = append(c.Leaves, spec)
		} else {
			c.Operations = append(c.Operations, spec)
		}
	}
	return c, nil
}

func resetNodeRegistryForTests() {
	nodeRegistry.mu.Lock()
	nodeRegistry.m = make(map[string]NodeSpec)
	nodeRegistry.mu.Unlock()
	initializeBuiltInNodes()
}
