package evo

import (
	"errors"
	"log/slog"
	"math"
	"math/rand"
	"sort"
	"time"
)

// WorstFitness is the score given to chromosomes whose evaluation faulted.
const WorstFitness = -math.MaxFloat64

// Chromosome is the genetic material the engine recombines. Crossover must
// return a new chromosome and never alias the receiver or other.
type Chromosome[C any] interface {
	Crossover(rng *rand.Rand, other C, rate float64) C
	Mutate(rng *rand.Rand, seed C, rate float64)
}

// Species supplies random chromosomes and scores them. Fitness is
// maximized.
type Species[C Chromosome[C]] interface {
	Random(rng *rand.Rand) C
	Fitness(c C) float64
}

type Scored[C any] struct {
	Chromosome C
	Fitness    float64
}

type Option func(*options)

type options struct {
	logger *slog.Logger
	rng    *rand.Rand
}

func WithLogger(logger *slog.Logger) Option {
	return func(o *options) { o.logger = logger }
}

// WithRand overrides the random source built from Config.Seed.
func WithRand(rng *rand.Rand) Option {
	return func(o *options) { o.rng = rng }
}

// Population is kept sorted by ascending fitness. It is not safe for
// concurrent use.
type Population[C Chromosome[C]] struct {
	cfg        Config
	species    Species[C]
	selector   TournamentSelector
	rng        *rand.Rand
	logger     *slog.Logger
	members    []Scored[C]
	generation int
}

func New[C Chromosome[C]](cfg Config, species Species[C], opts ...Option) (*Population[C], error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if species == nil {
		return nil, errors.New("species is required")
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	if o.rng == nil {
		seed := cfg.Seed
		if seed == 0 {
			seed = time.Now().UnixNano()
		}
		o.rng = rand.New(rand.NewSource(seed))
	}

	p := &Population[C]{
		cfg:      cfg,
		species:  species,
		selector: TournamentSelector{Size: cfg.TournamentSize},
		rng:      o.rng,
		logger:   o.logger,
	}
	members := make([]Scored[C], cfg.Size)
	for i := range members {
		members[i] = p.score(species.Random(p.rng))
	}
	sortAscending(members)
	p.members = members
	p.observe()
	return p, nil
}

func (p *Population[C]) score(c C) Scored[C] {
	f := p.species.Fitness(c)
	evaluationsTotal.Inc()
	if math.IsNaN(f) {
		f = WorstFitness
	}
	return Scored[C]{Chromosome: c, Fitness: f}
}

func sortAscending[C any](members []Scored[C]) {
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].Fitness < members[j].Fitness
	})
}

// EliteCount is floor(size * elitism) rounded up to an even number, capped
// at the population size.
func EliteCount(size int, elitismRate float64) int {
	n := int(float64(size) * elitismRate)
	if n%2 != 0 {
		n++
	}
	if n > size {
		n = size
	}
	return n
}

func (p *Population[C]) EliteCount() int {
	return EliteCount(p.cfg.Size, p.cfg.ElitismRate)
}

// Evolve replaces the population with the next generation: the elite tail
// is carried over unchanged and the rest is bred from tournament-selected
// parents.
func (p *Population[C]) Evolve() {
	size := p.cfg.Size
	elite := p.EliteCount()

	next := make([]Scored[C], 0, size)
	next = append(next, p.members[len(p.members)-elite:]...)
	for len(next) < size {
		p1, p2 := p.Select(), p.Select()
		child := p1.Crossover(p.rng, p2, p.cfg.CrossoverRate)
		child.Mutate(p.rng, p.species.Random(p.rng), p.cfg.MutationRate)
		next = append(next, p.score(child))
	}

	sortAscending(next)
	p.members = next
	p.generation++
	generationsTotal.Inc()
	p.observe()
}

func (p *Population[C]) observe() {
	d := p.Diagnostics()
	bestFitness.Set(d.BestFitness)
	penalizedMembers.Set(float64(d.Penalized))
	p.logger.Debug("generation ready",
		"generation", d.Generation,
		"best", d.BestFitness,
		"mean", d.MeanFitness,
		"elite", d.EliteCount,
		"penalized", d.Penalized,
	)
}

// Select runs a tournament over the ranked population.
func (p *Population[C]) Select() C {
	return p.members[p.selector.Pick(p.rng, len(p.members))].Chromosome
}

// Members returns a copy of the ranked population, worst first.
func (p *Population[C]) Members() []Scored[C] {
	out := make([]Scored[C], len(p.members))
	copy(out, p.members)
	return out
}

func (p *Population[C]) Best() Scored[C] {
	return p.members[len(p.members)-1]
}

func (p *Population[C]) Len() int { return len(p.members) }

func (p *Population[C]) Generation() int { return p.generation }

func (p *Population[C]) Config() Config { return p.cfg }
