package evo

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type numberChromosome struct {
	value float64
}

func (c *numberChromosome) Crossover(rng *rand.Rand, other *numberChromosome, rate float64) *numberChromosome {
	if rng.Float64() < rate {
		return &numberChromosome{value: (c.value + other.value) / 2}
	}
	return &numberChromosome{value: c.value}
}

func (c *numberChromosome) Mutate(rng *rand.Rand, seed *numberChromosome, rate float64) {
	if rng.Float64() < rate {
		c.value = seed.value
	}
}

// numberSpecies maximizes the chromosome value.
type numberSpecies struct{}

func (numberSpecies) Random(rng *rand.Rand) *numberChromosome {
	return &numberChromosome{value: rng.Float64() * 100}
}

func (numberSpecies) Fitness(c *numberChromosome) float64 { return c.value }

type nanSpecies struct{ numberSpecies }

func (nanSpecies) Fitness(c *numberChromosome) float64 {
	if c.value < 50 {
		return math.NaN()
	}
	return c.value
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newNumberPopulation(t *testing.T, cfg Config) *Population[*numberChromosome] {
	t.Helper()
	pop, err := New[*numberChromosome](cfg, numberSpecies{}, WithLogger(quietLogger()))
	require.NoError(t, err)
	return pop
}

func requireSortedAscending(t *testing.T, members []Scored[*numberChromosome]) {
	t.Helper()
	for i := 1; i < len(members); i++ {
		require.LessOrEqual(t, members[i-1].Fitness, members[i].Fitness, "population not sorted at %d", i)
	}
}

func TestNewBuildsSortedPopulation(t *testing.T) {
	pop := newNumberPopulation(t, Config{Size: 25, CrossoverRate: 0.5, MutationRate: 0.1, ElitismRate: 0.1, TournamentSize: 3, Seed: 1})
	require.Equal(t, 25, pop.Len())
	requireSortedAscending(t, pop.Members())
	assert.Equal(t, pop.Members()[24].Fitness, pop.Best().Fitness)
}

func TestEvolveKeepsSizeAndOrder(t *testing.T) {
	configs := []Config{
		{Size: 1, CrossoverRate: 1, MutationRate: 1, ElitismRate: 0, TournamentSize: 1, Seed: 1},
		{Size: 7, CrossoverRate: 0.7, MutationRate: 0.2, ElitismRate: 0.3, TournamentSize: 2, Seed: 2},
		{Size: 10, CrossoverRate: 0, MutationRate: 0, ElitismRate: 1, TournamentSize: 10, Seed: 3},
		{Size: 33, CrossoverRate: 0.9, MutationRate: 0.05, ElitismRate: 0.05, TournamentSize: 5, Seed: 4},
	}
	for _, cfg := range configs {
		pop := newNumberPopulation(t, cfg)
		for gen := 0; gen < 15; gen++ {
			pop.Evolve()
			require.Equal(t, cfg.Size, pop.Len())
			requireSortedAscending(t, pop.Members())
		}
		assert.Equal(t, 15, pop.Generation())
	}
}

func TestEliteCountRoundsUpToEven(t *testing.T) {
	cases := []struct {
		size int
		rate float64
		want int
	}{
		{10, 0, 0},
		{10, 0.1, 2},
		{10, 0.2, 2},
		{10, 0.35, 4},
		{100, 0.05, 6},
		{9, 0.5, 4},
		{10, 1, 10},
		{5, 1, 5},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, EliteCount(tc.size, tc.rate), "EliteCount(%d, %v)", tc.size, tc.rate)
	}
	for size := 2; size < 60; size += 2 {
		for _, rate := range []float64{0.01, 0.13, 0.27, 0.5, 0.99} {
			assert.Zero(t, EliteCount(size, rate)%2, "EliteCount(%d, %v) is odd", size, rate)
		}
	}
}

func TestElitesAreCarriedUnchanged(t *testing.T) {
	pop := newNumberPopulation(t, Config{Size: 20, CrossoverRate: 1, MutationRate: 1, ElitismRate: 0.2, TournamentSize: 2, Seed: 5})

	for gen := 0; gen < 10; gen++ {
		before := pop.Members()
		elites := before[len(before)-pop.EliteCount():]

		pop.Evolve()

		present := make(map[*numberChromosome]float64, pop.Len())
		for _, m := range pop.Members() {
			present[m.Chromosome] = m.Fitness
		}
		for _, e := range elites {
			fitness, ok := present[e.Chromosome]
			require.True(t, ok, "generation %d: elite missing", gen)
			require.Equal(t, e.Fitness, fitness, "generation %d: elite fitness changed", gen)
		}
		require.GreaterOrEqual(t, pop.Best().Fitness, elites[len(elites)-1].Fitness)
	}
}

func TestSelectFullTournamentReturnsFittest(t *testing.T) {
	pop := newNumberPopulation(t, Config{Size: 12, CrossoverRate: 0.5, MutationRate: 0.5, ElitismRate: 0, TournamentSize: 12, Seed: 9})
	best := pop.Best().Chromosome
	for i := 0; i < 100; i++ {
		require.Same(t, best, pop.Select())
	}
}

func TestSelectSizeOneIsUniform(t *testing.T) {
	pop := newNumberPopulation(t, Config{Size: 4, CrossoverRate: 0.5, MutationRate: 0.5, ElitismRate: 0, TournamentSize: 1, Seed: 11})
	index := make(map[*numberChromosome]int, pop.Len())
	for i, m := range pop.Members() {
		index[m.Chromosome] = i
	}

	const trials = 40000
	counts := make([]int, pop.Len())
	for i := 0; i < trials; i++ {
		counts[index[pop.Select()]]++
	}
	expected := float64(trials) / float64(pop.Len())
	for i, c := range counts {
		assert.InDelta(t, expected, float64(c), expected*0.05, "index %d", i)
	}
}

func TestSeededPopulationsAreReproducible(t *testing.T) {
	cfg := Config{Size: 16, CrossoverRate: 0.8, MutationRate: 0.1, ElitismRate: 0.1, TournamentSize: 3, Seed: 1234}
	a, b := newNumberPopulation(t, cfg), newNumberPopulation(t, cfg)
	for i := 0; i < 5; i++ {
		a.Evolve()
		b.Evolve()
	}
	am, bm := a.Members(), b.Members()
	for i := range am {
		assert.Equal(t, am[i].Fitness, bm[i].Fitness, "member %d", i)
	}
}

func TestNaNFitnessIsWorst(t *testing.T) {
	pop, err := New[*numberChromosome](
		Config{Size: 30, CrossoverRate: 0.5, MutationRate: 0.5, ElitismRate: 0.1, TournamentSize: 2, Seed: 3},
		nanSpecies{},
		WithLogger(quietLogger()),
	)
	require.NoError(t, err)
	requireSortedAscending(t, pop.Members())

	d := pop.Diagnostics()
	assert.NotZero(t, d.Penalized)
	assert.Equal(t, WorstFitness, d.MinFitness)
	assert.GreaterOrEqual(t, d.MeanFitness, 50.0, "penalized members are excluded from the mean")
}

func TestRunRecordsEveryGeneration(t *testing.T) {
	pop := newNumberPopulation(t, Config{Size: 10, CrossoverRate: 0.8, MutationRate: 0.1, ElitismRate: 0.2, TournamentSize: 3, Seed: 8})

	var observed []int
	result, err := pop.Run(context.Background(), RunConfig{Generations: 6}, func(d GenerationDiagnostics) error {
		observed = append(observed, d.Generation)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, result.BestByGeneration, 7)
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6}, observed)
	for i := 1; i < len(result.BestByGeneration); i++ {
		assert.GreaterOrEqual(t, result.BestByGeneration[i], result.BestByGeneration[i-1], "generation %d", i)
	}
	assert.Equal(t, pop.Best().Fitness, result.Best.Fitness)
}

func TestRunStopsAtFitnessGoal(t *testing.T) {
	pop := newNumberPopulation(t, Config{Size: 10, CrossoverRate: 0.8, MutationRate: 0.1, ElitismRate: 0.2, TournamentSize: 3, Seed: 8})
	goal := -1.0
	result, err := pop.Run(context.Background(), RunConfig{Generations: 50, FitnessGoal: &goal}, nil)
	require.NoError(t, err)
	assert.True(t, result.GoalReached)
	assert.Zero(t, pop.Generation())
}

func TestRunHonorsContextAndObserverErrors(t *testing.T) {
	pop := newNumberPopulation(t, Config{Size: 6, CrossoverRate: 0.8, MutationRate: 0.1, ElitismRate: 0, TournamentSize: 2, Seed: 2})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := pop.Run(ctx, RunConfig{Generations: 3}, nil)
	assert.ErrorIs(t, err, context.Canceled)

	boom := errors.New("boom")
	_, err = pop.Run(context.Background(), RunConfig{Generations: 3}, func(GenerationDiagnostics) error { return boom })
	assert.ErrorIs(t, err, boom)
}
