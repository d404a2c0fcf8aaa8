package evo

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestEngineMetricsTrackGenerations(t *testing.T) {
	generationsBefore := testutil.ToFloat64(generationsTotal)
	evaluationsBefore := testutil.ToFloat64(evaluationsTotal)

	pop := newNumberPopulation(t, Config{Size: 8, CrossoverRate: 0.5, MutationRate: 0.1, ElitismRate: 0.25, TournamentSize: 2, Seed: 6})
	pop.Evolve()
	pop.Evolve()

	assert.Equal(t, 2.0, testutil.ToFloat64(generationsTotal)-generationsBefore)
	// 8 initial members, then 6 bred children in each of 2 generations.
	assert.Equal(t, 20.0, testutil.ToFloat64(evaluationsTotal)-evaluationsBefore)
	assert.Equal(t, pop.Best().Fitness, testutil.ToFloat64(bestFitness))
	assert.Zero(t, testutil.ToFloat64(penalizedMembers))
}
