package storage

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evolve/internal/model"
)

func newInitializedMemoryStore(t *testing.T) *MemoryStore {
	t.Helper()
	store := NewMemoryStore()
	require.NoError(t, store.Init(context.Background()))
	return store
}

func TestMemoryStoreRequiresInit(t *testing.T) {
	store := NewMemoryStore()
	assert.ErrorIs(t, store.SaveRun(context.Background(), sampleRun("run-1")), errNotInitialized)
}

func TestMemoryStoreRunRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newInitializedMemoryStore(t)

	run := sampleRun("run-1")
	require.NoError(t, store.SaveRun(ctx, run))
	run.Params["ga.size"] = "mutated"

	loaded, ok, err := store.GetRun(ctx, "run-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "50", loaded.Params["ga.size"], "stored params aliased caller map")

	_, ok, err = store.GetRun(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Error(t, store.SaveRun(ctx, model.RunRecord{}))
}

func TestMemoryStoreListRunsOrdersByStart(t *testing.T) {
	ctx := context.Background()
	store := newInitializedMemoryStore(t)

	later := sampleRun("b")
	earlier := sampleRun("a")
	earlier.StartedAt = later.StartedAt.Add(-time.Hour)
	for _, run := range []model.RunRecord{later, earlier} {
		require.NoError(t, store.SaveRun(ctx, run))
	}

	runs, err := store.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "a", runs[0].ID)
	assert.Equal(t, "b", runs[1].ID)
}

func TestMemoryStoreFitnessHistoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newInitializedMemoryStore(t)

	input := []float64{-3, -2, -1}
	require.NoError(t, store.SaveFitnessHistory(ctx, "run-1", input))
	input[0] = 100

	output, ok, err := store.GetFitnessHistory(ctx, "run-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, []float64{-3, -2, -1}, output)
	output[1] = 100

	again, _, _ := store.GetFitnessHistory(ctx, "run-1")
	assert.Equal(t, -2.0, again[1], "returned history aliased stored slice")
}

func TestMemoryStoreGenerationDiagnosticsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newInitializedMemoryStore(t)

	input := []model.GenerationDiagnostics{
		{Generation: 0, BestFitness: -5, MeanFitness: -7, MinFitness: -10, EliteCount: 2},
		{Generation: 1, BestFitness: -4, MeanFitness: -6, MinFitness: -10, EliteCount: 2, Penalized: 3},
	}
	require.NoError(t, store.SaveGenerationDiagnostics(ctx, "run-1", input))

	output, ok, err := store.GetGenerationDiagnostics(ctx, "run-1")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, input, output)

	_, ok, err = store.GetGenerationDiagnostics(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}
