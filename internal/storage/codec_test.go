package storage

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evolve/internal/model"
)

func sampleRun(id string) model.RunRecord {
	return model.RunRecord{
		VersionedRecord: model.VersionedRecord{SchemaVersion: CurrentSchemaVersion, CodecVersion: CurrentCodecVersion},
		ID:              id,
		Kind:            "program",
		Target:          "square",
		Params:          map[string]string{"ga.size": "50"},
		Generations:     10,
		BestFitness:     -1.5,
		Best:            "mov r0, r1",
		StartedAt:       time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		FinishedAt:      time.Date(2026, 1, 2, 3, 4, 9, 0, time.UTC),
	}
}

func TestRunCodecRoundTrip(t *testing.T) {
	run := sampleRun("run-1")
	data, err := EncodeRun(run)
	require.NoError(t, err)
	decoded, err := DecodeRun(data)
	require.NoError(t, err)
	assert.Equal(t, run, decoded)
}

func TestDecodeRunRejectsVersionMismatch(t *testing.T) {
	run := sampleRun("run-1")
	run.SchemaVersion = CurrentSchemaVersion + 1
	data, err := EncodeRun(run)
	require.NoError(t, err)
	_, err = DecodeRun(data)
	assert.ErrorIs(t, err, ErrVersionMismatch)
}

func TestFitnessHistoryCodecKeepsPenaltySentinel(t *testing.T) {
	history := []float64{-math.MaxFloat64, -3.25, 0}
	data, err := EncodeFitnessHistory(history)
	require.NoError(t, err)
	decoded, err := DecodeFitnessHistory(data)
	require.NoError(t, err)
	assert.Equal(t, history, decoded)
}

func TestGenerationDiagnosticsCodecRoundTrip(t *testing.T) {
	diagnostics := []model.GenerationDiagnostics{
		{Generation: 0, BestFitness: -2, MeanFitness: -4, MinFitness: -9, EliteCount: 2, Penalized: 1},
	}
	data, err := EncodeGenerationDiagnostics(diagnostics)
	require.NoError(t, err)
	decoded, err := DecodeGenerationDiagnostics(data)
	require.NoError(t, err)
	assert.Equal(t, diagnostics, decoded)
}
