package model

import "time"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// RunRecord summarizes one evolution run. Best is the rendered best
// chromosome, kept for inspection only.
type RunRecord struct {
	VersionedRecord
	ID          string            `json:"id"`
	Kind        string            `json:"kind"`
	Target      string            `json:"target"`
	Params      map[string]string `json:"params"`
	Generations int               `json:"generations"`
	BestFitness float64           `json:"best_fitness"`
	Best        string            `json:"best"`
	GoalReached bool              `json:"goal_reached"`
	StartedAt   time.Time         `json:"started_at"`
	FinishedAt  time.Time         `json:"finished_at"`
}

type GenerationDiagnostics struct {
	Generation  int     `json:"generation"`
	BestFitness float64 `json:"best_fitness"`
	MeanFitness float64 `json:"mean_fitness"`
	MinFitness  float64 `json:"min_fitness"`
	EliteCount  int     `json:"elite_count"`
	Penalized   int     `json:"penalized"`
}
