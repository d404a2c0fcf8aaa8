// Package evolve is the embedding API: it runs regression experiments over
// programs or expression trees and reads back stored run history.
package evolve

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"evolve/internal/config"
	"evolve/internal/evo"
	"evolve/internal/expr"
	"evolve/internal/model"
	"evolve/internal/program"
	"evolve/internal/storage"
	"evolve/internal/task"
)

const (
	KindProgram = "program"
	KindExpr    = "expr"

	defaultDBPath = "evolve.db"

	sampleFrom = -2.0
	sampleTo   = 2.0
)

type Options struct {
	StoreKind string
	DBPath    string
	Logger    *slog.Logger
}

type Client struct {
	store  storage.Store
	logger *slog.Logger

	initOnce sync.Once
	initErr  error
}

type RunRequest struct {
	// Kind selects the chromosome representation: program or expr.
	Kind string
	// Params are layered over config.Defaults.
	Params config.Params
	// Observer, when set, sees every generation as it is recorded.
	Observer evo.Observer
}

type RunSummary struct {
	RunID            string    `json:"run_id"`
	Kind             string    `json:"kind"`
	Target           string    `json:"target"`
	Generations      int       `json:"generations"`
	BestByGeneration []float64 `json:"best_by_generation"`
	FinalBestFitness float64   `json:"final_best_fitness"`
	Best             string    `json:"best"`
	GoalReached      bool      `json:"goal_reached"`
}

type RunsRequest struct {
	Limit int
}

type FitnessHistoryRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

type DiagnosticsRequest struct {
	RunID  string
	Latest bool
	Limit  int
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}
	return &Client{store: store, logger: logger}, nil
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

// Init prepares the store. It is safe to call repeatedly.
func (c *Client) Init(ctx context.Context) error {
	c.initOnce.Do(func() {
		c.initErr = c.store.Init(ctx)
	})
	return c.initErr
}

func (c *Client) Run(ctx context.Context, req RunRequest) (RunSummary, error) {
	if err := c.Init(ctx); err != nil {
		return RunSummary{}, err
	}
	if req.Kind == "" {
		req.Kind = KindProgram
	}
	params := config.Defaults()
	for k, v := range req.Params {
		params[k] = v
	}

	gaCfg, err := evo.ParseConfig(params)
	if err != nil {
		return RunSummary{}, err
	}
	runCfg, err := runConfigFromParams(params)
	if err != nil {
		return RunSummary{}, err
	}
	targetName := params[config.KeyTarget]
	target, err := task.LookupTarget(targetName)
	if err != nil {
		return RunSummary{}, err
	}
	sampleCount, err := intParam(params, config.KeySamples, 1)
	if err != nil {
		return RunSummary{}, err
	}
	samples := task.Grid(target.Func, sampleFrom, sampleTo, sampleCount)

	runID := uuid.NewString()
	logger := c.logger.With("run_id", runID, "kind", req.Kind, "target", targetName)
	started := time.Now().UTC()

	var out outcome
	switch req.Kind {
	case KindProgram:
		species, err := task.NewProgramRegression(params, samples)
		if err != nil {
			return RunSummary{}, err
		}
		out, err = runPopulation[*program.Chromosome](ctx, gaCfg, runCfg, species, logger, req.Observer)
		if err != nil {
			return RunSummary{}, err
		}
	case KindExpr:
		species, err := task.NewExprRegression(params, samples)
		if err != nil {
			return RunSummary{}, err
		}
		out, err = runPopulation[*expr.Tree](ctx, gaCfg, runCfg, species, logger, req.Observer)
		if err != nil {
			return RunSummary{}, err
		}
	default:
		return RunSummary{}, fmt.Errorf("unsupported kind: %s", req.Kind)
	}

	record := model.RunRecord{
		VersionedRecord: model.VersionedRecord{SchemaVersion: storage.CurrentSchemaVersion, CodecVersion: storage.CurrentCodecVersion},
		ID:              runID,
		Kind:            req.Kind,
		Target:          targetName,
		Params:          params,
		Generations:     len(out.history) - 1,
		BestFitness:     out.bestFitness,
		Best:            out.best,
		GoalReached:     out.goalReached,
		StartedAt:       started,
		FinishedAt:      time.Now().UTC(),
	}
	if err := c.store.SaveRun(ctx, record); err != nil {
		return RunSummary{}, fmt.Errorf("save run: %w", err)
	}
	if err := c.store.SaveFitnessHistory(ctx, runID, out.history); err != nil {
		return RunSummary{}, fmt.Errorf("save fitness history: %w", err)
	}
	if err := c.store.SaveGenerationDiagnostics(ctx, runID, out.diagnostics); err != nil {
		return RunSummary{}, fmt.Errorf("save diagnostics: %w", err)
	}

	return RunSummary{
		RunID:            runID,
		Kind:             req.Kind,
		Target:           targetName,
		Generations:      record.Generations,
		BestByGeneration: append([]float64(nil), out.history...),
		FinalBestFitness: out.bestFitness,
		Best:             out.best,
		GoalReached:      out.goalReached,
	}, nil
}

// Runs lists stored runs, most recent first.
func (c *Client) Runs(ctx context.Context, req RunsRequest) ([]model.RunRecord, error) {
	if err := c.Init(ctx); err != nil {
		return nil, err
	}
	if req.Limit <= 0 {
		req.Limit = 20
	}
	runs, err := c.store.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	items := make([]model.RunRecord, 0, min(req.Limit, len(runs)))
	for i := len(runs) - 1; i >= 0 && len(items) < req.Limit; i-- {
		items = append(items, runs[i])
	}
	return items, nil
}

func (c *Client) FitnessHistory(ctx context.Context, req FitnessHistoryRequest) ([]float64, error) {
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}
	runID, err := c.resolveRunID(ctx, req.RunID, req.Latest)
	if err != nil {
		return nil, err
	}
	history, ok, err := c.store.GetFitnessHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("fitness history not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(history) > req.Limit {
		history = history[:req.Limit]
	}
	return append([]float64(nil), history...), nil
}

func (c *Client) Diagnostics(ctx context.Context, req DiagnosticsRequest) ([]model.GenerationDiagnostics, error) {
	if req.Limit < 0 {
		return nil, errors.New("limit must be >= 0")
	}
	runID, err := c.resolveRunID(ctx, req.RunID, req.Latest)
	if err != nil {
		return nil, err
	}
	diagnostics, ok, err := c.store.GetGenerationDiagnostics(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("diagnostics not found for run id: %s", runID)
	}
	if req.Limit > 0 && len(diagnostics) > req.Limit {
		diagnostics = diagnostics[:req.Limit]
	}
	return append([]model.GenerationDiagnostics(nil), diagnostics...), nil
}

func (c *Client) resolveRunID(ctx context.Context, runID string, latest bool) (string, error) {
	if runID != "" && latest {
		return "", errors.New("use either run id or latest")
	}
	if err := c.Init(ctx); err != nil {
		return "", err
	}
	if !latest {
		if runID == "" {
			return "", errors.New("run id or latest is required")
		}
		return runID, nil
	}
	runs, err := c.store.ListRuns(ctx)
	if err != nil {
		return "", err
	}
	if len(runs) == 0 {
		return "", errors.New("no runs available")
	}
	return runs[len(runs)-1].ID, nil
}

type outcome struct {
	history     []float64
	diagnostics []model.GenerationDiagnostics
	bestFitness float64
	best        string
	goalReached bool
}

type renderable[C any] interface {
	evo.Chromosome[C]
	fmt.Stringer
}

func runPopulation[C renderable[C]](ctx context.Context, gaCfg evo.Config, runCfg evo.RunConfig, species evo.Species[C], logger *slog.Logger, observer evo.Observer) (outcome, error) {
	pop, err := evo.New[C](gaCfg, species, evo.WithLogger(logger))
	if err != nil {
		return outcome{}, err
	}
	result, err := pop.Run(ctx, runCfg, observer)
	if err != nil {
		return outcome{}, err
	}
	diagnostics := make([]model.GenerationDiagnostics, 0, len(result.GenerationDiagnostics))
	for _, d := range result.GenerationDiagnostics {
		diagnostics = append(diagnostics, model.GenerationDiagnostics(d))
	}
	return outcome{
		history:     result.BestByGeneration,
		diagnostics: diagnostics,
		bestFitness: result.Best.Fitness,
		best:        result.Best.Chromosome.String(),
		goalReached: result.GoalReached,
	}, nil
}

func runConfigFromParams(params config.Params) (evo.RunConfig, error) {
	generations, err := intParam(params, config.KeyGenerations, 0)
	if err != nil {
		return evo.RunConfig{}, err
	}
	cfg := evo.RunConfig{Generations: generations}
	if raw := strings.TrimSpace(params[config.KeyFitnessGoal]); raw != "" {
		goal, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return evo.RunConfig{}, &evo.ConfigurationError{Key: config.KeyFitnessGoal, Value: raw, Reason: "not a number"}
		}
		cfg.FitnessGoal = &goal
	}
	return cfg, nil
}

func intParam(params config.Params, key string, floor int) (int, error) {
	raw := strings.TrimSpace(params[key])
	if raw == "" {
		return 0, &evo.ConfigurationError{Key: key, Reason: "missing"}
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, &evo.ConfigurationError{Key: key, Value: raw, Reason: "not an integer"}
	}
	if v < floor {
		return 0, &evo.ConfigurationError{Key: key, Value: raw, Reason: fmt.Sprintf("must be >= %d", floor)}
	}
	return v, nil
}
