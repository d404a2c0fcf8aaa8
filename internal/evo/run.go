package evo

import (
	"context"
	"fmt"
)

type GenerationDiagnostics struct {
	Generation  int     `json:"generation"`
	BestFitness float64 `json:"best_fitness"`
	MeanFitness float64 `json:"mean_fitness"`
	MinFitness  float64 `json:"min_fitness"`
	EliteCount  int     `json:"elite_count"`
	Penalized   int     `json:"penalized"`
}

// Diagnostics summarizes the current generation. Penalized members are
// excluded from the mean.
func (p *Population[C]) Diagnostics() GenerationDiagnostics {
	d := GenerationDiagnostics{
		Generation:  p.generation,
		BestFitness: p.members[len(p.members)-1].Fitness,
		MinFitness:  p.members[0].Fitness,
		EliteCount:  p.EliteCount(),
	}
	sum, counted := 0.0, 0
	for _, m := range p.members {
		if m.Fitness == WorstFitness {
			d.Penalized++
			continue
		}
		sum += m.Fitness
		counted++
	}
	if counted > 0 {
		d.MeanFitness = sum / float64(counted)
	} else {
		d.MeanFitness = WorstFitness
	}
	return d
}

type RunConfig struct {
	Generations int
	// FitnessGoal, when set, stops the run once the best fitness reaches it.
	FitnessGoal *float64
}

type RunResult[C any] struct {
	BestByGeneration      []float64
	GenerationDiagnostics []GenerationDiagnostics
	Best                  Scored[C]
	GoalReached           bool
}

// Observer is called with the diagnostics of the initial population and of
// every generation. An error aborts the run.
type Observer func(GenerationDiagnostics) error

// Run evolves up to cfg.Generations generations.
func (p *Population[C]) Run(ctx context.Context, cfg RunConfig, observer Observer) (RunResult[C], error) {
	if cfg.Generations < 0 {
		return RunResult[C]{}, fmt.Errorf("generations must be >= 0")
	}
	result := RunResult[C]{
		BestByGeneration:      make([]float64, 0, cfg.Generations+1),
		GenerationDiagnostics: make([]GenerationDiagnostics, 0, cfg.Generations+1),
	}
	record := func() error {
		d := p.Diagnostics()
		result.BestByGeneration = append(result.BestByGeneration, d.BestFitness)
		result.GenerationDiagnostics = append(result.GenerationDiagnostics, d)
		if observer != nil {
			if err := observer(d); err != nil {
				return fmt.Errorf("observe generation %d: %w", d.Generation, err)
			}
		}
		return nil
	}
	reached := func() bool {
		return cfg.FitnessGoal != nil && p.Best().Fitness >= *cfg.FitnessGoal
	}

	p.logger.Info("evolution started",
		"size", p.cfg.Size,
		"generations", cfg.Generations,
		"tournament", p.cfg.TournamentSize,
		"elite", p.EliteCount(),
	)
	if err := record(); err != nil {
		return RunResult[C]{}, err
	}
	for gen := 0; gen < cfg.Generations && !reached(); gen++ {
		if err := ctx.Err(); err != nil {
			return RunResult[C]{}, err
		}
		p.Evolve()
		if err := record(); err != nil {
			return RunResult[C]{}, err
		}
	}

	result.Best = p.Best()
	result.GoalReached = reached()
	p.logger.Info("evolution finished",
		"generation", p.generation,
		"best", result.Best.Fitness,
		"goal_reached", result.GoalReached,
	)
	return result, nil
}
