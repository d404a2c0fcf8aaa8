package evo

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	generationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "evolve",
		Subsystem: "engine",
		Name:      "generations_total",
		Help:      "Generations produced by evolve()",
	})

	evaluationsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "evolve",
		Subsystem: "engine",
		Name:      "evaluations_total",
		Help:      "Fitness evaluations performed",
	})

	bestFitness = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "evolve",
		Subsystem: "engine",
		Name:      "best_fitness",
		Help:      "Fitness of the best chromosome in the latest generation",
	})

	penalizedMembers = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "evolve",
		Subsystem: "engine",
		Name:      "penalized_members",
		Help:      "Members of the latest generation scored at the worst fitness",
	})
)
