package api

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var solveDurationSeconds = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "planengine",
	Name:      "solve_duration_seconds",
	Help:      "Wall-clock duration of the most recent solve.",
})

var solveObjectiveValue = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "planengine",
	Name:      "solve_objective_value",
	Help:      "Objective value of the most recent solve.",
})

var solveVariableCount = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "planengine",
	Name:      "solve_variable_count",
	Help:      "Number of decision variables in the most recently built model.",
})

var solveConstraintCount = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "planengine",
	Name:      "solve_constraint_count",
	Help:      "Number of constraints in the most recently built model.",
})

var validationIssueCount = promauto.NewGaugeVec(prometheus.GaugeOpts{
	Namespace: "planengine",
	Name:      "validation_issue_count",
	Help:      "Number of validation issues found in the most recent run, by severity.",
}, []string{"severity"})
