// Package solver implements the infrastructure side of the engine's
// solver-agnostic boundary: a Solver interface the planning model depends
// on, plus one reference implementation (a branch-and-bound MIP solver
// over a tableau LP relaxation). Any other backend — a commercial MIP
// solver, an external solver service — plugs in behind the same interface
// without the model package knowing the difference.
package solver

import (
	"time"

	"github.com/planengine/planengine/internal/domain"
	"github.com/planengine/planengine/internal/planning/model"
)

// Status mirrors the terminal states a solve can reach.
type Status string

const (
	StatusOptimal    Status = "optimal"
	StatusFeasible   Status = "feasible"
	StatusInfeasible Status = "infeasible"
	StatusTimeout    Status = "timeout"
)

// Result is a solved model: one value per model.Variable, indexed the same
// way, plus the objective value and the search's terminal status.
type Result struct {
	Status         Status
	ObjectiveValue float64
	Values         []float64
	Duration       time.Duration
	MIPGap         float64
	NodesExplored  int
}

// Solver solves a built Model and returns variable values. Implementations
// own any internal parallelism; the engine itself never spawns solver
// goroutines. hints optionally seeds the search with a partial assignment
// of variable name to value; a Solver is free to ignore hints it cannot
// use, and must silently skip any hint that names a variable the Model
// does not have.
type Solver interface {
	Solve(m *model.Model, cfg domain.Config, hints map[string]float64) (Result, error)
}
