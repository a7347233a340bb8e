// Package planner wires every planning stage — validate, enumerate routes,
// build cohort indexes, detect gates, build the model, warmstart, solve,
// extract, cost — into a single ordered pipeline: validator -> route
// enumeration -> cohort indexing -> feature-gate inspection -> variable
// emission -> constraint emission -> objective -> (optional warmstart
// application) -> solve -> extraction.
package planner

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/planengine/planengine/internal/domain"
	"github.com/planengine/planengine/internal/infra/observability"
	"github.com/planengine/planengine/internal/infra/solver"
	"github.com/planengine/planengine/internal/infra/sqlite"
	"github.com/planengine/planengine/internal/planning/cohort"
	"github.com/planengine/planengine/internal/planning/cost"
	"github.com/planengine/planengine/internal/planning/model"
	"github.com/planengine/planengine/internal/planning/network"
	"github.com/planengine/planengine/internal/planning/solution"
	"github.com/planengine/planengine/internal/planning/validate"
	"github.com/planengine/planengine/internal/planning/warmstart"
)

// Config controls one Planner's behavior across runs.
type Config struct {
	EngineConfig domain.Config
	// Persist, when true and DB is non-nil, writes every successful Run's
	// solution and issues to sqlite.
	Persist bool
}

// Result is everything one Run produces: the validator's findings, the
// extracted plan (empty if validation blocked the run), and its cost
// breakdown (zero if the solve did not reach a usable solution).
type Result struct {
	PlanID     string
	Validation validate.Result
	Solution   solution.Solution
	Costs      cost.TotalBreakdown
}

// Planner runs the full pipeline over one Instance at a time. It owns no
// solver goroutines itself; Solve is whatever the injected solver.Solver
// does.
type Planner struct {
	mu     sync.RWMutex
	cfg    Config
	solver solver.Solver
	db     *sqlite.DB
	tracer *observability.Tracer

	runs   int64
	failed int64
}

// New constructs a Planner bound to a Config, a Solver backend, and an
// optional persistence layer (nil disables persistence regardless of
// cfg.Persist).
func New(cfg Config, sv solver.Solver, db *sqlite.DB) *Planner {
	return &Planner{
		cfg:    cfg,
		solver: sv,
		db:     db,
		tracer: observability.NewTracer(observability.DefaultTracerConfig()),
	}
}

// Spans returns the most recent pipeline-stage spans recorded across every
// Run this Planner has executed, newest last. limit<=0 returns all of them.
func (p *Planner) Spans(limit int) []observability.Span {
	return p.tracer.Spans(limit)
}

// Run executes the full pipeline for one Instance. A critical validation
// issue halts before model construction and returns a Result carrying only
// the validation findings; any other validation issue is advisory and the
// run proceeds.
func (p *Planner) Run(ctx context.Context, planID string, inst domain.Instance) (Result, error) {
	ctx = observability.WithTraceID(ctx, planID)
	runSpan := p.tracer.StartSpan(ctx, "planner.run", map[string]string{"plan_id": planID})
	var runErr error
	defer func() { p.tracer.EndSpan(runSpan, runErr) }()

	validateSpan := p.tracer.StartSpan(ctx, "planner.validate", nil)
	vr := validate.Run(inst, p.cfg.EngineConfig)
	p.tracer.EndSpan(validateSpan, nil)
	if vr.HasCritical() {
		p.recordFailure()
		log.Printf("[planner] plan %s blocked: %d critical issue(s)", planID, countCritical(vr))
		return Result{PlanID: planID, Validation: vr}, nil
	}

	routeSpan := p.tracer.StartSpan(ctx, "planner.enumerate_routes", nil)
	destinations := demandNodeIDs(inst)
	g := network.Build(inst.Nodes, inst.Routes)
	enumerated, err := network.EnumeratePaths(ctx, g, inst.ManufacturingNodeID, destinations, routeLimit(p.cfg.EngineConfig))
	p.tracer.EndSpan(routeSpan, err)
	if err != nil {
		p.recordFailure()
		runErr = fmt.Errorf("enumerate routes: %w", err)
		return Result{}, runErr
	}

	pathsByDest := make(map[string][]network.Path, len(enumerated))
	for _, er := range enumerated {
		pathsByDest[er.DestinationNodeID] = er.Paths
	}

	buildSpan := p.tracer.StartSpan(ctx, "planner.build_model", nil)
	idx := cohort.Build(inst, pathsByDest, p.cfg.EngineConfig)
	gates := model.DetectGates(inst)
	m := model.Build(inst, idx, gates, p.cfg.EngineConfig)
	p.tracer.EndSpan(buildSpan, nil)

	var hints map[string]float64
	if p.cfg.EngineConfig.UseWarmstart {
		hints = warmstart.Generate(inst)
	}

	solveSpan := p.tracer.StartSpan(ctx, "planner.solve", map[string]string{"solver": p.cfg.EngineConfig.SolverName})
	start := time.Now()
	raw, err := p.solver.Solve(m, p.cfg.EngineConfig, hints)
	p.tracer.EndSpan(solveSpan, err)
	if err != nil {
		p.recordFailure()
		runErr = fmt.Errorf("solve: %w", err)
		return Result{}, runErr
	}
	log.Printf("[planner] plan %s solved status=%s nodes=%d in %s", planID, raw.Status, raw.NodesExplored, time.Since(start))

	sol := solution.Extract(m, idx, inst, solution.RawResult{
		Status:         solution.Status(raw.Status),
		ObjectiveValue: raw.ObjectiveValue,
		Values:         raw.Values,
		Duration:       raw.Duration,
		MIPGap:         raw.MIPGap,
	})

	costSpan := p.tracer.StartSpan(ctx, "planner.cost_breakdown", nil)
	calc := cost.NewCalculator(inst.Costs, inst.LaborCalendar, p.cfg.EngineConfig.StrictValidation)
	breakdown, err := calc.CalculateTotal(sol, nil)
	p.tracer.EndSpan(costSpan, err)
	if err != nil {
		p.recordFailure()
		runErr = fmt.Errorf("cost breakdown: %w", err)
		return Result{}, runErr
	}

	p.recordSuccess()

	if p.cfg.Persist && p.db != nil {
		if err := p.db.InsertPlan(planID, inst.Window, sol); err != nil {
			runErr = fmt.Errorf("persist plan: %w", err)
			return Result{}, runErr
		}
		if err := p.db.InsertPlanIssues(planID, vr.Issues); err != nil {
			runErr = fmt.Errorf("persist plan issues: %w", err)
			return Result{}, runErr
		}
	}

	return Result{PlanID: planID, Validation: vr, Solution: sol, Costs: breakdown}, nil
}

// Stats is a snapshot of how many runs a Planner has completed and failed.
type Stats struct {
	Runs   int64
	Failed int64
}

// Stats returns the Planner's run counters.
func (p *Planner) Stats() Stats {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return Stats{Runs: p.runs, Failed: p.failed}
}

func (p *Planner) recordSuccess() {
	p.mu.Lock()
	p.runs++
	p.mu.Unlock()
}

func (p *Planner) recordFailure() {
	p.mu.Lock()
	p.runs++
	p.failed++
	p.mu.Unlock()
}

func demandNodeIDs(inst domain.Instance) []string {
	var ids []string
	for _, n := range inst.Nodes {
		if n.Capabilities.HasDemand {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

func routeLimit(cfg domain.Config) int {
	if cfg.MaxRoutesPerDestination <= 0 {
		return 1
	}
	return cfg.MaxRoutesPerDestination
}

func countCritical(vr validate.Result) int {
	n := 0
	for _, issue := range vr.Issues {
		if issue.Severity == validate.Critical {
			n++
		}
	}
	return n
}
