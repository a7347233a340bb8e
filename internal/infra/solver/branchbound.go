package solver

import (
	"container/heap"
	"math"
	"time"

	"github.com/planengine/planengine/internal/domain"
	"github.com/planengine/planengine/internal/planning/model"
)

const integerTolerance = 1e-6
const defaultMIPGap = 0.0001
const maxNodesExplored = 20000

// ReferenceSolver is the engine's one concrete Solver backend: a
// branch-and-bound search over the LP relaxation in simplex.go. The
// frontier is a small binary min-heap ordered by each node's LP bound,
// since best-first MIP search needs to compare continuous relaxation
// values rather than discrete priority levels.
type ReferenceSolver struct{}

type bbNode struct {
	lower, upper []float64
	bound        float64
}

type bbFrontier []bbNode

func (f bbFrontier) Len() int           { return len(f) }
func (f bbFrontier) Less(i, j int) bool { return f[i].bound < f[j].bound }
func (f bbFrontier) Swap(i, j int)      { f[i], f[j] = f[j], f[i] }

func (f *bbFrontier) Push(x any) {
	*f = append(*f, x.(bbNode))
}

func (f *bbFrontier) Pop() any {
	old := *f
	n := len(old)
	item := old[n-1]
	*f = old[:n-1]
	return item
}

// Solve runs branch-and-bound to optimality, a time limit, or a node cap,
// whichever comes first; the engine passes through time_limit_seconds and
// mip_gap and never spawns its own solver goroutines. hints, when
// given, are used only to seed an initial incumbent (a hinted assignment
// that turns out integer-feasible tightens the first pruning bound); the
// search itself always explores the full unrestricted tree, so an invalid
// or infeasible hint set degrades to no warmstart rather than a wrong
// answer.
func (ReferenceSolver) Solve(m *model.Model, cfg domain.Config, hints map[string]float64) (Result, error) {
	start := time.Now()
	timeLimit := time.Duration(cfg.TimeLimitSeconds * float64(time.Second))
	if timeLimit <= 0 {
		timeLimit = 10 * time.Minute
	}

	n := len(m.Variables)
	baseLower := make([]float64, n)
	baseUpper := make([]float64, n)
	for i, v := range m.Variables {
		baseLower[i] = v.Lower
		baseUpper[i] = v.Upper
	}

	root := solveLP(m, baseLower, baseUpper)
	if !root.feasible {
		return Result{Status: StatusInfeasible, Duration: time.Since(start)}, nil
	}

	frontier := &bbFrontier{{lower: baseLower, upper: baseUpper, bound: root.objective}}
	heap.Init(frontier)

	var incumbent *lpResult
	incumbentObjective := math.Inf(1)
	nodesExplored := 0

	if len(hints) > 0 {
		if hinted, ok := solveHinted(m, baseLower, baseUpper, hints); ok {
			incumbent = &hinted
			incumbentObjective = hinted.objective
		}
	}

	for frontier.Len() > 0 {
		if time.Since(start) > timeLimit || nodesExplored >= maxNodesExplored {
			return finishResult(incumbent, incumbentObjective, StatusTimeout, start, nodesExplored, cfg), nil
		}

		node := heap.Pop(frontier).(bbNode)
		nodesExplored++

		if node.bound >= incumbentObjective-gapTolerance(cfg, incumbentObjective) {
			continue
		}

		lp := solveLP(m, node.lower, node.upper)
		if !lp.feasible || lp.objective >= incumbentObjective-gapTolerance(cfg, incumbentObjective) {
			continue
		}

		branchVar, branchValue, integerFeasible := firstFractional(m, lp.values)
		if integerFeasible {
			if lp.objective < incumbentObjective {
				incumbentObjective = lp.objective
				res := lp
				incumbent = &res
			}
			continue
		}

		floorBound := math.Floor(branchValue)
		ceilBound := math.Ceil(branchValue)

		if floorBound >= node.lower[branchVar] {
			childUpper := append([]float64(nil), node.upper...)
			childUpper[branchVar] = floorBound
			if lpChild := solveLP(m, node.lower, childUpper); lpChild.feasible {
				heap.Push(frontier, bbNode{lower: node.lower, upper: childUpper, bound: lpChild.objective})
			}
		}
		if ceilBound <= node.upper[branchVar] {
			childLower := append([]float64(nil), node.lower...)
			childLower[branchVar] = ceilBound
			if lpChild := solveLP(m, childLower, node.upper); lpChild.feasible {
				heap.Push(frontier, bbNode{lower: childLower, upper: node.upper, bound: lpChild.objective})
			}
		}
	}

	if incumbent == nil {
		return Result{Status: StatusInfeasible, Duration: time.Since(start), NodesExplored: nodesExplored}, nil
	}
	return finishResult(incumbent, incumbentObjective, StatusOptimal, start, nodesExplored, cfg), nil
}

// solveHinted fixes every variable named in hints to its hinted value and
// solves the resulting restricted relaxation. It reports ok=false if the
// fix makes the relaxation infeasible or its solution isn't already
// integer — the caller then falls back to an unseeded search rather than
// trusting a partial or inconsistent hint set.
func solveHinted(m *model.Model, baseLower, baseUpper []float64, hints map[string]float64) (lpResult, bool) {
	byName := make(map[string]int, len(m.Variables))
	for i, v := range m.Variables {
		byName[v.Name] = i
	}

	lower := append([]float64(nil), baseLower...)
	upper := append([]float64(nil), baseUpper...)
	applied := 0
	for name, value := range hints {
		i, ok := byName[name]
		if !ok || value < baseLower[i] || value > baseUpper[i] {
			continue
		}
		lower[i] = value
		upper[i] = value
		applied++
	}
	if applied == 0 {
		return lpResult{}, false
	}

	lp := solveLP(m, lower, upper)
	if !lp.feasible {
		return lpResult{}, false
	}
	if _, _, integerFeasible := firstFractional(m, lp.values); !integerFeasible {
		return lpResult{}, false
	}
	return lp, true
}

func firstFractional(m *model.Model, values []float64) (varIdx int, value float64, integerFeasible bool) {
	for i, v := range m.Variables {
		if v.Kind == model.Continuous {
			continue
		}
		val := values[i]
		frac := val - math.Floor(val)
		if frac > integerTolerance && frac < 1-integerTolerance {
			return i, val, false
		}
	}
	return 0, 0, true
}

func gapTolerance(cfg domain.Config, incumbent float64) float64 {
	if math.IsInf(incumbent, 1) {
		return 0
	}
	gap := cfg.MIPGap
	if gap <= 0 {
		gap = defaultMIPGap
	}
	return gap * math.Abs(incumbent)
}

func finishResult(incumbent *lpResult, objective float64, status Status, start time.Time, nodes int, cfg domain.Config) Result {
	if incumbent == nil {
		return Result{Status: StatusInfeasible, Duration: time.Since(start), NodesExplored: nodes}
	}
	return Result{
		Status:         status,
		ObjectiveValue: objective,
		Values:         incumbent.values,
		Duration:       time.Since(start),
		MIPGap:         cfg.MIPGap,
		NodesExplored:  nodes,
	}
}
