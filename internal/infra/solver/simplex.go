package solver

import (
	"math"

	"github.com/planengine/planengine/internal/planning/model"
)

// boundless marks a variable bound as "no practical ceiling" — model.Build
// uses math.MaxFloat64 for unbounded-above continuous variables, which the
// tableau below must not try to turn into an explicit row.
const boundless = 1e15

const bigM = 1e7
const simplexEpsilon = 1e-7
const maxSimplexIterations = 5000

// lpResult is the outcome of one LP relaxation solve, in the model's
// original variable space (not the shifted y-space the tableau works in).
type lpResult struct {
	feasible  bool
	values    []float64
	objective float64
}

// solveLP solves the LP relaxation of m — every Integer/Binary variable
// treated as Continuous — restricted to [lower[i], upper[i]] per variable,
// via a shift to non-negative variables (y = x - lower) followed by a
// two-phase-equivalent Big-M tableau simplex. Returns feasible=false if the
// relaxation is infeasible or unbounded.
func solveLP(m *model.Model, lower, upper []float64) lpResult {
	n := len(m.Variables)

	cost := make([]float64, n)
	for _, t := range m.Objective.Terms {
		cost[t.VarIndex] += t.Coeff
	}

	type row struct {
		coeffs []float64
		sense  model.Sense
		rhs    float64
	}
	rows := make([]row, 0, len(m.Constraints)+n)

	for _, c := range m.Constraints {
		coeffs := make([]float64, n)
		for _, t := range c.Terms {
			coeffs[t.VarIndex] += t.Coeff
		}
		rhs := c.RHS
		for i := 0; i < n; i++ {
			if coeffs[i] != 0 && lower[i] != 0 {
				rhs -= coeffs[i] * lower[i]
			}
		}
		rows = append(rows, row{coeffs: coeffs, sense: c.Sense, rhs: rhs})
	}
	for i := 0; i < n; i++ {
		if upper[i] < boundless {
			coeffs := make([]float64, n)
			coeffs[i] = 1
			rows = append(rows, row{coeffs: coeffs, sense: model.LE, rhs: upper[i] - lower[i]})
		}
	}

	// Normalize every row to a non-negative RHS (required for the Big-M
	// basic feasible start below).
	for ri := range rows {
		if rows[ri].rhs < 0 {
			for i := range rows[ri].coeffs {
				rows[ri].coeffs[i] = -rows[ri].coeffs[i]
			}
			rows[ri].rhs = -rows[ri].rhs
			switch rows[ri].sense {
			case model.LE:
				rows[ri].sense = model.GE
			case model.GE:
				rows[ri].sense = model.LE
			}
		}
	}

	numRows := len(rows)
	slackCol := make([]int, numRows)
	artCol := make([]int, numRows)
	col := n
	for ri, r := range rows {
		switch r.sense {
		case model.LE:
			slackCol[ri] = col
			col++
			artCol[ri] = -1
		case model.GE:
			slackCol[ri] = col
			col++
			artCol[ri] = col
			col++
		case model.EQ:
			slackCol[ri] = -1
			artCol[ri] = col
			col++
		}
	}
	totalCols := col

	hasArtificial := false
	for _, a := range artCol {
		if a >= 0 {
			hasArtificial = true
			break
		}
	}

	tab := make([][]float64, numRows+1)
	for i := range tab {
		tab[i] = make([]float64, totalCols+1)
	}
	basis := make([]int, numRows)

	for ri, r := range rows {
		for i := 0; i < n; i++ {
			tab[ri][i] = r.coeffs[i]
		}
		switch r.sense {
		case model.LE:
			tab[ri][slackCol[ri]] = 1
			basis[ri] = slackCol[ri]
		case model.GE:
			tab[ri][slackCol[ri]] = -1
			tab[ri][artCol[ri]] = 1
			basis[ri] = artCol[ri]
		case model.EQ:
			tab[ri][artCol[ri]] = 1
			basis[ri] = artCol[ri]
		}
		tab[ri][totalCols] = r.rhs
	}

	for i := 0; i < n; i++ {
		tab[numRows][i] = cost[i]
	}
	for _, a := range artCol {
		if a >= 0 {
			tab[numRows][a] = bigM
		}
	}

	// Price out the initial basis so the objective row holds reduced costs
	// relative to the starting basic feasible solution.
	for ri := 0; ri < numRows; ri++ {
		coeff := tab[numRows][basis[ri]]
		if coeff == 0 {
			continue
		}
		for cj := 0; cj <= totalCols; cj++ {
			tab[numRows][cj] -= coeff * tab[ri][cj]
		}
	}

	for iter := 0; iter < maxSimplexIterations; iter++ {
		enter := -1
		best := -simplexEpsilon
		for cj := 0; cj < totalCols; cj++ {
			if tab[numRows][cj] < best {
				best = tab[numRows][cj]
				enter = cj
			}
		}
		if enter == -1 {
			break
		}

		leave := -1
		bestRatio := math.Inf(1)
		for ri := 0; ri < numRows; ri++ {
			if tab[ri][enter] <= simplexEpsilon {
				continue
			}
			ratio := tab[ri][totalCols] / tab[ri][enter]
			if ratio < bestRatio-simplexEpsilon {
				bestRatio = ratio
				leave = ri
			}
		}
		if leave == -1 {
			return lpResult{feasible: false} // unbounded
		}

		pivot(tab, leave, enter)
		basis[leave] = enter
	}

	if hasArtificial {
		for ri, b := range basis {
			if artCol[ri] >= 0 && b == artCol[ri] && tab[ri][totalCols] > simplexEpsilon {
				return lpResult{feasible: false}
			}
		}
	}

	y := make([]float64, n)
	for ri, b := range basis {
		if b < n {
			y[b] = tab[ri][totalCols]
		}
	}

	x := make([]float64, n)
	obj := 0.0
	for i := 0; i < n; i++ {
		x[i] = y[i] + lower[i]
		obj += cost[i] * x[i]
	}

	return lpResult{feasible: true, values: x, objective: obj}
}

func pivot(tab [][]float64, pr, pc int) {
	pv := tab[pr][pc]
	for cj := range tab[pr] {
		tab[pr][cj] /= pv
	}
	for ri := range tab {
		if ri == pr {
			continue
		}
		factor := tab[ri][pc]
		if factor == 0 {
			continue
		}
		for cj := range tab[ri] {
			tab[ri][cj] -= factor * tab[pr][cj]
		}
	}
}
