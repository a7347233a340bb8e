// Package model builds the solver-agnostic MIP model: variables, linear
// constraints, and the objective, all represented as plain data so any
// Solver implementation can consume them without this package knowing
// anything about a concrete solver backend.
package model

import (
	"fmt"
	"math"

	"github.com/planengine/planengine/internal/domain"
	"github.com/planengine/planengine/internal/planning/cohort"
)

// VarKind is a decision variable's domain.
type VarKind int

const (
	Continuous VarKind = iota
	Integer
	Binary
)

// Variable is one decision variable, addressed by its position in
// Model.Variables (its Index).
type Variable struct {
	Index int
	Name  string
	Kind  VarKind
	Lower float64
	Upper float64 // math.MaxFloat64 (the builder's inf) means unbounded above
}

// Sense is a linear constraint's relational operator.
type Sense int

const (
	LE Sense = iota
	GE
	EQ
)

// Term is one coefficient·variable pair in a linear expression.
type Term struct {
	VarIndex int
	Coeff    float64
}

// Constraint is one linear constraint: Σ Terms Sense RHS.
type Constraint struct {
	Name  string
	Terms []Term
	Sense Sense
	RHS   float64
}

// Objective is a linear minimization objective.
type Objective struct {
	Terms []Term
}

// Model is the solver-agnostic MIP: variables, constraints, and objective
// as data. The domain package stays infrastructure-free; Model is the
// pure data boundary a Solver implementation consumes.
type Model struct {
	Variables   []Variable
	Constraints []Constraint
	Objective   Objective
	Gates       Gates

	nameIndex map[string]int
}

// newModel returns an empty Model ready for variable/constraint emission.
func newModel(gates Gates) *Model {
	return &Model{Gates: gates, nameIndex: make(map[string]int)}
}

// addVar registers a new variable and returns its index. A duplicate name
// is a programmer bug in the builder, not a user-facing error — it panics
// with a diagnostic rather than silently overwriting the index.
func (m *Model) addVar(name string, kind VarKind, lower, upper float64) int {
	if _, exists := m.nameIndex[name]; exists {
		panic(fmt.Sprintf("model: duplicate variable name %q — index-set inconsistency in builder", name))
	}
	idx := len(m.Variables)
	m.Variables = append(m.Variables, Variable{Index: idx, Name: name, Kind: kind, Lower: lower, Upper: upper})
	m.nameIndex[name] = idx
	return idx
}

func (m *Model) varIndex(name string) (int, bool) {
	idx, ok := m.nameIndex[name]
	return idx, ok
}

func (m *Model) addConstraint(name string, terms []Term, sense Sense, rhs float64) {
	m.Constraints = append(m.Constraints, Constraint{Name: name, Terms: terms, Sense: sense, RHS: rhs})
}

func (m *Model) addObjectiveTerm(varIdx int, coeff float64) {
	if coeff == 0 {
		return
	}
	m.Objective.Terms = append(m.Objective.Terms, Term{VarIndex: varIdx, Coeff: coeff})
}

// VariableCount and ConstraintCount report the model's size, surfaced in
// the HTTP /metrics endpoint and the extracted Solution.
func (m *Model) VariableCount() int   { return len(m.Variables) }
func (m *Model) ConstraintCount() int { return len(m.Constraints) }

const inf = math.MaxFloat64

// Build constructs the full MIP for an instance and its materialized
// cohort index sets, honoring the gates detected for it. Construction
// follows a strict ordering: production and cohort-flow variables first,
// then demand/shortage, then truck and labor, then the conditional
// blocks, then the objective — so variable identity is stable for
// warmstart lookup regardless of which gates are active.
func Build(inst domain.Instance, idx *cohort.Indexes, gates Gates, cfg domain.Config) *Model {
	m := newModel(gates)
	b := &builder{m: m, inst: inst, idx: idx, cfg: cfg}

	b.emitProductionVars()
	b.emitCohortFlowVars()
	b.emitShortageVars()
	b.emitLaborVars()
	b.emitProductionActivityVars()
	b.emitTruckVars()
	b.emitTruckPalletVars()
	if gates.PalletTrackingFrozen || gates.PalletTrackingAmbient {
		b.emitPalletVars()
	}
	if gates.BinarySKUSelection {
		b.emitSKUSelectionVars()
	}

	b.addProductionBalanceConstraints()
	b.addInventoryContinuityConstraints()
	b.addDemandSatisfactionConstraints()
	b.addTruckCapacityConstraints()
	b.addTruckLoadLinkingConstraints()
	b.addTruckPalletConstraints()
	b.addProductionActivityConstraints()
	b.addLaborHoursConstraints()
	if gates.MixBasedProduction {
		b.addMixIntegralityConstraints()
	}
	if gates.BinarySKUSelection {
		b.addSKUSelectionConstraints()
	}
	if gates.PalletTrackingFrozen || gates.PalletTrackingAmbient {
		b.addPalletLinkingConstraints()
	}

	b.assembleObjective()

	return m
}
