package domain

import "math"

// CohortState is the temperature state of a batch of product.
type CohortState string

const (
	StateFrozen  CohortState = "frozen"
	StateAmbient CohortState = "ambient"
	StateThawed  CohortState = "thawed"
)

// Valid reports whether s is one of the three recognized states (I2).
func (s CohortState) Valid() bool {
	switch s {
	case StateFrozen, StateAmbient, StateThawed:
		return true
	default:
		return false
	}
}

// Product is a SKU with shelf-life parameters and a production quantum.
type Product struct {
	ID                     string
	SKU                    string
	Name                   string
	UnitsPerMix            int // production must be an integer multiple of this
	AmbientShelfLifeDays   int
	FrozenShelfLifeDays    int
	ThawedShelfLifeDays    int
	MinAcceptableShelfLife int // customer acceptance floor, in days
}

// ShelfLifeDays returns the shelf life, in days, for the product in a given
// state.
func (p Product) ShelfLifeDays(state CohortState) int {
	switch state {
	case StateFrozen:
		return p.FrozenShelfLifeDays
	case StateAmbient:
		return p.AmbientShelfLifeDays
	case StateThawed:
		return p.ThawedShelfLifeDays
	default:
		return 0
	}
}

// RoundToMix rounds a demanded unit quantity up to the nearest multiple of
// UnitsPerMix — the round-up policy for demand coverage. A UnitsPerMix of
// 1 (or less) makes this a no-op, reducing mix-based production to plain
// continuous production.
func (p Product) RoundToMix(units float64) float64 {
	if p.UnitsPerMix <= 1 {
		return units
	}
	mix := float64(p.UnitsPerMix)
	return math.Ceil(units/mix) * mix
}
