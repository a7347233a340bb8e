package domain

// PalletCost carries the state-specific pallet cost fields: a fixed
// cost per pallet, and a per-pallet-day holding cost.
type PalletCost struct {
	FixedPerPallet float64
	PerPalletDay   float64
}

// Active reports whether pallet tracking should be enabled for this state:
// any non-zero pallet cost activates it.
func (p PalletCost) Active() bool {
	return p.FixedPerPallet > 0 || p.PerPalletDay > 0
}

// CostStructure is the full cost parameterization of a planning instance.
type CostStructure struct {
	ProductionCostPerUnit float64

	TransportCostFrozenPerUnit  float64
	TransportCostAmbientPerUnit float64

	// Legacy per-unit-day storage costs, superseded by PalletCost per state
	// when that state's pallet cost is non-zero.
	StorageCostFrozenPerUnitDay  float64
	StorageCostAmbientPerUnitDay float64

	PalletCostFrozen  PalletCost
	PalletCostAmbient PalletCost // also governs thawed-state pallet cost

	ShortagePenaltyPerUnit float64
	WasteMultiplier        float64

	FreshnessIncentiveWeight float64

	ChangeoverCostPerStart   float64
	ChangeoverWasteUnits     float64
}

// PalletCostFor returns the pallet cost record that applies to a given
// cohort state. Frozen cohorts use PalletCostFrozen; ambient and thawed
// cohorts share PalletCostAmbient — precedence is resolved at the (state)
// granularity, not per-node.
func (c CostStructure) PalletCostFor(state CohortState) PalletCost {
	if state == StateFrozen {
		return c.PalletCostFrozen
	}
	return c.PalletCostAmbient
}

// StorageCostPerUnitDayFor returns the legacy per-unit-day storage cost for
// a state. Only meaningful when pallet tracking is NOT active for that
// state (pallet-based cost takes precedence when non-zero).
func (c CostStructure) StorageCostPerUnitDayFor(state CohortState) float64 {
	if state == StateFrozen {
		return c.StorageCostFrozenPerUnitDay
	}
	return c.StorageCostAmbientPerUnitDay
}

// UsesPalletTracking reports whether pallet-based storage cost should take
// precedence over the legacy per-unit-day cost for a given state.
func (c CostStructure) UsesPalletTracking(state CohortState) bool {
	return c.PalletCostFor(state).Active()
}
