package model

import "github.com/planengine/planengine/internal/domain"

// Gates records which conditional structural reductions are active for a
// given instance. A pre-build inspection flips these before any variable
// is emitted, as an explicit, named struct rather than scattering boolean
// checks through the builder.
type Gates struct {
	PalletTrackingFrozen  bool
	PalletTrackingAmbient bool // also covers thawed — same state-granularity precedence as CostStructure
	MixBasedProduction    bool
	BinarySKUSelection    bool
	FreshnessIncentive    bool
	FixedLaborSunkCost    bool
}

// DetectGates inspects the cost structure, product set, and labor calendar
// to decide which structural reductions apply.
func DetectGates(inst domain.Instance) Gates {
	g := Gates{
		PalletTrackingFrozen:  inst.Costs.PalletCostFrozen.Active(),
		PalletTrackingAmbient: inst.Costs.PalletCostAmbient.Active(),
		FreshnessIncentive:    inst.Costs.FreshnessIncentiveWeight > 0,
		BinarySKUSelection:    inst.Costs.ChangeoverCostPerStart > 0,
	}
	for _, p := range inst.Products {
		if p.UnitsPerMix > 1 {
			g.MixBasedProduction = true
			break
		}
	}
	for _, day := range inst.LaborCalendar {
		if day.IsFixedDay && day.FixedHours > 0 {
			g.FixedLaborSunkCost = true
			break
		}
	}
	return g
}
