// Package solution defines the decided-plan types a solved Model is
// extracted into, plus the material-balance checker that verifies a
// Solution's flows are internally consistent.
package solution

import (
	"fmt"
	"sort"
	"time"

	"github.com/planengine/planengine/internal/domain"
)

// Status reports the outcome of a solve attempt.
type Status string

const (
	StatusOptimal    Status = "optimal"
	StatusFeasible   Status = "feasible"
	StatusInfeasible Status = "infeasible"
	StatusTimeout    Status = "timeout"
	StatusError      Status = "error"
)

// ProductionBatch is a decided production quantity for one SKU on one date.
type ProductionBatch struct {
	ID             string
	ProductID      string
	NodeID         string
	ProductionDate time.Time
	Quantity       float64
	IsStartDay     bool // product_start=1 — first SKU produced that day (changeover)
}

// ShipmentDecision is a decided shipment of one cohort along one route leg.
type ShipmentDecision struct {
	ID                string
	ProductID         string
	OriginNodeID      string
	DestinationNodeID string
	ProductionDate    time.Time
	DepartureDate     time.Time
	DeliveryDate      time.Time
	DeliveredState    domain.CohortState
	Quantity          float64
	RoutePath         []string
	CostPerUnit       float64
}

// InventoryLevel is a decided end-of-day inventory holding for one cohort.
type InventoryLevel struct {
	NodeID         string
	ProductID      string
	ProductionDate time.Time
	CurrentDate    time.Time
	State          domain.CohortState
	Quantity       float64
}

// ShortageUnit records unmet demand at a (node, product, date).
type ShortageUnit struct {
	NodeID    string
	ProductID string
	Date      time.Time
	Quantity  float64
}

// Solution is the fully extracted outcome of one planning run.
type Solution struct {
	Status            Status
	ObjectiveValue    float64
	ProductionBatches []ProductionBatch
	Shipments         []ShipmentDecision
	Inventory         []InventoryLevel
	Shortages         []ShortageUnit
	SolveDuration     time.Duration
	VariableCount     int
	ConstraintCount   int
	MIPGap            float64
}

// TotalProduced sums every production batch's quantity.
func (s Solution) TotalProduced() float64 {
	var total float64
	for _, b := range s.ProductionBatches {
		total += b.Quantity
	}
	return total
}

// TotalShipped sums every shipment's quantity.
func (s Solution) TotalShipped() float64 {
	var total float64
	for _, sh := range s.Shipments {
		total += sh.Quantity
	}
	return total
}

// TotalShortage sums every shortage quantity.
func (s Solution) TotalShortage() float64 {
	var total float64
	for _, sh := range s.Shortages {
		total += sh.Quantity
	}
	return total
}

// BalanceViolation describes a (node, product, date, state) where inflow did
// not equal outflow plus ending inventory.
type BalanceViolation struct {
	NodeID    string
	ProductID string
	Date      time.Time
	State     domain.CohortState
	Inflow    float64
	Outflow   float64
	Delta     float64
}

func (v BalanceViolation) Error() string {
	return fmt.Sprintf("material balance violated at node=%s product=%s date=%s state=%s: inflow=%.4f outflow=%.4f delta=%.4f",
		v.NodeID, v.ProductID, v.Date.Format("2006-01-02"), v.State, v.Inflow, v.Outflow, v.Delta)
}

const balanceTolerance = 1e-6

// cohortKey identifies one production cohort's trajectory through the
// network — the same grouping the cohort indexer uses, minus current_date.
type cohortKey struct {
	nodeID, productID string
	productionDate    string
	state             domain.CohortState
}

// cohortEvent is a signed quantity change to a cohort trajectory on a date:
// positive for inflow (production, arrival), negative for outflow (departure).
type cohortEvent struct {
	date  time.Time
	delta float64
}

// CheckMaterialBalance verifies, for every production cohort trajectory
// (node, product, production_date, state) the solution touches, that the
// running sum of signed events (production and shipment arrivals as inflow,
// shipment departures as outflow) up to and including each reported
// InventoryLevel snapshot equals that snapshot's quantity, within
// floating-point tolerance. This is the test for "does every unit in the
// solution go somewhere" — a cohort whose events imply more or less stock
// than the extractor reported holding is a bug in extraction. Returns every
// violation found rather than stopping at the first.
func CheckMaterialBalance(s Solution) []BalanceViolation {
	events := make(map[cohortKey][]cohortEvent)
	snapshots := make(map[cohortKey][]InventoryLevel)

	add := func(k cohortKey, date time.Time, delta float64) {
		events[k] = append(events[k], cohortEvent{date: date, delta: delta})
	}

	for _, b := range s.ProductionBatches {
		k := cohortKey{nodeID: b.NodeID, productID: b.ProductID,
			productionDate: b.ProductionDate.Format("2006-01-02"), state: domain.StateAmbient}
		add(k, b.ProductionDate, b.Quantity)
	}
	for _, sh := range s.Shipments {
		prodKey := sh.ProductionDate.Format("2006-01-02")

		departDate := sh.DepartureDate
		if departDate.IsZero() {
			departDate = sh.DeliveryDate
		}
		originKey := cohortKey{nodeID: sh.OriginNodeID, productID: sh.ProductID,
			productionDate: prodKey, state: sh.DeliveredState}
		add(originKey, departDate, -sh.Quantity)

		destKey := cohortKey{nodeID: sh.DestinationNodeID, productID: sh.ProductID,
			productionDate: prodKey, state: sh.DeliveredState}
		add(destKey, sh.DeliveryDate, sh.Quantity)
	}
	for _, inv := range s.Inventory {
		k := cohortKey{nodeID: inv.NodeID, productID: inv.ProductID,
			productionDate: inv.ProductionDate.Format("2006-01-02"), state: inv.State}
		snapshots[k] = append(snapshots[k], inv)
	}

	trajectories := make(map[cohortKey]bool, len(events)+len(snapshots))
	for k := range events {
		trajectories[k] = true
	}
	for k := range snapshots {
		trajectories[k] = true
	}

	var violations []BalanceViolation
	for k := range trajectories {
		snaps := snapshots[k]
		sort.Slice(snaps, func(i, j int) bool { return snaps[i].CurrentDate.Before(snaps[j].CurrentDate) })
		evs := events[k]
		sort.Slice(evs, func(i, j int) bool { return evs[i].date.Before(evs[j].date) })

		var running float64
		ei := 0
		for _, snap := range snaps {
			for ei < len(evs) && !evs[ei].date.After(snap.CurrentDate) {
				running += evs[ei].delta
				ei++
			}
			delta := running - snap.Quantity
			if delta > balanceTolerance || delta < -balanceTolerance {
				violations = append(violations, BalanceViolation{
					NodeID: k.nodeID, ProductID: k.productID,
					Date: snap.CurrentDate, State: k.state,
					Inflow: running, Outflow: snap.Quantity, Delta: delta,
				})
			}
		}
		// Any events left unconsumed after the last snapshot represent
		// quantity the extractor never accounted for as held inventory —
		// e.g. produced or arrived units that were neither shipped onward
		// nor reported as ending stock.
		if ei < len(evs) {
			var accountedFor float64
			if len(snaps) > 0 {
				accountedFor = snaps[len(snaps)-1].Quantity
			}
			leftover := running - accountedFor
			var lastDate time.Time
			for ; ei < len(evs); ei++ {
				leftover += evs[ei].delta
				lastDate = evs[ei].date
			}
			if leftover > balanceTolerance || leftover < -balanceTolerance {
				violations = append(violations, BalanceViolation{
					NodeID: k.nodeID, ProductID: k.productID,
					Date: lastDate, State: k.state,
					Inflow: leftover, Outflow: 0, Delta: leftover,
				})
			}
		}
	}
	return violations
}
