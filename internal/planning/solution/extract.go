package solution

import (
	"fmt"
	"strings"
	"time"

	"github.com/planengine/planengine/internal/domain"
	"github.com/planengine/planengine/internal/planning/cohort"
	"github.com/planengine/planengine/internal/planning/model"
)

// RawResult is the solver-agnostic shape Extract reads from: one value per
// model.Variable, indexed the same way Model.Variables is, plus the
// search's terminal outcome. Concrete Solver implementations live in the
// infra layer and return their own result type; the orchestration layer
// that calls both packages is responsible for translating into RawResult,
// keeping this package free of any infra import — extraction stays a
// pure step over plain data.
type RawResult struct {
	Status         Status
	ObjectiveValue float64
	Values         []float64
	Duration       time.Duration
	MIPGap         float64
}

// Extract reads a RawResult's variable values back into a Solution, keyed
// by the same (node, product, production_date, ...) tuples the cohort
// indexes and the constraint builder used to create the variables.
// Variable identity is recovered by parsing the model's variable names
// rather than by a side-channel index, since the builder names every
// variable deterministically from its originating key.
func Extract(m *model.Model, idx *cohort.Indexes, inst domain.Instance, res RawResult) Solution {
	sol := Solution{
		Status:          res.Status,
		ObjectiveValue:  res.ObjectiveValue,
		SolveDuration:   res.Duration,
		VariableCount:   m.VariableCount(),
		ConstraintCount: m.ConstraintCount(),
		MIPGap:          res.MIPGap,
	}
	if res.Status == StatusInfeasible || len(res.Values) == 0 {
		return sol
	}

	byName := make(map[string]int, len(m.Variables))
	for i, v := range m.Variables {
		byName[v.Name] = i
	}
	valueOf := func(name string) (float64, bool) {
		i, ok := byName[name]
		if !ok || i >= len(res.Values) {
			return 0, false
		}
		return res.Values[i], true
	}

	startDays := make(map[string]bool)
	for i, v := range m.Variables {
		if i >= len(res.Values) {
			continue
		}
		if strings.HasPrefix(v.Name, "product_start[") && res.Values[i] > 0.5 {
			startDays[v.Name] = true
		}
	}

	seenProduction := make(map[string]bool)
	for _, k := range idx.Inventory {
		if !k.ProductionDate.Equal(k.CurrentDate) || k.State != domain.StateAmbient {
			continue
		}
		name := fmt.Sprintf("production[%s,%s]", k.ProductID, dateKey(k.ProductionDate))
		if seenProduction[name] {
			continue
		}
		seenProduction[name] = true
		qty, ok := valueOf(name)
		if !ok || qty <= 0 {
			continue
		}
		startName := fmt.Sprintf("product_start[%s,%s]", k.ProductID, dateKey(k.ProductionDate))
		sol.ProductionBatches = append(sol.ProductionBatches, ProductionBatch{
			ID:             "batch-" + k.ProductID + "-" + dateKey(k.ProductionDate),
			ProductID:      k.ProductID,
			NodeID:         inst.ManufacturingNodeID,
			ProductionDate: k.ProductionDate,
			Quantity:       qty,
			IsStartDay:     startDays[startName],
		})
	}

	for _, k := range idx.Shipment {
		name := fmt.Sprintf("ship[%s->%s,%s,%s,%s]", k.OriginNodeID, k.DestinationNodeID, k.ProductID, dateKey(k.ProductionDate), dateKey(k.DeliveryDate))
		qty, ok := valueOf(name)
		if !ok || qty <= 0 {
			continue
		}
		route := routeFor(inst, k.OriginNodeID, k.DestinationNodeID)
		transitCeil := 0
		costPerUnit := 0.0
		if route != nil {
			transitCeil = route.TransitDaysCeil()
			costPerUnit = route.CostPerUnit
		}
		sol.Shipments = append(sol.Shipments, ShipmentDecision{
			ID:                "ship-" + k.ProductID + "-" + dateKey(k.ProductionDate) + "-" + dateKey(k.DeliveryDate),
			ProductID:         k.ProductID,
			OriginNodeID:      k.OriginNodeID,
			DestinationNodeID: k.DestinationNodeID,
			ProductionDate:    k.ProductionDate,
			DepartureDate:     domain.DepartureDate(k.DeliveryDate, transitCeil),
			DeliveryDate:      k.DeliveryDate,
			DeliveredState:    k.DeliveredState,
			Quantity:          qty,
			RoutePath:         []string{k.OriginNodeID, k.DestinationNodeID},
			CostPerUnit:       costPerUnit,
		})
	}

	for _, k := range idx.Inventory {
		name := fmt.Sprintf("inv[%s,%s,%s,%s,%s]", k.NodeID, k.ProductID, dateKey(k.ProductionDate), dateKey(k.CurrentDate), string(k.State))
		qty, ok := valueOf(name)
		if !ok || qty <= 0 {
			continue
		}
		sol.Inventory = append(sol.Inventory, InventoryLevel{
			NodeID:         k.NodeID,
			ProductID:      k.ProductID,
			ProductionDate: k.ProductionDate,
			CurrentDate:    k.CurrentDate,
			State:          k.State,
			Quantity:       qty,
		})
	}

	for _, f := range inst.Forecast {
		name := fmt.Sprintf("shortage[%s,%s,%s]", f.LocationID, f.ProductID, dateKey(f.Date))
		qty, ok := valueOf(name)
		if !ok || qty <= 0 {
			continue
		}
		sol.Shortages = append(sol.Shortages, ShortageUnit{
			NodeID:    f.LocationID,
			ProductID: f.ProductID,
			Date:      f.Date,
			Quantity:  qty,
		})
	}

	return sol
}

func routeFor(inst domain.Instance, originID, destID string) *domain.Route {
	for i := range inst.Routes {
		if inst.Routes[i].OriginNodeID == originID && inst.Routes[i].DestinationNodeID == destID {
			return &inst.Routes[i]
		}
	}
	return nil
}

func dateKey(t time.Time) string { return t.Format("2006-01-02") }
