// Package cost decomposes total cost to serve into focused calculators —
// labor, production, transport, waste — composed by one
// top-level calculator.
package cost

import (
	"time"

	"github.com/planengine/planengine/internal/domain"
	"github.com/planengine/planengine/internal/planning/solution"
)

// unitsPerHour is the production rate constant LaborCostCalculator uses to
// translate a day's produced quantity into labor hours; no node-level
// production rate is read.
const unitsPerHour = 1400.0

// LaborBreakdown is the detailed labor cost result.
type LaborBreakdown struct {
	FixedHours       float64
	FixedHoursCost   float64
	OvertimeHours    float64
	OvertimeCost     float64
	NonFixedHours    float64
	NonFixedCost     float64
	TotalHours       float64
	TotalCost        float64
	DailyBreakdown   map[string]DailyLaborCost
}

// DailyLaborCost is the per-date labor cost detail.
type DailyLaborCost struct {
	TotalHours    float64
	FixedHours    float64
	OvertimeHours float64
	FixedCost     float64
	OvertimeCost  float64
	NonFixedCost  float64
	TotalCost     float64
}

// ProductionBreakdown is the detailed production cost result.
type ProductionBreakdown struct {
	TotalCost            float64
	TotalUnitsProduced   float64
	AverageCostPerUnit   float64
	CostByProduct        map[string]float64
	CostByDate           map[string]float64
}

// TransportBreakdown is the detailed transport cost result.
type TransportBreakdown struct {
	TotalCost          float64
	TotalUnitsShipped  float64
	AverageCostPerUnit float64
	CostByRoute        map[string]float64
}

// WasteBreakdown is the detailed waste cost result.
type WasteBreakdown struct {
	UnmetDemandUnits float64
	UnmetDemandCost  float64
	ExpiredUnits     float64
	ExpiredCost      float64
	TotalCost        float64
	WasteByLocation  map[string]float64
	WasteByProduct   map[string]float64
}

// TotalBreakdown aggregates every component into total cost to serve.
type TotalBreakdown struct {
	Labor                 LaborBreakdown
	Production            ProductionBreakdown
	Transport             TransportBreakdown
	Waste                 WasteBreakdown
	TotalCost             float64
	CostPerUnitDelivered  float64
}

// LaborCostCalculator computes labor cost from a production schedule and a
// labor calendar, using actual rates from the calendar rather than
// CostStructure defaults.
type LaborCostCalculator struct {
	Calendar         map[string]domain.LaborDay
	StrictValidation bool
}

// NewLaborCostCalculator constructs a calculator bound to a labor calendar.
func NewLaborCostCalculator(calendar map[string]domain.LaborDay, strict bool) LaborCostCalculator {
	return LaborCostCalculator{Calendar: calendar, StrictValidation: strict}
}

// Calculate computes labor cost across every production date in batches.
// Missing calendar dates fall back to domain.DefaultWeekdayLaborDay unless
// StrictValidation is set, in which case the bare
// ErrMissingLaborForCriticalDate sentinel is returned.
func (c LaborCostCalculator) Calculate(batches []solution.ProductionBatch) (LaborBreakdown, error) {
	breakdown := LaborBreakdown{DailyBreakdown: make(map[string]DailyLaborCost)}

	daily := make(map[string]float64)
	dateOf := make(map[string]time.Time)
	for _, b := range batches {
		key := b.ProductionDate.Format("2006-01-02")
		daily[key] += b.Quantity
		dateOf[key] = b.ProductionDate
	}

	for key, quantity := range daily {
		day, ok := c.Calendar[key]
		if !ok {
			if c.StrictValidation {
				return LaborBreakdown{}, domain.ErrMissingLaborForCriticalDate
			}
			day = domain.DefaultWeekdayLaborDay(dateOf[key])
		}

		hoursNeeded := quantity / unitsPerHour
		var detail DailyLaborCost
		detail.TotalHours = hoursNeeded

		if day.IsFixedDay {
			fixedHours := minF(hoursNeeded, day.FixedHours)
			overtimeHours := maxF(0, hoursNeeded-day.FixedHours)
			fixedCost := fixedHours * day.RegularRate
			overtimeCost := overtimeHours * day.OvertimeRate

			breakdown.FixedHours += fixedHours
			breakdown.FixedHoursCost += fixedCost
			breakdown.OvertimeHours += overtimeHours
			breakdown.OvertimeCost += overtimeCost

			detail.FixedHours = fixedHours
			detail.OvertimeHours = overtimeHours
			detail.FixedCost = fixedCost
			detail.OvertimeCost = overtimeCost
			detail.TotalCost = fixedCost + overtimeCost
		} else {
			hoursPaid := maxF(hoursNeeded, day.MinimumHours)
			nonFixedCost := hoursPaid * day.NonFixedRate

			breakdown.NonFixedHours += hoursPaid
			breakdown.NonFixedCost += nonFixedCost

			detail.NonFixedCost = nonFixedCost
			detail.TotalCost = nonFixedCost
		}
		breakdown.DailyBreakdown[key] = detail
	}

	breakdown.TotalHours = breakdown.FixedHours + breakdown.OvertimeHours + breakdown.NonFixedHours
	breakdown.TotalCost = breakdown.FixedHoursCost + breakdown.OvertimeCost + breakdown.NonFixedCost
	return breakdown, nil
}

// ProductionCostCalculator computes per-unit production cost.
type ProductionCostCalculator struct {
	Costs domain.CostStructure
}

// Calculate sums quantity × production_cost_per_unit across every batch,
// broken down by product and date.
func (c ProductionCostCalculator) Calculate(batches []solution.ProductionBatch) ProductionBreakdown {
	breakdown := ProductionBreakdown{
		CostByProduct: make(map[string]float64),
		CostByDate:    make(map[string]float64),
	}
	for _, b := range batches {
		batchCost := b.Quantity * c.Costs.ProductionCostPerUnit
		breakdown.TotalCost += batchCost
		breakdown.TotalUnitsProduced += b.Quantity
		breakdown.CostByProduct[b.ProductID] += batchCost
		breakdown.CostByDate[b.ProductionDate.Format("2006-01-02")] += batchCost
	}
	if breakdown.TotalUnitsProduced > 0 {
		breakdown.AverageCostPerUnit = breakdown.TotalCost / breakdown.TotalUnitsProduced
	}
	return breakdown
}

// TransportCostCalculator computes transport cost from decided shipments.
type TransportCostCalculator struct{}

// Calculate sums quantity × cost_per_unit across every shipment, broken
// down by route path.
func (TransportCostCalculator) Calculate(shipments []solution.ShipmentDecision) TransportBreakdown {
	breakdown := TransportBreakdown{CostByRoute: make(map[string]float64)}
	for _, sh := range shipments {
		shipmentCost := sh.Quantity * sh.CostPerUnit
		breakdown.TotalCost += shipmentCost
		breakdown.TotalUnitsShipped += sh.Quantity

		routePath := routePathString(sh.RoutePath)
		breakdown.CostByRoute[routePath] += shipmentCost
	}
	if breakdown.TotalUnitsShipped > 0 {
		breakdown.AverageCostPerUnit = breakdown.TotalCost / breakdown.TotalUnitsShipped
	}
	return breakdown
}

func routePathString(nodes []string) string {
	s := ""
	for i, n := range nodes {
		if i > 0 {
			s += " -> "
		}
		s += n
	}
	return s
}

// WasteCostCalculator computes cost from unmet demand and expired inventory.
type WasteCostCalculator struct {
	Costs domain.CostStructure
}

// Calculate combines unmet-demand opportunity cost (shortage_penalty) with
// expired-inventory sunk cost (production_cost × waste_multiplier).
// expiredUnitsByNode is optional; nil skips the expired component.
func (c WasteCostCalculator) Calculate(shortages []solution.ShortageUnit, expiredUnitsByNode map[string]float64) WasteBreakdown {
	breakdown := WasteBreakdown{
		WasteByLocation: make(map[string]float64),
		WasteByProduct:  make(map[string]float64),
	}

	for _, s := range shortages {
		cost := s.Quantity * c.Costs.ShortagePenaltyPerUnit
		breakdown.UnmetDemandUnits += s.Quantity
		breakdown.UnmetDemandCost += cost
		breakdown.WasteByLocation[s.NodeID] += cost
		breakdown.WasteByProduct[s.ProductID] += cost
	}

	if expiredUnitsByNode != nil {
		costPerUnit := c.Costs.ProductionCostPerUnit * c.Costs.WasteMultiplier
		for nodeID, units := range expiredUnitsByNode {
			cost := units * costPerUnit
			breakdown.ExpiredUnits += units
			breakdown.ExpiredCost += cost
			breakdown.WasteByLocation[nodeID] += cost
		}
	}

	breakdown.TotalCost = breakdown.UnmetDemandCost + breakdown.ExpiredCost
	return breakdown
}

// Calculator aggregates all four cost components into total cost to serve.
type Calculator struct {
	Labor      LaborCostCalculator
	Production ProductionCostCalculator
	Transport  TransportCostCalculator
	Waste      WasteCostCalculator
}

// NewCalculator constructs a Calculator wired to a cost structure and labor
// calendar.
func NewCalculator(costs domain.CostStructure, calendar map[string]domain.LaborDay, strictLabor bool) Calculator {
	return Calculator{
		Labor:      NewLaborCostCalculator(calendar, strictLabor),
		Production: ProductionCostCalculator{Costs: costs},
		Transport:  TransportCostCalculator{},
		Waste:      WasteCostCalculator{Costs: costs},
	}
}

// CalculateTotal runs all four components over a solved plan and returns
// the full breakdown, including cost per unit delivered.
func (c Calculator) CalculateTotal(sol solution.Solution, expiredUnitsByNode map[string]float64) (TotalBreakdown, error) {
	var total TotalBreakdown

	labor, err := c.Labor.Calculate(sol.ProductionBatches)
	if err != nil {
		return TotalBreakdown{}, err
	}
	total.Labor = labor
	total.Production = c.Production.Calculate(sol.ProductionBatches)
	total.Transport = c.Transport.Calculate(sol.Shipments)
	total.Waste = c.Waste.Calculate(sol.Shortages, expiredUnitsByNode)

	total.TotalCost = total.Labor.TotalCost + total.Production.TotalCost +
		total.Transport.TotalCost + total.Waste.TotalCost

	if total.Transport.TotalUnitsShipped > 0 {
		total.CostPerUnitDelivered = total.TotalCost / total.Transport.TotalUnitsShipped
	}
	return total, nil
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
