package cost

import (
	"testing"
	"time"

	"github.com/planengine/planengine/internal/domain"
	"github.com/planengine/planengine/internal/planning/solution"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestLaborCostCalculatorFixedDayWithOvertime(t *testing.T) {
	calendar := map[string]domain.LaborDay{
		"2026-01-05": {IsFixedDay: true, FixedHours: 12, RegularRate: 25, OvertimeRate: 37.5},
	}
	calc := NewLaborCostCalculator(calendar, false)

	batches := []solution.ProductionBatch{
		{ProductionDate: date(2026, 1, 5), Quantity: 1400 * 14}, // 14h needed, 12 fixed + 2 OT
	}
	breakdown, err := calc.Calculate(batches)
	if err != nil {
		t.Fatalf("Calculate() error: %v", err)
	}
	if breakdown.FixedHours != 12 {
		t.Errorf("FixedHours = %v, want 12", breakdown.FixedHours)
	}
	if breakdown.OvertimeHours != 2 {
		t.Errorf("OvertimeHours = %v, want 2", breakdown.OvertimeHours)
	}
	wantCost := 12*25 + 2*37.5
	if breakdown.TotalCost != wantCost {
		t.Errorf("TotalCost = %v, want %v", breakdown.TotalCost, wantCost)
	}
}

func TestLaborCostCalculatorNonFixedDayMinimum(t *testing.T) {
	calendar := map[string]domain.LaborDay{
		"2026-01-10": {IsFixedDay: false, NonFixedRate: 40, MinimumHours: 4},
	}
	calc := NewLaborCostCalculator(calendar, false)

	batches := []solution.ProductionBatch{
		{ProductionDate: date(2026, 1, 10), Quantity: 1400}, // 1h needed, paid 4h minimum
	}
	breakdown, err := calc.Calculate(batches)
	if err != nil {
		t.Fatalf("Calculate() error: %v", err)
	}
	if breakdown.NonFixedHours != 4 {
		t.Errorf("NonFixedHours = %v, want 4 (minimum)", breakdown.NonFixedHours)
	}
	if breakdown.TotalCost != 4*40 {
		t.Errorf("TotalCost = %v, want %v", breakdown.TotalCost, 4*40)
	}
}

func TestLaborCostCalculatorStrictMissingDate(t *testing.T) {
	calc := NewLaborCostCalculator(map[string]domain.LaborDay{}, true)
	_, err := calc.Calculate([]solution.ProductionBatch{{ProductionDate: date(2026, 1, 1), Quantity: 100}})
	if err != domain.ErrMissingLaborForCriticalDate {
		t.Errorf("err = %v, want ErrMissingLaborForCriticalDate", err)
	}
}

func TestLaborCostCalculatorLenientMissingDateUsesDefault(t *testing.T) {
	calc := NewLaborCostCalculator(map[string]domain.LaborDay{}, false)
	breakdown, err := calc.Calculate([]solution.ProductionBatch{{ProductionDate: date(2026, 1, 5), Quantity: 1400}})
	if err != nil {
		t.Fatalf("Calculate() error: %v", err)
	}
	if breakdown.TotalCost == 0 {
		t.Error("expected nonzero cost using fallback weekday default")
	}
}

func TestProductionCostCalculator(t *testing.T) {
	calc := ProductionCostCalculator{Costs: domain.CostStructure{ProductionCostPerUnit: 0.5}}
	batches := []solution.ProductionBatch{
		{ProductID: "P1", ProductionDate: date(2026, 1, 1), Quantity: 1000},
		{ProductID: "P2", ProductionDate: date(2026, 1, 1), Quantity: 500},
	}
	breakdown := calc.Calculate(batches)
	if breakdown.TotalCost != 750 {
		t.Errorf("TotalCost = %v, want 750", breakdown.TotalCost)
	}
	if breakdown.CostByProduct["P1"] != 500 {
		t.Errorf("CostByProduct[P1] = %v, want 500", breakdown.CostByProduct["P1"])
	}
	if breakdown.AverageCostPerUnit != 0.5 {
		t.Errorf("AverageCostPerUnit = %v, want 0.5", breakdown.AverageCostPerUnit)
	}
}

func TestTransportCostCalculator(t *testing.T) {
	calc := TransportCostCalculator{}
	shipments := []solution.ShipmentDecision{
		{Quantity: 100, CostPerUnit: 0.3, RoutePath: []string{"M", "D"}},
		{Quantity: 200, CostPerUnit: 0.3, RoutePath: []string{"M", "D"}},
	}
	breakdown := calc.Calculate(shipments)
	if breakdown.TotalCost != 90 {
		t.Errorf("TotalCost = %v, want 90", breakdown.TotalCost)
	}
	if breakdown.CostByRoute["M -> D"] != 90 {
		t.Errorf("CostByRoute = %+v", breakdown.CostByRoute)
	}
}

func TestWasteCostCalculatorUnmetAndExpired(t *testing.T) {
	calc := WasteCostCalculator{Costs: domain.CostStructure{
		ShortagePenaltyPerUnit: 10,
		ProductionCostPerUnit:  0.5,
		WasteMultiplier:        1.5,
	}}
	shortages := []solution.ShortageUnit{{NodeID: "D", ProductID: "P1", Quantity: 20}}
	expired := map[string]float64{"D": 5}

	breakdown := calc.Calculate(shortages, expired)
	if breakdown.UnmetDemandCost != 200 {
		t.Errorf("UnmetDemandCost = %v, want 200", breakdown.UnmetDemandCost)
	}
	wantExpiredCost := 5 * 0.5 * 1.5
	if breakdown.ExpiredCost != wantExpiredCost {
		t.Errorf("ExpiredCost = %v, want %v", breakdown.ExpiredCost, wantExpiredCost)
	}
	if breakdown.TotalCost != 200+wantExpiredCost {
		t.Errorf("TotalCost = %v, want %v", breakdown.TotalCost, 200+wantExpiredCost)
	}
}

func TestCalculatorTotalsAllFourComponents(t *testing.T) {
	calendar := map[string]domain.LaborDay{
		"2026-01-01": {IsFixedDay: true, FixedHours: 12, RegularRate: 25, OvertimeRate: 37.5},
	}
	costs := domain.CostStructure{
		ProductionCostPerUnit:  0.5,
		ShortagePenaltyPerUnit: 10,
	}
	calc := NewCalculator(costs, calendar, false)

	sol := solution.Solution{
		ProductionBatches: []solution.ProductionBatch{
			{ProductID: "P1", ProductionDate: date(2026, 1, 1), Quantity: 1400},
		},
		Shipments: []solution.ShipmentDecision{
			{Quantity: 1400, CostPerUnit: 0.2, RoutePath: []string{"M", "D"}},
		},
		Shortages: []solution.ShortageUnit{{NodeID: "D", ProductID: "P1", Quantity: 10}},
	}

	total, err := calc.CalculateTotal(sol, nil)
	if err != nil {
		t.Fatalf("CalculateTotal() error: %v", err)
	}
	wantTotal := total.Labor.TotalCost + total.Production.TotalCost + total.Transport.TotalCost + total.Waste.TotalCost
	if total.TotalCost != wantTotal {
		t.Errorf("TotalCost = %v, want sum of components %v", total.TotalCost, wantTotal)
	}
	if total.CostPerUnitDelivered != total.TotalCost/1400 {
		t.Errorf("CostPerUnitDelivered = %v, want %v", total.CostPerUnitDelivered, total.TotalCost/1400)
	}
}
