package solver

import (
	"math"
	"testing"
	"time"

	"github.com/planengine/planengine/internal/domain"
	"github.com/planengine/planengine/internal/planning/cohort"
	"github.com/planengine/planengine/internal/planning/model"
)

// model.addVar/addConstraint are unexported, so these tests obtain Models
// from outside the package in two ways: the zero value, which has no
// variables or constraints and must solve trivially at zero cost, and
// smallProductionModel below, which builds a real Model via model.Build.
func TestReferenceSolverEmptyModelIsTriviallyOptimal(t *testing.T) {
	m := &model.Model{}
	res, err := ReferenceSolver{}.Solve(m, domain.DefaultEngineConfig(), nil)
	if err != nil {
		t.Fatalf("Solve() error: %v", err)
	}
	if res.Status != StatusOptimal {
		t.Errorf("Status = %v, want Optimal", res.Status)
	}
	if res.ObjectiveValue != 0 {
		t.Errorf("ObjectiveValue = %v, want 0", res.ObjectiveValue)
	}
}

func TestGapToleranceInfiniteIncumbentIsZero(t *testing.T) {
	cfg := domain.DefaultEngineConfig()
	if got := gapTolerance(cfg, math.Inf(1)); got != 0 {
		t.Errorf("gapTolerance(inf) = %v, want 0", got)
	}
}

func TestGapToleranceScalesWithIncumbent(t *testing.T) {
	cfg := domain.Config{MIPGap: 0.01}
	got := gapTolerance(cfg, 1000)
	if got != 10 {
		t.Errorf("gapTolerance = %v, want 10", got)
	}
}

func smallProductionModel() *model.Model {
	date := func(y int, m2 time.Month, d int) time.Time { return time.Date(y, m2, d, 0, 0, 0, 0, time.UTC) }
	inst := domain.Instance{
		Window: domain.PlanningWindow{StartDate: date(2026, 1, 1), EndDate: date(2026, 1, 2)},
		Nodes: []domain.Node{
			{ID: "M", Capabilities: domain.Capabilities{CanManufacture: true, CanStore: true,
				Storage: domain.StorageCapability{Mode: domain.StorageAmbient}}},
			{ID: "D", Capabilities: domain.Capabilities{CanStore: true, HasDemand: true,
				Storage: domain.StorageCapability{Mode: domain.StorageAmbient}}},
		},
		Routes:   []domain.Route{{ID: "R1", OriginNodeID: "M", DestinationNodeID: "D", TransitDays: 1, TransportMode: domain.TransportAmbient, CostPerUnit: 0.1}},
		Products: []domain.Product{{ID: "P1", AmbientShelfLifeDays: 10}},
		LaborCalendar: map[string]domain.LaborDay{
			"2026-01-01": {IsFixedDay: true, FixedHours: 12, RegularRate: 20, OvertimeRate: 30},
		},
		Costs: domain.CostStructure{ProductionCostPerUnit: 1, ShortagePenaltyPerUnit: 1000},
		Forecast: []domain.ForecastEntry{
			{LocationID: "D", ProductID: "P1", Date: date(2026, 1, 2), Quantity: 50},
		},
		ManufacturingNodeID: "M",
	}
	idx := &cohort.Indexes{
		Inventory: []cohort.InventoryKey{
			{NodeID: "M", ProductID: "P1", ProductionDate: date(2026, 1, 1), CurrentDate: date(2026, 1, 1), State: domain.StateAmbient, StateEntryDate: date(2026, 1, 1)},
			{NodeID: "D", ProductID: "P1", ProductionDate: date(2026, 1, 1), CurrentDate: date(2026, 1, 2), State: domain.StateAmbient, StateEntryDate: date(2026, 1, 2)},
		},
		Shipment: []cohort.ShipmentKey{
			{OriginNodeID: "M", DestinationNodeID: "D", ProductID: "P1", ProductionDate: date(2026, 1, 1), DeliveryDate: date(2026, 1, 2), DeliveredState: domain.StateAmbient},
		},
		Demand: []cohort.DemandKey{
			{NodeID: "D", ProductID: "P1", ProductionDate: date(2026, 1, 1), DemandDate: date(2026, 1, 2), State: domain.StateAmbient, StateEntryDate: date(2026, 1, 2)},
		},
	}
	gates := model.DetectGates(inst)
	return model.Build(inst, idx, gates, domain.DefaultEngineConfig())
}

func TestReferenceSolverSolvesSmallProductionModel(t *testing.T) {
	m := smallProductionModel()
	res, err := ReferenceSolver{}.Solve(m, domain.DefaultEngineConfig(), nil)
	if err != nil {
		t.Fatalf("Solve() error: %v", err)
	}
	if res.Status != StatusOptimal {
		t.Fatalf("Status = %v, want Optimal", res.Status)
	}
	if len(res.Values) != len(m.Variables) {
		t.Fatalf("len(Values) = %d, want %d", len(res.Values), len(m.Variables))
	}
}

func TestReferenceSolverIgnoresUnknownHints(t *testing.T) {
	m := smallProductionModel()
	hints := map[string]float64{"no_such_variable[X,Y]": 1}
	res, err := ReferenceSolver{}.Solve(m, domain.DefaultEngineConfig(), hints)
	if err != nil {
		t.Fatalf("Solve() error: %v", err)
	}
	if res.Status != StatusOptimal {
		t.Fatalf("Status = %v, want Optimal", res.Status)
	}
}
