package solution

import (
	"testing"
	"time"

	"github.com/planengine/planengine/internal/domain"
	"github.com/planengine/planengine/internal/planning/cohort"
	"github.com/planengine/planengine/internal/planning/model"
)

func extractTestInstance() domain.Instance {
	return domain.Instance{
		Window: domain.PlanningWindow{StartDate: date(2026, 1, 1), EndDate: date(2026, 1, 3)},
		Nodes: []domain.Node{
			{ID: "M", Capabilities: domain.Capabilities{CanManufacture: true, CanStore: true,
				Storage: domain.StorageCapability{Mode: domain.StorageAmbient}}},
			{ID: "D", Capabilities: domain.Capabilities{CanStore: true, HasDemand: true,
				Storage: domain.StorageCapability{Mode: domain.StorageAmbient}}},
		},
		Routes: []domain.Route{
			{ID: "R1", OriginNodeID: "M", DestinationNodeID: "D", TransitDays: 1, TransportMode: domain.TransportAmbient, CostPerUnit: 0.2},
		},
		Products: []domain.Product{{ID: "P1", AmbientShelfLifeDays: 10}},
		LaborCalendar: map[string]domain.LaborDay{
			"2026-01-01": {IsFixedDay: true, FixedHours: 12, RegularRate: 25, OvertimeRate: 37.5},
		},
		Costs: domain.CostStructure{ProductionCostPerUnit: 0.5},
		Forecast: []domain.ForecastEntry{
			{LocationID: "D", ProductID: "P1", Date: date(2026, 1, 2), Quantity: 100},
		},
		ManufacturingNodeID: "M",
	}
}

func extractTestIndexes() *cohort.Indexes {
	idx := &cohort.Indexes{}
	idx.Inventory = []cohort.InventoryKey{
		{NodeID: "M", ProductID: "P1", ProductionDate: date(2026, 1, 1), CurrentDate: date(2026, 1, 1), State: domain.StateAmbient, StateEntryDate: date(2026, 1, 1)},
		{NodeID: "D", ProductID: "P1", ProductionDate: date(2026, 1, 1), CurrentDate: date(2026, 1, 2), State: domain.StateAmbient, StateEntryDate: date(2026, 1, 2)},
	}
	idx.Shipment = []cohort.ShipmentKey{
		{OriginNodeID: "M", DestinationNodeID: "D", ProductID: "P1", ProductionDate: date(2026, 1, 1), DeliveryDate: date(2026, 1, 2), DeliveredState: domain.StateAmbient},
	}
	idx.Demand = []cohort.DemandKey{
		{NodeID: "D", ProductID: "P1", ProductionDate: date(2026, 1, 1), DemandDate: date(2026, 1, 2), State: domain.StateAmbient, StateEntryDate: date(2026, 1, 2)},
	}
	return idx
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestExtractBuildsProductionShipmentsAndInventory(t *testing.T) {
	inst := extractTestInstance()
	idx := extractTestIndexes()
	gates := model.DetectGates(inst)
	cfg := domain.DefaultEngineConfig()
	m := model.Build(inst, idx, gates, cfg)

	values := make([]float64, len(m.Variables))
	for i, v := range m.Variables {
		switch v.Name {
		case "production[P1,2026-01-01]":
			values[i] = 100
		case "ship[M->D,P1,2026-01-01,2026-01-02]":
			values[i] = 100
		case "inv[D,P1,2026-01-01,2026-01-02,ambient]":
			values[i] = 0
		}
	}

	res := RawResult{Status: StatusOptimal, ObjectiveValue: 70, Values: values}
	sol := Extract(m, idx, inst, res)

	if len(sol.ProductionBatches) != 1 {
		t.Fatalf("ProductionBatches = %d, want 1", len(sol.ProductionBatches))
	}
	if sol.ProductionBatches[0].Quantity != 100 {
		t.Errorf("batch quantity = %v, want 100", sol.ProductionBatches[0].Quantity)
	}
	if len(sol.Shipments) != 1 {
		t.Fatalf("Shipments = %d, want 1", len(sol.Shipments))
	}
	if sol.Shipments[0].Quantity != 100 {
		t.Errorf("shipment quantity = %v, want 100", sol.Shipments[0].Quantity)
	}
	if sol.Shipments[0].CostPerUnit != 0.2 {
		t.Errorf("shipment cost per unit = %v, want 0.2", sol.Shipments[0].CostPerUnit)
	}
}

func TestExtractInfeasibleReturnsEmptySolution(t *testing.T) {
	inst := extractTestInstance()
	idx := extractTestIndexes()
	gates := model.DetectGates(inst)
	cfg := domain.DefaultEngineConfig()
	m := model.Build(inst, idx, gates, cfg)

	sol := Extract(m, idx, inst, RawResult{Status: StatusInfeasible})
	if sol.Status != StatusInfeasible {
		t.Errorf("Status = %v, want Infeasible", sol.Status)
	}
	if len(sol.ProductionBatches) != 0 || len(sol.Shipments) != 0 {
		t.Error("expected no decisions extracted from an infeasible result")
	}
}
