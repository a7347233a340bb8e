package solution

import (
	"testing"
	"time"

	"github.com/planengine/planengine/internal/domain"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestSolutionTotals(t *testing.T) {
	s := Solution{
		ProductionBatches: []ProductionBatch{{Quantity: 100}, {Quantity: 50}},
		Shipments:         []ShipmentDecision{{Quantity: 80}, {Quantity: 20}},
		Shortages:         []ShortageUnit{{Quantity: 5}},
	}
	if s.TotalProduced() != 150 {
		t.Errorf("TotalProduced() = %v, want 150", s.TotalProduced())
	}
	if s.TotalShipped() != 100 {
		t.Errorf("TotalShipped() = %v, want 100", s.TotalShipped())
	}
	if s.TotalShortage() != 5 {
		t.Errorf("TotalShortage() = %v, want 5", s.TotalShortage())
	}
}

func TestCheckMaterialBalanceBalancedFlow(t *testing.T) {
	s := Solution{
		ProductionBatches: []ProductionBatch{
			{NodeID: "M", ProductID: "P1", ProductionDate: date(2026, 1, 1), Quantity: 100},
		},
		Shipments: []ShipmentDecision{
			{
				OriginNodeID: "M", DestinationNodeID: "D", ProductID: "P1",
				ProductionDate: date(2026, 1, 1), DepartureDate: date(2026, 1, 1),
				DeliveryDate: date(2026, 1, 2), DeliveredState: domain.StateAmbient,
				Quantity: 100,
			},
		},
		Inventory: []InventoryLevel{
			{NodeID: "D", ProductID: "P1", ProductionDate: date(2026, 1, 1), CurrentDate: date(2026, 1, 2), State: domain.StateAmbient, Quantity: 100},
		},
	}
	violations := CheckMaterialBalance(s)
	if len(violations) != 0 {
		t.Errorf("expected no violations, got %+v", violations)
	}
}

func TestCheckMaterialBalanceDetectsShortfall(t *testing.T) {
	s := Solution{
		ProductionBatches: []ProductionBatch{
			{NodeID: "M", ProductID: "P1", ProductionDate: date(2026, 1, 1), Quantity: 100},
		},
		Shipments: []ShipmentDecision{
			{
				OriginNodeID: "M", DestinationNodeID: "D", ProductID: "P1",
				ProductionDate: date(2026, 1, 1), DepartureDate: date(2026, 1, 1),
				DeliveryDate: date(2026, 1, 2), DeliveredState: domain.StateAmbient,
				Quantity: 60, // only 60 of the 100 produced units ship out
			},
		},
	}
	violations := CheckMaterialBalance(s)
	if len(violations) == 0 {
		t.Fatal("expected a violation for the 40 units produced but never shipped or held")
	}
}
