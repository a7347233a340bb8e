package cohort

import (
	"testing"
	"time"

	"github.com/planengine/planengine/internal/domain"
	"github.com/planengine/planengine/internal/planning/network"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestBuildSingleDaySingleSKUDirectRoute(t *testing.T) {
	mfg := domain.Node{ID: "M", Capabilities: domain.Capabilities{CanManufacture: true}}
	dest := domain.Node{ID: "D", Capabilities: domain.Capabilities{CanStore: true, Storage: domain.StorageCapability{Mode: domain.StorageAmbient}, HasDemand: true}}
	prod := domain.Product{ID: "P1", AmbientShelfLifeDays: 17, MinAcceptableShelfLife: 7}

	inst := domain.Instance{
		Window:              domain.PlanningWindow{StartDate: date(2026, 1, 1), EndDate: date(2026, 1, 3)},
		Nodes:                []domain.Node{mfg, dest},
		Products:             []domain.Product{prod},
		ManufacturingNodeID:  "M",
		Forecast: []domain.ForecastEntry{
			{LocationID: "D", ProductID: "P1", Date: date(2026, 1, 2), Quantity: 500},
		},
	}

	route := domain.Route{ID: "r1", OriginNodeID: "M", DestinationNodeID: "D", TransitDays: 1, TransportMode: domain.TransportAmbient}
	path := network.Path{Nodes: []string{"M", "D"}, Legs: []network.Leg{{Route: route}}}
	paths := map[string][]network.Path{"D": {path}}

	idx := Build(inst, paths, domain.DefaultEngineConfig())

	if len(idx.Shipment) == 0 {
		t.Fatal("expected at least one shipment cohort")
	}
	found := false
	for _, s := range idx.Shipment {
		if s.DeliveryDate.Equal(date(2026, 1, 2)) && s.DeliveredState == domain.StateAmbient {
			found = true
		}
	}
	if !found {
		t.Error("expected a shipment delivering ambient product on 2026-01-02")
	}

	demFound := false
	for _, d := range idx.Demand {
		if d.NodeID == "D" && d.DemandDate.Equal(date(2026, 1, 2)) {
			demFound = true
		}
	}
	if !demFound {
		t.Error("expected a demand-eligible cohort at D on 2026-01-02")
	}
}

func TestBuildSkipsPhantomShipments(t *testing.T) {
	mfg := domain.Node{ID: "M", Capabilities: domain.Capabilities{CanManufacture: true}}
	dest := domain.Node{ID: "D", Capabilities: domain.Capabilities{CanStore: true, Storage: domain.StorageCapability{Mode: domain.StorageAmbient}}}
	prod := domain.Product{ID: "P1", AmbientShelfLifeDays: 17, MinAcceptableShelfLife: 7}

	inst := domain.Instance{
		Window:              domain.PlanningWindow{StartDate: date(2026, 1, 5), EndDate: date(2026, 1, 10)},
		Nodes:                []domain.Node{mfg, dest},
		Products:             []domain.Product{prod},
		ManufacturingNodeID:  "M",
	}
	// A 1-day transit route: a shipment delivering on the horizon's first
	// day would need to depart before the horizon starts — must be excluded.
	route := domain.Route{ID: "r1", OriginNodeID: "M", DestinationNodeID: "D", TransitDays: 1, TransportMode: domain.TransportAmbient}
	path := network.Path{Nodes: []string{"M", "D"}, Legs: []network.Leg{{Route: route}}}
	paths := map[string][]network.Path{"D": {path}}

	idx := Build(inst, paths, domain.DefaultEngineConfig())

	for _, s := range idx.Shipment {
		if s.DeliveryDate.Equal(date(2026, 1, 5)) {
			t.Error("shipment delivering on horizon start day implies a phantom pre-horizon departure")
		}
	}
}

func TestBuildFreezeThawRoundTrip(t *testing.T) {
	mfg := domain.Node{ID: "M", Capabilities: domain.Capabilities{CanManufacture: true, CanStore: true, Storage: domain.StorageCapability{Mode: domain.StorageBoth}}}
	hub := domain.Node{ID: "L", Capabilities: domain.Capabilities{CanStore: true, Storage: domain.StorageCapability{Mode: domain.StorageBoth}}}
	dest := domain.Node{ID: "D", Capabilities: domain.Capabilities{CanStore: true, Storage: domain.StorageCapability{Mode: domain.StorageAmbient}, HasDemand: true}}
	prod := domain.Product{ID: "P1", AmbientShelfLifeDays: 17, FrozenShelfLifeDays: 120, ThawedShelfLifeDays: 14, MinAcceptableShelfLife: 7}

	inst := domain.Instance{
		Window:              domain.PlanningWindow{StartDate: date(2026, 1, 1), EndDate: date(2026, 1, 20)},
		Nodes:                []domain.Node{mfg, hub, dest},
		Products:             []domain.Product{prod},
		ManufacturingNodeID:  "M",
	}

	leg1 := domain.Route{ID: "r1", OriginNodeID: "M", DestinationNodeID: "L", TransitDays: 2, TransportMode: domain.TransportFrozen}
	leg2 := domain.Route{ID: "r2", OriginNodeID: "L", DestinationNodeID: "D", TransitDays: 1, TransportMode: domain.TransportAmbient}
	path := network.Path{Nodes: []string{"M", "L", "D"}, Legs: []network.Leg{{Route: leg1}, {Route: leg2}}}
	paths := map[string][]network.Path{"D": {path}}

	idx := Build(inst, paths, domain.DefaultEngineConfig())

	var sawFreeze, sawThaw bool
	for _, f := range idx.FreezeThaw {
		if f.Direction == DirectionFreeze && f.NodeID == "M" {
			sawFreeze = true
		}
		if f.Direction == DirectionThaw && f.NodeID == "L" {
			sawThaw = true
		}
	}
	if !sawFreeze {
		t.Error("expected a freeze event at M (ambient->frozen leg)")
	}
	if !sawThaw {
		t.Error("expected a thaw event at L (frozen->ambient leg)")
	}

	var thawedAtD bool
	for _, s := range idx.Shipment {
		if s.DestinationNodeID == "D" && s.DeliveredState == domain.StateThawed {
			thawedAtD = true
		}
	}
	if !thawedAtD {
		t.Error("expected the final leg to deliver a thawed cohort at D")
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	mfg := domain.Node{ID: "M", Capabilities: domain.Capabilities{CanManufacture: true}}
	dest := domain.Node{ID: "D", Capabilities: domain.Capabilities{CanStore: true, Storage: domain.StorageCapability{Mode: domain.StorageAmbient}}}
	prod := domain.Product{ID: "P1", AmbientShelfLifeDays: 17, MinAcceptableShelfLife: 7}
	inst := domain.Instance{
		Window:              domain.PlanningWindow{StartDate: date(2026, 1, 1), EndDate: date(2026, 1, 5)},
		Nodes:                []domain.Node{mfg, dest},
		Products:             []domain.Product{prod},
		ManufacturingNodeID:  "M",
	}
	route := domain.Route{ID: "r1", OriginNodeID: "M", DestinationNodeID: "D", TransitDays: 1, TransportMode: domain.TransportAmbient}
	path := network.Path{Nodes: []string{"M", "D"}, Legs: []network.Leg{{Route: route}}}
	paths := map[string][]network.Path{"D": {path}}

	idx1 := Build(inst, paths, domain.DefaultEngineConfig())
	idx2 := Build(inst, paths, domain.DefaultEngineConfig())

	if len(idx1.Inventory) != len(idx2.Inventory) || len(idx1.Shipment) != len(idx2.Shipment) {
		t.Fatal("Build() should be deterministic in index sizes across repeated calls")
	}
	for i := range idx1.Inventory {
		if idx1.Inventory[i] != idx2.Inventory[i] {
			t.Fatalf("Build() inventory order differs at %d: %+v vs %+v", i, idx1.Inventory[i], idx2.Inventory[i])
		}
		if idx1.InventoryHandle[idx1.Inventory[i]] != idx2.InventoryHandle[idx2.Inventory[i]] {
			t.Error("InventoryHandle should be stable across repeated builds")
		}
	}
}
