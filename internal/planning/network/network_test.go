package network

import (
	"context"
	"testing"

	"github.com/planengine/planengine/internal/domain"
)

func mkRoute(id, from, to string, transit, cost float64) domain.Route {
	return domain.Route{ID: id, OriginNodeID: from, DestinationNodeID: to, TransitDays: transit, CostPerUnit: cost}
}

func TestEnumeratePathsRanksByCost(t *testing.T) {
	nodes := []domain.Node{{ID: "M"}, {ID: "L"}, {ID: "D"}}
	routes := []domain.Route{
		mkRoute("r1", "M", "D", 5, 2.0),  // direct, expensive
		mkRoute("r2", "M", "L", 1, 0.3),  // via hub, cheap
		mkRoute("r3", "L", "D", 1, 0.3),
	}
	g := Build(nodes, routes)

	results, err := EnumeratePaths(context.Background(), g, "M", []string{"D"}, 5)
	if err != nil {
		t.Fatalf("EnumeratePaths error: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("len(results) = %d, want 1", len(results))
	}
	r := results[0]
	if r.Unreachable {
		t.Fatal("expected D to be reachable")
	}
	if len(r.Paths) != 2 {
		t.Fatalf("len(Paths) = %d, want 2", len(r.Paths))
	}
	// Cheapest path (via L, total cost 0.6) should rank first.
	cheapest := r.Paths[0]
	if cheapest.TotalCostPerUnit != 0.6 {
		t.Errorf("cheapest path cost = %v, want 0.6", cheapest.TotalCostPerUnit)
	}
	if cheapest.Hops != 2 {
		t.Errorf("cheapest path hops = %d, want 2", cheapest.Hops)
	}
}

func TestEnumeratePathsUnreachable(t *testing.T) {
	nodes := []domain.Node{{ID: "M"}, {ID: "Island"}}
	routes := []domain.Route{}
	g := Build(nodes, routes)

	results, err := EnumeratePaths(context.Background(), g, "M", []string{"Island"}, 5)
	if err != nil {
		t.Fatalf("EnumeratePaths error: %v", err)
	}
	if !results[0].Unreachable {
		t.Error("expected Island to be unreachable with no routes")
	}
	if len(results[0].Paths) != 0 {
		t.Error("unreachable destination should have zero paths")
	}
}

func TestEnumeratePathsRespectsMax(t *testing.T) {
	nodes := []domain.Node{{ID: "M"}, {ID: "A"}, {ID: "B"}, {ID: "D"}}
	routes := []domain.Route{
		mkRoute("r1", "M", "A", 1, 1.0),
		mkRoute("r2", "A", "D", 1, 1.0),
		mkRoute("r3", "M", "B", 1, 1.0),
		mkRoute("r4", "B", "D", 1, 1.0),
		mkRoute("r5", "M", "D", 1, 0.5),
	}
	g := Build(nodes, routes)

	results, err := EnumeratePaths(context.Background(), g, "M", []string{"D"}, 1)
	if err != nil {
		t.Fatalf("EnumeratePaths error: %v", err)
	}
	if len(results[0].Paths) != 1 {
		t.Fatalf("len(Paths) = %d, want 1 (max_routes_per_destination=1)", len(results[0].Paths))
	}
	if results[0].Paths[0].TotalCostPerUnit != 0.5 {
		t.Error("with max=1, the single cheapest path should be kept")
	}
}
