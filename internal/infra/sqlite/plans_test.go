package sqlite

import (
	"testing"
	"time"

	"github.com/planengine/planengine/internal/domain"
	"github.com/planengine/planengine/internal/planning/solution"
	"github.com/planengine/planengine/internal/planning/validate"
)

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(t.TempDir())
	if err != nil {
		t.Fatalf("Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testWindow() domain.PlanningWindow {
	return domain.PlanningWindow{
		StartDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 1, 7, 0, 0, 0, 0, time.UTC),
	}
}

func testSolution() solution.Solution {
	return solution.Solution{
		Status:         solution.StatusOptimal,
		ObjectiveValue: 1234.5,
		MIPGap:         0.001,
		SolveDuration:  2500 * time.Millisecond,
		VariableCount:  40,
		ConstraintCount: 30,
		ProductionBatches: []solution.ProductionBatch{
			{ID: "batch-P1-2026-01-01", ProductID: "P1", NodeID: "M",
				ProductionDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC), Quantity: 500, IsStartDay: true},
		},
		Shipments: []solution.ShipmentDecision{
			{ID: "ship-P1-2026-01-01-2026-01-02", ProductID: "P1", OriginNodeID: "M", DestinationNodeID: "D",
				ProductionDate: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
				DepartureDate:  time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
				DeliveryDate:   time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
				DeliveredState: domain.StateAmbient, Quantity: 500,
				RoutePath: []string{"M", "D"}, CostPerUnit: 0.2},
		},
	}
}

func TestPlanMigrations_TablesExist(t *testing.T) {
	db := newTestDB(t)

	tables := []string{"plans", "plan_production", "plan_shipments", "plan_issues"}
	for _, tbl := range tables {
		var name string
		err := db.db.QueryRow(
			`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, tbl,
		).Scan(&name)
		if err != nil {
			t.Fatalf("table %s not found: %v", tbl, err)
		}
	}
}

func TestInsertAndGetPlan(t *testing.T) {
	db := newTestDB(t)
	sol := testSolution()

	if err := db.InsertPlan("plan-1", testWindow(), sol); err != nil {
		t.Fatalf("InsertPlan() error: %v", err)
	}

	got, err := db.GetPlan("plan-1")
	if err != nil {
		t.Fatalf("GetPlan() error: %v", err)
	}
	if got.Status != string(solution.StatusOptimal) {
		t.Errorf("Status = %q, want %q", got.Status, solution.StatusOptimal)
	}
	if got.ObjectiveValue != 1234.5 {
		t.Errorf("ObjectiveValue = %v, want 1234.5", got.ObjectiveValue)
	}
	if got.SolveDurationMs != 2500 {
		t.Errorf("SolveDurationMs = %d, want 2500", got.SolveDurationMs)
	}
	if !got.WindowStart.Equal(testWindow().StartDate) {
		t.Errorf("WindowStart = %v, want %v", got.WindowStart, testWindow().StartDate)
	}
}

func TestInsertPlan_ProductionAndShipmentsRoundTrip(t *testing.T) {
	db := newTestDB(t)
	sol := testSolution()

	if err := db.InsertPlan("plan-2", testWindow(), sol); err != nil {
		t.Fatalf("InsertPlan() error: %v", err)
	}

	batches, err := db.GetPlanProduction("plan-2")
	if err != nil {
		t.Fatalf("GetPlanProduction() error: %v", err)
	}
	if len(batches) != 1 {
		t.Fatalf("len(batches) = %d, want 1", len(batches))
	}
	if batches[0].Quantity != 500 || !batches[0].IsStartDay {
		t.Errorf("batch = %+v, want quantity=500 isStartDay=true", batches[0])
	}

	shipments, err := db.GetPlanShipments("plan-2")
	if err != nil {
		t.Fatalf("GetPlanShipments() error: %v", err)
	}
	if len(shipments) != 1 {
		t.Fatalf("len(shipments) = %d, want 1", len(shipments))
	}
	if shipments[0].CostPerUnit != 0.2 {
		t.Errorf("CostPerUnit = %v, want 0.2", shipments[0].CostPerUnit)
	}
	if len(shipments[0].RoutePath) != 2 || shipments[0].RoutePath[0] != "M" {
		t.Errorf("RoutePath = %v, want [M D]", shipments[0].RoutePath)
	}
}

func TestInsertAndGetPlanIssues(t *testing.T) {
	db := newTestDB(t)
	if err := db.InsertPlan("plan-3", testWindow(), testSolution()); err != nil {
		t.Fatalf("InsertPlan() error: %v", err)
	}

	issues := []validate.Issue{
		{ID: "issue-1", Severity: validate.Critical, Category: validate.CategoryDataQuality,
			Title: "missing shelf life", Description: "product P2 has no ambient shelf life configured",
			Impact: "cohorts for P2 cannot expire", FixGuidance: "set ambient_shelf_life_days for P2",
			AffectedData: map[string]any{"product_id": "P2"}},
	}
	if err := db.InsertPlanIssues("plan-3", issues); err != nil {
		t.Fatalf("InsertPlanIssues() error: %v", err)
	}

	got, err := db.GetPlanIssues("plan-3")
	if err != nil {
		t.Fatalf("GetPlanIssues() error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len(issues) = %d, want 1", len(got))
	}
	if got[0].Severity != validate.Critical {
		t.Errorf("Severity = %v, want Critical", got[0].Severity)
	}
	if got[0].AffectedData["product_id"] != "P2" {
		t.Errorf("AffectedData[product_id] = %v, want P2", got[0].AffectedData["product_id"])
	}
}

func TestListPlans_NewestFirst(t *testing.T) {
	db := newTestDB(t)
	sol := testSolution()
	if err := db.InsertPlan("plan-old", testWindow(), sol); err != nil {
		t.Fatal(err)
	}
	if err := db.InsertPlan("plan-new", testWindow(), sol); err != nil {
		t.Fatal(err)
	}

	plans, err := db.ListPlans(10)
	if err != nil {
		t.Fatalf("ListPlans() error: %v", err)
	}
	if len(plans) != 2 {
		t.Fatalf("len(plans) = %d, want 2", len(plans))
	}
}

func TestDeletePlan_RemovesLineItems(t *testing.T) {
	db := newTestDB(t)
	if err := db.InsertPlan("plan-4", testWindow(), testSolution()); err != nil {
		t.Fatal(err)
	}
	if err := db.DeletePlan("plan-4"); err != nil {
		t.Fatalf("DeletePlan() error: %v", err)
	}

	if _, err := db.GetPlan("plan-4"); err == nil {
		t.Error("GetPlan() after delete: expected error, got nil")
	}
	batches, err := db.GetPlanProduction("plan-4")
	if err != nil {
		t.Fatalf("GetPlanProduction() error: %v", err)
	}
	if len(batches) != 0 {
		t.Errorf("len(batches) after delete = %d, want 0", len(batches))
	}
}
