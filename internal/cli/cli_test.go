package cli

import (
	"os"
	"path/filepath"
	"testing"
)

const validInstanceJSON = `{
  "window": {"start_date": "2026-01-01", "end_date": "2026-01-03"},
  "manufacturing_node_id": "M",
  "nodes": [
    {"ID": "M", "Capabilities": {"CanManufacture": true, "CanStore": true, "Storage": {"Mode": "ambient"}}},
    {"ID": "D", "Capabilities": {"CanStore": true, "HasDemand": true, "Storage": {"Mode": "ambient"}}}
  ],
  "routes": [
    {"ID": "R1", "OriginNodeID": "M", "DestinationNodeID": "D", "TransitDays": 1, "TransportMode": "ambient", "CostPerUnit": 0.1}
  ],
  "products": [
    {"ID": "P1", "AmbientShelfLifeDays": 10}
  ],
  "labor_calendar": {
    "2026-01-01": {"date": "2026-01-01", "is_fixed_day": true, "fixed_hours": 12, "regular_rate": 20, "overtime_rate": 30},
    "2026-01-02": {"date": "2026-01-02", "is_fixed_day": true, "fixed_hours": 12, "regular_rate": 20, "overtime_rate": 30}
  },
  "costs": {"ProductionCostPerUnit": 1, "ShortagePenaltyPerUnit": 1000},
  "forecast": [
    {"location_id": "D", "product_id": "P1", "date": "2026-01-02", "quantity": 50},
    {"location_id": "D", "product_id": "P1", "date": "2026-01-03", "quantity": 50}
  ]
}`

func writeInstanceFile(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "instance.json")
	if err := os.WriteFile(path, []byte(validInstanceJSON), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestRunValidate_NoCriticalIssues(t *testing.T) {
	path := writeInstanceFile(t)
	validateCmd.Flags().Set("data", path)

	if err := runValidate(validateCmd, nil); err != nil {
		t.Fatalf("runValidate() error: %v", err)
	}
}

func TestRunRoutes_EnumeratesOneRoute(t *testing.T) {
	path := writeInstanceFile(t)
	routesCmd.Flags().Set("data", path)

	if err := runRoutes(routesCmd, nil); err != nil {
		t.Fatalf("runRoutes() error: %v", err)
	}
}

func TestRunSolve_WritesOutputFile(t *testing.T) {
	path := writeInstanceFile(t)
	outDir := t.TempDir()
	outPath := filepath.Join(outDir, "plan.json")

	solveCmd.Flags().Set("data", path)
	solveCmd.Flags().Set("output", outPath)
	solveCmd.Flags().Set("persist", "false")

	if err := runSolve(solveCmd, nil); err != nil {
		t.Fatalf("runSolve() error: %v", err)
	}

	if _, err := os.Stat(outPath); err != nil {
		t.Errorf("expected output file at %s: %v", outPath, err)
	}
}

func TestRunSolve_Persists(t *testing.T) {
	path := writeInstanceFile(t)
	dbDir := t.TempDir()

	solveCmd.Flags().Set("data", path)
	solveCmd.Flags().Set("output", "")
	solveCmd.Flags().Set("persist", "true")
	solveCmd.Flags().Set("db", dbDir)

	if err := runSolve(solveCmd, nil); err != nil {
		t.Fatalf("runSolve() error: %v", err)
	}

	historyCmd.Flags().Set("db", dbDir)
	historyCmd.Flags().Set("limit", "10")
	if err := runHistory(historyCmd, nil); err != nil {
		t.Fatalf("runHistory() error: %v", err)
	}
}

func TestRunHistory_EmptyDatabase(t *testing.T) {
	dbDir := t.TempDir()
	historyCmd.Flags().Set("db", dbDir)
	historyCmd.Flags().Set("limit", "10")

	if err := runHistory(historyCmd, nil); err != nil {
		t.Fatalf("runHistory() error: %v", err)
	}
}
