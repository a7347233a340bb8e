package sqlite

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/planengine/planengine/internal/domain"
	"github.com/planengine/planengine/internal/planning/solution"
	"github.com/planengine/planengine/internal/planning/validate"
)

// ─── Plan Schema ────────────────────────────────────────────────────────────

// PlanMigrations returns the schema migration statements for plan
// persistence. Each string is a single SQL statement (SQLite executes one
// at a time).
func PlanMigrations() []string {
	return []string{
		`CREATE TABLE IF NOT EXISTS plans (
			id               TEXT PRIMARY KEY,
			window_start     TEXT NOT NULL,
			window_end       TEXT NOT NULL,
			status           TEXT NOT NULL,
			objective_value  REAL NOT NULL DEFAULT 0,
			mip_gap          REAL NOT NULL DEFAULT 0,
			solve_duration_ms INTEGER NOT NULL DEFAULT 0,
			variable_count   INTEGER NOT NULL DEFAULT 0,
			constraint_count INTEGER NOT NULL DEFAULT 0,
			created_at       TEXT NOT NULL DEFAULT (datetime('now'))
		)`,
		`CREATE INDEX IF NOT EXISTS idx_plans_created_at ON plans(created_at)`,

		`CREATE TABLE IF NOT EXISTS plan_production (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			plan_id         TEXT NOT NULL REFERENCES plans(id),
			batch_id        TEXT NOT NULL,
			product_id      TEXT NOT NULL,
			node_id         TEXT NOT NULL,
			production_date TEXT NOT NULL,
			quantity        REAL NOT NULL,
			is_start_day    INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_plan_production_plan ON plan_production(plan_id)`,

		`CREATE TABLE IF NOT EXISTS plan_shipments (
			id                   INTEGER PRIMARY KEY AUTOINCREMENT,
			plan_id              TEXT NOT NULL REFERENCES plans(id),
			shipment_id          TEXT NOT NULL,
			product_id           TEXT NOT NULL,
			origin_node_id       TEXT NOT NULL,
			destination_node_id  TEXT NOT NULL,
			production_date      TEXT NOT NULL,
			departure_date       TEXT NOT NULL,
			delivery_date        TEXT NOT NULL,
			delivered_state      TEXT NOT NULL,
			quantity             REAL NOT NULL,
			route_path           TEXT NOT NULL DEFAULT '[]',
			cost_per_unit        REAL NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_plan_shipments_plan ON plan_shipments(plan_id)`,

		`CREATE TABLE IF NOT EXISTS plan_issues (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			plan_id         TEXT NOT NULL REFERENCES plans(id),
			issue_id        TEXT NOT NULL,
			severity        TEXT NOT NULL,
			category        TEXT NOT NULL,
			title           TEXT NOT NULL,
			description     TEXT NOT NULL,
			impact          TEXT NOT NULL,
			fix_guidance    TEXT NOT NULL,
			affected_data   TEXT NOT NULL DEFAULT '{}'
		)`,
		`CREATE INDEX IF NOT EXISTS idx_plan_issues_plan ON plan_issues(plan_id)`,
	}
}

// ─── Plan Operations ────────────────────────────────────────────────────────

// InsertPlan persists a solved plan and its production/shipment decisions in
// one transaction, keyed by id (the caller supplies a UUID or similar).
func (db *DB) InsertPlan(id string, window domain.PlanningWindow, sol solution.Solution) error {
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`
		INSERT INTO plans (id, window_start, window_end, status, objective_value, mip_gap, solve_duration_ms, variable_count, constraint_count)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, id, window.StartDate.Format("2006-01-02"), window.EndDate.Format("2006-01-02"),
		string(sol.Status), sol.ObjectiveValue, sol.MIPGap, sol.SolveDuration.Milliseconds(),
		sol.VariableCount, sol.ConstraintCount)
	if err != nil {
		return fmt.Errorf("insert plan: %w", err)
	}

	for _, b := range sol.ProductionBatches {
		_, err = tx.Exec(`
			INSERT INTO plan_production (plan_id, batch_id, product_id, node_id, production_date, quantity, is_start_day)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`, id, b.ID, b.ProductID, b.NodeID, b.ProductionDate.Format("2006-01-02"), b.Quantity, boolToInt(b.IsStartDay))
		if err != nil {
			return fmt.Errorf("insert production batch %s: %w", b.ID, err)
		}
	}

	for _, sh := range sol.Shipments {
		routeJSON, err := json.Marshal(sh.RoutePath)
		if err != nil {
			return fmt.Errorf("marshal route path for %s: %w", sh.ID, err)
		}
		_, err = tx.Exec(`
			INSERT INTO plan_shipments (plan_id, shipment_id, product_id, origin_node_id, destination_node_id,
				production_date, departure_date, delivery_date, delivered_state, quantity, route_path, cost_per_unit)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, id, sh.ID, sh.ProductID, sh.OriginNodeID, sh.DestinationNodeID,
			sh.ProductionDate.Format("2006-01-02"), sh.DepartureDate.Format("2006-01-02"), sh.DeliveryDate.Format("2006-01-02"),
			string(sh.DeliveredState), sh.Quantity, string(routeJSON), sh.CostPerUnit)
		if err != nil {
			return fmt.Errorf("insert shipment %s: %w", sh.ID, err)
		}
	}

	return tx.Commit()
}

// InsertPlanIssues persists the validator's findings against a plan.
func (db *DB) InsertPlanIssues(planID string, issues []validate.Issue) error {
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, iss := range issues {
		affectedJSON, err := json.Marshal(iss.AffectedData)
		if err != nil {
			return fmt.Errorf("marshal affected data for issue %s: %w", iss.ID, err)
		}
		_, err = tx.Exec(`
			INSERT INTO plan_issues (plan_id, issue_id, severity, category, title, description, impact, fix_guidance, affected_data)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`, planID, iss.ID, string(iss.Severity), string(iss.Category), iss.Title, iss.Description, iss.Impact, iss.FixGuidance, string(affectedJSON))
		if err != nil {
			return fmt.Errorf("insert issue %s: %w", iss.ID, err)
		}
	}

	return tx.Commit()
}

// PlanSummary is one row of plan metadata, without its line items.
type PlanSummary struct {
	ID              string
	WindowStart     time.Time
	WindowEnd       time.Time
	Status          string
	ObjectiveValue  float64
	MIPGap          float64
	SolveDurationMs int64
	VariableCount   int
	ConstraintCount int
	CreatedAt       time.Time
}

// GetPlan retrieves one plan's summary by id.
func (db *DB) GetPlan(id string) (PlanSummary, error) {
	var p PlanSummary
	var startStr, endStr, createdStr string
	err := db.db.QueryRow(`
		SELECT id, window_start, window_end, status, objective_value, mip_gap, solve_duration_ms, variable_count, constraint_count, created_at
		FROM plans WHERE id = ?
	`, id).Scan(&p.ID, &startStr, &endStr, &p.Status, &p.ObjectiveValue, &p.MIPGap, &p.SolveDurationMs, &p.VariableCount, &p.ConstraintCount, &createdStr)
	if err != nil {
		return PlanSummary{}, err
	}
	p.WindowStart, _ = time.Parse("2006-01-02", startStr)
	p.WindowEnd, _ = time.Parse("2006-01-02", endStr)
	p.CreatedAt, _ = time.Parse("2006-01-02 15:04:05", createdStr)
	return p, nil
}

// ListPlans returns the most recent plans, newest first.
func (db *DB) ListPlans(limit int) ([]PlanSummary, error) {
	rows, err := db.db.Query(`
		SELECT id, window_start, window_end, status, objective_value, mip_gap, solve_duration_ms, variable_count, constraint_count, created_at
		FROM plans ORDER BY created_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []PlanSummary
	for rows.Next() {
		var p PlanSummary
		var startStr, endStr, createdStr string
		if err := rows.Scan(&p.ID, &startStr, &endStr, &p.Status, &p.ObjectiveValue, &p.MIPGap, &p.SolveDurationMs, &p.VariableCount, &p.ConstraintCount, &createdStr); err != nil {
			return nil, err
		}
		p.WindowStart, _ = time.Parse("2006-01-02", startStr)
		p.WindowEnd, _ = time.Parse("2006-01-02", endStr)
		p.CreatedAt, _ = time.Parse("2006-01-02 15:04:05", createdStr)
		result = append(result, p)
	}
	return result, rows.Err()
}

// GetPlanProduction returns every production batch recorded against a plan.
func (db *DB) GetPlanProduction(planID string) ([]solution.ProductionBatch, error) {
	rows, err := db.db.Query(`
		SELECT batch_id, product_id, node_id, production_date, quantity, is_start_day
		FROM plan_production WHERE plan_id = ? ORDER BY production_date, product_id
	`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []solution.ProductionBatch
	for rows.Next() {
		var b solution.ProductionBatch
		var dateStr string
		var startInt int
		if err := rows.Scan(&b.ID, &b.ProductID, &b.NodeID, &dateStr, &b.Quantity, &startInt); err != nil {
			return nil, err
		}
		b.ProductionDate, _ = time.Parse("2006-01-02", dateStr)
		b.IsStartDay = startInt == 1
		result = append(result, b)
	}
	return result, rows.Err()
}

// GetPlanShipments returns every shipment decision recorded against a plan.
func (db *DB) GetPlanShipments(planID string) ([]solution.ShipmentDecision, error) {
	rows, err := db.db.Query(`
		SELECT shipment_id, product_id, origin_node_id, destination_node_id, production_date,
			departure_date, delivery_date, delivered_state, quantity, route_path, cost_per_unit
		FROM plan_shipments WHERE plan_id = ? ORDER BY departure_date, product_id
	`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []solution.ShipmentDecision
	for rows.Next() {
		var sh solution.ShipmentDecision
		var prodStr, departStr, deliverStr, stateStr, routeJSON string
		if err := rows.Scan(&sh.ID, &sh.ProductID, &sh.OriginNodeID, &sh.DestinationNodeID, &prodStr,
			&departStr, &deliverStr, &stateStr, &sh.Quantity, &routeJSON, &sh.CostPerUnit); err != nil {
			return nil, err
		}
		sh.ProductionDate, _ = time.Parse("2006-01-02", prodStr)
		sh.DepartureDate, _ = time.Parse("2006-01-02", departStr)
		sh.DeliveryDate, _ = time.Parse("2006-01-02", deliverStr)
		sh.DeliveredState = domain.CohortState(stateStr)
		_ = json.Unmarshal([]byte(routeJSON), &sh.RoutePath)
		result = append(result, sh)
	}
	return result, rows.Err()
}

// GetPlanIssues returns every validation issue recorded against a plan.
func (db *DB) GetPlanIssues(planID string) ([]validate.Issue, error) {
	rows, err := db.db.Query(`
		SELECT issue_id, severity, category, title, description, impact, fix_guidance, affected_data
		FROM plan_issues WHERE plan_id = ? ORDER BY id
	`, planID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []validate.Issue
	for rows.Next() {
		var iss validate.Issue
		var severity, category, affectedJSON string
		if err := rows.Scan(&iss.ID, &severity, &category, &iss.Title, &iss.Description, &iss.Impact, &iss.FixGuidance, &affectedJSON); err != nil {
			return nil, err
		}
		iss.Severity = validate.Severity(severity)
		iss.Category = validate.Category(category)
		_ = json.Unmarshal([]byte(affectedJSON), &iss.AffectedData)
		result = append(result, iss)
	}
	return result, rows.Err()
}

// DeletePlan removes a plan and its line items.
func (db *DB) DeletePlan(id string) error {
	tx, err := db.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, stmt := range []string{
		`DELETE FROM plan_issues WHERE plan_id = ?`,
		`DELETE FROM plan_shipments WHERE plan_id = ?`,
		`DELETE FROM plan_production WHERE plan_id = ?`,
		`DELETE FROM plans WHERE id = ?`,
	} {
		if _, err := tx.Exec(stmt, id); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
