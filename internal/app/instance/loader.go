// Package instance loads a domain.Instance from a single JSON file. Excel/
// CSV ingestion and product-alias resolution are explicitly out of scope;
// JSON input is not, and is the format the CLI's --data flag reads.
package instance

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/planengine/planengine/internal/domain"
)

const dateLayout = "2006-01-02"

// wireInstance mirrors domain.Instance field for field, except the places
// where a plain date string needs converting to time.Time before it
// becomes domain data: the window bounds, forecast/inventory dates, the
// labor calendar's per-date entries, and a truck schedule's departure
// time/day-of-week.
type wireInstance struct {
	Window              wireWindow                   `json:"window"`
	Nodes               []domain.Node                `json:"nodes"`
	Routes              []domain.Route                `json:"routes"`
	Trucks              []wireTruckSchedule           `json:"trucks"`
	Products            []domain.Product              `json:"products"`
	LaborCalendar       map[string]wireLaborDay       `json:"labor_calendar"`
	Costs               domain.CostStructure          `json:"costs"`
	Forecast            []wireForecastEntry           `json:"forecast"`
	InitialInventory    []wireInitialInventoryEntry   `json:"initial_inventory"`
	ManufacturingNodeID string                        `json:"manufacturing_node_id"`
}

type wireWindow struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

type wireForecastEntry struct {
	LocationID string  `json:"location_id"`
	ProductID  string  `json:"product_id"`
	Date       string  `json:"date"`
	Quantity   float64 `json:"quantity"`
	Confidence float64 `json:"confidence"`
}

type wireInitialInventoryEntry struct {
	NodeID       string            `json:"node_id"`
	ProductID    string            `json:"product_id"`
	State        domain.CohortState `json:"state"`
	Quantity     float64           `json:"quantity"`
	SnapshotDate string            `json:"snapshot_date"`
}

type wireLaborDay struct {
	Date         string  `json:"date"`
	IsFixedDay   bool    `json:"is_fixed_day"`
	FixedHours   float64 `json:"fixed_hours"`
	RegularRate  float64 `json:"regular_rate"`
	OvertimeRate float64 `json:"overtime_rate"`
	NonFixedRate float64 `json:"non_fixed_rate"`
	MinimumHours float64 `json:"minimum_hours"`
}

type wireTruckSchedule struct {
	ID                string              `json:"id"`
	OriginNodeID      string              `json:"origin_node_id"`
	DestinationNodeID string              `json:"destination_node_id"`
	DepartureType     domain.DepartureType `json:"departure_type"`
	DepartureTime     string              `json:"departure_time"` // e.g. "8h0m0s"
	DayOfWeek         *domain.DayOfWeek   `json:"day_of_week"`
	Capacity          float64             `json:"capacity"`
	PalletCapacity    int                 `json:"pallet_capacity"`
	UnitsPerPallet    int                 `json:"units_per_pallet"`
	UnitsPerCase      int                 `json:"units_per_case"`
	IntermediateStops []string            `json:"intermediate_stops"`
	CostFixed         float64             `json:"cost_fixed"`
	CostPerUnit       float64             `json:"cost_per_unit"`
}

// Load reads and parses a JSON instance file at path into a domain.Instance.
func Load(path string) (domain.Instance, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Instance{}, fmt.Errorf("read instance file: %w", err)
	}
	return Parse(data)
}

// Parse converts raw JSON bytes into a domain.Instance.
func Parse(data []byte) (domain.Instance, error) {
	var w wireInstance
	if err := json.Unmarshal(data, &w); err != nil {
		return domain.Instance{}, fmt.Errorf("decode instance: %w", err)
	}
	return w.toDomain()
}

func (w wireInstance) toDomain() (domain.Instance, error) {
	start, err := parseDate(w.Window.StartDate)
	if err != nil {
		return domain.Instance{}, fmt.Errorf("window.start_date: %w", err)
	}
	end, err := parseDate(w.Window.EndDate)
	if err != nil {
		return domain.Instance{}, fmt.Errorf("window.end_date: %w", err)
	}

	forecast := make([]domain.ForecastEntry, len(w.Forecast))
	for i, f := range w.Forecast {
		d, err := parseDate(f.Date)
		if err != nil {
			return domain.Instance{}, fmt.Errorf("forecast[%d].date: %w", i, err)
		}
		forecast[i] = domain.ForecastEntry{
			LocationID: f.LocationID,
			ProductID:  f.ProductID,
			Date:       d,
			Quantity:   f.Quantity,
			Confidence: f.Confidence,
		}
	}

	initialInventory := make([]domain.InitialInventoryEntry, len(w.InitialInventory))
	for i, inv := range w.InitialInventory {
		d, err := parseDate(inv.SnapshotDate)
		if err != nil {
			return domain.Instance{}, fmt.Errorf("initial_inventory[%d].snapshot_date: %w", i, err)
		}
		initialInventory[i] = domain.InitialInventoryEntry{
			NodeID:       inv.NodeID,
			ProductID:    inv.ProductID,
			State:        inv.State,
			Quantity:     inv.Quantity,
			SnapshotDate: d,
		}
	}

	laborCalendar := make(map[string]domain.LaborDay, len(w.LaborCalendar))
	for key, ld := range w.LaborCalendar {
		d, err := parseDate(ld.Date)
		if err != nil {
			return domain.Instance{}, fmt.Errorf("labor_calendar[%s].date: %w", key, err)
		}
		laborCalendar[key] = domain.LaborDay{
			Date:         d,
			IsFixedDay:   ld.IsFixedDay,
			FixedHours:   ld.FixedHours,
			RegularRate:  ld.RegularRate,
			OvertimeRate: ld.OvertimeRate,
			NonFixedRate: ld.NonFixedRate,
			MinimumHours: ld.MinimumHours,
		}
	}

	trucks := make([]domain.TruckSchedule, len(w.Trucks))
	for i, t := range w.Trucks {
		var departure time.Duration
		if t.DepartureTime != "" {
			departure, err = time.ParseDuration(t.DepartureTime)
			if err != nil {
				return domain.Instance{}, fmt.Errorf("trucks[%d].departure_time: %w", i, err)
			}
		}
		trucks[i] = domain.TruckSchedule{
			ID:                t.ID,
			OriginNodeID:      t.OriginNodeID,
			DestinationNodeID: t.DestinationNodeID,
			DepartureType:     t.DepartureType,
			DepartureTime:     departure,
			DayOfWeek:         t.DayOfWeek,
			Capacity:          t.Capacity,
			PalletCapacity:    t.PalletCapacity,
			UnitsPerPallet:    t.UnitsPerPallet,
			UnitsPerCase:      t.UnitsPerCase,
			IntermediateStops: t.IntermediateStops,
			CostFixed:         t.CostFixed,
			CostPerUnit:       t.CostPerUnit,
		}
	}

	return domain.Instance{
		Window:              domain.PlanningWindow{StartDate: start, EndDate: end},
		Nodes:               w.Nodes,
		Routes:              w.Routes,
		Trucks:              trucks,
		Products:            w.Products,
		LaborCalendar:       laborCalendar,
		Costs:               w.Costs,
		Forecast:            forecast,
		InitialInventory:    initialInventory,
		ManufacturingNodeID: w.ManufacturingNodeID,
	}, nil
}

func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Time{}, fmt.Errorf("empty date")
	}
	return time.Parse(dateLayout, s)
}
