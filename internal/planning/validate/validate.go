// Package validate implements the pre-flight validator: completeness,
// consistency, capacity, transport, shelf-life, date-range, data-quality,
// and business-rule checks over a planning Instance.
package validate

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/planengine/planengine/internal/domain"
)

// Severity levels for a validation Issue.
type Severity string

const (
	Info     Severity = "info"
	Warning  Severity = "warning"
	Error    Severity = "error"
	Critical Severity = "critical"
)

// Category groups related checks.
type Category string

const (
	CategoryCompleteness  Category = "completeness"
	CategoryConsistency   Category = "consistency"
	CategoryCapacity      Category = "capacity"
	CategoryTransport     Category = "transport"
	CategoryShelfLife     Category = "shelf_life"
	CategoryDateRange     Category = "date_range"
	CategoryDataQuality   Category = "data_quality"
	CategoryBusinessRules Category = "business_rules"
)

// Issue is a single validation finding: id, severity, category, title,
// description, impact, fix guidance, and the affected data that produced
// the finding.
type Issue struct {
	ID           string
	Severity     Severity
	Category     Category
	Title        string
	Description  string
	Impact       string
	FixGuidance  string
	AffectedData map[string]any
}

// Result is the full validator output: critical issues block planning,
// errors and warnings are advisory.
type Result struct {
	Issues []Issue
}

// HasCritical reports whether any issue is Critical severity.
func (r Result) HasCritical() bool {
	for _, i := range r.Issues {
		if i.Severity == Critical {
			return true
		}
	}
	return false
}

// ByCategory groups issues for reporting.
func (r Result) ByCategory() map[Category][]Issue {
	out := make(map[Category][]Issue)
	for _, i := range r.Issues {
		out[i.Category] = append(out[i.Category], i)
	}
	return out
}

const (
	maxRegularHours = 12.0
	maxDailyHours   = 14.0
)

// Run performs all pre-flight checks over a planning Instance and
// configuration. Running Run twice on unchanged inputs yields an
// identical issue list — the function is pure.
func Run(inst domain.Instance, cfg domain.Config) Result {
	var issues []Issue

	issues = append(issues, checkCompleteness(inst)...)
	issues = append(issues, checkConsistency(inst)...)
	issues = append(issues, checkCapacity(inst)...)
	issues = append(issues, checkTransport(inst)...)
	issues = append(issues, checkShelfLife(inst)...)
	issues = append(issues, checkDateRange(inst, cfg)...)
	issues = append(issues, checkDataQuality(inst)...)
	issues = append(issues, checkBusinessRules(inst)...)

	sort.SliceStable(issues, func(i, j int) bool { return issues[i].ID < issues[j].ID })
	return Result{Issues: issues}
}

func checkCompleteness(inst domain.Instance) []Issue {
	var issues []Issue
	if len(inst.Nodes) == 0 {
		issues = append(issues, Issue{
			ID: "COMPLETE-001", Severity: Critical, Category: CategoryCompleteness,
			Title: "No nodes defined", Description: "The instance has zero nodes.",
			Impact: "No network can be built; the engine cannot run.",
			FixGuidance: "Provide at least a manufacturing node and one demand node.",
		})
	}
	if len(inst.Routes) == 0 {
		issues = append(issues, Issue{
			ID: "COMPLETE-002", Severity: Warning, Category: CategoryCompleteness,
			Title: "No routes defined", Description: "The instance has zero routes.",
			Impact: "No shipments are possible; all demand will show as shortage.",
			FixGuidance: "Provide at least one route from the manufacturing node.",
		})
	}
	if len(inst.Forecast) == 0 {
		issues = append(issues, Issue{
			ID: "COMPLETE-003", Severity: Warning, Category: CategoryCompleteness,
			Title: "No forecast entries", Description: "The instance has zero demand entries.",
			Impact: "The model has nothing to satisfy; production will be zero.",
			FixGuidance: "Provide demand forecast rows for the planning horizon.",
		})
	}
	if len(inst.Products) == 0 {
		issues = append(issues, Issue{
			ID: "COMPLETE-004", Severity: Critical, Category: CategoryCompleteness,
			Title: "No products defined", Description: "The instance has zero products.",
			Impact: "Shelf life and mix rules cannot be applied.",
			FixGuidance: "Provide at least one product definition.",
		})
	}
	if len(inst.LaborCalendar) == 0 {
		issues = append(issues, Issue{
			ID: "COMPLETE-005", Severity: Error, Category: CategoryCompleteness,
			Title: "No labor calendar", Description: "The instance has zero labor calendar entries.",
			Impact: "Labor hours and sunk cost cannot be computed.",
			FixGuidance: "Provide a labor calendar covering the planning horizon.",
		})
	}
	if inst.ManufacturingNodeID == "" {
		issues = append(issues, Issue{
			ID: "COMPLETE-006", Severity: Critical, Category: CategoryCompleteness,
			Title: "No manufacturing node designated", Description: "Instance.ManufacturingNodeID is empty.",
			Impact: "Production cannot be anchored to a source node.",
			FixGuidance: "Set ManufacturingNodeID to a node with CanManufacture=true.",
		})
	}
	return issues
}

func checkConsistency(inst domain.Instance) []Issue {
	var issues []Issue
	nodeIDs := make(map[string]bool, len(inst.Nodes))
	for _, n := range inst.Nodes {
		nodeIDs[n.ID] = true
	}
	productIDs := make(map[string]bool, len(inst.Products))
	for _, p := range inst.Products {
		productIDs[p.ID] = true
	}

	for _, r := range inst.Routes {
		if !nodeIDs[r.OriginNodeID] {
			issues = append(issues, crossRefIssue("route", r.ID, "origin_node_id", r.OriginNodeID))
		}
		if !nodeIDs[r.DestinationNodeID] {
			issues = append(issues, crossRefIssue("route", r.ID, "destination_node_id", r.DestinationNodeID))
		}
	}
	for _, tr := range inst.Trucks {
		if !nodeIDs[tr.OriginNodeID] {
			issues = append(issues, crossRefIssue("truck", tr.ID, "origin_node_id", tr.OriginNodeID))
		}
		if !nodeIDs[tr.DestinationNodeID] {
			issues = append(issues, crossRefIssue("truck", tr.ID, "destination_node_id", tr.DestinationNodeID))
		}
		for _, stop := range tr.IntermediateStops {
			if !nodeIDs[stop] {
				issues = append(issues, crossRefIssue("truck", tr.ID, "intermediate_stop", stop))
			}
		}
	}
	for _, f := range inst.Forecast {
		if !nodeIDs[f.LocationID] {
			issues = append(issues, crossRefIssue("forecast", f.LocationID+"/"+f.ProductID, "location_id", f.LocationID))
		}
		if !productIDs[f.ProductID] {
			issues = append(issues, crossRefIssue("forecast", f.LocationID+"/"+f.ProductID, "product_id", f.ProductID))
		}
	}
	return issues
}

func crossRefIssue(entity, id, field, value string) Issue {
	return Issue{
		ID: "CONSIST-" + entity + "-" + field, Severity: Error, Category: CategoryConsistency,
		Title:       fmt.Sprintf("Unresolved cross-reference in %s %s", entity, id),
		Description: fmt.Sprintf("%s.%s=%q does not match any known node/product.", entity, field, value),
		Impact:      "This entity will be excluded from the network or rejected outright.",
		FixGuidance: "Correct the reference or add the missing entity.",
		AffectedData: map[string]any{"entity": entity, "id": id, "field": field, "value": value},
	}
}

// checkCapacity compares the total demand on each date that has a labor
// calendar entry against a 12h regular and a 14h absolute capacity at the
// manufacturing node's rate, and reports nothing when that rate is unset.
// No horizon-wide or weekend-inclusive capacity is computed.
func checkCapacity(inst domain.Instance) []Issue {
	var issues []Issue
	if len(inst.LaborCalendar) == 0 {
		return issues
	}

	demandByDate := make(map[string]float64)
	for _, f := range inst.Forecast {
		demandByDate[f.Date.Format("2006-01-02")] += f.Quantity
	}

	var rate float64
	for _, n := range inst.Nodes {
		if n.ID == inst.ManufacturingNodeID {
			rate = n.Capabilities.Manufacturing.ProductionRatePerHour
		}
	}
	if rate <= 0 {
		return issues
	}

	for dateKey, demand := range demandByDate {
		day, ok := inst.LaborCalendar[dateKey]
		if !ok {
			continue
		}
		regularCapacity := maxRegularHours * rate
		absoluteCapacity := maxDailyHours * rate
		if demand > absoluteCapacity {
			issues = append(issues, Issue{
				ID: "CAPACITY-ABS-" + dateKey, Severity: Critical, Category: CategoryCapacity,
				Title:       "Demand exceeds absolute production capacity",
				Description: fmt.Sprintf("Demand %.0f on %s exceeds absolute capacity %.0f (%.0fh at %.0f/h).", demand, dateKey, absoluteCapacity, maxDailyHours, rate),
				Impact:      "This date cannot be fully served regardless of overtime.",
				FixGuidance: "Spread demand across more days or add a second shift/node.",
			})
		} else if demand > regularCapacity && !day.IsFixedDay {
			issues = append(issues, Issue{
				ID: "CAPACITY-REG-" + dateKey, Severity: Warning, Category: CategoryCapacity,
				Title:       "Demand exceeds regular-hours capacity",
				Description: fmt.Sprintf("Demand %.0f on %s exceeds regular capacity %.0f; overtime required.", demand, dateKey, regularCapacity),
				Impact:      "Overtime hours will be incurred at the overtime rate.",
				FixGuidance: "Confirm overtime budget or shift demand to an earlier date.",
			})
		}
	}
	return issues
}

// checkTransport compares demand against weekly truck capacity per
// destination.
func checkTransport(inst domain.Instance) []Issue {
	var issues []Issue
	weeklyCapacityByDest := make(map[string]float64)
	for _, tr := range inst.Trucks {
		days := 7.0
		if tr.IsDaySpecific() {
			days = 1.0
		}
		weeklyCapacityByDest[tr.DestinationNodeID] += tr.Capacity * days
	}
	demandByDest := make(map[string]float64)
	for _, f := range inst.Forecast {
		demandByDest[f.LocationID] += f.Quantity
	}
	horizonWeeks := math.Max(1, float64(len(inst.Window.Days()))/7)
	for dest, demand := range demandByDest {
		capacity := weeklyCapacityByDest[dest] * horizonWeeks
		if capacity > 0 && demand > capacity {
			issues = append(issues, Issue{
				ID: "TRANSPORT-" + dest, Severity: Warning, Category: CategoryTransport,
				Title:       "Demand may exceed weekly truck capacity",
				Description: fmt.Sprintf("Total horizon demand %.0f at %s exceeds estimated truck capacity %.0f.", demand, dest, capacity),
				Impact:      "Shipments may need to be spread earlier or shortages may occur.",
				FixGuidance: "Add truck departures to this destination or relax shelf-life-driven timing.",
			})
		}
	}
	return issues
}

// checkShelfLife flags destinations where the shortest available transit
// already leaves remaining shelf life below minimum acceptance.
func checkShelfLife(inst domain.Instance) []Issue {
	var issues []Issue
	shortestTransitToDest := make(map[string]float64)
	for _, r := range inst.Routes {
		cur, ok := shortestTransitToDest[r.DestinationNodeID]
		if !ok || r.TransitDays < cur {
			shortestTransitToDest[r.DestinationNodeID] = r.TransitDays
		}
	}
	for _, p := range inst.Products {
		for dest, transit := range shortestTransitToDest {
			remaining := float64(p.AmbientShelfLifeDays) - transit
			if remaining < float64(p.MinAcceptableShelfLife) {
				issues = append(issues, Issue{
					ID: "SHELFLIFE-" + dest + "-" + p.ID, Severity: Error, Category: CategoryShelfLife,
					Title:       "Shortest transit leaves insufficient shelf life",
					Description: fmt.Sprintf("Product %s to %s: shortest transit %.1fd leaves %.1fd remaining, below minimum %d.", p.ID, dest, transit, remaining, p.MinAcceptableShelfLife),
					Impact:      "Ambient-only routing cannot serve this destination; frozen transit with a thaw stage is required.",
					FixGuidance: "Route via a freeze/thaw-capable hub, or shorten transit.",
				})
			}
		}
	}
	return issues
}

// checkDateRange reports every horizon date missing from the labor calendar
// as a Warning; a critical date (a weekday with demand) is reported as an
// Error instead when StrictValidation is set.
func checkDateRange(inst domain.Instance, cfg domain.Config) []Issue {
	var issues []Issue
	demandDates := make(map[string]bool)
	for _, f := range inst.Forecast {
		demandDates[f.Date.Format("2006-01-02")] = true
	}
	for _, d := range inst.Window.Days() {
		key := d.Format("2006-01-02")
		if _, ok := inst.LaborCalendar[key]; ok {
			continue
		}
		isWeekend := d.Weekday() == time.Saturday || d.Weekday() == time.Sunday
		critical := demandDates[key] && !isWeekend
		sev := Warning
		if critical && cfg.StrictValidation {
			sev = Error
		}
		issues = append(issues, Issue{
			ID: "DATERANGE-" + key, Severity: sev, Category: CategoryDateRange,
			Title:       "Labor calendar missing date",
			Description: fmt.Sprintf("No labor calendar entry for %s.", key),
			Impact:      "A standard weekday default will be used with a one-time warning unless strict validation is set.",
			FixGuidance: "Add a labor calendar entry for this date.",
		})
	}
	return issues
}

// checkDataQuality flags outliers (beyond 3 standard deviations) and
// zero/negative quantities; quantities are not checked against case sizes.
func checkDataQuality(inst domain.Instance) []Issue {
	var issues []Issue
	if len(inst.Forecast) == 0 {
		return issues
	}

	var sum, sumSq float64
	for _, f := range inst.Forecast {
		sum += f.Quantity
		sumSq += f.Quantity * f.Quantity
		if f.Quantity <= 0 {
			issues = append(issues, Issue{
				ID: "QUALITY-ZERO-" + f.LocationID + "-" + f.ProductID + "-" + f.Date.Format("2006-01-02"),
				Severity: Warning, Category: CategoryDataQuality,
				Title:       "Zero or negative demand quantity",
				Description: fmt.Sprintf("Forecast row for %s/%s on %s has quantity %.1f.", f.LocationID, f.ProductID, f.Date.Format("2006-01-02"), f.Quantity),
				Impact:      "This row contributes nothing (or is invalid) and will be ignored.",
				FixGuidance: "Remove the row or correct the quantity.",
			})
		}
	}
	n := float64(len(inst.Forecast))
	mean := sum / n
	variance := sumSq/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	stddev := math.Sqrt(variance)
	if stddev > 0 {
		for _, f := range inst.Forecast {
			if math.Abs(f.Quantity-mean) > 3*stddev {
				issues = append(issues, Issue{
					ID: "QUALITY-OUTLIER-" + f.LocationID + "-" + f.ProductID + "-" + f.Date.Format("2006-01-02"),
					Severity: Info, Category: CategoryDataQuality,
					Title:       "Demand outlier beyond 3 sigma",
					Description: fmt.Sprintf("Quantity %.1f is more than 3 standard deviations from the mean %.1f (sigma=%.1f).", f.Quantity, mean, stddev),
					Impact:      "May indicate a data entry error; will still be planned as given.",
					FixGuidance: "Confirm this demand figure with the forecasting team.",
				})
			}
		}
	}
	return issues
}

// checkBusinessRules flags demand nodes that are structurally unreachable
// (no route chain can possibly reach them, ignoring shelf life/capacity).
func checkBusinessRules(inst domain.Instance) []Issue {
	var issues []Issue
	reachable := make(map[string]bool)
	reachable[inst.ManufacturingNodeID] = true
	changed := true
	for changed {
		changed = false
		for _, r := range inst.Routes {
			if reachable[r.OriginNodeID] && !reachable[r.DestinationNodeID] {
				reachable[r.DestinationNodeID] = true
				changed = true
			}
		}
	}
	demandNodes := make(map[string]bool)
	for _, f := range inst.Forecast {
		demandNodes[f.LocationID] = true
	}
	for nodeID := range demandNodes {
		if !reachable[nodeID] {
			issues = append(issues, Issue{
				ID: "BUSINESS-UNREACHABLE-" + nodeID, Severity: Critical, Category: CategoryBusinessRules,
				Title:       "Demand node unreachable",
				Description: fmt.Sprintf("No route chain connects %s to the manufacturing node.", nodeID),
				Impact:      "All demand at this node will show as shortage.",
				FixGuidance: "Add a route (directly or via a hub) to this node.",
			})
		}
	}
	return issues
}
