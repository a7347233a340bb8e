package model

import (
	"fmt"
	"time"

	"github.com/planengine/planengine/internal/domain"
	"github.com/planengine/planengine/internal/planning/cohort"
)

// builder carries the mutable emission state while Build constructs a
// Model. It is not exported — callers only ever see the finished *Model.
type builder struct {
	m    *Model
	inst domain.Instance
	idx  *cohort.Indexes
	cfg  domain.Config

	productsByID map[string]domain.Product

	// var name -> index lookups, keyed by the same tuples the index sets use
	productionVar       map[productionKey]int
	invVar              map[cohort.InventoryKey]int
	shipVar             map[cohort.ShipmentKey]int
	freezeVar           map[cohort.FreezeThawKey]int
	thawVar             map[cohort.FreezeThawKey]int
	demandVar           map[cohort.DemandKey]int
	shortageVar         map[shortageKey]int
	laborVar            map[string]laborVars // keyed by date
	truckVar            map[truckKey]int
	truckUsedVar        map[truckKey]int
	truckPalletVar      map[truckKey]int
	palletVar           map[palletKey]int
	producedVar         map[productionKey]int
	startVar            map[productionKey]int
	mixCountVar         map[productionKey]int
	productionActiveVar map[string]int // keyed by date
}

type productionKey struct {
	productID string
	date      string
}

type shortageKey struct {
	nodeID    string
	productID string
	date      string
}

type truckKey struct {
	truckID string
	date    string
}

type palletKey struct {
	nodeID         string
	productID      string
	productionDate string
	currentDate    string
	state          domain.CohortState
}

func dateKey(t time.Time) string { return t.Format("2006-01-02") }

func (b *builder) init() {
	if b.productsByID != nil {
		return
	}
	b.productsByID = make(map[string]domain.Product, len(b.inst.Products))
	for _, p := range b.inst.Products {
		b.productsByID[p.ID] = p
	}
	b.productionVar = make(map[productionKey]int)
	b.invVar = make(map[cohort.InventoryKey]int)
	b.shipVar = make(map[cohort.ShipmentKey]int)
	b.freezeVar = make(map[cohort.FreezeThawKey]int)
	b.thawVar = make(map[cohort.FreezeThawKey]int)
	b.demandVar = make(map[cohort.DemandKey]int)
	b.shortageVar = make(map[shortageKey]int)
	b.laborVar = make(map[string]laborVars)
	b.truckVar = make(map[truckKey]int)
	b.truckUsedVar = make(map[truckKey]int)
	b.truckPalletVar = make(map[truckKey]int)
	b.palletVar = make(map[palletKey]int)
	b.producedVar = make(map[productionKey]int)
	b.startVar = make(map[productionKey]int)
	b.mixCountVar = make(map[productionKey]int)
	b.productionActiveVar = make(map[string]int)
}

type laborVars struct {
	hours, fixedUsed, overtime, nonFixedUsed int
}

// emitProductionVars creates one production variable per (product,
// production date) touched by the inventory index's production-day
// cohorts (cohorts where production_date == current_date and
// state=ambient) — the manufacturing node's per-product, per-day
// production quantity.
func (b *builder) emitProductionVars() {
	b.init()
	seen := make(map[productionKey]bool)
	for _, k := range b.idx.Inventory {
		if !k.ProductionDate.Equal(k.CurrentDate) || k.State != domain.StateAmbient {
			continue
		}
		pk := productionKey{productID: k.ProductID, date: dateKey(k.ProductionDate)}
		if seen[pk] {
			continue
		}
		seen[pk] = true
		name := "production[" + k.ProductID + "," + pk.date + "]"
		idx := b.m.addVar(name, Continuous, 0, inf)
		b.productionVar[pk] = idx
	}
}

// emitCohortFlowVars creates one variable per inventory cohort, shipment
// cohort, freeze/thaw opportunity (split into a freeze and thaw variable
// each, since both directions share a FreezeThawKey only distinguished by
// Direction), and demand-eligible cohort.
func (b *builder) emitCohortFlowVars() {
	for _, k := range b.idx.Inventory {
		name := "inv[" + k.NodeID + "," + k.ProductID + "," + dateKey(k.ProductionDate) + "," + dateKey(k.CurrentDate) + "," + string(k.State) + "]"
		idx := b.m.addVar(name, Continuous, 0, inf)
		b.invVar[k] = idx
	}
	for _, k := range b.idx.Shipment {
		name := "ship[" + k.OriginNodeID + "->" + k.DestinationNodeID + "," + k.ProductID + "," + dateKey(k.ProductionDate) + "," + dateKey(k.DeliveryDate) + "]"
		idx := b.m.addVar(name, Continuous, 0, inf)
		b.shipVar[k] = idx
	}
	for _, k := range b.idx.FreezeThaw {
		base := "[" + k.NodeID + "," + k.ProductID + "," + dateKey(k.ProductionDate) + "," + dateKey(k.CurrentDate) + "]"
		if k.Direction == cohort.DirectionFreeze {
			b.freezeVar[k] = b.m.addVar("freeze"+base, Continuous, 0, inf)
		} else {
			b.thawVar[k] = b.m.addVar("thaw"+base, Continuous, 0, inf)
		}
	}
	for _, k := range b.idx.Demand {
		name := "demand[" + k.NodeID + "," + k.ProductID + "," + dateKey(k.ProductionDate) + "," + dateKey(k.DemandDate) + "," + string(k.State) + "]"
		idx := b.m.addVar(name, Continuous, 0, inf)
		b.demandVar[k] = idx
	}
}

// emitShortageVars creates one shortage variable per (node, product, date)
// with forecast demand, only when the instance allows shortages.
func (b *builder) emitShortageVars() {
	if !b.cfg.AllowShortages {
		return
	}
	seen := make(map[shortageKey]bool)
	for _, f := range b.inst.Forecast {
		sk := shortageKey{nodeID: f.LocationID, productID: f.ProductID, date: dateKey(f.Date)}
		if seen[sk] {
			continue
		}
		seen[sk] = true
		name := "shortage[" + f.LocationID + "," + f.ProductID + "," + sk.date + "]"
		idx := b.m.addVar(name, Continuous, 0, inf)
		b.shortageVar[sk] = idx
	}
}

// emitLaborVars creates the decomposed labor-hour variables for every date
// in the planning horizon.
func (b *builder) emitLaborVars() {
	for _, d := range b.inst.Window.Days() {
		k := dateKey(d)
		day, ok := b.inst.LaborCalendar[k]
		if !ok {
			day = domain.DefaultWeekdayLaborDay(d)
		}

		hours := b.m.addVar("labor_hours["+k+"]", Continuous, 0, inf)
		var fixedUsed int
		if day.IsFixedDay {
			// Fixed hours are a sunk cost: fixed_used is pinned to
			// FixedHours as both bounds, so it behaves as a constant
			// within the LP while remaining a real variable for the
			// objective to reference uniformly regardless of the fixed-labor gate.
			fixedUsed = b.m.addVar("fixed_used["+k+"]", Continuous, day.FixedHours, day.FixedHours)
		} else {
			fixedUsed = b.m.addVar("fixed_used["+k+"]", Continuous, 0, 0)
		}
		overtime := b.m.addVar("overtime["+k+"]", Continuous, 0, inf)
		nonFixed := b.m.addVar("non_fixed_used["+k+"]", Continuous, 0, inf)

		b.laborVar[k] = laborVars{hours: hours, fixedUsed: fixedUsed, overtime: overtime, nonFixedUsed: nonFixed}
	}
}

// emitTruckVars creates a load variable per (truck, date) it applies on,
// plus a binary truck_used variable when the truck carries a fixed cost.
func (b *builder) emitTruckVars() {
	for _, tr := range b.inst.Trucks {
		for _, d := range b.inst.Window.Days() {
			if !tr.AppliesOnDate(d) {
				continue
			}
			tk := truckKey{truckID: tr.ID, date: dateKey(d)}
			idx := b.m.addVar("truck_load["+tr.ID+","+tk.date+"]", Continuous, 0, tr.Capacity)
			b.truckVar[tk] = idx
			if tr.CostFixed > 0 {
				b.truckUsedVar[tk] = b.m.addVar("truck_used["+tr.ID+","+tk.date+"]", Binary, 0, 1)
			}
		}
	}
}

// emitPalletVars creates an integer pallet_count variable for every
// inventory cohort in a state with active pallet tracking — states
// without active pallet cost are never indexed here, the structural
// reduction that keeps the model small when pallet costs are unused.
func (b *builder) emitPalletVars() {
	for _, k := range b.idx.Inventory {
		if !b.palletTrackingActiveFor(k.State) {
			continue
		}
		pk := palletKey{nodeID: k.NodeID, productID: k.ProductID,
			productionDate: dateKey(k.ProductionDate), currentDate: dateKey(k.CurrentDate), state: k.State}
		name := "pallet_count[" + pk.nodeID + "," + pk.productID + "," + pk.productionDate + "," + pk.currentDate + "," + string(pk.state) + "]"
		idx := b.m.addVar(name, Integer, 0, inf)
		b.palletVar[pk] = idx
	}
}

// emitTruckPalletVars creates an integer truck_pallets variable, bounded by
// the truck's pallet capacity, for every truck-date that tracks pallets
// (PalletCapacity set on the instance).
func (b *builder) emitTruckPalletVars() {
	for tk := range b.truckVar {
		tr := b.truckByID(tk.truckID)
		if tr == nil || tr.PalletCapacity <= 0 {
			continue
		}
		name := "truck_pallets[" + tk.truckID + "," + tk.date + "]"
		idx := b.m.addVar(name, Integer, 0, float64(tr.PalletCapacity))
		b.truckPalletVar[tk] = idx
	}
}

func (b *builder) truckByID(id string) *domain.TruckSchedule {
	for i := range b.inst.Trucks {
		if b.inst.Trucks[i].ID == id {
			return &b.inst.Trucks[i]
		}
	}
	return nil
}

func (b *builder) unitsPerPalletFor(tr *domain.TruckSchedule) float64 {
	if tr.UnitsPerPallet > 0 {
		return float64(tr.UnitsPerPallet)
	}
	return 320.0
}

func (b *builder) palletTrackingActiveFor(state domain.CohortState) bool {
	if state == domain.StateFrozen {
		return b.m.Gates.PalletTrackingFrozen
	}
	return b.m.Gates.PalletTrackingAmbient
}

// emitSKUSelectionVars creates product_produced and product_start binaries
// for every (product, date) with a production variable, active only when
// the SKU-selection gate is on.
func (b *builder) emitSKUSelectionVars() {
	for pk := range b.productionVar {
		b.producedVar[pk] = b.m.addVar("product_produced["+pk.productID+","+pk.date+"]", Binary, 0, 1)
		b.startVar[pk] = b.m.addVar("product_start["+pk.productID+","+pk.date+"]", Binary, 0, 1)
	}
}

// emitProductionActivityVars creates one binary "production happened this
// date" indicator per labor date, unconditional on the SKU-selection gate,
// since the per-day startup/shutdown labor hours and the non-fixed-day
// minimum-hours floor both need it regardless of whether binary SKU
// selection is active.
func (b *builder) emitProductionActivityVars() {
	for k := range b.laborVar {
		b.productionActiveVar[k] = b.m.addVar("production_active["+k+"]", Binary, 0, 1)
	}
}

// addProductionBalanceConstraints ties each production variable to its
// same-day ambient cohort's inflow, net of changeover
// yield-loss on start days when binary SKU selection is active.
func (b *builder) addProductionBalanceConstraints() {
	for _, k := range b.idx.Inventory {
		if !k.ProductionDate.Equal(k.CurrentDate) || k.State != domain.StateAmbient {
			continue
		}
		pk := productionKey{productID: k.ProductID, date: dateKey(k.ProductionDate)}
		prodIdx, ok := b.productionVar[pk]
		if !ok {
			continue
		}
		invIdx := b.invVar[k]

		terms := []Term{{VarIndex: invIdx, Coeff: 1}, {VarIndex: prodIdx, Coeff: -1}}
		rhs := 0.0
		if b.m.Gates.BinarySKUSelection {
			if startIdx, ok := b.startVar[pk]; ok {
				// Changeover yield-loss is a constant subtracted from the
				// producing cohort on start days: modeled as a negative
				// RHS offset scaled by the start indicator's coefficient
				// in the balance (product_start enters with a fixed
				// per-start yield-loss coefficient).
				terms = append(terms, Term{VarIndex: startIdx, Coeff: b.inst.Costs.ChangeoverWasteUnits})
			}
		}
		// A shipment can depart the manufacturing node the same day it is
		// produced; subtract it from the same-day cohort balance exactly as
		// addInventoryContinuityConstraints does for every later day.
		b.addDepartureTerms(&terms, k)
		b.m.addConstraint("production_balance["+pk.productID+","+pk.date+"]", terms, EQ, rhs)
	}
}

// addInventoryContinuityConstraints links each non-production-day cohort's
// inventory to the prior day's inventory for the same (node, product,
// production_date, state) trajectory plus that day's shipment arrivals,
// freeze/thaw conversions, and demand consumption, minus departures and
// conversions out. Cohorts excluded from the index by
// shelf-life or anti-phantom rules simply have no variable and contribute
// nothing — the structural reduction is the index set itself.
func (b *builder) addInventoryContinuityConstraints() {
	byTrajectory := make(map[string][]cohort.InventoryKey)
	trajKey := func(k cohort.InventoryKey) string {
		return k.NodeID + "|" + k.ProductID + "|" + dateKey(k.ProductionDate) + "|" + string(k.State)
	}
	for _, k := range b.idx.Inventory {
		tk := trajKey(k)
		byTrajectory[tk] = append(byTrajectory[tk], k)
	}

	for _, cohorts := range byTrajectory {
		for i, k := range cohorts {
			if k.ProductionDate.Equal(k.CurrentDate) && k.State == domain.StateAmbient {
				continue // covered by the production balance constraint
			}
			invIdx := b.invVar[k]
			terms := []Term{{VarIndex: invIdx, Coeff: 1}}

			var prevIdx int
			var havePrev bool
			for j := range cohorts {
				if j == i {
					continue
				}
				if cohorts[j].CurrentDate.AddDate(0, 0, 1).Equal(k.CurrentDate) {
					prevIdx, havePrev = b.invVar[cohorts[j]], true
					break
				}
			}
			if havePrev {
				terms = append(terms, Term{VarIndex: prevIdx, Coeff: -1})
			}

			b.addArrivalTerms(&terms, k)
			b.addDepartureTerms(&terms, k)
			b.addFreezeThawTerms(&terms, k)
			b.addDemandConsumptionTerms(&terms, k)

			b.m.addConstraint(fmt.Sprintf("inventory_continuity[%s,%s,%s]", k.NodeID, k.ProductID, dateKey(k.CurrentDate)), terms, EQ, 0)
		}
	}
}

// departureDateFor returns the calendar date a shipment cohort leaves its
// origin node: its delivery date minus the route leg's integer-ceiling
// transit time, the inverse of how the cohort indexer computed the
// delivery date from a candidate departure date.
func (b *builder) departureDateFor(k cohort.ShipmentKey) time.Time {
	for _, r := range b.inst.Routes {
		if r.OriginNodeID == k.OriginNodeID && r.DestinationNodeID == k.DestinationNodeID {
			return domain.DepartureDate(k.DeliveryDate, r.TransitDaysCeil())
		}
	}
	return k.DeliveryDate
}

// addDepartureTerms subtracts every shipment leaving this cohort's node on
// its departure date from the cohort's balance — the origin-side
// counterpart to addArrivalTerms, without which a shipment would draw
// units out of nothing at its destination instead of out of the
// originating cohort's own stock.
func (b *builder) addDepartureTerms(terms *[]Term, k cohort.InventoryKey) {
	for shipK, shipIdx := range b.shipVar {
		if shipK.OriginNodeID != k.NodeID || shipK.ProductID != k.ProductID ||
			!shipK.ProductionDate.Equal(k.ProductionDate) || shipK.DeliveredState != k.State {
			continue
		}
		if b.departureDateFor(shipK).Equal(k.CurrentDate) {
			*terms = append(*terms, Term{VarIndex: shipIdx, Coeff: 1})
		}
	}
}

func (b *builder) addArrivalTerms(terms *[]Term, k cohort.InventoryKey) {
	for shipK, shipIdx := range b.shipVar {
		if shipK.DestinationNodeID == k.NodeID && shipK.ProductID == k.ProductID &&
			shipK.ProductionDate.Equal(k.ProductionDate) && shipK.DeliveryDate.Equal(k.CurrentDate) &&
			shipK.DeliveredState == k.State {
			*terms = append(*terms, Term{VarIndex: shipIdx, Coeff: -1})
		}
	}
}

func (b *builder) addFreezeThawTerms(terms *[]Term, k cohort.InventoryKey) {
	for ftK, freezeIdx := range b.freezeVar {
		if ftK.NodeID == k.NodeID && ftK.ProductID == k.ProductID && ftK.ProductionDate.Equal(k.ProductionDate) && ftK.CurrentDate.Equal(k.CurrentDate) {
			if k.State == domain.StateAmbient {
				*terms = append(*terms, Term{VarIndex: freezeIdx, Coeff: 1}) // outflow from ambient
			} else if k.State == domain.StateFrozen {
				*terms = append(*terms, Term{VarIndex: freezeIdx, Coeff: -1}) // inflow to frozen
			}
		}
	}
	for ftK, thawIdx := range b.thawVar {
		if ftK.NodeID == k.NodeID && ftK.ProductID == k.ProductID && ftK.ProductionDate.Equal(k.ProductionDate) && ftK.CurrentDate.Equal(k.CurrentDate) {
			if k.State == domain.StateFrozen {
				*terms = append(*terms, Term{VarIndex: thawIdx, Coeff: 1}) // outflow from frozen
			} else if k.State == domain.StateThawed {
				*terms = append(*terms, Term{VarIndex: thawIdx, Coeff: -1}) // inflow to thawed
			}
		}
	}
}

func (b *builder) addDemandConsumptionTerms(terms *[]Term, k cohort.InventoryKey) {
	for demK, demIdx := range b.demandVar {
		if demK.NodeID == k.NodeID && demK.ProductID == k.ProductID &&
			demK.ProductionDate.Equal(k.ProductionDate) && demK.DemandDate.Equal(k.CurrentDate) && demK.State == k.State {
			*terms = append(*terms, Term{VarIndex: demIdx, Coeff: 1})
		}
	}
}

// addDemandSatisfactionConstraints enforces Σ cohort_demand + shortage = D
// for every forecast entry.
func (b *builder) addDemandSatisfactionConstraints() {
	for _, f := range b.inst.Forecast {
		var terms []Term
		for k, idx := range b.demandVar {
			if k.NodeID == f.LocationID && k.ProductID == f.ProductID && k.DemandDate.Equal(f.Date) {
				terms = append(terms, Term{VarIndex: idx, Coeff: 1})
			}
		}
		if b.cfg.AllowShortages {
			sk := shortageKey{nodeID: f.LocationID, productID: f.ProductID, date: dateKey(f.Date)}
			if idx, ok := b.shortageVar[sk]; ok {
				terms = append(terms, Term{VarIndex: idx, Coeff: 1})
			}
		}
		if len(terms) == 0 {
			continue // unreachable demand, already flagged by the validator
		}
		b.m.addConstraint("demand["+f.LocationID+","+f.ProductID+","+dateKey(f.Date)+"]", terms, EQ, f.Quantity)
	}
}

// addTruckCapacityConstraints bounds each truck-date's total load by its
// unit capacity (or by capacity · truck_used when the truck carries a
// fixed cost).
func (b *builder) addTruckCapacityConstraints() {
	for tk, loadIdx := range b.truckVar {
		terms := []Term{{VarIndex: loadIdx, Coeff: 1}}
		rhs := 0.0
		sense := LE
		if usedIdx, ok := b.truckUsedVar[tk]; ok {
			// load <= capacity * truck_used
			terms = append(terms, Term{VarIndex: usedIdx, Coeff: -b.capacityFor(tk)})
			rhs = 0.0
			sense = LE
		} else {
			rhs = b.capacityFor(tk)
		}
		b.m.addConstraint("truck_capacity["+tk.truckID+","+tk.date+"]", terms, sense, rhs)
	}
}

func (b *builder) capacityFor(tk truckKey) float64 {
	tr := b.truckByID(tk.truckID)
	if tr == nil {
		return 0
	}
	return tr.Capacity
}

// legKey groups a truck schedule and a shipment cohort by the physical
// (origin, destination, date) leg they share.
type legKey struct {
	originID, destID, date string
}

// addTruckLoadLinkingConstraints ties each truck-date's load to the
// shipments actually departing on that leg that day, the missing link that
// otherwise leaves truck_load a disconnected free variable and the
// truck_capacity constraints vacuous. When more than one truck schedule
// serves the same leg on the same date, their loads are pooled: the
// solver can split the day's shipments across them up to each truck's own
// capacity, rather than this reference builder assigning a shipment to one
// specific truck.
func (b *builder) addTruckLoadLinkingConstraints() {
	trucksByLeg := make(map[legKey][]truckKey)
	for tk := range b.truckVar {
		tr := b.truckByID(tk.truckID)
		if tr == nil {
			continue
		}
		lk := legKey{originID: tr.OriginNodeID, destID: tr.DestinationNodeID, date: tk.date}
		trucksByLeg[lk] = append(trucksByLeg[lk], tk)
	}

	shipsByLeg := make(map[legKey][]int)
	for shipK, shipIdx := range b.shipVar {
		lk := legKey{originID: shipK.OriginNodeID, destID: shipK.DestinationNodeID, date: dateKey(b.departureDateFor(shipK))}
		shipsByLeg[lk] = append(shipsByLeg[lk], shipIdx)
	}

	for lk, shipIdxs := range shipsByLeg {
		tks, ok := trucksByLeg[lk]
		if !ok {
			continue // no truck schedule covers this leg/date; nothing to bind
		}
		var terms []Term
		for _, tk := range tks {
			terms = append(terms, Term{VarIndex: b.truckVar[tk], Coeff: 1})
		}
		for _, shipIdx := range shipIdxs {
			terms = append(terms, Term{VarIndex: shipIdx, Coeff: -1})
		}
		b.m.addConstraint("truck_load_link["+lk.originID+"->"+lk.destID+","+lk.date+"]", terms, EQ, 0)
	}
}

// addTruckPalletConstraints links each truck-date's pallet count to its
// load via the truck's units-per-pallet ratio — the truck-side
// counterpart of addPalletLinkingConstraints for storage cohorts — so a
// truck's pallet capacity, not just its unit capacity, can bind.
func (b *builder) addTruckPalletConstraints() {
	for tk, palletIdx := range b.truckPalletVar {
		loadIdx, ok := b.truckVar[tk]
		if !ok {
			continue
		}
		tr := b.truckByID(tk.truckID)
		if tr == nil {
			continue
		}
		upp := b.unitsPerPalletFor(tr)
		terms := []Term{{VarIndex: palletIdx, Coeff: upp}, {VarIndex: loadIdx, Coeff: -1}}
		b.m.addConstraint("truck_pallet_link["+tk.truckID+","+tk.date+"]", terms, GE, 0)
	}
}

// addProductionActivityConstraints links each date's production_active
// indicator to whether any production happened that day via a
// capacity-based big-M, the same pattern addSKUSelectionConstraints uses
// for product_produced.
func (b *builder) addProductionActivityConstraints() {
	const bigM = 1_000_000.0
	dailyProduction := make(map[string][]int)
	for pk, idx := range b.productionVar {
		dailyProduction[pk.date] = append(dailyProduction[pk.date], idx)
	}
	for dateStr, activeIdx := range b.productionActiveVar {
		terms := []Term{{VarIndex: activeIdx, Coeff: -bigM}}
		for _, pIdx := range dailyProduction[dateStr] {
			terms = append(terms, Term{VarIndex: pIdx, Coeff: 1})
		}
		b.m.addConstraint("production_active_link["+dateStr+"]", terms, LE, 0)
	}
}

// addLaborHoursConstraints ties labor_hours[date] to the day's total
// production volume plus, on a day with any production, the manufacturing
// node's fixed daily startup/shutdown overhead; decomposes hours into
// fixed/overtime/non-fixed use; and floors non-fixed-day usage at
// MinimumHours whenever the day is active.
func (b *builder) addLaborHoursConstraints() {
	dailyProduction := make(map[string][]int)
	for pk, idx := range b.productionVar {
		dailyProduction[pk.date] = append(dailyProduction[pk.date], idx)
	}

	rate := b.manufacturingRate()
	startup, shutdown := b.manufacturingChangeoverHours()

	for dateStr, vars := range b.laborVar {
		prodIdxs := dailyProduction[dateStr]
		terms := []Term{{VarIndex: vars.hours, Coeff: 1}}
		for _, pIdx := range prodIdxs {
			terms = append(terms, Term{VarIndex: pIdx, Coeff: -1 / rate})
		}
		if activeIdx, ok := b.productionActiveVar[dateStr]; ok && startup+shutdown > 0 {
			terms = append(terms, Term{VarIndex: activeIdx, Coeff: -(startup + shutdown)})
		}
		b.m.addConstraint("labor_hours["+dateStr+"]", terms, GE, 0)

		// hours = fixed_used + overtime + non_fixed_used
		decompTerms := []Term{
			{VarIndex: vars.hours, Coeff: 1},
			{VarIndex: vars.fixedUsed, Coeff: -1},
			{VarIndex: vars.overtime, Coeff: -1},
			{VarIndex: vars.nonFixedUsed, Coeff: -1},
		}
		b.m.addConstraint("labor_decomposition["+dateStr+"]", decompTerms, EQ, 0)

		day := b.laborDayFor(dateStr)
		if !day.IsFixedDay && day.MinimumHours > 0 {
			if activeIdx, ok := b.productionActiveVar[dateStr]; ok {
				b.m.addConstraint("labor_minimum_hours["+dateStr+"]", []Term{
					{VarIndex: vars.nonFixedUsed, Coeff: 1},
					{VarIndex: activeIdx, Coeff: -day.MinimumHours},
				}, GE, 0)
			}
		}
	}
}

func (b *builder) laborDayFor(dateStr string) domain.LaborDay {
	if day, ok := b.inst.LaborCalendar[dateStr]; ok {
		return day
	}
	parsed, _ := time.Parse("2006-01-02", dateStr)
	return domain.DefaultWeekdayLaborDay(parsed)
}

func (b *builder) manufacturingRate() float64 {
	for _, n := range b.inst.Nodes {
		if n.ID == b.inst.ManufacturingNodeID && n.Capabilities.Manufacturing.ProductionRatePerHour > 0 {
			return n.Capabilities.Manufacturing.ProductionRatePerHour
		}
	}
	return 1400
}

func (b *builder) manufacturingChangeoverHours() (startup, shutdown float64) {
	for _, n := range b.inst.Nodes {
		if n.ID == b.inst.ManufacturingNodeID {
			return n.Capabilities.Manufacturing.DailyStartupHours, n.Capabilities.Manufacturing.DailyShutdownHours
		}
	}
	return 0, 0
}

// addMixIntegralityConstraints enforces production = units_per_mix ·
// mix_count via an equality linking each production variable to a fresh
// integer mix_count variable.
func (b *builder) addMixIntegralityConstraints() {
	for pk, prodIdx := range b.productionVar {
		p, ok := b.productsByID[pk.productID]
		if !ok || p.UnitsPerMix <= 1 {
			continue
		}
		mixIdx := b.m.addVar("mix_count["+pk.productID+","+pk.date+"]", Integer, 0, inf)
		b.mixCountVar[pk] = mixIdx
		terms := []Term{{VarIndex: prodIdx, Coeff: 1}, {VarIndex: mixIdx, Coeff: -float64(p.UnitsPerMix)}}
		b.m.addConstraint("mix_integrality["+pk.productID+","+pk.date+"]", terms, EQ, 0)
	}
}

// addSKUSelectionConstraints links product_produced to production via a
// capacity-based big-M, and product_start to the day-over-day change in
// product_produced.
func (b *builder) addSKUSelectionConstraints() {
	const bigM = 1_000_000.0
	for pk, prodIdx := range b.productionVar {
		producedIdx, ok := b.producedVar[pk]
		if !ok {
			continue
		}
		// production <= bigM * product_produced
		b.m.addConstraint("sku_link_upper["+pk.productID+","+pk.date+"]",
			[]Term{{VarIndex: prodIdx, Coeff: 1}, {VarIndex: producedIdx, Coeff: -bigM}}, LE, 0)

		prevKey := productionKey{productID: pk.productID, date: dateKey(prevDay(pk.date))}
		startIdx := b.startVar[pk]
		terms := []Term{{VarIndex: startIdx, Coeff: 1}, {VarIndex: producedIdx, Coeff: -1}}
		if prevProducedIdx, ok := b.producedVar[prevKey]; ok {
			terms = append(terms, Term{VarIndex: prevProducedIdx, Coeff: 1})
		}
		b.m.addConstraint("sku_start["+pk.productID+","+pk.date+"]", terms, GE, 0)
	}
}

func prevDay(dateStr string) time.Time {
	t, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		return time.Time{}
	}
	return t.AddDate(0, 0, -1)
}

// addPalletLinkingConstraints enforces pallet_count >= inventory /
// units_per_pallet for every tracked cohort.
func (b *builder) addPalletLinkingConstraints() {
	for _, k := range b.idx.Inventory {
		if !b.palletTrackingActiveFor(k.State) {
			continue
		}
		pk := palletKey{nodeID: k.NodeID, productID: k.ProductID,
			productionDate: dateKey(k.ProductionDate), currentDate: dateKey(k.CurrentDate), state: k.State}
		palletIdx, ok := b.palletVar[pk]
		if !ok {
			continue
		}
		invIdx := b.invVar[k]
		upp := 320.0 // default units-per-pallet when truck schedules don't govern storage-side packing
		terms := []Term{{VarIndex: palletIdx, Coeff: upp}, {VarIndex: invIdx, Coeff: -1}}
		b.m.addConstraint("pallet_link["+pk.nodeID+","+pk.productID+","+pk.currentDate+"]", terms, GE, 0)
	}
}

// assembleObjective sums every cost term the model tracks.
func (b *builder) assembleObjective() {
	costs := b.inst.Costs

	for _, idx := range b.productionVar {
		b.m.addObjectiveTerm(idx, costs.ProductionCostPerUnit)
	}

	for dateStr, vars := range b.laborVar {
		day := b.laborDayFor(dateStr)
		b.m.addObjectiveTerm(vars.fixedUsed, day.RegularRate)
		b.m.addObjectiveTerm(vars.overtime, day.OvertimeRate)
		b.m.addObjectiveTerm(vars.nonFixedUsed, day.NonFixedRate)
	}

	for k, idx := range b.shipVar {
		b.m.addObjectiveTerm(idx, b.transportCostFor(k))
	}

	for tk, idx := range b.truckUsedVar {
		for _, tr := range b.inst.Trucks {
			if tr.ID == tk.truckID {
				b.m.addObjectiveTerm(idx, tr.CostFixed)
			}
		}
	}

	for _, k := range b.idx.Inventory {
		if b.palletTrackingActiveFor(k.State) {
			continue // costed via pallet_count below instead
		}
		idx := b.invVar[k]
		b.m.addObjectiveTerm(idx, costs.StorageCostPerUnitDayFor(k.State))
	}
	for pk, idx := range b.palletVar {
		b.m.addObjectiveTerm(idx, costs.PalletCostFor(pk.state).FixedPerPallet+costs.PalletCostFor(pk.state).PerPalletDay)
	}

	for _, idx := range b.shortageVar {
		b.m.addObjectiveTerm(idx, costs.ShortagePenaltyPerUnit)
	}

	horizonEnd := dateKey(b.inst.Window.EndDate)
	for _, k := range b.idx.Inventory {
		if dateKey(k.CurrentDate) != horizonEnd {
			continue
		}
		idx := b.invVar[k]
		b.m.addObjectiveTerm(idx, costs.WasteMultiplier*costs.ProductionCostPerUnit)
	}

	for _, idx := range b.startVar {
		b.m.addObjectiveTerm(idx, costs.ChangeoverCostPerStart)
	}

	if b.m.Gates.FreshnessIncentive {
		for k, idx := range b.demandVar {
			product := b.productsByID[k.ProductID]
			remaining := domain.Cohort{State: k.State, StateEntryDate: k.StateEntryDate, CurrentDate: k.DemandDate}.RemainingShelfLife(product)
			b.m.addObjectiveTerm(idx, -costs.FreshnessIncentiveWeight*float64(remaining))
		}
	}
}

func (b *builder) transportCostFor(k cohort.ShipmentKey) float64 {
	for _, r := range b.inst.Routes {
		if r.OriginNodeID != k.OriginNodeID || r.DestinationNodeID != k.DestinationNodeID {
			continue
		}
		if r.CostPerUnit > 0 {
			return r.CostPerUnit
		}
		if r.IsFrozenTransport() {
			return b.inst.Costs.TransportCostFrozenPerUnit
		}
		return b.inst.Costs.TransportCostAmbientPerUnit
	}
	return 0
}
