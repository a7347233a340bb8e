// Package cohort builds the four cohort index families: inventory,
// shipment, freeze/thaw, and demand-eligible cohorts. Index sets are
// constructed as pure, immutable values and handed by reference to the
// constraint builder — no side-effectful mutation of a shared model
// object, favoring independently constructible index sets over threading
// mutation through a shared collection.
package cohort

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/planengine/planengine/internal/domain"
	"github.com/planengine/planengine/internal/planning/network"
)

// InventoryKey identifies an inventory cohort (inv_idx).
type InventoryKey struct {
	NodeID         string
	ProductID      string
	ProductionDate time.Time
	CurrentDate    time.Time
	State          domain.CohortState
	StateEntryDate time.Time
}

// ShipmentKey identifies a shipment cohort (ship_idx).
type ShipmentKey struct {
	OriginNodeID      string
	DestinationNodeID string
	ProductID         string
	ProductionDate    time.Time
	DeliveryDate      time.Time
	DeliveredState    domain.CohortState
}

// FreezeThawKey identifies a freeze/thaw opportunity (ft_idx).
type FreezeThawKey struct {
	NodeID         string
	ProductID      string
	ProductionDate time.Time
	CurrentDate    time.Time
	// Direction is "freeze" (ambient -> frozen) or "thaw" (frozen -> thawed).
	Direction string
}

const (
	DirectionFreeze = "freeze"
	DirectionThaw   = "thaw"
)

// DemandKey identifies a cohort eligible to satisfy a specific demand entry.
type DemandKey struct {
	NodeID         string
	ProductID      string
	ProductionDate time.Time
	DemandDate     time.Time
	State          domain.CohortState
	StateEntryDate time.Time
}

// Indexes bundles the four immutable index families plus a stable handle
// (arena ID) per entry, for cheap variable identity across builds —
// stable enough that a warmstart hint generated from one build's handles
// still resolves correctly against a later build over the same instance.
type Indexes struct {
	Inventory  []InventoryKey
	Shipment   []ShipmentKey
	FreezeThaw []FreezeThawKey
	Demand     []DemandKey

	// handle maps each key (rendered to a stable string) to a UUIDv5-derived
	// handle, so repeated builds from identical inputs produce identical
	// handles.
	InventoryHandle  map[InventoryKey]uuid.UUID
	ShipmentHandle   map[ShipmentKey]uuid.UUID
	FreezeThawHandle map[FreezeThawKey]uuid.UUID
	DemandHandle     map[DemandKey]uuid.UUID
}

var arenaNamespace = uuid.MustParse("6f6e2a3e-6b1b-4b8a-9e2e-9a6e9a6e9a6e")

func handleFor(parts ...string) uuid.UUID {
	s := ""
	for _, p := range parts {
		s += p + "|"
	}
	return uuid.NewSHA1(arenaNamespace, []byte(s))
}

// Build materializes the full index set for one planning Instance given the
// ranked paths enumerated by C2, keyed by destination node ID.
func Build(inst domain.Instance, pathsByDest map[string][]network.Path, cfg domain.Config) *Indexes {
	b := &builder{
		inst:        inst,
		pathsByDest: pathsByDest,
		cfg:         cfg,
		nodesByID:   make(map[string]domain.Node, len(inst.Nodes)),
		prodByID:    make(map[string]domain.Product, len(inst.Products)),
	}
	for _, n := range inst.Nodes {
		b.nodesByID[n.ID] = n
	}
	for _, p := range inst.Products {
		b.prodByID[p.ID] = p
	}
	b.run()
	return b.finish()
}

type builder struct {
	inst        domain.Instance
	pathsByDest map[string][]network.Path
	cfg         domain.Config
	nodesByID   map[string]domain.Node
	prodByID    map[string]domain.Product

	inv  []InventoryKey
	ship []ShipmentKey
	ft   []FreezeThawKey
	dem  []DemandKey

	invSeen map[InventoryKey]bool
}

func (b *builder) run() {
	b.invSeen = make(map[InventoryKey]bool)
	horizon := b.inst.Window

	for _, prod := range b.inst.Products {
		for _, prodDate := range horizon.Days() {
			b.emitProductionCohort(prod, prodDate, horizon)
			for destID, paths := range b.pathsByDest {
				for _, path := range paths {
					b.emitPathShipments(prod, prodDate, path, destID, horizon)
				}
			}
		}
	}

	b.emitDemandEligibility()
}

// emitProductionCohort emits the ambient inventory trail at the
// manufacturing node for a single production date, aging forward until
// shelf life expires or the horizon ends (construction rule: skip cohorts
// whose remaining shelf life has reached zero).
func (b *builder) emitProductionCohort(prod domain.Product, prodDate time.Time, horizon domain.PlanningWindow) {
	mfgID := b.inst.ManufacturingNodeID
	for _, curDate := range horizon.Days() {
		if curDate.Before(prodDate) {
			continue
		}
		c := domain.Cohort{State: domain.StateAmbient, StateEntryDate: prodDate, CurrentDate: curDate}
		if c.Expired(prod) {
			continue
		}
		b.addInv(InventoryKey{
			NodeID: mfgID, ProductID: prod.ID,
			ProductionDate: prodDate, CurrentDate: curDate,
			State: domain.StateAmbient, StateEntryDate: prodDate,
		})
	}
}

// emitPathShipments walks one enumerated path leg by leg, emitting shipment
// cohorts and any freeze/thaw conversions required by leg transport mode,
// and the resulting inventory trail at each intermediate/final node.
func (b *builder) emitPathShipments(prod domain.Product, prodDate time.Time, path network.Path, destID string, horizon domain.PlanningWindow) {
	if len(path.Legs) == 0 {
		return
	}

	// departureDate ranges across the horizon from production date onward;
	// each gives one complete multi-leg shipment chain.
	for _, departureDate := range horizon.Days() {
		if departureDate.Before(prodDate) {
			continue
		}
		b.walkLegs(prod, prodDate, path, departureDate, horizon)
	}
}

// legState tracks the cohort's state as it moves leg to leg.
type legState struct {
	nodeID         string
	state          domain.CohortState
	stateEntryDate time.Time
	date           time.Time
}

func (b *builder) walkLegs(prod domain.Product, prodDate time.Time, path network.Path, departureDate time.Time, horizon domain.PlanningWindow) {
	cur := legState{
		nodeID:         path.Nodes[0],
		state:          domain.StateAmbient,
		stateEntryDate: prodDate,
		date:           departureDate,
	}

	for _, leg := range path.Legs {
		originID := leg.Route.OriginNodeID
		destID := leg.Route.DestinationNodeID
		originNode := b.nodesByID[originID]
		destNode := b.nodesByID[destID]

		shipState := cur.state
		shipEntry := cur.stateEntryDate

		// A frozen-mode leg requires the shipped cohort to be frozen; freeze
		// at the origin if it's currently ambient and the origin supports
		// freeze/thaw (ft_idx "freeze" entry), resetting the shelf clock.
		if leg.Route.IsFrozenTransport() && shipState != domain.StateFrozen {
			if !originNode.CanFreezeThaw() {
				return // cannot realize this path leg; drop silently
			}
			b.addFreezeThaw(FreezeThawKey{
				NodeID: originID, ProductID: prod.ID,
				ProductionDate: prodDate, CurrentDate: cur.date,
				Direction: DirectionFreeze,
			})
			shipState = domain.StateFrozen
			shipEntry = cur.date
		}
		// An ambient-mode leg requires an ambient (or thawed, already
		// ambient-clocked) cohort; a frozen cohort must thaw first.
		if leg.Route.IsAmbientTransport() && shipState == domain.StateFrozen {
			if !originNode.CanFreezeThaw() {
				return
			}
			b.addFreezeThaw(FreezeThawKey{
				NodeID: originID, ProductID: prod.ID,
				ProductionDate: prodDate, CurrentDate: cur.date,
				Direction: DirectionThaw,
			})
			shipState = domain.StateThawed
			shipEntry = cur.date
		}

		transitCeil := leg.Route.TransitDaysCeil()
		deliveryDate := domain.DeliveryDate(cur.date, transitCeil)
		if !horizon.Contains(deliveryDate) {
			return
		}
		// Anti-phantom rule: departure must lie inside the horizon.
		actualDeparture := domain.DepartureDate(deliveryDate, transitCeil)
		if actualDeparture.Before(horizon.StartDate) {
			return
		}

		// Arrival-side state transition: frozen transport into a node that
		// cannot hold frozen inventory thaws automatically on arrival (I5).
		arrivedState := shipState
		arrivedEntry := shipEntry
		if shipState == domain.StateFrozen && !destNode.SupportsFrozenStorage() {
			arrivedState = domain.StateThawed
			arrivedEntry = deliveryDate
		}

		c := domain.Cohort{State: arrivedState, StateEntryDate: arrivedEntry, CurrentDate: deliveryDate}
		if c.Expired(prod) {
			return
		}

		b.addShip(ShipmentKey{
			OriginNodeID: originID, DestinationNodeID: destID, ProductID: prod.ID,
			ProductionDate: prodDate, DeliveryDate: deliveryDate, DeliveredState: arrivedState,
		})

		// Emit the inventory trail at the arrival node from delivery date
		// onward, aging the arrived cohort forward to the horizon end.
		for _, d := range horizon.Days() {
			if d.Before(deliveryDate) {
				continue
			}
			aged := domain.Cohort{State: arrivedState, StateEntryDate: arrivedEntry, CurrentDate: d}
			if aged.Expired(prod) {
				break
			}
			b.addInv(InventoryKey{
				NodeID: destID, ProductID: prod.ID,
				ProductionDate: prodDate, CurrentDate: d,
				State: arrivedState, StateEntryDate: arrivedEntry,
			})
		}

		// Optional onward thaw at a hub that explicitly thaws before the
		// next ambient-mode leg is handled by the next loop iteration's
		// ambient-required check above.
		cur = legState{nodeID: destID, state: arrivedState, stateEntryDate: arrivedEntry, date: deliveryDate}
	}
}

func (b *builder) addInv(k InventoryKey) {
	if b.invSeen[k] {
		return
	}
	b.invSeen[k] = true
	b.inv = append(b.inv, k)
}

func (b *builder) addShip(k ShipmentKey) {
	b.ship = append(b.ship, k)
}

func (b *builder) addFreezeThaw(k FreezeThawKey) {
	b.ft = append(b.ft, k)
}

// emitDemandEligibility scans every forecast entry and every inventory
// cohort at that node/product/date, keeping cohorts whose remaining shelf
// life at the demand date meets the product's minimum acceptance.
func (b *builder) emitDemandEligibility() {
	byNodeProdDate := make(map[string][]InventoryKey)
	key := func(nodeID, prodID string, d time.Time) string {
		return nodeID + "|" + prodID + "|" + d.Format("2006-01-02")
	}
	for _, k := range b.inv {
		ck := key(k.NodeID, k.ProductID, k.CurrentDate)
		byNodeProdDate[ck] = append(byNodeProdDate[ck], k)
	}

	for _, f := range b.inst.Forecast {
		prod, ok := b.prodByID[f.ProductID]
		if !ok {
			continue
		}
		ck := key(f.LocationID, f.ProductID, f.Date)
		for _, k := range byNodeProdDate[ck] {
			if k.State == domain.StateFrozen {
				continue // frozen cohorts are not directly consumable
			}
			c := domain.Cohort{State: k.State, StateEntryDate: k.StateEntryDate, CurrentDate: f.Date}
			if c.RemainingShelfLife(prod) < prod.MinAcceptableShelfLife {
				continue
			}
			b.dem = append(b.dem, DemandKey{
				NodeID: k.NodeID, ProductID: k.ProductID,
				ProductionDate: k.ProductionDate, DemandDate: f.Date,
				State: k.State, StateEntryDate: k.StateEntryDate,
			})
		}
	}
}

func (b *builder) finish() *Indexes {
	sort.Slice(b.inv, func(i, j int) bool { return invLess(b.inv[i], b.inv[j]) })
	sort.Slice(b.ship, func(i, j int) bool { return shipLess(b.ship[i], b.ship[j]) })
	sort.Slice(b.ft, func(i, j int) bool { return ftLess(b.ft[i], b.ft[j]) })
	sort.Slice(b.dem, func(i, j int) bool { return demLess(b.dem[i], b.dem[j]) })

	idx := &Indexes{
		Inventory:        b.inv,
		Shipment:         b.ship,
		FreezeThaw:       b.ft,
		Demand:           b.dem,
		InventoryHandle:  make(map[InventoryKey]uuid.UUID, len(b.inv)),
		ShipmentHandle:   make(map[ShipmentKey]uuid.UUID, len(b.ship)),
		FreezeThawHandle: make(map[FreezeThawKey]uuid.UUID, len(b.ft)),
		DemandHandle:     make(map[DemandKey]uuid.UUID, len(b.dem)),
	}
	for _, k := range b.inv {
		idx.InventoryHandle[k] = handleFor(k.NodeID, k.ProductID, k.ProductionDate.String(), k.CurrentDate.String(), string(k.State), k.StateEntryDate.String())
	}
	for _, k := range b.ship {
		idx.ShipmentHandle[k] = handleFor(k.OriginNodeID, k.DestinationNodeID, k.ProductID, k.ProductionDate.String(), k.DeliveryDate.String(), string(k.DeliveredState))
	}
	for _, k := range b.ft {
		idx.FreezeThawHandle[k] = handleFor(k.NodeID, k.ProductID, k.ProductionDate.String(), k.CurrentDate.String(), k.Direction)
	}
	for _, k := range b.dem {
		idx.DemandHandle[k] = handleFor(k.NodeID, k.ProductID, k.ProductionDate.String(), k.DemandDate.String(), string(k.State), k.StateEntryDate.String())
	}
	return idx
}

// sortKey renders a key to a totally-ordered string for deterministic
// output ordering.
func sortKey(parts ...string) string {
	s := ""
	for _, p := range parts {
		s += p + "\x00"
	}
	return s
}

func invLess(a, b InventoryKey) bool {
	ka := sortKey(a.NodeID, a.ProductID, a.ProductionDate.String(), a.CurrentDate.String(), string(a.State), a.StateEntryDate.String())
	kb := sortKey(b.NodeID, b.ProductID, b.ProductionDate.String(), b.CurrentDate.String(), string(b.State), b.StateEntryDate.String())
	return ka < kb
}

func shipLess(a, b ShipmentKey) bool {
	ka := sortKey(a.OriginNodeID, a.DestinationNodeID, a.ProductID, a.ProductionDate.String(), a.DeliveryDate.String(), string(a.DeliveredState))
	kb := sortKey(b.OriginNodeID, b.DestinationNodeID, b.ProductID, b.ProductionDate.String(), b.DeliveryDate.String(), string(b.DeliveredState))
	return ka < kb
}

func ftLess(a, b FreezeThawKey) bool {
	ka := sortKey(a.NodeID, a.ProductID, a.ProductionDate.String(), a.CurrentDate.String(), a.Direction)
	kb := sortKey(b.NodeID, b.ProductID, b.ProductionDate.String(), b.CurrentDate.String(), b.Direction)
	return ka < kb
}

func demLess(a, b DemandKey) bool {
	ka := sortKey(a.NodeID, a.ProductID, a.ProductionDate.String(), a.DemandDate.String(), string(a.State), a.StateEntryDate.String())
	kb := sortKey(b.NodeID, b.ProductID, b.ProductionDate.String(), b.DemandDate.String(), string(b.State), b.StateEntryDate.String())
	return ka < kb
}
