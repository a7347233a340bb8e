// Package domain contains pure business types with ZERO infrastructure imports.
// This is the innermost ring of clean architecture — it depends on nothing.
package domain

// StorageMode describes what temperature state a node can hold inventory in.
type StorageMode string

const (
	StorageFrozen  StorageMode = "frozen"
	StorageAmbient StorageMode = "ambient"
	StorageBoth    StorageMode = "both"
)

// ManufacturingCapability describes a node's production line parameters.
type ManufacturingCapability struct {
	ProductionRatePerHour   float64 // units produced per labor hour
	DailyStartupHours       float64
	DailyShutdownHours      float64
	DefaultChangeoverHours  float64
}

// StorageCapability describes a node's ability to hold inventory.
type StorageCapability struct {
	Mode             StorageMode
	CapacityUnits    float64 // 0 = unbounded
}

// Capabilities is the full capability record for a Node.
type Capabilities struct {
	CanManufacture        bool
	Manufacturing         ManufacturingCapability
	CanStore              bool
	Storage               StorageCapability
	HasDemand             bool
	RequiresTruckSchedules bool
}

// Node is a location in the supply chain network: the manufacturing site,
// a regional hub, or a breadroom.
type Node struct {
	ID           string
	Name         string
	Capabilities Capabilities
}

// CanProduce reports whether the node can manufacture product.
func (n Node) CanProduce() bool {
	return n.Capabilities.CanManufacture
}

// SupportsFrozenStorage reports whether the node can hold frozen inventory.
func (n Node) SupportsFrozenStorage() bool {
	if !n.Capabilities.CanStore {
		return false
	}
	mode := n.Capabilities.Storage.Mode
	return mode == StorageFrozen || mode == StorageBoth
}

// SupportsAmbientStorage reports whether the node can hold ambient inventory.
func (n Node) SupportsAmbientStorage() bool {
	if !n.Capabilities.CanStore {
		return false
	}
	mode := n.Capabilities.Storage.Mode
	return mode == StorageAmbient || mode == StorageBoth
}

// CanFreezeThaw reports whether the node supports state transitions
// (freeze/thaw) — only nodes storing in both modes can.
func (n Node) CanFreezeThaw() bool {
	return n.Capabilities.CanStore && n.Capabilities.Storage.Mode == StorageBoth
}

// RequiresTrucks reports whether outbound shipments from this node must be
// assigned to a truck schedule rather than shipped ad hoc.
func (n Node) RequiresTrucks() bool {
	return n.Capabilities.RequiresTruckSchedules
}

// AdmitsState reports whether the node's storage capability admits a given
// cohort state (I2).
func (n Node) AdmitsState(state CohortState) bool {
	switch state {
	case StateFrozen:
		return n.SupportsFrozenStorage()
	case StateAmbient, StateThawed:
		return n.SupportsAmbientStorage()
	default:
		return false
	}
}
