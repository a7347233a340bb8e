package domain

import "math"

// TransportMode is the temperature mode goods travel in along a route.
type TransportMode string

const (
	TransportFrozen  TransportMode = "frozen"
	TransportAmbient TransportMode = "ambient"
)

// Route is a directed edge in the supply chain network.
type Route struct {
	ID               string
	OriginNodeID     string
	DestinationNodeID string
	TransitDays      float64 // non-negative; 0 = instant transfer
	TransportMode    TransportMode
	CostPerUnit      float64
}

// IsFrozenTransport reports whether the route carries goods frozen.
func (r Route) IsFrozenTransport() bool {
	return r.TransportMode == TransportFrozen
}

// IsAmbientTransport reports whether the route carries goods ambient.
func (r Route) IsAmbientTransport() bool {
	return r.TransportMode == TransportAmbient
}

// IsInstantTransfer reports whether the route has zero transit time.
func (r Route) IsInstantTransfer() bool {
	return r.TransitDays == 0
}

// TransitDaysCeil returns the integer number of calendar days a shipment on
// this route occupies: integer-ceiling of TransitDays.
func (r Route) TransitDaysCeil() int {
	return int(math.Ceil(r.TransitDays))
}
