package domain

import "time"

const hoursPerDay = 24 * time.Hour

// dayDiff returns the whole number of calendar days between two dates,
// truncated to midnight first so partial-day time-of-day noise never
// leaks into date arithmetic.
func dayDiff(a, b time.Time) int {
	a = a.Truncate(hoursPerDay)
	b = b.Truncate(hoursPerDay)
	return int(b.Sub(a).Hours() / 24)
}

// Cohort identifies a batch of product at a point in the plan: the central
// bookkeeping entity for flow, inventory, and shelf life.
//
//	(node, product, production_date, current_date, state, state_entry_date)
type Cohort struct {
	NodeID          string
	ProductID       string
	ProductionDate  time.Time
	CurrentDate     time.Time
	State           CohortState
	StateEntryDate  time.Time
}

// AgeInState returns current_date - state_entry_date, in days.
func (c Cohort) AgeInState() int {
	return dayDiff(c.StateEntryDate, c.CurrentDate)
}

// RemainingShelfLife returns the state's shelf life minus age in state, for
// the given product (I4). Can be negative for an expired cohort.
func (c Cohort) RemainingShelfLife(p Product) int {
	return p.ShelfLifeDays(c.State) - c.AgeInState()
}

// Expired reports whether the cohort has aged past its state shelf life
// (I4): remaining shelf life has reached zero or below.
func (c Cohort) Expired(p Product) bool {
	return c.RemainingShelfLife(p) <= 0
}

// Valid checks invariants I1–I3 against a horizon and the owning node's
// capabilities. It does not check shelf life (I4) — callers check that via
// Expired, since shelf life depends on the product.
func (c Cohort) Valid(node Node, horizonEnd time.Time) error {
	if c.ProductionDate.After(c.CurrentDate) {
		return ErrIndexSetInconsistent // I1
	}
	if c.CurrentDate.After(horizonEnd) {
		return ErrIndexSetInconsistent // I1
	}
	if !c.State.Valid() {
		return ErrInvalidCohortState
	}
	if !node.AdmitsState(c.State) {
		return ErrStateNotAdmitted // I2
	}
	if c.StateEntryDate.After(c.CurrentDate) {
		return ErrIndexSetInconsistent // I3
	}
	return nil
}

// DeliveryDate computes the arrival date of a shipment departing on
// departureDate over a route with the given integer-ceiling transit days
// (I5): delivery_date = departure_date + ceil(transit_days).
func DeliveryDate(departureDate time.Time, transitDaysCeil int) time.Time {
	return departureDate.AddDate(0, 0, transitDaysCeil)
}

// DepartureDate is the inverse of DeliveryDate: the date a shipment with a
// known delivery date must have departed on.
func DepartureDate(deliveryDate time.Time, transitDaysCeil int) time.Time {
	return deliveryDate.AddDate(0, 0, -transitDaysCeil)
}
