package domain

import (
	"fmt"
	"math"
	"time"
)

// DepartureType distinguishes a truck's morning or afternoon departure.
type DepartureType string

const (
	DepartureMorning   DepartureType = "morning"
	DepartureAfternoon DepartureType = "afternoon"
)

// DayOfWeek names a specific weekday a truck schedule may be pinned to.
// An absent DayOfWeek on a TruckSchedule means the schedule runs daily.
type DayOfWeek string

const (
	Monday    DayOfWeek = "monday"
	Tuesday   DayOfWeek = "tuesday"
	Wednesday DayOfWeek = "wednesday"
	Thursday  DayOfWeek = "thursday"
	Friday    DayOfWeek = "friday"
	Saturday  DayOfWeek = "saturday"
	Sunday    DayOfWeek = "sunday"
)

var dayOfWeekToGoWeekday = map[DayOfWeek]time.Weekday{
	Monday:    time.Monday,
	Tuesday:   time.Tuesday,
	Wednesday: time.Wednesday,
	Thursday:  time.Thursday,
	Friday:    time.Friday,
	Saturday:  time.Saturday,
	Sunday:    time.Sunday,
}

// TruckSchedule describes a recurring truck departure between two nodes,
// with optional drop-off stops along the way.
type TruckSchedule struct {
	ID                string
	OriginNodeID      string
	DestinationNodeID string
	DepartureType     DepartureType
	DepartureTime     time.Duration // offset into the day
	DayOfWeek         *DayOfWeek    // nil = daily
	Capacity          float64       // units
	PalletCapacity    int
	UnitsPerPallet    int
	UnitsPerCase      int
	IntermediateStops []string
	CostFixed         float64
	CostPerUnit       float64
}

// normalizedUnitsPerPallet returns UnitsPerPallet, defaulting to the
// legacy 320 (32 cases × 10 units) when unset.
func (t TruckSchedule) normalizedUnitsPerPallet() int {
	if t.UnitsPerPallet > 0 {
		return t.UnitsPerPallet
	}
	return 320
}

func (t TruckSchedule) normalizedPalletCapacity() int {
	if t.PalletCapacity > 0 {
		return t.PalletCapacity
	}
	return 44
}

func (t TruckSchedule) normalizedUnitsPerCase() int {
	if t.UnitsPerCase > 0 {
		return t.UnitsPerCase
	}
	return 10
}

// IsDaySpecific reports whether the schedule is pinned to one weekday.
func (t TruckSchedule) IsDaySpecific() bool {
	return t.DayOfWeek != nil
}

// AppliesOnDate reports whether this truck runs on the given calendar date:
// daily when DayOfWeek is unset, otherwise only on the matching weekday.
func (t TruckSchedule) AppliesOnDate(d time.Time) bool {
	if t.DayOfWeek == nil {
		return true
	}
	want, ok := dayOfWeekToGoWeekday[*t.DayOfWeek]
	if !ok {
		return false
	}
	return d.Weekday() == want
}

// IsMorning reports whether this is a morning departure.
func (t TruckSchedule) IsMorning() bool { return t.DepartureType == DepartureMorning }

// IsAfternoon reports whether this is an afternoon departure.
func (t TruckSchedule) IsAfternoon() bool { return t.DepartureType == DepartureAfternoon }

// HasIntermediateStops reports whether the truck has any drop-off stops.
func (t TruckSchedule) HasIntermediateStops() bool {
	return len(t.IntermediateStops) > 0
}

// RequiredPallets computes ceil(units / units_per_pallet), returning
// ErrPalletCapacityExceeded if the result exceeds the truck's pallet
// capacity. Partial pallets occupy a full pallet slot.
func (t TruckSchedule) RequiredPallets(units float64) (int, error) {
	if units <= 0 {
		return 0, nil
	}
	upp := t.normalizedUnitsPerPallet()
	needed := int(math.Ceil(units / float64(upp)))
	if needed > t.normalizedPalletCapacity() {
		return needed, fmt.Errorf("%w: %d pallets needed, capacity %d",
			ErrPalletCapacityExceeded, needed, t.normalizedPalletCapacity())
	}
	return needed, nil
}

// RequiredCases computes the number of cases needed to cover units when the
// truck requires case-integral loads (units_per_case), rounding up.
func (t TruckSchedule) RequiredCases(units float64) int {
	upc := t.normalizedUnitsPerCase()
	return int(math.Ceil(units / float64(upc)))
}
