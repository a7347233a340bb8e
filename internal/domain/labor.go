package domain

import "time"

// LaborDay describes the labor calendar entry for a single production date.
type LaborDay struct {
	Date          time.Time
	IsFixedDay    bool    // fixed_hours are paid regardless of use (sunk cost)
	FixedHours    float64
	RegularRate   float64
	OvertimeRate  float64
	NonFixedRate  float64 // only meaningful when !IsFixedDay
	MinimumHours  float64 // paid floor on non-fixed days, when any production occurs
}

// DefaultWeekdayLaborDay returns the standard weekday fallback used when the
// labor calendar is missing a non-critical date: a fixed 12-hour day at
// modest rates on Monday to Friday, and a non-fixed day (rate 40, 4-hour
// minimum) on Saturday and Sunday.
func DefaultWeekdayLaborDay(d time.Time) LaborDay {
	weekend := d.Weekday() == time.Saturday || d.Weekday() == time.Sunday
	if weekend {
		return LaborDay{
			Date:         d,
			IsFixedDay:   false,
			RegularRate:  0,
			OvertimeRate: 0,
			NonFixedRate: 40,
			MinimumHours: 4,
		}
	}
	return LaborDay{
		Date:         d,
		IsFixedDay:   true,
		FixedHours:   12,
		RegularRate:  25,
		OvertimeRate: 37.5,
	}
}
