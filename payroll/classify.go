package payroll

import (
	"time"

	"github.com/warp/payroll-engine/calendar"
)

// Classify returns the default time-type for regular hours worked on d.
// Overtime and holiday are never derived here; callers label them explicitly.
func Classify(d calendar.Date) TimeType {
	switch d.Weekday() {
	case time.Saturday:
		return TimeSaturday
	case time.Sunday:
		return TimeSunday
	default:
		return TimeRegular
	}
}
