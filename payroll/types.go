/*
Package payroll turns worked hours into monthly payroll reports.

PURPOSE:
  Employees log worked hours per day. Each hour belongs to a time-type
  (regular, overtime, Saturday, Sunday, holiday) with its own hourly rate.
  Rates are effective-dated and append-only. Once a month, a report sums the
  hours per time-type, prices them at the rates in effect on the last day of
  the month, adds bonuses, subtracts advances and stores the result.

KEY CONCEPTS IN THIS FILE (types.go):
  - TimeType:  Category of worked hours, each with its own rate
  - Breakdown: One decimal per time-type (hours or gross)
  - RateEntry: An effective-dated hourly rate
  - HourEntry: Hours worked by one employee on one day for one time-type
  - Advance / Bonus: Monthly adjustments to gross and net pay
  - Report:    The computed monthly payroll for one employee

DESIGN PRINCIPLES:
  1. Precision: All hours and money use decimal.Decimal, never float64
  2. Type Safety: TimeType and Status are closed sets validated at the edge
  3. Append-only rates: A rate is never edited, only superseded
  4. Replaceable months: Hours for an employee/month are saved as a whole

SEE ALSO:
  - rates.go: Rate schedule and "rate in effect" resolution
  - hours.go: Hour ledger (replace/delete a month)
  - engine.go: Report computation
  - lifecycle.go: Report status transitions
*/
package payroll

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/calendar"
)

// =============================================================================
// TIME TYPE - Category of worked hours
// =============================================================================

type TimeType string

const (
	TimeRegular  TimeType = "regular"
	TimeOvertime TimeType = "overtime"
	TimeSaturday TimeType = "saturday"
	TimeSunday   TimeType = "sunday"
	TimeHoliday  TimeType = "holiday"
)

// TimeTypes lists every time-type in report order.
var TimeTypes = []TimeType{TimeRegular, TimeOvertime, TimeSaturday, TimeSunday, TimeHoliday}

func (t TimeType) Valid() bool {
	switch t {
	case TimeRegular, TimeOvertime, TimeSaturday, TimeSunday, TimeHoliday:
		return true
	}
	return false
}

// ParseTimeType validates a time-type coming from storage or the wire.
func ParseTimeType(s string) (TimeType, error) {
	t := TimeType(s)
	if !t.Valid() {
		return "", &ValidationError{Field: "time_type", Message: fmt.Sprintf("unknown time type %q", s)}
	}
	return t, nil
}

// =============================================================================
// BREAKDOWN - One amount per time-type
// =============================================================================

// Breakdown holds a decimal per time-type. Used for both hours and gross.
type Breakdown struct {
	Regular  decimal.Decimal `json:"regular"`
	Overtime decimal.Decimal `json:"overtime"`
	Saturday decimal.Decimal `json:"saturday"`
	Sunday   decimal.Decimal `json:"sunday"`
	Holiday  decimal.Decimal `json:"holiday"`
}

func (b Breakdown) Get(t TimeType) decimal.Decimal {
	switch t {
	case TimeRegular:
		return b.Regular
	case TimeOvertime:
		return b.Overtime
	case TimeSaturday:
		return b.Saturday
	case TimeSunday:
		return b.Sunday
	case TimeHoliday:
		return b.Holiday
	}
	return decimal.Zero
}

func (b *Breakdown) Set(t TimeType, v decimal.Decimal) {
	switch t {
	case TimeRegular:
		b.Regular = v
	case TimeOvertime:
		b.Overtime = v
	case TimeSaturday:
		b.Saturday = v
	case TimeSunday:
		b.Sunday = v
	case TimeHoliday:
		b.Holiday = v
	}
}

func (b *Breakdown) Add(t TimeType, v decimal.Decimal) { b.Set(t, b.Get(t).Add(v)) }

// Total sums all five categories.
func (b Breakdown) Total() decimal.Decimal {
	total := decimal.Zero
	for _, t := range TimeTypes {
		total = total.Add(b.Get(t))
	}
	return total
}

// Equal compares category by category, ignoring decimal exponent differences.
func (b Breakdown) Equal(other Breakdown) bool {
	for _, t := range TimeTypes {
		if !b.Get(t).Equal(other.Get(t)) {
			return false
		}
	}
	return true
}

// =============================================================================
// RATE ENTRY - Effective-dated hourly rate
// =============================================================================

type RateEntry struct {
	ID            string
	TimeType      TimeType
	AmountPerHour decimal.Decimal
	EffectiveFrom calendar.Date
	Note          string

	// Seq is assigned by the store in append order. Among entries sharing
	// (TimeType, EffectiveFrom) the highest Seq wins.
	Seq       int64
	CreatedAt time.Time
}

// supersedes reports whether e takes precedence over other for the same type.
func (e RateEntry) supersedes(other RateEntry) bool {
	if e.EffectiveFrom.Equal(other.EffectiveFrom) {
		return e.Seq > other.Seq
	}
	return e.EffectiveFrom.After(other.EffectiveFrom)
}

// =============================================================================
// HOUR ENTRY - Hours on one day for one time-type
// =============================================================================

type HourEntry struct {
	EmployeeID string
	Date       calendar.Date
	Hours      decimal.Decimal
	TimeType   TimeType
}

// =============================================================================
// ADJUSTMENTS - Advances and bonuses
// =============================================================================

// Advance is cash already paid out during the month; it reduces net pay.
type Advance struct {
	ID         string
	EmployeeID string
	Date       calendar.Date
	Amount     decimal.Decimal
	Period     calendar.Period
	Note       string
	CreatedAt  time.Time
}

// Bonus is a lump sum added to gross pay.
type Bonus struct {
	ID          string
	EmployeeID  string
	Period      calendar.Period
	Amount      decimal.Decimal
	Description string
	CreatedAt   time.Time
}

// =============================================================================
// REPORT - Monthly payroll for one employee
// =============================================================================

type Report struct {
	ID            string
	EmployeeID    string
	Period        calendar.Period
	Hours         Breakdown
	Gross         Breakdown
	TotalBonuses  decimal.Decimal
	TotalGross    decimal.Decimal
	TotalAdvances decimal.Decimal
	NetPay        decimal.Decimal
	Status        Status
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Key is the serialization and uniqueness key of a report.
func (r Report) Key() Key { return Key{EmployeeID: r.EmployeeID, Period: r.Period} }

// SameFigures compares every computed amount of two reports.
func (r Report) SameFigures(other Report) bool {
	return r.Hours.Equal(other.Hours) &&
		r.Gross.Equal(other.Gross) &&
		r.TotalBonuses.Equal(other.TotalBonuses) &&
		r.TotalGross.Equal(other.TotalGross) &&
		r.TotalAdvances.Equal(other.TotalAdvances) &&
		r.NetPay.Equal(other.NetPay)
}

// Key identifies one employee's month.
type Key struct {
	EmployeeID string
	Period     calendar.Period
}

func (k Key) String() string { return k.EmployeeID + "/" + k.Period.String() }

// =============================================================================
// EMPLOYEE - Directory reference
// =============================================================================

// Employee is owned by the employee directory; payroll only reads it.
type Employee struct {
	ID     string
	Name   string
	Active bool
}
