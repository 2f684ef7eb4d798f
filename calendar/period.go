package calendar

import (
	"fmt"
	"time"
)

// =============================================================================
// PERIOD - One calendar month
// =============================================================================

// Period is the payroll partition: a single calendar month.
//
// Examples:
//   - January 2024: [2024-01-01, 2024-01-31]
//   - February 2024: [2024-02-01, 2024-02-29]
type Period struct {
	Year  int
	Month time.Month
}

func NewPeriod(year int, month time.Month) Period {
	return Period{Year: year, Month: month}
}

// PeriodOf returns the month containing d.
func PeriodOf(d Date) Period {
	return Period{Year: d.Year(), Month: d.Month()}
}

// ParsePeriod parses a YYYY-MM string.
func ParsePeriod(s string) (Period, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Period{}, fmt.Errorf("invalid period %q (use YYYY-MM): %w", s, err)
	}
	return Period{Year: t.Year(), Month: t.Month()}, nil
}

// Validate reports whether the period names a real month.
func (p Period) Validate() error {
	if p.Month < time.January || p.Month > time.December {
		return fmt.Errorf("month must be between 1 and 12, got %d", int(p.Month))
	}
	if p.Year < 1 || p.Year > 9999 {
		return fmt.Errorf("year out of range: %d", p.Year)
	}
	return nil
}

// Start is the first day of the month.
func (p Period) Start() Date { return NewDate(p.Year, p.Month, 1) }

// End is the last day of the month. Rates are resolved as of this day.
func (p Period) End() Date {
	t := time.Date(p.Year, p.Month+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
	return Date{t: t}
}

// Contains returns true if d is within [Start, End].
func (p Period) Contains(d Date) bool {
	return d.AfterOrEqual(p.Start()) && d.BeforeOrEqual(p.End())
}

// Days returns every day of the month in order.
func (p Period) Days() []Date {
	end := p.End()
	days := make([]Date, 0, end.Day())
	for current := p.Start(); current.BeforeOrEqual(end); current = current.AddDays(1) {
		days = append(days, current)
	}
	return days
}

// Next and Prev step one month.
func (p Period) Next() Period { return PeriodOf(p.End().AddDays(1)) }
func (p Period) Prev() Period { return PeriodOf(p.Start().AddDays(-1)) }

// Before orders periods chronologically.
func (p Period) Before(other Period) bool {
	if p.Year != other.Year {
		return p.Year < other.Year
	}
	return p.Month < other.Month
}

func (p Period) String() string {
	return fmt.Sprintf("%04d-%02d", p.Year, int(p.Month))
}
