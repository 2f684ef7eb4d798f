/*
hours.go - Hour ledger

PURPOSE:
  Stores worked hours per employee, day and time-type. The hour-entry
  screen edits a whole month at once, so the ledger is saved the same way:
  ReplaceMonth clears the employee's month and writes the new grid.

SAVE RULES (per submitted day):
  Regular  > 0 -> one entry typed by Classify(date), or holiday if flagged
  Overtime > 0 -> one entry typed overtime
  zero hours   -> nothing

ATOMICITY:
  Delete and insert run in one store transaction under the employee/month
  lock. A failed insert rolls the delete back; a concurrent recompute sees
  the old month or the new one, never an empty one.

DELETING A MONTH:
  DeleteMonth removes the month's payroll report first, then the hours.
  A report computed from hours that no longer exist would be meaningless.
*/
package payroll

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/calendar"
)

// HourLedger records worked hours.
type HourLedger struct {
	*core
}

// DayInput is one row of the monthly hour grid.
type DayInput struct {
	Date     calendar.Date
	Regular  decimal.Decimal
	Overtime decimal.Decimal
	// Holiday labels the day's regular hours as holiday hours.
	Holiday bool
}

// ReplaceMonth swaps the employee's hours for period with days.
func (h *HourLedger) ReplaceMonth(ctx context.Context, employeeID string, period calendar.Period, days []DayInput) ([]HourEntry, error) {
	if err := validateKey(employeeID, period); err != nil {
		return nil, err
	}
	if err := validateDays(period, days); err != nil {
		return nil, err
	}

	entries := hourEntries(employeeID, days)
	key := Key{EmployeeID: employeeID, Period: period}

	err := h.withKey(ctx, key, func(s Store) error {
		if err := s.DeleteHours(ctx, employeeID, period.Start(), period.End()); err != nil {
			return fmt.Errorf("failed to clear hours: %w", err)
		}
		if len(entries) == 0 {
			return nil
		}
		if err := s.InsertHours(ctx, entries); err != nil {
			return fmt.Errorf("failed to insert hours: %w", err)
		}
		return nil
	})
	if err != nil {
		h.logger(ctx).Error("replace month failed", "key", key.String(), "error", err)
		return nil, err
	}

	h.logger(ctx).Info("hours saved", "key", key.String(), "entries", len(entries))
	return entries, nil
}

// DeleteMonth removes the month's report and then its hours.
func (h *HourLedger) DeleteMonth(ctx context.Context, employeeID string, period calendar.Period) error {
	if err := validateKey(employeeID, period); err != nil {
		return err
	}
	key := Key{EmployeeID: employeeID, Period: period}

	err := h.withKey(ctx, key, func(s Store) error {
		if err := s.DeleteReportFor(ctx, employeeID, period); err != nil {
			return fmt.Errorf("failed to delete report: %w", err)
		}
		if err := s.DeleteHours(ctx, employeeID, period.Start(), period.End()); err != nil {
			return fmt.Errorf("failed to delete hours: %w", err)
		}
		return nil
	})
	if err != nil {
		h.logger(ctx).Error("delete month failed", "key", key.String(), "error", err)
		return err
	}

	h.logger(ctx).Info("month deleted", "key", key.String())
	return nil
}

// MonthTotals returns the month's entries by date.
func (h *HourLedger) MonthTotals(ctx context.Context, employeeID string, period calendar.Period) ([]HourEntry, error) {
	if err := validateKey(employeeID, period); err != nil {
		return nil, err
	}
	entries, err := h.store.LoadHours(ctx, employeeID, period.Start(), period.End())
	if err != nil {
		return nil, fmt.Errorf("failed to load hours: %w", err)
	}
	return entries, nil
}

// MonthGrid folds the month's entries back into one row per calendar day.
func (h *HourLedger) MonthGrid(ctx context.Context, employeeID string, period calendar.Period) ([]DayInput, error) {
	entries, err := h.MonthTotals(ctx, employeeID, period)
	if err != nil {
		return nil, err
	}

	days := period.Days()
	grid := make([]DayInput, len(days))
	for i, d := range days {
		grid[i] = DayInput{Date: d, Regular: decimal.Zero, Overtime: decimal.Zero}
	}
	for _, e := range entries {
		row := &grid[e.Date.Day()-1]
		switch e.TimeType {
		case TimeOvertime:
			row.Overtime = row.Overtime.Add(e.Hours)
		case TimeHoliday:
			row.Regular = row.Regular.Add(e.Hours)
			row.Holiday = true
		default:
			row.Regular = row.Regular.Add(e.Hours)
		}
	}
	return grid, nil
}

// =============================================================================
// HELPERS
// =============================================================================

func validateDays(period calendar.Period, days []DayInput) error {
	seen := make(map[calendar.Date]bool, len(days))
	for _, d := range days {
		if d.Date.IsZero() {
			return invalid("date", "is required")
		}
		if !period.Contains(d.Date) {
			return invalid("date", "%s is outside %s", d.Date, period)
		}
		if seen[d.Date] {
			return invalid("date", "%s submitted more than once", d.Date)
		}
		seen[d.Date] = true
		if d.Regular.IsNegative() {
			return invalid("regular", "negative hours on %s", d.Date)
		}
		if d.Overtime.IsNegative() {
			return invalid("overtime", "negative hours on %s", d.Date)
		}
	}
	return nil
}

func hourEntries(employeeID string, days []DayInput) []HourEntry {
	var entries []HourEntry
	for _, d := range days {
		if d.Regular.IsPositive() {
			t := Classify(d.Date)
			if d.Holiday {
				t = TimeHoliday
			}
			entries = append(entries, HourEntry{
				EmployeeID: employeeID,
				Date:       d.Date,
				Hours:      d.Regular,
				TimeType:   t,
			})
		}
		if d.Overtime.IsPositive() {
			entries = append(entries, HourEntry{
				EmployeeID: employeeID,
				Date:       d.Date,
				Hours:      d.Overtime,
				TimeType:   TimeOvertime,
			})
		}
	}
	return entries
}
