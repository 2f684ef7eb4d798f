package payroll

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/calendar"
)

// Payslip is the printable view of one report.
type Payslip struct {
	Report       Report
	EmployeeName string
	Lines        []PayslipLine
	Bonuses      []Bonus
	Advances     []Advance
	// WorkedDays counts the distinct days with any hours.
	WorkedDays int
	IssuedOn   calendar.Date
}

// PayslipLine is one time-type row. UnitPrice is the effective rate
// (gross / hours, two places) and zero when no hours were worked.
type PayslipLine struct {
	TimeType  TimeType
	Hours     decimal.Decimal
	UnitPrice decimal.Decimal
	Amount    decimal.Decimal
}

// HoursAmount sums the time-type rows, bonuses excluded.
func (p Payslip) HoursAmount() decimal.Decimal {
	return p.Report.Gross.Total()
}

// Payslip assembles the payslip for a report. Figures come from the stored
// report as last computed; only the adjustment lines are read fresh.
func (e *Engine) Payslip(ctx context.Context, reportID string) (Payslip, error) {
	r, err := e.Report(ctx, reportID)
	if err != nil {
		return Payslip{}, err
	}

	bonuses, err := e.store.LoadBonuses(ctx, r.EmployeeID, r.Period)
	if err != nil {
		return Payslip{}, fmt.Errorf("failed to load bonuses: %w", err)
	}
	advances, err := e.store.LoadAdvances(ctx, r.EmployeeID, r.Period)
	if err != nil {
		return Payslip{}, fmt.Errorf("failed to load advances: %w", err)
	}
	hours, err := e.store.LoadHours(ctx, r.EmployeeID, r.Period.Start(), r.Period.End())
	if err != nil {
		return Payslip{}, fmt.Errorf("failed to load hours: %w", err)
	}

	return Payslip{
		Report:       r,
		EmployeeName: e.employeeName(ctx, r.EmployeeID),
		Lines:        payslipLines(r),
		Bonuses:      bonuses,
		Advances:     advances,
		WorkedDays:   workedDays(hours),
		IssuedOn:     calendar.DateOf(e.now()),
	}, nil
}

// employeeName falls back to the id when the directory cannot name the employee.
func (e *Engine) employeeName(ctx context.Context, employeeID string) string {
	if e.directory == nil {
		return employeeID
	}
	employees, err := e.directory.ActiveEmployees(ctx)
	if err != nil {
		e.logger(ctx).Warn("directory lookup failed", "employee_id", employeeID, "error", err)
		return employeeID
	}
	for _, emp := range employees {
		if emp.ID == employeeID && emp.Name != "" {
			return emp.Name
		}
	}
	return employeeID
}

func payslipLines(r Report) []PayslipLine {
	lines := make([]PayslipLine, 0, len(TimeTypes))
	for _, t := range TimeTypes {
		hours, amount := r.Hours.Get(t), r.Gross.Get(t)
		unit := decimal.Zero
		if !hours.IsZero() {
			unit = amount.DivRound(hours, 2)
		}
		lines = append(lines, PayslipLine{TimeType: t, Hours: hours, UnitPrice: unit, Amount: amount})
	}
	return lines
}

func workedDays(entries []HourEntry) int {
	days := make(map[calendar.Date]struct{})
	for _, h := range entries {
		days[h.Date] = struct{}{}
	}
	return len(days)
}
