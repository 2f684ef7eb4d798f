/*
engine.go - Payroll computation engine

PURPOSE:
  Turns one employee's month of hours, bonuses and advances into the
  figures stored on the payroll report.

ALGORITHM (Recompute):
  1. Load the report for (employee, month); it must already exist
  2. Ask the lifecycle whether a recompute is allowed
  3. Sum the month's hours per time-type
  4. Resolve every rate as of the LAST day of the month
  5. gross[t]      = hours[t] x rate[t]        (exact, no rounding)
  6. TotalGross    = sum(gross) + sum(bonuses)
  7. NetPay        = TotalGross - sum(advances) (may be negative)
  8. Overwrite the figures on the existing row; status is unchanged

  Steps 1-8 run in one transaction under the employee/month lock, so the
  report always matches a single consistent view of the ledgers. Running
  Recompute twice on unchanged inputs stores identical figures.

RATE POLICY:
  A rate change in the middle of the month applies to the whole month.
  Rates are read from the current schedule, so a back-dated change is
  picked up by the next recompute of an older month.

BULK RUNS:
  DraftAll and RecomputeAll fan out over the directory's active employees.
  Each employee is its own key, so they run concurrently up to the
  configured worker count. One employee failing does not stop the others;
  the error is reported in that employee's BulkResult.

SEE ALSO:
  - lifecycle.go: which transitions are allowed
  - payslip.go: the printable view of a report
*/
package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/calendar"
	"golang.org/x/sync/errgroup"
)

// ErrNoDirectory is returned by bulk runs when no Directory was configured.
var ErrNoDirectory = errors.New("no employee directory configured")

// Engine computes payroll reports and moves them through their lifecycle.
type Engine struct {
	*core
	lifecycle Lifecycle
	directory Directory
	workers   int
}

// Lifecycle returns the transition rules the engine enforces.
func (e *Engine) Lifecycle() Lifecycle { return e.lifecycle }

// =============================================================================
// DRAFT & RECOMPUTE
// =============================================================================

// CreateDraft returns the report for the key, inserting a zeroed draft if
// there is none yet. created reports whether a new row was written.
func (e *Engine) CreateDraft(ctx context.Context, employeeID string, period calendar.Period) (Report, bool, error) {
	if err := validateKey(employeeID, period); err != nil {
		return Report{}, false, err
	}
	key := Key{EmployeeID: employeeID, Period: period}

	var (
		report  Report
		created bool
	)
	err := e.withKey(ctx, key, func(s Store) error {
		existing, err := s.FindReport(ctx, employeeID, period)
		if err != nil {
			return fmt.Errorf("failed to find report: %w", err)
		}
		if existing != nil {
			report = *existing
			return nil
		}

		now := e.now()
		report = newDraft(e.newID(), key, now)
		if err := s.InsertReport(ctx, report); err != nil {
			return fmt.Errorf("failed to insert report: %w", err)
		}
		created = true
		return nil
	})
	if err != nil {
		e.logger(ctx).Error("create draft failed", "key", key.String(), "error", err)
		return Report{}, false, err
	}

	if created {
		e.logger(ctx).Info("draft created", "report_id", report.ID, "employee_id", employeeID, "period", period.String())
	}
	return report, created, nil
}

// Recompute refreshes the figures of the existing report for the key.
func (e *Engine) Recompute(ctx context.Context, employeeID string, period calendar.Period) (Report, error) {
	if err := validateKey(employeeID, period); err != nil {
		return Report{}, err
	}
	key := Key{EmployeeID: employeeID, Period: period}

	var report Report
	err := e.withKey(ctx, key, func(s Store) error {
		existing, err := s.FindReport(ctx, employeeID, period)
		if err != nil {
			return fmt.Errorf("failed to find report: %w", err)
		}
		if existing == nil {
			return &NotFoundError{Kind: "report", ID: key.String()}
		}
		if err := e.lifecycle.CheckRecompute(*existing); err != nil {
			return err
		}

		in, err := loadInputs(ctx, s, key)
		if err != nil {
			return err
		}

		report = calculate(*existing, in)
		report.UpdatedAt = e.now()
		if err := s.UpdateReport(ctx, report); err != nil {
			return fmt.Errorf("failed to update report: %w", err)
		}
		return nil
	})
	if err != nil {
		e.logger(ctx).Error("recompute failed", "key", key.String(), "error", err)
		return Report{}, err
	}

	e.logger(ctx).Info("report recomputed",
		"report_id", report.ID,
		"employee_id", employeeID,
		"period", period.String(),
		"net_pay", report.NetPay.String())
	return report, nil
}

// RecomputeReport is Recompute addressed by report id.
func (e *Engine) RecomputeReport(ctx context.Context, reportID string) (Report, error) {
	r, err := e.Report(ctx, reportID)
	if err != nil {
		return Report{}, err
	}
	return e.Recompute(ctx, r.EmployeeID, r.Period)
}

// =============================================================================
// LIFECYCLE TRANSITIONS
// =============================================================================

func (e *Engine) Finalize(ctx context.Context, reportID string) (Report, error) {
	return e.transition(ctx, reportID, actionFinalize, e.lifecycle.Finalize)
}

// MarkPaid records that the report's net pay was handed over.
func (e *Engine) MarkPaid(ctx context.Context, reportID string) (Report, error) {
	return e.transition(ctx, reportID, actionMarkPaid, e.lifecycle.MarkPaid)
}

func (e *Engine) transition(ctx context.Context, reportID, action string, next func(Report) (Status, error)) (Report, error) {
	r, err := e.Report(ctx, reportID)
	if err != nil {
		return Report{}, err
	}

	var report Report
	err = e.withKey(ctx, r.Key(), func(s Store) error {
		current, err := s.GetReport(ctx, reportID)
		if err != nil {
			return fmt.Errorf("failed to get report: %w", err)
		}
		if current == nil {
			return &NotFoundError{Kind: "report", ID: reportID}
		}
		status, err := next(*current)
		if err != nil {
			return err
		}
		report = *current
		report.Status = status
		report.UpdatedAt = e.now()
		if err := s.UpdateReport(ctx, report); err != nil {
			return fmt.Errorf("failed to update report: %w", err)
		}
		return nil
	})
	if err != nil {
		e.logger(ctx).Warn("transition refused", "report_id", reportID, "action", action, "error", err)
		return Report{}, err
	}

	e.logger(ctx).Info("report status changed", "report_id", reportID, "action", action, "status", string(report.Status))
	return report, nil
}

// DeleteReport removes the report only. Hours and adjustments stay.
func (e *Engine) DeleteReport(ctx context.Context, reportID string) error {
	deleted, err := e.store.DeleteReport(ctx, reportID)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	if !deleted {
		return &NotFoundError{Kind: "report", ID: reportID}
	}
	e.logger(ctx).Info("report deleted", "report_id", reportID)
	return nil
}

// =============================================================================
// QUERIES
// =============================================================================

func (e *Engine) Report(ctx context.Context, reportID string) (Report, error) {
	r, err := e.store.GetReport(ctx, reportID)
	if err != nil {
		return Report{}, fmt.Errorf("failed to get report: %w", err)
	}
	if r == nil {
		return Report{}, &NotFoundError{Kind: "report", ID: reportID}
	}
	return *r, nil
}

// Reports lists reports matching filter, newest month first.
func (e *Engine) Reports(ctx context.Context, filter ReportFilter) ([]Report, error) {
	if filter.Period != nil {
		if err := filter.Period.Validate(); err != nil {
			return nil, invalid("period", "%s", err.Error())
		}
	}
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, invalid("status", "unknown status %q", filter.Status)
	}
	reports, err := e.store.ListReports(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reports, nil
}

// =============================================================================
// BULK RUNS
// =============================================================================

// BulkResult is the outcome of a bulk run for one employee.
type BulkResult struct {
	EmployeeID string
	Name       string
	Report     *Report
	Created    bool
	Err        error
}

// DraftAll creates the period's draft for every active employee.
func (e *Engine) DraftAll(ctx context.Context, period calendar.Period) ([]BulkResult, error) {
	return e.forEachEmployee(ctx, period, "draft all", func(ctx context.Context, emp Employee) BulkResult {
		r, created, err := e.CreateDraft(ctx, emp.ID, period)
		return bulkResult(emp, r, created, err)
	})
}

// RecomputeAll recomputes the period's report of every active employee.
// Employees without a report get a NotFoundError result.
func (e *Engine) RecomputeAll(ctx context.Context, period calendar.Period) ([]BulkResult, error) {
	return e.forEachEmployee(ctx, period, "recompute all", func(ctx context.Context, emp Employee) BulkResult {
		r, err := e.Recompute(ctx, emp.ID, period)
		return bulkResult(emp, r, false, err)
	})
}

func (e *Engine) forEachEmployee(ctx context.Context, period calendar.Period, op string, fn func(context.Context, Employee) BulkResult) ([]BulkResult, error) {
	if err := period.Validate(); err != nil {
		return nil, invalid("period", "%s", err.Error())
	}
	if e.directory == nil {
		return nil, ErrNoDirectory
	}
	employees, err := e.directory.ActiveEmployees(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}

	results := make([]BulkResult, len(employees))
	var g errgroup.Group
	g.SetLimit(e.workers)
	for i, emp := range employees {
		i, emp := i, emp
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = BulkResult{EmployeeID: emp.ID, Name: emp.Name, Err: err}
				return nil
			}
			results[i] = fn(ctx, emp)
			return nil
		})
	}
	_ = g.Wait()

	failed := 0
	for _, r := range results {
		if r.Err != nil {
			failed++
		}
	}
	e.logger(ctx).Info("bulk run finished", "op", op, "period", period.String(), "employees", len(results), "failed", failed)
	return results, nil
}

func bulkResult(emp Employee, r Report, created bool, err error) BulkResult {
	res := BulkResult{EmployeeID: emp.ID, Name: emp.Name, Created: created, Err: err}
	if err == nil {
		res.Report = &r
	}
	return res
}

// =============================================================================
// CALCULATION
// =============================================================================

// inputs is everything a report is computed from.
type inputs struct {
	hours    []HourEntry
	rates    map[TimeType]decimal.Decimal
	bonuses  []Bonus
	advances []Advance
}

func loadInputs(ctx context.Context, s Store, key Key) (inputs, error) {
	var in inputs
	var err error

	p := key.Period
	if in.hours, err = s.LoadHours(ctx, key.EmployeeID, p.Start(), p.End()); err != nil {
		return in, fmt.Errorf("failed to load hours: %w", err)
	}
	rates, err := s.ListRates(ctx)
	if err != nil {
		return in, fmt.Errorf("failed to load rates: %w", err)
	}
	in.rates = ratesAsOf(rates, p.End())
	if in.bonuses, err = s.LoadBonuses(ctx, key.EmployeeID, p); err != nil {
		return in, fmt.Errorf("failed to load bonuses: %w", err)
	}
	if in.advances, err = s.LoadAdvances(ctx, key.EmployeeID, p); err != nil {
		return in, fmt.Errorf("failed to load advances: %w", err)
	}
	return in, nil
}

// calculate returns r with every computed figure replaced. Identity,
// status and timestamps are kept.
func calculate(r Report, in inputs) Report {
	var hours, gross Breakdown
	for _, t := range TimeTypes {
		hours.Set(t, decimal.Zero)
	}
	for _, h := range in.hours {
		hours.Add(h.TimeType, h.Hours)
	}
	for _, t := range TimeTypes {
		gross.Set(t, hours.Get(t).Mul(in.rates[t]))
	}

	r.Hours = hours
	r.Gross = gross
	r.TotalBonuses = sumBonuses(in.bonuses)
	r.TotalAdvances = sumAdvances(in.advances)
	r.TotalGross = gross.Total().Add(r.TotalBonuses)
	r.NetPay = r.TotalGross.Sub(r.TotalAdvances)
	return r
}

func newDraft(id string, key Key, now time.Time) Report {
	zero := Breakdown{
		Regular:  decimal.Zero,
		Overtime: decimal.Zero,
		Saturday: decimal.Zero,
		Sunday:   decimal.Zero,
		Holiday:  decimal.Zero,
	}
	return Report{
		ID:            id,
		EmployeeID:    key.EmployeeID,
		Period:        key.Period,
		Hours:         zero,
		Gross:         zero,
		TotalBonuses:  decimal.Zero,
		TotalGross:    decimal.Zero,
		TotalAdvances: decimal.Zero,
		NetPay:        decimal.Zero,
		Status:        StatusDraft,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
