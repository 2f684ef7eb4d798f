/*
store.go - Persistence contracts for the payroll engine

PURPOSE:
  Defines the interface between payroll logic and the database. Each ledger
  gets its own narrow interface; Store combines them and TxStore adds
  all-or-nothing execution.

KEY INTERFACES:
  RateStore:       Append-only rate schedule
  HourStore:       Hour entries, deletable per employee and date range
  AdjustmentStore: Advances and bonuses
  ReportStore:     Payroll reports, unique per employee and month
  Directory:       Active employees (external collaborator contract)
  EmployeeStore:   Local employees relation serving Directory
  TxStore:         Store + WithTx

ATOMIC REPLACE:
  Saving a month of hours is delete-then-insert. Both halves run inside
  WithTx so a failure between them rolls the delete back. The same holds
  for deleting a month (report first, then hours) and for recompute (read
  all ledgers, then write the report).

NOT FOUND:
  Get/Find methods return (nil, nil) when nothing matches. Delete methods
  return (false, nil) when the id does not exist. Translating that into
  NotFoundError is the service's job.

IMPLEMENTATIONS:
  - payroll/store/memory.go: In-memory for tests and demos
  - store/sqlite/sqlite.go:  SQLite (default)
  - store/postgres:          PostgreSQL via pgx
*/
package payroll

import (
	"context"

	"github.com/warp/payroll-engine/calendar"
)

// =============================================================================
// LEDGER STORES
// =============================================================================

// RateStore persists the rate schedule. Append-only: no update, no delete.
type RateStore interface {
	// AppendRate stores e and returns it with Seq (and CreatedAt) assigned.
	AppendRate(ctx context.Context, e RateEntry) (RateEntry, error)

	// ListRates returns every entry in append order (ascending Seq).
	ListRates(ctx context.Context) ([]RateEntry, error)
}

type HourStore interface {
	// DeleteHours removes every entry for the employee with from <= date <= to.
	DeleteHours(ctx context.Context, employeeID string, from, to calendar.Date) error

	// InsertHours stores entries in the given order.
	InsertHours(ctx context.Context, entries []HourEntry) error

	// LoadHours returns entries in [from, to] ordered by date, then insertion.
	LoadHours(ctx context.Context, employeeID string, from, to calendar.Date) ([]HourEntry, error)
}

type AdjustmentStore interface {
	InsertAdvance(ctx context.Context, a Advance) error
	DeleteAdvance(ctx context.Context, id string) (bool, error)
	// LoadAdvances returns the month's advances ordered by date.
	LoadAdvances(ctx context.Context, employeeID string, period calendar.Period) ([]Advance, error)

	InsertBonus(ctx context.Context, b Bonus) error
	DeleteBonus(ctx context.Context, id string) (bool, error)
	LoadBonuses(ctx context.Context, employeeID string, period calendar.Period) ([]Bonus, error)
}

type ReportStore interface {
	// InsertReport fails with ErrDuplicateReport if the key is taken.
	InsertReport(ctx context.Context, r Report) error
	UpdateReport(ctx context.Context, r Report) error
	GetReport(ctx context.Context, id string) (*Report, error)
	FindReport(ctx context.Context, employeeID string, period calendar.Period) (*Report, error)
	DeleteReport(ctx context.Context, id string) (bool, error)
	// DeleteReportFor removes the report for the key if there is one.
	DeleteReportFor(ctx context.Context, employeeID string, period calendar.Period) error
	// ListReports returns reports newest period first.
	ListReports(ctx context.Context, filter ReportFilter) ([]Report, error)
}

// ReportFilter narrows ListReports. Zero fields match everything.
type ReportFilter struct {
	EmployeeID string
	Period     *calendar.Period
	Status     Status
}

func (f ReportFilter) Matches(r Report) bool {
	if f.EmployeeID != "" && r.EmployeeID != f.EmployeeID {
		return false
	}
	if f.Period != nil && r.Period != *f.Period {
		return false
	}
	if f.Status != "" && r.Status != f.Status {
		return false
	}
	return true
}

// =============================================================================
// DIRECTORY - Employee directory collaborator
// =============================================================================

type Directory interface {
	ActiveEmployees(ctx context.Context) ([]Employee, error)
}

// EmployeeStore is the local employees relation every store carries so the
// Directory contract can be served without the external directory.
type EmployeeStore interface {
	Directory

	// SaveEmployee inserts or replaces the employee with the same ID.
	SaveEmployee(ctx context.Context, e Employee) error

	// ListEmployees returns every employee, active or not, by name.
	ListEmployees(ctx context.Context) ([]Employee, error)
}

// =============================================================================
// STORE - Everything the engine needs
// =============================================================================

type Store interface {
	RateStore
	HourStore
	AdjustmentStore
	ReportStore
}

// TxStore wraps Store with transaction support.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction.
	// If fn returns error, transaction is rolled back.
	// If fn returns nil, transaction is committed.
	WithTx(ctx context.Context, fn func(Store) error) error
}
