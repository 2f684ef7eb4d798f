/*
Package sqlite provides a SQLite-backed implementation of the payroll storage interfaces.

PURPOSE:
  Implements payroll.TxStore and payroll.EmployeeStore on SQLite. This is
  the default store of the server; store/postgres carries the same schema
  for PostgreSQL.

KEY TABLES:
  rates:           Append-only rate schedule (seq gives append order)
  hour_entries:    Worked hours, replaced per employee/month
  advances:        Cash advances booked against a month
  bonuses:         Lump sums added to a month's gross
  payroll_reports: One row per employee/month (unique index)
  employees:       Local directory serving ActiveEmployees

APPEND-ONLY ENFORCEMENT:
  There are no UPDATE or DELETE statements on rates.

AMOUNTS:
  Decimals are stored as TEXT and scanned back through decimal's
  sql.Scanner, so no value ever passes through float64. Dates are TEXT
  YYYY-MM-DD, which sorts and compares correctly as a string.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety and a single connection, so
  ":memory:" databases are shared by every call. Inside WithTx the
  callback gets a view bound to the *sql.Tx that takes no locks.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) for better concurrency.

USAGE:
  store, err := sqlite.New("./data/payroll.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  svc := payroll.NewService(store, payroll.Options{Directory: store})

MIGRATION:
  Schema is auto-migrated on New().

SEE ALSO:
  - payroll/store.go: Interface definitions
  - payroll/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/payroll-engine/calendar"
	"github.com/warp/payroll-engine/payroll"
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var (
	_ payroll.TxStore       = (*Store)(nil)
	_ payroll.EmployeeStore = (*Store)(nil)
)

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Rate schedule (append-only)
	CREATE TABLE IF NOT EXISTS rates (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		time_type TEXT NOT NULL,
		amount_per_hour TEXT NOT NULL,
		effective_from TEXT NOT NULL,
		note TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_rates_type_from
		ON rates(time_type, effective_from);

	-- Hour ledger
	CREATE TABLE IF NOT EXISTS hour_entries (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		employee_id TEXT NOT NULL,
		work_date TEXT NOT NULL,
		hours TEXT NOT NULL,
		time_type TEXT NOT NULL
	);

	-- Replace and recompute both scan one employee's month
	CREATE INDEX IF NOT EXISTS idx_hours_employee_date
		ON hour_entries(employee_id, work_date);

	-- Adjustments
	CREATE TABLE IF NOT EXISTS advances (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		advance_date TEXT NOT NULL,
		amount TEXT NOT NULL,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		note TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_advances_employee_period
		ON advances(employee_id, year, month);

	CREATE TABLE IF NOT EXISTS bonuses (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		amount TEXT NOT NULL,
		description TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_bonuses_employee_period
		ON bonuses(employee_id, year, month);

	-- Payroll reports
	CREATE TABLE IF NOT EXISTS payroll_reports (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		hours_regular TEXT NOT NULL,
		hours_overtime TEXT NOT NULL,
		hours_saturday TEXT NOT NULL,
		hours_sunday TEXT NOT NULL,
		hours_holiday TEXT NOT NULL,
		gross_regular TEXT NOT NULL,
		gross_overtime TEXT NOT NULL,
		gross_saturday TEXT NOT NULL,
		gross_sunday TEXT NOT NULL,
		gross_holiday TEXT NOT NULL,
		total_bonuses TEXT NOT NULL,
		total_gross TEXT NOT NULL,
		total_advances TEXT NOT NULL,
		net_pay TEXT NOT NULL,
		status TEXT NOT NULL,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- CRITICAL: At most one report per employee and month
	CREATE UNIQUE INDEX IF NOT EXISTS idx_unique_report_period
		ON payroll_reports(employee_id, year, month);

	-- Employees (local directory)
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		active INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL
	);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// TRANSACTIONS
// =============================================================================

// WithTx executes a function within a database transaction.
func (s *Store) WithTx(ctx context.Context, fn func(store payroll.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(queries{q: sqlTx}); err != nil {
		return err
	}

	return sqlTx.Commit()
}

// =============================================================================
// STORE METHODS - Lock, then run the query against the database
// =============================================================================

func (s *Store) direct() queries { return queries{q: s.db} }

func (s *Store) AppendRate(ctx context.Context, e payroll.RateEntry) (payroll.RateEntry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.direct().AppendRate(ctx, e)
}

func (s *Store) ListRates(ctx context.Context) ([]payroll.RateEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.direct().ListRates(ctx)
}

func (s *Store) DeleteHours(ctx context.Context, employeeID string, from, to calendar.Date) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.direct().DeleteHours(ctx, employeeID, from, to)
}

// InsertHours outside WithTx still inserts all-or-nothing.
func (s *Store) InsertHours(ctx context.Context, entries []payroll.HourEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := (queries{q: sqlTx}).InsertHours(ctx, entries); err != nil {
		return err
	}
	return sqlTx.Commit()
}

func (s *Store) LoadHours(ctx context.Context, employeeID string, from, to calendar.Date) ([]payroll.HourEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.direct().LoadHours(ctx, employeeID, from, to)
}

func (s *Store) InsertAdvance(ctx context.Context, a payroll.Advance) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.direct().InsertAdvance(ctx, a)
}

func (s *Store) DeleteAdvance(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.direct().DeleteAdvance(ctx, id)
}

func (s *Store) LoadAdvances(ctx context.Context, employeeID string, period calendar.Period) ([]payroll.Advance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.direct().LoadAdvances(ctx, employeeID, period)
}

func (s *Store) InsertBonus(ctx context.Context, b payroll.Bonus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.direct().InsertBonus(ctx, b)
}

func (s *Store) DeleteBonus(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.direct().DeleteBonus(ctx, id)
}

func (s *Store) LoadBonuses(ctx context.Context, employeeID string, period calendar.Period) ([]payroll.Bonus, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.direct().LoadBonuses(ctx, employeeID, period)
}

func (s *Store) InsertReport(ctx context.Context, r payroll.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.direct().InsertReport(ctx, r)
}

func (s *Store) UpdateReport(ctx context.Context, r payroll.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.direct().UpdateReport(ctx, r)
}

func (s *Store) GetReport(ctx context.Context, id string) (*payroll.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.direct().GetReport(ctx, id)
}

func (s *Store) FindReport(ctx context.Context, employeeID string, period calendar.Period) (*payroll.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.direct().FindReport(ctx, employeeID, period)
}

func (s *Store) DeleteReport(ctx context.Context, id string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.direct().DeleteReport(ctx, id)
}

func (s *Store) DeleteReportFor(ctx context.Context, employeeID string, period calendar.Period) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.direct().DeleteReportFor(ctx, employeeID, period)
}

func (s *Store) ListReports(ctx context.Context, filter payroll.ReportFilter) ([]payroll.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.direct().ListReports(ctx, filter)
}

// =============================================================================
// EMPLOYEES
// =============================================================================

// SaveEmployee creates or updates an employee.
func (s *Store) SaveEmployee(ctx context.Context, emp payroll.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO employees (id, name, active, created_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			active = excluded.active
	`

	_, err := s.db.ExecContext(ctx, query,
		emp.ID, emp.Name, emp.Active,
		time.Now().UTC().Format(time.RFC3339),
	)
	return err
}

// ListEmployees returns all employees.
func (s *Store) ListEmployees(ctx context.Context) ([]payroll.Employee, error) {
	return s.queryEmployees(ctx, "SELECT id, name, active FROM employees ORDER BY name, id")
}

func (s *Store) ActiveEmployees(ctx context.Context) ([]payroll.Employee, error) {
	return s.queryEmployees(ctx, "SELECT id, name, active FROM employees WHERE active = 1 ORDER BY name, id")
}

func (s *Store) queryEmployees(ctx context.Context, query string) ([]payroll.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []payroll.Employee
	for rows.Next() {
		var emp payroll.Employee
		if err := rows.Scan(&emp.ID, &emp.Name, &emp.Active); err != nil {
			return nil, err
		}
		employees = append(employees, emp)
	}
	return employees, rows.Err()
}

// Reset clears every payroll table. Used by the scenario loader.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"payroll_reports", "hour_entries", "advances", "bonuses", "rates", "employees"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}
	return nil
}

// =============================================================================
// QUERIES - Shared by the locked store and the transaction view
// =============================================================================

// querier is satisfied by both *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queries runs every payroll.Store statement against q without locking.
type queries struct {
	q querier
}

func (x queries) AppendRate(ctx context.Context, e payroll.RateEntry) (payroll.RateEntry, error) {
	res, err := x.q.ExecContext(ctx, `
		INSERT INTO rates (id, time_type, amount_per_hour, effective_from, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, string(e.TimeType), e.AmountPerHour.String(), e.EffectiveFrom.String(),
		nullString(e.Note), formatTime(e.CreatedAt),
	)
	if err != nil {
		return payroll.RateEntry{}, fmt.Errorf("failed to insert rate: %w", err)
	}
	seq, err := res.LastInsertId()
	if err != nil {
		return payroll.RateEntry{}, fmt.Errorf("failed to read rate seq: %w", err)
	}
	e.Seq = seq
	return e, nil
}

func (x queries) ListRates(ctx context.Context) ([]payroll.RateEntry, error) {
	rows, err := x.q.QueryContext(ctx, `
		SELECT seq, id, time_type, amount_per_hour, effective_from, note, created_at
		FROM rates ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []payroll.RateEntry
	for rows.Next() {
		var (
			e                      payroll.RateEntry
			timeType, from, create string
			note                   sql.NullString
		)
		if err := rows.Scan(&e.Seq, &e.ID, &timeType, &e.AmountPerHour, &from, &note, &create); err != nil {
			return nil, err
		}
		if e.TimeType, err = payroll.ParseTimeType(timeType); err != nil {
			return nil, err
		}
		if e.EffectiveFrom, err = calendar.ParseDate(from); err != nil {
			return nil, err
		}
		e.Note = note.String
		e.CreatedAt = parseTime(create)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (x queries) DeleteHours(ctx context.Context, employeeID string, from, to calendar.Date) error {
	_, err := x.q.ExecContext(ctx,
		"DELETE FROM hour_entries WHERE employee_id = ? AND work_date BETWEEN ? AND ?",
		employeeID, from.String(), to.String(),
	)
	return err
}

func (x queries) InsertHours(ctx context.Context, entries []payroll.HourEntry) error {
	for _, h := range entries {
		_, err := x.q.ExecContext(ctx,
			"INSERT INTO hour_entries (employee_id, work_date, hours, time_type) VALUES (?, ?, ?, ?)",
			h.EmployeeID, h.Date.String(), h.Hours.String(), string(h.TimeType),
		)
		if err != nil {
			return fmt.Errorf("failed to insert hour entry: %w", err)
		}
	}
	return nil
}

func (x queries) LoadHours(ctx context.Context, employeeID string, from, to calendar.Date) ([]payroll.HourEntry, error) {
	rows, err := x.q.QueryContext(ctx, `
		SELECT employee_id, work_date, hours, time_type
		FROM hour_entries
		WHERE employee_id = ? AND work_date BETWEEN ? AND ?
		ORDER BY work_date, id`,
		employeeID, from.String(), to.String(),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []payroll.HourEntry
	for rows.Next() {
		var (
			h              payroll.HourEntry
			day, timeType string
		)
		if err := rows.Scan(&h.EmployeeID, &day, &h.Hours, &timeType); err != nil {
			return nil, err
		}
		if h.Date, err = calendar.ParseDate(day); err != nil {
			return nil, err
		}
		if h.TimeType, err = payroll.ParseTimeType(timeType); err != nil {
			return nil, err
		}
		entries = append(entries, h)
	}
	return entries, rows.Err()
}

func (x queries) InsertAdvance(ctx context.Context, a payroll.Advance) error {
	_, err := x.q.ExecContext(ctx, `
		INSERT INTO advances (id, employee_id, advance_date, amount, year, month, note, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		a.ID, a.EmployeeID, a.Date.String(), a.Amount.String(),
		a.Period.Year, int(a.Period.Month), nullString(a.Note), formatTime(a.CreatedAt),
	)
	return err
}

func (x queries) DeleteAdvance(ctx context.Context, id string) (bool, error) {
	return x.deleteByID(ctx, "advances", id)
}

func (x queries) LoadAdvances(ctx context.Context, employeeID string, period calendar.Period) ([]payroll.Advance, error) {
	rows, err := x.q.QueryContext(ctx, `
		SELECT id, employee_id, advance_date, amount, year, month, note, created_at
		FROM advances
		WHERE employee_id = ? AND year = ? AND month = ?
		ORDER BY advance_date, created_at, id`,
		employeeID, period.Year, int(period.Month),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var advances []payroll.Advance
	for rows.Next() {
		var (
			a            payroll.Advance
			day, created string
			month        int
			note         sql.NullString
		)
		if err := rows.Scan(&a.ID, &a.EmployeeID, &day, &a.Amount, &a.Period.Year, &month, &note, &created); err != nil {
			return nil, err
		}
		if a.Date, err = calendar.ParseDate(day); err != nil {
			return nil, err
		}
		a.Period.Month = time.Month(month)
		a.Note = note.String
		a.CreatedAt = parseTime(created)
		advances = append(advances, a)
	}
	return advances, rows.Err()
}

func (x queries) InsertBonus(ctx context.Context, b payroll.Bonus) error {
	_, err := x.q.ExecContext(ctx, `
		INSERT INTO bonuses (id, employee_id, year, month, amount, description, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		b.ID, b.EmployeeID, b.Period.Year, int(b.Period.Month), b.Amount.String(),
		nullString(b.Description), formatTime(b.CreatedAt),
	)
	return err
}

func (x queries) DeleteBonus(ctx context.Context, id string) (bool, error) {
	return x.deleteByID(ctx, "bonuses", id)
}

func (x queries) LoadBonuses(ctx context.Context, employeeID string, period calendar.Period) ([]payroll.Bonus, error) {
	rows, err := x.q.QueryContext(ctx, `
		SELECT id, employee_id, year, month, amount, description, created_at
		FROM bonuses
		WHERE employee_id = ? AND year = ? AND month = ?
		ORDER BY created_at, id`,
		employeeID, period.Year, int(period.Month),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bonuses []payroll.Bonus
	for rows.Next() {
		var (
			b       payroll.Bonus
			month   int
			desc    sql.NullString
			created string
		)
		if err := rows.Scan(&b.ID, &b.EmployeeID, &b.Period.Year, &month, &b.Amount, &desc, &created); err != nil {
			return nil, err
		}
		b.Period.Month = time.Month(month)
		b.Description = desc.String
		b.CreatedAt = parseTime(created)
		bonuses = append(bonuses, b)
	}
	return bonuses, rows.Err()
}

const reportColumns = `id, employee_id, year, month,
	hours_regular, hours_overtime, hours_saturday, hours_sunday, hours_holiday,
	gross_regular, gross_overtime, gross_saturday, gross_sunday, gross_holiday,
	total_bonuses, total_gross, total_advances, net_pay, status, created_at, updated_at`

func (x queries) InsertReport(ctx context.Context, r payroll.Report) error {
	_, err := x.q.ExecContext(ctx,
		"INSERT INTO payroll_reports ("+reportColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)",
		reportArgs(r)...,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return payroll.ErrDuplicateReport
		}
		return fmt.Errorf("failed to insert report: %w", err)
	}
	return nil
}

func (x queries) UpdateReport(ctx context.Context, r payroll.Report) error {
	args := reportArgs(r)
	// Identity columns (id, employee_id, year, month) and created_at are fixed.
	res, err := x.q.ExecContext(ctx, `
		UPDATE payroll_reports SET
			hours_regular = ?, hours_overtime = ?, hours_saturday = ?, hours_sunday = ?, hours_holiday = ?,
			gross_regular = ?, gross_overtime = ?, gross_saturday = ?, gross_sunday = ?, gross_holiday = ?,
			total_bonuses = ?, total_gross = ?, total_advances = ?, net_pay = ?, status = ?, updated_at = ?
		WHERE id = ?`,
		append(append(args[4:19:19], args[20]), r.ID)...,
	)
	if err != nil {
		return fmt.Errorf("failed to update report: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &payroll.NotFoundError{Kind: "report", ID: r.ID}
	}
	return nil
}

func (x queries) GetReport(ctx context.Context, id string) (*payroll.Report, error) {
	return x.queryReport(ctx, "SELECT "+reportColumns+" FROM payroll_reports WHERE id = ?", id)
}

func (x queries) FindReport(ctx context.Context, employeeID string, period calendar.Period) (*payroll.Report, error) {
	return x.queryReport(ctx,
		"SELECT "+reportColumns+" FROM payroll_reports WHERE employee_id = ? AND year = ? AND month = ?",
		employeeID, period.Year, int(period.Month),
	)
}

func (x queries) DeleteReport(ctx context.Context, id string) (bool, error) {
	return x.deleteByID(ctx, "payroll_reports", id)
}

func (x queries) DeleteReportFor(ctx context.Context, employeeID string, period calendar.Period) error {
	_, err := x.q.ExecContext(ctx,
		"DELETE FROM payroll_reports WHERE employee_id = ? AND year = ? AND month = ?",
		employeeID, period.Year, int(period.Month),
	)
	return err
}

func (x queries) ListReports(ctx context.Context, filter payroll.ReportFilter) ([]payroll.Report, error) {
	var (
		where []string
		args  []any
	)
	if filter.EmployeeID != "" {
		where = append(where, "employee_id = ?")
		args = append(args, filter.EmployeeID)
	}
	if filter.Period != nil {
		where = append(where, "year = ? AND month = ?")
		args = append(args, filter.Period.Year, int(filter.Period.Month))
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, string(filter.Status))
	}

	query := "SELECT " + reportColumns + " FROM payroll_reports"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY year DESC, month DESC, employee_id"

	rows, err := x.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var reports []payroll.Report
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			return nil, err
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

func (x queries) queryReport(ctx context.Context, query string, args ...any) (*payroll.Report, error) {
	r, err := scanReport(x.q.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (x queries) deleteByID(ctx context.Context, table, id string) (bool, error) {
	res, err := x.q.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// =============================================================================
// HELPERS
// =============================================================================

type scanner interface {
	Scan(dest ...any) error
}

func scanReport(row scanner) (payroll.Report, error) {
	var (
		r                         payroll.Report
		month                     int
		status, created, updated string
	)
	err := row.Scan(
		&r.ID, &r.EmployeeID, &r.Period.Year, &month,
		&r.Hours.Regular, &r.Hours.Overtime, &r.Hours.Saturday, &r.Hours.Sunday, &r.Hours.Holiday,
		&r.Gross.Regular, &r.Gross.Overtime, &r.Gross.Saturday, &r.Gross.Sunday, &r.Gross.Holiday,
		&r.TotalBonuses, &r.TotalGross, &r.TotalAdvances, &r.NetPay,
		&status, &created, &updated,
	)
	if err != nil {
		return payroll.Report{}, err
	}
	r.Period.Month = time.Month(month)
	if r.Status, err = payroll.ParseStatus(status); err != nil {
		return payroll.Report{}, err
	}
	r.CreatedAt = parseTime(created)
	r.UpdatedAt = parseTime(updated)
	return r, nil
}

// reportArgs lists r in reportColumns order.
func reportArgs(r payroll.Report) []any {
	return []any{
		r.ID, r.EmployeeID, r.Period.Year, int(r.Period.Month),
		r.Hours.Regular.String(), r.Hours.Overtime.String(), r.Hours.Saturday.String(), r.Hours.Sunday.String(), r.Hours.Holiday.String(),
		r.Gross.Regular.String(), r.Gross.Overtime.String(), r.Gross.Saturday.String(), r.Gross.Sunday.String(), r.Gross.Holiday.String(),
		r.TotalBonuses.String(), r.TotalGross.String(), r.TotalAdvances.String(), r.NetPay.String(),
		string(r.Status), formatTime(r.CreatedAt), formatTime(r.UpdatedAt),
	}
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) time.Time {
	t, _ := time.Parse(time.RFC3339Nano, s)
	return t
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func isUniqueConstraintError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
