/*
Package postgres provides a PostgreSQL implementation of the payroll storage interfaces.

PURPOSE:
  Same contract and schema as store/sqlite, on PostgreSQL through pgx. Money
  and hours are NUMERIC and travel as decimal.Decimal in both directions;
  days are DATE.

CONCURRENCY:
  No Go-side lock. Each WithTx is one pgx.Tx; the engine's per-key lock
  serializes work on one employee/month inside a process, the unique index
  on payroll_reports catches a second draft from another process.

USAGE:
  store, err := postgres.New(ctx, os.Getenv("DATABASE_URL"))
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()
*/
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/warp/payroll-engine/calendar"
	"github.com/warp/payroll-engine/payroll"
)

// Store implements payroll.TxStore and payroll.EmployeeStore on a pgx pool.
type Store struct {
	pool *pgxpool.Pool
}

var (
	_ payroll.TxStore       = (*Store)(nil)
	_ payroll.EmployeeStore = (*Store)(nil)
)

// New connects to databaseURL and migrates the schema.
func New(ctx context.Context, databaseURL string) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse database url: %w", err)
	}
	cfg.MaxConnLifetime = time.Hour
	cfg.MaxConns = 10
	cfg.MinConns = 1

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	store := &Store{pool: pool}
	if err := store.migrate(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return store, nil
}

func (s *Store) Close() error {
	s.pool.Close()
	return nil
}

func (s *Store) migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
	CREATE TABLE IF NOT EXISTS rates (
		seq BIGSERIAL PRIMARY KEY,
		id TEXT NOT NULL UNIQUE,
		time_type TEXT NOT NULL,
		amount_per_hour NUMERIC NOT NULL CHECK (amount_per_hour >= 0),
		effective_from DATE NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	);

	CREATE TABLE IF NOT EXISTS hour_entries (
		id BIGSERIAL PRIMARY KEY,
		employee_id TEXT NOT NULL,
		work_date DATE NOT NULL,
		hours NUMERIC NOT NULL CHECK (hours > 0),
		time_type TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_hours_employee_date ON hour_entries(employee_id, work_date);

	CREATE TABLE IF NOT EXISTS advances (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		advance_date DATE NOT NULL,
		amount NUMERIC NOT NULL CHECK (amount > 0),
		year INT NOT NULL,
		month INT NOT NULL,
		note TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_advances_employee_period ON advances(employee_id, year, month);

	CREATE TABLE IF NOT EXISTS bonuses (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		year INT NOT NULL,
		month INT NOT NULL,
		amount NUMERIC NOT NULL CHECK (amount >= 0),
		description TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_bonuses_employee_period ON bonuses(employee_id, year, month);

	CREATE TABLE IF NOT EXISTS payroll_reports (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		year INT NOT NULL,
		month INT NOT NULL,
		hours_regular NUMERIC NOT NULL,
		hours_overtime NUMERIC NOT NULL,
		hours_saturday NUMERIC NOT NULL,
		hours_sunday NUMERIC NOT NULL,
		hours_holiday NUMERIC NOT NULL,
		gross_regular NUMERIC NOT NULL,
		gross_overtime NUMERIC NOT NULL,
		gross_saturday NUMERIC NOT NULL,
		gross_sunday NUMERIC NOT NULL,
		gross_holiday NUMERIC NOT NULL,
		total_bonuses NUMERIC NOT NULL,
		total_gross NUMERIC NOT NULL,
		total_advances NUMERIC NOT NULL,
		net_pay NUMERIC NOT NULL,
		status TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL
	);
	CREATE UNIQUE INDEX IF NOT EXISTS idx_unique_report_period ON payroll_reports(employee_id, year, month);

	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		active BOOLEAN NOT NULL DEFAULT TRUE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`)
	return err
}

// WithTx runs fn in one pgx transaction. Any error rolls back.
func (s *Store) WithTx(ctx context.Context, fn func(payroll.Store) error) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback(ctx)
			panic(p)
		}
	}()

	if err := fn(queries{q: tx}); err != nil {
		if rbErr := tx.Rollback(ctx); rbErr != nil {
			return fmt.Errorf("rollback error: %v (original error: %w)", rbErr, err)
		}
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	return nil
}

// Reset truncates every payroll table.
func (s *Store) Reset(ctx context.Context) error {
	_, err := s.pool.Exec(ctx,
		"TRUNCATE payroll_reports, hour_entries, advances, bonuses, rates, employees RESTART IDENTITY")
	return err
}

// =============================================================================
// POOL-LEVEL METHODS
// =============================================================================

func (s *Store) direct() queries { return queries{q: s.pool} }

func (s *Store) AppendRate(ctx context.Context, e payroll.RateEntry) (payroll.RateEntry, error) {
	return s.direct().AppendRate(ctx, e)
}

func (s *Store) ListRates(ctx context.Context) ([]payroll.RateEntry, error) {
	return s.direct().ListRates(ctx)
}

func (s *Store) DeleteHours(ctx context.Context, employeeID string, from, to calendar.Date) error {
	return s.direct().DeleteHours(ctx, employeeID, from, to)
}

func (s *Store) InsertHours(ctx context.Context, entries []payroll.HourEntry) error {
	return s.WithTx(ctx, func(tx payroll.Store) error { return tx.InsertHours(ctx, entries) })
}

func (s *Store) LoadHours(ctx context.Context, employeeID string, from, to calendar.Date) ([]payroll.HourEntry, error) {
	return s.direct().LoadHours(ctx, employeeID, from, to)
}

func (s *Store) InsertAdvance(ctx context.Context, a payroll.Advance) error {
	return s.direct().InsertAdvance(ctx, a)
}

func (s *Store) DeleteAdvance(ctx context.Context, id string) (bool, error) {
	return s.direct().DeleteAdvance(ctx, id)
}

func (s *Store) LoadAdvances(ctx context.Context, employeeID string, period calendar.Period) ([]payroll.Advance, error) {
	return s.direct().LoadAdvances(ctx, employeeID, period)
}

func (s *Store) InsertBonus(ctx context.Context, b payroll.Bonus) error {
	return s.direct().InsertBonus(ctx, b)
}

func (s *Store) DeleteBonus(ctx context.Context, id string) (bool, error) {
	return s.direct().DeleteBonus(ctx, id)
}

func (s *Store) LoadBonuses(ctx context.Context, employeeID string, period calendar.Period) ([]payroll.Bonus, error) {
	return s.direct().LoadBonuses(ctx, employeeID, period)
}

func (s *Store) InsertReport(ctx context.Context, r payroll.Report) error {
	return s.direct().InsertReport(ctx, r)
}

func (s *Store) UpdateReport(ctx context.Context, r payroll.Report) error {
	return s.direct().UpdateReport(ctx, r)
}

func (s *Store) GetReport(ctx context.Context, id string) (*payroll.Report, error) {
	return s.direct().GetReport(ctx, id)
}

func (s *Store) FindReport(ctx context.Context, employeeID string, period calendar.Period) (*payroll.Report, error) {
	return s.direct().FindReport(ctx, employeeID, period)
}

func (s *Store) DeleteReport(ctx context.Context, id string) (bool, error) {
	return s.direct().DeleteReport(ctx, id)
}

func (s *Store) DeleteReportFor(ctx context.Context, employeeID string, period calendar.Period) error {
	return s.direct().DeleteReportFor(ctx, employeeID, period)
}

func (s *Store) ListReports(ctx context.Context, filter payroll.ReportFilter) ([]payroll.Report, error) {
	return s.direct().ListReports(ctx, filter)
}

func (s *Store) SaveEmployee(ctx context.Context, e payroll.Employee) error {
	_, err := s.pool.Exec(ctx, `
		INSERT INTO employees (id, name, active) VALUES ($1, $2, $3)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, active = EXCLUDED.active`,
		e.ID, e.Name, e.Active)
	return err
}

func (s *Store) ListEmployees(ctx context.Context) ([]payroll.Employee, error) {
	return s.queryEmployees(ctx, "SELECT id, name, active FROM employees ORDER BY name, id")
}

func (s *Store) ActiveEmployees(ctx context.Context) ([]payroll.Employee, error) {
	return s.queryEmployees(ctx, "SELECT id, name, active FROM employees WHERE active ORDER BY name, id")
}

func (s *Store) queryEmployees(ctx context.Context, query string) ([]payroll.Employee, error) {
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var employees []payroll.Employee
	for rows.Next() {
		var e payroll.Employee
		if err := rows.Scan(&e.ID, &e.Name, &e.Active); err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

// =============================================================================
// QUERIES - Shared by the pool and the transaction view
// =============================================================================

// querier is satisfied by *pgxpool.Pool and pgx.Tx.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

type queries struct {
	q querier
}

func (x queries) AppendRate(ctx context.Context, e payroll.RateEntry) (payroll.RateEntry, error) {
	err := x.q.QueryRow(ctx, `
		INSERT INTO rates (id, time_type, amount_per_hour, effective_from, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING seq`,
		e.ID, string(e.TimeType), e.AmountPerHour, e.EffectiveFrom.Time(), e.Note, e.CreatedAt,
	).Scan(&e.Seq)
	if err != nil {
		return payroll.RateEntry{}, fmt.Errorf("failed to insert rate: %w", err)
	}
	return e, nil
}

func (x queries) ListRates(ctx context.Context) ([]payroll.RateEntry, error) {
	rows, err := x.q.Query(ctx, `
		SELECT seq, id, time_type, amount_per_hour, effective_from, note, created_at
		FROM rates ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []payroll.RateEntry
	for rows.Next() {
		var (
			e        payroll.RateEntry
			timeType string
			from     time.Time
		)
		if err := rows.Scan(&e.Seq, &e.ID, &timeType, &e.AmountPerHour, &from, &e.Note, &e.CreatedAt); err != nil {
			return nil, err
		}
		if e.TimeType, err = payroll.ParseTimeType(timeType); err != nil {
			return nil, err
		}
		e.EffectiveFrom = calendar.DateOf(from)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (x queries) DeleteHours(ctx context.Context, employeeID string, from, to calendar.Date) error {
	_, err := x.q.Exec(ctx,
		"DELETE FROM hour_entries WHERE employee_id = $1 AND work_date BETWEEN $2 AND $3",
		employeeID, from.Time(), to.Time())
	return err
}

func (x queries) InsertHours(ctx context.Context, entries []payroll.HourEntry) error {
	for _, h := range entries {
		_, err := x.q.Exec(ctx,
			"INSERT INTO hour_entries (employee_id, work_date, hours, time_type) VALUES ($1, $2, $3, $4)",
			h.EmployeeID, h.Date.Time(), h.Hours, string(h.TimeType))
		if err != nil {
			return fmt.Errorf("failed to insert hour entry: %w", err)
		}
	}
	return nil
}

func (x queries) LoadHours(ctx context.Context, employeeID string, from, to calendar.Date) ([]payroll.HourEntry, error) {
	rows, err := x.q.Query(ctx, `
		SELECT employee_id, work_date, hours, time_type
		FROM hour_entries
		WHERE employee_id = $1 AND work_date BETWEEN $2 AND $3
		ORDER BY work_date, id`,
		employeeID, from.Time(), to.Time())
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []payroll.HourEntry
	for rows.Next() {
		var (
			h        payroll.HourEntry
			day      time.Time
			timeType string
		)
		if err := rows.Scan(&h.EmployeeID, &day, &h.Hours, &timeType); err != nil {
			return nil, err
		}
		if h.TimeType, err = payroll.ParseTimeType(timeType); err != nil {
			return nil, err
		}
		h.Date = calendar.DateOf(day)
		entries = append(entries, h)
	}
	return entries, rows.Err()
}

func (x queries) InsertAdvance(ctx context.Context, a payroll.Advance) error {
	_, err := x.q.Exec(ctx, `
		INSERT INTO advances (id, employee_id, advance_date, amount, year, month, note, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.EmployeeID, a.Date.Time(), a.Amount, a.Period.Year, int(a.Period.Month), a.Note, a.CreatedAt)
	return err
}

func (x queries) DeleteAdvance(ctx context.Context, id string) (bool, error) {
	return x.deleteByID(ctx, "advances", id)
}

func (x queries) LoadAdvances(ctx context.Context, employeeID string, period calendar.Period) ([]payroll.Advance, error) {
	rows, err := x.q.Query(ctx, `
		SELECT id, employee_id, advance_date, amount, year, month, note, created_at
		FROM advances
		WHERE employee_id = $1 AND year = $2 AND month = $3
		ORDER BY advance_date, created_at, id`,
		employeeID, period.Year, int(period.Month))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var advances []payroll.Advance
	for rows.Next() {
		var (
			a     payroll.Advance
			day   time.Time
			month int
		)
		if err := rows.Scan(&a.ID, &a.EmployeeID, &day, &a.Amount, &a.Period.Year, &month, &a.Note, &a.CreatedAt); err != nil {
			return nil, err
		}
		a.Date = calendar.DateOf(day)
		a.Period.Month = time.Month(month)
		advances = append(advances, a)
	}
	return advances, rows.Err()
}

func (x queries) InsertBonus(ctx context.Context, b payroll.Bonus) error {
	_, err := x.q.Exec(ctx, `
		INSERT INTO bonuses (id, employee_id, year, month, amount, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		b.ID, b.EmployeeID, b.Period.Year, int(b.Period.Month), b.Amount, b.Description, b.CreatedAt)
	return err
}

func (x queries) DeleteBonus(ctx context.Context, id string) (bool, error) {
	return x.deleteByID(ctx, "bonuses", id)
}

func (x queries) LoadBonuses(ctx context.Context, employeeID string, period calendar.Period) ([]payroll.Bonus, error) {
	rows, err := x.q.Query(ctx, `
		SELECT id, employee_id, year, month, amount, description, created_at
		FROM bonuses
		WHERE employee_id = $1 AND year = $2 AND month = $3
		ORDER BY created_at, id`,
		employeeID, period.Year, int(period.Month))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bonuses []payroll.Bonus
	for rows.Next() {
		var (
			b     payroll.Bonus
			month int
		)
		if err := rows.Scan(&b.ID, &b.EmployeeID, &b.Period.Year, &month, &b.Amount, &b.Description, &b.CreatedAt); err != nil {
			return nil, err
		}
		b.Period.Month = time.Month(month)
		bonuses = append(bonuses, b)
	}
	return bonuses, rows.Err()
}

const reportColumns = `id, employee_id, year, month,
	hours_regular, hours_overtime, hours_saturday, hours_sunday, hours_holiday,
	gross_regular, gross_overtime, gross_saturday, gross_sunday, gross_holiday,
	total_bonuses, total_gross, total_advances, net_pay, status, created_at, updated_at`

func (x queries) InsertReport(ctx context.Context, r payroll.Report) error {
	_, err := x.q.Exec(ctx, `
		INSERT INTO payroll_reports (`+reportColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21)`,
		r.ID, r.EmployeeID, r.Period.Year, int(r.Period.Month),
		r.Hours.Regular, r.Hours.Overtime, r.Hours.Saturday, r.Hours.Sunday, r.Hours.Holiday,
		r.Gross.Regular, r.Gross.Overtime, r.Gross.Saturday, r.Gross.Sunday, r.Gross.Holiday,
		r.TotalBonuses, r.TotalGross, r.TotalAdvances, r.NetPay,
		string(r.Status), r.CreatedAt, r.UpdatedAt,
	)
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return payroll.ErrDuplicateReport
	}
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}
	return nil
}

func (x queries) UpdateReport(ctx context.Context, r payroll.Report) error {
	tag, err := x.q.Exec(ctx, `
		UPDATE payroll_reports SET
			hours_regular = $2, hours_overtime = $3, hours_saturday = $4, hours_sunday = $5, hours_holiday = $6,
			gross_regular = $7, gross_overtime = $8, gross_saturday = $9, gross_sunday = $10, gross_holiday = $11,
			total_bonuses = $12, total_gross = $13, total_advances = $14, net_pay = $15,
			status = $16, updated_at = $17
		WHERE id = $1`,
		r.ID,
		r.Hours.Regular, r.Hours.Overtime, r.Hours.Saturday, r.Hours.Sunday, r.Hours.Holiday,
		r.Gross.Regular, r.Gross.Overtime, r.Gross.Saturday, r.Gross.Sunday, r.Gross.Holiday,
		r.TotalBonuses, r.TotalGross, r.TotalAdvances, r.NetPay,
		string(r.Status), r.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return &payroll.NotFoundError{Kind: "report", ID: r.ID}
	}
	return nil
}

func (x queries) GetReport(ctx context.Context, id string) (*payroll.Report, error) {
	return x.queryReport(ctx, "SELECT "+reportColumns+" FROM payroll_reports WHERE id = $1", id)
}

func (x queries) FindReport(ctx context.Context, employeeID string, period calendar.Period) (*payroll.Report, error) {
	return x.queryReport(ctx,
		"SELECT "+reportColumns+" FROM payroll_reports WHERE employee_id = $1 AND year = $2 AND month = $3",
		employeeID, period.Year, int(period.Month))
}

func (x queries) DeleteReport(ctx context.Context, id string) (bool, error) {
	return x.deleteByID(ctx, "payroll_reports", id)
}

func (x queries) DeleteReportFor(ctx context.Context, employeeID string, period calendar.Period) error {
	_, err := x.q.Exec(ctx,
		"DELETE FROM payroll_reports WHERE employee_id = $1 AND year = $2 AND month = $3",
		employeeID, period.Year, int(period.Month))
	return err
}

func (x queries) ListReports(ctx context.Context, filter payroll.ReportFilter) ([]payroll.Report, error) {
	var (
		where []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}
	if filter.EmployeeID != "" {
		where = append(where, "employee_id = "+arg(filter.EmployeeID))
	}
	if filter.Period != nil {
		where = append(where, "year = "+arg(filter.Period.Year), "month = "+arg(int(filter.Period.Month)))
	}
	if filter.Status != "" {
		where = append(where, "status = "+arg(string(filter.Status)))
	}

	query := "SELECT " + reportColumns + " FROM payroll_reports"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY year DESC, month DESC, employee_id"

	rows, err := x.q.Query(ctx, query, args...)
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
	r, err := scanReport(x.q.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (x queries) deleteByID(ctx context.Context, table, id string) (bool, error) {
	tag, err := x.q.Exec(ctx, "DELETE FROM "+table+" WHERE id = $1", id)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func scanReport(row pgx.Row) (payroll.Report, error) {
	var (
		r      payroll.Report
		month  int
		status string
	)
	err := row.Scan(
		&r.ID, &r.EmployeeID, &r.Period.Year, &month,
		&r.Hours.Regular, &r.Hours.Overtime, &r.Hours.Saturday, &r.Hours.Sunday, &r.Hours.Holiday,
		&r.Gross.Regular, &r.Gross.Overtime, &r.Gross.Saturday, &r.Gross.Sunday, &r.Gross.Holiday,
		&r.TotalBonuses, &r.TotalGross, &r.TotalAdvances, &r.NetPay,
		&status, &r.CreatedAt, &r.UpdatedAt,
	)
	if err != nil {
		return payroll.Report{}, err
	}
	r.Period.Month = time.Month(month)
	if r.Status, err = payroll.ParseStatus(status); err != nil {
		return payroll.Report{}, err
	}
	return r, nil
}
