// Package store provides Store implementations.
package store

import (
	"context"
	"sort"
	"sync"

	"github.com/warp/payroll-engine/calendar"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

// Memory implements payroll.TxStore and payroll.EmployeeStore in process.
// WithTx is simulated with a snapshot + rollback on error.
type Memory struct {
	mu sync.RWMutex
	d  *data
}

func NewMemory() *Memory {
	return &Memory{d: newData()}
}

var (
	_ payroll.TxStore       = (*Memory)(nil)
	_ payroll.EmployeeStore = (*Memory)(nil)
)

// WithTx executes fn within a transaction.
// Writes go straight to the live state; an error restores the snapshot.
func (m *Memory) WithTx(ctx context.Context, fn func(payroll.Store) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	snapshot := m.d.clone()
	if err := fn(m.d); err != nil {
		m.d = snapshot
		return err
	}
	return nil
}

// =============================================================================
// LOCKED ACCESSORS - Outside a transaction every call takes the store lock
// =============================================================================

func (m *Memory) AppendRate(ctx context.Context, e payroll.RateEntry) (payroll.RateEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.AppendRate(ctx, e)
}

func (m *Memory) ListRates(ctx context.Context) ([]payroll.RateEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.ListRates(ctx)
}

func (m *Memory) DeleteHours(ctx context.Context, employeeID string, from, to calendar.Date) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.DeleteHours(ctx, employeeID, from, to)
}

func (m *Memory) InsertHours(ctx context.Context, entries []payroll.HourEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.InsertHours(ctx, entries)
}

func (m *Memory) LoadHours(ctx context.Context, employeeID string, from, to calendar.Date) ([]payroll.HourEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.LoadHours(ctx, employeeID, from, to)
}

func (m *Memory) InsertAdvance(ctx context.Context, a payroll.Advance) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.InsertAdvance(ctx, a)
}

func (m *Memory) DeleteAdvance(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.DeleteAdvance(ctx, id)
}

func (m *Memory) LoadAdvances(ctx context.Context, employeeID string, period calendar.Period) ([]payroll.Advance, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.LoadAdvances(ctx, employeeID, period)
}

func (m *Memory) InsertBonus(ctx context.Context, b payroll.Bonus) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.InsertBonus(ctx, b)
}

func (m *Memory) DeleteBonus(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.DeleteBonus(ctx, id)
}

func (m *Memory) LoadBonuses(ctx context.Context, employeeID string, period calendar.Period) ([]payroll.Bonus, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.LoadBonuses(ctx, employeeID, period)
}

func (m *Memory) InsertReport(ctx context.Context, r payroll.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.InsertReport(ctx, r)
}

func (m *Memory) UpdateReport(ctx context.Context, r payroll.Report) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.UpdateReport(ctx, r)
}

func (m *Memory) GetReport(ctx context.Context, id string) (*payroll.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.GetReport(ctx, id)
}

func (m *Memory) FindReport(ctx context.Context, employeeID string, period calendar.Period) (*payroll.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.FindReport(ctx, employeeID, period)
}

func (m *Memory) DeleteReport(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.DeleteReport(ctx, id)
}

func (m *Memory) DeleteReportFor(ctx context.Context, employeeID string, period calendar.Period) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.d.DeleteReportFor(ctx, employeeID, period)
}

func (m *Memory) ListReports(ctx context.Context, filter payroll.ReportFilter) ([]payroll.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.ListReports(ctx, filter)
}

func (m *Memory) SaveEmployee(_ context.Context, e payroll.Employee) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.d.employees[e.ID] = e
	return nil
}

func (m *Memory) ListEmployees(_ context.Context) ([]payroll.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.employeesWhere(func(payroll.Employee) bool { return true }), nil
}

func (m *Memory) ActiveEmployees(_ context.Context) ([]payroll.Employee, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.d.employeesWhere(func(e payroll.Employee) bool { return e.Active }), nil
}

// Reset drops everything, employees included.
func (m *Memory) Reset(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.d = newData()
	return nil
}

// =============================================================================
// DATA - Unlocked state; also the transactional view handed to WithTx
// =============================================================================

type data struct {
	seq       int64
	rates     []payroll.RateEntry
	hours     []payroll.HourEntry
	advances  []payroll.Advance
	bonuses   []payroll.Bonus
	reports   map[string]payroll.Report
	employees map[string]payroll.Employee
}

func newData() *data {
	return &data{
		reports:   make(map[string]payroll.Report),
		employees: make(map[string]payroll.Employee),
	}
}

func (d *data) clone() *data {
	c := &data{
		seq:       d.seq,
		rates:     append([]payroll.RateEntry(nil), d.rates...),
		hours:     append([]payroll.HourEntry(nil), d.hours...),
		advances:  append([]payroll.Advance(nil), d.advances...),
		bonuses:   append([]payroll.Bonus(nil), d.bonuses...),
		reports:   make(map[string]payroll.Report, len(d.reports)),
		employees: make(map[string]payroll.Employee, len(d.employees)),
	}
	for k, v := range d.reports {
		c.reports[k] = v
	}
	for k, v := range d.employees {
		c.employees[k] = v
	}
	return c
}

func (d *data) AppendRate(_ context.Context, e payroll.RateEntry) (payroll.RateEntry, error) {
	d.seq++
	e.Seq = d.seq
	d.rates = append(d.rates, e)
	return e, nil
}

func (d *data) ListRates(_ context.Context) ([]payroll.RateEntry, error) {
	return append([]payroll.RateEntry(nil), d.rates...), nil
}

func (d *data) DeleteHours(_ context.Context, employeeID string, from, to calendar.Date) error {
	kept := d.hours[:0:0]
	for _, h := range d.hours {
		if h.EmployeeID == employeeID && inRange(h.Date, from, to) {
			continue
		}
		kept = append(kept, h)
	}
	d.hours = kept
	return nil
}

func (d *data) InsertHours(_ context.Context, entries []payroll.HourEntry) error {
	d.hours = append(d.hours, entries...)
	return nil
}

func (d *data) LoadHours(_ context.Context, employeeID string, from, to calendar.Date) ([]payroll.HourEntry, error) {
	var result []payroll.HourEntry
	for _, h := range d.hours {
		if h.EmployeeID == employeeID && inRange(h.Date, from, to) {
			result = append(result, h)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (d *data) InsertAdvance(_ context.Context, a payroll.Advance) error {
	d.advances = append(d.advances, a)
	return nil
}

func (d *data) DeleteAdvance(_ context.Context, id string) (bool, error) {
	for i, a := range d.advances {
		if a.ID == id {
			d.advances = append(d.advances[:i:i], d.advances[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (d *data) LoadAdvances(_ context.Context, employeeID string, period calendar.Period) ([]payroll.Advance, error) {
	var result []payroll.Advance
	for _, a := range d.advances {
		if a.EmployeeID == employeeID && a.Period == period {
			result = append(result, a)
		}
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Date.Before(result[j].Date) })
	return result, nil
}

func (d *data) InsertBonus(_ context.Context, b payroll.Bonus) error {
	d.bonuses = append(d.bonuses, b)
	return nil
}

func (d *data) DeleteBonus(_ context.Context, id string) (bool, error) {
	for i, b := range d.bonuses {
		if b.ID == id {
			d.bonuses = append(d.bonuses[:i:i], d.bonuses[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

func (d *data) LoadBonuses(_ context.Context, employeeID string, period calendar.Period) ([]payroll.Bonus, error) {
	var result []payroll.Bonus
	for _, b := range d.bonuses {
		if b.EmployeeID == employeeID && b.Period == period {
			result = append(result, b)
		}
	}
	return result, nil
}

func (d *data) InsertReport(_ context.Context, r payroll.Report) error {
	for _, existing := range d.reports {
		if existing.Key() == r.Key() {
			return payroll.ErrDuplicateReport
		}
	}
	d.reports[r.ID] = r
	return nil
}

func (d *data) UpdateReport(_ context.Context, r payroll.Report) error {
	if _, ok := d.reports[r.ID]; !ok {
		return &payroll.NotFoundError{Kind: "report", ID: r.ID}
	}
	d.reports[r.ID] = r
	return nil
}

func (d *data) GetReport(_ context.Context, id string) (*payroll.Report, error) {
	r, ok := d.reports[id]
	if !ok {
		return nil, nil
	}
	return &r, nil
}

func (d *data) FindReport(_ context.Context, employeeID string, period calendar.Period) (*payroll.Report, error) {
	for _, r := range d.reports {
		if r.EmployeeID == employeeID && r.Period == period {
			return &r, nil
		}
	}
	return nil, nil
}

func (d *data) DeleteReport(_ context.Context, id string) (bool, error) {
	if _, ok := d.reports[id]; !ok {
		return false, nil
	}
	delete(d.reports, id)
	return true, nil
}

func (d *data) DeleteReportFor(_ context.Context, employeeID string, period calendar.Period) error {
	for id, r := range d.reports {
		if r.EmployeeID == employeeID && r.Period == period {
			delete(d.reports, id)
		}
	}
	return nil
}

func (d *data) ListReports(_ context.Context, filter payroll.ReportFilter) ([]payroll.Report, error) {
	var result []payroll.Report
	for _, r := range d.reports {
		if filter.Matches(r) {
			result = append(result, r)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		a, b := result[i], result[j]
		if a.Period != b.Period {
			return b.Period.Before(a.Period)
		}
		return a.EmployeeID < b.EmployeeID
	})
	return result, nil
}

func (d *data) employeesWhere(keep func(payroll.Employee) bool) []payroll.Employee {
	var result []payroll.Employee
	for _, e := range d.employees {
		if keep(e) {
			result = append(result, e)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].Name != result[j].Name {
			return result[i].Name < result[j].Name
		}
		return result[i].ID < result[j].ID
	})
	return result
}

func inRange(d, from, to calendar.Date) bool {
	return from.BeforeOrEqual(d) && d.BeforeOrEqual(to)
}
