package sqlite_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/calendar"
	"github.com/warp/payroll-engine/logging"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

var jan = calendar.NewPeriod(2024, time.January)

func TestRates_SeqFollowsAppendOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	first, err := store.AppendRate(ctx, payroll.RateEntry{
		ID: "r-1", TimeType: payroll.TimeRegular, AmountPerHour: dec("500.25"),
		EffectiveFrom: calendar.MustParseDate("2024-01-01"), CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	second, err := store.AppendRate(ctx, payroll.RateEntry{
		ID: "r-2", TimeType: payroll.TimeRegular, AmountPerHour: dec("510"),
		EffectiveFrom: calendar.MustParseDate("2024-01-01"), Note: "correction", CreatedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.Greater(t, second.Seq, first.Seq)

	rates, err := store.ListRates(ctx)
	require.NoError(t, err)
	require.Len(t, rates, 2)
	assert.Equal(t, "r-1", rates[0].ID)
	assert.True(t, dec("500.25").Equal(rates[0].AmountPerHour))
	assert.Equal(t, "2024-01-01", rates[0].EffectiveFrom.String())
	assert.Equal(t, "", rates[0].Note)
	assert.Equal(t, "correction", rates[1].Note)
}

func TestHours_DeleteRangeAndOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.InsertHours(ctx, []payroll.HourEntry{
		{EmployeeID: "emp-1", Date: calendar.MustParseDate("2024-01-03"), Hours: dec("8"), TimeType: payroll.TimeRegular},
		{EmployeeID: "emp-1", Date: calendar.MustParseDate("2024-01-02"), Hours: dec("7.5"), TimeType: payroll.TimeRegular},
		{EmployeeID: "emp-1", Date: calendar.MustParseDate("2024-01-02"), Hours: dec("2"), TimeType: payroll.TimeOvertime},
		{EmployeeID: "emp-1", Date: calendar.MustParseDate("2024-02-01"), Hours: dec("8"), TimeType: payroll.TimeRegular},
		{EmployeeID: "emp-2", Date: calendar.MustParseDate("2024-01-02"), Hours: dec("8"), TimeType: payroll.TimeRegular},
	}))

	hours, err := store.LoadHours(ctx, "emp-1", jan.Start(), jan.End())
	require.NoError(t, err)
	require.Len(t, hours, 3)
	assert.Equal(t, payroll.TimeRegular, hours[0].TimeType)
	assert.True(t, dec("7.5").Equal(hours[0].Hours))
	assert.Equal(t, payroll.TimeOvertime, hours[1].TimeType)
	assert.Equal(t, "2024-01-03", hours[2].Date.String())

	require.NoError(t, store.DeleteHours(ctx, "emp-1", jan.Start(), jan.End()))
	hours, _ = store.LoadHours(ctx, "emp-1", jan.Start(), jan.End())
	assert.Empty(t, hours)
	hours, _ = store.LoadHours(ctx, "emp-1", jan.Next().Start(), jan.Next().End())
	assert.Len(t, hours, 1)
	hours, _ = store.LoadHours(ctx, "emp-2", jan.Start(), jan.End())
	assert.Len(t, hours, 1)
}

func TestReports_UniquePerEmployeeAndMonth(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	r := payroll.Report{ID: "rep-1", EmployeeID: "emp-1", Period: jan, Status: payroll.StatusDraft, CreatedAt: time.Now()}
	require.NoError(t, store.InsertReport(ctx, r))

	r.ID = "rep-2"
	err := store.InsertReport(ctx, r)
	assert.ErrorIs(t, err, payroll.ErrDuplicateReport)

	got, err := store.FindReport(ctx, "emp-1", jan)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "rep-1", got.ID)
	assert.True(t, got.NetPay.IsZero())

	missing, err := store.GetReport(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestReports_UpdateRoundTripsFigures(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	created := time.Date(2024, 2, 1, 9, 0, 0, 0, time.UTC)
	r := payroll.Report{ID: "rep-1", EmployeeID: "emp-1", Period: jan, Status: payroll.StatusDraft, CreatedAt: created, UpdatedAt: created}
	require.NoError(t, store.InsertReport(ctx, r))

	r.Hours.Regular = dec("160")
	r.Gross.Regular = dec("80000")
	r.Gross.Overtime = dec("1440.225")
	r.TotalBonuses = dec("5000")
	r.TotalGross = dec("86440.225")
	r.TotalAdvances = dec("20000")
	r.NetPay = dec("66440.225")
	r.Status = payroll.StatusFinalized
	r.UpdatedAt = created.Add(time.Hour)
	require.NoError(t, store.UpdateReport(ctx, r))

	got, err := store.GetReport(ctx, "rep-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.SameFigures(r))
	assert.Equal(t, payroll.StatusFinalized, got.Status)
	assert.True(t, created.Equal(got.CreatedAt))
	assert.True(t, r.UpdatedAt.Equal(got.UpdatedAt))

	err = store.UpdateReport(ctx, payroll.Report{ID: "ghost", Status: payroll.StatusDraft})
	assert.True(t, payroll.IsNotFound(err))
}

func TestWithTx_RollsBackOnError(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)
	boom := errors.New("boom")

	err := store.WithTx(ctx, func(s payroll.Store) error {
		require.NoError(t, s.InsertReport(ctx, payroll.Report{ID: "rep-1", EmployeeID: "emp-1", Period: jan, Status: payroll.StatusDraft}))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := store.GetReport(ctx, "rep-1")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestEmployees_ActiveOnly(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	require.NoError(t, store.SaveEmployee(ctx, payroll.Employee{ID: "e-2", Name: "Zoran", Active: true}))
	require.NoError(t, store.SaveEmployee(ctx, payroll.Employee{ID: "e-1", Name: "Ana", Active: true}))
	require.NoError(t, store.SaveEmployee(ctx, payroll.Employee{ID: "e-3", Name: "Milan", Active: true}))
	require.NoError(t, store.SaveEmployee(ctx, payroll.Employee{ID: "e-3", Name: "Milan", Active: false}))

	all, err := store.ListEmployees(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	active, err := store.ActiveEmployees(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, "Ana", active[0].Name)
	assert.Equal(t, "Zoran", active[1].Name)
}

func TestService_JanuaryScenarioOnSQLite(t *testing.T) {
	// GIVEN: The service running on SQLite with 500/h and 160 regular hours
	// WHEN: Drafting and recomputing through the bulk path
	// THEN: Figures survive the TEXT round trip exactly

	ctx := context.Background()
	store := newTestStore(t)
	require.NoError(t, store.SaveEmployee(ctx, payroll.Employee{ID: "emp-1", Name: "Ana", Active: true}))
	svc := payroll.NewService(store, payroll.Options{Directory: store, Logger: logging.Discard()})

	_, err := svc.Rates.SetRate(ctx, payroll.RateInput{TimeType: payroll.TimeRegular, AmountPerHour: dec("500"), EffectiveFrom: jan.Start()})
	require.NoError(t, err)

	var days []payroll.DayInput
	for _, d := range jan.Days() {
		if len(days) < 20 && payroll.Classify(d) == payroll.TimeRegular {
			days = append(days, payroll.DayInput{Date: d, Regular: dec("8")})
		}
	}
	_, err = svc.Hours.ReplaceMonth(ctx, "emp-1", jan, days)
	require.NoError(t, err)
	_, err = svc.Adjustments.AddBonus(ctx, payroll.BonusInput{EmployeeID: "emp-1", Period: jan, Amount: dec("5000")})
	require.NoError(t, err)
	_, err = svc.Adjustments.AddAdvance(ctx, payroll.AdvanceInput{EmployeeID: "emp-1", Date: calendar.MustParseDate("2024-01-15"), Amount: dec("20000")})
	require.NoError(t, err)

	drafts, err := svc.Engine.DraftAll(ctx, jan)
	require.NoError(t, err)
	require.Len(t, drafts, 1)
	require.NoError(t, drafts[0].Err)

	results, err := svc.Engine.RecomputeAll(ctx, jan)
	require.NoError(t, err)
	require.NoError(t, results[0].Err)

	r, err := svc.Engine.Report(ctx, drafts[0].Report.ID)
	require.NoError(t, err)
	assert.True(t, dec("80000").Equal(r.Gross.Regular))
	assert.True(t, dec("85000").Equal(r.TotalGross))
	assert.True(t, dec("65000").Equal(r.NetPay))

	// Deleting the month removes report and hours together.
	require.NoError(t, svc.Hours.DeleteMonth(ctx, "emp-1", jan))
	_, err = svc.Engine.Report(ctx, r.ID)
	assert.True(t, payroll.IsNotFound(err))
	entries, err := svc.Hours.MonthTotals(ctx, "emp-1", jan)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestListReports_OrderAndFilter(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for i, p := range []calendar.Period{calendar.NewPeriod(2023, 12), calendar.NewPeriod(2024, 2), jan} {
		status := payroll.StatusDraft
		if i == 0 {
			status = payroll.StatusPaid
		}
		require.NoError(t, store.InsertReport(ctx, payroll.Report{
			ID: p.String(), EmployeeID: "emp-1", Period: p, Status: status,
		}))
	}

	all, err := store.ListReports(ctx, payroll.ReportFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, "2024-02", all[0].ID)
	assert.Equal(t, "2024-01", all[1].ID)
	assert.Equal(t, "2023-12", all[2].ID)

	paid, err := store.ListReports(ctx, payroll.ReportFilter{EmployeeID: "emp-1", Status: payroll.StatusPaid})
	require.NoError(t, err)
	require.Len(t, paid, 1)
	assert.Equal(t, "2023-12", paid[0].ID)

	p := jan
	one, err := store.ListReports(ctx, payroll.ReportFilter{Period: &p})
	require.NoError(t, err)
	assert.Len(t, one, 1)
}
