package payroll_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/calendar"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// COMPUTATION
// =============================================================================

func TestRecompute_JanuaryScenario(t *testing.T) {
	// GIVEN: regular 500/h from 2024-01-01, 160 regular hours in January,
	//        one bonus of 5000 and one advance of 20000
	// WHEN: Generating the January report
	// THEN: gross regular 80000, total gross 85000, net 65000

	ctx := context.Background()
	svc, _ := newTestService(t, payroll.Options{})
	setRate(t, svc, payroll.TimeRegular, "500", "2024-01-01")

	_, err := svc.Hours.ReplaceMonth(ctx, "emp-1", jan2024(), workdays(jan2024(), 20, "8"))
	require.NoError(t, err)
	_, err = svc.Adjustments.AddBonus(ctx, payroll.BonusInput{EmployeeID: "emp-1", Period: jan2024(), Amount: dec("5000")})
	require.NoError(t, err)
	_, err = svc.Adjustments.AddAdvance(ctx, payroll.AdvanceInput{EmployeeID: "emp-1", Date: date("2024-01-15"), Amount: dec("20000")})
	require.NoError(t, err)

	draft, created, err := svc.Engine.CreateDraft(ctx, "emp-1", jan2024())
	require.NoError(t, err)
	require.True(t, created)
	assert.Equal(t, payroll.StatusDraft, draft.Status)
	assert.True(t, draft.NetPay.IsZero())

	r, err := svc.Engine.RecomputeReport(ctx, draft.ID)
	require.NoError(t, err)

	requireDecimal(t, "160", r.Hours.Regular)
	requireDecimal(t, "80000", r.Gross.Regular)
	requireDecimal(t, "5000", r.TotalBonuses)
	requireDecimal(t, "85000", r.TotalGross)
	requireDecimal(t, "20000", r.TotalAdvances)
	requireDecimal(t, "65000", r.NetPay)
	assert.Equal(t, payroll.StatusDraft, r.Status)
	assert.Equal(t, draft.ID, r.ID)

	stored, err := svc.Engine.Report(ctx, draft.ID)
	require.NoError(t, err)
	assert.True(t, stored.SameFigures(r))
}

func TestRecompute_UnpricedHolidayHoursContributeZero(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, payroll.Options{})
	setRate(t, svc, payroll.TimeRegular, "500", "2024-01-01")

	_, err := svc.Hours.ReplaceMonth(ctx, "emp-1", jan2024(), []payroll.DayInput{
		{Date: date("2024-01-01"), Regular: dec("8"), Holiday: true},
		{Date: date("2024-01-02"), Regular: dec("8")},
	})
	require.NoError(t, err)
	_, _, err = svc.Engine.CreateDraft(ctx, "emp-1", jan2024())
	require.NoError(t, err)

	r, err := svc.Engine.Recompute(ctx, "emp-1", jan2024())
	require.NoError(t, err)
	requireDecimal(t, "8", r.Hours.Holiday)
	requireDecimal(t, "0", r.Gross.Holiday)
	requireDecimal(t, "4000", r.TotalGross)
}

func TestRecompute_AllCategoriesExact(t *testing.T) {
	// Fractional hours times fractional rates stay exact.
	ctx := context.Background()
	svc, _ := newTestService(t, payroll.Options{})
	setRate(t, svc, payroll.TimeRegular, "512.37", "2024-01-01")
	setRate(t, svc, payroll.TimeOvertime, "640.1", "2024-01-01")
	setRate(t, svc, payroll.TimeSaturday, "700", "2024-01-01")
	setRate(t, svc, payroll.TimeSunday, "800", "2024-01-01")
	setRate(t, svc, payroll.TimeHoliday, "1000", "2024-01-01")

	_, err := svc.Hours.ReplaceMonth(ctx, "emp-1", jan2024(), []payroll.DayInput{
		{Date: date("2024-01-01"), Regular: dec("7.5"), Holiday: true},
		{Date: date("2024-01-02"), Regular: dec("7.25"), Overtime: dec("1.75")},
		{Date: date("2024-01-03"), Regular: dec("8"), Overtime: dec("0.5")},
		{Date: date("2024-01-06"), Regular: dec("4")},
		{Date: date("2024-01-07"), Regular: dec("2.5")},
	})
	require.NoError(t, err)
	_, _, err = svc.Engine.CreateDraft(ctx, "emp-1", jan2024())
	require.NoError(t, err)

	r, err := svc.Engine.Recompute(ctx, "emp-1", jan2024())
	require.NoError(t, err)

	requireDecimal(t, "7813.6425", r.Gross.Regular)  // 15.25 x 512.37
	requireDecimal(t, "1440.225", r.Gross.Overtime)  // 2.25 x 640.1
	requireDecimal(t, "2800", r.Gross.Saturday)      // 4 x 700
	requireDecimal(t, "2000", r.Gross.Sunday)        // 2.5 x 800
	requireDecimal(t, "7500", r.Gross.Holiday)       // 7.5 x 1000
	requireDecimal(t, "21553.8675", r.TotalGross)
	requireDecimal(t, "21553.8675", r.NetPay)
}

func TestRecompute_NegativeNetPay(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, payroll.Options{})
	setRate(t, svc, payroll.TimeRegular, "100", "2024-01-01")
	_, err := svc.Hours.ReplaceMonth(ctx, "emp-1", jan2024(), workdays(jan2024(), 1, "8"))
	require.NoError(t, err)
	_, err = svc.Adjustments.AddAdvance(ctx, payroll.AdvanceInput{EmployeeID: "emp-1", Date: date("2024-01-03"), Amount: dec("1000")})
	require.NoError(t, err)
	_, _, err = svc.Engine.CreateDraft(ctx, "emp-1", jan2024())
	require.NoError(t, err)

	r, err := svc.Engine.Recompute(ctx, "emp-1", jan2024())
	require.NoError(t, err)
	requireDecimal(t, "-200", r.NetPay)
}

func TestRecompute_MidMonthRateAppliesToWholeMonth(t *testing.T) {
	// GIVEN: 400 from Dec 2023, 500 from 2024-01-20
	// THEN: All January hours are priced at 500 (rate on the last day)

	ctx := context.Background()
	svc, _ := newTestService(t, payroll.Options{})
	setRate(t, svc, payroll.TimeRegular, "400", "2023-12-01")
	setRate(t, svc, payroll.TimeRegular, "500", "2024-01-20")
	_, err := svc.Hours.ReplaceMonth(ctx, "emp-1", jan2024(), workdays(jan2024(), 2, "8"))
	require.NoError(t, err)
	_, _, err = svc.Engine.CreateDraft(ctx, "emp-1", jan2024())
	require.NoError(t, err)

	r, err := svc.Engine.Recompute(ctx, "emp-1", jan2024())
	require.NoError(t, err)
	requireDecimal(t, "8000", r.Gross.Regular)
}

func TestRecompute_PicksUpBackdatedRateChange(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, payroll.Options{})
	setRate(t, svc, payroll.TimeRegular, "500", "2024-01-01")
	_, err := svc.Hours.ReplaceMonth(ctx, "emp-1", jan2024(), workdays(jan2024(), 1, "10"))
	require.NoError(t, err)
	_, _, err = svc.Engine.CreateDraft(ctx, "emp-1", jan2024())
	require.NoError(t, err)

	first, err := svc.Engine.Recompute(ctx, "emp-1", jan2024())
	require.NoError(t, err)
	requireDecimal(t, "5000", first.Gross.Regular)

	setRate(t, svc, payroll.TimeRegular, "550", "2024-01-15")
	second, err := svc.Engine.Recompute(ctx, "emp-1", jan2024())
	require.NoError(t, err)
	requireDecimal(t, "5500", second.Gross.Regular)
}

func TestRecompute_Idempotent(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, payroll.Options{})
	setRate(t, svc, payroll.TimeRegular, "512.5", "2024-01-01")
	setRate(t, svc, payroll.TimeOvertime, "700", "2024-01-01")
	_, err := svc.Hours.ReplaceMonth(ctx, "emp-1", jan2024(), []payroll.DayInput{
		{Date: date("2024-01-02"), Regular: dec("7.5"), Overtime: dec("1.25")},
	})
	require.NoError(t, err)
	_, _, err = svc.Engine.CreateDraft(ctx, "emp-1", jan2024())
	require.NoError(t, err)

	first, err := svc.Engine.Recompute(ctx, "emp-1", jan2024())
	require.NoError(t, err)
	second, err := svc.Engine.Recompute(ctx, "emp-1", jan2024())
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestRecompute_MissingReportIsNotFound(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, payroll.Options{})

	_, err := svc.Engine.Recompute(ctx, "emp-1", jan2024())
	assert.True(t, payroll.IsNotFound(err))

	_, err = svc.Engine.RecomputeReport(ctx, "nope")
	assert.True(t, payroll.IsNotFound(err))
}

func TestCreateDraft_ReturnsExisting(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, payroll.Options{})

	first, created, err := svc.Engine.CreateDraft(ctx, "emp-1", jan2024())
	require.NoError(t, err)
	assert.True(t, created)

	second, created, err := svc.Engine.CreateDraft(ctx, "emp-1", jan2024())
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	reports, err := svc.Engine.Reports(ctx, payroll.ReportFilter{EmployeeID: "emp-1"})
	require.NoError(t, err)
	assert.Len(t, reports, 1)
}

func TestCreateDraft_ConcurrentCallsCreateOneReport(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, payroll.Options{})

	var wg sync.WaitGroup
	ids := make([]string, 16)
	for i := range ids {
		i := i
		wg.Add(1)
		go func() {
			defer wg.Done()
			r, _, err := svc.Engine.CreateDraft(ctx, "emp-1", jan2024())
			assert.NoError(t, err)
			ids[i] = r.ID
		}()
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
}

// =============================================================================
// LIFECYCLE
// =============================================================================

func TestLifecycle_LenientAllowsEverything(t *testing.T) {
	// Lenient mode: paid reports still recompute and MarkPaid skips finalize.
	ctx := context.Background()
	svc, _ := newTestService(t, payroll.Options{})
	setRate(t, svc, payroll.TimeRegular, "100", "2024-01-01")
	draft, _, err := svc.Engine.CreateDraft(ctx, "emp-1", jan2024())
	require.NoError(t, err)

	paid, err := svc.Engine.MarkPaid(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, payroll.StatusPaid, paid.Status)

	_, err = svc.Hours.ReplaceMonth(ctx, "emp-1", jan2024(), workdays(jan2024(), 1, "8"))
	require.NoError(t, err)
	r, err := svc.Engine.Recompute(ctx, "emp-1", jan2024())
	require.NoError(t, err)
	assert.Equal(t, payroll.StatusPaid, r.Status, "recompute keeps the status")
	requireDecimal(t, "800", r.NetPay)

	_, err = svc.Engine.MarkPaid(ctx, draft.ID)
	require.NoError(t, err)
}

func TestLifecycle_StrictEnforcesOrder(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, payroll.Options{Lifecycle: payroll.Lifecycle{Strict: true}})
	draft, _, err := svc.Engine.CreateDraft(ctx, "emp-1", jan2024())
	require.NoError(t, err)

	_, err = svc.Engine.MarkPaid(ctx, draft.ID)
	require.ErrorIs(t, err, payroll.ErrInvalidState)
	assert.True(t, payroll.IsConflict(err))

	fin, err := svc.Engine.Finalize(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, payroll.StatusFinalized, fin.Status)

	_, err = svc.Engine.Finalize(ctx, draft.ID)
	require.ErrorIs(t, err, payroll.ErrInvalidState)

	_, err = svc.Engine.Recompute(ctx, "emp-1", jan2024())
	require.NoError(t, err, "finalized reports may still be recomputed")

	paid, err := svc.Engine.MarkPaid(ctx, draft.ID)
	require.NoError(t, err)
	assert.Equal(t, payroll.StatusPaid, paid.Status)

	_, err = svc.Engine.Recompute(ctx, "emp-1", jan2024())
	var serr *payroll.StateError
	require.ErrorAs(t, err, &serr)
	assert.Equal(t, payroll.StatusPaid, serr.Status)

	// Delete is always allowed.
	require.NoError(t, svc.Engine.DeleteReport(ctx, draft.ID))
}

func TestDeleteReport_KeepsLedgers(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, payroll.Options{})
	_, err := svc.Hours.ReplaceMonth(ctx, "emp-1", jan2024(), workdays(jan2024(), 3, "8"))
	require.NoError(t, err)
	_, err = svc.Adjustments.AddBonus(ctx, payroll.BonusInput{EmployeeID: "emp-1", Period: jan2024(), Amount: dec("10")})
	require.NoError(t, err)
	r, _, err := svc.Engine.CreateDraft(ctx, "emp-1", jan2024())
	require.NoError(t, err)

	require.NoError(t, svc.Engine.DeleteReport(ctx, r.ID))
	assert.True(t, payroll.IsNotFound(svc.Engine.DeleteReport(ctx, r.ID)))

	entries, _ := svc.Hours.MonthTotals(ctx, "emp-1", jan2024())
	assert.Len(t, entries, 3)
	bonuses, _ := svc.Adjustments.MonthBonuses(ctx, "emp-1", jan2024())
	assert.Len(t, bonuses, 1)
}

func TestReports_NewestFirstAndFiltered(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t, payroll.Options{})
	for _, p := range []calendar.Period{
		calendar.NewPeriod(2023, 11),
		calendar.NewPeriod(2024, 2),
		calendar.NewPeriod(2023, 12),
	} {
		_, _, err := svc.Engine.CreateDraft(ctx, "emp-1", p)
		require.NoError(t, err)
	}
	feb, _, err := svc.Engine.CreateDraft(ctx, "emp-2", calendar.NewPeriod(2024, 2))
	require.NoError(t, err)
	_, err = svc.Engine.MarkPaid(ctx, feb.ID)
	require.NoError(t, err)

	all, err := svc.Engine.Reports(ctx, payroll.ReportFilter{})
	require.NoError(t, err)
	require.Len(t, all, 4)
	assert.Equal(t, "2024-02", all[0].Period.String())
	assert.Equal(t, "2024-02", all[1].Period.String())
	assert.Equal(t, "2023-12", all[2].Period.String())
	assert.Equal(t, "2023-11", all[3].Period.String())

	paid, err := svc.Engine.Reports(ctx, payroll.ReportFilter{Status: payroll.StatusPaid})
	require.NoError(t, err)
	require.Len(t, paid, 1)
	assert.Equal(t, "emp-2", paid[0].EmployeeID)

	p := calendar.NewPeriod(2023, 12)
	dec23, err := svc.Engine.Reports(ctx, payroll.ReportFilter{Period: &p})
	require.NoError(t, err)
	assert.Len(t, dec23, 1)

	_, err = svc.Engine.Reports(ctx, payroll.ReportFilter{Status: "archived"})
	assert.True(t, payroll.IsClientError(err))
}

// =============================================================================
// BULK RUNS
// =============================================================================

type staticDirectory []payroll.Employee

func (d staticDirectory) ActiveEmployees(context.Context) ([]payroll.Employee, error) {
	return d, nil
}

func TestDraftAllAndRecomputeAll(t *testing.T) {
	ctx := context.Background()
	dir := staticDirectory{
		{ID: "emp-1", Name: "Ana", Active: true},
		{ID: "emp-2", Name: "Bojan", Active: true},
		{ID: "emp-3", Name: "Ceca", Active: true},
	}
	svc, _ := newTestService(t, payroll.Options{Directory: dir, BulkWorkers: 2})
	setRate(t, svc, payroll.TimeRegular, "100", "2024-01-01")
	for i, emp := range dir {
		_, err := svc.Hours.ReplaceMonth(ctx, emp.ID, jan2024(), workdays(jan2024(), i+1, "8"))
		require.NoError(t, err)
	}
	existing, _, err := svc.Engine.CreateDraft(ctx, "emp-2", jan2024())
	require.NoError(t, err)

	drafts, err := svc.Engine.DraftAll(ctx, jan2024())
	require.NoError(t, err)
	require.Len(t, drafts, 3)
	for _, r := range drafts {
		require.NoError(t, r.Err)
		require.NotNil(t, r.Report)
	}
	assert.True(t, drafts[0].Created)
	assert.False(t, drafts[1].Created)
	assert.Equal(t, existing.ID, drafts[1].Report.ID)
	assert.Equal(t, "Ceca", drafts[2].Name)

	results, err := svc.Engine.RecomputeAll(ctx, jan2024())
	require.NoError(t, err)
	require.Len(t, results, 3)
	for i, r := range results {
		require.NoError(t, r.Err)
		requireDecimal(t, decimal.NewFromInt(int64(800*(i+1))).String(), r.Report.NetPay)
	}
}

func TestRecomputeAll_OneFailureDoesNotStopOthers(t *testing.T) {
	ctx := context.Background()
	dir := staticDirectory{{ID: "emp-1", Active: true}, {ID: "emp-2", Active: true}}
	svc, _ := newTestService(t, payroll.Options{Directory: dir})
	_, _, err := svc.Engine.CreateDraft(ctx, "emp-2", jan2024())
	require.NoError(t, err)

	results, err := svc.Engine.RecomputeAll(ctx, jan2024())
	require.NoError(t, err)
	assert.True(t, payroll.IsNotFound(results[0].Err))
	assert.Nil(t, results[0].Report)
	assert.NoError(t, results[1].Err)
}

func TestBulk_RequiresDirectory(t *testing.T) {
	svc, _ := newTestService(t, payroll.Options{})
	_, err := svc.Engine.DraftAll(context.Background(), jan2024())
	assert.True(t, errors.Is(err, payroll.ErrNoDirectory))
}

// =============================================================================
// PAYSLIP
// =============================================================================

func TestPayslip_LinesAndAdjustments(t *testing.T) {
	ctx := context.Background()
	dir := staticDirectory{{ID: "emp-1", Name: "Ana Petrović", Active: true}}
	svc, _ := newTestService(t, payroll.Options{Directory: dir})
	setRate(t, svc, payroll.TimeRegular, "500", "2024-01-01")
	setRate(t, svc, payroll.TimeOvertime, "700", "2024-01-01")
	_, err := svc.Hours.ReplaceMonth(ctx, "emp-1", jan2024(), []payroll.DayInput{
		{Date: date("2024-01-02"), Regular: dec("8"), Overtime: dec("3")},
		{Date: date("2024-01-03"), Regular: dec("8")},
	})
	require.NoError(t, err)
	_, err = svc.Adjustments.AddBonus(ctx, payroll.BonusInput{EmployeeID: "emp-1", Period: jan2024(), Amount: dec("5000"), Description: "target"})
	require.NoError(t, err)
	_, err = svc.Adjustments.AddAdvance(ctx, payroll.AdvanceInput{EmployeeID: "emp-1", Date: date("2024-01-10"), Amount: dec("2000")})
	require.NoError(t, err)
	r, _, err := svc.Engine.CreateDraft(ctx, "emp-1", jan2024())
	require.NoError(t, err)
	_, err = svc.Engine.Recompute(ctx, "emp-1", jan2024())
	require.NoError(t, err)

	slip, err := svc.Engine.Payslip(ctx, r.ID)
	require.NoError(t, err)

	assert.Equal(t, "Ana Petrović", slip.EmployeeName)
	assert.Equal(t, 2, slip.WorkedDays)
	assert.Equal(t, "2024-02-03", slip.IssuedOn.String())
	require.Len(t, slip.Lines, len(payroll.TimeTypes))
	assert.Equal(t, payroll.TimeRegular, slip.Lines[0].TimeType)
	requireDecimal(t, "500", slip.Lines[0].UnitPrice)
	requireDecimal(t, "8000", slip.Lines[0].Amount)
	requireDecimal(t, "700", slip.Lines[1].UnitPrice)
	requireDecimal(t, "0", slip.Lines[4].UnitPrice, "no hours means no unit price")
	requireDecimal(t, "10100", slip.HoursAmount())
	assert.Len(t, slip.Bonuses, 1)
	assert.Len(t, slip.Advances, 1)
	requireDecimal(t, "13100", slip.Report.NetPay)
}

// =============================================================================
// CONCURRENCY
// =============================================================================

func TestConcurrentReplaceAndRecompute_NeverSeeHalfMonth(t *testing.T) {
	// GIVEN: Two alternating month grids of 160h and 40h
	// WHEN: Replacing and recomputing concurrently on the same key
	// THEN: Every recompute sees one whole grid, never an empty month

	ctx := context.Background()
	svc, _ := newTestService(t, payroll.Options{})
	setRate(t, svc, payroll.TimeRegular, "1", "2024-01-01")
	full := workdays(jan2024(), 20, "8")
	short := workdays(jan2024(), 5, "8")
	_, err := svc.Hours.ReplaceMonth(ctx, "emp-1", jan2024(), full)
	require.NoError(t, err)
	_, _, err = svc.Engine.CreateDraft(ctx, "emp-1", jan2024())
	require.NoError(t, err)

	var wg sync.WaitGroup
	seen := make(chan string, 200)
	for i := 0; i < 50; i++ {
		i := i
		wg.Add(2)
		go func() {
			defer wg.Done()
			grid := full
			if i%2 == 1 {
				grid = short
			}
			_, err := svc.Hours.ReplaceMonth(ctx, "emp-1", jan2024(), grid)
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			r, err := svc.Engine.Recompute(ctx, "emp-1", jan2024())
			if assert.NoError(t, err) {
				seen <- r.Hours.Regular.String()
			}
		}()
	}
	wg.Wait()
	close(seen)

	for total := range seen {
		assert.Contains(t, []string{"160", "40"}, total)
	}
}
