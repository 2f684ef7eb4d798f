package payroll_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"github.com/warp/payroll-engine/calendar"
	"github.com/warp/payroll-engine/logging"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/payroll/store"
)

// =============================================================================
// TEST HELPERS
// =============================================================================

var fixedNow = time.Date(2024, time.February, 3, 10, 0, 0, 0, time.UTC)

func newTestService(t *testing.T, opts payroll.Options) (*payroll.Service, *store.Memory) {
	t.Helper()
	mem := store.NewMemory()
	return newServiceOn(mem, opts), mem
}

func newServiceOn(s payroll.TxStore, opts payroll.Options) *payroll.Service {
	if opts.Logger == nil {
		opts.Logger = logging.Discard()
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return fixedNow }
	}
	return payroll.NewService(s, opts)
}

func jan2024() calendar.Period { return calendar.NewPeriod(2024, time.January) }

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func date(s string) calendar.Date { return calendar.MustParseDate(s) }

// workdays returns the first n Monday-Friday days of p with the given
// regular hours each.
func workdays(p calendar.Period, n int, hours string) []payroll.DayInput {
	var days []payroll.DayInput
	for _, d := range p.Days() {
		if len(days) == n {
			break
		}
		if payroll.Classify(d) != payroll.TimeRegular {
			continue
		}
		days = append(days, payroll.DayInput{Date: d, Regular: dec(hours), Overtime: decimal.Zero})
	}
	return days
}

func setRate(t *testing.T, svc *payroll.Service, tt payroll.TimeType, amount, from string) payroll.RateEntry {
	t.Helper()
	e, err := svc.Rates.SetRate(context.Background(), payroll.RateInput{
		TimeType:      tt,
		AmountPerHour: dec(amount),
		EffectiveFrom: date(from),
	})
	require.NoError(t, err)
	return e
}

func requireDecimal(t *testing.T, want string, got decimal.Decimal, msgAndArgs ...any) {
	t.Helper()
	require.Truef(t, dec(want).Equal(got), "expected %s, got %s %v", want, got, msgAndArgs)
}

// =============================================================================
// FAULT INJECTION
// =============================================================================

var errInjected = errors.New("injected failure")

// failingHourInserts makes InsertHours fail inside transactions.
type failingHourInserts struct {
	*store.Memory
}

func (f failingHourInserts) WithTx(ctx context.Context, fn func(payroll.Store) error) error {
	return f.Memory.WithTx(ctx, func(s payroll.Store) error {
		return fn(failingHoursView{Store: s})
	})
}

type failingHoursView struct {
	payroll.Store
}

func (failingHoursView) InsertHours(context.Context, []payroll.HourEntry) error {
	return errInjected
}
