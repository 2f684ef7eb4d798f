/*
rates.go - Effective-dated rate schedule

PURPOSE:
  Each time-type has its own hourly rate. A rate applies from its
  EffectiveFrom day until a later entry of the same type supersedes it.
  Entries are never edited or removed, so the whole history stays visible.

RESOLUTION:
  The rate in effect for (type, day) is the entry with the latest
  EffectiveFrom <= day. Two entries may share an EffectiveFrom; the one
  appended last wins. If no entry qualifies the rate is zero: hours of an
  unpriced type are paid nothing rather than rejected.

  Resolution always reads the schedule as it is now. A report recomputed
  after a back-dated rate change picks the change up.

EXAMPLE:
  regular 400 from 2023-06-01
  regular 500 from 2024-01-01

  ResolveRate(regular, 2023-12-31) = 400
  ResolveRate(regular, 2024-01-15) = 500
  ResolveRate(holiday, 2024-01-15) = 0
*/
package payroll

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/calendar"
)

// RateSchedule is the append-only store of hourly rates.
type RateSchedule struct {
	*core
}

type RateInput struct {
	TimeType      TimeType
	AmountPerHour decimal.Decimal
	EffectiveFrom calendar.Date
	Note          string
}

func (in RateInput) validate() error {
	if !in.TimeType.Valid() {
		return invalid("time_type", "unknown time type %q", in.TimeType)
	}
	if in.AmountPerHour.IsNegative() {
		return invalid("amount_per_hour", "must be zero or greater, got %s", in.AmountPerHour)
	}
	if in.EffectiveFrom.IsZero() {
		return invalid("effective_from", "is required")
	}
	return nil
}

// SetRate appends a new rate. Existing entries are left untouched.
func (rs *RateSchedule) SetRate(ctx context.Context, in RateInput) (RateEntry, error) {
	if err := in.validate(); err != nil {
		return RateEntry{}, err
	}

	entry, err := rs.store.AppendRate(ctx, RateEntry{
		ID:            rs.newID(),
		TimeType:      in.TimeType,
		AmountPerHour: in.AmountPerHour,
		EffectiveFrom: in.EffectiveFrom,
		Note:          in.Note,
		CreatedAt:     rs.now(),
	})
	if err != nil {
		rs.logger(ctx).Error("set rate failed", "time_type", in.TimeType, "error", err)
		return RateEntry{}, fmt.Errorf("failed to append rate: %w", err)
	}

	rs.logger(ctx).Info("rate set",
		"time_type", entry.TimeType,
		"amount_per_hour", entry.AmountPerHour.String(),
		"effective_from", entry.EffectiveFrom.String())
	return entry, nil
}

// ResolveRate returns the rate in effect for t on asOf, or zero.
func (rs *RateSchedule) ResolveRate(ctx context.Context, t TimeType, asOf calendar.Date) (decimal.Decimal, error) {
	if !t.Valid() {
		return decimal.Zero, invalid("time_type", "unknown time type %q", t)
	}
	entries, err := rs.store.ListRates(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to load rates: %w", err)
	}
	return resolveRate(entries, t, asOf), nil
}

// RatesAsOf resolves every time-type on the same day.
func (rs *RateSchedule) RatesAsOf(ctx context.Context, asOf calendar.Date) (map[TimeType]decimal.Decimal, error) {
	entries, err := rs.store.ListRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rates: %w", err)
	}
	return ratesAsOf(entries, asOf), nil
}

// LatestRates returns the newest entry per time-type, whatever its date.
// Types without any entry are absent.
func (rs *RateSchedule) LatestRates(ctx context.Context) (map[TimeType]RateEntry, error) {
	entries, err := rs.store.ListRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rates: %w", err)
	}
	latest := make(map[TimeType]RateEntry)
	for _, e := range entries {
		if cur, ok := latest[e.TimeType]; !ok || e.supersedes(cur) {
			latest[e.TimeType] = e
		}
	}
	return latest, nil
}

// History returns every entry for t in append order.
func (rs *RateSchedule) History(ctx context.Context, t TimeType) ([]RateEntry, error) {
	if !t.Valid() {
		return nil, invalid("time_type", "unknown time type %q", t)
	}
	entries, err := rs.store.ListRates(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load rates: %w", err)
	}
	var out []RateEntry
	for _, e := range entries {
		if e.TimeType == t {
			out = append(out, e)
		}
	}
	return out, nil
}

// =============================================================================
// RESOLUTION
// =============================================================================

func resolveRate(entries []RateEntry, t TimeType, asOf calendar.Date) decimal.Decimal {
	var (
		best  RateEntry
		found bool
	)
	for _, e := range entries {
		if e.TimeType != t || e.EffectiveFrom.After(asOf) {
			continue
		}
		if !found || e.supersedes(best) {
			best, found = e, true
		}
	}
	if !found {
		return decimal.Zero
	}
	return best.AmountPerHour
}

func ratesAsOf(entries []RateEntry, asOf calendar.Date) map[TimeType]decimal.Decimal {
	rates := make(map[TimeType]decimal.Decimal, len(TimeTypes))
	for _, t := range TimeTypes {
		rates[t] = resolveRate(entries, t, asOf)
	}
	return rates
}
