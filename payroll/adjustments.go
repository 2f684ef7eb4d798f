package payroll

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/calendar"
)

// =============================================================================
// ADJUSTMENT LEDGER - Advances and bonuses per employee/month
// =============================================================================

// AdjustmentLedger records advances (reduce net pay) and bonuses (add to gross).
// Rows are created and deleted one at a time; there is no upper bound on amounts.
type AdjustmentLedger struct {
	*core
}

type AdvanceInput struct {
	EmployeeID string
	Date       calendar.Date
	Amount     decimal.Decimal
	// Period defaults to the month of Date.
	Period calendar.Period
	Note   string
}

type BonusInput struct {
	EmployeeID  string
	Period      calendar.Period
	Amount      decimal.Decimal
	Description string
}

// AddAdvance records a cash advance. Amount must be positive.
func (a *AdjustmentLedger) AddAdvance(ctx context.Context, in AdvanceInput) (Advance, error) {
	if in.Date.IsZero() {
		return Advance{}, invalid("date", "is required")
	}
	if in.Period == (calendar.Period{}) {
		in.Period = calendar.PeriodOf(in.Date)
	}
	if err := validateKey(in.EmployeeID, in.Period); err != nil {
		return Advance{}, err
	}
	if !in.Amount.IsPositive() {
		return Advance{}, invalid("amount", "must be greater than zero, got %s", in.Amount)
	}

	adv := Advance{
		ID:         a.newID(),
		EmployeeID: in.EmployeeID,
		Date:       in.Date,
		Amount:     in.Amount,
		Period:     in.Period,
		Note:       strings.TrimSpace(in.Note),
		CreatedAt:  a.now(),
	}
	if err := a.store.InsertAdvance(ctx, adv); err != nil {
		a.logger(ctx).Error("add advance failed", "employee_id", in.EmployeeID, "error", err)
		return Advance{}, fmt.Errorf("failed to insert advance: %w", err)
	}
	a.logger(ctx).Info("advance added", "advance_id", adv.ID, "employee_id", adv.EmployeeID, "period", adv.Period.String())
	return adv, nil
}

// DeleteAdvance removes one advance.
func (a *AdjustmentLedger) DeleteAdvance(ctx context.Context, id string) error {
	deleted, err := a.store.DeleteAdvance(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete advance: %w", err)
	}
	if !deleted {
		return &NotFoundError{Kind: "advance", ID: id}
	}
	a.logger(ctx).Info("advance deleted", "advance_id", id)
	return nil
}

// MonthAdvances lists the month's advances by date.
func (a *AdjustmentLedger) MonthAdvances(ctx context.Context, employeeID string, period calendar.Period) ([]Advance, error) {
	if err := validateKey(employeeID, period); err != nil {
		return nil, err
	}
	advances, err := a.store.LoadAdvances(ctx, employeeID, period)
	if err != nil {
		return nil, fmt.Errorf("failed to load advances: %w", err)
	}
	return advances, nil
}

// AddBonus records a lump sum. Amount may be zero but not negative.
func (a *AdjustmentLedger) AddBonus(ctx context.Context, in BonusInput) (Bonus, error) {
	if err := validateKey(in.EmployeeID, in.Period); err != nil {
		return Bonus{}, err
	}
	if in.Amount.IsNegative() {
		return Bonus{}, invalid("amount", "must be zero or greater, got %s", in.Amount)
	}

	bonus := Bonus{
		ID:          a.newID(),
		EmployeeID:  in.EmployeeID,
		Period:      in.Period,
		Amount:      in.Amount,
		Description: strings.TrimSpace(in.Description),
		CreatedAt:   a.now(),
	}
	if err := a.store.InsertBonus(ctx, bonus); err != nil {
		a.logger(ctx).Error("add bonus failed", "employee_id", in.EmployeeID, "error", err)
		return Bonus{}, fmt.Errorf("failed to insert bonus: %w", err)
	}
	a.logger(ctx).Info("bonus added", "bonus_id", bonus.ID, "employee_id", bonus.EmployeeID, "period", bonus.Period.String())
	return bonus, nil
}

func (a *AdjustmentLedger) DeleteBonus(ctx context.Context, id string) error {
	deleted, err := a.store.DeleteBonus(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to delete bonus: %w", err)
	}
	if !deleted {
		return &NotFoundError{Kind: "bonus", ID: id}
	}
	a.logger(ctx).Info("bonus deleted", "bonus_id", id)
	return nil
}

func (a *AdjustmentLedger) MonthBonuses(ctx context.Context, employeeID string, period calendar.Period) ([]Bonus, error) {
	if err := validateKey(employeeID, period); err != nil {
		return nil, err
	}
	bonuses, err := a.store.LoadBonuses(ctx, employeeID, period)
	if err != nil {
		return nil, fmt.Errorf("failed to load bonuses: %w", err)
	}
	return bonuses, nil
}

func sumAdvances(advances []Advance) decimal.Decimal {
	total := decimal.Zero
	for _, a := range advances {
		total = total.Add(a.Amount)
	}
	return total
}

func sumBonuses(bonuses []Bonus) decimal.Decimal {
	total := decimal.Zero
	for _, b := range bonuses {
		total = total.Add(b.Amount)
	}
	return total
}
