/*
scenarios.go - Demo scenario loaders for testing and demonstrations

PURPOSE:

	Provides pre-built scenarios that populate the store with realistic
	payroll data. Each scenario creates employees, rates, a month of
	hours and adjustments, then drafts and computes the reports.

AVAILABLE SCENARIOS:

	january-2024:  Three employees, one month, every time-type in use
	rate-change:   A raise effective mid-month priced at month end
	advance-heavy: Advances larger than gross pay (negative net)

HOW SCENARIOS WORK:
 1. Reset the store (clear all data)
 2. Save employees
 3. Append rates
 4. Replace each employee's month of hours
 5. Add bonuses and advances
 6. DraftAll + RecomputeAll for the month

USAGE VIA API:

	POST /api/scenarios/load
	{"scenario_id": "january-2024"}

NOTE:

	Scenarios reset the store. Only use in development/demo environments.

SEE ALSO:
  - handlers.go: Handler and helpers
*/
package api

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/calendar"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// SCENARIO DEFINITIONS
// =============================================================================

var scenarios = []ScenarioDTO{
	{
		ID:          "january-2024",
		Name:        "January 2024",
		Description: "Three employees with regular, overtime, weekend and holiday hours, bonuses and advances",
	},
	{
		ID:          "rate-change",
		Name:        "Mid-Month Raise",
		Description: "Regular rate raised on the 15th; the whole month is priced at the new rate",
	},
	{
		ID:          "advance-heavy",
		Name:        "Advance Heavy",
		Description: "Advances exceed gross pay and net pay goes negative",
	},
}

var scenarioLoaders = map[string]func(*Handler, context.Context) error{
	"january-2024":  (*Handler).loadJanuaryScenario,
	"rate-change":   (*Handler).loadRateChangeScenario,
	"advance-heavy": (*Handler).loadAdvanceHeavyScenario,
}

var demoPeriod = calendar.NewPeriod(2024, time.January)

// ListScenarios returns available scenarios.
// GET /api/scenarios
func (h *Handler) ListScenarios(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scenarios)
}

// GetCurrentScenario returns the last loaded scenario, or null.
// GET /api/scenarios/current
func (h *Handler) GetCurrentScenario(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	current := h.currentScenario
	h.mu.Unlock()

	for _, s := range scenarios {
		if s.ID == current {
			writeJSON(w, http.StatusOK, s)
			return
		}
	}
	writeJSON(w, http.StatusOK, nil)
}

// LoadScenario resets the store and loads a scenario.
// POST /api/scenarios/load
func (h *Handler) LoadScenario(w http.ResponseWriter, r *http.Request) {
	var req LoadScenarioRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeServiceError(w, r, "Invalid request body", err)
		return
	}
	load, ok := scenarioLoaders[req.ScenarioID]
	if !ok {
		writeError(w, http.StatusNotFound, "Unknown scenario", fmt.Errorf("scenario %q does not exist", req.ScenarioID))
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	ctx := r.Context()
	if err := h.Store.Reset(ctx); err != nil {
		h.writeServiceError(w, r, "Failed to reset store", err)
		return
	}
	h.currentScenario = ""
	if err := load(h, ctx); err != nil {
		h.writeServiceError(w, r, "Failed to load scenario", err)
		return
	}
	h.currentScenario = req.ScenarioID

	reports, err := h.Service.Engine.Reports(ctx, payroll.ReportFilter{Period: &demoPeriod})
	if err != nil {
		h.writeServiceError(w, r, "Failed to list reports", err)
		return
	}
	dtos := make([]ReportDTO, len(reports))
	for i, rep := range reports {
		dtos[i] = toReportDTO(rep)
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"scenario": req.ScenarioID,
		"reports":  dtos,
	})
}

// =============================================================================
// SCENARIO LOADERS
// =============================================================================

// loadJanuaryScenario seeds three employees:
//   - Ana: 20 regular days of 8h, bonus 5000, advance 20000
//   - Marko: regular days with overtime, two Saturdays, one Sunday, a holiday
//   - Ivana: inactive, has hours but is skipped by bulk runs
func (h *Handler) loadJanuaryScenario(ctx context.Context) error {
	if err := h.saveEmployees(ctx,
		payroll.Employee{ID: "emp-ana", Name: "Ana Jovanović", Active: true},
		payroll.Employee{ID: "emp-marko", Name: "Marko Petrović", Active: true},
		payroll.Employee{ID: "emp-ivana", Name: "Ivana Nikolić", Active: false},
	); err != nil {
		return err
	}
	if err := h.setRates(ctx, "2023-01-01", map[payroll.TimeType]string{
		payroll.TimeRegular:  "450",
		payroll.TimeOvertime: "600",
		payroll.TimeSaturday: "650",
		payroll.TimeSunday:   "700",
		payroll.TimeHoliday:  "0",
	}); err != nil {
		return err
	}
	if err := h.setRates(ctx, "2024-01-01", map[payroll.TimeType]string{
		payroll.TimeRegular:  "500",
		payroll.TimeOvertime: "720.1125",
		payroll.TimeSaturday: "750",
		payroll.TimeSunday:   "800",
	}); err != nil {
		return err
	}

	if err := h.replace(ctx, "emp-ana", regularDays(20, "8", "0")); err != nil {
		return err
	}
	marko := regularDays(18, "8", "1.5")
	marko = append(marko,
		day("2024-01-06", "6", "0"),
		day("2024-01-13", "4", "0"),
		day("2024-01-14", "5", "0"),
		payroll.DayInput{Date: calendar.MustParseDate("2024-01-01"), Regular: decimal.NewFromInt(8), Holiday: true},
	)
	if err := h.replace(ctx, "emp-marko", marko); err != nil {
		return err
	}
	if err := h.replace(ctx, "emp-ivana", regularDays(5, "8", "0")); err != nil {
		return err
	}

	if err := h.bonus(ctx, "emp-ana", "5000", "Quarterly target"); err != nil {
		return err
	}
	if err := h.advance(ctx, "emp-ana", "2024-01-15", "20000", "Mid-month advance"); err != nil {
		return err
	}
	if err := h.advance(ctx, "emp-marko", "2024-01-10", "15000", ""); err != nil {
		return err
	}
	return h.runMonth(ctx)
}

// loadRateChangeScenario raises the regular rate on the 15th. The report
// prices the whole month at the rate in effect on the 31st.
func (h *Handler) loadRateChangeScenario(ctx context.Context) error {
	if err := h.saveEmployees(ctx, payroll.Employee{ID: "emp-ana", Name: "Ana Jovanović", Active: true}); err != nil {
		return err
	}
	if err := h.setRates(ctx, "2023-06-01", map[payroll.TimeType]string{payroll.TimeRegular: "400"}); err != nil {
		return err
	}
	if err := h.setRates(ctx, "2024-01-15", map[payroll.TimeType]string{payroll.TimeRegular: "550"}); err != nil {
		return err
	}
	if err := h.replace(ctx, "emp-ana", regularDays(20, "8", "0")); err != nil {
		return err
	}
	return h.runMonth(ctx)
}

// loadAdvanceHeavyScenario pays out more in advances than the month earns.
func (h *Handler) loadAdvanceHeavyScenario(ctx context.Context) error {
	if err := h.saveEmployees(ctx, payroll.Employee{ID: "emp-milan", Name: "Milan Ilić", Active: true}); err != nil {
		return err
	}
	if err := h.setRates(ctx, "2024-01-01", map[payroll.TimeType]string{payroll.TimeRegular: "500"}); err != nil {
		return err
	}
	if err := h.replace(ctx, "emp-milan", regularDays(5, "8", "0")); err != nil {
		return err
	}
	if err := h.advance(ctx, "emp-milan", "2024-01-05", "15000", "Rent"); err != nil {
		return err
	}
	if err := h.advance(ctx, "emp-milan", "2024-01-20", "10000", ""); err != nil {
		return err
	}
	return h.runMonth(ctx)
}

// =============================================================================
// SCENARIO HELPERS
// =============================================================================

func (h *Handler) saveEmployees(ctx context.Context, employees ...payroll.Employee) error {
	for _, e := range employees {
		if err := h.Store.SaveEmployee(ctx, e); err != nil {
			return fmt.Errorf("failed to save employee %s: %w", e.ID, err)
		}
	}
	return nil
}

func (h *Handler) setRates(ctx context.Context, from string, amounts map[payroll.TimeType]string) error {
	for _, t := range payroll.TimeTypes {
		amount, ok := amounts[t]
		if !ok {
			continue
		}
		if _, err := h.Service.Rates.SetRate(ctx, payroll.RateInput{
			TimeType:      t,
			AmountPerHour: decimal.RequireFromString(amount),
			EffectiveFrom: calendar.MustParseDate(from),
		}); err != nil {
			return err
		}
	}
	return nil
}

func (h *Handler) replace(ctx context.Context, employeeID string, days []payroll.DayInput) error {
	_, err := h.Service.Hours.ReplaceMonth(ctx, employeeID, demoPeriod, days)
	return err
}

func (h *Handler) bonus(ctx context.Context, employeeID, amount, description string) error {
	_, err := h.Service.Adjustments.AddBonus(ctx, payroll.BonusInput{
		EmployeeID:  employeeID,
		Period:      demoPeriod,
		Amount:      decimal.RequireFromString(amount),
		Description: description,
	})
	return err
}

func (h *Handler) advance(ctx context.Context, employeeID, date, amount, note string) error {
	_, err := h.Service.Adjustments.AddAdvance(ctx, payroll.AdvanceInput{
		EmployeeID: employeeID,
		Date:       calendar.MustParseDate(date),
		Amount:     decimal.RequireFromString(amount),
		Note:       note,
	})
	return err
}

// runMonth drafts and computes every active employee's report.
func (h *Handler) runMonth(ctx context.Context) error {
	for _, run := range []func(context.Context, calendar.Period) ([]payroll.BulkResult, error){
		h.Service.Engine.DraftAll,
		h.Service.Engine.RecomputeAll,
	} {
		results, err := run(ctx, demoPeriod)
		if err != nil {
			return err
		}
		for _, res := range results {
			if res.Err != nil {
				return fmt.Errorf("employee %s: %w", res.EmployeeID, res.Err)
			}
		}
	}
	return nil
}

// regularDays returns the first n weekdays of the demo month (skipping
// New Year's Day) with the given regular and overtime hours.
func regularDays(n int, regular, overtime string) []payroll.DayInput {
	var days []payroll.DayInput
	for _, d := range demoPeriod.Days() {
		if len(days) == n {
			break
		}
		if d.Day() == 1 || payroll.Classify(d) != payroll.TimeRegular {
			continue
		}
		days = append(days, day(d.String(), regular, overtime))
	}
	return days
}

func day(date, regular, overtime string) payroll.DayInput {
	return payroll.DayInput{
		Date:     calendar.MustParseDate(date),
		Regular:  decimal.RequireFromString(regular),
		Overtime: decimal.RequireFromString(overtime),
	}
}
