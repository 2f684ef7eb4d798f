/*
dto.go - Data Transfer Objects for API requests and responses

PURPOSE:
  Defines the JSON structures for API communication. Keeps the payroll
  domain types free of wire concerns (snake_case names, string dates).

NAMING CONVENTION:
  - *DTO: Response types returned to clients
  - *Request: Request body types from clients

MONEY AND HOURS:
  Decimals are encoded as JSON strings ("80000", "1440.225") so no value
  ever passes through a float. Requests accept strings or numbers.

VALIDATION:
  Request shapes are checked with go-playground/validator struct tags
  (see decodeJSON). Business rules (negative rates, dates outside the
  month) stay in the payroll package and surface as ValidationError.

SEE ALSO:
  - handlers.go: Uses these types
*/
package api

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/payroll"
)

// =============================================================================
// RATES
// =============================================================================

type SetRateRequest struct {
	TimeType      string          `json:"time_type" validate:"required,oneof=regular overtime saturday sunday holiday"`
	AmountPerHour decimal.Decimal `json:"amount_per_hour"`
	EffectiveFrom string          `json:"effective_from" validate:"required,datetime=2006-01-02"`
	Note          string          `json:"note" validate:"max=500"`
}

type RateDTO struct {
	ID            string          `json:"id"`
	TimeType      string          `json:"time_type"`
	AmountPerHour decimal.Decimal `json:"amount_per_hour"`
	EffectiveFrom string          `json:"effective_from"`
	Note          string          `json:"note,omitempty"`
	CreatedAt     string          `json:"created_at,omitempty"`
}

// ResolvedRateDTO is the rate in effect for one type on one date.
type ResolvedRateDTO struct {
	TimeType      string          `json:"time_type"`
	Date          string          `json:"date"`
	AmountPerHour decimal.Decimal `json:"amount_per_hour"`
}

// =============================================================================
// HOURS
// =============================================================================

// ReplaceHoursRequest is the full month of hours for one employee.
// Days not listed end up with no hours.
type ReplaceHoursRequest struct {
	Days []DayDTO `json:"days" validate:"dive"`
}

type DayDTO struct {
	Date     string          `json:"date" validate:"required,datetime=2006-01-02"`
	Regular  decimal.Decimal `json:"regular"`
	Overtime decimal.Decimal `json:"overtime"`
	Holiday  bool            `json:"holiday,omitempty"`
}

type HourEntryDTO struct {
	Date     string          `json:"date"`
	TimeType string          `json:"time_type"`
	Hours    decimal.Decimal `json:"hours"`
}

// MonthHoursDTO lists stored entries with per-type totals.
type MonthHoursDTO struct {
	EmployeeID string            `json:"employee_id"`
	Period     string            `json:"period"`
	Entries    []HourEntryDTO    `json:"entries"`
	Totals     payroll.Breakdown `json:"totals"`
}

type MonthGridDTO struct {
	EmployeeID string   `json:"employee_id"`
	Period     string   `json:"period"`
	Days       []DayDTO `json:"days"`
}

// =============================================================================
// ADJUSTMENTS
// =============================================================================

type AddAdvanceRequest struct {
	Date   string          `json:"date" validate:"required,datetime=2006-01-02"`
	Amount decimal.Decimal `json:"amount"`
	// Period defaults to the month of Date.
	Period string `json:"period" validate:"omitempty,datetime=2006-01"`
	Note   string `json:"note" validate:"max=500"`
}

type AdvanceDTO struct {
	ID         string          `json:"id"`
	EmployeeID string          `json:"employee_id"`
	Date       string          `json:"date"`
	Amount     decimal.Decimal `json:"amount"`
	Period     string          `json:"period"`
	Note       string          `json:"note,omitempty"`
}

type AddBonusRequest struct {
	Period      string          `json:"period" validate:"required,datetime=2006-01"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description" validate:"max=500"`
}

type BonusDTO struct {
	ID          string          `json:"id"`
	EmployeeID  string          `json:"employee_id"`
	Period      string          `json:"period"`
	Amount      decimal.Decimal `json:"amount"`
	Description string          `json:"description,omitempty"`
}

// =============================================================================
// REPORTS
// =============================================================================

type CreateReportRequest struct {
	EmployeeID string `json:"employee_id" validate:"required"`
	Period     string `json:"period" validate:"required,datetime=2006-01"`
}

type ReportDTO struct {
	ID            string            `json:"id"`
	EmployeeID    string            `json:"employee_id"`
	Period        string            `json:"period"`
	Status        string            `json:"status"`
	Hours         payroll.Breakdown `json:"hours"`
	Gross         payroll.Breakdown `json:"gross"`
	TotalBonuses  decimal.Decimal   `json:"total_bonuses"`
	TotalGross    decimal.Decimal   `json:"total_gross"`
	TotalAdvances decimal.Decimal   `json:"total_advances"`
	NetPay        decimal.Decimal   `json:"net_pay"`
	CreatedAt     string            `json:"created_at,omitempty"`
	UpdatedAt     string            `json:"updated_at,omitempty"`
}

type PayslipLineDTO struct {
	TimeType  string          `json:"time_type"`
	Hours     decimal.Decimal `json:"hours"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Amount    decimal.Decimal `json:"amount"`
}

type PayslipDTO struct {
	Report       ReportDTO        `json:"report"`
	EmployeeName string           `json:"employee_name"`
	Lines        []PayslipLineDTO `json:"lines"`
	HoursAmount  decimal.Decimal  `json:"hours_amount"`
	Bonuses      []BonusDTO       `json:"bonuses"`
	Advances     []AdvanceDTO     `json:"advances"`
	WorkedDays   int              `json:"worked_days"`
	IssuedOn     string           `json:"issued_on"`
}

// BulkResultDTO is one employee's outcome in a bulk run.
type BulkResultDTO struct {
	EmployeeID string     `json:"employee_id"`
	Name       string     `json:"name"`
	Report     *ReportDTO `json:"report,omitempty"`
	Created    bool       `json:"created,omitempty"`
	Error      string     `json:"error,omitempty"`
}

type BulkRunDTO struct {
	Period    string          `json:"period"`
	Succeeded int             `json:"succeeded"`
	Failed    int             `json:"failed"`
	Results   []BulkResultDTO `json:"results"`
}

// =============================================================================
// EMPLOYEES AND SCENARIOS
// =============================================================================

type EmployeeDTO struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Active bool   `json:"active"`
}

type SaveEmployeeRequest struct {
	ID   string `json:"id" validate:"required,max=64"`
	Name string `json:"name" validate:"required,max=200"`
	// Active defaults to true.
	Active *bool `json:"active"`
}

type ScenarioDTO struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

type LoadScenarioRequest struct {
	ScenarioID string `json:"scenario_id" validate:"required"`
}

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// =============================================================================
// CONVERSIONS
// =============================================================================

func toRateDTO(e payroll.RateEntry) RateDTO {
	dto := RateDTO{
		ID:            e.ID,
		TimeType:      string(e.TimeType),
		AmountPerHour: e.AmountPerHour,
		EffectiveFrom: e.EffectiveFrom.String(),
		Note:          e.Note,
	}
	if !e.CreatedAt.IsZero() {
		dto.CreatedAt = e.CreatedAt.Format(time.RFC3339)
	}
	return dto
}

func toMonthHoursDTO(employeeID, period string, entries []payroll.HourEntry) MonthHoursDTO {
	dto := MonthHoursDTO{EmployeeID: employeeID, Period: period, Entries: make([]HourEntryDTO, len(entries))}
	for i, e := range entries {
		dto.Entries[i] = HourEntryDTO{Date: e.Date.String(), TimeType: string(e.TimeType), Hours: e.Hours}
		dto.Totals.Add(e.TimeType, e.Hours)
	}
	return dto
}

func toDayDTO(d payroll.DayInput) DayDTO {
	return DayDTO{Date: d.Date.String(), Regular: d.Regular, Overtime: d.Overtime, Holiday: d.Holiday}
}

func toAdvanceDTO(a payroll.Advance) AdvanceDTO {
	return AdvanceDTO{
		ID:         a.ID,
		EmployeeID: a.EmployeeID,
		Date:       a.Date.String(),
		Amount:     a.Amount,
		Period:     a.Period.String(),
		Note:       a.Note,
	}
}

func toBonusDTO(b payroll.Bonus) BonusDTO {
	return BonusDTO{
		ID:          b.ID,
		EmployeeID:  b.EmployeeID,
		Period:      b.Period.String(),
		Amount:      b.Amount,
		Description: b.Description,
	}
}

func toReportDTO(r payroll.Report) ReportDTO {
	dto := ReportDTO{
		ID:            r.ID,
		EmployeeID:    r.EmployeeID,
		Period:        r.Period.String(),
		Status:        string(r.Status),
		Hours:         r.Hours,
		Gross:         r.Gross,
		TotalBonuses:  r.TotalBonuses,
		TotalGross:    r.TotalGross,
		TotalAdvances: r.TotalAdvances,
		NetPay:        r.NetPay,
	}
	if !r.CreatedAt.IsZero() {
		dto.CreatedAt = r.CreatedAt.Format(time.RFC3339)
	}
	if !r.UpdatedAt.IsZero() {
		dto.UpdatedAt = r.UpdatedAt.Format(time.RFC3339)
	}
	return dto
}

func toPayslipDTO(p payroll.Payslip) PayslipDTO {
	dto := PayslipDTO{
		Report:       toReportDTO(p.Report),
		EmployeeName: p.EmployeeName,
		Lines:        make([]PayslipLineDTO, len(p.Lines)),
		HoursAmount:  p.HoursAmount(),
		Bonuses:      make([]BonusDTO, len(p.Bonuses)),
		Advances:     make([]AdvanceDTO, len(p.Advances)),
		WorkedDays:   p.WorkedDays,
		IssuedOn:     p.IssuedOn.String(),
	}
	for i, l := range p.Lines {
		dto.Lines[i] = PayslipLineDTO{TimeType: string(l.TimeType), Hours: l.Hours, UnitPrice: l.UnitPrice, Amount: l.Amount}
	}
	for i, b := range p.Bonuses {
		dto.Bonuses[i] = toBonusDTO(b)
	}
	for i, a := range p.Advances {
		dto.Advances[i] = toAdvanceDTO(a)
	}
	return dto
}

func toBulkRunDTO(period string, results []payroll.BulkResult) BulkRunDTO {
	dto := BulkRunDTO{Period: period, Results: make([]BulkResultDTO, len(results))}
	for i, res := range results {
		item := BulkResultDTO{EmployeeID: res.EmployeeID, Name: res.Name, Created: res.Created}
		if res.Report != nil {
			r := toReportDTO(*res.Report)
			item.Report = &r
		}
		if res.Err != nil {
			item.Error = res.Err.Error()
			dto.Failed++
		} else {
			dto.Succeeded++
		}
		dto.Results[i] = item
	}
	return dto
}

func toEmployeeDTO(e payroll.Employee) EmployeeDTO {
	return EmployeeDTO{ID: e.ID, Name: e.Name, Active: e.Active}
}
