/*
handlers.go - HTTP API handlers for the payroll engine

PURPOSE:
  Exposes payroll.Service via REST API. Handles HTTP request/response,
  JSON serialization, and delegates to the payroll package.

ENDPOINTS:
  Rates:
    POST   /api/rates                                   Append a rate
    GET    /api/rates                                   Newest rate per type
    GET    /api/rates/resolve?type=&date=               Rate in effect
    GET    /api/rates/{type}/history                    Every entry for a type

  Hours:
    PUT    /api/employees/{id}/hours/{year}/{month}       Replace the month
    GET    /api/employees/{id}/hours/{year}/{month}       Stored entries
    GET    /api/employees/{id}/hours/{year}/{month}/grid  One row per day
    DELETE /api/employees/{id}/hours/{year}/{month}       Drop hours and report

  Adjustments:
    POST   /api/employees/{id}/advances                 Add advance
    GET    /api/employees/{id}/advances/{year}/{month}  List advances
    DELETE /api/advances/{id}                           Delete advance
    POST   /api/employees/{id}/bonuses                  Add bonus
    GET    /api/employees/{id}/bonuses/{year}/{month}   List bonuses
    DELETE /api/bonuses/{id}                            Delete bonus

  Reports:
    POST   /api/reports                     Create draft (201, or 200 if it existed)
    GET    /api/reports                     List (?employee_id=&period=&status=)
    GET    /api/reports/{id}                Get one
    POST   /api/reports/{id}/recompute      Recompute figures
    POST   /api/reports/{id}/finalize       Mark finalized
    POST   /api/reports/{id}/paid           Mark paid
    DELETE /api/reports/{id}                Delete (ledgers untouched)
    GET    /api/reports/{id}/payslip        Payslip as JSON
    GET    /api/reports/{id}/payslip.pdf    Payslip as PDF

  Bulk:
    POST   /api/payroll/{year}/{month}/drafts     Draft for every active employee
    POST   /api/payroll/{year}/{month}/recompute  Recompute every active employee

ERROR HANDLING:
  Errors are returned as JSON with appropriate HTTP status:
  - 400: Validation errors, invalid input
  - 404: Resource not found
  - 409: Conflict (report status, duplicate report)
  - 500: Internal errors

SECURITY NOTE:
  No authentication or authorization here. Callers are expected to sit
  behind an authenticating gateway.

SEE ALSO:
  - dto.go: Request/response data structures
  - scenarios.go: Demo data loaders
  - server.go: Router setup and middleware
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/warp/payroll-engine/calendar"
	"github.com/warp/payroll-engine/payroll"
	"github.com/warp/payroll-engine/payslip"
)

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Backend is the store-side surface the API needs beyond payroll.Service:
// the employee relation and a reset for demo scenarios.
type Backend interface {
	payroll.EmployeeStore
	Reset(ctx context.Context) error
}

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Service *payroll.Service
	Store   Backend

	log *slog.Logger

	mu              sync.Mutex
	currentScenario string
}

func NewHandler(svc *payroll.Service, store Backend, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{Service: svc, Store: store, log: logger}
}

// =============================================================================
// RATE HANDLERS
// =============================================================================

// SetRate appends a rate entry.
// POST /api/rates
func (h *Handler) SetRate(w http.ResponseWriter, r *http.Request) {
	var req SetRateRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeServiceError(w, r, "Invalid request body", err)
		return
	}
	from, err := calendar.ParseDate(req.EffectiveFrom)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid effective_from", err)
		return
	}

	entry, err := h.Service.Rates.SetRate(r.Context(), payroll.RateInput{
		TimeType:      payroll.TimeType(req.TimeType),
		AmountPerHour: req.AmountPerHour,
		EffectiveFrom: from,
		Note:          req.Note,
	})
	if err != nil {
		h.writeServiceError(w, r, "Failed to set rate", err)
		return
	}
	writeJSON(w, http.StatusCreated, toRateDTO(entry))
}

// LatestRates returns the newest entry for each time-type that has one.
// GET /api/rates
func (h *Handler) LatestRates(w http.ResponseWriter, r *http.Request) {
	latest, err := h.Service.Rates.LatestRates(r.Context())
	if err != nil {
		h.writeServiceError(w, r, "Failed to list rates", err)
		return
	}
	dtos := []RateDTO{}
	for _, t := range payroll.TimeTypes {
		if e, ok := latest[t]; ok {
			dtos = append(dtos, toRateDTO(e))
		}
	}
	writeJSON(w, http.StatusOK, dtos)
}

// ResolveRate returns the rate in effect for a type on a date (default today).
// GET /api/rates/resolve?type=regular&date=2024-01-15
func (h *Handler) ResolveRate(w http.ResponseWriter, r *http.Request) {
	t, err := payroll.ParseTimeType(r.URL.Query().Get("type"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid type", err)
		return
	}
	date := calendar.Today()
	if s := r.URL.Query().Get("date"); s != "" {
		if date, err = calendar.ParseDate(s); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date", err)
			return
		}
	}

	amount, err := h.Service.Rates.ResolveRate(r.Context(), t, date)
	if err != nil {
		h.writeServiceError(w, r, "Failed to resolve rate", err)
		return
	}
	writeJSON(w, http.StatusOK, ResolvedRateDTO{TimeType: string(t), Date: date.String(), AmountPerHour: amount})
}

// RateHistory lists every entry for one type in append order.
// GET /api/rates/{type}/history
func (h *Handler) RateHistory(w http.ResponseWriter, r *http.Request) {
	entries, err := h.Service.Rates.History(r.Context(), payroll.TimeType(chi.URLParam(r, "type")))
	if err != nil {
		h.writeServiceError(w, r, "Failed to get rate history", err)
		return
	}
	dtos := make([]RateDTO, len(entries))
	for i, e := range entries {
		dtos[i] = toRateDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// =============================================================================
// HOUR HANDLERS
// =============================================================================

// ReplaceHours replaces an employee's month of hours.
// PUT /api/employees/{id}/hours/{year}/{month}
func (h *Handler) ReplaceHours(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")
	period, err := periodParam(r)
	if err != nil {
		h.writeServiceError(w, r, "Invalid period", err)
		return
	}

	var req ReplaceHoursRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeServiceError(w, r, "Invalid request body", err)
		return
	}
	days := make([]payroll.DayInput, len(req.Days))
	for i, d := range req.Days {
		date, err := calendar.ParseDate(d.Date)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid date", err)
			return
		}
		days[i] = payroll.DayInput{Date: date, Regular: d.Regular, Overtime: d.Overtime, Holiday: d.Holiday}
	}

	entries, err := h.Service.Hours.ReplaceMonth(r.Context(), employeeID, period, days)
	if err != nil {
		h.writeServiceError(w, r, "Failed to replace hours", err)
		return
	}
	writeJSON(w, http.StatusOK, toMonthHoursDTO(employeeID, period.String(), entries))
}

// GetHours returns the stored entries of a month.
// GET /api/employees/{id}/hours/{year}/{month}
func (h *Handler) GetHours(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")
	period, err := periodParam(r)
	if err != nil {
		h.writeServiceError(w, r, "Invalid period", err)
		return
	}
	entries, err := h.Service.Hours.MonthTotals(r.Context(), employeeID, period)
	if err != nil {
		h.writeServiceError(w, r, "Failed to get hours", err)
		return
	}
	writeJSON(w, http.StatusOK, toMonthHoursDTO(employeeID, period.String(), entries))
}

// GetHoursGrid returns one row per calendar day, for month editors.
// GET /api/employees/{id}/hours/{year}/{month}/grid
func (h *Handler) GetHoursGrid(w http.ResponseWriter, r *http.Request) {
	employeeID := chi.URLParam(r, "id")
	period, err := periodParam(r)
	if err != nil {
		h.writeServiceError(w, r, "Invalid period", err)
		return
	}
	grid, err := h.Service.Hours.MonthGrid(r.Context(), employeeID, period)
	if err != nil {
		h.writeServiceError(w, r, "Failed to get hours", err)
		return
	}
	dto := MonthGridDTO{EmployeeID: employeeID, Period: period.String(), Days: make([]DayDTO, len(grid))}
	for i, d := range grid {
		dto.Days[i] = toDayDTO(d)
	}
	writeJSON(w, http.StatusOK, dto)
}

// DeleteHours removes the month's hours and its report.
// DELETE /api/employees/{id}/hours/{year}/{month}
func (h *Handler) DeleteHours(w http.ResponseWriter, r *http.Request) {
	period, err := periodParam(r)
	if err != nil {
		h.writeServiceError(w, r, "Invalid period", err)
		return
	}
	if err := h.Service.Hours.DeleteMonth(r.Context(), chi.URLParam(r, "id"), period); err != nil {
		h.writeServiceError(w, r, "Failed to delete hours", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// ADJUSTMENT HANDLERS
// =============================================================================

// AddAdvance records a cash advance.
// POST /api/employees/{id}/advances
func (h *Handler) AddAdvance(w http.ResponseWriter, r *http.Request) {
	var req AddAdvanceRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeServiceError(w, r, "Invalid request body", err)
		return
	}
	date, err := calendar.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid date", err)
		return
	}
	var period calendar.Period
	if req.Period != "" {
		if period, err = calendar.ParsePeriod(req.Period); err != nil {
			writeError(w, http.StatusBadRequest, "Invalid period", err)
			return
		}
	}

	adv, err := h.Service.Adjustments.AddAdvance(r.Context(), payroll.AdvanceInput{
		EmployeeID: chi.URLParam(r, "id"),
		Date:       date,
		Amount:     req.Amount,
		Period:     period,
		Note:       req.Note,
	})
	if err != nil {
		h.writeServiceError(w, r, "Failed to add advance", err)
		return
	}
	writeJSON(w, http.StatusCreated, toAdvanceDTO(adv))
}

// ListAdvances lists the advances of a month.
// GET /api/employees/{id}/advances/{year}/{month}
func (h *Handler) ListAdvances(w http.ResponseWriter, r *http.Request) {
	period, err := periodParam(r)
	if err != nil {
		h.writeServiceError(w, r, "Invalid period", err)
		return
	}
	advances, err := h.Service.Adjustments.MonthAdvances(r.Context(), chi.URLParam(r, "id"), period)
	if err != nil {
		h.writeServiceError(w, r, "Failed to list advances", err)
		return
	}
	dtos := make([]AdvanceDTO, len(advances))
	for i, a := range advances {
		dtos[i] = toAdvanceDTO(a)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// DeleteAdvance removes one advance.
// DELETE /api/advances/{id}
func (h *Handler) DeleteAdvance(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Adjustments.DeleteAdvance(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, "Failed to delete advance", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// AddBonus records a bonus for a month.
// POST /api/employees/{id}/bonuses
func (h *Handler) AddBonus(w http.ResponseWriter, r *http.Request) {
	var req AddBonusRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeServiceError(w, r, "Invalid request body", err)
		return
	}
	period, err := calendar.ParsePeriod(req.Period)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}

	bonus, err := h.Service.Adjustments.AddBonus(r.Context(), payroll.BonusInput{
		EmployeeID:  chi.URLParam(r, "id"),
		Period:      period,
		Amount:      req.Amount,
		Description: req.Description,
	})
	if err != nil {
		h.writeServiceError(w, r, "Failed to add bonus", err)
		return
	}
	writeJSON(w, http.StatusCreated, toBonusDTO(bonus))
}

// ListBonuses lists the bonuses of a month.
// GET /api/employees/{id}/bonuses/{year}/{month}
func (h *Handler) ListBonuses(w http.ResponseWriter, r *http.Request) {
	period, err := periodParam(r)
	if err != nil {
		h.writeServiceError(w, r, "Invalid period", err)
		return
	}
	bonuses, err := h.Service.Adjustments.MonthBonuses(r.Context(), chi.URLParam(r, "id"), period)
	if err != nil {
		h.writeServiceError(w, r, "Failed to list bonuses", err)
		return
	}
	dtos := make([]BonusDTO, len(bonuses))
	for i, b := range bonuses {
		dtos[i] = toBonusDTO(b)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// DeleteBonus removes one bonus.
// DELETE /api/bonuses/{id}
func (h *Handler) DeleteBonus(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Adjustments.DeleteBonus(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, "Failed to delete bonus", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// REPORT HANDLERS
// =============================================================================

// CreateReport creates the draft for an employee/month, or returns the
// existing report unchanged.
// POST /api/reports
func (h *Handler) CreateReport(w http.ResponseWriter, r *http.Request) {
	var req CreateReportRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeServiceError(w, r, "Invalid request body", err)
		return
	}
	period, err := calendar.ParsePeriod(req.Period)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid period", err)
		return
	}

	report, created, err := h.Service.Engine.CreateDraft(r.Context(), req.EmployeeID, period)
	if err != nil {
		h.writeServiceError(w, r, "Failed to create report", err)
		return
	}
	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, toReportDTO(report))
}

// ListReports lists reports, newest month first.
// GET /api/reports?employee_id=&period=2024-01&status=draft
func (h *Handler) ListReports(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := payroll.ReportFilter{
		EmployeeID: q.Get("employee_id"),
		Status:     payroll.Status(q.Get("status")),
	}
	if s := q.Get("period"); s != "" {
		p, err := calendar.ParsePeriod(s)
		if err != nil {
			writeError(w, http.StatusBadRequest, "Invalid period", err)
			return
		}
		filter.Period = &p
	}

	reports, err := h.Service.Engine.Reports(r.Context(), filter)
	if err != nil {
		h.writeServiceError(w, r, "Failed to list reports", err)
		return
	}
	dtos := make([]ReportDTO, len(reports))
	for i, rep := range reports {
		dtos[i] = toReportDTO(rep)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetReport returns one report.
// GET /api/reports/{id}
func (h *Handler) GetReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.Service.Engine.Report(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, "Failed to get report", err)
		return
	}
	writeJSON(w, http.StatusOK, toReportDTO(report))
}

// RecomputeReport recomputes a report from the current ledgers and rates.
// POST /api/reports/{id}/recompute
func (h *Handler) RecomputeReport(w http.ResponseWriter, r *http.Request) {
	h.reportAction(w, r, "Failed to recompute report", h.Service.Engine.RecomputeReport)
}

// FinalizeReport moves a report to finalized.
// POST /api/reports/{id}/finalize
func (h *Handler) FinalizeReport(w http.ResponseWriter, r *http.Request) {
	h.reportAction(w, r, "Failed to finalize report", h.Service.Engine.Finalize)
}

// MarkReportPaid moves a report to paid.
// POST /api/reports/{id}/paid
func (h *Handler) MarkReportPaid(w http.ResponseWriter, r *http.Request) {
	h.reportAction(w, r, "Failed to mark report paid", h.Service.Engine.MarkPaid)
}

func (h *Handler) reportAction(w http.ResponseWriter, r *http.Request, message string, action func(context.Context, string) (payroll.Report, error)) {
	report, err := action(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, message, err)
		return
	}
	writeJSON(w, http.StatusOK, toReportDTO(report))
}

// DeleteReport removes a report. Hours and adjustments stay.
// DELETE /api/reports/{id}
func (h *Handler) DeleteReport(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.Engine.DeleteReport(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.writeServiceError(w, r, "Failed to delete report", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// GetPayslip returns the payslip view of a report.
// GET /api/reports/{id}/payslip
func (h *Handler) GetPayslip(w http.ResponseWriter, r *http.Request) {
	slip, err := h.Service.Engine.Payslip(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, "Failed to build payslip", err)
		return
	}
	writeJSON(w, http.StatusOK, toPayslipDTO(slip))
}

// GetPayslipPDF renders the payslip as a PDF attachment.
// GET /api/reports/{id}/payslip.pdf
func (h *Handler) GetPayslipPDF(w http.ResponseWriter, r *http.Request) {
	slip, err := h.Service.Engine.Payslip(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		h.writeServiceError(w, r, "Failed to build payslip", err)
		return
	}

	// Render fully before writing headers so a failure can still be a JSON error.
	var buf bytes.Buffer
	if err := payslip.Render(&buf, slip); err != nil {
		h.writeServiceError(w, r, "Failed to render payslip", err)
		return
	}
	filename := fmt.Sprintf("payslip-%s-%s.pdf", slip.Report.EmployeeID, slip.Report.Period)
	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// =============================================================================
// BULK HANDLERS
// =============================================================================

// DraftAll creates missing drafts for every active employee.
// POST /api/payroll/{year}/{month}/drafts
func (h *Handler) DraftAll(w http.ResponseWriter, r *http.Request) {
	h.bulk(w, r, "Failed to create drafts", h.Service.Engine.DraftAll)
}

// RecomputeAll recomputes every active employee's report.
// POST /api/payroll/{year}/{month}/recompute
func (h *Handler) RecomputeAll(w http.ResponseWriter, r *http.Request) {
	h.bulk(w, r, "Failed to recompute reports", h.Service.Engine.RecomputeAll)
}

func (h *Handler) bulk(w http.ResponseWriter, r *http.Request, message string, run func(context.Context, calendar.Period) ([]payroll.BulkResult, error)) {
	period, err := periodParam(r)
	if err != nil {
		h.writeServiceError(w, r, "Invalid period", err)
		return
	}
	results, err := run(r.Context(), period)
	if err != nil {
		h.writeServiceError(w, r, message, err)
		return
	}
	writeJSON(w, http.StatusOK, toBulkRunDTO(period.String(), results))
}

// =============================================================================
// EMPLOYEE HANDLERS
// =============================================================================

// ListEmployees returns every employee, active or not.
// GET /api/employees
func (h *Handler) ListEmployees(w http.ResponseWriter, r *http.Request) {
	employees, err := h.Store.ListEmployees(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list employees", err)
		return
	}
	dtos := make([]EmployeeDTO, len(employees))
	for i, e := range employees {
		dtos[i] = toEmployeeDTO(e)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// SaveEmployee creates or replaces an employee.
// POST /api/employees
func (h *Handler) SaveEmployee(w http.ResponseWriter, r *http.Request) {
	var req SaveEmployeeRequest
	if err := decodeJSON(r, &req); err != nil {
		h.writeServiceError(w, r, "Invalid request body", err)
		return
	}
	emp := payroll.Employee{ID: req.ID, Name: strings.TrimSpace(req.Name), Active: true}
	if req.Active != nil {
		emp.Active = *req.Active
	}
	if err := h.Store.SaveEmployee(r.Context(), emp); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save employee", err)
		return
	}
	writeJSON(w, http.StatusCreated, toEmployeeDTO(emp))
}

// =============================================================================
// HELPERS
// =============================================================================

var validate = newValidator()

// newValidator reports fields by their JSON names.
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// decodeJSON decodes the body into dst and checks its validate tags.
// Failures come back as *payroll.ValidationError.
func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return &payroll.ValidationError{Field: "body", Message: err.Error()}
	}
	if err := validate.Struct(dst); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return fieldError(verrs[0])
		}
		return &payroll.ValidationError{Field: "body", Message: err.Error()}
	}
	return nil
}

func fieldError(fe validator.FieldError) error {
	var msg string
	switch fe.Tag() {
	case "required":
		msg = "is required"
	case "datetime":
		msg = fmt.Sprintf("must use the %s layout", fe.Param())
	case "oneof":
		msg = "must be one of: " + fe.Param()
	case "max":
		msg = fmt.Sprintf("must be at most %s characters", fe.Param())
	default:
		msg = "failed " + fe.Tag() + " check"
	}
	return &payroll.ValidationError{Field: fe.Field(), Message: msg}
}

// periodParam reads {year} and {month} from the route.
func periodParam(r *http.Request) (calendar.Period, error) {
	year, err := strconv.Atoi(chi.URLParam(r, "year"))
	if err != nil {
		return calendar.Period{}, &payroll.ValidationError{Field: "year", Message: "must be a number"}
	}
	month, err := strconv.Atoi(chi.URLParam(r, "month"))
	if err != nil {
		return calendar.Period{}, &payroll.ValidationError{Field: "month", Message: "must be a number"}
	}
	p := calendar.NewPeriod(year, time.Month(month))
	if err := p.Validate(); err != nil {
		return calendar.Period{}, &payroll.ValidationError{Field: "period", Message: err.Error()}
	}
	return p, nil
}

// writeServiceError maps payroll errors onto HTTP statuses.
func (h *Handler) writeServiceError(w http.ResponseWriter, r *http.Request, message string, err error) {
	switch {
	case payroll.IsClientError(err):
		writeError(w, http.StatusBadRequest, message, err)
	case payroll.IsNotFound(err):
		writeError(w, http.StatusNotFound, message, err)
	case payroll.IsConflict(err):
		writeError(w, http.StatusConflict, message, err)
	default:
		h.log.ErrorContext(r.Context(), message, "error", err, "path", r.URL.Path)
		writeError(w, http.StatusInternalServerError, message, err)
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}
