/*
server.go - HTTP router and middleware configuration

PURPOSE:
  Configures the HTTP router (chi), middleware stack, and route definitions.
  This is the wiring layer that connects URLs to handlers.

MIDDLEWARE STACK:
  1. RequestID:  Unique ID per request for tracing
  2. httplog:    Structured request logging (ECS schema)
  3. Recoverer:  Panic recovery (500 instead of crash)
  4. CORS:       Cross-origin requests for a browser frontend
  5. Logger ctx: Request-scoped slog logger for the payroll package

ROUTE GROUPS:
  /api/rates/*       Rate schedule
  /api/employees/*   Directory, hours, advances, bonuses
  /api/advances/*    Advance deletion
  /api/bonuses/*     Bonus deletion
  /api/reports/*     Reports, lifecycle, payslips
  /api/payroll/*     Bulk runs per month
  /api/scenarios/*   Demo data

SEE ALSO:
  - handlers.go: Handler implementations
  - cmd/server/main.go: Server startup
*/
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/warp/payroll-engine/logging"
)

// RouterOptions configures the middleware around the routes.
type RouterOptions struct {
	// Logger receives request logs. It should be built with
	// LogReplaceAttr so ECS field names come out right.
	Logger         *slog.Logger
	AllowedOrigins []string
}

// LogReplaceAttr is the ECS attribute mapper for the process logger.
var LogReplaceAttr = httplog.SchemaECS.Concise(false).ReplaceAttr

// NewRouter creates a new router with all routes configured.
func NewRouter(h *Handler, opts RouterOptions) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RequestID)
	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))
	r.Use(requestLogger(logger))

	r.Route("/api", func(r chi.Router) {
		r.Route("/rates", func(r chi.Router) {
			r.Get("/", h.LatestRates)
			r.Post("/", h.SetRate)
			r.Get("/resolve", h.ResolveRate)
			r.Get("/{type}/history", h.RateHistory)
		})

		r.Route("/employees", func(r chi.Router) {
			r.Get("/", h.ListEmployees)
			r.Post("/", h.SaveEmployee)

			r.Route("/{id}/hours/{year}/{month}", func(r chi.Router) {
				r.Get("/", h.GetHours)
				r.Put("/", h.ReplaceHours)
				r.Delete("/", h.DeleteHours)
				r.Get("/grid", h.GetHoursGrid)
			})

			r.Post("/{id}/advances", h.AddAdvance)
			r.Get("/{id}/advances/{year}/{month}", h.ListAdvances)
			r.Post("/{id}/bonuses", h.AddBonus)
			r.Get("/{id}/bonuses/{year}/{month}", h.ListBonuses)
		})

		r.Delete("/advances/{id}", h.DeleteAdvance)
		r.Delete("/bonuses/{id}", h.DeleteBonus)

		r.Route("/reports", func(r chi.Router) {
			r.Get("/", h.ListReports)
			r.Post("/", h.CreateReport)
			r.Get("/{id}", h.GetReport)
			r.Delete("/{id}", h.DeleteReport)
			r.Post("/{id}/recompute", h.RecomputeReport)
			r.Post("/{id}/finalize", h.FinalizeReport)
			r.Post("/{id}/paid", h.MarkReportPaid)
			r.Get("/{id}/payslip", h.GetPayslip)
			r.Get("/{id}/payslip.pdf", h.GetPayslipPDF)
		})

		r.Route("/payroll/{year}/{month}", func(r chi.Router) {
			r.Post("/drafts", h.DraftAll)
			r.Post("/recompute", h.RecomputeAll)
		})

		r.Route("/scenarios", func(r chi.Router) {
			r.Get("/", h.ListScenarios)
			r.Get("/current", h.GetCurrentScenario)
			r.Post("/load", h.LoadScenario)
		})
	})

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	return r
}

// requestLogger tags the payroll package's logs with the request ID.
func requestLogger(base *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			logger := base.With("request_id", middleware.GetReqID(r.Context()))
			next.ServeHTTP(w, r.WithContext(logging.ContextWithLogger(r.Context(), logger)))
		})
	}
}
