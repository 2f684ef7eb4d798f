package payroll

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/warp/payroll-engine/calendar"
	"github.com/warp/payroll-engine/logging"
)

// =============================================================================
// SERVICE - Wires the ledgers and the engine onto one store
// =============================================================================

// Options configures a Service. Zero values pick the defaults.
type Options struct {
	Lifecycle Lifecycle

	// Directory lists active employees for bulk runs and payslip names.
	// Bulk operations fail without it.
	Directory Directory

	// BulkWorkers bounds concurrent employees in DraftAll/RecomputeAll.
	BulkWorkers int

	Logger *slog.Logger
	Now    func() time.Time
	NewID  func() string
}

// Service exposes every payroll operation. The components share a store,
// a clock and the per-employee/month locks.
type Service struct {
	Rates       *RateSchedule
	Hours       *HourLedger
	Adjustments *AdjustmentLedger
	Engine      *Engine
}

func NewService(store TxStore, opts Options) *Service {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = func() time.Time { return time.Now().UTC() }
	}
	if opts.NewID == nil {
		opts.NewID = uuid.NewString
	}
	if opts.BulkWorkers <= 0 {
		opts.BulkWorkers = 4
	}

	c := &core{
		store: store,
		locks: newKeyLocks(),
		log:   opts.Logger,
		now:   opts.Now,
		newID: opts.NewID,
	}

	return &Service{
		Rates:       &RateSchedule{core: c},
		Hours:       &HourLedger{core: c},
		Adjustments: &AdjustmentLedger{core: c},
		Engine: &Engine{
			core:      c,
			lifecycle: opts.Lifecycle,
			directory: opts.Directory,
			workers:   opts.BulkWorkers,
		},
	}
}

// core is the state shared by every component.
type core struct {
	store TxStore
	locks *keyLocks
	log   *slog.Logger
	now   func() time.Time
	newID func() string
}

func (c *core) logger(ctx context.Context) *slog.Logger {
	return logging.FromContextOr(ctx, c.log)
}

// withKey runs fn in one transaction while holding the lock for k.
func (c *core) withKey(ctx context.Context, k Key, fn func(Store) error) error {
	unlock := c.locks.lock(k)
	defer unlock()
	return c.store.WithTx(ctx, fn)
}

func validateKey(employeeID string, period calendar.Period) error {
	if strings.TrimSpace(employeeID) == "" {
		return invalid("employee_id", "is required")
	}
	if err := period.Validate(); err != nil {
		return invalid("period", "%s", err.Error())
	}
	return nil
}
