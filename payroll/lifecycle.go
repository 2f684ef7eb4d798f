/*
lifecycle.go - Payroll report status transitions

STATES:
  draft -> finalized -> paid

  draft:     Created by CreateDraft with zero amounts
  finalized: Figures reviewed; normally no more recomputes
  paid:      Money handed over

TWO MODES:
  Lenient (default) reproduces how reports have always behaved: recompute
  is allowed in every status (a paid report keeps following the ledger) and
  MarkPaid does not look at the current status.

  Strict refuses recompute of paid reports, requires finalized before paid
  and draft before finalized. Whether recompute-after-paid is intended is
  an open business question, so the choice is configuration, not code.

  | action    | lenient              | strict           |
  |-----------|----------------------|------------------|
  | recompute | any                  | draft, finalized |
  | finalize  | draft, finalized     | draft            |
  | markPaid  | any                  | finalized        |
  | delete    | any                  | any              |
*/
package payroll

// =============================================================================
// STATUS
// =============================================================================

type Status string

const (
	StatusDraft     Status = "draft"
	StatusFinalized Status = "finalized"
	StatusPaid      Status = "paid"
)

func (s Status) Valid() bool {
	switch s {
	case StatusDraft, StatusFinalized, StatusPaid:
		return true
	}
	return false
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if !st.Valid() {
		return "", invalid("status", "unknown status %q", s)
	}
	return st, nil
}

// =============================================================================
// LIFECYCLE
// =============================================================================

// Lifecycle decides which transitions a report may take.
type Lifecycle struct {
	Strict bool
}

const (
	actionRecompute = "recompute"
	actionFinalize  = "finalize"
	actionMarkPaid  = "mark paid"
)

// CheckRecompute returns a StateError if r may not be recomputed.
func (l Lifecycle) CheckRecompute(r Report) error {
	if l.Strict && r.Status == StatusPaid {
		return &StateError{ReportID: r.ID, Status: r.Status, Action: actionRecompute}
	}
	return nil
}

// Finalize returns the status r moves to when finalized.
func (l Lifecycle) Finalize(r Report) (Status, error) {
	switch {
	case r.Status == StatusDraft:
		return StatusFinalized, nil
	case r.Status == StatusFinalized && !l.Strict:
		return StatusFinalized, nil
	}
	return r.Status, &StateError{ReportID: r.ID, Status: r.Status, Action: actionFinalize}
}

// MarkPaid returns the status r moves to when marked paid.
func (l Lifecycle) MarkPaid(r Report) (Status, error) {
	if l.Strict && r.Status != StatusFinalized {
		return r.Status, &StateError{ReportID: r.ID, Status: r.Status, Action: actionMarkPaid}
	}
	return StatusPaid, nil
}

func (l Lifecycle) String() string {
	if l.Strict {
		return "strict"
	}
	return "lenient"
}
