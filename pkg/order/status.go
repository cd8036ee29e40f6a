package order

// Status is the per-order state machine result. The last three variants
// are terminal; NotFound is returned by queries only, never stored.
type Status struct {
	Kind   StatusKind
	Filled uint64 // meaningful for PartiallyFilled, Filled, Cancelled
}

type StatusKind uint8

const (
	Accepted StatusKind = iota
	PartiallyFilled
	Filled
	Cancelled
	NotFound
)

func (k StatusKind) String() string {
	switch k {
	case Accepted:
		return "accepted"
	case PartiallyFilled:
		return "partially_filled"
	case Filled:
		return "filled"
	case Cancelled:
		return "cancelled"
	case NotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

// IsTerminal reports whether the state accepts no further transitions.
func (k StatusKind) IsTerminal() bool {
	return k == Filled || k == Cancelled || k == NotFound
}

// Tracker advances an order's status across its lifetime: Accepted ->
// PartiallyFilled -> Filled (or -> Cancelled at any non-final state).
type Tracker struct {
	totalAmount uint64
	status      Status
}

// NewTracker starts a tracker in the Accepted state for an order of the
// given total (original) amount.
func NewTracker(totalAmount uint64) *Tracker {
	return &Tracker{totalAmount: totalAmount, status: Status{Kind: Accepted}}
}

// Status returns the current status.
func (t *Tracker) Status() Status { return t.status }

// ApplyExecution transitions on a fill: PartiallyFilled while residue > 0,
// Filled once residue reaches 0. No-op once terminal.
func (t *Tracker) ApplyExecution(executed uint64) {
	if t.status.Kind.IsTerminal() {
		return
	}
	t.status.Filled += executed
	if t.status.Filled >= t.totalAmount {
		t.status.Kind = Filled
	} else {
		t.status.Kind = PartiallyFilled
	}
}

// Cancel transitions to Cancelled from any non-terminal state (explicit
// client cancel, or system cancel on dust/expiry/unfillable market).
func (t *Tracker) Cancel() {
	if t.status.Kind.IsTerminal() {
		return
	}
	t.status.Kind = Cancelled
}
