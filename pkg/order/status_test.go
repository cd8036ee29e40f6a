package order

import "testing"

func TestTrackerPartialThenFilled(t *testing.T) {
	tr := NewTracker(1000)
	tr.ApplyExecution(400)
	if tr.Status().Kind != PartiallyFilled {
		t.Fatalf("expected PartiallyFilled, got %s", tr.Status().Kind)
	}
	tr.ApplyExecution(600)
	if tr.Status().Kind != Filled {
		t.Fatalf("expected Filled, got %s", tr.Status().Kind)
	}
	if tr.Status().Filled != 1000 {
		t.Errorf("expected filled=1000, got %d", tr.Status().Filled)
	}
}

func TestTrackerCancelFromAccepted(t *testing.T) {
	tr := NewTracker(1000)
	tr.Cancel()
	if tr.Status().Kind != Cancelled {
		t.Fatalf("expected Cancelled, got %s", tr.Status().Kind)
	}
}

func TestTrackerCancelIsNoOpOnceFilled(t *testing.T) {
	tr := NewTracker(100)
	tr.ApplyExecution(100)
	tr.Cancel()
	if tr.Status().Kind != Filled {
		t.Errorf("expected terminal Filled state to be preserved, got %s", tr.Status().Kind)
	}
}

func TestStatusKindIsTerminal(t *testing.T) {
	for k, want := range map[StatusKind]bool{
		Accepted:        false,
		PartiallyFilled: false,
		Filled:          true,
		Cancelled:       true,
		NotFound:        true,
	} {
		if got := k.IsTerminal(); got != want {
			t.Errorf("%s.IsTerminal() = %v, want %v", k, got, want)
		}
	}
}
