package lifecycle

import (
	"strings"
	"testing"
)

func TestValid(t *testing.T) {
	for _, s := range AllStatuses {
		if !Valid(s) {
			t.Errorf("Valid(%q) = false, want true", s)
		}
	}
	if Valid("unknown") {
		t.Error("Valid(unknown) = true, want false")
	}
}

func TestTerminal(t *testing.T) {
	terminal := map[Status]bool{
		StatusPurchased: true,
		StatusRejected:  true,
		StatusWithdrawn: true,
	}
	for _, s := range AllStatuses {
		if got := Terminal(s); got != terminal[s] {
			t.Errorf("Terminal(%q) = %v, want %v", s, got, terminal[s])
		}
	}
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from Status
		to   Status
		want bool
	}{
		// Forward edges
		{StatusDiscovered, StatusAnalyzed, true},
		{StatusAnalyzed, StatusContacted, true},
		{StatusContacted, StatusAwaitingResponse, true},
		{StatusAwaitingResponse, StatusNegotiating, true},
		{StatusNegotiating, StatusViewingScheduled, true},
		{StatusViewingScheduled, StatusInspected, true},
		{StatusInspected, StatusOfferMade, true},
		{StatusOfferMade, StatusPurchased, true},

		// Inspection can reopen price talks
		{StatusInspected, StatusNegotiating, true},

		// Abandonment from any non-terminal state
		{StatusDiscovered, StatusRejected, true},
		{StatusDiscovered, StatusWithdrawn, true},
		{StatusAnalyzed, StatusRejected, true},
		{StatusNegotiating, StatusWithdrawn, true},
		{StatusOfferMade, StatusRejected, true},

		// No skipping ahead
		{StatusDiscovered, StatusContacted, false},
		{StatusDiscovered, StatusPurchased, false},
		{StatusAnalyzed, StatusNegotiating, false},
		{StatusContacted, StatusNegotiating, false},
		{StatusNegotiating, StatusInspected, false},
		{StatusNegotiating, StatusOfferMade, false},
		{StatusViewingScheduled, StatusOfferMade, false},

		// No moving backward
		{StatusAnalyzed, StatusDiscovered, false},
		{StatusContacted, StatusAnalyzed, false},
		{StatusNegotiating, StatusAwaitingResponse, false},
		{StatusOfferMade, StatusInspected, false},

		// Terminal states go nowhere
		{StatusPurchased, StatusRejected, false},
		{StatusPurchased, StatusDiscovered, false},
		{StatusRejected, StatusAnalyzed, false},
		{StatusWithdrawn, StatusNegotiating, false},

		// Self-loops
		{StatusNegotiating, StatusNegotiating, false},
		{StatusDiscovered, StatusDiscovered, false},

		// Unknown status
		{"unknown", StatusAnalyzed, false},
	}
	for _, tt := range tests {
		got := CanTransition(tt.from, tt.to)
		if got != tt.want {
			t.Errorf("CanTransition(%q, %q) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

func TestNoEdgeTargetsDiscovered(t *testing.T) {
	for _, from := range AllStatuses {
		if CanTransition(from, StatusDiscovered) {
			t.Errorf("CanTransition(%q, discovered) = true; discovered must be unreachable", from)
		}
	}
}

func TestAllowedNext_NonTerminalIncludesAbandonment(t *testing.T) {
	for _, s := range AllStatuses {
		if Terminal(s) {
			continue
		}
		next := AllowedNext(s)
		var hasRejected, hasWithdrawn bool
		for _, n := range next {
			if n == StatusRejected {
				hasRejected = true
			}
			if n == StatusWithdrawn {
				hasWithdrawn = true
			}
		}
		if !hasRejected || !hasWithdrawn {
			t.Errorf("AllowedNext(%q) = %v, missing abandonment edges", s, next)
		}
	}
}

func TestAllowedNext_TerminalEmpty(t *testing.T) {
	for _, s := range []Status{StatusPurchased, StatusRejected, StatusWithdrawn} {
		if next := AllowedNext(s); len(next) != 0 {
			t.Errorf("AllowedNext(%q) = %v, want empty", s, next)
		}
	}
}

func TestAllowedNext_Unknown(t *testing.T) {
	if next := AllowedNext("unknown"); next != nil {
		t.Errorf("AllowedNext(unknown) = %v, want nil", next)
	}
}

func TestRejectionError_Message(t *testing.T) {
	err := &RejectionError{
		ListingID: 7,
		From:      StatusDiscovered,
		To:        StatusPurchased,
		Allowed:   AllowedNext(StatusDiscovered),
	}
	msg := err.Error()
	if !strings.Contains(msg, "listing 7") {
		t.Errorf("message missing listing id: %s", msg)
	}
	if !strings.Contains(msg, `"discovered"`) || !strings.Contains(msg, `"purchased"`) {
		t.Errorf("message missing states: %s", msg)
	}
	if !strings.Contains(msg, "analyzed") || !strings.Contains(msg, "rejected") || !strings.Contains(msg, "withdrawn") {
		t.Errorf("message missing allowed states: %s", msg)
	}
}

func TestRejectionError_TerminalSaysNone(t *testing.T) {
	err := &RejectionError{ListingID: 3, From: StatusPurchased, To: StatusRejected}
	if !strings.Contains(err.Error(), "allowed: none") {
		t.Errorf("message = %q, want to contain %q", err.Error(), "allowed: none")
	}
}
