// Package lifecycle implements the listing state machine.
package lifecycle

import (
	"fmt"
	"strings"
)

// Status is a listing lifecycle state.
type Status string

// Lifecycle states. Terminal states have no outgoing edges.
const (
	StatusDiscovered       Status = "discovered"
	StatusAnalyzed         Status = "analyzed"
	StatusContacted        Status = "contacted"
	StatusAwaitingResponse Status = "awaiting_response"
	StatusNegotiating      Status = "negotiating"
	StatusViewingScheduled Status = "viewing_scheduled"
	StatusInspected        Status = "inspected"
	StatusOfferMade        Status = "offer_made"
	StatusPurchased        Status = "purchased"
	StatusRejected         Status = "rejected"
	StatusWithdrawn        Status = "withdrawn"
)

// AllStatuses lists every state, used for exhaustiveness checks in tests.
var AllStatuses = []Status{
	StatusDiscovered,
	StatusAnalyzed,
	StatusContacted,
	StatusAwaitingResponse,
	StatusNegotiating,
	StatusViewingScheduled,
	StatusInspected,
	StatusOfferMade,
	StatusPurchased,
	StatusRejected,
	StatusWithdrawn,
}

// transitions is the single declared edge set. Abandonment edges (rejected,
// withdrawn) are added for every non-terminal state by AllowedNext rather
// than repeated here. No edge ever targets discovered.
var transitions = map[Status][]Status{
	StatusDiscovered:       {StatusAnalyzed},
	StatusAnalyzed:         {StatusContacted},
	StatusContacted:        {StatusAwaitingResponse},
	StatusAwaitingResponse: {StatusNegotiating},
	StatusNegotiating:      {StatusViewingScheduled},
	StatusViewingScheduled: {StatusInspected},
	// A bad inspection reopens price talks, so negotiating is reachable again.
	StatusInspected: {StatusOfferMade, StatusNegotiating},
	StatusOfferMade: {StatusPurchased},
	StatusPurchased: {},
	StatusRejected:  {},
	StatusWithdrawn: {},
}

// Valid reports whether s is a known status.
func Valid(s Status) bool {
	_, ok := transitions[s]
	return ok
}

// Terminal reports whether s has no outgoing edges.
func Terminal(s Status) bool {
	return s == StatusPurchased || s == StatusRejected || s == StatusWithdrawn
}

// AllowedNext returns the full set of states reachable from s, including the
// always-available abandonment edges for non-terminal states.
func AllowedNext(s Status) []Status {
	next, ok := transitions[s]
	if !ok {
		return nil
	}
	if Terminal(s) {
		return nil
	}
	out := make([]Status, 0, len(next)+2)
	out = append(out, next...)
	out = append(out, StatusRejected, StatusWithdrawn)
	return out
}

// CanTransition reports whether the (from, to) edge is allowed.
func CanTransition(from, to Status) bool {
	for _, s := range AllowedNext(from) {
		if s == to {
			return true
		}
	}
	return false
}

// formatStatuses renders a status list for rejection messages.
func formatStatuses(states []Status) string {
	if len(states) == 0 {
		return "none"
	}
	parts := make([]string, len(states))
	for i, s := range states {
		parts[i] = string(s)
	}
	return strings.Join(parts, ", ")
}

// RejectionError reports an invalid-but-well-formed transition request. It is
// an expected outcome, distinct from storage failures; callers branch on it
// with errors.As.
type RejectionError struct {
	ListingID uint
	From      Status
	To        Status
	Allowed   []Status
}

func (e *RejectionError) Error() string {
	return fmt.Sprintf("lifecycle: cannot move listing %d from %q to %q; allowed: %s",
		e.ListingID, e.From, e.To, formatStatuses(e.Allowed))
}

// NotFoundError reports an unknown listing id.
type NotFoundError struct {
	ListingID uint
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("lifecycle: listing not found: %d", e.ListingID)
}
