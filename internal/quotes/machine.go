package quotes

import (
	"fmt"
	"time"

	"github.com/chauffio/chauffio/pkg/common"
)

// transitions is the full quote state machine. Terminal states map to an
// empty set.
var transitions = map[Status][]Status{
	StatusDraft:     {StatusSent, StatusAccepted, StatusRejected, StatusExpired, StatusCancelled},
	StatusSent:      {StatusViewed, StatusAccepted, StatusRejected, StatusExpired, StatusCancelled},
	StatusViewed:    {StatusAccepted, StatusRejected, StatusExpired, StatusCancelled},
	StatusAccepted:  {StatusCancelled},
	StatusRejected:  {},
	StatusExpired:   {},
	StatusCancelled: {},
}

// ValidTransitions returns the statuses reachable from the given one.
func ValidTransitions(from Status) []Status {
	next, ok := transitions[from]
	if !ok {
		return nil
	}
	out := make([]Status, len(next))
	copy(out, next)
	return out
}

// CanTransition reports whether from → to is an allowed move.
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the status has no outgoing transitions.
func IsTerminal(s Status) bool {
	return len(transitions[s]) == 0
}

// ValidateTransition distinguishes the three refusal cases with stable
// error codes.
func ValidateTransition(from, to Status) error {
	if from == to {
		return common.NewUnprocessableError(common.CodeAlreadyInStatus,
			fmt.Sprintf("quote is already %s", from))
	}
	if IsTerminal(from) {
		return common.NewUnprocessableError(common.CodeTerminalState,
			fmt.Sprintf("quote in terminal state %s cannot change", from))
	}
	if !CanTransition(from, to) {
		return common.NewUnprocessableError(common.CodeInvalidTransition,
			fmt.Sprintf("cannot transition quote from %s to %s", from, to))
	}
	return nil
}

// OrderReference formats an order reference. Sequences are at least three
// digits and grow past 999 without truncation.
func OrderReference(year, seq int) string {
	return fmt.Sprintf("ORD-%d-%03d", year, seq)
}

// IsEditable reports whether the commercial content of the quote can still
// change.
func (q *Quote) IsEditable() bool {
	return q.Status == StatusDraft
}

// IsCommerciallyFrozen is the negation of IsEditable.
func (q *Quote) IsCommerciallyFrozen() bool {
	return q.Status != StatusDraft
}

// NotesEditable reports whether the free-text notes can change. Notes stay
// open longer than the commercial content.
func (q *Quote) NotesEditable() bool {
	return q.Status != StatusExpired && q.Status != StatusCancelled
}

// CanConvertToInvoice reports whether the quote can produce an invoice.
func (q *Quote) CanConvertToInvoice() bool {
	return q.Status == StatusAccepted
}

// ShouldAutoExpire reports whether the batch expirer must move the quote to
// EXPIRED.
func (q *Quote) ShouldAutoExpire(now time.Time) bool {
	switch q.Status {
	case StatusDraft, StatusSent, StatusViewed:
	default:
		return false
	}
	return q.ValidUntil != nil && q.ValidUntil.Before(now)
}

// applyTimestamp stamps the field matching the new status.
func (q *Quote) applyTimestamp(to Status, now time.Time) {
	switch to {
	case StatusSent:
		q.SentAt = &now
	case StatusViewed:
		q.ViewedAt = &now
	case StatusAccepted:
		q.AcceptedAt = &now
	case StatusRejected:
		q.RejectedAt = &now
	case StatusExpired:
		q.ExpiredAt = &now
	case StatusCancelled:
		q.CancelledAt = &now
	}
}
