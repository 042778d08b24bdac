package quotes

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/chauffio/chauffio/pkg/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidTransitions(t *testing.T) {
	tests := []struct {
		from Status
		want []Status
	}{
		{StatusDraft, []Status{StatusSent, StatusAccepted, StatusRejected, StatusExpired, StatusCancelled}},
		{StatusSent, []Status{StatusViewed, StatusAccepted, StatusRejected, StatusExpired, StatusCancelled}},
		{StatusViewed, []Status{StatusAccepted, StatusRejected, StatusExpired, StatusCancelled}},
		{StatusAccepted, []Status{StatusCancelled}},
		{StatusRejected, []Status{}},
		{StatusExpired, []Status{}},
		{StatusCancelled, []Status{}},
	}

	for _, tt := range tests {
		t.Run(string(tt.from), func(t *testing.T) {
			assert.ElementsMatch(t, tt.want, ValidTransitions(tt.from))
		})
	}
}

func TestCanTransition(t *testing.T) {
	assert.True(t, CanTransition(StatusDraft, StatusSent))
	assert.True(t, CanTransition(StatusDraft, StatusAccepted))
	assert.True(t, CanTransition(StatusAccepted, StatusCancelled))

	assert.False(t, CanTransition(StatusSent, StatusDraft))
	assert.False(t, CanTransition(StatusViewed, StatusSent))
	assert.False(t, CanTransition(StatusRejected, StatusAccepted))
	assert.False(t, CanTransition(StatusCancelled, StatusDraft))
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(StatusDraft))
	assert.False(t, IsTerminal(StatusAccepted))
	assert.True(t, IsTerminal(StatusRejected))
	assert.True(t, IsTerminal(StatusExpired))
	assert.True(t, IsTerminal(StatusCancelled))
}

func errorCode(t *testing.T, err error) string {
	t.Helper()
	var appErr *common.AppError
	require.True(t, errors.As(err, &appErr))
	return appErr.ErrorCode
}

func TestValidateTransition_ErrorCodes(t *testing.T) {
	assert.NoError(t, ValidateTransition(StatusDraft, StatusSent))

	err := ValidateTransition(StatusSent, StatusSent)
	assert.Equal(t, common.CodeAlreadyInStatus, errorCode(t, err))

	err = ValidateTransition(StatusViewed, StatusSent)
	assert.Equal(t, common.CodeInvalidTransition, errorCode(t, err))

	err = ValidateTransition(StatusExpired, StatusSent)
	assert.Equal(t, common.CodeTerminalState, errorCode(t, err))

	// Same-state on a terminal status reports alreadyInStatus, not
	// terminalState.
	err = ValidateTransition(StatusCancelled, StatusCancelled)
	assert.Equal(t, common.CodeAlreadyInStatus, errorCode(t, err))
}

func TestOrderReference(t *testing.T) {
	ref := regexp.MustCompile(`^ORD-\d{4}-\d{3,}$`)

	assert.Equal(t, "ORD-2026-001", OrderReference(2026, 1))
	assert.Equal(t, "ORD-2026-042", OrderReference(2026, 42))
	assert.Equal(t, "ORD-2026-1000", OrderReference(2026, 1000))

	for _, seq := range []int{1, 99, 999, 1000, 12345} {
		assert.Regexp(t, ref, OrderReference(2026, seq))
	}
}

func TestShouldAutoExpire(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	tests := []struct {
		name       string
		status     Status
		validUntil *time.Time
		want       bool
	}{
		{"draft overdue", StatusDraft, &past, true},
		{"sent overdue", StatusSent, &past, true},
		{"viewed overdue", StatusViewed, &past, true},
		{"sent still valid", StatusSent, &future, false},
		{"sent no deadline", StatusSent, nil, false},
		{"accepted overdue", StatusAccepted, &past, false},
		{"expired overdue", StatusExpired, &past, false},
		{"cancelled overdue", StatusCancelled, &past, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q := &Quote{Status: tt.status, ValidUntil: tt.validUntil}
			assert.Equal(t, tt.want, q.ShouldAutoExpire(now))
		})
	}
}

func TestEditability(t *testing.T) {
	tests := []struct {
		status        Status
		editable      bool
		notesEditable bool
		canInvoice    bool
	}{
		{StatusDraft, true, true, false},
		{StatusSent, false, true, false},
		{StatusViewed, false, true, false},
		{StatusAccepted, false, true, true},
		{StatusRejected, false, true, false},
		{StatusExpired, false, false, false},
		{StatusCancelled, false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			q := &Quote{Status: tt.status}
			assert.Equal(t, tt.editable, q.IsEditable())
			assert.Equal(t, !tt.editable, q.IsCommerciallyFrozen())
			assert.Equal(t, tt.notesEditable, q.NotesEditable())
			assert.Equal(t, tt.canInvoice, q.CanConvertToInvoice())
		})
	}
}

func TestApplyTimestamp(t *testing.T) {
	now := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)

	q := &Quote{Status: StatusDraft}
	q.applyTimestamp(StatusSent, now)
	require.NotNil(t, q.SentAt)
	assert.Equal(t, now, *q.SentAt)
	assert.Nil(t, q.AcceptedAt)

	q.applyTimestamp(StatusAccepted, now.Add(time.Minute))
	require.NotNil(t, q.AcceptedAt)
	assert.Equal(t, now.Add(time.Minute), *q.AcceptedAt)
}
