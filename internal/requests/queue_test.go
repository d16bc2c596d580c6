package requests

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/safi-bank/pkg/audit"
)

type mockRecorder struct {
	requests    []string
	transitions []string
}

func (m *mockRecorder) ObserveRequest(kind string) { m.requests = append(m.requests, kind) }

func (m *mockRecorder) ObserveTransition(from, to string) {
	m.transitions = append(m.transitions, from+"->"+to)
}

func fixedClock() func() time.Time {
	now := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	return func() time.Time { return now }
}

func seed() []Request {
	day := time.Date(2024, 4, 30, 9, 0, 0, 0, time.UTC)
	return []Request{
		{ID: "REQ-001", UserID: "user-2", UserName: "Sarah Jenkins", Type: TypeAddressChange, Details: "Update address to 45 Park Ave, NY", Date: day, Status: StatusPending},
		{ID: "REQ-002", UserID: "user-3", UserName: "Mike Thompson", Type: TypeHighValueTransfer, Details: "Transfer verification > $10,000", Date: day.Add(-24 * time.Hour), Status: StatusPending},
	}
}

func TestAllowedTransitions(t *testing.T) {
	allowed := AllowedTransitions()
	assert.ElementsMatch(t, []Status{StatusApproved, StatusRejected}, allowed[StatusPending])
	assert.Empty(t, allowed[StatusApproved])
	assert.Empty(t, allowed[StatusRejected])

	assert.False(t, IsValidTransition(StatusApproved, StatusRejected))
	assert.False(t, IsValidTransition(StatusRejected, StatusPending))

	err := &InvalidStateTransitionError{From: StatusApproved, To: StatusRejected, RequestID: "REQ-001"}
	assert.Equal(t, "invalid state transition from approved to rejected for request REQ-001", err.Error())
}

func TestQueue_Enqueue(t *testing.T) {
	q := NewQueue(Options{Clock: fixedClock()}, seed()...)

	r := q.Enqueue(Request{ID: "ignored", UserID: "user-1", UserName: "Alex Safi", Type: TypeKYCUpdate, Details: "Customer updated personal contact details.", Status: StatusApproved})
	assert.True(t, strings.HasPrefix(r.ID, "REQ-20240501-"), r.ID)
	assert.Equal(t, StatusPending, r.Status)
	assert.Equal(t, fixedClock()(), r.Date)

	// No deduplication.
	r2 := q.Enqueue(Request{UserID: "user-1", Type: TypeKYCUpdate})
	assert.NotEqual(t, r.ID, r2.ID)

	assert.Equal(t, 4, q.PendingCount())
	pending := q.AllPending()
	require.Len(t, pending, 4)
	assert.Equal(t, "REQ-001", pending[0].ID)
	assert.Equal(t, r2.ID, pending[3].ID)

	all := q.All()
	assert.Equal(t, r2.ID, all[0].ID)
	assert.Equal(t, "REQ-001", all[3].ID)
}

func TestQueue_ApproveReject(t *testing.T) {
	chain := audit.NewChainLogger()
	rec := &mockRecorder{}
	q := NewQueue(Options{Clock: fixedClock(), Auditor: chain, Recorder: rec}, seed()...)

	assert.True(t, q.Approve("REQ-001"))
	assert.True(t, q.Reject("REQ-002"))

	got, err := q.Get("REQ-001")
	require.NoError(t, err)
	assert.Equal(t, StatusApproved, got.Status)
	require.NotNil(t, got.DecidedAt)

	// Terminal requests do not move.
	assert.False(t, q.Reject("REQ-001"))
	assert.False(t, q.Approve("REQ-002"))
	assert.False(t, q.Approve("REQ-404"))

	got, _ = q.Get("REQ-001")
	assert.Equal(t, StatusApproved, got.Status)
	got, _ = q.Get("REQ-002")
	assert.Equal(t, StatusRejected, got.Status)

	assert.Equal(t, 0, q.PendingCount())
	assert.Empty(t, q.AllPending())
	assert.Len(t, q.Filter(StatusRejected), 1)

	assert.Equal(t, []string{"pending->approved", "pending->rejected"}, rec.transitions)
	entries := chain.Entries()
	require.Len(t, entries, 2)
	assert.Equal(t, "request.transition id=REQ-001 from=pending to=approved", entries[0].Payload)
	assert.True(t, audit.VerifyChain(entries))

	_, err = q.Get("REQ-404")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestQueue_CopiesAreDetached(t *testing.T) {
	q := NewQueue(Options{}, seed()...)
	all := q.All()
	all[0].Status = StatusApproved
	assert.Equal(t, 2, q.PendingCount())
}

func TestParseStatus(t *testing.T) {
	s, ok := ParseStatus("approved")
	assert.True(t, ok)
	assert.Equal(t, StatusApproved, s)
	_, ok = ParseStatus("maybe")
	assert.False(t, ok)
	assert.Equal(t, "Unknown status", StatusDescription("maybe"))
}
