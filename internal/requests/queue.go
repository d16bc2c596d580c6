package requests

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/example/safi-bank/pkg/audit"
)

// Auditor receives one event per enqueue and applied transition.
type Auditor interface {
	Record(event string, kv ...any) *audit.LogEntry
}

// Recorder collects queue metrics.
type Recorder interface {
	ObserveRequest(kind string)
	ObserveTransition(from, to string)
}

// Options configures a Queue.
type Options struct {
	Clock    func() time.Time
	Auditor  Auditor
	Recorder Recorder
	Logger   *slog.Logger
}

// Queue holds administrative requests in insertion order. Decisions are
// advisory: approving or rejecting a request changes only its status.
type Queue struct {
	mu     sync.RWMutex
	items  []*Request
	index  map[string]*Request
	opts   Options
	logger *slog.Logger
}

// NewQueue creates a queue holding the given seed requests as-is.
func NewQueue(opts Options, seed ...Request) *Queue {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	q := &Queue{
		index:  make(map[string]*Request),
		opts:   opts,
		logger: logger.With("component", "requests"),
	}
	for _, r := range seed {
		q.items = append(q.items, &r)
		q.index[r.ID] = &r
	}
	return q
}

// Enqueue appends a new pending request. The caller's ID, date and status
// are replaced. There is no deduplication.
func (q *Queue) Enqueue(r Request) Request {
	now := q.opts.Clock()
	r.ID = newRequestID(now)
	r.Date = now
	r.Status = StatusPending
	r.DecidedAt = nil

	q.mu.Lock()
	q.items = append(q.items, &r)
	q.index[r.ID] = &r
	q.mu.Unlock()

	q.logger.Info("request enqueued", "id", r.ID, "type", r.Type, "user_id", r.UserID)
	if q.opts.Auditor != nil {
		q.opts.Auditor.Record("request.enqueue", "id", r.ID, "type", r.Type, "user", r.UserID)
	}
	if q.opts.Recorder != nil {
		q.opts.Recorder.ObserveRequest(string(r.Type))
	}
	return r
}

// Approve marks a pending request approved. It reports false, changing
// nothing, when the request is unknown or already decided.
func (q *Queue) Approve(id string) bool {
	return q.transition(id, StatusApproved)
}

// Reject marks a pending request rejected. It reports false, changing
// nothing, when the request is unknown or already decided.
func (q *Queue) Reject(id string) bool {
	return q.transition(id, StatusRejected)
}

func (q *Queue) transition(id string, to Status) bool {
	q.mu.Lock()
	r, ok := q.index[id]
	if !ok {
		q.mu.Unlock()
		q.logger.Debug("transition ignored", "id", id, "to", to, "reason", "unknown request")
		return false
	}
	from := r.Status
	if !IsValidTransition(from, to) {
		q.mu.Unlock()
		err := &InvalidStateTransitionError{From: from, To: to, RequestID: id}
		q.logger.Debug("transition ignored", "error", err)
		return false
	}
	decided := q.opts.Clock()
	r.Status = to
	r.DecidedAt = &decided
	q.mu.Unlock()

	q.logger.Info("request decided", "id", id, "from", from, "to", to)
	if q.opts.Auditor != nil {
		q.opts.Auditor.Record("request.transition", "id", id, "from", from, "to", to)
	}
	if q.opts.Recorder != nil {
		q.opts.Recorder.ObserveTransition(string(from), string(to))
	}
	return true
}

// ErrNotFound is returned by Get for an unknown id.
var ErrNotFound = errors.New("request not found")

// Get returns a copy of the request with the given id.
func (q *Queue) Get(id string) (Request, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()
	r, ok := q.index[id]
	if !ok {
		return Request{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return *r, nil
}

// PendingCount returns the number of undecided requests.
func (q *Queue) PendingCount() int {
	q.mu.RLock()
	defer q.mu.RUnlock()
	n := 0
	for _, r := range q.items {
		if r.Status == StatusPending {
			n++
		}
	}
	return n
}

// AllPending returns undecided requests in insertion order.
func (q *Queue) AllPending() []Request {
	return q.Filter(StatusPending)
}

// Filter returns requests with the given status in insertion order.
func (q *Queue) Filter(status Status) []Request {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := []Request{}
	for _, r := range q.items {
		if r.Status == status {
			out = append(out, *r)
		}
	}
	return out
}

// All returns every request, newest first.
func (q *Queue) All() []Request {
	q.mu.RLock()
	defer q.mu.RUnlock()
	out := make([]Request, 0, len(q.items))
	for i := len(q.items) - 1; i >= 0; i-- {
		out = append(out, *q.items[i])
	}
	return out
}

func newRequestID(now time.Time) string {
	return fmt.Sprintf("REQ-%s", now.Format("20060102-")) + uuid.New().String()[:8]
}
