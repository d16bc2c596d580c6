package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/safi-bank/internal/assistant"
	"github.com/example/safi-bank/internal/cards"
	"github.com/example/safi-bank/internal/ledger"
	"github.com/example/safi-bank/internal/profile"
	"github.com/example/safi-bank/internal/requests"
	"github.com/example/safi-bank/internal/transfer"
	"github.com/example/safi-bank/pkg/audit"
)

// ErrNoSession is returned by every command while logged out.
var ErrNoSession = errors.New("no active session")

// Auditor receives session events.
type Auditor interface {
	Record(event string, kv ...any) *audit.LogEntry
}

// Recorder collects metrics for every component of a session.
type Recorder interface {
	ledger.Recorder
	requests.Recorder
	SetSessionActive(active bool)
}

// Options configures a Controller. Zero delays commit ledger commands
// without waiting.
type Options struct {
	Delay         time.Duration
	TransferDelay time.Duration
	Clock         func() time.Time
	Seed          func(now time.Time) Seed
	Assistant     assistant.Completer
	Auditor       Auditor
	Recorder      Recorder
	Logger        *slog.Logger
}

type state struct {
	id           string
	gen          uint64
	ledger       *ledger.Ledger
	queue        *requests.Queue
	profile      *profile.Profile
	cards        *cards.Catalog
	negotiator   *transfer.Negotiator
	conversation []assistant.Turn
}

// Controller owns the components of one customer session and routes
// commands to them. Commands are serialized by the controller lock; ledger
// commits serialize on the ledger's own lock and are republished to
// observers when they land.
type Controller struct {
	mu        sync.Mutex
	opts      Options
	logger    *slog.Logger
	state     *state
	gen       uint64
	observers map[int]func(Snapshot)
	nextObs   int
	obsMu     sync.Mutex
}

// NewController creates a logged-out controller.
func NewController(opts Options) *Controller {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	if opts.Seed == nil {
		opts.Seed = DefaultSeed
	}
	if opts.Assistant == nil {
		opts.Assistant = assistant.Unavailable{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		opts:      opts,
		logger:    logger.With("component", "session"),
		observers: make(map[int]func(Snapshot)),
	}
}

// Login opens a session from the seed. Logging in while a session is open
// keeps the open session.
func (c *Controller) Login() (Snapshot, error) {
	c.mu.Lock()
	if c.state != nil {
		snap := c.snapshotLocked()
		c.mu.Unlock()
		return snap, nil
	}

	seed := c.opts.Seed(c.opts.Clock())
	catalog, err := cards.NewCatalog(seed.Cards...)
	if err != nil {
		c.mu.Unlock()
		return Snapshot{}, fmt.Errorf("load cards: %w", err)
	}

	c.gen++
	gen := c.gen
	st := &state{id: uuid.New().String(), gen: gen, cards: catalog}

	var ledgerRec ledger.Recorder
	var queueRec requests.Recorder
	if c.opts.Recorder != nil {
		ledgerRec, queueRec = c.opts.Recorder, c.opts.Recorder
	}
	st.ledger = ledger.New(seed.Opening, seed.History, ledger.Options{
		Delay:         c.opts.Delay,
		TransferDelay: c.opts.TransferDelay,
		Clock:         c.opts.Clock,
		Auditor:       c.opts.Auditor,
		Recorder:      ledgerRec,
		Logger:        c.logger,
		OnCommit:      func(ledger.Transaction) { c.publishIf(gen) },
	})
	st.queue = requests.NewQueue(requests.Options{
		Clock:    c.opts.Clock,
		Auditor:  c.opts.Auditor,
		Recorder: queueRec,
		Logger:   c.logger,
	}, seed.Requests...)
	st.profile = profile.New(seed.User, st.queue)
	st.negotiator = transfer.NewNegotiator(st.ledger)
	st.conversation = []assistant.Turn{{Role: assistant.RoleModel, Text: assistant.Greeting(seed.Opening)}}
	c.state = st

	c.logger.Info("session opened", "session_id", st.id, "user_id", seed.User.ID)
	c.audit("session.login", "id", st.id, "user", seed.User.ID)
	if c.opts.Recorder != nil {
		c.opts.Recorder.SetSessionActive(true)
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
	return snap, nil
}

// Logout discards the session. Commits still in flight land in the
// discarded ledger and are not published.
func (c *Controller) Logout() {
	c.mu.Lock()
	st := c.state
	if st == nil {
		c.mu.Unlock()
		return
	}
	c.state = nil
	c.logger.Info("session closed", "session_id", st.id)
	c.audit("session.logout", "id", st.id)
	if c.opts.Recorder != nil {
		c.opts.Recorder.SetSessionActive(false)
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()

	c.notify(snap)
}

// Active reports whether a session is open.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state != nil
}

// Deposit issues a deposit on the session ledger.
func (c *Controller) Deposit(amount decimal.Decimal, description string) (*ledger.Operation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == nil {
		return nil, ErrNoSession
	}
	return c.state.ledger.Deposit(amount, description), nil
}

// Withdraw issues a withdrawal on the session ledger.
func (c *Controller) Withdraw(amount decimal.Decimal, description string) (*ledger.Operation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == nil {
		return nil, ErrNoSession
	}
	return c.state.ledger.Withdraw(amount, description), nil
}

// Transfer issues a transfer directly, bypassing the review workflow.
func (c *Controller) Transfer(amount decimal.Decimal, recipient, account, description string) (*ledger.Operation, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == nil {
		return nil, ErrNoSession
	}
	return c.state.ledger.Transfer(amount, recipient, account, description), nil
}

// ReviewTransfer validates a transfer form and holds it for confirmation.
func (c *Controller) ReviewTransfer(in transfer.Input) (*transfer.ValidationResult, error) {
	c.mu.Lock()
	if c.state == nil {
		c.mu.Unlock()
		return nil, ErrNoSession
	}
	res, err := c.state.negotiator.Review(in)
	return res, c.unlockAndPublish(err)
}

// ConfirmTransfer submits the held transfer.
func (c *Controller) ConfirmTransfer() (*ledger.Operation, error) {
	c.mu.Lock()
	if c.state == nil {
		c.mu.Unlock()
		return nil, ErrNoSession
	}
	op, err := c.state.negotiator.Confirm()
	return op, c.unlockAndPublish(err)
}

// BackTransfer returns the held transfer to review.
func (c *Controller) BackTransfer() error {
	c.mu.Lock()
	if c.state == nil {
		c.mu.Unlock()
		return ErrNoSession
	}
	return c.unlockAndPublish(c.state.negotiator.Back())
}

// UpdateProfile applies the editable fields and raises a kyc_update request.
func (c *Controller) UpdateProfile(fields map[string]string) (map[string]string, requests.Request, error) {
	c.mu.Lock()
	if c.state == nil {
		c.mu.Unlock()
		return nil, requests.Request{}, ErrNoSession
	}
	applied, r := c.state.profile.Update(fields)
	c.logger.Info("profile updated", "fields", len(applied), "request_id", r.ID)
	return applied, r, c.unlockAndPublish(nil)
}

// ApproveRequest approves a pending request. The result is false when the
// request is unknown or already decided.
func (c *Controller) ApproveRequest(id string) (bool, error) {
	return c.decide(id, (*requests.Queue).Approve)
}

// RejectRequest rejects a pending request. The result is false when the
// request is unknown or already decided.
func (c *Controller) RejectRequest(id string) (bool, error) {
	return c.decide(id, (*requests.Queue).Reject)
}

func (c *Controller) decide(id string, apply func(*requests.Queue, string) bool) (bool, error) {
	c.mu.Lock()
	if c.state == nil {
		c.mu.Unlock()
		return false, ErrNoSession
	}
	if !apply(c.state.queue, id) {
		c.mu.Unlock()
		return false, nil
	}
	return true, c.unlockAndPublish(nil)
}

// Ask sends prompt to the assistant with the conversation so far. On
// failure the returned text is the reply to show the customer and the
// error wraps assistant.ErrAssistantUnavailable.
func (c *Controller) Ask(ctx context.Context, prompt string) (string, error) {
	c.mu.Lock()
	st := c.state
	if st == nil {
		c.mu.Unlock()
		return "", ErrNoSession
	}
	history := st.transcript(st.ledger.Balance())
	c.mu.Unlock()

	reply, err := c.opts.Assistant.Complete(ctx, prompt, history)
	if err != nil {
		c.logger.Warn("assistant failed", "session_id", st.id, "error", err)
		if !errors.Is(err, assistant.ErrAssistantUnavailable) {
			err = fmt.Errorf("%w: %v", assistant.ErrAssistantUnavailable, err)
		}
		reply = assistant.FailureReply(err)
	}

	c.mu.Lock()
	if c.state == st {
		st.conversation = append(st.conversation,
			assistant.Turn{Role: assistant.RoleUser, Text: prompt},
			assistant.Turn{Role: assistant.RoleModel, Text: reply})
	}
	c.mu.Unlock()
	return reply, err
}

// Drain waits for every ledger command issued in the current session.
func (c *Controller) Drain() {
	c.mu.Lock()
	st := c.state
	c.mu.Unlock()
	if st != nil {
		st.ledger.Drain()
	}
}

// Subscribe registers fn to receive a snapshot after every state change.
// The returned function removes the registration.
func (c *Controller) Subscribe(fn func(Snapshot)) func() {
	c.obsMu.Lock()
	defer c.obsMu.Unlock()
	id := c.nextObs
	c.nextObs++
	c.observers[id] = fn
	return func() {
		c.obsMu.Lock()
		defer c.obsMu.Unlock()
		delete(c.observers, id)
	}
}

// unlockAndPublish releases the controller lock and, when err is nil,
// publishes a snapshot taken before the release.
func (c *Controller) unlockAndPublish(err error) error {
	if err != nil {
		c.mu.Unlock()
		return err
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
	return nil
}

func (c *Controller) publishIf(gen uint64) {
	c.mu.Lock()
	if c.state == nil || c.state.gen != gen {
		c.mu.Unlock()
		return
	}
	snap := c.snapshotLocked()
	c.mu.Unlock()
	c.notify(snap)
}

func (c *Controller) notify(snap Snapshot) {
	c.obsMu.Lock()
	fns := make([]func(Snapshot), 0, len(c.observers))
	for _, fn := range c.observers {
		fns = append(fns, fn)
	}
	c.obsMu.Unlock()
	for _, fn := range fns {
		fn(snap)
	}
}

func (c *Controller) audit(event string, kv ...any) {
	if c.opts.Auditor != nil {
		c.opts.Auditor.Record(event, kv...)
	}
}
