package session

import (
	"github.com/shopspring/decimal"

	"github.com/example/safi-bank/internal/assistant"
	"github.com/example/safi-bank/internal/cards"
	"github.com/example/safi-bank/internal/ledger"
	"github.com/example/safi-bank/internal/profile"
	"github.com/example/safi-bank/internal/requests"
	"github.com/example/safi-bank/internal/transfer"
)

// Snapshot is a read-only copy of the session state.
type Snapshot struct {
	Active          bool
	SessionID       string
	Balance         decimal.Decimal
	Transactions    []ledger.Transaction
	PendingRequests []requests.Request
	Requests        []requests.Request
	Profile         profile.User
	Cards           []cards.View
	TransferState   transfer.State
	TransferDraft   *transfer.Draft
	Conversation    []assistant.Turn
}

// Snapshot returns the current state. While logged out only Active is set.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

func (c *Controller) snapshotLocked() Snapshot {
	st := c.state
	if st == nil {
		return Snapshot{}
	}
	balance, txs := st.ledger.State()
	snap := Snapshot{
		Active:          true,
		SessionID:       st.id,
		Balance:         balance,
		Transactions:    txs,
		PendingRequests: st.queue.AllPending(),
		Requests:        st.queue.All(),
		Profile:         st.profile.User(),
		Cards:           st.cards.List(),
		TransferState:   st.negotiator.State(),
		Conversation:    st.transcript(balance),
	}
	if d, ok := st.negotiator.Draft(); ok {
		snap.TransferDraft = &d
	}
	return snap
}

// transcript copies the conversation with the greeting restated at balance.
func (st *state) transcript(balance decimal.Decimal) []assistant.Turn {
	out := append([]assistant.Turn(nil), st.conversation...)
	out[0] = assistant.Turn{Role: assistant.RoleModel, Text: assistant.Greeting(balance)}
	return out
}

// with runs fn against the open session under the controller lock.
func (c *Controller) with(fn func(st *state)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state == nil {
		return ErrNoSession
	}
	fn(c.state)
	return nil
}

// Summary returns the dashboard totals and the recent newest transactions.
func (c *Controller) Summary(recent int) (ledger.Summary, error) {
	var s ledger.Summary
	err := c.with(func(st *state) { s = st.ledger.Summary(recent) })
	return s, err
}

// History returns the transactions matching f, newest first.
func (c *Controller) History(f ledger.Filter) ([]ledger.Transaction, error) {
	var txs []ledger.Transaction
	err := c.with(func(st *state) { txs = st.ledger.History(f) })
	return txs, err
}

// Statement returns the account holder, the balance and the transactions
// matching f, all read at one point in time.
func (c *Controller) Statement(f ledger.Filter) (profile.User, decimal.Decimal, []ledger.Transaction, error) {
	var (
		u       profile.User
		balance decimal.Decimal
		txs     []ledger.Transaction
	)
	err := c.with(func(st *state) {
		u = st.profile.User()
		balance, txs = st.ledger.State()
		txs = f.Apply(txs)
	})
	return u, balance, txs, err
}

// Requests returns the requests with the given status in insertion order,
// or all requests newest first when status is empty.
func (c *Controller) Requests(status requests.Status) ([]requests.Request, error) {
	var out []requests.Request
	err := c.with(func(st *state) {
		if status == "" {
			out = st.queue.All()
			return
		}
		out = st.queue.Filter(status)
	})
	return out, err
}

// PendingCount returns the number of undecided requests.
func (c *Controller) PendingCount() (int, error) {
	var n int
	err := c.with(func(st *state) { n = st.queue.PendingCount() })
	return n, err
}

// Profile returns the customer profile.
func (c *Controller) Profile() (profile.User, error) {
	var u profile.User
	err := c.with(func(st *state) { u = st.profile.User() })
	return u, err
}

// Cards returns the masked card list.
func (c *Controller) Cards() ([]cards.View, error) {
	var v []cards.View
	err := c.with(func(st *state) { v = st.cards.List() })
	return v, err
}

// Request returns one administrative request by id.
func (c *Controller) Request(id string) (requests.Request, error) {
	var (
		r   requests.Request
		err error
	)
	if serr := c.with(func(st *state) { r, err = st.queue.Get(id) }); serr != nil {
		return requests.Request{}, serr
	}
	return r, err
}
