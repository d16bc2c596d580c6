package ledger

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/example/safi-bank/pkg/audit"
)

const (
	DefaultDelay         = 1500 * time.Millisecond
	DefaultTransferDelay = 2 * time.Second
)

// Auditor receives one event per committed or rejected command.
type Auditor interface {
	Record(event string, kv ...any) *audit.LogEntry
}

// Recorder collects ledger metrics.
type Recorder interface {
	ObserveCommit(kind string, amount float64)
	ObserveRejection(kind, reason string)
}

// Options configures a Ledger. Zero delays commit without waiting.
type Options struct {
	Delay         time.Duration
	TransferDelay time.Duration
	Clock         func() time.Time
	Auditor       Auditor
	Recorder      Recorder
	Logger        *slog.Logger
	// OnCommit runs after every committed transaction, before the
	// operation settles.
	OnCommit func(Transaction)
}

// Ledger owns the balance and the transaction log of one account.
//
// The balance is authoritative: it moves incrementally with each commit and
// is never recomputed from the log. Commits are serialized by a single
// writer lock, and the funds check runs under that lock at commit time.
type Ledger struct {
	mu       sync.RWMutex
	balance  decimal.Decimal
	txs      []Transaction // oldest first
	opts     Options
	logger   *slog.Logger
	inflight sync.WaitGroup
}

type command struct {
	kind        Kind
	amount      decimal.Decimal
	description string
	recipient   string
	account     string
}

// New opens a ledger at the given balance. history is prior activity in
// display order (newest first); it is kept as a record only.
func New(opening decimal.Decimal, history []Transaction, opts Options) *Ledger {
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	txs := make([]Transaction, len(history))
	for i, tx := range history {
		txs[len(history)-1-i] = tx
	}
	return &Ledger{
		balance: opening,
		txs:     txs,
		opts:    opts,
		logger:  logger.With("component", "ledger"),
	}
}

// Deposit credits amount to the account.
func (l *Ledger) Deposit(amount decimal.Decimal, description string) *Operation {
	amount, err := ValidateAmount(amount)
	if err != nil {
		return l.reject(KindDeposit, err)
	}
	description, err = ValidateDescription(description)
	if err != nil {
		return l.reject(KindDeposit, err)
	}
	return l.submit(command{kind: KindDeposit, amount: amount, description: description}, l.opts.Delay)
}

// Withdraw debits amount from the account.
func (l *Ledger) Withdraw(amount decimal.Decimal, description string) *Operation {
	amount, err := ValidateAmount(amount)
	if err != nil {
		return l.reject(KindWithdrawal, err)
	}
	description, err = ValidateDescription(description)
	if err != nil {
		return l.reject(KindWithdrawal, err)
	}
	return l.submit(command{kind: KindWithdrawal, amount: amount, description: description}, l.opts.Delay)
}

// Transfer sends amount to an external recipient.
func (l *Ledger) Transfer(amount decimal.Decimal, recipientName, recipientAccount, description string) *Operation {
	amount, err := ValidateAmount(amount)
	if err != nil {
		return l.reject(KindTransfer, err)
	}
	name, account, err := ValidateRecipient(recipientName, recipientAccount)
	if err != nil {
		return l.reject(KindTransfer, err)
	}
	if description, err = ValidateDescription(description); err != nil {
		description = DefaultTransferDescription
	}
	return l.submit(command{
		kind:        KindTransfer,
		amount:      amount,
		description: description,
		recipient:   name,
		account:     account,
	}, l.opts.TransferDelay)
}

// Balance returns the current balance.
func (l *Ledger) Balance() decimal.Decimal {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.balance
}

// Len returns the number of logged transactions.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.txs)
}

// Transactions returns a copy of the log, newest first.
func (l *Ledger) Transactions() []Transaction {
	_, txs := l.State()
	return txs
}

// State returns the balance and a newest-first copy of the log read
// together, so the balance always equals the one the log ends at.
func (l *Ledger) State() (decimal.Decimal, []Transaction) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Transaction, len(l.txs))
	for i, tx := range l.txs {
		out[len(l.txs)-1-i] = tx
	}
	return l.balance, out
}

// Drain blocks until every issued command has settled.
func (l *Ledger) Drain() {
	l.inflight.Wait()
}

func (l *Ledger) submit(cmd command, delay time.Duration) *Operation {
	op := newOperation()
	l.inflight.Add(1)
	go func() {
		defer l.inflight.Done()
		if delay > 0 {
			time.Sleep(delay)
		}
		tx, balance, err := l.commit(cmd)
		if err != nil {
			l.record(cmd.kind, err)
			op.settle(Transaction{}, err)
			return
		}
		l.committed(tx, balance)
		op.settle(tx, nil)
	}()
	return op
}

// commit applies cmd and returns the balance it left behind.
func (l *Ledger) commit(cmd command) (Transaction, decimal.Decimal, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if cmd.kind.Debits() && cmd.amount.GreaterThan(l.balance) {
		return Transaction{}, l.balance, fmt.Errorf("%w: need %s, have %s", ErrInsufficientFunds,
			cmd.amount.StringFixed(2), l.balance.StringFixed(2))
	}

	tx := Transaction{
		ID:               newTransactionID(),
		Kind:             cmd.kind,
		Amount:           cmd.amount,
		Timestamp:        l.opts.Clock(),
		Description:      cmd.description,
		Recipient:        cmd.recipient,
		RecipientAccount: cmd.account,
		Status:           StatusCompleted,
	}
	if cmd.kind.Debits() {
		l.balance = l.balance.Sub(cmd.amount)
	} else {
		l.balance = l.balance.Add(cmd.amount)
	}
	l.txs = append(l.txs, tx)
	return tx, l.balance, nil
}

func (l *Ledger) committed(tx Transaction, balance decimal.Decimal) {
	l.logger.Info("transaction committed",
		"id", tx.ID,
		"kind", tx.Kind,
		"amount", tx.Amount.StringFixed(2),
		"balance", balance.StringFixed(2),
	)
	if l.opts.Auditor != nil {
		l.opts.Auditor.Record("ledger.commit",
			"id", tx.ID,
			"kind", tx.Kind,
			"amount", tx.Amount.StringFixed(2),
			"balance", balance.StringFixed(2))
	}
	if l.opts.Recorder != nil {
		l.opts.Recorder.ObserveCommit(string(tx.Kind), tx.Amount.InexactFloat64())
	}
	if l.opts.OnCommit != nil {
		l.opts.OnCommit(tx)
	}
}

func (l *Ledger) reject(kind Kind, err error) *Operation {
	l.record(kind, err)
	return failedOperation(err)
}

func (l *Ledger) record(kind Kind, err error) {
	code := ErrorCode(err)
	l.logger.Warn("command rejected", "kind", kind, "reason", code, "error", err)
	if l.opts.Auditor != nil {
		l.opts.Auditor.Record("ledger.reject", "kind", kind, "reason", code)
	}
	if l.opts.Recorder != nil {
		l.opts.Recorder.ObserveRejection(string(kind), code)
	}
}

func newTransactionID() string {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return "TX-" + id.String()
}
