package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// Kind classifies a transaction.
type Kind string

const (
	KindDeposit    Kind = "deposit"
	KindWithdrawal Kind = "withdrawal"
	KindTransfer   Kind = "transfer"
	KindPayment    Kind = "payment"
)

// Debits reports whether the kind reduces the balance.
func (k Kind) Debits() bool {
	return k != KindDeposit
}

// Status is the settlement state of a transaction.
type Status string

const (
	StatusCompleted Status = "completed"
	StatusPending   Status = "pending"
	StatusFailed    Status = "failed"
)

// Transaction is an immutable entry of the transaction log.
type Transaction struct {
	ID               string          `json:"id"`
	Kind             Kind            `json:"type"`
	Amount           decimal.Decimal `json:"amount"`
	Timestamp        time.Time       `json:"date"`
	Description      string          `json:"description"`
	Recipient        string          `json:"recipient,omitempty"`
	RecipientAccount string          `json:"recipient_account,omitempty"`
	Status           Status          `json:"status"`
}
