package transfer

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/example/safi-bank/internal/ledger"
)

// State is the phase of the transfer workflow.
type State string

const (
	StateReviewing  State = "REVIEWING"
	StateConfirming State = "CONFIRMING"
)

// Rule names the first check a draft failed.
type Rule string

const (
	RuleInvalidAmount     Rule = "invalid_amount"
	RuleInsufficientFunds Rule = "insufficient_funds"
	RuleMissingRecipient  Rule = "missing_recipient"
	RuleMalformedAccount  Rule = "malformed_account"
)

var ruleMessages = map[Rule]string{
	RuleInvalidAmount:     "Please enter a valid amount.",
	RuleInsufficientFunds: "Insufficient funds for this transfer.",
	RuleMissingRecipient:  "Recipient name is required.",
	RuleMalformedAccount:  fmt.Sprintf("Please enter a valid account number (min %d digits).", ledger.MinAccountDigits),
}

// Message returns the user-facing text for a rule.
func (r Rule) Message() string {
	return ruleMessages[r]
}

// InvalidOperationError is returned when an operation is not allowed in the current state
type InvalidOperationError struct {
	State     State
	Operation string
}

func (e *InvalidOperationError) Error() string {
	return fmt.Sprintf("invalid operation %s for transfer state %s", e.Operation, e.State)
}

// AllowedTransitions defines valid state transitions
func AllowedTransitions() map[State][]State {
	return map[State][]State{
		StateReviewing:  {StateConfirming},
		StateConfirming: {StateReviewing},
	}
}

// IsValidTransition checks if a state transition is allowed
func IsValidTransition(from, to State) bool {
	for _, s := range AllowedTransitions()[from] {
		if s == to {
			return true
		}
	}
	return false
}

// StateDescription provides human-readable descriptions of states
func StateDescription(s State) string {
	switch s {
	case StateReviewing:
		return "Transfer details are being entered"
	case StateConfirming:
		return "Transfer details are awaiting confirmation"
	default:
		return "Unknown state"
	}
}

// Input is the raw transfer form.
type Input struct {
	Amount      string `json:"amount"`
	Recipient   string `json:"recipient"`
	Account     string `json:"account"`
	Description string `json:"description"`
}

// Draft is a reviewed transfer.
type Draft struct {
	Amount      decimal.Decimal `json:"amount"`
	Recipient   string          `json:"recipient"`
	Account     string          `json:"account"`
	Description string          `json:"description"`
}

// ValidationResult reports the outcome of a review.
type ValidationResult struct {
	IsValid bool   `json:"is_valid"`
	Rule    Rule   `json:"rule,omitempty"`
	Message string `json:"message,omitempty"`
	Draft   *Draft `json:"draft,omitempty"`
	Err     error  `json:"-"`
}

// Ledger is the part of the ledger the negotiator needs.
type Ledger interface {
	Balance() decimal.Decimal
	Transfer(amount decimal.Decimal, recipientName, recipientAccount, description string) *ledger.Operation
}

// Negotiator runs the review then confirm workflow in front of a ledger.
type Negotiator struct {
	mu     sync.Mutex
	ledger Ledger
	state  State
	draft  Draft
}

// NewNegotiator creates a negotiator in the reviewing state.
func NewNegotiator(l Ledger) *Negotiator {
	return &Negotiator{ledger: l, state: StateReviewing}
}

// State returns the current phase.
func (n *Negotiator) State() State {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// Draft returns the held draft and whether one is held.
func (n *Negotiator) Draft() (Draft, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.draft, n.draft.Recipient != ""
}

// Review validates the form against the current balance. Checks run in
// the order amount, funds, recipient, account; the first failure is
// reported and the negotiator stays in review.
func (n *Negotiator) Review(in Input) (*ValidationResult, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !IsValidTransition(n.state, StateConfirming) {
		return nil, &InvalidOperationError{State: n.state, Operation: "review"}
	}

	draft, rule, err := n.check(in)
	if err != nil {
		return &ValidationResult{IsValid: false, Rule: rule, Message: rule.Message(), Err: err}, nil
	}

	n.state = StateConfirming
	n.draft = draft
	return &ValidationResult{IsValid: true, Draft: &draft}, nil
}

func (n *Negotiator) check(in Input) (Draft, Rule, error) {
	amount, err := ledger.ParseAmount(in.Amount)
	if err != nil {
		return Draft{}, RuleInvalidAmount, err
	}
	if balance := n.ledger.Balance(); amount.GreaterThan(balance) {
		return Draft{}, RuleInsufficientFunds, fmt.Errorf("%w: need %s, have %s",
			ledger.ErrInsufficientFunds, amount.StringFixed(2), balance.StringFixed(2))
	}
	name := strings.TrimSpace(in.Recipient)
	if name == "" {
		return Draft{}, RuleMissingRecipient, fmt.Errorf("%w: recipient name is required", ledger.ErrInvalidRecipient)
	}
	account := ledger.NormalizeAccount(in.Account)
	if len(account) < ledger.MinAccountDigits {
		return Draft{}, RuleMalformedAccount, fmt.Errorf("%w: account number has %d digits", ledger.ErrInvalidRecipient, len(account))
	}
	description, err := ledger.ValidateDescription(in.Description)
	if errors.Is(err, ledger.ErrMissingDescription) {
		description = ledger.DefaultTransferDescription
	}
	return Draft{Amount: amount, Recipient: name, Account: account, Description: description}, "", nil
}

// Confirm submits the held draft to the ledger and resets to review with
// an empty draft. The draft is not re-validated; the ledger's commit-time
// funds check still applies.
func (n *Negotiator) Confirm() (*ledger.Operation, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state != StateConfirming {
		return nil, &InvalidOperationError{State: n.state, Operation: "confirm"}
	}
	d := n.draft
	op := n.ledger.Transfer(d.Amount, d.Recipient, d.Account, d.Description)

	n.state = StateReviewing
	n.draft = Draft{}
	return op, nil
}

// Back returns to review keeping the draft for editing.
func (n *Negotiator) Back() error {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !IsValidTransition(n.state, StateReviewing) {
		return &InvalidOperationError{State: n.state, Operation: "back"}
	}
	n.state = StateReviewing
	return nil
}
