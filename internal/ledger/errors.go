package ledger

import "errors"

var (
	ErrInvalidAmount      = errors.New("invalid amount")
	ErrInsufficientFunds  = errors.New("insufficient funds")
	ErrInvalidRecipient   = errors.New("invalid recipient")
	ErrMissingDescription = errors.New("missing description")
)

// ErrorCode maps a ledger error to the stable code reported to callers.
func ErrorCode(err error) string {
	switch {
	case errors.Is(err, ErrInvalidAmount):
		return "invalid_amount"
	case errors.Is(err, ErrInsufficientFunds):
		return "insufficient_funds"
	case errors.Is(err, ErrInvalidRecipient):
		return "invalid_recipient"
	case errors.Is(err, ErrMissingDescription):
		return "missing_description"
	default:
		return "internal_error"
	}
}
