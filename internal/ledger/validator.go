package ledger

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// MinAccountDigits is the shortest recipient account number accepted.
const MinAccountDigits = 8

// DefaultTransferDescription is used when a transfer carries no description.
const DefaultTransferDescription = "Transfer"

// ParseAmount turns user text into a currency amount.
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: amount is required", ErrInvalidAmount)
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, s)
	}
	return ValidateAmount(d)
}

// ValidateAmount rounds to cents and rejects anything that is not positive.
func ValidateAmount(amount decimal.Decimal) (decimal.Decimal, error) {
	rounded := amount.Round(2)
	if !rounded.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %s must be positive", ErrInvalidAmount, amount.String())
	}
	return rounded, nil
}

// ValidateDescription trims the description and requires it to be present.
func ValidateDescription(description string) (string, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return "", ErrMissingDescription
	}
	return description, nil
}

// NormalizeAccount drops everything but digits from an account number.
func NormalizeAccount(account string) string {
	var b strings.Builder
	for _, r := range account {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// ValidateRecipient checks the transfer counterparty.
// Spaces and dashes are accepted as separators in the account number; any
// other non-digit makes it malformed.
func ValidateRecipient(name, account string) (string, string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", "", fmt.Errorf("%w: recipient name is required", ErrInvalidRecipient)
	}
	stripped := strings.NewReplacer(" ", "", "-", "").Replace(account)
	digits := NormalizeAccount(stripped)
	if digits != stripped || len(digits) < MinAccountDigits {
		return "", "", fmt.Errorf("%w: account number must have at least %d digits", ErrInvalidRecipient, MinAccountDigits)
	}
	return name, digits, nil
}
