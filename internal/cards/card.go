package cards

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// Network is the card scheme.
type Network string

const (
	NetworkVisa       Network = "visa"
	NetworkMastercard Network = "mastercard"
)

// Variant is the card design.
type Variant string

const (
	VariantGold  Variant = "gold"
	VariantBlack Variant = "black"
	VariantBlue  Variant = "blue"
)

// Card is a payment card linked to the account.
type Card struct {
	ID      string
	Number  string
	Holder  string
	Expiry  string
	Network Network
	Variant Variant
	Balance decimal.Decimal
}

var (
	digitsPattern = regexp.MustCompile(`^\d+$`)
	expiryPattern = regexp.MustCompile(`^\d{2}/\d{2}$`)
	holderPattern = regexp.MustCompile(`^[a-zA-Z\s\-'.]+$`)
)

// Validate checks the card's format. Card numbers are checked for length
// and digits only.
func (c Card) Validate() error {
	if err := validateNumber(c.Number); err != nil {
		return fmt.Errorf("card %s: %w", c.ID, err)
	}
	if err := validateExpiry(c.Expiry); err != nil {
		return fmt.Errorf("card %s: %w", c.ID, err)
	}
	if err := validateHolder(c.Holder); err != nil {
		return fmt.Errorf("card %s: %w", c.ID, err)
	}
	switch c.Network {
	case NetworkVisa, NetworkMastercard:
	default:
		return fmt.Errorf("card %s: unknown network %q", c.ID, c.Network)
	}
	switch c.Variant {
	case VariantGold, VariantBlack, VariantBlue:
	default:
		return fmt.Errorf("card %s: unknown variant %q", c.ID, c.Variant)
	}
	return nil
}

func normalizeNumber(number string) string {
	number = strings.ReplaceAll(number, " ", "")
	return strings.ReplaceAll(number, "-", "")
}

func validateNumber(number string) error {
	number = normalizeNumber(number)
	if len(number) < 13 || len(number) > 19 {
		return errors.New("card number must be 13-19 digits")
	}
	if !digitsPattern.MatchString(number) {
		return errors.New("card number must contain only digits")
	}
	return nil
}

// validateExpiry validates card expiry date in MM/YY format.
func validateExpiry(expiry string) error {
	expiry = strings.TrimSpace(expiry)
	if !expiryPattern.MatchString(expiry) {
		return errors.New("expiry must be in MM/YY format")
	}
	month, err := strconv.Atoi(expiry[:2])
	if err != nil {
		return errors.New("invalid month in expiry")
	}
	if month < 1 || month > 12 {
		return errors.New("month must be between 01 and 12")
	}
	return nil
}

func validateHolder(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return errors.New("cardholder name must not be empty")
	}
	if len(name) > 255 {
		return errors.New("cardholder name must not exceed 255 characters")
	}
	if !holderPattern.MatchString(name) {
		return errors.New("cardholder name contains invalid characters")
	}
	return nil
}

// Mask groups the number in fours and hides all but the first and last
// group, e.g. "4582 **** **** 9012".
func Mask(number string) string {
	number = normalizeNumber(number)
	if len(number) <= 8 {
		return number
	}
	var groups []string
	for i := 0; i < len(number); i += 4 {
		end := i + 4
		if end > len(number) {
			end = len(number)
		}
		groups = append(groups, number[i:end])
	}
	for i := 1; i < len(groups)-1; i++ {
		groups[i] = strings.Repeat("*", len(groups[i]))
	}
	return strings.Join(groups, " ")
}

// Last4 returns the final four digits of the number.
func Last4(number string) string {
	number = normalizeNumber(number)
	if len(number) < 4 {
		return number
	}
	return number[len(number)-4:]
}
