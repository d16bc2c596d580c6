package cards

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedCards() []Card {
	return []Card{
		{ID: "1", Number: "4582123456789012", Holder: "ALEX SAFI", Expiry: "12/26", Network: NetworkVisa, Variant: VariantBlack, Balance: decimal.RequireFromString("12500.50")},
		{ID: "2", Number: "5412789012345678", Holder: "ALEX SAFI", Expiry: "09/25", Network: NetworkMastercard, Variant: VariantGold, Balance: decimal.RequireFromString("2450.00")},
	}
}

func TestValidateNumber(t *testing.T) {
	for _, n := range []string{"4582123456789012", "4582 1234 5678 9012", "5412-7890-1234-5678", "1234567890123"} {
		assert.NoError(t, validateNumber(n), n)
	}

	invalid := []struct {
		number string
		reason string
	}{
		{"", "empty"},
		{"123", "too short"},
		{"12345678901234567890", "too long"},
		{"458212345678901a", "contains letter"},
	}
	for _, tc := range invalid {
		assert.Error(t, validateNumber(tc.number), tc.reason)
	}
}

func TestValidateExpiry(t *testing.T) {
	for _, e := range []string{"12/26", "01/30", " 09/25 "} {
		assert.NoError(t, validateExpiry(e), e)
	}
	for _, e := range []string{"", "13/26", "00/25", "1/26", "12/2026", "ab/cd"} {
		assert.Error(t, validateExpiry(e), e)
	}
}

func TestValidateHolder(t *testing.T) {
	assert.NoError(t, validateHolder("ALEX SAFI"))
	assert.NoError(t, validateHolder("Mary-Jane O'Neil"))
	assert.Error(t, validateHolder("  "))
	assert.Error(t, validateHolder("R2D2"))
}

func TestMask(t *testing.T) {
	assert.Equal(t, "4582 **** **** 9012", Mask("4582123456789012"))
	assert.Equal(t, "4582 **** **** 9012", Mask("4582 1234 5678 9012"))
	assert.Equal(t, "3782 **** **** 005", Mask("378282246310005"))
	assert.Equal(t, "12345678", Mask("12345678"))
	assert.Equal(t, "9012", Last4("4582-1234-5678-9012"))
}

func TestCatalog(t *testing.T) {
	c, err := NewCatalog(seedCards()...)
	require.NoError(t, err)
	assert.Equal(t, 2, c.Len())

	views := c.List()
	require.Len(t, views, 2)
	assert.Equal(t, "4582 **** **** 9012", views[0].Number)
	assert.Equal(t, "9012", views[0].Last4)
	assert.Equal(t, NetworkMastercard, views[1].Network)
	assert.True(t, decimal.RequireFromString("2450").Equal(views[1].Balance))
}

func TestCatalog_Rejects(t *testing.T) {
	bad := seedCards()
	bad[1].Expiry = "13/25"
	_, err := NewCatalog(bad...)
	assert.ErrorContains(t, err, "card 2")

	dup := seedCards()
	dup[1].ID = "1"
	_, err = NewCatalog(dup...)
	assert.ErrorContains(t, err, "duplicate card id 1")

	unknown := seedCards()
	unknown[0].Network = "amex"
	_, err = NewCatalog(unknown...)
	assert.Error(t, err)
}
