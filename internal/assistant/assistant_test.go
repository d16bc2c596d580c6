package assistant

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGreeting(t *testing.T) {
	g := Greeting(decimal.RequireFromString("14850.75"))
	assert.Contains(t, g, "Your current balance is $14,850.75.")
	assert.Contains(t, g, "Hello! I am Safi")
}

func TestFormatMoney(t *testing.T) {
	cases := map[string]string{
		"0":           "0.00",
		"5.5":         "5.50",
		"999.99":      "999.99",
		"1000":        "1,000.00",
		"1234567.891": "1,234,567.89",
		"-2500":       "-2,500.00",
	}
	for in, want := range cases {
		assert.Equal(t, want, formatMoney(decimal.RequireFromString(in)), in)
	}
}

func TestNewGeminiClient_MissingKey(t *testing.T) {
	c, err := NewGeminiClient(context.Background(), "  ", "", nil)
	require.NoError(t, err)
	assert.IsType(t, Unavailable{}, c)

	_, err = c.Complete(context.Background(), "hello", nil)
	assert.ErrorIs(t, err, ErrAssistantUnavailable)
	assert.ErrorIs(t, err, ErrMissingKey)
	assert.Equal(t, MissingKeyMessage, FailureReply(err))
}

func TestFailureReply(t *testing.T) {
	err := errors.Join(ErrAssistantUnavailable, errors.New("timeout"))
	assert.Equal(t, Apology, FailureReply(err))
}
