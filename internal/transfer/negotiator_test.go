package transfer

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/safi-bank/internal/ledger"
)

func newLedger(balance string) *ledger.Ledger {
	return ledger.New(decimal.RequireFromString(balance), nil, ledger.Options{})
}

func TestAllowedTransitions(t *testing.T) {
	allowed := AllowedTransitions()
	assert.Equal(t, []State{StateConfirming}, allowed[StateReviewing])
	assert.Equal(t, []State{StateReviewing}, allowed[StateConfirming])

	assert.True(t, IsValidTransition(StateReviewing, StateConfirming))
	assert.False(t, IsValidTransition(StateReviewing, StateReviewing))
	assert.Equal(t, "Unknown state", StateDescription("SUBMITTED"))
}

func TestNegotiator_ReviewRules(t *testing.T) {
	cases := []struct {
		name string
		in   Input
		rule Rule
		msg  string
	}{
		{"empty amount", Input{Amount: "", Recipient: "Sarah", Account: "12345678"}, RuleInvalidAmount, "Please enter a valid amount."},
		{"zero amount", Input{Amount: "0", Recipient: "Sarah", Account: "12345678"}, RuleInvalidAmount, "Please enter a valid amount."},
		{"over balance", Input{Amount: "100.01", Recipient: "", Account: ""}, RuleInsufficientFunds, "Insufficient funds for this transfer."},
		{"no recipient", Input{Amount: "10", Recipient: "  ", Account: "1"}, RuleMissingRecipient, "Recipient name is required."},
		{"short account", Input{Amount: "10", Recipient: "Sarah", Account: "1234-567"}, RuleMalformedAccount, "Please enter a valid account number (min 8 digits)."},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			n := NewNegotiator(newLedger("100"))
			res, err := n.Review(tc.in)
			require.NoError(t, err)
			assert.False(t, res.IsValid)
			assert.Equal(t, tc.rule, res.Rule)
			assert.Equal(t, tc.msg, res.Message)
			assert.Error(t, res.Err)
			assert.Equal(t, StateReviewing, n.State())
		})
	}
}

func TestNegotiator_ReviewConfirm(t *testing.T) {
	l := newLedger("1500")
	n := NewNegotiator(l)

	res, err := n.Review(Input{Amount: "300", Recipient: " Sarah ", Account: "1234 5678"})
	require.NoError(t, err)
	require.True(t, res.IsValid)
	assert.Equal(t, StateConfirming, n.State())
	assert.Equal(t, "Sarah", res.Draft.Recipient)
	assert.Equal(t, "12345678", res.Draft.Account)
	assert.Equal(t, "Transfer", res.Draft.Description)

	// Reviewing again while confirming is not allowed.
	_, err = n.Review(Input{Amount: "1"})
	var opErr *InvalidOperationError
	require.True(t, errors.As(err, &opErr))
	assert.Equal(t, "review", opErr.Operation)

	op, err := n.Confirm()
	require.NoError(t, err)
	tx, err := op.Wait(context.Background())
	require.NoError(t, err)
	assert.Equal(t, ledger.KindTransfer, tx.Kind)
	assert.True(t, decimal.RequireFromString("1200").Equal(l.Balance()))

	assert.Equal(t, StateReviewing, n.State())
	_, held := n.Draft()
	assert.False(t, held)
}

func TestNegotiator_BackKeepsDraft(t *testing.T) {
	n := NewNegotiator(newLedger("100"))

	res, err := n.Review(Input{Amount: "10", Recipient: "Mike T.", Account: "87654321", Description: "Birthday Gift"})
	require.NoError(t, err)
	require.True(t, res.IsValid)

	require.NoError(t, n.Back())
	assert.Equal(t, StateReviewing, n.State())
	d, held := n.Draft()
	assert.True(t, held)
	assert.Equal(t, "Birthday Gift", d.Description)

	var opErr *InvalidOperationError
	assert.ErrorAs(t, n.Back(), &opErr)
	_, err = n.Confirm()
	assert.ErrorAs(t, err, &opErr)
}

// A draft is not re-validated at confirmation; the ledger rejects the
// overdraft when it commits.
func TestNegotiator_ConfirmStaleDraft(t *testing.T) {
	l := newLedger("100")
	n := NewNegotiator(l)

	res, err := n.Review(Input{Amount: "80", Recipient: "Sarah", Account: "12345678"})
	require.NoError(t, err)
	require.True(t, res.IsValid)

	_, err = l.Withdraw(decimal.NewFromInt(50), "ATM").Wait(context.Background())
	require.NoError(t, err)

	op, err := n.Confirm()
	require.NoError(t, err)
	_, err = op.Wait(context.Background())
	assert.ErrorIs(t, err, ledger.ErrInsufficientFunds)
	assert.True(t, decimal.NewFromInt(50).Equal(l.Balance()))
	assert.Equal(t, StateReviewing, n.State())
}
