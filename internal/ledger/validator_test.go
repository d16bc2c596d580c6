package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	cases := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"500", "500", false},
		{" 12.5 ", "12.5", false},
		{"10.005", "10.01", false},
		{"0.001", "", true},
		{"0", "", true},
		{"-3", "", true},
		{"", "", true},
		{"abc", "", true},
	}
	for _, tc := range cases {
		got, err := ParseAmount(tc.in)
		if tc.wantErr {
			assert.ErrorIs(t, err, ErrInvalidAmount, "input %q", tc.in)
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		assert.True(t, dec(tc.want).Equal(got), "input %q: got %s", tc.in, got)
	}
}

func TestValidateRecipient(t *testing.T) {
	name, account, err := ValidateRecipient("  Sarah Jenkins ", "1234 5678-90")
	require.NoError(t, err)
	assert.Equal(t, "Sarah Jenkins", name)
	assert.Equal(t, "1234567890", account)

	_, _, err = ValidateRecipient("", "12345678")
	assert.ErrorIs(t, err, ErrInvalidRecipient)

	_, _, err = ValidateRecipient("Sarah", "1234-567")
	assert.ErrorIs(t, err, ErrInvalidRecipient)

	assert.Equal(t, "44589982", NormalizeAccount("4458 99x82"))
}

func TestErrorCode(t *testing.T) {
	_, err := ParseAmount("x")
	assert.Equal(t, "invalid_amount", ErrorCode(err))
	assert.Equal(t, "missing_description", ErrorCode(ErrMissingDescription))
	assert.Equal(t, "internal_error", ErrorCode(assert.AnError))
}

func seededLedger(t *testing.T) *Ledger {
	t.Helper()
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	history := []Transaction{
		{ID: "5", Kind: KindTransfer, Amount: dec("250.00"), Timestamp: now, Description: "Transfer to Sarah J.", Recipient: "Sarah Jenkins", Status: StatusCompleted},
		{ID: "4", Kind: KindWithdrawal, Amount: dec("100.00"), Timestamp: now.Add(-time.Hour), Description: "ATM Withdrawal - Downtown", Status: StatusCompleted},
		{ID: "3", Kind: KindPayment, Amount: dec("14.99"), Timestamp: now.Add(-2 * time.Hour), Description: "Netflix Subscription", Status: StatusCompleted},
		{ID: "2", Kind: KindDeposit, Amount: dec("150.00"), Timestamp: now.Add(-3 * time.Hour), Description: "Refund: Amazon", Status: StatusCompleted},
		{ID: "1", Kind: KindDeposit, Amount: dec("4250.00"), Timestamp: now.Add(-4 * time.Hour), Description: "Payroll Deposit: Tech Corp", Status: StatusCompleted},
	}
	return New(dec("14850.75"), history, Options{})
}

func TestLedger_History(t *testing.T) {
	l := seededLedger(t)

	assert.Len(t, l.History(Filter{}), 5)

	income := l.History(Filter{Flow: FlowIncome})
	require.Len(t, income, 2)
	assert.Equal(t, "2", income[0].ID)

	expense := l.History(Filter{Flow: FlowExpense})
	assert.Len(t, expense, 3)

	byText := l.History(Filter{Search: "NETFLIX"})
	require.Len(t, byText, 1)
	assert.Equal(t, "3", byText[0].ID)

	byAmount := l.History(Filter{Search: "250.00"})
	require.Len(t, byAmount, 2)
	assert.Equal(t, "5", byAmount[0].ID)
	assert.Equal(t, "1", byAmount[1].ID)

	assert.Empty(t, l.History(Filter{Flow: FlowIncome, Search: "netflix"}))
}

func TestLedger_Summary(t *testing.T) {
	l := seededLedger(t)

	s := l.Summary(3)
	assert.True(t, dec("4400.00").Equal(s.Income), "income %s", s.Income)
	assert.True(t, dec("364.99").Equal(s.Expense), "expense %s", s.Expense)
	assert.True(t, dec("14850.75").Equal(s.Balance))
	require.Len(t, s.Recent, 3)
	assert.Equal(t, "5", s.Recent[0].ID)
	assert.Equal(t, "3", s.Recent[2].ID)

	assert.Len(t, l.Summary(50).Recent, 5)
	assert.Empty(t, l.Summary(-1).Recent)
}

func TestParseFlow(t *testing.T) {
	f, ok := ParseFlow("")
	assert.True(t, ok)
	assert.Equal(t, FlowAll, f)

	f, ok = ParseFlow("Income")
	assert.True(t, ok)
	assert.Equal(t, FlowIncome, f)

	_, ok = ParseFlow("sideways")
	assert.False(t, ok)
}
