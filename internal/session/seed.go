package session

import (
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"github.com/example/safi-bank/internal/cards"
	"github.com/example/safi-bank/internal/ledger"
	"github.com/example/safi-bank/internal/profile"
	"github.com/example/safi-bank/internal/requests"
)

// Seed is the starting state of a session.
type Seed struct {
	Opening  decimal.Decimal
	History  []ledger.Transaction // newest first
	User     profile.User
	Requests []requests.Request
	Cards    []cards.Card
}

// DefaultSeed returns the demo customer, with dates relative to now.
func DefaultSeed(now time.Time) Seed {
	daysAgo := func(n int) time.Time { return now.Add(-time.Duration(n) * 24 * time.Hour) }
	d := decimal.RequireFromString

	history := []struct {
		kind      ledger.Kind
		amount    string
		desc      string
		recipient string
		days      int
	}{
		{ledger.KindDeposit, "4250.00", "Payroll Deposit: Tech Corp", "", 0},
		{ledger.KindPayment, "14.99", "Netflix Subscription", "", 1},
		{ledger.KindPayment, "45.20", "Uber Ride", "", 2},
		{ledger.KindWithdrawal, "100.00", "ATM Withdrawal - Downtown", "", 3},
		{ledger.KindTransfer, "250.00", "Transfer to Sarah J.", "Sarah Jenkins", 5},
		{ledger.KindPayment, "89.99", "Internet Bill", "", 6},
		{ledger.KindPayment, "12.50", "Spotify Premium", "", 6},
		{ledger.KindPayment, "120.00", "Grocery Store", "", 8},
		{ledger.KindDeposit, "150.00", "Refund: Amazon", "", 10},
		{ledger.KindPayment, "2400.00", "Monthly Rent", "", 15},
		{ledger.KindPayment, "4.50", "Coffee Shop", "", 16},
		{ledger.KindPayment, "65.00", "Gas Station", "", 18},
		{ledger.KindDeposit, "4250.00", "Payroll Deposit: Tech Corp", "", 30},
		{ledger.KindTransfer, "50.00", "Birthday Gift", "Mike T.", 32},
	}
	txs := make([]ledger.Transaction, 0, len(history))
	for i, h := range history {
		txs = append(txs, ledger.Transaction{
			ID:          strconv.Itoa(i + 1),
			Kind:        h.kind,
			Amount:      d(h.amount),
			Timestamp:   daysAgo(h.days),
			Description: h.desc,
			Recipient:   h.recipient,
			Status:      ledger.StatusCompleted,
		})
	}

	return Seed{
		Opening: d("14850.75"),
		History: txs,
		User: profile.User{
			ID:               "user-1",
			Name:             "Alex Safi",
			AccountNumber:    "4458 9982 1234 5678",
			Avatar:           "https://picsum.photos/100/100",
			Email:            "alex.safi@example.com",
			Phone:            "+1 (555) 012-3456",
			Address:          "123 Finance District, New York, NY 10005",
			EmploymentStatus: "Self-Employed",
			KYCStatus:        profile.KYCVerified,
		},
		Requests: []requests.Request{
			{ID: "REQ-001", UserID: "user-2", UserName: "Sarah Jenkins", Type: requests.TypeAddressChange,
				Details: "Update address to 45 Park Ave, NY", Date: daysAgo(1), Status: requests.StatusPending},
			{ID: "REQ-002", UserID: "user-3", UserName: "Mike Thompson", Type: requests.TypeHighValueTransfer,
				Details: "Transfer verification > $10,000", Date: daysAgo(2), Status: requests.StatusPending},
		},
		Cards: []cards.Card{
			{ID: "1", Number: "4582123456789012", Holder: "ALEX SAFI", Expiry: "12/26",
				Network: cards.NetworkVisa, Variant: cards.VariantBlack, Balance: d("12500.50")},
			{ID: "2", Number: "5412789012345678", Holder: "ALEX SAFI", Expiry: "09/25",
				Network: cards.NetworkMastercard, Variant: cards.VariantGold, Balance: d("2450.00")},
		},
	}
}
