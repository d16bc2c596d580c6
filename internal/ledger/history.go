package ledger

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Flow selects transactions by direction.
type Flow string

const (
	FlowAll     Flow = "all"
	FlowIncome  Flow = "income"
	FlowExpense Flow = "expense"
)

// ParseFlow accepts "", all, income or expense.
func ParseFlow(s string) (Flow, bool) {
	switch Flow(strings.ToLower(strings.TrimSpace(s))) {
	case "", FlowAll:
		return FlowAll, true
	case FlowIncome:
		return FlowIncome, true
	case FlowExpense:
		return FlowExpense, true
	}
	return "", false
}

// Filter narrows History results.
type Filter struct {
	Flow   Flow
	Search string
}

func (f Filter) match(tx Transaction) bool {
	switch f.Flow {
	case FlowIncome:
		if tx.Kind != KindDeposit {
			return false
		}
	case FlowExpense:
		if tx.Kind == KindDeposit {
			return false
		}
	}
	q := strings.ToLower(strings.TrimSpace(f.Search))
	if q == "" {
		return true
	}
	return strings.Contains(strings.ToLower(tx.Description), q) ||
		strings.Contains(tx.Amount.String(), q) ||
		strings.Contains(tx.Amount.StringFixed(2), q)
}

// History returns the matching transactions, newest first.
func (l *Ledger) History(f Filter) []Transaction {
	return f.Apply(l.Transactions())
}

// Apply keeps the transactions of txs that match f, preserving order.
func (f Filter) Apply(txs []Transaction) []Transaction {
	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if f.match(tx) {
			out = append(out, tx)
		}
	}
	return out
}

// Summary is the dashboard view of the account.
type Summary struct {
	Balance decimal.Decimal
	Income  decimal.Decimal
	Expense decimal.Decimal
	Recent  []Transaction
}

// Summary totals income and expense over the whole log and returns the
// recent newest entries.
func (l *Ledger) Summary(recent int) Summary {
	l.mu.RLock()
	defer l.mu.RUnlock()

	s := Summary{Balance: l.balance, Income: decimal.Zero, Expense: decimal.Zero}
	for _, tx := range l.txs {
		if tx.Kind.Debits() {
			s.Expense = s.Expense.Add(tx.Amount)
		} else {
			s.Income = s.Income.Add(tx.Amount)
		}
	}
	if recent < 0 {
		recent = 0
	}
	if recent > len(l.txs) {
		recent = len(l.txs)
	}
	s.Recent = make([]Transaction, 0, recent)
	for i := len(l.txs) - 1; i >= len(l.txs)-recent; i-- {
		s.Recent = append(s.Recent, l.txs[i])
	}
	return s
}
