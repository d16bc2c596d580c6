package statement

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/example/safi-bank/internal/ledger"
)

func TestWriteXLSX(t *testing.T) {
	at := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	s := Statement{
		Holder:      "Alex Safi",
		Account:     "8822 1234 5678 9012",
		GeneratedAt: at,
		Balance:     decimal.RequireFromString("1200"),
		Rows: []ledger.Transaction{
			{ID: "TX-2", Kind: ledger.KindTransfer, Amount: decimal.RequireFromString("300"), Timestamp: at, Description: "Transfer", Recipient: "Sarah", Status: ledger.StatusCompleted},
			{ID: "TX-1", Kind: ledger.KindDeposit, Amount: decimal.RequireFromString("500.5"), Timestamp: at.Add(-time.Hour), Description: "Salary", Status: ledger.StatusCompleted},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, s))
	assert.Equal(t, "statement_20240501.xlsx", s.Filename())

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(rows), 9)

	assert.Equal(t, headers, rows[0])
	assert.Equal(t, []string{"TX-2", "2024-05-01 09:30", "transfer", "Transfer", "Sarah", "", "300.00", "completed"}, rows[1])
	assert.Equal(t, "500.50", rows[2][5])
	assert.Equal(t, []string{"Total income", "500.50"}, rows[4])
	assert.Equal(t, []string{"Total expense", "300.00"}, rows[5])
	assert.Equal(t, []string{"Balance", "1200.00"}, rows[6])
}

func TestWriteXLSX_Empty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, Statement{GeneratedAt: time.Now()}))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(SheetName)
	require.NoError(t, err)
	assert.Equal(t, headers, rows[0])
	assert.Equal(t, []string{"Balance", "0.00"}, rows[4])
}
