// Package statement renders the transaction log as a spreadsheet.
package statement

import (
	"fmt"
	"io"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"github.com/example/safi-bank/internal/ledger"
)

const (
	SheetName   = "Transactions"
	ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

var headers = []string{"Transaction ID", "Date", "Type", "Description", "Recipient", "Credit", "Debit", "Status"}

// Statement is one export: the rows in display order plus the balance at
// export time.
type Statement struct {
	Holder      string
	Account     string
	GeneratedAt time.Time
	Balance     decimal.Decimal
	Rows        []ledger.Transaction
}

// Filename returns the download name, e.g. statement_20240501.xlsx.
func (s Statement) Filename() string {
	return fmt.Sprintf("statement_%s.xlsx", s.GeneratedAt.Format("20060102"))
}

// WriteXLSX writes the statement as an XLSX workbook. Amounts are written
// as strings with two decimals so no float rounding reaches the sheet.
func WriteXLSX(w io.Writer, s Statement) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("statement: rename sheet: %w", err)
	}

	for i, h := range headers {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(SheetName, cell, h); err != nil {
			return fmt.Errorf("statement: header %s: %w", cell, err)
		}
	}

	income, expense := decimal.Zero, decimal.Zero
	for i, tx := range s.Rows {
		credit, debit := "", ""
		if tx.Kind.Debits() {
			debit = tx.Amount.StringFixed(2)
			expense = expense.Add(tx.Amount)
		} else {
			credit = tx.Amount.StringFixed(2)
			income = income.Add(tx.Amount)
		}
		row := []any{
			tx.ID,
			tx.Timestamp.Format("2006-01-02 15:04"),
			string(tx.Kind),
			tx.Description,
			tx.Recipient,
			credit,
			debit,
			string(tx.Status),
		}
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("statement: row %d: %w", i+2, err)
		}
	}

	footer := [][]any{
		{"Total income", income.StringFixed(2)},
		{"Total expense", expense.StringFixed(2)},
		{"Balance", s.Balance.StringFixed(2)},
		{"Account holder", s.Holder},
		{"Account number", s.Account},
		{"Generated", s.GeneratedAt.UTC().Format(time.RFC3339)},
	}
	start := len(s.Rows) + 3
	for i, row := range footer {
		cell, _ := excelize.CoordinatesToCellName(1, start+i)
		if err := f.SetSheetRow(SheetName, cell, &row); err != nil {
			return fmt.Errorf("statement: footer: %w", err)
		}
	}

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("statement: write: %w", err)
	}
	return nil
}
