// Package ynab writes transactions in the CSV layout accepted by YNAB's file
// import.
package ynab

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/cleared-dev/ynabimport/internal/model"
)

// Header is the CSV header YNAB expects.
const Header = "Date,Payee,Category,Memo,Outflow,Inflow"

const (
	// Filename is the suggested name for an exported file.
	Filename = "ynab-import.csv"
	// MIMEType describes exported files.
	MIMEType = "text/csv;charset=utf-8"
)

const (
	numFields   = 6
	dateFormat  = "1/2/2006"
	colDate     = 0
	colPayee    = 1
	colCategory = 2
	colMemo     = 3
	colOutflow  = 4
	colInflow   = 5
)

// WriteTransactions writes txns to w, header first, in the given order.
func WriteTransactions(w io.Writer, txns []model.Transaction) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	if err := cw.Write(strings.Split(Header, ",")); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	for i, txn := range txns {
		if err := cw.Write(MarshalTransaction(txn)); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// MarshalTransaction converts a Transaction to a YNAB CSV row. Outflows are
// written as positive numbers in the Outflow column; everything else goes to
// Inflow. Category is always left for YNAB to fill in.
func MarshalTransaction(txn model.Transaction) []string {
	row := make([]string, numFields)
	row[colDate] = txn.Date.Format(dateFormat)
	row[colPayee] = txn.Payee
	row[colMemo] = txn.Memo

	amount := txn.LedgerAmount()
	if amount.IsNegative() {
		row[colOutflow] = amount.Abs().String()
	} else {
		row[colInflow] = amount.String()
	}
	return row
}

// Export renders a whole batch.
func Export(batch *model.Batch) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteTransactions(&buf, batch.Transactions()); err != nil {
		return nil, fmt.Errorf("exporting batch %s: %w", batch.ID(), err)
	}
	return buf.Bytes(), nil
}
