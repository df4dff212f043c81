package importer

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cleared-dev/ynabimport/internal/model"
	"github.com/cleared-dev/ynabimport/internal/rates"
)

// WiseParser parses Wise (TransferWise) multi-currency statement exports.
type WiseParser struct{}

const (
	wiseHeaderPrefix = "TransferWise ID"

	wiseNumFields    = 15
	wiseColID        = 0
	wiseColDate      = 1
	wiseColAmount    = 2
	wiseColCurrency  = 3
	wiseColDesc      = 4
	wiseColReference = 5
	wiseColBalance   = 6
	wiseColExchFrom  = 7
	wiseColExchTo    = 8
	wiseColExchRate  = 9
	wiseColPayerName = 10
	wiseColPayeeName = 11
	wiseColPayeeAcct = 12
	wiseColMerchant  = 13
	wiseColTotalFees = 14
)

// WiseRow is one data row of a Wise export, in column order.
type WiseRow struct {
	ID                 string
	Date               string
	Amount             string
	Currency           string
	Description        string
	Reference          string
	RunningBalance     string
	ExchangeFrom       string
	ExchangeTo         string
	ExchangeRate       string
	PayerName          string
	PayeeName          string
	PayeeAccountNumber string
	Merchant           string
	TotalFees          string
}

// Format returns the parser name.
func (p *WiseParser) Format() string { return "wise" }

// Encoding returns the text encoding of Wise exports.
func (p *WiseParser) Encoding() string { return "utf-8" }

// Delimiter returns the field separator.
func (p *WiseParser) Delimiter() rune { return ',' }

// MultiCurrency reports that Wise rows carry their own currency.
func (p *WiseParser) MultiCurrency() bool { return true }

// Sniff reports whether text looks like a Wise export.
func (p *WiseParser) Sniff(text string) bool {
	return strings.HasPrefix(strings.TrimPrefix(text, "\uFEFF"), wiseHeaderPrefix)
}

// Parse reads a Wise CSV and returns its transactions with amounts resolved
// through conv. The first row is the column header.
func (p *WiseParser) Parse(r io.Reader, conv rates.Converter) ([]model.Transaction, error) {
	cr := newCSVReader(r, p.Delimiter())

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading wise header: %w", err)
	}

	return readBody(cr, p.Format(), func(rec []string) (model.Transaction, error) {
		row, err := NewWiseRow(rec)
		if err != nil {
			return model.Transaction{}, err
		}
		return row.Transaction(conv)
	})
}

// NewWiseRow maps a CSV record onto the Wise column layout.
func NewWiseRow(rec []string) (WiseRow, error) {
	if len(rec) != wiseNumFields {
		return WiseRow{}, RowWidthError{Format: "wise", Want: wiseNumFields, Got: len(rec)}
	}
	return WiseRow{
		ID:                 rec[wiseColID],
		Date:               rec[wiseColDate],
		Amount:             rec[wiseColAmount],
		Currency:           rec[wiseColCurrency],
		Description:        rec[wiseColDesc],
		Reference:          rec[wiseColReference],
		RunningBalance:     rec[wiseColBalance],
		ExchangeFrom:       rec[wiseColExchFrom],
		ExchangeTo:         rec[wiseColExchTo],
		ExchangeRate:       rec[wiseColExchRate],
		PayerName:          rec[wiseColPayerName],
		PayeeName:          rec[wiseColPayeeName],
		PayeeAccountNumber: rec[wiseColPayeeAcct],
		Merchant:           rec[wiseColMerchant],
		TotalFees:          rec[wiseColTotalFees],
	}, nil
}

// Payee returns the first non-empty of payee name, payer name and merchant.
func (r WiseRow) Payee() string {
	for _, candidate := range []string{r.PayeeName, r.PayerName, r.Merchant} {
		if s := strings.TrimSpace(candidate); s != "" {
			return s
		}
	}
	return ""
}

// Transaction builds the normalized transaction for the row.
func (r WiseRow) Transaction(conv rates.Converter) (model.Transaction, error) {
	date, err := ParseWiseDate(r.Date)
	if err != nil {
		return model.Transaction{}, err
	}

	amount, err := ParseWiseAmount(r.Amount)
	if err != nil {
		return model.Transaction{}, err
	}

	currency := strings.ToUpper(strings.TrimSpace(r.Currency))
	converted, err := conv.Resolve(amount, currency, date)
	if err != nil {
		return model.Transaction{}, err
	}

	return model.Transaction{
		ID:              r.ID,
		Date:            date,
		Amount:          amount,
		Currency:        currency,
		ConvertedAmount: decimal.NewNullDecimal(converted),
		Memo:            r.Description,
		Payee:           r.Payee(),
		Source:          "wise",
	}, nil
}
