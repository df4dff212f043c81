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

// DefaultOTPSentinel is the first field of the row that opens the posted
// transactions table in OTP exports.
const DefaultOTPSentinel = "Könyvelt tételek"

// OTPParser parses OTP Bank (Hungary) statement exports: semicolon
// separated, Windows-1250 encoded, with a preamble before the table.
type OTPParser struct {
	Sentinel string
}

// NewOTPParser creates an OTPParser using DefaultOTPSentinel.
func NewOTPParser() *OTPParser {
	return &OTPParser{Sentinel: DefaultOTPSentinel}
}

const (
	otpNumFields     = 9
	otpColType       = 0
	otpColRecordDate = 1
	otpColValueDate  = 2
	otpColID         = 3
	otpColAmount     = 4
	otpColNote1      = 5
	otpColPayee      = 6
	otpColNote2      = 7
	otpColNote3      = 8

	noteSeparator = " / "
)

// OTPRow is one posted transaction row of an OTP export, in column order.
type OTPRow struct {
	Type       string
	RecordDate string
	ValueDate  string
	ID         string
	Amount     string
	Note1      string
	Payee      string
	Note2      string
	Note3      string
}

// Format returns the parser name.
func (p *OTPParser) Format() string { return "otp" }

// Encoding returns the text encoding of OTP exports.
func (p *OTPParser) Encoding() string { return "windows-1250" }

// Delimiter returns the field separator.
func (p *OTPParser) Delimiter() rune { return ';' }

// MultiCurrency reports that OTP statements are single-currency.
func (p *OTPParser) MultiCurrency() bool { return false }

// Sniff reports whether text contains the OTP posted-transactions sentinel.
func (p *OTPParser) Sniff(text string) bool {
	return strings.Contains(text, p.sentinel()+string(p.Delimiter())) ||
		strings.Contains(text, p.sentinel()+"\n") ||
		strings.Contains(text, p.sentinel()+"\r\n")
}

func (p *OTPParser) sentinel() string {
	if p.Sentinel == "" {
		return DefaultOTPSentinel
	}
	return p.Sentinel
}

// Parse reads an OTP CSV and returns its posted transactions. Rows before the
// sentinel row and the column header right after it are skipped. A file
// without the sentinel has no transactions.
func (p *OTPParser) Parse(r io.Reader, conv rates.Converter) ([]model.Transaction, error) {
	cr := newCSVReader(r, p.Delimiter())
	sentinel := p.sentinel()

	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		if err != nil {
			return nil, fmt.Errorf("reading otp preamble: %w", err)
		}
		if strings.TrimSpace(rec[0]) == sentinel {
			break
		}
	}

	if _, err := cr.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading otp header: %w", err)
	}

	return readBody(cr, p.Format(), func(rec []string) (model.Transaction, error) {
		row, err := NewOTPRow(rec)
		if err != nil {
			return model.Transaction{}, err
		}
		return row.Transaction(conv)
	})
}

// NewOTPRow maps a CSV record onto the OTP column layout.
func NewOTPRow(rec []string) (OTPRow, error) {
	if len(rec) != otpNumFields {
		return OTPRow{}, RowWidthError{Format: "otp", Want: otpNumFields, Got: len(rec)}
	}
	return OTPRow{
		Type:       rec[otpColType],
		RecordDate: rec[otpColRecordDate],
		ValueDate:  rec[otpColValueDate],
		ID:         rec[otpColID],
		Amount:     rec[otpColAmount],
		Note1:      rec[otpColNote1],
		Payee:      rec[otpColPayee],
		Note2:      rec[otpColNote2],
		Note3:      rec[otpColNote3],
	}, nil
}

// Memo merges the note columns. The trailing notes are the specific ones:
// both present are joined, otherwise whichever is set wins, and the generic
// first note is the fallback.
func (r OTPRow) Memo() string {
	note2 := strings.TrimSpace(r.Note2)
	note3 := strings.TrimSpace(r.Note3)
	switch {
	case note2 != "" && note3 != "":
		return note2 + noteSeparator + note3
	case note2 != "":
		return note2
	case note3 != "":
		return note3
	default:
		return strings.TrimSpace(r.Note1)
	}
}

// Transaction builds the normalized transaction for the row. The value date
// is authoritative; the record date is kept only in the raw row.
func (r OTPRow) Transaction(conv rates.Converter) (model.Transaction, error) {
	date, err := ParseOTPDate(r.ValueDate)
	if err != nil {
		return model.Transaction{}, err
	}

	amount, currency, err := ParseOTPAmount(r.Amount)
	if err != nil {
		return model.Transaction{}, err
	}

	converted, err := conv.Resolve(amount, currency, date)
	if err != nil {
		return model.Transaction{}, err
	}

	return model.Transaction{
		ID:              strings.TrimSpace(r.ID),
		Date:            date,
		Amount:          amount,
		Currency:        currency,
		ConvertedAmount: decimal.NewNullDecimal(converted),
		Memo:            r.Memo(),
		Payee:           strings.TrimSpace(r.Payee),
		Source:          "otp",
	}, nil
}
