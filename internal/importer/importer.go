// Package importer turns bank statement exports into normalized transactions.
package importer

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/cleared-dev/ynabimport/internal/model"
	"github.com/cleared-dev/ynabimport/internal/rates"
)

// Parser converts one bank's statement export into Transactions.
type Parser interface {
	Format() string
	// Encoding is a WHATWG encoding label, e.g. "utf-8" or "windows-1250".
	Encoding() string
	Delimiter() rune
	// MultiCurrency reports whether rows carry their own currency and need a
	// real converter. Single-currency formats get rates.Identity.
	MultiCurrency() bool
	Sniff(text string) bool
	Parse(r io.Reader, conv rates.Converter) ([]model.Transaction, error)
}

// Registry holds named parsers.
type Registry struct {
	parsers map[string]Parser
	order   []string
}

// NewRegistry creates an empty parser registry.
func NewRegistry() *Registry {
	return &Registry{parsers: make(map[string]Parser)}
}

// Register adds a parser. Panics on duplicate format.
func (r *Registry) Register(p Parser) {
	key := strings.ToLower(p.Format())
	if _, ok := r.parsers[key]; ok {
		panic("duplicate parser format: " + key)
	}
	r.parsers[key] = p
	r.order = append(r.order, key)
}

// Get returns the parser for format, or nil.
func (r *Registry) Get(format string) Parser {
	return r.parsers[strings.ToLower(format)]
}

// Formats returns the registered format names in registration order.
func (r *Registry) Formats() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// Detect returns the first parser, in registration order, whose Sniff accepts
// data decoded with that parser's encoding.
func (r *Registry) Detect(data []byte) (Parser, error) {
	for _, key := range r.order {
		p := r.parsers[key]
		text, err := decodeString(data, p.Encoding())
		if err != nil {
			continue
		}
		if p.Sniff(text) {
			return p, nil
		}
	}
	return nil, ErrUnknownFormat
}

// DefaultRegistry returns a registry with all built-in parsers.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&WiseParser{})
	r.Register(NewOTPParser())
	return r
}

// Import decodes data with the parser's encoding, parses it and returns the
// transactions as a Batch. Any row error aborts the import; there is no
// partial result.
func Import(data []byte, p Parser, conv rates.Converter) (*model.Batch, error) {
	if !p.MultiCurrency() {
		conv = rates.Identity{}
	}

	r, err := Decode(data, p.Encoding())
	if err != nil {
		return nil, err
	}

	txns, err := p.Parse(r, conv)
	if err != nil {
		return nil, fmt.Errorf("importing %s statement: %w", p.Format(), err)
	}
	return model.NewBatch(p.Format(), txns), nil
}

// Decode returns a UTF-8 reader over data encoded as label. A UTF-8 byte
// order mark is dropped.
func Decode(data []byte, label string) (io.Reader, error) {
	enc, err := htmlindex.Get(label)
	if err != nil {
		return nil, fmt.Errorf("unknown encoding %q: %w", label, err)
	}

	var t transform.Transformer = enc.NewDecoder()
	if name, _ := htmlindex.Name(enc); name == "utf-8" {
		t = unicode.BOMOverride(unicode.UTF8.NewDecoder())
	}
	return transform.NewReader(bytes.NewReader(data), t), nil
}

func decodeString(data []byte, label string) (string, error) {
	r, err := Decode(data, label)
	if err != nil {
		return "", err
	}
	b, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("decoding %s: %w", label, err)
	}
	return string(b), nil
}

// rowReader is a csv.Reader that also notices blank lines, which
// encoding/csv skips silently. A blank line ends a statement body.
type rowReader struct {
	*csv.Reader
	raw bytes.Buffer
}

// newCSVReader accepts ragged rows; each format checks row width itself once
// it knows the row is a data row.
func newCSVReader(r io.Reader, comma rune) *rowReader {
	rr := &rowReader{}
	rr.Reader = csv.NewReader(io.TeeReader(r, &rr.raw))
	rr.Comma = comma
	rr.FieldsPerRecord = -1
	return rr
}

// ReadRow is Read that also reports whether blank lines were skipped before
// the returned record or error.
func (rr *rowReader) ReadRow() (rec []string, afterBlank bool, err error) {
	off := rr.InputOffset()
	rec, err = rr.Read()

	rest := rr.raw.Bytes()
	if off < int64(len(rest)) {
		rest = rest[off:]
		afterBlank = bytes.HasPrefix(rest, []byte("\n")) || bytes.HasPrefix(rest, []byte("\r\n"))
	}
	return rec, afterBlank, err
}

// readBody parses data rows until EOF, a blank line, or the first row whose
// leading field is empty. Rows after that marker are never parsed.
func readBody(rr *rowReader, format string, parseRow func([]string) (model.Transaction, error)) ([]model.Transaction, error) {
	var txns []model.Transaction
	for {
		rec, afterBlank, err := rr.ReadRow()
		if errors.Is(err, io.EOF) || afterBlank {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading %s CSV: %w", format, err)
		}
		if rec[0] == "" {
			break
		}

		line, _ := rr.FieldPos(0)
		txn, err := parseRow(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", line, err)
		}
		txns = append(txns, txn)
	}
	return txns, nil
}
