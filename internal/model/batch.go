package model

import (
	"time"

	"github.com/google/uuid"
)

// Batch is the result of importing one statement file. It is built once and
// only read afterwards; a new import produces a new Batch.
type Batch struct {
	id           uuid.UUID
	format       string
	importedAt   time.Time
	transactions []Transaction
}

// NewBatch copies txns into a new Batch.
func NewBatch(format string, txns []Transaction) *Batch {
	owned := make([]Transaction, len(txns))
	copy(owned, txns)
	return &Batch{
		id:           uuid.New(),
		format:       format,
		importedAt:   time.Now().UTC(),
		transactions: owned,
	}
}

// ID identifies the batch in logs.
func (b *Batch) ID() uuid.UUID { return b.id }

// Format returns the statement format the batch was parsed from.
func (b *Batch) Format() string { return b.format }

// ImportedAt returns when the batch was built.
func (b *Batch) ImportedAt() time.Time { return b.importedAt }

// Len returns the number of transactions.
func (b *Batch) Len() int { return len(b.transactions) }

// Transactions returns the transactions in statement order. The returned
// slice is a copy.
func (b *Batch) Transactions() []Transaction {
	out := make([]Transaction, len(b.transactions))
	copy(out, b.transactions)
	return out
}
