package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedgerAmount(t *testing.T) {
	txn := Transaction{Amount: decimal.RequireFromString("-20")}
	assert.True(t, txn.LedgerAmount().Equal(decimal.RequireFromString("-20")))
	assert.True(t, txn.IsOutflow())

	txn.ConvertedAmount = decimal.NewNullDecimal(decimal.RequireFromString("-7000"))
	assert.True(t, txn.LedgerAmount().Equal(decimal.RequireFromString("-7000")))
}

func TestIsOutflow_ZeroIsInflow(t *testing.T) {
	txn := Transaction{Amount: decimal.Zero}
	assert.False(t, txn.IsOutflow())
}

func TestNewBatch_CopiesInput(t *testing.T) {
	txns := []Transaction{
		{ID: "1", Memo: "first"},
		{ID: "2", Memo: "second"},
	}
	b := NewBatch("wise", txns)
	txns[0].Memo = "changed"

	got := b.Transactions()
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].Memo)
	assert.Equal(t, "wise", b.Format())
	assert.Equal(t, 2, b.Len())

	got[1].Memo = "changed too"
	assert.Equal(t, "second", b.Transactions()[1].Memo)
}

func TestNewBatch_UniqueIDs(t *testing.T) {
	a := NewBatch("otp", nil)
	b := NewBatch("otp", nil)
	assert.NotEqual(t, a.ID(), b.ID())
	assert.Equal(t, 0, a.Len())
	assert.False(t, a.ImportedAt().IsZero())
}
