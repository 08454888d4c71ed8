package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestIsSavingsToSavings(t *testing.T) {
	instruction := &StandingInstruction{
		FromAccountKind: AccountKindSavings,
		ToAccountKind:   AccountKindSavings,
	}
	assert.True(t, instruction.IsSavingsToSavings())

	instruction.ToAccountKind = AccountKind("LOAN")
	assert.False(t, instruction.IsSavingsToSavings())

	instruction.FromAccountKind = AccountKind("LOAN")
	instruction.ToAccountKind = AccountKindSavings
	assert.False(t, instruction.IsSavingsToSavings())
}

func TestHasTransferableAmount(t *testing.T) {
	instruction := &StandingInstruction{Amount: decimal.NewFromInt(100)}
	assert.True(t, instruction.HasTransferableAmount())

	instruction.Amount = decimal.Zero
	assert.False(t, instruction.HasTransferableAmount())

	instruction.Amount = decimal.NewFromInt(-5)
	assert.False(t, instruction.HasTransferableAmount())

	// zero-valued decimal, the closest thing to an absent amount
	instruction.Amount = decimal.Decimal{}
	assert.False(t, instruction.HasTransferableAmount())
}
