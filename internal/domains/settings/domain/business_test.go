package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestBusinessValidate(t *testing.T) {
	assert.NoError(t, Default("Stand", decimal.RequireFromString("8.25")).Validate())
	assert.NoError(t, Default("Stand", decimal.Zero).Validate())
	assert.NoError(t, Default("Stand", decimal.NewFromInt(100)).Validate())
	assert.ErrorIs(t, Default(" ", decimal.NewFromInt(8)).Validate(), ErrEmptyBusinessName)
	assert.ErrorIs(t, Default("Stand", decimal.NewFromInt(-1)).Validate(), ErrInvalidTaxRate)
	assert.ErrorIs(t, Default("Stand", decimal.RequireFromString("100.01")).Validate(), ErrInvalidTaxRate)
}
