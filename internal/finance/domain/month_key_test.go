package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
)

func TestValidateMonthKey(t *testing.T) {
	assert.NoError(t, ValidateMonthKey("2024-03"))
	assert.NoError(t, ValidateMonthKey("1999-12"))

	for _, key := range []string{"", "2024-3", "2024-13", "2024/03", "24-03", "2024-03-01", "march"} {
		assert.ErrorIs(t, ValidateMonthKey(key), financeErrors.ErrInvalidMonthKey, key)
	}
}

func TestResolveMonthKey(t *testing.T) {
	dated := []TransactionInput{{Date: Text("2024-02-29")}, {Date: Text("2024-03-01")}}

	t.Run("hint wins over dates", func(t *testing.T) {
		key, err := ResolveMonthKey("2024-03", dated)
		assert.NoError(t, err)
		assert.Equal(t, "2024-03", key)
	})

	t.Run("derived from first entry", func(t *testing.T) {
		key, err := ResolveMonthKey("", dated)
		assert.NoError(t, err)
		assert.Equal(t, "2024-02", key)
	})

	t.Run("invalid hint", func(t *testing.T) {
		_, err := ResolveMonthKey("03-2024", dated)
		assert.ErrorIs(t, err, financeErrors.ErrInvalidMonthKey)
	})

	t.Run("no hint and no entries", func(t *testing.T) {
		_, err := ResolveMonthKey("", nil)
		assert.ErrorIs(t, err, financeErrors.ErrMissingMonthKey)
	})

	t.Run("first entry undated", func(t *testing.T) {
		_, err := ResolveMonthKey("  ", []TransactionInput{{}, {Date: Text("2024-03-01")}})
		assert.True(t, errors.Is(err, financeErrors.ErrMissingMonthKey))
	})

	t.Run("first entry date unparseable", func(t *testing.T) {
		_, err := ResolveMonthKey("", []TransactionInput{{Date: Text("yesterday")}})
		assert.ErrorIs(t, err, financeErrors.ErrMissingMonthKey)
	})
}
