package infrastructure

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
)

func datePtr(s string) *time.Time {
	d, _ := time.Parse(domain.DateLayout, s)
	return &d
}

func seedMonth(t *testing.T, repo domain.MonthlyRepository, userID, monthKey string, transactions ...domain.Transaction) {
	t.Helper()
	err := repo.WithinMonth(context.Background(), userID, monthKey, func(w domain.MonthWriter) error {
		ctx := context.Background()
		if _, err := w.DeleteTransactions(ctx); err != nil {
			return err
		}
		if _, err := w.DeleteStats(ctx); err != nil {
			return err
		}
		for i := range transactions {
			if err := w.InsertTransaction(ctx, &transactions[i]); err != nil {
				return err
			}
		}
		return w.InsertStats(ctx, &domain.MonthlyStats{
			TotalSpent:      decimal.RequireFromString("10.00"),
			NumTransactions: len(transactions),
			StatsJSON:       domain.Document{"source": "test"},
		})
	})
	require.NoError(t, err)
}

func TestMemoryRepository_WithinMonthRollsBack(t *testing.T) {
	repo := NewMemoryMonthlyRepository()
	seedMonth(t, repo, "u1", "2024-03", domain.Transaction{TransactionID: "t1", Kind: domain.KindDebit})

	boom := errors.New("boom")
	err := repo.WithinMonth(context.Background(), "u1", "2024-03", func(w domain.MonthWriter) error {
		deleted, err := w.DeleteTransactions(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(1), deleted)
		require.NoError(t, w.InsertTransaction(context.Background(), &domain.Transaction{TransactionID: "t2"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	transactions, err := repo.FindTransactions(context.Background(), "u1", "2024-03")
	require.NoError(t, err)
	require.Len(t, transactions, 1)
	assert.Equal(t, "t1", transactions[0].TransactionID)
	assert.Equal(t, int64(1), transactions[0].ID)
}

func TestMemoryRepository_DuplicateStats(t *testing.T) {
	repo := NewMemoryMonthlyRepository()
	seedMonth(t, repo, "u1", "2024-03")

	err := repo.WithinMonth(context.Background(), "u1", "2024-03", func(w domain.MonthWriter) error {
		return w.InsertStats(context.Background(), &domain.MonthlyStats{})
	})
	assert.ErrorIs(t, err, financeErrors.ErrDuplicateMonthStats)
}

func TestMemoryRepository_OrderingAndScope(t *testing.T) {
	repo := NewMemoryMonthlyRepository()
	seedMonth(t, repo, "u1", "2024-03",
		domain.Transaction{TransactionID: "undated"},
		domain.Transaction{TransactionID: "early", Date: datePtr("2024-03-01")},
		domain.Transaction{TransactionID: "late", Date: datePtr("2024-03-20")},
		domain.Transaction{TransactionID: "late-2", Date: datePtr("2024-03-20")},
	)
	seedMonth(t, repo, "u1", "2024-01")
	seedMonth(t, repo, "u2", "2024-03", domain.Transaction{TransactionID: "other"})

	transactions, err := repo.FindTransactions(context.Background(), "u1", "2024-03")
	require.NoError(t, err)
	var ids []string
	for _, transaction := range transactions {
		ids = append(ids, transaction.TransactionID)
		assert.Equal(t, "u1", transaction.UserID)
		assert.Equal(t, "2024-03", transaction.MonthKey)
	}
	assert.Equal(t, []string{"late", "late-2", "early", "undated"}, ids)

	months, err := repo.ListStats(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, months, 2)
	assert.Equal(t, "2024-03", months[0].MonthKey)
	assert.Equal(t, "2024-01", months[1].MonthKey)

	months, err = repo.ListStats(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, months)
	assert.Empty(t, months)

	_, err = repo.FindStats(context.Background(), "u2", "2024-01")
	assert.ErrorIs(t, err, financeErrors.ErrMonthNotFound)
}

func TestMemoryRepository_CancelledContext(t *testing.T) {
	repo := NewMemoryMonthlyRepository()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := repo.WithinMonth(ctx, "u1", "2024-03", func(w domain.MonthWriter) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
