package interfaces

import (
	"context"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
)

type MockMonthlyUploadService struct {
	UploadMonthFunc func(ctx context.Context, userID, monthKeyHint string, entries []domain.TransactionInput, stats domain.StatsInput) (*domain.UploadResult, error)

	CalledWithUser  string
	CalledWithHint  string
	CalledWithCount int
}

func (m *MockMonthlyUploadService) UploadMonth(ctx context.Context, userID, monthKeyHint string, entries []domain.TransactionInput, stats domain.StatsInput) (*domain.UploadResult, error) {
	m.CalledWithUser = userID
	m.CalledWithHint = monthKeyHint
	m.CalledWithCount = len(entries)
	return m.UploadMonthFunc(ctx, userID, monthKeyHint, entries, stats)
}

type MockMonthlyQueryService struct {
	ListMonthsFunc  func(ctx context.Context, userID string) ([]domain.MonthlyStats, error)
	GetMonthFunc    func(ctx context.Context, userID, monthKey string) (*domain.MonthDetail, error)
	DeleteMonthFunc func(ctx context.Context, userID, monthKey string) (*domain.DeleteResult, error)
}

func (m *MockMonthlyQueryService) ListMonths(ctx context.Context, userID string) ([]domain.MonthlyStats, error) {
	return m.ListMonthsFunc(ctx, userID)
}

func (m *MockMonthlyQueryService) GetMonth(ctx context.Context, userID, monthKey string) (*domain.MonthDetail, error) {
	return m.GetMonthFunc(ctx, userID, monthKey)
}

func (m *MockMonthlyQueryService) DeleteMonth(ctx context.Context, userID, monthKey string) (*domain.DeleteResult, error) {
	return m.DeleteMonthFunc(ctx, userID, monthKey)
}
