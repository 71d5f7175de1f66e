package application

import (
	"context"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
)

// MonthCache is an optional read cache for the query side. Implementations
// swallow their own errors.
//
// Entries live under a per-user generation. Readers take the generation
// before touching the store and fill under it; Invalidate moves the user to
// a new generation, so a fill computed from pre-commit data is never served
// after the commit.
type MonthCache interface {
	// Generation reports false when the cache is unreachable; callers then
	// bypass it for the whole call.
	Generation(ctx context.Context, userID string) (int64, bool)
	GetMonths(ctx context.Context, userID string, generation int64) ([]domain.MonthlyStats, bool)
	SetMonths(ctx context.Context, userID string, generation int64, months []domain.MonthlyStats)
	GetMonth(ctx context.Context, userID, monthKey string, generation int64) (*domain.MonthDetail, bool)
	SetMonth(ctx context.Context, userID, monthKey string, generation int64, detail *domain.MonthDetail)
	Invalidate(ctx context.Context, userID, monthKey string)
}

// MonthEventPublisher is optional; a publish failure never fails the request.
type MonthEventPublisher interface {
	PublishMonthEvent(ctx context.Context, event domain.MonthEvent) error
}
