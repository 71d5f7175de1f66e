package application

import (
	"context"
	"log"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
)

type MonthlyQueryService struct {
	repo     domain.MonthlyRepository
	cache    MonthCache
	notifier *monthNotifier
	log      zerolog.Logger
}

func NewMonthlyQueryService(repo domain.MonthlyRepository, cache MonthCache, events MonthEventPublisher, logger zerolog.Logger) *MonthlyQueryService {
	if repo == nil {
		log.Fatal("monthly repository cannot be nil")
	}
	return &MonthlyQueryService{
		repo:     repo,
		cache:    cache,
		notifier: newMonthNotifier(cache, events),
		log:      logger,
	}
}

// ListMonths returns every stats row of the user, newest month first.
func (s *MonthlyQueryService) ListMonths(ctx context.Context, userID string) ([]domain.MonthlyStats, error) {
	generation, cached := s.cacheGeneration(ctx, userID)
	if cached {
		if months, ok := s.cache.GetMonths(ctx, userID, generation); ok {
			return months, nil
		}
	}

	months, err := s.repo.ListStats(ctx, userID)
	if err != nil {
		return nil, err
	}
	if months == nil {
		months = []domain.MonthlyStats{}
	}

	if cached {
		s.cache.SetMonths(ctx, userID, generation, months)
	}
	return months, nil
}

// GetMonth returns the stats row and the transactions of one month, or
// ErrMonthNotFound when the month has no stats row.
func (s *MonthlyQueryService) GetMonth(ctx context.Context, userID, monthKey string) (*domain.MonthDetail, error) {
	if domain.ValidateMonthKey(monthKey) != nil {
		return nil, financeErrors.ErrMonthNotFound
	}

	generation, cached := s.cacheGeneration(ctx, userID)
	if cached {
		if detail, ok := s.cache.GetMonth(ctx, userID, monthKey, generation); ok {
			return detail, nil
		}
	}

	var (
		stats        *domain.MonthlyStats
		transactions []domain.Transaction
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		stats, err = s.repo.FindStats(gctx, userID, monthKey)
		return err
	})
	g.Go(func() error {
		var err error
		transactions, err = s.repo.FindTransactions(gctx, userID, monthKey)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if transactions == nil {
		transactions = []domain.Transaction{}
	}
	detail := &domain.MonthDetail{Stats: *stats, Transactions: transactions}

	if cached {
		s.cache.SetMonth(ctx, userID, monthKey, generation, detail)
	}
	return detail, nil
}

// cacheGeneration must run before the store is read.
func (s *MonthlyQueryService) cacheGeneration(ctx context.Context, userID string) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	return s.cache.Generation(ctx, userID)
}

// DeleteMonth removes both row sets of the month. Deleting a month that was
// never stored succeeds with zero counts.
func (s *MonthlyQueryService) DeleteMonth(ctx context.Context, userID, monthKey string) (*domain.DeleteResult, error) {
	result := &domain.DeleteResult{MonthKey: monthKey}
	// nothing can be stored under a malformed key
	if domain.ValidateMonthKey(monthKey) != nil {
		return result, nil
	}

	err := s.repo.WithinMonth(ctx, userID, monthKey, func(w domain.MonthWriter) error {
		var err error
		if result.TransactionsDeleted, err = w.DeleteTransactions(ctx); err != nil {
			return err
		}
		result.StatsDeleted, err = w.DeleteStats(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}

	logger := s.log.With().Str("user_id", userID).Str("month_key", monthKey).Logger()
	s.notifier.invalidate(ctx, userID, monthKey)
	if result.TransactionsDeleted > 0 || result.StatsDeleted > 0 {
		s.notifier.publish(ctx, logger, domain.MonthEvent{
			Type:                domain.MonthDeleted,
			UserID:              userID,
			MonthKey:            monthKey,
			TransactionsDeleted: result.TransactionsDeleted,
			StatsDeleted:        result.StatsDeleted,
		})
	}

	logger.Info().
		Int64("transactions_deleted", result.TransactionsDeleted).
		Int64("stats_deleted", result.StatsDeleted).
		Msg("Month deleted")
	return result, nil
}
