package application

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/rs/zerolog"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
)

type MonthlyUploadService struct {
	repo     domain.MonthlyRepository
	notifier *monthNotifier
	log      zerolog.Logger
}

// NewMonthlyUploadService wires the upload workflow. cache and events may be nil.
func NewMonthlyUploadService(repo domain.MonthlyRepository, cache MonthCache, events MonthEventPublisher, logger zerolog.Logger) *MonthlyUploadService {
	if repo == nil {
		log.Fatal("monthly repository cannot be nil")
	}
	return &MonthlyUploadService{
		repo:     repo,
		notifier: newMonthNotifier(cache, events),
		log:      logger,
	}
}

// UploadMonth replaces everything stored for one (user, month) with the given
// batch. Invalid entries are skipped and counted; the stored count is the
// number of rows actually inserted. Any error leaves the previous month intact.
func (s *MonthlyUploadService) UploadMonth(ctx context.Context, userID, monthKeyHint string, entries []domain.TransactionInput, statsPayload domain.StatsInput) (*domain.UploadResult, error) {
	monthKey, err := domain.ResolveMonthKey(monthKeyHint, entries)
	if err != nil {
		return nil, err
	}

	logger := s.log.With().Str("user_id", userID).Str("month_key", monthKey).Logger()

	var (
		accepted int
		failures = &financeErrors.ValidationErrors{}
		saved    domain.MonthlyStats
	)
	err = s.repo.WithinMonth(ctx, userID, monthKey, func(w domain.MonthWriter) error {
		accepted = 0
		failures.Errors = nil

		if _, err := w.DeleteTransactions(ctx); err != nil {
			return err
		}
		if _, err := w.DeleteStats(ctx); err != nil {
			return err
		}

		for i, entry := range entries {
			transaction, err := entry.ToTransaction(userID, monthKey)
			if err != nil {
				failures.Add(financeErrors.NewIndexedValidationError(i+1, err.Error()))
				continue
			}
			if err := w.InsertTransaction(ctx, &transaction); err != nil {
				return fmt.Errorf("database error at transaction %d: %w", i+1, err)
			}
			accepted++
		}

		stats, err := domain.BuildMonthlyStats(userID, monthKey, statsPayload, accepted)
		if err != nil {
			return err
		}
		if err := w.InsertStats(ctx, &stats); err != nil {
			return err
		}
		saved = stats
		return nil
	})

	if err != nil {
		if errors.Is(err, financeErrors.ErrInvalidStatsPayload) {
			logger.Warn().Err(err).Msg("Upload rejected, previous month data kept")
		} else {
			logger.Error().Err(err).Msg("Upload failed, previous month data kept")
		}
		return nil, err
	}

	s.notifier.invalidate(ctx, userID, monthKey)

	result := &domain.UploadResult{
		MonthKey: monthKey,
		Accepted: accepted,
		Failed:   failures.Len(),
		Stats:    saved,
	}

	s.notifier.publish(ctx, logger, domain.MonthEvent{
		Type:               domain.MonthReplaced,
		UserID:             userID,
		MonthKey:           monthKey,
		TransactionsSaved:  result.Accepted,
		TransactionsFailed: result.Failed,
	})

	summary := logger.Info().Int("saved", result.Accepted).Int("failed", result.Failed)
	if failures.Len() > 0 {
		summary = summary.Strs("failures", failures.Messages())
	}
	summary.Msg("Month uploaded")
	return result, nil
}
