package application

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
)

// monthNotifier runs the post-commit side effects of a month change.
type monthNotifier struct {
	cache  MonthCache
	events MonthEventPublisher
	now    func() time.Time
}

func newMonthNotifier(cache MonthCache, events MonthEventPublisher) *monthNotifier {
	return &monthNotifier{
		cache:  cache,
		events: events,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (n *monthNotifier) invalidate(ctx context.Context, userID, monthKey string) {
	if n.cache != nil {
		n.cache.Invalidate(ctx, userID, monthKey)
	}
}

func (n *monthNotifier) publish(ctx context.Context, logger zerolog.Logger, event domain.MonthEvent) {
	if n.events == nil {
		return
	}
	event.ID = uuid.NewString()
	event.OccurredAt = n.now()
	if err := n.events.PublishMonthEvent(ctx, event); err != nil {
		logger.Warn().Err(err).Str("event", string(event.Type)).Msg("Publishing month event failed")
	}
}
