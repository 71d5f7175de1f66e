package infrastructure

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
)

type monthScope struct {
	userID   string
	monthKey string
}

// MemoryMonthlyRepository keeps everything in process. A failed WithinMonth
// call restores the state it started from.
type MemoryMonthlyRepository struct {
	mu           sync.Mutex
	transactions []domain.Transaction
	stats        map[monthScope]domain.MonthlyStats
	nextTxID     int64
	nextStatsID  int64
	now          func() time.Time
}

func NewMemoryMonthlyRepository() *MemoryMonthlyRepository {
	return &MemoryMonthlyRepository{
		stats: make(map[monthScope]domain.MonthlyStats),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (r *MemoryMonthlyRepository) WithinMonth(ctx context.Context, userID, monthKey string, fn func(domain.MonthWriter) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}

	savedTransactions := append([]domain.Transaction(nil), r.transactions...)
	savedStats := make(map[monthScope]domain.MonthlyStats, len(r.stats))
	for k, v := range r.stats {
		savedStats[k] = v
	}
	savedTxID, savedStatsID := r.nextTxID, r.nextStatsID

	writer := &memoryMonthWriter{repo: r, scope: monthScope{userID: userID, monthKey: monthKey}}
	if err := fn(writer); err != nil {
		r.transactions = savedTransactions
		r.stats = savedStats
		r.nextTxID, r.nextStatsID = savedTxID, savedStatsID
		return err
	}
	return nil
}

func (r *MemoryMonthlyRepository) ListStats(ctx context.Context, userID string) ([]domain.MonthlyStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	months := make([]domain.MonthlyStats, 0)
	for scope, stats := range r.stats {
		if scope.userID == userID {
			months = append(months, stats)
		}
	}
	sort.Slice(months, func(i, j int) bool {
		return months[i].MonthKey > months[j].MonthKey
	})
	return months, nil
}

func (r *MemoryMonthlyRepository) FindStats(ctx context.Context, userID, monthKey string) (*domain.MonthlyStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	stats, ok := r.stats[monthScope{userID: userID, monthKey: monthKey}]
	if !ok {
		return nil, financeErrors.ErrMonthNotFound
	}
	return &stats, nil
}

func (r *MemoryMonthlyRepository) FindTransactions(ctx context.Context, userID, monthKey string) ([]domain.Transaction, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	transactions := make([]domain.Transaction, 0)
	for _, transaction := range r.transactions {
		if transaction.UserID == userID && transaction.MonthKey == monthKey {
			transactions = append(transactions, transaction)
		}
	}
	sortTransactions(transactions)
	return transactions, nil
}

// sortTransactions orders newest date first, undated last, then by id.
func sortTransactions(transactions []domain.Transaction) {
	sort.SliceStable(transactions, func(i, j int) bool {
		a, b := transactions[i], transactions[j]
		switch {
		case a.Date == nil && b.Date == nil:
			return a.ID < b.ID
		case a.Date == nil:
			return false
		case b.Date == nil:
			return true
		case !a.Date.Equal(*b.Date):
			return a.Date.After(*b.Date)
		default:
			return a.ID < b.ID
		}
	})
}

// memoryMonthWriter runs with the repository lock held.
type memoryMonthWriter struct {
	repo  *MemoryMonthlyRepository
	scope monthScope
}

func (w *memoryMonthWriter) DeleteTransactions(ctx context.Context) (int64, error) {
	kept := w.repo.transactions[:0:0]
	var deleted int64
	for _, transaction := range w.repo.transactions {
		if transaction.UserID == w.scope.userID && transaction.MonthKey == w.scope.monthKey {
			deleted++
			continue
		}
		kept = append(kept, transaction)
	}
	w.repo.transactions = kept
	return deleted, nil
}

func (w *memoryMonthWriter) DeleteStats(ctx context.Context) (int64, error) {
	if _, ok := w.repo.stats[w.scope]; !ok {
		return 0, nil
	}
	delete(w.repo.stats, w.scope)
	return 1, nil
}

func (w *memoryMonthWriter) InsertTransaction(ctx context.Context, transaction *domain.Transaction) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	w.repo.nextTxID++
	transaction.ID = w.repo.nextTxID
	transaction.UserID = w.scope.userID
	transaction.MonthKey = w.scope.monthKey
	transaction.CreatedAt = w.repo.now()
	w.repo.transactions = append(w.repo.transactions, *transaction)
	return nil
}

func (w *memoryMonthWriter) InsertStats(ctx context.Context, stats *domain.MonthlyStats) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, exists := w.repo.stats[w.scope]; exists {
		return financeErrors.ErrDuplicateMonthStats
	}
	now := w.repo.now()
	w.repo.nextStatsID++
	stats.ID = w.repo.nextStatsID
	stats.UserID = w.scope.userID
	stats.MonthKey = w.scope.monthKey
	stats.CreatedAt = now
	stats.UpdatedAt = now
	w.repo.stats[w.scope] = *stats
	return nil
}
