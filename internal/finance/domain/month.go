package domain

import (
	"context"
	"time"
)

// MonthWriter mutates a single (user, month) scope inside one store
// transaction. Returned counts are affected rows.
type MonthWriter interface {
	DeleteTransactions(ctx context.Context) (int64, error)
	DeleteStats(ctx context.Context) (int64, error)
	InsertTransaction(ctx context.Context, transaction *Transaction) error
	InsertStats(ctx context.Context, stats *MonthlyStats) error
}

// MonthlyRepository stores transactions and monthly stats per user and month.
// WithinMonth commits when fn returns nil and rolls back otherwise; calls for
// the same (user, month) are serialised.
type MonthlyRepository interface {
	WithinMonth(ctx context.Context, userID, monthKey string, fn func(MonthWriter) error) error
	ListStats(ctx context.Context, userID string) ([]MonthlyStats, error)
	FindStats(ctx context.Context, userID, monthKey string) (*MonthlyStats, error)
	FindTransactions(ctx context.Context, userID, monthKey string) ([]Transaction, error)
}

type UploadResult struct {
	MonthKey string
	Accepted int
	Failed   int
	Stats    MonthlyStats
}

type MonthDetail struct {
	Stats        MonthlyStats  `json:"stats"`
	Transactions []Transaction `json:"transactions"`
}

type DeleteResult struct {
	MonthKey            string
	TransactionsDeleted int64
	StatsDeleted        int64
}

type MonthEventType string

const (
	MonthReplaced MonthEventType = "month.replaced"
	MonthDeleted  MonthEventType = "month.deleted"
)

// MonthEvent is announced after a month was replaced or deleted.
type MonthEvent struct {
	ID                  string         `json:"id"`
	Type                MonthEventType `json:"type"`
	UserID              string         `json:"user_id"`
	MonthKey            string         `json:"month_key"`
	TransactionsSaved   int            `json:"transactions_saved,omitempty"`
	TransactionsFailed  int            `json:"transactions_failed,omitempty"`
	TransactionsDeleted int64          `json:"transactions_deleted,omitempty"`
	StatsDeleted        int64          `json:"stats_deleted,omitempty"`
	OccurredAt          time.Time      `json:"occurred_at"`
}
