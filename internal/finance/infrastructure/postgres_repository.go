package infrastructure

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/rs/zerolog"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
)

const uniqueViolation = "23505"

type PostgresMonthlyRepository struct {
	db  *sql.DB
	log zerolog.Logger
}

func NewPostgresMonthlyRepository(db *sql.DB, log zerolog.Logger) *PostgresMonthlyRepository {
	return &PostgresMonthlyRepository{db: db, log: log}
}

// WithinMonth runs fn in one transaction holding an advisory lock on
// (user, month), so concurrent replacements of the same month queue up.
func (r *PostgresMonthlyRepository) WithinMonth(ctx context.Context, userID, monthKey string, fn func(domain.MonthWriter) error) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}

	defer func() {
		if p := recover(); p != nil {
			r.safeRollback(tx)
			panic(p)
		} else if err != nil {
			r.safeRollback(tx)
		} else if commitErr := tx.Commit(); commitErr != nil {
			err = fmt.Errorf("failed to commit transaction: %w", commitErr)
		}
	}()

	if _, err = tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock(hashtext($1), hashtext($2))`, userID, monthKey); err != nil {
		return fmt.Errorf("failed to lock month: %w", err)
	}

	return fn(&postgresMonthWriter{tx: tx, userID: userID, monthKey: monthKey})
}

func (r *PostgresMonthlyRepository) safeRollback(tx *sql.Tx) {
	if err := tx.Rollback(); err != nil && !errors.Is(err, sql.ErrTxDone) {
		r.log.Error().Err(err).Msg("Error during transaction rollback")
	}
}

func (r *PostgresMonthlyRepository) ListStats(ctx context.Context, userID string) ([]domain.MonthlyStats, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, month_key, total_spent, total_income, num_transactions, stats_json, updated_at, created_at
		FROM monthly_stats
		WHERE user_id = $1
		ORDER BY month_key DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list monthly stats: %w", err)
	}
	defer rows.Close()

	months := make([]domain.MonthlyStats, 0)
	for rows.Next() {
		stats, err := scanStats(rows)
		if err != nil {
			return nil, err
		}
		months = append(months, *stats)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate monthly stats: %w", err)
	}
	return months, nil
}

func (r *PostgresMonthlyRepository) FindStats(ctx context.Context, userID, monthKey string) (*domain.MonthlyStats, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, user_id, month_key, total_spent, total_income, num_transactions, stats_json, updated_at, created_at
		FROM monthly_stats
		WHERE user_id = $1 AND month_key = $2`, userID, monthKey)

	stats, err := scanStats(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, financeErrors.ErrMonthNotFound
	}
	return stats, err
}

func (r *PostgresMonthlyRepository) FindTransactions(ctx context.Context, userID, monthKey string) ([]domain.Transaction, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, date, transaction_id, sender, receiver, category, amount, type, description, month_key, created_at
		FROM transactions
		WHERE user_id = $1 AND month_key = $2
		ORDER BY date DESC NULLS LAST, id`, userID, monthKey)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	transactions := make([]domain.Transaction, 0)
	for rows.Next() {
		var (
			transaction domain.Transaction
			date        sql.NullTime
			kind        string
		)
		if err := rows.Scan(&transaction.ID, &transaction.UserID, &date, &transaction.TransactionID, &transaction.Sender,
			&transaction.Receiver, &transaction.Category, &transaction.Amount, &kind, &transaction.Description,
			&transaction.MonthKey, &transaction.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		if date.Valid {
			d := date.Time
			transaction.Date = &d
		}
		transaction.Kind = domain.Kind(kind)
		transactions = append(transactions, transaction)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate transactions: %w", err)
	}
	return transactions, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStats(row rowScanner) (*domain.MonthlyStats, error) {
	var (
		stats domain.MonthlyStats
		raw   []byte
	)
	if err := row.Scan(&stats.ID, &stats.UserID, &stats.MonthKey, &stats.TotalSpent, &stats.TotalIncome,
		&stats.NumTransactions, &raw, &stats.UpdatedAt, &stats.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan monthly stats: %w", err)
	}

	document, ok := domain.DecodeDocument(raw)
	if !ok {
		document = domain.Document{}
	}
	stats.StatsJSON = document
	return &stats, nil
}

type postgresMonthWriter struct {
	tx       *sql.Tx
	userID   string
	monthKey string
}

func (w *postgresMonthWriter) DeleteTransactions(ctx context.Context) (int64, error) {
	result, err := w.tx.ExecContext(ctx, `DELETE FROM transactions WHERE user_id = $1 AND month_key = $2`, w.userID, w.monthKey)
	if err != nil {
		return 0, fmt.Errorf("failed to delete transactions: %w", err)
	}
	return result.RowsAffected()
}

func (w *postgresMonthWriter) DeleteStats(ctx context.Context) (int64, error) {
	result, err := w.tx.ExecContext(ctx, `DELETE FROM monthly_stats WHERE user_id = $1 AND month_key = $2`, w.userID, w.monthKey)
	if err != nil {
		return 0, fmt.Errorf("failed to delete monthly stats: %w", err)
	}
	return result.RowsAffected()
}

func (w *postgresMonthWriter) InsertTransaction(ctx context.Context, transaction *domain.Transaction) error {
	transaction.UserID = w.userID
	transaction.MonthKey = w.monthKey

	err := w.tx.QueryRowContext(ctx, `
		INSERT INTO transactions (user_id, date, transaction_id, sender, receiver, category, amount, type, description, month_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING id, created_at`,
		transaction.UserID, transaction.Date, transaction.TransactionID, transaction.Sender, transaction.Receiver,
		transaction.Category, transaction.Amount, string(transaction.Kind), transaction.Description, transaction.MonthKey,
	).Scan(&transaction.ID, &transaction.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

func (w *postgresMonthWriter) InsertStats(ctx context.Context, stats *domain.MonthlyStats) error {
	stats.UserID = w.userID
	stats.MonthKey = w.monthKey

	document := stats.StatsJSON
	if document == nil {
		document = domain.Document{}
	}
	raw, err := json.Marshal(document)
	if err != nil {
		return fmt.Errorf("failed to encode stats_json: %w", err)
	}

	err = w.tx.QueryRowContext(ctx, `
		INSERT INTO monthly_stats (user_id, month_key, total_spent, total_income, num_transactions, stats_json)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, updated_at, created_at`,
		stats.UserID, stats.MonthKey, stats.TotalSpent, stats.TotalIncome, stats.NumTransactions, string(raw),
	).Scan(&stats.ID, &stats.UpdatedAt, &stats.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return financeErrors.ErrDuplicateMonthStats
		}
		return fmt.Errorf("failed to insert monthly stats: %w", err)
	}
	return nil
}
