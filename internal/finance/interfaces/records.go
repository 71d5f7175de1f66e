package interfaces

import (
	"time"

	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
)

type MonthlyStatsRecord struct {
	ID              int64           `json:"id"`
	MonthKey        string          `json:"month_key"`
	TotalSpent      string          `json:"total_spent"`
	TotalIncome     string          `json:"total_income"`
	NumTransactions int             `json:"num_transactions"`
	StatsJSON       domain.Document `json:"stats_json"`
	UpdatedAt       time.Time       `json:"updated_at"`
	CreatedAt       time.Time       `json:"created_at"`
}

type TransactionRecord struct {
	ID            int64     `json:"id"`
	Date          *string   `json:"date"`
	TransactionID string    `json:"transaction_id"`
	Sender        string    `json:"sender"`
	Receiver      string    `json:"receiver"`
	Category      string    `json:"category"`
	Amount        string    `json:"amount"`
	Type          string    `json:"type"`
	Description   string    `json:"description"`
	MonthKey      string    `json:"month_key"`
	CreatedAt     time.Time `json:"created_at"`
}

type uploadMonthRequest struct {
	MonthKey     string                    `json:"month_key"`
	Transactions []domain.TransactionInput `json:"transactions"`
	Stats        domain.StatsInput         `json:"stats"`
}

type uploadMonthResponse struct {
	Message            string             `json:"message"`
	MonthKey           string             `json:"month_key"`
	TransactionsSaved  int                `json:"transactions_saved"`
	TransactionsFailed int                `json:"transactions_failed"`
	Stats              MonthlyStatsRecord `json:"stats"`
}

type monthDetailResponse struct {
	Stats        MonthlyStatsRecord  `json:"stats"`
	Transactions []TransactionRecord `json:"transactions"`
}

type deleteMonthResponse struct {
	Message             string `json:"message"`
	TransactionsDeleted int64  `json:"transactions_deleted"`
	StatsDeleted        int64  `json:"stats_deleted"`
}

func toStatsRecord(stats domain.MonthlyStats) MonthlyStatsRecord {
	document := stats.StatsJSON
	if document == nil {
		document = domain.Document{}
	}
	return MonthlyStatsRecord{
		ID:              stats.ID,
		MonthKey:        stats.MonthKey,
		TotalSpent:      domain.FormatAmount(stats.TotalSpent),
		TotalIncome:     domain.FormatAmount(stats.TotalIncome),
		NumTransactions: stats.NumTransactions,
		StatsJSON:       document,
		UpdatedAt:       stats.UpdatedAt,
		CreatedAt:       stats.CreatedAt,
	}
}

func toStatsRecords(months []domain.MonthlyStats) []MonthlyStatsRecord {
	records := make([]MonthlyStatsRecord, len(months))
	for i, stats := range months {
		records[i] = toStatsRecord(stats)
	}
	return records
}

func toTransactionRecord(transaction domain.Transaction) TransactionRecord {
	record := TransactionRecord{
		ID:            transaction.ID,
		TransactionID: transaction.TransactionID,
		Sender:        transaction.Sender,
		Receiver:      transaction.Receiver,
		Category:      transaction.Category,
		Amount:        domain.FormatAmount(transaction.Amount),
		Type:          string(transaction.Kind),
		Description:   transaction.Description,
		MonthKey:      transaction.MonthKey,
		CreatedAt:     transaction.CreatedAt,
	}
	if transaction.Date != nil {
		date := transaction.Date.Format(domain.DateLayout)
		record.Date = &date
	}
	return record
}

func toTransactionRecords(transactions []domain.Transaction) []TransactionRecord {
	records := make([]TransactionRecord, len(transactions))
	for i, transaction := range transactions {
		records[i] = toTransactionRecord(transaction)
	}
	return records
}
