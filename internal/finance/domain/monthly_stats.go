package domain

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
)

// Document is an untyped JSON object stored as-is.
type Document map[string]any

// DecodeDocument decodes a JSON object keeping numbers as json.Number.
func DecodeDocument(data []byte) (Document, bool) {
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.UseNumber()

	var doc Document
	if err := decoder.Decode(&doc); err != nil || doc == nil {
		return nil, false
	}
	return doc, true
}

type MonthlyStats struct {
	ID              int64           `json:"id"`
	UserID          string          `json:"user_id"`
	MonthKey        string          `json:"month_key"`
	TotalSpent      decimal.Decimal `json:"total_spent"`
	TotalIncome     decimal.Decimal `json:"total_income"`
	NumTransactions int             `json:"num_transactions"`
	StatsJSON       Document        `json:"stats_json"`
	UpdatedAt       time.Time       `json:"updated_at"`
	CreatedAt       time.Time       `json:"created_at"`
}

// StatsInput is the client-computed stats object sent with an upload.
type StatsInput struct {
	TotalSpent  Scalar
	TotalIncome Scalar

	statsJSON    json.RawMessage
	hasStatsJSON bool
	document     Document
	malformed    bool
}

// UnmarshalJSON never fails; a payload that is not an object is rejected by
// BuildMonthlyStats.
func (in *StatsInput) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		*in = StatsInput{}
		return nil
	}

	var fields map[string]json.RawMessage
	if trimmed[0] != '{' || json.Unmarshal(trimmed, &fields) != nil {
		*in = StatsInput{malformed: true}
		return nil
	}
	document, ok := DecodeDocument(trimmed)
	if !ok {
		*in = StatsInput{malformed: true}
		return nil
	}

	*in = StatsInput{document: document}
	if raw, ok := fields["total_spent"]; ok {
		_ = in.TotalSpent.UnmarshalJSON(raw)
	}
	if raw, ok := fields["total_income"]; ok {
		_ = in.TotalIncome.UnmarshalJSON(raw)
	}
	if raw, ok := fields["stats_json"]; ok {
		in.statsJSON = raw
		in.hasStatsJSON = true
	}
	return nil
}

// BuildMonthlyStats turns the payload into the month's stats row. The count
// is always the number of rows actually stored, never a client value.
func BuildMonthlyStats(userID, monthKey string, in StatsInput, numTransactions int) (MonthlyStats, error) {
	details := financeErrors.FieldErrors{}
	if in.malformed {
		details.Add("stats", "expected a JSON object")
		return MonthlyStats{}, financeErrors.NewStatsPayloadError(details)
	}

	stats := MonthlyStats{
		UserID:          userID,
		MonthKey:        monthKey,
		NumTransactions: numTransactions,
	}

	var err error
	if stats.TotalSpent, err = statsTotal(in.TotalSpent); err != nil {
		details.Add("total_spent", err.Error())
	}
	if stats.TotalIncome, err = statsTotal(in.TotalIncome); err != nil {
		details.Add("total_income", err.Error())
	}

	switch {
	case in.hasStatsJSON:
		nested, ok := DecodeDocument(in.statsJSON)
		if !ok {
			details.Add("stats_json", "expected a JSON object")
		}
		stats.StatsJSON = nested
	case in.document != nil:
		stats.StatsJSON = in.document
	default:
		stats.StatsJSON = Document{}
	}
	if containsNull(stats.StatsJSON) {
		details.Add("stats_json", nullCharacterMessage)
	}

	if !details.Empty() {
		return MonthlyStats{}, financeErrors.NewStatsPayloadError(details)
	}
	return stats, nil
}

// containsNull walks a decoded document for NUL in keys or strings, which
// jsonb rejects.
func containsNull(value any) bool {
	switch v := value.(type) {
	case string:
		return strings.ContainsRune(v, 0)
	case Document:
		return containsNull(map[string]any(v))
	case map[string]any:
		for key, item := range v {
			if strings.ContainsRune(key, 0) || containsNull(item) {
				return true
			}
		}
	case []any:
		for _, item := range v {
			if containsNull(item) {
				return true
			}
		}
	}
	return false
}

func statsTotal(value Scalar) (decimal.Decimal, error) {
	if !value.Present() {
		return decimal.Zero, nil
	}
	if !value.Usable() {
		return decimal.Zero, errInvalidNumber
	}
	return ParseAmount(value.String())
}
