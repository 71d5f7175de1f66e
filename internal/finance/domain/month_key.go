package domain

import (
	"fmt"
	"strings"
	"time"

	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
)

const (
	MonthKeyLayout = "2006-01"
	DateLayout     = "2006-01-02"
)

// ValidateMonthKey checks the canonical "YYYY-MM" form.
func ValidateMonthKey(monthKey string) error {
	if len(monthKey) != len(MonthKeyLayout) {
		return financeErrors.ErrInvalidMonthKey
	}
	if _, err := time.Parse(MonthKeyLayout, monthKey); err != nil {
		return financeErrors.ErrInvalidMonthKey
	}
	return nil
}

// ResolveMonthKey picks the month a batch belongs to: the explicit hint when
// given, otherwise the month of the first entry's date.
func ResolveMonthKey(hint string, entries []TransactionInput) (string, error) {
	hint = strings.TrimSpace(hint)
	if hint != "" {
		if err := ValidateMonthKey(hint); err != nil {
			return "", err
		}
		return hint, nil
	}

	if len(entries) == 0 {
		return "", financeErrors.ErrMissingMonthKey
	}

	first := entries[0]
	if first.malformed || first.Date.Blank() || !first.Date.Usable() {
		return "", fmt.Errorf("%w: first transaction has no date to derive it from", financeErrors.ErrMissingMonthKey)
	}
	date, err := time.Parse(DateLayout, first.Date.String())
	if err != nil {
		return "", fmt.Errorf("%w: first transaction date %q is not YYYY-MM-DD", financeErrors.ErrMissingMonthKey, first.Date.String())
	}
	return date.Format(MonthKeyLayout), nil
}
