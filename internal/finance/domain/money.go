package domain

import (
	"errors"
	"fmt"
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// Amounts are stored as NUMERIC(12,2).
const (
	AmountMaxDigits     = 12
	AmountDecimalPlaces = 2
)

var errInvalidNumber = errors.New("a valid number is required")

// ParseAmount parses a decimal string and enforces the storage precision.
// Values with more fractional digits than the column holds are rejected,
// not rounded.
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, errInvalidNumber
	}

	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errInvalidNumber
	}

	digits := len(new(big.Int).Abs(amount.Coefficient()).String())
	exponent := int(amount.Exponent())

	decimals, whole := 0, digits
	switch {
	case exponent >= 0:
		whole = digits + exponent
	case digits > -exponent:
		decimals = -exponent
		whole = digits - decimals
	default:
		decimals = -exponent
		whole = 0
	}

	if decimals > AmountDecimalPlaces {
		return decimal.Zero, fmt.Errorf("ensure that there are no more than %d decimal places", AmountDecimalPlaces)
	}
	if whole > AmountMaxDigits-AmountDecimalPlaces {
		return decimal.Zero, fmt.Errorf("ensure that there are no more than %d digits before the decimal point", AmountMaxDigits-AmountDecimalPlaces)
	}
	return amount, nil
}

// FormatAmount renders an amount with the fixed storage precision.
func FormatAmount(amount decimal.Decimal) string {
	return amount.StringFixed(AmountDecimalPlaces)
}
