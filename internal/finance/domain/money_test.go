package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAmount(t *testing.T) {
	valid := map[string]string{
		"12.50":          "12.50",
		"12.5":           "12.50",
		"-3":             "-3.00",
		"0.01":           "0.01",
		"9999999999.99":  "9999999999.99",
		"-9999999999.99": "-9999999999.99",
		" 7 ":            "7.00",
	}
	for raw, want := range valid {
		amount, err := ParseAmount(raw)
		if assert.NoError(t, err, raw) {
			assert.Equal(t, want, FormatAmount(amount), raw)
		}
	}

	invalid := []string{"", "abc", "12.500", "0.001", "12345678901", "1e11", "NaN", "-12345678901", "-0.001"}
	for _, raw := range invalid {
		_, err := ParseAmount(raw)
		assert.Error(t, err, raw)
	}
}
