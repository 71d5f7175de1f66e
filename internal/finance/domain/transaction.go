package domain

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
)

type Kind string

const (
	KindDebit  Kind = "debit"
	KindCredit Kind = "credit"
)

func (k Kind) Valid() bool {
	return k == KindDebit || k == KindCredit
}

// Column limits of the transactions table.
const (
	MaxTransactionIDLength = 100
	MaxPartyLength         = 255
	MaxCategoryLength      = 100
)

type Transaction struct {
	ID            int64           `json:"id"`
	UserID        string          `json:"user_id"`
	Date          *time.Time      `json:"date"`
	TransactionID string          `json:"transaction_id"`
	Sender        string          `json:"sender"`
	Receiver      string          `json:"receiver"`
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	Kind          Kind            `json:"type"`
	Description   string          `json:"description"`
	MonthKey      string          `json:"month_key"`
	CreatedAt     time.Time       `json:"created_at"`
}

// TransactionInput is one raw entry of an uploaded batch.
type TransactionInput struct {
	Date          Scalar `json:"date"`
	TransactionID Scalar `json:"transaction_id"`
	Sender        Scalar `json:"sender"`
	Receiver      Scalar `json:"receiver"`
	Category      Scalar `json:"category"`
	Amount        Scalar `json:"amount"`
	Type          Scalar `json:"type"`
	Description   Scalar `json:"description"`

	malformed bool
}

// UnmarshalJSON never fails; entries that are not JSON objects are kept and
// rejected later by ToTransaction.
func (in *TransactionInput) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		*in = TransactionInput{malformed: true}
		return nil
	}

	type plain TransactionInput
	var p plain
	if err := json.Unmarshal(trimmed, &p); err != nil {
		*in = TransactionInput{malformed: true}
		return nil
	}
	*in = TransactionInput(p)
	return nil
}

// ToTransaction validates the entry and binds it to the given owner and month.
func (in TransactionInput) ToTransaction(userID, monthKey string) (Transaction, error) {
	if in.malformed {
		return Transaction{}, financeErrors.NewValidationError("transaction must be a JSON object")
	}

	var problems []string
	fail := func(field, msg string) {
		problems = append(problems, fmt.Sprintf("%s: %s", field, msg))
	}

	transaction := Transaction{UserID: userID, MonthKey: monthKey}

	if in.Date.Present() && !in.Date.Blank() {
		if !in.Date.Usable() {
			fail("date", "date has wrong format, use YYYY-MM-DD")
		} else if date, err := time.Parse(DateLayout, in.Date.String()); err != nil {
			fail("date", "date has wrong format, use YYYY-MM-DD")
		} else {
			transaction.Date = &date
		}
	}

	var msg string
	if transaction.TransactionID, msg = requiredText(in.TransactionID, MaxTransactionIDLength); msg != "" {
		fail("transaction_id", msg)
	}
	if transaction.Sender, msg = optionalText(in.Sender, MaxPartyLength); msg != "" {
		fail("sender", msg)
	}
	if transaction.Receiver, msg = optionalText(in.Receiver, MaxPartyLength); msg != "" {
		fail("receiver", msg)
	}
	if transaction.Category, msg = requiredText(in.Category, MaxCategoryLength); msg != "" {
		fail("category", msg)
	}

	switch {
	case in.Amount.Blank():
		fail("amount", "this field is required")
	case !in.Amount.Usable():
		fail("amount", errInvalidNumber.Error())
	default:
		amount, err := ParseAmount(in.Amount.String())
		if err != nil {
			fail("amount", err.Error())
		}
		transaction.Amount = amount
	}

	switch kind := Kind(in.Type.String()); {
	case in.Type.Blank():
		fail("type", "this field is required")
	case !in.Type.Usable() || !kind.Valid():
		fail("type", fmt.Sprintf("%q is not a valid choice, use debit or credit", in.Type.String()))
	default:
		transaction.Kind = kind
	}

	if transaction.Description, msg = optionalText(in.Description, 0); msg != "" {
		fail("description", msg)
	}

	if len(problems) > 0 {
		return Transaction{}, financeErrors.NewValidationError(strings.Join(problems, "; "))
	}
	return transaction, nil
}

func requiredText(value Scalar, maxLength int) (string, string) {
	if value.Blank() {
		return "", "this field is required"
	}
	return optionalText(value, maxLength)
}

// Postgres text columns cannot hold NUL.
const nullCharacterMessage = "null characters are not allowed"

// optionalText treats a zero maxLength as unbounded.
func optionalText(value Scalar, maxLength int) (string, string) {
	if !value.Present() {
		return "", ""
	}
	if !value.Usable() {
		return "", "not a valid string"
	}
	text := value.String()
	if strings.ContainsRune(text, 0) {
		return "", nullCharacterMessage
	}
	if maxLength > 0 && len([]rune(text)) > maxLength {
		return "", fmt.Sprintf("ensure this field has no more than %d characters", maxLength)
	}
	return text, ""
}
