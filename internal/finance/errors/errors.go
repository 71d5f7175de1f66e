package errors

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrMissingMonthKey     = errors.New("month_key is required")
	ErrInvalidMonthKey     = errors.New("month_key must use the YYYY-MM format")
	ErrInvalidStatsPayload = errors.New("invalid monthly stats data")
	ErrMonthNotFound       = errors.New("no data found for this month")
	ErrDuplicateMonthStats = errors.New("monthly stats already exist for this month")
)

type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func NewValidationError(msg string) error {
	return &ValidationError{Msg: msg}
}

func IsValidationError(err error) bool {
	var validationError *ValidationError
	ok := errors.As(err, &validationError)
	return ok
}

func NewIndexedValidationError(index int, msg string) error {
	return &ValidationError{Msg: fmt.Sprintf("Validation error at transaction %d: %s", index, msg)}
}

type ValidationErrors struct {
	Errors []error
}

func (ve *ValidationErrors) Error() string {
	errorMessages := make([]string, len(ve.Errors))
	for i, err := range ve.Errors {
		errorMessages[i] = err.Error()
	}
	return fmt.Sprintf("multiple validation errors: %s", strings.Join(errorMessages, "; "))
}

func (ve *ValidationErrors) Add(err error) {
	ve.Errors = append(ve.Errors, err)
}

func (ve *ValidationErrors) Len() int {
	if ve == nil {
		return 0
	}
	return len(ve.Errors)
}

func (ve *ValidationErrors) Messages() []string {
	messages := make([]string, len(ve.Errors))
	for i, err := range ve.Errors {
		messages[i] = err.Error()
	}
	return messages
}

// FieldErrors collects messages per payload field.
type FieldErrors map[string][]string

func (fe FieldErrors) Add(field, msg string) {
	fe[field] = append(fe[field], msg)
}

func (fe FieldErrors) Empty() bool {
	return len(fe) == 0
}

// StatsPayloadError reports why the monthly stats row could not be built.
// It matches ErrInvalidStatsPayload with errors.Is.
type StatsPayloadError struct {
	Details FieldErrors
}

func (e *StatsPayloadError) Error() string {
	fields := make([]string, 0, len(e.Details))
	for field := range e.Details {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s: %s", field, strings.Join(e.Details[field], ", ")))
	}
	return fmt.Sprintf("%s: %s", ErrInvalidStatsPayload.Error(), strings.Join(parts, "; "))
}

func (e *StatsPayloadError) Is(target error) bool {
	return target == ErrInvalidStatsPayload
}

func NewStatsPayloadError(details FieldErrors) error {
	return &StatsPayloadError{Details: details}
}
