package interfaces

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/sebuszqo/FinanceTracker/internal/auth"
	"github.com/sebuszqo/FinanceTracker/internal/finance/domain"
	financeErrors "github.com/sebuszqo/FinanceTracker/internal/finance/errors"
	"github.com/sebuszqo/FinanceTracker/internal/logger"
)

type MonthlyUploadServiceInterface interface {
	UploadMonth(ctx context.Context, userID, monthKeyHint string, entries []domain.TransactionInput, stats domain.StatsInput) (*domain.UploadResult, error)
}

type MonthlyQueryServiceInterface interface {
	ListMonths(ctx context.Context, userID string) ([]domain.MonthlyStats, error)
	GetMonth(ctx context.Context, userID, monthKey string) (*domain.MonthDetail, error)
	DeleteMonth(ctx context.Context, userID, monthKey string) (*domain.DeleteResult, error)
}

type MonthlyHandler struct {
	uploads        MonthlyUploadServiceInterface
	queries        MonthlyQueryServiceInterface
	maxUploadBytes int64
	respondJSON    func(w http.ResponseWriter, status int, payload interface{})
	respondError   func(w http.ResponseWriter, status int, message string, details ...map[string][]string)
}

func NewMonthlyHandler(
	uploads MonthlyUploadServiceInterface,
	queries MonthlyQueryServiceInterface,
	maxUploadBytes int64,
	respondJSON func(w http.ResponseWriter, status int, payload interface{}),
	respondError func(w http.ResponseWriter, status int, message string, details ...map[string][]string),
) *MonthlyHandler {
	if uploads == nil || queries == nil {
		log.Fatal("Services must not be nil")
		return nil
	}
	if respondJSON == nil {
		log.Fatal("RespondJSON function must not be nil")
		return nil
	}
	if respondError == nil {
		log.Fatal("RespondError function must not be nil")
		return nil
	}
	return &MonthlyHandler{
		uploads:        uploads,
		queries:        queries,
		maxUploadBytes: maxUploadBytes,
		respondJSON:    respondJSON,
		respondError:   respondError,
	}
}

func (h *MonthlyHandler) UploadMonth(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	if h.maxUploadBytes > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	}

	var req uploadMonthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			h.respondError(w, http.StatusRequestEntityTooLarge, fmt.Sprintf("Request body exceeds %d bytes", maxBytesErr.Limit))
			return
		}
		h.respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := h.uploads.UploadMonth(r.Context(), userID, req.MonthKey, req.Transactions, req.Stats)
	if err != nil {
		h.handleError(w, r, err, "Failed to upload transactions")
		return
	}

	h.respondJSON(w, http.StatusCreated, uploadMonthResponse{
		Message:            fmt.Sprintf("Successfully uploaded %d transactions", result.Accepted),
		MonthKey:           result.MonthKey,
		TransactionsSaved:  result.Accepted,
		TransactionsFailed: result.Failed,
		Stats:              toStatsRecord(result.Stats),
	})
}

func (h *MonthlyHandler) ListMonths(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	months, err := h.queries.ListMonths(r.Context(), userID)
	if err != nil {
		h.handleError(w, r, err, "Failed to list months")
		return
	}

	h.respondJSON(w, http.StatusOK, toStatsRecords(months))
}

func (h *MonthlyHandler) GetMonth(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	detail, err := h.queries.GetMonth(r.Context(), userID, r.PathValue("monthKey"))
	if err != nil {
		h.handleError(w, r, err, "Failed to load month")
		return
	}

	h.respondJSON(w, http.StatusOK, monthDetailResponse{
		Stats:        toStatsRecord(detail.Stats),
		Transactions: toTransactionRecords(detail.Transactions),
	})
}

func (h *MonthlyHandler) DeleteMonth(w http.ResponseWriter, r *http.Request) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		h.respondError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	monthKey := r.PathValue("monthKey")
	result, err := h.queries.DeleteMonth(r.Context(), userID, monthKey)
	if err != nil {
		h.handleError(w, r, err, "Failed to delete month")
		return
	}

	h.respondJSON(w, http.StatusOK, deleteMonthResponse{
		Message:             fmt.Sprintf("Deleted data for %s", monthKey),
		TransactionsDeleted: result.TransactionsDeleted,
		StatsDeleted:        result.StatsDeleted,
	})
}

func (h *MonthlyHandler) handleError(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	var payloadErr *financeErrors.StatsPayloadError
	switch {
	case errors.Is(err, financeErrors.ErrMissingMonthKey):
		h.respondError(w, http.StatusBadRequest, financeErrors.ErrMissingMonthKey.Error())
	case errors.Is(err, financeErrors.ErrInvalidMonthKey):
		h.respondError(w, http.StatusBadRequest, financeErrors.ErrInvalidMonthKey.Error())
	case errors.As(err, &payloadErr):
		h.respondError(w, http.StatusUnprocessableEntity, "Invalid monthly stats data", payloadErr.Details)
	case errors.Is(err, financeErrors.ErrMonthNotFound):
		h.respondError(w, http.StatusNotFound, "No data found for this month")
	default:
		log := logger.FromContext(r.Context())
		log.Error().Err(err).Str("path", r.URL.Path).Msg(fallback)
		h.respondError(w, http.StatusInternalServerError, fallback)
	}
}
