package main

import (
	"context"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/sebuszqo/FinanceTracker/internal/finance/interfaces"
	"github.com/sebuszqo/FinanceTracker/internal/middleware"
)

type Response struct {
	Message string `json:"message"`
}

// HealthChecker reports the state of the storage backend.
type HealthChecker interface {
	Health(ctx context.Context) map[string]string
}

type Server struct {
	router         http.Handler
	monthlyHandler *interfaces.MonthlyHandler
	authMiddleware func(http.Handler) http.Handler
	health         HealthChecker
	log            zerolog.Logger
}

func NewServer(monthlyHandler *interfaces.MonthlyHandler, authMiddleware func(http.Handler) http.Handler, health HealthChecker, log zerolog.Logger) *Server {
	return &Server{
		monthlyHandler: monthlyHandler,
		authMiddleware: authMiddleware,
		health:         health,
		log:            log,
	}
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	middleware.WriteJSON(w, http.StatusNotFound, Response{Message: "Path not found"})
}

func (s *Server) handleReady(w http.ResponseWriter, _ *http.Request) {
	middleware.WriteJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if s.health == nil {
		middleware.WriteJSON(w, http.StatusOK, map[string]string{"status": "up", "backend": "memory"})
		return
	}

	stats := s.health.Health(r.Context())
	status := http.StatusOK
	if stats["status"] != "up" {
		status = http.StatusServiceUnavailable
	}
	middleware.WriteJSON(w, status, stats)
}

func (s *Server) RegisterRoutes() {
	// Public routes
	publicRoutes := http.NewServeMux()
	publicRoutes.Handle("GET /api/ready", http.HandlerFunc(s.handleReady))
	publicRoutes.Handle("GET /api/health", http.HandlerFunc(s.handleHealth))

	// Protected routes (using JWT Access Token Middleware)
	protectedRoutes := http.NewServeMux()
	protectedRoutes.Handle("POST /api/protected/transactions/upload",
		s.authMiddleware(http.HandlerFunc(s.monthlyHandler.UploadMonth)))

	protectedRoutes.Handle("GET /api/protected/transactions/monthly",
		s.authMiddleware(http.HandlerFunc(s.monthlyHandler.ListMonths)))

	protectedRoutes.Handle("GET /api/protected/transactions/monthly/{monthKey}",
		s.authMiddleware(http.HandlerFunc(s.monthlyHandler.GetMonth)))

	protectedRoutes.Handle("DELETE /api/protected/transactions/monthly/{monthKey}",
		s.authMiddleware(http.HandlerFunc(s.monthlyHandler.DeleteMonth)))

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/api/", publicRoutes)
	mainRouter.Handle("/api/protected/", protectedRoutes)
	mainRouter.Handle("/", http.HandlerFunc(notFoundHandler))

	s.router = middleware.Chain(mainRouter,
		middleware.Recovery(s.log),
		middleware.RequestID(s.log),
		middleware.Logger,
	)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}
