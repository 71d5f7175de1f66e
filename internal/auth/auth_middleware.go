package auth

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/sebuszqo/FinanceTracker/internal/logger"
)

type contextKey string

const userIDKey contextKey = "userID"

type ErrorResponse struct {
	Error string `json:"error"`
}

// WithUserID stores the authenticated principal on the context.
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, userIDKey, userID)
}

// UserIDFromContext returns the principal set by the access token middleware.
func UserIDFromContext(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(userIDKey).(string)
	return userID, ok && userID != ""
}

// PrincipalResolver authenticates requests with a bearer access token.
type PrincipalResolver struct {
	jwtManager JWTManagerInterface
}

func NewPrincipalResolver(jwtManager JWTManagerInterface) *PrincipalResolver {
	return &PrincipalResolver{jwtManager: jwtManager}
}

func (p *PrincipalResolver) JWTAccessTokenMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				writeJSONError(w, http.StatusUnauthorized, "Authorization header is required")
				return
			}

			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader || tokenString == "" {
				writeJSONError(w, http.StatusUnauthorized, "Invalid token format")
				return
			}

			userID, err := p.jwtManager.ValidateAccessToken(tokenString)
			if err != nil {
				log := logger.FromContext(r.Context())
				if errors.Is(err, ErrExpiredJWTToken) {
					log.Debug().Msg("Expired access token")
				} else {
					log.Warn().Err(err).Msg("Rejected access token")
				}
				writeJSONError(w, http.StatusUnauthorized, "Invalid or expired token")
				return
			}

			ctx := WithUserID(r.Context(), userID)
			log := logger.FromContext(ctx).With().Str("user_id", userID).Logger()
			ctx = logger.WithContext(ctx, log)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func writeJSONError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{Error: message})
}
