package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"taskflow/internal/domain"
)

// UserLookup resolves a token subject to a stored user.
type UserLookup interface {
	GetByID(ctx context.Context, id string) (*domain.User, error)
}

// Auth verifies the bearer token, loads the user it names and stores the
// resulting domain.Actor in the request context. Unknown and deactivated
// users are rejected with 401.
func Auth(validator TokenValidator, users UserLookup, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			raw, ok := bearerToken(r)
			if !ok {
				writeUnauthorized(w, "missing bearer token")
				return
			}
			claims, err := validator.Validate(r.Context(), raw)
			if err != nil {
				logger.Debug("rejected token", "error", err, "request_id", RequestIDFromContext(r.Context()))
				writeUnauthorized(w, "invalid bearer token")
				return
			}

			u, err := users.GetByID(r.Context(), claims.Subject)
			var notFound *domain.NotFoundError
			switch {
			case errors.As(err, &notFound):
				writeUnauthorized(w, "unknown user")
				return
			case err != nil:
				logger.Error("load user", "error", err, "user", claims.Subject)
				writeJSONError(w, http.StatusInternalServerError, "internal error")
				return
			case !u.Active:
				writeUnauthorized(w, "user is deactivated")
				return
			}

			ctx := domain.WithActor(r.Context(), domain.ActorFromUser(u))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) (string, bool) {
	h := r.Header.Get("Authorization")
	scheme, token, ok := strings.Cut(h, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}

func writeUnauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("WWW-Authenticate", `Bearer realm="taskflow"`)
	writeJSONError(w, http.StatusUnauthorized, "unauthorized: "+msg)
}

func writeJSONError(w http.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]interface{}{
		"code":    code,
		"message": msg,
	})
}
