package auth

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/PY0226H/aicomm/contract"
	"github.com/PY0226H/aicomm/domain"
)

type contextKey int

const userKey contextKey = 0

// Middleware is the request-boundary auth gate shared by every service.
// It looks for a bearer credential in the Authorization header, then in the
// token query parameter. A missing or malformed credential yields 401; a
// credential that fails verification yields 403. On success the verified
// identity is attached to the request context for downstream handlers.
func Middleware(log *slog.Logger, verifier contract.TokenVerifier) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token, ok := extractToken(r)
			if !ok {
				log.Warn("request without credential", "path", r.URL.Path)
				writeError(w, http.StatusUnauthorized, "no credential presented")
				return
			}

			user, err := verifier.Verify(token)
			if err != nil {
				log.Warn("verify token failed", "path", r.URL.Path, "error", err)
				writeError(w, http.StatusForbidden, "verify token failed")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// extractToken pulls the credential out of the Authorization header or,
// if the header is absent, out of the token query parameter. A header that
// is present but not of the Bearer form counts as missing, not invalid.
func extractToken(r *http.Request) (string, bool) {
	if header := r.Header.Get("Authorization"); header != "" {
		token, found := strings.CutPrefix(header, "Bearer ")
		if !found || token == "" {
			return "", false
		}
		return token, true
	}
	if token := r.URL.Query().Get("token"); token != "" {
		return token, true
	}
	return "", false
}

// WithUser returns a context carrying the verified identity.
func WithUser(ctx context.Context, user domain.User) context.Context {
	return context.WithValue(ctx, userKey, user)
}

// UserFromContext retrieves the identity attached by Middleware.
func UserFromContext(ctx context.Context) (domain.User, bool) {
	user, ok := ctx.Value(userKey).(domain.User)
	return user, ok
}

type errorOutput struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(errorOutput{Error: msg})
}
