package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/kamdem/boutique-service/internal/auth"
	"github.com/kamdem/boutique-service/internal/config"
)

// Context key type to avoid collisions.
type contextKey string

const identityKey contextKey = "identity"

// Identity is the verified caller attached to each authenticated request.
type Identity struct {
	UserID int64
	Email  string
}

// AuthMiddleware verifies the bearer token and places the caller's
// identity into the request context. Requests without a valid token
// are rejected before reaching any handler.
func AuthMiddleware(cfg *config.Config) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			if header == "" {
				unauthorized(w, "missing token")
				return
			}

			parts := strings.SplitN(header, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				unauthorized(w, "invalid authorization header")
				return
			}

			claims, err := auth.ParseToken(cfg.JWTSecret, parts[1])
			if err != nil {
				unauthorized(w, "invalid token")
				return
			}

			ident := &Identity{UserID: claims.UserID, Email: claims.Email}
			ctx := context.WithValue(r.Context(), identityKey, ident)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// IdentityFromContext returns the verified caller, or nil when the
// request did not pass through AuthMiddleware.
func IdentityFromContext(ctx context.Context) *Identity {
	ident, _ := ctx.Value(identityKey).(*Identity)
	return ident
}

func unauthorized(w http.ResponseWriter, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
