package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	"github.com/aconic-ni/customspayapp/internal/authz"
	"github.com/aconic-ni/customspayapp/pkg/requestcontext"
)

// authClaims are the token claims the external auth provider mints.
type authClaims struct {
	Email         string `json:"email"`
	Role          string `json:"role"`
	DelegateEmail string `json:"delegate_email,omitempty"`
	jwt.RegisteredClaims
}

// RequireAuth verifies the bearer token and injects the caller identity into
// the request context. Identity resolution itself happens outside this
// service; the token is trusted once its signature checks out.
func RequireAuth(signingKey []byte, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || raw == "" {
				unauthorized(w, "missing bearer token")
				return
			}

			claims := &authClaims{}
			token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
				if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %q", t.Header["alg"])
				}
				return signingKey, nil
			})
			if err != nil || !token.Valid {
				logger.Warn("token rejected",
					slog.String("request_id", requestcontext.RequestID(r.Context())))
				unauthorized(w, "invalid bearer token")
				return
			}
			if claims.Email == "" {
				unauthorized(w, "token carries no email claim")
				return
			}

			identity := authz.Identity{
				Email:         claims.Email,
				Role:          authz.Role(claims.Role),
				DelegateEmail: claims.DelegateEmail,
			}
			ctx := requestcontext.WithIdentity(r.Context(), identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	fmt.Fprintf(w, `{"error":{"code":"unauthorized","message":%q}}`, message)
}
