package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/prudhvinik1/accountsvc/internal/services"
	"go.uber.org/zap"
)

type contextKey string

const principalContextKey contextKey = "principal"

// RequireAuth rejects requests without a valid bearer token and stores the
// verified principal in the request context.
func RequireAuth(auth Authenticator, logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearerToken(r)
			if token == "" {
				writeError(w, logger, services.ErrUnauthenticated)
				return
			}

			principal, err := auth.Authenticate(token)
			if err != nil {
				writeError(w, logger, err)
				return
			}

			ctx := context.WithValue(r.Context(), principalContextKey, principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// PrincipalFromContext returns the principal stored by RequireAuth, or nil,
// which the services treat as unauthenticated.
func PrincipalFromContext(ctx context.Context) *services.Principal {
	p, _ := ctx.Value(principalContextKey).(*services.Principal)
	return p
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	if len(header) < 7 || !strings.EqualFold(header[:7], "Bearer ") {
		return ""
	}
	return strings.TrimSpace(header[7:])
}
