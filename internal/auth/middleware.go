package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/joao-fontenele/storefront/internal/domain"
	"github.com/joao-fontenele/storefront/internal/httpapi"
)

// Principal is the caller identity recovered from a verified bearer token.
type Principal struct {
	UserID int64
	Role   domain.Role
	Email  string
	Name   string
}

type principalKey struct{}

func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

func PrincipalFrom(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

type Middleware struct {
	tokens *TokenIssuer
	logger *slog.Logger
}

func NewMiddleware(tokens *TokenIssuer, logger *slog.Logger) *Middleware {
	return &Middleware{tokens: tokens, logger: logger}
}

// Authenticate rejects requests without a valid bearer token.
func (m *Middleware) Authenticate(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r)
		if !ok {
			httpapi.WriteError(w, m.logger, http.StatusUnauthorized, "missing bearer token")
			return
		}

		claims, err := m.tokens.Parse(raw)
		if err != nil {
			m.logger.Info("rejected bearer token", "error", err, "path", r.URL.Path)
			httpapi.WriteError(w, m.logger, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		// Parse has already validated the subject.
		userID, _ := claims.UserID()
		ctx := WithPrincipal(r.Context(), Principal{
			UserID: userID,
			Role:   claims.Role,
			Email:  claims.Email,
			Name:   claims.Name,
		})
		next(w, r.WithContext(ctx))
	}
}

// RequireRole authenticates the request and then checks the caller's role.
func (m *Middleware) RequireRole(role domain.Role, next http.HandlerFunc) http.HandlerFunc {
	return m.Authenticate(func(w http.ResponseWriter, r *http.Request) {
		p, _ := PrincipalFrom(r.Context())
		if p.Role != role {
			httpapi.WriteError(w, m.logger, http.StatusForbidden, "insufficient permissions")
			return
		}
		next(w, r)
	})
}

func bearerToken(r *http.Request) (string, bool) {
	header := r.Header.Get("Authorization")
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, "Bearer") {
		return "", false
	}
	token = strings.TrimSpace(token)
	return token, token != ""
}
