package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	domain "github.com/bryanwahyu/compliance-gateway/internal/domain/analysis"
)

// TokenValidator resolves a bearer token into a principal
type TokenValidator interface {
	ValidateToken(tokenString string) (*domain.Principal, error)
}

type contextKeyPrincipal struct{}

// WithPrincipal stores p in ctx
func WithPrincipal(ctx context.Context, p *domain.Principal) context.Context {
	return context.WithValue(ctx, contextKeyPrincipal{}, p)
}

// GetPrincipal returns nil for unauthenticated callers
func GetPrincipal(ctx context.Context) *domain.Principal {
	p, _ := ctx.Value(contextKeyPrincipal{}).(*domain.Principal)
	return p
}

// Authenticate resolves the principal when an Authorization header is present.
// Tanpa header request tetap lanjut sebagai public caller; token invalid = 401.
func Authenticate(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				next.ServeHTTP(w, r)
				return
			}
			token, ok := strings.CutPrefix(authHeader, "Bearer ")
			if !ok || strings.TrimSpace(token) == "" {
				unauthorized(w, r, "Missing or invalid Authorization header")
				return
			}
			p, err := validator.ValidateToken(strings.TrimSpace(token))
			if err != nil {
				zerolog.Ctx(r.Context()).Warn().Err(err).Msg("unauthorized access - invalid token")
				unauthorized(w, r, "Invalid or expired token")
				return
			}

			ctx := WithPrincipal(r.Context(), p)
			l := zerolog.Ctx(ctx).With().Int64("user_id", p.UserID).Int64("institution_id", p.InstitutionID).Logger()
			next.ServeHTTP(w, r.WithContext(l.WithContext(ctx)))
		})
	}
}

// RequirePrincipal rejects public callers
func RequirePrincipal(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if GetPrincipal(r.Context()) == nil {
			unauthorized(w, r, "Missing or invalid Authorization header")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func unauthorized(w http.ResponseWriter, r *http.Request, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	if err := json.NewEncoder(w).Encode(map[string]string{
		"error":             "unauthorized",
		"error_description": description,
	}); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to write unauthorized response")
	}
}
