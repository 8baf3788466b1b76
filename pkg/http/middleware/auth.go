package middleware

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/jgirmay/geoattend/pkg/auth"
	apperrors "github.com/jgirmay/geoattend/pkg/errors"
	"github.com/jgirmay/geoattend/pkg/http/response"
	"github.com/jgirmay/geoattend/pkg/logging"
)

// contextKey is a type for context keys
type contextKey string

// PrincipalKey is the key for the authenticated principal in context
const PrincipalKey contextKey = "principal"

// PrincipalResolver resolves a bearer token to a principal
type PrincipalResolver interface {
	Resolve(ctx context.Context, token string) (*auth.Principal, error)
}

// RequireAuth resolves the bearer token and injects the principal into context.
// Returns 401 JSON if missing or invalid, 403 for a disabled employee.
func RequireAuth(resolver PrincipalResolver, logger *logging.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, err := resolver.Resolve(r.Context(), auth.ExtractToken(r))
			switch {
			case err == nil:
			case errors.Is(err, auth.ErrUnauthenticated):
				response.Error(w, apperrors.Unauthorized("missing or invalid authentication token"))
				return
			case errors.Is(err, auth.ErrInactive):
				response.Error(w, apperrors.Forbidden("employee account is not active"))
				return
			default:
				logger.Error("principal resolution failed", zap.Error(err))
				response.Error(w, apperrors.Unavailable("unable to verify credentials, try again", 5))
				return
			}

			ctx := WithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireObserver rejects principals without the observer capability.
// It must run after RequireAuth.
func RequireObserver(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p, ok := PrincipalFromContext(r.Context())
		if !ok {
			response.Error(w, apperrors.Unauthorized("authentication required"))
			return
		}
		if !p.Observer {
			response.Error(w, apperrors.Forbidden("observer role required"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

// WithPrincipal stores p in ctx
func WithPrincipal(ctx context.Context, p *auth.Principal) context.Context {
	return context.WithValue(ctx, PrincipalKey, p)
}

// PrincipalFromContext extracts the principal from context
func PrincipalFromContext(ctx context.Context) (*auth.Principal, bool) {
	p, ok := ctx.Value(PrincipalKey).(*auth.Principal)
	return p, ok && p != nil
}
