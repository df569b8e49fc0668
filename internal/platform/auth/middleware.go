package auth

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"go.uber.org/zap"

	applog "github.com/janisto/account-settings/internal/platform/logging"
)

// SchemeName is the OpenAPI security scheme protected operations reference.
const SchemeName = "bearerAuth"

// Security is the requirement list for operations that need a signed-in caller.
var Security = []map[string][]string{{SchemeName: {}}}

type principalKey struct{}

// NewMiddleware creates Huma middleware that authenticates operations declaring Security.
// On success the request logger is tagged with the caller's uid.
func NewMiddleware(api huma.API, verifier Verifier) func(huma.Context, func(huma.Context)) {
	return func(ctx huma.Context, next func(huma.Context)) {
		if len(ctx.Operation().Security) == 0 {
			next(ctx)
			return
		}

		token, err := ExtractBearerToken(ctx.Header("Authorization"))
		if err != nil {
			applog.LogWarn(ctx.Context(), "auth failed: missing or invalid header",
				zap.String("reason", "no_token"))
			ctx.SetHeader("WWW-Authenticate", "Bearer")
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "missing or invalid authorization header")
			return
		}

		p, err := verifier.Verify(ctx.Context(), token)
		if err != nil {
			applog.LogWarn(ctx.Context(), "auth failed: token verification failed",
				zap.String("reason", reason(err)))
			if errors.Is(err, ErrCertificateFetch) {
				ctx.SetHeader("Retry-After", "30")
				_ = huma.WriteErr(api, ctx, http.StatusServiceUnavailable,
					"authentication service temporarily unavailable")
				return
			}
			ctx.SetHeader("WWW-Authenticate", "Bearer")
			_ = huma.WriteErr(api, ctx, http.StatusUnauthorized, "invalid or expired token")
			return
		}

		ctx = huma.WithContext(ctx, applog.WithFields(ctx.Context(), zap.String("uid", p.UID)))
		ctx = huma.WithValue(ctx, principalKey{}, p)
		next(ctx)
	}
}

func reason(err error) string {
	switch {
	case errors.Is(err, ErrTokenExpired):
		return "token_expired"
	case errors.Is(err, ErrTokenRevoked):
		return "token_revoked"
	case errors.Is(err, ErrUserDisabled):
		return "user_disabled"
	case errors.Is(err, ErrCertificateFetch):
		return "certificate_fetch_failed"
	case errors.Is(err, ErrInvalidToken):
		return "invalid_token"
	default:
		return "unknown"
	}
}

// FromContext returns the authenticated caller, or nil.
func FromContext(ctx context.Context) *Principal {
	p, _ := ctx.Value(principalKey{}).(*Principal)
	return p
}

// Require returns the authenticated caller or a 401 problem for handlers
// reached without one.
func Require(ctx context.Context) (*Principal, error) {
	p := FromContext(ctx)
	if p == nil {
		return nil, huma.Error401Unauthorized("authentication required")
	}
	return p, nil
}

// WithPrincipal stores p in ctx. Used by tests and in-process callers.
func WithPrincipal(ctx context.Context, p *Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}
