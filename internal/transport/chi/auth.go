package chi

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/kailas-cloud/frontdesk/internal/domain"
)

// exemptPaths are routes that bypass authentication (health, metrics).
var exemptPaths = map[string]struct{}{
	"/healthz": {},
	"/metrics": {},
}

type identityKey struct{}

// IdentityFromContext extracts the authenticated caller placed in the
// context by XUserMiddleware. The zero Identity means unauthenticated.
func IdentityFromContext(ctx context.Context) domain.Identity {
	if id, ok := ctx.Value(identityKey{}).(domain.Identity); ok {
		return id
	}
	return domain.Identity{}
}

// XUserMiddleware returns a middleware that reads the caller identity
// forwarded by the gateway in the X-User header (a JSON object). The
// gateway authenticates; this service only trusts the forwarded result.
func XUserMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := exemptPaths[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			raw := r.Header.Get("X-User")
			if raw == "" {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "missing X-User header")
				return
			}

			var identity domain.Identity
			if err := json.Unmarshal([]byte(raw), &identity); err != nil || identity.Zero() {
				writeError(w, http.StatusUnauthorized, codeUnauthorized, "invalid X-User header")
				return
			}

			ctx := context.WithValue(r.Context(), identityKey{}, identity)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
