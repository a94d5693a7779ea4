package middleware

import (
	"context"
	"net/http"

	"github.com/frahmantamala/room-reservation/internal"
	"github.com/frahmantamala/room-reservation/internal/permission"
	"github.com/frahmantamala/room-reservation/internal/transport"
	"github.com/frahmantamala/room-reservation/pkg/logger"
)

type CapabilityChecker interface {
	Allowed(ctx context.Context, userID int64, capability permission.Capability) (bool, error)
}

// RequireCapability lets the request through only when the session user holds
// capability. It must run after the session middleware.
func RequireCapability(gate CapabilityChecker, capability permission.Capability, base *transport.BaseHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID, ok := internal.UserIDFromContext(r.Context())
			if !ok {
				base.HandleServiceError(w, r, internal.ErrUnauthenticated)
				return
			}

			allowed, err := gate.Allowed(r.Context(), userID, capability)
			if err != nil {
				base.WriteInternalError(w, r, err)
				return
			}
			if !allowed {
				logger.From(r.Context()).Warn("access denied: missing capability",
					"user_id", userID,
					"capability", capability)
				base.HandleServiceError(w, r, internal.ErrForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
