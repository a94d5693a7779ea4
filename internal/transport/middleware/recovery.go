package middleware

import (
	"encoding/json"
	"net/http"
	"runtime/debug"

	"github.com/frahmantamala/room-reservation/internal"
	"github.com/frahmantamala/room-reservation/pkg/logger"
	"github.com/google/uuid"
)

// Recovery turns a panic into the standard 500 body. The panic value and stack
// are logged under the correlation id and never written to the client.
func Recovery(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}

			correlationID := internal.TraceIDFromContext(r.Context())
			if correlationID == "" {
				correlationID = uuid.NewString()
			}

			logger.From(r.Context()).Error("panic recovered",
				"correlation_id", correlationID,
				"panic", rec,
				"method", r.Method,
				"path", r.URL.Path,
				"stack", string(debug.Stack()))

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusInternalServerError)
			_ = json.NewEncoder(w).Encode(map[string]interface{}{
				"error":          "internal server error",
				"code":           internal.ErrCodeInternal,
				"correlation_id": correlationID,
			})
		}()

		next.ServeHTTP(w, r)
	})
}
