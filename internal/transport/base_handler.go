package transport

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/frahmantamala/room-reservation/internal"
	"github.com/frahmantamala/room-reservation/pkg/logger"
	"github.com/go-chi/chi"
	"github.com/google/uuid"
)

const maxBodyBytes = 1 << 20

// BaseHandler provides common functionality for HTTP handlers
type BaseHandler struct {
	Logger *slog.Logger
}

// NewBaseHandler creates a base handler with logger
func NewBaseHandler(lg *slog.Logger) *BaseHandler {
	if lg == nil {
		lg = logger.LoggerWrapper()
	}
	return &BaseHandler{Logger: lg}
}

// WriteJSON writes a JSON response
func (h *BaseHandler) WriteJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.Logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes an {"error","code"} body. Use HandleServiceError for
// anything that may carry an internal cause.
func (h *BaseHandler) WriteError(w http.ResponseWriter, status int, code internal.ErrorCode, message string) {
	h.Logger.Warn("http error", "status", status, "code", code, "message", message)
	h.WriteJSON(w, status, internal.Response{Error: message, Code: code})
}

// HandleServiceError maps a service error onto the HTTP error taxonomy. Internal
// failures are logged with a correlation id and the client only sees that id.
func (h *BaseHandler) HandleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if appErr, ok := internal.IsAppError(err); ok && appErr.StatusCode < http.StatusInternalServerError {
		status, body := appErr.ToHTTPResponse()
		logger.From(r.Context()).Warn("request rejected",
			"status", status,
			"code", appErr.Code,
			"message", appErr.GetDetailedMessage())
		h.WriteJSON(w, status, body)
		return
	}

	h.WriteInternalError(w, r, err)
}

func (h *BaseHandler) WriteInternalError(w http.ResponseWriter, r *http.Request, err error) {
	correlationID := internal.TraceIDFromContext(r.Context())
	if correlationID == "" {
		correlationID = uuid.NewString()
	}

	logger.From(r.Context()).Error("internal error",
		"correlation_id", correlationID,
		"method", r.Method,
		"path", r.URL.Path,
		"error", err)

	h.WriteJSON(w, http.StatusInternalServerError, map[string]interface{}{
		"error":          "internal server error",
		"code":           internal.ErrCodeInternal,
		"correlation_id": correlationID,
	})
}

// DecodeJSON reads a bounded JSON body into dst. Any decode failure is
// reported as internal.ErrInvalidBody.
func (h *BaseHandler) DecodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	if r.Body == nil {
		return internal.ErrInvalidBody
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return internal.ErrInvalidBody.WithCause(errors.New("empty body"))
		}
		return internal.ErrInvalidBody.WithCause(err)
	}
	return nil
}

// ExtractTokenFromHeader extracts Bearer token from Authorization header
func (h *BaseHandler) ExtractTokenFromHeader(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		return ""
	}

	const prefix = "Bearer "
	if len(authHeader) <= len(prefix) || !strings.EqualFold(authHeader[:len(prefix)], prefix) {
		return ""
	}

	return strings.TrimSpace(authHeader[len(prefix):])
}

// PathID parses a positive integer chi URL parameter.
func (h *BaseHandler) PathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, internal.NewValidationFieldError(name, name+" must be a positive integer", internal.ErrCodeValidationFailed)
	}
	return id, nil
}
