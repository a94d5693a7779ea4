package page

import (
	"context"
	"fmt"
	"html/template"
	"net/http"

	"github.com/frahmantamala/room-reservation/internal"
	"github.com/frahmantamala/room-reservation/internal/transport"
	"github.com/frahmantamala/room-reservation/pkg/logger"
	"github.com/google/uuid"
)

type Renderer interface {
	Render(ctx context.Context, userID int64, name string) ([]byte, error)
}

// Handler answers with HTML, including errors, since its output is swapped
// straight into the page.
type Handler struct {
	*transport.BaseHandler
	Loader Renderer
}

func NewHandler(baseHandler *transport.BaseHandler, loader Renderer) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Loader:      loader,
	}
}

// LoadPage handles POST /navigation/load-page
func (h *Handler) LoadPage(w http.ResponseWriter, r *http.Request) {
	userID, ok := internal.UserIDFromContext(r.Context())
	if !ok {
		h.writeHTMLError(w, r, internal.ErrUnauthenticated)
		return
	}

	var dto LoadPageDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.writeHTMLError(w, r, err)
		return
	}

	body, err := h.Loader.Render(r.Context(), userID, dto.Page)
	if err != nil {
		h.writeHTMLError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(body); err != nil {
		h.Logger.Error("failed to write page", "error", err)
	}
}

func (h *Handler) writeHTMLError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	message := "Internal server error"

	if appErr, ok := internal.IsAppError(err); ok && appErr.StatusCode < http.StatusInternalServerError {
		status = appErr.StatusCode
		message = appErr.GetDetailedMessage()
		logger.From(r.Context()).Warn("page request rejected", "status", status, "code", appErr.Code)
	} else {
		correlationID := internal.TraceIDFromContext(r.Context())
		if correlationID == "" {
			correlationID = uuid.NewString()
		}
		logger.From(r.Context()).Error("internal error",
			"correlation_id", correlationID,
			"path", r.URL.Path,
			"error", err)
		message = fmt.Sprintf("Internal server error (reference %s)", correlationID)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	fmt.Fprintf(w, `<div class="alert alert-danger">%s</div>`, template.HTMLEscapeString(message))
}
