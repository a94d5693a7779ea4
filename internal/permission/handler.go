package permission

import (
	"context"
	"net/http"

	"github.com/frahmantamala/room-reservation/internal"
	"github.com/frahmantamala/room-reservation/internal/transport"
)

type ServiceAPI interface {
	Update(ctx context.Context, actorID int64, dto UpdatePermissionDTO) (*UpdateResult, error)
}

type Handler struct {
	*transport.BaseHandler
	Service ServiceAPI
}

func NewHandler(baseHandler *transport.BaseHandler, service ServiceAPI) *Handler {
	return &Handler{
		BaseHandler: baseHandler,
		Service:     service,
	}
}

// UpdatePermissions handles POST /permissions/update
func (h *Handler) UpdatePermissions(w http.ResponseWriter, r *http.Request) {
	actorID, ok := internal.UserIDFromContext(r.Context())
	if !ok {
		h.HandleServiceError(w, r, internal.ErrUnauthenticated)
		return
	}

	var dto UpdatePermissionDTO
	if err := h.DecodeJSON(w, r, &dto); err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	result, err := h.Service.Update(r.Context(), actorID, dto)
	if err != nil {
		h.HandleServiceError(w, r, err)
		return
	}

	h.WriteJSON(w, http.StatusOK, SuccessResponse{Success: true, Message: result.Message})
}
