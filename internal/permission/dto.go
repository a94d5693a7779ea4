package permission

import (
	"strings"

	"github.com/frahmantamala/room-reservation/internal"
)

// UpdatePermissionDTO is either a single-flag change ({permission, value}) or a
// bulk change ({bulk_action}). bulk_action wins when both are present.
type UpdatePermissionDTO struct {
	UserID     int64   `json:"user_id"`
	Permission *string `json:"permission,omitempty"`
	Value      *bool   `json:"value,omitempty"`
	BulkAction *string `json:"bulk_action,omitempty"`
}

func (d UpdatePermissionDTO) IsBulk() bool {
	return d.BulkAction != nil && strings.TrimSpace(*d.BulkAction) != ""
}

// Validate checks request shape only; enum membership is checked by the
// service once authorization has passed.
func (d UpdatePermissionDTO) Validate() error {
	if d.UserID <= 0 {
		return internal.NewValidationFieldError("user_id", "user_id is required", internal.ErrCodeValidationFailed)
	}
	if !d.IsBulk() && d.Permission == nil {
		return internal.NewValidationError("either permission or bulk_action is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

type UpdateResult struct {
	UserID  int64           `json:"user_id"`
	Message string          `json:"message"`
	Changes map[string]bool `json:"-"`
}

type SuccessResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
