package user

import (
	"strings"

	"github.com/frahmantamala/room-reservation/internal"
)

type VerifyUserDTO struct {
	UserID   int64 `json:"user_id"`
	Verified *bool `json:"verified"`
}

func (d VerifyUserDTO) Validate() error {
	if d.UserID <= 0 {
		return internal.NewValidationFieldError("user_id", "user_id is required", internal.ErrCodeValidationFailed)
	}
	if d.Verified == nil {
		return internal.NewValidationFieldError("verified", "verified is required", internal.ErrCodeValidationFailed)
	}
	return nil
}

// UpdateProfileDTO carries a partial update. Nil and blank fields are ignored.
type UpdateProfileDTO struct {
	Name            *string `json:"name,omitempty"`
	Surname         *string `json:"surname,omitempty"`
	Email           *string `json:"email,omitempty"`
	Password        *string `json:"password,omitempty"`
	CurrentPassword *string `json:"current_password,omitempty"`
}

// supplied returns the trimmed value and whether it counts as provided.
func supplied(v *string) (string, bool) {
	if v == nil {
		return "", false
	}
	trimmed := strings.TrimSpace(*v)
	return trimmed, trimmed != ""
}

type ProfileResponse struct {
	*User
	Capabilities map[string]bool `json:"capabilities"`
}

type ChangeResponse struct {
	Success bool   `json:"success"`
	Changed bool   `json:"changed"`
	Message string `json:"message"`
}
