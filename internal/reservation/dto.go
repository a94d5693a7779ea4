package reservation

import (
	"strings"
	"time"

	"github.com/frahmantamala/room-reservation/internal"
	"github.com/frahmantamala/room-reservation/internal/core/common/validation"
)

type CreateReservationDTO struct {
	RoomID   int64     `json:"room_id"`
	Title    string    `json:"title"`
	StartsAt time.Time `json:"starts_at"`
	EndsAt   time.Time `json:"ends_at"`
}

// Normalize trims the title and moves both bounds to UTC at second precision.
func (d *CreateReservationDTO) Normalize() {
	d.Title = strings.TrimSpace(d.Title)
	d.StartsAt = d.StartsAt.UTC().Truncate(time.Second)
	d.EndsAt = d.EndsAt.UTC().Truncate(time.Second)
}

func (d CreateReservationDTO) Validate(now time.Time) *internal.AppError {
	v := validation.NewValidator()
	v.Field("room_id", d.RoomID).Required().MinInt(1, internal.ErrCodeValidationFailed)
	v.Field("title", d.Title).Required().MaxLength(200)
	v.Field("starts_at", d.StartsAt).Required().NotPast(now)
	v.Field("ends_at", d.EndsAt).Required().Custom(func(interface{}) *internal.AppError {
		if d.StartsAt.IsZero() {
			return nil
		}
		if !d.EndsAt.After(d.StartsAt) {
			return internal.NewValidationFieldError("ends_at", "ends_at must be after starts_at", internal.ErrCodeInvalidTimeRange)
		}
		if d.EndsAt.Sub(d.StartsAt) > MaxDuration {
			return internal.NewValidationFieldError("ends_at", "a reservation cannot exceed 12 hours", internal.ErrCodeInvalidTimeRange)
		}
		return nil
	})
	return v.Validate()
}

type ReservationsResponse struct {
	Reservations []*Reservation `json:"reservations"`
}
