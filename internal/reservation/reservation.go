package reservation

import (
	"time"

	reservationDatamodel "github.com/frahmantamala/room-reservation/internal/core/datamodel/reservation"
)

type Status string

const (
	StatusConfirmed Status = "confirmed"
	StatusCancelled Status = "cancelled"
	StatusCompleted Status = "completed"
)

// MaxDuration bounds a single booking.
const MaxDuration = 12 * time.Hour

type Reservation struct {
	ID        int64     `json:"id"`
	RoomID    int64     `json:"room_id"`
	UserID    int64     `json:"user_id"`
	Title     string    `json:"title"`
	StartsAt  time.Time `json:"starts_at"`
	EndsAt    time.Time `json:"ends_at"`
	Status    Status    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (r *Reservation) IsOwnedBy(userID int64) bool {
	return r.UserID == userID
}

func (r *Reservation) CanBeCancelled() bool {
	return r.Status == StatusConfirmed
}

// Overlaps treats windows as half-open, so back-to-back bookings do not clash.
func (r *Reservation) Overlaps(startsAt, endsAt time.Time) bool {
	return r.StartsAt.Before(endsAt) && r.EndsAt.After(startsAt)
}

func ToDataModel(r *Reservation) *reservationDatamodel.Reservation {
	return &reservationDatamodel.Reservation{
		ID:        r.ID,
		RoomID:    r.RoomID,
		UserID:    r.UserID,
		Title:     r.Title,
		StartsAt:  r.StartsAt,
		EndsAt:    r.EndsAt,
		Status:    string(r.Status),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}

func FromDataModel(r *reservationDatamodel.Reservation) *Reservation {
	if r == nil {
		return nil
	}
	return &Reservation{
		ID:        r.ID,
		RoomID:    r.RoomID,
		UserID:    r.UserID,
		Title:     r.Title,
		StartsAt:  r.StartsAt.UTC(),
		EndsAt:    r.EndsAt.UTC(),
		Status:    Status(r.Status),
		CreatedAt: r.CreatedAt,
		UpdatedAt: r.UpdatedAt,
	}
}
