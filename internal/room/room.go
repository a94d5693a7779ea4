package room

import (
	"time"

	roomDatamodel "github.com/frahmantamala/room-reservation/internal/core/datamodel/room"
)

type Room struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Location    string    `json:"location"`
	Capacity    int       `json:"capacity"`
	Description string    `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func (r *Room) Deactivate() {
	r.IsActive = false
	r.UpdatedAt = time.Now()
}

func NewRoom(name, location string, capacity int, description string) *Room {
	now := time.Now()
	return &Room{
		Name:        name,
		Location:    location,
		Capacity:    capacity,
		Description: description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

func ToDataModel(r *Room) *roomDatamodel.Room {
	return &roomDatamodel.Room{
		ID:          r.ID,
		Name:        r.Name,
		Location:    r.Location,
		Capacity:    r.Capacity,
		Description: r.Description,
		IsActive:    r.IsActive,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}

func FromDataModel(r *roomDatamodel.Room) *Room {
	if r == nil {
		return nil
	}
	return &Room{
		ID:          r.ID,
		Name:        r.Name,
		Location:    r.Location,
		Capacity:    r.Capacity,
		Description: r.Description,
		IsActive:    r.IsActive,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
	}
}
