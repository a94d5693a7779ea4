package room

import (
	"math"
	"strings"

	"github.com/frahmantamala/room-reservation/internal"
	"github.com/frahmantamala/room-reservation/internal/core/common/validation"
)

type CreateRoomDTO struct {
	Name        string `json:"name"`
	Location    string `json:"location"`
	Capacity    int    `json:"capacity"`
	Description string `json:"description"`
}

func (d *CreateRoomDTO) Normalize() {
	d.Name = strings.TrimSpace(d.Name)
	d.Location = strings.TrimSpace(d.Location)
	d.Description = strings.TrimSpace(d.Description)
}

func (d CreateRoomDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	v.Field("name", d.Name).Required().MaxLength(100)
	v.Field("location", d.Location).MaxLength(200)
	v.Field("capacity", d.Capacity).
		MinInt(1, internal.ErrCodeValidationFailed).
		MaxInt(math.MaxInt32, internal.ErrCodeValidationFailed)
	v.Field("description", d.Description).MaxLength(1000)
	return v.Validate()
}

// UpdateRoomDTO is a partial update; nil fields are left alone.
type UpdateRoomDTO struct {
	Name        *string `json:"name,omitempty"`
	Location    *string `json:"location,omitempty"`
	Capacity    *int    `json:"capacity,omitempty"`
	Description *string `json:"description,omitempty"`
}

func (d UpdateRoomDTO) IsEmpty() bool {
	return d.Name == nil && d.Location == nil && d.Capacity == nil && d.Description == nil
}

func (d UpdateRoomDTO) Validate() *internal.AppError {
	v := validation.NewValidator()
	if d.Name != nil {
		v.Field("name", strings.TrimSpace(*d.Name)).Required().MaxLength(100)
	}
	if d.Location != nil {
		v.Field("location", *d.Location).MaxLength(200)
	}
	if d.Capacity != nil {
		v.Field("capacity", *d.Capacity).
			MinInt(1, internal.ErrCodeValidationFailed).
			MaxInt(math.MaxInt32, internal.ErrCodeValidationFailed)
	}
	if d.Description != nil {
		v.Field("description", *d.Description).MaxLength(1000)
	}
	return v.Validate()
}

type RoomsResponse struct {
	Rooms []*Room `json:"rooms"`
}
