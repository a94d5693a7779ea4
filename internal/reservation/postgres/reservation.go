package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/frahmantamala/room-reservation/internal"
	reservationDatamodel "github.com/frahmantamala/room-reservation/internal/core/datamodel/reservation"
	roomDatamodel "github.com/frahmantamala/room-reservation/internal/core/datamodel/room"
	"github.com/frahmantamala/room-reservation/internal/reservation"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type ReservationRepository struct {
	db *gorm.DB
}

func NewReservationRepository(db *gorm.DB) reservation.RepositoryAPI {
	return &ReservationRepository{db: db}
}

// CreateIfFree serialises bookings per room with SELECT ... FOR UPDATE on the
// room row, so the overlap check and the insert see the same state.
func (r *ReservationRepository) CreateIfFree(ctx context.Context, row *reservationDatamodel.Reservation) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var room roomDatamodel.Room
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ? AND is_active = ?", row.RoomID, true).
			First(&room).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return internal.ErrRoomNotFound
			}
			return fmt.Errorf("reservation.CreateIfFree: lock room: %w", err)
		}

		var overlapping int64
		err = tx.Model(&reservationDatamodel.Reservation{}).
			Where("room_id = ? AND status = ? AND starts_at < ? AND ends_at > ?",
				row.RoomID, string(reservation.StatusConfirmed), row.EndsAt, row.StartsAt).
			Count(&overlapping).Error
		if err != nil {
			return fmt.Errorf("reservation.CreateIfFree: overlap check: %w", err)
		}
		if overlapping > 0 {
			return reservation.ErrConflict
		}

		if err := tx.Create(row).Error; err != nil {
			return fmt.Errorf("reservation.CreateIfFree: insert: %w", err)
		}
		return nil
	})
}

func (r *ReservationRepository) GetByID(ctx context.Context, id int64) (*reservationDatamodel.Reservation, error) {
	var row reservationDatamodel.Reservation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("reservation.GetByID: %w", err)
	}
	return &row, nil
}

func (r *ReservationRepository) ListByUser(ctx context.Context, userID int64) ([]*reservationDatamodel.Reservation, error) {
	var rows []*reservationDatamodel.Reservation
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("starts_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("reservation.ListByUser: %w", err)
	}
	return rows, nil
}

func (r *ReservationRepository) ListAll(ctx context.Context) ([]*reservationDatamodel.Reservation, error) {
	var rows []*reservationDatamodel.Reservation
	err := r.db.WithContext(ctx).
		Order("starts_at ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("reservation.ListAll: %w", err)
	}
	return rows, nil
}

func (r *ReservationRepository) TransitionStatus(ctx context.Context, id int64, from, to string) (bool, error) {
	result := r.db.WithContext(ctx).Model(&reservationDatamodel.Reservation{}).
		Where("id = ? AND status = ?", id, from).
		Update("status", to)
	if result.Error != nil {
		return false, fmt.Errorf("reservation.TransitionStatus: %w", result.Error)
	}
	return result.RowsAffected > 0, nil
}
