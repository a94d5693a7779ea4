package postgres

import (
	"context"
	"errors"
	"fmt"

	roomDatamodel "github.com/frahmantamala/room-reservation/internal/core/datamodel/room"
	"github.com/frahmantamala/room-reservation/internal/room"
	"gorm.io/gorm"
)

type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) room.RepositoryAPI {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) ListActive(ctx context.Context) ([]*roomDatamodel.Room, error) {
	var rooms []*roomDatamodel.Room
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("name ASC").
		Find(&rooms).Error
	if err != nil {
		return nil, fmt.Errorf("room.ListActive: %w", err)
	}
	return rooms, nil
}

func (r *RoomRepository) GetByID(ctx context.Context, id int64) (*roomDatamodel.Room, error) {
	var row roomDatamodel.Room
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("room.GetByID: %w", err)
	}
	return &row, nil
}

func (r *RoomRepository) NameTaken(ctx context.Context, name string, excludeID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&roomDatamodel.Room{}).
		Where("LOWER(name) = LOWER(?) AND id <> ?", name, excludeID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("room.NameTaken: %w", err)
	}
	return count > 0, nil
}

func (r *RoomRepository) Create(ctx context.Context, row *roomDatamodel.Room) error {
	if err := r.db.WithContext(ctx).Create(row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return room.ErrNameTaken
		}
		return fmt.Errorf("room.Create: %w", err)
	}
	return nil
}

func (r *RoomRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Model(&roomDatamodel.Room{}).
		Where("id = ?", id).
		Updates(fields).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return room.ErrNameTaken
		}
		return fmt.Errorf("room.UpdateFields: %w", err)
	}
	return nil
}

func (r *RoomRepository) Deactivate(ctx context.Context, id int64) error {
	err := r.db.WithContext(ctx).Model(&roomDatamodel.Room{}).
		Where("id = ?", id).
		Update("is_active", false).Error
	if err != nil {
		return fmt.Errorf("room.Deactivate: %w", err)
	}
	return nil
}
