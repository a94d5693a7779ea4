package postgres

import (
	"context"
	"errors"
	"fmt"

	permissionDatamodel "github.com/frahmantamala/room-reservation/internal/core/datamodel/permission"
	"github.com/frahmantamala/room-reservation/internal/permission"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PermissionRepository struct {
	db *gorm.DB
}

func NewPermissionRepository(db *gorm.DB) permission.RepositoryAPI {
	return &PermissionRepository{db: db}
}

func (r *PermissionRepository) GetByUserID(ctx context.Context, userID int64) (*permissionDatamodel.UserPermission, error) {
	var row permissionDatamodel.UserPermission
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("permission.GetByUserID: %w", err)
	}
	return &row, nil
}

// SetFlag is one INSERT ... ON CONFLICT statement: a new row gets every other
// flag false, an existing row only has the target column overwritten.
func (r *PermissionRepository) SetFlag(ctx context.Context, userID int64, capability permission.Capability, value bool, actorID int64) error {
	column, ok := capability.Column()
	if !ok {
		return fmt.Errorf("permission.SetFlag: unknown capability %q", capability)
	}

	set := permission.NewPermissionSet(userID, false)
	set.Set(capability, value)
	set.UpdatedBy = &actorID
	row := permission.ToDataModel(set)

	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{column, "updated_by", "updated_at"}),
		}).
		Create(row).Error
	if err != nil {
		return fmt.Errorf("permission.SetFlag: %w", err)
	}
	return nil
}

// SetAll replaces the whole row with every canonical flag set to value.
func (r *PermissionRepository) SetAll(ctx context.Context, userID int64, value bool, actorID int64) error {
	set := permission.NewPermissionSet(userID, value)
	set.UpdatedBy = &actorID
	row := permission.ToDataModel(set)

	columns := append(permission.Columns(), "updated_by", "updated_at")
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.AssignmentColumns(columns),
		}).
		Create(row).Error
	if err != nil {
		return fmt.Errorf("permission.SetAll: %w", err)
	}
	return nil
}
