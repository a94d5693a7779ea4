package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	userDatamodel "github.com/frahmantamala/room-reservation/internal/core/datamodel/user"
	"github.com/frahmantamala/room-reservation/internal/user"
	"gorm.io/gorm"
)

type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

var _ user.RepositoryAPI = (*UserRepository)(nil)

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("user.GetByID: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*userDatamodel.User, error) {
	var u userDatamodel.User
	err := r.db.WithContext(ctx).Where("LOWER(email) = ?", strings.ToLower(email)).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("user.GetByEmail: %w", err)
	}
	return &u, nil
}

// Exists satisfies permission.UserDirectory.
func (r *UserRepository) Exists(ctx context.Context, id int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).Where("id = ?", id).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("user.Exists: %w", err)
	}
	return count > 0, nil
}

func (r *UserRepository) EmailTakenByOther(ctx context.Context, email string, excludeID int64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).
		Where("LOWER(email) = ? AND id <> ?", strings.ToLower(email), excludeID).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("user.EmailTakenByOther: %w", err)
	}
	return count > 0, nil
}

func (r *UserRepository) SetVerified(ctx context.Context, id int64, verified bool) error {
	result := r.db.WithContext(ctx).Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Update("is_verified", verified)
	if result.Error != nil {
		return fmt.Errorf("user.SetVerified: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("user.SetVerified: %w", gorm.ErrRecordNotFound)
	}
	return nil
}

// UpdateFields writes the given columns in one UPDATE. A unique violation on
// email, possible when two users race for the same address, maps to
// user.ErrEmailTaken.
func (r *UserRepository) UpdateFields(ctx context.Context, id int64, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	err := r.db.WithContext(ctx).Model(&userDatamodel.User{}).
		Where("id = ?", id).
		Updates(fields).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return user.ErrEmailTaken
		}
		return fmt.Errorf("user.UpdateFields: %w", err)
	}
	return nil
}

func (r *UserRepository) Create(ctx context.Context, u *userDatamodel.User) error {
	if err := r.db.WithContext(ctx).Create(u).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return user.ErrEmailTaken
		}
		return fmt.Errorf("user.Create: %w", err)
	}
	return nil
}
