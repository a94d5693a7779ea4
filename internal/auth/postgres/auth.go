package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/frahmantamala/room-reservation/internal/auth"
	"gorm.io/gorm"
)

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) *Repository {
	return &Repository{
		db: db,
	}
}

func (r *Repository) GetCredentialByEmail(ctx context.Context, email string) (*auth.Credential, error) {
	var cred auth.Credential
	query := `SELECT id, password_hash, is_verified FROM users WHERE LOWER(email) = LOWER(?)`

	row := r.db.WithContext(ctx).Raw(query, email).Row()
	if err := row.Scan(&cred.UserID, &cred.PasswordHash, &cred.IsVerified); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("auth.GetCredentialByEmail: %w", err)
	}
	return &cred, nil
}
