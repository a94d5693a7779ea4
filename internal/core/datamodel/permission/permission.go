package permission

import "time"

// UserPermission is the single permissions row of a user. Every capability is a
// NOT NULL boolean column; a user without a row has none of them.
type UserPermission struct {
	UserID                int64     `gorm:"column:user_id;primaryKey;autoIncrement:false"`
	CanEditUsers          bool      `gorm:"column:can_edit_users;not null"`
	CanManageRooms        bool      `gorm:"column:can_manage_rooms;not null"`
	CanManageReservations bool      `gorm:"column:can_manage_reservations;not null"`
	UpdatedBy             *int64    `gorm:"column:updated_by"`
	UpdatedAt             time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (UserPermission) TableName() string {
	return "user_permissions"
}
