package reservation

import "time"

type Reservation struct {
	ID        int64     `gorm:"primaryKey"`
	RoomID    int64     `gorm:"column:room_id;not null;index:idx_reservations_room_window,priority:1"`
	UserID    int64     `gorm:"column:user_id;not null;index"`
	Title     string    `gorm:"column:title;not null"`
	StartsAt  time.Time `gorm:"column:starts_at;not null;index:idx_reservations_room_window,priority:2"`
	EndsAt    time.Time `gorm:"column:ends_at;not null"`
	Status    string    `gorm:"column:status;not null;default:'confirmed'"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

func (Reservation) TableName() string {
	return "reservations"
}
