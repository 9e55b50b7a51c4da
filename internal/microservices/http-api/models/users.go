package models

import "time"

type User struct {
	ID        int64     `gorm:"primaryKey;autoIncrement" json:"user_id"`
	Email     string    `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password  string    `gorm:"column:password_hash;not null" json:"-"` // Not show in JSON
	FullName  string    `gorm:"size:255;not null" json:"full_name"`
	Phone     *string   `gorm:"size:32" json:"phone,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string {
	return "users"
}
