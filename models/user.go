package models

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

const UserTable = "lib_users"

type User struct {
	UserID       uint   `gorm:"primaryKey" json:"user_id"`
	Username     string `gorm:"uniqueIndex;size:255;not null" json:"username"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	Role         string `gorm:"size:20;not null;default:'user'" json:"role"`
	FullName     string `gorm:"size:255;not null" json:"full_name"`
	Email        string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Phone        string `gorm:"size:45" json:"phone,omitempty"`
	Address      string `gorm:"size:255" json:"address,omitempty"`

	LastSeenAt *time.Time `gorm:"index" json:"last_seen_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (User) TableName() string { return UserTable }

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }
