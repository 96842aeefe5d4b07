package models

import (
	"time"
)

// UserRole defines the permission level of a user
type UserRole int

const (
	RoleUser  UserRole = iota // 0
	RoleAdmin                 // 1
)

// String returns the lowercase name used in API payloads and JWT claims.
func (r UserRole) String() string {
	if r == RoleAdmin {
		return "admin"
	}
	return "user"
}

// User is a registered participant. PasswordHash is a bcrypt hash and is
// never serialized.
type User struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	Username     string    `gorm:"uniqueIndex;not null" json:"username"`
	PasswordHash string    `gorm:"not null" json:"-"`
	Role         UserRole  `gorm:"not null;default:0" json:"role"`
}
