package models

import "time"

// PasswordReset stores a pending password reset token (SHA-256 hashed).
// Tokens are single-use and expire one hour after creation.
type PasswordReset struct {
	Base
	Email     string    `gorm:"not null;index" json:"email"`
	TokenHash string    `gorm:"size:64;not null;index" json:"-"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
}
