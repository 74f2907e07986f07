package models

import (
	"time"

	"gorm.io/gorm"
)

// Base contains common columns for all tables. DeletedAt enables GORM
// soft deletes: deleted rows stay in the table and are excluded from
// queries unless Unscoped is used.
type Base struct {
	ID        uint           `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}
