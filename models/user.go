package models

import (
	"time"

	"gorm.io/gorm"
)

// User is the owner identity for interviews and session recordings.
// Credentials live with the external auth service; this row only exists so
// ownership checks and profile hints have a referent.
type User struct {
	ID        string         `gorm:"type:uuid;primaryKey" json:"id"`
	Email     string         `gorm:"uniqueIndex;not null" json:"email"`
	FullName  string         `gorm:"size:255" json:"full_name,omitempty"`
	Major     string         `gorm:"size:255" json:"major,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Interviews []Interview `gorm:"foreignKey:OwnerID" json:"interviews,omitempty"`
}
