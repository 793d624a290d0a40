package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Auth providers.
const (
	ProviderLocal  = "LOCAL"
	ProviderGoogle = "GOOGLE"
)

// Roles.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// User is the shared identity record for both the hub and showtime apps.
type User struct {
	ID             uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email          string         `gorm:"not null;size:255;uniqueIndex" json:"email"`
	Username       string         `gorm:"size:100" json:"username"`
	Password       string         `json:"-"` // empty for OAuth-only accounts
	Role           string         `gorm:"size:20;default:'USER'" json:"role"`
	IsVerified     bool           `gorm:"default:false" json:"is_verified"`
	AuthProvider   string         `gorm:"size:20;default:'LOCAL'" json:"-"`
	AuthProviderID *string        `gorm:"size:255;index" json:"-"`
	Image          string         `gorm:"type:text" json:"image,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
	UpdatedAt      time.Time      `json:"updated_at"`
	DeletedAt      gorm.DeletedAt `gorm:"index" json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	return nil
}
