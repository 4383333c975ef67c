package models

import (
	"time"

	"gorm.io/gorm"
)

// User represents an operator who signs into the admin dashboard
type User struct {
	gorm.Model

	// Authentication fields
	Email        string `gorm:"uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"not null" json:"-"`
	TokenVersion int    `gorm:"default:0" json:"-"`

	// Password reset flow
	OTP          string    `json:"-"`
	OTPExpiresAt time.Time `json:"-"`
	OTPVerified  bool      `gorm:"default:false" json:"-"`
	ResetToken   string    `json:"-"`

	// Profile information
	Name     *string `json:"name,omitempty"`
	Language string  `gorm:"default:'ja'" json:"language"`

	// Account status
	IsActive bool `gorm:"default:true" json:"is_active"`
	IsAdmin  bool `gorm:"default:false" json:"is_admin"` // admins may edit master data

	// Relations
	Accounts []Account `gorm:"foreignKey:UserID" json:"accounts,omitempty"`
}
