package models

import (
	"time"

	"gorm.io/gorm"
)

// UserStatus indicates whether the account participates in the program.
type UserStatus string

const (
	UserStatusActive      UserStatus = "active"
	UserStatusDeactivated UserStatus = "deactivated"
)

// User is a loyalty-program member. TotalPoints is a cached projection of
// the point ledger: it is only ever written together with a PointRecord,
// inside the same transaction.
type User struct {
	ID          string     `gorm:"primaryKey;type:uuid" json:"id"`
	Username    string     `gorm:"uniqueIndex;not null" json:"username"`
	TotalPoints int        `gorm:"not null;default:0" json:"total_points"`
	Status      UserStatus `gorm:"not null;default:'active';index" json:"status"`
	LastLoginAt *time.Time `json:"last_login_at,omitempty"`

	Timestamps
}

// Timestamps adds GORM auto-times
type Timestamps struct {
	CreatedAt time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
	DeletedAt gorm.DeletedAt `json:"deleted_at,omitempty" gorm:"index"`
}
