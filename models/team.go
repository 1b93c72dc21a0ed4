package models

import "time"

// TeamStatus is the team lifecycle state.
type TeamStatus string

const (
	TeamStatusPending   TeamStatus = "pending"
	TeamStatusCompleted TeamStatus = "completed"
	TeamStatusExpired   TeamStatus = "expired"
)

// Team is a group of up to four users formed around a join code. Teams are
// never deleted; completed and expired rows remain as history.
// CreatedTime/ExpireTime/CompletedTime come from the service clock, not
// the DB clock, so the virtual clock drives them in tests.
type Team struct {
	ID            string     `gorm:"primaryKey;type:uuid" json:"id"`
	Code          string     `gorm:"uniqueIndex;size:8;not null" json:"code"`
	CaptainID     string     `gorm:"index;not null" json:"captain_id"`
	Status        TeamStatus `gorm:"not null;default:'pending';index" json:"status"`
	CreatedTime   time.Time  `gorm:"index;not null" json:"created_time"`
	ExpireTime    time.Time  `gorm:"not null" json:"expire_time"`
	CompletedTime *time.Time `json:"completed_time,omitempty"`

	Captain *User        `gorm:"foreignKey:CaptainID" json:"captain,omitempty"`
	Members []TeamMember `gorm:"foreignKey:TeamID" json:"members,omitempty"`

	Timestamps
}
