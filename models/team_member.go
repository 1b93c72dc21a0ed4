package models

import "time"

// TeamRole distinguishes the founding captain from joining members.
type TeamRole string

const (
	TeamRoleCaptain TeamRole = "captain"
	TeamRoleMember  TeamRole = "member"
)

// TeamMember is one seat in a team. The (team_id, user_id) unique index is
// what makes the capacity check race-safe: a concurrent duplicate join
// fails the insert instead of over-filling the team.
type TeamMember struct {
	ID       string    `gorm:"primaryKey;type:uuid" json:"id"`
	TeamID   string    `gorm:"uniqueIndex:idx_team_members_seat;not null" json:"team_id"`
	UserID   string    `gorm:"uniqueIndex:idx_team_members_seat;index:idx_team_members_user;not null" json:"user_id"`
	Role     TeamRole  `gorm:"not null" json:"role"`
	JoinTime time.Time `gorm:"index;not null" json:"join_time"`

	Team *Team `gorm:"foreignKey:TeamID" json:"team,omitempty"`
	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`

	Timestamps
}
