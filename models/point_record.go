package models

import "time"

// PointCategory classifies a ledger entry.
type PointCategory string

const (
	PointCategoryCheckin    PointCategory = "checkin"
	PointCategoryTeam       PointCategory = "team"
	PointCategoryRedemption PointCategory = "redemption"
	PointCategoryExpiration PointCategory = "expiration"
)

// PointRecord is one immutable entry of the per-user point ledger.
// Entries are append-only; BalanceAfter snapshots the user's balance after
// applying Delta and is never below zero. User.TotalPoints always equals
// the latest entry's BalanceAfter.
type PointRecord struct {
	ID           string         `gorm:"primaryKey;type:uuid" json:"id"`
	UserID       string         `gorm:"index:idx_point_records_user;not null" json:"user_id"`
	Category     PointCategory  `gorm:"index:idx_point_records_type;not null" json:"category"`
	Delta        int            `gorm:"not null" json:"delta"`
	BalanceAfter int            `gorm:"not null" json:"balance_after"`
	Metadata     map[string]any `gorm:"serializer:json" json:"metadata,omitempty"`
	OccurredAt   time.Time      `gorm:"index:idx_point_records_time;not null" json:"occurred_at"`

	Timestamps
}
