package models

// SurpriseType tags the bonus attached to a schedule day.
type SurpriseType string

const (
	SurpriseTypeCoupon  SurpriseType = "coupon"
	SurpriseTypeLottery SurpriseType = "lottery"
)

// CouponSurprise grants a catalog coupon on check-in. Recorded as metadata
// on the base check-in ledger entry; no balance change of its own.
type CouponSurprise struct {
	ProductID   string `json:"product_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

// LotterySurprise points at a prize pool carrying its own payout table.
type LotterySurprise struct {
	PoolName    string        `json:"pool_name"`
	TotalPoints int           `json:"total_points"`
	Tiers       []LotteryTier `json:"tiers"`
}

// LotteryTier mirrors config.LotteryTier so a cycle stays self-contained
// once generated, even if the config changes later.
type LotteryTier struct {
	Probability float64 `json:"prob"`
	Points      int     `json:"points"`
	Message     string  `json:"message"`
}

// Surprise is the tagged union of the two bonus kinds. Exactly one of
// Coupon/Lottery is set, matching Type.
type Surprise struct {
	Type    SurpriseType     `json:"type"`
	Coupon  *CouponSurprise  `json:"coupon,omitempty"`
	Lottery *LotterySurprise `json:"lottery,omitempty"`
}

// DaySchedule is the reward configuration of one weekday.
// DayOfWeek runs 1 (Monday) through 7 (Sunday).
type DaySchedule struct {
	DayOfWeek int       `json:"day_of_week"`
	Points    int       `json:"points"`
	Surprise  *Surprise `json:"surprise,omitempty"`
}

// CheckinCycle is one randomly generated 7-day reward template for a
// calendar week. A pool of these is generated per week and each user is
// allocated one at random. Immutable once created.
// StartDate/EndDate are local YYYY-MM-DD strings (Monday and Sunday).
type CheckinCycle struct {
	ID        string        `gorm:"primaryKey;type:uuid" json:"id"`
	StartDate string        `gorm:"size:10;not null;index:idx_checkin_cycles_week" json:"start_date"`
	EndDate   string        `gorm:"size:10;not null;index:idx_checkin_cycles_week" json:"end_date"`
	Days      []DaySchedule `gorm:"serializer:json;not null" json:"days"`

	Timestamps
}

// DayFor returns the schedule for weekday 1..7, or nil if absent.
func (c *CheckinCycle) DayFor(dayOfWeek int) *DaySchedule {
	for i := range c.Days {
		if c.Days[i].DayOfWeek == dayOfWeek {
			return &c.Days[i]
		}
	}
	return nil
}
