package models

import "fmt"

// UserCheckinConfig links a user to the schedule cycle they drew for one
// week and tracks which days they have checked in. One row per
// (user, week); the unique index closes the lazy-allocation race.
// Day1..Day7 follow the Monday-start week, so Day7 is Sunday.
type UserCheckinConfig struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID  string `gorm:"uniqueIndex:idx_user_checkin_week;not null" json:"user_id"`
	CycleID string `gorm:"index;not null" json:"cycle_id"`
	// WeekEnd is the week's Sunday as a local YYYY-MM-DD string.
	WeekEnd string `gorm:"uniqueIndex:idx_user_checkin_week;size:10;not null" json:"week_end"`

	Day1 bool `gorm:"not null;default:false" json:"day1"`
	Day2 bool `gorm:"not null;default:false" json:"day2"`
	Day3 bool `gorm:"not null;default:false" json:"day3"`
	Day4 bool `gorm:"not null;default:false" json:"day4"`
	Day5 bool `gorm:"not null;default:false" json:"day5"`
	Day6 bool `gorm:"not null;default:false" json:"day6"`
	Day7 bool `gorm:"not null;default:false" json:"day7"`

	Cycle *CheckinCycle `gorm:"foreignKey:CycleID" json:"cycle,omitempty"`

	Timestamps
}

// DayChecked reports the flag for weekday 1..7.
func (c *UserCheckinConfig) DayChecked(dayOfWeek int) bool {
	switch dayOfWeek {
	case 1:
		return c.Day1
	case 2:
		return c.Day2
	case 3:
		return c.Day3
	case 4:
		return c.Day4
	case 5:
		return c.Day5
	case 6:
		return c.Day6
	case 7:
		return c.Day7
	}
	return false
}

// DayColumn returns the column name carrying the flag for weekday 1..7,
// for targeted updates inside the check-in transaction.
func DayColumn(dayOfWeek int) (string, error) {
	if dayOfWeek < 1 || dayOfWeek > 7 {
		return "", fmt.Errorf("day of week out of range: %d", dayOfWeek)
	}
	return fmt.Sprintf("day%d", dayOfWeek), nil
}
