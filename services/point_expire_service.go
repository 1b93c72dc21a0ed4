package services

import (
	"log"
	"sort"
	"time"

	"loyalty-points-system/config"
	"loyalty-points-system/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PointExpireService zeroes user balances on the configured quarterly
// expiration dates.
type PointExpireService struct {
	DB     *gorm.DB
	Time   *TimeService
	Ledger *LedgerService
	Config config.PointExpireConfig
}

func NewPointExpireService(db *gorm.DB, ts *TimeService, ledger *LedgerService, cfg config.PointExpireConfig) *PointExpireService {
	return &PointExpireService{DB: db, Time: ts, Ledger: ledger, Config: cfg}
}

// SweepResult summarizes an expiration run.
type SweepResult struct {
	UsersAffected      int `json:"users_affected"`
	TotalPointsRemoved int `json:"total_points_removed"`
}

// Sweep expires every active user's balance above the configured floor.
// The whole run is one transaction: a partial sweep never commits.
func (s *PointExpireService) Sweep() (*SweepResult, error) {
	now := s.Time.Now()
	result := &SweepResult{}

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		var users []models.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("status = ? AND total_points > ?", models.UserStatusActive, s.Config.MinExpirePoints).
			Find(&users).Error; err != nil {
			return internalError("fetch users for sweep", err)
		}

		for _, user := range users {
			post, err := s.Ledger.PostIn(tx, user.ID, models.PointCategoryExpiration, -user.TotalPoints, map[string]any{
				"kind":       "scheduled_expiration",
				"swept_at":   now.Format(time.RFC3339),
				"sweep_date": DateString(now),
			})
			if err != nil {
				return err
			}
			result.UsersAffected++
			result.TotalPointsRemoved += post.OldBalance - post.NewBalance
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Printf("✅ [Expire] swept %d users, removed %d points", result.UsersAffected, result.TotalPointsRemoved)
	return result, nil
}

// IsExpireDate reports whether the service's current date is one of the
// configured expiration dates.
func (s *PointExpireService) IsExpireDate() bool {
	now := s.Time.Now()
	for _, d := range s.Config.Dates {
		if int(now.Month()) == d.Month && now.Day() == d.Day {
			return true
		}
	}
	return false
}

// UpcomingExpireDate is a resolved future expiration instant.
type UpcomingExpireDate struct {
	Name string    `json:"name"`
	Date string    `json:"date"`
	At   time.Time `json:"at"`
}

// NextExpireDates resolves the configured month/day pairs against the
// current year, rolling past dates into the next year, sorted soonest
// first.
func (s *PointExpireService) NextExpireDates() []UpcomingExpireDate {
	now := s.Time.Now()
	out := make([]UpcomingExpireDate, 0, len(s.Config.Dates))
	for _, d := range s.Config.Dates {
		at := time.Date(now.Year(), time.Month(d.Month), d.Day,
			s.Config.Hour, s.Config.Minute, 0, 0, now.Location())
		if !at.After(now) {
			at = at.AddDate(1, 0, 0)
		}
		out = append(out, UpcomingExpireDate{
			Name: d.Name,
			Date: DateString(at),
			At:   at,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].At.Before(out[j].At) })
	return out
}
