package services

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"loyalty-points-system/config"
	"loyalty-points-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CheckinService owns the weekly schedule pool, the per-user allocation
// and the daily check-in itself.
type CheckinService struct {
	DB     *gorm.DB
	Time   *TimeService
	Ledger *LedgerService
	Config config.CheckinConfig

	rng *rng
}

func NewCheckinService(db *gorm.DB, ts *TimeService, ledger *LedgerService, cfg config.CheckinConfig) *CheckinService {
	return &CheckinService{
		DB:     db,
		Time:   ts,
		Ledger: ledger,
		Config: cfg,
		rng:    newRNG(ts.Now().UnixNano()),
	}
}

// SeedRand re-seeds the service's random source. Test hook.
func (s *CheckinService) SeedRand(seed int64) { s.rng = newRNG(seed) }

// --- schedule generation ---

// GenerateWeeklyCycles creates the configured pool of schedule variants
// for the week containing the service clock's now. Idempotent: a week
// that already has cycles is left alone.
func (s *CheckinService) GenerateWeeklyCycles() error {
	now := s.Time.Now()
	monday := DateString(WeekMonday(now))
	sunday := DateString(WeekSunday(now))

	var existing int64
	if err := s.DB.Model(&models.CheckinCycle{}).
		Where("start_date = ? AND end_date = ?", monday, sunday).
		Count(&existing).Error; err != nil {
		return internalError("count existing cycles", err)
	}
	if existing > 0 {
		log.Printf("[Checkin] cycles for %s..%s already exist, skipping generation", monday, sunday)
		return nil
	}

	coupons, err := s.eligibleCoupons()
	if err != nil {
		return err
	}

	cycles := make([]models.CheckinCycle, 0, s.Config.CycleCount)
	for i := 0; i < s.Config.CycleCount; i++ {
		cycles = append(cycles, models.CheckinCycle{
			ID:        uuid.NewString(),
			StartDate: monday,
			EndDate:   sunday,
			Days:      s.generateWeekSchedule(coupons),
		})
	}

	if err := s.DB.Create(&cycles).Error; err != nil {
		return internalError("insert weekly cycles", err)
	}
	log.Printf("✅ [Checkin] generated %d cycles for week %s..%s", len(cycles), monday, sunday)
	return nil
}

// generateWeekSchedule builds one 7-day schedule: random base points per
// day and 1..3 surprise days, each carrying a coupon or a lottery pool.
func (s *CheckinService) generateWeekSchedule(coupons []models.Product) []models.DaySchedule {
	surpriseCount := s.rng.IntBetween(s.Config.SurpriseDaysMin, s.Config.SurpriseDaysMax)
	surpriseDays := make(map[int]bool, surpriseCount)
	for len(surpriseDays) < surpriseCount {
		surpriseDays[1+s.rng.Intn(7)] = true
	}

	days := make([]models.DaySchedule, 0, 7)
	for day := 1; day <= 7; day++ {
		ds := models.DaySchedule{
			DayOfWeek: day,
			Points:    s.rng.IntBetween(s.Config.PointsMin, s.Config.PointsMax),
		}
		if surpriseDays[day] {
			ds.Surprise = s.generateSurprise(coupons)
		}
		days = append(days, ds)
	}
	return days
}

// generateSurprise draws the surprise kind (coupon vs lottery) from the
// configured weights and fills in the payload. With no eligible coupons
// in the catalog a coupon draw falls back to a lottery surprise.
func (s *CheckinService) generateSurprise(coupons []models.Product) *models.Surprise {
	kind := pickWeighted(s.rng, []float64{s.Config.CouponWeight, 1 - s.Config.CouponWeight})
	if kind == 0 && len(coupons) > 0 {
		coupon := coupons[s.rng.Intn(len(coupons))]
		return &models.Surprise{
			Type: models.SurpriseTypeCoupon,
			Coupon: &models.CouponSurprise{
				ProductID:   coupon.ID,
				Name:        coupon.Name,
				Description: coupon.Description,
			},
		}
	}
	return &models.Surprise{
		Type:    models.SurpriseTypeLottery,
		Lottery: s.randomLotteryPool(),
	}
}

func (s *CheckinService) randomLotteryPool() *models.LotterySurprise {
	pools := s.Config.LotteryPools
	pool := pools[s.rng.Intn(len(pools))]
	tiers := make([]models.LotteryTier, len(pool.Tiers))
	for i, t := range pool.Tiers {
		tiers[i] = models.LotteryTier{Probability: t.Probability, Points: t.Points, Message: t.Message}
	}
	return &models.LotterySurprise{
		PoolName:    pool.Name,
		TotalPoints: pool.TotalPoints,
		Tiers:       tiers,
	}
}

func (s *CheckinService) eligibleCoupons() ([]models.Product, error) {
	var coupons []models.Product
	if err := s.DB.Where("status = ?", models.ProductStatusSurpriseOnly).
		Find(&coupons).Error; err != nil {
		return nil, internalError("fetch surprise coupons", err)
	}
	if len(coupons) == 0 {
		log.Println("⚠️  [Checkin] no surprise coupons in catalog, surprises fall back to lottery")
	}
	return coupons, nil
}

// --- allocation ---

// allocate returns the user's allocation for the current week, creating
// one lazily on first access. Creation races resolve through the
// (user_id, week_end) unique index: a duplicate insert is re-fetched, not
// surfaced.
func (s *CheckinService) allocate(userID string) (*models.UserCheckinConfig, error) {
	now := s.Time.Now()
	weekEnd := DateString(WeekSunday(now))

	existing, err := s.fetchAllocation(userID, weekEnd)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	cycle, err := s.pickCycle()
	if err != nil {
		return nil, err
	}

	alloc := models.UserCheckinConfig{
		ID:      uuid.NewString(),
		UserID:  userID,
		CycleID: cycle.ID,
		WeekEnd: weekEnd,
	}
	if err := s.DB.Create(&alloc).Error; err != nil {
		if isUniqueViolation(err) {
			return s.mustFetchAllocation(userID, weekEnd)
		}
		return nil, internalError("create check-in allocation", err)
	}
	alloc.Cycle = cycle
	return &alloc, nil
}

func (s *CheckinService) fetchAllocation(userID, weekEnd string) (*models.UserCheckinConfig, error) {
	var alloc models.UserCheckinConfig
	err := s.DB.Preload("Cycle").
		Where("user_id = ? AND week_end = ?", userID, weekEnd).
		First(&alloc).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, internalError("fetch check-in allocation", err)
	}
	return &alloc, nil
}

func (s *CheckinService) mustFetchAllocation(userID, weekEnd string) (*models.UserCheckinConfig, error) {
	alloc, err := s.fetchAllocation(userID, weekEnd)
	if err != nil {
		return nil, err
	}
	if alloc == nil {
		return nil, internalError("re-fetch allocation after duplicate insert", gorm.ErrRecordNotFound)
	}
	return alloc, nil
}

// pickCycle selects one schedule variant for the current week uniformly
// at random, generating the pool first if the week has none yet.
func (s *CheckinService) pickCycle() (*models.CheckinCycle, error) {
	monday := DateString(WeekMonday(s.Time.Now()))
	sunday := DateString(WeekSunday(s.Time.Now()))

	var cycles []models.CheckinCycle
	if err := s.DB.Where("start_date = ? AND end_date = ?", monday, sunday).
		Find(&cycles).Error; err != nil {
		return nil, internalError("fetch weekly cycles", err)
	}
	if len(cycles) == 0 {
		if err := s.GenerateWeeklyCycles(); err != nil {
			return nil, err
		}
		if err := s.DB.Where("start_date = ? AND end_date = ?", monday, sunday).
			Find(&cycles).Error; err != nil {
			return nil, internalError("re-fetch weekly cycles", err)
		}
		if len(cycles) == 0 {
			return nil, internalError("weekly cycle pool empty after generation", gorm.ErrRecordNotFound)
		}
	}
	cycle := cycles[s.rng.Intn(len(cycles))]
	return &cycle, nil
}

// isUniqueViolation sniffs duplicate-key failures across postgres and the
// sqlite driver used in tests.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// --- the check-in itself ---

// SurpriseOutcome reports what the day's surprise resolved to. Forfeited
// is set when an earlier missed day cost the user the bonus.
type SurpriseOutcome struct {
	Type      models.SurpriseType    `json:"type"`
	Forfeited bool                   `json:"forfeited"`
	Coupon    *models.CouponSurprise `json:"coupon,omitempty"`
	Lottery   *LotteryOutcome        `json:"lottery,omitempty"`
}

// CheckinResult is the outcome of one successful check-in.
type CheckinResult struct {
	DayOfWeek   int                  `json:"day_of_week"`
	BasePoints  int                  `json:"base_points"`
	TotalPoints int                  `json:"total_points"`
	NewBalance  int                  `json:"new_balance"`
	Surprise    *SurpriseOutcome     `json:"surprise,omitempty"`
	Records     []models.PointRecord `json:"records"`
}

// Checkin executes today's check-in for the user: base points, surprise
// resolution with missed-day forfeiture, and the day-flag flip, all in
// one transaction.
func (s *CheckinService) Checkin(userID string) (*CheckinResult, error) {
	alloc, err := s.allocate(userID)
	if err != nil {
		return nil, err
	}

	now := s.Time.Now()
	today := DayOfWeek(now)

	var result *CheckinResult
	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		// Re-read the allocation under lock so two concurrent check-ins
		// for the same day cannot both pass the flag check.
		var locked models.UserCheckinConfig
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			First(&locked, "id = ?", alloc.ID).Error; err != nil {
			return internalError("lock allocation", err)
		}
		if locked.DayChecked(today) {
			return ErrAlreadyCheckedIn
		}

		dayConfig := alloc.Cycle.DayFor(today)
		if dayConfig == nil {
			return ErrScheduleMissing
		}

		result = &CheckinResult{
			DayOfWeek:   today,
			BasePoints:  dayConfig.Points,
			TotalPoints: dayConfig.Points,
		}

		missed := s.hasMissedDay(&locked, today)
		metadata := map[string]any{
			"kind":        "checkin",
			"day_of_week": today,
			"week_end":    locked.WeekEnd,
		}
		if dayConfig.Surprise != nil && dayConfig.Surprise.Type == models.SurpriseTypeCoupon && !missed {
			// A coupon grant rides on the base entry's metadata.
			metadata["coupon"] = dayConfig.Surprise.Coupon
		}

		base, err := s.Ledger.PostIn(tx, userID, models.PointCategoryCheckin, dayConfig.Points, metadata)
		if err != nil {
			return err
		}
		result.Records = append(result.Records, *base.Record)
		result.NewBalance = base.NewBalance

		if dayConfig.Surprise != nil {
			outcome, extra, err := s.resolveSurprise(tx, userID, dayConfig, today, missed)
			if err != nil {
				return err
			}
			result.Surprise = outcome
			if extra != nil {
				result.Records = append(result.Records, *extra.Record)
				result.TotalPoints += extra.Record.Delta
				result.NewBalance = extra.NewBalance
			}
		}

		column, err := models.DayColumn(today)
		if err != nil {
			return internalError("resolve day column", err)
		}
		if err := tx.Model(&models.UserCheckinConfig{}).
			Where("id = ?", locked.ID).
			Update(column, true).Error; err != nil {
			return internalError("set check-in flag", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return result, nil
}

// resolveSurprise applies the forfeiture rule and, for lottery surprises,
// posts the winning delta as a second ledger entry inside tx.
func (s *CheckinService) resolveSurprise(tx *gorm.DB, userID string, day *models.DaySchedule, today int, missed bool) (*SurpriseOutcome, *PostResult, error) {
	outcome := &SurpriseOutcome{Type: day.Surprise.Type}

	if missed {
		outcome.Forfeited = true
		log.Printf("[Checkin] user %s forfeited day %d surprise (missed earlier day)", userID, today)
		return outcome, nil, nil
	}

	switch day.Surprise.Type {
	case models.SurpriseTypeCoupon:
		// The grant rides on the base entry's metadata; no extra delta.
		outcome.Coupon = day.Surprise.Coupon
		return outcome, nil, nil

	case models.SurpriseTypeLottery:
		draw := resolveLottery(s.rng, day.Surprise.Lottery)
		outcome.Lottery = &draw
		if draw.Points <= 0 {
			return outcome, nil, nil
		}
		post, err := s.Ledger.PostIn(tx, userID, models.PointCategoryCheckin, draw.Points, map[string]any{
			"kind":        "checkin_lottery",
			"pool_name":   draw.PoolName,
			"message":     draw.Message,
			"day_of_week": today,
		})
		if err != nil {
			return nil, nil, err
		}
		return outcome, post, nil
	}
	return nil, nil, internalError("unknown surprise type", fmt.Errorf("%q", day.Surprise.Type))
}

// hasMissedDay reports whether any day before today in the week is still
// unchecked. A missed day forfeits later surprises, base points excluded.
func (s *CheckinService) hasMissedDay(alloc *models.UserCheckinConfig, today int) bool {
	for day := 1; day < today; day++ {
		if !alloc.DayChecked(day) {
			return true
		}
	}
	return false
}

// --- the weekly view ---

// CheckinDayInfo is one day of the user-facing week view.
type CheckinDayInfo struct {
	DayOfWeek    int              `json:"day_of_week"`
	Points       int              `json:"points"`
	IsSurprise   bool             `json:"is_surprise"`
	SurpriseInfo *models.Surprise `json:"surprise_info,omitempty"`
	IsCheckedIn  bool             `json:"is_checked_in"`
	IsToday      bool             `json:"is_today"`
}

// CheckinInfo is the user's full current-week check-in state.
type CheckinInfo struct {
	UserID           string           `json:"user_id"`
	CycleID          string           `json:"cycle_id"`
	CurrentDayOfWeek int              `json:"current_day_of_week"`
	WeekStart        string           `json:"week_start"`
	WeekEnd          string           `json:"week_end"`
	Days             []CheckinDayInfo `json:"days"`
}

// GetCheckinInfo returns the current week's schedule and progress,
// allocating a cycle on first access.
func (s *CheckinService) GetCheckinInfo(userID string) (*CheckinInfo, error) {
	alloc, err := s.allocate(userID)
	if err != nil {
		return nil, err
	}

	today := DayOfWeek(s.Time.Now())
	info := &CheckinInfo{
		UserID:           userID,
		CycleID:          alloc.CycleID,
		CurrentDayOfWeek: today,
		WeekStart:        alloc.Cycle.StartDate,
		WeekEnd:          alloc.Cycle.EndDate,
	}
	for _, day := range alloc.Cycle.Days {
		info.Days = append(info.Days, CheckinDayInfo{
			DayOfWeek:    day.DayOfWeek,
			Points:       day.Points,
			IsSurprise:   day.Surprise != nil,
			SurpriseInfo: day.Surprise,
			IsCheckedIn:  alloc.DayChecked(day.DayOfWeek),
			IsToday:      day.DayOfWeek == today,
		})
	}
	return info, nil
}
