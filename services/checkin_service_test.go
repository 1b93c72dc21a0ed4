package services

import (
	"testing"
	"time"

	"loyalty-points-system/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

// insertCycle plants a deterministic schedule for the fixture's current
// week and returns it.
func insertCycle(f *fixture, days []models.DaySchedule) *models.CheckinCycle {
	f.t.Helper()
	cycle := &models.CheckinCycle{
		ID:        uuid.NewString(),
		StartDate: DateString(WeekMonday(f.time.Now())),
		EndDate:   DateString(WeekSunday(f.time.Now())),
		Days:      days,
	}
	require.NoError(f.t, f.db.Create(cycle).Error)
	return cycle
}

// insertAllocation pins a user to a cycle with the given days already
// checked.
func insertAllocation(f *fixture, userID string, cycle *models.CheckinCycle, checkedDays ...int) *models.UserCheckinConfig {
	f.t.Helper()
	alloc := &models.UserCheckinConfig{
		ID:      uuid.NewString(),
		UserID:  userID,
		CycleID: cycle.ID,
		WeekEnd: cycle.EndDate,
	}
	for _, day := range checkedDays {
		switch day {
		case 1:
			alloc.Day1 = true
		case 2:
			alloc.Day2 = true
		case 3:
			alloc.Day3 = true
		case 4:
			alloc.Day4 = true
		case 5:
			alloc.Day5 = true
		case 6:
			alloc.Day6 = true
		case 7:
			alloc.Day7 = true
		}
	}
	require.NoError(f.t, f.db.Create(alloc).Error)
	return alloc
}

func flatWeek(points int) []models.DaySchedule {
	days := make([]models.DaySchedule, 0, 7)
	for d := 1; d <= 7; d++ {
		days = append(days, models.DaySchedule{DayOfWeek: d, Points: points})
	}
	return days
}

func TestGenerateWeeklyCyclesIdempotent(t *testing.T) {
	f := newFixture(t)
	svc := f.checkinService()

	require.NoError(t, svc.GenerateWeeklyCycles())
	require.NoError(t, svc.GenerateWeeklyCycles())

	var count int64
	require.NoError(t, f.db.Model(&models.CheckinCycle{}).Count(&count).Error)
	require.EqualValues(t, svc.Config.CycleCount, count)

	var cycles []models.CheckinCycle
	require.NoError(t, f.db.Find(&cycles).Error)
	for _, cycle := range cycles {
		require.Equal(t, "2026-01-05", cycle.StartDate)
		require.Equal(t, "2026-01-11", cycle.EndDate)
		require.Len(t, cycle.Days, 7)

		surprises := 0
		for i, day := range cycle.Days {
			require.Equal(t, i+1, day.DayOfWeek)
			require.GreaterOrEqual(t, day.Points, svc.Config.PointsMin)
			require.LessOrEqual(t, day.Points, svc.Config.PointsMax)
			if day.Surprise != nil {
				surprises++
				// No surprise-only coupons exist, so every surprise
				// falls back to a lottery pool.
				require.Equal(t, models.SurpriseTypeLottery, day.Surprise.Type)
				require.NotNil(t, day.Surprise.Lottery)
			}
		}
		require.GreaterOrEqual(t, surprises, svc.Config.SurpriseDaysMin)
		require.LessOrEqual(t, surprises, svc.Config.SurpriseDaysMax)
	}
}

func TestGenerateUsesSurpriseOnlyCoupons(t *testing.T) {
	f := newFixture(t)
	svc := f.checkinService()

	coupon := models.Product{
		ID:     uuid.NewString(),
		Name:   "Free Coffee",
		Slug:   "free-coffee",
		Status: models.ProductStatusSurpriseOnly,
	}
	require.NoError(t, f.db.Create(&coupon).Error)

	require.NoError(t, svc.GenerateWeeklyCycles())

	var cycles []models.CheckinCycle
	require.NoError(t, f.db.Find(&cycles).Error)
	for _, cycle := range cycles {
		for _, day := range cycle.Days {
			if day.Surprise != nil && day.Surprise.Type == models.SurpriseTypeCoupon {
				require.Equal(t, coupon.ID, day.Surprise.Coupon.ProductID)
				require.Equal(t, "Free Coffee", day.Surprise.Coupon.Name)
			}
		}
	}
}

func TestCheckinPostsBasePoints(t *testing.T) {
	f := newFixture(t)
	svc := f.checkinService()
	user := f.createUser("alice", 0)

	result, err := svc.Checkin(user.ID)
	require.NoError(t, err)
	require.Equal(t, 1, result.DayOfWeek)
	require.GreaterOrEqual(t, result.BasePoints, svc.Config.PointsMin)
	require.LessOrEqual(t, result.BasePoints, svc.Config.PointsMax)
	require.Equal(t, result.NewBalance, f.balance(user.ID))
	require.Equal(t, f.balance(user.ID), f.sumDeltas(user.ID))

	var alloc models.UserCheckinConfig
	require.NoError(t, f.db.First(&alloc, "user_id = ?", user.ID).Error)
	require.True(t, alloc.Day1)

	_, err = svc.Checkin(user.ID)
	require.ErrorIs(t, err, ErrAlreadyCheckedIn)
	require.Equal(t, result.NewBalance, f.balance(user.ID))
}

func TestCheckinUnknownUser(t *testing.T) {
	f := newFixture(t)
	svc := f.checkinService()

	_, err := svc.Checkin("no-such-user")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func lotteryWeek(winPoints int, surpriseDay int) []models.DaySchedule {
	days := flatWeek(10)
	days[surpriseDay-1].Surprise = &models.Surprise{
		Type: models.SurpriseTypeLottery,
		Lottery: &models.LotterySurprise{
			PoolName:    "guaranteed",
			TotalPoints: winPoints,
			Tiers: []models.LotteryTier{
				{Probability: 1.0, Points: winPoints, Message: "guaranteed win"},
			},
		},
	}
	return days
}

func TestCheckinLotterySurprisePaysOut(t *testing.T) {
	f := newFixture(t)
	svc := f.checkinService()
	user := f.createUser("bob", 0)

	cycle := insertCycle(f, lotteryWeek(50, 3))
	insertAllocation(f, user.ID, cycle, 1, 2)
	f.clock.Advance(48 * time.Hour) // Wednesday

	result, err := svc.Checkin(user.ID)
	require.NoError(t, err)
	require.Equal(t, 3, result.DayOfWeek)
	require.Equal(t, 10, result.BasePoints)
	require.Equal(t, 60, result.TotalPoints)
	require.Len(t, result.Records, 2)

	require.NotNil(t, result.Surprise)
	require.False(t, result.Surprise.Forfeited)
	require.Equal(t, 50, result.Surprise.Lottery.Points)
	require.Equal(t, "guaranteed", result.Surprise.Lottery.PoolName)

	require.Equal(t, 60, f.balance(user.ID))
	require.Equal(t, f.balance(user.ID), f.sumDeltas(user.ID))
}

func TestCheckinSurpriseForfeitedAfterMissedDay(t *testing.T) {
	f := newFixture(t)
	svc := f.checkinService()
	user := f.createUser("carol", 0)

	cycle := insertCycle(f, lotteryWeek(50, 3))
	insertAllocation(f, user.ID, cycle, 1) // Tuesday missed
	f.clock.Advance(48 * time.Hour)        // Wednesday

	result, err := svc.Checkin(user.ID)
	require.NoError(t, err)
	require.Equal(t, 10, result.BasePoints)
	require.Equal(t, 10, result.TotalPoints)
	require.Len(t, result.Records, 1)

	// Base points always land; only the surprise is forfeited.
	require.NotNil(t, result.Surprise)
	require.True(t, result.Surprise.Forfeited)
	require.Nil(t, result.Surprise.Lottery)
	require.Equal(t, 10, f.balance(user.ID))
}

func TestCheckinZeroTierLotteryPostsNothingExtra(t *testing.T) {
	f := newFixture(t)
	svc := f.checkinService()
	user := f.createUser("dave", 0)

	cycle := insertCycle(f, lotteryWeek(0, 1))
	insertAllocation(f, user.ID, cycle)

	result, err := svc.Checkin(user.ID)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	require.NotNil(t, result.Surprise.Lottery)
	require.Equal(t, 0, result.Surprise.Lottery.Points)
	require.Equal(t, result.BasePoints, f.balance(user.ID))
}

func TestCheckinCouponRidesOnBaseEntry(t *testing.T) {
	f := newFixture(t)
	svc := f.checkinService()
	user := f.createUser("erin", 0)

	days := flatWeek(10)
	days[0].Surprise = &models.Surprise{
		Type: models.SurpriseTypeCoupon,
		Coupon: &models.CouponSurprise{
			ProductID: uuid.NewString(),
			Name:      "Free Coffee",
		},
	}
	cycle := insertCycle(f, days)
	insertAllocation(f, user.ID, cycle)

	result, err := svc.Checkin(user.ID)
	require.NoError(t, err)
	require.Len(t, result.Records, 1)
	require.Equal(t, 10, result.TotalPoints)

	require.NotNil(t, result.Surprise)
	require.Equal(t, models.SurpriseTypeCoupon, result.Surprise.Type)
	require.Equal(t, "Free Coffee", result.Surprise.Coupon.Name)

	// The grant is carried as metadata on the base ledger entry.
	require.Contains(t, result.Records[0].Metadata, "coupon")
	require.Equal(t, 10, f.balance(user.ID))
}

func TestCheckinAllocationStableWithinWeek(t *testing.T) {
	f := newFixture(t)
	svc := f.checkinService()
	user := f.createUser("frank", 0)

	first, err := svc.GetCheckinInfo(user.ID)
	require.NoError(t, err)
	require.Len(t, first.Days, 7)
	require.Equal(t, 1, first.CurrentDayOfWeek)
	require.True(t, first.Days[0].IsToday)

	f.clock.Advance(24 * time.Hour)
	second, err := svc.GetCheckinInfo(user.ID)
	require.NoError(t, err)
	require.Equal(t, first.CycleID, second.CycleID)
	require.Equal(t, 2, second.CurrentDayOfWeek)
}

func TestCheckinFullWeek(t *testing.T) {
	f := newFixture(t)
	svc := f.checkinService()
	user := f.createUser("grace", 0)

	cycle := insertCycle(f, flatWeek(10))
	insertAllocation(f, user.ID, cycle)

	for day := 1; day <= 7; day++ {
		result, err := svc.Checkin(user.ID)
		require.NoError(t, err)
		require.Equal(t, day, result.DayOfWeek)
		if day < 7 {
			f.clock.Advance(24 * time.Hour)
		}
	}

	require.Equal(t, 70, f.balance(user.ID))

	var alloc models.UserCheckinConfig
	require.NoError(t, f.db.First(&alloc, "user_id = ?", user.ID).Error)
	for day := 1; day <= 7; day++ {
		require.True(t, alloc.DayChecked(day), "day %d", day)
	}

	// The following Monday starts a fresh allocation.
	f.clock.Advance(24 * time.Hour)
	info, err := svc.GetCheckinInfo(user.ID)
	require.NoError(t, err)
	require.NotEqual(t, cycle.ID, info.CycleID)
	require.Equal(t, "2026-01-12", info.WeekStart)
}
