package services

import (
	"testing"
	"time"

	"loyalty-points-system/models"

	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
)

func TestSweepZeroesActiveBalances(t *testing.T) {
	f := newFixture(t)
	svc := f.expireService()

	rich := f.createUser("rich", 0)
	poor := f.createUser("poor", 0)
	broke := f.createUser("broke", 0)
	gone := f.createUser("gone", 0)
	require.NoError(t, f.db.Model(&models.User{}).Where("id = ?", gone.ID).
		Update("status", models.UserStatusDeactivated).Error)

	_, err := f.ledger.Post(rich.ID, models.PointCategoryCheckin, 500, nil)
	require.NoError(t, err)
	_, err = f.ledger.Post(poor.ID, models.PointCategoryCheckin, 5, nil)
	require.NoError(t, err)
	_, err = f.ledger.Post(gone.ID, models.PointCategoryCheckin, 100, nil)
	require.NoError(t, err)

	result, err := svc.Sweep()
	require.NoError(t, err)
	require.Equal(t, 2, result.UsersAffected)
	require.Equal(t, 505, result.TotalPointsRemoved)

	require.Equal(t, 0, f.balance(rich.ID))
	require.Equal(t, 0, f.balance(poor.ID))
	require.Equal(t, 0, f.balance(broke.ID))
	// Deactivated accounts are left alone.
	require.Equal(t, 100, f.balance(gone.ID))

	// Each swept user gets exactly one expiration entry, and the ledger
	// still reconciles.
	for _, id := range []string{rich.ID, poor.ID} {
		var records []models.PointRecord
		require.NoError(t, f.db.Where("user_id = ? AND category = ?",
			id, models.PointCategoryExpiration).Find(&records).Error)
		require.Len(t, records, 1)
		require.Equal(t, 0, records[0].BalanceAfter)
		require.Equal(t, f.balance(id), f.sumDeltas(id))
	}
}

func TestSweepIsIdempotent(t *testing.T) {
	f := newFixture(t)
	svc := f.expireService()

	user := f.createUser("alice", 0)
	_, err := f.ledger.Post(user.ID, models.PointCategoryCheckin, 50, nil)
	require.NoError(t, err)

	first, err := svc.Sweep()
	require.NoError(t, err)
	require.Equal(t, 1, first.UsersAffected)

	second, err := svc.Sweep()
	require.NoError(t, err)
	require.Equal(t, 0, second.UsersAffected)
	require.Equal(t, 0, second.TotalPointsRemoved)
	require.Equal(t, 0, f.balance(user.ID))
}

func TestIsExpireDate(t *testing.T) {
	quarterEnd := time.Date(2026, 3, 31, 10, 0, 0, 0, time.Local)
	f := newFixture(t)

	svc := NewPointExpireService(f.db,
		NewTimeService(clockwork.NewFakeClockAt(quarterEnd), false),
		f.ledger, f.expireService().Config)
	require.True(t, svc.IsExpireDate())

	svc = NewPointExpireService(f.db,
		NewTimeService(clockwork.NewFakeClockAt(quarterEnd.AddDate(0, 0, 1)), false),
		f.ledger, f.expireService().Config)
	require.False(t, svc.IsExpireDate())
}

func TestNextExpireDates(t *testing.T) {
	f := newFixture(t)
	svc := f.expireService()

	// From 2026-01-05 all four quarter ends lie ahead in 2026.
	upcoming := svc.NextExpireDates()
	require.Len(t, upcoming, 4)
	require.Equal(t, "2026-03-31", upcoming[0].Date)
	require.Equal(t, "2026-06-30", upcoming[1].Date)
	require.Equal(t, "2026-09-30", upcoming[2].Date)
	require.Equal(t, "2026-12-31", upcoming[3].Date)
	for i := 1; i < len(upcoming); i++ {
		require.True(t, upcoming[i-1].At.Before(upcoming[i].At))
	}

	// Past Q1, the March date rolls into next year and sorts last.
	april := NewPointExpireService(f.db,
		NewTimeService(clockwork.NewFakeClockAt(time.Date(2026, 4, 1, 0, 0, 0, 0, time.Local)), false),
		f.ledger, svc.Config)
	upcoming = april.NextExpireDates()
	require.Equal(t, "2026-06-30", upcoming[0].Date)
	require.Equal(t, "2027-03-31", upcoming[3].Date)
}
