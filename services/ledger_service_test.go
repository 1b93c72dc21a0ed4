package services

import (
	"testing"

	"loyalty-points-system/models"

	"github.com/stretchr/testify/require"
)

func TestLedgerPostAccumulates(t *testing.T) {
	f := newFixture(t)
	user := f.createUser("alice", 0)

	first, err := f.ledger.Post(user.ID, models.PointCategoryCheckin, 15, map[string]any{"kind": "checkin"})
	require.NoError(t, err)
	require.Equal(t, 0, first.OldBalance)
	require.Equal(t, 15, first.NewBalance)
	require.Equal(t, 15, first.Record.BalanceAfter)

	second, err := f.ledger.Post(user.ID, models.PointCategoryTeam, 70, nil)
	require.NoError(t, err)
	require.Equal(t, 85, second.NewBalance)

	third, err := f.ledger.Post(user.ID, models.PointCategoryRedemption, -30, nil)
	require.NoError(t, err)
	require.Equal(t, 55, third.NewBalance)

	require.Equal(t, 55, f.balance(user.ID))
	require.Equal(t, f.balance(user.ID), f.sumDeltas(user.ID))
}

func TestLedgerRejectsOverspend(t *testing.T) {
	f := newFixture(t)
	user := f.createUser("bob", 0)

	_, err := f.ledger.Post(user.ID, models.PointCategoryCheckin, 10, nil)
	require.NoError(t, err)

	_, err = f.ledger.Post(user.ID, models.PointCategoryRedemption, -11, nil)
	require.ErrorIs(t, err, ErrInsufficientBalance)

	// The rejected post must leave no trace.
	require.Equal(t, 10, f.balance(user.ID))
	var count int64
	require.NoError(t, f.db.Model(&models.PointRecord{}).
		Where("user_id = ?", user.ID).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestLedgerUnknownUser(t *testing.T) {
	f := newFixture(t)

	_, err := f.ledger.Post("no-such-user", models.PointCategoryCheckin, 5, nil)
	require.ErrorIs(t, err, ErrUserNotFound)

	_, err = f.ledger.GetBalance("no-such-user")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestLedgerRecordQuery(t *testing.T) {
	f := newFixture(t)
	user := f.createUser("carol", 0)

	for i := 0; i < 3; i++ {
		_, err := f.ledger.Post(user.ID, models.PointCategoryCheckin, 10, nil)
		require.NoError(t, err)
	}
	_, err := f.ledger.Post(user.ID, models.PointCategoryTeam, 70, nil)
	require.NoError(t, err)

	all, err := f.ledger.GetUserRecords(user.ID, RecordQuery{})
	require.NoError(t, err)
	require.EqualValues(t, 4, all.Total)

	checkins, err := f.ledger.GetUserRecords(user.ID, RecordQuery{Category: models.PointCategoryCheckin})
	require.NoError(t, err)
	require.EqualValues(t, 3, checkins.Total)
	for _, r := range checkins.Records {
		require.Equal(t, models.PointCategoryCheckin, r.Category)
	}

	paged, err := f.ledger.GetUserRecords(user.ID, RecordQuery{Page: 2, Limit: 3})
	require.NoError(t, err)
	require.EqualValues(t, 4, paged.Total)
	require.Len(t, paged.Records, 1)
	require.EqualValues(t, 2, paged.TotalPages)
}
