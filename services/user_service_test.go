package services

import (
	"testing"
	"time"

	"loyalty-points-system/models"

	"github.com/stretchr/testify/require"
)

func TestEnsureUserCreatesOnce(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(f.db, f.time)

	user, err := svc.EnsureUser("gateway-id-1", "alice")
	require.NoError(t, err)
	require.Equal(t, "gateway-id-1", user.ID)
	require.Equal(t, "alice", user.Username)
	require.Equal(t, models.UserStatusActive, user.Status)
	require.Equal(t, 0, user.TotalPoints)
	require.NotNil(t, user.LastLoginAt)

	f.clock.Advance(time.Hour)
	again, err := svc.EnsureUser("gateway-id-1", "alice")
	require.NoError(t, err)
	require.Equal(t, user.ID, again.ID)
	require.True(t, again.LastLoginAt.After(*user.LastLoginAt))

	var count int64
	require.NoError(t, f.db.Model(&models.User{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestEnsureUserDefaultsUsername(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(f.db, f.time)

	user, err := svc.EnsureUser("gateway-id-2", "  ")
	require.NoError(t, err)
	require.Equal(t, "gateway-id-2", user.Username)
}

func TestSetStatus(t *testing.T) {
	f := newFixture(t)
	svc := NewUserService(f.db, f.time)

	user, err := svc.EnsureUser("gateway-id-3", "bob")
	require.NoError(t, err)

	updated, err := svc.SetStatus(user.ID, models.UserStatusDeactivated)
	require.NoError(t, err)
	require.Equal(t, models.UserStatusDeactivated, updated.Status)

	_, err = svc.SetStatus("missing", models.UserStatusActive)
	require.ErrorIs(t, err, ErrUserNotFound)
}
