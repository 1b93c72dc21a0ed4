package services

import (
	"fmt"
	"testing"
	"time"

	"loyalty-points-system/config"
	"loyalty-points-system/models"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// baseTime is a Monday morning; tests that care about weekdays advance
// the fake clock from here.
var baseTime = time.Date(2026, 1, 5, 10, 0, 0, 0, time.Local)

type fixture struct {
	t      *testing.T
	db     *gorm.DB
	clock  *clockwork.FakeClock
	time   *TimeService
	ledger *LedgerService
}

// newFixture opens a per-test in-memory database to avoid cross-test
// interference and wires the core services onto a fake clock.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.PointRecord{},
		&models.CheckinCycle{},
		&models.UserCheckinConfig{},
		&models.Team{},
		&models.TeamMember{},
		&models.Product{},
		&models.ProductExchange{},
	))

	clock := clockwork.NewFakeClockAt(baseTime)
	ts := NewTimeService(clock, false)
	return &fixture{
		t:      t,
		db:     db,
		clock:  clock,
		time:   ts,
		ledger: NewLedgerService(db, ts),
	}
}

func (f *fixture) createUser(username string, points int) *models.User {
	f.t.Helper()
	user := &models.User{
		ID:          uuid.NewString(),
		Username:    username,
		TotalPoints: points,
		Status:      models.UserStatusActive,
	}
	require.NoError(f.t, f.db.Create(user).Error)
	return user
}

func (f *fixture) balance(userID string) int {
	f.t.Helper()
	var user models.User
	require.NoError(f.t, f.db.First(&user, "id = ?", userID).Error)
	return user.TotalPoints
}

// sumDeltas recomputes the balance from the ledger, for the invariant
// that the cached balance always equals the sum of deltas.
func (f *fixture) sumDeltas(userID string) int {
	f.t.Helper()
	var records []models.PointRecord
	require.NoError(f.t, f.db.Where("user_id = ?", userID).Find(&records).Error)
	sum := 0
	for _, r := range records {
		sum += r.Delta
	}
	return sum
}

func (f *fixture) checkinService() *CheckinService {
	svc := NewCheckinService(f.db, f.time, f.ledger, config.DefaultCheckinConfig)
	svc.SeedRand(42)
	return svc
}

func (f *fixture) teamService() *TeamService {
	svc := NewTeamService(f.db, f.time, f.ledger, config.DefaultTeamConfig)
	svc.SeedRand(42)
	return svc
}

func (f *fixture) expireService() *PointExpireService {
	return NewPointExpireService(f.db, f.time, f.ledger, config.DefaultPointExpireConfig)
}

func (f *fixture) productService() *ProductService {
	return NewProductService(f.db, f.time, f.ledger)
}
