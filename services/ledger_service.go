package services

import (
	"errors"
	"time"

	"loyalty-points-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerService is the only writer of user balances. Every reward, charge
// and expiration goes through Post/PostIn, which appends a PointRecord and
// updates the cached User.TotalPoints in one transaction.
type LedgerService struct {
	DB   *gorm.DB
	Time *TimeService
}

func NewLedgerService(db *gorm.DB, ts *TimeService) *LedgerService {
	return &LedgerService{DB: db, Time: ts}
}

// PostResult reports one ledger append.
type PostResult struct {
	OldBalance int                 `json:"old_balance"`
	NewBalance int                 `json:"new_balance"`
	Record     *models.PointRecord `json:"record"`
}

// Post appends one ledger entry in its own transaction.
func (s *LedgerService) Post(userID string, category models.PointCategory, delta int, metadata map[string]any) (*PostResult, error) {
	var result *PostResult
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var txErr error
		result, txErr = s.PostIn(tx, userID, category, delta, metadata)
		return txErr
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

// PostIn appends one ledger entry inside a caller-owned transaction, so a
// multi-entry operation (check-in plus lottery, team payout fan-out)
// commits or rolls back as a unit. The user row is locked for update;
// concurrent posts for the same user serialize on that lock.
func (s *LedgerService) PostIn(tx *gorm.DB, userID string, category models.PointCategory, delta int, metadata map[string]any) (*PostResult, error) {
	var user models.User
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, internalError("fetch user for ledger post", err)
	}

	oldBalance := user.TotalPoints
	newBalance := oldBalance + delta
	if newBalance < 0 {
		return nil, ErrInsufficientBalance
	}

	record := models.PointRecord{
		ID:           uuid.NewString(),
		UserID:       userID,
		Category:     category,
		Delta:        delta,
		BalanceAfter: newBalance,
		Metadata:     metadata,
		OccurredAt:   s.Time.Now(),
	}
	if err := tx.Create(&record).Error; err != nil {
		return nil, internalError("append point record", err)
	}

	if err := tx.Model(&models.User{}).Where("id = ?", userID).
		Update("total_points", newBalance).Error; err != nil {
		return nil, internalError("update cached balance", err)
	}

	return &PostResult{OldBalance: oldBalance, NewBalance: newBalance, Record: &record}, nil
}

// GetBalance returns the cached balance for a user.
func (s *LedgerService) GetBalance(userID string) (int, error) {
	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, ErrUserNotFound
		}
		return 0, internalError("fetch user balance", err)
	}
	return user.TotalPoints, nil
}

// RecordQuery filters a user's ledger history.
type RecordQuery struct {
	Page      int
	Limit     int
	Category  models.PointCategory
	StartDate *time.Time
	EndDate   *time.Time
}

// RecordPage is one page of ledger history.
type RecordPage struct {
	Records    []models.PointRecord `json:"records"`
	Total      int64                `json:"total"`
	Page       int                  `json:"page"`
	Limit      int                  `json:"limit"`
	TotalPages int64                `json:"total_pages"`
}

// GetUserRecords lists a user's ledger entries, newest first.
func (s *LedgerService) GetUserRecords(userID string, q RecordQuery) (*RecordPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = 20
	}

	query := s.DB.Model(&models.PointRecord{}).Where("user_id = ?", userID)
	if q.Category != "" {
		query = query.Where("category = ?", q.Category)
	}
	if q.StartDate != nil {
		query = query.Where("occurred_at >= ?", *q.StartDate)
	}
	if q.EndDate != nil {
		query = query.Where("occurred_at <= ?", *q.EndDate)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, internalError("count point records", err)
	}

	var records []models.PointRecord
	if err := query.Order("occurred_at DESC").
		Limit(q.Limit).Offset((q.Page - 1) * q.Limit).
		Find(&records).Error; err != nil {
		return nil, internalError("list point records", err)
	}

	return &RecordPage{
		Records:    records,
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: (total + int64(q.Limit) - 1) / int64(q.Limit),
	}, nil
}
