package services

import (
	"errors"
	"log"
	"strings"

	"loyalty-points-system/models"

	"gorm.io/gorm"
)

// UserService manages the local user table. Identity comes from the
// gateway; this service only keeps the per-user loyalty state.
type UserService struct {
	DB   *gorm.DB
	Time *TimeService
}

func NewUserService(db *gorm.DB, ts *TimeService) *UserService {
	return &UserService{DB: db, Time: ts}
}

// EnsureUser returns the user row for userID, creating it on first
// contact. The gateway guarantees the ID; username defaults to the ID
// when the header is absent.
func (s *UserService) EnsureUser(userID, username string) (*models.User, error) {
	now := s.Time.Now()

	var user models.User
	err := s.DB.First(&user, "id = ?", userID).Error
	if err == nil {
		if err := s.DB.Model(&user).Update("last_login_at", now).Error; err != nil {
			return nil, internalError("update last login", err)
		}
		user.LastLoginAt = &now
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, internalError("fetch user", err)
	}

	if strings.TrimSpace(username) == "" {
		username = userID
	}
	user = models.User{
		ID:          userID,
		Username:    username,
		TotalPoints: 0,
		Status:      models.UserStatusActive,
		LastLoginAt: &now,
	}
	if err := s.DB.Create(&user).Error; err != nil {
		if isUniqueViolation(err) {
			// Lost a first-contact race; the row exists now.
			if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
				return nil, internalError("refetch user after race", err)
			}
			return &user, nil
		}
		return nil, internalError("create user", err)
	}
	log.Printf("✅ [User] created %s (%s)", user.Username, user.ID)
	return &user, nil
}

// GetProfile fetches a user without creating it.
func (s *UserService) GetProfile(userID string) (*models.User, error) {
	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, internalError("fetch user", err)
	}
	return &user, nil
}

// SetStatus flips a user between active and deactivated.
func (s *UserService) SetStatus(userID string, status models.UserStatus) (*models.User, error) {
	user, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}
	if err := s.DB.Model(user).Update("status", status).Error; err != nil {
		return nil, internalError("update user status", err)
	}
	user.Status = status
	return user, nil
}
