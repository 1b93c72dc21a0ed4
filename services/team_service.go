package services

import (
	"errors"
	"log"
	"time"

	"loyalty-points-system/config"
	"loyalty-points-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	codeDigits = "0123456789"
	codeUpper  = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	codeLower  = "abcdefghijklmnopqrstuvwxyz"
	codeAll    = codeDigits + codeUpper + codeLower
)

// TeamService runs team formation: creation, joining, lazy expiry and the
// atomic completion payout.
type TeamService struct {
	DB     *gorm.DB
	Time   *TimeService
	Ledger *LedgerService
	Config config.TeamConfig

	rng *rng
}

func NewTeamService(db *gorm.DB, ts *TimeService, ledger *LedgerService, cfg config.TeamConfig) *TeamService {
	return &TeamService{
		DB:     db,
		Time:   ts,
		Ledger: ledger,
		Config: cfg,
		rng:    newRNG(ts.Now().UnixNano() + 1),
	}
}

// SeedRand re-seeds the service's random source. Test hook.
func (s *TeamService) SeedRand(seed int64) { s.rng = newRNG(seed) }

// generateTeamCode builds a mixed-alphanumeric code guaranteed to contain
// at least one digit, one uppercase and one lowercase character, then
// shuffles the result.
func (s *TeamService) generateTeamCode() string {
	code := make([]byte, 0, s.Config.CodeLength)
	code = append(code,
		codeDigits[s.rng.Intn(len(codeDigits))],
		codeUpper[s.rng.Intn(len(codeUpper))],
		codeLower[s.rng.Intn(len(codeLower))],
	)
	for len(code) < s.Config.CodeLength {
		code = append(code, codeAll[s.rng.Intn(len(codeAll))])
	}
	for i := len(code) - 1; i > 0; i-- {
		j := s.rng.Intn(i + 1)
		code[i], code[j] = code[j], code[i]
	}
	return string(code)
}

// expireTime is now+TTL clamped to the next local midnight, whichever
// comes first.
func (s *TeamService) expireTime(now time.Time) time.Time {
	midnight := NextMidnight(now)
	byTTL := now.Add(s.Config.TTL)
	if byTTL.After(midnight) || byTTL.Equal(midnight) {
		return midnight
	}
	return byTTL
}

// TeamCreateResult reports a freshly created team.
type TeamCreateResult struct {
	Team *models.Team `json:"team"`
}

// CreateTeam creates a team captained by userID. One team per captain per
// local calendar day.
func (s *TeamService) CreateTeam(userID string) (*TeamCreateResult, error) {
	if err := s.ensureUser(userID); err != nil {
		return nil, err
	}

	now := s.Time.Now()
	dayStart, dayEnd := DayBounds(now)

	var createdToday int64
	if err := s.DB.Model(&models.Team{}).
		Where("captain_id = ? AND created_time BETWEEN ? AND ?", userID, dayStart, dayEnd).
		Count(&createdToday).Error; err != nil {
		return nil, internalError("count teams created today", err)
	}
	if createdToday > 0 {
		return nil, ErrAlreadyCreatedToday
	}

	code, err := s.uniqueCode()
	if err != nil {
		return nil, err
	}

	team := models.Team{
		ID:          uuid.NewString(),
		Code:        code,
		CaptainID:   userID,
		Status:      models.TeamStatusPending,
		CreatedTime: now,
		ExpireTime:  s.expireTime(now),
	}
	captainSeat := models.TeamMember{
		ID:       uuid.NewString(),
		TeamID:   team.ID,
		UserID:   userID,
		Role:     models.TeamRoleCaptain,
		JoinTime: now,
	}

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&team).Error; err != nil {
			return internalError("create team", err)
		}
		if err := tx.Create(&captainSeat).Error; err != nil {
			return internalError("create captain membership", err)
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}

	log.Printf("✅ [Team] %s created team %s (expires %s)", userID, code, team.ExpireTime.Format(time.RFC3339))
	return &TeamCreateResult{Team: &team}, nil
}

// uniqueCode retries generation on collision up to the configured bound.
func (s *TeamService) uniqueCode() (string, error) {
	for attempt := 0; attempt < s.Config.CodeMaxAttempts; attempt++ {
		code := s.generateTeamCode()
		var count int64
		if err := s.DB.Model(&models.Team{}).Where("code = ?", code).
			Count(&count).Error; err != nil {
			return "", internalError("check code collision", err)
		}
		if count == 0 {
			return code, nil
		}
	}
	return "", ErrCodeGenerationExhausted
}

// CheckExpiry lazily transitions a pending team past its expire time to
// expired. Idempotent: an already-expired team is returned unchanged.
func (s *TeamService) CheckExpiry(code string) (*models.Team, error) {
	var team models.Team
	if err := s.DB.Where("code = ?", code).First(&team).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrTeamNotFound
		}
		return nil, internalError("fetch team", err)
	}

	if team.Status == models.TeamStatusPending && s.Time.Now().After(team.ExpireTime) {
		if err := s.DB.Model(&models.Team{}).Where("id = ? AND status = ?", team.ID, models.TeamStatusPending).
			Update("status", models.TeamStatusExpired).Error; err != nil {
			return nil, internalError("expire team", err)
		}
		team.Status = models.TeamStatusExpired
	}
	return &team, nil
}

// MemberReward is one recipient's share of the completion payout.
type MemberReward struct {
	UserID     string          `json:"user_id"`
	Role       models.TeamRole `json:"role"`
	Points     int             `json:"points"`
	OldBalance int             `json:"old_balance"`
	NewBalance int             `json:"new_balance"`
}

// TeamJoinResult reports a join, including the payout when the join
// completed the team.
type TeamJoinResult struct {
	Team        *models.Team   `json:"team"`
	MemberCount int            `json:"member_count"`
	Completed   bool           `json:"completed"`
	Rewards     []MemberReward `json:"rewards,omitempty"`
}

// JoinTeam adds userID to the team behind code. The capacity check and
// the 4th-member completion re-validate inside the transaction: the team
// row is locked for update and the (team_id, user_id) unique index stops
// duplicate seats, so concurrent joiners cannot over-fill the team.
func (s *TeamService) JoinTeam(userID, code string) (*TeamJoinResult, error) {
	if err := s.ensureUser(userID); err != nil {
		return nil, err
	}

	now := s.Time.Now()
	dayStart, dayEnd := DayBounds(now)

	var joinedToday int64
	if err := s.DB.Model(&models.TeamMember{}).
		Where("user_id = ? AND role = ? AND join_time BETWEEN ? AND ?",
			userID, models.TeamRoleMember, dayStart, dayEnd).
		Count(&joinedToday).Error; err != nil {
		return nil, internalError("count joins today", err)
	}
	if joinedToday > 0 {
		return nil, ErrAlreadyJoinedToday
	}

	if _, err := s.CheckExpiry(code); err != nil {
		return nil, err
	}

	var result *TeamJoinResult
	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		var team models.Team
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("code = ?", code).First(&team).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrTeamNotFound
			}
			return internalError("lock team", err)
		}

		// Re-validate state under lock.
		if team.Status == models.TeamStatusExpired || (team.Status == models.TeamStatusPending && now.After(team.ExpireTime)) {
			return ErrTeamExpired
		}
		if team.Status != models.TeamStatusPending {
			return ErrTeamNotPending
		}

		var existing int64
		if err := tx.Model(&models.TeamMember{}).
			Where("team_id = ? AND user_id = ?", team.ID, userID).
			Count(&existing).Error; err != nil {
			return internalError("check existing membership", err)
		}
		if existing > 0 {
			return ErrAlreadyMember
		}

		var memberCount int64
		if err := tx.Model(&models.TeamMember{}).
			Where("team_id = ?", team.ID).
			Count(&memberCount).Error; err != nil {
			return internalError("count members", err)
		}
		if memberCount >= int64(s.Config.Size) {
			return ErrTeamFull
		}

		seat := models.TeamMember{
			ID:       uuid.NewString(),
			TeamID:   team.ID,
			UserID:   userID,
			Role:     models.TeamRoleMember,
			JoinTime: now,
		}
		if err := tx.Create(&seat).Error; err != nil {
			if isUniqueViolation(err) {
				return ErrAlreadyMember
			}
			return internalError("create membership", err)
		}

		result = &TeamJoinResult{Team: &team, MemberCount: int(memberCount) + 1}

		if result.MemberCount == s.Config.Size {
			completed, err := s.completeTeam(tx, &team, now)
			if err != nil {
				return err
			}
			result.Completed = true
			result.Rewards = completed
		}
		return nil
	})
	if txErr != nil {
		return nil, txErr
	}
	return result, nil
}

// completeTeam flips the locked team to completed and pays every seat
// its share, all inside the caller's transaction.
func (s *TeamService) completeTeam(tx *gorm.DB, team *models.Team, now time.Time) ([]MemberReward, error) {
	if err := tx.Model(&models.Team{}).Where("id = ?", team.ID).
		Updates(map[string]any{
			"status":         models.TeamStatusCompleted,
			"completed_time": now,
		}).Error; err != nil {
		return nil, internalError("complete team", err)
	}
	team.Status = models.TeamStatusCompleted
	team.CompletedTime = &now

	var seats []models.TeamMember
	if err := tx.Where("team_id = ?", team.ID).
		Order("join_time ASC").Find(&seats).Error; err != nil {
		return nil, internalError("fetch seats for payout", err)
	}

	rewards := make([]MemberReward, 0, len(seats))
	for _, seat := range seats {
		points := s.Config.MemberReward
		if seat.Role == models.TeamRoleCaptain {
			points = s.Config.CaptainReward
		}
		post, err := s.Ledger.PostIn(tx, seat.UserID, models.PointCategoryTeam, points, map[string]any{
			"kind":    "team_completion",
			"team_id": team.ID,
			"code":    team.Code,
			"role":    seat.Role,
		})
		if err != nil {
			return nil, err
		}
		rewards = append(rewards, MemberReward{
			UserID:     seat.UserID,
			Role:       seat.Role,
			Points:     points,
			OldBalance: post.OldBalance,
			NewBalance: post.NewBalance,
		})
	}
	log.Printf("🎉 [Team] %s completed, paid out %d seats", team.Code, len(rewards))
	return rewards, nil
}

// TeamDetails is the public view of a team.
type TeamDetails struct {
	Team        *models.Team        `json:"team"`
	MemberCount int                 `json:"member_count"`
	Members     []models.TeamMember `json:"members"`
}

// GetTeamDetails returns a team with its members, applying lazy expiry.
func (s *TeamService) GetTeamDetails(code string) (*TeamDetails, error) {
	team, err := s.CheckExpiry(code)
	if err != nil {
		return nil, err
	}

	var members []models.TeamMember
	if err := s.DB.Preload("User").
		Where("team_id = ?", team.ID).
		Order("join_time ASC").Find(&members).Error; err != nil {
		return nil, internalError("fetch team members", err)
	}

	return &TeamDetails{Team: team, MemberCount: len(members), Members: members}, nil
}

// TeamRecordQuery filters a user's team history.
type TeamRecordQuery struct {
	Page   int
	Limit  int
	Status models.TeamStatus
	Role   models.TeamRole
}

// TeamRecordPage is one page of a user's team history.
type TeamRecordPage struct {
	Teams      []models.Team `json:"teams"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	Limit      int           `json:"limit"`
	TotalPages int64         `json:"total_pages"`
}

// GetUserTeamRecords lists teams the user belongs to (either role),
// newest first.
func (s *TeamService) GetUserTeamRecords(userID string, q TeamRecordQuery) (*TeamRecordPage, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = 20
	}

	query := s.DB.Model(&models.Team{}).
		Joins("JOIN team_members ON team_members.team_id = teams.id").
		Where("team_members.user_id = ?", userID)
	if q.Status != "" {
		query = query.Where("teams.status = ?", q.Status)
	}
	if q.Role != "" {
		query = query.Where("team_members.role = ?", q.Role)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, internalError("count team records", err)
	}

	var teams []models.Team
	if err := query.Preload("Members").Preload("Members.User").
		Order("teams.created_time DESC").
		Limit(q.Limit).Offset((q.Page - 1) * q.Limit).
		Find(&teams).Error; err != nil {
		return nil, internalError("list team records", err)
	}

	return &TeamRecordPage{
		Teams:      teams,
		Total:      total,
		Page:       q.Page,
		Limit:      q.Limit,
		TotalPages: (total + int64(q.Limit) - 1) / int64(q.Limit),
	}, nil
}

// ensureUser verifies the user exists and is active.
func (s *TeamService) ensureUser(userID string) error {
	var user models.User
	if err := s.DB.First(&user, "id = ?", userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return internalError("fetch user", err)
	}
	return nil
}
