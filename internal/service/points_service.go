package service

import (
	"hamexam_backend/internal/model"
	"hamexam_backend/internal/repository"
	"hamexam_backend/internal/util"

	"gorm.io/gorm"
)

// PointsService 积分台账。流水追加与积分缓存累加始终在同一事务内，
// 保证 sum(流水) == total_points。
type PointsService struct {
	DB         *gorm.DB
	PointsRepo *repository.PointsRepository
	UserRepo   *repository.UserRepository
}

func NewPointsService(db *gorm.DB, pointsRepo *repository.PointsRepository, userRepo *repository.UserRepository) *PointsService {
	return &PointsService{
		DB:         db,
		PointsRepo: pointsRepo,
		UserRepo:   userRepo,
	}
}

// GrantPoints 发放（或管理员调整时扣减）积分
func (s *PointsService) GrantPoints(userID uint, amount int, reason string) error {
	if reason == "" {
		return util.NewValidationError("points reason must not be empty")
	}
	return s.DB.Transaction(func(tx *gorm.DB) error {
		return s.PointsRepo.AppendTx(tx, userID, amount, reason)
	})
}

func (s *PointsService) History(userID uint, page, limit int) ([]model.PointsHistory, int64, error) {
	return s.PointsRepo.History(userID, page, limit)
}

// LeaderboardEntry 排行榜条目
type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      uint   `json:"userId"`
	Name        string `json:"name"`
	Callsign    string `json:"callsign"`
	Avatar      string `json:"avatar"`
	TotalPoints int    `json:"totalPoints"`
	StreakDays  int    `json:"streakDays"`
}

func (s *PointsService) Leaderboard(limit int) ([]LeaderboardEntry, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}
	users, err := s.UserRepo.FindTopByPoints(limit)
	if err != nil {
		return nil, err
	}

	entries := make([]LeaderboardEntry, 0, len(users))
	for i, u := range users {
		entries = append(entries, LeaderboardEntry{
			Rank:        i + 1,
			UserID:      u.ID,
			Name:        u.Name,
			Callsign:    u.Callsign,
			Avatar:      u.Avatar,
			TotalPoints: u.TotalPoints,
			StreakDays:  u.StreakDays,
		})
	}
	return entries, nil
}
