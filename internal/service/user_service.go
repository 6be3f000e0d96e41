package service

import (
	"errors"
	"mime/multipart"

	"hamexam_backend/internal/model"
	"hamexam_backend/internal/repository"
	"hamexam_backend/internal/util"

	"gorm.io/gorm"
)

type UserService struct {
	DB               *gorm.DB
	UserRepo         *repository.UserRepository
	UserQuestionRepo *repository.UserQuestionRepository
	DailyRepo        *repository.DailyPracticeRepository
	PresetRepo       *repository.StylePresetRepository
	Points           *PointsService
	Storage          *StorageService
}

func NewUserService(
	db *gorm.DB,
	userRepo *repository.UserRepository,
	userQuestionRepo *repository.UserQuestionRepository,
	dailyRepo *repository.DailyPracticeRepository,
	presetRepo *repository.StylePresetRepository,
	points *PointsService,
	storage *StorageService,
) *UserService {
	return &UserService{
		DB:               db,
		UserRepo:         userRepo,
		UserQuestionRepo: userQuestionRepo,
		DailyRepo:        dailyRepo,
		PresetRepo:       presetRepo,
		Points:           points,
		Storage:          storage,
	}
}

func (s *UserService) GetProfile(userID uint) (*model.User, error) {
	user, err := s.UserRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// ProfileUpdate 可更新的个人资料字段，nil 表示不修改
type ProfileUpdate struct {
	Name          *string `json:"name"`
	Callsign      *string `json:"callsign"`
	DailyTarget   *int    `json:"dailyTarget"`
	StylePresetID *uint   `json:"stylePresetId"`
	AIStylePrompt *string `json:"aiStylePrompt"`
}

func (s *UserService) UpdateProfile(userID uint, req ProfileUpdate) (*model.User, error) {
	user, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		if *req.Name == "" {
			return nil, util.NewValidationError("昵称不能为空")
		}
		user.Name = *req.Name
	}
	if req.Callsign != nil {
		user.Callsign = *req.Callsign
	}
	if req.DailyTarget != nil {
		if *req.DailyTarget < 0 {
			return nil, util.NewValidationError("每日目标不能为负数")
		}
		user.DailyTarget = *req.DailyTarget
	}
	if req.StylePresetID != nil {
		if *req.StylePresetID == 0 {
			user.StylePresetID = nil
		} else {
			if _, err := s.PresetRepo.FindByID(*req.StylePresetID); err != nil {
				return nil, util.ErrPresetNotFound
			}
			user.StylePresetID = req.StylePresetID
		}
	}
	if req.AIStylePrompt != nil {
		user.AIStylePrompt = *req.AIStylePrompt
	}

	if err := s.UserRepo.Update(user); err != nil {
		return nil, err
	}
	return user, nil
}

func (s *UserService) UploadAvatar(userID uint, file *multipart.FileHeader) (string, error) {
	user, err := s.GetProfile(userID)
	if err != nil {
		return "", err
	}

	url, err := s.Storage.SaveAvatar(userID, file)
	if err != nil {
		return "", err
	}

	user.Avatar = url
	if err := s.UserRepo.Update(user); err != nil {
		return "", err
	}
	return url, nil
}

// UserStats 个人练习统计
type UserStats struct {
	Answered      int64 `json:"answered"`
	Correct       int64 `json:"correct"`
	Incorrect     int64 `json:"incorrect"`
	TotalPoints   int   `json:"totalPoints"`
	StreakDays    int   `json:"streakDays"`
	CompletedDays int64 `json:"completedDays"`
}

func (s *UserService) Stats(userID uint) (*UserStats, error) {
	user, err := s.GetProfile(userID)
	if err != nil {
		return nil, err
	}

	answered, correct, incorrect, err := s.UserQuestionRepo.Stats(userID)
	if err != nil {
		return nil, err
	}
	completedDays, err := s.DailyRepo.CountCompleted(userID)
	if err != nil {
		return nil, err
	}

	return &UserStats{
		Answered:      answered,
		Correct:       correct,
		Incorrect:     incorrect,
		TotalPoints:   user.TotalPoints,
		StreakDays:    user.StreakDays,
		CompletedDays: completedDays,
	}, nil
}

// ListUsers 管理端用户列表
func (s *UserService) ListUsers(keyword string, page, limit int) ([]model.User, int64, error) {
	var users []model.User
	var total int64

	query := s.DB.Model(&model.User{})
	if keyword != "" {
		like := "%" + keyword + "%"
		query = query.Where("email LIKE ? OR name LIKE ? OR callsign LIKE ?", like, like, like)
	}
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("created_at DESC").Offset(offset).Limit(limit).Find(&users).Error
	return users, total, err
}

// SetDisabled 封禁或解封用户
func (s *UserService) SetDisabled(userID uint, disabled bool) error {
	result := s.DB.Model(&model.User{}).
		Where("id = ?", userID).
		Update("disabled", disabled)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return util.ErrUserNotFound
	}
	return nil
}

// SetAIQuota 管理员调整 AI 配额上限，limit 为 nil 表示不限量
func (s *UserService) SetAIQuota(userID uint, limit *int) error {
	if limit != nil && *limit < 0 {
		return util.NewValidationError("配额上限不能为负数")
	}
	result := s.DB.Model(&model.User{}).
		Where("id = ?", userID).
		Update("ai_quota_limit", limit)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return util.ErrUserNotFound
	}
	return nil
}

// AdjustPoints 管理员手工加减积分，走积分流水
func (s *UserService) AdjustPoints(userID uint, amount int) error {
	if amount == 0 {
		return util.NewValidationError("调整数额不能为 0")
	}
	return s.Points.GrantPoints(userID, amount, model.PointsReasonAdminAdjust)
}
