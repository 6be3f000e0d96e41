package service

import (
	"errors"

	"hamexam_backend/internal/model"
	"hamexam_backend/internal/util"

	"gorm.io/gorm"
)

// QuotaService AI 配额记账。检查与自增在同一条带守卫条件的
// UPDATE 里完成，两个并发请求不可能把用量推过上限。
type QuotaService struct {
	DB *gorm.DB
}

func NewQuotaService(db *gorm.DB) *QuotaService {
	return &QuotaService{DB: db}
}

// CheckAndIncrement 校验配额并记一次用量。
// bypassLimit 只跳过上限检查，用量照常累加。
func (s *QuotaService) CheckAndIncrement(userID uint, count int, bypassLimit bool) error {
	if count <= 0 {
		return util.NewValidationError("quota count must be positive")
	}

	return s.DB.Transaction(func(tx *gorm.DB) error {
		query := tx.Model(&model.User{}).Where("id = ?", userID)
		if !bypassLimit {
			query = query.Where("ai_quota_limit IS NULL OR ai_quota_used + ? <= ai_quota_limit", count)
		}

		res := query.Update("ai_quota_used", gorm.Expr("ai_quota_used + ?", count))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected > 0 {
			return nil
		}

		// 没更新到行：要么用户不存在，要么超限
		var user model.User
		if err := tx.First(&user, userID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return util.ErrUserNotFound
			}
			return err
		}
		limit := 0
		if user.AIQuotaLimit != nil {
			limit = *user.AIQuotaLimit
		}
		return &util.QuotaExceededError{
			Used:      user.AIQuotaUsed,
			Limit:     limit,
			Requested: count,
		}
	})
}

// QuotaStatus 只读配额状态。Limit 为 nil 表示不限量
type QuotaStatus struct {
	Used      int  `json:"used"`
	Limit     *int `json:"limit"`
	Remaining *int `json:"remaining"`
	Unlimited bool `json:"unlimited"`
}

// GetStatus 查询配额状态，不产生任何写入
func (s *QuotaService) GetStatus(userID uint) (*QuotaStatus, error) {
	var user model.User
	if err := s.DB.First(&user, userID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, util.ErrUserNotFound
		}
		return nil, err
	}

	status := &QuotaStatus{
		Used:      user.AIQuotaUsed,
		Limit:     user.AIQuotaLimit,
		Unlimited: user.AIQuotaLimit == nil,
	}
	if user.AIQuotaLimit != nil {
		remaining := *user.AIQuotaLimit - user.AIQuotaUsed
		if remaining < 0 {
			remaining = 0
		}
		status.Remaining = &remaining
	}
	return status, nil
}
