package service

import (
	"errors"
	"time"

	"hamexam_backend/internal/model"
	"hamexam_backend/internal/repository"

	"gorm.io/gorm"
)

// RewardSchedule 连击奖励表，按连续达标天数取值，1天对应第0项，超过7天循环
var RewardSchedule = [...]int{5, 10, 15, 20, 25, 30, 50}

const dateKeyLayout = "2006-01-02"

// DateKey 返回 UTC 日历日的日期键
func DateKey(t time.Time) string {
	return t.UTC().Format(dateKeyLayout)
}

// daysBetween 两个日期键之间相差的整天数，prev 在前返回正数
func daysBetween(prevKey, curKey string) int {
	prev, err1 := time.Parse(dateKeyLayout, prevKey)
	cur, err2 := time.Parse(dateKeyLayout, curKey)
	if err1 != nil || err2 != nil {
		return -1
	}
	return int(cur.Sub(prev).Hours() / 24)
}

// DailyService 每日练习打卡与连击奖励
type DailyService struct {
	DB         *gorm.DB
	DailyRepo  *repository.DailyPracticeRepository
	PointsRepo *repository.PointsRepository
	SiteConfig *SiteConfigService
}

func NewDailyService(db *gorm.DB, dailyRepo *repository.DailyPracticeRepository, pointsRepo *repository.PointsRepository, siteConfig *SiteConfigService) *DailyService {
	return &DailyService{
		DB:         db,
		DailyRepo:  dailyRepo,
		PointsRepo: pointsRepo,
		SiteConfig: siteConfig,
	}
}

// DailyStatus 当日打卡状态
type DailyStatus struct {
	DateKey       string `json:"dateKey"`
	TodayCount    int    `json:"todayCount"`
	Target        int    `json:"target"`
	Completed     bool   `json:"completed"`
	Streak        int    `json:"streak"`
	RewardGranted bool   `json:"rewardGranted"` // 本次调用是否触发了达标奖励
	RewardPoints  int    `json:"rewardPoints"`
	NextReward    int    `json:"nextReward"` // 明天达标可得的奖励，预览用
}

// RecordActivity 记录一次有效练习。整个读改写在一个事务内完成：
// 当日计数自增；首次达到目标时按连击规则更新 streak 并发放奖励积分，
// 同一日期键下奖励最多发放一次。
func (s *DailyService) RecordActivity(userID uint, now time.Time) (*DailyStatus, error) {
	key := DateKey(now)
	var status DailyStatus

	err := s.DB.Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.First(&user, userID).Error; err != nil {
			return err
		}

		target := user.DailyTarget
		if target <= 0 {
			target = s.SiteConfig.DailyTarget()
		}

		var record model.DailyPracticeRecord
		if err := tx.Where(model.DailyPracticeRecord{UserID: userID, DateKey: key}).
			FirstOrCreate(&record).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.DailyPracticeRecord{}).
			Where("user_id = ? AND date_key = ?", userID, key).
			Update("question_count", gorm.Expr("question_count + 1")).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ? AND date_key = ?", userID, key).
			First(&record).Error; err != nil {
			return err
		}

		status = DailyStatus{
			DateKey:    key,
			TodayCount: record.QuestionCount,
			Target:     target,
			Completed:  record.Completed,
			Streak:     user.StreakDays,
		}

		if record.QuestionCount >= target && !record.Completed {
			// 连击规则：与上一个达标日相差1天则递增，同日不变，中断或无记录则重置为1
			streak := 1
			if user.LastPracticeDate != "" {
				switch d := daysBetween(user.LastPracticeDate, key); d {
				case 0:
					streak = user.StreakDays
				case 1:
					streak = user.StreakDays + 1
				}
			}

			reward := RewardSchedule[(streak-1)%len(RewardSchedule)]

			if err := tx.Model(&model.DailyPracticeRecord{}).
				Where("user_id = ? AND date_key = ?", userID, key).
				Updates(map[string]interface{}{
					"completed":     true,
					"reward_points": reward,
					"completed_at":  now,
				}).Error; err != nil {
				return err
			}

			if err := tx.Model(&model.User{}).
				Where("id = ?", userID).
				Updates(map[string]interface{}{
					"streak_days":        streak,
					"last_practice_date": key,
				}).Error; err != nil {
				return err
			}

			if err := s.PointsRepo.AppendTx(tx, userID, reward, model.PointsReasonDailyStreak); err != nil {
				return err
			}

			status.Completed = true
			status.Streak = streak
			status.RewardGranted = true
			status.RewardPoints = reward
		}

		status.NextReward = RewardSchedule[status.Streak%len(RewardSchedule)]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &status, nil
}

// Status 只读查询当日状态，不产生任何写入
func (s *DailyService) Status(userID uint, now time.Time) (*DailyStatus, error) {
	key := DateKey(now)

	var user model.User
	if err := s.DB.First(&user, userID).Error; err != nil {
		return nil, err
	}

	target := user.DailyTarget
	if target <= 0 {
		target = s.SiteConfig.DailyTarget()
	}

	status := &DailyStatus{
		DateKey: key,
		Target:  target,
		Streak:  user.StreakDays,
	}

	record, err := s.DailyRepo.FindByUserAndDate(userID, key)
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if record != nil {
		status.TodayCount = record.QuestionCount
		status.Completed = record.Completed
		status.RewardPoints = record.RewardPoints
	}

	status.NextReward = RewardSchedule[status.Streak%len(RewardSchedule)]
	return status, nil
}

// Calendar 最近若干天的打卡记录
func (s *DailyService) Calendar(userID uint, days int) ([]model.DailyPracticeRecord, error) {
	if days <= 0 || days > 90 {
		days = 30
	}
	return s.DailyRepo.ListRecent(userID, days)
}
