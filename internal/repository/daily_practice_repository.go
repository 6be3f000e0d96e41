package repository

import (
	"hamexam_backend/internal/model"

	"gorm.io/gorm"
)

type DailyPracticeRepository struct {
	DB *gorm.DB
}

func NewDailyPracticeRepository(db *gorm.DB) *DailyPracticeRepository {
	return &DailyPracticeRepository{DB: db}
}

func (r *DailyPracticeRepository) FindByUserAndDate(userID uint, dateKey string) (*model.DailyPracticeRecord, error) {
	var record model.DailyPracticeRecord
	err := r.DB.Where("user_id = ? AND date_key = ?", userID, dateKey).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListRecent 最近若干天的打卡记录，日历展示用
func (r *DailyPracticeRepository) ListRecent(userID uint, days int) ([]model.DailyPracticeRecord, error) {
	var records []model.DailyPracticeRecord
	err := r.DB.Where("user_id = ?", userID).
		Order("date_key DESC").
		Limit(days).
		Find(&records).Error
	return records, err
}

// CountCompleted 历史达标总天数
func (r *DailyPracticeRepository) CountCompleted(userID uint) (int64, error) {
	var count int64
	err := r.DB.Model(&model.DailyPracticeRecord{}).
		Where("user_id = ? AND completed = ?", userID, true).
		Count(&count).Error
	return count, err
}
