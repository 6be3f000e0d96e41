package model

import "time"

// DailyPracticeRecord 按 (user_id, date_key) 记录当日练习量与达标奖励。
// 达标奖励在同一个日期键下最多发放一次。
// swagger:model DailyPracticeRecord
type DailyPracticeRecord struct {
	BaseModel
	UserID        uint       `gorm:"not null;uniqueIndex:idx_user_date" json:"userId"`
	DateKey       string     `gorm:"size:10;not null;uniqueIndex:idx_user_date" json:"dateKey"` // YYYY-MM-DD（UTC）
	QuestionCount int        `gorm:"default:0" json:"questionCount"`
	Completed     bool       `gorm:"default:false" json:"completed"`
	RewardPoints  int        `gorm:"default:0" json:"rewardPoints"`
	CompletedAt   *time.Time `json:"completedAt"`
}

func (DailyPracticeRecord) TableName() string {
	return "daily_practice_records"
}
