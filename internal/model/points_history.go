package model

// 积分来源
const (
	PointsReasonDailyStreak   = "daily_streak"   // 每日达标连击奖励
	PointsReasonAnswerCorrect = "answer_correct" // 答对加分
	PointsReasonAdminAdjust   = "admin_adjust"   // 管理员手工调整
)

// PointsHistory 积分流水，只追加不修改。
// 任一用户的流水金额之和必须等于 users.total_points。
// swagger:model PointsHistory
type PointsHistory struct {
	BaseModel
	UserID uint   `gorm:"index;not null" json:"userId"`
	Amount int    `gorm:"not null" json:"amount"`
	Reason string `gorm:"size:50;not null" json:"reason"`
}

func (PointsHistory) TableName() string {
	return "points_histories"
}
