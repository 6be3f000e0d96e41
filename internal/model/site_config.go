package model

// 站点配置键
const (
	ConfigDailyTarget       = "daily_target"        // 每日练习目标题数
	ConfigExamQuestionCount = "exam_question_count" // 模拟考试题数
	ConfigExamDuration      = "exam_duration_min"   // 考试时长（分钟）
	ConfigExamPassScore     = "exam_pass_score"     // 及格题数
	ConfigAIEnabled         = "ai_enabled"          // AI 讲解开关
	ConfigDefaultAIQuota    = "default_ai_quota"    // 新用户默认 AI 配额，空表示不限
	ConfigCorrectBonus      = "correct_bonus"       // 答对加分
)

// SiteConfig 站点级键值配置，管理台可改
// swagger:model SiteConfig
type SiteConfig struct {
	BaseModel
	Key   string `gorm:"size:50;unique;not null" json:"key"`
	Value string `gorm:"size:255" json:"value"`
}

func (SiteConfig) TableName() string {
	return "site_configs"
}
