package model

import (
	"time"
)

type UserRole string

const (
	RoleUser  UserRole = "user"
	RoleAdmin UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel
	Callsign         string    `gorm:"size:20" json:"callsign"` // 呼号，可选
	Name             string    `gorm:"size:100" json:"name"`
	Email            string    `gorm:"size:100;unique;not null" json:"email"`
	Password         string    `gorm:"size:100" json:"-"` // 仅管理员密码登录使用，普通用户留空
	Role             UserRole  `gorm:"size:20;default:'user'" json:"role"`
	Avatar           string    `gorm:"size:255" json:"avatar"`
	Disabled         bool      `gorm:"default:false" json:"disabled"`
	TotalPoints      int       `gorm:"default:0" json:"totalPoints"` // 积分缓存，与积分流水之和保持一致
	StreakDays       int       `gorm:"default:0" json:"streakDays"`  // 连续达标天数
	LastPracticeDate string    `gorm:"size:10" json:"lastPracticeDate"` // 最近一次达标日期键 YYYY-MM-DD（UTC）
	DailyTarget      int       `gorm:"default:0" json:"dailyTarget"`    // 每日练习目标，0 表示使用站点默认值
	AIQuotaLimit     *int      `json:"aiQuotaLimit"`                    // AI 调用上限，NULL 表示不限
	AIQuotaUsed      int       `gorm:"default:0" json:"aiQuotaUsed"`
	StylePresetID    *uint     `json:"stylePresetId"`                  // 选中的讲解风格预设
	AIStylePrompt    string    `gorm:"type:text" json:"aiStylePrompt"` // 自定义风格补充
	LastLogin        time.Time `json:"lastLogin"`
	LastSeen         time.Time `json:"lastSeen"`
}

func (User) TableName() string {
	return "users"
}
