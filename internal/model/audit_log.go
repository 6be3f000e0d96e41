package model

// AuditLog 管理台操作审计，只追加
// swagger:model AuditLog
type AuditLog struct {
	BaseModel
	ActorID uint   `gorm:"index;not null" json:"actorId"`
	Action  string `gorm:"size:50;index;not null" json:"action"` // 如 user.disable / library.import
	Target  string `gorm:"size:100" json:"target"`
	Detail  string `gorm:"type:text" json:"detail"`
	IP      string `gorm:"size:45" json:"ip"`
}

func (AuditLog) TableName() string {
	return "audit_logs"
}
