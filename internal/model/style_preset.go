package model

// StylePreset AI 讲解风格预设，由管理员维护。
// Prompt 中可包含 {{AI_STYLE}} 占位符，组装时替换为用户自定义风格。
// 全站最多只有一个 IsDefault 为 true 的预设。
// swagger:model StylePreset
type StylePreset struct {
	BaseModel
	Name      string `gorm:"size:100;unique;not null" json:"name"`
	Prompt    string `gorm:"type:text;not null" json:"prompt"`
	IsDefault bool   `gorm:"default:false" json:"isDefault"`
	CreatedBy uint   `json:"createdBy"`
}

func (StylePreset) TableName() string {
	return "style_presets"
}
