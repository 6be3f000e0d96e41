package model

type QuestionType string

const (
	SingleChoice   QuestionType = "single"
	MultipleChoice QuestionType = "multiple"
	TrueFalse      QuestionType = "truefalse"
)

// QuestionLibrary 题库，对应一个执照类别的题目集合（如 A类/B类/C类）
// swagger:model QuestionLibrary
type QuestionLibrary struct {
	BaseModel
	Name          string `gorm:"size:100;unique;not null" json:"name"`
	LicenseClass  string `gorm:"size:10" json:"licenseClass"` // A / B / C
	Description   string `gorm:"type:text" json:"description"`
	Enabled       bool   `gorm:"default:true" json:"enabled"`
	QuestionCount int    `gorm:"default:0" json:"questionCount"`
}

func (QuestionLibrary) TableName() string {
	return "question_libraries"
}

// Question 题目本体，选项与正确答案由导入流程写入后不再修改
// swagger:model Question
type Question struct {
	BaseModel
	LibraryID uint             `gorm:"index;not null" json:"libraryId"`
	Code      string           `gorm:"size:20;index" json:"code"` // 官方题号，如 LK0291
	Type      QuestionType     `gorm:"size:20;not null" json:"type"`
	Content   string           `gorm:"type:text;not null" json:"content"`
	Chapter   string           `gorm:"size:100" json:"chapter"`
	Tags      string           `gorm:"size:255" json:"tags"` // 归一化后以逗号分隔
	Options   []QuestionOption `gorm:"foreignKey:QuestionID" json:"options"`
}

func (Question) TableName() string {
	return "questions"
}

// CorrectOptionIDs 返回正确选项的原始ID集合
func (q *Question) CorrectOptionIDs() []string {
	ids := make([]string, 0, len(q.Options))
	for _, o := range q.Options {
		if o.IsCorrect {
			ids = append(ids, o.OptionID)
		}
	}
	return ids
}

// QuestionOption 题目选项。OptionID 是存储层的稳定原始ID，
// 出题时不直接下发给客户端，由乱序映射转换为展示标签。
// swagger:model QuestionOption
type QuestionOption struct {
	ID         uint   `gorm:"primaryKey;autoIncrement" json:"-"`
	QuestionID uint   `gorm:"index;not null" json:"-"`
	OptionID   string `gorm:"size:20;not null" json:"optionId"`
	Content    string `gorm:"type:text;not null" json:"content"`
	IsCorrect  bool   `gorm:"default:false" json:"-"`
}

func (QuestionOption) TableName() string {
	return "question_options"
}
