package model

import "time"

type ExamStatus string

const (
	ExamOngoing   ExamStatus = "ongoing"
	ExamSubmitted ExamStatus = "submitted"
	ExamExpired   ExamStatus = "expired"
)

// ExamSession 一次模拟考试。题目的乱序映射持久化在 ExamSessionQuestion 上，
// 提交时据此严格判分。
// swagger:model ExamSession
type ExamSession struct {
	UUIDBase
	UserID      uint       `gorm:"index;not null" json:"userId"`
	LibraryID   uint       `gorm:"not null" json:"libraryId"`
	Status      ExamStatus `gorm:"size:20;default:'ongoing'" json:"status"`
	StartedAt   time.Time  `json:"startedAt"`
	ExpiresAt   time.Time  `json:"expiresAt"`
	SubmittedAt *time.Time `json:"submittedAt"`
	Score       int        `gorm:"default:0" json:"score"`
	Total       int        `gorm:"default:0" json:"total"`
	PassScore   int        `gorm:"default:0" json:"passScore"`
	Passed      bool       `gorm:"default:false" json:"passed"`
}

func (ExamSession) TableName() string {
	return "exam_sessions"
}

// ExamSessionQuestion 考试中的一道题。MappingJSON 保存展示标签到原始选项ID
// 的有序映射，SelectedJSON 保存提交的展示标签。
// swagger:model ExamSessionQuestion
type ExamSessionQuestion struct {
	BaseModel
	SessionID    string `gorm:"size:36;index;not null" json:"sessionId"`
	QuestionID   uint   `gorm:"not null" json:"questionId"`
	Seq          int    `gorm:"not null" json:"seq"`
	MappingJSON  string `gorm:"type:text" json:"-"`
	SelectedJSON string `gorm:"type:text" json:"-"`
	Correct      *bool  `json:"correct"`
}

func (ExamSessionQuestion) TableName() string {
	return "exam_session_questions"
}
