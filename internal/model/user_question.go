package model

import "time"

// UserQuestion 用户与题目的做题记录，按 (user_id, question_id) 唯一
// swagger:model UserQuestion
type UserQuestion struct {
	BaseModel
	UserID         uint       `gorm:"not null;uniqueIndex:idx_user_question" json:"userId"`
	QuestionID     uint       `gorm:"not null;uniqueIndex:idx_user_question" json:"questionId"`
	CorrectCount   int        `gorm:"default:0" json:"correctCount"`
	IncorrectCount int        `gorm:"default:0" json:"incorrectCount"`
	LastAnswered   time.Time  `json:"lastAnswered"`
	LastCorrect    *time.Time `json:"lastCorrect"`
}

func (UserQuestion) TableName() string {
	return "user_questions"
}
