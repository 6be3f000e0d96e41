package repository

import (
	"hamexam_backend/internal/model"

	"gorm.io/gorm"
)

type ExamRepository struct {
	DB *gorm.DB
}

func NewExamRepository(db *gorm.DB) *ExamRepository {
	return &ExamRepository{DB: db}
}

// CreateSession 在事务内创建考试会话及其全部题目行
func (r *ExamRepository) CreateSession(session *model.ExamSession, questions []model.ExamSessionQuestion) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(session).Error; err != nil {
			return err
		}
		for i := range questions {
			questions[i].SessionID = session.ID
		}
		return tx.Create(&questions).Error
	})
}

func (r *ExamRepository) FindSession(id string) (*model.ExamSession, error) {
	var session model.ExamSession
	err := r.DB.Where("id = ?", id).First(&session).Error
	if err != nil {
		return nil, err
	}
	return &session, nil
}

func (r *ExamRepository) FindSessionQuestions(sessionID string) ([]model.ExamSessionQuestion, error) {
	var questions []model.ExamSessionQuestion
	err := r.DB.Where("session_id = ?", sessionID).
		Order("seq ASC").
		Find(&questions).Error
	return questions, err
}

func (r *ExamRepository) ListByUser(userID uint, page, limit int) ([]model.ExamSession, int64, error) {
	var sessions []model.ExamSession
	var total int64

	query := r.DB.Model(&model.ExamSession{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("started_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&sessions).Error
	return sessions, total, err
}
