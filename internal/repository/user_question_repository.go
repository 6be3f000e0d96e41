package repository

import (
	"time"

	"hamexam_backend/internal/model"

	"gorm.io/gorm"
)

type UserQuestionRepository struct {
	DB *gorm.DB
}

func NewUserQuestionRepository(db *gorm.DB) *UserQuestionRepository {
	return &UserQuestionRepository{DB: db}
}

// RecordAnswer 记录一次答题结果。按 (user_id, question_id) upsert：
// 首次创建，其后在事务内以原子自增更新对应计数，避免并发丢失更新。
func (r *UserQuestionRepository) RecordAnswer(userID, questionID uint, wasCorrect bool, now time.Time) (*model.UserQuestion, error) {
	var record model.UserQuestion

	err := r.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(model.UserQuestion{UserID: userID, QuestionID: questionID}).
			FirstOrCreate(&record).Error; err != nil {
			return err
		}

		updates := map[string]interface{}{
			"last_answered": now,
		}
		if wasCorrect {
			updates["correct_count"] = gorm.Expr("correct_count + 1")
			updates["last_correct"] = now
		} else {
			updates["incorrect_count"] = gorm.Expr("incorrect_count + 1")
		}

		if err := tx.Model(&model.UserQuestion{}).
			Where("user_id = ? AND question_id = ?", userID, questionID).
			Updates(updates).Error; err != nil {
			return err
		}

		// 回读更新后的计数
		return tx.Where("user_id = ? AND question_id = ?", userID, questionID).
			First(&record).Error
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// MarkSeen 仅刷新浏览时间，不动计数
func (r *UserQuestionRepository) MarkSeen(userID, questionID uint, now time.Time) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var record model.UserQuestion
		if err := tx.Where(model.UserQuestion{UserID: userID, QuestionID: questionID}).
			FirstOrCreate(&record).Error; err != nil {
			return err
		}
		return tx.Model(&model.UserQuestion{}).
			Where("user_id = ? AND question_id = ?", userID, questionID).
			Update("last_answered", now).Error
	})
}

func (r *UserQuestionRepository) Find(userID, questionID uint) (*model.UserQuestion, error) {
	var record model.UserQuestion
	err := r.DB.Where("user_id = ? AND question_id = ?", userID, questionID).
		First(&record).Error
	if err != nil {
		return nil, err
	}
	return &record, nil
}

// ListWrong 错题本：答错次数大于0的记录
func (r *UserQuestionRepository) ListWrong(userID uint, page, limit int) ([]model.UserQuestion, int64, error) {
	var records []model.UserQuestion
	var total int64

	query := r.DB.Model(&model.UserQuestion{}).
		Where("user_id = ? AND incorrect_count > 0", userID)

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("last_answered DESC").
		Offset(offset).
		Limit(limit).
		Find(&records).Error
	return records, total, err
}

// Stats 用户练习统计
func (r *UserQuestionRepository) Stats(userID uint) (answered int64, correct int64, incorrect int64, err error) {
	type row struct {
		Answered  int64
		Correct   int64
		Incorrect int64
	}
	var res row
	err = r.DB.Model(&model.UserQuestion{}).
		Where("user_id = ?", userID).
		Select("COUNT(*) AS answered, COALESCE(SUM(correct_count),0) AS correct, COALESCE(SUM(incorrect_count),0) AS incorrect").
		Scan(&res).Error
	return res.Answered, res.Correct, res.Incorrect, err
}
