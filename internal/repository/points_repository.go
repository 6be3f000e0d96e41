package repository

import (
	"hamexam_backend/internal/model"

	"gorm.io/gorm"
)

type PointsRepository struct {
	DB *gorm.DB
}

func NewPointsRepository(db *gorm.DB) *PointsRepository {
	return &PointsRepository{DB: db}
}

// AppendTx 在给定事务内追加一条流水并同步累加积分缓存。
// 两个写入要么同时成功要么同时回滚，保证流水之和等于缓存值。
func (r *PointsRepository) AppendTx(tx *gorm.DB, userID uint, amount int, reason string) error {
	entry := &model.PointsHistory{
		UserID: userID,
		Amount: amount,
		Reason: reason,
	}
	if err := tx.Create(entry).Error; err != nil {
		return err
	}

	res := tx.Model(&model.User{}).
		Where("id = ?", userID).
		Update("total_points", gorm.Expr("total_points + ?", amount))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *PointsRepository) History(userID uint, page, limit int) ([]model.PointsHistory, int64, error) {
	var entries []model.PointsHistory
	var total int64

	query := r.DB.Model(&model.PointsHistory{}).Where("user_id = ?", userID)
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	err := query.Order("id DESC").
		Offset(offset).
		Limit(limit).
		Find(&entries).Error
	return entries, total, err
}

// SumByUser 流水总和，用于一致性核对
func (r *PointsRepository) SumByUser(userID uint) (int64, error) {
	var sum int64
	err := r.DB.Model(&model.PointsHistory{}).
		Where("user_id = ?", userID).
		Select("COALESCE(SUM(amount),0)").
		Scan(&sum).Error
	return sum, err
}
