package repository

import (
	"hamexam_backend/internal/model"

	"gorm.io/gorm"
)

type StylePresetRepository struct {
	DB *gorm.DB
}

func NewStylePresetRepository(db *gorm.DB) *StylePresetRepository {
	return &StylePresetRepository{DB: db}
}

func (r *StylePresetRepository) Create(preset *model.StylePreset) error {
	return r.DB.Create(preset).Error
}

func (r *StylePresetRepository) FindByID(id uint) (*model.StylePreset, error) {
	var preset model.StylePreset
	err := r.DB.First(&preset, id).Error
	if err != nil {
		return nil, err
	}
	return &preset, nil
}

func (r *StylePresetRepository) FindByName(name string) (*model.StylePreset, error) {
	var preset model.StylePreset
	err := r.DB.Where("name = ?", name).First(&preset).Error
	if err != nil {
		return nil, err
	}
	return &preset, nil
}

func (r *StylePresetRepository) FindDefault() (*model.StylePreset, error) {
	var preset model.StylePreset
	err := r.DB.Where("is_default = ?", true).First(&preset).Error
	if err != nil {
		return nil, err
	}
	return &preset, nil
}

func (r *StylePresetRepository) List() ([]model.StylePreset, error) {
	var presets []model.StylePreset
	err := r.DB.Order("id ASC").Find(&presets).Error
	return presets, err
}

func (r *StylePresetRepository) Update(preset *model.StylePreset) error {
	return r.DB.Save(preset).Error
}

func (r *StylePresetRepository) Delete(id uint) error {
	return r.DB.Delete(&model.StylePreset{}, id).Error
}

// SetDefault 把指定预设设为默认，同一事务里先清掉其它预设的默认位，
// 保证任意时刻最多只有一个默认预设。
func (r *StylePresetRepository) SetDefault(id uint) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var preset model.StylePreset
		if err := tx.First(&preset, id).Error; err != nil {
			return err
		}

		if err := tx.Model(&model.StylePreset{}).
			Where("is_default = ?", true).
			Update("is_default", false).Error; err != nil {
			return err
		}

		return tx.Model(&model.StylePreset{}).
			Where("id = ?", id).
			Update("is_default", true).Error
	})
}
