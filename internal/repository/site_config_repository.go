package repository

import (
	"hamexam_backend/internal/model"

	"gorm.io/gorm"
)

type SiteConfigRepository struct {
	DB *gorm.DB
}

func NewSiteConfigRepository(db *gorm.DB) *SiteConfigRepository {
	return &SiteConfigRepository{DB: db}
}

func (r *SiteConfigRepository) Get(key string) (string, error) {
	var cfg model.SiteConfig
	err := r.DB.Where("`key` = ?", key).First(&cfg).Error
	if err != nil {
		return "", err
	}
	return cfg.Value, nil
}

func (r *SiteConfigRepository) Set(key, value string) error {
	return r.DB.Transaction(func(tx *gorm.DB) error {
		var cfg model.SiteConfig
		err := tx.Where("`key` = ?", key).First(&cfg).Error
		if err == gorm.ErrRecordNotFound {
			return tx.Create(&model.SiteConfig{Key: key, Value: value}).Error
		}
		if err != nil {
			return err
		}
		cfg.Value = value
		return tx.Save(&cfg).Error
	})
}

func (r *SiteConfigRepository) List() ([]model.SiteConfig, error) {
	var configs []model.SiteConfig
	err := r.DB.Order("`key` ASC").Find(&configs).Error
	return configs, err
}
