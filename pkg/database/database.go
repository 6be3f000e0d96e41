package database

import (
	"fmt"
	"log"

	"hamexam_backend/internal/config"
	"hamexam_backend/internal/model"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	Seed(db)

	return db, nil
}

// Migrate 执行表结构迁移
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.QuestionLibrary{},
		&model.Question{},
		&model.QuestionOption{},
		&model.UserQuestion{},
		&model.DailyPracticeRecord{},
		&model.PointsHistory{},
		&model.StylePreset{},
		&model.ExamSession{},
		&model.ExamSessionQuestion{},
		&model.AuditLog{},
		&model.SiteConfig{},
	)
}

// Seed 插入缺省数据：站点配置与默认讲解风格预设
func Seed(db *gorm.DB) {
	defaults := map[string]string{
		model.ConfigDailyTarget:       "10",
		model.ConfigExamQuestionCount: "30",
		model.ConfigExamDuration:      "40",
		model.ConfigExamPassScore:     "25",
		model.ConfigAIEnabled:         "true",
		model.ConfigDefaultAIQuota:    "",
		model.ConfigCorrectBonus:      "2",
	}
	for key, value := range defaults {
		var count int64
		db.Model(&model.SiteConfig{}).Where("`key` = ?", key).Count(&count)
		if count == 0 {
			db.Create(&model.SiteConfig{Key: key, Value: value})
		}
	}

	var presetCount int64
	db.Model(&model.StylePreset{}).Count(&presetCount)
	if presetCount == 0 {
		defaultPresets := []model.StylePreset{
			{
				Name:      "标准讲解",
				Prompt:    "你是一名业余无线电考试辅导老师。请用简洁准确的中文讲解这道题，说明正确答案的依据。{{AI_STYLE}}",
				IsDefault: true,
			},
			{
				Name:   "入门友好",
				Prompt: "你是一名业余无线电考试辅导老师。假设学员没有任何电子学背景，请从基础概念讲起，{{AI_STYLE}}，最后用一句话总结答题要点。",
			},
			{
				Name:   "口诀记忆",
				Prompt: "你是一名业余无线电考试辅导老师。请为这道题编一个便于记忆的口诀或联想，并解释正确答案。{{AI_STYLE}}",
			},
		}
		for _, p := range defaultPresets {
			db.Create(&p)
		}
	}
}
