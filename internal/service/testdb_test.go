package service

import (
	"testing"

	"hamexam_backend/internal/model"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// newTestDB 内存 SQLite，限制单连接避免各连接各见一库
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("unwrap sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
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
	if err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *gorm.DB, mutate func(*model.User)) *model.User {
	t.Helper()

	user := &model.User{
		Name:  "测试用户",
		Email: model.GenerateUUID() + "@example.com",
		Role:  model.RoleUser,
	}
	if mutate != nil {
		mutate(user)
	}
	if err := db.Create(user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}
