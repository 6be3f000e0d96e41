package repository

import (
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"hamexam_backend/internal/model"
)

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
		t.Fatal(err)
	}
	// 内存库按连接隔离，限制单连接保证所有语句见同一库
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&model.UserQuestion{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

func TestRecordAnswerIncrementsCounts(t *testing.T) {
	repo := NewUserQuestionRepository(newTestDB(t))
	now := time.Now()

	rec, err := repo.RecordAnswer(1, 7, true, now)
	if err != nil {
		t.Fatal(err)
	}
	if rec.CorrectCount != 1 || rec.IncorrectCount != 0 {
		t.Fatalf("after first correct answer: %+v", rec)
	}
	if rec.LastCorrect == nil {
		t.Fatal("last_correct not set on correct answer")
	}

	rec, err = repo.RecordAnswer(1, 7, false, now.Add(time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if rec.CorrectCount != 1 || rec.IncorrectCount != 1 {
		t.Fatalf("after wrong answer: %+v", rec)
	}

	rec, err = repo.RecordAnswer(1, 7, false, now.Add(2*time.Minute))
	if err != nil {
		t.Fatal(err)
	}
	if rec.IncorrectCount != 2 {
		t.Fatalf("incorrect_count = %d, want 2", rec.IncorrectCount)
	}

	// 同一用户同一题只应有一条记录
	var count int64
	if err := repo.DB.Model(&model.UserQuestion{}).Count(&count).Error; err != nil {
		t.Fatal(err)
	}
	if count != 1 {
		t.Fatalf("rows = %d, want 1", count)
	}
}

func TestMarkSeenDoesNotTouchCounts(t *testing.T) {
	repo := NewUserQuestionRepository(newTestDB(t))
	now := time.Now()

	if _, err := repo.RecordAnswer(1, 7, true, now); err != nil {
		t.Fatal(err)
	}
	if err := repo.MarkSeen(1, 7, now.Add(time.Hour)); err != nil {
		t.Fatal(err)
	}

	rec, err := repo.Find(1, 7)
	if err != nil {
		t.Fatal(err)
	}
	if rec.CorrectCount != 1 || rec.IncorrectCount != 0 {
		t.Fatalf("counts changed by MarkSeen: %+v", rec)
	}
	if !rec.LastAnswered.After(now) {
		t.Fatal("last_answered not refreshed")
	}
}

func TestListWrongOnlyReturnsMistakes(t *testing.T) {
	repo := NewUserQuestionRepository(newTestDB(t))
	now := time.Now()

	if _, err := repo.RecordAnswer(1, 10, true, now); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.RecordAnswer(1, 11, false, now.Add(time.Minute)); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.RecordAnswer(1, 12, false, now.Add(2*time.Minute)); err != nil {
		t.Fatal(err)
	}
	// 其他用户的错题不应出现
	if _, err := repo.RecordAnswer(2, 11, false, now); err != nil {
		t.Fatal(err)
	}

	records, total, err := repo.ListWrong(1, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 || len(records) != 2 {
		t.Fatalf("total=%d len=%d, want 2/2", total, len(records))
	}
	// 最近答错的排在前面
	if records[0].QuestionID != 12 || records[1].QuestionID != 11 {
		t.Fatalf("order = [%d %d], want [12 11]", records[0].QuestionID, records[1].QuestionID)
	}
}

func TestStatsAggregates(t *testing.T) {
	repo := NewUserQuestionRepository(newTestDB(t))
	now := time.Now()

	if _, err := repo.RecordAnswer(1, 10, true, now); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.RecordAnswer(1, 10, true, now); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.RecordAnswer(1, 11, false, now); err != nil {
		t.Fatal(err)
	}

	answered, correct, incorrect, err := repo.Stats(1)
	if err != nil {
		t.Fatal(err)
	}
	if answered != 2 || correct != 2 || incorrect != 1 {
		t.Fatalf("stats = %d/%d/%d, want 2/2/1", answered, correct, incorrect)
	}
}

func TestStatsEmptyUser(t *testing.T) {
	repo := NewUserQuestionRepository(newTestDB(t))

	answered, correct, incorrect, err := repo.Stats(42)
	if err != nil {
		t.Fatal(err)
	}
	if answered != 0 || correct != 0 || incorrect != 0 {
		t.Fatalf("stats = %d/%d/%d, want zeros", answered, correct, incorrect)
	}
}
