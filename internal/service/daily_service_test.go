package service

import (
	"testing"
	"time"

	"hamexam_backend/internal/model"
	"hamexam_backend/internal/repository"
)

func setupDaily(t *testing.T) (*DailyService, *model.User) {
	t.Helper()

	db := newTestDB(t)
	siteConfig := NewSiteConfigService(repository.NewSiteConfigRepository(db))
	svc := NewDailyService(db, repository.NewDailyPracticeRepository(db), repository.NewPointsRepository(db), siteConfig)
	user := createTestUser(t, db, func(u *model.User) { u.DailyTarget = 2 })
	return svc, user
}

func mustParseDay(t *testing.T, key string) time.Time {
	t.Helper()
	day, err := time.Parse("2006-01-02", key)
	if err != nil {
		t.Fatal(err)
	}
	return day.Add(12 * time.Hour)
}

func TestRecordActivityCountsUntilTarget(t *testing.T) {
	svc, user := setupDaily(t)
	now := mustParseDay(t, "2026-03-10")

	status, err := svc.RecordActivity(user.ID, now)
	if err != nil {
		t.Fatal(err)
	}
	if status.TodayCount != 1 || status.Completed {
		t.Fatalf("after 1 answer: count=%d completed=%v", status.TodayCount, status.Completed)
	}
	if status.RewardGranted {
		t.Fatal("reward granted before target reached")
	}

	status, err = svc.RecordActivity(user.ID, now)
	if err != nil {
		t.Fatal(err)
	}
	if status.TodayCount != 2 || !status.Completed {
		t.Fatalf("after 2 answers: count=%d completed=%v", status.TodayCount, status.Completed)
	}
	if !status.RewardGranted || status.RewardPoints != RewardSchedule[0] {
		t.Fatalf("first-day reward = %d granted=%v, want %d", status.RewardPoints, status.RewardGranted, RewardSchedule[0])
	}
	if status.Streak != 1 {
		t.Fatalf("streak = %d, want 1", status.Streak)
	}
}

func TestRecordActivityRewardOncePerDay(t *testing.T) {
	svc, user := setupDaily(t)
	now := mustParseDay(t, "2026-03-10")

	for i := 0; i < 5; i++ {
		if _, err := svc.RecordActivity(user.ID, now); err != nil {
			t.Fatal(err)
		}
	}

	var freshUser model.User
	if err := svc.DB.First(&freshUser, user.ID).Error; err != nil {
		t.Fatal(err)
	}
	if freshUser.TotalPoints != RewardSchedule[0] {
		t.Fatalf("total points = %d, want %d (reward must be granted once)", freshUser.TotalPoints, RewardSchedule[0])
	}

	var historyCount int64
	if err := svc.DB.Model(&model.PointsHistory{}).Where("user_id = ?", user.ID).Count(&historyCount).Error; err != nil {
		t.Fatal(err)
	}
	if historyCount != 1 {
		t.Fatalf("points history rows = %d, want 1", historyCount)
	}
}

func TestStreakIncrementsOnConsecutiveDay(t *testing.T) {
	svc, user := setupDaily(t)

	// 昨天已达标，连击6天，今天达标应进到第7天并拿到50分
	if err := svc.DB.Model(&model.User{}).Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"streak_days":        6,
			"last_practice_date": "2026-03-09",
		}).Error; err != nil {
		t.Fatal(err)
	}

	now := mustParseDay(t, "2026-03-10")
	var status *DailyStatus
	var err error
	for i := 0; i < 2; i++ {
		status, err = svc.RecordActivity(user.ID, now)
		if err != nil {
			t.Fatal(err)
		}
	}

	if status.Streak != 7 {
		t.Fatalf("streak = %d, want 7", status.Streak)
	}
	if status.RewardPoints != 50 {
		t.Fatalf("reward = %d, want 50", status.RewardPoints)
	}

	var freshUser model.User
	if err := svc.DB.First(&freshUser, user.ID).Error; err != nil {
		t.Fatal(err)
	}
	if freshUser.StreakDays != 7 || freshUser.LastPracticeDate != "2026-03-10" {
		t.Fatalf("user after reward: streak=%d lastDate=%s", freshUser.StreakDays, freshUser.LastPracticeDate)
	}
	if freshUser.TotalPoints != 50 {
		t.Fatalf("total points = %d, want 50", freshUser.TotalPoints)
	}
}

func TestStreakResetsAfterGap(t *testing.T) {
	svc, user := setupDaily(t)

	if err := svc.DB.Model(&model.User{}).Where("id = ?", user.ID).
		Updates(map[string]interface{}{
			"streak_days":        6,
			"last_practice_date": "2026-03-07", // 中断两天
		}).Error; err != nil {
		t.Fatal(err)
	}

	now := mustParseDay(t, "2026-03-10")
	var status *DailyStatus
	var err error
	for i := 0; i < 2; i++ {
		status, err = svc.RecordActivity(user.ID, now)
		if err != nil {
			t.Fatal(err)
		}
	}

	if status.Streak != 1 {
		t.Fatalf("streak after gap = %d, want 1", status.Streak)
	}
	if status.RewardPoints != RewardSchedule[0] {
		t.Fatalf("reward after gap = %d, want %d", status.RewardPoints, RewardSchedule[0])
	}
}

func TestStatusIsReadOnly(t *testing.T) {
	svc, user := setupDaily(t)
	now := mustParseDay(t, "2026-03-10")

	if _, err := svc.RecordActivity(user.ID, now); err != nil {
		t.Fatal(err)
	}

	before, err := svc.Status(user.ID, now)
	if err != nil {
		t.Fatal(err)
	}
	after, err := svc.Status(user.ID, now)
	if err != nil {
		t.Fatal(err)
	}
	if before.TodayCount != 1 || after.TodayCount != 1 {
		t.Fatalf("Status mutated count: before=%d after=%d", before.TodayCount, after.TodayCount)
	}
	if after.NextReward != RewardSchedule[0] {
		t.Fatalf("next reward = %d, want %d", after.NextReward, RewardSchedule[0])
	}
}

func TestDateKeyUsesUTC(t *testing.T) {
	loc := time.FixedZone("UTC+8", 8*3600)
	// 北京时间 3月11日 02:00，UTC 还是 3月10日
	local := time.Date(2026, 3, 11, 2, 0, 0, 0, loc)
	if got := DateKey(local); got != "2026-03-10" {
		t.Fatalf("DateKey = %q, want 2026-03-10", got)
	}
}
