package service

import (
	"errors"
	"testing"

	"hamexam_backend/internal/model"
	"hamexam_backend/internal/repository"
	"hamexam_backend/internal/util"
)

func setupPoints(t *testing.T) (*PointsService, *repository.PointsRepository, *model.User) {
	t.Helper()

	db := newTestDB(t)
	pointsRepo := repository.NewPointsRepository(db)
	svc := NewPointsService(db, pointsRepo, repository.NewUserRepository(db))
	user := createTestUser(t, db, nil)
	return svc, pointsRepo, user
}

func TestGrantPointsKeepsLedgerConsistent(t *testing.T) {
	svc, repo, user := setupPoints(t)

	grants := []int{5, 10, -3, 50}
	for _, amount := range grants {
		if err := svc.GrantPoints(user.ID, amount, model.PointsReasonAdminAdjust); err != nil {
			t.Fatalf("grant %d: %v", amount, err)
		}
	}

	sum, err := repo.SumByUser(user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if sum != 62 {
		t.Fatalf("ledger sum = %d, want 62", sum)
	}

	var freshUser model.User
	if err := svc.DB.First(&freshUser, user.ID).Error; err != nil {
		t.Fatal(err)
	}
	if int64(freshUser.TotalPoints) != sum {
		t.Fatalf("total_points=%d != ledger sum=%d", freshUser.TotalPoints, sum)
	}

	_, total, err := svc.History(user.ID, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if total != int64(len(grants)) {
		t.Fatalf("history rows = %d, want %d", total, len(grants))
	}
}

func TestGrantPointsRequiresReason(t *testing.T) {
	svc, _, user := setupPoints(t)

	var vErr *util.ValidationError
	if err := svc.GrantPoints(user.ID, 10, ""); !errors.As(err, &vErr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}

func TestGrantPointsUnknownUserRollsBack(t *testing.T) {
	svc, repo, _ := setupPoints(t)

	if err := svc.GrantPoints(9999, 10, model.PointsReasonAdminAdjust); err == nil {
		t.Fatal("grant to missing user should fail")
	}

	// 回滚后不得留下孤儿流水
	sum, err := repo.SumByUser(9999)
	if err != nil {
		t.Fatal(err)
	}
	if sum != 0 {
		t.Fatalf("orphan ledger sum = %d, want 0", sum)
	}
}

func TestLeaderboardOrdering(t *testing.T) {
	db := newTestDB(t)
	svc := NewPointsService(db, repository.NewPointsRepository(db), repository.NewUserRepository(db))

	createTestUser(t, db, func(u *model.User) { u.Name = "乙"; u.TotalPoints = 30 })
	createTestUser(t, db, func(u *model.User) { u.Name = "甲"; u.TotalPoints = 100 })
	createTestUser(t, db, func(u *model.User) { u.Name = "被封禁"; u.TotalPoints = 500; u.Disabled = true })

	entries, err := svc.Leaderboard(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %d, want 2 (disabled user excluded)", len(entries))
	}
	if entries[0].Name != "甲" || entries[0].Rank != 1 {
		t.Fatalf("first entry = %+v", entries[0])
	}
	if entries[1].Name != "乙" || entries[1].Rank != 2 {
		t.Fatalf("second entry = %+v", entries[1])
	}
}
