package service

import (
	"errors"
	"testing"

	"hamexam_backend/internal/model"
	"hamexam_backend/internal/util"
)

func intPtr(v int) *int { return &v }

func TestCheckAndIncrementWithinLimit(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuotaService(db)
	user := createTestUser(t, db, func(u *model.User) { u.AIQuotaLimit = intPtr(10) })

	for i := 0; i < 10; i++ {
		if err := svc.CheckAndIncrement(user.ID, 1, false); err != nil {
			t.Fatalf("call %d: %v", i+1, err)
		}
	}

	status, err := svc.GetStatus(user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if status.Used != 10 || *status.Remaining != 0 {
		t.Fatalf("used=%d remaining=%d, want 10/0", status.Used, *status.Remaining)
	}
}

func TestCheckAndIncrementBoundary(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuotaService(db)
	user := createTestUser(t, db, func(u *model.User) {
		u.AIQuotaLimit = intPtr(10)
		u.AIQuotaUsed = 9
	})

	// 第10次刚好用满
	if err := svc.CheckAndIncrement(user.ID, 1, false); err != nil {
		t.Fatalf("call at used=9 limit=10: %v", err)
	}

	// 第11次超限
	err := svc.CheckAndIncrement(user.ID, 1, false)
	var quotaErr *util.QuotaExceededError
	if !errors.As(err, &quotaErr) {
		t.Fatalf("err = %v, want QuotaExceededError", err)
	}
	if quotaErr.Used != 10 || quotaErr.Limit != 10 {
		t.Fatalf("quota error used=%d limit=%d, want 10/10", quotaErr.Used, quotaErr.Limit)
	}

	// 失败的调用不得累加用量
	status, err := svc.GetStatus(user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if status.Used != 10 {
		t.Fatalf("used = %d after denied call, want 10", status.Used)
	}
}

func TestCheckAndIncrementNilLimitUnlimited(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuotaService(db)
	user := createTestUser(t, db, nil)

	for i := 0; i < 100; i++ {
		if err := svc.CheckAndIncrement(user.ID, 1, false); err != nil {
			t.Fatalf("unlimited call %d: %v", i+1, err)
		}
	}

	status, err := svc.GetStatus(user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !status.Unlimited || status.Used != 100 || status.Remaining != nil {
		t.Fatalf("status = %+v, want unlimited with used=100", status)
	}
}

func TestCheckAndIncrementBypassStillAccounts(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuotaService(db)
	user := createTestUser(t, db, func(u *model.User) {
		u.AIQuotaLimit = intPtr(1)
		u.AIQuotaUsed = 1
	})

	// 绕过上限仍然记账
	if err := svc.CheckAndIncrement(user.ID, 1, true); err != nil {
		t.Fatal(err)
	}

	status, err := svc.GetStatus(user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if status.Used != 2 {
		t.Fatalf("used = %d, want 2", status.Used)
	}
}

func TestCheckAndIncrementRejectsBadCount(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuotaService(db)
	user := createTestUser(t, db, nil)

	var vErr *util.ValidationError
	if err := svc.CheckAndIncrement(user.ID, 0, false); !errors.As(err, &vErr) {
		t.Fatalf("count=0: err = %v, want ValidationError", err)
	}
	if err := svc.CheckAndIncrement(user.ID, -3, false); !errors.As(err, &vErr) {
		t.Fatalf("count=-3: err = %v, want ValidationError", err)
	}
}

func TestCheckAndIncrementUnknownUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuotaService(db)

	if err := svc.CheckAndIncrement(9999, 1, false); !errors.Is(err, util.ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestGetStatusDoesNotMutate(t *testing.T) {
	db := newTestDB(t)
	svc := NewQuotaService(db)
	user := createTestUser(t, db, func(u *model.User) { u.AIQuotaLimit = intPtr(5) })

	for i := 0; i < 3; i++ {
		if _, err := svc.GetStatus(user.ID); err != nil {
			t.Fatal(err)
		}
	}

	status, err := svc.GetStatus(user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if status.Used != 0 {
		t.Fatalf("used = %d after reads only, want 0", status.Used)
	}
}
