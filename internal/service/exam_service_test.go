package service

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"hamexam_backend/internal/model"
	"hamexam_backend/internal/repository"
	"hamexam_backend/internal/util"
)

// setupExam 建一个 3 题考试环境：题库 4 题，及格线 2 题
func setupExam(t *testing.T) (*ExamService, *model.User, uint) {
	t.Helper()

	db := newTestDB(t)

	cfgRepo := repository.NewSiteConfigRepository(db)
	for key, value := range map[string]string{
		model.ConfigExamQuestionCount: "3",
		model.ConfigExamDuration:      "40",
		model.ConfigExamPassScore:     "2",
	} {
		if err := cfgRepo.Set(key, value); err != nil {
			t.Fatalf("set %s: %v", key, err)
		}
	}

	lib := &model.QuestionLibrary{Name: "A类题库"}
	if err := db.Create(lib).Error; err != nil {
		t.Fatal(err)
	}

	for i := 0; i < 4; i++ {
		q := &model.Question{
			LibraryID: lib.ID,
			Code:      fmt.Sprintf("LK%04d", i),
			Type:      model.SingleChoice,
			Content:   fmt.Sprintf("题目 %d", i),
		}
		for j := 0; j < 4; j++ {
			q.Options = append(q.Options, model.QuestionOption{
				OptionID:  fmt.Sprintf("opt-%d", j),
				Content:   fmt.Sprintf("选项 %d", j),
				IsCorrect: j == 0,
			})
		}
		if err := db.Create(q).Error; err != nil {
			t.Fatal(err)
		}
	}

	svc := NewExamService(
		db,
		repository.NewExamRepository(db),
		repository.NewQuestionRepository(db),
		repository.NewLibraryRepository(db),
		repository.NewUserQuestionRepository(db),
		NewSiteConfigService(cfgRepo),
	)
	user := createTestUser(t, db, nil)
	return svc, user, lib.ID
}

// correctLabel 找出正确答案（"选项 0"）当前的展示标签
func correctLabel(t *testing.T, q ExamPaperQuestion) string {
	t.Helper()
	for _, o := range q.Options {
		if o.Content == "选项 0" {
			return o.Label
		}
	}
	t.Fatalf("question %d: correct option not on paper", q.QuestionID)
	return ""
}

func wrongLabel(t *testing.T, q ExamPaperQuestion) string {
	t.Helper()
	for _, o := range q.Options {
		if o.Content != "选项 0" {
			return o.Label
		}
	}
	t.Fatalf("question %d: no wrong option on paper", q.QuestionID)
	return ""
}

func TestStartExamThenGetExamReproducesPaper(t *testing.T) {
	svc, user, libID := setupExam(t)

	paper, err := svc.StartExam(user.ID, libID)
	if err != nil {
		t.Fatal(err)
	}
	if len(paper.Questions) != 3 {
		t.Fatalf("paper has %d questions, want 3", len(paper.Questions))
	}
	if paper.Status != model.ExamOngoing || paper.PassScore != 2 {
		t.Fatalf("session = status %q passScore %d", paper.Status, paper.PassScore)
	}

	again, err := svc.GetExam(user.ID, paper.SessionID)
	if err != nil {
		t.Fatal(err)
	}
	if len(again.Questions) != len(paper.Questions) {
		t.Fatalf("refetched paper has %d questions, want %d", len(again.Questions), len(paper.Questions))
	}
	for i, q := range paper.Questions {
		r := again.Questions[i]
		if r.QuestionID != q.QuestionID || r.Seq != q.Seq {
			t.Fatalf("question %d changed on refetch: %d/%d vs %d/%d", i, q.QuestionID, q.Seq, r.QuestionID, r.Seq)
		}
		// 选项顺序和标签必须复用开考时持久化的映射
		if len(r.Options) != len(q.Options) {
			t.Fatalf("question %d option count changed", q.QuestionID)
		}
		for j := range q.Options {
			if r.Options[j] != q.Options[j] {
				t.Fatalf("question %d option %d changed: %+v vs %+v", q.QuestionID, j, q.Options[j], r.Options[j])
			}
		}
	}
}

func TestSubmitExamScoresAndRecordsProgress(t *testing.T) {
	svc, user, libID := setupExam(t)

	paper, err := svc.StartExam(user.ID, libID)
	if err != nil {
		t.Fatal(err)
	}

	// 前两题答对，第三题答错
	answers := map[uint][]string{
		paper.Questions[0].QuestionID: {correctLabel(t, paper.Questions[0])},
		paper.Questions[1].QuestionID: {correctLabel(t, paper.Questions[1])},
		paper.Questions[2].QuestionID: {wrongLabel(t, paper.Questions[2])},
	}

	result, err := svc.SubmitExam(user.ID, paper.SessionID, answers)
	if err != nil {
		t.Fatal(err)
	}
	if result.Score != 2 || !result.Passed {
		t.Fatalf("score=%d passed=%v, want 2/true", result.Score, result.Passed)
	}

	session, err := svc.ExamRepo.FindSession(paper.SessionID)
	if err != nil {
		t.Fatal(err)
	}
	if session.Status != model.ExamSubmitted || session.Score != 2 || !session.Passed {
		t.Fatalf("persisted session = %+v", session)
	}
	if session.SubmittedAt == nil {
		t.Fatal("submitted_at not set")
	}

	// 考试答题计入个人进度
	answered, correct, incorrect, err := svc.UserQuestionRepo.Stats(user.ID)
	if err != nil {
		t.Fatal(err)
	}
	if answered != 3 || correct != 2 || incorrect != 1 {
		t.Fatalf("progress stats = %d/%d/%d, want 3/2/1", answered, correct, incorrect)
	}

	// 不允许重复交卷
	if _, err := svc.SubmitExam(user.ID, paper.SessionID, answers); !errors.Is(err, util.ErrExamAlreadyDone) {
		t.Fatalf("resubmit err = %v, want ErrExamAlreadyDone", err)
	}
}

func TestSubmitExamRejectsUnknownLabel(t *testing.T) {
	svc, user, libID := setupExam(t)

	paper, err := svc.StartExam(user.ID, libID)
	if err != nil {
		t.Fatal(err)
	}

	answers := map[uint][]string{paper.Questions[0].QuestionID: {"Z"}}
	if _, err := svc.SubmitExam(user.ID, paper.SessionID, answers); !errors.Is(err, util.ErrUnknownOption) {
		t.Fatalf("err = %v, want ErrUnknownOption", err)
	}

	// 拒绝后会话保持可交状态
	session, err := svc.ExamRepo.FindSession(paper.SessionID)
	if err != nil {
		t.Fatal(err)
	}
	if session.Status != model.ExamOngoing {
		t.Fatalf("session status = %q, want ongoing", session.Status)
	}
}

func TestSubmitExamAfterDeadline(t *testing.T) {
	svc, user, libID := setupExam(t)

	paper, err := svc.StartExam(user.ID, libID)
	if err != nil {
		t.Fatal(err)
	}

	err = svc.DB.Model(&model.ExamSession{}).
		Where("id = ?", paper.SessionID).
		Update("expires_at", time.Now().Add(-time.Minute)).Error
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.SubmitExam(user.ID, paper.SessionID, nil); !errors.Is(err, util.ErrExamExpired) {
		t.Fatalf("err = %v, want ErrExamExpired", err)
	}

	session, err := svc.ExamRepo.FindSession(paper.SessionID)
	if err != nil {
		t.Fatal(err)
	}
	if session.Status != model.ExamExpired {
		t.Fatalf("session status = %q, want expired", session.Status)
	}
}

func TestGetExamOwnershipEnforced(t *testing.T) {
	svc, user, libID := setupExam(t)

	paper, err := svc.StartExam(user.ID, libID)
	if err != nil {
		t.Fatal(err)
	}

	other := createTestUser(t, svc.DB, nil)
	if _, err := svc.GetExam(other.ID, paper.SessionID); !errors.Is(err, util.ErrPermissionDenied) {
		t.Fatalf("err = %v, want ErrPermissionDenied", err)
	}
	if _, err := svc.GetExam(user.ID, "no-such-session"); !errors.Is(err, util.ErrExamNotFound) {
		t.Fatalf("err = %v, want ErrExamNotFound", err)
	}
}

func TestStartExamRequiresEnoughQuestions(t *testing.T) {
	svc, user, libID := setupExam(t)

	// 把考试题数调到现有题量之上
	if err := svc.SiteConfig.Repo.Set(model.ConfigExamQuestionCount, "50"); err != nil {
		t.Fatal(err)
	}

	var vErr *util.ValidationError
	if _, err := svc.StartExam(user.ID, libID); !errors.As(err, &vErr) {
		t.Fatalf("err = %v, want ValidationError", err)
	}
}
