package service

import (
	"strings"
	"testing"

	"hamexam_backend/internal/model"
	"hamexam_backend/internal/repository"
)

func setupQuestions(t *testing.T) (*QuestionService, *model.QuestionLibrary) {
	t.Helper()

	db := newTestDB(t)
	svc := NewQuestionService(db, repository.NewQuestionRepository(db), repository.NewLibraryRepository(db))
	lib, err := svc.CreateLibrary(LibraryRequest{Name: "A类题库", LicenseClass: "A"})
	if err != nil {
		t.Fatal(err)
	}
	return svc, lib
}

func TestImportQuestionsNormalizesFieldVariants(t *testing.T) {
	svc, lib := setupQuestions(t)

	// tags 既有数组也有逗号字符串写法，正确标记既有 is_correct 也有 isCorrect
	payload := `[
		{
			"code": "LK0001",
			"type": "single",
			"content": "我国业余电台使用的呼号前缀是？",
			"chapter": "法规",
			"tags": ["法规", "呼号"],
			"options": [
				{"id": "a", "content": "BY/BG/BH", "is_correct": true},
				{"id": "b", "content": "W/K/N", "is_correct": false},
				{"id": "c", "content": "JA/JH", "is_correct": false}
			]
		},
		{
			"code": "LK0002",
			"type": "MULTIPLE",
			"content": "下列哪些波段对A类操作者开放？",
			"chapter": "法规",
			"tags": " 法规 , 频率 ",
			"options": [
				{"id": "a", "content": "2米波段", "isCorrect": true},
				{"id": "b", "content": "70厘米波段", "isCorrect": true},
				{"id": "c", "content": "20米波段", "isCorrect": false}
			]
		}
	]`

	result, err := svc.ImportQuestions(lib.ID, strings.NewReader(payload))
	if err != nil {
		t.Fatal(err)
	}
	if result.Imported != 2 || result.Skipped != 0 {
		t.Fatalf("imported=%d skipped=%d, want 2/0", result.Imported, result.Skipped)
	}

	questions, total, err := svc.ListQuestions(repository.QuestionFilter{LibraryID: lib.ID}, 1, 10)
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 {
		t.Fatalf("total = %d, want 2", total)
	}

	byCode := map[string]model.Question{}
	for _, q := range questions {
		byCode[q.Code] = q
	}

	q1 := byCode["LK0001"]
	if q1.Type != model.SingleChoice || q1.Tags != "法规,呼号" {
		t.Fatalf("LK0001 type=%s tags=%q", q1.Type, q1.Tags)
	}
	if got := q1.CorrectOptionIDs(); len(got) != 1 || got[0] != "a" {
		t.Fatalf("LK0001 correct = %v, want [a]", got)
	}

	q2 := byCode["LK0002"]
	if q2.Type != model.MultipleChoice || q2.Tags != "法规,频率" {
		t.Fatalf("LK0002 type=%s tags=%q", q2.Type, q2.Tags)
	}
	if got := q2.CorrectOptionIDs(); len(got) != 2 {
		t.Fatalf("LK0002 correct = %v, want 2 ids", got)
	}

	// 题库计数同步更新
	freshLib, err := svc.GetLibrary(lib.ID)
	if err != nil {
		t.Fatal(err)
	}
	if freshLib.QuestionCount != 2 {
		t.Fatalf("library count = %d, want 2", freshLib.QuestionCount)
	}
}

func TestImportQuestionsSkipsInvalid(t *testing.T) {
	svc, lib := setupQuestions(t)

	payload := `[
		{
			"code": "OK001",
			"type": "truefalse",
			"content": "业余电台可以转发商业广播。",
			"options": [
				{"id": "t", "content": "正确", "is_correct": false},
				{"id": "f", "content": "错误", "is_correct": true}
			]
		},
		{
			"code": "BAD001",
			"type": "single",
			"content": "没有正确答案的题",
			"options": [
				{"id": "a", "content": "甲"},
				{"id": "b", "content": "乙"}
			]
		},
		{
			"code": "BAD002",
			"type": "single",
			"content": "单选题不能有两个答案",
			"options": [
				{"id": "a", "content": "甲", "is_correct": true},
				{"id": "b", "content": "乙", "is_correct": true}
			]
		},
		{
			"code": "BAD003",
			"type": "single",
			"content": "选项ID重复",
			"options": [
				{"id": "a", "content": "甲", "is_correct": true},
				{"id": "a", "content": "乙", "is_correct": false}
			]
		}
	]`

	result, err := svc.ImportQuestions(lib.ID, strings.NewReader(payload))
	if err != nil {
		t.Fatal(err)
	}
	if result.Imported != 1 || result.Skipped != 3 {
		t.Fatalf("imported=%d skipped=%d, want 1/3", result.Imported, result.Skipped)
	}
	if len(result.Errors) != 3 {
		t.Fatalf("errors = %v, want 3 entries", result.Errors)
	}
}

func TestImportQuestionsRejectsBadFile(t *testing.T) {
	svc, lib := setupQuestions(t)

	if _, err := svc.ImportQuestions(lib.ID, strings.NewReader("not json")); err == nil {
		t.Fatal("malformed JSON accepted")
	}
	if _, err := svc.ImportQuestions(lib.ID, strings.NewReader("[]")); err == nil {
		t.Fatal("empty question list accepted")
	}
}

func TestNormalizeType(t *testing.T) {
	tests := []struct {
		in      string
		want    model.QuestionType
		wantErr bool
	}{
		{"single", model.SingleChoice, false},
		{"Single_Choice", model.SingleChoice, false},
		{"multi", model.MultipleChoice, false},
		{"judge", model.TrueFalse, false},
		{"true_false", model.TrueFalse, false},
		{"essay", "", true},
	}

	for _, tt := range tests {
		got, err := normalizeType(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("normalizeType(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("normalizeType(%q) = %v, %v; want %v", tt.in, got, err, tt.want)
		}
	}
}
