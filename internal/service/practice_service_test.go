package service

import (
	"errors"
	"fmt"
	"testing"

	"hamexam_backend/internal/model"
	"hamexam_backend/internal/util"
)

func makeQuestion(optionCount int) *model.Question {
	q := &model.Question{Type: model.SingleChoice, Content: "test"}
	for i := 0; i < optionCount; i++ {
		q.Options = append(q.Options, model.QuestionOption{
			OptionID:  fmt.Sprintf("opt-%d", i),
			Content:   fmt.Sprintf("选项 %d", i),
			IsCorrect: i == 0,
		})
	}
	return q
}

func TestShuffleOptionsBijection(t *testing.T) {
	for n := 2; n <= 8; n++ {
		q := makeQuestion(n)
		options, mapping, err := ShuffleOptions(q)
		if err != nil {
			t.Fatalf("n=%d: %v", n, err)
		}
		if len(options) != n || len(mapping) != n {
			t.Fatalf("n=%d: got %d options, %d mappings", n, len(options), len(mapping))
		}

		// 每个原始选项ID恰好出现一次
		seen := map[string]bool{}
		for label, id := range mapping {
			if seen[id] {
				t.Fatalf("n=%d: option %q mapped twice", n, id)
			}
			seen[id] = true
			if label < "A" || label > "H" {
				t.Fatalf("n=%d: unexpected label %q", n, label)
			}
		}
		for _, opt := range q.Options {
			if !seen[opt.OptionID] {
				t.Fatalf("n=%d: option %q missing from mapping", n, opt.OptionID)
			}
		}

		// 标签按字母顺序连续分配
		for i, opt := range options {
			want := string(rune('A' + i))
			if opt.Label != want {
				t.Fatalf("n=%d: options[%d].Label = %q, want %q", n, i, opt.Label, want)
			}
		}
	}
}

func TestShuffleOptionsTooMany(t *testing.T) {
	q := makeQuestion(9)
	_, _, err := ShuffleOptions(q)
	if !errors.Is(err, util.ErrTooManyOptions) {
		t.Fatalf("err = %v, want ErrTooManyOptions", err)
	}
}

func TestShuffleGradeRoundTrip(t *testing.T) {
	q := makeQuestion(4)
	q.Options[0].IsCorrect = false
	q.Options[2].IsCorrect = true

	for i := 0; i < 50; i++ {
		_, mapping, err := ShuffleOptions(q)
		if err != nil {
			t.Fatal(err)
		}

		// 找到正确答案当前的展示标签并提交
		var label string
		for l, id := range mapping {
			if id == "opt-2" {
				label = l
			}
		}
		verdict, err := Grade(q.CorrectOptionIDs(), []string{label}, mapping, true)
		if err != nil {
			t.Fatal(err)
		}
		if !verdict.Correct {
			t.Fatalf("round %d: correct answer graded wrong (label %q)", i, label)
		}
	}
}

func TestGrade(t *testing.T) {
	mapping := map[string]string{"A": "q1", "B": "q2", "C": "q3", "D": "q4"}

	tests := []struct {
		name      string
		correct   []string
		submitted []string
		want      bool
	}{
		{"single correct", []string{"q2"}, []string{"B"}, true},
		{"single wrong", []string{"q2"}, []string{"A"}, false},
		{"multi order independent", []string{"q1", "q3"}, []string{"C", "A"}, true},
		{"multi duplicates collapse", []string{"q1", "q3"}, []string{"A", "C", "A"}, true},
		{"multi partial is wrong", []string{"q1", "q3"}, []string{"A"}, false},
		{"multi superset is wrong", []string{"q1"}, []string{"A", "B"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			verdict, err := Grade(tt.correct, tt.submitted, mapping, true)
			if err != nil {
				t.Fatal(err)
			}
			if verdict.Correct != tt.want {
				t.Errorf("Correct = %v, want %v", verdict.Correct, tt.want)
			}
		})
	}
}

func TestGradeStrictRejectsUnknownLabel(t *testing.T) {
	mapping := map[string]string{"A": "q1", "B": "q2"}

	_, err := Grade([]string{"q1"}, []string{"Z"}, mapping, true)
	if !errors.Is(err, util.ErrUnknownOption) {
		t.Fatalf("err = %v, want ErrUnknownOption", err)
	}
}

func TestGradeLenientPassesThroughRawIDs(t *testing.T) {
	// 宽松模式下旧客户端可以直接提交原始选项ID
	verdict, err := Grade([]string{"q1", "q3"}, []string{"q3", "q1"}, map[string]string{}, false)
	if err != nil {
		t.Fatal(err)
	}
	if !verdict.Correct {
		t.Fatal("raw IDs should grade correct in lenient mode")
	}
}
