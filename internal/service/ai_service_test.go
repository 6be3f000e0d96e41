package service

import (
	"strings"
	"testing"
)

func TestExplanationCacheKey(t *testing.T) {
	s := &AIService{}

	base := s.explanationCacheKey(7, "风格A")
	if !strings.HasPrefix(base, "ai:explain:7:") {
		t.Fatalf("key = %q, want ai:explain:7: prefix", base)
	}
	if got := s.explanationCacheKey(7, "风格A"); got != base {
		t.Fatalf("key not deterministic: %q vs %q", got, base)
	}
	// 换风格或换题都要落到不同的缓存键
	if got := s.explanationCacheKey(7, "风格B"); got == base {
		t.Fatal("different style prompt produced same key")
	}
	if got := s.explanationCacheKey(8, "风格A"); got == base {
		t.Fatal("different question produced same key")
	}
}
