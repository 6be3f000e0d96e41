package security

import (
	"sync"
	"time"
)

// FixedWindowLimiter 固定窗口内存限流器，按调用方提供的 key 计数。
// 进程内 best-effort，重启后丢失，用于验证码发送和 AI 接口的节流。
type FixedWindowLimiter struct {
	limit  int
	window time.Duration

	mu      sync.Mutex
	buckets map[string]*windowBucket
}

type windowBucket struct {
	count   int
	resetAt time.Time
}

// LimitResult 一次限流判定结果
type LimitResult struct {
	Allowed   bool      `json:"allowed"`
	Remaining int       `json:"remaining"`
	ResetAt   time.Time `json:"resetAt"`
}

func NewFixedWindowLimiter(limit int, window time.Duration) *FixedWindowLimiter {
	return &FixedWindowLimiter{
		limit:   limit,
		window:  window,
		buckets: make(map[string]*windowBucket),
	}
}

// Allow 对 key 计一次请求并返回判定结果。窗口到期后计数清零。
func (l *FixedWindowLimiter) Allow(key string) LimitResult {
	now := time.Now()

	l.mu.Lock()
	defer l.mu.Unlock()

	b, ok := l.buckets[key]
	if !ok || now.After(b.resetAt) {
		b = &windowBucket{resetAt: now.Add(l.window)}
		l.buckets[key] = b
	}

	if b.count >= l.limit {
		return LimitResult{Allowed: false, Remaining: 0, ResetAt: b.resetAt}
	}

	b.count++
	return LimitResult{
		Allowed:   true,
		Remaining: l.limit - b.count,
		ResetAt:   b.resetAt,
	}
}

// SetLimit 运行时调整限额并清空现有计数，供配置热更新使用
func (l *FixedWindowLimiter) SetLimit(limit int) {
	if limit <= 0 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if limit == l.limit {
		return
	}
	l.limit = limit
	l.buckets = make(map[string]*windowBucket)
}

// Reset 清空所有计数，测试用
func (l *FixedWindowLimiter) Reset() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.buckets = make(map[string]*windowBucket)
}

// Cleanup 删除已过期的桶，由调用方定期触发
func (l *FixedWindowLimiter) Cleanup() {
	now := time.Now()
	l.mu.Lock()
	defer l.mu.Unlock()
	for key, b := range l.buckets {
		if now.After(b.resetAt) {
			delete(l.buckets, key)
		}
	}
}
