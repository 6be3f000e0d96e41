package util

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUserNotFound        = errors.New("用户不存在")
	ErrUserDisabled        = errors.New("账号已被禁用")
	ErrInvalidCredentials  = errors.New("invalid credentials")
	ErrCodeInvalid         = errors.New("验证码错误或已过期")
	ErrPermissionDenied    = errors.New("permission denied")
	ErrQuestionNotFound    = errors.New("question not found")
	ErrLibraryNotFound     = errors.New("question library not found")
	ErrLibraryDisabled     = errors.New("question library disabled")
	ErrTooManyOptions      = errors.New("option count exceeds display label alphabet")
	ErrMappingExpired      = errors.New("presentation expired, fetch the question again")
	ErrUnknownOption       = errors.New("unknown option id")
	ErrPresetNotFound      = errors.New("style preset not found")
	ErrPresetNameTaken     = errors.New("style preset name already exists")
	ErrExamNotFound        = errors.New("exam session not found")
	ErrExamAlreadyDone     = errors.New("exam already submitted")
	ErrExamExpired         = errors.New("exam time is up")
	ErrAIDisabled          = errors.New("AI 讲解功能已关闭")
	ErrTooManyRequests     = errors.New("too many requests")
)

// ValidationError 输入不合法，直接返回给调用方，不产生任何副作用
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

func NewValidationError(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

// QuotaExceededError AI 配额已满，携带当前用量供前端展示
type QuotaExceededError struct {
	Used      int
	Limit     int
	Requested int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("AI 配额已用完：已用 %d/%d，本次请求 %d", e.Used, e.Limit, e.Requested)
}

// IsDuplicateKey 判断是否为唯一约束冲突（ConflictError 类）
func IsDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "Duplicate entry") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}
