package util

import (
	"errors"
	"net/http"

	"hamexam_backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Response 统一响应结构
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// PageResponse 分页响应结构
type PageResponse struct {
	List  interface{} `json:"list"`
	Total int64       `json:"total"`
	Page  int         `json:"page"`
	Limit int         `json:"limit"`
}

func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    http.StatusOK,
		Message: "success",
		Data:    data,
	})
}

func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    http.StatusCreated,
		Message: "created",
		Data:    data,
	})
}

func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

func Unauthorized(c *gin.Context) {
	Error(c, http.StatusUnauthorized, "Unauthorized")
}

func Forbidden(c *gin.Context) {
	Error(c, http.StatusForbidden, "Forbidden")
}

func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

func NotFound(c *gin.Context) {
	Error(c, http.StatusNotFound, "Resource not found")
}

func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, message)
}

func InternalServerError(c *gin.Context) {
	Error(c, http.StatusInternalServerError, "Internal server error")
}

func LogInternalError(c *gin.Context, err error) {
	logger.Log.Error("Internal server error", zap.Error(err))
	InternalServerError(c)
}

// HandleServiceError 按错误类别映射 HTTP 状态码：
// 校验类 400，配额 429，冲突 409，其余 500
func HandleServiceError(c *gin.Context, err error) {
	var ve *ValidationError
	var qe *QuotaExceededError
	switch {
	case errors.As(err, &ve):
		BadRequest(c, ve.Msg)
	case errors.As(err, &qe):
		Error(c, http.StatusTooManyRequests, qe.Error())
	case errors.Is(err, ErrPresetNameTaken):
		Conflict(c, err.Error())
	case errors.Is(err, ErrUserNotFound),
		errors.Is(err, ErrQuestionNotFound),
		errors.Is(err, ErrLibraryNotFound),
		errors.Is(err, ErrPresetNotFound),
		errors.Is(err, ErrExamNotFound):
		NotFound(c)
	case errors.Is(err, ErrMappingExpired),
		errors.Is(err, ErrExamAlreadyDone),
		errors.Is(err, ErrExamExpired),
		errors.Is(err, ErrLibraryDisabled),
		errors.Is(err, ErrAIDisabled),
		errors.Is(err, ErrUnknownOption),
		errors.Is(err, ErrCodeInvalid):
		BadRequest(c, err.Error())
	case errors.Is(err, ErrTooManyRequests):
		Error(c, http.StatusTooManyRequests, err.Error())
	case errors.Is(err, ErrPermissionDenied):
		Forbidden(c)
	default:
		LogInternalError(c, err)
	}
}
