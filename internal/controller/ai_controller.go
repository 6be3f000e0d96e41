package controller

import (
	"strconv"
	"time"

	"hamexam_backend/internal/service"
	"hamexam_backend/internal/util"
	"hamexam_backend/pkg/security"

	"github.com/gin-gonic/gin"
)

type AIController struct {
	AIService    *service.AIService
	UserService  *service.UserService
	QuotaService *service.QuotaService
	StyleService *service.StyleService
	limiter      *security.FixedWindowLimiter
}

func NewAIController(
	aiService *service.AIService,
	userService *service.UserService,
	quotaService *service.QuotaService,
	styleService *service.StyleService,
	perMinute int,
) *AIController {
	if perMinute <= 0 {
		perMinute = 6
	}
	return &AIController{
		AIService:    aiService,
		UserService:  userService,
		QuotaService: quotaService,
		StyleService: styleService,
		limiter:      security.NewFixedWindowLimiter(perMinute, time.Minute),
	}
}

// SetRateLimit 配置热更新回调：调整每用户每分钟的讲解调用上限
func (c *AIController) SetRateLimit(perMinute int) {
	if perMinute <= 0 {
		perMinute = 6
	}
	c.limiter.SetLimit(perMinute)
}

// @Summary AI 题目讲解
// @Description 按用户选定的讲解风格生成题目解析，消耗 AI 配额
// @Tags AI
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/ai/explain/{id} [post]
func (c *AIController) Explain(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	if res := c.limiter.Allow(strconv.FormatUint(uint64(claims.UserID), 10)); !res.Allowed {
		util.HandleServiceError(ctx, util.ErrTooManyRequests)
		return
	}

	questionID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "题目ID不合法")
		return
	}

	user, err := c.UserService.GetProfile(claims.UserID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	explanation, err := c.AIService.ExplainQuestion(ctx.Request.Context(), user, uint(questionID))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, explanation)
}

// @Summary AI 配额使用情况
// @Tags AI
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/ai/quota [get]
func (c *AIController) QuotaStatus(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	status, err := c.QuotaService.GetStatus(user.UserID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, status)
}

// @Summary 讲解风格预设列表
// @Tags AI
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/ai/styles [get]
func (c *AIController) ListStyles(ctx *gin.Context) {
	presets, err := c.StyleService.ListPresets()
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, presets)
}
