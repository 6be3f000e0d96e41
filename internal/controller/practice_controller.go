package controller

import (
	"strconv"

	"hamexam_backend/internal/service"
	"hamexam_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type PracticeController struct {
	PracticeService *service.PracticeService
	DailyService    *service.DailyService
}

func NewPracticeController(practiceService *service.PracticeService, dailyService *service.DailyService) *PracticeController {
	return &PracticeController{
		PracticeService: practiceService,
		DailyService:    dailyService,
	}
}

// @Summary 获取练习题
// @Description 取一道题，选项乱序后下发，附带本次展示的 presentationId
// @Tags 练习
// @Produce json
// @Security BearerAuth
// @Param id path int true "题目ID"
// @Success 200 {object} util.Response
// @Router /api/practice/questions/{id} [get]
func (c *PracticeController) GetQuestion(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	questionID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "题目ID不合法")
		return
	}

	presentation, err := c.PracticeService.ServeQuestion(ctx.Request.Context(), user.UserID, uint(questionID))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, presentation)
}

type submitAnswerRequest struct {
	QuestionID     uint     `json:"questionId" binding:"required"`
	PresentationID string   `json:"presentationId"`
	Selected       []string `json:"selected" binding:"required"`
}

// @Summary 提交练习答案
// @Description 按展示标签提交答案并判分，同时推进每日进度
// @Tags 练习
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body submitAnswerRequest true "答案"
// @Success 200 {object} util.Response
// @Router /api/practice/answers [post]
func (c *PracticeController) SubmitAnswer(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req submitAnswerRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "参数不完整")
		return
	}

	result, err := c.PracticeService.SubmitAnswer(ctx.Request.Context(), user.UserID, req.QuestionID, req.PresentationID, req.Selected)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 错题本
// @Tags 练习
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response
// @Router /api/practice/wrong [get]
func (c *PracticeController) ListWrongQuestions(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	page, limit := parsePagination(ctx)
	questions, total, err := c.PracticeService.ListWrongQuestions(user.UserID, page, limit)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{
		"items": questions,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

func parsePagination(ctx *gin.Context) (page, limit int) {
	page, limit = 1, 20
	if p, err := strconv.Atoi(ctx.Query("page")); err == nil && p > 0 {
		page = p
	}
	if l, err := strconv.Atoi(ctx.Query("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}
	return page, limit
}
