package controller

import (
	"hamexam_backend/internal/service"
	"hamexam_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type ExamController struct {
	ExamService *service.ExamService
}

func NewExamController(examService *service.ExamService) *ExamController {
	return &ExamController{ExamService: examService}
}

type startExamRequest struct {
	LibraryID uint `json:"libraryId" binding:"required"`
}

// @Summary 开始模拟考试
// @Description 从题库随机抽题生成限时试卷
// @Tags 考试
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body startExamRequest true "题库"
// @Success 200 {object} util.Response
// @Router /api/exams [post]
func (c *ExamController) Start(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req startExamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "参数不完整")
		return
	}

	paper, err := c.ExamService.StartExam(user.UserID, req.LibraryID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, paper)
}

// @Summary 获取考试试卷
// @Description 重新取卷续考，题目顺序与选项顺序与首次下发一致
// @Tags 考试
// @Produce json
// @Security BearerAuth
// @Param id path string true "考试会话ID"
// @Success 200 {object} util.Response
// @Router /api/exams/{id} [get]
func (c *ExamController) Get(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	paper, err := c.ExamService.GetExam(user.UserID, ctx.Param("id"))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, paper)
}

type submitExamRequest struct {
	Answers map[uint][]string `json:"answers" binding:"required"`
}

// @Summary 交卷
// @Description 提交全部答案并判分，超时的试卷会被拒绝
// @Tags 考试
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "考试会话ID"
// @Param request body submitExamRequest true "题目ID到所选标签的映射"
// @Success 200 {object} util.Response
// @Router /api/exams/{id}/submit [post]
func (c *ExamController) Submit(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	var req submitExamRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "参数不完整")
		return
	}

	result, err := c.ExamService.SubmitExam(user.UserID, ctx.Param("id"), req.Answers)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 考试历史
// @Tags 考试
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response
// @Router /api/exams [get]
func (c *ExamController) History(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	page, limit := parsePagination(ctx)
	sessions, total, err := c.ExamService.History(user.UserID, page, limit)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{
		"items": sessions,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}
