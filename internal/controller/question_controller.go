package controller

import (
	"strconv"

	"hamexam_backend/internal/repository"
	"hamexam_backend/internal/service"
	"hamexam_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type QuestionController struct {
	QuestionService *service.QuestionService
}

func NewQuestionController(questionService *service.QuestionService) *QuestionController {
	return &QuestionController{QuestionService: questionService}
}

// @Summary 题库列表
// @Tags 题库
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/libraries [get]
func (c *QuestionController) ListLibraries(ctx *gin.Context) {
	libraries, err := c.QuestionService.ListLibraries()
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, libraries)
}

// @Summary 题目列表
// @Description 按题库浏览题目，支持章节、标签、关键词筛选
// @Tags 题库
// @Produce json
// @Security BearerAuth
// @Param id path int true "题库ID"
// @Param chapter query string false "章节"
// @Param tag query string false "标签"
// @Param keyword query string false "关键词"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response
// @Router /api/libraries/{id}/questions [get]
func (c *QuestionController) ListQuestions(ctx *gin.Context) {
	libraryID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "题库ID不合法")
		return
	}

	filter := repository.QuestionFilter{
		LibraryID: uint(libraryID),
		Chapter:   ctx.Query("chapter"),
		Tag:       ctx.Query("tag"),
		Keyword:   ctx.Query("keyword"),
	}

	page, limit := parsePagination(ctx)
	questions, total, err := c.QuestionService.ListQuestions(filter, page, limit)
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

// @Summary 题库章节
// @Tags 题库
// @Produce json
// @Security BearerAuth
// @Param id path int true "题库ID"
// @Success 200 {object} util.Response
// @Router /api/libraries/{id}/chapters [get]
func (c *QuestionController) Chapters(ctx *gin.Context) {
	libraryID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "题库ID不合法")
		return
	}

	chapters, err := c.QuestionService.Chapters(uint(libraryID))
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, chapters)
}
