package controller

import (
	"fmt"
	"strconv"

	"hamexam_backend/internal/repository"
	"hamexam_backend/internal/service"
	"hamexam_backend/internal/util"

	"github.com/gin-gonic/gin"
)

// AdminController 管理控制台：题库维护、用户管理、风格预设与站点配置。
// 所有写操作都会记审计日志。
type AdminController struct {
	QuestionService   *service.QuestionService
	UserService       *service.UserService
	StyleService      *service.StyleService
	SiteConfigService *service.SiteConfigService
	AuditService      *service.AuditService
}

func NewAdminController(
	questionService *service.QuestionService,
	userService *service.UserService,
	styleService *service.StyleService,
	siteConfigService *service.SiteConfigService,
	auditService *service.AuditService,
) *AdminController {
	return &AdminController{
		QuestionService:   questionService,
		UserService:       userService,
		StyleService:      styleService,
		SiteConfigService: siteConfigService,
		AuditService:      auditService,
	}
}

// @Summary 创建题库
// @Tags 管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.LibraryRequest true "题库"
// @Success 200 {object} util.Response
// @Router /api/admin/libraries [post]
func (c *AdminController) CreateLibrary(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	var req service.LibraryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "参数不完整")
		return
	}

	lib, err := c.QuestionService.CreateLibrary(req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	c.AuditService.Record(claims.UserID, "library.create", strconv.FormatUint(uint64(lib.ID), 10), lib.Name, ctx.ClientIP())
	util.Created(ctx, lib)
}

// @Summary 更新题库
// @Tags 管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "题库ID"
// @Param request body service.LibraryRequest true "题库"
// @Success 200 {object} util.Response
// @Router /api/admin/libraries/{id} [put]
func (c *AdminController) UpdateLibrary(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	libraryID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "题库ID不合法")
		return
	}

	var req service.LibraryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "参数不完整")
		return
	}

	lib, err := c.QuestionService.UpdateLibrary(uint(libraryID), req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	c.AuditService.Record(claims.UserID, "library.update", ctx.Param("id"), lib.Name, ctx.ClientIP())
	util.Success(ctx, lib)
}

// @Summary 导入题目
// @Description 上传 JSON 题目文件批量导入，容错字段写法差异，逐题校验
// @Tags 管理
// @Accept multipart/form-data
// @Produce json
// @Security BearerAuth
// @Param id path int true "题库ID"
// @Param file formData file true "题目 JSON 文件"
// @Success 200 {object} util.Response
// @Router /api/admin/libraries/{id}/import [post]
func (c *AdminController) ImportQuestions(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	libraryID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "题库ID不合法")
		return
	}

	file, err := ctx.FormFile("file")
	if err != nil {
		util.BadRequest(ctx, "缺少题目文件")
		return
	}

	src, err := file.Open()
	if err != nil {
		util.BadRequest(ctx, "文件无法读取")
		return
	}
	defer src.Close()

	result, err := c.QuestionService.ImportQuestions(uint(libraryID), src)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	c.AuditService.Record(claims.UserID, "library.import", ctx.Param("id"),
		fmt.Sprintf("imported=%d skipped=%d", result.Imported, result.Skipped), ctx.ClientIP())
	util.Success(ctx, result)
}

// @Summary 用户列表
// @Tags 管理
// @Produce json
// @Security BearerAuth
// @Param keyword query string false "按邮箱/昵称/呼号搜索"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response
// @Router /api/admin/users [get]
func (c *AdminController) ListUsers(ctx *gin.Context) {
	page, limit := parsePagination(ctx)
	users, total, err := c.UserService.ListUsers(ctx.Query("keyword"), page, limit)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{
		"items": users,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

type setDisabledRequest struct {
	Disabled *bool `json:"disabled" binding:"required"`
}

// @Summary 封禁/解封用户
// @Tags 管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Param request body setDisabledRequest true "封禁状态"
// @Success 200 {object} util.Response
// @Router /api/admin/users/{id}/disabled [put]
func (c *AdminController) SetUserDisabled(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	userID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "用户ID不合法")
		return
	}

	var req setDisabledRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "参数不完整")
		return
	}

	if err := c.UserService.SetDisabled(uint(userID), *req.Disabled); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	c.AuditService.Record(claims.UserID, "user.set_disabled", ctx.Param("id"),
		strconv.FormatBool(*req.Disabled), ctx.ClientIP())
	util.Success(ctx, gin.H{"disabled": *req.Disabled})
}

type setQuotaRequest struct {
	Limit *int `json:"limit"` // null 表示不限量
}

// @Summary 调整 AI 配额上限
// @Tags 管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Param request body setQuotaRequest true "配额上限，null 表示不限量"
// @Success 200 {object} util.Response
// @Router /api/admin/users/{id}/quota [put]
func (c *AdminController) SetUserQuota(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	userID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "用户ID不合法")
		return
	}

	var req setQuotaRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "参数不合法")
		return
	}

	if err := c.UserService.SetAIQuota(uint(userID), req.Limit); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	detail := "unlimited"
	if req.Limit != nil {
		detail = strconv.Itoa(*req.Limit)
	}
	c.AuditService.Record(claims.UserID, "user.set_quota", ctx.Param("id"), detail, ctx.ClientIP())
	util.Success(ctx, gin.H{"limit": req.Limit})
}

type adjustPointsRequest struct {
	Amount int `json:"amount" binding:"required"`
}

// @Summary 手工调整积分
// @Description 加减积分并写入积分流水
// @Tags 管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "用户ID"
// @Param request body adjustPointsRequest true "调整数额，可为负"
// @Success 200 {object} util.Response
// @Router /api/admin/users/{id}/points [post]
func (c *AdminController) AdjustUserPoints(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	userID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "用户ID不合法")
		return
	}

	var req adjustPointsRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "参数不完整")
		return
	}

	if err := c.UserService.AdjustPoints(uint(userID), req.Amount); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	c.AuditService.Record(claims.UserID, "user.adjust_points", ctx.Param("id"),
		strconv.Itoa(req.Amount), ctx.ClientIP())
	util.Success(ctx, gin.H{"amount": req.Amount})
}

// @Summary 创建讲解风格预设
// @Tags 管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.PresetRequest true "预设"
// @Success 200 {object} util.Response
// @Router /api/admin/styles [post]
func (c *AdminController) CreateStylePreset(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	var req service.PresetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "参数不完整")
		return
	}

	preset, err := c.StyleService.CreatePreset(claims.UserID, req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	c.AuditService.Record(claims.UserID, "style.create", strconv.FormatUint(uint64(preset.ID), 10), preset.Name, ctx.ClientIP())
	util.Created(ctx, preset)
}

// @Summary 更新讲解风格预设
// @Tags 管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "预设ID"
// @Param request body service.PresetRequest true "预设"
// @Success 200 {object} util.Response
// @Router /api/admin/styles/{id} [put]
func (c *AdminController) UpdateStylePreset(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	presetID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "预设ID不合法")
		return
	}

	var req service.PresetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "参数不完整")
		return
	}

	preset, err := c.StyleService.UpdatePreset(uint(presetID), req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	c.AuditService.Record(claims.UserID, "style.update", ctx.Param("id"), preset.Name, ctx.ClientIP())
	util.Success(ctx, preset)
}

// @Summary 删除讲解风格预设
// @Tags 管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "预设ID"
// @Success 200 {object} util.Response
// @Router /api/admin/styles/{id} [delete]
func (c *AdminController) DeleteStylePreset(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	presetID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "预设ID不合法")
		return
	}

	if err := c.StyleService.DeletePreset(uint(presetID)); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	c.AuditService.Record(claims.UserID, "style.delete", ctx.Param("id"), "", ctx.ClientIP())
	util.Success(ctx, gin.H{"deleted": true})
}

// @Summary 设为默认风格预设
// @Tags 管理
// @Produce json
// @Security BearerAuth
// @Param id path int true "预设ID"
// @Success 200 {object} util.Response
// @Router /api/admin/styles/{id}/default [put]
func (c *AdminController) SetDefaultStylePreset(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	presetID, err := strconv.ParseUint(ctx.Param("id"), 10, 32)
	if err != nil {
		util.BadRequest(ctx, "预设ID不合法")
		return
	}

	if err := c.StyleService.SetDefault(uint(presetID)); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	c.AuditService.Record(claims.UserID, "style.set_default", ctx.Param("id"), "", ctx.ClientIP())
	util.Success(ctx, gin.H{"default": true})
}

// @Summary 站点配置
// @Tags 管理
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/admin/config [get]
func (c *AdminController) GetSiteConfig(ctx *gin.Context) {
	configs, err := c.SiteConfigService.All()
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, configs)
}

type setConfigRequest struct {
	Key   string `json:"key" binding:"required"`
	Value string `json:"value" binding:"required"`
}

// @Summary 修改站点配置
// @Tags 管理
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body setConfigRequest true "配置项"
// @Success 200 {object} util.Response
// @Router /api/admin/config [put]
func (c *AdminController) SetSiteConfig(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)

	var req setConfigRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "参数不完整")
		return
	}

	if err := c.SiteConfigService.Set(req.Key, req.Value); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	c.AuditService.Record(claims.UserID, "config.set", req.Key, req.Value, ctx.ClientIP())
	util.Success(ctx, gin.H{"key": req.Key, "value": req.Value})
}

// @Summary 审计日志
// @Tags 管理
// @Produce json
// @Security BearerAuth
// @Param action query string false "操作类型"
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response
// @Router /api/admin/audit [get]
func (c *AdminController) ListAuditLogs(ctx *gin.Context) {
	filter := repository.AuditFilter{Action: ctx.Query("action")}
	if actorStr := ctx.Query("actorId"); actorStr != "" {
		if actorID, err := strconv.ParseUint(actorStr, 10, 32); err == nil {
			filter.ActorID = uint(actorID)
		}
	}

	page, limit := parsePagination(ctx)
	logs, total, err := c.AuditService.List(filter, page, limit)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{
		"items": logs,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}
