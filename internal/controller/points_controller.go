package controller

import (
	"strconv"

	"hamexam_backend/internal/service"
	"hamexam_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type PointsController struct {
	PointsService *service.PointsService
}

func NewPointsController(pointsService *service.PointsService) *PointsController {
	return &PointsController{PointsService: pointsService}
}

// @Summary 积分流水
// @Tags 积分
// @Produce json
// @Security BearerAuth
// @Param page query int false "页码" default(1)
// @Param limit query int false "每页数量" default(20)
// @Success 200 {object} util.Response
// @Router /api/points/history [get]
func (c *PointsController) History(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	page, limit := parsePagination(ctx)
	entries, total, err := c.PointsService.History(user.UserID, page, limit)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{
		"items": entries,
		"total": total,
		"page":  page,
		"limit": limit,
	})
}

// @Summary 积分排行榜
// @Tags 积分
// @Produce json
// @Security BearerAuth
// @Param limit query int false "返回数量" default(10)
// @Success 200 {object} util.Response
// @Router /api/points/leaderboard [get]
func (c *PointsController) Leaderboard(ctx *gin.Context) {
	limit := 10
	if l, err := strconv.Atoi(ctx.Query("limit")); err == nil && l > 0 && l <= 100 {
		limit = l
	}

	entries, err := c.PointsService.Leaderboard(limit)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, entries)
}
