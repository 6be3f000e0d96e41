package controller

import (
	"strconv"
	"time"

	"hamexam_backend/internal/service"
	"hamexam_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type DailyController struct {
	DailyService *service.DailyService
}

func NewDailyController(dailyService *service.DailyService) *DailyController {
	return &DailyController{DailyService: dailyService}
}

// @Summary 今日打卡状态
// @Description 今日练习进度、连续天数与下一次达标可得的奖励
// @Tags 每日练习
// @Produce json
// @Security BearerAuth
// @Success 200 {object} util.Response
// @Router /api/daily/status [get]
func (c *DailyController) Status(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	status, err := c.DailyService.Status(user.UserID, time.Now())
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, status)
}

// @Summary 打卡日历
// @Tags 每日练习
// @Produce json
// @Security BearerAuth
// @Param days query int false "天数" default(30)
// @Success 200 {object} util.Response
// @Router /api/daily/calendar [get]
func (c *DailyController) Calendar(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	days := 30
	if d, err := strconv.Atoi(ctx.Query("days")); err == nil && d > 0 && d <= 365 {
		days = d
	}

	records, err := c.DailyService.Calendar(user.UserID, days)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, records)
}
