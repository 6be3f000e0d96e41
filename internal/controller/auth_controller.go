package controller

import (
	"hamexam_backend/internal/service"
	"hamexam_backend/internal/util"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type AuthController struct {
	AuthService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

type sendCodeRequest struct {
	Email string `json:"email" binding:"required,email"`
}

// @Summary 发送登录验证码
// @Description 向邮箱发送 6 位登录验证码，10 分钟内有效
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body sendCodeRequest true "邮箱"
// @Success 200 {object} util.Response
// @Router /api/auth/code [post]
func (c *AuthController) SendCode(ctx *gin.Context) {
	var req sendCodeRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "邮箱格式不正确")
		return
	}

	if err := c.AuthService.SendCode(ctx.Request.Context(), req.Email); err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, gin.H{"sent": true})
}

type codeLoginRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6"`
}

// @Summary 验证码登录
// @Description 用邮箱验证码登录，首次登录自动注册
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body codeLoginRequest true "邮箱与验证码"
// @Success 200 {object} util.Response
// @Router /api/auth/login [post]
func (c *AuthController) LoginWithCode(ctx *gin.Context) {
	var req codeLoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "参数不完整")
		return
	}

	result, err := c.AuthService.LoginWithCode(ctx.Request.Context(), req.Email, req.Code)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

type passwordLoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// @Summary 管理员密码登录
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body passwordLoginRequest true "邮箱与密码"
// @Success 200 {object} util.Response
// @Router /api/auth/admin/login [post]
func (c *AuthController) LoginWithPassword(ctx *gin.Context) {
	var req passwordLoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "参数不完整")
		return
	}

	result, err := c.AuthService.LoginWithPassword(req.Email, req.Password)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, result)
}

// @Summary 获取 Google 登录跳转地址
// @Tags 认证
// @Produce json
// @Success 200 {object} util.Response
// @Router /api/auth/google [get]
func (c *AuthController) GoogleAuthURL(ctx *gin.Context) {
	state := uuid.NewString()
	// state 由前端回传校验
	util.Success(ctx, gin.H{
		"url":   c.AuthService.GoogleAuthURL(state),
		"state": state,
	})
}

type googleCallbackRequest struct {
	Code string `json:"code" binding:"required"`
}

// @Summary Google 授权码登录
// @Tags 认证
// @Accept json
// @Produce json
// @Param request body googleCallbackRequest true "授权码"
// @Success 200 {object} util.Response
// @Router /api/auth/google/callback [post]
func (c *AuthController) GoogleCallback(ctx *gin.Context) {
	var req googleCallbackRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, "缺少授权码")
		return
	}

	result, err := c.AuthService.LoginWithGoogle(ctx.Request.Context(), req.Code)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}
	util.Success(ctx, result)
}
