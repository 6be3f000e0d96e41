package app

import (
	"hamexam_backend/docs"
	"hamexam_backend/internal/config"
	"hamexam_backend/internal/middleware"
	"hamexam_backend/internal/model"
	"hamexam_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由（无需登录）
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)

		auth := public.Group("/auth")
		{
			auth.POST("/code", c.auth.SendCode)
			auth.POST("/login", c.auth.LoginWithCode)
			auth.POST("/admin/login", c.auth.LoginWithPassword)
			auth.GET("/google", c.auth.GoogleAuthURL)
			auth.POST("/google/callback", c.auth.GoogleCallback)
		}
	}

	// 需要登录的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/users/me", c.user.GetProfile)
		authGroup.PUT("/users/me", c.user.UpdateProfile)
		authGroup.POST("/users/me/avatar", c.user.UploadAvatar)
		authGroup.GET("/users/me/stats", c.user.Stats)

		authGroup.GET("/libraries", c.question.ListLibraries)
		authGroup.GET("/libraries/:id/questions", c.question.ListQuestions)
		authGroup.GET("/libraries/:id/chapters", c.question.Chapters)

		authGroup.GET("/practice/questions/:id", c.practice.GetQuestion)
		authGroup.POST("/practice/answers", c.practice.SubmitAnswer)
		authGroup.GET("/practice/wrong", c.practice.ListWrongQuestions)

		authGroup.POST("/exams", c.exam.Start)
		authGroup.GET("/exams", c.exam.History)
		authGroup.GET("/exams/:id", c.exam.Get)
		authGroup.POST("/exams/:id/submit", c.exam.Submit)

		authGroup.GET("/daily/status", c.daily.Status)
		authGroup.GET("/daily/calendar", c.daily.Calendar)

		authGroup.GET("/points/history", c.points.History)
		authGroup.GET("/points/leaderboard", c.points.Leaderboard)

		authGroup.POST("/ai/explain/:id", c.ai.Explain)
		authGroup.GET("/ai/quota", c.ai.QuotaStatus)
		authGroup.GET("/ai/styles", c.ai.ListStyles)
	}

	// 管理员路由
	adminGroup := router.Group("/api/admin")
	adminGroup.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.RoleAdmin))
	{
		adminGroup.POST("/libraries", c.admin.CreateLibrary)
		adminGroup.PUT("/libraries/:id", c.admin.UpdateLibrary)
		adminGroup.POST("/libraries/:id/import", c.admin.ImportQuestions)

		adminGroup.GET("/users", c.admin.ListUsers)
		adminGroup.PUT("/users/:id/disabled", c.admin.SetUserDisabled)
		adminGroup.PUT("/users/:id/quota", c.admin.SetUserQuota)
		adminGroup.POST("/users/:id/points", c.admin.AdjustUserPoints)

		adminGroup.POST("/styles", c.admin.CreateStylePreset)
		adminGroup.PUT("/styles/:id", c.admin.UpdateStylePreset)
		adminGroup.DELETE("/styles/:id", c.admin.DeleteStylePreset)
		adminGroup.PUT("/styles/:id/default", c.admin.SetDefaultStylePreset)

		adminGroup.GET("/config", c.admin.GetSiteConfig)
		adminGroup.PUT("/config", c.admin.SetSiteConfig)

		adminGroup.GET("/audit", c.admin.ListAuditLogs)
	}
}
