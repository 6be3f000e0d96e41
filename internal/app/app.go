package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"hamexam_backend/internal/config"
	"hamexam_backend/internal/controller"
	"hamexam_backend/internal/repository"
	"hamexam_backend/internal/service"
	"hamexam_backend/pkg/configwatcher"
	"hamexam_backend/pkg/database"
	"hamexam_backend/pkg/logger"
	"hamexam_backend/pkg/monitoring"
	"hamexam_backend/pkg/security"
	"hamexam_backend/pkg/tracing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type App struct {
	Config          *config.Config
	Router          *gin.Engine
	DB              *gorm.DB
	Redis           *redis.Client
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user         *repository.UserRepository
	question     *repository.QuestionRepository
	library      *repository.LibraryRepository
	userQuestion *repository.UserQuestionRepository
	daily        *repository.DailyPracticeRepository
	points       *repository.PointsRepository
	stylePreset  *repository.StylePresetRepository
	exam         *repository.ExamRepository
	auditLog     *repository.AuditLogRepository
	siteConfig   *repository.SiteConfigRepository
}

type services struct {
	siteConfig *service.SiteConfigService
	email      *service.EmailService
	auth       *service.AuthService
	storage    *service.StorageService
	question   *service.QuestionService
	practice   *service.PracticeService
	daily      *service.DailyService
	points     *service.PointsService
	quota      *service.QuotaService
	style      *service.StyleService
	ai         *service.AIService
	exam       *service.ExamService
	user       *service.UserService
	audit      *service.AuditService
}

type controllers struct {
	auth     *controller.AuthController
	question *controller.QuestionController
	practice *controller.PracticeController
	exam     *controller.ExamController
	daily    *controller.DailyController
	points   *controller.PointsController
	ai       *controller.AIController
	user     *controller.UserController
	admin    *controller.AdminController
	health   *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ReloadConfig 配置热更新入口，由配置文件监听器触发
func (a *App) ReloadConfig(cfg *config.Config) {
	a.Config = cfg
	for _, callback := range a.configCallbacks {
		callback(cfg)
	}
	logger.Log.Info("configuration reloaded")
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:         repository.NewUserRepository(db),
		question:     repository.NewQuestionRepository(db),
		library:      repository.NewLibraryRepository(db),
		userQuestion: repository.NewUserQuestionRepository(db),
		daily:        repository.NewDailyPracticeRepository(db),
		points:       repository.NewPointsRepository(db),
		stylePreset:  repository.NewStylePresetRepository(db),
		exam:         repository.NewExamRepository(db),
		auditLog:     repository.NewAuditLogRepository(db),
		siteConfig:   repository.NewSiteConfigRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, db *gorm.DB, rdb *redis.Client) (*services, error) {
	siteConfig := service.NewSiteConfigService(repos.siteConfig)
	email := service.NewEmailService(cfg.SMTP)

	storage, err := service.NewStorageService(&cfg.Storage)
	if err != nil {
		return nil, err
	}

	points := service.NewPointsService(db, repos.points, repos.user)
	daily := service.NewDailyService(db, repos.daily, repos.points, siteConfig)
	quota := service.NewQuotaService(db)
	style := service.NewStyleService(repos.stylePreset, repos.user)

	s := &services{
		siteConfig: siteConfig,
		email:      email,
		auth:       service.NewAuthService(repos.user, email, siteConfig, rdb, cfg),
		storage:    storage,
		question:   service.NewQuestionService(db, repos.question, repos.library),
		practice:   service.NewPracticeService(repos.question, repos.userQuestion, daily, points, siteConfig, rdb),
		daily:      daily,
		points:     points,
		quota:      quota,
		style:      style,
		ai:         service.NewAIService(cfg.AI, rdb, repos.question, quota, style, siteConfig),
		exam:       service.NewExamService(db, repos.exam, repos.question, repos.library, repos.userQuestion, siteConfig),
		user:       service.NewUserService(db, repos.user, repos.userQuestion, repos.daily, repos.stylePreset, points, storage),
		audit:      service.NewAuditService(repos.auditLog),
	}
	return s, nil
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client, cfg *config.Config) *controllers {
	return &controllers{
		auth:     controller.NewAuthController(s.auth),
		question: controller.NewQuestionController(s.question),
		practice: controller.NewPracticeController(s.practice, s.daily),
		exam:     controller.NewExamController(s.exam),
		daily:    controller.NewDailyController(s.daily),
		points:   controller.NewPointsController(s.points),
		ai:       controller.NewAIController(s.ai, s.user, s.quota, s.style, cfg.RateLimit.AIPerMinute),
		user:     controller.NewUserController(s.user),
		admin:    controller.NewAdminController(s.question, s.user, s.style, s.siteConfig, s.audit),
		health:   controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(security.CORS(cfg.CORS.AllowedOrigins))
	router.Use(security.Secure())

	maxRequests := cfg.RateLimit.MaxRequests
	if maxRequests <= 0 {
		maxRequests = 1000
	}
	window := time.Duration(cfg.RateLimit.WindowMinutes) * time.Minute
	if window <= 0 {
		window = time.Minute
	}
	router.Use(security.RateLimiter(maxRequests, window))

	if cfg.Tracing.Enabled {
		router.Use(tracing.GinMiddleware())
	}

	router.Use(monitoring.MetricsMiddleware())
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("logger initialized")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("failed to initialize database", zap.Error(err))
	}

	if cfg.ForceMigrate || cfg.MigrateOnly {
		if err := database.Migrate(db); err != nil {
			logger.Log.Fatal("failed to migrate database", zap.Error(err))
		}
		database.Seed(db)
		if cfg.MigrateOnly {
			logger.Log.Info("migration finished, exiting")
			os.Exit(0)
		}
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		logger.Log.Fatal("failed to initialize redis", zap.Error(err))
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services, err := app.initServices(repos, cfg, db, rdb)
	if err != nil {
		logger.Log.Fatal("failed to initialize services", zap.Error(err))
	}
	controllers := app.initControllers(services, db, rdb, cfg)

	// 限流参数支持热更新，其余配置项仍需重启生效
	app.RegisterConfigCallback(func(c *config.Config) {
		controllers.ai.SetRateLimit(c.RateLimit.AIPerMinute)
	})

	monitoring.Init()

	gin.SetMode(cfg.Server.Mode)
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("hamexam-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Fatal("failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos, cfg)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	return app
}

func (a *App) Run() {
	go configwatcher.WatchConfig("configs/config.yaml", a.ReloadConfig)

	srv := &http.Server{
		Addr:    ":" + a.Config.Server.Port,
		Handler: a.Router,
	}

	go func() {
		log.Printf("Server running on port %s", a.Config.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("listen: %s\n", err)
		}
	}()

	// 等待中断信号优雅地关闭服务器
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server exiting")
}
