package app

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mathdojo_backend/internal/config"
	"mathdojo_backend/internal/controller"
	"mathdojo_backend/internal/repository"
	"mathdojo_backend/internal/service"
	"mathdojo_backend/pkg/database"
	"mathdojo_backend/pkg/logger"
	"mathdojo_backend/pkg/monitoring"
	"mathdojo_backend/pkg/security"
	"mathdojo_backend/pkg/tracing"

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
	services        *services
	configCallbacks []func(*config.Config)
}

type repositories struct {
	user     *repository.UserRepository
	fact     *repository.FactRepository
	question *repository.QuestionRepository
	quizRun  *repository.QuizRunRepository
	attempt  *repository.AttemptRepository
	progress *repository.ProgressRepository
	daily    *repository.DailySummaryRepository
}

type services struct {
	catalog     *service.CatalogService
	composer    *service.ComposerService
	activity    *service.ActivityService
	progression *service.ProgressionService
	quiz        *service.QuizService
	auth        *service.AuthService
	storage     *service.StorageService
	user        *service.UserService
}

type controllers struct {
	auth     *controller.AuthController
	quiz     *controller.QuizController
	progress *controller.ProgressController
	report   *controller.ReportController
	user     *controller.UserController
	health   *controller.HealthController
}

func (a *App) RegisterConfigCallback(callback func(*config.Config)) {
	a.configCallbacks = append(a.configCallbacks, callback)
}

// ReloadConfig is invoked by the config watcher on file changes.
func (a *App) ReloadConfig(cfg *config.Config) {
	a.Config = cfg
	for _, cb := range a.configCallbacks {
		cb(cfg)
	}
	logger.Log.Info("configuration reloaded")
}

func (a *App) initRepositories(db *gorm.DB) *repositories {
	return &repositories{
		user:     repository.NewUserRepository(db),
		fact:     repository.NewFactRepository(db),
		question: repository.NewQuestionRepository(db),
		quizRun:  repository.NewQuizRunRepository(db),
		attempt:  repository.NewAttemptRepository(db),
		progress: repository.NewProgressRepository(db),
		daily:    repository.NewDailySummaryRepository(db),
	}
}

func (a *App) initServices(repos *repositories, cfg *config.Config, rdb *redis.Client) *services {
	s := &services{}

	s.storage = service.NewStorageService(cfg)
	s.catalog = service.NewCatalogService(repos.fact)
	s.composer = service.NewComposerService(s.catalog, repos.question)
	s.activity = service.NewActivityService(repos.daily, repos.user, rdb)
	s.progression = service.NewProgressionService(repos.progress, repos.quizRun, repos.daily, repos.user, s.activity)
	s.quiz = service.NewQuizService(repos.quizRun, repos.question, repos.attempt, s.composer, s.activity, s.progression)
	s.auth = service.NewAuthService(repos.user, repos.progress, cfg)
	s.user = service.NewUserService(repos.user, s.storage)

	return s
}

func (a *App) initControllers(s *services, db *gorm.DB, rdb *redis.Client) *controllers {
	return &controllers{
		auth:     controller.NewAuthController(s.auth),
		quiz:     controller.NewQuizController(s.quiz, a.Config),
		progress: controller.NewProgressController(s.progression),
		report:   controller.NewReportController(s.activity, s.user),
		user:     controller.NewUserController(s.user),
		health:   controller.NewHealthController(db, rdb),
	}
}

func (a *App) setupMiddlewares(router *gin.Engine, cfg *config.Config) {
	router.Use(func(c *gin.Context) {
		c.Set("config", a.Config)
		c.Next()
	})

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

func (a *App) startBackgroundTasks(s *services) {
	if !a.Config.Quiz.WarmCatalog {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.catalog.Warm(ctx); err != nil {
			logger.Log.Error("catalog warm-up failed", zap.Error(err))
		}
	}()
}

func NewApp(cfg *config.Config) *App {
	logger.InitLogger(cfg)

	logger.Log.Info("Logger initialized successfully")

	db, err := database.InitDB(&cfg.Database)
	if err != nil {
		logger.Log.Fatal("Failed to initialize database", zap.Error(err))
	}

	rdb, err := database.InitRedis(&cfg.Redis)
	if err != nil {
		// Daily counters degrade to DB-only reads without redis.
		logger.Log.Warn("Failed to initialize redis, continuing without it", zap.Error(err))
		rdb = nil
	}

	app := &App{
		Config: cfg,
		DB:     db,
		Redis:  rdb,
	}

	repos := app.initRepositories(db)
	services := app.initServices(repos, cfg, rdb)
	app.services = services
	controllers := app.initControllers(services, db, rdb)

	monitoring.Init()

	if cfg.Server.Mode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.Default()
	app.Router = router

	app.setupMiddlewares(router, cfg)

	if cfg.Tracing.Enabled {
		if _, err := tracing.InitTracer("mathdojo-backend", cfg.Tracing.CollectorEndpoint); err != nil {
			logger.Log.Error("Failed to initialize tracing", zap.Error(err))
		}
	}

	app.registerRoutes(router, controllers, repos)

	if cfg.Storage.Type == "local" {
		router.Static("/uploads", cfg.Storage.LocalPath)
	}

	app.startBackgroundTasks(services)

	return app
}

func (a *App) Run() {
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
