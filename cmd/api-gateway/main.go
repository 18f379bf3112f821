package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/music-school-api/api/swagger"
	"github.com/noah-isme/music-school-api/internal/handler"
	internalmiddleware "github.com/noah-isme/music-school-api/internal/middleware"
	"github.com/noah-isme/music-school-api/internal/models"
	"github.com/noah-isme/music-school-api/internal/repository"
	"github.com/noah-isme/music-school-api/internal/service"
	"github.com/noah-isme/music-school-api/internal/worker"
	"github.com/noah-isme/music-school-api/pkg/cache"
	"github.com/noah-isme/music-school-api/pkg/config"
	"github.com/noah-isme/music-school-api/pkg/database"
	"github.com/noah-isme/music-school-api/pkg/jobs"
	"github.com/noah-isme/music-school-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/music-school-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/music-school-api/pkg/middleware/requestid"
)

const shutdownTimeout = 15 * time.Second

// @title Music School API
// @version 1.0.0
// @description Lesson generation for recurring courses
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.Open(cfg.Database)
	if err != nil {
		logr.Fatal("failed to connect database", zap.String("driver", cfg.Database.Driver), zap.Error(err))
	}
	defer db.Close()

	if cfg.Database.AutoMigrate {
		if err := database.Migrate(ctx, db); err != nil {
			logr.Fatal("failed to run migrations", zap.Error(err))
		}
		logSchemaVersion(ctx, db, logr)
	}

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Fatal("failed to connect redis", zap.Error(err))
	}
	if redisClient != nil {
		defer redisClient.Close()
	}

	metrics := service.NewMetricsService()

	var cacheRepo service.CacheRepository
	if redisClient != nil {
		cacheRepo = repository.NewCacheRepository(redisClient, "music-school")
	}
	cacheSvc := service.NewCacheService(cacheRepo, metrics, cfg.Cache.HolidayTTL, logr, cfg.Cache.Enabled && redisClient != nil)

	generation := service.NewLessonGenerationService(
		repository.NewCourseRepository(db),
		repository.NewHolidayRepository(db),
		repository.NewLessonRepository(db),
		db,
		cacheSvc,
		metrics,
		nil,
		logr,
		service.LessonGenerationConfig{
			Workers:      cfg.Generation.Workers,
			SkipHolidays: cfg.Generation.SkipHolidays,
		},
	)

	jobHandler := worker.NewGenerationJobHandler(generation, logr)
	queue := jobs.NewQueue("lesson-generation", jobHandler.Handle, jobs.QueueConfig{
		Workers:    1,
		BufferSize: cfg.Generation.QueueBuffer,
		MaxRetries: cfg.Generation.JobRetries,
		RetryDelay: time.Minute,
		Logger:     logr,
	})
	queue.Start(ctx)

	var daily *worker.DailyGenerationWorker
	if cfg.Generation.Enabled {
		daily, err = worker.NewDailyGenerationWorker(stateStore(redisClient, cfg.Generation.StateKey), queue, metrics, logr, worker.DailyConfig{
			RunAt:        cfg.Generation.RunAt,
			DaysAhead:    cfg.Generation.DaysAhead,
			PollInterval: cfg.Generation.PollInterval,
			SkipHolidays: cfg.Generation.SkipHolidays,
		})
		if err != nil {
			logr.Fatal("invalid daily generation config", zap.Error(err))
		}
		daily.Start(ctx)
	}

	router := newRouter(cfg, logr, db, redisClient, metrics, generation, queue)
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Warn("http shutdown incomplete", zap.Error(err))
	}
	if daily != nil {
		daily.Wait()
	}
	queue.Stop()
}

func logSchemaVersion(ctx context.Context, db *sqlx.DB, logr *zap.Logger) {
	version, err := database.Version(ctx, db)
	if err != nil {
		logr.Warn("failed to read schema version", zap.Error(err))
		return
	}
	logr.Info("database migrated", zap.Int64("version", version))
}

func stateStore(client *redis.Client, key string) worker.StateStore {
	if client == nil {
		return &worker.MemoryStateStore{}
	}
	return repository.NewSchedulerStateRepository(client, key)
}

func newRouter(cfg *config.Config, logr *zap.Logger, db *sqlx.DB, redisClient *redis.Client, metrics *service.MetricsService, generation *service.LessonGenerationService, queue *jobs.Queue) *gin.Engine {
	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr, "/health", "/ready", "/metrics"))
	r.Use(corsmiddleware.New(cfg.CORS))
	r.Use(internalmiddleware.Metrics(metrics))

	ops := handler.NewMetricsHandler(metrics, map[string]handler.ReadinessCheck{
		"database": db.PingContext,
		"redis": func(ctx context.Context) error {
			return cache.Ping(ctx, redisClient)
		},
	})
	r.GET("/health", ops.Health)
	r.GET("/ready", ops.Ready)
	r.GET("/metrics", ops.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	lessons := handler.NewLessonGenerationHandler(generation, queue, metrics, logr, cfg.Generation.DaysAhead)
	tokens := service.NewTokenService(cfg.JWT)

	api := r.Group(cfg.APIPrefix)
	api.Use(internalmiddleware.JWT(tokens), internalmiddleware.RequireRoles(models.RoleSuperAdmin, models.RoleAdmin, models.RoleStaff))
	{
		api.POST("/lessons/generate", lessons.Generate)
		api.POST("/lessons/generate-bulk", lessons.GenerateBulk)
		api.POST("/lessons/generate-bulk/run", lessons.RunBulk)
		api.POST("/lessons/preview", lessons.Preview)
		api.GET("/lessons/preview/export", lessons.ExportPreview)
	}

	return r
}
