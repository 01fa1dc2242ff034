// @title                       Campus Issue Tracker API
// @version                     1.0
// @description                 Report, track and resolve campus facility issues.
// @BasePath                    /
// @securityDefinitions.apikey  BearerAuth
// @in                          header
// @name                        Authorization
// @description                 Type "Bearer" followed by a space and the JWT.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/campus-issues/issue-tracker/internal/api"
	"github.com/campus-issues/issue-tracker/internal/core/service"
	"github.com/campus-issues/issue-tracker/internal/infrastructure/config"
	mongodb "github.com/campus-issues/issue-tracker/internal/infrastructure/db/mongo"
	redisdb "github.com/campus-issues/issue-tracker/internal/infrastructure/db/redis"
	infrahttp "github.com/campus-issues/issue-tracker/internal/infrastructure/http"
	"github.com/campus-issues/issue-tracker/internal/infrastructure/http/handlers"
	"github.com/campus-issues/issue-tracker/internal/infrastructure/jobs"
	"github.com/campus-issues/issue-tracker/internal/infrastructure/queue"
	"github.com/campus-issues/issue-tracker/internal/infrastructure/storage"
	"github.com/campus-issues/issue-tracker/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	ctx := context.Background()

	boot := zerolog.New(os.Stderr).With().Timestamp().Logger()
	cfg, err := config.Load(ctx, boot)
	if err != nil {
		boot.Fatal().Err(err).Msg("invalid configuration")
	}

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: !cfg.IsProduction(),
	})

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect mongodb")
	}
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("failed to create indexes")
	}

	redisClient, err := redisdb.Connect(ctx, redisdb.Config{Addr: cfg.Redis.Addr, Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect redis")
	}

	imageHost, err := storage.NewImageHost(cfg.ImageHost)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to init image host")
	}
	if err := imageHost.EnsureBucket(ctx); err != nil {
		log.Warn().Err(err).Msg("ensure image bucket failed")
	}

	// --- Repositories ---
	users := mongodb.NewUserRepository(db)
	issues := mongodb.NewIssueRepository(db)
	comments := mongodb.NewCommentRepository(db)
	tx := mongodb.NewTransactor(mongoClient, cfg.Mongo.Transactions)
	idem := redisdb.NewIdempotencyStore(redisClient)

	// --- Services ---
	authService := service.NewAuthService(users, cfg.JWTSecret, cfg.JWTTTL, log.With().Str("component", "auth").Logger())
	uploadService := service.NewUploadService(imageHost, log.With().Str("component", "upload").Logger())

	workerCtx, stopWorkers := context.WithCancel(ctx)
	cleanup := queue.NewDispatcher(cfg.ImageHost.Workers, uploadService, log.With().Str("component", "image_cleanup").Logger())
	cleanup.Start(workerCtx)

	issueService := service.NewIssueService(issues, comments, users, tx, idem, cleanup, log.With().Str("component", "issues").Logger())
	queryService := service.NewQueryService(issues, issues, comments, users, log.With().Str("component", "query").Logger())

	if cfg.Admin.Email != "" {
		if _, err := authService.EnsureAdmin(ctx, cfg.Admin.Name, cfg.Admin.Email, cfg.Admin.Password); err != nil {
			log.Error().Err(err).Str("email", cfg.Admin.Email).Msg("admin bootstrap failed")
		}
	}

	scheduler := jobs.NewScheduler(comments, cfg.Jobs.OrphanSweepSchedule, log.With().Str("component", "jobs").Logger())
	if err := scheduler.Start(); err != nil {
		log.Error().Err(err).Msg("scheduler start failed")
	}

	// --- HTTP ---
	e := api.NewRouter(api.Services{
		Auth:    authService,
		Issues:  issueService,
		Query:   queryService,
		Uploads: uploadService,
	}, api.Options{
		JWTSecret:      cfg.JWTSecret,
		RateLimitRPS:   cfg.RateLimit.Rate,
		RateLimitBurst: cfg.RateLimit.Burst,
	}, log)
	infrahttp.RegisterOps(e, map[string]handlers.Check{
		"mongodb":    func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
		"redis":      func(ctx context.Context) error { return redisClient.Ping(ctx).Err() },
		"image_host": imageHost.Ping,
	})

	go func() {
		log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("http server listening")
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("http server failed")
		}
	}()

	waitForShutdown(log, e, scheduler, stopWorkers, func(ctx context.Context) {
		if err := mongoClient.Disconnect(ctx); err != nil {
			log.Error().Err(err).Msg("mongodb disconnect error")
		}
		if err := redisClient.Close(); err != nil {
			log.Error().Err(err).Msg("redis close error")
		}
	})
}

func waitForShutdown(log zerolog.Logger, e *echo.Echo, scheduler *jobs.Scheduler, stopWorkers context.CancelFunc, closeStores func(context.Context)) {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-ctx.Done()
	log.Info().Msg("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
		if err := e.Close(); err != nil {
			log.Error().Err(err).Msg("forced shutdown failed")
		}
	}

	scheduler.Stop(shutdownCtx)
	stopWorkers()
	closeStores(shutdownCtx)

	log.Info().Msg("server exited cleanly")
}
