package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/issue-tracker/internal/api/http"
	"github.com/spec-kit/issue-tracker/internal/api/http/handlers"
	"github.com/spec-kit/issue-tracker/internal/auth"
	"github.com/spec-kit/issue-tracker/internal/config"
	"github.com/spec-kit/issue-tracker/internal/events"
	"github.com/spec-kit/issue-tracker/internal/observability"
	"github.com/spec-kit/issue-tracker/internal/persistence"
	"github.com/spec-kit/issue-tracker/internal/repository"
	"github.com/spec-kit/issue-tracker/internal/repository/memory"
	"github.com/spec-kit/issue-tracker/internal/service"
	"github.com/spec-kit/issue-tracker/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.App, cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	metrics := observability.NewMetrics()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	var (
		repos  repository.Set
		checks []handlers.DependencyCheck
	)
	if pool := pg.PoolHandle(); pool != nil {
		if cfg.Postgres.RunMigrations {
			if err := persistence.RunMigrations(ctx, pool, cfg.Postgres.MigrationsDir, logger); err != nil {
				logger.Fatal("failed to run migrations", zap.Error(err))
			}
		}
		repos = repository.NewPostgresSet(pool)
		checks = append(checks, handlers.DependencyCheck{Name: "postgres", Ping: pg.Ping})
	} else {
		repos = memory.New().Set()
	}

	var broker events.Broker
	switch cfg.Notification.Backend {
	case config.NotifyBackendRedis:
		rdb := persistence.NewRedis(cfg.Redis, logger)
		defer rdb.Close()
		broker = events.NewRedisBroker(rdb.Client, cfg.Notification.ChannelPrefix, cfg.Notification.SubscriberBuffer, logger)
		checks = append(checks, handlers.DependencyCheck{Name: "redis", Ping: rdb.Ping})
	default:
		hub := events.NewHub(cfg.Notification.SubscriberBuffer)
		hub.OnDrop(func(topic string) {
			metrics.RecordSideEffectFailure("notification", "subscriber_full")
		})
		defer hub.Close()
		broker = hub
	}

	queue := worker.NewNotificationQueue(broker, cfg.Notification.QueueSize, logger, metrics)
	workerCtx, stopWorker := context.WithCancel(context.Background())
	workerDone := worker.StartNotificationWorker(workerCtx, queue)

	authService := service.NewAuthService(cfg.Auth, repos.Users)
	activityService := service.NewActivityService(service.ActivityDependencies{
		ActivityRepo: repos.ActivityLogs,
		UserRepo:     repos.Users,
		Publisher:    queue,
		Logger:       logger,
		Metrics:      metrics,
	})
	issueService := service.NewIssueService(service.IssueDependencies{
		IssueRepo:       repos.Issues,
		ProjectRepo:     repos.Projects,
		UserRepo:        repos.Users,
		Activity:        activityService,
		Publisher:       queue,
		Logger:          logger,
		Metrics:         metrics,
		DefaultPageSize: cfg.Issues.DefaultPageSize,
		MaxPageSize:     cfg.Issues.MaxPageSize,
	})
	commentService := service.NewCommentService(service.CommentDependencies{
		CommentRepo: repos.Comments,
		IssueRepo:   repos.Issues,
		UserRepo:    repos.Users,
		Activity:    activityService,
		Publisher:   queue,
		Logger:      logger,
		Metrics:     metrics,
	})
	projectService := service.NewProjectService(repos.Projects, repos.Users)

	app := fiber.New(fiber.Config{AppName: cfg.App.Name})
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, checks...),
		Metrics:        handlers.NewMetricsHandler(metrics, queue.Pending),
		Users:          handlers.NewUsersHandler(authService),
		Projects:       handlers.NewProjectsHandler(projectService),
		Issues:         handlers.NewIssuesHandler(issueService),
		Comments:       handlers.NewCommentsHandler(commentService),
		Activities:     handlers.NewActivitiesHandler(activityService),
		Events:         handlers.NewEventsHandler(broker, cfg.Notification.KeepAlive(), logger),
		AuthMiddleware: auth.NewAuthMiddleware(authService.TokenManager(), repos.Users),
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		logger.Warn("http shutdown", zap.Error(err))
	}
	stopWorker()
	<-workerDone
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
