package main

import (
	"context"
	"log"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	apiHandler "github.com/progresssync/backend/api/handler"
	"github.com/progresssync/backend/internal/config"
	"github.com/progresssync/backend/internal/infrastructure/buffer"
	"github.com/progresssync/backend/internal/infrastructure/googlecal"
	"github.com/progresssync/backend/internal/infrastructure/monitor"
	pgInfra "github.com/progresssync/backend/internal/infrastructure/postgres"
	redisInfra "github.com/progresssync/backend/internal/infrastructure/redis"
	"github.com/progresssync/backend/internal/infrastructure/todoist"
	"github.com/progresssync/backend/internal/middleware"
	"github.com/progresssync/backend/internal/realtime"
	"github.com/progresssync/backend/internal/router"
	"github.com/progresssync/backend/internal/services"
	"github.com/progresssync/backend/internal/services/lifecycle"
	"github.com/progresssync/backend/pkg/httpcontext"
	"github.com/progresssync/backend/pkg/logger"
	"github.com/progresssync/backend/repository/postgres"
	redisRepo "github.com/progresssync/backend/repository/redis"
	authUC "github.com/progresssync/backend/usecase/auth"
	calendarUC "github.com/progresssync/backend/usecase/calendar"
	dashboardUC "github.com/progresssync/backend/usecase/dashboard"
	syncUC "github.com/progresssync/backend/usecase/sync"
	taskUC "github.com/progresssync/backend/usecase/task"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	zapLogger, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
	})
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer zapLogger.Sync()

	appCtx, cancel := context.WithCancel(context.Background())
	defer cancel()

	manager := lifecycle.New(cfg.Context.ShutdownTimeout, zapLogger)
	manager.Listen(cancel)

	if err := pgInfra.RunMigrations(cfg, zapLogger); err != nil {
		zapLogger.Fatal("migrations failed", zap.Error(err))
	}

	pool, err := pgInfra.NewPool(appCtx, cfg.Database, zapLogger)
	if err != nil {
		zapLogger.Fatal("postgres connection failed", zap.Error(err))
	}
	manager.Register("postgres", func(ctx context.Context) error {
		pool.Close()
		return nil
	})

	redisClient, err := redisInfra.NewClient(cfg.Redis)
	if err != nil {
		zapLogger.Fatal("redis connection failed", zap.Error(err))
	}
	manager.Register("redis", func(ctx context.Context) error {
		return redisClient.Close()
	})

	bufferStore, err := buffer.Open(cfg.Buffer.Path, "buffer")
	if err != nil {
		zapLogger.Fatal("failed to open buffer store", zap.Error(err))
	}
	manager.Register("buffer", func(ctx context.Context) error {
		return bufferStore.Close()
	})

	mon := monitor.New(pool, redisClient, bufferStore, 10*time.Second, zapLogger)
	mon.Start()
	manager.Register("monitor", func(ctx context.Context) error {
		mon.Stop()
		return nil
	})

	userRepo := postgres.NewUserRepository(pool)
	taskRepo := postgres.NewTaskRepository(pool)
	syncedTaskRepo := postgres.NewSyncedTaskRepository(pool)
	tokenRepo := redisRepo.NewTokenRepository(redisClient, 0)

	bufferProcessor := services.NewBufferProcessor(
		bufferStore,
		mon,
		userRepo,
		taskRepo,
		zapLogger,
		services.ProcessorConfig{
			Interval:   cfg.Buffer.SyncInterval,
			BatchSize:  50,
			MaxRetries: cfg.Buffer.MaxRetry,
		},
	)
	bufferProcessor.Start()
	manager.Register("buffer_processor", func(ctx context.Context) error {
		bufferProcessor.Stop(ctx)
		return nil
	})

	bufferBridge := services.NewBufferBridge(bufferProcessor)

	todoistClient := todoist.NewClient(cfg.Todoist.BaseURL, cfg.Todoist.Timeout)
	oauthCfg := googlecal.OAuthConfig(cfg.Google.ClientID, cfg.Google.ClientSecret, cfg.Google.RedirectURI)
	calendarClient := googlecal.NewClient(oauthCfg, "", cfg.Google.Timeout)

	authUseCase := authUC.New(userRepo, authUC.Config{
		Secret:   cfg.JWT.Secret,
		Issuer:   cfg.JWT.Issuer,
		TokenTTL: cfg.JWT.TokenTTL,
	}, zapLogger)
	taskUseCase := taskUC.New(taskRepo, bufferBridge, zapLogger)
	dashboardUseCase := dashboardUC.New(taskRepo, tokenRepo, zapLogger)
	syncUseCase := syncUC.New(userRepo, syncedTaskRepo, todoistClient, cfg.Todoist.APIToken, zapLogger)
	calendarUseCase := calendarUC.New(oauthCfg, tokenRepo, calendarClient, zapLogger)

	registry := realtime.NewRegistry()
	hub := realtime.NewHub()
	protocol := realtime.NewProtocol(registry, hub, zapLogger)
	manager.Register("realtime_hub", func(ctx context.Context) error {
		hub.Close()
		return nil
	})

	ctxAdapter := httpcontext.NewAdapter(cfg.Context.RequestTimeout)

	handlers := router.Handlers{
		Auth:      apiHandler.NewAuthHandler(authUseCase, ctxAdapter, zapLogger),
		Task:      apiHandler.NewTaskHandler(taskUseCase, ctxAdapter, zapLogger),
		Dashboard: apiHandler.NewDashboardHandler(dashboardUseCase, ctxAdapter, zapLogger),
		Todoist:   apiHandler.NewTodoistHandler(syncUseCase, ctxAdapter, zapLogger),
		Calendar:  apiHandler.NewCalendarHandler(calendarUseCase, ctxAdapter, zapLogger),
		Health:    apiHandler.NewHealthHandler(mon, ctxAdapter, zapLogger),
		WS:        apiHandler.NewWSHandler(hub, protocol, zapLogger),
	}

	authMiddleware := middleware.JWTAuth(cfg.JWT.Secret, zapLogger)
	r := router.New(handlers, authMiddleware)

	server := &fasthttp.Server{
		Handler:      r.Handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
		Name:         cfg.AppName,
	}

	go func() {
		zapLogger.Info("server started", zap.String("address", cfg.Address()))
		if err := server.ListenAndServe(cfg.Address()); err != nil {
			zapLogger.Fatal("server crashed", zap.Error(err))
		}
	}()

	manager.Register("http_server", func(ctx context.Context) error {
		return server.Shutdown()
	})

	<-appCtx.Done()

	if err := manager.Shutdown(context.Background()); err != nil {
		zapLogger.Error("graceful shutdown error", zap.Error(err))
	}
}
