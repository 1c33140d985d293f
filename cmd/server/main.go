package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"basegraph.app/taskflow/common/id"
	"basegraph.app/taskflow/common/logger"
	"basegraph.app/taskflow/common/otel"
	"basegraph.app/taskflow/core/config"
	"basegraph.app/taskflow/core/db"
	"basegraph.app/taskflow/internal/auth"
	"basegraph.app/taskflow/internal/flagstore"
	"basegraph.app/taskflow/internal/http/middleware"
	httprouter "basegraph.app/taskflow/internal/http/router"
	"basegraph.app/taskflow/internal/model"
	"basegraph.app/taskflow/internal/notify"
	"basegraph.app/taskflow/internal/service"
	"basegraph.app/taskflow/internal/store"
	"basegraph.app/taskflow/internal/tour"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/pflag"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
)

// localUserID is the seeded actor of STORE_DRIVER=memory.
const localUserID int64 = 1

func main() {
	ctx := context.Background()

	cfg, err := config.Load(os.Args[1:])
	if errors.Is(err, pflag.ErrHelp) {
		return
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses the OTel provider when enabled)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize otel: %v\n", err)
		os.Exit(1)
	}

	logger.Setup(cfg)

	if telemetry != nil {
		slog.InfoContext(ctx, "otel initialized", "endpoint", cfg.OTel.Endpoint)
	} else {
		slog.InfoContext(ctx, "otel disabled (no endpoint configured)")
	}

	slog.InfoContext(ctx, "taskflow starting", "env", cfg.Env, "store", cfg.Store, "flags", cfg.Flags.Backend)
	if err := id.Init(cfg.NodeID); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	stores, closeStores, err := openStores(ctx, cfg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to open stores", "error", err)
		os.Exit(1)
	}
	defer closeStores()

	var redisClient *redis.Client
	if cfg.Redis.Enabled() {
		redisOpts, err := redis.ParseURL(cfg.Redis.URL)
		if err != nil {
			slog.ErrorContext(ctx, "failed to parse redis url", "error", err)
			os.Exit(1)
		}
		redisClient = redis.NewClient(redisOpts)
		if err := redisClient.Ping(ctx).Err(); err != nil {
			slog.ErrorContext(ctx, "failed to connect to redis", "error", err)
			os.Exit(1)
		}
		defer redisClient.Close()
		slog.InfoContext(ctx, "redis connected")
	}

	flags, err := openFlagStore(cfg.Flags, redisClient)
	if err != nil {
		slog.ErrorContext(ctx, "failed to open flag store", "error", err)
		os.Exit(1)
	}

	sinks := notify.Fanout{notify.NewLogSink(slog.Default())}
	if cfg.Notify.Channel != "" {
		sinks = append(sinks, notify.NewRedisSink(redisClient, cfg.Notify.Channel, slog.Default()))
	}

	machine := tour.New(flags,
		tour.WithAutoStartDelay(cfg.Tour.AutoStartDelay),
		tour.WithLogger(slog.Default()),
	)
	defer machine.Close()
	if err := machine.Init(ctx); err != nil {
		// The overlay still works from in-memory state; only resumption is lost.
		slog.WarnContext(ctx, "tour flags unavailable", "error", err)
	}

	services := service.NewServices(service.Deps{
		Stores:  stores,
		Session: auth.NewSession(),
		Tour:    machine,
		Notices: notify.NewMemorySink(cfg.Notify.BufferSize),
		Sink:    sinks,
		Logger:  slog.Default(),
	})

	if cfg.Store == config.StoreDriverMemory {
		if err := services.SignIn(ctx, localUserID); err != nil {
			slog.WarnContext(ctx, "local sign-in failed", "error", err)
		}
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, services)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func openStores(ctx context.Context, cfg config.Config) (store.Provider, func(), error) {
	if cfg.Store == config.StoreDriverMemory {
		mem := store.NewMemory()
		mem.AddUser(model.User{ID: localUserID, Name: "Local User", Email: "local@taskflow.invalid"})
		slog.InfoContext(ctx, "using in-memory store")
		return mem, func() {}, nil
	}

	database, err := db.New(ctx, cfg.DB)
	if err != nil {
		return nil, nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := database.EnsureSchema(ctx); err != nil {
		database.Close()
		return nil, nil, fmt.Errorf("applying schema: %w", err)
	}
	slog.InfoContext(ctx, "database connected")
	return store.NewStores(database), database.Close, nil
}

func openFlagStore(cfg config.FlagConfig, client *redis.Client) (flagstore.Store, error) {
	switch cfg.Backend {
	case config.FlagBackendRedis:
		return flagstore.NewRedis(client, cfg.Profile), nil
	case config.FlagBackendMemory:
		return flagstore.NewMemory(), nil
	default:
		return flagstore.NewFile(cfg.Dir, cfg.Profile)
	}
}

func setupRouter(cfg config.Config, services *service.Services) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, services)

	return router
}
