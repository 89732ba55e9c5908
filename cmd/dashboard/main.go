package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/Skotchmaster/admin_dashboard/internal/config"
	"github.com/Skotchmaster/admin_dashboard/internal/httpserver"
	"github.com/Skotchmaster/admin_dashboard/internal/middleware"
	"github.com/Skotchmaster/admin_dashboard/internal/repo"
	"github.com/Skotchmaster/admin_dashboard/internal/search"
	"github.com/Skotchmaster/admin_dashboard/internal/service"
	"github.com/Skotchmaster/admin_dashboard/pkg/cache"
	"github.com/Skotchmaster/admin_dashboard/pkg/db"
	"github.com/Skotchmaster/admin_dashboard/pkg/events"
	"github.com/Skotchmaster/admin_dashboard/pkg/logging"
	loggingmw "github.com/Skotchmaster/admin_dashboard/pkg/middleware/logging"
	"github.com/Skotchmaster/admin_dashboard/pkg/observability"
)

var version = "dev"

const cachePrefix = "AdminDashboard_"

func main() {
	cfg := config.Load()

	logger := logging.New(cfg.LogLevel).With("service", cfg.ServiceName, "env", cfg.Env)
	slog.SetDefault(logger)

	if err := observability.InitSentry(cfg.SentryDSN, cfg.Env, version); err != nil {
		logger.Error("sentry_init_failed", "error", err)
	}
	defer observability.Flush()

	initCtx, cancel := context.WithTimeout(logging.IntoContext(context.Background(), logger), 30*time.Second)
	if err := db.Migrate(initCtx, cfg.DatabaseURL); err != nil {
		fatal(logger, "db_migrate_failed", err)
	}
	gdb, err := db.Open(initCtx, cfg.DatabaseURL)
	if err != nil {
		fatal(logger, "db_init_failed", err)
	}
	defer db.Close(gdb)

	gormRepo := &repo.GormRepo{DB: gdb}
	if err := gormRepo.Seed(initCtx, repo.SeedAdmin{Email: cfg.AdminEmail, Password: cfg.AdminPassword}); err != nil {
		fatal(logger, "db_seed_failed", err)
	}

	var (
		rdb       *redis.Client
		respCache *cache.Cache
	)
	if cfg.RedisAddr != "" {
		rdb = cache.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword)
		defer rdb.Close()
		respCache = cache.New(rdb, cachePrefix, cfg.CacheTTL)
	} else {
		logger.Warn("cache_disabled", "reason", "REDIS_ADDR is empty")
	}

	publisher := events.FromBrokers(cfg.KafkaBrokers, cfg.KafkaTopic)
	defer func() {
		if err := publisher.Close(); err != nil {
			logger.Error("kafka_close_failed", "error", err)
		}
	}()

	var index service.SearchIndex
	if cfg.ESURL != "" {
		if idx, err := openSearchIndex(initCtx, cfg, gormRepo); err != nil {
			logger.Error("search_index_unavailable", "error", err)
		} else {
			index = idx
		}
	}
	cancel()

	authSvc := service.NewAuthService(gormRepo, service.TokenConfig{
		Secret:   cfg.JWTSecret,
		Issuer:   cfg.JWTIssuer,
		Audience: cfg.JWTAudience,
	}, publisher)

	checks := map[string]httpserver.Check{
		"db": func(ctx context.Context) error { return db.Ping(ctx, gdb) },
	}
	if rdb != nil {
		checks["redis"] = func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	}

	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = 10 * time.Second
	e.Server.WriteTimeout = 15 * time.Second
	e.Server.ReadHeaderTimeout = 3 * time.Second
	e.HTTPErrorHandler = httpserver.NewErrorHandler(cfg.IsDevelopment())

	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(
		echomw.RequestID(),
		loggingmw.RequestLogger(logger),
		echomw.Recover(),
		echomw.Secure(),
		echomw.CORSWithConfig(echomw.CORSConfig{
			AllowOrigins:     cfg.CORSOrigins,
			AllowCredentials: true,
		}),
	)

	httpserver.Register(e, &httpserver.Deps{
		Auth:     &httpserver.AuthHTTP{Svc: authSvc},
		Clients:  &httpserver.ClientsHTTP{Svc: &service.ClientService{Repo: gormRepo, Index: index, Publisher: publisher}},
		Tags:     &httpserver.TagsHTTP{Svc: &service.TagService{Repo: gormRepo, Cache: respCache}},
		Payments: &httpserver.PaymentsHTTP{Svc: &service.PaymentService{Repo: gormRepo}},
		Rate:     &httpserver.RateHTTP{Svc: &service.RateService{Repo: gormRepo, Cache: respCache, Publisher: publisher}},
		Health:   &httpserver.HealthHTTP{Checks: checks},
		Bearer:   middleware.NewBearerAuth(cfg.JWTSecret, cfg.JWTIssuer, cfg.JWTAudience),
	})

	addr := ":" + strconv.Itoa(cfg.ServerPort)
	go func() {
		logger.Info("http_server_starting", "addr", addr, "version", version)
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			fatal(logger, "http_server_failed", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	logger.Info("shutting_down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("http_server_shutdown_failed", "error", err)
	}
	logger.Info("shutdown_complete")
}

func openSearchIndex(ctx context.Context, cfg config.ServiceConfig, r *repo.GormRepo) (*search.ClientIndex, error) {
	idx, err := search.NewClient(ctx, search.Config{
		URL:      cfg.ESURL,
		User:     cfg.ESUser,
		Password: cfg.ESPassword,
		Index:    cfg.ESIndex,
	})
	if err != nil {
		return nil, err
	}
	if err := idx.EnsureIndex(ctx); err != nil {
		return nil, err
	}
	clients, err := r.GetClients(ctx)
	if err != nil {
		return nil, err
	}
	if err := idx.Reindex(ctx, clients); err != nil {
		return nil, err
	}
	return idx, nil
}

func fatal(l *slog.Logger, msg string, err error) {
	l.Error(msg, "error", err)
	observability.Flush()
	os.Exit(1)
}
