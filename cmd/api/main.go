package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"mango/internal/accounts"
	"mango/internal/auth"
	"mango/internal/config"
	"mango/internal/events"
	"mango/internal/httpapi"
	"mango/internal/ingest"
	"mango/internal/records"
	"mango/internal/reporting"
	"mango/internal/tasks"
	"mango/pkg/logger"
	"mango/pkg/utils"

	"github.com/gin-gonic/gin"
	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	// Root context that cancels on shutdown
	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("config load failed", "err", err)
		os.Exit(1)
	}

	log := logger.New(cfg.App.Env)
	slog.SetDefault(log)

	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	authManager, err := auth.NewManager(cfg.Auth)
	if err != nil {
		log.Error("auth init failed", "err", err)
		os.Exit(1)
	}

	db, err := utils.OpenPostgres(rootCtx, "pgx", cfg.PostgresDSN(), utils.PostgresPoolConfig{})
	if err != nil {
		log.Error("postgres init failed", "err", err)
		os.Exit(1)
	}
	defer db.Close()

	rdb, err := utils.OpenRedis(rootCtx, utils.RedisConfig{Addr: cfg.RedisAddr()})
	if err != nil {
		log.Error("redis init failed", "err", err)
		os.Exit(1)
	}
	defer rdb.Close()

	recordRepo := records.NewPostgresRepo(db)
	recordSvc := records.NewService(recordRepo, cfg.API.PageSize)
	reportSvc := reporting.NewService(recordRepo)
	taskSvc := tasks.NewService(tasks.NewPostgresRepo(db), cfg.API.PageSize)
	accountSvc := accounts.NewService(accounts.NewPostgresRepo(db))
	eventSvc := events.NewService(events.NewPostgresRepo(db))

	if cfg.IngestEnabled() {
		upstream, err := utils.OpenPostgres(rootCtx, "pgx", cfg.UpstreamDSN(), utils.PostgresPoolConfig{})
		if err != nil {
			log.Error("upstream postgres init failed", "err", err)
			os.Exit(1)
		}
		defer upstream.Close()

		source, err := ingest.NewSQLSource(upstream, cfg.Upstream.Table)
		if err != nil {
			log.Error("ingest source init failed", "err", err)
			os.Exit(1)
		}
		lock := ingest.NewRedisLock(rdb, cfg.Ingest.LockTTL)
		worker := ingest.NewWorker(source, recordSvc, eventSvc, accountSvc, lock, log, ingest.Config{
			Interval:  cfg.Ingest.Interval,
			BatchSize: cfg.Ingest.BatchSize,
		})
		go worker.Run(rootCtx)
	}

	h := httpapi.Handlers{
		Records:  recordSvc,
		Reports:  reportSvc,
		Tasks:    taskSvc,
		Accounts: accountSvc,
		Events:   eventSvc,
		Auth:     authManager,
		Cache:    records.NewCache(rdb, 0),
	}

	// Gin router
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.Middleware(log))

	registerRoutes(r, h, auth.Identify(authManager))

	srv := &http.Server{
		Addr:              cfg.HTTPAddr(),
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("api listening", "addr", srv.Addr, "env", cfg.App.Env)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("http server failed", "err", err)
			stop()
		}
	}()

	<-rootCtx.Done()
	log.Info("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown failed", "err", err)
	}

	_ = logger.ShutdownFlush(shutdownCtx, 2*time.Second)
}
