package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clinsys/examflow/internal/config"
	v1 "github.com/clinsys/examflow/internal/handler/v1"
	"github.com/clinsys/examflow/internal/repository"
	"github.com/clinsys/examflow/internal/service"
	"github.com/clinsys/examflow/pkg/auth"
	"github.com/clinsys/examflow/pkg/clock"
	"github.com/clinsys/examflow/pkg/database"
	"github.com/clinsys/examflow/pkg/logger"
	"github.com/clinsys/examflow/pkg/metrics"
	"github.com/clinsys/examflow/pkg/tracer"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	log, err := logger.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	log.Info("starting examflow",
		zap.String("version", cfg.App.Version),
		zap.String("environment", cfg.App.Environment),
	)

	tp, err := tracer.Init(cfg.Tracing)
	if err != nil {
		return fmt.Errorf("initializing tracer: %w", err)
	}
	defer func() {
		if err := tp.Shutdown(context.Background()); err != nil {
			log.Warn("tracer shutdown failed", zap.Error(err))
		}
	}()

	db, err := database.Connect(cfg.Database)
	if err != nil {
		return err
	}
	if err := database.Migrate(db, log); err != nil {
		return err
	}

	collector := metrics.NewCollector("examflow")
	clk := clock.System()
	jwtManager := auth.NewJWTManager(cfg.JWT)

	if sqlDB, err := db.DB(); err == nil {
		go func() {
			for range time.Tick(15 * time.Second) {
				collector.DBConnections.Set(float64(sqlDB.Stats().OpenConnections))
			}
		}()
	}

	auditRepo := repository.NewAuditRepository(db)
	userRepo := repository.NewUserRepository(db)
	catalogRepo := repository.NewCatalogRepository(db)
	examRepo := repository.NewExamRequestRepository(db)
	checkupRepo := repository.NewCheckupRequestRepository(db)

	auditSvc := service.NewAuditService(auditRepo, log).WithMetrics(collector)
	defer auditSvc.Shutdown()

	authSvc := service.NewAuthService(userRepo, jwtManager, auditSvc, log)
	examSvc := service.NewExamRequestService(examRepo, catalogRepo, auditSvc, clk, log)
	checkupSvc := service.NewCheckupRequestService(checkupRepo, catalogRepo, auditSvc, clk, log)
	workflowSvc := service.NewWorkflowService(examSvc, checkupSvc, collector, log)

	router := v1.NewRouter(v1.RouterDeps{
		Config:      cfg,
		JWTManager:  jwtManager,
		AuthSvc:     authSvc,
		WorkflowSvc: workflowSvc,
		Collector:   collector,
	})

	srv := &http.Server{
		Addr:         cfg.Server.Address(),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("http server: %w", err)
	case sig := <-quit:
		log.Info("shutting down", zap.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("graceful shutdown: %w", err)
	}

	log.Info("server stopped")
	return nil
}
