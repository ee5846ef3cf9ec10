package app

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"

	"tutor-mail-dispatch-go/internal/config"
	"tutor-mail-dispatch-go/internal/db"
	"tutor-mail-dispatch-go/internal/handler"
	"tutor-mail-dispatch-go/internal/mailer"
	"tutor-mail-dispatch-go/internal/metrics"
	"tutor-mail-dispatch-go/internal/repository"
	"tutor-mail-dispatch-go/internal/router"
	"tutor-mail-dispatch-go/internal/scheduler"
)

// Run initializes and starts the application
func Run() error {
	logrus.SetFormatter(&logrus.JSONFormatter{})
	logrus.SetLevel(logrus.InfoLevel)

	logrus.Info("Starting Tutor Mail Dispatch Service")

	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}

	dbConn, err := db.Init(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}

	m := metrics.NewMetrics()
	repo := repository.New(dbConn)

	sender, err := mailer.New(&cfg.Mail)
	if err != nil {
		return fmt.Errorf("failed to create mail sender: %w", err)
	}
	logrus.Infof("Using %s mail provider", cfg.Mail.Provider)

	sched := scheduler.NewScheduler(&cfg.Dispatcher, repo, sender, m)

	h := handler.NewHandlers(dbConn, repo, sched)
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router.SetupRouter(h),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	if err := sched.Start(); err != nil {
		return fmt.Errorf("failed to start scheduler: %w", err)
	}

	go func() {
		logrus.Infof("Starting HTTP server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatalf("HTTP server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logrus.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := sched.Stop(); err != nil {
		logrus.Errorf("Failed to stop scheduler: %v", err)
	}
	sched.Wait()

	if err := srv.Shutdown(ctx); err != nil {
		logrus.Errorf("HTTP server shutdown error: %v", err)
	}

	if err := sender.Close(); err != nil {
		logrus.Errorf("Failed to close mail sender: %v", err)
	}

	if sqlDB, err := dbConn.DB(); err == nil {
		sqlDB.Close()
	}

	logrus.Info("Server stopped gracefully")
	return nil
}
