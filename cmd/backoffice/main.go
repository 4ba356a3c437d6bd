// Package main is the entry point for the stockyard backoffice server. It
// exposes the admin API (review queue, bid voiding, user management,
// dashboard) on a separate port, optionally restricted by an IP allow-list.
// No scheduler or WebSocket hub runs here; the public API server owns those.
package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/drovers/stockyard/internal/backoffice"
	"github.com/drovers/stockyard/internal/config"
	"github.com/drovers/stockyard/internal/repository"
	"github.com/drovers/stockyard/internal/service"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // postgres driver
)

func main() {
	cfg := config.MustLoad()

	var logHandler slog.Handler
	if cfg.IsProd() {
		logHandler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		logHandler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	logger := slog.New(logHandler)
	slog.SetDefault(logger)

	logger.Info("starting stockyard backoffice", "env", cfg.Server.Env, "port", cfg.Server.BackofficePort)

	db, err := sqlx.Connect("postgres", cfg.DB.DSN)
	if err != nil {
		logger.Error("database connection failed", "err", err)
		os.Exit(1)
	}
	db.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	db.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.DB.ConnMaxLifetime)

	if err = db.Ping(); err != nil {
		logger.Error("database ping failed", "err", err)
		os.Exit(1)
	}

	userRepo := repository.NewUserRepository(db)
	auctionRepo := repository.NewAuctionRepository(db)
	bidRepo := repository.NewBidRepository(db)
	notifRepo := repository.NewNotificationRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	authSvc := service.NewAuthService(userRepo, cfg)
	listingSvc := service.NewListingService(auctionRepo, bidRepo, userRepo, notifRepo, auditRepo, cfg)
	bidSvc := service.NewBidService(db, bidRepo, auctionRepo, notifRepo, auditRepo, cfg)
	settlementSvc := service.NewSettlementService(db, auctionRepo, bidRepo, notifRepo, cfg)

	// Admin voids must recompute the standing price inside the same tx
	bidSvc.SetRecomputer(settlementSvc)

	router := backoffice.SetupBackofficeRouter(backoffice.BackofficeDeps{
		AuthSvc:       authSvc,
		ListingSvc:    listingSvc,
		BidSvc:        bidSvc,
		SettlementSvc: settlementSvc,
		UserRepo:      userRepo,
		AuditRepo:     auditRepo,
		Hub:           nil,
		Cfg:           cfg,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.BackofficePort,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("backoffice listening", "addr", srv.Addr, "allowed_ips", cfg.Server.BackofficeAllowedIPs)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("backoffice server error", "err", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err = srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("backoffice shutdown error", "err", err)
	}

	db.Close()
	logger.Info("backoffice stopped")
}
