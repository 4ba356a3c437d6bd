// Package scheduler manages the two background goroutines that run the
// auction lifecycle:
//  1. settlementLoop – settles expired active auctions on each sweep tick.
//  2. dispatchLoop   – drains pending notifications to connected WS clients.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/drovers/stockyard/internal/config"
	"github.com/drovers/stockyard/internal/service"
)

// Scheduler runs the auction lifecycle goroutines. Call Start(ctx) once from
// main(); cancel the context to shut it down gracefully.
type Scheduler struct {
	settlementSvc *service.SettlementService
	notifSvc      *service.NotificationService
	cfg           *config.Config
	logger        *slog.Logger
}

// NewScheduler creates a Scheduler.
func NewScheduler(
	settlementSvc *service.SettlementService,
	notifSvc *service.NotificationService,
	cfg *config.Config,
	logger *slog.Logger,
) *Scheduler {
	return &Scheduler{
		settlementSvc: settlementSvc,
		notifSvc:      notifSvc,
		cfg:           cfg,
		logger:        logger,
	}
}

// Start launches the background goroutines. It returns immediately; all
// loops run until ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go s.settlementLoop(ctx)
	go s.dispatchLoop(ctx)
	s.logger.Info("scheduler started",
		"sweep_interval", s.cfg.Auction.SweepInterval,
		"dispatch_interval", s.cfg.Auction.DispatchInterval)
}

// ──────────────────────────────────────────────────────────────────────────────
// settlementLoop
// ──────────────────────────────────────────────────────────────────────────────

// settlementLoop settles expired auctions on every sweep tick. An auction
// whose window closes between ticks simply settles on the next one; bids
// arriving in that gap are still rejected by the ends_at check at placement.
func (s *Scheduler) settlementLoop(ctx context.Context) {
	defer s.recoverAndLog("settlementLoop")

	ticker := time.NewTicker(s.cfg.Auction.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("settlementLoop: shutting down")
			return
		case <-ticker.C:
			settled, err := s.settlementSvc.SettleExpiredAuctions(ctx, time.Now().UTC())
			if err != nil {
				s.logger.Error("settlementLoop: SettleExpiredAuctions", "err", err)
				continue
			}
			if settled > 0 {
				s.logger.Info("settlement sweep complete", "settled", settled)
			}
		}
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// dispatchLoop
// ──────────────────────────────────────────────────────────────────────────────

// dispatchLoop pushes pending notifications out on each dispatch tick.
func (s *Scheduler) dispatchLoop(ctx context.Context) {
	defer s.recoverAndLog("dispatchLoop")

	ticker := time.NewTicker(s.cfg.Auction.DispatchInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("dispatchLoop: shutting down")
			return
		case <-ticker.C:
			if _, err := s.notifSvc.DispatchPending(ctx); err != nil {
				s.logger.Error("dispatchLoop: DispatchPending", "err", err)
			}
		}
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Panic recovery
// ──────────────────────────────────────────────────────────────────────────────

// recoverAndLog is deferred inside each goroutine to catch unexpected panics,
// log them, and allow the scheduler to continue running.
func (s *Scheduler) recoverAndLog(loop string) {
	if r := recover(); r != nil {
		s.logger.Error("PANIC recovered in scheduler loop",
			"loop", loop, "panic", r)
	}
}
