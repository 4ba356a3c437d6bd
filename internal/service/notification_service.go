package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/drovers/stockyard/internal/domain"
	"github.com/drovers/stockyard/internal/repository"
	"github.com/google/uuid"
)

// NotificationPusher delivers a notification to a connected user. Implemented
// by ws.Hub; users without an open socket simply miss the push and read the
// row later via the API.
type NotificationPusher interface {
	PushNotification(userID uuid.UUID, n *domain.Notification)
}

// NotificationService drains the pending notification rows that the other
// services write inside their transactions.
type NotificationService struct {
	notifRepo *repository.NotificationRepository
	pusher    NotificationPusher // injected after WS Hub is built
}

// NewNotificationService builds a NotificationService.
func NewNotificationService(notifRepo *repository.NotificationRepository) *NotificationService {
	return &NotificationService{notifRepo: notifRepo}
}

// SetPusher injects the WS Hub dependency post-construction.
func (s *NotificationService) SetPusher(p NotificationPusher) { s.pusher = p }

// dispatchBatchSize caps how many rows one dispatch pass claims.
const dispatchBatchSize = 200

// DispatchPending marks pending notifications sent and pushes them over the
// socket. The pending → sent update is guarded, so two overlapping dispatch
// passes never double-deliver: whichever loses the race skips the row.
//
// Returns the number of notifications dispatched.
func (s *NotificationService) DispatchPending(ctx context.Context) (int, error) {
	pending, err := s.notifRepo.ListPending(ctx, dispatchBatchSize)
	if err != nil {
		return 0, fmt.Errorf("notification_service.DispatchPending: %w", err)
	}

	sent := 0
	for _, n := range pending {
		claimed, err := s.notifRepo.MarkSent(ctx, n.ID)
		if err != nil {
			slog.Error("notification dispatch failed", "notification_id", n.ID, "err", err)
			continue
		}
		if !claimed {
			continue // another pass got it first
		}
		if s.pusher != nil {
			s.pusher.PushNotification(n.UserID, n)
		}
		sent++
	}
	return sent, nil
}

// ListForUser returns a page of the user's notifications, newest first.
func (s *NotificationService) ListForUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]*domain.Notification, error) {
	return s.notifRepo.ListByUser(ctx, userID, limit, offset)
}

// MarkRead stamps a notification read. The user id guards against marking
// someone else's row.
func (s *NotificationService) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	return s.notifRepo.MarkRead(ctx, id, userID)
}
