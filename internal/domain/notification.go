package domain

import (
	"time"

	"github.com/google/uuid"
)

// ──────────────────────────────────────────────────────────────────────────────
// Notification
// ──────────────────────────────────────────────────────────────────────────────

// NotificationKind identifies the event a notification reports.
type NotificationKind string

const (
	NotifyOutbid          NotificationKind = "outbid"           // someone beat your leading bid
	NotifyAuctionWon      NotificationKind = "auction_won"      // your bid won at settlement
	NotifyAuctionSold     NotificationKind = "auction_sold"     // seller: lot sold at/above reserve
	NotifyAuctionUnsold   NotificationKind = "auction_unsold"   // seller: lot closed below reserve
	NotifyListingApproved NotificationKind = "listing_approved" // seller: listing went live
	NotifyListingRejected NotificationKind = "listing_rejected" // seller: listing declined
	NotifyBidVoided       NotificationKind = "bid_voided"       // bidder: admin voided your bid
)

// NotificationStatus tracks delivery.
type NotificationStatus string

const (
	NotificationPending NotificationStatus = "pending" // written, not yet dispatched
	NotificationSent    NotificationStatus = "sent"    // pushed to the user
)

// Notification is one user-facing event row. Rows are written inside the
// transaction that caused the event and dispatched later by the scheduler,
// so a crash between the two never loses a notification.
type Notification struct {
	ID        uuid.UUID          `json:"id"         db:"id"`
	UserID    uuid.UUID          `json:"user_id"    db:"user_id"`
	Kind      NotificationKind   `json:"kind"       db:"kind"`
	AuctionID *uuid.UUID         `json:"auction_id" db:"auction_id"`
	Body      string             `json:"body"       db:"body"`
	Status    NotificationStatus `json:"status"     db:"status"`
	ReadAt    *time.Time         `json:"read_at"    db:"read_at"`
	CreatedAt time.Time          `json:"created_at" db:"created_at"`
}

// ──────────────────────────────────────────────────────────────────────────────
// AuditEntry
// ──────────────────────────────────────────────────────────────────────────────

// AuditEntry records one administrative mutation (approve, reject, void,
// KYC review, user suspension). The admin console renders these; the core
// only appends them.
type AuditEntry struct {
	ID         uuid.UUID `json:"id"          db:"id"`
	ActorID    uuid.UUID `json:"actor_id"    db:"actor_id"`
	Action     string    `json:"action"      db:"action"`
	EntityType string    `json:"entity_type" db:"entity_type"`
	EntityID   uuid.UUID `json:"entity_id"   db:"entity_id"`
	Detail     string    `json:"detail"      db:"detail"`
	CreatedAt  time.Time `json:"created_at"  db:"created_at"`
}
