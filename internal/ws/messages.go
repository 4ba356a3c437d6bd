// Package ws holds WebSocket message types and the Hub implementation.
// messages.go defines all message structs pushed to connected clients.
package ws

import (
	"time"

	"github.com/drovers/stockyard/internal/domain"
	"github.com/google/uuid"
)

// MsgType identifies the kind of WS message so clients can switch on it.
type MsgType string

const (
	MsgTypeBidPlaced       MsgType = "bid_placed"
	MsgTypePriceRecomputed MsgType = "price_recomputed"
	MsgTypeAuctionSettled  MsgType = "auction_settled"
	MsgTypeNotification    MsgType = "notification"
	MsgTypeError           MsgType = "error"
)

// Amounts are serialised as whole-unit decimal strings, matching the REST
// responses, so clients never touch binary floats.

// ──────────────────────────────────────────────────────────────────────────────
// BidPlacedMessage — broadcast after a bid is accepted so every watcher's
// price refreshes.
// ──────────────────────────────────────────────────────────────────────────────

// BidPlacedMessage tells all clients the auction has a new leading price.
type BidPlacedMessage struct {
	Type      MsgType   `json:"type"`
	AuctionID uuid.UUID `json:"auction_id"`
	Amount    string    `json:"amount"`
	EndsAt    time.Time `json:"ends_at"`
	Timestamp time.Time `json:"timestamp"`
}

// ──────────────────────────────────────────────────────────────────────────────
// PriceRecomputedMessage — broadcast after an admin void changes the price.
// ──────────────────────────────────────────────────────────────────────────────

// PriceRecomputedMessage carries the re-derived price. Unlike BidPlacedMessage
// the new amount may be lower than what clients last saw.
type PriceRecomputedMessage struct {
	Type      MsgType   `json:"type"`
	AuctionID uuid.UUID `json:"auction_id"`
	Amount    string    `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}

// ──────────────────────────────────────────────────────────────────────────────
// AuctionSettledMessage — broadcast when the sweep settles an auction.
// ──────────────────────────────────────────────────────────────────────────────

// AuctionSettledMessage tells clients how the auction ended.
type AuctionSettledMessage struct {
	Type       MsgType   `json:"type"`
	AuctionID  uuid.UUID `json:"auction_id"`
	Outcome    string    `json:"outcome"` // "sold" or "unsold"
	FinalPrice string    `json:"final_price"`
	Timestamp  time.Time `json:"timestamp"`
}

// ──────────────────────────────────────────────────────────────────────────────
// NotificationMessage — sent to a single authenticated client.
// ──────────────────────────────────────────────────────────────────────────────

// NotificationMessage wraps one notification row for direct delivery.
type NotificationMessage struct {
	Type         MsgType              `json:"type"`
	Notification *domain.Notification `json:"notification"`
	Timestamp    time.Time            `json:"timestamp"`
}

// ──────────────────────────────────────────────────────────────────────────────
// ErrorMessage — sent to a single client on a non-fatal error.
// ──────────────────────────────────────────────────────────────────────────────

// ErrorMessage is sent directly to one client (not broadcast).
type ErrorMessage struct {
	Type    MsgType `json:"type"`
	Code    string  `json:"code"`
	Message string  `json:"message"`
}
