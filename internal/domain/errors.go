package domain

import (
	"errors"
)

// ──────────────────────────────────────────────────────────────────────────────
// Sentinel errors — compare with errors.Is()
// ──────────────────────────────────────────────────────────────────────────────

// Auction errors
var (
	// ErrAuctionNotFound is returned when no auction matches the given id.
	ErrAuctionNotFound = errors.New("auction not found")

	// ErrAuctionNotActive is returned when a bid is placed against an auction
	// that is not in StatusActive.
	ErrAuctionNotActive = errors.New("auction is not open for bidding")

	// ErrAuctionEnded is returned when a bid arrives at or after the auction's
	// closing time.
	ErrAuctionEnded = errors.New("auction has already ended")

	// ErrInvalidTransition is returned when a status change is requested that
	// the lifecycle graph does not permit. The caller is told settlement (or
	// approval) did not occur; the row is untouched.
	ErrInvalidTransition = errors.New("invalid auction status transition")

	// ErrInvalidListing is returned when seller-supplied listing fields fail
	// validation (prices, increment, time window).
	ErrInvalidListing = errors.New("invalid listing")
)

// Bid errors
var (
	// ErrBidNotFound is returned when no bid matches the given id.
	ErrBidNotFound = errors.New("bid not found")

	// ErrBidAlreadyVoided is returned when voiding a bid that is not valid.
	ErrBidAlreadyVoided = errors.New("bid is already voided")

	// ErrSelfBid is returned when a seller attempts to bid on their own
	// listing, regardless of amount.
	ErrSelfBid = errors.New("sellers cannot bid on their own auction")

	// ErrInvalidAmount is returned when the bid amount is not a positive
	// whole number.
	ErrInvalidAmount = errors.New("bid amount must be a positive whole number")

	// ErrBidTooLow is returned when the amount is below the bidding floor.
	// Callers wrap it with the minimum acceptable amount so clients can
	// re-prompt immediately.
	ErrBidTooLow = errors.New("bid amount too low")

	// ErrConflict is returned after bounded retries when concurrent writers
	// keep contending for the same auction row. Retryable by the caller.
	ErrConflict = errors.New("auction is busy, please retry")
)

// User errors
var (
	// ErrUserNotFound is returned when no user matches the given criteria.
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailTaken is returned on registration when the email already exists.
	ErrEmailTaken = errors.New("email address is already registered")

	// ErrUsernameTaken is returned on registration when the username already exists.
	ErrUsernameTaken = errors.New("username is already taken")

	// ErrInvalidCredentials is returned when login credentials are wrong.
	ErrInvalidCredentials = errors.New("invalid email or password")

	// ErrUserInactive is returned when a suspended user attempts an action.
	ErrUserInactive = errors.New("user account is inactive")

	// ErrKYCRequired is returned when a listing is approved for a seller whose
	// identity documents have not been verified yet.
	ErrKYCRequired = errors.New("seller identity verification is required")
)

// Auth errors
var (
	// ErrUnauthorized is returned when a valid token is not present.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the authenticated user lacks the required role.
	ErrForbidden = errors.New("forbidden: insufficient permissions")

	// ErrTokenExpired is returned when a JWT has passed its TTL.
	ErrTokenExpired = errors.New("token has expired")

	// ErrTokenInvalid is returned when a token cannot be parsed or its
	// signature does not match.
	ErrTokenInvalid = errors.New("token is invalid")
)

// ──────────────────────────────────────────────────────────────────────────────
// Helper predicates
// ──────────────────────────────────────────────────────────────────────────────

// notFoundErrors collects all "entity not found" sentinel errors so that
// IsNotFound can stay in sync automatically.
var notFoundErrors = []error{
	ErrAuctionNotFound,
	ErrBidNotFound,
	ErrUserNotFound,
}

// IsNotFound returns true when err (or any error in its chain) is one of the
// domain "not found" errors. Use this instead of comparing error values
// directly when translating domain errors to HTTP 404 responses.
func IsNotFound(err error) bool {
	for _, target := range notFoundErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsInvalidState returns true for errors that mean the entity exists but is
// in the wrong status for the requested operation.
func IsInvalidState(err error) bool {
	stateErrors := []error{
		ErrAuctionNotActive,
		ErrAuctionEnded,
		ErrInvalidTransition,
		ErrBidAlreadyVoided,
		ErrUserInactive,
		ErrKYCRequired,
	}
	for _, target := range stateErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsValidation returns true for errors caused by bad caller input. These map
// to HTTP 400 and carry user-presentable messages.
func IsValidation(err error) bool {
	validationErrors := []error{
		ErrSelfBid,
		ErrInvalidAmount,
		ErrBidTooLow,
		ErrInvalidListing,
	}
	for _, target := range validationErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// IsConflict returns true for retryable write-contention errors.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsAuthError returns true for authentication/authorisation errors.
func IsAuthError(err error) bool {
	authErrors := []error{
		ErrUnauthorized,
		ErrForbidden,
		ErrTokenExpired,
		ErrTokenInvalid,
		ErrInvalidCredentials,
	}
	for _, target := range authErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
