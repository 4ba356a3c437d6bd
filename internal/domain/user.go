package domain

import (
	"time"

	"github.com/google/uuid"
)

// ──────────────────────────────────────────────────────────────────────────────
// UserRole
// ──────────────────────────────────────────────────────────────────────────────

// UserRole controls access levels in the back-office.
type UserRole string

const (
	RoleUser     UserRole = "user"     // buyer/seller account
	RoleAdmin    UserRole = "admin"    // full back-office access
	RoleOps      UserRole = "ops"      // operations: listing review, bid voiding
	RoleReadOnly UserRole = "readonly" // read-only back-office access
)

// CanAccessBackoffice returns true for all non-standard roles.
func (r UserRole) CanAccessBackoffice() bool {
	return r != RoleUser
}

// IsAdmin returns true only for the full admin role.
func (r UserRole) IsAdmin() bool {
	return r == RoleAdmin
}

// CanMutate returns true for roles allowed to approve, reject, and void.
func (r UserRole) CanMutate() bool {
	return r == RoleAdmin || r == RoleOps
}

// ──────────────────────────────────────────────────────────────────────────────
// KYCStatus
// ──────────────────────────────────────────────────────────────────────────────

// KYCStatus tracks identity-document review for sellers. The document form
// and upload flow live outside this service; only the review state is kept
// here because listing approval depends on it.
type KYCStatus string

const (
	KYCNone     KYCStatus = "none"     // nothing submitted
	KYCPending  KYCStatus = "pending"  // documents submitted, awaiting review
	KYCVerified KYCStatus = "verified" // approved by an admin
	KYCRejected KYCStatus = "rejected" // declined by an admin
)

// ──────────────────────────────────────────────────────────────────────────────
// User
// ──────────────────────────────────────────────────────────────────────────────

// User is the domain entity for registered accounts.
type User struct {
	ID           uuid.UUID `json:"id"            db:"id"`
	Email        string    `json:"email"         db:"email"`
	Username     string    `json:"username"      db:"username"`
	PasswordHash string    `json:"-"             db:"password_hash"` // never serialised
	Role         UserRole  `json:"role"          db:"role"`
	KYCStatus    KYCStatus `json:"kyc_status"    db:"kyc_status"`
	IsActive     bool      `json:"is_active"     db:"is_active"`
	CreatedAt    time.Time `json:"created_at"    db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"    db:"updated_at"`
}

// IsKYCVerified reports whether the user may have listings approved.
func (u *User) IsKYCVerified() bool {
	return u.KYCStatus == KYCVerified
}

// PublicProfile returns a user view safe to expose via API (no password hash).
type PublicProfile struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Role      UserRole  `json:"role"`
	KYCStatus KYCStatus `json:"kyc_status"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
}

// ToPublicProfile converts a User to its public-safe representation.
func (u *User) ToPublicProfile() PublicProfile {
	return PublicProfile{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		Role:      u.Role,
		KYCStatus: u.KYCStatus,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt,
	}
}
