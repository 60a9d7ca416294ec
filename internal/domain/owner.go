package domain

import (
	"time"

	"github.com/google/uuid"
)

// Role is the authorization role of a user account.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleOwner Role = "OWNER"
)

// Owner is a user account. Operators have RoleAdmin; boat owners have RoleOwner.
// PasswordHash is never serialized.
type Owner struct {
	ID           uuid.UUID `json:"id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	Phone        string    `json:"phone,omitempty"`
	Role         Role      `json:"role"`
	Active       bool      `json:"active"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// OwnerPatch carries a partial update. Nil fields are left unchanged.
type OwnerPatch struct {
	FullName *string
	Email    *string
	Username *string
	Phone    *string
	Active   *bool
}

// ResetToken is a single-use password recovery token.
type ResetToken struct {
	Token     string
	OwnerID   uuid.UUID
	ExpiresAt time.Time
	UsedAt    *time.Time
}

// Usable reports whether the token can still be redeemed at now.
func (t ResetToken) Usable(now time.Time) bool {
	return t.UsedAt == nil && now.Before(t.ExpiresAt)
}
