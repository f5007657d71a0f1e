// Package user defines user accounts and their subscription state.
package user

import "time"

// Role separates regular accounts from administrators.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// Plan captures the subscription state of an account.
type Plan string

const (
	PlanTrial   Plan = "trial"
	PlanPro     Plan = "pro"
	PlanExpired Plan = "expired"
)

// User is a registered account. Password and PIN hashes never leave the
// server.
type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	PINHash      string    `json:"-"`
	Role         Role      `json:"role"`
	Plan         Plan      `json:"plan"`
	TrialEndsAt  time.Time `json:"trial_ends_at"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// HasPIN reports whether the account has an app-lock PIN configured.
func (u User) HasPIN() bool { return u.PINHash != "" }
