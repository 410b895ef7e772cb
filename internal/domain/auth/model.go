// Package auth handles operator sign-in for the till.
package auth

import (
	"time"

	"shoptill/internal/core/apperror"
	"shoptill/internal/core/id"
)

// Operator is a till user. Operators sign in with a short code and a
// numeric PIN; the PIN is stored as a bcrypt hash and never logged.
type Operator struct {
	ID                  id.ID      `db:"id" json:"id"`
	Code                string     `db:"code" json:"code"`
	Name                string     `db:"name" json:"name"`
	PINHash             string     `db:"pin_hash" json:"-"`
	IsActive            bool       `db:"is_active" json:"isActive"`
	IsManager           bool       `db:"is_manager" json:"isManager"`
	LastLoginAt         *time.Time `db:"last_login_at" json:"lastLoginAt,omitempty"`
	FailedLoginAttempts int        `db:"failed_login_attempts" json:"-"`
	LockedUntil         *time.Time `db:"locked_until" json:"-"`
	CreatedAt           time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updatedAt"`
	Version             int        `db:"version" json:"version"`
}

// NewOperator creates an active operator with a pre-hashed PIN.
func NewOperator(code, name, pinHash string) *Operator {
	now := time.Now().UTC()
	return &Operator{
		ID:        id.New(),
		Code:      code,
		Name:      name,
		PINHash:   pinHash,
		IsActive:  true,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}
}

// Validate checks required operator fields.
func (o *Operator) Validate() error {
	if o.Code == "" {
		return apperror.NewValidation("operator code is required").WithDetail("field", "code")
	}
	if o.Name == "" {
		return apperror.NewValidation("operator name is required").WithDetail("field", "name")
	}
	return nil
}

// IsLocked returns true while the account lockout is in effect.
func (o *Operator) IsLocked() bool {
	if o.LockedUntil == nil {
		return false
	}
	return time.Now().Before(*o.LockedUntil)
}

// CanLogin checks whether the operator may sign in at all.
func (o *Operator) CanLogin() error {
	if !o.IsActive {
		return apperror.NewUnauthorized("operator is disabled")
	}
	if o.IsLocked() {
		return apperror.NewUnauthorized("operator is temporarily locked")
	}
	return nil
}

// RecordFailedLogin increments the failed attempt counter and locks the
// account once maxAttempts is reached.
func (o *Operator) RecordFailedLogin(maxAttempts int, lockDuration time.Duration) {
	o.FailedLoginAttempts++
	if o.FailedLoginAttempts >= maxAttempts {
		lockUntil := time.Now().Add(lockDuration)
		o.LockedUntil = &lockUntil
	}
}

// RecordSuccessfulLogin resets the failed attempt counter.
func (o *Operator) RecordSuccessfulLogin() {
	o.FailedLoginAttempts = 0
	o.LockedUntil = nil
	now := time.Now().UTC()
	o.LastLoginAt = &now
}

// Credentials for a till sign-in.
type Credentials struct {
	Code string `json:"code"`
	PIN  string `json:"pin"`
}

// Session is the result of a successful sign-in.
type Session struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
	Operator  *Operator `json:"operator"`
}
