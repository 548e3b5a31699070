package mfa

import (
	"time"

	"github.com/google/uuid"

	"github.com/kodisha/kodisha/internal/models"
)

// ChallengeStatus tracks the verification state machine. PENDING is the only
// non-terminal state; VERIFIED, FAILED and EXPIRED are never left.
type ChallengeStatus string

const (
	StatusPending  ChallengeStatus = "pending"
	StatusVerified ChallengeStatus = "verified"
	StatusFailed   ChallengeStatus = "failed"
	StatusExpired  ChallengeStatus = "expired"
)

// Challenge is a short-lived record of an issued code awaiting verification.
// It lives only in the challenge cache, never in the relational store.
type Challenge struct {
	ID          string            `json:"id"`
	UserID      string            `json:"user_id"`
	Type        models.MethodType `json:"type"`
	Code        string            `json:"code,omitempty"` // expected SMS code; empty for TOTP
	PhoneNumber string            `json:"phone_number,omitempty"`
	Status      ChallengeStatus   `json:"status"`
	Attempts    int               `json:"attempts"`
	MaxAttempts int               `json:"max_attempts"`
	ExpiresAt   time.Time         `json:"expires_at"`
	CreatedAt   time.Time         `json:"created_at"`
}

func newChallenge(userID string, mtype models.MethodType, code, phone string, maxAttempts int, ttl time.Duration, now time.Time) *Challenge {
	return &Challenge{
		ID:          uuid.NewString(),
		UserID:      userID,
		Type:        mtype,
		Code:        code,
		PhoneNumber: phone,
		Status:      StatusPending,
		MaxAttempts: maxAttempts,
		ExpiresAt:   now.Add(ttl),
		CreatedAt:   now,
	}
}

// Expired reports whether the challenge is past its server-assigned expiry.
func (c *Challenge) Expired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// Remaining returns the time left until expiry, never negative.
func (c *Challenge) Remaining(now time.Time) time.Duration {
	remaining := c.ExpiresAt.Sub(now)
	if remaining < 0 {
		return 0
	}
	return remaining
}
