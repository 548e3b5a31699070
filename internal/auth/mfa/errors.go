package mfa

import (
	"errors"

	apperrors "github.com/kodisha/kodisha/pkg/errors"
)

// Typed failures surfaced to callers. Storage-layer errors never leak
// directly; they are wrapped with package context instead.
var (
	// ErrAlreadyEnabled rejects enrollment while any enabled method exists.
	ErrAlreadyEnabled = errors.New("mfa: a second factor is already enabled")
	// ErrMethodExists rejects inserting a second enabled method of one type.
	ErrMethodExists = errors.New("mfa: an enabled method of this type already exists")
	// ErrSetupExpired signals that the transient enrollment state is gone.
	ErrSetupExpired = errors.New("mfa: enrollment session expired")
	// ErrInvalidToken signals a wrong code during enrollment verification.
	ErrInvalidToken = errors.New("mfa: invalid verification token")
	// ErrDeliveryFailed signals the notification sender could not deliver.
	ErrDeliveryFailed = errors.New("mfa: could not deliver verification code")
	// ErrMethodNotFound signals no method row exists for the user and type.
	ErrMethodNotFound = errors.New("mfa: method not found")
	// ErrNotEnabled signals the user has no enabled second factor.
	ErrNotEnabled = errors.New("mfa: multi-factor authentication not enabled")
	// ErrInvalidChallenge signals a challenge that is missing, expired,
	// terminal, or owned by someone else.
	ErrInvalidChallenge = errors.New("mfa: challenge not found or no longer valid")
)

// APIError maps an engine failure onto the platform's AppError taxonomy so
// the caller can render it to API consumers. Unknown errors map to the
// internal server error with the original attached for logging.
func APIError(err error) *apperrors.AppError {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrAlreadyEnabled), errors.Is(err, ErrMethodExists):
		return apperrors.ErrMFAAlreadyEnabled.WithInternal(err)
	case errors.Is(err, ErrSetupExpired):
		return apperrors.ErrMFASetupExpired.WithInternal(err)
	case errors.Is(err, ErrInvalidToken):
		return apperrors.ErrMFAInvalidCode.WithInternal(err)
	case errors.Is(err, ErrDeliveryFailed):
		return apperrors.ErrMFADeliveryFailed.WithInternal(err)
	case errors.Is(err, ErrNotEnabled), errors.Is(err, ErrMethodNotFound):
		return apperrors.ErrMFANotEnabled.WithInternal(err)
	case errors.Is(err, ErrInvalidChallenge):
		return apperrors.ErrMFAChallengeInvalid.WithInternal(err)
	default:
		return apperrors.ErrInternalServer.WithInternal(err)
	}
}
