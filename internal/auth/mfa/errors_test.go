package mfa

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	apperrors "github.com/kodisha/kodisha/pkg/errors"
)

func TestAPIErrorMapsSentinels(t *testing.T) {
	cases := []struct {
		in   error
		want *apperrors.AppError
	}{
		{ErrAlreadyEnabled, apperrors.ErrMFAAlreadyEnabled},
		{ErrMethodExists, apperrors.ErrMFAAlreadyEnabled},
		{ErrSetupExpired, apperrors.ErrMFASetupExpired},
		{ErrInvalidToken, apperrors.ErrMFAInvalidCode},
		{ErrDeliveryFailed, apperrors.ErrMFADeliveryFailed},
		{ErrNotEnabled, apperrors.ErrMFANotEnabled},
		{ErrMethodNotFound, apperrors.ErrMFANotEnabled},
		{ErrInvalidChallenge, apperrors.ErrMFAChallengeInvalid},
	}

	for _, tc := range cases {
		got := APIError(tc.in)
		require.Equal(t, tc.want.Code, got.Code, "mapping for %v", tc.in)
		require.ErrorIs(t, got, tc.in)
	}
}

func TestAPIErrorWrappedSentinel(t *testing.T) {
	wrapped := fmt.Errorf("%w: provider said no", ErrDeliveryFailed)
	got := APIError(wrapped)
	require.Equal(t, apperrors.ErrMFADeliveryFailed.Code, got.Code)
}

func TestAPIErrorUnknown(t *testing.T) {
	got := APIError(errors.New("disk on fire"))
	require.Equal(t, apperrors.ErrInternalServer.Code, got.Code)
}

func TestAPIErrorNil(t *testing.T) {
	require.Nil(t, APIError(nil))
}
