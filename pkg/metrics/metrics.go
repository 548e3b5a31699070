package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// MFAChallengesIssued counts issued challenges by method type (totp|sms).
	MFAChallengesIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kodisha_mfa_challenges_total",
			Help: "Total number of MFA challenges issued",
		},
		[]string{"type"},
	)

	// MFAVerifications counts verification attempts by outcome
	// (verified|rejected|failed|expired).
	MFAVerifications = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "kodisha_mfa_verifications_total",
			Help: "Total number of MFA verification attempts",
		},
		[]string{"type", "outcome"},
	)

	// MFABackupCodesConsumed counts consumed backup codes.
	MFABackupCodesConsumed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kodisha_mfa_backup_codes_consumed_total",
			Help: "Total number of backup codes consumed",
		},
	)

	// CacheDegradedWrites counts cache writes served by the local tier only
	// because the durable tier was unavailable.
	CacheDegradedWrites = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "kodisha_cache_degraded_writes_total",
			Help: "Cache writes that could not reach the durable tier",
		},
	)
)
