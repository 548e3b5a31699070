package app

import (
	"github.com/kodisha/kodisha/internal/auth/mfa"
)

// EngineKey decodes the configured MFA encryption key into raw bytes.
func (s MFASettings) EngineKey() ([]byte, error) {
	return DecodeKey(s.EncryptionKey)
}

// EngineOptions converts the MFA settings into challenge engine options.
// Zero values are skipped so the engine defaults apply.
func (s MFASettings) EngineOptions() []mfa.Option {
	var opts []mfa.Option
	if s.Issuer != "" {
		opts = append(opts, mfa.WithIssuer(s.Issuer))
	}
	if s.ChallengeTTL > 0 {
		opts = append(opts, mfa.WithChallengeTTL(s.ChallengeTTL))
	}
	if s.SetupTTL > 0 {
		opts = append(opts, mfa.WithSetupTTL(s.SetupTTL))
	}
	if s.MaxAttempts > 0 {
		opts = append(opts, mfa.WithMaxAttempts(s.MaxAttempts))
	}
	if s.BackupCodeCount > 0 {
		opts = append(opts, mfa.WithBackupCodeCount(s.BackupCodeCount))
	}
	return opts
}
