package mfa

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"
	"math/big"
	"strings"
)

const (
	smsCodeMin = 100000
	smsCodeMax = 999999

	backupCodeGroups    = 3
	backupCodeGroupSize = 2 // bytes per group, rendered as 4 hex characters
)

// GenerateSMSCode returns a 6-digit numeric code in [100000, 999999] drawn
// from crypto/rand.
func GenerateSMSCode() (string, error) {
	span := big.NewInt(smsCodeMax - smsCodeMin + 1)
	n, err := rand.Int(rand.Reader, span)
	if err != nil {
		return "", fmt.Errorf("mfa: generate sms code: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+smsCodeMin), nil
}

// GenerateBackupCodes returns count one-time recovery codes in the
// XXXX-XXXX-XXXX format: three random 2-byte groups rendered as uppercase
// hexadecimal.
func GenerateBackupCodes(count int) ([]string, error) {
	if count <= 0 {
		return nil, fmt.Errorf("mfa: backup code count must be positive, got %d", count)
	}

	codes := make([]string, count)
	for i := range codes {
		code, err := generateBackupCode()
		if err != nil {
			return nil, fmt.Errorf("mfa: generate backup code: %w", err)
		}
		codes[i] = code
	}
	return codes, nil
}

func generateBackupCode() (string, error) {
	groups := make([]string, backupCodeGroups)
	for i := range groups {
		buf := make([]byte, backupCodeGroupSize)
		if _, err := rand.Read(buf); err != nil {
			return "", err
		}
		groups[i] = fmt.Sprintf("%04X", binary.BigEndian.Uint16(buf))
	}
	return strings.Join(groups, "-"), nil
}
