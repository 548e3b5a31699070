package mfa

import (
	"regexp"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

var backupCodePattern = regexp.MustCompile(`^[0-9A-F]{4}-[0-9A-F]{4}-[0-9A-F]{4}$`)

func TestGenerateSMSCodeRange(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := GenerateSMSCode()
		require.NoError(t, err)
		require.Len(t, code, 6)

		n, err := strconv.Atoi(code)
		require.NoError(t, err)
		require.GreaterOrEqual(t, n, 100000)
		require.LessOrEqual(t, n, 999999)
	}
}

func TestGenerateBackupCodesFormat(t *testing.T) {
	codes, err := GenerateBackupCodes(10)
	require.NoError(t, err)
	require.Len(t, codes, 10)

	seen := make(map[string]struct{}, len(codes))
	for _, code := range codes {
		require.Regexp(t, backupCodePattern, code)
		seen[code] = struct{}{}
	}
	// collisions in 10 draws from a 48-bit space would point at a broken source
	require.Len(t, seen, 10)
}

func TestGenerateBackupCodesRejectsZeroCount(t *testing.T) {
	_, err := GenerateBackupCodes(0)
	require.Error(t, err)
}
