package app

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join("testdata")
	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, "debug", cfg.Server.LogLevel)

	require.Equal(t, "postgres", cfg.Database.Driver)
	require.True(t, cfg.Database.Postgres.Enabled)
	require.Equal(t, "db.example.com", cfg.Database.Postgres.Host)
	require.Equal(t, 5433, cfg.Database.Postgres.Port)

	require.True(t, cfg.Cache.Redis.Enabled)
	require.Equal(t, "redis.example.com:6380", cfg.Cache.Redis.Address)
	require.Equal(t, 2, cfg.Cache.Redis.DB)
	require.True(t, cfg.Cache.Redis.TLS)
	require.Equal(t, 3*time.Second, cfg.Cache.Redis.Timeout)

	require.Equal(t, "Kodisha Staging", cfg.Auth.MFA.Issuer)
	require.Equal(t, 2*time.Minute, cfg.Auth.MFA.ChallengeTTL)
	require.Equal(t, 20*time.Minute, cfg.Auth.MFA.SetupTTL)
	require.Equal(t, 5, cfg.Auth.MFA.MaxAttempts)
	require.Equal(t, 12, cfg.Auth.MFA.BackupCodeCount)

	require.True(t, cfg.SMS.Enabled)
	require.Equal(t, "KodishaTest", cfg.SMS.From)
	require.Equal(t, "https://sms.example.com/v1/messages", cfg.SMS.URL)
	require.Equal(t, 15*time.Second, cfg.SMS.Timeout)
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.False(t, cfg.Cache.Redis.Enabled)
	require.Equal(t, 5*time.Second, cfg.Cache.Redis.Timeout)
	require.Equal(t, "Kodisha", cfg.Auth.MFA.Issuer)
	require.Equal(t, 5*time.Minute, cfg.Auth.MFA.ChallengeTTL)
	require.Equal(t, 10*time.Minute, cfg.Auth.MFA.SetupTTL)
	require.Equal(t, 3, cfg.Auth.MFA.MaxAttempts)
	require.Equal(t, 10, cfg.Auth.MFA.BackupCodeCount)
	require.False(t, cfg.SMS.Enabled)
}

func TestLoadConfigEnvOverride(t *testing.T) {
	t.Setenv("KODISHA_SERVER_PORT", "9191")
	t.Setenv("KODISHA_AUTH_MFA_MAX_ATTEMPTS", "7")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, 9191, cfg.Server.Port)
	require.Equal(t, 7, cfg.Auth.MFA.MaxAttempts)
}

func TestRedisClientConfigAdapter(t *testing.T) {
	cfg := CacheConfig{Redis: RedisCacheConfig{
		Address:  "  redis.internal:6379  ",
		Username: " user ",
		Password: "pass",
		DB:       1,
		TLS:      true,
		Timeout:  2 * time.Second,
	}}

	rc := cfg.RedisClientConfig()
	require.Equal(t, "redis.internal:6379", rc.Address)
	require.Equal(t, "user", rc.Username)
	require.Equal(t, "pass", rc.Password)
	require.Equal(t, 1, rc.DB)
	require.True(t, rc.TLS)
	require.Equal(t, 2*time.Second, rc.Timeout)
}

func TestConnectionConfigAdapter(t *testing.T) {
	cfg := DatabaseConfig{
		Driver: "Postgres",
		Postgres: DBAuthConfig{
			Enabled:  true,
			Host:     "db.internal",
			Port:     5432,
			Database: "kodisha",
			Username: "svc",
			Password: "secret",
		},
		MySQL: DBAuthConfig{Enabled: true, Host: "ignored"},
	}

	conn := cfg.ConnectionConfig()
	require.Equal(t, "postgres", conn.Driver)
	require.Equal(t, "db.internal", conn.Host)
	require.Equal(t, 5432, conn.Port)
	require.Equal(t, "kodisha", conn.Name)
	require.Equal(t, "svc", conn.User)
	require.Equal(t, "secret", conn.Password)

	sqlite := DatabaseConfig{Driver: "sqlite", Path: "./data/test.sqlite"}
	conn = sqlite.ConnectionConfig()
	require.Equal(t, "sqlite", conn.Driver)
	require.Equal(t, "./data/test.sqlite", conn.Path)
	require.Empty(t, conn.Host)
}

func TestMFASettingsEngineOptions(t *testing.T) {
	settings := MFASettings{}
	require.Empty(t, settings.EngineOptions())

	settings = MFASettings{
		Issuer:          "Kodisha",
		ChallengeTTL:    time.Minute,
		SetupTTL:        time.Minute,
		MaxAttempts:     5,
		BackupCodeCount: 8,
	}
	require.Len(t, settings.EngineOptions(), 5)
}

func TestApplyRuntimeDefaults(t *testing.T) {
	cfg := &Config{}
	generated, err := ApplyRuntimeDefaults(cfg)
	require.NoError(t, err)
	require.True(t, generated["auth.mfa.encryption_key"])
	require.NotEmpty(t, cfg.Auth.MFA.EncryptionKey)

	key, err := cfg.Auth.MFA.EngineKey()
	require.NoError(t, err)
	require.Len(t, key, 32)

	// an explicit key is never replaced
	again, err := ApplyRuntimeDefaults(cfg)
	require.NoError(t, err)
	require.Empty(t, again)
}

func TestSMSConfigSender(t *testing.T) {
	disabled := SMSConfig{}
	sender, err := disabled.Sender()
	require.NoError(t, err)
	require.NotNil(t, sender)

	enabled := SMSConfig{Enabled: true, URL: "https://sms.example.com/v1/messages", APIKey: "key"}
	sender, err = enabled.Sender()
	require.NoError(t, err)
	require.NotNil(t, sender)

	broken := SMSConfig{Enabled: true}
	_, err = broken.Sender()
	require.Error(t, err)
}

func TestDecodeKey(t *testing.T) {
	decoded, err := DecodeKey("00112233445566778899aabbccddeeff")
	require.NoError(t, err)
	require.Len(t, decoded, 16)

	decoded, err = DecodeKey("AAECAwQFBgcICQoLDA0ODw==")
	require.NoError(t, err)
	require.Len(t, decoded, 16)

	decoded, err = DecodeKey("raw-passphrase-value!")
	require.NoError(t, err)
	require.Equal(t, []byte("raw-passphrase-value!"), decoded)

	_, err = DecodeKey("   ")
	require.Error(t, err)
}
