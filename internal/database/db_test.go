package database

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/kodisha/kodisha/internal/models"
)

func TestOpenSQLiteInMemoryAndMigrate(t *testing.T) {
	db, err := Open(Config{Driver: "sqlite"})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	require.NoError(t, AutoMigrate(db))

	method := models.MFAMethod{
		UserID:    "user-1",
		Type:      models.MethodTOTP,
		IsEnabled: true,
	}
	require.NoError(t, db.Create(&method).Error)
	require.NotEmpty(t, method.ID)

	var count int64
	require.NoError(t, db.Model(&models.MFAMethod{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "oracle"})
	require.Error(t, err)
}

func TestBuildPostgresDSNDefaults(t *testing.T) {
	dsn, err := buildPostgresDSN(Config{User: "kodisha", Name: "kodisha"})
	require.NoError(t, err)
	require.Contains(t, dsn, "host=localhost")
	require.Contains(t, dsn, "port=5432")
	require.Contains(t, dsn, "sslmode=disable")
}

func TestBuildMySQLDSNRequiresUser(t *testing.T) {
	_, err := buildMySQLDSN(Config{Name: "kodisha"})
	require.Error(t, err)
}
