package mfa

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/kodisha/kodisha/internal/database"
	"github.com/kodisha/kodisha/internal/models"
	"github.com/kodisha/kodisha/pkg/crypto"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(database.Config{Driver: "sqlite"})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

func hashedCodesJSON(t *testing.T, codes []string) datatypes.JSON {
	t.Helper()

	hashes := make([]string, len(codes))
	for i, code := range codes {
		hash, err := crypto.HashCode(code)
		require.NoError(t, err)
		hashes[i] = hash
	}
	encoded, err := json.Marshal(hashes)
	require.NoError(t, err)
	return datatypes.JSON(encoded)
}

func TestSecretStoreCreateRejectsDuplicateEnabledType(t *testing.T) {
	db := openTestDB(t)
	store, err := NewSecretStore(db)
	require.NoError(t, err)
	ctx := context.Background()

	first := &models.MFAMethod{UserID: "store-user-1", Type: models.MethodTOTP, IsEnabled: true}
	require.NoError(t, store.Create(ctx, first))

	second := &models.MFAMethod{UserID: "store-user-1", Type: models.MethodTOTP, IsEnabled: true}
	require.ErrorIs(t, store.Create(ctx, second), ErrMethodExists)

	// a different type is only blocked by engine policy, not by the store
	sms := &models.MFAMethod{UserID: "store-user-1", Type: models.MethodSMS, IsEnabled: true}
	require.NoError(t, store.Create(ctx, sms))
}

func TestSecretStoreFindMethodMissingIsNil(t *testing.T) {
	store, err := NewSecretStore(openTestDB(t))
	require.NoError(t, err)

	method, err := store.FindMethod(context.Background(), "nobody", models.MethodTOTP)
	require.NoError(t, err)
	require.Nil(t, method)
}

func TestSecretStoreConsumeBackupCodeRemovesFromAllRows(t *testing.T) {
	db := openTestDB(t)
	store, err := NewSecretStore(db)
	require.NoError(t, err)
	ctx := context.Background()

	codes := []string{"1111-2222-3333", "4444-5555-6666"}
	shared := hashedCodesJSON(t, codes)

	require.NoError(t, db.Create(&models.MFAMethod{
		UserID: "store-user-2", Type: models.MethodTOTP, IsEnabled: true, BackupCodes: shared,
	}).Error)
	require.NoError(t, db.Create(&models.MFAMethod{
		UserID: "store-user-2", Type: models.MethodSMS, IsEnabled: true, BackupCodes: shared,
	}).Error)

	consumed, err := store.ConsumeBackupCode(ctx, "store-user-2", codes[0])
	require.NoError(t, err)
	require.True(t, consumed)

	var rows []models.MFAMethod
	require.NoError(t, db.Where("user_id = ?", "store-user-2").Find(&rows).Error)
	require.Len(t, rows, 2)
	for _, row := range rows {
		hashes, err := decodeBackupCodes(row.BackupCodes)
		require.NoError(t, err)
		require.Len(t, hashes, 1)
		require.True(t, crypto.VerifyCode(hashes[0], codes[1]))
	}

	// a consumed code never verifies again
	consumed, err = store.ConsumeBackupCode(ctx, "store-user-2", codes[0])
	require.NoError(t, err)
	require.False(t, consumed)
}

func TestSecretStoreConsumeBackupCodeUnknownCode(t *testing.T) {
	db := openTestDB(t)
	store, err := NewSecretStore(db)
	require.NoError(t, err)

	require.NoError(t, db.Create(&models.MFAMethod{
		UserID: "store-user-3", Type: models.MethodTOTP, IsEnabled: true,
		BackupCodes: hashedCodesJSON(t, []string{"AAAA-BBBB-CCCC"}),
	}).Error)

	consumed, err := store.ConsumeBackupCode(context.Background(), "store-user-3", "0000-0000-0000")
	require.NoError(t, err)
	require.False(t, consumed)
}

func TestSecretStoreReplaceBackupCodesFansOut(t *testing.T) {
	db := openTestDB(t)
	store, err := NewSecretStore(db)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.MFAMethod{
		UserID: "store-user-4", Type: models.MethodTOTP, IsEnabled: true,
	}).Error)
	require.NoError(t, db.Create(&models.MFAMethod{
		UserID: "store-user-4", Type: models.MethodSMS, IsEnabled: true,
	}).Error)
	require.NoError(t, db.Create(&models.MFAMethod{
		UserID: "store-user-4", Type: models.MethodSMS, IsEnabled: false,
	}).Error)

	hashes := []string{"hash-a", "hash-b"}
	require.NoError(t, store.ReplaceBackupCodes(ctx, "store-user-4", hashes))

	var enabled []models.MFAMethod
	require.NoError(t, db.Where("user_id = ? AND is_enabled = ?", "store-user-4", true).Find(&enabled).Error)
	require.Len(t, enabled, 2)
	for _, row := range enabled {
		require.JSONEq(t, `["hash-a","hash-b"]`, string(row.BackupCodes))
	}

	// disabled rows keep their old state
	var disabled models.MFAMethod
	require.NoError(t, db.Where("user_id = ? AND is_enabled = ?", "store-user-4", false).Take(&disabled).Error)
	require.Empty(t, []byte(disabled.BackupCodes))
}

func TestSecretStoreDeleteByUserAndType(t *testing.T) {
	db := openTestDB(t)
	store, err := NewSecretStore(db)
	require.NoError(t, err)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.MFAMethod{UserID: "store-user-5", Type: models.MethodSMS, IsEnabled: true}).Error)
	require.NoError(t, db.Create(&models.MFAMethod{UserID: "store-user-5", Type: models.MethodSMS, IsEnabled: false}).Error)

	count, err := store.DeleteByUserAndType(ctx, "store-user-5", models.MethodSMS)
	require.NoError(t, err)
	require.EqualValues(t, 2, count)

	count, err = store.DeleteByUserAndType(ctx, "store-user-5", models.MethodSMS)
	require.NoError(t, err)
	require.Zero(t, count)
}
