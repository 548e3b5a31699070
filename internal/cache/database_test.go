package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kodisha/kodisha/internal/database"
	"github.com/kodisha/kodisha/internal/models"
)

func openCacheTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := database.Open(database.Config{Driver: "sqlite"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.CacheEntry{}))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

func TestDatabaseStoreRoundTrip(t *testing.T) {
	store := NewDatabaseStore(openCacheTestDB(t))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "challenge:abc", []byte(`{"status":"pending"}`), time.Minute))

	value, ok, err := store.Get(ctx, "challenge:abc")
	require.NoError(t, err)
	require.True(t, ok)
	require.JSONEq(t, `{"status":"pending"}`, string(value))

	require.NoError(t, store.Delete(ctx, "challenge:abc"))

	_, ok, err = store.Get(ctx, "challenge:abc")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestDatabaseStoreSetBumpsVersion(t *testing.T) {
	db := openCacheTestDB(t)
	store := NewDatabaseStore(db)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("a"), time.Minute))
	require.NoError(t, store.Set(ctx, "k", []byte("b"), time.Minute))

	var entry models.CacheEntry
	require.NoError(t, db.Take(&entry, "key = ?", "k").Error)
	require.Equal(t, []byte("b"), entry.Value)
	require.EqualValues(t, 2, entry.Version)
}

func TestDatabaseStoreExpiredEntryIsMiss(t *testing.T) {
	db := openCacheTestDB(t)
	store := NewDatabaseStore(db)
	ctx := context.Background()

	entry := models.CacheEntry{
		Key:       "stale",
		Value:     []byte("v"),
		ExpiresAt: time.Now().Add(-time.Second),
	}
	require.NoError(t, db.Create(&entry).Error)

	_, ok, err := store.Get(ctx, "stale")
	require.NoError(t, err)
	require.False(t, ok)

	// lazy expiry removed the row
	var count int64
	require.NoError(t, db.Model(&models.CacheEntry{}).Where("key = ?", "stale").Count(&count).Error)
	require.Zero(t, count)
}

func TestDatabaseStoreCompareAndSwap(t *testing.T) {
	store := NewDatabaseStore(openCacheTestDB(t))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("old"), time.Minute))

	applied, err := store.CompareAndSwap(ctx, "k", []byte("mismatch"), []byte("next"), time.Minute)
	require.NoError(t, err)
	require.False(t, applied)

	applied, err = store.CompareAndSwap(ctx, "k", []byte("old"), []byte("next"), time.Minute)
	require.NoError(t, err)
	require.True(t, applied)

	value, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("next"), value)
}

func TestDatabaseStoreCompareAndSwapMissingKey(t *testing.T) {
	store := NewDatabaseStore(openCacheTestDB(t))

	applied, err := store.CompareAndSwap(context.Background(), "absent", []byte("a"), []byte("b"), time.Minute)
	require.NoError(t, err)
	require.False(t, applied)
}

func TestDatabaseStoreCompareAndDeleteSingleWinner(t *testing.T) {
	store := NewDatabaseStore(openCacheTestDB(t))
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), time.Minute))

	first, err := store.CompareAndDelete(ctx, "k", []byte("v"))
	require.NoError(t, err)
	second, err := store.CompareAndDelete(ctx, "k", []byte("v"))
	require.NoError(t, err)

	require.True(t, first)
	require.False(t, second)
}
