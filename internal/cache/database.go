package cache

import (
	"bytes"
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kodisha/kodisha/internal/models"
)

// DatabaseStore implements the durable cache tier on the primary SQL database.
// Conditional operations run inside row-locked transactions so the value
// comparison and the write cannot interleave with a concurrent mutation.
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore constructs a database-backed Store.
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	if db == nil {
		return nil
	}
	return &DatabaseStore{db: db}
}

// Set upserts the value for a given key with expiry, bumping the version.
func (s *DatabaseStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s == nil {
		return errors.New("cache: database store not initialised")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	expiry := time.Time{}
	if ttl > 0 {
		expiry = time.Now().Add(ttl)
	}

	entry := models.CacheEntry{
		Key:       key,
		Value:     value,
		Version:   1,
		ExpiresAt: expiry,
	}

	return s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "key"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"value":      value,
				"expires_at": expiry,
				"version":    gorm.Expr("version + 1"),
			}),
		}).Create(&entry).Error
}

// Get retrieves a value by key, respecting expiry.
func (s *DatabaseStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if s == nil {
		return nil, false, errors.New("cache: database store not initialised")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	var entry models.CacheEntry
	err := s.db.WithContext(ctx).Take(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	if entry.Expired(time.Now()) {
		_ = s.Delete(ctx, key)
		return nil, false, nil
	}

	return entry.Value, true, nil
}

// Delete removes keys from the store.
func (s *DatabaseStore) Delete(ctx context.Context, keys ...string) error {
	if s == nil {
		return errors.New("cache: database store not initialised")
	}
	if len(keys) == 0 {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}

	return s.db.WithContext(ctx).Where("key IN ?", keys).Delete(&models.CacheEntry{}).Error
}

// CompareAndSwap replaces the value for key only when the stored bytes equal old.
func (s *DatabaseStore) CompareAndSwap(ctx context.Context, key string, old, next []byte, ttl time.Duration) (bool, error) {
	if s == nil {
		return false, errors.New("cache: database store not initialised")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	expiry := time.Time{}
	if ttl > 0 {
		expiry = time.Now().Add(ttl)
	}

	swapped := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry, ok, err := lockEntry(tx, key)
		if err != nil || !ok {
			return err
		}
		if !bytes.Equal(entry.Value, old) {
			return nil
		}

		swapped = true
		return tx.Model(&models.CacheEntry{}).
			Where("key = ?", key).
			Updates(map[string]interface{}{
				"value":      next,
				"expires_at": expiry,
				"version":    gorm.Expr("version + 1"),
			}).Error
	})
	return swapped, err
}

// CompareAndDelete removes the key only when the stored bytes equal old.
func (s *DatabaseStore) CompareAndDelete(ctx context.Context, key string, old []byte) (bool, error) {
	if s == nil {
		return false, errors.New("cache: database store not initialised")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	deleted := false
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		entry, ok, err := lockEntry(tx, key)
		if err != nil || !ok {
			return err
		}
		if !bytes.Equal(entry.Value, old) {
			return nil
		}

		deleted = true
		return tx.Where("key = ?", key).Delete(&models.CacheEntry{}).Error
	})
	return deleted, err
}

func lockEntry(tx *gorm.DB, key string) (*models.CacheEntry, bool, error) {
	var entry models.CacheEntry
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Take(&entry, "key = ?", key).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if entry.Expired(time.Now()) {
		return nil, false, nil
	}
	return &entry, true, nil
}
