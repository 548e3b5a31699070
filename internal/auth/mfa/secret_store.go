package mfa

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/kodisha/kodisha/internal/models"
	"github.com/kodisha/kodisha/pkg/crypto"
)

// SecretStore is the durable side of the subsystem: CRUD over MFAMethod rows
// plus the two conditional mutations that must not run as plain
// read-modify-write (backup-code consumption and replacement).
type SecretStore struct {
	db *gorm.DB
}

// NewSecretStore wraps the shared database handle.
func NewSecretStore(db *gorm.DB) (*SecretStore, error) {
	if db == nil {
		return nil, errors.New("mfa: db is required")
	}
	return &SecretStore{db: db}, nil
}

// FindEnabledMethods returns all enabled methods for the user, oldest first.
// An empty result is not an error.
func (s *SecretStore) FindEnabledMethods(ctx context.Context, userID string) ([]models.MFAMethod, error) {
	var methods []models.MFAMethod
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND is_enabled = ?", userID, true).
		Order("created_at ASC").
		Find(&methods).Error
	if err != nil {
		return nil, fmt.Errorf("mfa: list enabled methods: %w", err)
	}
	return methods, nil
}

// FindMethod returns the newest method row for (user, type), enabled or not.
// A missing row returns (nil, nil).
func (s *SecretStore) FindMethod(ctx context.Context, userID string, mtype models.MethodType) (*models.MFAMethod, error) {
	var method models.MFAMethod
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND type = ?", userID, mtype).
		Order("created_at DESC").
		First(&method).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mfa: load method: %w", err)
	}
	return &method, nil
}

// FindEnabledMethod returns the enabled method for (user, type), or (nil, nil).
func (s *SecretStore) FindEnabledMethod(ctx context.Context, userID string, mtype models.MethodType) (*models.MFAMethod, error) {
	var method models.MFAMethod
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND type = ? AND is_enabled = ?", userID, mtype, true).
		First(&method).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("mfa: load enabled method: %w", err)
	}
	return &method, nil
}

// Create inserts a method after checking no enabled method of the same type
// exists for the user.
func (s *SecretStore) Create(ctx context.Context, method *models.MFAMethod) error {
	existing, err := s.FindEnabledMethod(ctx, method.UserID, method.Type)
	if err != nil {
		return err
	}
	if existing != nil {
		return ErrMethodExists
	}

	if err := s.db.WithContext(ctx).Create(method).Error; err != nil {
		return fmt.Errorf("mfa: create method: %w", err)
	}
	return nil
}

// Update persists in-place changes to a method row.
func (s *SecretStore) Update(ctx context.Context, method *models.MFAMethod) error {
	if err := s.db.WithContext(ctx).Save(method).Error; err != nil {
		return fmt.Errorf("mfa: update method: %w", err)
	}
	return nil
}

// DeleteByUserAndType removes all rows of the given type for the user and
// returns how many were deleted.
func (s *SecretStore) DeleteByUserAndType(ctx context.Context, userID string, mtype models.MethodType) (int64, error) {
	result := s.db.WithContext(ctx).
		Where("user_id = ? AND type = ?", userID, mtype).
		Delete(&models.MFAMethod{})
	if result.Error != nil {
		return 0, fmt.Errorf("mfa: delete methods: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// ListByUserAndType returns every row (enabled or not) for (user, type).
func (s *SecretStore) ListByUserAndType(ctx context.Context, userID string, mtype models.MethodType) ([]models.MFAMethod, error) {
	var methods []models.MFAMethod
	err := s.db.WithContext(ctx).
		Where("user_id = ? AND type = ?", userID, mtype).
		Find(&methods).Error
	if err != nil {
		return nil, fmt.Errorf("mfa: list methods: %w", err)
	}
	return methods, nil
}

// TouchLastUsed stamps the method's last successful verification time.
func (s *SecretStore) TouchLastUsed(ctx context.Context, methodID string, when time.Time) error {
	err := s.db.WithContext(ctx).
		Model(&models.MFAMethod{}).
		Where("id = ?", methodID).
		Update("last_used_at", &when).Error
	if err != nil {
		return fmt.Errorf("mfa: update last used: %w", err)
	}
	return nil
}

// ConsumeBackupCode removes the backup code from every enabled method of the
// user, atomically. Rows are locked for the duration of the transaction so
// two concurrent consumers of the same code cannot both succeed. Backup codes
// are a per-user pool fanned out identically to each method row, so one
// matching hash is removed from all rows.
func (s *SecretStore) ConsumeBackupCode(ctx context.Context, userID, code string) (bool, error) {
	consumed := false

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var methods []models.MFAMethod
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("user_id = ? AND is_enabled = ?", userID, true).
			Find(&methods).Error
		if err != nil {
			return err
		}
		if len(methods) == 0 {
			return nil
		}

		hashes, err := decodeBackupCodes(methods[0].BackupCodes)
		if err != nil {
			return err
		}

		match := -1
		for i, hash := range hashes {
			if crypto.VerifyCode(hash, code) {
				match = i
				break
			}
		}
		if match == -1 {
			return nil
		}
		matchedHash := hashes[match]

		for i := range methods {
			rowHashes, err := decodeBackupCodes(methods[i].BackupCodes)
			if err != nil {
				return err
			}
			remaining := rowHashes[:0]
			for _, hash := range rowHashes {
				if hash != matchedHash {
					remaining = append(remaining, hash)
				}
			}
			encoded, err := json.Marshal(remaining)
			if err != nil {
				return err
			}
			if err := tx.Model(&methods[i]).Update("backup_codes", string(encoded)).Error; err != nil {
				return err
			}
		}

		consumed = true
		return nil
	})
	if err != nil {
		return false, fmt.Errorf("mfa: consume backup code: %w", err)
	}
	return consumed, nil
}

// ReplaceBackupCodes overwrites the backup codes of every enabled method with
// the supplied hashes in a single transaction.
func (s *SecretStore) ReplaceBackupCodes(ctx context.Context, userID string, hashes []string) error {
	encoded, err := json.Marshal(hashes)
	if err != nil {
		return fmt.Errorf("mfa: encode backup codes: %w", err)
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return tx.Model(&models.MFAMethod{}).
			Where("user_id = ? AND is_enabled = ?", userID, true).
			Update("backup_codes", string(encoded)).Error
	})
	if err != nil {
		return fmt.Errorf("mfa: replace backup codes: %w", err)
	}
	return nil
}

func decodeBackupCodes(data []byte) ([]string, error) {
	if len(data) == 0 {
		return nil, nil
	}
	var hashes []string
	if err := json.Unmarshal(data, &hashes); err != nil {
		return nil, fmt.Errorf("mfa: decode backup codes: %w", err)
	}
	return hashes, nil
}
