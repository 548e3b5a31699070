package models

import (
	"time"

	"gorm.io/datatypes"
)

// MethodType identifies a second-factor variant.
type MethodType string

const (
	MethodTOTP MethodType = "totp"
	MethodSMS  MethodType = "sms"
)

// Valid reports whether the type is one of the supported variants.
func (t MethodType) Valid() bool {
	switch t {
	case MethodTOTP, MethodSMS:
		return true
	}
	return false
}

// MFAMethod is a durable second-factor enrollment for a user. At most one
// enabled row may exist per (user_id, type); the engine checks before insert.
type MFAMethod struct {
	BaseModel

	UserID      string         `gorm:"type:uuid;index:idx_mfa_methods_user_type;not null" json:"user_id"`
	Type        MethodType     `gorm:"size:16;index:idx_mfa_methods_user_type;not null" json:"type"`
	Secret      string         `json:"-"` // AES-256-GCM encrypted TOTP secret, empty for SMS
	PhoneNumber string         `gorm:"size:32" json:"phone_number,omitempty"`
	BackupCodes datatypes.JSON `json:"-"` // bcrypt hashes of unused backup codes
	IsEnabled   bool           `gorm:"index" json:"is_enabled"`
	LastUsedAt  *time.Time     `json:"last_used_at"`
}
