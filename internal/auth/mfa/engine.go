package mfa

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/kodisha/kodisha/internal/models"
	"github.com/kodisha/kodisha/pkg/crypto"
	"github.com/kodisha/kodisha/pkg/logger"
	"github.com/kodisha/kodisha/pkg/metrics"
	"github.com/kodisha/kodisha/pkg/validator"
)

const (
	defaultIssuer          = "Kodisha"
	defaultChallengeTTL    = 5 * time.Minute
	defaultSetupTTL        = 10 * time.Minute
	defaultMaxAttempts     = 3
	defaultBackupCodeCount = 10
	defaultQRCodeSize      = 256

	totpPeriod = 30
	totpSkew   = 2 // accepted steps either side of now, ~60s of drift
)

// Option allows customising the Engine.
type Option func(*Engine)

// WithIssuer overrides the issuer string encoded in provisioning URIs.
func WithIssuer(issuer string) Option {
	return func(e *Engine) {
		if strings.TrimSpace(issuer) != "" {
			e.issuer = issuer
		}
	}
}

// WithChallengeTTL overrides the challenge lifetime.
func WithChallengeTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		if ttl > 0 {
			e.challengeTTL = ttl
		}
	}
}

// WithSetupTTL overrides the lifetime of transient enrollment state.
func WithSetupTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		if ttl > 0 {
			e.setupTTL = ttl
		}
	}
}

// WithMaxAttempts overrides the per-challenge attempt ceiling.
func WithMaxAttempts(attempts int) Option {
	return func(e *Engine) {
		if attempts > 0 {
			e.maxAttempts = attempts
		}
	}
}

// WithBackupCodeCount overrides the number of backup codes generated.
func WithBackupCodeCount(count int) Option {
	return func(e *Engine) {
		if count > 0 {
			e.backupCodes = count
		}
	}
}

// WithQRCodeSize controls the pixel size of generated QR codes.
func WithQRCodeSize(size int) Option {
	return func(e *Engine) {
		if size > 0 {
			e.qrCodeSize = size
		}
	}
}

// WithClock injects a custom clock, primarily for testing.
func WithClock(clock func() time.Time) Option {
	return func(e *Engine) {
		if clock != nil {
			e.now = clock
		}
	}
}

// WithLogger overrides the engine logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) {
		if log != nil {
			e.log = log
		}
	}
}

// Engine orchestrates MFA enrollment, challenge issuance and verification.
// Durable method state lives in the SecretStore; challenges and transient
// enrollment state live in the two-tier challenge cache.
type Engine struct {
	secrets       *SecretStore
	challenges    *challengeStore
	sender        Sender
	encryptionKey []byte

	issuer       string
	challengeTTL time.Duration
	setupTTL     time.Duration
	maxAttempts  int
	backupCodes  int
	qrCodeSize   int
	now          func() time.Time
	log          *zap.Logger
}

// NewEngine constructs the challenge engine. The sender may be nil when SMS
// enrollment is disabled at the platform level; SMS operations then fail with
// ErrDeliveryFailed.
func NewEngine(db *gorm.DB, store ChallengeCache, sender Sender, encryptionKey []byte, opts ...Option) (*Engine, error) {
	if store == nil {
		return nil, errors.New("mfa: challenge cache is required")
	}
	switch len(encryptionKey) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("mfa: encryption key must be 16, 24 or 32 bytes, got %d", len(encryptionKey))
	}

	secrets, err := NewSecretStore(db)
	if err != nil {
		return nil, err
	}

	engine := &Engine{
		secrets:       secrets,
		challenges:    &challengeStore{store: store},
		sender:        sender,
		encryptionKey: encryptionKey,
		issuer:        defaultIssuer,
		challengeTTL:  defaultChallengeTTL,
		setupTTL:      defaultSetupTTL,
		maxAttempts:   defaultMaxAttempts,
		backupCodes:   defaultBackupCodeCount,
		qrCodeSize:    defaultQRCodeSize,
		now:           time.Now,
		log:           logger.WithModule("mfa"),
	}

	for _, opt := range opts {
		opt(engine)
	}

	return engine, nil
}

// TOTPSetup is returned by SetupTOTP for the user to provision an
// authenticator app.
type TOTPSetup struct {
	Secret          string `json:"secret"`
	ProvisioningURL string `json:"provisioning_url"`
	QRCode          []byte `json:"qr_code"`
}

// MethodSummary describes one enabled method in a Status response.
type MethodSummary struct {
	Type        models.MethodType `json:"type"`
	PhoneNumber string            `json:"phone_number,omitempty"`
	LastUsedAt  *time.Time        `json:"last_used_at"`
	CreatedAt   time.Time         `json:"created_at"`
}

// Status is a read-only aggregate over a user's enabled methods.
type Status struct {
	Enabled              bool            `json:"enabled"`
	BackupCodesRemaining int             `json:"backup_codes_remaining"`
	Methods              []MethodSummary `json:"methods"`
}

type setupState struct {
	Secret          string `json:"secret"` // AES-256-GCM encrypted
	ProvisioningURL string `json:"provisioning_url"`
}

// SetupTOTP starts TOTP enrollment. The generated secret is held only in
// transient cache state until the user proves possession; nothing is written
// to the durable store. One enabled second factor per user, regardless of
// type.
func (e *Engine) SetupTOTP(ctx context.Context, userID, accountName string) (*TOTPSetup, error) {
	userID = strings.TrimSpace(userID)
	accountName = strings.TrimSpace(accountName)
	if userID == "" || accountName == "" {
		return nil, errors.New("mfa: user id and account name are required")
	}

	if err := e.requireNoEnabledMethods(ctx, userID); err != nil {
		return nil, err
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      e.issuer,
		AccountName: accountName,
	})
	if err != nil {
		return nil, fmt.Errorf("mfa: generate totp key: %w", err)
	}

	encrypted, err := crypto.Encrypt([]byte(key.Secret()), e.encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("mfa: encrypt setup secret: %w", err)
	}

	if err := e.putSetupState(ctx, userID, setupState{
		Secret:          encrypted,
		ProvisioningURL: key.String(),
	}); err != nil {
		return nil, err
	}

	png, err := qrcode.Encode(key.String(), qrcode.Medium, e.qrCodeSize)
	if err != nil {
		return nil, fmt.Errorf("mfa: encode qr code: %w", err)
	}

	return &TOTPSetup{
		Secret:          key.Secret(),
		ProvisioningURL: key.String(),
		QRCode:          png,
	}, nil
}

// VerifyAndEnableTOTP completes TOTP enrollment: the token must match the
// transient secret inside the tolerant time window. On success the method is
// persisted enabled with a fresh set of backup codes and the transient state
// is removed. On failure nothing changes.
func (e *Engine) VerifyAndEnableTOTP(ctx context.Context, userID, token string) ([]string, error) {
	userID = strings.TrimSpace(userID)
	token = strings.TrimSpace(token)
	if userID == "" || token == "" {
		return nil, errors.New("mfa: user id and token are required")
	}

	state, err := e.getSetupState(ctx, userID)
	if err != nil {
		return nil, err
	}
	if state == nil {
		return nil, ErrSetupExpired
	}

	secret, err := crypto.Decrypt(state.Secret, e.encryptionKey)
	if err != nil {
		return nil, fmt.Errorf("mfa: decrypt setup secret: %w", err)
	}

	if !e.validateTOTP(token, string(secret)) {
		return nil, ErrInvalidToken
	}

	if err := e.requireNoEnabledMethods(ctx, userID); err != nil {
		return nil, err
	}

	codes, hashes, err := e.freshBackupCodes()
	if err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(hashes)
	if err != nil {
		return nil, fmt.Errorf("mfa: encode backup codes: %w", err)
	}

	method := &models.MFAMethod{
		UserID:      userID,
		Type:        models.MethodTOTP,
		Secret:      state.Secret,
		BackupCodes: datatypes.JSON(encoded),
		IsEnabled:   true,
	}
	if err := e.secrets.Create(ctx, method); err != nil {
		return nil, err
	}

	if err := e.challenges.store.Delete(ctx, setupKey(userID)); err != nil {
		e.log.Warn("failed to clear totp setup state", zap.String("user_id", userID), zap.Error(err))
	}

	return codes, nil
}

type smsEnrollmentInput struct {
	UserID      string `json:"user_id" validate:"required"`
	PhoneNumber string `json:"phone_number" validate:"required,e164"`
}

// SetupSMS starts SMS enrollment: it generates a code, delivers it, and only
// then persists a pending challenge. A delivery failure leaves no state
// behind.
func (e *Engine) SetupSMS(ctx context.Context, userID, phoneNumber string) (string, error) {
	userID = strings.TrimSpace(userID)
	phoneNumber = strings.TrimSpace(phoneNumber)
	if err := validator.ValidateStruct(smsEnrollmentInput{UserID: userID, PhoneNumber: phoneNumber}); err != nil {
		return "", fmt.Errorf("mfa: invalid sms enrollment: %w", err)
	}

	if err := e.requireNoEnabledMethods(ctx, userID); err != nil {
		return "", err
	}

	challenge, err := e.issueSMSChallenge(ctx, userID, phoneNumber)
	if err != nil {
		return "", err
	}
	return challenge.ID, nil
}

// VerifyAndEnableSMS completes SMS enrollment against the setup challenge.
func (e *Engine) VerifyAndEnableSMS(ctx context.Context, userID, challengeID, code string) ([]string, error) {
	userID = strings.TrimSpace(userID)
	challengeID = strings.TrimSpace(challengeID)
	code = strings.TrimSpace(code)
	if userID == "" || challengeID == "" || code == "" {
		return nil, errors.New("mfa: user id, challenge id and code are required")
	}

	challenge, raw, err := e.loadPendingChallenge(ctx, challengeID)
	if err != nil {
		return nil, err
	}
	if challenge == nil || challenge.UserID != userID || challenge.Type != models.MethodSMS {
		return nil, ErrInvalidChallenge
	}

	if subtle.ConstantTimeCompare([]byte(challenge.Code), []byte(code)) != 1 {
		e.recordFailedAttempt(ctx, challenge, raw)
		return nil, ErrInvalidToken
	}

	claimed, err := e.challenges.Claim(ctx, challenge.ID, raw)
	if err != nil {
		return nil, err
	}
	if !claimed {
		return nil, ErrInvalidChallenge
	}

	if err := e.requireNoEnabledMethods(ctx, userID); err != nil {
		return nil, err
	}

	codes, hashes, err := e.freshBackupCodes()
	if err != nil {
		return nil, err
	}
	encoded, err := json.Marshal(hashes)
	if err != nil {
		return nil, fmt.Errorf("mfa: encode backup codes: %w", err)
	}

	method := &models.MFAMethod{
		UserID:      userID,
		Type:        models.MethodSMS,
		PhoneNumber: challenge.PhoneNumber,
		BackupCodes: datatypes.JSON(encoded),
		IsEnabled:   true,
	}
	if err := e.secrets.Create(ctx, method); err != nil {
		return nil, err
	}

	metrics.MFAVerifications.WithLabelValues(string(models.MethodSMS), "verified").Inc()
	return codes, nil
}

// CreateChallenge issues a login-time challenge for the user's enabled
// method, preferring preferred when it is enabled. ErrNotEnabled means the
// user has no second factor and the caller can finish authentication without
// one.
func (e *Engine) CreateChallenge(ctx context.Context, userID string, preferred models.MethodType) (string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return "", errors.New("mfa: user id is required")
	}

	methods, err := e.secrets.FindEnabledMethods(ctx, userID)
	if err != nil {
		return "", err
	}
	if len(methods) == 0 {
		return "", ErrNotEnabled
	}

	method := methods[0]
	if preferred.Valid() {
		for _, candidate := range methods {
			if candidate.Type == preferred {
				method = candidate
				break
			}
		}
	}

	switch method.Type {
	case models.MethodSMS:
		challenge, err := e.issueSMSChallenge(ctx, userID, method.PhoneNumber)
		if err != nil {
			return "", err
		}
		return challenge.ID, nil
	case models.MethodTOTP:
		// TOTP challenges carry no expected code; verification always goes
		// through the stored secret.
		challenge := newChallenge(userID, models.MethodTOTP, "", "", e.maxAttempts, e.challengeTTL, e.now().UTC())
		if err := e.challenges.Put(ctx, challenge, e.challengeTTL); err != nil {
			return "", err
		}
		metrics.MFAChallengesIssued.WithLabelValues(string(models.MethodTOTP)).Inc()
		return challenge.ID, nil
	default:
		return "", fmt.Errorf("mfa: unsupported method type %q", method.Type)
	}
}

// VerifyChallenge resolves a login-time challenge. Absence, expiry and
// terminal states are indistinguishable to the caller: all read as false.
// Exactly one of any number of concurrent correct submissions succeeds.
func (e *Engine) VerifyChallenge(ctx context.Context, challengeID, code string) (bool, error) {
	challengeID = strings.TrimSpace(challengeID)
	code = strings.TrimSpace(code)
	if challengeID == "" || code == "" {
		return false, nil
	}

	challenge, raw, err := e.loadPendingChallenge(ctx, challengeID)
	if err != nil {
		return false, err
	}
	if challenge == nil {
		return false, nil
	}

	method, err := e.secrets.FindEnabledMethod(ctx, challenge.UserID, challenge.Type)
	if err != nil {
		return false, err
	}
	if method == nil {
		// orphaned challenge: the method was disabled after issuance
		_ = e.challenges.Delete(ctx, challenge.ID)
		return false, nil
	}

	matched, usedBackup, err := e.matchCode(challenge, method, code)
	if err != nil {
		return false, err
	}

	if !matched {
		e.recordFailedAttempt(ctx, challenge, raw)
		return false, nil
	}

	claimed, err := e.challenges.Claim(ctx, challenge.ID, raw)
	if err != nil {
		return false, err
	}
	if !claimed {
		metrics.MFAVerifications.WithLabelValues(string(challenge.Type), "rejected").Inc()
		return false, nil
	}

	if usedBackup {
		consumed, err := e.secrets.ConsumeBackupCode(ctx, challenge.UserID, code)
		if err != nil {
			return false, err
		}
		if !consumed {
			// lost the race for the code itself; the challenge is already
			// spent, so the caller must request a new one
			metrics.MFAVerifications.WithLabelValues(string(challenge.Type), "rejected").Inc()
			return false, nil
		}
		metrics.MFABackupCodesConsumed.Inc()
	}

	if err := e.secrets.TouchLastUsed(ctx, method.ID, e.now().UTC()); err != nil {
		e.log.Warn("failed to update last used", zap.String("method_id", method.ID), zap.Error(err))
	}

	metrics.MFAVerifications.WithLabelValues(string(challenge.Type), "verified").Inc()
	return true, nil
}

// Disable removes the user's method of the given type. It distinguishes "no
// such method" from "method exists but never finished enrollment".
func (e *Engine) Disable(ctx context.Context, userID string, mtype models.MethodType) (bool, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return false, errors.New("mfa: user id is required")
	}
	if !mtype.Valid() {
		return false, fmt.Errorf("mfa: unsupported method type %q", mtype)
	}

	rows, err := e.secrets.ListByUserAndType(ctx, userID, mtype)
	if err != nil {
		return false, err
	}
	if len(rows) == 0 {
		return false, ErrMethodNotFound
	}

	enabled := false
	for _, row := range rows {
		if row.IsEnabled {
			enabled = true
			break
		}
	}
	if !enabled {
		return false, ErrNotEnabled
	}

	deleted, err := e.secrets.DeleteByUserAndType(ctx, userID, mtype)
	if err != nil {
		return false, err
	}
	return deleted > 0, nil
}

// RegenerateBackupCodes replaces the user's recovery pool. Backup codes are
// shared across methods, so every enabled method row receives the same set.
func (e *Engine) RegenerateBackupCodes(ctx context.Context, userID string) ([]string, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errors.New("mfa: user id is required")
	}

	methods, err := e.secrets.FindEnabledMethods(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(methods) == 0 {
		return nil, ErrNotEnabled
	}

	codes, hashes, err := e.freshBackupCodes()
	if err != nil {
		return nil, err
	}
	if err := e.secrets.ReplaceBackupCodes(ctx, userID, hashes); err != nil {
		return nil, err
	}

	return codes, nil
}

// MFAStatus reports the user's enabled methods and remaining backup codes.
func (e *Engine) MFAStatus(ctx context.Context, userID string) (*Status, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errors.New("mfa: user id is required")
	}

	methods, err := e.secrets.FindEnabledMethods(ctx, userID)
	if err != nil {
		return nil, err
	}

	status := &Status{
		Enabled: len(methods) > 0,
		Methods: make([]MethodSummary, 0, len(methods)),
	}

	for i, method := range methods {
		if i == 0 {
			hashes, err := decodeBackupCodes(method.BackupCodes)
			if err != nil {
				return nil, err
			}
			status.BackupCodesRemaining = len(hashes)
		}
		status.Methods = append(status.Methods, MethodSummary{
			Type:        method.Type,
			PhoneNumber: maskPhone(method.PhoneNumber),
			LastUsedAt:  method.LastUsedAt,
			CreatedAt:   method.CreatedAt,
		})
	}

	return status, nil
}

func (e *Engine) requireNoEnabledMethods(ctx context.Context, userID string) error {
	methods, err := e.secrets.FindEnabledMethods(ctx, userID)
	if err != nil {
		return err
	}
	if len(methods) > 0 {
		return ErrAlreadyEnabled
	}
	return nil
}

func (e *Engine) issueSMSChallenge(ctx context.Context, userID, phoneNumber string) (*Challenge, error) {
	code, err := GenerateSMSCode()
	if err != nil {
		return nil, err
	}

	challenge := newChallenge(userID, models.MethodSMS, code, phoneNumber, e.maxAttempts, e.challengeTTL, e.now().UTC())

	if e.sender == nil {
		return nil, fmt.Errorf("%w: no sender configured", ErrDeliveryFailed)
	}

	message := fmt.Sprintf("Your %s verification code is %s. It expires in %d minutes.",
		e.issuer, code, int(e.challengeTTL.Minutes()))
	result, err := e.sender.Send(ctx, phoneNumber, message)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeliveryFailed, err)
	}
	if !result.Success {
		if result.ProviderError != "" {
			return nil, fmt.Errorf("%w: %s", ErrDeliveryFailed, result.ProviderError)
		}
		return nil, ErrDeliveryFailed
	}

	// persisted only after delivery succeeded
	if err := e.challenges.Put(ctx, challenge, e.challengeTTL); err != nil {
		return nil, err
	}

	metrics.MFAChallengesIssued.WithLabelValues(string(models.MethodSMS)).Inc()
	return challenge, nil
}

// loadPendingChallenge returns (nil, nil, nil) for anything that must read as
// invalid: missing, expired, or already terminal. Expired challenges are
// removed on sight.
func (e *Engine) loadPendingChallenge(ctx context.Context, challengeID string) (*Challenge, []byte, error) {
	challenge, raw, err := e.challenges.Get(ctx, challengeID)
	if err != nil {
		return nil, nil, err
	}
	if challenge == nil {
		return nil, nil, nil
	}

	if challenge.Expired(e.now().UTC()) {
		_ = e.challenges.Delete(ctx, challenge.ID)
		metrics.MFAVerifications.WithLabelValues(string(challenge.Type), "expired").Inc()
		return nil, nil, nil
	}
	if challenge.Status != StatusPending {
		_ = e.challenges.Delete(ctx, challenge.ID)
		return nil, nil, nil
	}

	return challenge, raw, nil
}

// matchCode dispatches on the method type. The backup-code pool is a
// fallback for both variants.
func (e *Engine) matchCode(challenge *Challenge, method *models.MFAMethod, code string) (matched, usedBackup bool, err error) {
	switch challenge.Type {
	case models.MethodSMS:
		if subtle.ConstantTimeCompare([]byte(challenge.Code), []byte(code)) == 1 {
			return true, false, nil
		}
	case models.MethodTOTP:
		secret, decErr := crypto.Decrypt(method.Secret, e.encryptionKey)
		if decErr != nil {
			return false, false, fmt.Errorf("mfa: decrypt secret: %w", decErr)
		}
		if e.validateTOTP(code, string(secret)) {
			return true, false, nil
		}
	default:
		return false, false, fmt.Errorf("mfa: unsupported method type %q", challenge.Type)
	}

	hashes, err := decodeBackupCodes(method.BackupCodes)
	if err != nil {
		return false, false, err
	}
	for _, hash := range hashes {
		if crypto.VerifyCode(hash, code) {
			return true, true, nil
		}
	}

	return false, false, nil
}

// recordFailedAttempt applies the PENDING->PENDING / PENDING->FAILED rules
// with conditional updates. A lost swap means a concurrent attempt already
// moved the challenge on; the budget still holds, so losing silently is fine.
func (e *Engine) recordFailedAttempt(ctx context.Context, challenge *Challenge, raw []byte) {
	for retries := 0; retries < e.maxAttempts; retries++ {
		if challenge.Attempts+1 >= challenge.MaxAttempts {
			claimed, err := e.challenges.Claim(ctx, challenge.ID, raw)
			if err != nil {
				e.log.Warn("failed to finalise exhausted challenge", zap.String("challenge_id", challenge.ID), zap.Error(err))
				return
			}
			if claimed {
				metrics.MFAVerifications.WithLabelValues(string(challenge.Type), "failed").Inc()
				return
			}
		} else {
			next := *challenge
			next.Attempts = challenge.Attempts + 1
			applied, err := e.challenges.Swap(ctx, challenge.ID, raw, &next, challenge.Remaining(e.now().UTC()))
			if err != nil {
				e.log.Warn("failed to record attempt", zap.String("challenge_id", challenge.ID), zap.Error(err))
				return
			}
			if applied {
				metrics.MFAVerifications.WithLabelValues(string(challenge.Type), "rejected").Inc()
				return
			}
		}

		// somebody else mutated the challenge since we read it; re-read and
		// apply the rules against the fresh state
		fresh, freshRaw, err := e.challenges.Get(ctx, challenge.ID)
		if err != nil || fresh == nil || fresh.Status != StatusPending {
			return
		}
		challenge, raw = fresh, freshRaw
	}
}

func (e *Engine) validateTOTP(token, secret string) bool {
	valid, err := totp.ValidateCustom(token, secret, e.now().UTC(), totp.ValidateOpts{
		Period:    totpPeriod,
		Skew:      totpSkew,
		Digits:    otp.DigitsSix,
		Algorithm: otp.AlgorithmSHA1,
	})
	return err == nil && valid
}

// freshBackupCodes returns plaintext codes plus their bcrypt hashes. Hashing
// happens once so every method row stores an identical set.
func (e *Engine) freshBackupCodes() ([]string, []string, error) {
	codes, err := GenerateBackupCodes(e.backupCodes)
	if err != nil {
		return nil, nil, err
	}

	hashes := make([]string, len(codes))
	for i, code := range codes {
		hash, err := crypto.HashCode(code)
		if err != nil {
			return nil, nil, fmt.Errorf("mfa: hash backup code: %w", err)
		}
		hashes[i] = hash
	}

	return codes, hashes, nil
}

func (e *Engine) putSetupState(ctx context.Context, userID string, state setupState) error {
	payload, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("mfa: encode setup state: %w", err)
	}
	return e.challenges.store.Set(ctx, setupKey(userID), payload, e.setupTTL)
}

func (e *Engine) getSetupState(ctx context.Context, userID string) (*setupState, error) {
	raw, ok, err := e.challenges.store.GetAuthoritative(ctx, setupKey(userID))
	if err != nil {
		return nil, fmt.Errorf("mfa: load setup state: %w", err)
	}
	if !ok {
		return nil, nil
	}

	var state setupState
	if err := json.Unmarshal(raw, &state); err != nil {
		return nil, fmt.Errorf("mfa: decode setup state: %w", err)
	}
	return &state, nil
}

func maskPhone(phone string) string {
	if len(phone) <= 3 {
		return phone
	}
	return strings.Repeat("*", len(phone)-3) + phone[len(phone)-3:]
}
