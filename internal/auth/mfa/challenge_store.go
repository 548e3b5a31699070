package mfa

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kodisha/kodisha/internal/cache"
)

const (
	challengeKeyPrefix = "mfa:challenges:"
	setupKeyPrefix     = "mfa:setup:totp:"
)

// ChallengeCache is the two-tier ephemeral store the engine keeps challenges
// in. GetAuthoritative prefers the durable tier so a stale local copy can
// never resurrect a challenge another instance already consumed.
type ChallengeCache interface {
	cache.Store
	GetAuthoritative(ctx context.Context, key string) ([]byte, bool, error)
}

// challengeStore handles (de)serialisation and conditional transitions for
// challenges. The raw bytes read from the cache double as the compare value
// for swaps, so every mutation is conditional on the exact state it observed.
type challengeStore struct {
	store ChallengeCache
}

func challengeKey(id string) string {
	return challengeKeyPrefix + id
}

func setupKey(userID string) string {
	return setupKeyPrefix + userID
}

// Put writes a fresh challenge with the supplied TTL.
func (s *challengeStore) Put(ctx context.Context, challenge *Challenge, ttl time.Duration) error {
	payload, err := json.Marshal(challenge)
	if err != nil {
		return fmt.Errorf("mfa: encode challenge: %w", err)
	}
	return s.store.Set(ctx, challengeKey(challenge.ID), payload, ttl)
}

// Get loads a challenge through the authoritative read path. The returned raw
// bytes are the compare value for later conditional mutations.
func (s *challengeStore) Get(ctx context.Context, id string) (*Challenge, []byte, error) {
	raw, ok, err := s.store.GetAuthoritative(ctx, challengeKey(id))
	if err != nil {
		return nil, nil, fmt.Errorf("mfa: load challenge: %w", err)
	}
	if !ok {
		return nil, nil, nil
	}

	var challenge Challenge
	if err := json.Unmarshal(raw, &challenge); err != nil {
		return nil, nil, fmt.Errorf("mfa: decode challenge: %w", err)
	}
	return &challenge, raw, nil
}

// Delete unconditionally removes a challenge from both tiers.
func (s *challengeStore) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, challengeKey(id))
}

// Claim removes the challenge only when its stored state still equals the
// bytes observed at read time. Exactly one of any number of concurrent
// claimants wins.
func (s *challengeStore) Claim(ctx context.Context, id string, observed []byte) (bool, error) {
	claimed, err := s.store.CompareAndDelete(ctx, challengeKey(id), observed)
	if err != nil {
		return false, fmt.Errorf("mfa: claim challenge: %w", err)
	}
	return claimed, nil
}

// Swap replaces the observed challenge state with next, keeping ttl. It fails
// (without error) when a concurrent mutation got there first.
func (s *challengeStore) Swap(ctx context.Context, id string, observed []byte, next *Challenge, ttl time.Duration) (bool, error) {
	payload, err := json.Marshal(next)
	if err != nil {
		return false, fmt.Errorf("mfa: encode challenge: %w", err)
	}
	applied, err := s.store.CompareAndSwap(ctx, challengeKey(id), observed, payload, ttl)
	if err != nil {
		return false, fmt.Errorf("mfa: swap challenge: %w", err)
	}
	return applied, nil
}
