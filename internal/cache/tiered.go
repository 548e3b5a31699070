package cache

import (
	"context"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/kodisha/kodisha/pkg/logger"
	"github.com/kodisha/kodisha/pkg/metrics"
)

// localEchoTTL bounds how long a durable-tier value lingers in the local map
// after a fallback read. Cached payloads carry their own absolute expiry, so a
// short echo window is safe.
const localEchoTTL = 30 * time.Second

// TieredStore composes the process-local tier with a durable TTL store. Reads
// try the local map first and fall back to the durable tier; writes go to
// both. When the durable tier is unreachable the store degrades to
// single-process operation instead of failing: local writes proceed and the
// outage is logged and counted.
type TieredStore struct {
	local   *MemoryStore
	durable Store
	log     *zap.Logger
}

// TieredOption customises the TieredStore.
type TieredOption func(*TieredStore)

// WithTieredLogger overrides the logger used for degraded-mode warnings.
func WithTieredLogger(log *zap.Logger) TieredOption {
	return func(s *TieredStore) {
		if log != nil {
			s.log = log
		}
	}
}

// NewTieredStore builds a two-tier store. The durable tier may be nil, which
// leaves the store permanently in single-process mode.
func NewTieredStore(durable Store, opts ...TieredOption) *TieredStore {
	store := &TieredStore{
		local:   NewMemoryStore(),
		durable: durable,
		log:     logger.WithModule("cache"),
	}
	for _, opt := range opts {
		opt(store)
	}
	return store
}

// Set writes to both tiers. A durable-tier failure degrades the write to the
// local tier instead of failing it.
func (s *TieredStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if s.durable != nil {
		if err := s.durable.Set(ctx, key, value, ttl); err != nil {
			s.degraded("set", key, err)
		}
	}
	return s.local.Set(ctx, key, value, ttl)
}

// Get looks up the local tier first, falling back to the durable tier and
// repopulating the local map on a hit.
func (s *TieredStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	if value, ok, err := s.local.Get(ctx, key); err == nil && ok {
		return value, true, nil
	}

	if s.durable == nil {
		return nil, false, nil
	}

	value, ok, err := s.durable.Get(ctx, key)
	if err != nil {
		s.degraded("get", key, err)
		return nil, false, nil
	}
	if !ok {
		return nil, false, nil
	}

	_ = s.local.Set(ctx, key, value, localEchoTTL)
	return value, true, nil
}

// GetAuthoritative consults the durable tier first. The local map must never
// reject a request the durable store has already expired or deleted, so
// verification reads come through here; the local value is served only when
// the durable tier is unreachable.
func (s *TieredStore) GetAuthoritative(ctx context.Context, key string) ([]byte, bool, error) {
	if s.durable == nil {
		return s.local.Get(ctx, key)
	}

	value, ok, err := s.durable.Get(ctx, key)
	if err != nil {
		s.degraded("get", key, err)
		return s.local.Get(ctx, key)
	}
	if !ok {
		_ = s.local.Delete(ctx, key)
		return nil, false, nil
	}

	_ = s.local.Set(ctx, key, value, localEchoTTL)
	return value, true, nil
}

// Delete removes the key from both tiers. The local removal always happens;
// errors from the two tiers are combined.
func (s *TieredStore) Delete(ctx context.Context, keys ...string) error {
	var durableErr error
	if s.durable != nil {
		durableErr = s.durable.Delete(ctx, keys...)
		if durableErr != nil {
			for _, key := range keys {
				s.degraded("delete", key, durableErr)
			}
		}
	}
	return multierr.Append(durableErr, s.local.Delete(ctx, keys...))
}

// CompareAndSwap runs the conditional swap against the durable tier and
// mirrors the outcome locally. On a durable outage it falls back to the local
// tier, keeping single-process semantics.
func (s *TieredStore) CompareAndSwap(ctx context.Context, key string, old, next []byte, ttl time.Duration) (bool, error) {
	if s.durable == nil {
		return s.local.CompareAndSwap(ctx, key, old, next, ttl)
	}

	applied, err := s.durable.CompareAndSwap(ctx, key, old, next, ttl)
	if err != nil {
		s.degraded("cas", key, err)
		return s.local.CompareAndSwap(ctx, key, old, next, ttl)
	}
	if applied {
		_ = s.local.Set(ctx, key, next, ttl)
	} else {
		_ = s.local.Delete(ctx, key)
	}
	return applied, nil
}

// CompareAndDelete runs the conditional delete against the durable tier and
// mirrors the outcome locally.
func (s *TieredStore) CompareAndDelete(ctx context.Context, key string, old []byte) (bool, error) {
	if s.durable == nil {
		return s.local.CompareAndDelete(ctx, key, old)
	}

	applied, err := s.durable.CompareAndDelete(ctx, key, old)
	if err != nil {
		s.degraded("cad", key, err)
		return s.local.CompareAndDelete(ctx, key, old)
	}
	_ = s.local.Delete(ctx, key)
	return applied, nil
}

func (s *TieredStore) degraded(op, key string, err error) {
	metrics.CacheDegradedWrites.Inc()
	s.log.Warn("durable cache tier unavailable, serving local tier",
		zap.String("op", op),
		zap.String("key", key),
		zap.Error(err),
	)
}

var _ Store = (*TieredStore)(nil)
