package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// failingStore simulates a durable tier outage.
type failingStore struct{}

var errOutage = errors.New("durable tier unreachable")

func (failingStore) Set(context.Context, string, []byte, time.Duration) error {
	return errOutage
}

func (failingStore) Get(context.Context, string) ([]byte, bool, error) {
	return nil, false, errOutage
}

func (failingStore) Delete(context.Context, ...string) error {
	return errOutage
}

func (failingStore) CompareAndSwap(context.Context, string, []byte, []byte, time.Duration) (bool, error) {
	return false, errOutage
}

func (failingStore) CompareAndDelete(context.Context, string, []byte) (bool, error) {
	return false, errOutage
}

func TestTieredWritesBothTiers(t *testing.T) {
	durable := NewMemoryStore()
	tiered := NewTieredStore(durable)
	ctx := context.Background()

	require.NoError(t, tiered.Set(ctx, "k", []byte("v"), time.Minute))

	value, ok, err := durable.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v"), value)

	value, ok, err = tiered.local.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v"), value)
}

func TestTieredGetFallsBackToDurable(t *testing.T) {
	durable := NewMemoryStore()
	tiered := NewTieredStore(durable)
	ctx := context.Background()

	// written by another process: only in the durable tier
	require.NoError(t, durable.Set(ctx, "k", []byte("v"), time.Minute))

	value, ok, err := tiered.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v"), value)

	// fallback repopulated the local map
	_, ok, err = tiered.local.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestTieredAuthoritativeReadIgnoresStaleLocal(t *testing.T) {
	durable := NewMemoryStore()
	tiered := NewTieredStore(durable)
	ctx := context.Background()

	require.NoError(t, tiered.Set(ctx, "k", []byte("v"), time.Minute))

	// another process deleted the durable copy
	require.NoError(t, durable.Delete(ctx, "k"))

	_, ok, err := tiered.GetAuthoritative(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)

	// and the stale local copy is dropped too
	_, ok, err = tiered.local.Get(ctx, "k")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestTieredDegradesWhenDurableDown(t *testing.T) {
	tiered := NewTieredStore(failingStore{})
	ctx := context.Background()

	require.NoError(t, tiered.Set(ctx, "k", []byte("v"), time.Minute))

	value, ok, err := tiered.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("v"), value)

	applied, err := tiered.CompareAndSwap(ctx, "k", []byte("v"), []byte("w"), time.Minute)
	require.NoError(t, err)
	require.True(t, applied)

	applied, err = tiered.CompareAndDelete(ctx, "k", []byte("w"))
	require.NoError(t, err)
	require.True(t, applied)
}

func TestTieredCompareAndSwapMirrorsLocally(t *testing.T) {
	durable := NewMemoryStore()
	tiered := NewTieredStore(durable)
	ctx := context.Background()

	require.NoError(t, tiered.Set(ctx, "k", []byte("old"), time.Minute))

	applied, err := tiered.CompareAndSwap(ctx, "k", []byte("old"), []byte("next"), time.Minute)
	require.NoError(t, err)
	require.True(t, applied)

	value, ok, err := tiered.local.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, []byte("next"), value)
}

func TestTieredCompareAndDeleteSingleWinner(t *testing.T) {
	durable := NewMemoryStore()
	tiered := NewTieredStore(durable)
	ctx := context.Background()

	require.NoError(t, tiered.Set(ctx, "k", []byte("v"), time.Minute))

	first, err := tiered.CompareAndDelete(ctx, "k", []byte("v"))
	require.NoError(t, err)
	second, err := tiered.CompareAndDelete(ctx, "k", []byte("v"))
	require.NoError(t, err)

	require.True(t, first)
	require.False(t, second)
}
