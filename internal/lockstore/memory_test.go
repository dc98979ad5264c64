package lockstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStoreGetSet(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Get(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.SetWithTTL(ctx, "k", []byte("v"), time.Minute))

	val, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("v"), val)

	exists, err := s.Exists(ctx, "k")
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, s.Delete(ctx, "k"))
	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreTTLExpiry(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	require.NoError(t, s.SetWithTTL(ctx, "k", []byte("v"), time.Minute))

	ttl, err := s.TimeToLive(ctx, "k")
	require.NoError(t, err)
	assert.Greater(t, ttl, 50*time.Second)

	s.Advance(2 * time.Minute)

	_, err = s.Get(ctx, "k")
	assert.ErrorIs(t, err, ErrNotFound)

	exists, err := s.Exists(ctx, "k")
	require.NoError(t, err)
	assert.False(t, exists)

	ttl, err = s.TimeToLive(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, time.Duration(0), ttl)
}

func TestMemoryStoreSetNX(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	ok, err := s.SetNX(ctx, "k", []byte("first"), time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.SetNX(ctx, "k", []byte("second"), time.Minute)
	require.NoError(t, err)
	assert.False(t, ok)

	val, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, []byte("first"), val)

	// After expiry the key can be created again.
	s.Advance(2 * time.Minute)
	ok, err = s.SetNX(ctx, "k", []byte("second"), time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestMemoryStoreSets(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	members, err := s.SetMembers(ctx, "set")
	require.NoError(t, err)
	assert.Empty(t, members)

	require.NoError(t, s.SetAdd(ctx, "set", "a"))
	require.NoError(t, s.SetAdd(ctx, "set", "b"))
	require.NoError(t, s.SetAdd(ctx, "set", "a"))

	members, err = s.SetMembers(ctx, "set")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"a", "b"}, members)

	require.NoError(t, s.SetRemove(ctx, "set", "a"))
	members, err = s.SetMembers(ctx, "set")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"b"}, members)

	// Expire applies to sets as well.
	require.NoError(t, s.Expire(ctx, "set", time.Minute))
	s.Advance(2 * time.Minute)
	members, err = s.SetMembers(ctx, "set")
	require.NoError(t, err)
	assert.Empty(t, members)
}
