package slotlock

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/campusbook/booking-backend/internal/lockstore"
)

type fakeChecker struct {
	overlap bool
	err     error
}

func (f *fakeChecker) HasActiveOverlap(ctx context.Context, resourceID int64, date time.Time, startSlot, endSlot int) (bool, error) {
	return f.overlap, f.err
}

type fakeSettings struct {
	minutes int
}

func (f *fakeSettings) GetInt(ctx context.Context, key string, defaultValue int) int {
	if f.minutes > 0 {
		return f.minutes
	}
	return defaultValue
}

// errStore fails every operation, simulating an unreachable store.
type errStore struct{}

var errStoreDown = errors.New("store unreachable")

func (errStore) Get(context.Context, string) ([]byte, error) { return nil, errStoreDown }
func (errStore) SetWithTTL(context.Context, string, []byte, time.Duration) error {
	return errStoreDown
}
func (errStore) SetNX(context.Context, string, []byte, time.Duration) (bool, error) {
	return false, errStoreDown
}
func (errStore) Delete(context.Context, ...string) error         { return errStoreDown }
func (errStore) Exists(context.Context, string) (bool, error)    { return false, errStoreDown }
func (errStore) SetAdd(context.Context, string, string) error    { return errStoreDown }
func (errStore) SetRemove(context.Context, string, string) error { return errStoreDown }
func (errStore) SetMembers(context.Context, string) ([]string, error) {
	return nil, errStoreDown
}
func (errStore) Expire(context.Context, string, time.Duration) error { return errStoreDown }
func (errStore) TimeToLive(context.Context, string) (time.Duration, error) {
	return 0, errStoreDown
}

func newTestManager() (Manager, *lockstore.MemoryStore, *fakeChecker) {
	store := lockstore.NewMemoryStore()
	checker := &fakeChecker{}
	m := NewManager(store, checker, &fakeSettings{}, zap.NewNop())
	return m, store, checker
}

var testDate = time.Date(2026, 9, 10, 0, 0, 0, 0, time.UTC)

func TestAcquireAndValidate(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager()

	token, err := m.Acquire(ctx, 1, 7, testDate, 10, 12)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	lock, ok := m.Get(ctx, token)
	require.True(t, ok)
	assert.Equal(t, int64(1), lock.UserID)
	assert.Equal(t, int64(7), lock.ResourceID)
	assert.Equal(t, "2026-09-10", lock.BookingDate)
	assert.Equal(t, 10, lock.StartSlot)
	assert.Equal(t, 12, lock.EndSlot)

	assert.True(t, m.Validate(ctx, token, 1))
	assert.False(t, m.Validate(ctx, token, 2), "mismatched owner must not validate")
	assert.False(t, m.Validate(ctx, "bogus-token", 1))

	remaining := m.TimeRemaining(ctx, token)
	assert.Greater(t, remaining, 4*time.Minute)
	assert.LessOrEqual(t, remaining, 5*time.Minute)
}

func TestAcquireInvalidRange(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager()

	_, err := m.Acquire(ctx, 1, 7, testDate, 12, 12)
	assert.ErrorIs(t, err, ErrInvalidRange)

	_, err = m.Acquire(ctx, 1, 7, testDate, 13, 12)
	assert.ErrorIs(t, err, ErrInvalidRange)
}

func TestAcquireOverlappingRangeFails(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager()

	first, err := m.Acquire(ctx, 1, 7, testDate, 10, 12)
	require.NoError(t, err)

	// Slot 11 is held, so [11,13) must fail for anyone.
	_, err = m.Acquire(ctx, 2, 7, testDate, 11, 13)
	assert.ErrorIs(t, err, ErrUnavailable)

	// The first lock is untouched by the failed attempt.
	assert.True(t, m.Validate(ctx, first, 1))
	assert.Equal(t, []int{10, 11}, m.LockedSlots(ctx, 7, testDate))
}

func TestAcquireDisjointRangesSucceed(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager()

	_, err := m.Acquire(ctx, 1, 7, testDate, 10, 12)
	require.NoError(t, err)
	_, err = m.Acquire(ctx, 2, 7, testDate, 12, 14)
	require.NoError(t, err)

	// Same range on another resource or date is independent.
	_, err = m.Acquire(ctx, 3, 8, testDate, 10, 12)
	require.NoError(t, err)
	_, err = m.Acquire(ctx, 4, 7, testDate.AddDate(0, 0, 1), 10, 12)
	require.NoError(t, err)

	assert.Equal(t, []int{10, 11, 12, 13}, m.LockedSlots(ctx, 7, testDate))
}

func TestAcquireBookedRangeFails(t *testing.T) {
	ctx := context.Background()
	m, _, checker := newTestManager()
	checker.overlap = true

	_, err := m.Acquire(ctx, 1, 7, testDate, 10, 12)
	assert.ErrorIs(t, err, ErrUnavailable)

	// Nothing was written.
	checker.overlap = false
	assert.Empty(t, m.LockedSlots(ctx, 7, testDate))
}

func TestReleaseFreesSlots(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager()

	token, err := m.Acquire(ctx, 1, 7, testDate, 10, 12)
	require.NoError(t, err)

	assert.True(t, m.Release(ctx, token))
	assert.False(t, m.Validate(ctx, token, 1))
	assert.Empty(t, m.LockedSlots(ctx, 7, testDate))

	// Second release is an idempotent no-op.
	assert.False(t, m.Release(ctx, token))

	// A different user can immediately take the identical range.
	_, err = m.Acquire(ctx, 2, 7, testDate, 10, 12)
	require.NoError(t, err)
}

func TestExpiryFreesSlots(t *testing.T) {
	ctx := context.Background()
	store := lockstore.NewMemoryStore()
	m := NewManager(store, &fakeChecker{}, &fakeSettings{minutes: 5}, zap.NewNop())

	token, err := m.Acquire(ctx, 1, 7, testDate, 10, 12)
	require.NoError(t, err)

	store.Advance(6 * time.Minute)

	assert.False(t, m.Validate(ctx, token, 1))
	assert.Equal(t, time.Duration(0), m.TimeRemaining(ctx, token))
	assert.False(t, m.SlotsUnavailable(ctx, 7, testDate, 10, 12))

	_, err = m.Acquire(ctx, 2, 7, testDate, 10, 12)
	require.NoError(t, err)
}

func TestLockedSlotsSkipsDanglingTokens(t *testing.T) {
	ctx := context.Background()
	m, store, _ := newTestManager()

	token, err := m.Acquire(ctx, 1, 7, testDate, 10, 12)
	require.NoError(t, err)

	// Drop the lock record but leave the index entry, simulating the
	// grace window where the index outlives the lock.
	require.NoError(t, store.Delete(ctx, lockKey(token)))

	assert.Empty(t, m.LockedSlots(ctx, 7, testDate))

	// RepairIndex trims the dangling entry.
	assert.Equal(t, 1, m.RepairIndex(ctx, 7, testDate))
	assert.Equal(t, 0, m.RepairIndex(ctx, 7, testDate))
}

func TestSlotsUnavailable(t *testing.T) {
	ctx := context.Background()
	m, _, checker := newTestManager()

	assert.False(t, m.SlotsUnavailable(ctx, 7, testDate, 10, 12))

	_, err := m.Acquire(ctx, 1, 7, testDate, 10, 12)
	require.NoError(t, err)

	assert.True(t, m.SlotsUnavailable(ctx, 7, testDate, 10, 12))
	assert.True(t, m.SlotsUnavailable(ctx, 7, testDate, 11, 13), "partial overlap counts")
	assert.False(t, m.SlotsUnavailable(ctx, 7, testDate, 12, 14), "adjacent range is free")

	// A durable booking makes the range unavailable regardless of locks.
	checker.overlap = true
	assert.True(t, m.SlotsUnavailable(ctx, 8, testDate, 0, 1))
}

func TestStoreFailureIsNegativeResult(t *testing.T) {
	ctx := context.Background()
	m := NewManager(errStore{}, &fakeChecker{}, &fakeSettings{}, zap.NewNop())

	_, err := m.Acquire(ctx, 1, 7, testDate, 10, 12)
	assert.ErrorIs(t, err, ErrUnavailable, "store failure must look like unavailable")

	assert.False(t, m.Validate(ctx, "token", 1))
	assert.False(t, m.Release(ctx, "token"))
	assert.Equal(t, time.Duration(0), m.TimeRemaining(ctx, "token"))
	assert.Empty(t, m.LockedSlots(ctx, 7, testDate))
	assert.True(t, m.SlotsUnavailable(ctx, 7, testDate, 10, 12), "fails closed")
}

func TestUserActiveLockAlwaysEmpty(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager()

	token, err := m.Acquire(ctx, 1, 7, testDate, 10, 12)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	// Documented omission: holders track their own tokens.
	got, ok := m.UserActiveLock(ctx, 1)
	assert.False(t, ok)
	assert.Empty(t, got)
}

func TestConcurrentAcquireSingleWinner(t *testing.T) {
	ctx := context.Background()
	m, _, _ := newTestManager()

	const attempts = 16
	var wg sync.WaitGroup
	tokens := make([]string, attempts)
	errs := make([]error, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tokens[i], errs[i] = m.Acquire(ctx, int64(i+1), 7, testDate, 10, 12)
		}(i)
	}
	wg.Wait()

	winners := 0
	for i := range tokens {
		if errs[i] == nil && tokens[i] != "" {
			winners++
		} else {
			assert.ErrorIs(t, errs[i], ErrUnavailable)
		}
	}
	assert.Equal(t, 1, winners, "the slot-pointer write must exclude all but one acquirer")
}

func TestTokenUnguessable(t *testing.T) {
	token, err := newToken()
	require.NoError(t, err)
	// 32 random bytes in unpadded URL-safe base64.
	assert.Len(t, token, 43)
	assert.NotContains(t, token, "+")
	assert.NotContains(t, token, "/")

	other, err := newToken()
	require.NoError(t, err)
	assert.NotEqual(t, token, other)
}
