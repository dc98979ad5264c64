package slotlock

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/campusbook/booking-backend/internal/lockstore"
)

const (
	lockPrefix          = "booking_lock"
	resourceLocksPrefix = "resource_locks"
	slotLockPrefix      = "slot_lock"

	// timeoutSettingKey is read from the settings collaborator on every
	// acquire so an admin change takes effect on the next hold.
	timeoutSettingKey     = "booking_lock_timeout_minutes"
	defaultTimeoutMinutes = 5

	// indexGrace keeps the resource lock index alive slightly longer than
	// the locks it points at, so it tolerates clock and propagation skew.
	// Consumers must treat tokens whose lock is gone as not locked.
	indexGrace = 60 * time.Second
)

// ConflictChecker answers whether the durable store already holds an
// active booking overlapping a slot range. Implemented by the booking
// repository.
type ConflictChecker interface {
	HasActiveOverlap(ctx context.Context, resourceID int64, date time.Time, startSlot, endSlot int) (bool, error)
}

// Settings supplies runtime-tunable values. Implemented by the setting
// service.
type Settings interface {
	GetInt(ctx context.Context, key string, defaultValue int) int
}

// Manager owns the soft-lock lifecycle: acquire, validate, release, and
// the read-side queries the availability views need.
type Manager interface {
	// Acquire tries to hold [startSlot, endSlot) on a resource/date for a
	// user. It returns an opaque token on success, ErrInvalidRange for a
	// bad range, or ErrUnavailable when the range is booked, already held,
	// or the store failed.
	Acquire(ctx context.Context, userID, resourceID int64, date time.Time, startSlot, endSlot int) (string, error)

	// Validate reports whether token exists and belongs to userID.
	Validate(ctx context.Context, token string, userID int64) bool

	// Release frees the lock and its derived keys. It returns false if the
	// token is unknown or already expired (idempotent no-op).
	Release(ctx context.Context, token string) bool

	// Get returns the lock record behind token, if it still exists.
	Get(ctx context.Context, token string) (*Lock, bool)

	// TimeRemaining returns the live TTL of the lock, zero if gone.
	TimeRemaining(ctx context.Context, token string) time.Duration

	// LockedSlots returns the sorted union of slots currently held on a
	// resource/date. Read-side display only, not authoritative.
	LockedSlots(ctx context.Context, resourceID int64, date time.Time) []int

	// SlotsUnavailable reports whether any slot in [startSlot, endSlot) is
	// booked in the durable store or held by a live lock. Store failures
	// report unavailable.
	SlotsUnavailable(ctx context.Context, resourceID int64, date time.Time, startSlot, endSlot int) bool

	// UserActiveLock always reports no lock. Locating a user's hold would
	// require scanning the keyspace; callers keep the token in their own
	// session state instead.
	UserActiveLock(ctx context.Context, userID int64) (string, bool)

	// RepairIndex drops index tokens whose lock has already expired and
	// returns how many were removed. Best-effort hygiene only; TTL expiry
	// is the correctness mechanism, this just trims dangling entries
	// inside the grace window.
	RepairIndex(ctx context.Context, resourceID int64, date time.Time) int
}

type manager struct {
	store    lockstore.Store
	bookings ConflictChecker
	settings Settings
	logger   *zap.Logger
}

func NewManager(store lockstore.Store, bookings ConflictChecker, settings Settings, logger *zap.Logger) Manager {
	return &manager{
		store:    store,
		bookings: bookings,
		settings: settings,
		logger:   logger,
	}
}

func lockKey(token string) string {
	return fmt.Sprintf("%s:%s", lockPrefix, token)
}

func resourceLocksKey(resourceID int64, date string) string {
	return fmt.Sprintf("%s:%d:%s", resourceLocksPrefix, resourceID, date)
}

func slotLockKey(resourceID int64, date string, slot int) string {
	return fmt.Sprintf("%s:%d:%s:%d", slotLockPrefix, resourceID, date, slot)
}

// newToken returns 32 bytes of randomness, URL-safe encoded.
func newToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

func (m *manager) Acquire(ctx context.Context, userID, resourceID int64, date time.Time, startSlot, endSlot int) (string, error) {
	if startSlot >= endSlot {
		return "", ErrInvalidRange
	}

	if m.SlotsUnavailable(ctx, resourceID, date, startSlot, endSlot) {
		return "", ErrUnavailable
	}

	token, err := newToken()
	if err != nil {
		m.logger.Error("failed to generate lock token", zap.Error(err))
		return "", ErrUnavailable
	}

	dateStr := date.Format(time.DateOnly)
	ttl := time.Duration(m.settings.GetInt(ctx, timeoutSettingKey, defaultTimeoutMinutes)) * time.Minute

	lock := Lock{
		UserID:      userID,
		ResourceID:  resourceID,
		BookingDate: dateStr,
		StartSlot:   startSlot,
		EndSlot:     endSlot,
		CreatedAt:   time.Now().Unix(),
	}
	payload, err := json.Marshal(lock)
	if err != nil {
		m.logger.Error("failed to encode lock record", zap.Error(err))
		return "", ErrUnavailable
	}

	// The lock record must exist before any slot pointer names it, since a
	// pointer reader resolves tokens back through the record.
	if err := m.store.SetWithTTL(ctx, lockKey(token), payload, ttl); err != nil {
		m.logger.Error("failed to write lock record", zap.Error(err))
		return "", ErrUnavailable
	}

	resourceKey := resourceLocksKey(resourceID, dateStr)
	if err := m.store.SetAdd(ctx, resourceKey, token); err != nil {
		m.logger.Error("failed to index lock token", zap.Error(err))
		m.abortAcquire(ctx, token, resourceID, dateStr, nil)
		return "", ErrUnavailable
	}
	if err := m.store.Expire(ctx, resourceKey, ttl+indexGrace); err != nil {
		m.logger.Error("failed to set index expiry", zap.Error(err))
		m.abortAcquire(ctx, token, resourceID, dateStr, nil)
		return "", ErrUnavailable
	}

	// Slot pointers are the actual exclusion mechanism: conditional create
	// per slot, so two concurrent acquires for overlapping ranges cannot
	// both win. The availability check above is only an optimization.
	var written []int
	for slot := startSlot; slot < endSlot; slot++ {
		ok, err := m.store.SetNX(ctx, slotLockKey(resourceID, dateStr, slot), []byte(token), ttl)
		if err != nil {
			m.logger.Error("failed to write slot pointer",
				zap.Int64("resource_id", resourceID), zap.Int("slot", slot), zap.Error(err))
			m.abortAcquire(ctx, token, resourceID, dateStr, written)
			return "", ErrUnavailable
		}
		if !ok {
			// Lost the race for this slot to a concurrent acquire.
			m.abortAcquire(ctx, token, resourceID, dateStr, written)
			return "", ErrUnavailable
		}
		written = append(written, slot)
	}

	return token, nil
}

// abortAcquire undoes a partially completed acquire. Best effort: every
// key written so far carries its own TTL, so failures here self-heal.
func (m *manager) abortAcquire(ctx context.Context, token string, resourceID int64, date string, writtenSlots []int) {
	keys := make([]string, 0, len(writtenSlots)+1)
	for _, slot := range writtenSlots {
		keys = append(keys, slotLockKey(resourceID, date, slot))
	}
	keys = append(keys, lockKey(token))

	if err := m.store.Delete(ctx, keys...); err != nil {
		m.logger.Warn("failed to clean up aborted acquire", zap.Error(err))
	}
	if err := m.store.SetRemove(ctx, resourceLocksKey(resourceID, date), token); err != nil {
		m.logger.Warn("failed to unindex aborted acquire", zap.Error(err))
	}
}

func (m *manager) Validate(ctx context.Context, token string, userID int64) bool {
	lock, ok := m.Get(ctx, token)
	if !ok {
		return false
	}
	return lock.UserID == userID
}

func (m *manager) Release(ctx context.Context, token string) bool {
	lock, ok := m.Get(ctx, token)
	if !ok {
		return false
	}

	keys := make([]string, 0, lock.EndSlot-lock.StartSlot+1)
	for slot := lock.StartSlot; slot < lock.EndSlot; slot++ {
		keys = append(keys, slotLockKey(lock.ResourceID, lock.BookingDate, slot))
	}
	keys = append(keys, lockKey(token))

	if err := m.store.Delete(ctx, keys...); err != nil {
		m.logger.Error("failed to release lock", zap.String("token", token), zap.Error(err))
		return false
	}
	if err := m.store.SetRemove(ctx, resourceLocksKey(lock.ResourceID, lock.BookingDate), token); err != nil {
		// The dangling index entry is tolerated by readers and expires
		// with the index key.
		m.logger.Warn("failed to unindex released lock", zap.String("token", token), zap.Error(err))
	}

	return true
}

func (m *manager) Get(ctx context.Context, token string) (*Lock, bool) {
	data, err := m.store.Get(ctx, lockKey(token))
	if err != nil {
		if !errors.Is(err, lockstore.ErrNotFound) {
			m.logger.Error("failed to read lock record", zap.Error(err))
		}
		return nil, false
	}

	var lock Lock
	if err := json.Unmarshal(data, &lock); err != nil {
		m.logger.Error("malformed lock record", zap.String("token", token), zap.Error(err))
		return nil, false
	}
	lock.Token = token
	return &lock, true
}

func (m *manager) TimeRemaining(ctx context.Context, token string) time.Duration {
	ttl, err := m.store.TimeToLive(ctx, lockKey(token))
	if err != nil {
		m.logger.Error("failed to read lock ttl", zap.Error(err))
		return 0
	}
	return ttl
}

func (m *manager) LockedSlots(ctx context.Context, resourceID int64, date time.Time) []int {
	tokens, err := m.store.SetMembers(ctx, resourceLocksKey(resourceID, date.Format(time.DateOnly)))
	if err != nil {
		m.logger.Error("failed to list lock index", zap.Error(err))
		return []int{}
	}

	slots := make(map[int]struct{})
	for _, token := range tokens {
		// Index entries outlive their locks by the grace window; skip
		// tokens whose lock is already gone.
		lock, ok := m.Get(ctx, token)
		if !ok {
			continue
		}
		for slot := lock.StartSlot; slot < lock.EndSlot; slot++ {
			slots[slot] = struct{}{}
		}
	}

	out := make([]int, 0, len(slots))
	for slot := range slots {
		out = append(out, slot)
	}
	sort.Ints(out)
	return out
}

func (m *manager) SlotsUnavailable(ctx context.Context, resourceID int64, date time.Time, startSlot, endSlot int) bool {
	booked, err := m.bookings.HasActiveOverlap(ctx, resourceID, date, startSlot, endSlot)
	if err != nil {
		m.logger.Error("failed to check booked slots", zap.Error(err))
		return true
	}
	if booked {
		return true
	}

	dateStr := date.Format(time.DateOnly)
	for slot := startSlot; slot < endSlot; slot++ {
		held, err := m.store.Exists(ctx, slotLockKey(resourceID, dateStr, slot))
		if err != nil {
			m.logger.Error("failed to check slot pointer", zap.Int("slot", slot), zap.Error(err))
			return true
		}
		if held {
			return true
		}
	}
	return false
}

func (m *manager) UserActiveLock(ctx context.Context, userID int64) (string, bool) {
	return "", false
}

func (m *manager) RepairIndex(ctx context.Context, resourceID int64, date time.Time) int {
	resourceKey := resourceLocksKey(resourceID, date.Format(time.DateOnly))
	tokens, err := m.store.SetMembers(ctx, resourceKey)
	if err != nil {
		m.logger.Error("failed to list lock index", zap.Error(err))
		return 0
	}

	removed := 0
	for _, token := range tokens {
		exists, err := m.store.Exists(ctx, lockKey(token))
		if err != nil || exists {
			continue
		}
		if err := m.store.SetRemove(ctx, resourceKey, token); err != nil {
			continue
		}
		removed++
	}
	return removed
}
