package setting

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeRepo struct {
	rows map[string]*Setting
	err  error
}

func (f *fakeRepo) GetByKey(ctx context.Context, key string) (*Setting, error) {
	if f.err != nil {
		return nil, f.err
	}
	if s, ok := f.rows[key]; ok {
		return s, nil
	}
	return nil, ErrNotFound
}

func (f *fakeRepo) Upsert(ctx context.Context, s *Setting) error {
	if f.err != nil {
		return f.err
	}
	if f.rows == nil {
		f.rows = make(map[string]*Setting)
	}
	f.rows[s.Key] = s
	return nil
}

func TestGetIntParsesAndFallsBack(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{rows: map[string]*Setting{
		"booking_lock_timeout_minutes": {Key: "booking_lock_timeout_minutes", Value: "10", ValueType: TypeInteger},
		"garbage":                      {Key: "garbage", Value: "not-a-number", ValueType: TypeInteger},
	}}
	svc := NewService(repo, zap.NewNop())

	assert.Equal(t, 10, svc.GetInt(ctx, "booking_lock_timeout_minutes", 5))
	assert.Equal(t, 5, svc.GetInt(ctx, "missing", 5))
	assert.Equal(t, 5, svc.GetInt(ctx, "garbage", 5))
}

func TestGetDegradesOnStoreFailure(t *testing.T) {
	ctx := context.Background()
	svc := NewService(&fakeRepo{err: errors.New("db down")}, zap.NewNop())

	// A broken settings store must yield defaults, not errors: the lock
	// manager reads the timeout on every acquire.
	assert.Equal(t, 5, svc.GetInt(ctx, "booking_lock_timeout_minutes", 5))
	assert.True(t, svc.GetBool(ctx, "flag", true))
	assert.Equal(t, "x", svc.GetString(ctx, "name", "x"))
}

func TestGetBoolAndString(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{rows: map[string]*Setting{
		"flag": {Key: "flag", Value: "true", ValueType: TypeBoolean},
		"name": {Key: "name", Value: "hello", ValueType: TypeString},
	}}
	svc := NewService(repo, zap.NewNop())

	assert.True(t, svc.GetBool(ctx, "flag", false))
	assert.False(t, svc.GetBool(ctx, "missing", false))
	assert.Equal(t, "hello", svc.GetString(ctx, "name", ""))
}

func TestSetNormalizesValueType(t *testing.T) {
	ctx := context.Background()
	repo := &fakeRepo{}
	svc := NewService(repo, zap.NewNop())

	s, err := svc.Set(ctx, "k", "v", "bogus-type")
	assert.NoError(t, err)
	assert.Equal(t, TypeString, s.ValueType)

	s, err = svc.Set(ctx, "n", "3", TypeInteger)
	assert.NoError(t, err)
	assert.Equal(t, TypeInteger, s.ValueType)
	assert.Equal(t, 3, svc.GetInt(ctx, "n", 0))
}
