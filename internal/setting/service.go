package setting

import (
	"context"
	"errors"
	"strconv"

	"go.uber.org/zap"
)

// Service reads settings at call time. Values are deliberately not cached
// so a change (e.g. to the lock timeout) applies on the next read.
type Service interface {
	GetInt(ctx context.Context, key string, defaultValue int) int
	GetBool(ctx context.Context, key string, defaultValue bool) bool
	GetString(ctx context.Context, key string, defaultValue string) string
	Set(ctx context.Context, key, value, valueType string) (*Setting, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{repo: repo, logger: logger}
}

// lookup fetches a setting, returning nil on any miss or failure. A store
// failure must degrade to the caller's default, not an error.
func (s *service) lookup(ctx context.Context, key string) *Setting {
	set, err := s.repo.GetByKey(ctx, key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Warn("failed to read setting", zap.String("key", key), zap.Error(err))
		}
		return nil
	}
	return set
}

func (s *service) GetInt(ctx context.Context, key string, defaultValue int) int {
	set := s.lookup(ctx, key)
	if set == nil {
		return defaultValue
	}
	v, err := strconv.Atoi(set.Value)
	if err != nil {
		s.logger.Warn("setting is not an integer", zap.String("key", key), zap.String("value", set.Value))
		return defaultValue
	}
	return v
}

func (s *service) GetBool(ctx context.Context, key string, defaultValue bool) bool {
	set := s.lookup(ctx, key)
	if set == nil {
		return defaultValue
	}
	v, err := strconv.ParseBool(set.Value)
	if err != nil {
		s.logger.Warn("setting is not a boolean", zap.String("key", key), zap.String("value", set.Value))
		return defaultValue
	}
	return v
}

func (s *service) GetString(ctx context.Context, key string, defaultValue string) string {
	set := s.lookup(ctx, key)
	if set == nil {
		return defaultValue
	}
	return set.Value
}

func (s *service) Set(ctx context.Context, key, value, valueType string) (*Setting, error) {
	switch valueType {
	case TypeString, TypeInteger, TypeBoolean:
	default:
		valueType = TypeString
	}

	set := &Setting{Key: key, Value: value, ValueType: valueType}
	if err := s.repo.Upsert(ctx, set); err != nil {
		return nil, err
	}
	return set, nil
}
