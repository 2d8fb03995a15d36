package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"PriceWatch/internal/domain/models"
	"PriceWatch/internal/domain/repository"

	"github.com/redis/go-redis/v9"
)

// RedisSettingsStore keeps the settings document as one JSON string key.
type RedisSettingsStore struct {
	client *redis.Client
	key    string
}

// NewRedisSettingsStore creates a store on an already connected client.
func NewRedisSettingsStore(client *redis.Client, key string) repository.SettingsStore {
	return &RedisSettingsStore{client: client, key: key}
}

func (s *RedisSettingsStore) Load(ctx context.Context) (*models.Settings, error) {
	b, err := s.client.Get(ctx, s.key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("%w: key %s", models.ErrSettingsNotFound, s.key)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get %s: %v", models.ErrSettingsIO, s.key, err)
	}

	var st models.Settings
	if err := json.Unmarshal(b, &st); err != nil {
		return nil, fmt.Errorf("%w: decode %s: %v", models.ErrSettingsIO, s.key, err)
	}
	return &st, nil
}

func (s *RedisSettingsStore) Save(ctx context.Context, st *models.Settings) error {
	b, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("%w: encode: %v", models.ErrSettingsIO, err)
	}
	if err := s.client.Set(ctx, s.key, b, 0).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %v", models.ErrSettingsIO, s.key, err)
	}
	return nil
}

func (s *RedisSettingsStore) Close() error {
	return s.client.Close()
}
