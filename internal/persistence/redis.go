package persistence

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/smartapp-edu/records-service/internal/models"
)

// DefaultSnapshotKey is where the snapshot document lives in the keyed store.
const DefaultSnapshotKey = "smartapp:snapshot"

// RedisAdapter stores the whole snapshot as one JSON document under a single
// key.
type RedisAdapter struct {
	client *redis.Client
	key    string
}

func NewRedisAdapter(client *redis.Client, key string) *RedisAdapter {
	if key == "" {
		key = DefaultSnapshotKey
	}
	return &RedisAdapter{client: client, key: key}
}

func (r *RedisAdapter) Load(ctx context.Context) (models.StoreSnapshot, error) {
	data, err := r.client.Get(ctx, r.key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return models.StoreSnapshot{}, ErrNoSnapshot
		}
		return models.StoreSnapshot{}, fmt.Errorf("load snapshot from redis: %w", err)
	}
	var snap models.StoreSnapshot
	if err := json.Unmarshal([]byte(data), &snap); err != nil {
		return models.StoreSnapshot{}, fmt.Errorf("decode redis snapshot: %w", err)
	}
	return snap, nil
}

func (r *RedisAdapter) Save(ctx context.Context, snap models.StoreSnapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	if err := r.client.Set(ctx, r.key, data, 0).Err(); err != nil {
		return fmt.Errorf("save snapshot to redis: %w", err)
	}
	return nil
}

func (r *RedisAdapter) String() string { return "redis:" + r.key }
