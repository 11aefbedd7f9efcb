package store

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/shubhamsonni/AI-Resume-Analyzer/internal/model"
)

// RedisStore keeps submission records in Redis as JSON values. Records carry
// no TTL; a wipe is the only way they leave the store.
type RedisStore struct {
	client *redis.Client
}

func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Save(ctx context.Context, rec model.Submission) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal submission: %w", err)
	}
	return s.client.Set(ctx, Key(rec.ID), data, 0).Err()
}

func (s *RedisStore) Get(ctx context.Context, id string) (model.Submission, error) {
	data, err := s.client.Get(ctx, Key(id)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return model.Submission{}, ErrNotFound
		}
		return model.Submission{}, err
	}

	var rec model.Submission
	if err := json.Unmarshal(data, &rec); err != nil {
		return model.Submission{}, fmt.Errorf("failed to unmarshal submission: %w", err)
	}
	return rec, nil
}

func (s *RedisStore) List(ctx context.Context) ([]model.Submission, error) {
	var keys []string
	iter := s.client.Scan(ctx, 0, keyPattern, 100).Iterator()
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return []model.Submission{}, nil
	}

	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}

	records := make([]model.Submission, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			// Deleted between scan and fetch
			continue
		}
		var rec model.Submission
		if err := json.Unmarshal([]byte(raw), &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

func (s *RedisStore) Delete(ctx context.Context, id string) error {
	return s.client.Del(ctx, Key(id)).Err()
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}
