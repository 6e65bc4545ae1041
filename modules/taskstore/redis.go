package taskstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	domain "github.com/example/task-manager/domain/task"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// RedisStore stores each task as a JSON string under "task:<id>" and keeps
// the set of live ids in the "tasks" set.
type RedisStore struct {
	client *redis.Client
	prefix string
	index  string
}

// OpenRedis connects using a redis:// URL and verifies the connection.
func OpenRedis(ctx context.Context, rawURL string) (*RedisStore, error) {
	opts, err := redis.ParseURL(rawURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewRedisStore(client), nil
}

// NewRedisStore wraps an existing client.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		prefix: "task:",
		index:  Collection,
	}
}

// Name returns "redis".
func (s *RedisStore) Name() string {
	return "redis"
}

func (s *RedisStore) key(id string) string {
	return s.prefix + id
}

// Insert stores a new document and indexes its id.
func (s *RedisStore) Insert(ctx context.Context, t *domain.Task) error {
	t.ID = uuid.New().String()
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	_, err = s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.SetNX(ctx, s.key(t.ID), data, 0)
		pipe.SAdd(ctx, s.index, t.ID)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to store task: %w", err)
	}
	return nil
}

// List loads every indexed document in one MGET.
func (s *RedisStore) List(ctx context.Context) ([]*domain.Task, error) {
	ids, err := s.client.SMembers(ctx, s.index).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list task ids: %w", err)
	}
	if len(ids) == 0 {
		return []*domain.Task{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = s.key(id)
	}
	values, err := s.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to load tasks: %w", err)
	}

	tasks := make([]*domain.Task, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var t domain.Task
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			return nil, fmt.Errorf("failed to unmarshal task: %w", err)
		}
		tasks = append(tasks, &t)
	}
	return tasks, nil
}

// Get loads the document stored under id.
func (s *RedisStore) Get(ctx context.Context, id string) (*domain.Task, error) {
	data, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}

	var t domain.Task
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task: %w", err)
	}
	return &t, nil
}

// Replace overwrites the document only if it already exists.
func (s *RedisStore) Replace(ctx context.Context, t *domain.Task) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}
	ok, err := s.client.SetXX(ctx, s.key(t.ID), data, 0).Result()
	if err != nil {
		return fmt.Errorf("failed to update task: %w", err)
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

// Delete removes the document and its index entry.
func (s *RedisStore) Delete(ctx context.Context, id string) error {
	var del *redis.IntCmd
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		del = pipe.Del(ctx, s.key(id))
		pipe.SRem(ctx, s.index, id)
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if del.Val() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Ping checks the Redis connection.
func (s *RedisStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping failed: %w", err)
	}
	return nil
}

// Close closes the client.
func (s *RedisStore) Close(_ context.Context) error {
	return s.client.Close()
}
