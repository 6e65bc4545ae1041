package taskstore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	domain "github.com/example/task-manager/domain/task"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/nats-io/nats.go/jetstream"
	"golang.org/x/sync/errgroup"
)

const (
	// listConcurrency bounds the parallel key fetches in List.
	listConcurrency = 8
	// replaceAttempts bounds the revision retries in Replace.
	replaceAttempts = 10
)

// JetStreamStore stores one JSON document per task in a JetStream KV bucket.
type JetStreamStore struct {
	conn   *nats.Conn
	js     jetstream.JetStream
	bucket jetstream.KeyValue
}

// OpenJetStream connects to NATS and opens (or creates) the named bucket.
func OpenJetStream(ctx context.Context, natsURL, bucket string) (*JetStreamStore, error) {
	conn, err := nats.Connect(natsURL, nats.Name("task-manager"))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	js, err := jetstream.New(conn)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create JetStream context: %w", err)
	}

	s := &JetStreamStore{conn: conn, js: js}
	s.bucket, err = s.getOrCreateBucket(ctx, bucket)
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create %s bucket: %w", bucket, err)
	}
	return s, nil
}

func (s *JetStreamStore) getOrCreateBucket(ctx context.Context, name string) (jetstream.KeyValue, error) {
	bucket, err := s.js.KeyValue(ctx, name)
	if err == nil {
		return bucket, nil
	}
	return s.js.CreateKeyValue(ctx, jetstream.KeyValueConfig{
		Bucket:      name,
		Description: "Task documents keyed by task ID",
	})
}

// Name returns "jetstream".
func (s *JetStreamStore) Name() string {
	return "jetstream"
}

// Insert stores a new document under a fresh UUID key.
func (s *JetStreamStore) Insert(ctx context.Context, t *domain.Task) error {
	t.ID = uuid.New().String()
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}
	if _, err := s.bucket.Create(ctx, t.ID, data); err != nil {
		return fmt.Errorf("failed to store task: %w", err)
	}
	return nil
}

// List fetches every document in the bucket.
func (s *JetStreamStore) List(ctx context.Context) ([]*domain.Task, error) {
	keys, err := s.bucket.Keys(ctx)
	if err != nil {
		if errors.Is(err, jetstream.ErrNoKeysFound) {
			return []*domain.Task{}, nil
		}
		return nil, fmt.Errorf("failed to list task keys: %w", err)
	}

	found := make([]*domain.Task, len(keys))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(listConcurrency)
	for i, key := range keys {
		g.Go(func() error {
			t, err := s.Get(gctx, key)
			if errors.Is(err, domain.ErrNotFound) {
				// deleted between Keys and Get
				return nil
			}
			if err != nil {
				return err
			}
			found[i] = t
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	tasks := make([]*domain.Task, 0, len(found))
	for _, t := range found {
		if t != nil {
			tasks = append(tasks, t)
		}
	}
	return tasks, nil
}

// Get retrieves the document stored under id.
func (s *JetStreamStore) Get(ctx context.Context, id string) (*domain.Task, error) {
	entry, err := s.entry(ctx, id)
	if err != nil {
		return nil, err
	}

	var t domain.Task
	if err := json.Unmarshal(entry.Value(), &t); err != nil {
		return nil, fmt.Errorf("failed to unmarshal task: %w", err)
	}
	return &t, nil
}

// Replace overwrites the document while it exists. A concurrent write
// between read and update is retried against the newer revision, so the
// last writer wins; a concurrent delete yields domain.ErrNotFound.
func (s *JetStreamStore) Replace(ctx context.Context, t *domain.Task) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("failed to marshal task: %w", err)
	}

	entry, err := s.entry(ctx, t.ID)
	if err != nil {
		return err
	}
	for attempt := 1; ; attempt++ {
		_, err := s.bucket.Update(ctx, t.ID, data, entry.Revision())
		if err == nil {
			return nil
		}

		current, lookupErr := s.entry(ctx, t.ID)
		if lookupErr != nil {
			return lookupErr
		}
		if current.Revision() == entry.Revision() || attempt == replaceAttempts {
			return fmt.Errorf("failed to update task: %w", err)
		}
		entry = current
	}
}

// Delete removes the document stored under id.
func (s *JetStreamStore) Delete(ctx context.Context, id string) error {
	if _, err := s.entry(ctx, id); err != nil {
		return err
	}
	if err := s.bucket.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// entry resolves id to its current KV entry. Keys that are not valid
// subject tokens can never exist, so they map to ErrNotFound too.
func (s *JetStreamStore) entry(ctx context.Context, id string) (jetstream.KeyValueEntry, error) {
	entry, err := s.bucket.Get(ctx, id)
	if err != nil {
		if errors.Is(err, jetstream.ErrKeyNotFound) || errors.Is(err, jetstream.ErrInvalidKey) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return entry, nil
}

// Ping reports whether the NATS connection is active.
func (s *JetStreamStore) Ping(_ context.Context) error {
	if s.conn == nil || !s.conn.IsConnected() {
		return errors.New("nats connection is not active")
	}
	return nil
}

// Close closes the NATS connection.
func (s *JetStreamStore) Close(_ context.Context) error {
	if s.conn != nil {
		s.conn.Close()
	}
	return nil
}
