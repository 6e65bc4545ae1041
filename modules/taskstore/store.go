// Package taskstore provides the persistence backends for tasks.
package taskstore

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	domain "github.com/example/task-manager/domain/task"
)

// DefaultURL is used when no database URL is configured.
const DefaultURL = "sqlite://tasks.db"

// Collection is the table, collection, bucket or key prefix holding tasks.
const Collection = "tasks"

// Backend persists task documents. Implementations return domain.ErrNotFound
// for any id they cannot resolve, including malformed ids.
type Backend interface {
	// Name identifies the backend driver, e.g. "sqlite" or "mongodb".
	Name() string
	// Insert stores t and assigns its ID.
	Insert(ctx context.Context, t *domain.Task) error
	List(ctx context.Context) ([]*domain.Task, error)
	Get(ctx context.Context, id string) (*domain.Task, error)
	// Replace overwrites the stored document with the same ID.
	Replace(ctx context.Context, t *domain.Task) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

// Config selects and configures a backend.
type Config struct {
	// URL picks the driver by scheme: sqlite://, postgres://, mongodb://,
	// nats:// or redis://. A bare path is treated as a SQLite file.
	URL string
	// Debug enables driver query logging where supported.
	Debug bool
}

// Open connects to the backend described by cfg.
func Open(ctx context.Context, cfg Config) (Backend, error) {
	raw := strings.TrimSpace(cfg.URL)
	if raw == "" {
		raw = DefaultURL
	}

	scheme := ""
	if i := strings.Index(raw, "://"); i > 0 {
		scheme = strings.ToLower(raw[:i])
	}
	if scheme == "" {
		scheme = "sqlite"
	}

	var (
		backend Backend
		err     error
	)
	switch scheme {
	case "sqlite", "file":
		backend, err = OpenSQLite(sqlitePath(raw), cfg.Debug)
	case "postgres", "postgresql":
		backend, err = OpenPostgres(raw, cfg.Debug)
	case "mongodb", "mongodb+srv":
		backend, err = OpenMongo(ctx, raw, mongoDatabase(raw))
	case "nats", "tls":
		backend, err = OpenJetStream(ctx, raw, Collection)
	case "redis", "rediss":
		backend, err = OpenRedis(ctx, raw)
	default:
		return nil, fmt.Errorf("unsupported database url scheme %q", scheme)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", scheme, err)
	}
	return backend, nil
}

func sqlitePath(raw string) string {
	for _, prefix := range []string{"sqlite://", "file://"} {
		if strings.HasPrefix(strings.ToLower(raw), prefix) {
			raw = raw[len(prefix):]
			break
		}
	}
	if raw == "" {
		return "tasks.db"
	}
	return raw
}

func mongoDatabase(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return "taskmanager"
	}
	name := strings.Trim(u.Path, "/")
	if name == "" {
		return "taskmanager"
	}
	return name
}

// Redact hides any password in a database URL so it can be logged.
func Redact(raw string) string {
	if !strings.Contains(raw, "://") {
		return raw
	}
	u, err := url.Parse(raw)
	if err != nil {
		return "<unparseable database url>"
	}
	return u.Redacted()
}
