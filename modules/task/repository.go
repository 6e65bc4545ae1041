package task

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	domain "github.com/example/task-manager/domain/task"
	"github.com/example/task-manager/modules/taskstore"
)

// Repository is the validating task store. It owns defaults, trimming,
// validation and timestamps; the backend only persists documents.
type Repository struct {
	store taskstore.Backend
	now   func() time.Time
}

// NewRepository creates a repository over the given backend.
func NewRepository(store taskstore.Backend) *Repository {
	return &Repository{store: store, now: time.Now}
}

// timestamp returns the current time at the precision every backend keeps.
func (r *Repository) timestamp() time.Time {
	return r.now().UTC().Truncate(time.Millisecond)
}

// Insert validates in and persists a new task.
func (r *Repository) Insert(ctx context.Context, in domain.Input) (*domain.Task, error) {
	t, errs := domain.NewTask(in)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	now := r.timestamp()
	t.CreatedAt = now
	t.UpdatedAt = now

	if err := r.store.Insert(ctx, t); err != nil {
		return nil, fmt.Errorf("failed to save task: %w", err)
	}
	return t, nil
}

// FindAll returns every task, newest first.
func (r *Repository) FindAll(ctx context.Context) ([]*domain.Task, error) {
	tasks, err := r.store.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
		}
		return tasks[i].ID < tasks[j].ID
	})
	return tasks, nil
}

// Page is one slice of the newest-first listing.
type Page struct {
	Tasks []*domain.Task
	Total int
	Next  string
}

// FindPage returns up to limit tasks that sort after the cursor, newest first.
// The cursor names the position of the last task already seen, so tasks
// inserted or deleted between pages do not shift later pages.
func (r *Repository) FindPage(ctx context.Context, after string, limit int) (*Page, error) {
	switch {
	case limit <= 0:
		limit = DefaultListLimit
	case limit > MaxListLimit:
		limit = MaxListLimit
	}

	tasks, err := r.FindAll(ctx)
	if err != nil {
		return nil, err
	}

	start := 0
	if after != "" {
		createdAt, id, err := parseCursor(after)
		if err != nil {
			return nil, err
		}
		start = sort.Search(len(tasks), func(i int) bool {
			return sortsAfter(tasks[i], createdAt, id)
		})
	}

	end := min(start+limit, len(tasks))
	page := &Page{Tasks: tasks[start:end], Total: len(tasks)}
	if end < len(tasks) {
		page.Next = cursorOf(tasks[end-1])
	}
	return page, nil
}

// sortsAfter reports whether t comes after the (createdAt, id) position in
// newest-first order.
func sortsAfter(t *domain.Task, createdAt time.Time, id string) bool {
	if !t.CreatedAt.Equal(createdAt) {
		return t.CreatedAt.Before(createdAt)
	}
	return t.ID > id
}

func cursorOf(t *domain.Task) string {
	return t.CreatedAt.UTC().Format(time.RFC3339Nano) + "|" + t.ID
}

func parseCursor(cursor string) (time.Time, string, error) {
	ts, id, ok := strings.Cut(cursor, "|")
	createdAt, err := time.Parse(time.RFC3339Nano, ts)
	if !ok || err != nil || id == "" {
		var errs domain.FieldErrors
		errs.Add("after", "Invalid list cursor")
		return time.Time{}, "", errs.Err()
	}
	return createdAt, id, nil
}

// FindByID returns the task or domain.ErrNotFound.
func (r *Repository) FindByID(ctx context.Context, id string) (*domain.Task, error) {
	if id == "" {
		return nil, domain.ErrNotFound
	}
	return r.store.Get(ctx, id)
}

// Update merges the present fields of in into the stored task. The stored
// task is left untouched when validation fails.
func (r *Repository) Update(ctx context.Context, id string, in domain.Input) (*domain.Task, error) {
	current, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	next := current.Clone()
	errs := in.Apply(next)
	errs = append(errs, domain.Validate(next)...)
	if err := errs.Err(); err != nil {
		return nil, err
	}

	now := r.timestamp()
	if !now.After(current.UpdatedAt) {
		now = current.UpdatedAt.Add(time.Millisecond)
	}
	next.UpdatedAt = now

	if err := r.store.Replace(ctx, next); err != nil {
		return nil, err
	}
	return next, nil
}

// Remove deletes the task. A second call for the same id fails with
// domain.ErrNotFound.
func (r *Repository) Remove(ctx context.Context, id string) error {
	if id == "" {
		return domain.ErrNotFound
	}
	return r.store.Delete(ctx, id)
}
