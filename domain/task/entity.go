package task

import "time"

// Status represents the progress state of a task.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in progress"
	StatusCompleted  Status = "completed"
)

// Statuses returns every allowed status in display order.
func Statuses() []Status {
	return []Status{StatusPending, StatusInProgress, StatusCompleted}
}

// IsValid reports whether s is one of the allowed statuses.
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Icon is the glyph shown next to a task with this status.
func (s Status) Icon() string {
	switch s {
	case StatusCompleted:
		return "✔"
	case StatusInProgress:
		return "◐"
	default:
		return "○"
	}
}

// Field length limits, counted in characters.
const (
	MaxTitleLength       = 100
	MaxDescriptionLength = 500
)

// Task is the core domain entity representing a unit of work.
type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Status      Status     `json:"status"`
	DueDate     *time.Time `json:"dueDate,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

// Clone returns a deep copy of the task.
func (t *Task) Clone() *Task {
	c := *t
	if t.DueDate != nil {
		due := *t.DueDate
		c.DueDate = &due
	}
	return &c
}
