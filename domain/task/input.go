package task

import (
	"strings"
	"time"
)

// Input carries the client-supplied fields of a task. A nil field is absent
// and leaves the stored value untouched on update.
type Input struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	DueDate     *string `json:"dueDate,omitempty"`
}

// IsEmpty reports whether no field is set.
func (in Input) IsEmpty() bool {
	return in.Title == nil && in.Description == nil && in.Status == nil && in.DueDate == nil
}

// Apply merges the present fields of in into t. Title and description are
// trimmed; an empty due date clears it. Only due date parsing can fail here,
// the remaining rules are enforced by Validate.
func (in Input) Apply(t *Task) FieldErrors {
	var errs FieldErrors
	if in.Title != nil {
		t.Title = strings.TrimSpace(*in.Title)
	}
	if in.Description != nil {
		t.Description = strings.TrimSpace(*in.Description)
	}
	if in.Status != nil {
		t.Status = Status(strings.TrimSpace(*in.Status))
	}
	if in.DueDate != nil {
		due, err := ParseDueDate(*in.DueDate)
		if err != nil {
			errs.Add("dueDate", "Invalid due date")
		} else {
			t.DueDate = due
		}
	}
	return errs
}

// NewTask builds a pending task from in and validates it. A blank status
// falls back to pending.
func NewTask(in Input) (*Task, FieldErrors) {
	t := &Task{Status: StatusPending}
	errs := in.Apply(t)
	if t.Status == "" {
		t.Status = StatusPending
	}
	errs = append(errs, Validate(t)...)
	return t, errs
}

// Check validates only the present fields of in, as a partial update would
// apply them to any valid task.
func (in Input) Check() FieldErrors {
	t := &Task{Title: "-", Status: StatusPending}
	errs := in.Apply(t)
	return append(errs, Validate(t)...)
}

// dueDateLayouts are tried in order when parsing a due date.
var dueDateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04",
	time.DateOnly,
}

// ParseDueDate parses an RFC 3339 timestamp or a calendar date. An empty
// string yields nil.
func ParseDueDate(value string) (*time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, nil
	}
	var lastErr error
	for _, layout := range dueDateLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			t = t.UTC()
			return &t, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// FormatDueDate renders a due date as YYYY-MM-DD, or "" when unset.
func FormatDueDate(due *time.Time) string {
	if due == nil {
		return ""
	}
	return due.UTC().Format(time.DateOnly)
}

// Ptr returns a pointer to v. Handy for building an Input.
func Ptr[T any](v T) *T {
	return &v
}
