package task

import (
	"errors"
	"strings"
)

// Sentinel errors for task operations.
var (
	// ErrNotFound is returned when no task exists for the given id.
	ErrNotFound = errors.New("task not found")

	// ErrValidation matches any *ValidationError via errors.Is.
	ErrValidation = errors.New("task validation failed")
)

// FieldError describes a single invalid field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// FieldErrors is an ordered list of field violations.
type FieldErrors []FieldError

// Add appends a violation for field.
func (fe *FieldErrors) Add(field, message string) {
	*fe = append(*fe, FieldError{Field: field, Message: message})
}

// Messages returns the violation messages in order.
func (fe FieldErrors) Messages() []string {
	msgs := make([]string, 0, len(fe))
	for _, e := range fe {
		msgs = append(msgs, e.Message)
	}
	return msgs
}

// Err returns a *ValidationError when fe is non-empty, nil otherwise.
func (fe FieldErrors) Err() error {
	if len(fe) == 0 {
		return nil
	}
	return &ValidationError{Fields: fe}
}

// ValidationError is returned when a task violates the entity rules.
type ValidationError struct {
	Fields FieldErrors `json:"fields"`
}

func (e *ValidationError) Error() string {
	if len(e.Fields) == 0 {
		return ErrValidation.Error()
	}
	return strings.Join(e.Fields.Messages(), ", ")
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
