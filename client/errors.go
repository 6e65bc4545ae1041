package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	domain "github.com/example/task-manager/domain/task"
)

// Guard errors returned before any request is sent.
var (
	ErrTaskIDRequired   = errors.New("Task ID is required")
	ErrTaskDataRequired = errors.New("Task data is required")
)

// APIError is a non-2xx response from the task service.
type APIError struct {
	StatusCode int
	Message    string
	Fields     domain.FieldErrors
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("task service returned %d", e.StatusCode)
	}
	return e.Message
}

// Is maps 404 and 400 onto the domain sentinels so callers can use errors.Is.
func (e *APIError) Is(target error) bool {
	switch target {
	case domain.ErrNotFound:
		return e.StatusCode == http.StatusNotFound
	case domain.ErrValidation:
		return e.StatusCode == http.StatusBadRequest && len(e.Fields) > 0
	}
	return false
}

// TransportError wraps a failure to reach the task service or to read its
// response. The underlying error is preserved.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// errorBody is the error envelope written by the task service.
type errorBody struct {
	Error   string              `json:"error"`
	Details []domain.FieldError `json:"details"`
}

// readErrorResponse turns a non-2xx response into an *APIError.
func readErrorResponse(resp *http.Response) error {
	apiErr := &APIError{StatusCode: resp.StatusCode}

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return apiErr
	}
	var body errorBody
	if err := json.Unmarshal(data, &body); err == nil {
		apiErr.Message = body.Error
		apiErr.Fields = body.Details
		return apiErr
	}
	apiErr.Message = strings.TrimSpace(string(data))
	return apiErr
}

// Message returns the server-provided message carried by err, or fallback
// when err holds none. Guard errors return their own text.
func Message(err error, fallback string) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	if errors.Is(err, ErrTaskIDRequired) || errors.Is(err, ErrTaskDataRequired) {
		return err.Error()
	}
	return fallback
}
