package task

import (
	"context"
	"errors"

	domain "github.com/example/task-manager/domain/task"
)

// Service names registered by the task module. The framework prefixes them
// with "services.task.".
const (
	ServiceCreateTask  = "create-task"
	ServiceGetTask     = "get-task"
	ServiceListTasks   = "list-tasks"
	ServiceUpdateTask  = "update-task"
	ServiceDeleteTask  = "delete-task"
	ServiceStoreHealth = "store-health"
)

// Error codes carried in ServiceError.
const (
	CodeValidation = "validation_error"
	CodeNotFound   = "not_found"
	CodeInternal   = "internal_error"
)

// ServiceError carries a domain failure across the request-reply boundary.
type ServiceError struct {
	Code    string             `json:"code"`
	Message string             `json:"message"`
	Fields  domain.FieldErrors `json:"fields,omitempty"`
}

// Err rebuilds the domain error on the calling side.
func (e *ServiceError) Err() error {
	if e == nil {
		return nil
	}
	switch e.Code {
	case CodeNotFound:
		return domain.ErrNotFound
	case CodeValidation:
		return &domain.ValidationError{Fields: e.Fields}
	default:
		return errors.New(e.Message)
	}
}

// toServiceError classifies err for transport.
func toServiceError(err error) *ServiceError {
	if err == nil {
		return nil
	}
	var verr *domain.ValidationError
	switch {
	case errors.As(err, &verr):
		return &ServiceError{Code: CodeValidation, Message: verr.Error(), Fields: verr.Fields}
	case errors.Is(err, domain.ErrNotFound):
		return &ServiceError{Code: CodeNotFound, Message: domain.ErrNotFound.Error()}
	default:
		return &ServiceError{Code: CodeInternal, Message: err.Error()}
	}
}

// CreateTaskRequest is the request for creating a task.
type CreateTaskRequest struct {
	Task domain.Input `json:"task"`
}

// GetTaskRequest is the request for getting a task.
type GetTaskRequest struct {
	TaskID string `json:"task_id"`
}

// Paging limits for list-tasks. A task encodes to at most about 4KB, so a
// full page stays well below the default 1MB NATS payload.
const (
	DefaultListLimit = 100
	MaxListLimit     = 200
)

// ListTasksRequest asks for one page of the newest-first listing. After is
// the cursor returned with the previous page; empty starts at the newest task.
type ListTasksRequest struct {
	After string `json:"after,omitempty"`
	Limit int    `json:"limit,omitempty"`
}

// UpdateTaskRequest is the request for updating a task.
type UpdateTaskRequest struct {
	TaskID  string       `json:"task_id"`
	Changes domain.Input `json:"changes"`
}

// DeleteTaskRequest is the request for deleting a task.
type DeleteTaskRequest struct {
	TaskID string `json:"task_id"`
}

// StoreHealthRequest is the request for the backend health check.
type StoreHealthRequest struct{}

// TaskResponse is the response for a single task.
type TaskResponse struct {
	Task  *domain.Task  `json:"task,omitempty"`
	Error *ServiceError `json:"error,omitempty"`
}

// ListTasksResponse is one page of tasks. Next is empty on the last page.
type ListTasksResponse struct {
	Tasks []domain.Task `json:"tasks"`
	Total int           `json:"total"`
	Next  string        `json:"next,omitempty"`
	Error *ServiceError `json:"error,omitempty"`
}

// DeleteTaskResponse is the response for deleting a task.
type DeleteTaskResponse struct {
	Deleted bool          `json:"deleted"`
	Error   *ServiceError `json:"error,omitempty"`
}

// StoreHealthResponse reports the state of the storage backend.
type StoreHealthResponse struct {
	Healthy bool   `json:"healthy"`
	Backend string `json:"backend"`
	Message string `json:"message"`
}

// TaskPort defines the interface for task operations (hexagonal port).
// Driving adapters such as the HTTP API depend on it instead of the module.
type TaskPort interface {
	CreateTask(ctx context.Context, in domain.Input) (*domain.Task, error)
	GetTask(ctx context.Context, taskID string) (*domain.Task, error)
	ListTasks(ctx context.Context) ([]domain.Task, error)
	UpdateTask(ctx context.Context, taskID string, in domain.Input) (*domain.Task, error)
	DeleteTask(ctx context.Context, taskID string) error
	StoreHealth(ctx context.Context) (*StoreHealthResponse, error)
}
