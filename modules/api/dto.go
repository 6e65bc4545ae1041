package api

import domain "github.com/example/task-manager/domain/task"

// TaskResponse is the HTTP envelope for a single task.
type TaskResponse struct {
	Success bool         `json:"success"`
	Data    *domain.Task `json:"data"`
}

// ListTasksResponse is the HTTP envelope for the task list.
type ListTasksResponse struct {
	Success bool          `json:"success"`
	Count   int           `json:"count"`
	Data    []domain.Task `json:"data"`
}

// DeletedTask identifies the task removed by DELETE.
type DeletedTask struct {
	ID string `json:"id"`
}

// DeleteTaskResponse is the HTTP envelope for a successful delete.
type DeleteTaskResponse struct {
	Success bool        `json:"success"`
	Data    DeletedTask `json:"data"`
}

// HealthResponse is the HTTP response for health check.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorResponse is the HTTP response for errors.
type ErrorResponse struct {
	Success bool                `json:"success"`
	Error   string              `json:"error"`
	Details []domain.FieldError `json:"details,omitempty"`
}
