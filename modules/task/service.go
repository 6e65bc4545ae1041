package task

import (
	"context"

	domain "github.com/example/task-manager/domain/task"
	"github.com/go-monolith/mono"
)

// Domain failures are returned in-band as ServiceError so the caller can
// tell a missing task from a validation failure. Only internal errors are
// logged here.

// createTask handles the create-task service request.
func (m *TaskModule) createTask(ctx context.Context, req CreateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	created, err := m.repo.Insert(ctx, req.Task)
	if err != nil {
		return TaskResponse{Error: m.serviceError("create", "", err)}, nil
	}
	m.logger.Info("Task created", "id", created.ID, "title", created.Title)
	return TaskResponse{Task: created}, nil
}

// getTask handles the get-task service request.
func (m *TaskModule) getTask(ctx context.Context, req GetTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	found, err := m.repo.FindByID(ctx, req.TaskID)
	if err != nil {
		return TaskResponse{Error: m.serviceError("get", req.TaskID, err)}, nil
	}
	return TaskResponse{Task: found}, nil
}

// listTasks handles the list-tasks service request.
func (m *TaskModule) listTasks(ctx context.Context, req ListTasksRequest, _ *mono.Msg) (ListTasksResponse, error) {
	page, err := m.repo.FindPage(ctx, req.After, req.Limit)
	if err != nil {
		return ListTasksResponse{Tasks: []domain.Task{}, Error: m.serviceError("list", "", err)}, nil
	}

	response := ListTasksResponse{
		Tasks: make([]domain.Task, 0, len(page.Tasks)),
		Total: page.Total,
		Next:  page.Next,
	}
	for _, t := range page.Tasks {
		response.Tasks = append(response.Tasks, *t)
	}
	return response, nil
}

// updateTask handles the update-task service request.
func (m *TaskModule) updateTask(ctx context.Context, req UpdateTaskRequest, _ *mono.Msg) (TaskResponse, error) {
	updated, err := m.repo.Update(ctx, req.TaskID, req.Changes)
	if err != nil {
		return TaskResponse{Error: m.serviceError("update", req.TaskID, err)}, nil
	}
	m.logger.Info("Task updated", "id", updated.ID, "status", updated.Status)
	return TaskResponse{Task: updated}, nil
}

// deleteTask handles the delete-task service request.
func (m *TaskModule) deleteTask(ctx context.Context, req DeleteTaskRequest, _ *mono.Msg) (DeleteTaskResponse, error) {
	if err := m.repo.Remove(ctx, req.TaskID); err != nil {
		return DeleteTaskResponse{Error: m.serviceError("delete", req.TaskID, err)}, nil
	}
	m.logger.Info("Task deleted", "id", req.TaskID)
	return DeleteTaskResponse{Deleted: true}, nil
}

// storeHealth handles the store-health service request.
func (m *TaskModule) storeHealth(ctx context.Context, _ StoreHealthRequest, _ *mono.Msg) (StoreHealthResponse, error) {
	status := m.Health(ctx)
	backend, _ := status.Details["backend"].(string)
	return StoreHealthResponse{
		Healthy: status.Healthy,
		Backend: backend,
		Message: status.Message,
	}, nil
}

func (m *TaskModule) serviceError(op, id string, err error) *ServiceError {
	se := toServiceError(err)
	if se.Code == CodeInternal {
		m.logger.Error("Task operation failed", "op", op, "id", id, "error", err)
	}
	return se
}
