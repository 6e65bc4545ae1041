package task

import (
	"context"
	"encoding/json"
	"fmt"

	domain "github.com/example/task-manager/domain/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
)

// taskAdapter wraps ServiceContainer for type-safe cross-module communication.
// This is the adapter that implements the TaskPort interface.
type taskAdapter struct {
	container mono.ServiceContainer
}

// NewTaskAdapter creates a new adapter for task services.
// container is the ServiceContainer received via SetDependencyServiceContainer.
func NewTaskAdapter(container mono.ServiceContainer) TaskPort {
	if container == nil {
		panic("task adapter requires non-nil ServiceContainer")
	}
	return &taskAdapter{container: container}
}

// CreateTask creates a task via the create-task service.
func (a *taskAdapter) CreateTask(ctx context.Context, in domain.Input) (*domain.Task, error) {
	if _, errs := domain.NewTask(in); len(errs) > 0 {
		return nil, errs.Err()
	}

	var resp TaskResponse
	req := CreateTaskRequest{Task: in}
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceCreateTask,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("create-task service call failed: %w", err)
	}
	if err := resp.Error.Err(); err != nil {
		return nil, err
	}
	return resp.Task, nil
}

// GetTask retrieves a task by ID via the get-task service.
func (a *taskAdapter) GetTask(ctx context.Context, taskID string) (*domain.Task, error) {
	var resp TaskResponse
	req := GetTaskRequest{TaskID: taskID}
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceGetTask,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("get-task service call failed: %w", err)
	}
	if err := resp.Error.Err(); err != nil {
		return nil, err
	}
	return resp.Task, nil
}

// ListTasks lists all tasks via the list-tasks service, one page per call.
func (a *taskAdapter) ListTasks(ctx context.Context) ([]domain.Task, error) {
	tasks := []domain.Task{}
	req := ListTasksRequest{Limit: DefaultListLimit}
	for {
		var resp ListTasksResponse
		if err := helper.CallRequestReplyService(
			ctx,
			a.container,
			ServiceListTasks,
			json.Marshal,
			json.Unmarshal,
			&req,
			&resp,
		); err != nil {
			return nil, fmt.Errorf("list-tasks service call failed: %w", err)
		}
		if err := resp.Error.Err(); err != nil {
			return nil, err
		}
		tasks = append(tasks, resp.Tasks...)

		if resp.Next == "" {
			return tasks, nil
		}
		if resp.Next == req.After {
			return nil, fmt.Errorf("list-tasks returned the same cursor twice: %s", resp.Next)
		}
		req.After = resp.Next
	}
}

// UpdateTask merges changes into a task via the update-task service.
func (a *taskAdapter) UpdateTask(ctx context.Context, taskID string, in domain.Input) (*domain.Task, error) {
	if err := in.Check().Err(); err != nil {
		return nil, err
	}

	var resp TaskResponse
	req := UpdateTaskRequest{TaskID: taskID, Changes: in}
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceUpdateTask,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("update-task service call failed: %w", err)
	}
	if err := resp.Error.Err(); err != nil {
		return nil, err
	}
	return resp.Task, nil
}

// DeleteTask deletes a task via the delete-task service.
func (a *taskAdapter) DeleteTask(ctx context.Context, taskID string) error {
	var resp DeleteTaskResponse
	req := DeleteTaskRequest{TaskID: taskID}
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceDeleteTask,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return fmt.Errorf("delete-task service call failed: %w", err)
	}
	if err := resp.Error.Err(); err != nil {
		return err
	}
	if !resp.Deleted {
		return fmt.Errorf("task not deleted: %s", taskID)
	}
	return nil
}

// StoreHealth reports the backend state via the store-health service.
func (a *taskAdapter) StoreHealth(ctx context.Context) (*StoreHealthResponse, error) {
	var resp StoreHealthResponse
	req := StoreHealthRequest{}
	if err := helper.CallRequestReplyService(
		ctx,
		a.container,
		ServiceStoreHealth,
		json.Marshal,
		json.Unmarshal,
		&req,
		&resp,
	); err != nil {
		return nil, fmt.Errorf("store-health service call failed: %w", err)
	}
	return &resp, nil
}
