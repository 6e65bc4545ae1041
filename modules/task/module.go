package task

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/task-manager/modules/taskstore"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/go-monolith/mono/pkg/types"
)

// TaskModule owns the task store handle and exposes task services.
type TaskModule struct {
	cfg    taskstore.Config
	open   func(context.Context, taskstore.Config) (taskstore.Backend, error)
	store  taskstore.Backend
	repo   *Repository
	logger types.Logger
}

// Compile-time interface checks.
var _ mono.Module = (*TaskModule)(nil)
var _ mono.ServiceProviderModule = (*TaskModule)(nil)
var _ mono.HealthCheckableModule = (*TaskModule)(nil)

// NewModule creates a TaskModule. The backend is connected in Start.
func NewModule(cfg taskstore.Config, logger types.Logger) *TaskModule {
	return &TaskModule{
		cfg:    cfg,
		open:   taskstore.Open,
		logger: logger,
	}
}

// NewModuleWithBackend creates a TaskModule over an already opened backend.
// The module still closes it on Stop.
func NewModuleWithBackend(store taskstore.Backend, logger types.Logger) *TaskModule {
	m := NewModule(taskstore.Config{}, logger)
	m.open = func(context.Context, taskstore.Config) (taskstore.Backend, error) {
		return store, nil
	}
	return m
}

// Name returns the module name.
func (m *TaskModule) Name() string {
	return "task"
}

// Repository returns the validating store, or nil before Start.
func (m *TaskModule) Repository() *Repository {
	return m.repo
}

// RegisterServices registers request-reply services in the service container.
func (m *TaskModule) RegisterServices(container mono.ServiceContainer) error {
	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceCreateTask, json.Unmarshal, json.Marshal, m.createTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceCreateTask, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceGetTask, json.Unmarshal, json.Marshal, m.getTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceGetTask, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceListTasks, json.Unmarshal, json.Marshal, m.listTasks,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceListTasks, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceUpdateTask, json.Unmarshal, json.Marshal, m.updateTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceUpdateTask, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceDeleteTask, json.Unmarshal, json.Marshal, m.deleteTask,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceDeleteTask, err)
	}

	if err := helper.RegisterTypedRequestReplyService(
		container, ServiceStoreHealth, json.Unmarshal, json.Marshal, m.storeHealth,
	); err != nil {
		return fmt.Errorf("failed to register %s service: %w", ServiceStoreHealth, err)
	}

	m.logger.Info("Registered task services",
		"services", []string{
			ServiceCreateTask, ServiceGetTask, ServiceListTasks,
			ServiceUpdateTask, ServiceDeleteTask, ServiceStoreHealth,
		})
	return nil
}

// Start connects the store backend. The HTTP modules depend on this module,
// so the store is ready before any request is served.
func (m *TaskModule) Start(ctx context.Context) error {
	store, err := m.open(ctx, m.cfg)
	if err != nil {
		return fmt.Errorf("failed to open task store: %w", err)
	}
	m.store = store
	m.repo = NewRepository(store)

	m.logger.Info("Task module started", "backend", store.Name())
	return nil
}

// Stop disconnects the store backend.
func (m *TaskModule) Stop(ctx context.Context) error {
	if m.store == nil {
		return nil
	}
	m.logger.Info("Closing task store", "backend", m.store.Name())
	if err := m.store.Close(ctx); err != nil {
		return fmt.Errorf("failed to close task store: %w", err)
	}
	m.store = nil
	return nil
}

// Health pings the store backend.
func (m *TaskModule) Health(ctx context.Context) mono.HealthStatus {
	if m.store == nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: "store not initialized",
		}
	}

	if err := m.store.Ping(ctx); err != nil {
		return mono.HealthStatus{
			Healthy: false,
			Message: err.Error(),
			Details: map[string]any{"backend": m.store.Name()},
		}
	}

	return mono.HealthStatus{
		Healthy: true,
		Message: "operational",
		Details: map[string]any{"backend": m.store.Name()},
	}
}
