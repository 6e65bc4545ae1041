// Package web serves the server-rendered task pages. It talks to the task
// service only through the HTTP client.
package web

import (
	"context"
	"fmt"
	"html/template"
	"time"

	domain "github.com/example/task-manager/domain/task"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

// TaskAPI is the subset of the task client the pages need.
// *client.Client satisfies it.
type TaskAPI interface {
	GetAllTasks(ctx context.Context) ([]domain.Task, error)
	GetTask(ctx context.Context, id string) (*domain.Task, error)
	CreateTask(ctx context.Context, in domain.Input) (*domain.Task, error)
	UpdateTask(ctx context.Context, id string, in domain.Input) (*domain.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// Config holds the HTTP settings for the web module.
type Config struct {
	Port int
}

// WebModule renders the task list and forms.
type WebModule struct {
	cfg    Config
	api    TaskAPI
	app    *fiber.App
	tmpl   *template.Template
	logger types.Logger
}

var _ mono.Module = (*WebModule)(nil)
var _ mono.HealthCheckableModule = (*WebModule)(nil)

// NewModule creates a new WebModule backed by api.
func NewModule(cfg Config, api TaskAPI, logger types.Logger) *WebModule {
	return &WebModule{
		cfg:    cfg,
		api:    api,
		tmpl:   newTemplates(),
		logger: logger,
	}
}

// Name returns the module name.
func (m *WebModule) Name() string {
	return "web"
}

func (m *WebModule) newApp() *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               "Task Manager",
		DisableStartupMessage: true,
	})
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "[${time}] web ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(helmet.New())
	m.setupRoutes(app)
	return app
}

// Start serves the pages.
func (m *WebModule) Start(_ context.Context) error {
	if m.api == nil {
		return fmt.Errorf("task API client not set")
	}
	m.app = m.newApp()

	addr := fmt.Sprintf(":%d", m.cfg.Port)
	errCh := make(chan error, 1)
	go func() {
		if err := m.app.Listen(addr); err != nil {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("web server failed to start: %w", err)
	case <-time.After(100 * time.Millisecond):
	}

	m.logger.Info("Web server started", "addr", addr)
	return nil
}

// Stop shuts down the web server.
func (m *WebModule) Stop(ctx context.Context) error {
	if m.app == nil {
		return nil
	}
	m.logger.Info("Shutting down web server")
	if err := m.app.ShutdownWithContext(ctx); err != nil {
		return fmt.Errorf("failed to shutdown web server: %w", err)
	}
	return nil
}

// Health returns the health status of the module.
func (m *WebModule) Health(_ context.Context) mono.HealthStatus {
	return mono.HealthStatus{
		Healthy: m.app != nil,
		Message: "operational",
		Details: map[string]any{
			"port": m.cfg.Port,
		},
	}
}
