package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	domain "github.com/example/task-manager/domain/task"
	"github.com/example/task-manager/modules/task"
	"github.com/example/task-manager/modules/taskstore"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/types"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockLogger implements types.Logger for testing
type mockLogger struct{}

func (m *mockLogger) Debug(msg string, args ...any)         {}
func (m *mockLogger) Info(msg string, args ...any)          {}
func (m *mockLogger) Warn(msg string, args ...any)          {}
func (m *mockLogger) Error(msg string, args ...any)         {}
func (m *mockLogger) With(args ...any) types.Logger         { return m }
func (m *mockLogger) WithError(err error) types.Logger      { return m }
func (m *mockLogger) WithModule(module string) types.Logger { return m }

// repoPort serves TaskPort straight from a Repository, skipping the
// request-reply hop.
type repoPort struct {
	repo  *task.Repository
	store taskstore.Backend
}

func (p *repoPort) CreateTask(ctx context.Context, in domain.Input) (*domain.Task, error) {
	return p.repo.Insert(ctx, in)
}

func (p *repoPort) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	return p.repo.FindByID(ctx, id)
}

func (p *repoPort) ListTasks(ctx context.Context) ([]domain.Task, error) {
	tasks, err := p.repo.FindAll(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Task, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, *t)
	}
	return out, nil
}

func (p *repoPort) UpdateTask(ctx context.Context, id string, in domain.Input) (*domain.Task, error) {
	return p.repo.Update(ctx, id, in)
}

func (p *repoPort) DeleteTask(ctx context.Context, id string) error {
	return p.repo.Remove(ctx, id)
}

func (p *repoPort) StoreHealth(ctx context.Context) (*task.StoreHealthResponse, error) {
	if err := p.store.Ping(ctx); err != nil {
		return &task.StoreHealthResponse{Healthy: false, Backend: p.store.Name(), Message: err.Error()}, nil
	}
	return &task.StoreHealthResponse{Healthy: true, Backend: p.store.Name(), Message: "operational"}, nil
}

// failingPort fails every call with the same error.
type failingPort struct {
	err error
}

func (p *failingPort) CreateTask(context.Context, domain.Input) (*domain.Task, error) {
	return nil, p.err
}
func (p *failingPort) GetTask(context.Context, string) (*domain.Task, error) { return nil, p.err }
func (p *failingPort) ListTasks(context.Context) ([]domain.Task, error)      { return nil, p.err }
func (p *failingPort) UpdateTask(context.Context, string, domain.Input) (*domain.Task, error) {
	return nil, p.err
}
func (p *failingPort) DeleteTask(context.Context, string) error { return p.err }
func (p *failingPort) StoreHealth(context.Context) (*task.StoreHealthResponse, error) {
	return nil, p.err
}

// setupTestApp builds the API app over the given port.
func setupTestApp(t *testing.T, port task.TaskPort) *fiber.App {
	t.Helper()

	m := NewModule(Config{Port: 5000}, &mockLogger{})
	m.taskAdapter = port
	app, err := m.newApp()
	require.NoError(t, err)
	return app
}

// newRepoPort returns a TaskPort over in-memory SQLite.
func newRepoPort(t *testing.T) *repoPort {
	t.Helper()

	store, err := taskstore.OpenSQLite(":memory:", false)
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close(context.Background()) })
	return &repoPort{repo: task.NewRepository(store), store: store}
}

func doRequest(t *testing.T, app *fiber.App, method, path, body string) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()

	var decoded map[string]any
	if len(raw) > 0 && strings.HasPrefix(resp.Header.Get("Content-Type"), fiber.MIMEApplicationJSON) {
		require.NoError(t, json.Unmarshal(raw, &decoded), string(raw))
	}
	return resp, decoded
}

func TestAPI_BuyMilkScenario(t *testing.T) {
	app := setupTestApp(t, newRepoPort(t))

	resp, body := doRequest(t, app, http.MethodPost, "/api/tasks", `{"title":"Buy milk","status":"pending"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	data := body["data"].(map[string]any)
	id := data["id"].(string)
	require.NotEmpty(t, id)
	assert.Equal(t, "Buy milk", data["title"])
	createdUpdatedAt := data["updatedAt"].(string)

	resp, body = doRequest(t, app, http.MethodPut, "/api/tasks/"+id, `{"status":"completed"}`)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	data = body["data"].(map[string]any)
	assert.Equal(t, "completed", data["status"])
	assert.Equal(t, "Buy milk", data["title"])
	assert.NotEqual(t, createdUpdatedAt, data["updatedAt"])

	resp, body = doRequest(t, app, http.MethodDelete, "/api/tasks/"+id, "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, id, body["data"].(map[string]any)["id"])

	resp, body = doRequest(t, app, http.MethodGet, "/api/tasks/"+id, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, false, body["success"])
	assert.Equal(t, "Task not found", body["error"])
}

func TestAPI_ListTasks(t *testing.T) {
	app := setupTestApp(t, newRepoPort(t))

	resp, body := doRequest(t, app, http.MethodGet, "/api/tasks", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(0), body["count"])
	assert.Empty(t, body["data"])

	for _, title := range []string{"one", "two"} {
		resp, _ := doRequest(t, app, http.MethodPost, "/api/tasks", `{"title":"`+title+`"}`)
		require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	}

	resp, body = doRequest(t, app, http.MethodGet, "/api/tasks", "")
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(2), body["count"])
	assert.Len(t, body["data"], 2)
}

func TestAPI_CreateValidation(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		field   string
		message string
	}{
		{"empty title", `{"title":""}`, "title", "Task title is required"},
		{"missing title", `{"description":"no title"}`, "title", "Task title is required"},
		{"long title", `{"title":"` + strings.Repeat("x", 101) + `"}`, "title", "Task title cannot be more than 100 characters"},
		{"bad status", `{"title":"ok","status":"done"}`, "status", "`done` is not a valid status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := setupTestApp(t, newRepoPort(t))

			resp, body := doRequest(t, app, http.MethodPost, "/api/tasks", tt.body)
			require.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.Equal(t, false, body["success"])

			details := body["details"].([]any)
			require.Len(t, details, 1)
			detail := details[0].(map[string]any)
			assert.Equal(t, tt.field, detail["field"])
			assert.Equal(t, tt.message, detail["message"])

			_, list := doRequest(t, app, http.MethodGet, "/api/tasks", "")
			assert.Equal(t, float64(0), list["count"])
		})
	}
}

func TestAPI_MalformedBody(t *testing.T) {
	app := setupTestApp(t, newRepoPort(t))

	resp, body := doRequest(t, app, http.MethodPost, "/api/tasks", `{"title":`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid request body", body["error"])
}

func TestAPI_UpdateErrors(t *testing.T) {
	app := setupTestApp(t, newRepoPort(t))

	resp, _ := doRequest(t, app, http.MethodPut, "/api/tasks/missing", `{"title":"x"}`)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	resp, body := doRequest(t, app, http.MethodPost, "/api/tasks", `{"title":"valid"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	id := body["data"].(map[string]any)["id"].(string)

	resp, body = doRequest(t, app, http.MethodPut, "/api/tasks/"+id, `{"title":"   "}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Task title is required", body["error"])

	_, body = doRequest(t, app, http.MethodGet, "/api/tasks/"+id, "")
	assert.Equal(t, "valid", body["data"].(map[string]any)["title"])
}

// busPort depends on the task module and captures the request-reply adapter.
type busPort struct {
	port task.TaskPort
}

func (b *busPort) Name() string                  { return "api-test" }
func (b *busPort) Start(_ context.Context) error { return nil }
func (b *busPort) Stop(_ context.Context) error  { return nil }
func (b *busPort) Dependencies() []string        { return []string{"task"} }

func (b *busPort) SetDependencyServiceContainer(dependency string, container mono.ServiceContainer) {
	if dependency == "task" {
		b.port = task.NewTaskAdapter(container)
	}
}

// newBusPort runs the task module in a mono application and returns the
// adapter that calls it over the embedded NATS bus.
func newBusPort(t *testing.T) task.TaskPort {
	t.Helper()

	app, err := mono.NewMonoApplication(mono.WithLogLevel(mono.LogLevelError))
	require.NoError(t, err)
	bus := &busPort{}
	require.NoError(t, app.Register(task.NewModule(taskstore.Config{URL: "sqlite://:memory:"}, app.Logger())))
	require.NoError(t, app.Register(bus))
	require.NoError(t, app.Start(context.Background()))
	t.Cleanup(func() { _ = app.Stop(context.Background()) })

	require.NotNil(t, bus.port)
	return bus.port
}

func TestAPI_OversizedTitleOverBus(t *testing.T) {
	app := setupTestApp(t, newBusPort(t))
	huge := strings.Repeat("x", 1100*1024)

	resp, body := doRequest(t, app, http.MethodPost, "/api/tasks", `{"title":"`+huge+`"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Task title cannot be more than 100 characters", body["error"])

	resp, body = doRequest(t, app, http.MethodPost, "/api/tasks", `{"title":"valid"}`)
	require.Equal(t, fiber.StatusCreated, resp.StatusCode)
	id := body["data"].(map[string]any)["id"].(string)

	resp, body = doRequest(t, app, http.MethodPut, "/api/tasks/"+id, `{"title":"`+huge+`"}`)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Task title cannot be more than 100 characters", body["error"])
}

func TestAPI_DeleteTwice(t *testing.T) {
	app := setupTestApp(t, newRepoPort(t))

	_, body := doRequest(t, app, http.MethodPost, "/api/tasks", `{"title":"once"}`)
	id := body["data"].(map[string]any)["id"].(string)

	resp, _ := doRequest(t, app, http.MethodDelete, "/api/tasks/"+id, "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, _ = doRequest(t, app, http.MethodDelete, "/api/tasks/"+id, "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
}

func TestAPI_InternalErrorIsMasked(t *testing.T) {
	app := setupTestApp(t, &failingPort{err: errors.New("connection refused")})

	resp, body := doRequest(t, app, http.MethodGet, "/api/tasks", "")
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Equal(t, "Server Error", body["error"])
	assert.Equal(t, false, body["success"])
}

func TestAPI_CrossCuttingHeaders(t *testing.T) {
	app := setupTestApp(t, newRepoPort(t))

	req := httptest.NewRequest(http.MethodGet, "/api/tasks", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	assert.Equal(t, "*", resp.Header.Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))
	assert.NotEmpty(t, resp.Header.Get("X-Frame-Options"))
}

func TestAPI_UnknownRoute(t *testing.T) {
	app := setupTestApp(t, newRepoPort(t))

	resp, body := doRequest(t, app, http.MethodGet, "/api/nope", "")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Route not found", body["error"])
}

func TestAPI_RootAndHealth(t *testing.T) {
	app := setupTestApp(t, newRepoPort(t))

	resp, _ := doRequest(t, app, http.MethodGet, "/", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	resp, body := doRequest(t, app, http.MethodGet, "/health", "")
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Equal(t, "healthy", body["status"])

	failing := setupTestApp(t, &failingPort{err: errors.New("down")})
	resp, body = doRequest(t, failing, http.MethodGet, "/health", "")
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
	assert.Equal(t, "unhealthy", body["status"])
}

func TestAPIModule_StartRequiresAdapter(t *testing.T) {
	m := NewModule(Config{Port: 0}, &mockLogger{})
	assert.Error(t, m.Start(context.Background()))
	assert.Equal(t, "api", m.Name())
	assert.Equal(t, []string{"task"}, m.Dependencies())
	assert.False(t, m.Health(context.Background()).Healthy)
}
