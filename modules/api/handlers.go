package api

import (
	"strings"

	domain "github.com/example/task-manager/domain/task"
	"github.com/gofiber/fiber/v2"
)

// setupRoutes configures all HTTP routes.
func (m *APIModule) setupRoutes(app *fiber.App) {
	app.Get("/", m.rootHandler)
	app.Get("/health", m.healthHandler)

	tasks := app.Group("/api/tasks")
	tasks.Get("/", m.listTasks)
	tasks.Post("/", m.createTask)
	tasks.Get("/:id", m.getTask)
	tasks.Put("/:id", m.updateTask)
	tasks.Delete("/:id", m.deleteTask)
}

// rootHandler handles GET /.
func (m *APIModule) rootHandler(c *fiber.Ctx) error {
	return c.SendString("Task Manager API is running")
}

// healthHandler handles GET /health.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	details := map[string]any{
		"module": "api",
		"port":   m.cfg.Port,
	}

	store, err := m.taskAdapter.StoreHealth(c.UserContext())
	if err != nil {
		details["store"] = err.Error()
		return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{
			Status:  "unhealthy",
			Details: details,
		})
	}

	details["store"] = store
	if !store.Healthy {
		return c.Status(fiber.StatusServiceUnavailable).JSON(HealthResponse{
			Status:  "unhealthy",
			Details: details,
		})
	}
	return c.JSON(HealthResponse{
		Status:  "healthy",
		Details: details,
	})
}

// listTasks handles GET /api/tasks.
func (m *APIModule) listTasks(c *fiber.Ctx) error {
	tasks, err := m.taskAdapter.ListTasks(c.UserContext())
	if err != nil {
		return m.writeError(c, "list", err)
	}

	return c.JSON(ListTasksResponse{
		Success: true,
		Count:   len(tasks),
		Data:    tasks,
	})
}

// getTask handles GET /api/tasks/:id.
func (m *APIModule) getTask(c *fiber.Ctx) error {
	taskID := strings.TrimSpace(c.Params("id"))
	if taskID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: msgTaskIDRequired})
	}

	t, err := m.taskAdapter.GetTask(c.UserContext(), taskID)
	if err != nil {
		return m.writeError(c, "get", err)
	}

	return c.JSON(TaskResponse{Success: true, Data: t})
}

// createTask handles POST /api/tasks.
func (m *APIModule) createTask(c *fiber.Ctx) error {
	var in domain.Input
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: msgInvalidBody})
	}

	t, err := m.taskAdapter.CreateTask(c.UserContext(), in)
	if err != nil {
		return m.writeError(c, "create", err)
	}

	return c.Status(fiber.StatusCreated).JSON(TaskResponse{Success: true, Data: t})
}

// updateTask handles PUT /api/tasks/:id. Absent fields keep their values.
func (m *APIModule) updateTask(c *fiber.Ctx) error {
	taskID := strings.TrimSpace(c.Params("id"))
	if taskID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: msgTaskIDRequired})
	}

	var in domain.Input
	if err := c.BodyParser(&in); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: msgInvalidBody})
	}

	t, err := m.taskAdapter.UpdateTask(c.UserContext(), taskID, in)
	if err != nil {
		return m.writeError(c, "update", err)
	}

	return c.JSON(TaskResponse{Success: true, Data: t})
}

// deleteTask handles DELETE /api/tasks/:id.
func (m *APIModule) deleteTask(c *fiber.Ctx) error {
	taskID := strings.TrimSpace(c.Params("id"))
	if taskID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{Error: msgTaskIDRequired})
	}

	if err := m.taskAdapter.DeleteTask(c.UserContext(), taskID); err != nil {
		return m.writeError(c, "delete", err)
	}

	return c.JSON(DeleteTaskResponse{
		Success: true,
		Data:    DeletedTask{ID: taskID},
	})
}
