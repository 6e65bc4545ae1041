package web

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/task-manager/client"
	domain "github.com/example/task-manager/domain/task"
	"github.com/gofiber/fiber/v2"
)

const (
	msgFetchFailed      = "Failed to fetch tasks"
	msgLoadFailed       = "Failed to load task details"
	msgTitleRequired    = "Task title is required"
	msgCreated          = "Task created successfully"
	msgCreateFailed     = "Failed to create task"
	msgUpdated          = "Task updated successfully"
	msgUpdateFailed     = "Failed to update task"
	msgDeleted          = "Task deleted successfully"
	msgDeleteFailed     = "Failed to delete task"
	msgStatusFailed     = "Failed to update task status"
	msgStatusChangedFmt = "Task marked as %s"
)

type pageData struct {
	Title    string
	Page     string
	Flash    *flash
	Error    string
	Tasks    []domain.Task
	Task     *domain.Task
	Form     formData
	Statuses []domain.Status
	Year     int
}

type formData struct {
	Heading     string
	Action      string
	Submit      string
	Title       string
	Description string
	Status      string
	DueDate     string
}

func (m *WebModule) setupRoutes(app *fiber.App) {
	app.Get("/", m.listTasks)
	app.Get("/tasks", func(c *fiber.Ctx) error { return c.Redirect("/", fiber.StatusSeeOther) })
	app.Post("/tasks/:id/status", m.changeStatus)
	app.Get("/tasks/:id/delete", m.confirmDelete)
	app.Post("/tasks/:id/delete", m.deleteTask)
	app.Get("/add-task", m.addTaskForm)
	app.Post("/add-task", m.createTask)
	app.Get("/edit-task/:id", m.editTaskForm)
	app.Post("/edit-task/:id", m.updateTask)
}

func (m *WebModule) render(c *fiber.Ctx, status int, data pageData) error {
	data.Flash = popFlash(c)
	data.Statuses = domain.Statuses()
	data.Year = time.Now().Year()

	var buf bytes.Buffer
	if err := m.tmpl.ExecuteTemplate(&buf, "layout", data); err != nil {
		return fmt.Errorf("render %s: %w", data.Page, err)
	}
	c.Type("html", "utf-8")
	return c.Status(status).Send(buf.Bytes())
}

func redirectHome(c *fiber.Ctx, kind, message string) error {
	setFlash(c, kind, message)
	return c.Redirect("/", fiber.StatusSeeOther)
}

func (m *WebModule) listTasks(c *fiber.Ctx) error {
	tasks, err := m.api.GetAllTasks(c.UserContext())
	if err != nil {
		return m.render(c, fiber.StatusBadGateway, pageData{
			Title: "Tasks",
			Page:  "list",
			Error: msgFetchFailed,
		})
	}
	return m.render(c, fiber.StatusOK, pageData{Title: "Tasks", Page: "list", Tasks: tasks})
}

func (m *WebModule) changeStatus(c *fiber.Ctx) error {
	status := strings.TrimSpace(c.FormValue("status"))
	if _, err := m.api.UpdateTask(c.UserContext(), c.Params("id"), domain.Input{Status: &status}); err != nil {
		return redirectHome(c, "error", msgStatusFailed)
	}
	return redirectHome(c, "success", fmt.Sprintf(msgStatusChangedFmt, status))
}

func (m *WebModule) confirmDelete(c *fiber.Ctx) error {
	t, err := m.api.GetTask(c.UserContext(), c.Params("id"))
	if err != nil {
		return redirectHome(c, "error", msgLoadFailed)
	}
	return m.render(c, fiber.StatusOK, pageData{Title: "Delete Task", Page: "confirm", Task: t})
}

func (m *WebModule) deleteTask(c *fiber.Ctx) error {
	if err := m.api.DeleteTask(c.UserContext(), c.Params("id")); err != nil {
		return redirectHome(c, "error", msgDeleteFailed)
	}
	return redirectHome(c, "success", msgDeleted)
}

func (m *WebModule) addTaskForm(c *fiber.Ctx) error {
	return m.render(c, fiber.StatusOK, pageData{
		Title: "Add Task",
		Page:  "form",
		Form:  newTaskForm(formData{Status: string(domain.StatusPending)}),
	})
}

func (m *WebModule) createTask(c *fiber.Ctx) error {
	form := newTaskForm(readForm(c))
	if form.Title == "" {
		return m.render(c, fiber.StatusBadRequest, pageData{Title: "Add Task", Page: "form", Form: form, Error: msgTitleRequired})
	}

	if _, err := m.api.CreateTask(c.UserContext(), form.input()); err != nil {
		return m.render(c, failureStatus(err), pageData{
			Title: "Add Task",
			Page:  "form",
			Form:  form,
			Error: client.Message(err, msgCreateFailed),
		})
	}
	return redirectHome(c, "success", msgCreated)
}

func (m *WebModule) editTaskForm(c *fiber.Ctx) error {
	t, err := m.api.GetTask(c.UserContext(), c.Params("id"))
	if err != nil {
		return redirectHome(c, "error", msgLoadFailed)
	}
	return m.render(c, fiber.StatusOK, pageData{
		Title: "Edit Task",
		Page:  "form",
		Form: editTaskForm(t.ID, formData{
			Title:       t.Title,
			Description: t.Description,
			Status:      string(t.Status),
			DueDate:     domain.FormatDueDate(t.DueDate),
		}),
	})
}

func (m *WebModule) updateTask(c *fiber.Ctx) error {
	id := c.Params("id")
	form := editTaskForm(id, readForm(c))
	if form.Title == "" {
		return m.render(c, fiber.StatusBadRequest, pageData{Title: "Edit Task", Page: "form", Form: form, Error: msgTitleRequired})
	}

	if _, err := m.api.UpdateTask(c.UserContext(), id, form.input()); err != nil {
		return m.render(c, failureStatus(err), pageData{
			Title: "Edit Task",
			Page:  "form",
			Form:  form,
			Error: client.Message(err, msgUpdateFailed),
		})
	}
	return redirectHome(c, "success", msgUpdated)
}

func readForm(c *fiber.Ctx) formData {
	return formData{
		Title:       strings.TrimSpace(c.FormValue("title")),
		Description: strings.TrimSpace(c.FormValue("description")),
		Status:      strings.TrimSpace(c.FormValue("status")),
		DueDate:     strings.TrimSpace(c.FormValue("dueDate")),
	}
}

func newTaskForm(f formData) formData {
	f.Heading = "Add New Task"
	f.Action = "/add-task"
	f.Submit = "Create Task"
	return f
}

func editTaskForm(id string, f formData) formData {
	f.Heading = "Edit Task"
	f.Action = "/edit-task/" + id
	f.Submit = "Update Task"
	return f
}

// input sends every field so an emptied description or due date is cleared.
func (f formData) input() domain.Input {
	return domain.Input{
		Title:       domain.Ptr(f.Title),
		Description: domain.Ptr(f.Description),
		Status:      domain.Ptr(f.Status),
		DueDate:     domain.Ptr(f.DueDate),
	}
}

// failureStatus passes client errors through and reports everything else as
// an upstream failure.
func failureStatus(err error) int {
	var apiErr *client.APIError
	if errors.As(err, &apiErr) && apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
		return apiErr.StatusCode
	}
	return fiber.StatusBadGateway
}
