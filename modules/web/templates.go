package web

import (
	"html/template"
	"strings"
	"time"

	domain "github.com/example/task-manager/domain/task"
)

func newTemplates() *template.Template {
	funcs := template.FuncMap{
		"statusClass": statusClass,
		"formatDue":   formatDue,
		"eqStatus":    func(a domain.Status, b string) bool { return string(a) == b },
	}
	t := template.New("layout").Funcs(funcs)
	template.Must(t.Parse(layoutTemplate))
	template.Must(t.New("list").Parse(listTemplate))
	template.Must(t.New("form").Parse(formTemplate))
	template.Must(t.New("confirm").Parse(confirmTemplate))
	return t
}

func statusClass(s domain.Status) string {
	return "status-" + strings.ReplaceAll(string(s), " ", "-")
}

func formatDue(due *time.Time) string {
	if due == nil {
		return ""
	}
	return due.UTC().Format("January 2, 2006")
}

const layoutTemplate = `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>{{.Title}} | Task Manager</title>
  <style>
    body { margin: 0; font-family: system-ui, sans-serif; background: #f5f6f8; color: #1f2933; }
    nav { display: flex; align-items: center; gap: 16px; padding: 12px 24px; background: #1f2933; }
    nav a { color: #f5f6f8; text-decoration: none; }
    nav .brand { font-weight: 700; margin-right: auto; }
    main { max-width: 760px; margin: 24px auto; padding: 0 16px; min-height: 70vh; }
    footer { text-align: center; padding: 16px; color: #7b8794; font-size: 14px; }
    .toast { padding: 10px 14px; border-radius: 6px; margin-bottom: 16px; }
    .toast-success { background: #e3f9e5; color: #05400a; }
    .toast-error { background: #ffe3e3; color: #610404; }
    .card { background: #fff; border-radius: 8px; padding: 16px; margin-bottom: 12px; box-shadow: 0 1px 2px rgba(0,0,0,.08); }
    .card h3 { margin: 0 0 6px 0; }
    .meta { color: #616e7c; font-size: 14px; }
    .actions { display: flex; gap: 8px; align-items: center; margin-top: 10px; }
    .status-pending { color: #b44d12; }
    .status-in-progress { color: #0b69a3; }
    .status-completed { color: #0e7c86; }
    .empty, .error-panel { text-align: center; padding: 40px 0; }
    label { display: block; margin: 12px 0 4px; font-weight: 600; }
    input[type=text], input[type=date], textarea, select { width: 100%; padding: 8px; box-sizing: border-box; }
    button, .button { padding: 8px 14px; border: 0; border-radius: 6px; background: #2680c2; color: #fff; cursor: pointer; text-decoration: none; }
    .danger { background: #cf1124; }
    .secondary { background: #9aa5b1; }
  </style>
</head>
<body>
  <nav>
    <a class="brand" href="/">Task Manager</a>
    <a href="/">Tasks</a>
    <a href="/add-task">Add Task</a>
  </nav>
  <main>
    {{with .Flash}}<div class="toast toast-{{.Kind}}" role="status">{{.Message}}</div>{{end}}
    {{if eq .Page "list"}}{{template "list" .}}{{end}}
    {{if eq .Page "form"}}{{template "form" .}}{{end}}
    {{if eq .Page "confirm"}}{{template "confirm" .}}{{end}}
  </main>
  <footer>Task Manager &copy; {{.Year}}</footer>
</body>
</html>`

const listTemplate = `<h1>My Tasks</h1>
{{if .Error}}
  <div class="error-panel">
    <p>{{.Error}}</p>
    <a class="button" href="/">Try again</a>
  </div>
{{else if not .Tasks}}
  <div class="empty">
    <p>No tasks yet</p>
    <a class="button" href="/add-task">Add New Task</a>
  </div>
{{else}}
  <p><a class="button" href="/add-task">Add New Task</a></p>
  {{range .Tasks}}
  <div class="card">
    <h3><span class="{{statusClass .Status}}" title="{{.Status}}">{{.Status.Icon}}</span> {{.Title}}</h3>
    {{if .Description}}<p>{{.Description}}</p>{{end}}
    <div class="meta">
      Status: <span class="{{statusClass .Status}}">{{.Status}}</span>
      {{with formatDue .DueDate}} &middot; Due: {{.}}{{end}}
    </div>
    <div class="actions">
      <form method="post" action="/tasks/{{.ID}}/status">
        <select name="status" aria-label="Change status">
          {{$current := .Status}}
          {{range $.Statuses}}<option value="{{.}}"{{if eq . $current}} selected{{end}}>{{.}}</option>{{end}}
        </select>
        <button type="submit">Update</button>
      </form>
      <a class="button secondary" href="/edit-task/{{.ID}}">Edit</a>
      <a class="button danger" href="/tasks/{{.ID}}/delete">Delete</a>
    </div>
  </div>
  {{end}}
{{end}}`

const formTemplate = `<h1>{{.Form.Heading}}</h1>
{{if .Error}}<div class="toast toast-error" role="alert">{{.Error}}</div>{{end}}
<form method="post" action="{{.Form.Action}}">
  <label for="title">Title *</label>
  <input type="text" id="title" name="title" maxlength="100" value="{{.Form.Title}}">
  <label for="description">Description</label>
  <textarea id="description" name="description" rows="4" maxlength="500">{{.Form.Description}}</textarea>
  <label for="status">Status</label>
  <select id="status" name="status">
    {{range .Statuses}}<option value="{{.}}"{{if eqStatus . $.Form.Status}} selected{{end}}>{{.}}</option>{{end}}
  </select>
  <label for="dueDate">Due Date</label>
  <input type="date" id="dueDate" name="dueDate" value="{{.Form.DueDate}}">
  <div class="actions">
    <button type="submit">{{.Form.Submit}}</button>
    <a class="button secondary" href="/">Cancel</a>
  </div>
</form>`

const confirmTemplate = `<h1>Delete Task</h1>
<div class="card">
  <p>Are you sure you want to delete this task?</p>
  {{with .Task}}<h3>{{.Title}}</h3>{{end}}
  <form method="post" action="/tasks/{{.Task.ID}}/delete" class="actions">
    <button type="submit" class="danger">Delete</button>
    <a class="button secondary" href="/">Cancel</a>
  </form>
</div>`
