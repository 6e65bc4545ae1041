// Package client is a typed HTTP client for the task service API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	domain "github.com/example/task-manager/domain/task"
)

// DefaultBaseURL matches the API's default port.
const DefaultBaseURL = "http://localhost:5000/api"

// Client calls the task service.
type Client struct {
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.client = hc }
}

// WithLogger sets the logger used for failed calls.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// New creates a client for the API rooted at baseURL, e.g.
// "http://localhost:5000/api".
func New(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasPrefix(baseURL, "http://") && !strings.HasPrefix(baseURL, "https://") {
		baseURL = "http://" + baseURL
	}

	c := &Client{
		baseURL: baseURL,
		client:  &http.Client{},
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the normalized API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type taskEnvelope struct {
	Data *domain.Task `json:"data"`
}

type listEnvelope struct {
	Count int           `json:"count"`
	Data  []domain.Task `json:"data"`
}

// GetAllTasks returns every task, newest first.
func (c *Client) GetAllTasks(ctx context.Context) ([]domain.Task, error) {
	var env listEnvelope
	if err := c.do(ctx, http.MethodGet, "/tasks", nil, &env); err != nil {
		return nil, err
	}
	if env.Data == nil {
		env.Data = []domain.Task{}
	}
	return env.Data, nil
}

// GetTask returns the task with the given id.
func (c *Client) GetTask(ctx context.Context, id string) (*domain.Task, error) {
	path, err := taskPath(id)
	if err != nil {
		return nil, err
	}
	var env taskEnvelope
	if err := c.do(ctx, http.MethodGet, path, nil, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// CreateTask creates a task from in.
func (c *Client) CreateTask(ctx context.Context, in domain.Input) (*domain.Task, error) {
	if in.IsEmpty() {
		return nil, ErrTaskDataRequired
	}
	var env taskEnvelope
	if err := c.do(ctx, http.MethodPost, "/tasks", in, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// UpdateTask merges in into the task with the given id.
func (c *Client) UpdateTask(ctx context.Context, id string, in domain.Input) (*domain.Task, error) {
	path, err := taskPath(id)
	if err != nil {
		return nil, err
	}
	if in.IsEmpty() {
		return nil, ErrTaskDataRequired
	}
	var env taskEnvelope
	if err := c.do(ctx, http.MethodPut, path, in, &env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// DeleteTask deletes the task with the given id.
func (c *Client) DeleteTask(ctx context.Context, id string) error {
	path, err := taskPath(id)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodDelete, path, nil, nil)
}

func taskPath(id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", ErrTaskIDRequired
	}
	return "/tasks/" + url.PathEscape(id), nil
}

// do sends one request and decodes a 2xx body into dest. Every failure is
// normalized into *TransportError or *APIError and logged once here.
func (c *Client) do(ctx context.Context, method, path string, payload, dest any) error {
	err := c.roundTrip(ctx, method, path, payload, dest)
	if err != nil {
		c.logger.Error("task API request failed",
			"method", method,
			"path", path,
			"error", err)
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, payload, dest any) error {
	op := method + " " + path

	var body io.Reader
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return readErrorResponse(resp)
	}
	if dest == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(dest); err != nil {
		return &TransportError{Op: op, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}
