package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	domain "github.com/example/task-manager/domain/task"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestClient returns a client pointed at handler plus a request counter.
func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *atomic.Int32) {
	t.Helper()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		handler(w, r)
	}))
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(srv.URL+"/api", WithLogger(logger)), &calls
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestNew_NormalizesBaseURL(t *testing.T) {
	tests := map[string]string{
		"":                            DefaultBaseURL,
		"http://localhost:5000/api/":  "http://localhost:5000/api",
		"localhost:5000/api":          "http://localhost:5000/api",
		" https://tasks.example/api ": "https://tasks.example/api",
	}
	for in, want := range tests {
		assert.Equal(t, want, New(in).BaseURL(), in)
	}
}

func TestNew_TransportDefaults(t *testing.T) {
	c := New("")
	require.NotNil(t, c.client)
	assert.Zero(t, c.client.Timeout)
	assert.Nil(t, c.client.Transport)

	hc := &http.Client{Timeout: time.Second}
	assert.Same(t, hc, New("", WithHTTPClient(hc)).client)
}

func TestClient_Guards(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	})
	ctx := context.Background()

	_, err := c.GetTask(ctx, "")
	assert.ErrorIs(t, err, ErrTaskIDRequired)

	_, err = c.UpdateTask(ctx, "  ", domain.Input{Title: domain.Ptr("x")})
	assert.ErrorIs(t, err, ErrTaskIDRequired)

	assert.ErrorIs(t, c.DeleteTask(ctx, ""), ErrTaskIDRequired)

	_, err = c.CreateTask(ctx, domain.Input{})
	assert.ErrorIs(t, err, ErrTaskDataRequired)

	_, err = c.UpdateTask(ctx, "abc", domain.Input{})
	assert.ErrorIs(t, err, ErrTaskDataRequired)

	assert.Equal(t, int32(0), calls.Load())
}

func TestClient_GetAllTasks(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/tasks", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{
			"success": true,
			"count":   2,
			"data": []map[string]any{
				{"id": "1", "title": "first", "status": "pending"},
				{"id": "2", "title": "second", "status": "completed"},
			},
		})
	})

	tasks, err := c.GetAllTasks(context.Background())
	require.NoError(t, err)
	require.Len(t, tasks, 2)
	assert.Equal(t, "first", tasks[0].Title)
	assert.Equal(t, domain.StatusCompleted, tasks[1].Status)
}

func TestClient_CreateTask(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var in map[string]any
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		assert.Equal(t, "Buy milk", in["title"])
		_, hasDescription := in["description"]
		assert.False(t, hasDescription, "absent fields are omitted")

		writeJSON(w, http.StatusCreated, map[string]any{
			"success": true,
			"data":    map[string]any{"id": "abc", "title": "Buy milk", "status": "pending"},
		})
	})

	created, err := c.CreateTask(context.Background(), domain.Input{Title: domain.Ptr("Buy milk")})
	require.NoError(t, err)
	assert.Equal(t, "abc", created.ID)
}

func TestClient_UpdateAndDelete(t *testing.T) {
	c, calls := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tasks/abc", r.URL.Path)
		switch r.Method {
		case http.MethodPut:
			writeJSON(w, http.StatusOK, map[string]any{
				"success": true,
				"data":    map[string]any{"id": "abc", "title": "Buy milk", "status": "completed"},
			})
		case http.MethodDelete:
			writeJSON(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"id": "abc"}})
		default:
			t.Errorf("unexpected method %s", r.Method)
		}
	})
	ctx := context.Background()

	updated, err := c.UpdateTask(ctx, "abc", domain.Input{Status: domain.Ptr("completed")})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, updated.Status)

	require.NoError(t, c.DeleteTask(ctx, "abc"))
	assert.Equal(t, int32(2), calls.Load())
}

func TestClient_APIErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       any
		wantIs     error
		wantMsg    string
		wantFields int
	}{
		{
			name:    "not found",
			status:  http.StatusNotFound,
			body:    map[string]any{"success": false, "error": "Task not found"},
			wantIs:  domain.ErrNotFound,
			wantMsg: "Task not found",
		},
		{
			name:   "validation",
			status: http.StatusBadRequest,
			body: map[string]any{
				"success": false,
				"error":   "Task title is required",
				"details": []map[string]string{{"field": "title", "message": "Task title is required"}},
			},
			wantIs:     domain.ErrValidation,
			wantMsg:    "Task title is required",
			wantFields: 1,
		},
		{
			name:    "server error",
			status:  http.StatusInternalServerError,
			body:    map[string]any{"success": false, "error": "Server Error"},
			wantMsg: "Server Error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				writeJSON(w, tt.status, tt.body)
			})

			_, err := c.GetTask(context.Background(), "abc")
			require.Error(t, err)

			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, tt.wantMsg, apiErr.Message)
			assert.Len(t, apiErr.Fields, tt.wantFields)
			if tt.wantIs != nil {
				assert.ErrorIs(t, err, tt.wantIs)
			}
			assert.Equal(t, tt.wantMsg, Message(err, "fallback"))
		})
	}
}

func TestClient_NonJSONErrorBody(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "bad gateway", http.StatusBadGateway)
	})

	_, err := c.GetAllTasks(context.Background())
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
	assert.Equal(t, "bad gateway", apiErr.Message)
}

func TestClient_TransportError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())

	c := New("http://"+addr+"/api", WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	_, err = c.GetAllTasks(context.Background())
	require.Error(t, err)

	var tErr *TransportError
	require.ErrorAs(t, err, &tErr)
	assert.Equal(t, "GET /tasks", tErr.Op)
	assert.NotNil(t, errors.Unwrap(err))
	assert.Equal(t, "Failed to fetch tasks", Message(err, "Failed to fetch tasks"))
}

func TestMessage(t *testing.T) {
	assert.Equal(t, "fallback", Message(errors.New("boom"), "fallback"))
	assert.Equal(t, "Task ID is required", Message(ErrTaskIDRequired, "fallback"))
	assert.Equal(t, "fallback", Message(&APIError{StatusCode: 500}, "fallback"))
}
