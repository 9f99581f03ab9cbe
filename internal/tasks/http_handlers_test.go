package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-tasks-backend/internal/ai"
)

func serve(h *TaskHandler, method, target string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if s, ok := body.(string); ok {
		buf.WriteString(s)
	} else if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}

	mux := http.NewServeMux()
	h.Register(mux)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(method, target, &buf))
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&v), rec.Body.String())
	return v
}

func TestCreateHandler(t *testing.T) {
	h, _ := newTestHandler(t, ai.Unavailable)

	rec := serve(h, http.MethodPost, "/tasks", CreateTaskRequest{Title: "Buy milk", Priority: "low", DueDate: "2024-05-02"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	task := decode[Task](t, rec)
	assert.Equal(t, "Buy milk", task.Title)
	assert.Equal(t, PriorityLow, task.Priority)
	assert.Equal(t, StatusTodo, task.Status)
	require.NotNil(t, task.DueDate)

	rec = serve(h, http.MethodPost, "/tasks", CreateTaskRequest{Description: "no title"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "title is required", decode[errorResponse](t, rec).Error)

	rec = serve(h, http.MethodPost, "/tasks", CreateTaskRequest{Title: "x", DueDate: "someday"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(h, http.MethodPost, "/tasks", "{not json")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateHandler_Subtask(t *testing.T) {
	h, store := newTestHandler(t, ai.Unavailable)
	parent := mustCreate(t, store, Task{Title: "Move house"})

	rec := serve(h, http.MethodPost, "/tasks", CreateTaskRequest{Title: "Pack books", ParentID: parent.ID})
	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, parent.ID, decode[Task](t, rec).ParentID)

	rec = serve(h, http.MethodPost, "/tasks", CreateTaskRequest{Title: "Orphan", ParentID: "missing"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "parent task not found", decode[errorResponse](t, rec).Error)
}

func TestListAndGetHandlers(t *testing.T) {
	h, store := newTestHandler(t, ai.Unavailable)
	older := mustCreate(t, store, Task{Title: "older"})
	newer := mustCreate(t, store, Task{Title: "newer"})

	rec := serve(h, http.MethodGet, "/tasks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{newer.ID, older.ID}, ids(decode[[]Task](t, rec)))

	rec = serve(h, http.MethodGet, "/tasks/"+older.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "older", decode[Task](t, rec).Title)

	rec = serve(h, http.MethodGet, "/tasks/missing", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestListHandler_EmptyIsArray(t *testing.T) {
	h, _ := newTestHandler(t, ai.Unavailable)

	rec := serve(h, http.MethodGet, "/tasks", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `[]`, rec.Body.String())
}

func TestUpdateStatusHandler(t *testing.T) {
	h, store := newTestHandler(t, ai.Unavailable)
	task := mustCreate(t, store, Task{Title: "Toggle me"})

	rec := serve(h, http.MethodPut, "/tasks", map[string]any{"id": task.ID, "isCompleted": true})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, StatusDone, decode[Task](t, rec).Status)

	rec = serve(h, http.MethodPut, "/tasks", map[string]any{"id": task.ID, "isCompleted": false})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StatusTodo, decode[Task](t, rec).Status)

	rec = serve(h, http.MethodPut, "/tasks", map[string]any{"id": task.ID, "status": "IN_PROGRESS"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, StatusInProgress, decode[Task](t, rec).Status)

	rec = serve(h, http.MethodPut, "/tasks", map[string]any{"id": task.ID, "status": "ARCHIVED"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(h, http.MethodPut, "/tasks", map[string]any{"status": "DONE"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(h, http.MethodPut, "/tasks", map[string]any{"id": task.ID})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(h, http.MethodPut, "/tasks", map[string]any{"id": "missing", "status": "DONE"})
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteHandler(t *testing.T) {
	h, store := newTestHandler(t, ai.Unavailable)
	task := mustCreate(t, store, Task{Title: "Delete me"})

	rec := serve(h, http.MethodDelete, "/tasks", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = serve(h, http.MethodDelete, "/tasks?id="+task.ID, nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"success":true}`, rec.Body.String())

	rec = serve(h, http.MethodDelete, "/tasks?id="+task.ID, nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestTasksMethodNotAllowed(t *testing.T) {
	h, _ := newTestHandler(t, ai.Unavailable)

	rec := serve(h, http.MethodPatch, "/tasks", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestGenerateHandler(t *testing.T) {
	h, store := newTestHandler(t, nil)
	open := mustCreate(t, store, Task{Title: "Roadmap plan"})

	cases := []struct {
		name   string
		reply  string
		genErr error
		body   any
		status int
		action string
	}{
		{name: "missing text", body: GenerateRequest{}, status: http.StatusBadRequest},
		{name: "bad json", body: "{", status: http.StatusBadRequest},
		{
			name:   "create",
			reply:  `{"action":"CREATE","title":"Buy milk","priority":"LOW"}`,
			body:   GenerateRequest{Text: "buy milk"},
			status: http.StatusOK,
			action: "CREATE",
		},
		{
			name:   "update",
			reply:  fmt.Sprintf(`{"action":"UPDATE","matchedTaskId":%q,"roadmap":"1. a"}`, open.ID),
			body:   GenerateRequest{Text: "add a to roadmap plan"},
			status: http.StatusOK,
			action: "UPDATE",
		},
		{
			name:   "hallucinated id",
			reply:  `{"action":"UPDATE","matchedTaskId":"ghost","roadmap":"1. a"}`,
			body:   GenerateRequest{Text: "add a to roadmap plan"},
			status: http.StatusUnprocessableEntity,
		},
		{
			name:   "malformed",
			reply:  "not json at all",
			body:   GenerateRequest{Text: "buy milk"},
			status: http.StatusInternalServerError,
		},
		{
			name:   "not configured",
			genErr: ai.ErrNotConfigured,
			body:   GenerateRequest{Text: "buy milk"},
			status: http.StatusServiceUnavailable,
		},
		{
			name:   "service failure",
			genErr: errors.New("upstream 500"),
			body:   GenerateRequest{Text: "buy milk"},
			status: http.StatusInternalServerError,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			h.AI = ai.GeneratorFunc(func(context.Context, string) (string, error) {
				return c.reply, c.genErr
			})

			rec := serve(h, http.MethodPost, "/tasks/generate", c.body)
			require.Equal(t, c.status, rec.Code, rec.Body.String())
			assert.Equal(t, c.action, rec.Header().Get("X-Task-Action"))

			if c.status >= 400 {
				msg := decode[errorResponse](t, rec).Error
				assert.NotEmpty(t, msg)
				assert.NotContains(t, msg, "not json at all")
				assert.NotContains(t, msg, "upstream")
			}
		})
	}
}
