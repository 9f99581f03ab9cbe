package tasks

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"smart-tasks-backend/internal/analytics"
)

// Register mounts the task API on mux.
func (h *TaskHandler) Register(mux *http.ServeMux) {
	mux.HandleFunc("/tasks", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			h.List(w, r)
		case http.MethodPost:
			h.Create(w, r)
		case http.MethodPut:
			h.UpdateStatus(w, r)
		case http.MethodDelete:
			h.Delete(w, r)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	})
	mux.HandleFunc("POST /tasks/generate", h.Generate)
	mux.HandleFunc("GET /tasks/{id}", h.Get)
}

// List handles GET /tasks: every task, newest first.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	result, err := h.Store.List(r.Context(), ListFilter{})
	if err != nil {
		h.fail(w, r, err, "failed to fetch tasks")
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.Store.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		h.fail(w, r, err, "failed to fetch task")
		return
	}
	writeJSON(w, http.StatusOK, t)
}

// Create handles the manual POST /tasks path; no model is involved.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var body CreateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.fail(w, r, invalid("invalid json"), "")
		return
	}
	if strings.TrimSpace(body.Title) == "" {
		h.fail(w, r, invalid("title is required"), "")
		return
	}

	t := Task{
		Title:       body.Title,
		Description: strings.TrimSpace(body.Description),
		Status:      StatusTodo,
		Priority:    ParsePriority(body.Priority),
		ParentID:    strings.TrimSpace(body.ParentID),
	}

	if body.DueDate != "" {
		due, ok := parseDueDate(body.DueDate, nil)
		if !ok {
			h.fail(w, r, invalid("invalid dueDate"), "")
			return
		}
		t.DueDate = &due
	}

	if t.ParentID != "" {
		if _, err := h.Store.Get(r.Context(), t.ParentID); err != nil {
			if errors.Is(err, ErrNotFound) {
				err = invalid("parent task not found")
			}
			h.fail(w, r, err, "failed to create task")
			return
		}
	}

	if err := h.Store.Create(r.Context(), &t); err != nil {
		h.fail(w, r, err, "failed to create task")
		return
	}

	h.Events.Record(r.Context(), analytics.NewEvent(r, "task_created", map[string]any{
		"task_id":      t.ID,
		"priority":     string(t.Priority),
		"has_deadline": t.DueDate != nil,
		"is_subtask":   t.ParentID != "",
	}))

	writeJSON(w, http.StatusCreated, t)
}

// UpdateStatus handles PUT /tasks. isCompleted takes precedence over status.
func (h *TaskHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var body UpdateTaskRequest
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		h.fail(w, r, invalid("invalid json"), "")
		return
	}
	if strings.TrimSpace(body.ID) == "" {
		h.fail(w, r, invalid("id is required"), "")
		return
	}

	status := body.Status
	if body.IsCompleted != nil {
		status = StatusTodo
		if *body.IsCompleted {
			status = StatusDone
		}
	}
	if status == "" {
		h.fail(w, r, invalid("status or isCompleted is required"), "")
		return
	}
	if !status.Valid() {
		h.fail(w, r, invalid("invalid status"), "")
		return
	}

	t, err := h.Store.Update(r.Context(), body.ID, TaskUpdate{Status: &status})
	if err != nil {
		h.fail(w, r, err, "failed to update task")
		return
	}

	h.Events.Record(r.Context(), analytics.NewEvent(r, "task_status_changed", map[string]any{
		"task_id": t.ID,
		"status":  string(t.Status),
	}))

	writeJSON(w, http.StatusOK, t)
}

// Delete handles DELETE /tasks?id=.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.URL.Query().Get("id"))
	if id == "" {
		h.fail(w, r, invalid("Task ID is required"), "")
		return
	}

	if err := h.Store.Delete(r.Context(), id); err != nil {
		h.fail(w, r, err, "failed to delete task")
		return
	}

	h.Events.Record(r.Context(), analytics.NewEvent(r, "task_deleted", map[string]any{
		"task_id": id,
	}))

	writeJSON(w, http.StatusOK, map[string]any{"success": true})
}
