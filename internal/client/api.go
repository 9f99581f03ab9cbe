// Package client talks to the task API and keeps an optimistic local copy of
// the task tree.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"smart-tasks-backend/internal/tasks/model"
)

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("server returned %d", e.StatusCode)
	}
	return fmt.Sprintf("server returned %d: %s", e.StatusCode, e.Message)
}

type API struct {
	BaseURL  string
	HTTP     *http.Client
	Platform string
}

func NewAPI(baseURL string, httpClient *http.Client) *API {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 90 * time.Second}
	}
	return &API{
		BaseURL:  strings.TrimRight(baseURL, "/"),
		HTTP:     httpClient,
		Platform: "cli",
	}
}

func (a *API) ListTasks(ctx context.Context) ([]model.Task, error) {
	var out []model.Task
	if err := a.do(ctx, http.MethodGet, "/tasks", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (a *API) GetTask(ctx context.Context, id string) (model.Task, error) {
	var out model.Task
	err := a.do(ctx, http.MethodGet, "/tasks/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (a *API) CreateTask(ctx context.Context, req model.CreateTaskRequest) (model.Task, error) {
	var out model.Task
	err := a.do(ctx, http.MethodPost, "/tasks", req, &out)
	return out, err
}

// GenerateTask sends free text through the ingestion pipeline.
func (a *API) GenerateTask(ctx context.Context, text, timezone string) (model.Task, error) {
	var out model.Task
	err := a.do(ctx, http.MethodPost, "/tasks/generate", model.GenerateRequest{Text: text, Timezone: timezone}, &out)
	return out, err
}

func (a *API) SetStatus(ctx context.Context, id string, status model.Status) (model.Task, error) {
	var out model.Task
	err := a.do(ctx, http.MethodPut, "/tasks", model.UpdateTaskRequest{ID: id, Status: status}, &out)
	return out, err
}

func (a *API) DeleteTask(ctx context.Context, id string) error {
	return a.do(ctx, http.MethodDelete, "/tasks?id="+url.QueryEscape(id), nil, nil)
}

func (a *API) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, a.BaseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("X-Platform", a.Platform)

	resp, err := a.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var e struct {
			Error string `json:"error"`
		}
		data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		if json.Unmarshal(data, &e) != nil {
			e.Error = strings.TrimSpace(string(data))
		}
		return &APIError{StatusCode: resp.StatusCode, Message: e.Error}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}
	return nil
}
