package tasks

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"smart-tasks-backend/internal/ai"
)

type IngestResult struct {
	Action ai.Action
	Task   Task
}

// reconcile performs the single store write for a resolved intent.
func (h *TaskHandler) reconcile(ctx context.Context, intent ai.Intent, open []Task, loc *time.Location) (IngestResult, error) {
	switch in := intent.(type) {
	case ai.UpdateIntent:
		t, err := h.applyUpdate(ctx, in, open)
		if err != nil {
			return IngestResult{}, err
		}
		return IngestResult{Action: ai.ActionUpdate, Task: t}, nil

	case ai.CreateIntent:
		t, err := h.applyCreate(ctx, in, loc)
		if err != nil {
			return IngestResult{}, err
		}
		return IngestResult{Action: ai.ActionCreate, Task: t}, nil

	default:
		return IngestResult{}, fmt.Errorf("unsupported intent %T", intent)
	}
}

// applyUpdate overwrites aiSuggestion and roadmap only when the model sent a
// value for them. The target must be in the open set loaded for this request.
func (h *TaskHandler) applyUpdate(ctx context.Context, in ai.UpdateIntent, open []Task) (Task, error) {
	if !containsTask(open, in.MatchedTaskID) {
		return Task{}, fmt.Errorf("%w: %q", ErrUnprocessableIntent, in.MatchedTaskID)
	}

	u := TaskUpdate{OnlyIfOpen: true}
	if in.Suggestion != "" {
		u.AISuggestion = &in.Suggestion
	}
	if in.Roadmap != "" {
		u.Roadmap = &in.Roadmap
	}

	t, err := h.Store.Update(ctx, in.MatchedTaskID, u)
	if errors.Is(err, ErrNotFound) {
		// closed or deleted after the context was read
		return Task{}, fmt.Errorf("%w: %q", ErrUnprocessableIntent, in.MatchedTaskID)
	}
	return t, err
}

func (h *TaskHandler) applyCreate(ctx context.Context, in ai.CreateIntent, loc *time.Location) (Task, error) {
	t := Task{
		Title:        in.Title,
		Description:  in.Description,
		Status:       StatusTodo,
		Priority:     ParsePriority(in.Priority),
		AISuggestion: in.Suggestion,
		Roadmap:      in.Roadmap,
	}

	if in.DueDate != "" {
		if due, ok := parseDueDate(in.DueDate, loc); ok {
			t.DueDate = &due
		} else {
			h.Logger.Warn("ignoring unparseable dueDate from model", zap.String("due_date", in.DueDate))
		}
	}

	if err := h.Store.Create(ctx, &t); err != nil {
		return Task{}, err
	}
	return t, nil
}

func containsTask(list []Task, id string) bool {
	for _, t := range list {
		if t.ID == id {
			return true
		}
	}
	return false
}

// parseDueDate accepts ISO 8601 timestamps with an offset (seconds and the
// offset colon optional), and local date-times or bare dates
// which are interpreted in loc. The result is in UTC.
func parseDueDate(s string, loc *time.Location) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" || strings.EqualFold(s, "null") {
		return time.Time{}, false
	}
	if loc == nil {
		loc = time.UTC
	}

	for _, layout := range []string{
		time.RFC3339Nano,
		"2006-01-02T15:04Z07:00",
		"2006-01-02T15:04:05.999999999Z0700",
		"2006-01-02T15:04Z0700",
	} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	for _, layout := range []string{"2006-01-02T15:04:05", "2006-01-02T15:04", "2006-01-02 15:04:05", "2006-01-02"} {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// loadLocation resolves an IANA zone name, falling back to UTC.
func loadLocation(name string) *time.Location {
	if name == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.UTC
	}
	return loc
}
