package tasks

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"smart-tasks-backend/internal/ai"
	"smart-tasks-backend/internal/analytics"
)

type TaskHandler struct {
	AI     ai.Generator
	Store  Store
	Events analytics.Recorder
	Logger *zap.Logger

	// GenerateTimeout bounds the call to the text generation service.
	GenerateTimeout time.Duration
	Now             func() time.Time
}

func New(aiClient ai.Generator, store Store, events analytics.Recorder, logger *zap.Logger) *TaskHandler {
	if events == nil {
		events = analytics.Nop{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &TaskHandler{
		AI:              aiClient,
		Store:           store,
		Events:          events,
		Logger:          logger,
		GenerateTimeout: 60 * time.Second,
		Now:             time.Now,
	}
}

// Ingest turns free text into exactly one store write: it grounds the model on
// the open tasks, validates the completion and either updates the matched
// task or creates a new one.
func (h *TaskHandler) Ingest(ctx context.Context, req GenerateRequest) (IngestResult, error) {
	if strings.TrimSpace(req.Text) == "" {
		return IngestResult{}, invalid("text is required")
	}
	tz := strings.TrimSpace(req.Timezone)
	if tz == "" {
		tz = "UTC"
	}

	open, listing, err := BuildContext(ctx, h.Store)
	if err != nil {
		return IngestResult{}, fmt.Errorf("load open tasks: %w", err)
	}

	prompt := ai.BuildIngestPrompt(ai.PromptInput{
		Now:      h.Now(),
		Timezone: tz,
		Context:  listing,
		Text:     req.Text,
	})

	genCtx, cancel := context.WithTimeout(ctx, h.GenerateTimeout)
	raw, err := h.AI.Generate(genCtx, prompt)
	cancel()
	if err != nil {
		return IngestResult{}, fmt.Errorf("generate: %w", err)
	}

	intent, err := ai.ParseIntent(raw)
	if err != nil {
		return IngestResult{}, err
	}

	h.Logger.Debug("intent resolved",
		zap.String("action", string(intent.Action())),
		zap.Int("open_tasks", len(open)),
	)

	return h.reconcile(ctx, intent, open, loadLocation(tz))
}

// Generate handles POST /tasks/generate.
func (h *TaskHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.fail(w, r, invalid("invalid json"), "")
		return
	}

	res, err := h.Ingest(r.Context(), req)
	if err != nil {
		h.fail(w, r, err, "failed to generate task")
		return
	}

	h.Events.Record(r.Context(), analytics.NewEvent(r, "task_generated", map[string]any{
		"task_id":  res.Task.ID,
		"action":   string(res.Action),
		"text_len": len(req.Text),
	}))

	w.Header().Set("X-Task-Action", string(res.Action))
	writeJSON(w, http.StatusOK, res.Task)
}
