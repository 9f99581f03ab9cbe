package tasks

import (
	"context"

	"smart-tasks-backend/internal/ai"
)

// BuildContext reads every task that is not DONE and renders the grounding
// listing for the prompt. The returned tasks are the only ids an UPDATE may
// reference for the rest of the request.
func BuildContext(ctx context.Context, store Store) ([]Task, string, error) {
	done := StatusDone
	open, err := store.List(ctx, ListFilter{ExcludeStatus: &done})
	if err != nil {
		return nil, "", err
	}

	entries := make([]ai.ContextEntry, 0, len(open))
	for _, t := range open {
		entries = append(entries, ai.ContextEntry{
			ID:          t.ID,
			Title:       t.Title,
			Description: t.Description,
		})
	}

	return open, ai.BuildContextListing(entries), nil
}
