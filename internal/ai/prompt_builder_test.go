package ai

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildContextListing(t *testing.T) {
	assert.Equal(t, "", BuildContextListing(nil))

	got := BuildContextListing([]ContextEntry{
		{ID: "1", Title: "Roadmap plan", Description: "Q3 planning"},
		{ID: "2", Title: "Buy milk"},
	})
	assert.Equal(t, "- [1] Roadmap plan: Q3 planning\n- [2] Buy milk: ", got)
}

func TestBuildIngestPrompt(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 30, 0, 0, time.UTC)
	listing := "- [1] Roadmap plan: "

	prompt := BuildIngestPrompt(PromptInput{
		Now:      now,
		Timezone: "Europe/Berlin",
		Context:  listing,
		Text:     `add step 3 to the "roadmap" plan`,
	})

	assert.Contains(t, prompt, "Current Time: 2024-05-01T10:30:00.000Z (User Timezone: Europe/Berlin)")
	assert.Contains(t, prompt, "EXISTING TASKS:\n"+listing+"\n")
	assert.Contains(t, prompt, `USER INPUT: "add step 3 to the "roadmap" plan"`)
	assert.Contains(t, prompt, `"action": "UPDATE"`)
	assert.Contains(t, prompt, `"action": "CREATE"`)
	assert.Contains(t, prompt, "matchedTaskId")
	assert.Contains(t, prompt, `"LOW" | "MEDIUM" | "HIGH"`)
}

func TestBuildIngestPrompt_DefaultsTimezone(t *testing.T) {
	prompt := BuildIngestPrompt(PromptInput{Now: time.Now(), Text: "x"})
	firstLine := strings.SplitN(prompt, "\n", 2)[0]
	assert.True(t, strings.HasSuffix(firstLine, "(User Timezone: UTC)"), firstLine)
}

func TestNew_RequiresKey(t *testing.T) {
	_, err := New(context.Background(), "  ", "")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotConfigured))

	_, err = Unavailable.Generate(context.Background(), "prompt")
	assert.True(t, errors.Is(err, ErrNotConfigured))
}
