package ai

import (
	"strings"
	"time"
)

// ContextEntry is the projection of an open task used for grounding.
type ContextEntry struct {
	ID          string
	Title       string
	Description string
}

// BuildContextListing renders entries one per line as "- [id] title: description".
// It returns "" when there are no entries.
func BuildContextListing(entries []ContextEntry) string {
	var b strings.Builder

	for i, e := range entries {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString("- [")
		b.WriteString(e.ID)
		b.WriteString("] ")
		b.WriteString(e.Title)
		b.WriteString(": ")
		b.WriteString(e.Description)
	}

	return b.String()
}

type PromptInput struct {
	Now      time.Time
	Timezone string
	Context  string
	Text     string
}

// BuildIngestPrompt composes the single instruction sent to the model.
// Context and Text are placed verbatim; nothing is escaped.
func BuildIngestPrompt(in PromptInput) string {
	tz := strings.TrimSpace(in.Timezone)
	if tz == "" {
		tz = "UTC"
	}

	var b strings.Builder

	b.WriteString("Current Time: ")
	b.WriteString(in.Now.UTC().Format("2006-01-02T15:04:05.000Z07:00"))
	b.WriteString(" (User Timezone: ")
	b.WriteString(tz)
	b.WriteString(")\n\n")

	b.WriteString("EXISTING TASKS:\n")
	b.WriteString(in.Context)
	b.WriteString("\n\n")

	b.WriteString("USER INPUT: \"")
	b.WriteString(in.Text)
	b.WriteString("\"\n")

	b.WriteString(ingestInstructions)

	return b.String()
}
