package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-tasks-backend/internal/client"
	"smart-tasks-backend/internal/tasks/model"
)

func TestRenderIndentsExpandedSubtasks(t *testing.T) {
	parent := client.Node{
		Task:     model.Task{ID: "p1", Title: "Trip", Status: model.StatusTodo, Priority: model.PriorityHigh},
		Subtasks: []client.Node{{Task: model.Task{ID: "c1", Title: "Book hotel", Status: model.StatusDone, Priority: model.PriorityLow, ParentID: "p1"}}},
	}
	rows := []client.Row{{Depth: 0, Node: parent}, {Depth: 1, Node: parent.Subtasks[0]}}

	var buf bytes.Buffer
	require.NoError(t, render(&buf, rows))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "Trip (1)")
	assert.Contains(t, lines[2], "[x]")
	assert.Contains(t, lines[2], "  Book hotel")
}

func TestRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, render(&buf, nil))
	assert.Equal(t, "no tasks\n", buf.String())
}

func TestRenderDetail(t *testing.T) {
	due := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	var buf bytes.Buffer
	require.NoError(t, renderDetail(&buf, model.Task{
		ID: "t1", Title: "Pay bill", Status: model.StatusTodo, Priority: model.PriorityHigh,
		DueDate: &due, Roadmap: "1. open app",
	}))

	out := buf.String()
	assert.Contains(t, out, "Pay bill")
	assert.Contains(t, out, "HIGH")
	assert.True(t, strings.HasSuffix(out, "\n1. open app\n"))
	assert.NotContains(t, out, "Suggestion")
}
