package main

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
	"time"

	"smart-tasks-backend/internal/client"
	"smart-tasks-backend/internal/tasks/model"
)

func render(w io.Writer, rows []client.Row) error {
	if len(rows) == 0 {
		_, err := fmt.Fprintln(w, "no tasks")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTATUS\tPRIORITY\tDUE\tTITLE")
	for _, row := range rows {
		n := row.Node
		title := strings.Repeat("  ", row.Depth) + n.Title
		if len(n.Subtasks) > 0 {
			title += fmt.Sprintf(" (%d)", len(n.Subtasks))
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", n.ID, checkbox(n.Status), n.Priority, due(n.DueDate), title)
	}
	return tw.Flush()
}

func renderDetail(w io.Writer, t model.Task) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "ID\t%s\n", t.ID)
	fmt.Fprintf(tw, "Title\t%s\n", t.Title)
	fmt.Fprintf(tw, "Status\t%s\n", t.Status)
	fmt.Fprintf(tw, "Priority\t%s\n", t.Priority)
	fmt.Fprintf(tw, "Due\t%s\n", due(t.DueDate))
	if t.ParentID != "" {
		fmt.Fprintf(tw, "Parent\t%s\n", t.ParentID)
	}
	if t.Description != "" {
		fmt.Fprintf(tw, "Description\t%s\n", t.Description)
	}
	if t.AISuggestion != "" {
		fmt.Fprintf(tw, "Suggestion\t%s\n", t.AISuggestion)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if t.Roadmap != "" {
		_, err := fmt.Fprintf(w, "\n%s\n", t.Roadmap)
		return err
	}
	return nil
}

func checkbox(s model.Status) string {
	switch s {
	case model.StatusDone:
		return "[x]"
	case model.StatusInProgress:
		return "[~]"
	default:
		return "[ ]"
	}
}

func due(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04")
}

// localZone returns the IANA name of the local timezone when it is known.
func localZone() string {
	if name := time.Local.String(); name != "Local" {
		return name
	}
	return "UTC"
}
