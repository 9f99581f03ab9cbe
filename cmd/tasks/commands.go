package main

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"smart-tasks-backend/internal/client"
	"smart-tasks-backend/internal/tasks/model"
)

func listCmd() *cobra.Command {
	var (
		priority string
		expand   []string
	)
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Show top-level tasks, optionally filtered by priority",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := client.ParsePriorityFilter(priority)
			if err != nil {
				return err
			}
			s, err := newSession()
			if err != nil {
				return err
			}
			defer s.close()

			if err := s.rec.Refresh(cmd.Context()); err != nil {
				return err
			}
			for _, id := range expand {
				s.rec.ToggleExpand(id)
			}
			return render(os.Stdout, s.rec.View(filter))
		},
	}
	cmd.Flags().StringVarP(&priority, "priority", "p", "ALL", "ALL, HIGH, MEDIUM or LOW")
	cmd.Flags().StringSliceVarP(&expand, "expand", "e", nil, "task ids whose subtasks are shown")
	return cmd
}

func addCmd() *cobra.Command {
	var req model.CreateTaskRequest
	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Create a task directly, without the generation service",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			req.Title = strings.Join(args, " ")
			s, err := newSession()
			if err != nil {
				return err
			}
			defer s.close()

			task, err := s.api.CreateTask(cmd.Context(), req)
			if err != nil {
				return err
			}
			return renderDetail(os.Stdout, task)
		},
	}
	cmd.Flags().StringVar(&req.Description, "description", "", "task description")
	cmd.Flags().StringVarP(&req.Priority, "priority", "p", "", "LOW, MEDIUM or HIGH")
	cmd.Flags().StringVar(&req.DueDate, "due", "", "due date (RFC 3339 or YYYY-MM-DD)")
	cmd.Flags().StringVar(&req.ParentID, "parent", "", "parent task id")
	return cmd
}

func generateCmd() *cobra.Command {
	var timezone string
	cmd := &cobra.Command{
		Use:   "generate <text>",
		Short: "Turn free text into a new task or an update of an open one",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession()
			if err != nil {
				return err
			}
			defer s.close()

			task, err := s.api.GenerateTask(cmd.Context(), strings.Join(args, " "), timezone)
			if err != nil {
				return err
			}
			return renderDetail(os.Stdout, task)
		},
	}
	cmd.Flags().StringVar(&timezone, "timezone", localZone(), "IANA timezone used to resolve relative dates")
	return cmd
}

func toggleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a task between TODO and DONE",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession()
			if err != nil {
				return err
			}
			defer s.close()

			ctx := cmd.Context()
			if err := s.rec.Refresh(ctx); err != nil {
				return err
			}
			expandAncestors(s.rec, args[0])

			err = s.rec.Toggle(ctx, args[0])
			if errors.Is(err, client.ErrNotToggleable) {
				fmt.Fprintln(os.Stderr, "task is IN_PROGRESS, nothing to toggle")
				err = nil
			}
			if rerr := render(os.Stdout, s.rec.View(client.FilterAll)); rerr != nil {
				return rerr
			}
			return err
		},
	}
}

func deleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := newSession()
			if err != nil {
				return err
			}
			defer s.close()

			ctx := cmd.Context()
			if err := s.rec.Refresh(ctx); err != nil {
				return err
			}
			err = s.rec.Delete(ctx, args[0])
			if rerr := render(os.Stdout, s.rec.View(client.FilterAll)); rerr != nil {
				return rerr
			}
			return err
		},
	}
}

// expandAncestors opens every parent of id so the toggled row stays visible.
func expandAncestors(rec *client.Reconciler, id string) {
	nodes := rec.Snapshot()
	for {
		n, ok := client.FindNode(nodes, id)
		if !ok || n.ParentID == "" {
			return
		}
		if _, ok := client.FindNode(nodes, n.ParentID); !ok {
			return
		}
		if !rec.IsExpanded(n.ParentID) {
			rec.ToggleExpand(n.ParentID)
		}
		id = n.ParentID
	}
}
