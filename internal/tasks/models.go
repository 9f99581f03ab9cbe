package tasks

import "smart-tasks-backend/internal/tasks/model"

type (
	Task     = model.Task
	Status   = model.Status
	Priority = model.Priority
)

const (
	StatusTodo       = model.StatusTodo
	StatusInProgress = model.StatusInProgress
	StatusDone       = model.StatusDone

	PriorityLow    = model.PriorityLow
	PriorityMedium = model.PriorityMedium
	PriorityHigh   = model.PriorityHigh
)

// ParsePriority normalizes s; anything unrecognized becomes MEDIUM.
func ParsePriority(s string) Priority {
	return model.ParsePriority(s)
}
