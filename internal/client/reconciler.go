package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"go.uber.org/zap"

	"smart-tasks-backend/internal/tasks/model"
)

var (
	ErrUnknownTask     = errors.New("task is not in the local tree")
	ErrNotToggleable   = errors.New("only TODO and DONE tasks can be toggled")
	ErrInvalidPriority = errors.New("priority filter must be ALL, HIGH, MEDIUM or LOW")
)

// Backend is the authoritative side of the reconciler. *API implements it.
type Backend interface {
	ListTasks(ctx context.Context) ([]model.Task, error)
	SetStatus(ctx context.Context, id string, status model.Status) (model.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

// Event is a state transition of the local tree.
type Event interface {
	event()
}

// OptimisticToggle sets a status before the server has confirmed it.
type OptimisticToggle struct {
	ID     string
	Status model.Status
}

// OptimisticDelete removes a node before the server has confirmed it.
type OptimisticDelete struct {
	ID string
}

// ServerConfirm replaces one task with the record the server returned.
type ServerConfirm struct {
	Task model.Task
}

// ServerRefresh replaces the whole tree with the server's list. No merge.
type ServerRefresh struct {
	Tasks []model.Task
}

func (OptimisticToggle) event() {}
func (OptimisticDelete) event() {}
func (ServerConfirm) event()    {}
func (ServerRefresh) event()    {}

// Reduce returns the tree after ev. It never modifies nodes in place.
func Reduce(nodes []Node, ev Event) []Node {
	switch e := ev.(type) {
	case OptimisticToggle:
		return MapTree(nodes, func(n Node) Node {
			if n.ID == e.ID {
				n.Status = e.Status
			}
			return n
		})
	case OptimisticDelete:
		return FilterTree(nodes, func(n Node) bool {
			return n.ID != e.ID
		})
	case ServerConfirm:
		return MapTree(nodes, func(n Node) Node {
			if n.ID == e.Task.ID {
				n.Task = e.Task
			}
			return n
		})
	case ServerRefresh:
		return BuildTree(e.Tasks)
	}
	return nodes
}

// PriorityFilter is ALL or one of the task priorities.
type PriorityFilter string

const FilterAll PriorityFilter = "ALL"

func ParsePriorityFilter(s string) (PriorityFilter, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" || s == string(FilterAll) {
		return FilterAll, nil
	}
	if !model.Priority(s).Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidPriority, s)
	}
	return PriorityFilter(s), nil
}

// Reconciler holds the local task tree. Mutations are applied optimistically,
// sent to the backend, and always followed by a full refresh.
type Reconciler struct {
	backend Backend
	logger  *zap.Logger

	// ops serializes mutations from optimistic apply through refresh
	ops sync.Mutex

	mu       sync.RWMutex
	nodes    []Node
	expanded map[string]bool
}

func NewReconciler(backend Backend, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Reconciler{
		backend:  backend,
		logger:   logger,
		expanded: make(map[string]bool),
	}
}

func (r *Reconciler) dispatch(ev Event) {
	r.mu.Lock()
	r.nodes = Reduce(r.nodes, ev)
	r.mu.Unlock()
}

// Snapshot returns the current tree. Callers must not modify it.
func (r *Reconciler) Snapshot() []Node {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.nodes
}

// Refresh replaces local state with the server's task list.
func (r *Reconciler) Refresh(ctx context.Context) error {
	r.ops.Lock()
	defer r.ops.Unlock()
	return r.refresh(ctx)
}

func (r *Reconciler) refresh(ctx context.Context) error {
	list, err := r.backend.ListTasks(ctx)
	if err != nil {
		return fmt.Errorf("refresh: %w", err)
	}
	r.dispatch(ServerRefresh{Tasks: list})
	return nil
}

// Toggle flips a task between TODO and DONE at any depth. IN_PROGRESS tasks
// are left alone and ErrNotToggleable is returned.
func (r *Reconciler) Toggle(ctx context.Context, id string) error {
	r.ops.Lock()
	defer r.ops.Unlock()

	r.mu.RLock()
	node, ok := FindNode(r.nodes, id)
	r.mu.RUnlock()
	if !ok {
		return ErrUnknownTask
	}

	var next model.Status
	switch node.Status {
	case model.StatusDone:
		next = model.StatusTodo
	case model.StatusTodo:
		next = model.StatusDone
	default:
		return ErrNotToggleable
	}

	r.dispatch(OptimisticToggle{ID: id, Status: next})

	confirmed, err := r.backend.SetStatus(ctx, id, next)
	if err != nil {
		r.logger.Warn("status update rejected", zap.String("task_id", id), zap.Error(err))
	} else {
		r.dispatch(ServerConfirm{Task: confirmed})
	}

	return errors.Join(err, r.refresh(ctx))
}

// Delete removes a task and its subtree from the local tree, then asks the
// server to delete it. Unknown ids leave the tree unchanged.
func (r *Reconciler) Delete(ctx context.Context, id string) error {
	r.ops.Lock()
	defer r.ops.Unlock()

	r.dispatch(OptimisticDelete{ID: id})

	err := r.backend.DeleteTask(ctx, id)
	if err != nil {
		r.logger.Warn("delete rejected", zap.String("task_id", id), zap.Error(err))
	}

	return errors.Join(err, r.refresh(ctx))
}

// Visible returns the top-level tasks that match filter. Subtasks are never
// matched on their own priority.
func (r *Reconciler) Visible(filter PriorityFilter) []Node {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Node
	for _, n := range r.nodes {
		if n.ParentID != "" {
			continue
		}
		if filter != FilterAll && string(n.Priority) != string(filter) {
			continue
		}
		out = append(out, n)
	}
	return out
}

// ToggleExpand flips whether id's subtasks are shown and returns the new state.
func (r *Reconciler) ToggleExpand(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.expanded[id] {
		delete(r.expanded, id)
		return false
	}
	r.expanded[id] = true
	return true
}

func (r *Reconciler) IsExpanded(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.expanded[id]
}

// Row is one rendered line of the list view.
type Row struct {
	Depth int
	Node  Node
}

// View flattens the visible tasks for display; a node's subtasks appear only
// while it is expanded.
func (r *Reconciler) View(filter PriorityFilter) []Row {
	visible := r.Visible(filter)

	r.mu.RLock()
	defer r.mu.RUnlock()

	var rows []Row
	var walk func(nodes []Node, depth int)
	walk = func(nodes []Node, depth int) {
		for _, n := range nodes {
			rows = append(rows, Row{Depth: depth, Node: n})
			if r.expanded[n.ID] {
				walk(n.Subtasks, depth+1)
			}
		}
	}
	walk(visible, 0)
	return rows
}
