package tasks

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Store is the persistence boundary for tasks.
type Store interface {
	Create(ctx context.Context, t *Task) error
	Get(ctx context.Context, id string) (Task, error)
	List(ctx context.Context, filter ListFilter) ([]Task, error)
	Update(ctx context.Context, id string, u TaskUpdate) (Task, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}

type ListFilter struct {
	Status        *Status
	ExcludeStatus *Status
}

// TaskUpdate is a partial update: nil fields are left untouched.
type TaskUpdate struct {
	Status       *Status
	AISuggestion *string
	Roadmap      *string

	// OnlyIfOpen makes the write conditional on the task not being DONE.
	OnlyIfOpen bool
}

// SQLStore implements Store for Postgres and SQLite.
type SQLStore struct {
	db     *sql.DB
	driver string
	now    func() time.Time
}

func NewSQLStore(db *sql.DB, driver string) *SQLStore {
	return &SQLStore{
		db:     db,
		driver: driver,
		now:    time.Now,
	}
}

const taskColumns = `
	id,
	title,
	COALESCE(description, ''),
	status,
	priority,
	due_date,
	created_at,
	updated_at,
	COALESCE(parent_id, ''),
	COALESCE(ai_suggestion, ''),
	COALESCE(roadmap, '')`

// rebind turns $n placeholders into ?n for SQLite.
func (s *SQLStore) rebind(query string) string {
	if s.driver == "sqlite" {
		return strings.ReplaceAll(query, "$", "?")
	}
	return query
}

func (s *SQLStore) timestamp() time.Time {
	return s.now().UTC().Truncate(time.Microsecond)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(row rowScanner) (Task, error) {
	var (
		t      Task
		status string
		prio   string
		due    sql.NullTime
	)

	err := row.Scan(
		&t.ID,
		&t.Title,
		&t.Description,
		&status,
		&prio,
		&due,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.ParentID,
		&t.AISuggestion,
		&t.Roadmap,
	)
	if err != nil {
		return Task{}, err
	}

	t.Status = Status(status)
	t.Priority = Priority(prio)
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	if due.Valid {
		d := due.Time.UTC()
		t.DueDate = &d
	}
	return t, nil
}

// Create assigns the id and timestamps, applies defaults and inserts t.
func (s *SQLStore) Create(ctx context.Context, t *Task) error {
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return invalid("title is required")
	}
	if !t.Status.Valid() {
		t.Status = StatusTodo
	}
	if !t.Priority.Valid() {
		t.Priority = PriorityMedium
	}

	now := s.timestamp()
	t.ID = uuid.NewString()
	t.CreatedAt = now
	t.UpdatedAt = now

	var due any
	if t.DueDate != nil {
		d := t.DueDate.UTC()
		t.DueDate = &d
		due = d
	}

	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO tasks (
			id, title, description, status, priority, due_date,
			created_at, updated_at, parent_id, ai_suggestion, roadmap
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`),
		t.ID, t.Title, nullIfEmpty(t.Description), string(t.Status), string(t.Priority), due,
		now, now, nullIfEmpty(t.ParentID), nullIfEmpty(t.AISuggestion), nullIfEmpty(t.Roadmap),
	)
	if err != nil {
		return fmt.Errorf("insert task: %w", err)
	}
	return nil
}

func (s *SQLStore) Get(ctx context.Context, id string) (Task, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`SELECT `+taskColumns+` FROM tasks WHERE id = $1`), id)

	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Task{}, ErrNotFound
	}
	if err != nil {
		return Task{}, fmt.Errorf("get task %s: %w", id, err)
	}
	return t, nil
}

// List returns matching tasks, newest first.
func (s *SQLStore) List(ctx context.Context, filter ListFilter) ([]Task, error) {
	var (
		where []string
		args  []any
	)
	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.ExcludeStatus != nil {
		args = append(args, string(*filter.ExcludeStatus))
		where = append(where, fmt.Sprintf("status <> $%d", len(args)))
	}

	query := `SELECT ` + taskColumns + ` FROM tasks`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	query += ` ORDER BY created_at DESC, id DESC`

	rows, err := s.db.QueryContext(ctx, s.rebind(query), args...)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	result := []Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return result, nil
}

// Update applies u to the task and returns the stored result. It returns
// ErrNotFound when no row matched, including when OnlyIfOpen rejected a DONE task.
func (s *SQLStore) Update(ctx context.Context, id string, u TaskUpdate) (Task, error) {
	var (
		sets []string
		args []any
	)
	set := func(col string, v any) {
		args = append(args, v)
		sets = append(sets, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if u.Status != nil {
		if !u.Status.Valid() {
			return Task{}, invalid("invalid status")
		}
		set("status", string(*u.Status))
	}
	if u.AISuggestion != nil {
		set("ai_suggestion", *u.AISuggestion)
	}
	if u.Roadmap != nil {
		set("roadmap", *u.Roadmap)
	}
	set("updated_at", s.timestamp())

	args = append(args, id)
	where := fmt.Sprintf("id = $%d", len(args))
	if u.OnlyIfOpen {
		where += " AND status <> 'DONE'"
	}

	res, err := s.db.ExecContext(ctx,
		s.rebind(`UPDATE tasks SET `+strings.Join(sets, ", ")+` WHERE `+where),
		args...,
	)
	if err != nil {
		return Task{}, fmt.Errorf("update task %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return Task{}, fmt.Errorf("update task %s: %w", id, err)
	}
	if affected == 0 {
		return Task{}, ErrNotFound
	}

	return s.Get(ctx, id)
}

func (s *SQLStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM tasks WHERE id = $1`), id)
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete task %s: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func nullIfEmpty(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{Valid: false}
	}
	return sql.NullString{String: s, Valid: true}
}
