package tasks

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"smart-tasks-backend/internal/db"
)

var testEpoch = time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)

// newTestStore returns a store over a fresh SQLite file whose clock advances
// one second per call, so creation order is deterministic.
func newTestStore(t *testing.T) *SQLStore {
	t.Helper()
	ctx := context.Background()

	dsn := "file:" + filepath.Join(t.TempDir(), "tasks.db") + "?_time_format=sqlite"
	database, err := db.Connect(ctx, "sqlite", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	require.NoError(t, db.Migrate(ctx, database, "sqlite"))

	store := NewSQLStore(database, "sqlite")
	var ticks int
	store.now = func() time.Time {
		ticks++
		return testEpoch.Add(time.Duration(ticks) * time.Second)
	}
	return store
}

func mustCreate(t *testing.T, s Store, task Task) Task {
	t.Helper()
	require.NoError(t, s.Create(context.Background(), &task))
	return task
}

func TestSQLStore_CreateAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	due := time.Date(2024, 5, 2, 9, 0, 0, 0, time.UTC)
	created := mustCreate(t, s, Task{
		Title:        "  Pay electricity bill ",
		Description:  "Utility",
		Priority:     PriorityHigh,
		DueDate:      &due,
		AISuggestion: "Pay online",
		Roadmap:      "- log in\n- pay",
	})

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "Pay electricity bill", created.Title)
	assert.Equal(t, StatusTodo, created.Status)

	got, err := s.Get(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Utility", got.Description)
	assert.Equal(t, PriorityHigh, got.Priority)
	require.NotNil(t, got.DueDate)
	assert.True(t, due.Equal(*got.DueDate))
	assert.True(t, created.CreatedAt.Equal(got.CreatedAt))
	assert.Equal(t, "Pay online", got.AISuggestion)
	assert.Equal(t, "- log in\n- pay", got.Roadmap)
	assert.Empty(t, got.ParentID)
}

func TestSQLStore_CreateDefaults(t *testing.T) {
	s := newTestStore(t)

	created := mustCreate(t, s, Task{Title: "Walk dog", Priority: "URGENT"})
	assert.Equal(t, PriorityMedium, created.Priority)
	assert.Equal(t, StatusTodo, created.Status)
	assert.Nil(t, created.DueDate)

	err := s.Create(context.Background(), &Task{Title: "   "})
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestSQLStore_GetMissing(t *testing.T) {
	s := newTestStore(t)

	_, err := s.Get(context.Background(), "nope")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestSQLStore_ListOrderAndFilter(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	first := mustCreate(t, s, Task{Title: "first"})
	second := mustCreate(t, s, Task{Title: "second", Status: StatusDone})
	third := mustCreate(t, s, Task{Title: "third", Status: StatusInProgress})

	all, err := s.List(ctx, ListFilter{})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{third.ID, second.ID, first.ID}, ids(all))

	done := StatusDone
	open, err := s.List(ctx, ListFilter{ExcludeStatus: &done})
	require.NoError(t, err)
	assert.Equal(t, []string{third.ID, first.ID}, ids(open))

	onlyDone, err := s.List(ctx, ListFilter{Status: &done})
	require.NoError(t, err)
	assert.Equal(t, []string{second.ID}, ids(onlyDone))
}

func TestSQLStore_ListEmptyIsNotNil(t *testing.T) {
	all, err := newTestStore(t).List(context.Background(), ListFilter{})
	require.NoError(t, err)
	assert.NotNil(t, all)
	assert.Empty(t, all)
}

func TestSQLStore_PartialUpdate(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	task := mustCreate(t, s, Task{Title: "Roadmap plan", Roadmap: "X", AISuggestion: "old"})

	suggestion := "Y"
	updated, err := s.Update(ctx, task.ID, TaskUpdate{AISuggestion: &suggestion})
	require.NoError(t, err)
	assert.Equal(t, "X", updated.Roadmap)
	assert.Equal(t, "Y", updated.AISuggestion)
	assert.Equal(t, StatusTodo, updated.Status)
	assert.True(t, updated.UpdatedAt.After(task.UpdatedAt))

	done := StatusDone
	updated, err = s.Update(ctx, task.ID, TaskUpdate{Status: &done})
	require.NoError(t, err)
	assert.Equal(t, StatusDone, updated.Status)
	assert.Equal(t, "X", updated.Roadmap)
}

func TestSQLStore_UpdateOnlyIfOpen(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	task := mustCreate(t, s, Task{Title: "closed", Status: StatusDone, Roadmap: "keep"})

	roadmap := "overwrite"
	_, err := s.Update(ctx, task.ID, TaskUpdate{Roadmap: &roadmap, OnlyIfOpen: true})
	assert.True(t, errors.Is(err, ErrNotFound))

	got, err := s.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "keep", got.Roadmap)
}

func TestSQLStore_UpdateRejectsInvalidStatus(t *testing.T) {
	s := newTestStore(t)
	task := mustCreate(t, s, Task{Title: "x"})

	bad := Status("ARCHIVED")
	_, err := s.Update(context.Background(), task.ID, TaskUpdate{Status: &bad})
	assert.True(t, errors.Is(err, ErrValidation))
}

func TestSQLStore_Delete(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	task := mustCreate(t, s, Task{Title: "x"})

	require.NoError(t, s.Delete(ctx, task.ID))
	assert.True(t, errors.Is(s.Delete(ctx, task.ID), ErrNotFound))

	_, err := s.Get(ctx, task.ID)
	assert.True(t, errors.Is(err, ErrNotFound))
}

var errRowsAffected = errors.New("rows affected unavailable")

// brokenResultDriver accepts every statement but cannot report affected rows.
type brokenResultDriver struct{}

func (brokenResultDriver) Open(string) (driver.Conn, error) { return brokenResultConn{}, nil }

type brokenResultConn struct{}

func (brokenResultConn) Prepare(string) (driver.Stmt, error) { return brokenResultStmt{}, nil }
func (brokenResultConn) Close() error                        { return nil }
func (brokenResultConn) Begin() (driver.Tx, error)           { return nil, errors.New("no transactions") }

type brokenResultStmt struct{}

func (brokenResultStmt) Close() error  { return nil }
func (brokenResultStmt) NumInput() int { return -1 }
func (brokenResultStmt) Exec([]driver.Value) (driver.Result, error) {
	return brokenResult{}, nil
}
func (brokenResultStmt) Query([]driver.Value) (driver.Rows, error) {
	return nil, errors.New("no rows")
}

type brokenResult struct{}

func (brokenResult) LastInsertId() (int64, error) { return 0, errRowsAffected }
func (brokenResult) RowsAffected() (int64, error) { return 0, errRowsAffected }

func init() {
	sql.Register("broken-result", brokenResultDriver{})
}

func TestSQLStore_RowsAffectedFailureIsNotNotFound(t *testing.T) {
	ctx := context.Background()
	database, err := sql.Open("broken-result", "")
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	s := NewSQLStore(database, "postgres")

	roadmap := "x"
	_, err = s.Update(ctx, "some-id", TaskUpdate{Roadmap: &roadmap})
	assert.ErrorIs(t, err, errRowsAffected)
	assert.False(t, errors.Is(err, ErrNotFound))

	err = s.Delete(ctx, "some-id")
	assert.ErrorIs(t, err, errRowsAffected)
	assert.False(t, errors.Is(err, ErrNotFound))
}

func ids(list []Task) []string {
	out := make([]string, 0, len(list))
	for _, t := range list {
		out = append(out, t.ID)
	}
	return out
}
