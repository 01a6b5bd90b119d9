package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ownplanner/ownplanner/internal/planner"
)

// Timestamps are stored as RFC 3339 strings in UTC.
const timeLayout = time.RFC3339Nano

// TaskStore implements planner.TaskStore backed by SQLite.
type TaskStore struct {
	db *DB
}

// NewTaskStore creates a task store using the given database.
func NewTaskStore(db *DB) *TaskStore {
	return &TaskStore{db: db}
}

// PutTask inserts or updates a task.
func (s *TaskStore) PutTask(ctx context.Context, userID string, t *planner.TaskItem) error {
	_, err := s.db.sql.ExecContext(ctx,
		`INSERT INTO tasks (id, user_id, title, description, is_completed, is_important, task_list_id, due_at, focus_date, completed_at, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			is_completed = excluded.is_completed,
			is_important = excluded.is_important,
			task_list_id = excluded.task_list_id,
			due_at = excluded.due_at,
			focus_date = excluded.focus_date,
			completed_at = excluded.completed_at,
			updated_at = excluded.updated_at
		 WHERE tasks.user_id = excluded.user_id`,
		t.ID.String(), userID, t.Title, t.Description, t.IsCompleted, t.IsImportant,
		nullUUID(t.TaskListID), nullTime(t.DueAt), nullTime(t.FocusDate), nullTime(t.CompletedAt),
		t.CreatedAt.UTC().Format(timeLayout), t.UpdatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("saving task: %w", err)
	}
	return nil
}

const taskColumns = `id, title, description, is_completed, is_important, task_list_id, due_at, focus_date, completed_at, created_at, updated_at`

// GetTask fetches one task belonging to the user.
func (s *TaskStore) GetTask(ctx context.Context, userID string, id uuid.UUID) (*planner.TaskItem, error) {
	row := s.db.sql.QueryRowContext(ctx,
		`SELECT `+taskColumns+` FROM tasks WHERE id = ? AND user_id = ?`,
		id.String(), userID,
	)
	t, err := scanTask(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, planner.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading task: %w", err)
	}
	return t, nil
}

// ListTasks lists the user's tasks, newest first.
func (s *TaskStore) ListTasks(ctx context.Context, userID string, includeCompleted bool) ([]*planner.TaskItem, error) {
	q := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ?`
	if !includeCompleted {
		q += ` AND is_completed = 0`
	}
	q += ` ORDER BY created_at DESC`

	rows, err := s.db.sql.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("listing tasks: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// ListTasksByList lists tasks in a given list; a nil list id selects tasks
// not assigned to any list.
func (s *TaskStore) ListTasksByList(ctx context.Context, userID string, listID *uuid.UUID, includeCompleted bool) ([]*planner.TaskItem, error) {
	q := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ?`
	args := []any{userID}
	if listID == nil {
		q += ` AND task_list_id IS NULL`
	} else {
		q += ` AND task_list_id = ?`
		args = append(args, listID.String())
	}
	if !includeCompleted {
		q += ` AND is_completed = 0`
	}
	q += ` ORDER BY created_at DESC`

	rows, err := s.db.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tasks by list: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// ListTasksByFocusDate lists tasks planned for a given day. The day is
// normalized to midnight UTC, matching how SetFocusDate stores it.
func (s *TaskStore) ListTasksByFocusDate(ctx context.Context, userID string, focusDate time.Time, includeCompleted bool) ([]*planner.TaskItem, error) {
	q := `SELECT ` + taskColumns + ` FROM tasks WHERE user_id = ? AND focus_date = ?`
	args := []any{userID, planner.FocusDay(focusDate).Format(timeLayout)}
	if !includeCompleted {
		q += ` AND is_completed = 0`
	}
	q += ` ORDER BY created_at DESC`

	rows, err := s.db.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing tasks by focus date: %w", err)
	}
	defer rows.Close()
	return collectTasks(rows)
}

// DeleteTask removes a task belonging to the user.
func (s *TaskStore) DeleteTask(ctx context.Context, userID string, id uuid.UUID) error {
	res, err := s.db.sql.ExecContext(ctx,
		`DELETE FROM tasks WHERE id = ? AND user_id = ?`, id.String(), userID,
	)
	if err != nil {
		return fmt.Errorf("deleting task: %w", err)
	}
	return requireAffected(res)
}

// PutTaskList inserts or updates a task list.
func (s *TaskStore) PutTaskList(ctx context.Context, userID string, l *planner.TaskList) error {
	_, err := s.db.sql.ExecContext(ctx,
		`INSERT INTO task_lists (id, user_id, title, description, color, is_archived, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			color = excluded.color,
			is_archived = excluded.is_archived,
			updated_at = excluded.updated_at
		 WHERE task_lists.user_id = excluded.user_id`,
		l.ID.String(), userID, l.Title, l.Description, l.Color, l.IsArchived,
		l.CreatedAt.UTC().Format(timeLayout), l.UpdatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("saving task list: %w", err)
	}
	return nil
}

// GetTaskList fetches one task list belonging to the user.
func (s *TaskStore) GetTaskList(ctx context.Context, userID string, id uuid.UUID) (*planner.TaskList, error) {
	row := s.db.sql.QueryRowContext(ctx,
		`SELECT id, title, description, color, is_archived, created_at, updated_at
		 FROM task_lists WHERE id = ? AND user_id = ?`,
		id.String(), userID,
	)
	l, err := scanTaskList(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, planner.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading task list: %w", err)
	}
	return l, nil
}

// ListTaskLists lists the user's task lists.
func (s *TaskStore) ListTaskLists(ctx context.Context, userID string, includeArchived bool) ([]*planner.TaskList, error) {
	q := `SELECT id, title, description, color, is_archived, created_at, updated_at
	      FROM task_lists WHERE user_id = ?`
	if !includeArchived {
		q += ` AND is_archived = 0`
	}
	q += ` ORDER BY created_at DESC`

	rows, err := s.db.sql.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("listing task lists: %w", err)
	}
	defer rows.Close()

	var out []*planner.TaskList
	for rows.Next() {
		l, err := scanTaskList(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task list: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// DeleteTaskList removes a list. Tasks in the list are unassigned by the
// ON DELETE SET NULL constraint, not deleted.
func (s *TaskStore) DeleteTaskList(ctx context.Context, userID string, id uuid.UUID) error {
	res, err := s.db.sql.ExecContext(ctx,
		`DELETE FROM task_lists WHERE id = ? AND user_id = ?`, id.String(), userID,
	)
	if err != nil {
		return fmt.Errorf("deleting task list: %w", err)
	}
	return requireAffected(res)
}

// scanner covers both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (*planner.TaskItem, error) {
	var (
		t                        planner.TaskItem
		id                       string
		listID, due, focus, done sql.NullString
		createdAt, updatedAt     string
	)
	if err := row.Scan(&id, &t.Title, &t.Description, &t.IsCompleted, &t.IsImportant,
		&listID, &due, &focus, &done, &createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if t.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parsing task id %q: %w", id, err)
	}
	if listID.Valid {
		lid, err := uuid.Parse(listID.String)
		if err != nil {
			return nil, fmt.Errorf("parsing task list id %q: %w", listID.String, err)
		}
		t.TaskListID = &lid
	}
	if t.DueAt, err = parseNullTime(due); err != nil {
		return nil, err
	}
	if t.FocusDate, err = parseNullTime(focus); err != nil {
		return nil, err
	}
	if t.CompletedAt, err = parseNullTime(done); err != nil {
		return nil, err
	}
	if t.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if t.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &t, nil
}

func collectTasks(rows *sql.Rows) ([]*planner.TaskItem, error) {
	var out []*planner.TaskItem
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning task: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func scanTaskList(row scanner) (*planner.TaskList, error) {
	var (
		l                    planner.TaskList
		id                   string
		createdAt, updatedAt string
	)
	if err := row.Scan(&id, &l.Title, &l.Description, &l.Color, &l.IsArchived,
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if l.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parsing list id %q: %w", id, err)
	}
	if l.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if l.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &l, nil
}

func nullUUID(id *uuid.UUID) sql.NullString {
	if id == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: id.String(), Valid: true}
}

func nullTime(t *time.Time) sql.NullString {
	if t == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: t.UTC().Format(timeLayout), Valid: true}
}

func parseNullTime(s sql.NullString) (*time.Time, error) {
	if !s.Valid {
		return nil, nil
	}
	t, err := time.Parse(timeLayout, s.String)
	if err != nil {
		return nil, fmt.Errorf("parsing timestamp %q: %w", s.String, err)
	}
	return &t, nil
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return planner.ErrNotFound
	}
	return nil
}
