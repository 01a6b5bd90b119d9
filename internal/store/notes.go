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

// NoteStore implements planner.NoteStore backed by SQLite.
type NoteStore struct {
	db *DB
}

// NewNoteStore creates a note store using the given database.
func NewNoteStore(db *DB) *NoteStore {
	return &NoteStore{db: db}
}

// PutNote inserts or updates a note.
func (s *NoteStore) PutNote(ctx context.Context, userID string, n *planner.NoteItem) error {
	_, err := s.db.sql.ExecContext(ctx,
		`INSERT INTO notes (id, user_id, title, content, is_pinned, note_list_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			content = excluded.content,
			is_pinned = excluded.is_pinned,
			note_list_id = excluded.note_list_id,
			updated_at = excluded.updated_at
		 WHERE notes.user_id = excluded.user_id`,
		n.ID.String(), userID, n.Title, n.Content, n.IsPinned, n.NoteListID.String(),
		n.CreatedAt.UTC().Format(timeLayout), n.UpdatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("saving note: %w", err)
	}
	return nil
}

const noteColumns = `id, title, content, is_pinned, note_list_id, created_at, updated_at`

// GetNote fetches one note belonging to the user.
func (s *NoteStore) GetNote(ctx context.Context, userID string, id uuid.UUID) (*planner.NoteItem, error) {
	row := s.db.sql.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = ? AND user_id = ?`,
		id.String(), userID,
	)
	n, err := scanNote(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, planner.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading note: %w", err)
	}
	return n, nil
}

// ListNotes lists notes, pinned first; a nil list id selects all of the
// user's notes.
func (s *NoteStore) ListNotes(ctx context.Context, userID string, listID *uuid.UUID) ([]*planner.NoteItem, error) {
	q := `SELECT ` + noteColumns + ` FROM notes WHERE user_id = ?`
	args := []any{userID}
	if listID != nil {
		q += ` AND note_list_id = ?`
		args = append(args, listID.String())
	}
	q += ` ORDER BY is_pinned DESC, updated_at DESC`

	rows, err := s.db.sql.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("listing notes: %w", err)
	}
	defer rows.Close()

	var out []*planner.NoteItem
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning note: %w", err)
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// DeleteNote removes a note belonging to the user.
func (s *NoteStore) DeleteNote(ctx context.Context, userID string, id uuid.UUID) error {
	res, err := s.db.sql.ExecContext(ctx,
		`DELETE FROM notes WHERE id = ? AND user_id = ?`, id.String(), userID,
	)
	if err != nil {
		return fmt.Errorf("deleting note: %w", err)
	}
	return requireAffected(res)
}

// PutNoteList inserts or updates a note list.
func (s *NoteStore) PutNoteList(ctx context.Context, userID string, l *planner.NoteList) error {
	_, err := s.db.sql.ExecContext(ctx,
		`INSERT INTO note_lists (id, user_id, title, description, color, is_archived, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			description = excluded.description,
			color = excluded.color,
			is_archived = excluded.is_archived,
			updated_at = excluded.updated_at
		 WHERE note_lists.user_id = excluded.user_id`,
		l.ID.String(), userID, l.Title, l.Description, l.Color, l.IsArchived,
		l.CreatedAt.UTC().Format(timeLayout), l.UpdatedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("saving note list: %w", err)
	}
	return nil
}

// GetNoteList fetches one note list belonging to the user.
func (s *NoteStore) GetNoteList(ctx context.Context, userID string, id uuid.UUID) (*planner.NoteList, error) {
	row := s.db.sql.QueryRowContext(ctx,
		`SELECT id, title, description, color, is_archived, created_at, updated_at
		 FROM note_lists WHERE id = ? AND user_id = ?`,
		id.String(), userID,
	)
	l, err := scanNoteList(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, planner.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("loading note list: %w", err)
	}
	return l, nil
}

// ListNoteLists lists the user's note lists.
func (s *NoteStore) ListNoteLists(ctx context.Context, userID string, includeArchived bool) ([]*planner.NoteList, error) {
	q := `SELECT id, title, description, color, is_archived, created_at, updated_at
	      FROM note_lists WHERE user_id = ?`
	if !includeArchived {
		q += ` AND is_archived = 0`
	}
	q += ` ORDER BY created_at DESC`

	rows, err := s.db.sql.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, fmt.Errorf("listing note lists: %w", err)
	}
	defer rows.Close()

	var out []*planner.NoteList
	for rows.Next() {
		l, err := scanNoteList(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning note list: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

// DeleteNoteList removes a note list. Its notes are removed by the
// ON DELETE CASCADE constraint.
func (s *NoteStore) DeleteNoteList(ctx context.Context, userID string, id uuid.UUID) error {
	res, err := s.db.sql.ExecContext(ctx,
		`DELETE FROM note_lists WHERE id = ? AND user_id = ?`, id.String(), userID,
	)
	if err != nil {
		return fmt.Errorf("deleting note list: %w", err)
	}
	return requireAffected(res)
}

func scanNote(row scanner) (*planner.NoteItem, error) {
	var (
		n                    planner.NoteItem
		id, listID           string
		createdAt, updatedAt string
	)
	if err := row.Scan(&id, &n.Title, &n.Content, &n.IsPinned, &listID,
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if n.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parsing note id %q: %w", id, err)
	}
	if n.NoteListID, err = uuid.Parse(listID); err != nil {
		return nil, fmt.Errorf("parsing note list id %q: %w", listID, err)
	}
	if n.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if n.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &n, nil
}

func scanNoteList(row scanner) (*planner.NoteList, error) {
	var (
		l                    planner.NoteList
		id                   string
		createdAt, updatedAt string
	)
	if err := row.Scan(&id, &l.Title, &l.Description, &l.Color, &l.IsArchived,
		&createdAt, &updatedAt); err != nil {
		return nil, err
	}

	var err error
	if l.ID, err = uuid.Parse(id); err != nil {
		return nil, fmt.Errorf("parsing note list id %q: %w", id, err)
	}
	if l.CreatedAt, err = time.Parse(timeLayout, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if l.UpdatedAt, err = time.Parse(timeLayout, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &l, nil
}
