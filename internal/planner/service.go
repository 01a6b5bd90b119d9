package planner

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
)

// TaskStore is the persistence interface the task service needs.
// Interfaces are defined by the consumer; internal/store implements this.
type TaskStore interface {
	PutTask(ctx context.Context, userID string, t *TaskItem) error
	GetTask(ctx context.Context, userID string, id uuid.UUID) (*TaskItem, error)
	ListTasks(ctx context.Context, userID string, includeCompleted bool) ([]*TaskItem, error)
	ListTasksByList(ctx context.Context, userID string, listID *uuid.UUID, includeCompleted bool) ([]*TaskItem, error)
	ListTasksByFocusDate(ctx context.Context, userID string, focusDate time.Time, includeCompleted bool) ([]*TaskItem, error)
	DeleteTask(ctx context.Context, userID string, id uuid.UUID) error

	PutTaskList(ctx context.Context, userID string, l *TaskList) error
	GetTaskList(ctx context.Context, userID string, id uuid.UUID) (*TaskList, error)
	ListTaskLists(ctx context.Context, userID string, includeArchived bool) ([]*TaskList, error)
	DeleteTaskList(ctx context.Context, userID string, id uuid.UUID) error
}

// TaskService exposes task and task list operations, scoped per user on
// every call. Each method maps 1:1 to a chat tool and an HTTP endpoint.
type TaskService struct {
	store  TaskStore
	logger *slog.Logger
}

// NewTaskService creates a task service.
func NewTaskService(store TaskStore, logger *slog.Logger) *TaskService {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskService{store: store, logger: logger}
}

// CreateTask creates a task for the user.
func (s *TaskService) CreateTask(ctx context.Context, userID, title, description string, dueAt *time.Time) (*TaskItem, error) {
	t, err := NewTaskItem(title, description, dueAt)
	if err != nil {
		return nil, err
	}
	if err := s.store.PutTask(ctx, userID, t); err != nil {
		return nil, fmt.Errorf("storing task: %w", err)
	}
	s.logger.Debug("created task", "task_id", t.ID, "user_id", userID)
	return t, nil
}

// GetTask fetches one task.
func (s *TaskService) GetTask(ctx context.Context, userID string, id uuid.UUID) (*TaskItem, error) {
	return s.store.GetTask(ctx, userID, id)
}

// ListTasks lists the user's tasks, optionally filtering out completed ones.
func (s *TaskService) ListTasks(ctx context.Context, userID string, includeCompleted bool) ([]*TaskItem, error) {
	return s.store.ListTasks(ctx, userID, includeCompleted)
}

// ListTasksByList lists tasks in a given list; a nil list id selects tasks
// not assigned to any list.
func (s *TaskService) ListTasksByList(ctx context.Context, userID string, listID *uuid.UUID, includeCompleted bool) ([]*TaskItem, error) {
	return s.store.ListTasksByList(ctx, userID, listID, includeCompleted)
}

// UpdateTask applies non-nil field changes to a task.
func (s *TaskService) UpdateTask(ctx context.Context, userID string, id uuid.UUID, title, description *string, dueAt *time.Time, important *bool) (*TaskItem, error) {
	t, err := s.store.GetTask(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if title != nil {
		if err := t.SetTitle(*title); err != nil {
			return nil, err
		}
	}
	if description != nil {
		t.SetDescription(*description)
	}
	if dueAt != nil {
		t.SetDueAt(dueAt)
	}
	if important != nil {
		t.SetImportant(*important)
	}
	if err := s.store.PutTask(ctx, userID, t); err != nil {
		return nil, fmt.Errorf("storing task: %w", err)
	}
	return t, nil
}

// ListTasksByFocusDate lists tasks planned for a given day ("My Day").
func (s *TaskService) ListTasksByFocusDate(ctx context.Context, userID string, focusDate time.Time, includeCompleted bool) ([]*TaskItem, error) {
	return s.store.ListTasksByFocusDate(ctx, userID, FocusDay(focusDate), includeCompleted)
}

// SetTaskFocusDate plans a task for a day; nil clears the plan.
func (s *TaskService) SetTaskFocusDate(ctx context.Context, userID string, id uuid.UUID, focusDate *time.Time) (*TaskItem, error) {
	t, err := s.store.GetTask(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	t.SetFocusDate(focusDate)
	if err := s.store.PutTask(ctx, userID, t); err != nil {
		return nil, fmt.Errorf("storing task: %w", err)
	}
	return t, nil
}

// AssignTaskToList moves a task into a list; nil unassigns.
func (s *TaskService) AssignTaskToList(ctx context.Context, userID string, taskID uuid.UUID, listID *uuid.UUID) (*TaskItem, error) {
	t, err := s.store.GetTask(ctx, userID, taskID)
	if err != nil {
		return nil, err
	}
	if listID != nil {
		// The target list must exist and belong to the same user.
		if _, err := s.store.GetTaskList(ctx, userID, *listID); err != nil {
			return nil, err
		}
	}
	t.AssignToList(listID)
	if err := s.store.PutTask(ctx, userID, t); err != nil {
		return nil, fmt.Errorf("storing task: %w", err)
	}
	return t, nil
}

// CompleteTask marks a task done.
func (s *TaskService) CompleteTask(ctx context.Context, userID string, id uuid.UUID) (*TaskItem, error) {
	t, err := s.store.GetTask(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	t.Complete()
	if err := s.store.PutTask(ctx, userID, t); err != nil {
		return nil, fmt.Errorf("storing task: %w", err)
	}
	return t, nil
}

// ReopenTask reverts a completed task to open.
func (s *TaskService) ReopenTask(ctx context.Context, userID string, id uuid.UUID) (*TaskItem, error) {
	t, err := s.store.GetTask(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	t.Reopen()
	if err := s.store.PutTask(ctx, userID, t); err != nil {
		return nil, fmt.Errorf("storing task: %w", err)
	}
	return t, nil
}

// DeleteTask removes a task.
func (s *TaskService) DeleteTask(ctx context.Context, userID string, id uuid.UUID) error {
	return s.store.DeleteTask(ctx, userID, id)
}

// CreateTaskList creates a task list.
func (s *TaskService) CreateTaskList(ctx context.Context, userID, title, description, color string) (*TaskList, error) {
	l, err := NewTaskList(title, description, color)
	if err != nil {
		return nil, err
	}
	if err := s.store.PutTaskList(ctx, userID, l); err != nil {
		return nil, fmt.Errorf("storing task list: %w", err)
	}
	return l, nil
}

// GetTaskList fetches one task list.
func (s *TaskService) GetTaskList(ctx context.Context, userID string, id uuid.UUID) (*TaskList, error) {
	return s.store.GetTaskList(ctx, userID, id)
}

// ListTaskLists lists the user's task lists.
func (s *TaskService) ListTaskLists(ctx context.Context, userID string, includeArchived bool) ([]*TaskList, error) {
	return s.store.ListTaskLists(ctx, userID, includeArchived)
}

// UpdateTaskList applies non-nil field changes to a task list.
func (s *TaskService) UpdateTaskList(ctx context.Context, userID string, id uuid.UUID, title, description, color *string) (*TaskList, error) {
	l, err := s.store.GetTaskList(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if title != nil {
		if err := l.SetTitle(*title); err != nil {
			return nil, err
		}
	}
	if description != nil {
		l.SetDescription(*description)
	}
	if color != nil {
		l.SetColor(*color)
	}
	if err := s.store.PutTaskList(ctx, userID, l); err != nil {
		return nil, fmt.Errorf("storing task list: %w", err)
	}
	return l, nil
}

// ArchiveTaskList hides a list from default listings.
func (s *TaskService) ArchiveTaskList(ctx context.Context, userID string, id uuid.UUID) (*TaskList, error) {
	l, err := s.store.GetTaskList(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	l.Archive()
	if err := s.store.PutTaskList(ctx, userID, l); err != nil {
		return nil, fmt.Errorf("storing task list: %w", err)
	}
	return l, nil
}

// UnarchiveTaskList restores an archived list.
func (s *TaskService) UnarchiveTaskList(ctx context.Context, userID string, id uuid.UUID) (*TaskList, error) {
	l, err := s.store.GetTaskList(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	l.Unarchive()
	if err := s.store.PutTaskList(ctx, userID, l); err != nil {
		return nil, fmt.Errorf("storing task list: %w", err)
	}
	return l, nil
}

// DeleteTaskList removes a list. Tasks in the list are orphaned, not deleted.
func (s *TaskService) DeleteTaskList(ctx context.Context, userID string, id uuid.UUID) error {
	return s.store.DeleteTaskList(ctx, userID, id)
}

// NoteStore is the persistence interface the note service needs.
type NoteStore interface {
	PutNote(ctx context.Context, userID string, n *NoteItem) error
	GetNote(ctx context.Context, userID string, id uuid.UUID) (*NoteItem, error)
	ListNotes(ctx context.Context, userID string, listID *uuid.UUID) ([]*NoteItem, error)
	DeleteNote(ctx context.Context, userID string, id uuid.UUID) error

	PutNoteList(ctx context.Context, userID string, l *NoteList) error
	GetNoteList(ctx context.Context, userID string, id uuid.UUID) (*NoteList, error)
	ListNoteLists(ctx context.Context, userID string, includeArchived bool) ([]*NoteList, error)
	DeleteNoteList(ctx context.Context, userID string, id uuid.UUID) error
}

// NoteService exposes note and note list operations, scoped per user.
type NoteService struct {
	store  NoteStore
	logger *slog.Logger
}

// NewNoteService creates a note service.
func NewNoteService(store NoteStore, logger *slog.Logger) *NoteService {
	if logger == nil {
		logger = slog.Default()
	}
	return &NoteService{store: store, logger: logger}
}

// CreateNote creates a note inside an existing note list.
func (s *NoteService) CreateNote(ctx context.Context, userID, title, content string, noteListID uuid.UUID) (*NoteItem, error) {
	if _, err := s.store.GetNoteList(ctx, userID, noteListID); err != nil {
		return nil, err
	}
	n, err := NewNoteItem(title, content, noteListID)
	if err != nil {
		return nil, err
	}
	if err := s.store.PutNote(ctx, userID, n); err != nil {
		return nil, fmt.Errorf("storing note: %w", err)
	}
	s.logger.Debug("created note", "note_id", n.ID, "user_id", userID)
	return n, nil
}

// GetNote fetches one note.
func (s *NoteService) GetNote(ctx context.Context, userID string, id uuid.UUID) (*NoteItem, error) {
	return s.store.GetNote(ctx, userID, id)
}

// ListNotes lists notes; a nil list id selects all of the user's notes.
func (s *NoteService) ListNotes(ctx context.Context, userID string, listID *uuid.UUID) ([]*NoteItem, error) {
	return s.store.ListNotes(ctx, userID, listID)
}

// UpdateNote applies non-nil field changes to a note.
func (s *NoteService) UpdateNote(ctx context.Context, userID string, id uuid.UUID, title, content *string) (*NoteItem, error) {
	n, err := s.store.GetNote(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if title != nil {
		if err := n.SetTitle(*title); err != nil {
			return nil, err
		}
	}
	if content != nil {
		n.SetContent(*content)
	}
	if err := s.store.PutNote(ctx, userID, n); err != nil {
		return nil, fmt.Errorf("storing note: %w", err)
	}
	return n, nil
}

// PinNote pins a note.
func (s *NoteService) PinNote(ctx context.Context, userID string, id uuid.UUID) (*NoteItem, error) {
	return s.setPinned(ctx, userID, id, true)
}

// UnpinNote unpins a note.
func (s *NoteService) UnpinNote(ctx context.Context, userID string, id uuid.UUID) (*NoteItem, error) {
	return s.setPinned(ctx, userID, id, false)
}

func (s *NoteService) setPinned(ctx context.Context, userID string, id uuid.UUID, pinned bool) (*NoteItem, error) {
	n, err := s.store.GetNote(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if pinned {
		n.Pin()
	} else {
		n.Unpin()
	}
	if err := s.store.PutNote(ctx, userID, n); err != nil {
		return nil, fmt.Errorf("storing note: %w", err)
	}
	return n, nil
}

// DeleteNote removes a note.
func (s *NoteService) DeleteNote(ctx context.Context, userID string, id uuid.UUID) error {
	return s.store.DeleteNote(ctx, userID, id)
}

// CreateNoteList creates a note list.
func (s *NoteService) CreateNoteList(ctx context.Context, userID, title, description, color string) (*NoteList, error) {
	l, err := NewNoteList(title, description, color)
	if err != nil {
		return nil, err
	}
	if err := s.store.PutNoteList(ctx, userID, l); err != nil {
		return nil, fmt.Errorf("storing note list: %w", err)
	}
	return l, nil
}

// ListNoteLists lists the user's note lists.
func (s *NoteService) ListNoteLists(ctx context.Context, userID string, includeArchived bool) ([]*NoteList, error) {
	return s.store.ListNoteLists(ctx, userID, includeArchived)
}

// ArchiveNoteList hides a note list from default listings.
func (s *NoteService) ArchiveNoteList(ctx context.Context, userID string, id uuid.UUID) (*NoteList, error) {
	return s.setListArchived(ctx, userID, id, true)
}

// UnarchiveNoteList restores an archived note list.
func (s *NoteService) UnarchiveNoteList(ctx context.Context, userID string, id uuid.UUID) (*NoteList, error) {
	return s.setListArchived(ctx, userID, id, false)
}

func (s *NoteService) setListArchived(ctx context.Context, userID string, id uuid.UUID, archived bool) (*NoteList, error) {
	l, err := s.store.GetNoteList(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if archived {
		l.Archive()
	} else {
		l.Unarchive()
	}
	if err := s.store.PutNoteList(ctx, userID, l); err != nil {
		return nil, fmt.Errorf("storing note list: %w", err)
	}
	return l, nil
}

// DeleteNoteList removes a note list and its notes.
func (s *NoteService) DeleteNoteList(ctx context.Context, userID string, id uuid.UUID) error {
	return s.store.DeleteNoteList(ctx, userID, id)
}
