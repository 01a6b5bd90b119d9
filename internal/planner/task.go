// Package planner holds the planner's domain entities and application
// services: tasks, task lists, notes, and note lists. Entities validate their
// own state; services coordinate entities with storage and enforce per-user
// isolation.
package planner

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// MaxTitleLength bounds entity titles, in runes.
const MaxTitleLength = 256

// TaskItem is a single to-do entry, optionally assigned to a TaskList.
type TaskItem struct {
	ID          uuid.UUID  `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	IsCompleted bool       `json:"is_completed"`
	IsImportant bool       `json:"is_important"`
	TaskListID  *uuid.UUID `json:"task_list_id,omitempty"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	FocusDate   *time.Time `json:"focus_date,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// NewTaskItem creates a task with a validated title.
func NewTaskItem(title, description string, dueAt *time.Time) (*TaskItem, error) {
	now := time.Now().UTC()
	t := &TaskItem{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := t.SetTitle(title); err != nil {
		return nil, err
	}
	t.SetDescription(description)
	t.SetDueAt(dueAt)
	return t, nil
}

// SetTitle validates and sets the task title.
func (t *TaskItem) SetTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return fmt.Errorf("%w: %d runes (max %d)", ErrTitleTooLong, utf8.RuneCountInString(title), MaxTitleLength)
	}
	t.Title = title
	t.touch()
	return nil
}

// SetDescription trims and sets the description; whitespace-only clears it.
func (t *TaskItem) SetDescription(description string) {
	t.Description = strings.TrimSpace(description)
	t.touch()
}

// SetDueAt sets the due time, normalized to UTC.
func (t *TaskItem) SetDueAt(dueAt *time.Time) {
	if dueAt == nil {
		t.DueAt = nil
	} else {
		utc := dueAt.UTC()
		t.DueAt = &utc
	}
	t.touch()
}

// SetFocusDate plans the task for a day ("My Day"); nil clears the
// plan. The value is normalized to midnight UTC so tasks planned for
// the same day compare equal.
func (t *TaskItem) SetFocusDate(focusDate *time.Time) {
	if focusDate == nil {
		t.FocusDate = nil
	} else {
		day := FocusDay(*focusDate)
		t.FocusDate = &day
	}
	t.touch()
}

// FocusDay normalizes a timestamp to its calendar day, midnight UTC.
func FocusDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// SetImportant flags or unflags the task as important.
func (t *TaskItem) SetImportant(important bool) {
	if t.IsImportant != important {
		t.IsImportant = important
		t.touch()
	}
}

// AssignToList moves the task to a list; nil unassigns it.
func (t *TaskItem) AssignToList(listID *uuid.UUID) {
	t.TaskListID = listID
	t.touch()
}

// Complete marks the task done. Completing a completed task is a no-op.
func (t *TaskItem) Complete() {
	if !t.IsCompleted {
		t.IsCompleted = true
		now := time.Now().UTC()
		t.CompletedAt = &now
		t.touch()
	}
}

// Reopen reverts a completed task to open. Reopening an open task is a no-op.
func (t *TaskItem) Reopen() {
	if t.IsCompleted {
		t.IsCompleted = false
		t.CompletedAt = nil
		t.touch()
	}
}

func (t *TaskItem) touch() {
	t.UpdatedAt = time.Now().UTC()
}

// TaskList groups tasks. Deleting a list orphans its tasks rather than
// deleting them.
type TaskList struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"`
	IsArchived  bool      `json:"is_archived"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewTaskList creates a task list with a validated title.
func NewTaskList(title, description, color string) (*TaskList, error) {
	now := time.Now().UTC()
	l := &TaskList{
		ID:        uuid.New(),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := l.SetTitle(title); err != nil {
		return nil, err
	}
	l.SetDescription(description)
	l.SetColor(color)
	return l, nil
}

// SetTitle validates and sets the list title.
func (l *TaskList) SetTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return fmt.Errorf("%w: %d runes (max %d)", ErrTitleTooLong, utf8.RuneCountInString(title), MaxTitleLength)
	}
	l.Title = title
	l.touch()
	return nil
}

// SetDescription trims and sets the description.
func (l *TaskList) SetDescription(description string) {
	l.Description = strings.TrimSpace(description)
	l.touch()
}

// SetColor sets the display color hint.
func (l *TaskList) SetColor(color string) {
	l.Color = strings.TrimSpace(color)
	l.touch()
}

// Archive hides the list from default listings.
func (l *TaskList) Archive() {
	if !l.IsArchived {
		l.IsArchived = true
		l.touch()
	}
}

// Unarchive restores an archived list.
func (l *TaskList) Unarchive() {
	if l.IsArchived {
		l.IsArchived = false
		l.touch()
	}
}

func (l *TaskList) touch() {
	l.UpdatedAt = time.Now().UTC()
}
