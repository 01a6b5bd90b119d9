package planner

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// NoteItem is a note belonging to exactly one NoteList.
type NoteItem struct {
	ID         uuid.UUID `json:"id"`
	Title      string    `json:"title"`
	Content    string    `json:"content,omitempty"`
	IsPinned   bool      `json:"is_pinned"`
	NoteListID uuid.UUID `json:"note_list_id"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// NewNoteItem creates a note with a validated title in the given list.
func NewNoteItem(title, content string, noteListID uuid.UUID) (*NoteItem, error) {
	now := time.Now().UTC()
	n := &NoteItem{
		ID:         uuid.New(),
		NoteListID: noteListID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := n.SetTitle(title); err != nil {
		return nil, err
	}
	n.SetContent(content)
	return n, nil
}

// SetTitle validates and sets the note title.
func (n *NoteItem) SetTitle(title string) error {
	title = strings.TrimSpace(title)
	if title == "" {
		return ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return fmt.Errorf("%w: %d runes (max %d)", ErrTitleTooLong, utf8.RuneCountInString(title), MaxTitleLength)
	}
	n.Title = title
	n.touch()
	return nil
}

// SetContent trims and sets the note body.
func (n *NoteItem) SetContent(content string) {
	n.Content = strings.TrimSpace(content)
	n.touch()
}

// Pin marks the note pinned. Pinning a pinned note is a no-op.
func (n *NoteItem) Pin() {
	if !n.IsPinned {
		n.IsPinned = true
		n.touch()
	}
}

// Unpin clears the pinned flag.
func (n *NoteItem) Unpin() {
	if n.IsPinned {
		n.IsPinned = false
		n.touch()
	}
}

func (n *NoteItem) touch() {
	n.UpdatedAt = time.Now().UTC()
}

// NoteList groups notes. Deleting a list deletes its notes.
type NoteList struct {
	ID          uuid.UUID `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description,omitempty"`
	Color       string    `json:"color,omitempty"`
	IsArchived  bool      `json:"is_archived"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewNoteList creates a note list with a validated title.
func NewNoteList(title, description, color string) (*NoteList, error) {
	now := time.Now().UTC()
	l := &NoteList{
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
func (l *NoteList) SetTitle(title string) error {
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
func (l *NoteList) SetDescription(description string) {
	l.Description = strings.TrimSpace(description)
	l.touch()
}

// SetColor sets the display color hint.
func (l *NoteList) SetColor(color string) {
	l.Color = strings.TrimSpace(color)
	l.touch()
}

// Archive hides the list from default listings.
func (l *NoteList) Archive() {
	if !l.IsArchived {
		l.IsArchived = true
		l.touch()
	}
}

// Unarchive restores an archived list.
func (l *NoteList) Unarchive() {
	if l.IsArchived {
		l.IsArchived = false
		l.touch()
	}
}

func (l *NoteList) touch() {
	l.UpdatedAt = time.Now().UTC()
}
