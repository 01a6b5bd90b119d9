package planner

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/uuid"
)

func TestNewNoteItem(t *testing.T) {
	listID := uuid.New()

	tests := []struct {
		name    string
		title   string
		content string
		wantErr error
	}{
		{name: "valid", title: "meeting notes", content: "discussed roadmap"},
		{name: "empty content allowed", title: "placeholder"},
		{name: "empty title", title: "", wantErr: ErrTitleRequired},
		{name: "title too long", title: strings.Repeat("n", MaxTitleLength+1), wantErr: ErrTitleTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			note, err := NewNoteItem(tt.title, tt.content, listID)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewNoteItem() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewNoteItem() unexpected error: %v", err)
			}
			if note.NoteListID != listID {
				t.Errorf("NoteListID = %v, want %v", note.NoteListID, listID)
			}
			if note.IsPinned {
				t.Error("new note should not be pinned")
			}
		})
	}
}

func TestNoteItemPinUnpin(t *testing.T) {
	note, err := NewNoteItem("ideas", "", uuid.New())
	if err != nil {
		t.Fatalf("NewNoteItem() error: %v", err)
	}

	note.Pin()
	if !note.IsPinned {
		t.Fatal("note not pinned after Pin()")
	}

	updated := note.UpdatedAt
	note.Pin() // idempotent
	if !note.UpdatedAt.Equal(updated) {
		t.Error("second Pin() touched UpdatedAt")
	}

	note.Unpin()
	if note.IsPinned {
		t.Error("note still pinned after Unpin()")
	}
}

func TestNewNoteList(t *testing.T) {
	list, err := NewNoteList("  journal  ", "daily entries", "#ffcc00")
	if err != nil {
		t.Fatalf("NewNoteList() error: %v", err)
	}
	if got, want := list.Title, "journal"; got != want {
		t.Errorf("Title = %q, want %q", got, want)
	}
	if list.Color != "#ffcc00" {
		t.Errorf("Color = %q, want %q", list.Color, "#ffcc00")
	}

	if _, err := NewNoteList("", "", ""); !errors.Is(err, ErrTitleRequired) {
		t.Fatalf("NewNoteList(\"\") error = %v, want %v", err, ErrTitleRequired)
	}
}
