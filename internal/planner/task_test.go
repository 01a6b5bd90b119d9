package planner

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNewTaskItem(t *testing.T) {
	tests := []struct {
		name        string
		title       string
		description string
		wantErr     error
	}{
		{name: "valid", title: "buy milk", description: "2 liters"},
		{name: "trims whitespace", title: "  buy milk  "},
		{name: "empty title", title: "", wantErr: ErrTitleRequired},
		{name: "whitespace only title", title: "   ", wantErr: ErrTitleRequired},
		{name: "title too long", title: strings.Repeat("x", MaxTitleLength+1), wantErr: ErrTitleTooLong},
		{name: "title at limit", title: strings.Repeat("x", MaxTitleLength)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task, err := NewTaskItem(tt.title, tt.description, nil)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("NewTaskItem() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("NewTaskItem() unexpected error: %v", err)
			}
			if got, want := task.Title, strings.TrimSpace(tt.title); got != want {
				t.Errorf("Title = %q, want %q", got, want)
			}
			if task.ID == uuid.Nil {
				t.Error("ID not assigned")
			}
			if task.IsCompleted {
				t.Error("new task should not be completed")
			}
		})
	}
}

func TestTaskItemCompleteReopen(t *testing.T) {
	task, err := NewTaskItem("write report", "", nil)
	if err != nil {
		t.Fatalf("NewTaskItem() error: %v", err)
	}

	task.Complete()
	if !task.IsCompleted {
		t.Fatal("task not completed after Complete()")
	}
	if task.CompletedAt == nil {
		t.Fatal("CompletedAt not set after Complete()")
	}

	completedAt := *task.CompletedAt
	task.Complete() // idempotent
	if task.CompletedAt == nil || !task.CompletedAt.Equal(completedAt) {
		t.Error("second Complete() changed CompletedAt")
	}

	task.Reopen()
	if task.IsCompleted {
		t.Error("task still completed after Reopen()")
	}
	if task.CompletedAt != nil {
		t.Error("CompletedAt not cleared after Reopen()")
	}
}

func TestTaskItemSetDueAtNormalizesUTC(t *testing.T) {
	task, err := NewTaskItem("dentist", "", nil)
	if err != nil {
		t.Fatalf("NewTaskItem() error: %v", err)
	}

	loc := time.FixedZone("UTC+8", 8*3600)
	due := time.Date(2026, 3, 14, 9, 0, 0, 0, loc)
	task.SetDueAt(&due)

	if task.DueAt == nil {
		t.Fatal("DueAt not set")
	}
	if got := task.DueAt.Location(); got != time.UTC {
		t.Errorf("DueAt location = %v, want UTC", got)
	}
	if !task.DueAt.Equal(due) {
		t.Errorf("DueAt = %v, want instant %v", task.DueAt, due)
	}

	task.SetDueAt(nil)
	if task.DueAt != nil {
		t.Error("DueAt not cleared")
	}
}

func TestTaskItemSetFocusDateNormalizesToDay(t *testing.T) {
	task, err := NewTaskItem("plan sprint", "", nil)
	if err != nil {
		t.Fatalf("NewTaskItem() error: %v", err)
	}

	loc := time.FixedZone("UTC+2", 2*3600)
	focus := time.Date(2026, 9, 15, 14, 30, 0, 0, loc)
	task.SetFocusDate(&focus)

	if task.FocusDate == nil {
		t.Fatal("FocusDate not set")
	}
	want := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	if !task.FocusDate.Equal(want) {
		t.Errorf("FocusDate = %v, want %v", task.FocusDate, want)
	}

	task.SetFocusDate(nil)
	if task.FocusDate != nil {
		t.Error("FocusDate not cleared")
	}
}

func TestTaskItemAssignToList(t *testing.T) {
	task, err := NewTaskItem("pack bags", "", nil)
	if err != nil {
		t.Fatalf("NewTaskItem() error: %v", err)
	}
	list, err := NewTaskList("travel", "", "#00aaff")
	if err != nil {
		t.Fatalf("NewTaskList() error: %v", err)
	}

	task.AssignToList(&list.ID)
	if task.TaskListID == nil || *task.TaskListID != list.ID {
		t.Fatalf("TaskListID = %v, want %v", task.TaskListID, list.ID)
	}

	task.AssignToList(nil)
	if task.TaskListID != nil {
		t.Error("TaskListID not cleared on unassign")
	}
}

func TestTaskListArchive(t *testing.T) {
	list, err := NewTaskList("errands", "", "")
	if err != nil {
		t.Fatalf("NewTaskList() error: %v", err)
	}
	if list.IsArchived {
		t.Fatal("new list should not be archived")
	}

	list.Archive()
	if !list.IsArchived {
		t.Error("list not archived after Archive()")
	}

	list.Unarchive()
	if list.IsArchived {
		t.Error("list still archived after Unarchive()")
	}
}
