package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ownplanner/ownplanner/internal/log"
	"github.com/ownplanner/ownplanner/internal/planner"
)

func testDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(":memory:", log.NewNop())
	if err != nil {
		t.Fatalf("Open(:memory:) error: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrationsApplied(t *testing.T) {
	db := testDB(t)

	var count int
	if err := db.sql.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count); err != nil {
		t.Fatalf("counting migrations: %v", err)
	}
	if count != len(migrations) {
		t.Fatalf("applied migrations = %d, want %d", count, len(migrations))
	}

	// Running migrate again is a no-op.
	if err := db.migrate(); err != nil {
		t.Fatalf("migrate() second run error: %v", err)
	}
}

func TestTaskRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := NewTaskStore(testDB(t))

	due := time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	task, err := planner.NewTaskItem("water plants", "the ferns too", &due)
	if err != nil {
		t.Fatalf("NewTaskItem() error: %v", err)
	}
	task.SetImportant(true)

	if err := s.PutTask(ctx, "alice", task); err != nil {
		t.Fatalf("PutTask() error: %v", err)
	}

	got, err := s.GetTask(ctx, "alice", task.ID)
	if err != nil {
		t.Fatalf("GetTask() error: %v", err)
	}
	if got.Title != task.Title {
		t.Errorf("Title = %q, want %q", got.Title, task.Title)
	}
	if got.Description != task.Description {
		t.Errorf("Description = %q, want %q", got.Description, task.Description)
	}
	if !got.IsImportant {
		t.Error("IsImportant not persisted")
	}
	if got.DueAt == nil || !got.DueAt.Equal(due) {
		t.Errorf("DueAt = %v, want %v", got.DueAt, due)
	}
	if got.CompletedAt != nil {
		t.Errorf("CompletedAt = %v, want nil", got.CompletedAt)
	}
}

func TestTaskUserIsolation(t *testing.T) {
	ctx := context.Background()
	s := NewTaskStore(testDB(t))

	task, err := planner.NewTaskItem("secret", "", nil)
	if err != nil {
		t.Fatalf("NewTaskItem() error: %v", err)
	}
	if err := s.PutTask(ctx, "alice", task); err != nil {
		t.Fatalf("PutTask() error: %v", err)
	}

	if _, err := s.GetTask(ctx, "bob", task.ID); !errors.Is(err, planner.ErrNotFound) {
		t.Fatalf("GetTask() as another user error = %v, want %v", err, planner.ErrNotFound)
	}
	if err := s.DeleteTask(ctx, "bob", task.ID); !errors.Is(err, planner.ErrNotFound) {
		t.Fatalf("DeleteTask() as another user error = %v, want %v", err, planner.ErrNotFound)
	}

	// Alice still sees it.
	if _, err := s.GetTask(ctx, "alice", task.ID); err != nil {
		t.Fatalf("GetTask() as owner error: %v", err)
	}
}

func TestListTasksFiltersCompleted(t *testing.T) {
	ctx := context.Background()
	s := NewTaskStore(testDB(t))

	open, _ := planner.NewTaskItem("open", "", nil)
	done, _ := planner.NewTaskItem("done", "", nil)
	done.Complete()
	for _, task := range []*planner.TaskItem{open, done} {
		if err := s.PutTask(ctx, "alice", task); err != nil {
			t.Fatalf("PutTask() error: %v", err)
		}
	}

	got, err := s.ListTasks(ctx, "alice", false)
	if err != nil {
		t.Fatalf("ListTasks() error: %v", err)
	}
	if len(got) != 1 || got[0].Title != "open" {
		t.Fatalf("ListTasks(false) = %d tasks, want just the open one", len(got))
	}

	all, err := s.ListTasks(ctx, "alice", true)
	if err != nil {
		t.Fatalf("ListTasks() error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("ListTasks(true) = %d tasks, want 2", len(all))
	}
}

func TestListTasksByFocusDate(t *testing.T) {
	ctx := context.Background()
	s := NewTaskStore(testDB(t))

	day := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)

	planned, _ := planner.NewTaskItem("prepare demo", "", nil)
	planned.SetFocusDate(&day)
	other, _ := planner.NewTaskItem("someday", "", nil)
	otherDay := day.AddDate(0, 0, 1)
	other.SetFocusDate(&otherDay)
	unplanned, _ := planner.NewTaskItem("backlog", "", nil)
	doneOnDay, _ := planner.NewTaskItem("already out", "", nil)
	doneOnDay.SetFocusDate(&day)
	doneOnDay.Complete()

	for _, task := range []*planner.TaskItem{planned, other, unplanned, doneOnDay} {
		if err := s.PutTask(ctx, "alice", task); err != nil {
			t.Fatalf("PutTask() error: %v", err)
		}
	}

	got, err := s.ListTasksByFocusDate(ctx, "alice", day, false)
	if err != nil {
		t.Fatalf("ListTasksByFocusDate() error: %v", err)
	}
	if len(got) != 1 || got[0].ID != planned.ID {
		t.Fatalf("ListTasksByFocusDate(false) = %d tasks, want just the planned open one", len(got))
	}
	if got[0].FocusDate == nil || !got[0].FocusDate.Equal(day) {
		t.Errorf("FocusDate = %v, want %v", got[0].FocusDate, day)
	}

	all, err := s.ListTasksByFocusDate(ctx, "alice", day, true)
	if err != nil {
		t.Fatalf("ListTasksByFocusDate() error: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("ListTasksByFocusDate(true) = %d tasks, want 2", len(all))
	}

	// A mid-day timestamp selects the same day.
	midday := day.Add(15 * time.Hour)
	got, err = s.ListTasksByFocusDate(ctx, "alice", midday, false)
	if err != nil {
		t.Fatalf("ListTasksByFocusDate(midday) error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("ListTasksByFocusDate(midday) = %d tasks, want 1", len(got))
	}
}

func TestDeleteTaskListOrphansTasks(t *testing.T) {
	ctx := context.Background()
	s := NewTaskStore(testDB(t))

	list, err := planner.NewTaskList("errands", "", "")
	if err != nil {
		t.Fatalf("NewTaskList() error: %v", err)
	}
	if err := s.PutTaskList(ctx, "alice", list); err != nil {
		t.Fatalf("PutTaskList() error: %v", err)
	}

	task, _ := planner.NewTaskItem("post office", "", nil)
	task.AssignToList(&list.ID)
	if err := s.PutTask(ctx, "alice", task); err != nil {
		t.Fatalf("PutTask() error: %v", err)
	}

	if err := s.DeleteTaskList(ctx, "alice", list.ID); err != nil {
		t.Fatalf("DeleteTaskList() error: %v", err)
	}

	got, err := s.GetTask(ctx, "alice", task.ID)
	if err != nil {
		t.Fatalf("GetTask() after list delete error: %v", err)
	}
	if got.TaskListID != nil {
		t.Errorf("TaskListID = %v, want nil after list delete", got.TaskListID)
	}

	unassigned, err := s.ListTasksByList(ctx, "alice", nil, true)
	if err != nil {
		t.Fatalf("ListTasksByList(nil) error: %v", err)
	}
	if len(unassigned) != 1 {
		t.Fatalf("ListTasksByList(nil) = %d tasks, want 1", len(unassigned))
	}
}

func TestNoteRoundTripAndCascade(t *testing.T) {
	ctx := context.Background()
	s := NewNoteStore(testDB(t))

	list, err := planner.NewNoteList("journal", "", "#ffcc00")
	if err != nil {
		t.Fatalf("NewNoteList() error: %v", err)
	}
	if err := s.PutNoteList(ctx, "alice", list); err != nil {
		t.Fatalf("PutNoteList() error: %v", err)
	}

	note, err := planner.NewNoteItem("entry", "hello", list.ID)
	if err != nil {
		t.Fatalf("NewNoteItem() error: %v", err)
	}
	note.Pin()
	if err := s.PutNote(ctx, "alice", note); err != nil {
		t.Fatalf("PutNote() error: %v", err)
	}

	got, err := s.GetNote(ctx, "alice", note.ID)
	if err != nil {
		t.Fatalf("GetNote() error: %v", err)
	}
	if !got.IsPinned || got.Content != "hello" || got.NoteListID != list.ID {
		t.Fatalf("GetNote() = %+v, fields not persisted", got)
	}

	// Deleting the list cascades to its notes.
	if err := s.DeleteNoteList(ctx, "alice", list.ID); err != nil {
		t.Fatalf("DeleteNoteList() error: %v", err)
	}
	if _, err := s.GetNote(ctx, "alice", note.ID); !errors.Is(err, planner.ErrNotFound) {
		t.Fatalf("GetNote() after cascade error = %v, want %v", err, planner.ErrNotFound)
	}
}

func TestNotesPinnedFirst(t *testing.T) {
	ctx := context.Background()
	s := NewNoteStore(testDB(t))

	list, _ := planner.NewNoteList("inbox", "", "")
	if err := s.PutNoteList(ctx, "alice", list); err != nil {
		t.Fatalf("PutNoteList() error: %v", err)
	}

	plain, _ := planner.NewNoteItem("plain", "", list.ID)
	pinned, _ := planner.NewNoteItem("pinned", "", list.ID)
	pinned.Pin()
	for _, n := range []*planner.NoteItem{plain, pinned} {
		if err := s.PutNote(ctx, "alice", n); err != nil {
			t.Fatalf("PutNote() error: %v", err)
		}
	}

	notes, err := s.ListNotes(ctx, "alice", &list.ID)
	if err != nil {
		t.Fatalf("ListNotes() error: %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("ListNotes() = %d notes, want 2", len(notes))
	}
	if notes[0].Title != "pinned" {
		t.Errorf("first note = %q, want the pinned one", notes[0].Title)
	}

	// Missing uuids map to not found.
	if _, err := s.GetNoteList(ctx, "alice", uuid.New()); !errors.Is(err, planner.ErrNotFound) {
		t.Fatalf("GetNoteList(random) error = %v, want %v", err, planner.ErrNotFound)
	}
}
