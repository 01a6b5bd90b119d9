package mcpserver

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ownplanner/ownplanner/internal/log"
	"github.com/ownplanner/ownplanner/internal/planner"
	"github.com/ownplanner/ownplanner/internal/store"
)

// connectServer creates a planner MCP server over an in-memory database
// and an SDK client connected via in-memory transports.
func connectServer(t *testing.T, userID string) *mcp.ClientSession {
	t.Helper()

	logger := log.NewNop()
	db, err := store.Open(":memory:", logger)
	if err != nil {
		t.Fatalf("store.Open() error: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	server, err := NewServer(Config{
		Name:    "ownplanner-tools",
		Version: "test",
		UserID:  userID,
		Tasks:   planner.NewTaskService(store.NewTaskStore(db), logger),
		Notes:   planner.NewNoteService(store.NewNoteStore(db), logger),
		Logger:  logger,
	})
	if err != nil {
		t.Fatalf("NewServer() error: %v", err)
	}

	ctx := context.Background()
	serverTransport, clientTransport := mcp.NewInMemoryTransports()

	serverSession, err := server.Connect(ctx, serverTransport)
	if err != nil {
		t.Fatalf("server.Connect() error: %v", err)
	}
	t.Cleanup(func() { _ = serverSession.Close() })

	client := mcp.NewClient(&mcp.Implementation{Name: "test-client", Version: "0.0.1"}, nil)
	clientSession, err := client.Connect(ctx, clientTransport, nil)
	if err != nil {
		t.Fatalf("client.Connect() error: %v", err)
	}
	t.Cleanup(func() { _ = clientSession.Close() })

	return clientSession
}

func callTool(t *testing.T, session *mcp.ClientSession, name string, args map[string]any) *mcp.CallToolResult {
	t.Helper()
	res, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s) error: %v", name, err)
	}
	return res
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	var b strings.Builder
	for _, part := range res.Content {
		if text, ok := part.(*mcp.TextContent); ok {
			b.WriteString(text.Text)
		}
	}
	return b.String()
}

func TestListToolsRegistersAll(t *testing.T) {
	session := connectServer(t, "alice")

	result, err := session.ListTools(context.Background(), nil)
	if err != nil {
		t.Fatalf("ListTools() error: %v", err)
	}

	var names []string
	for _, tool := range result.Tools {
		names = append(names, tool.Name)
		if tool.Description == "" {
			t.Errorf("tool %q has empty description", tool.Name)
		}
	}
	sort.Strings(names)

	wantNames := []string{
		"archive_note_list",
		"archive_task_list",
		"assign_task_to_list",
		"complete_task",
		"create_note",
		"create_note_list",
		"create_task",
		"create_task_list",
		"delete_note",
		"delete_note_list",
		"delete_task",
		"delete_task_list",
		"get_current_datetime",
		"get_note",
		"get_task",
		"list_note_lists",
		"list_notes",
		"list_task_lists",
		"list_tasks",
		"list_tasks_by_focus_date",
		"list_tasks_in_list",
		"pin_note",
		"reopen_task",
		"set_task_focus_date",
		"unarchive_note_list",
		"unarchive_task_list",
		"unpin_note",
		"update_note",
		"update_task",
		"update_task_list",
	}

	if len(names) != len(wantNames) {
		t.Fatalf("ListTools() returned %d tools, want %d\ngot:  %v\nwant: %v",
			len(names), len(wantNames), names, wantNames)
	}
	for i, got := range names {
		if got != wantNames[i] {
			t.Errorf("tool[%d] = %q, want %q", i, got, wantNames[i])
		}
	}
}

func TestCreateAndCompleteTask(t *testing.T) {
	session := connectServer(t, "alice")

	res := callTool(t, session, "create_task", map[string]any{
		"title":       "buy milk",
		"description": "2 liters",
	})
	if res.IsError {
		t.Fatalf("create_task returned error: %s", resultText(t, res))
	}

	var created struct {
		ID    string `json:"id"`
		Title string `json:"title"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &created); err != nil {
		t.Fatalf("decoding create_task result: %v", err)
	}
	if created.Title != "buy milk" || created.ID == "" {
		t.Fatalf("create_task result = %+v", created)
	}

	res = callTool(t, session, "complete_task", map[string]any{"id": created.ID})
	if res.IsError {
		t.Fatalf("complete_task returned error: %s", resultText(t, res))
	}
	if !strings.Contains(resultText(t, res), `"is_completed": true`) {
		t.Errorf("complete_task result = %s, want is_completed true", resultText(t, res))
	}

	// The default listing hides the completed task.
	res = callTool(t, session, "list_tasks", nil)
	if strings.Contains(resultText(t, res), created.ID) {
		t.Error("list_tasks still shows the completed task")
	}
	res = callTool(t, session, "list_tasks", map[string]any{"include_completed": true})
	if !strings.Contains(resultText(t, res), created.ID) {
		t.Error("list_tasks with include_completed does not show the task")
	}
}

func TestFocusDateTools(t *testing.T) {
	session := connectServer(t, "alice")

	res := callTool(t, session, "create_task", map[string]any{"title": "prepare demo"})
	if res.IsError {
		t.Fatalf("create_task error: %s", resultText(t, res))
	}
	var task struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &task); err != nil {
		t.Fatalf("decoding task: %v", err)
	}

	res = callTool(t, session, "set_task_focus_date", map[string]any{
		"id":         task.ID,
		"focus_date": "2026-09-15",
	})
	if res.IsError {
		t.Fatalf("set_task_focus_date error: %s", resultText(t, res))
	}
	if !strings.Contains(resultText(t, res), "2026-09-15") {
		t.Errorf("set_task_focus_date result = %s, want focus date", resultText(t, res))
	}

	res = callTool(t, session, "list_tasks_by_focus_date", map[string]any{"focus_date": "2026-09-15"})
	if res.IsError {
		t.Fatalf("list_tasks_by_focus_date error: %s", resultText(t, res))
	}
	if !strings.Contains(resultText(t, res), task.ID) {
		t.Error("planned task missing from its focus day")
	}

	res = callTool(t, session, "list_tasks_by_focus_date", map[string]any{"focus_date": "2026-09-16"})
	if strings.Contains(resultText(t, res), task.ID) {
		t.Error("task shows up on a day it is not planned for")
	}

	// Omitting focus_date clears the plan.
	res = callTool(t, session, "set_task_focus_date", map[string]any{"id": task.ID})
	if res.IsError {
		t.Fatalf("clearing focus date error: %s", resultText(t, res))
	}
	res = callTool(t, session, "list_tasks_by_focus_date", map[string]any{"focus_date": "2026-09-15"})
	if strings.Contains(resultText(t, res), task.ID) {
		t.Error("task still planned after clearing its focus date")
	}
}

func TestTaskListArchiveTools(t *testing.T) {
	session := connectServer(t, "alice")

	res := callTool(t, session, "create_task_list", map[string]any{"title": "errands"})
	if res.IsError {
		t.Fatalf("create_task_list error: %s", resultText(t, res))
	}
	var list struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &list); err != nil {
		t.Fatalf("decoding list: %v", err)
	}

	res = callTool(t, session, "archive_task_list", map[string]any{"id": list.ID})
	if res.IsError {
		t.Fatalf("archive_task_list error: %s", resultText(t, res))
	}
	res = callTool(t, session, "list_task_lists", nil)
	if strings.Contains(resultText(t, res), list.ID) {
		t.Error("archived list still in the default listing")
	}

	res = callTool(t, session, "unarchive_task_list", map[string]any{"id": list.ID})
	if res.IsError {
		t.Fatalf("unarchive_task_list error: %s", resultText(t, res))
	}
	res = callTool(t, session, "list_task_lists", nil)
	if !strings.Contains(resultText(t, res), list.ID) {
		t.Error("unarchived list missing from the default listing")
	}
}

func TestNoteListArchiveTools(t *testing.T) {
	session := connectServer(t, "alice")

	res := callTool(t, session, "create_note_list", map[string]any{"title": "archive me"})
	if res.IsError {
		t.Fatalf("create_note_list error: %s", resultText(t, res))
	}
	var list struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &list); err != nil {
		t.Fatalf("decoding list: %v", err)
	}

	res = callTool(t, session, "archive_note_list", map[string]any{"id": list.ID})
	if res.IsError || !strings.Contains(resultText(t, res), `"is_archived": true`) {
		t.Fatalf("archive_note_list result = %s", resultText(t, res))
	}

	res = callTool(t, session, "unarchive_note_list", map[string]any{"id": list.ID})
	if res.IsError || strings.Contains(resultText(t, res), `"is_archived": true`) {
		t.Fatalf("unarchive_note_list result = %s", resultText(t, res))
	}
}

func TestToolErrorsAreResults(t *testing.T) {
	session := connectServer(t, "alice")

	tests := []struct {
		name string
		tool string
		args map[string]any
		want string
	}{
		{
			name: "missing task",
			tool: "get_task",
			args: map[string]any{"id": "3f0e8f9a-9b53-4b0e-9a34-111111111111"},
			want: "not found",
		},
		{
			name: "malformed id",
			tool: "delete_task",
			args: map[string]any{"id": "not-a-uuid"},
			want: "invalid id",
		},
		{
			name: "empty title",
			tool: "create_task",
			args: map[string]any{"title": "   "},
			want: "title",
		},
		{
			name: "bad due date",
			tool: "create_task",
			args: map[string]any{"title": "x", "due_at": "tomorrowish"},
			want: "RFC 3339",
		},
		{
			name: "note in missing list",
			tool: "create_note",
			args: map[string]any{"title": "n", "note_list_id": "3f0e8f9a-9b53-4b0e-9a34-222222222222"},
			want: "not found",
		},
		{
			name: "bad focus date",
			tool: "list_tasks_by_focus_date",
			args: map[string]any{"focus_date": "next tuesday"},
			want: "YYYY-MM-DD",
		},
		{
			name: "unknown timezone",
			tool: "get_current_datetime",
			args: map[string]any{"timezone": "Mars/Olympus"},
			want: "unknown timezone",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := callTool(t, session, tt.tool, tt.args)
			if !res.IsError {
				t.Fatalf("%s did not return an error result", tt.tool)
			}
			if got := resultText(t, res); !strings.Contains(got, tt.want) {
				t.Errorf("%s error = %q, want it to mention %q", tt.tool, got, tt.want)
			}
		})
	}
}

func TestNoteLifecycle(t *testing.T) {
	session := connectServer(t, "alice")

	res := callTool(t, session, "create_note_list", map[string]any{"title": "journal"})
	if res.IsError {
		t.Fatalf("create_note_list error: %s", resultText(t, res))
	}
	var list struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &list); err != nil {
		t.Fatalf("decoding list: %v", err)
	}

	res = callTool(t, session, "create_note", map[string]any{
		"title":        "entry one",
		"content":      "hello",
		"note_list_id": list.ID,
	})
	if res.IsError {
		t.Fatalf("create_note error: %s", resultText(t, res))
	}
	var note struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &note); err != nil {
		t.Fatalf("decoding note: %v", err)
	}

	res = callTool(t, session, "pin_note", map[string]any{"id": note.ID})
	if res.IsError || !strings.Contains(resultText(t, res), `"is_pinned": true`) {
		t.Fatalf("pin_note result = %s", resultText(t, res))
	}

	res = callTool(t, session, "delete_note_list", map[string]any{"id": list.ID})
	if res.IsError {
		t.Fatalf("delete_note_list error: %s", resultText(t, res))
	}

	res = callTool(t, session, "list_notes", nil)
	if strings.Contains(resultText(t, res), note.ID) {
		t.Error("note survived its list's deletion")
	}
}

func TestGetCurrentDatetime(t *testing.T) {
	session := connectServer(t, "alice")

	res := callTool(t, session, "get_current_datetime", nil)
	if res.IsError {
		t.Fatalf("get_current_datetime error: %s", resultText(t, res))
	}

	var out struct {
		Datetime string `json:"datetime"`
		Timezone string `json:"timezone"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatalf("decoding result: %v", err)
	}
	if out.Timezone != "UTC" || out.Datetime == "" {
		t.Errorf("result = %+v, want UTC datetime", out)
	}
}
