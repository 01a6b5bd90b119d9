package mcpserver

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// Task tool inputs. Input schemas are inferred from these structs; the
// jsonschema tags become the parameter descriptions shown to the model.

type createTaskInput struct {
	Title       string `json:"title" jsonschema:"Title of the task (required)"`
	Description string `json:"description,omitempty" jsonschema:"Optional longer description"`
	DueAt       string `json:"due_at,omitempty" jsonschema:"Optional due date/time in RFC 3339 format"`
}

type taskIDInput struct {
	ID string `json:"id" jsonschema:"The task's id"`
}

type listTasksInput struct {
	IncludeCompleted bool `json:"include_completed,omitempty" jsonschema:"Include completed tasks (default false)"`
}

type listTasksInListInput struct {
	ListID           string `json:"list_id,omitempty" jsonschema:"The task list id; omit to list tasks not assigned to any list"`
	IncludeCompleted bool   `json:"include_completed,omitempty" jsonschema:"Include completed tasks (default false)"`
}

type updateTaskInput struct {
	ID          string  `json:"id" jsonschema:"The task's id"`
	Title       *string `json:"title,omitempty" jsonschema:"New title"`
	Description *string `json:"description,omitempty" jsonschema:"New description"`
	DueAt       *string `json:"due_at,omitempty" jsonschema:"New due date/time in RFC 3339 format"`
	Important   *bool   `json:"important,omitempty" jsonschema:"Mark or unmark the task as important"`
}

type setFocusDateInput struct {
	ID        string `json:"id" jsonschema:"The task's id"`
	FocusDate string `json:"focus_date,omitempty" jsonschema:"The day to plan the task for (My Day), YYYY-MM-DD; omit to clear the plan"`
}

type listByFocusDateInput struct {
	FocusDate        string `json:"focus_date" jsonschema:"The day to list planned tasks for (My Day), YYYY-MM-DD"`
	IncludeCompleted bool   `json:"include_completed,omitempty" jsonschema:"Include completed tasks (default false)"`
}

type assignTaskInput struct {
	ID     string `json:"id" jsonschema:"The task's id"`
	ListID string `json:"list_id,omitempty" jsonschema:"The target task list id; omit to remove the task from its list"`
}

type createTaskListInput struct {
	Title       string `json:"title" jsonschema:"Title of the task list (required)"`
	Description string `json:"description,omitempty" jsonschema:"Optional description"`
	Color       string `json:"color,omitempty" jsonschema:"Optional display color, e.g. #ff8800"`
}

type listTaskListsInput struct {
	IncludeArchived bool `json:"include_archived,omitempty" jsonschema:"Include archived lists (default false)"`
}

type updateTaskListInput struct {
	ID          string  `json:"id" jsonschema:"The task list's id"`
	Title       *string `json:"title,omitempty" jsonschema:"New title"`
	Description *string `json:"description,omitempty" jsonschema:"New description"`
	Color       *string `json:"color,omitempty" jsonschema:"New display color"`
}

func (s *Server) registerTaskTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "create_task",
		Description: "Create a new task for the user, optionally with a description and due date.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in createTaskInput) (*mcp.CallToolResult, any, error) {
		due, err := parseDue(in.DueAt)
		if err != nil {
			return errorResult(err)
		}
		task, err := s.tasks.CreateTask(ctx, s.userID, in.Title, in.Description, due)
		return serviceResult(task, err)
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_task",
		Description: "Fetch a single task by id.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in taskIDInput) (*mcp.CallToolResult, any, error) {
		id, err := parseID(in.ID)
		if err != nil {
			return errorResult(err)
		}
		task, err := s.tasks.GetTask(ctx, s.userID, id)
		return serviceResult(task, err)
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_tasks",
		Description: "List the user's tasks. Completed tasks are hidden unless include_completed is set.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in listTasksInput) (*mcp.CallToolResult, any, error) {
		tasks, err := s.tasks.ListTasks(ctx, s.userID, in.IncludeCompleted)
		return serviceResult(tasks, err)
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_tasks_in_list",
		Description: "List tasks in a specific task list, or tasks without a list when list_id is omitted.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in listTasksInListInput) (*mcp.CallToolResult, any, error) {
		var listID *uuid.UUID
		if in.ListID != "" {
			id, err := parseID(in.ListID)
			if err != nil {
				return errorResult(err)
			}
			listID = &id
		}
		tasks, err := s.tasks.ListTasksByList(ctx, s.userID, listID, in.IncludeCompleted)
		return serviceResult(tasks, err)
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "update_task",
		Description: "Update a task's title, description, due date, or importance. Only provided fields change.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in updateTaskInput) (*mcp.CallToolResult, any, error) {
		id, err := parseID(in.ID)
		if err != nil {
			return errorResult(err)
		}
		var due *time.Time
		if in.DueAt != nil {
			if *in.DueAt == "" {
				return errorResult(fmt.Errorf("due_at must be an RFC 3339 timestamp"))
			}
			due, err = parseDue(*in.DueAt)
			if err != nil {
				return errorResult(err)
			}
		}
		task, err := s.tasks.UpdateTask(ctx, s.userID, id, in.Title, in.Description, due, in.Important)
		return serviceResult(task, err)
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "complete_task",
		Description: "Mark a task as completed.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in taskIDInput) (*mcp.CallToolResult, any, error) {
		id, err := parseID(in.ID)
		if err != nil {
			return errorResult(err)
		}
		task, err := s.tasks.CompleteTask(ctx, s.userID, id)
		return serviceResult(task, err)
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "reopen_task",
		Description: "Reopen a completed task.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in taskIDInput) (*mcp.CallToolResult, any, error) {
		id, err := parseID(in.ID)
		if err != nil {
			return errorResult(err)
		}
		task, err := s.tasks.ReopenTask(ctx, s.userID, id)
		return serviceResult(task, err)
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "set_task_focus_date",
		Description: "Plan a task for a specific day (My Day), or clear the plan when focus_date is omitted.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in setFocusDateInput) (*mcp.CallToolResult, any, error) {
		id, err := parseID(in.ID)
		if err != nil {
			return errorResult(err)
		}
		var focus *time.Time
		if in.FocusDate != "" {
			day, err := parseFocusDate(in.FocusDate)
			if err != nil {
				return errorResult(err)
			}
			focus = &day
		}
		task, err := s.tasks.SetTaskFocusDate(ctx, s.userID, id, focus)
		return serviceResult(task, err)
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_tasks_by_focus_date",
		Description: "List the tasks planned for a specific day (My Day).",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in listByFocusDateInput) (*mcp.CallToolResult, any, error) {
		day, err := parseFocusDate(in.FocusDate)
		if err != nil {
			return errorResult(err)
		}
		tasks, err := s.tasks.ListTasksByFocusDate(ctx, s.userID, day, in.IncludeCompleted)
		return serviceResult(tasks, err)
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "assign_task_to_list",
		Description: "Move a task into a task list, or remove it from its list when list_id is omitted.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in assignTaskInput) (*mcp.CallToolResult, any, error) {
		id, err := parseID(in.ID)
		if err != nil {
			return errorResult(err)
		}
		var listID *uuid.UUID
		if in.ListID != "" {
			lid, err := parseID(in.ListID)
			if err != nil {
				return errorResult(err)
			}
			listID = &lid
		}
		task, err := s.tasks.AssignTaskToList(ctx, s.userID, id, listID)
		return serviceResult(task, err)
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_task",
		Description: "Delete a task permanently.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in taskIDInput) (*mcp.CallToolResult, any, error) {
		id, err := parseID(in.ID)
		if err != nil {
			return errorResult(err)
		}
		if err := s.tasks.DeleteTask(ctx, s.userID, id); err != nil {
			return serviceResult(nil, err)
		}
		return textResult("task deleted")
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "create_task_list",
		Description: "Create a new task list.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in createTaskListInput) (*mcp.CallToolResult, any, error) {
		list, err := s.tasks.CreateTaskList(ctx, s.userID, in.Title, in.Description, in.Color)
		return serviceResult(list, err)
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_task_lists",
		Description: "List the user's task lists. Archived lists are hidden unless include_archived is set.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in listTaskListsInput) (*mcp.CallToolResult, any, error) {
		lists, err := s.tasks.ListTaskLists(ctx, s.userID, in.IncludeArchived)
		return serviceResult(lists, err)
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "update_task_list",
		Description: "Update a task list's title, description, or color. Only provided fields change.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in updateTaskListInput) (*mcp.CallToolResult, any, error) {
		id, err := parseID(in.ID)
		if err != nil {
			return errorResult(err)
		}
		list, err := s.tasks.UpdateTaskList(ctx, s.userID, id, in.Title, in.Description, in.Color)
		return serviceResult(list, err)
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "archive_task_list",
		Description: "Archive a task list so it no longer appears in default listings.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in taskIDInput) (*mcp.CallToolResult, any, error) {
		id, err := parseID(in.ID)
		if err != nil {
			return errorResult(err)
		}
		list, err := s.tasks.ArchiveTaskList(ctx, s.userID, id)
		return serviceResult(list, err)
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "unarchive_task_list",
		Description: "Restore an archived task list to default listings.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in taskIDInput) (*mcp.CallToolResult, any, error) {
		id, err := parseID(in.ID)
		if err != nil {
			return errorResult(err)
		}
		list, err := s.tasks.UnarchiveTaskList(ctx, s.userID, id)
		return serviceResult(list, err)
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_task_list",
		Description: "Delete a task list. Its tasks are kept but become unassigned.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in taskIDInput) (*mcp.CallToolResult, any, error) {
		id, err := parseID(in.ID)
		if err != nil {
			return errorResult(err)
		}
		if err := s.tasks.DeleteTaskList(ctx, s.userID, id); err != nil {
			return serviceResult(nil, err)
		}
		return textResult("task list deleted")
	})
}

// parseDue parses an optional RFC 3339 due timestamp.
func parseDue(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil, fmt.Errorf("invalid due date %q, expected RFC 3339", raw)
	}
	return &t, nil
}

// parseFocusDate parses a focus day. A plain date or a full timestamp is
// accepted; either way only the calendar day is kept.
func parseFocusDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	return time.Time{}, fmt.Errorf("invalid focus date %q, expected YYYY-MM-DD", raw)
}
