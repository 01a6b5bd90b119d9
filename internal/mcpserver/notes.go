package mcpserver

import (
	"context"

	"github.com/google/uuid"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

type createNoteInput struct {
	Title      string `json:"title" jsonschema:"Title of the note (required)"`
	Content    string `json:"content,omitempty" jsonschema:"Body of the note"`
	NoteListID string `json:"note_list_id" jsonschema:"The note list the note belongs to (required)"`
}

type noteIDInput struct {
	ID string `json:"id" jsonschema:"The note's id"`
}

type listNotesInput struct {
	ListID string `json:"list_id,omitempty" jsonschema:"Restrict to one note list; omit for all notes"`
}

type updateNoteInput struct {
	ID      string  `json:"id" jsonschema:"The note's id"`
	Title   *string `json:"title,omitempty" jsonschema:"New title"`
	Content *string `json:"content,omitempty" jsonschema:"New body"`
}

type createNoteListInput struct {
	Title       string `json:"title" jsonschema:"Title of the note list (required)"`
	Description string `json:"description,omitempty" jsonschema:"Optional description"`
	Color       string `json:"color,omitempty" jsonschema:"Optional display color"`
}

type listNoteListsInput struct {
	IncludeArchived bool `json:"include_archived,omitempty" jsonschema:"Include archived lists (default false)"`
}

func (s *Server) registerNoteTools() {
	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "create_note",
		Description: "Create a new note inside an existing note list.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in createNoteInput) (*mcp.CallToolResult, any, error) {
		listID, err := parseID(in.NoteListID)
		if err != nil {
			return errorResult(err)
		}
		note, err := s.notes.CreateNote(ctx, s.userID, in.Title, in.Content, listID)
		return serviceResult(note, err)
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "get_note",
		Description: "Fetch a single note by id.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in noteIDInput) (*mcp.CallToolResult, any, error) {
		id, err := parseID(in.ID)
		if err != nil {
			return errorResult(err)
		}
		note, err := s.notes.GetNote(ctx, s.userID, id)
		return serviceResult(note, err)
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_notes",
		Description: "List the user's notes, pinned notes first. Optionally restricted to one note list.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in listNotesInput) (*mcp.CallToolResult, any, error) {
		var listID *uuid.UUID
		if in.ListID != "" {
			id, err := parseID(in.ListID)
			if err != nil {
				return errorResult(err)
			}
			listID = &id
		}
		notes, err := s.notes.ListNotes(ctx, s.userID, listID)
		return serviceResult(notes, err)
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "update_note",
		Description: "Update a note's title or content. Only provided fields change.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in updateNoteInput) (*mcp.CallToolResult, any, error) {
		id, err := parseID(in.ID)
		if err != nil {
			return errorResult(err)
		}
		note, err := s.notes.UpdateNote(ctx, s.userID, id, in.Title, in.Content)
		return serviceResult(note, err)
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "pin_note",
		Description: "Pin a note so it sorts to the top of listings.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in noteIDInput) (*mcp.CallToolResult, any, error) {
		id, err := parseID(in.ID)
		if err != nil {
			return errorResult(err)
		}
		note, err := s.notes.PinNote(ctx, s.userID, id)
		return serviceResult(note, err)
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "unpin_note",
		Description: "Unpin a note.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in noteIDInput) (*mcp.CallToolResult, any, error) {
		id, err := parseID(in.ID)
		if err != nil {
			return errorResult(err)
		}
		note, err := s.notes.UnpinNote(ctx, s.userID, id)
		return serviceResult(note, err)
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_note",
		Description: "Delete a note permanently.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in noteIDInput) (*mcp.CallToolResult, any, error) {
		id, err := parseID(in.ID)
		if err != nil {
			return errorResult(err)
		}
		if err := s.notes.DeleteNote(ctx, s.userID, id); err != nil {
			return serviceResult(nil, err)
		}
		return textResult("note deleted")
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "create_note_list",
		Description: "Create a new note list.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in createNoteListInput) (*mcp.CallToolResult, any, error) {
		list, err := s.notes.CreateNoteList(ctx, s.userID, in.Title, in.Description, in.Color)
		return serviceResult(list, err)
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "list_note_lists",
		Description: "List the user's note lists. Archived lists are hidden unless include_archived is set.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in listNoteListsInput) (*mcp.CallToolResult, any, error) {
		lists, err := s.notes.ListNoteLists(ctx, s.userID, in.IncludeArchived)
		return serviceResult(lists, err)
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "archive_note_list",
		Description: "Archive a note list so it no longer appears in default listings.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in noteIDInput) (*mcp.CallToolResult, any, error) {
		id, err := parseID(in.ID)
		if err != nil {
			return errorResult(err)
		}
		list, err := s.notes.ArchiveNoteList(ctx, s.userID, id)
		return serviceResult(list, err)
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "unarchive_note_list",
		Description: "Restore an archived note list to default listings.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in noteIDInput) (*mcp.CallToolResult, any, error) {
		id, err := parseID(in.ID)
		if err != nil {
			return errorResult(err)
		}
		list, err := s.notes.UnarchiveNoteList(ctx, s.userID, id)
		return serviceResult(list, err)
	})

	mcp.AddTool(s.mcpServer, &mcp.Tool{
		Name:        "delete_note_list",
		Description: "Delete a note list together with all notes in it.",
	}, func(ctx context.Context, req *mcp.CallToolRequest, in noteIDInput) (*mcp.CallToolResult, any, error) {
		id, err := parseID(in.ID)
		if err != nil {
			return errorResult(err)
		}
		if err := s.notes.DeleteNoteList(ctx, s.userID, id); err != nil {
			return serviceResult(nil, err)
		}
		return textResult("note list deleted")
	})
}
