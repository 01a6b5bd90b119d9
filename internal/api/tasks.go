package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/ownplanner/ownplanner/internal/planner"
)

// taskHandler exposes task and task list CRUD.
type taskHandler struct {
	tasks *planner.TaskService
}

func newTaskHandler(tasks *planner.TaskService) *taskHandler {
	return &taskHandler{tasks: tasks}
}

func (h *taskHandler) register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/v1/tasks", h.handleCreate)
	mux.HandleFunc("GET /api/v1/tasks", h.handleList)
	mux.HandleFunc("GET /api/v1/tasks/{id}", h.handleGet)
	mux.HandleFunc("PATCH /api/v1/tasks/{id}", h.handleUpdate)
	mux.HandleFunc("DELETE /api/v1/tasks/{id}", h.handleDelete)
	mux.HandleFunc("POST /api/v1/tasks/{id}/complete", h.handleComplete)
	mux.HandleFunc("POST /api/v1/tasks/{id}/reopen", h.handleReopen)
	mux.HandleFunc("PUT /api/v1/tasks/{id}/list", h.handleAssign)
	mux.HandleFunc("PUT /api/v1/tasks/{id}/focus-date", h.handleSetFocusDate)

	mux.HandleFunc("POST /api/v1/task-lists", h.handleCreateList)
	mux.HandleFunc("GET /api/v1/task-lists", h.handleListLists)
	mux.HandleFunc("GET /api/v1/task-lists/{id}/tasks", h.handleListTasks)
	mux.HandleFunc("PATCH /api/v1/task-lists/{id}", h.handleUpdateList)
	mux.HandleFunc("POST /api/v1/task-lists/{id}/archive", h.handleArchiveList)
	mux.HandleFunc("POST /api/v1/task-lists/{id}/unarchive", h.handleUnarchiveList)
	mux.HandleFunc("DELETE /api/v1/task-lists/{id}", h.handleDeleteList)
}

// pathID parses the {id} path segment, writing a 400 on failure.
func pathID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(r.PathValue("id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid_id", "malformed id in path")
		return uuid.Nil, false
	}
	return id, true
}

// CreateTaskRequest is the body of POST /api/v1/tasks.
type CreateTaskRequest struct {
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	DueAt       *time.Time `json:"due_at,omitempty"`
}

func (h *taskHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}
	task, err := h.tasks.CreateTask(r.Context(), requestUser(r), req.Title, req.Description, req.DueAt)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, task)
}

func (h *taskHandler) handleList(w http.ResponseWriter, r *http.Request) {
	includeCompleted := r.URL.Query().Get("include_completed") == "true"

	var (
		tasks []*planner.TaskItem
		err   error
	)
	if raw := r.URL.Query().Get("focus_date"); raw != "" {
		day, parseErr := time.Parse("2006-01-02", raw)
		if parseErr != nil {
			writeError(w, http.StatusBadRequest, "invalid_request", "focus_date must be YYYY-MM-DD")
			return
		}
		tasks, err = h.tasks.ListTasksByFocusDate(r.Context(), requestUser(r), day, includeCompleted)
	} else {
		tasks, err = h.tasks.ListTasks(r.Context(), requestUser(r), includeCompleted)
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if tasks == nil {
		tasks = []*planner.TaskItem{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

func (h *taskHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	task, err := h.tasks.GetTask(r.Context(), requestUser(r), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// UpdateTaskRequest is the body of PATCH /api/v1/tasks/{id}. Absent
// fields are left unchanged.
type UpdateTaskRequest struct {
	Title       *string    `json:"title,omitempty"`
	Description *string    `json:"description,omitempty"`
	DueAt       *time.Time `json:"due_at,omitempty"`
	Important   *bool      `json:"important,omitempty"`
}

func (h *taskHandler) handleUpdate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req UpdateTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}
	task, err := h.tasks.UpdateTask(r.Context(), requestUser(r), id, req.Title, req.Description, req.DueAt, req.Important)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *taskHandler) handleDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.tasks.DeleteTask(r.Context(), requestUser(r), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *taskHandler) handleComplete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	task, err := h.tasks.CompleteTask(r.Context(), requestUser(r), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

func (h *taskHandler) handleReopen(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	task, err := h.tasks.ReopenTask(r.Context(), requestUser(r), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// AssignTaskRequest is the body of PUT /api/v1/tasks/{id}/list. A null
// list_id removes the task from its list.
type AssignTaskRequest struct {
	ListID *uuid.UUID `json:"list_id"`
}

func (h *taskHandler) handleAssign(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req AssignTaskRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}
	task, err := h.tasks.AssignTaskToList(r.Context(), requestUser(r), id, req.ListID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// SetFocusDateRequest is the body of PUT /api/v1/tasks/{id}/focus-date.
// A null focus_date clears the plan.
type SetFocusDateRequest struct {
	FocusDate *time.Time `json:"focus_date"`
}

func (h *taskHandler) handleSetFocusDate(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req SetFocusDateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}
	task, err := h.tasks.SetTaskFocusDate(r.Context(), requestUser(r), id, req.FocusDate)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, task)
}

// CreateListRequest is shared by the task list and note list create
// endpoints.
type CreateListRequest struct {
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Color       string `json:"color,omitempty"`
}

func (h *taskHandler) handleCreateList(w http.ResponseWriter, r *http.Request) {
	var req CreateListRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}
	list, err := h.tasks.CreateTaskList(r.Context(), requestUser(r), req.Title, req.Description, req.Color)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, list)
}

func (h *taskHandler) handleListLists(w http.ResponseWriter, r *http.Request) {
	includeArchived := r.URL.Query().Get("include_archived") == "true"
	lists, err := h.tasks.ListTaskLists(r.Context(), requestUser(r), includeArchived)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if lists == nil {
		lists = []*planner.TaskList{}
	}
	writeJSON(w, http.StatusOK, lists)
}

func (h *taskHandler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	includeCompleted := r.URL.Query().Get("include_completed") == "true"
	tasks, err := h.tasks.ListTasksByList(r.Context(), requestUser(r), &id, includeCompleted)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if tasks == nil {
		tasks = []*planner.TaskItem{}
	}
	writeJSON(w, http.StatusOK, tasks)
}

// UpdateListRequest is shared by the task list and note list update
// endpoints.
type UpdateListRequest struct {
	Title       *string `json:"title,omitempty"`
	Description *string `json:"description,omitempty"`
	Color       *string `json:"color,omitempty"`
}

func (h *taskHandler) handleUpdateList(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req UpdateListRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "malformed request body")
		return
	}
	list, err := h.tasks.UpdateTaskList(r.Context(), requestUser(r), id, req.Title, req.Description, req.Color)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *taskHandler) handleArchiveList(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	list, err := h.tasks.ArchiveTaskList(r.Context(), requestUser(r), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *taskHandler) handleUnarchiveList(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	list, err := h.tasks.UnarchiveTaskList(r.Context(), requestUser(r), id)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

func (h *taskHandler) handleDeleteList(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.tasks.DeleteTaskList(r.Context(), requestUser(r), id); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
