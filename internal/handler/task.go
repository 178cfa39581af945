package handler

import (
	"log/slog"
	"net/http"

	"taskboard/internal/apperr"
	"taskboard/internal/auth"
	"taskboard/internal/model"
	"taskboard/internal/store"
)

type TaskHandler struct {
	tasks  *store.TaskStore
	dev    bool
	logger *slog.Logger
}

func NewTaskHandler(ts *store.TaskStore, dev bool, logger *slog.Logger) *TaskHandler {
	return &TaskHandler{tasks: ts, dev: dev, logger: logger}
}

// Statuses lists the valid task status values.
func (h *TaskHandler) Statuses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"statuses": model.TaskStatuses})
}

// List returns tasks the caller authored or executes; administrators see
// everything.
func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		tasks []model.Task
		err   error
	)
	if auth.IsAdministrator(r.Context()) {
		tasks, err = h.tasks.ListAll()
	} else {
		tasks, err = h.tasks.ListForUser(auth.UserID(r.Context()))
	}
	if err != nil {
		writeError(w, h.logger, h.dev, err)
		return
	}
	if tasks == nil {
		tasks = []model.Task{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"tasks": tasks})
}

// get loads the task with the caller's visibility applied: non-admins see
// only tasks they authored or execute.
func (h *TaskHandler) get(r *http.Request) (*model.Task, error) {
	id, err := parseIDParam(r)
	if err != nil {
		return nil, apperr.Validation("Invalid task id.")
	}
	task, err := h.tasks.GetByID(id)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, apperr.NotFound("Task not found.")
	}
	if !auth.IsAdministrator(r.Context()) {
		uid := auth.UserID(r.Context())
		if task.UserAuthor != uid && (task.UserExecutor == nil || *task.UserExecutor != uid) {
			return nil, apperr.NotFound("Task not found.")
		}
	}
	return task, nil
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	task, err := h.get(r)
	if err != nil {
		writeError(w, h.logger, h.dev, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"task": task})
}

type taskRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Progress    *float64 `json:"progress"`
	ProjectID   *int64   `json:"projectId"`
	Status      *string  `json:"status"`
}

// Create opens a task under a project that accepts them. Status starts open,
// progress at zero, author is the caller; the executor is assigned later.
func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req taskRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, h.dev, err)
		return
	}

	if req.Title == nil || *req.Title == "" || req.Description == nil || *req.Description == "" || req.ProjectID == nil {
		writeError(w, h.logger, h.dev, apperr.Validation("All fields are required."))
		return
	}
	if len(*req.Title) > 40 {
		writeError(w, h.logger, h.dev, apperr.Validation("Title too long."))
		return
	}

	task, err := h.tasks.Create(*req.Title, *req.Description, *req.ProjectID, auth.UserID(r.Context()))
	if err != nil {
		writeError(w, h.logger, h.dev, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"task": task})
}

// Update edits fields (open tasks only), moves status along the transition
// table, and transfers the task to another project still being scoped.
func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	current, err := h.get(r)
	if err != nil {
		writeError(w, h.logger, h.dev, err)
		return
	}

	var req taskRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, h.dev, err)
		return
	}

	if req.Title != nil && (*req.Title == "" || len(*req.Title) > 40) {
		writeError(w, h.logger, h.dev, apperr.Validation("Invalid title."))
		return
	}
	if req.Description != nil && *req.Description == "" {
		writeError(w, h.logger, h.dev, apperr.Validation("Invalid description."))
		return
	}
	if req.Progress != nil && (*req.Progress < 0 || *req.Progress > 100) {
		writeError(w, h.logger, h.dev, apperr.Validation("Progress must be between 0 and 100."))
		return
	}

	upd := store.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Progress:    req.Progress,
		ProjectID:   req.ProjectID,
	}
	if req.Status != nil {
		status := model.TaskStatus(*req.Status)
		if !status.Valid() {
			writeError(w, h.logger, h.dev, apperr.Validation("Invalid status."))
			return
		}
		upd.Status = &status
	}

	task, err := h.tasks.Update(current.ID, upd)
	if err != nil {
		writeError(w, h.logger, h.dev, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"task": task})
}

type assignRequest struct {
	UserID *int64 `json:"userId"`
}

// AssignExecutor sets the task's executor while the task is still open.
func (h *TaskHandler) AssignExecutor(w http.ResponseWriter, r *http.Request) {
	current, err := h.get(r)
	if err != nil {
		writeError(w, h.logger, h.dev, err)
		return
	}

	var req assignRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, h.dev, err)
		return
	}
	if req.UserID == nil {
		writeError(w, h.logger, h.dev, apperr.Validation("All fields are required."))
		return
	}

	task, err := h.tasks.AssignExecutor(current.ID, *req.UserID)
	if err != nil {
		writeError(w, h.logger, h.dev, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"task": task})
}

// Delete soft-deletes a task.
func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	task, err := h.get(r)
	if err != nil {
		writeError(w, h.logger, h.dev, err)
		return
	}
	if err := h.tasks.Delete(task.ID); err != nil {
		writeError(w, h.logger, h.dev, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
