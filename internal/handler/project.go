package handler

import (
	"log/slog"
	"net/http"

	"taskboard/internal/apperr"
	"taskboard/internal/auth"
	"taskboard/internal/model"
	"taskboard/internal/store"
)

type ProjectHandler struct {
	projects *store.ProjectStore
	dev      bool
	logger   *slog.Logger
}

func NewProjectHandler(ps *store.ProjectStore, dev bool, logger *slog.Logger) *ProjectHandler {
	return &ProjectHandler{projects: ps, dev: dev, logger: logger}
}

// Statuses lists the valid project status values.
func (h *ProjectHandler) Statuses(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"statuses": model.ProjectStatuses})
}

// List returns the caller's own projects; administrators see everything.
func (h *ProjectHandler) List(w http.ResponseWriter, r *http.Request) {
	var (
		projects []model.Project
		err      error
	)
	if auth.IsAdministrator(r.Context()) {
		projects, err = h.projects.ListAll()
	} else {
		projects, err = h.projects.ListByOwner(auth.UserID(r.Context()))
	}
	if err != nil {
		writeError(w, h.logger, h.dev, err)
		return
	}
	if projects == nil {
		projects = []model.Project{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"projects": projects})
}

// get loads the project with the caller's visibility applied: non-admins see
// only their own, and an invisible project is indistinguishable from an
// absent one.
func (h *ProjectHandler) get(r *http.Request) (*model.Project, error) {
	id, err := parseIDParam(r)
	if err != nil {
		return nil, apperr.Validation("Invalid project id.")
	}
	project, err := h.projects.GetByID(id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, apperr.NotFound("Project not found.")
	}
	if !auth.IsAdministrator(r.Context()) && project.UserOwner != auth.UserID(r.Context()) {
		return nil, apperr.NotFound("Project not found.")
	}
	return project, nil
}

func (h *ProjectHandler) Get(w http.ResponseWriter, r *http.Request) {
	project, err := h.get(r)
	if err != nil {
		writeError(w, h.logger, h.dev, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"project": project})
}

type projectRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Status      *string `json:"status"`
}

// Create opens a new project. Status is forced to proposal and the owner to
// the authenticated caller; any other supplied key is ignored.
func (h *ProjectHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, h.dev, err)
		return
	}

	if req.Title == nil || *req.Title == "" || req.Description == nil || *req.Description == "" {
		writeError(w, h.logger, h.dev, apperr.Validation("All fields are required."))
		return
	}
	if len(*req.Title) > 40 || len(*req.Description) > 100 {
		writeError(w, h.logger, h.dev, apperr.Validation("Title or description too long."))
		return
	}

	project, err := h.projects.Create(*req.Title, *req.Description, auth.UserID(r.Context()))
	if err != nil {
		writeError(w, h.logger, h.dev, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"project": project})
}

// Update edits title/description and moves status along the transition table.
func (h *ProjectHandler) Update(w http.ResponseWriter, r *http.Request) {
	current, err := h.get(r)
	if err != nil {
		writeError(w, h.logger, h.dev, err)
		return
	}

	var req projectRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, h.logger, h.dev, err)
		return
	}

	title := current.Title
	if req.Title != nil {
		title = *req.Title
	}
	description := current.Description
	if req.Description != nil {
		description = *req.Description
	}
	status := current.Status
	if req.Status != nil {
		status = model.ProjectStatus(*req.Status)
		if !status.Valid() {
			writeError(w, h.logger, h.dev, apperr.Validation("Invalid status."))
			return
		}
	}
	if title == "" || description == "" {
		writeError(w, h.logger, h.dev, apperr.Validation("All fields are required."))
		return
	}
	if len(title) > 40 || len(description) > 100 {
		writeError(w, h.logger, h.dev, apperr.Validation("Title or description too long."))
		return
	}

	project, err := h.projects.Update(current.ID, title, description, status)
	if err != nil {
		writeError(w, h.logger, h.dev, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"project": project})
}

// Delete soft-deletes a project with no active tasks.
func (h *ProjectHandler) Delete(w http.ResponseWriter, r *http.Request) {
	project, err := h.get(r)
	if err != nil {
		writeError(w, h.logger, h.dev, err)
		return
	}
	if err := h.projects.Delete(project.ID); err != nil {
		writeError(w, h.logger, h.dev, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
