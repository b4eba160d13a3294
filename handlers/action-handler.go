package handlers

import (
	"errors"
	"net/http"

	"project-management-api/policy"
	"project-management-api/response"
	"project-management-api/services"
)

type ActionHandler struct {
	ActionsService *services.ActionService
	Projects       *services.ProjectService
	Policy         policy.Policy
}

func NewActionHandler(actions *services.ActionService, projects *services.ProjectService, pl policy.Policy) *ActionHandler {
	return &ActionHandler{ActionsService: actions, Projects: projects, Policy: pl}
}

// GetAllActions returns the full audit feed. Admin only.
func (h *ActionHandler) GetAllActions(w http.ResponseWriter, r *http.Request) {
	p, _, ok := principal(w, r)
	if !ok {
		return
	}

	if err := h.Policy.CanReadAllActions(p); err != nil {
		response.Forbidden(w, "Not authorized. Admin access required.")
		return
	}

	actions, err := h.ActionsService.All(r.Context())
	if err != nil {
		serverError(w, "Failed to list actions", err)
		return
	}
	response.JSON(w, http.StatusOK, actions)
}

// GetProjectActions returns the actions on a project and on all its tasks,
// newest first.
func (h *ActionHandler) GetProjectActions(w http.ResponseWriter, r *http.Request) {
	p, _, ok := principal(w, r)
	if !ok {
		return
	}

	projectID, err := pathID(r, "projectId")
	if err != nil {
		response.BadRequest(w, "Invalid project ID")
		return
	}

	project, err := h.Projects.GetByID(r.Context(), projectID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.NotFound(w, "Project not found")
			return
		}
		serverError(w, "Failed to fetch project", err)
		return
	}

	if err := h.Policy.Authorize(p, policy.OpRead, projectFacts(policy.KindProject, project)); err != nil {
		response.Forbidden(w, "Not authorized to view actions for this project")
		return
	}

	actions, err := h.ActionsService.ByProject(r.Context(), projectID)
	if err != nil {
		serverError(w, "Failed to list project actions", err)
		return
	}
	response.JSON(w, http.StatusOK, actions)
}

// GetMyActions returns the caller's own audit trail.
func (h *ActionHandler) GetMyActions(w http.ResponseWriter, r *http.Request) {
	p, _, ok := principal(w, r)
	if !ok {
		return
	}

	actions, err := h.ActionsService.ByUser(r.Context(), p.ID)
	if err != nil {
		serverError(w, "Failed to list actions", err)
		return
	}
	response.JSON(w, http.StatusOK, actions)
}

// GetUserActions returns one actor's audit trail: self, or admin for
// anyone.
func (h *ActionHandler) GetUserActions(w http.ResponseWriter, r *http.Request) {
	p, _, ok := principal(w, r)
	if !ok {
		return
	}

	userID, err := pathID(r, "userId")
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	if err := h.Policy.CanReadUserActions(p, userID); err != nil {
		response.Forbidden(w, "Not authorized to view actions for this user")
		return
	}

	actions, err := h.ActionsService.ByUser(r.Context(), userID)
	if err != nil {
		serverError(w, "Failed to list actions", err)
		return
	}
	response.JSON(w, http.StatusOK, actions)
}
