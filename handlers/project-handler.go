package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"project-management-api/models"
	"project-management-api/policy"
	"project-management-api/response"
	"project-management-api/services"
)

type ProjectHandler struct {
	Projects *services.ProjectService
	Actions  *services.ActionService
	Policy   policy.Policy
}

func NewProjectHandler(projects *services.ProjectService, actions *services.ActionService, pl policy.Policy) *ProjectHandler {
	return &ProjectHandler{Projects: projects, Actions: actions, Policy: pl}
}

// GetProjects lists projects: admins see everything, everyone else only the
// projects they created or belong to.
func (h *ProjectHandler) GetProjects(w http.ResponseWriter, r *http.Request) {
	p, _, ok := principal(w, r)
	if !ok {
		return
	}

	var (
		projects []models.Project
		err      error
	)
	if p.Role == models.RoleAdmin {
		projects, err = h.Projects.ListAll(r.Context())
	} else {
		projects, err = h.Projects.ListFor(r.Context(), p.ID)
	}
	if err != nil {
		serverError(w, "Failed to list projects", err)
		return
	}
	response.JSON(w, http.StatusOK, projects)
}

func (h *ProjectHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	p, _, ok := principal(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		response.BadRequest(w, "Invalid project ID")
		return
	}

	project, err := h.Projects.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.NotFound(w, "Project not found")
			return
		}
		serverError(w, "Failed to fetch project", err)
		return
	}

	if err := h.Policy.Authorize(p, policy.OpRead, projectFacts(policy.KindProject, project)); err != nil {
		response.Forbidden(w, "Not authorized to access this project")
		return
	}
	response.JSON(w, http.StatusOK, project)
}

type ProjectRequest struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Members     []string `json:"members"`
}

func parseMemberIDs(raw []string) ([]primitive.ObjectID, error) {
	if raw == nil {
		return nil, nil
	}
	members := make([]primitive.ObjectID, 0, len(raw))
	for _, hex := range raw {
		id, err := primitive.ObjectIDFromHex(hex)
		if err != nil {
			return nil, err
		}
		members = append(members, id)
	}
	return members, nil
}

func (h *ProjectHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	p, _, ok := principal(w, r)
	if !ok {
		return
	}

	if err := h.Policy.Authorize(p, policy.OpCreate, policy.Facts{Kind: policy.KindProject}); err != nil {
		response.Forbidden(w, "Not authorized. Admin or manager access required.")
		return
	}

	var req ProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}
	if req.Title == "" {
		response.BadRequest(w, "Project title is required")
		return
	}

	members, err := parseMemberIDs(req.Members)
	if err != nil {
		response.BadRequest(w, "Invalid member ID")
		return
	}

	project, err := h.Projects.Create(r.Context(), req.Title, req.Description, p.ID, members)
	if err != nil {
		serverError(w, "Failed to create project", err)
		return
	}

	h.Actions.Record(r.Context(), "Created Project", p.ID, models.TargetProject, project.ID)
	response.JSON(w, http.StatusCreated, project)
}

func (h *ProjectHandler) UpdateProject(w http.ResponseWriter, r *http.Request) {
	p, _, ok := principal(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		response.BadRequest(w, "Invalid project ID")
		return
	}

	project, err := h.Projects.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.NotFound(w, "Project not found")
			return
		}
		serverError(w, "Failed to fetch project", err)
		return
	}

	if err := h.Policy.Authorize(p, policy.OpUpdate, projectFacts(policy.KindProject, project)); err != nil {
		response.Forbidden(w, "Not authorized to update this project")
		return
	}

	var req ProjectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	members, err := parseMemberIDs(req.Members)
	if err != nil {
		response.BadRequest(w, "Invalid member ID")
		return
	}

	updated, err := h.Projects.Update(r.Context(), id, services.ProjectUpdate{
		Title:       req.Title,
		Description: req.Description,
		Members:     members,
	})
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.NotFound(w, "Project not found")
			return
		}
		serverError(w, "Failed to update project", err)
		return
	}

	h.Actions.Record(r.Context(), "Updated Project", p.ID, models.TargetProject, id)
	response.JSON(w, http.StatusOK, updated)
}

func (h *ProjectHandler) DeleteProject(w http.ResponseWriter, r *http.Request) {
	p, _, ok := principal(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		response.BadRequest(w, "Invalid project ID")
		return
	}

	project, err := h.Projects.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.NotFound(w, "Project not found")
			return
		}
		serverError(w, "Failed to fetch project", err)
		return
	}

	if err := h.Policy.Authorize(p, policy.OpDelete, projectFacts(policy.KindProject, project)); err != nil {
		response.Forbidden(w, "Not authorized to delete this project")
		return
	}

	if err := h.Projects.Delete(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.NotFound(w, "Project not found")
			return
		}
		serverError(w, "Failed to delete project", err)
		return
	}

	h.Actions.Record(r.Context(), "Deleted Project", p.ID, models.TargetProject, id)
	response.Message(w, http.StatusOK, "Project removed")
}
