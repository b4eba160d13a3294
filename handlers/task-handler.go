package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"project-management-api/models"
	"project-management-api/policy"
	"project-management-api/response"
	"project-management-api/services"
)

type TaskHandler struct {
	Tasks    *services.TaskService
	Projects *services.ProjectService
	Actions  *services.ActionService
	Policy   policy.Policy
}

func NewTaskHandler(tasks *services.TaskService, projects *services.ProjectService, actions *services.ActionService, pl policy.Policy) *TaskHandler {
	return &TaskHandler{Tasks: tasks, Projects: projects, Actions: actions, Policy: pl}
}

// loadProjectForTask resolves the owning project of a task-scoped request
// and writes the 404/500 response itself on failure.
func (h *TaskHandler) loadProjectForTask(w http.ResponseWriter, r *http.Request, projectID primitive.ObjectID) (*models.Project, bool) {
	project, err := h.Projects.GetByID(r.Context(), projectID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.NotFound(w, "Project not found")
			return nil, false
		}
		serverError(w, "Failed to fetch project", err)
		return nil, false
	}
	return project, true
}

// GetTasks lists the tasks of a project. Whether the creator-or-member
// check applies here is a policy parameter; see policy.Policy.OpenTaskRead.
func (h *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	p, _, ok := principal(w, r)
	if !ok {
		return
	}

	projectID, err := pathID(r, "projectId")
	if err != nil {
		response.BadRequest(w, "Invalid project ID")
		return
	}

	project, ok := h.loadProjectForTask(w, r, projectID)
	if !ok {
		return
	}

	if err := h.Policy.AuthorizeTaskList(p, projectFacts(policy.KindTask, project)); err != nil {
		response.Forbidden(w, "Not authorized to access tasks for this project")
		return
	}

	tasks, err := h.Tasks.ListByProject(r.Context(), projectID)
	if err != nil {
		serverError(w, "Failed to list tasks", err)
		return
	}
	response.JSON(w, http.StatusOK, tasks)
}

func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	p, _, ok := principal(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		response.BadRequest(w, "Invalid task ID")
		return
	}

	task, err := h.Tasks.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.NotFound(w, "Task not found")
			return
		}
		serverError(w, "Failed to fetch task", err)
		return
	}

	project, ok := h.loadProjectForTask(w, r, task.ProjectID)
	if !ok {
		return
	}

	if err := h.Policy.Authorize(p, policy.OpRead, projectFacts(policy.KindTask, project)); err != nil {
		response.Forbidden(w, "Not authorized to access this task")
		return
	}
	response.JSON(w, http.StatusOK, task)
}

type TaskRequest struct {
	Title       string              `json:"title"`
	Description string              `json:"description"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	DueDate     *time.Time          `json:"dueDate"`
	AssignedTo  string              `json:"assignedTo"`
}

func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	p, _, ok := principal(w, r)
	if !ok {
		return
	}

	// Role gate before the project lookup: a plain user gets Forbidden even
	// when the project does not exist.
	if err := h.Policy.RoleAllowsCreate(p); err != nil {
		response.Forbidden(w, "Not authorized. Admin or manager access required.")
		return
	}

	projectID, err := pathID(r, "projectId")
	if err != nil {
		response.BadRequest(w, "Invalid project ID")
		return
	}

	project, ok := h.loadProjectForTask(w, r, projectID)
	if !ok {
		return
	}

	if err := h.Policy.Authorize(p, policy.OpCreate, projectFacts(policy.KindTask, project)); err != nil {
		response.Forbidden(w, "Managers can only create tasks for projects they created")
		return
	}

	var req TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}
	if req.Title == "" {
		response.BadRequest(w, "Task title is required")
		return
	}

	task := models.Task{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
		ProjectID:   projectID,
	}
	if req.AssignedTo != "" {
		assignee, err := primitive.ObjectIDFromHex(req.AssignedTo)
		if err != nil {
			response.BadRequest(w, "Invalid assignee ID")
			return
		}
		task.AssignedTo = assignee
	}

	created, err := h.Tasks.Create(r.Context(), task)
	if err != nil {
		serverError(w, "Failed to create task", err)
		return
	}

	h.Actions.Record(r.Context(), "Created Task", p.ID, models.TargetTask, created.ID)
	response.JSON(w, http.StatusCreated, created)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	p, _, ok := principal(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		response.BadRequest(w, "Invalid task ID")
		return
	}

	task, err := h.Tasks.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.NotFound(w, "Task not found")
			return
		}
		serverError(w, "Failed to fetch task", err)
		return
	}

	project, ok := h.loadProjectForTask(w, r, task.ProjectID)
	if !ok {
		return
	}

	if err := h.Policy.Authorize(p, policy.OpUpdate, projectFacts(policy.KindTask, project)); err != nil {
		response.Forbidden(w, "Not authorized to update this task")
		return
	}

	var req TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	upd := services.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
		DueDate:     req.DueDate,
	}
	if req.AssignedTo != "" {
		assignee, err := primitive.ObjectIDFromHex(req.AssignedTo)
		if err != nil {
			response.BadRequest(w, "Invalid assignee ID")
			return
		}
		upd.AssignedTo = assignee
	}

	updated, err := h.Tasks.Update(r.Context(), id, upd)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.NotFound(w, "Task not found")
			return
		}
		serverError(w, "Failed to update task", err)
		return
	}

	h.Actions.Record(r.Context(), "Updated Task", p.ID, models.TargetTask, id)
	response.JSON(w, http.StatusOK, updated)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	p, _, ok := principal(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		response.BadRequest(w, "Invalid task ID")
		return
	}

	task, err := h.Tasks.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.NotFound(w, "Task not found")
			return
		}
		serverError(w, "Failed to fetch task", err)
		return
	}

	project, ok := h.loadProjectForTask(w, r, task.ProjectID)
	if !ok {
		return
	}

	if err := h.Policy.Authorize(p, policy.OpDelete, projectFacts(policy.KindTask, project)); err != nil {
		response.Forbidden(w, "Not authorized to delete this task")
		return
	}

	if err := h.Tasks.Delete(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.NotFound(w, "Task not found")
			return
		}
		serverError(w, "Failed to delete task", err)
		return
	}

	h.Actions.Record(r.Context(), "Deleted Task", p.ID, models.TargetTask, id)
	response.Message(w, http.StatusOK, "Task removed")
}
