package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"project-management-api/models"
	"project-management-api/policy"
	"project-management-api/response"
	"project-management-api/services"
)

type CommentHandler struct {
	Comments *services.CommentService
	Tasks    *services.TaskService
	Projects *services.ProjectService
	Actions  *services.ActionService
	Policy   policy.Policy
}

func NewCommentHandler(comments *services.CommentService, tasks *services.TaskService, projects *services.ProjectService, actions *services.ActionService, pl policy.Policy) *CommentHandler {
	return &CommentHandler{Comments: comments, Tasks: tasks, Projects: projects, Actions: actions, Policy: pl}
}

// taskFacts loads the task and its owning project and returns the comment
// ownership facts. Writes its own error response on failure.
func (h *CommentHandler) taskFacts(w http.ResponseWriter, r *http.Request, task *models.Task) (policy.Facts, bool) {
	project, err := h.Projects.GetByID(r.Context(), task.ProjectID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.NotFound(w, "Project not found")
			return policy.Facts{}, false
		}
		serverError(w, "Failed to fetch project", err)
		return policy.Facts{}, false
	}
	return projectFacts(policy.KindComment, project), true
}

// GetComments lists the comments on a task, newest first.
func (h *CommentHandler) GetComments(w http.ResponseWriter, r *http.Request) {
	p, _, ok := principal(w, r)
	if !ok {
		return
	}

	taskID, err := pathID(r, "taskId")
	if err != nil {
		response.BadRequest(w, "Invalid task ID")
		return
	}

	task, err := h.Tasks.GetByID(r.Context(), taskID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.NotFound(w, "Task not found")
			return
		}
		serverError(w, "Failed to fetch task", err)
		return
	}

	facts, ok := h.taskFacts(w, r, task)
	if !ok {
		return
	}
	if err := h.Policy.Authorize(p, policy.OpRead, facts); err != nil {
		response.Forbidden(w, "Not authorized to access comments for this task")
		return
	}

	comments, err := h.Comments.ListByTask(r.Context(), taskID)
	if err != nil {
		serverError(w, "Failed to list comments", err)
		return
	}
	response.JSON(w, http.StatusOK, comments)
}

type CommentRequest struct {
	Text string `json:"text"`
}

func (h *CommentHandler) CreateComment(w http.ResponseWriter, r *http.Request) {
	p, _, ok := principal(w, r)
	if !ok {
		return
	}

	if err := h.Policy.RoleAllowsCreate(p); err != nil {
		response.Forbidden(w, "Not authorized. Admin or manager access required.")
		return
	}

	taskID, err := pathID(r, "taskId")
	if err != nil {
		response.BadRequest(w, "Invalid task ID")
		return
	}

	task, err := h.Tasks.GetByID(r.Context(), taskID)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.NotFound(w, "Task not found")
			return
		}
		serverError(w, "Failed to fetch task", err)
		return
	}

	facts, ok := h.taskFacts(w, r, task)
	if !ok {
		return
	}
	if err := h.Policy.Authorize(p, policy.OpCreate, facts); err != nil {
		response.Forbidden(w, "Managers can only comment on tasks in projects they created")
		return
	}

	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}
	if req.Text == "" {
		response.BadRequest(w, "Comment text is required")
		return
	}

	comment, err := h.Comments.Create(r.Context(), req.Text, p.ID, taskID)
	if err != nil {
		serverError(w, "Failed to create comment", err)
		return
	}

	h.Actions.Record(r.Context(), "Added Comment", p.ID, models.TargetComment, comment.ID)
	response.JSON(w, http.StatusCreated, comment)
}

func (h *CommentHandler) UpdateComment(w http.ResponseWriter, r *http.Request) {
	p, _, ok := principal(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		response.BadRequest(w, "Invalid comment ID")
		return
	}

	comment, err := h.Comments.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.NotFound(w, "Comment not found")
			return
		}
		serverError(w, "Failed to fetch comment", err)
		return
	}

	// Updating only needs authorship; no project lookup.
	facts := policy.Facts{Kind: policy.KindComment, CommentAuthor: comment.Author}
	if err := h.Policy.Authorize(p, policy.OpUpdate, facts); err != nil {
		response.Forbidden(w, "Not authorized to update this comment")
		return
	}

	var req CommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}
	if req.Text == "" {
		response.BadRequest(w, "Comment text is required")
		return
	}

	updated, err := h.Comments.UpdateText(r.Context(), id, req.Text)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.NotFound(w, "Comment not found")
			return
		}
		serverError(w, "Failed to update comment", err)
		return
	}

	h.Actions.Record(r.Context(), "Updated Comment", p.ID, models.TargetComment, id)
	response.JSON(w, http.StatusOK, updated)
}

func (h *CommentHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	p, _, ok := principal(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		response.BadRequest(w, "Invalid comment ID")
		return
	}

	comment, err := h.Comments.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.NotFound(w, "Comment not found")
			return
		}
		serverError(w, "Failed to fetch comment", err)
		return
	}

	// Deletion also grants the owning project's creator; resolve the chain
	// comment -> task -> project when it is still intact.
	facts := policy.Facts{Kind: policy.KindComment, CommentAuthor: comment.Author}
	if task, err := h.Tasks.GetByID(r.Context(), comment.TaskID); err == nil {
		if project, err := h.Projects.GetByID(r.Context(), task.ProjectID); err == nil {
			facts.ProjectCreator = project.CreatedBy
			facts.ProjectMembers = project.Members
		}
	}

	if err := h.Policy.Authorize(p, policy.OpDelete, facts); err != nil {
		response.Forbidden(w, "Not authorized to delete this comment")
		return
	}

	if err := h.Comments.Delete(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.NotFound(w, "Comment not found")
			return
		}
		serverError(w, "Failed to delete comment", err)
		return
	}

	h.Actions.Record(r.Context(), "Deleted Comment", p.ID, models.TargetComment, id)
	response.Message(w, http.StatusOK, "Comment removed")
}
