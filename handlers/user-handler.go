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

type UserHandler struct {
	Users   *services.UserService
	Actions *services.ActionService
	Policy  policy.Policy
}

func NewUserHandler(users *services.UserService, actions *services.ActionService, pl policy.Policy) *UserHandler {
	return &UserHandler{Users: users, Actions: actions, Policy: pl}
}

// GetUsers lists all users. Any authenticated principal may read the
// directory.
func (h *UserHandler) GetUsers(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := principal(w, r); !ok {
		return
	}

	users, err := h.Users.GetAll(r.Context())
	if err != nil {
		serverError(w, "Failed to list users", err)
		return
	}
	response.JSON(w, http.StatusOK, users)
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	if _, _, ok := principal(w, r); !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	user, err := h.Users.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.NotFound(w, "User not found")
			return
		}
		serverError(w, "Failed to fetch user", err)
		return
	}
	response.JSON(w, http.StatusOK, user)
}

type UpdateUserRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

// UpdateUser updates a user: admins may update anyone including the role,
// everyone else only their own profile fields.
func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	p, _, ok := principal(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	// Existence before authorization: a missing user is 404 for everyone.
	if _, err := h.Users.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.NotFound(w, "User not found")
			return
		}
		serverError(w, "Failed to fetch user", err)
		return
	}

	if err := h.Policy.CanUpdateUser(p, id); err != nil {
		response.Forbidden(w, "Not authorized to update this user")
		return
	}

	var req UpdateUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	upd := services.UserUpdate{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	}
	if req.Role != "" {
		if p.Role != models.RoleAdmin {
			response.Forbidden(w, "Only admins may change roles")
			return
		}
		if !models.ValidRole(req.Role) {
			response.BadRequest(w, "Invalid role")
			return
		}
		upd.NewRole = req.Role
	}

	updated, err := h.Users.Update(r.Context(), id, upd)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailTaken):
			response.BadRequest(w, "Email already in use")
		case errors.Is(err, services.ErrNotFound):
			response.NotFound(w, "User not found")
		default:
			serverError(w, "Failed to update user", err)
		}
		return
	}

	h.Actions.Record(r.Context(), "Updated User", p.ID, models.TargetUser, id)
	response.JSON(w, http.StatusOK, updated)
}

// DeleteUser removes a user. Admin only.
func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	p, _, ok := principal(w, r)
	if !ok {
		return
	}

	id, err := pathID(r, "id")
	if err != nil {
		response.BadRequest(w, "Invalid user ID")
		return
	}

	if _, err := h.Users.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.NotFound(w, "User not found")
			return
		}
		serverError(w, "Failed to fetch user", err)
		return
	}

	if err := h.Policy.CanDeleteUser(p); err != nil {
		response.Forbidden(w, "Not authorized to delete users")
		return
	}

	if err := h.Users.Delete(r.Context(), id); err != nil {
		if errors.Is(err, services.ErrNotFound) {
			response.NotFound(w, "User not found")
			return
		}
		serverError(w, "Failed to delete user", err)
		return
	}

	h.Actions.Record(r.Context(), "Deleted User", p.ID, models.TargetUser, id)
	response.Message(w, http.StatusOK, "User removed")
}
