package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"project-management-api/models"
	"project-management-api/response"
	"project-management-api/services"
	"project-management-api/utils"
)

type AuthHandler struct {
	Users *services.UserService
}

func NewAuthHandler(users *services.UserService) *AuthHandler {
	return &AuthHandler{Users: users}
}

type RegisterRequest struct {
	Name     string      `json:"name"`
	Email    string      `json:"email"`
	Password string      `json:"password"`
	Role     models.Role `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse mirrors the user document plus a fresh bearer token.
type AuthResponse struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
	Token string      `json:"token"`
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	if req.Name == "" || req.Email == "" || req.Password == "" {
		response.BadRequest(w, "Name, email and password are required")
		return
	}
	if req.Role != "" && !models.ValidRole(req.Role) {
		response.BadRequest(w, "Invalid role")
		return
	}

	user, err := h.Users.Register(r.Context(), req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		if errors.Is(err, services.ErrEmailTaken) {
			response.BadRequest(w, "User already exists")
			return
		}
		serverError(w, "Failed to register user", err)
		return
	}

	token, err := utils.GenerateToken(user.ID.Hex())
	if err != nil {
		serverError(w, "Failed to generate token", err)
		return
	}

	response.JSON(w, http.StatusCreated, AuthResponse{
		ID:    user.ID.Hex(),
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
		Token: token,
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	if req.Email == "" || req.Password == "" {
		response.BadRequest(w, "Email and password are required")
		return
	}

	user, err := h.Users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			response.Unauthorized(w, "Invalid email or password")
			return
		}
		serverError(w, "Failed to log in user", err)
		return
	}

	token, err := utils.GenerateToken(user.ID.Hex())
	if err != nil {
		serverError(w, "Failed to generate token", err)
		return
	}

	response.JSON(w, http.StatusOK, AuthResponse{
		ID:    user.ID.Hex(),
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
		Token: token,
	})
}

// GetProfile returns the authenticated user's own document.
func (h *AuthHandler) GetProfile(w http.ResponseWriter, r *http.Request) {
	_, user, ok := principal(w, r)
	if !ok {
		return
	}
	response.JSON(w, http.StatusOK, user)
}

type UpdateProfileRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// UpdateProfile lets any principal change their own name, email or
// password. Roles are not self-service; see the user handler.
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	p, _, ok := principal(w, r)
	if !ok {
		return
	}

	var req UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request payload")
		return
	}

	updated, err := h.Users.Update(r.Context(), p.ID, services.UserUpdate{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		switch {
		case errors.Is(err, services.ErrEmailTaken):
			response.BadRequest(w, "Email already in use")
		case errors.Is(err, services.ErrNotFound):
			response.NotFound(w, "User not found")
		default:
			serverError(w, "Failed to update profile", err)
		}
		return
	}

	response.JSON(w, http.StatusOK, updated)
}
