package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"project-management-api/middleware"
	"project-management-api/models"
	"project-management-api/policy"
)

// authedRequest builds a request with the given user already authenticated,
// as the JWT middleware would leave it.
func authedRequest(t *testing.T, method, target, body string, user *models.User, vars map[string]string) *http.Request {
	t.Helper()
	var r *http.Request
	if body != "" {
		r = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		r = httptest.NewRequest(method, target, nil)
	}
	r = r.WithContext(middleware.WithUser(r.Context(), user))
	if vars != nil {
		r = mux.SetURLVars(r, vars)
	}
	return r
}

func testUser(role models.Role) *models.User {
	return &models.User{ID: primitive.NewObjectID(), Name: "Someone", Email: "someone@example.com", Role: role}
}

func decodeMessage(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body.Message
}

func TestCreateProjectForbiddenForUserRole(t *testing.T) {
	h := NewProjectHandler(nil, nil, policy.Policy{})
	w := httptest.NewRecorder()
	r := authedRequest(t, http.MethodPost, "/api/projects", `{"title":"Website"}`, testUser(models.RoleUser), nil)

	h.CreateProject(w, r)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Not authorized. Admin or manager access required.", decodeMessage(t, w))
}

func TestCreateProjectRejectsBadPayload(t *testing.T) {
	h := NewProjectHandler(nil, nil, policy.Policy{})

	w := httptest.NewRecorder()
	r := authedRequest(t, http.MethodPost, "/api/projects", `{not json`, testUser(models.RoleManager), nil)
	h.CreateProject(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r = authedRequest(t, http.MethodPost, "/api/projects", `{"description":"no title"}`, testUser(models.RoleManager), nil)
	h.CreateProject(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Project title is required", decodeMessage(t, w))
}

func TestCreateProjectRejectsBadMemberID(t *testing.T) {
	h := NewProjectHandler(nil, nil, policy.Policy{})
	w := httptest.NewRecorder()
	r := authedRequest(t, http.MethodPost, "/api/projects",
		`{"title":"Website","members":["nope"]}`, testUser(models.RoleManager), nil)

	h.CreateProject(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid member ID", decodeMessage(t, w))
}

// A plain user gets Forbidden on task creation before the project is even
// looked up, so the answer is the same for missing projects.
func TestCreateTaskRoleGatePrecedesProjectLookup(t *testing.T) {
	h := NewTaskHandler(nil, nil, nil, policy.Policy{})
	w := httptest.NewRecorder()
	r := authedRequest(t, http.MethodPost, "/api/tasks/project/000000000000000000000000", "",
		testUser(models.RoleUser), map[string]string{"projectId": "000000000000000000000000"})

	h.CreateTask(w, r)

	assert.Equal(t, http.StatusForbidden, w.Code)
}

func TestCreateCommentRoleGate(t *testing.T) {
	h := NewCommentHandler(nil, nil, nil, nil, policy.Policy{})
	w := httptest.NewRecorder()
	r := authedRequest(t, http.MethodPost, "/api/comments/task/000000000000000000000000", "",
		testUser(models.RoleUser), map[string]string{"taskId": "000000000000000000000000"})

	h.CreateComment(w, r)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Not authorized. Admin or manager access required.", decodeMessage(t, w))
}

func TestGetAllActionsAdminOnly(t *testing.T) {
	h := NewActionHandler(nil, nil, policy.Policy{})

	for _, role := range []models.Role{models.RoleManager, models.RoleUser} {
		w := httptest.NewRecorder()
		r := authedRequest(t, http.MethodGet, "/api/actions", "", testUser(role), nil)
		h.GetAllActions(w, r)
		assert.Equal(t, http.StatusForbidden, w.Code, "role %s must not read the full feed", role)
	}
}

func TestGetUserActionsSelfOrAdmin(t *testing.T) {
	h := NewActionHandler(nil, nil, policy.Policy{})

	other := primitive.NewObjectID().Hex()
	w := httptest.NewRecorder()
	r := authedRequest(t, http.MethodGet, "/api/actions/user/"+other, "",
		testUser(models.RoleUser), map[string]string{"userId": other})

	h.GetUserActions(w, r)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "Not authorized to view actions for this user", decodeMessage(t, w))
}

func TestInvalidObjectIDisBadRequest(t *testing.T) {
	h := NewProjectHandler(nil, nil, policy.Policy{})
	w := httptest.NewRecorder()
	r := authedRequest(t, http.MethodGet, "/api/projects/abc", "",
		testUser(models.RoleAdmin), map[string]string{"id": "abc"})

	h.GetProject(w, r)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid project ID", decodeMessage(t, w))
}

func TestRegisterValidation(t *testing.T) {
	h := NewAuthHandler(nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/auth/register", strings.NewReader(`{"name":"A"}`))
	h.Register(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Name, email and password are required", decodeMessage(t, w))

	w = httptest.NewRecorder()
	r = httptest.NewRequest(http.MethodPost, "/api/auth/register",
		strings.NewReader(`{"name":"A","email":"a@b.c","password":"pw","role":"superuser"}`))
	h.Register(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Invalid role", decodeMessage(t, w))
}

func TestLoginValidation(t *testing.T) {
	h := NewAuthHandler(nil)

	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodPost, "/api/auth/login", strings.NewReader(`{"email":"a@b.c"}`))
	h.Login(w, r)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
