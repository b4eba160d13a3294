// Package handlers contains one HTTP handler per (resource, operation)
// pair. Every handler follows the same shape: read the principal from the
// request context, load the target, ask the policy, perform the single
// mutation or read, append the audit record, respond JSON.
package handlers

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"project-management-api/logging"
	"project-management-api/middleware"
	"project-management-api/models"
	"project-management-api/policy"
	"project-management-api/response"
)

// principal extracts the authenticated user placed in the context by the
// JWT middleware. A missing principal means the route was wired without the
// middleware, which is a server error, not a client one.
func principal(w http.ResponseWriter, r *http.Request) (policy.Principal, *models.User, bool) {
	user, ok := middleware.UserFromContext(r.Context())
	if !ok {
		logging.Logger.Errorf("Event ID: MISSING_PRINCIPAL, Description: No authenticated user in context for %s %s", r.Method, r.URL.Path)
		response.InternalServerError(w, "Server error")
		return policy.Principal{}, nil, false
	}
	return policy.Principal{ID: user.ID, Role: user.Role}, user, true
}

// pathID parses the named mux path variable as an ObjectID.
func pathID(r *http.Request, name string) (primitive.ObjectID, error) {
	return primitive.ObjectIDFromHex(mux.Vars(r)[name])
}

// projectFacts builds the ownership facts of a resource owned by project.
func projectFacts(kind policy.Kind, project *models.Project) policy.Facts {
	return policy.Facts{
		Kind:           kind,
		ProjectCreator: project.CreatedBy,
		ProjectMembers: project.Members,
	}
}

func serverError(w http.ResponseWriter, context string, err error) {
	logging.Logger.Errorf("Event ID: INTERNAL_ERROR, Description: %s: %v", context, err)
	response.InternalServerError(w, "Server error")
}
