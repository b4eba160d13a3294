package middleware

import (
	"context"
	"net/http"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"project-management-api/logging"
	"project-management-api/models"
	"project-management-api/response"
	"project-management-api/utils"
)

type contextKey string

const userContextKey contextKey = "user"

// UserLoader resolves the token subject to the current user document, so
// role changes and deletions take effect on the next request.
type UserLoader func(ctx context.Context, id primitive.ObjectID) (*models.User, error)

// JWTAuth validates the bearer token, loads the principal and stores it in
// the request context.
func JWTAuth(load UserLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logging.Logger.Warnf("Event ID: JWT_AUTH_MISSING_HEADER, Description: Authorization header missing for %s %s", r.Method, r.URL.Path)
				response.Unauthorized(w, "Authorization header missing")
				return
			}

			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			subject, err := utils.ValidateToken(tokenStr)
			if err != nil {
				logging.Logger.Warnf("Event ID: JWT_AUTH_INVALID_TOKEN, Description: Invalid token for %s %s: %v", r.Method, r.URL.Path, err)
				response.Unauthorized(w, "Invalid token")
				return
			}

			userID, err := primitive.ObjectIDFromHex(subject)
			if err != nil {
				response.Unauthorized(w, "Invalid token")
				return
			}

			user, err := load(r.Context(), userID)
			if err != nil {
				logging.Logger.Warnf("Event ID: JWT_AUTH_UNKNOWN_USER, Description: Token subject %s not found: %v", subject, err)
				response.Unauthorized(w, "Invalid token")
				return
			}

			next.ServeHTTP(w, r.WithContext(WithUser(r.Context(), user)))
		})
	}
}

// WithUser stores the authenticated user in the context.
func WithUser(ctx context.Context, user *models.User) context.Context {
	return context.WithValue(ctx, userContextKey, user)
}

// UserFromContext returns the authenticated user set by JWTAuth.
func UserFromContext(ctx context.Context) (*models.User, bool) {
	user, ok := ctx.Value(userContextKey).(*models.User)
	return user, ok
}
