// Package response writes the service's JSON replies. Errors always carry a
// single "message" field; stack traces and internal error text stay in the
// server log.
package response

import (
	"encoding/json"
	"net/http"
)

type errorBody struct {
	Message string `json:"message"`
}

// JSON writes data as the response body with the given status code.
func JSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// Message writes a `{"message": ...}` body with the given status code.
func Message(w http.ResponseWriter, statusCode int, message string) {
	JSON(w, statusCode, errorBody{Message: message})
}

func BadRequest(w http.ResponseWriter, message string) {
	Message(w, http.StatusBadRequest, message)
}

func Unauthorized(w http.ResponseWriter, message string) {
	Message(w, http.StatusUnauthorized, message)
}

func Forbidden(w http.ResponseWriter, message string) {
	Message(w, http.StatusForbidden, message)
}

func NotFound(w http.ResponseWriter, message string) {
	Message(w, http.StatusNotFound, message)
}

func InternalServerError(w http.ResponseWriter, message string) {
	Message(w, http.StatusInternalServerError, message)
}
