package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"dashboard-service/middleware"
	"dashboard-service/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeServiceError translates service-layer error kinds into HTTP
// statuses. Anything unrecognized is an internal error.
func writeServiceError(w http.ResponseWriter, err error) {
	var validationErr *models.ValidationError
	switch {
	case errors.Is(err, models.ErrNotFound):
		http.Error(w, "Not found", http.StatusNotFound)
	case errors.Is(err, models.ErrInvalidState):
		http.Error(w, "Conflict: operation not allowed in the current state", http.StatusConflict)
	case errors.Is(err, models.ErrMeetingRequired):
		http.Error(w, "A completed planning meeting is required (set override to proceed)", http.StatusConflict)
	case errors.As(err, &validationErr):
		http.Error(w, validationErr.Error(), http.StatusBadRequest)
	default:
		http.Error(w, "Internal server error", http.StatusInternalServerError)
	}
}

// checkRole rejects callers whose JWT role is not in the allowed set.
func checkRole(r *http.Request, allowedRoles []string) error {
	userRole := middleware.RoleFromContext(r.Context())
	if userRole == "" {
		return fmt.Errorf("role is missing in request context")
	}
	for _, role := range allowedRoles {
		if role == userRole {
			return nil
		}
	}
	return fmt.Errorf("access forbidden: user does not have the required role")
}

func parseObjectID(raw string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("invalid id %q", raw)
	}
	return id, nil
}

// callerID resolves the authenticated user's id from the request
// context.
func callerID(r *http.Request) (primitive.ObjectID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return primitive.NilObjectID, fmt.Errorf("missing authenticated user")
	}
	return parseObjectID(raw)
}
