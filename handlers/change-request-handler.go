package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"dashboard-service/models"
	"dashboard-service/services"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// TargetAccessChecker answers whether a user may touch a change-request
// target. Satisfied by AccessService.
type TargetAccessChecker interface {
	CanAccessTask(ctx context.Context, userID, taskID primitive.ObjectID) (bool, error)
	CanAccessSubtask(ctx context.Context, userID, subtaskID primitive.ObjectID) (bool, error)
}

type ChangeRequestHandler struct {
	service *services.ChangeRequestService
	access  TargetAccessChecker
}

func NewChangeRequestHandler(service *services.ChangeRequestService, access TargetAccessChecker) *ChangeRequestHandler {
	return &ChangeRequestHandler{service: service, access: access}
}

func (h *ChangeRequestHandler) CreateChangeRequest(w http.ResponseWriter, r *http.Request) {
	requesterID, err := callerID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		TargetType      models.TargetType `json:"targetType"`
		TargetID        string            `json:"targetId"`
		ProposedChanges map[string]any    `json:"proposedChanges"`
		RequiresMeeting bool              `json:"requiresMeeting"`
		Reason          string            `json:"reason"`
		ImpactAnalysis  string            `json:"impactAnalysis"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	targetID, err := parseObjectID(body.TargetID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	// Only users who can access the target may propose changes to it.
	var allowed bool
	switch body.TargetType {
	case models.TargetTask:
		allowed, err = h.access.CanAccessTask(r.Context(), requesterID, targetID)
	case models.TargetSubtask:
		allowed, err = h.access.CanAccessSubtask(r.Context(), requesterID, targetID)
	default:
		http.Error(w, "Unknown target type", http.StatusBadRequest)
		return
	}
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if !allowed {
		http.Error(w, "Access forbidden", http.StatusForbidden)
		return
	}

	request, err := h.service.CreateChangeRequest(r.Context(), body.TargetType, targetID, requesterID,
		body.ProposedChanges, body.RequiresMeeting, body.Reason, body.ImpactAnalysis)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, request)
}

func (h *ChangeRequestHandler) GetChangeRequest(w http.ResponseWriter, r *http.Request) {
	requestID, err := parseObjectID(mux.Vars(r)["requestId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	request, err := h.service.GetChangeRequest(r.Context(), requestID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, request)
}

func (h *ChangeRequestHandler) ApproveChangeRequest(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{models.RoleAdmin, models.RoleTeamLeader}); err != nil {
		http.Error(w, "Access forbidden: insufficient permissions", http.StatusForbidden)
		return
	}

	requestID, err := parseObjectID(mux.Vars(r)["requestId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	approverID, err := callerID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		Comments string `json:"comments"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if err := h.service.ApproveChangeRequest(r.Context(), requestID, approverID, body.Comments); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Change request approved"})
}

func (h *ChangeRequestHandler) RejectChangeRequest(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{models.RoleAdmin, models.RoleTeamLeader}); err != nil {
		http.Error(w, "Access forbidden: insufficient permissions", http.StatusForbidden)
		return
	}

	requestID, err := parseObjectID(mux.Vars(r)["requestId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	reviewerID, err := callerID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		Comments string `json:"comments"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if err := h.service.RejectChangeRequest(r.Context(), requestID, reviewerID, body.Comments); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Change request rejected"})
}

// ListChangeRequests supports filtering by target type, target id, and
// status through query parameters.
func (h *ChangeRequestHandler) ListChangeRequests(w http.ResponseWriter, r *http.Request) {
	filter := services.ChangeRequestFilter{
		TargetType: models.TargetType(r.URL.Query().Get("targetType")),
		Status:     models.ChangeRequestStatus(r.URL.Query().Get("status")),
	}
	if raw := r.URL.Query().Get("targetId"); raw != "" {
		id, err := parseObjectID(raw)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		filter.TargetID = &id
	}

	requests, err := h.service.ListChangeRequests(r.Context(), filter)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}

// ListMyChangeRequests returns the requests the caller authored plus the
// ones affecting them.
func (h *ChangeRequestHandler) ListMyChangeRequests(w http.ResponseWriter, r *http.Request) {
	userID, err := callerID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	requests, err := h.service.ListChangeRequestsForUser(r.Context(), userID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, requests)
}
