package handlers

import (
	"encoding/json"
	"net/http"

	"dashboard-service/models"
	"dashboard-service/services"

	"github.com/gorilla/mux"
)

type SubtaskHandler struct {
	service *services.SubtaskService
}

func NewSubtaskHandler(service *services.SubtaskService) *SubtaskHandler {
	return &SubtaskHandler{service: service}
}

func (h *SubtaskHandler) CreateSubtask(w http.ResponseWriter, r *http.Request) {
	var body struct {
		models.Subtask
		OverrideMeetingGate bool `json:"overrideMeetingGate"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if userID, err := callerID(r); err == nil {
		body.Subtask.CreatedBy = &userID
	}

	created, err := h.service.CreateSubtask(r.Context(), &body.Subtask, body.OverrideMeetingGate)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *SubtaskHandler) GetSubtask(w http.ResponseWriter, r *http.Request) {
	subtaskID, err := parseObjectID(mux.Vars(r)["subtaskId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	subtask, err := h.service.GetSubtask(r.Context(), subtaskID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subtask)
}

func (h *SubtaskHandler) GetSubtasksByTask(w http.ResponseWriter, r *http.Request) {
	taskID, err := parseObjectID(mux.Vars(r)["taskId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	subtasks, err := h.service.GetSubtasksByTask(r.Context(), taskID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subtasks)
}

func (h *SubtaskHandler) UpdateProgress(w http.ResponseWriter, r *http.Request) {
	subtaskID, err := parseObjectID(mux.Vars(r)["subtaskId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var body struct {
		Progress int `json:"progress"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if err := h.service.UpdateSubtaskProgress(r.Context(), subtaskID, body.Progress); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Progress updated successfully"})
}

func (h *SubtaskHandler) AssignMember(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{models.RoleAdmin, models.RoleTeamLeader}); err != nil {
		http.Error(w, "Access forbidden: insufficient permissions", http.StatusForbidden)
		return
	}

	subtaskID, err := parseObjectID(mux.Vars(r)["subtaskId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var body struct {
		MemberID string `json:"memberId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	memberID, err := parseObjectID(body.MemberID)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.AssignMember(r.Context(), subtaskID, memberID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Member assigned successfully"})
}

func (h *SubtaskHandler) SubmitCompletionReport(w http.ResponseWriter, r *http.Request) {
	subtaskID, err := parseObjectID(mux.Vars(r)["subtaskId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	memberID, err := callerID(r)
	if err != nil {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	var body struct {
		Report string `json:"report"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if err := h.service.SubmitCompletionReport(r.Context(), subtaskID, memberID, body.Report); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Completion report submitted"})
}

func (h *SubtaskHandler) ApproveSubtask(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{models.RoleAdmin, models.RoleTeamLeader}); err != nil {
		http.Error(w, "Access forbidden: insufficient permissions", http.StatusForbidden)
		return
	}

	subtaskID, err := parseObjectID(mux.Vars(r)["subtaskId"])
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

	if err := h.service.ApproveSubtask(r.Context(), subtaskID, approverID, body.Comments); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Subtask approved successfully"})
}

func (h *SubtaskHandler) RejectSubtask(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{models.RoleAdmin, models.RoleTeamLeader}); err != nil {
		http.Error(w, "Access forbidden: insufficient permissions", http.StatusForbidden)
		return
	}

	subtaskID, err := parseObjectID(mux.Vars(r)["subtaskId"])
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

	if err := h.service.RejectSubtask(r.Context(), subtaskID, reviewerID, body.Comments); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Subtask rejected"})
}

func (h *SubtaskHandler) GetSubtasksAwaitingApproval(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{models.RoleAdmin, models.RoleTeamLeader}); err != nil {
		http.Error(w, "Access forbidden: insufficient permissions", http.StatusForbidden)
		return
	}

	subtasks, err := h.service.GetSubtasksAwaitingApproval(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, subtasks)
}

func (h *SubtaskHandler) DeleteSubtask(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{models.RoleAdmin, models.RoleTeamLeader}); err != nil {
		http.Error(w, "Access forbidden: insufficient permissions", http.StatusForbidden)
		return
	}

	subtaskID, err := parseObjectID(mux.Vars(r)["subtaskId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.DeleteSubtask(r.Context(), subtaskID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Subtask deleted successfully"})
}
