package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"dashboard-service/services"

	"github.com/gorilla/mux"
)

type ScheduleHandler struct {
	service *services.ScheduleService
}

func NewScheduleHandler(service *services.ScheduleService) *ScheduleHandler {
	return &ScheduleHandler{service: service}
}

// AnalyzeImpact reports which dependent tasks would shift if the task's
// end date moved to the proposed date. Read-only.
func (h *ScheduleHandler) AnalyzeImpact(w http.ResponseWriter, r *http.Request) {
	taskID, err := parseObjectID(mux.Vars(r)["taskId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var body struct {
		ProposedEnd string `json:"proposedEnd"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	proposedEnd, err := parseDate(body.ProposedEnd)
	if err != nil {
		http.Error(w, "Invalid proposedEnd date", http.StatusBadRequest)
		return
	}

	impacted, err := h.service.AnalyzeImpact(r.Context(), taskID, proposedEnd)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	if impacted == nil {
		impacted = []services.ImpactEntry{}
	}
	writeJSON(w, http.StatusOK, impacted)
}

func (h *ScheduleHandler) GetDependentTasks(w http.ResponseWriter, r *http.Request) {
	taskID, err := parseObjectID(mux.Vars(r)["taskId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	dependents, err := h.service.GetDependentTasks(r.Context(), taskID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dependents)
}

// ApplyShift moves one dependent task to the dates suggested by a prior
// analysis.
func (h *ScheduleHandler) ApplyShift(w http.ResponseWriter, r *http.Request) {
	var entry services.ImpactEntry
	if err := json.NewDecoder(r.Body).Decode(&entry); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if err := h.service.ApplyShift(r.Context(), entry); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Schedule shift applied"})
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, raw)
}
