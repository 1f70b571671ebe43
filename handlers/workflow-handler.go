package handlers

import (
	"net/http"

	"dashboard-service/services"

	"github.com/gorilla/mux"
)

type WorkflowHandler struct {
	service *services.WorkflowService
}

func NewWorkflowHandler(service *services.WorkflowService) *WorkflowHandler {
	return &WorkflowHandler{service: service}
}

// GetTaskDependencies returns the prerequisite nodes of a task from the
// graph mirror.
func (h *WorkflowHandler) GetTaskDependencies(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["taskId"]
	if taskID == "" {
		http.Error(w, "taskId is required", http.StatusBadRequest)
		return
	}

	dependencies, err := h.service.GetDependencies(r.Context(), taskID)
	if err != nil {
		http.Error(w, "Failed to fetch dependencies", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, dependencies)
}

func (h *WorkflowHandler) GetTaskDependents(w http.ResponseWriter, r *http.Request) {
	taskID := mux.Vars(r)["taskId"]
	if taskID == "" {
		http.Error(w, "taskId is required", http.StatusBadRequest)
		return
	}

	dependents, err := h.service.GetDependents(r.Context(), taskID)
	if err != nil {
		http.Error(w, "Failed to fetch dependents", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, dependents)
}

// GetProjectGraph returns the mirrored task nodes of a project,
// including their blocked flags.
func (h *WorkflowHandler) GetProjectGraph(w http.ResponseWriter, r *http.Request) {
	projectID := mux.Vars(r)["projectId"]
	if projectID == "" {
		http.Error(w, "projectId is required", http.StatusBadRequest)
		return
	}

	nodes, err := h.service.GetProjectGraph(r.Context(), projectID)
	if err != nil {
		http.Error(w, "Failed to fetch project graph", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, nodes)
}
