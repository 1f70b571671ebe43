package handlers

import (
	"encoding/json"
	"net/http"

	"dashboard-service/models"
	"dashboard-service/services"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type MeetingHandler struct {
	service *services.MeetingService
}

func NewMeetingHandler(service *services.MeetingService) *MeetingHandler {
	return &MeetingHandler{service: service}
}

func (h *MeetingHandler) CreateMeeting(w http.ResponseWriter, r *http.Request) {
	if err := checkRole(r, []string{models.RoleAdmin, models.RoleTeamLeader}); err != nil {
		http.Error(w, "Access forbidden: insufficient permissions", http.StatusForbidden)
		return
	}

	var meeting models.Meeting
	if err := json.NewDecoder(r.Body).Decode(&meeting); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}
	if userID, err := callerID(r); err == nil {
		meeting.OrganizedBy = &userID
	}

	created, err := h.service.CreateMeeting(r.Context(), &meeting)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (h *MeetingHandler) GetMeeting(w http.ResponseWriter, r *http.Request) {
	meetingID, err := parseObjectID(mux.Vars(r)["meetingId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	meeting, err := h.service.GetMeeting(r.Context(), meetingID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, meeting)
}

func (h *MeetingHandler) GetMeetingsByProject(w http.ResponseWriter, r *http.Request) {
	projectID, err := parseObjectID(mux.Vars(r)["projectId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	meetings, err := h.service.GetMeetingsByProject(r.Context(), projectID)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, meetings)
}

func (h *MeetingHandler) StartMeeting(w http.ResponseWriter, r *http.Request) {
	meetingID, err := parseObjectID(mux.Vars(r)["meetingId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.StartMeeting(r.Context(), meetingID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Meeting started"})
}

func (h *MeetingHandler) CompleteMeeting(w http.ResponseWriter, r *http.Request) {
	meetingID, err := parseObjectID(mux.Vars(r)["meetingId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var body struct {
		Minutes string `json:"minutes"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	if err := h.service.CompleteMeeting(r.Context(), meetingID, body.Minutes); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Meeting completed"})
}

func (h *MeetingHandler) CancelMeeting(w http.ResponseWriter, r *http.Request) {
	meetingID, err := parseObjectID(mux.Vars(r)["meetingId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.CancelMeeting(r.Context(), meetingID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Meeting cancelled"})
}

func (h *MeetingHandler) AddActionItem(w http.ResponseWriter, r *http.Request) {
	meetingID, err := parseObjectID(mux.Vars(r)["meetingId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var body struct {
		Description string `json:"description"`
		AssignedTo  string `json:"assignedTo"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		http.Error(w, "Invalid request payload", http.StatusBadRequest)
		return
	}

	var assignedTo *primitive.ObjectID
	if body.AssignedTo != "" {
		id, err := parseObjectID(body.AssignedTo)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		assignedTo = &id
	}

	item, err := h.service.AddActionItem(r.Context(), meetingID, body.Description, assignedTo)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, item)
}

func (h *MeetingHandler) CompleteActionItem(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	meetingID, err := parseObjectID(vars["meetingId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	itemID, err := parseObjectID(vars["itemId"])
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.service.CompleteActionItem(r.Context(), meetingID, itemID); err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Action item completed"})
}
