package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"dashboard-service/middleware"
	"dashboard-service/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fakeAccessChecker struct {
	allow        bool
	taskCalls    int
	subtaskCalls int
}

func (f *fakeAccessChecker) CanAccessTask(ctx context.Context, userID, taskID primitive.ObjectID) (bool, error) {
	f.taskCalls++
	return f.allow, nil
}

func (f *fakeAccessChecker) CanAccessSubtask(ctx context.Context, userID, subtaskID primitive.ObjectID) (bool, error) {
	f.subtaskCalls++
	return f.allow, nil
}

func newCreateRequest(t *testing.T, targetType string, targetID primitive.ObjectID, authenticated bool) *http.Request {
	t.Helper()
	body := `{"targetType":"` + targetType + `","targetId":"` + targetID.Hex() + `","proposedChanges":{"progress":50}}`
	req := httptest.NewRequest(http.MethodPost, "/api/change-requests", strings.NewReader(body))
	if authenticated {
		ctx := middleware.WithIdentity(req.Context(), primitive.NewObjectID().Hex(), "pperic", models.RoleTeamMember)
		req = req.WithContext(ctx)
	}
	return req
}

func TestCreateChangeRequestDeniedForInaccessibleTask(t *testing.T) {
	checker := &fakeAccessChecker{allow: false}
	handler := NewChangeRequestHandler(nil, checker)

	rr := httptest.NewRecorder()
	handler.CreateChangeRequest(rr, newCreateRequest(t, "task", primitive.NewObjectID(), true))

	if rr.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusForbidden)
	}
	if checker.taskCalls != 1 {
		t.Errorf("taskCalls = %d, want 1", checker.taskCalls)
	}
}

func TestCreateChangeRequestDeniedForInaccessibleSubtask(t *testing.T) {
	checker := &fakeAccessChecker{allow: false}
	handler := NewChangeRequestHandler(nil, checker)

	rr := httptest.NewRecorder()
	handler.CreateChangeRequest(rr, newCreateRequest(t, "subtask", primitive.NewObjectID(), true))

	if rr.Code != http.StatusForbidden {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusForbidden)
	}
	if checker.subtaskCalls != 1 {
		t.Errorf("subtaskCalls = %d, want 1", checker.subtaskCalls)
	}
}

func TestCreateChangeRequestRequiresIdentity(t *testing.T) {
	checker := &fakeAccessChecker{allow: true}
	handler := NewChangeRequestHandler(nil, checker)

	rr := httptest.NewRecorder()
	handler.CreateChangeRequest(rr, newCreateRequest(t, "task", primitive.NewObjectID(), false))

	if rr.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusUnauthorized)
	}
	if checker.taskCalls != 0 {
		t.Errorf("taskCalls = %d, want 0", checker.taskCalls)
	}
}

func TestCreateChangeRequestRejectsUnknownTargetType(t *testing.T) {
	checker := &fakeAccessChecker{allow: true}
	handler := NewChangeRequestHandler(nil, checker)

	rr := httptest.NewRecorder()
	handler.CreateChangeRequest(rr, newCreateRequest(t, "project", primitive.NewObjectID(), true))

	if rr.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", rr.Code, http.StatusBadRequest)
	}
	if checker.taskCalls != 0 || checker.subtaskCalls != 0 {
		t.Errorf("checker calls = %d/%d, want none", checker.taskCalls, checker.subtaskCalls)
	}
}
