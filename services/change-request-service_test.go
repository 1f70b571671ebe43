package services

import (
	"testing"
	"time"

	"dashboard-service/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestSnapshotDocument(t *testing.T) {
	task := models.Task{
		ID:       primitive.NewObjectID(),
		Name:     "Foundation",
		Status:   models.TaskInProgress,
		Progress: 40,
		EndDate:  time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC),
	}

	snapshot, err := snapshotDocument(task)
	if err != nil {
		t.Fatalf("snapshotDocument failed: %v", err)
	}

	if snapshot["name"] != "Foundation" {
		t.Errorf("name = %v, want Foundation", snapshot["name"])
	}
	if snapshot["status"] != string(models.TaskInProgress) {
		t.Errorf("status = %v, want %q", snapshot["status"], models.TaskInProgress)
	}
	if progress, ok := snapshot["progress"].(int32); !ok || progress != 40 {
		t.Errorf("progress = %v (%T), want 40", snapshot["progress"], snapshot["progress"])
	}
}

func TestChangeRequestTargetType(t *testing.T) {
	taskID := primitive.NewObjectID()
	subtaskID := primitive.NewObjectID()

	taskRequest := models.ChangeRequest{TaskID: &taskID}
	if got := taskRequest.TargetType(); got != models.TargetTask {
		t.Errorf("TargetType() = %q, want task", got)
	}

	subtaskRequest := models.ChangeRequest{SubtaskID: &subtaskID}
	if got := subtaskRequest.TargetType(); got != models.TargetSubtask {
		t.Errorf("TargetType() = %q, want subtask", got)
	}
}

func TestChangeRequestCanResolve(t *testing.T) {
	tests := []struct {
		name    string
		status  models.ChangeRequestStatus
		wantErr error
	}{
		{"pending is resolvable", models.RequestPending, nil},
		{"approved is final", models.RequestApproved, models.ErrInvalidState},
		{"rejected is final", models.RequestRejected, models.ErrInvalidState},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := models.ChangeRequest{Status: tt.status}
			if err := request.CanResolve(); err != tt.wantErr {
				t.Errorf("CanResolve() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}
