package services

import (
	"context"
	"testing"
	"time"

	"dashboard-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMeanProgress(t *testing.T) {
	tests := []struct {
		name   string
		values []int
		want   int
	}{
		{"typical mix", []int{100, 60, 20}, 60},
		{"truncates toward zero", []int{50, 51}, 50},
		{"single value", []int{75}, 75},
		{"all complete", []int{100, 100, 100}, 100},
		{"all zero", []int{0, 0}, 0},
		{"empty", nil, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := MeanProgress(tc.values); got != tc.want {
				t.Errorf("MeanProgress(%v) = %d, want %d", tc.values, got, tc.want)
			}
		})
	}
}

// A failed progress rollup after creating a subtask surfaces to the
// caller the same way it does on update, report submission, and delete.
func TestCreateSubtaskSurfacesRollupFailure(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	mt.Run("rollup failure propagates", func(mt *mtest.T) {
		tasks := mt.Coll.Database().Collection("tasks")
		subtasks := mt.Coll.Database().Collection("subtasks")
		service := NewSubtaskService(subtasks, tasks, nil, nil)

		parentID := primitive.NewObjectID()
		mt.AddMockResponses(
			// parent task lookup
			mtest.CreateCursorResponse(1, "dashboard_db.tasks", mtest.FirstBatch, bson.D{
				{Key: "_id", Value: parentID},
				{Key: "name", Value: "Foundation"},
			}),
			// subtask insert
			mtest.CreateSuccessResponse(),
			// subtask listing during the rollup fails
			mtest.CreateCommandErrorResponse(mtest.CommandError{
				Code:    11600,
				Name:    "InterruptedAtShutdown",
				Message: "interrupted at shutdown",
			}),
		)

		day := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
		subtask := &models.Subtask{
			Name:         "Pour concrete",
			ParentTaskID: parentID,
			StartDate:    day,
			EndDate:      day,
		}

		created, err := service.CreateSubtask(context.Background(), subtask, true)
		if err == nil {
			t.Fatal("CreateSubtask returned nil error despite failed rollup")
		}
		if created != nil {
			t.Errorf("CreateSubtask returned %+v, want nil on rollup failure", created)
		}
	})
}
