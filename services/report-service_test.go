package services

import (
	"testing"

	"dashboard-service/models"
)

func TestSummarizeTasks(t *testing.T) {
	tasks := []models.Task{
		{Status: models.TaskCompleted, Progress: 100},
		{Status: models.TaskInProgress, Progress: 60},
		{Status: models.TaskOnHold, Progress: 20},
		{Status: models.TaskNotStarted, Progress: 0},
	}

	summary := SummarizeTasks(tasks)
	if summary.TotalTasks != 4 {
		t.Errorf("TotalTasks = %d, want 4", summary.TotalTasks)
	}
	if summary.CompletedTasks != 1 {
		t.Errorf("CompletedTasks = %d, want 1", summary.CompletedTasks)
	}
	if summary.InProgressTasks != 1 {
		t.Errorf("InProgressTasks = %d, want 1", summary.InProgressTasks)
	}
	if summary.OnHoldTasks != 1 {
		t.Errorf("OnHoldTasks = %d, want 1", summary.OnHoldTasks)
	}
	if summary.OverallProgress != 45 {
		t.Errorf("OverallProgress = %d, want 45", summary.OverallProgress)
	}
}

func TestSummarizeTasksEmpty(t *testing.T) {
	summary := SummarizeTasks(nil)
	if summary.TotalTasks != 0 || summary.OverallProgress != 0 {
		t.Errorf("expected zero summary, got %+v", summary)
	}
}
