package models

import (
	"errors"
	"testing"
	"time"
)

func TestApplyTaskChanges(t *testing.T) {
	base := Task{
		Name:     "Original",
		Status:   TaskNotStarted,
		Priority: "Low",
		Progress: 10,
	}

	task := base
	changes := map[string]any{
		"name":     "Renamed",
		"status":   "In Progress",
		"priority": "High",
		"progress": float64(40),
		"endDate":  "2026-04-01",
	}
	if err := ApplyTaskChanges(&task, changes); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if task.Name != "Renamed" {
		t.Errorf("Name = %q, want Renamed", task.Name)
	}
	if task.Status != TaskInProgress {
		t.Errorf("Status = %q, want In Progress", task.Status)
	}
	if task.Priority != "High" {
		t.Errorf("Priority = %q, want High", task.Priority)
	}
	if task.Progress != 40 {
		t.Errorf("Progress = %d, want 40", task.Progress)
	}
	want := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	if !task.EndDate.Equal(want) {
		t.Errorf("EndDate = %s, want %s", task.EndDate, want)
	}
	if task.Description != base.Description {
		t.Errorf("Description changed unexpectedly")
	}
}

func TestApplyTaskChangesRejectsBadInput(t *testing.T) {
	tests := []struct {
		name    string
		changes map[string]any
	}{
		{"unknown field", map[string]any{"assignedMembers": []string{"x"}}},
		{"bad status", map[string]any{"status": "Done"}},
		{"progress out of range", map[string]any{"progress": 150}},
		{"progress wrong type", map[string]any{"progress": "lots"}},
		{"unparseable date", map[string]any{"endDate": "next tuesday"}},
		{"name wrong type", map[string]any{"name": 7}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			task := Task{Name: "Untouched", Progress: 10}
			err := ApplyTaskChanges(&task, tc.changes)
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			var validationErr *ValidationError
			if !errors.As(err, &validationErr) {
				t.Errorf("expected ValidationError, got %T", err)
			}
		})
	}
}

func TestApplySubtaskChanges(t *testing.T) {
	subtask := Subtask{Name: "Original", Progress: 0}
	changes := map[string]any{
		"description": "More detail",
		"progress":    55,
		"startDate":   time.Date(2026, time.May, 2, 0, 0, 0, 0, time.UTC),
	}
	if err := ApplySubtaskChanges(&subtask, changes); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if subtask.Description != "More detail" {
		t.Errorf("Description = %q", subtask.Description)
	}
	if subtask.Progress != 55 {
		t.Errorf("Progress = %d, want 55", subtask.Progress)
	}
}

func TestApplySubtaskChangesRejectsPriority(t *testing.T) {
	subtask := Subtask{}
	err := ApplySubtaskChanges(&subtask, map[string]any{"priority": "High"})
	if err == nil {
		t.Fatal("expected error for priority on a subtask")
	}
}
