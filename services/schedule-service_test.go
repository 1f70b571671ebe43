package services

import (
	"testing"
	"time"

	"dashboard-service/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func day(yyyy int, mm time.Month, dd int) time.Time {
	return time.Date(yyyy, mm, dd, 0, 0, 0, 0, time.UTC)
}

func TestComputeScheduleImpactShiftsDependents(t *testing.T) {
	task := &models.Task{
		ID:      primitive.NewObjectID(),
		Name:    "Foundation",
		EndDate: day(2026, time.March, 10),
	}
	dep := models.Task{
		ID:        primitive.NewObjectID(),
		Name:      "Framing",
		StartDate: day(2026, time.March, 11),
		EndDate:   day(2026, time.March, 20),
	}

	impacted := ComputeScheduleImpact(task, []models.Task{dep}, day(2026, time.March, 15))
	if len(impacted) != 1 {
		t.Fatalf("expected 1 impacted task, got %d", len(impacted))
	}

	entry := impacted[0]
	if entry.ImpactDays != 5 {
		t.Errorf("expected 5 impact days, got %d", entry.ImpactDays)
	}
	if !entry.NewStart.Equal(day(2026, time.March, 16)) {
		t.Errorf("expected new start 2026-03-16, got %s", entry.NewStart)
	}
	if !entry.NewEnd.Equal(day(2026, time.March, 25)) {
		t.Errorf("expected new end 2026-03-25, got %s", entry.NewEnd)
	}
}

func TestComputeScheduleImpactNoDelay(t *testing.T) {
	task := &models.Task{EndDate: day(2026, time.March, 10)}
	dep := models.Task{
		StartDate: day(2026, time.March, 11),
		EndDate:   day(2026, time.March, 20),
	}

	tests := []struct {
		name        string
		proposedEnd time.Time
	}{
		{"same end date", day(2026, time.March, 10)},
		{"earlier end date", day(2026, time.March, 5)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := ComputeScheduleImpact(task, []models.Task{dep}, tc.proposedEnd); len(got) != 0 {
				t.Errorf("expected no impact, got %d entries", len(got))
			}
		})
	}
}

func TestComputeScheduleImpactExcludesOverlappingDependents(t *testing.T) {
	task := &models.Task{EndDate: day(2026, time.March, 10)}
	dependents := []models.Task{
		{
			Name:      "already running",
			StartDate: day(2026, time.March, 5),
			EndDate:   day(2026, time.March, 18),
		},
		{
			Name:      "gated",
			StartDate: day(2026, time.March, 10),
			EndDate:   day(2026, time.March, 18),
		},
	}

	impacted := ComputeScheduleImpact(task, dependents, day(2026, time.March, 12))
	if len(impacted) != 1 {
		t.Fatalf("expected 1 impacted task, got %d", len(impacted))
	}
	if impacted[0].TaskName != "gated" {
		t.Errorf("expected only the gated dependent, got %q", impacted[0].TaskName)
	}
}

func TestComputeScheduleImpactNoDependents(t *testing.T) {
	task := &models.Task{EndDate: day(2026, time.March, 10)}
	if got := ComputeScheduleImpact(task, nil, day(2026, time.March, 20)); len(got) != 0 {
		t.Errorf("expected no impact without dependents, got %d entries", len(got))
	}
}

func TestDaysBetween(t *testing.T) {
	tests := []struct {
		name string
		a, b time.Time
		want int
	}{
		{"five days forward", day(2026, time.March, 10), day(2026, time.March, 15), 5},
		{"same day", day(2026, time.March, 10), day(2026, time.March, 10), 0},
		{"backwards", day(2026, time.March, 15), day(2026, time.March, 10), -5},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := DaysBetween(tc.a, tc.b); got != tc.want {
				t.Errorf("DaysBetween(%s, %s) = %d, want %d", tc.a, tc.b, got, tc.want)
			}
		})
	}
}
