package services

import (
	"testing"

	"dashboard-service/models"
)

func TestMeetingsMentionTask(t *testing.T) {
	meetings := []models.Meeting{
		{
			Title:   "Sprint planning",
			Agenda:  "Discuss Foundation Work kickoff",
			Minutes: "Agreed on staffing",
		},
		{
			Title: "Retro",
			ActionItems: []models.ActionItem{
				{Description: "Follow up on electrical rough-in"},
			},
		},
	}

	tests := []struct {
		name     string
		taskName string
		want     bool
	}{
		{"mentioned in agenda", "Foundation Work", true},
		{"case insensitive", "foundation work", true},
		{"mentioned in action item", "Electrical Rough-In", true},
		{"not mentioned", "Roofing", false},
		{"empty task name", "", false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := MeetingsMentionTask(meetings, tc.taskName); got != tc.want {
				t.Errorf("MeetingsMentionTask(%q) = %v, want %v", tc.taskName, got, tc.want)
			}
		})
	}
}
