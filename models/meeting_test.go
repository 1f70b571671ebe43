package models

import "testing"

func TestCanTransitionMeeting(t *testing.T) {
	tests := []struct {
		name string
		from MeetingStatus
		to   MeetingStatus
		want bool
	}{
		{"scheduled to in progress", MeetingScheduled, MeetingInProgress, true},
		{"scheduled to cancelled", MeetingScheduled, MeetingCancelled, true},
		{"in progress to completed", MeetingInProgress, MeetingCompleted, true},
		{"scheduled to completed", MeetingScheduled, MeetingCompleted, false},
		{"in progress to cancelled", MeetingInProgress, MeetingCancelled, false},
		{"completed is terminal", MeetingCompleted, MeetingInProgress, false},
		{"cancelled is terminal", MeetingCancelled, MeetingScheduled, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := CanTransitionMeeting(tc.from, tc.to); got != tc.want {
				t.Errorf("CanTransitionMeeting(%q, %q) = %v, want %v", tc.from, tc.to, got, tc.want)
			}
		})
	}
}
