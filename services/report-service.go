package services

import (
	"context"
	"time"

	"dashboard-service/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProjectReport is the structured export of one project's state. It is
// plain data so consumers can render it however they like.
type ProjectReport struct {
	GeneratedAt time.Time              `json:"generatedAt"`
	Project     models.Project         `json:"project"`
	Summary     ReportSummary          `json:"summary"`
	Timeline    []TimelineEntry        `json:"timeline"`
	Team        []models.TeamMember    `json:"team"`
	Meetings    []MeetingSummary       `json:"meetings"`
	Requests    []models.ChangeRequest `json:"changeRequests"`
}

// ReportSummary rolls the task list up into headline numbers.
type ReportSummary struct {
	TotalTasks      int `json:"totalTasks"`
	CompletedTasks  int `json:"completedTasks"`
	InProgressTasks int `json:"inProgressTasks"`
	OnHoldTasks     int `json:"onHoldTasks"`
	OverallProgress int `json:"overallProgress"`
}

// TimelineEntry is one task as it appears on the project timeline.
type TimelineEntry struct {
	TaskID    primitive.ObjectID `json:"taskId"`
	Name      string             `json:"name"`
	StartDate time.Time          `json:"startDate"`
	EndDate   time.Time          `json:"endDate"`
	Status    models.TaskStatus  `json:"status"`
	Progress  int                `json:"progress"`
	Priority  string             `json:"priority"`
}

// MeetingSummary is the report view of a meeting: no minutes body, just
// the facts.
type MeetingSummary struct {
	MeetingID   primitive.ObjectID   `json:"meetingId"`
	Title       string               `json:"title"`
	ScheduledAt time.Time            `json:"scheduledAt"`
	Status      models.MeetingStatus `json:"status"`
	ActionItems int                  `json:"actionItems"`
}

// ReportService assembles project reports from the other services. It
// only reads; rendering is the consumer's problem.
type ReportService struct {
	Projects *ProjectService
	Tasks    *TaskService
	Team     *TeamService
	Meetings *MeetingService
	Requests *ChangeRequestService
}

func NewReportService(projects *ProjectService, tasks *TaskService, team *TeamService, meetings *MeetingService, requests *ChangeRequestService) *ReportService {
	return &ReportService{
		Projects: projects,
		Tasks:    tasks,
		Team:     team,
		Meetings: meetings,
		Requests: requests,
	}
}

func (s *ReportService) BuildProjectReport(ctx context.Context, projectID primitive.ObjectID) (*ProjectReport, error) {
	project, err := s.Projects.GetProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	tasks, err := s.Tasks.GetTasksByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	team, err := s.Team.GetTeamMembersByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	meetings, err := s.Meetings.GetMeetingsByProject(ctx, projectID)
	if err != nil {
		return nil, err
	}

	pending, err := s.Requests.ListChangeRequests(ctx, ChangeRequestFilter{Status: models.RequestPending})
	if err != nil {
		return nil, err
	}
	taskIDs := make(map[primitive.ObjectID]bool, len(tasks))
	for _, t := range tasks {
		taskIDs[t.ID] = true
	}
	requests := make([]models.ChangeRequest, 0)
	for _, r := range pending {
		if r.TaskID != nil && taskIDs[*r.TaskID] {
			requests = append(requests, r)
		}
	}

	report := &ProjectReport{
		GeneratedAt: time.Now(),
		Project:     *project,
		Summary:     SummarizeTasks(tasks),
		Timeline:    make([]TimelineEntry, 0, len(tasks)),
		Team:        team,
		Meetings:    make([]MeetingSummary, 0, len(meetings)),
		Requests:    requests,
	}

	for _, t := range tasks {
		report.Timeline = append(report.Timeline, TimelineEntry{
			TaskID:    t.ID,
			Name:      t.Name,
			StartDate: t.StartDate,
			EndDate:   t.EndDate,
			Status:    t.Status,
			Progress:  t.Progress,
			Priority:  t.Priority,
		})
	}
	for _, m := range meetings {
		report.Meetings = append(report.Meetings, MeetingSummary{
			MeetingID:   m.ID,
			Title:       m.Title,
			ScheduledAt: m.ScheduledAt,
			Status:      m.Status,
			ActionItems: len(m.ActionItems),
		})
	}
	return report, nil
}

// SummarizeTasks computes the headline numbers for a task list. Overall
// progress is the truncated mean across all tasks.
func SummarizeTasks(tasks []models.Task) ReportSummary {
	summary := ReportSummary{TotalTasks: len(tasks)}
	if len(tasks) == 0 {
		return summary
	}

	sum := 0
	for _, t := range tasks {
		sum += t.Progress
		switch t.Status {
		case models.TaskCompleted:
			summary.CompletedTasks++
		case models.TaskInProgress:
			summary.InProgressTasks++
		case models.TaskOnHold:
			summary.OnHoldTasks++
		}
	}
	summary.OverallProgress = sum / len(tasks)
	return summary
}
