package services

import (
	"context"
	"fmt"
	"time"

	"dashboard-service/logging"
	"dashboard-service/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// TaskService owns task CRUD, assignment, the dependency list, and the
// task approval cycle. Dependency edges are validated through the graph
// mirror before Mongo is touched, so the stored lists can never encode
// a cycle.
type TaskService struct {
	TasksCollection    *mongo.Collection
	SubtasksCollection *mongo.Collection
	ProjectsCollection *mongo.Collection
	MembersCollection  *mongo.Collection
	Workflow           *WorkflowService
	Notifier           Notifier
}

func NewTaskService(tasks, subtasks, projects, members *mongo.Collection, workflow *WorkflowService, notifier Notifier) *TaskService {
	return &TaskService{
		TasksCollection:    tasks,
		SubtasksCollection: subtasks,
		ProjectsCollection: projects,
		MembersCollection:  members,
		Workflow:           workflow,
		Notifier:           notifier,
	}
}

func (s *TaskService) CreateTask(ctx context.Context, task *models.Task) (*models.Task, error) {
	if task.Name == "" {
		return nil, &models.ValidationError{Field: "name", Reason: "name is required"}
	}
	if task.EndDate.Before(task.StartDate) {
		return nil, &models.ValidationError{Field: "endDate", Reason: "end date must not be before start date"}
	}
	if task.Status == "" {
		task.Status = models.TaskNotStarted
	}
	if !models.ValidTaskStatus(task.Status) {
		return nil, &models.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", task.Status)}
	}
	if task.Progress < 0 || task.Progress > 100 {
		return nil, &models.ValidationError{Field: "progress", Reason: "progress must be between 0 and 100"}
	}

	count, err := s.ProjectsCollection.CountDocuments(ctx, bson.M{"_id": task.ProjectID})
	if err != nil {
		return nil, fmt.Errorf("failed to check project: %v", err)
	}
	if count == 0 {
		return nil, models.ErrNotFound
	}

	task.ID = primitive.NewObjectID()
	if task.AssignedMembers == nil {
		task.AssignedMembers = []primitive.ObjectID{}
	}
	if task.Dependencies == nil {
		task.Dependencies = []primitive.ObjectID{}
	}

	if _, err := s.TasksCollection.InsertOne(ctx, task); err != nil {
		return nil, &models.PersistenceError{Op: "create task", Err: err}
	}

	if err := s.Workflow.EnsureTaskNode(ctx, models.TaskNode{
		ID:        task.ID.Hex(),
		ProjectID: task.ProjectID.Hex(),
		Name:      task.Name,
		Status:    string(task.Status),
	}); err != nil {
		logging.Logger.Warnf("Event ID: GRAPH_MIRROR_FAILED, Description: Failed to mirror task %s into the graph: %v", task.ID.Hex(), err)
	}

	logging.Logger.Infof("Event ID: TASK_CREATED, Description: Task %s created in project %s", task.ID.Hex(), task.ProjectID.Hex())
	return task, nil
}

func (s *TaskService) GetTask(ctx context.Context, taskID primitive.ObjectID) (*models.Task, error) {
	var task models.Task
	if err := s.TasksCollection.FindOne(ctx, bson.M{"_id": taskID}).Decode(&task); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, models.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch task: %v", err)
	}
	return &task, nil
}

func (s *TaskService) GetTasksByProject(ctx context.Context, projectID primitive.ObjectID) ([]models.Task, error) {
	cursor, err := s.TasksCollection.Find(ctx, bson.M{"projectId": projectID})
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks: %v", err)
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %v", err)
	}
	return tasks, nil
}

// UpdateTaskStatus moves a task to a new status and refreshes the graph
// mirror so dependents' blocked flags track the change.
func (s *TaskService) UpdateTaskStatus(ctx context.Context, taskID primitive.ObjectID, status models.TaskStatus) error {
	if !models.ValidTaskStatus(status) {
		return &models.ValidationError{Field: "status", Reason: fmt.Sprintf("unknown status %q", status)}
	}

	task, err := s.GetTask(ctx, taskID)
	if err != nil {
		return err
	}

	update := bson.M{"status": status}
	if status == models.TaskCompleted {
		update["progress"] = 100
	}
	if _, err := s.TasksCollection.UpdateOne(ctx, bson.M{"_id": taskID}, bson.M{"$set": update}); err != nil {
		return &models.PersistenceError{Op: "update task status", Err: err}
	}

	if err := s.Workflow.EnsureTaskNode(ctx, models.TaskNode{
		ID:        taskID.Hex(),
		ProjectID: task.ProjectID.Hex(),
		Name:      task.Name,
		Status:    string(status),
	}); err != nil {
		logging.Logger.Warnf("Event ID: GRAPH_MIRROR_FAILED, Description: Failed to mirror status of task %s: %v", taskID.Hex(), err)
	} else {
		dependents, err := s.Workflow.GetDependents(ctx, taskID.Hex())
		if err != nil {
			logging.Logger.Warnf("Event ID: GRAPH_QUERY_FAILED, Description: Failed to fetch dependents of task %s: %v", taskID.Hex(), err)
		} else {
			for _, dep := range dependents {
				if err := s.Workflow.UpdateBlockedStatus(ctx, dep.ID); err != nil {
					logging.Logger.Warnf("Event ID: GRAPH_MIRROR_FAILED, Description: Failed to refresh blocked flag of task %s: %v", dep.ID, err)
				}
			}
		}
	}
	return nil
}

// AssignMember adds a team member to the task. The member must belong
// to the task's project.
func (s *TaskService) AssignMember(ctx context.Context, taskID, memberID primitive.ObjectID) error {
	task, err := s.GetTask(ctx, taskID)
	if err != nil {
		return err
	}

	var member models.TeamMember
	if err := s.MembersCollection.FindOne(ctx, bson.M{"_id": memberID}).Decode(&member); err != nil {
		if err == mongo.ErrNoDocuments {
			return models.ErrNotFound
		}
		return fmt.Errorf("failed to fetch team member: %v", err)
	}
	if member.ProjectID != task.ProjectID {
		return &models.ValidationError{Field: "memberId", Reason: "member does not belong to the task's project"}
	}
	if task.IsAssigned(memberID) {
		return &models.ValidationError{Field: "memberId", Reason: "member is already assigned"}
	}

	if _, err := s.TasksCollection.UpdateOne(ctx,
		bson.M{"_id": taskID},
		bson.M{"$addToSet": bson.M{"assignedMembers": memberID}},
	); err != nil {
		return &models.PersistenceError{Op: "assign member", Err: err}
	}

	if err := s.Notifier.NotifyMembers(ctx, []primitive.ObjectID{memberID},
		fmt.Sprintf("You have been assigned to task %q", task.Name)); err != nil {
		logging.Logger.Warnf("Event ID: TASK_NOTIFY_FAILED, Description: Failed to notify member %s: %v", memberID.Hex(), err)
	}
	return nil
}

func (s *TaskService) UnassignMember(ctx context.Context, taskID, memberID primitive.ObjectID) error {
	result, err := s.TasksCollection.UpdateOne(ctx,
		bson.M{"_id": taskID},
		bson.M{"$pull": bson.M{"assignedMembers": memberID}},
	)
	if err != nil {
		return &models.PersistenceError{Op: "unassign member", Err: err}
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}
	return nil
}

// AddDependency records that taskID cannot start until dependsOnID
// finishes. Both tasks must exist in the same project, a task cannot
// depend on itself, and the graph mirror vetoes anything that would
// close a cycle.
func (s *TaskService) AddDependency(ctx context.Context, taskID, dependsOnID primitive.ObjectID) error {
	if taskID == dependsOnID {
		return &models.ValidationError{Field: "dependsOn", Reason: "a task cannot depend on itself"}
	}

	task, err := s.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	prerequisite, err := s.GetTask(ctx, dependsOnID)
	if err != nil {
		return err
	}
	if task.ProjectID != prerequisite.ProjectID {
		return &models.ValidationError{Field: "dependsOn", Reason: "tasks belong to different projects"}
	}
	if task.DependsOn(dependsOnID) {
		return &models.ValidationError{Field: "dependsOn", Reason: "dependency already exists"}
	}

	// The graph rejects cycles and duplicates before Mongo sees the edge.
	if err := s.Workflow.AddDependency(ctx, models.TaskDependencyRelation{
		FromTaskID: dependsOnID.Hex(),
		ToTaskID:   taskID.Hex(),
	}); err != nil {
		return err
	}

	if _, err := s.TasksCollection.UpdateOne(ctx,
		bson.M{"_id": taskID},
		bson.M{"$addToSet": bson.M{"dependencies": dependsOnID}},
	); err != nil {
		return &models.PersistenceError{Op: "add dependency", Err: err}
	}
	return nil
}

func (s *TaskService) RemoveDependency(ctx context.Context, taskID, dependsOnID primitive.ObjectID) error {
	result, err := s.TasksCollection.UpdateOne(ctx,
		bson.M{"_id": taskID},
		bson.M{"$pull": bson.M{"dependencies": dependsOnID}},
	)
	if err != nil {
		return &models.PersistenceError{Op: "remove dependency", Err: err}
	}
	if result.MatchedCount == 0 {
		return models.ErrNotFound
	}

	if err := s.Workflow.RemoveDependency(ctx, models.TaskDependencyRelation{
		FromTaskID: dependsOnID.Hex(),
		ToTaskID:   taskID.Hex(),
	}); err != nil {
		logging.Logger.Warnf("Event ID: GRAPH_MIRROR_FAILED, Description: Failed to remove graph edge %s -> %s: %v", taskID.Hex(), dependsOnID.Hex(), err)
	}
	return nil
}

// SubmitTaskForApproval puts a task that requires approval into the
// Pending Approval state.
func (s *TaskService) SubmitTaskForApproval(ctx context.Context, taskID primitive.ObjectID) error {
	task, err := s.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	if !task.RequiresApproval {
		return &models.ValidationError{Field: "requiresApproval", Reason: "task does not require approval"}
	}
	if task.ApprovalStatus == models.ApprovalPending {
		return models.ErrInvalidState
	}

	if _, err := s.TasksCollection.UpdateOne(ctx,
		bson.M{"_id": taskID},
		bson.M{"$set": bson.M{"approvalStatus": models.ApprovalPending}},
	); err != nil {
		return &models.PersistenceError{Op: "submit task for approval", Err: err}
	}
	return nil
}

// ApproveTask resolves a pending approval. Only Pending Approval tasks
// can be approved; the conditional filter enforces that under races.
func (s *TaskService) ApproveTask(ctx context.Context, taskID, approverID primitive.ObjectID) error {
	now := time.Now()
	result, err := s.TasksCollection.UpdateOne(ctx,
		bson.M{"_id": taskID, "approvalStatus": models.ApprovalPending},
		bson.M{"$set": bson.M{
			"approvalStatus": models.ApprovalApproved,
			"approvedBy":     approverID,
			"approvalDate":   now,
		}},
	)
	if err != nil {
		return &models.PersistenceError{Op: "approve task", Err: err}
	}
	if result.MatchedCount == 0 {
		if _, getErr := s.GetTask(ctx, taskID); getErr != nil {
			return getErr
		}
		return models.ErrInvalidState
	}

	s.notifyAssigned(ctx, taskID, "has been approved")
	return nil
}

func (s *TaskService) RejectTask(ctx context.Context, taskID, reviewerID primitive.ObjectID, reason string) error {
	now := time.Now()
	result, err := s.TasksCollection.UpdateOne(ctx,
		bson.M{"_id": taskID, "approvalStatus": models.ApprovalPending},
		bson.M{"$set": bson.M{
			"approvalStatus":  models.ApprovalRejected,
			"reviewedBy":      reviewerID,
			"reviewDate":      now,
			"rejectionReason": reason,
		}},
	)
	if err != nil {
		return &models.PersistenceError{Op: "reject task", Err: err}
	}
	if result.MatchedCount == 0 {
		if _, getErr := s.GetTask(ctx, taskID); getErr != nil {
			return getErr
		}
		return models.ErrInvalidState
	}

	s.notifyAssigned(ctx, taskID, "has been rejected")
	return nil
}

// GetTasksAwaitingApproval lists tasks in Pending Approval, optionally
// narrowed to one project.
func (s *TaskService) GetTasksAwaitingApproval(ctx context.Context, projectID *primitive.ObjectID) ([]models.Task, error) {
	query := bson.M{"approvalStatus": models.ApprovalPending}
	if projectID != nil {
		query["projectId"] = *projectID
	}

	cursor, err := s.TasksCollection.Find(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch tasks awaiting approval: %v", err)
	}
	defer cursor.Close(ctx)

	var tasks []models.Task
	if err := cursor.All(ctx, &tasks); err != nil {
		return nil, fmt.Errorf("failed to decode tasks: %v", err)
	}
	return tasks, nil
}

// DeleteTask removes the task, its subtasks, its graph node, and its id
// from other tasks' dependency lists.
func (s *TaskService) DeleteTask(ctx context.Context, taskID primitive.ObjectID) error {
	result, err := s.TasksCollection.DeleteOne(ctx, bson.M{"_id": taskID})
	if err != nil {
		return &models.PersistenceError{Op: "delete task", Err: err}
	}
	if result.DeletedCount == 0 {
		return models.ErrNotFound
	}

	if _, err := s.SubtasksCollection.DeleteMany(ctx, bson.M{"parentTaskId": taskID}); err != nil {
		return &models.PersistenceError{Op: "delete subtasks", Err: err}
	}
	if _, err := s.TasksCollection.UpdateMany(ctx,
		bson.M{"dependencies": taskID},
		bson.M{"$pull": bson.M{"dependencies": taskID}},
	); err != nil {
		return &models.PersistenceError{Op: "detach dependents", Err: err}
	}

	if err := s.Workflow.RemoveTaskNode(ctx, taskID.Hex()); err != nil {
		logging.Logger.Warnf("Event ID: GRAPH_MIRROR_FAILED, Description: Failed to remove graph node for task %s: %v", taskID.Hex(), err)
	}

	logging.Logger.Infof("Event ID: TASK_DELETED, Description: Task %s deleted", taskID.Hex())
	return nil
}

func (s *TaskService) notifyAssigned(ctx context.Context, taskID primitive.ObjectID, suffix string) {
	task, err := s.GetTask(ctx, taskID)
	if err != nil {
		return
	}
	message := fmt.Sprintf("Task %q %s", task.Name, suffix)
	if err := s.Notifier.NotifyMembers(ctx, task.AssignedMembers, message); err != nil {
		logging.Logger.Warnf("Event ID: TASK_NOTIFY_FAILED, Description: Failed to notify assigned members of task %s: %v", taskID.Hex(), err)
	}
}
