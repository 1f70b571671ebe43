package services

import (
	"context"
	"fmt"

	"dashboard-service/logging"
	"dashboard-service/models"

	"github.com/neo4j/neo4j-go-driver/v5/neo4j"
)

// WorkflowService mirrors task dependency edges into a graph database.
// The graph answers the questions Mongo is bad at: cycle detection
// before an edge is written and blocked-status propagation.
type WorkflowService struct {
	Driver neo4j.DriverWithContext
}

func NewWorkflowService(driver neo4j.DriverWithContext) *WorkflowService {
	return &WorkflowService{Driver: driver}
}

// EnsureTaskNode upserts the graph projection of a task.
func (s *WorkflowService) EnsureTaskNode(ctx context.Context, task models.TaskNode) error {
	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MERGE (t:Task {id: $id})
			SET t.projectId = $projectId,
				t.name = $name,
				t.status = $status
			WITH t
			FOREACH (_ IN CASE WHEN t.blocked IS NULL THEN [1] ELSE [] END |
				SET t.blocked = false)
		`
		_, err := tx.Run(ctx, query, map[string]any{
			"id":        task.ID,
			"projectId": task.ProjectID,
			"name":      task.Name,
			"status":    task.Status,
		})
		return nil, err
	})
	return err
}

// AddDependency records that the dependent task cannot proceed until the
// prerequisite is done. Rejects missing nodes, duplicate edges, and any
// edge that would close a cycle.
func (s *WorkflowService) AddDependency(ctx context.Context, rel models.TaskDependencyRelation) error {
	exist, err := s.TasksExist(ctx, rel.FromTaskID, rel.ToTaskID)
	if err != nil {
		return fmt.Errorf("failed to check task existence: %v", err)
	}
	if !exist {
		return models.ErrNotFound
	}

	exists, err := s.DependencyExists(ctx, rel.FromTaskID, rel.ToTaskID)
	if err != nil {
		return fmt.Errorf("failed to check if dependency exists: %v", err)
	}
	if exists {
		return &models.ValidationError{Field: "dependency", Reason: "dependency already exists"}
	}

	hasCycle, err := s.CreatesCycle(ctx, rel.FromTaskID, rel.ToTaskID)
	if err != nil {
		return fmt.Errorf("failed to check cycle: %v", err)
	}
	if hasCycle {
		return &models.ValidationError{Field: "dependency", Reason: "dependency would create a cycle"}
	}

	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (from:Task {id: $fromId}), (to:Task {id: $toId})
			MERGE (to)-[:DEPENDS_ON]->(from)
		`
		_, err := tx.Run(ctx, query, map[string]any{
			"fromId": rel.FromTaskID,
			"toId":   rel.ToTaskID,
		})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("failed to create dependency relation: %v", err)
	}

	if err := s.UpdateBlockedStatus(ctx, rel.ToTaskID); err != nil {
		return err
	}

	logging.Logger.Infof("Event ID: DEPENDENCY_ADDED, Description: Dependency added: %s <- %s", rel.ToTaskID, rel.FromTaskID)
	return nil
}

// RemoveDependency deletes the edge and recomputes the dependent's
// blocked flag. Removing an edge that does not exist is a no-op.
func (s *WorkflowService) RemoveDependency(ctx context.Context, rel models.TaskDependencyRelation) error {
	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err := session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (to:Task {id: $toId})-[r:DEPENDS_ON]->(from:Task {id: $fromId})
			DELETE r
		`
		_, err := tx.Run(ctx, query, map[string]any{
			"fromId": rel.FromTaskID,
			"toId":   rel.ToTaskID,
		})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("failed to remove dependency relation: %v", err)
	}

	return s.UpdateBlockedStatus(ctx, rel.ToTaskID)
}

// RemoveTaskNode detaches and deletes the node, then recomputes the
// blocked flag of everything that depended on it.
func (s *WorkflowService) RemoveTaskNode(ctx context.Context, taskID string) error {
	dependents, err := s.GetDependents(ctx, taskID)
	if err != nil {
		return err
	}

	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `MATCH (t:Task {id: $taskId}) DETACH DELETE t`
		_, err := tx.Run(ctx, query, map[string]any{"taskId": taskID})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("failed to remove task node: %v", err)
	}

	for _, dep := range dependents {
		if err := s.UpdateBlockedStatus(ctx, dep.ID); err != nil {
			return err
		}
	}
	return nil
}

// CreatesCycle reports whether a prerequisite edge from -> to would
// close a loop. A self edge is always a cycle.
func (s *WorkflowService) CreatesCycle(ctx context.Context, fromID, toID string) (bool, error) {
	if fromID == toID {
		return true, nil
	}
	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (from:Task {id: $fromId}), (to:Task {id: $toId})
			RETURN EXISTS((from)-[:DEPENDS_ON*1..]->(to)) AS hasCycle
		`
		res, err := tx.Run(ctx, query, map[string]any{
			"fromId": fromID,
			"toId":   toID,
		})
		if err != nil {
			return nil, err
		}
		if res.Next(ctx) {
			val, ok := res.Record().Values[0].(bool)
			if !ok {
				return false, fmt.Errorf("unexpected result type")
			}
			return val, nil
		}
		return false, nil
	})
	if err != nil {
		return false, fmt.Errorf("cycle detection failed: %v", err)
	}
	return result.(bool), nil
}

func (s *WorkflowService) TasksExist(ctx context.Context, id1, id2 string) (bool, error) {
	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			OPTIONAL MATCH (a:Task {id: $id1})
			OPTIONAL MATCH (b:Task {id: $id2})
			RETURN a IS NOT NULL AND b IS NOT NULL AS bothExist
		`
		res, err := tx.Run(ctx, query, map[string]any{
			"id1": id1,
			"id2": id2,
		})
		if err != nil {
			return false, err
		}
		if res.Next(ctx) {
			return res.Record().Values[0].(bool), nil
		}
		return false, nil
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

func (s *WorkflowService) DependencyExists(ctx context.Context, fromID, toID string) (bool, error) {
	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (to:Task {id: $toId})-[r:DEPENDS_ON]->(from:Task {id: $fromId})
			RETURN COUNT(r) > 0 AS exists
		`
		res, err := tx.Run(ctx, query, map[string]any{
			"fromId": fromID,
			"toId":   toID,
		})
		if err != nil {
			return false, err
		}
		if res.Next(ctx) {
			return res.Record().Values[0].(bool), nil
		}
		return false, nil
	})
	if err != nil {
		return false, err
	}
	return result.(bool), nil
}

// GetDependencies returns the prerequisite tasks of taskID.
func (s *WorkflowService) GetDependencies(ctx context.Context, taskID string) ([]models.TaskNode, error) {
	return s.queryRelated(ctx, taskID, `
		MATCH (to:Task {id: $taskId})-[:DEPENDS_ON]->(from:Task)
		RETURN from.id AS id, from.projectId AS projectId, from.name AS name,
		       from.status AS status, from.blocked AS blocked
	`)
}

// GetDependents returns the tasks that list taskID as a prerequisite.
func (s *WorkflowService) GetDependents(ctx context.Context, taskID string) ([]models.TaskNode, error) {
	return s.queryRelated(ctx, taskID, `
		MATCH (to:Task)-[:DEPENDS_ON]->(from:Task {id: $taskId})
		RETURN to.id AS id, to.projectId AS projectId, to.name AS name,
		       to.status AS status, to.blocked AS blocked
	`)
}

// GetProjectGraph returns every task node mirrored for a project.
func (s *WorkflowService) GetProjectGraph(ctx context.Context, projectID string) ([]models.TaskNode, error) {
	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (t:Task {projectId: $projectId})
			RETURN t.id AS id, t.projectId AS projectId, t.name AS name,
			       t.status AS status, t.blocked AS blocked
		`
		res, err := tx.Run(ctx, query, map[string]any{"projectId": projectID})
		if err != nil {
			return nil, err
		}
		return collectTaskNodes(ctx, res)
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.TaskNode), nil
}

// UpdateBlockedStatus recomputes whether a task is blocked: it is
// blocked while any prerequisite is not yet in progress or completed.
func (s *WorkflowService) UpdateBlockedStatus(ctx context.Context, taskID string) error {
	dependencies, err := s.GetDependencies(ctx, taskID)
	if err != nil {
		return fmt.Errorf("failed to fetch dependencies: %v", err)
	}

	isBlocked := false
	for _, dep := range dependencies {
		if dep.Status != string(models.TaskInProgress) && dep.Status != string(models.TaskCompleted) {
			isBlocked = true
			break
		}
	}

	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeWrite})
	defer session.Close(ctx)

	_, err = session.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		query := `
			MATCH (t:Task {id: $taskId})
			SET t.blocked = $isBlocked
		`
		_, err := tx.Run(ctx, query, map[string]any{
			"taskId":    taskID,
			"isBlocked": isBlocked,
		})
		return nil, err
	})
	if err != nil {
		return fmt.Errorf("failed to update blocked status: %v", err)
	}

	logging.Logger.Infof("Event ID: BLOCKED_STATUS_UPDATED, Description: Blocked status for task %s updated to %v", taskID, isBlocked)
	return nil
}

func (s *WorkflowService) queryRelated(ctx context.Context, taskID, query string) ([]models.TaskNode, error) {
	session := s.Driver.NewSession(ctx, neo4j.SessionConfig{AccessMode: neo4j.AccessModeRead})
	defer session.Close(ctx)

	result, err := session.ExecuteRead(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		res, err := tx.Run(ctx, query, map[string]any{"taskId": taskID})
		if err != nil {
			return nil, err
		}
		return collectTaskNodes(ctx, res)
	})
	if err != nil {
		return nil, err
	}
	return result.([]models.TaskNode), nil
}

func collectTaskNodes(ctx context.Context, res neo4j.ResultWithContext) ([]models.TaskNode, error) {
	var nodes []models.TaskNode
	for res.Next(ctx) {
		record := res.Record()

		id, _ := record.Get("id")
		projectID, _ := record.Get("projectId")
		name, _ := record.Get("name")
		status, _ := record.Get("status")
		blocked, _ := record.Get("blocked")

		node := models.TaskNode{}
		if v, ok := id.(string); ok {
			node.ID = v
		}
		if v, ok := projectID.(string); ok {
			node.ProjectID = v
		}
		if v, ok := name.(string); ok {
			node.Name = v
		}
		if v, ok := status.(string); ok {
			node.Status = v
		}
		if v, ok := blocked.(bool); ok {
			node.Blocked = v
		}
		nodes = append(nodes, node)
	}
	return nodes, nil
}
