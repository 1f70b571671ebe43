package models

// TaskNode is the graph projection of a task. Only the fields the
// dependency graph reasons about are mirrored; the entity store stays
// the source of truth for everything else.
type TaskNode struct {
	ID        string `json:"id"`
	ProjectID string `json:"projectId"`
	Name      string `json:"name"`
	Status    string `json:"status"`
	Blocked   bool   `json:"blocked"`
}

// TaskDependencyRelation links a dependent task to its prerequisite.
type TaskDependencyRelation struct {
	FromTaskID string `json:"fromTaskId"` // prerequisite
	ToTaskID   string `json:"toTaskId"`   // dependent
}
