package models

import (
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestTaskDependsOn(t *testing.T) {
	dep := primitive.NewObjectID()
	other := primitive.NewObjectID()

	task := Task{Dependencies: []primitive.ObjectID{dep}}
	if !task.DependsOn(dep) {
		t.Error("expected DependsOn to find listed dependency")
	}
	if task.DependsOn(other) {
		t.Error("expected DependsOn to reject unlisted id")
	}
}

func TestTaskIsAssigned(t *testing.T) {
	member := primitive.NewObjectID()
	task := Task{AssignedMembers: []primitive.ObjectID{member}}
	if !task.IsAssigned(member) {
		t.Error("expected IsAssigned to find listed member")
	}
	if task.IsAssigned(primitive.NewObjectID()) {
		t.Error("expected IsAssigned to reject unlisted member")
	}
}

func TestValidTaskStatus(t *testing.T) {
	for _, s := range []TaskStatus{TaskNotStarted, TaskInProgress, TaskCompleted, TaskOnHold} {
		if !ValidTaskStatus(s) {
			t.Errorf("expected %q to be valid", s)
		}
	}
	if ValidTaskStatus("Done") {
		t.Error("expected unknown status to be invalid")
	}
}
