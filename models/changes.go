package models

import (
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Field-level merge of a change-request diff onto its target. Only keys
// present in the diff are touched; unknown keys and malformed values are
// rejected before anything is written, so a merge either applies fully
// or not at all.

const dateLayout = "2006-01-02"

// ApplyTaskChanges merges the proposed diff into the task in place.
func ApplyTaskChanges(task *Task, changes map[string]any) error {
	for key, raw := range changes {
		switch key {
		case "name":
			v, err := asString(key, raw)
			if err != nil {
				return err
			}
			task.Name = v
		case "description":
			v, err := asString(key, raw)
			if err != nil {
				return err
			}
			task.Description = v
		case "status":
			v, err := asString(key, raw)
			if err != nil {
				return err
			}
			if !ValidTaskStatus(TaskStatus(v)) {
				return &ValidationError{Field: key, Reason: fmt.Sprintf("unknown task status %q", v)}
			}
			task.Status = TaskStatus(v)
		case "priority":
			v, err := asString(key, raw)
			if err != nil {
				return err
			}
			task.Priority = v
		case "progress":
			v, err := asProgress(key, raw)
			if err != nil {
				return err
			}
			task.Progress = v
		case "startDate":
			v, err := asDate(key, raw)
			if err != nil {
				return err
			}
			task.StartDate = v
		case "endDate":
			v, err := asDate(key, raw)
			if err != nil {
				return err
			}
			task.EndDate = v
		default:
			return &ValidationError{Field: key, Reason: "field is not changeable on a task"}
		}
	}
	return nil
}

// ApplySubtaskChanges merges the proposed diff into the subtask in place.
func ApplySubtaskChanges(subtask *Subtask, changes map[string]any) error {
	for key, raw := range changes {
		switch key {
		case "name":
			v, err := asString(key, raw)
			if err != nil {
				return err
			}
			subtask.Name = v
		case "description":
			v, err := asString(key, raw)
			if err != nil {
				return err
			}
			subtask.Description = v
		case "status":
			v, err := asString(key, raw)
			if err != nil {
				return err
			}
			if !ValidTaskStatus(TaskStatus(v)) {
				return &ValidationError{Field: key, Reason: fmt.Sprintf("unknown subtask status %q", v)}
			}
			subtask.Status = TaskStatus(v)
		case "progress":
			v, err := asProgress(key, raw)
			if err != nil {
				return err
			}
			subtask.Progress = v
		case "startDate":
			v, err := asDate(key, raw)
			if err != nil {
				return err
			}
			subtask.StartDate = v
		case "endDate":
			v, err := asDate(key, raw)
			if err != nil {
				return err
			}
			subtask.EndDate = v
		default:
			return &ValidationError{Field: key, Reason: "field is not changeable on a subtask"}
		}
	}
	return nil
}

func asString(field string, raw any) (string, error) {
	s, ok := raw.(string)
	if !ok {
		return "", &ValidationError{Field: field, Reason: fmt.Sprintf("expected string, got %T", raw)}
	}
	return s, nil
}

// asProgress accepts the numeric shapes JSON and BSON decoding produce.
func asProgress(field string, raw any) (int, error) {
	var v int
	switch n := raw.(type) {
	case int:
		v = n
	case int32:
		v = int(n)
	case int64:
		v = int(n)
	case float64:
		v = int(n)
	default:
		return 0, &ValidationError{Field: field, Reason: fmt.Sprintf("expected number, got %T", raw)}
	}
	if v < 0 || v > 100 {
		return 0, &ValidationError{Field: field, Reason: "progress must be between 0 and 100"}
	}
	return v, nil
}

func asDate(field string, raw any) (time.Time, error) {
	switch d := raw.(type) {
	case string:
		if t, err := time.Parse(dateLayout, d); err == nil {
			return t, nil
		}
		if t, err := time.Parse(time.RFC3339, d); err == nil {
			return t, nil
		}
		return time.Time{}, &ValidationError{Field: field, Reason: fmt.Sprintf("cannot parse date %q", d)}
	case time.Time:
		return d, nil
	case primitive.DateTime:
		return d.Time(), nil
	}
	return time.Time{}, &ValidationError{Field: field, Reason: fmt.Sprintf("expected date, got %T", raw)}
}
