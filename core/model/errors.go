package model

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNoTasks indicates an analysis was requested for a project without tasks.
var ErrNoTasks = errors.New("project has no tasks")

// ErrProjectNotFound indicates the project identifier resolved to nothing.
var ErrProjectNotFound = errors.New("project not found")

// ErrResourceNotFound indicates a referenced resource is unknown.
var ErrResourceNotFound = errors.New("resource not found")

// ValidationError reports malformed input detected before any computation.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// CycleError reports a dependency cycle found while validating the task
// graph. Path lists the task identifiers along the cycle.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("cyclic dependency: %s", strings.Join(e.Path, " -> "))
}

// CurrencyMismatchError reports two amounts in different currencies meeting
// in one computation. TaskID is empty when the mismatch is between tasks
// rather than within one.
type CurrencyMismatchError struct {
	TaskID string
	Want   string
	Got    string
}

func (e *CurrencyMismatchError) Error() string {
	if e.TaskID != "" {
		return fmt.Sprintf("task %s: currency mismatch: want %s, got %s", e.TaskID, e.Want, e.Got)
	}
	return fmt.Sprintf("currency mismatch: want %s, got %s", e.Want, e.Got)
}

// UnknownTaskError reports a dependency or assignment referencing a task
// that is not part of the snapshot.
type UnknownTaskError struct {
	TaskID string
	RefBy  string
}

func (e *UnknownTaskError) Error() string {
	return fmt.Sprintf("task %s referenced by %s does not exist", e.TaskID, e.RefBy)
}
