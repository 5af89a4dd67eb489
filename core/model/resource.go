package model

import (
	"fmt"
	"time"
)

// DefaultCapacityPercent is assumed when a resource has no explicit capacity.
const DefaultCapacityPercent = 100.0

// ResourceAssignment allocates a share of a resource to a task over an
// interval.
type ResourceAssignment struct {
	ResourceID        string
	TaskID            string
	AllocationPercent float64 // 50 means half the resource's time
	Start             time.Time
	Finish            time.Time
}

// Validate checks the assignment interval and allocation.
func (a ResourceAssignment) Validate() error {
	if a.ResourceID == "" {
		return &ValidationError{Field: "resource_id", Reason: "assignment resource identifier is empty"}
	}
	if a.Finish.Before(a.Start) {
		return &ValidationError{Field: "interval", Reason: fmt.Sprintf("assignment of %s to task %s finishes before it starts", a.ResourceID, a.TaskID)}
	}
	if a.AllocationPercent < 0 {
		return &ValidationError{Field: "allocation", Reason: fmt.Sprintf("assignment of %s to task %s has negative allocation", a.ResourceID, a.TaskID)}
	}
	return nil
}

// ResourceCapacity is the maximum concurrent allocation a resource supports.
type ResourceCapacity struct {
	ResourceID string
	MaxPercent float64
}

// Limit returns the capacity, substituting the default when unset.
func (c ResourceCapacity) Limit() float64 {
	if c.MaxPercent <= 0 {
		return DefaultCapacityPercent
	}
	return c.MaxPercent
}

// Resource is the descriptive record exposed by the resource collaborator.
type Resource struct {
	ID          string
	Name        string
	Type        string
	MaxUnits    float64
	CostPerUnit Money
}

// Project is the record resolved from a project identifier.
type Project struct {
	ID     string
	Name   string
	Start  time.Time
	Finish time.Time
}
