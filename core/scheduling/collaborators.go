package scheduling

import (
	"context"

	"github.com/mreynaud/schedcore/core/model"
)

// ProjectLookup resolves project identifiers. Implementations return
// model.ErrProjectNotFound (possibly wrapped) for unknown projects.
type ProjectLookup interface {
	Project(ctx context.Context, projectID string) (model.Project, error)
}

// ScheduleLookup returns the full task snapshot for a project, including
// dependencies, resource assignments and crash/fast-track data.
type ScheduleLookup interface {
	Tasks(ctx context.Context, projectID string) ([]model.Task, error)
}

// ResourceLookup exposes resource capacities and records. Capacity returns
// the default of 100 percent for resources without an explicit record.
type ResourceLookup interface {
	Capacity(ctx context.Context, resourceID string) (model.ResourceCapacity, error)
	Resources(ctx context.Context, projectID string) ([]model.Resource, error)
}
