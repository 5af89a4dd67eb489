// Package store provides file-backed implementations of the scheduling
// collaborators. A project definition file (YAML or JSON) is parsed once
// at load time into an immutable snapshot; every lookup serves from that
// snapshot.
package store

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"

	"github.com/mreynaud/schedcore/core/model"
)

// Store serves one project snapshot. It implements the scheduling
// collaborator interfaces.
type Store struct {
	project    model.Project
	tasks      []model.Task
	resources  []model.Resource
	capacities map[string]model.ResourceCapacity
}

// Load reads and validates a project definition file.
func Load(path string) (*Store, error) {
	k := koanf.New(".")
	var parser koanf.Parser
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		return nil, fmt.Errorf("unsupported project file format: %s", ext)
	}
	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, fmt.Errorf("read project file: %w", err)
	}
	var doc projectDoc
	if err := k.UnmarshalWithConf("", &doc, koanf.UnmarshalConf{Tag: "json"}); err != nil {
		return nil, fmt.Errorf("decode project file: %w", err)
	}
	return fromDoc(doc)
}

// NewStatic builds a store from already-materialized records, mainly for
// tests and embedding applications with their own persistence.
func NewStatic(project model.Project, tasks []model.Task, resources []model.Resource, capacities []model.ResourceCapacity) *Store {
	caps := make(map[string]model.ResourceCapacity, len(capacities))
	for _, c := range capacities {
		caps[c.ResourceID] = c
	}
	return &Store{project: project, tasks: tasks, resources: resources, capacities: caps}
}

// Project implements scheduling.ProjectLookup.
func (s *Store) Project(_ context.Context, projectID string) (model.Project, error) {
	if projectID != s.project.ID {
		return model.Project{}, fmt.Errorf("project %s: %w", projectID, model.ErrProjectNotFound)
	}
	return s.project, nil
}

// Tasks implements scheduling.ScheduleLookup. Unknown projects yield an
// error; the loaded project yields a copy of the snapshot.
func (s *Store) Tasks(_ context.Context, projectID string) ([]model.Task, error) {
	if projectID != s.project.ID {
		return nil, fmt.Errorf("project %s: %w", projectID, model.ErrProjectNotFound)
	}
	out := make([]model.Task, len(s.tasks))
	copy(out, s.tasks)
	return out, nil
}

// Capacity implements scheduling.ResourceLookup. Resources without an
// explicit capacity record default to 100 percent.
func (s *Store) Capacity(_ context.Context, resourceID string) (model.ResourceCapacity, error) {
	if c, ok := s.capacities[resourceID]; ok {
		return c, nil
	}
	return model.ResourceCapacity{ResourceID: resourceID, MaxPercent: model.DefaultCapacityPercent}, nil
}

// Resources implements scheduling.ResourceLookup.
func (s *Store) Resources(_ context.Context, projectID string) ([]model.Resource, error) {
	if projectID != s.project.ID {
		return nil, fmt.Errorf("project %s: %w", projectID, model.ErrProjectNotFound)
	}
	out := make([]model.Resource, len(s.resources))
	copy(out, s.resources)
	return out, nil
}
