package tasks

import (
	"fmt"

	"sprachtrainer/internal/models"
)

// TaskTypeSpec describes how one task type is rendered and queued.
type TaskTypeSpec struct {
	Renderer string
	QueueCap int
}

// Registry maps task types to their renderer and queue configuration. It is
// built once at startup and passed into the services that need it, so tests
// can run with custom registries.
type Registry struct {
	types map[models.TaskType]TaskTypeSpec
}

// NewRegistry builds a registry from an explicit type map.
func NewRegistry(types map[models.TaskType]TaskTypeSpec) *Registry {
	copied := make(map[models.TaskType]TaskTypeSpec, len(types))
	for k, v := range types {
		copied[k] = v
	}
	return &Registry{types: copied}
}

// DefaultRegistry returns the registry for the built-in task types.
func DefaultRegistry() *Registry {
	return NewRegistry(map[models.TaskType]TaskTypeSpec{
		models.TaskConjugateForm:      {Renderer: "conjugate_form", QueueCap: 20},
		models.TaskNounCaseDeclension: {Renderer: "noun_case_declension", QueueCap: 15},
		models.TaskAdjEnding:          {Renderer: "adj_ending", QueueCap: 15},
	})
}

// Contains reports whether taskType is registered.
func (r *Registry) Contains(taskType models.TaskType) bool {
	_, ok := r.types[taskType]
	return ok
}

// Lookup returns the spec for taskType, or an error for unknown types.
func (r *Registry) Lookup(taskType models.TaskType) (TaskTypeSpec, error) {
	spec, ok := r.types[taskType]
	if !ok {
		return TaskTypeSpec{}, fmt.Errorf("unknown task type: %s", taskType)
	}
	return spec, nil
}

// Types returns all registered task types.
func (r *Registry) Types() []models.TaskType {
	types := make([]models.TaskType, 0, len(r.types))
	for t := range r.types {
		types = append(types, t)
	}
	return types
}
