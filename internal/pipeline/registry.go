package pipeline

import "fmt"

type Factory func() (Worker, error)

// Registry collects one worker factory per stage.
type Registry struct{ factories map[Stage]Factory }

func NewRegistry() *Registry { return &Registry{factories: map[Stage]Factory{}} }

func (r *Registry) Register(stage Stage, factory Factory) error {
	if _, err := ParseStage(string(stage)); err != nil {
		return err
	}
	if _, exists := r.factories[stage]; exists {
		return fmt.Errorf("%w %q", ErrDuplicateWorker, stage)
	}
	r.factories[stage] = factory
	return nil
}

// Names returns the registered stages in execution order.
func (r *Registry) Names() []Stage {
	out := make([]Stage, 0, len(r.factories))
	for _, stage := range stages {
		if _, ok := r.factories[stage]; ok {
			out = append(out, stage)
		}
	}
	return out
}

func (r *Registry) Create(stage Stage) (Worker, error) {
	factory, ok := r.factories[stage]
	if !ok {
		return nil, fmt.Errorf("%w %q", ErrMissingWorker, stage)
	}
	worker, err := factory()
	if err != nil {
		return nil, fmt.Errorf("create %s worker: %w", stage, err)
	}
	return worker, nil
}

// Workers builds the full worker set, failing when any stage is unregistered.
func (r *Registry) Workers() (Workers, error) {
	var workers Workers
	for _, stage := range stages {
		worker, err := r.Create(stage)
		if err != nil {
			return Workers{}, err
		}
		switch stage {
		case StageInventory:
			workers.Inventory = worker
		case StageQuoting:
			workers.Quoting = worker
		case StageOrdering:
			workers.Ordering = worker
		}
	}
	return workers, nil
}
