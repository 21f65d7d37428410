package pipeline

import (
	"context"
	"fmt"
	"slices"
)

// Stage names one of the three ordered fulfillment steps.
type Stage string

const (
	StageInventory Stage = "inventory"
	StageQuoting   Stage = "quoting"
	StageOrdering  Stage = "ordering"
)

var stages = []Stage{
	StageInventory,
	StageQuoting,
	StageOrdering,
}

// Stages returns the stages in execution order.
func Stages() []Stage {
	return slices.Clone(stages)
}

// ParseStage validates a stage name.
func ParseStage(value string) (Stage, error) {
	stage := Stage(value)
	if !slices.Contains(stages, stage) {
		return "", fmt.Errorf("%w %q", ErrUnknownStage, value)
	}
	return stage, nil
}

// Worker executes one stage task and answers in free text. An empty answer or
// one starting with ERROR (ignoring case and surrounding whitespace) reports
// that the task could not be completed; a non-nil error is a fault.
type Worker interface {
	Run(ctx context.Context, taskDescription string) (string, error)
}

// WorkerFunc adapts a function to the Worker interface.
type WorkerFunc func(ctx context.Context, taskDescription string) (string, error)

func (function WorkerFunc) Run(ctx context.Context, taskDescription string) (string, error) {
	return function(ctx, taskDescription)
}

// Workers holds one worker per stage.
type Workers struct {
	Inventory Worker
	Quoting   Worker
	Ordering  Worker
}

func (workers Workers) forStage(stage Stage) Worker {
	switch stage {
	case StageInventory:
		return workers.Inventory
	case StageQuoting:
		return workers.Quoting
	case StageOrdering:
		return workers.Ordering
	default:
		return nil
	}
}

// State is the orchestrator's position in the fulfillment state machine.
type State string

const (
	StateAwaitingInventory State = "awaiting_inventory"
	StateAwaitingQuote     State = "awaiting_quote"
	StateAwaitingOrder     State = "awaiting_order"
	StateDone              State = "done"
	StateFailed            State = "failed"
)

var stageStates = map[Stage]State{
	StageInventory: StateAwaitingInventory,
	StageQuoting:   StateAwaitingQuote,
	StageOrdering:  StateAwaitingOrder,
}
