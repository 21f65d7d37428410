package pipeline

import (
	"context"
	"fmt"
	"time"
)

// invokeWorker is the single place where a worker call is made. Every error,
// panic or deadline is returned as a fault instead of escaping.
func invokeWorker(ctx context.Context, stage Stage, worker Worker, taskDescription string, timeout time.Duration) (result StageResult, fault error) {
	defer func() {
		if recovered := recover(); recovered != nil {
			result = StageResult{}
			fault = fmt.Errorf("%w: %v", ErrWorkerPanicked, recovered)
		}
	}()
	if worker == nil {
		return StageResult{}, fmt.Errorf("%w %q", ErrMissingWorker, stage)
	}
	if err := ctx.Err(); err != nil {
		return StageResult{}, err
	}
	callContext := ctx
	if timeout > 0 {
		var cancel context.CancelFunc
		callContext, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	text, err := worker.Run(callContext, taskDescription)
	if err != nil {
		return StageResult{}, err
	}
	return Classify(stage, text), nil
}
