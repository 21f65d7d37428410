package pipeline

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/temirov/quote-pipeline/internal/requests"
)

const (
	logFieldRequestID     = "request_id"
	logFieldStage         = "stage"
	logFieldState         = "state"
	logFieldResultPreview = "result_preview"
	resultPreviewLimit    = 280
)

type Options struct {
	// StageTimeout bounds every worker call; zero disables the bound.
	StageTimeout time.Duration
}

// Outcome is the result of one request. Exactly one of Confirmation and
// Failure is meaningful: Failure is nil on success.
type Outcome struct {
	RequestID    string
	State        State
	Confirmation string
	Failure      *ErrorResponse
	Results      []StageResult
}

func (outcome Outcome) Succeeded() bool { return outcome.Failure == nil }

// String renders the confirmation or the failure.
func (outcome Outcome) String() string {
	if outcome.Failure != nil {
		return outcome.Failure.String()
	}
	return outcome.Confirmation
}

// Orchestrator runs inventory, quoting and ordering in order for one request
// and stops at the first failed stage. It keeps no per-request state, so one
// value may serve concurrent requests.
type Orchestrator struct {
	Workers Workers
	Tasks   TaskBuilder
	Logger  *zap.Logger
	Options Options
}

func (orchestrator Orchestrator) Process(ctx context.Context, sample requests.QuoteRequestSample) Outcome {
	logger := orchestrator.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	outcome := Outcome{RequestID: uuid.NewString(), State: StateAwaitingInventory}
	logger = logger.With(zap.String(logFieldRequestID, outcome.RequestID))

	stageResult, ok := orchestrator.runStage(ctx, logger, &outcome, StageInventory, orchestrator.Tasks.Inventory(sample))
	if !ok {
		return outcome
	}
	stageResult, ok = orchestrator.runStage(ctx, logger, &outcome, StageQuoting, orchestrator.Tasks.Quote(sample, stageResult.Text))
	if !ok {
		return outcome
	}
	stageResult, ok = orchestrator.runStage(ctx, logger, &outcome, StageOrdering, orchestrator.Tasks.Order(sample, stageResult.Text))
	if !ok {
		return outcome
	}

	outcome.State = StateDone
	outcome.Confirmation = strings.TrimSpace(stageResult.Text)
	logger.Info("request fulfilled", zap.String(logFieldState, string(outcome.State)))
	return outcome
}

func (orchestrator Orchestrator) runStage(ctx context.Context, logger *zap.Logger, outcome *Outcome, stage Stage, taskDescription string) (StageResult, bool) {
	outcome.State = stageStates[stage]
	stageLogger := logger.With(zap.String(logFieldStage, string(stage)), zap.String(logFieldState, string(outcome.State)))
	stageLogger.Info("stage started")

	stageResult, fault := invokeWorker(ctx, stage, orchestrator.Workers.forStage(stage), taskDescription, orchestrator.Options.StageTimeout)
	if fault != nil {
		failure := faultResponse(fault)
		outcome.State = StateFailed
		outcome.Failure = &failure
		stageLogger.Error("stage fault", zap.Error(fault))
		return StageResult{}, false
	}
	outcome.Results = append(outcome.Results, stageResult)
	if !stageResult.Succeeded {
		failure := stageFailure(stage, stageResult.Text)
		outcome.State = StateFailed
		outcome.Failure = &failure
		stageLogger.Warn("stage failed", zap.String(logFieldResultPreview, truncate(stageResult.Text, resultPreviewLimit)))
		return stageResult, false
	}
	stageLogger.Info("stage finished", zap.String(logFieldResultPreview, truncate(stageResult.Text, resultPreviewLimit)))
	return stageResult, true
}

func truncate(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit]) + "…"
}
