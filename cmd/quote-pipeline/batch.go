package quotepipeline

import (
	"context"
	"sort"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/quote-pipeline/internal/pipeline"
	"github.com/temirov/quote-pipeline/internal/requests"
)

type requestProcessor interface {
	Process(ctx context.Context, sample requests.QuoteRequestSample) pipeline.Outcome
}

// requestResult is one output row. Sample is nil when the record was rejected.
type requestResult struct {
	RowNumber int
	Record    requests.Record
	Sample    *requests.QuoteRequestSample
	Outcome   pipeline.Outcome
}

func (result requestResult) status() string {
	if result.Outcome.Succeeded() {
		return statusSuccess
	}
	return statusFailed
}

func (result requestResult) failureContext() string {
	if result.Outcome.Failure == nil {
		return ""
	}
	return result.Outcome.Failure.Context
}

// prepareRequests validates every record and orders them by request date.
// Rejected records keep their validation failure and sort after valid ones.
func prepareRequests(records []requests.Record) []requestResult {
	prepared := make([]requestResult, 0, len(records))
	for index, record := range records {
		result := requestResult{RowNumber: index + 1, Record: record}
		sample, err := requests.Validate(record)
		if err != nil {
			failure := pipeline.ErrorResponse{Message: err.Error(), Context: pipeline.ContextValidation}
			result.Outcome = pipeline.Outcome{State: pipeline.StateFailed, Failure: &failure}
		} else {
			result.Sample = &sample
		}
		prepared = append(prepared, result)
	}
	sort.SliceStable(prepared, func(left, right int) bool {
		leftSample, rightSample := prepared[left].Sample, prepared[right].Sample
		if leftSample == nil || rightSample == nil {
			return leftSample != nil && rightSample == nil
		}
		return leftSample.RequestDate.Before(rightSample.RequestDate)
	})
	return prepared
}

// processRequests runs the valid requests with at most concurrency in flight.
// Each result is written to its own slot so the output order never depends on
// completion order.
func processRequests(ctx context.Context, processor requestProcessor, prepared []requestResult, concurrency int, logger *zap.Logger) []requestResult {
	group, groupContext := errgroup.WithContext(ctx)
	group.SetLimit(max(concurrency, minimumConcurrency))
	for index := range prepared {
		if prepared[index].Sample == nil {
			logger.Warn("request rejected",
				zap.Int("row", prepared[index].RowNumber),
				zap.String("error", prepared[index].Outcome.Failure.Message))
			continue
		}
		index := index
		group.Go(func() error {
			prepared[index].Outcome = processor.Process(groupContext, *prepared[index].Sample)
			return nil
		})
	}
	_ = group.Wait()
	return prepared
}
