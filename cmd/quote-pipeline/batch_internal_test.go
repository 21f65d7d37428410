package quotepipeline

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/quote-pipeline/internal/config"
	"github.com/temirov/quote-pipeline/internal/pipeline"
	"github.com/temirov/quote-pipeline/internal/requests"
)

type recordingProcessor struct {
	mu       sync.Mutex
	inFlight int
	peak     int
	seen     []string
}

func (processor *recordingProcessor) Process(_ context.Context, sample requests.QuoteRequestSample) pipeline.Outcome {
	processor.mu.Lock()
	processor.inFlight++
	processor.peak = max(processor.peak, processor.inFlight)
	processor.seen = append(processor.seen, sample.Job)
	processor.mu.Unlock()

	time.Sleep(5 * time.Millisecond)

	processor.mu.Lock()
	processor.inFlight--
	processor.mu.Unlock()
	return pipeline.Outcome{State: pipeline.StateDone, Confirmation: "done " + sample.Job}
}

func batchRecords() []requests.Record {
	return []requests.Record{
		{"job": "c", "need_size": "small", "event": "e", "request": "r", "request_date": "4/3/25"},
		{"job": "bad", "need_size": "tiny", "event": "e", "request": "r", "request_date": "4/1/25"},
		{"job": "a", "need_size": "small", "event": "e", "request": "r", "request_date": "4/1/25"},
		{"job": "b", "need_size": "small", "event": "e", "request": "r", "request_date": "2025-04-02"},
		{"job": "a2", "need_size": "small", "event": "e", "request": "r", "request_date": "4/1/2025"},
	}
}

func TestPrepareRequestsSortsByDateStably(t *testing.T) {
	prepared := prepareRequests(batchRecords())

	rowNumbers := make([]int, 0, len(prepared))
	for _, result := range prepared {
		rowNumbers = append(rowNumbers, result.RowNumber)
	}
	assert.Equal(t, []int{3, 5, 4, 1, 2}, rowNumbers)

	rejected := prepared[len(prepared)-1]
	require.Nil(t, rejected.Sample)
	require.NotNil(t, rejected.Outcome.Failure)
	assert.Equal(t, pipeline.ContextValidation, rejected.Outcome.Failure.Context)
	assert.Contains(t, rejected.Outcome.String(), `"tiny"`)
}

func TestProcessRequestsKeepsSortedOrder(t *testing.T) {
	testCases := []struct {
		name        string
		concurrency int
		maxPeak     int
	}{
		{name: "sequential", concurrency: 1, maxPeak: 1},
		{name: "parallel", concurrency: 3, maxPeak: 3},
		{name: "non-positive becomes sequential", concurrency: 0, maxPeak: 1},
	}
	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			processor := &recordingProcessor{}
			results := processRequests(context.Background(), processor, prepareRequests(batchRecords()), testCase.concurrency, zap.NewNop())

			confirmations := make([]string, 0, len(results))
			for _, result := range results {
				confirmations = append(confirmations, result.Outcome.String())
			}
			assert.Equal(t, "done a", confirmations[0])
			assert.Equal(t, "done a2", confirmations[1])
			assert.Equal(t, "done b", confirmations[2])
			assert.Equal(t, "done c", confirmations[3])
			assert.Len(t, processor.seen, 4)
			assert.LessOrEqual(t, processor.peak, testCase.maxPeak)
			if testCase.maxPeak == 1 {
				assert.Equal(t, []string{"a", "a2", "b", "c"}, processor.seen)
			}
		})
	}
}

func TestEncodeResults(t *testing.T) {
	results := processRequests(context.Background(), &recordingProcessor{}, prepareRequests(batchRecords()[:2]), 1, zap.NewNop())

	encoded, err := encodeResults(results)
	require.NoError(t, err)
	assert.Equal(t,
		"request_id,request_date,job,event,status,context,response\n"+
			"1,2025-04-03,c,e,success,,done c\n"+
			"2,,bad,e,failed,validation,\"ERROR (validation): need_size: invalid order size \"\"tiny\"\"\"\n",
		string(encoded))
}

func TestResolveRuntimeSettingsPrecedence(t *testing.T) {
	rootConfiguration := config.Root{}
	rootConfiguration.Common.Logging.Level = "warn"
	rootConfiguration.Common.Defaults.TimeoutSeconds = 30
	rootConfiguration.Common.Defaults.Concurrency = 2

	newCommand := func() *cobra.Command {
		command := NewRootCommand()
		runCommand, _, err := command.Find([]string{runCommandUse})
		require.NoError(t, err)
		runCommand.Flags().AddFlagSet(command.PersistentFlags())
		return runCommand
	}

	settings, err := resolveRuntimeSettings(newCommand(), rootConfiguration)
	require.NoError(t, err)
	assert.Equal(t, runtimeSettings{logLevel: "warn", logFormat: defaultLogFormat, stageTimeout: 30 * time.Second, concurrency: 2}, settings)

	t.Setenv("QUOTE_PIPELINE_LOG_LEVEL", "debug")
	t.Setenv("QUOTE_PIPELINE_CONCURRENCY", "4")
	settings, err = resolveRuntimeSettings(newCommand(), rootConfiguration)
	require.NoError(t, err)
	assert.Equal(t, "debug", settings.logLevel)
	assert.Equal(t, 4, settings.concurrency)

	command := newCommand()
	require.NoError(t, command.Flags().Set(concurrencyFlagName, "8"))
	require.NoError(t, command.Flags().Set(timeoutFlagName, "1500ms"))
	settings, err = resolveRuntimeSettings(command, rootConfiguration)
	require.NoError(t, err)
	assert.Equal(t, 8, settings.concurrency)
	assert.Equal(t, 1500*time.Millisecond, settings.stageTimeout)
}

func TestResolveRuntimeSettingsTimeoutValues(t *testing.T) {
	testCases := []struct {
		name            string
		environmentTime string
		flagTime        string
		expected        time.Duration
		expectError     bool
	}{
		{name: "bare integer environment value is seconds", environmentTime: "30", expected: 30 * time.Second},
		{name: "suffixed environment value", environmentTime: "2m", expected: 2 * time.Minute},
		{name: "bare integer flag value is seconds", flagTime: "45", expected: 45 * time.Second},
		{name: "zero disables the timeout", environmentTime: "0", expected: 0},
		{name: "negative value is clamped", environmentTime: "-5", expected: 0},
		{name: "unparseable value", environmentTime: "soon", expectError: true},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			rootConfiguration := config.Root{}
			rootConfiguration.Common.Defaults.TimeoutSeconds = 10
			if testCase.environmentTime != "" {
				t.Setenv("QUOTE_PIPELINE_TIMEOUT", testCase.environmentTime)
			}
			command := NewRootCommand()
			runCommand, _, err := command.Find([]string{runCommandUse})
			require.NoError(t, err)
			if testCase.flagTime != "" {
				require.NoError(t, runCommand.Flags().Set(timeoutFlagName, testCase.flagTime))
			}

			settings, err := resolveRuntimeSettings(runCommand, rootConfiguration)
			if testCase.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid timeout")
				return
			}
			require.NoError(t, err)
			assert.Equal(t, testCase.expected, settings.stageTimeout)
		})
	}
}

func TestNewLoggerRejectsUnknownLevel(t *testing.T) {
	_, err := newLogger(nil, "chatty", defaultLogFormat)
	require.Error(t, err)
}
