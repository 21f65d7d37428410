package llm

import (
	"context"
	"fmt"
	"strings"

	"github.com/temirov/quote-pipeline/internal/ledger"
	"github.com/temirov/quote-pipeline/internal/pipeline"
)

const (
	DefaultModel       = "gpt-4o-mini"
	DefaultTemperature = 0.5

	roleSystem = "system"
	roleUser   = "user"

	workerIdentityFormat = "You are %s. %s\n"
	toolsHeader          = "\nYou can rely on these ledger tools:\n"
	toolLineFormat       = "- %s: %s\n"
	errorConvention      = "\nIf the task cannot be completed, reply with a single line starting with ERROR followed by the reason."
	workerErrorFormat    = "%s: %w"
)

var stageDescriptions = map[pipeline.Stage]string{
	pipeline.StageInventory: "Performs inventory checks, recommends reorders and estimates delivery.",
	pipeline.StageQuoting:   "Generates quotes from customer request; consults history and inventory to set price and discounts.",
	pipeline.StageOrdering:  "Finalizes sales, writes transactions and returns order confirmation with delivery ETA.",
}

// DefaultDescription returns the built-in description of a stage worker.
func DefaultDescription(stage pipeline.Stage) string {
	return stageDescriptions[stage]
}

// Worker answers stage tasks with a chat model.
type Worker struct {
	Client      Client
	Name        string
	Description string
	Tools       []ledger.Tool
	Model       string
	Temperature float64
	MaxTokens   int
}

// NewStageWorker builds a worker with the stage's persona, description and
// default tools.
func NewStageWorker(client Client, stage pipeline.Stage, model string) Worker {
	return Worker{
		Client:      client,
		Name:        pipeline.AgentName(stage),
		Description: DefaultDescription(stage),
		Tools:       ledger.Tools(ledger.DefaultToolNames(stage)),
		Model:       model,
		Temperature: DefaultTemperature,
	}
}

func (w Worker) Run(ctx context.Context, taskDescription string) (string, error) {
	request := ChatCompletionRequest{
		Model: chooseString(w.Model, DefaultModel),
		Messages: []ChatMessage{
			{Role: roleSystem, Content: w.SystemPrompt()},
			{Role: roleUser, Content: strings.TrimSpace(taskDescription)},
		},
		MaxCompletionTokens: w.MaxTokens,
	}
	// Several models reject any temperature other than their default, so 0 and
	// 1 are left to the server.
	if w.Temperature != 0 && w.Temperature != 1 {
		temperature := w.Temperature
		request.Temperature = &temperature
	}
	text, err := w.Client.CreateChatCompletion(ctx, request)
	if err != nil {
		return "", fmt.Errorf(workerErrorFormat, w.Name, err)
	}
	return text, nil
}

func (w Worker) SystemPrompt() string {
	var builder strings.Builder
	builder.WriteString(fmt.Sprintf(workerIdentityFormat, w.Name, w.Description))
	if len(w.Tools) > 0 {
		builder.WriteString(toolsHeader)
		for _, tool := range w.Tools {
			builder.WriteString(fmt.Sprintf(toolLineFormat, tool.Name, tool.Description))
		}
	}
	builder.WriteString(errorConvention)
	return builder.String()
}

func chooseString(value, fallback string) string {
	if strings.TrimSpace(value) != "" {
		return value
	}
	return fallback
}
