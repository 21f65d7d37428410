package pipeline

import "strings"

const failurePrefix = "ERROR"

// StageResult is a worker answer classified once at the worker boundary.
type StageResult struct {
	Stage     Stage
	Text      string
	Succeeded bool
}

// Classify turns raw worker text into a StageResult. Empty text and text
// starting with ERROR after trimming and upper-casing are failures.
func Classify(stage Stage, text string) StageResult {
	trimmed := strings.TrimSpace(text)
	succeeded := trimmed != "" && !strings.HasPrefix(strings.ToUpper(trimmed), failurePrefix)
	return StageResult{Stage: stage, Text: text, Succeeded: succeeded}
}
