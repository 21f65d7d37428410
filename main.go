package main

import (
	"os"

	"go.uber.org/zap"

	quotepipeline "github.com/temirov/quote-pipeline/cmd/quote-pipeline"
)

func main() {
	logger := zap.Must(zap.NewProduction())

	executionErr := quotepipeline.Execute()
	if executionErr != nil {
		logger.Error("command execution failed", zap.Error(executionErr))
		_ = logger.Sync()
		os.Exit(1)
	}

	syncErr := logger.Sync()
	if syncErr != nil {
		os.Exit(1)
	}
}
