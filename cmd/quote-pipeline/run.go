package quotepipeline

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/quote-pipeline/internal/config"
	"github.com/temirov/quote-pipeline/internal/fsops"
	"github.com/temirov/quote-pipeline/internal/ledger"
	"github.com/temirov/quote-pipeline/internal/llm"
	"github.com/temirov/quote-pipeline/internal/pipeline"
	"github.com/temirov/quote-pipeline/internal/requests"
)

type runCommandOptions struct {
	inputPath  string
	outputPath string
	envFile    string
}

func newRunCommand() *cobra.Command {
	options := &runCommandOptions{envFile: defaultEnvFile}

	command := &cobra.Command{
		Use:   runCommandUse,
		Short: runCommandShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRequestsCommand(cmd, *options, fsops.NewOS())
		},
	}

	command.Flags().StringVar(&options.inputPath, inputFlagName, "", inputFlagUsage)
	command.Flags().StringVar(&options.outputPath, outputFlagName, "", outputFlagUsage)
	command.Flags().StringVar(&options.envFile, envFileFlagName, defaultEnvFile, envFileFlagUsage)
	command.Flags().String(timeoutFlagName, "", timeoutFlagUsage)
	command.Flags().Int(concurrencyFlagName, minimumConcurrency, concurrencyFlagUsage)
	_ = command.MarkFlagRequired(inputFlagName)

	return command
}

func runRequestsCommand(command *cobra.Command, options runCommandOptions, fileOps fsops.Ops) error {
	configurationPath, _ := command.Flags().GetString(configFlagName)
	rootConfiguration, err := loadRootConfiguration(configurationPath)
	if err != nil {
		return err
	}
	settings, err := resolveRuntimeSettings(command, rootConfiguration)
	if err != nil {
		return err
	}
	logger, err := newLogger(command.ErrOrStderr(), settings.logLevel, settings.logFormat)
	if err != nil {
		return fmt.Errorf(buildLoggerErrorFormat, err)
	}
	defer func() { _ = logger.Sync() }()

	if err := loadEnvironmentFile(options.envFile); err != nil {
		return err
	}
	apiKeyEnvironmentVariable := firstNonEmpty(strings.TrimSpace(rootConfiguration.Common.API.APIKeyEnv), defaultAPIKeyEnvironmentVariable)
	apiKey := strings.TrimSpace(os.Getenv(apiKeyEnvironmentVariable))
	if apiKey == "" {
		return fmt.Errorf(missingAPIKeyErrorFormat, apiKeyEnvironmentVariable)
	}

	workers, err := newStageRegistry(rootConfiguration, llm.Client{
		HTTPBaseURL: firstNonEmpty(strings.TrimSpace(rootConfiguration.Common.API.Endpoint), defaultAPIEndpoint),
		APIKey:      apiKey,
	}).Workers()
	if err != nil {
		return err
	}
	orchestrator := pipeline.Orchestrator{
		Workers: workers,
		Tasks: pipeline.TaskBuilder{
			CompanyName: rootConfiguration.Company.Name,
			Preambles:   rootConfiguration.Preambles(),
		},
		Logger:  logger,
		Options: pipeline.Options{StageTimeout: settings.stageTimeout},
	}

	input, err := fileOps.Open(options.inputPath, command.InOrStdin())
	if err != nil {
		return fmt.Errorf(readRequestsErrorFormat, err)
	}
	records, err := requests.ReadRecords(input)
	if err != nil {
		return fmt.Errorf(readRequestsErrorFormat, err)
	}
	logger.Info("processing requests",
		zap.Int("records", len(records)),
		zap.Int("concurrency", settings.concurrency),
		zap.Duration("stage_timeout", settings.stageTimeout))

	results := processRequests(command.Context(), orchestrator, prepareRequests(records), settings.concurrency, logger)
	if err := printResults(command.OutOrStdout(), results); err != nil {
		return err
	}
	if options.outputPath == "" {
		return nil
	}
	encoded, err := encodeResults(results)
	if err != nil {
		return fmt.Errorf(writeResultsErrorFormat, err)
	}
	if err := fileOps.WriteFileAtomic(options.outputPath, encoded); err != nil {
		return fmt.Errorf(writeResultsErrorFormat, err)
	}
	return nil
}

// loadEnvironmentFile applies a dotenv file without overriding variables that
// are already set. A missing file is not an error.
func loadEnvironmentFile(path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf(loadEnvironmentFileErrorFormat, path, err)
	}
	return nil
}

// newStageRegistry registers one chat-model worker per stage using the stage's
// configured model, description and tools.
func newStageRegistry(rootConfiguration config.Root, client llm.Client) *pipeline.Registry {
	registry := pipeline.NewRegistry()
	for _, stage := range pipeline.Stages() {
		stage := stage
		_ = registry.Register(stage, func() (pipeline.Worker, error) {
			return newStageWorker(rootConfiguration, client, stage), nil
		})
	}
	return registry
}

func newStageWorker(rootConfiguration config.Root, client llm.Client, stage pipeline.Stage) llm.Worker {
	settings, model := rootConfiguration.StageSettings(stage)
	worker := llm.NewStageWorker(client, stage, model.ModelID)
	worker.Tools = ledger.Tools(settings.Tools)
	worker.MaxTokens = model.MaxCompletionTokens
	if strings.TrimSpace(settings.Description) != "" {
		worker.Description = settings.Description
	}
	if model.SupportsTemperature && model.DefaultTemperature > 0 {
		worker.Temperature = model.DefaultTemperature
	} else if !model.SupportsTemperature {
		worker.Temperature = 0
	}
	return worker
}
