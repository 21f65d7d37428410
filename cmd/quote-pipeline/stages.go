package quotepipeline

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/temirov/quote-pipeline/internal/pipeline"
)

func newStagesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   stagesCommandUse,
		Short: stagesCommandShort,
		Args:  cobra.NoArgs,
		RunE:  runStagesCommand,
	}
}

func runStagesCommand(command *cobra.Command, args []string) error {
	configurationPath, _ := command.Flags().GetString(configFlagName)
	rootConfiguration, err := loadRootConfiguration(configurationPath)
	if err != nil {
		return err
	}
	outputWriter := command.OutOrStdout()
	for _, stage := range pipeline.Stages() {
		settings, model := rootConfiguration.StageSettings(stage)
		_, writeErr := fmt.Fprintf(outputWriter, stageListingLineFormat,
			stage,
			pipeline.AgentName(stage),
			dashIfEmpty(model.ModelID),
			dashIfEmpty(strings.Join(settings.Tools, ",")))
		if writeErr != nil {
			return fmt.Errorf(writeOutputErrorFormat, writeErr)
		}
	}
	return nil
}

func dashIfEmpty(value string) string {
	if value == "" {
		return dashPlaceholder
	}
	return value
}
