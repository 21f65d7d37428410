package quotepipeline

import "github.com/spf13/cobra"

// NewRootCommand assembles the CLI.
func NewRootCommand() *cobra.Command {
	rootCommand := &cobra.Command{
		Use:           rootCommandUse,
		Short:         rootCommandShort,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCommand.PersistentFlags().String(configFlagName, defaultConfigPath, configFlagUsage)
	rootCommand.PersistentFlags().String(logLevelFlagName, "", logLevelFlagUsage)
	rootCommand.PersistentFlags().String(logFormatFlagName, "", logFormatFlagUsage)

	rootCommand.AddCommand(newRunCommand())
	rootCommand.AddCommand(newStagesCommand())
	return rootCommand
}

func Execute() error {
	return NewRootCommand().Execute()
}
