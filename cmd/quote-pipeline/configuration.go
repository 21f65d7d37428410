package quotepipeline

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/temirov/quote-pipeline/internal/config"
)

func loadRootConfiguration(configurationPath string) (config.Root, error) {
	configurationLoader, loaderErr := config.NewDefaultRootConfigurationLoader()
	if loaderErr != nil {
		return config.Root{}, fmt.Errorf(configurationLoaderInitializationErrorFormat, loaderErr)
	}
	if configurationPath == defaultConfigPath {
		configurationPath = ""
	}
	configurationSource, sourceErr := configurationLoader.Load(configurationPath)
	if sourceErr != nil {
		return config.Root{}, fmt.Errorf(configurationSourceResolutionErrorFormat, sourceErr)
	}
	rootConfiguration, loadErr := config.LoadRoot(configurationSource)
	if loadErr != nil {
		return config.Root{}, fmt.Errorf(rootConfigurationLoadErrorFormat, configurationSource.Reference, loadErr)
	}
	return rootConfiguration, nil
}

// runtimeSettings are the knobs that flags and QUOTE_PIPELINE_* variables may
// override on top of the configuration file.
type runtimeSettings struct {
	logLevel     string
	logFormat    string
	stageTimeout time.Duration
	concurrency  int
}

// resolveRuntimeSettings layers changed flags over environment variables over
// the configuration file.
func resolveRuntimeSettings(command *cobra.Command, rootConfiguration config.Root) (runtimeSettings, error) {
	settingsViper := viper.New()
	settingsViper.SetEnvPrefix(environmentPrefix)
	settingsViper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	settingsViper.AutomaticEnv()

	settingsViper.SetDefault(logLevelFlagName, firstNonEmpty(rootConfiguration.Common.Logging.Level, defaultLogLevel))
	settingsViper.SetDefault(logFormatFlagName, firstNonEmpty(rootConfiguration.Common.Logging.Format, defaultLogFormat))
	settingsViper.SetDefault(timeoutFlagName, (time.Duration(rootConfiguration.Common.Defaults.TimeoutSeconds) * time.Second).String())
	settingsViper.SetDefault(concurrencyFlagName, rootConfiguration.Common.Defaults.Concurrency)

	if err := bindFlags(settingsViper, command.Flags(), logLevelFlagName, logFormatFlagName, timeoutFlagName, concurrencyFlagName); err != nil {
		return runtimeSettings{}, err
	}

	stageTimeout, err := parseStageTimeout(settingsViper.GetString(timeoutFlagName))
	if err != nil {
		return runtimeSettings{}, err
	}
	settings := runtimeSettings{
		logLevel:     strings.ToLower(strings.TrimSpace(settingsViper.GetString(logLevelFlagName))),
		logFormat:    strings.ToLower(strings.TrimSpace(settingsViper.GetString(logFormatFlagName))),
		stageTimeout: stageTimeout,
		concurrency:  settingsViper.GetInt(concurrencyFlagName),
	}
	if settings.stageTimeout < 0 {
		settings.stageTimeout = 0
	}
	if settings.concurrency < minimumConcurrency {
		settings.concurrency = minimumConcurrency
	}
	return settings, nil
}

// parseStageTimeout reads a duration such as 45s or 1m30s. A bare integer is
// taken as whole seconds, matching timeout_seconds in the configuration file.
func parseStageTimeout(value string) (time.Duration, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return 0, nil
	}
	if seconds, err := strconv.Atoi(trimmed); err == nil {
		return time.Duration(seconds) * time.Second, nil
	}
	timeout, err := time.ParseDuration(trimmed)
	if err != nil {
		return 0, fmt.Errorf(invalidTimeoutErrorFormat, value, err)
	}
	return timeout, nil
}

// bindFlags binds the named flags that exist on the flag set; absent flags are
// skipped so commands may expose a subset.
func bindFlags(settingsViper *viper.Viper, flags *pflag.FlagSet, flagNames ...string) error {
	for _, flagName := range flagNames {
		flag := flags.Lookup(flagName)
		if flag == nil {
			continue
		}
		if err := settingsViper.BindPFlag(flagName, flag); err != nil {
			return fmt.Errorf(bindFlagErrorFormat, flagName, err)
		}
	}
	return nil
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			return value
		}
	}
	return ""
}
