package quotepipeline

const (
	rootCommandUse   = "quote-pipeline"
	rootCommandShort = "Fulfill paper-goods quote requests through inventory, quoting and ordering stages"

	runCommandUse      = "run"
	runCommandShort    = "Run every request in a CSV file through the fulfillment pipeline"
	stagesCommandUse   = "stages"
	stagesCommandShort = "List the configured stages with their model and tools"

	defaultConfigPath = "./config.yaml"
	defaultEnvFile    = ".env"

	configFlagName         = "config"
	configFlagUsage        = "Path to config.yaml"
	inputFlagName          = "input"
	inputFlagUsage         = "CSV file with quote requests (- for stdin)"
	outputFlagName         = "output"
	outputFlagUsage        = "Write a results CSV to this path"
	timeoutFlagName        = "timeout"
	timeoutFlagUsage       = "Per-stage worker timeout (e.g., 45s or 45 for seconds; 0 = none)"
	concurrencyFlagName    = "concurrency"
	concurrencyFlagUsage   = "Number of requests processed at once"
	envFileFlagName        = "env-file"
	envFileFlagUsage       = "Dotenv file loaded before reading the API key"
	logLevelFlagName       = "log-level"
	logLevelFlagUsage      = "Log level (debug, info, warn, error)"
	logFormatFlagName      = "log-format"
	logFormatFlagUsage     = "Log format (console, json)"
	environmentPrefix      = "QUOTE_PIPELINE"
	defaultLogLevel        = "info"
	defaultLogFormat       = "console"
	jsonLogFormat          = "json"
	minimumConcurrency     = 1
	dashPlaceholder        = "-"
	requestLineFormat      = "Request %d: %s\n"
	stageListingLineFormat = "%s\t(agent=%s, model=%s, tools=%s)\n"

	defaultAPIEndpoint               = "https://api.openai.com/v1"
	defaultAPIKeyEnvironmentVariable = "OPENAI_API_KEY"

	statusSuccess = "success"
	statusFailed  = "failed"

	configurationLoaderInitializationErrorFormat = "initialize configuration loader: %w"
	configurationSourceResolutionErrorFormat     = "resolve configuration source: %w"
	rootConfigurationLoadErrorFormat             = "load root configuration %s: %w"
	missingAPIKeyErrorFormat                     = "missing API key: set %s"
	loadEnvironmentFileErrorFormat               = "load env file %s: %w"
	readRequestsErrorFormat                      = "read requests: %w"
	writeResultsErrorFormat                      = "write results: %w"
	buildLoggerErrorFormat                       = "build logger: %w"
	bindFlagErrorFormat                          = "bind flag %s: %w"
	invalidTimeoutErrorFormat                    = "invalid timeout %q: %w"
	writeOutputErrorFormat                       = "write output: %w"
)
