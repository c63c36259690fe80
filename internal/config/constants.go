package config

import "time"

// Application constants
const (
	AppName    = "colddrinks"
	AppVersion = "1.0.0"

	// EnvPrefix namespaces every environment variable read by Load.
	EnvPrefix = "COLDDRINKS"

	// ConfigFileEnv names an optional YAML configuration file.
	ConfigFileEnv     = "COLDDRINKS_CONFIG_FILE"
	DefaultConfigFile = "colddrinks.yaml"

	// HandoffFileName is the CSV file the loader leaves in the extract
	// directory for analyzers that run in a separate process.
	HandoffFileName = "extracted_data.csv"

	// Default directory layout, relative to the working directory.
	DefaultInputDir   = "airflow/input_data"
	DefaultExtractDir = "airflow/extract_folder"
	DefaultLogsDir    = "logs"

	// Pipeline defaults mirror the original daily workflow.
	DefaultRetries          = 1
	DefaultRetryDelay       = 5 * time.Minute
	DefaultStepTimeout      = 10 * time.Minute
	DefaultScheduleInterval = 24 * time.Hour
	DefaultMaxConcurrency   = 5

	ExecutionModeSequential = "sequential"
	ExecutionModeParallel   = "parallel"

	HandoffMemory = "memory"
	HandoffFile   = "file"
)
