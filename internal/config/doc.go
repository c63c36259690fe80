// Package config provides centralized configuration management for the
// cold-drink survey pipeline. It loads configuration from multiple sources,
// validates it, and exposes the resolved directory layout through Paths.
//
// # Configuration Sources
//
// Configuration is layered in the following order, later sources winning:
//
//  1. Default values (Default)
//  2. YAML configuration file (COLDDRINKS_CONFIG_FILE or colddrinks.yaml)
//  3. Environment variables (highest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern COLDDRINKS_<SECTION>_<FIELD>:
//
//	COLDDRINKS_PATHS_INPUT_DIR=/data/survey
//	COLDDRINKS_PIPELINE_RETRIES=2
//	COLDDRINKS_PIPELINE_EXECUTION_MODE=parallel
//	COLDDRINKS_LOGGING_LEVEL=debug
//	COLDDRINKS_SERVER_PORT=9090
//
// # Path Management
//
// Relative directories are resolved against the working directory, matching
// the ./airflow/input_data layout the pipeline has always used:
//
//	cfg, _ := config.Load()
//	paths := cfg.GetPaths()
//	paths.EnsureDirectories()
//	handoff := paths.HandoffFile // <extract_dir>/extracted_data.csv
package config
