package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config represents the complete pipeline configuration
type Config struct {
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Server    ServerConfig    `yaml:"server" envconfig:"SERVER"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// PathsConfig contains file system paths configuration
type PathsConfig struct {
	InputDir   string `yaml:"input_dir" envconfig:"INPUT_DIR" validate:"required"`
	ExtractDir string `yaml:"extract_dir" envconfig:"EXTRACT_DIR" validate:"required"`
	// ResultsDir defaults to ExtractDir when empty.
	ResultsDir string `yaml:"results_dir" envconfig:"RESULTS_DIR"`
	LogsDir    string `yaml:"logs_dir" envconfig:"LOGS_DIR" validate:"required"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level       string `yaml:"level" envconfig:"LEVEL" validate:"oneof=debug info warn warning error"`
	Format      string `yaml:"format" envconfig:"FORMAT" validate:"oneof=json text"`
	Output      string `yaml:"output" envconfig:"OUTPUT" validate:"oneof=console file both"`
	FilePath    string `yaml:"file_path" envconfig:"FILE_PATH"`
	Development bool   `yaml:"development" envconfig:"DEVELOPMENT"`
}

// PipelineConfig controls how the host scheduler runs the pipeline steps
type PipelineConfig struct {
	Retries          int           `yaml:"retries" envconfig:"RETRIES" validate:"min=0,max=10"`
	RetryDelay       time.Duration `yaml:"retry_delay" envconfig:"RETRY_DELAY" validate:"min=0"`
	StepTimeout      time.Duration `yaml:"step_timeout" envconfig:"STEP_TIMEOUT" validate:"gt=0"`
	ExecutionMode    string        `yaml:"execution_mode" envconfig:"EXECUTION_MODE" validate:"oneof=sequential parallel"`
	MaxConcurrency   int           `yaml:"max_concurrency" envconfig:"MAX_CONCURRENCY" validate:"min=1,max=64"`
	Handoff          string        `yaml:"handoff" envconfig:"HANDOFF" validate:"oneof=memory file"`
	ScheduleInterval time.Duration `yaml:"schedule_interval" envconfig:"SCHEDULE_INTERVAL" validate:"gt=0"`
	RunOnStart       bool          `yaml:"run_on_start" envconfig:"RUN_ON_START"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Enabled         bool          `yaml:"enabled" envconfig:"ENABLED"`
	Port            int           `yaml:"port" envconfig:"PORT" validate:"min=1,max=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	// RateLimitRPS of 0 disables rate limiting of the API
	RateLimitRPS   float64 `yaml:"rate_limit_rps" envconfig:"RATE_LIMIT_RPS" validate:"min=0"`
	RateLimitBurst int     `yaml:"rate_limit_burst" envconfig:"RATE_LIMIT_BURST" validate:"min=0"`
}

// TelemetryConfig selects the OpenTelemetry exporters
type TelemetryConfig struct {
	ServiceName    string `yaml:"service_name" envconfig:"SERVICE_NAME"`
	TraceExporter  string `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER" validate:"oneof=stdout none"`
	MetricExporter string `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER" validate:"oneof=prometheus none"`
}

// Default returns the baseline configuration every other source is layered on.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			InputDir:   DefaultInputDir,
			ExtractDir: DefaultExtractDir,
			LogsDir:    DefaultLogsDir,
		},
		Logging: LoggingConfig{
			Level:    "info",
			Format:   "json",
			Output:   "console",
			FilePath: "colddrinks.log",
		},
		Pipeline: PipelineConfig{
			Retries:          DefaultRetries,
			RetryDelay:       DefaultRetryDelay,
			StepTimeout:      DefaultStepTimeout,
			ExecutionMode:    ExecutionModeSequential,
			MaxConcurrency:   DefaultMaxConcurrency,
			Handoff:          HandoffFile,
			ScheduleInterval: DefaultScheduleInterval,
			RunOnStart:       true,
		},
		Server: ServerConfig{
			Enabled:         true,
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			RateLimitRPS:    10,
			RateLimitBurst:  20,
		},
		Telemetry: TelemetryConfig{
			ServiceName:    AppName,
			TraceExporter:  "none",
			MetricExporter: "prometheus",
		},
	}
}

// Load loads configuration from defaults, the optional config file named by
// COLDDRINKS_CONFIG_FILE and COLDDRINKS_* environment variables.
func Load() (*Config, error) {
	return LoadFrom("")
}

// LoadFrom is Load with an explicit config file path. An empty path falls
// back to COLDDRINKS_CONFIG_FILE and then to colddrinks.yaml if present.
// Precedence, lowest first: defaults, file, environment.
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	explicit := configFile != ""
	if !explicit {
		configFile = getConfigFilePath()
	}
	if _, err := os.Stat(configFile); err == nil {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	} else if explicit {
		return nil, fmt.Errorf("config file %s: %w", configFile, err)
	}

	// Fields without a matching variable are left untouched.
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.resolvePaths(); err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays YAML values on top of cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// resolvePaths makes every directory absolute against the working directory
func (c *Config) resolvePaths() error {
	if c.Paths.ResultsDir == "" {
		c.Paths.ResultsDir = c.Paths.ExtractDir
	}

	for _, p := range []*string{&c.Paths.InputDir, &c.Paths.ExtractDir, &c.Paths.ResultsDir, &c.Paths.LogsDir} {
		if *p == "" || filepath.IsAbs(*p) {
			continue
		}
		abs, err := filepath.Abs(*p)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", *p, err)
		}
		*p = abs
	}

	if c.Logging.FilePath != "" && !filepath.IsAbs(c.Logging.FilePath) {
		c.Logging.FilePath = filepath.Join(c.Paths.LogsDir, c.Logging.FilePath)
	}
	return nil
}

// validate checks the struct tags and the cross-field rules they cannot express
func (c *Config) validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.Logging.Output != "console" && c.Logging.FilePath == "" {
		return fmt.Errorf("logging.file_path is required when output is %q", c.Logging.Output)
	}
	return nil
}

// Validate runs the same checks Load applies; useful for configs built in code.
func (c *Config) Validate() error {
	return c.validate()
}

// getConfigFilePath returns the config file path
func getConfigFilePath() string {
	if path := os.Getenv(ConfigFileEnv); path != "" {
		return path
	}
	return DefaultConfigFile
}
