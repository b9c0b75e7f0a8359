// =============================================================================
// Invoice Price Comparison - Configuration Module
// =============================================================================
//
// This module builds the single configuration value that both stages receive.
// It is constructed once at process start and passed down explicitly; nothing
// below cmd/ reads the environment.
//
// SOURCES (later wins):
//   1. Built-in defaults
//   2. config.yaml (optional)
//   3. .env file (optional, loaded into the process environment)
//   4. Environment variables (DEFAULT_TAX_RATE, AWS_REGION, ...)
//
// =============================================================================

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap/zapcore"
	"gopkg.in/yaml.v3"
)

// =============================================================================
// DEFAULTS
// =============================================================================

const (
	DefaultInputDir        = "input"
	DefaultOutputDir       = "output"
	DefaultMappingFile     = "map_dictionary.csv"
	DefaultMappingEncoding = "UTF-8"
	DefaultTaxRate         = 0.10
	DefaultRegion          = "ap-northeast-1"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "console"
)

// =============================================================================
// CONFIGURATION STRUCTURE
// =============================================================================

// Config holds everything the extraction and reconciliation stages need.
type Config struct {
	// InputDir is scanned (non-recursively) for invoice documents.
	InputDir string `yaml:"input_dir"`

	// OutputDir receives every CSV artifact.
	OutputDir string `yaml:"output_dir"`

	// MappingFile is the user-maintained raw -> canonical name table.
	// A missing file is valid and means identity normalization.
	MappingFile string `yaml:"mapping_file"`

	// MappingEncoding is the character encoding of a CSV mapping file.
	// Valid values: "UTF-8", "Shift_JIS", "EUC-JP", "Windows-1252"
	MappingEncoding string `yaml:"mapping_encoding"`

	// MappingSheet is the worksheet of an .xlsx mapping file.
	// Default: the first sheet.
	MappingSheet string `yaml:"mapping_sheet"`

	// DefaultTaxRate fills tax_rate when a line item carries none.
	// Expressed as a fraction: 0.10 means 10%.
	DefaultTaxRate float64 `yaml:"default_tax_rate"`

	// ContinueOnError isolates a failed document and keeps the batch going.
	// When false, the first failed service call aborts the extraction stage.
	ContinueOnError bool `yaml:"continue_on_error"`

	// Progress shows a progress bar on stderr during extraction.
	Progress bool `yaml:"progress"`

	// XLSXReport also writes cheapest_by_item.xlsx next to the CSV.
	XLSXReport bool `yaml:"xlsx_report"`

	// MetricsFile, when set, receives a Prometheus textfile snapshot after
	// each stage.
	MetricsFile string `yaml:"metrics_file"`

	AWS AWSConfig `yaml:"aws"`
	Log LogConfig `yaml:"log"`
}

// AWSConfig configures the document-understanding client.
type AWSConfig struct {
	Region string `yaml:"region"`

	// Endpoint overrides the service endpoint (for example a local emulator).
	Endpoint string `yaml:"endpoint"`

	// AccessKeyID and SecretAccessKey are optional static credentials. When
	// empty the default AWS credential chain is used.
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
}

// LogConfig configures the zap logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" or "json"
}

// Default returns the configuration used when no file or environment
// overrides are present.
func Default() *Config {
	return &Config{
		InputDir:        DefaultInputDir,
		OutputDir:       DefaultOutputDir,
		MappingFile:     DefaultMappingFile,
		MappingEncoding: DefaultMappingEncoding,
		DefaultTaxRate:  DefaultTaxRate,
		ContinueOnError: true,
		Progress:        true,
		AWS: AWSConfig{
			Region: DefaultRegion,
		},
		Log: LogConfig{
			Level:  DefaultLogLevel,
			Format: DefaultLogFormat,
		},
	}
}

// =============================================================================
// LOADING
// =============================================================================

// Load builds the configuration from defaults, the optional YAML file at
// configPath, an optional .env file and the process environment.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	if configPath != "" {
		if err := cfg.mergeFile(configPath); err != nil {
			return nil, err
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	applyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// mergeFile overlays the YAML file onto cfg. A missing file is not an error.
func (c *Config) mergeFile(path string) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("failed to parse config file: %w", err)
	}

	return nil
}

// applyEnv overlays environment variables. lookup is os.LookupEnv outside of
// tests.
func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"INPUT_DIR":        &c.InputDir,
		"OUTPUT_DIR":       &c.OutputDir,
		"MAPPING_FILE":     &c.MappingFile,
		"MAPPING_ENCODING": &c.MappingEncoding,
		"MAPPING_SHEET":    &c.MappingSheet,
		"AWS_REGION":       &c.AWS.Region,
		"LOG_LEVEL":        &c.Log.Level,
		"METRICS_FILE":     &c.MetricsFile,
	}
	for key, target := range strs {
		if value, ok := lookup(key); ok && strings.TrimSpace(value) != "" {
			*target = strings.TrimSpace(value)
		}
	}

	if value, ok := lookup("DEFAULT_TAX_RATE"); ok && strings.TrimSpace(value) != "" {
		rate, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
		if err != nil {
			return fmt.Errorf("DEFAULT_TAX_RATE %q is not a number: %w", value, err)
		}
		c.DefaultTaxRate = rate
	}

	return nil
}

// applyDefaults restores defaults for fields a config file blanked out.
func applyDefaults(c *Config) {
	if c.InputDir == "" {
		c.InputDir = DefaultInputDir
	}
	if c.OutputDir == "" {
		c.OutputDir = DefaultOutputDir
	}
	if c.MappingEncoding == "" {
		c.MappingEncoding = DefaultMappingEncoding
	}
	if c.AWS.Region == "" {
		c.AWS.Region = DefaultRegion
	}
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}

// Validate checks the configuration for values the stages cannot work with.
func (c *Config) Validate() error {
	if c.DefaultTaxRate < 0 || c.DefaultTaxRate > 1 {
		return fmt.Errorf("default_tax_rate must be a fraction between 0 and 1, got %v", c.DefaultTaxRate)
	}
	if strings.TrimSpace(c.AWS.Region) == "" {
		return fmt.Errorf("aws.region must not be empty")
	}
	if c.InputDir == "" || c.OutputDir == "" {
		return fmt.Errorf("input_dir and output_dir must not be empty")
	}
	if (c.AWS.AccessKeyID == "") != (c.AWS.SecretAccessKey == "") {
		return fmt.Errorf("aws.access_key_id and aws.secret_access_key must be set together")
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be \"console\" or \"json\", got %q", c.Log.Format)
	}
	return nil
}
