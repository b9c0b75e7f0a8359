package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// clearEnv blanks every variable Load consults so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"INPUT_DIR", "OUTPUT_DIR", "MAPPING_FILE", "MAPPING_ENCODING", "MAPPING_SHEET",
		"AWS_REGION", "LOG_LEVEL", "METRICS_FILE", "DEFAULT_TAX_RATE",
	} {
		t.Setenv(key, "")
	}
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "input", cfg.InputDir)
	assert.Equal(t, "output", cfg.OutputDir)
	assert.Equal(t, "map_dictionary.csv", cfg.MappingFile)
	assert.Equal(t, 0.10, cfg.DefaultTaxRate)
	assert.Equal(t, "ap-northeast-1", cfg.AWS.Region)
	assert.True(t, cfg.ContinueOnError)
	assert.False(t, cfg.XLSXReport)
}

func TestLoad_YAMLOverlay(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	yamlDoc := `
input_dir: scans
default_tax_rate: 0.08
continue_on_error: false
xlsx_report: true
aws:
  region: us-west-2
log:
  format: json
`
	require.NoError(t, os.WriteFile(path, []byte(yamlDoc), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "scans", cfg.InputDir)
	assert.Equal(t, "output", cfg.OutputDir, "unset keys keep their defaults")
	assert.Equal(t, 0.08, cfg.DefaultTaxRate)
	assert.False(t, cfg.ContinueOnError)
	assert.True(t, cfg.XLSXReport)
	assert.Equal(t, "us-west-2", cfg.AWS.Region)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvironmentWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEFAULT_TAX_RATE", "0.08")
	t.Setenv("AWS_REGION", "eu-west-1")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("default_tax_rate: 0.05\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 0.08, cfg.DefaultTaxRate)
	assert.Equal(t, "eu-west-1", cfg.AWS.Region)
}

func TestLoad_BadTaxRate(t *testing.T) {
	clearEnv(t)
	t.Setenv("DEFAULT_TAX_RATE", "ten percent")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DEFAULT_TAX_RATE")
}

func TestLoad_BadLogLevel(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "loud")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "log.level")
}

func TestLoad_MappingSheet(t *testing.T) {
	clearEnv(t)
	t.Setenv("MAPPING_SHEET", "mapping")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "mapping", cfg.MappingSheet)
}

func TestLoad_MalformedYAML(t *testing.T) {
	clearEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("input_dir: [unclosed"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr bool
	}{
		{"defaults", func(*Config) {}, false},
		{"negative tax", func(c *Config) { c.DefaultTaxRate = -0.1 }, true},
		{"percent instead of fraction", func(c *Config) { c.DefaultTaxRate = 10 }, true},
		{"empty region", func(c *Config) { c.AWS.Region = " " }, true},
		{"half credentials", func(c *Config) { c.AWS.AccessKeyID = "AKIA" }, true},
		{"unknown log format", func(c *Config) { c.Log.Format = "xml" }, true},
		{"unknown log level", func(c *Config) { c.Log.Level = "chatty" }, true},
		{"upper-case log level", func(c *Config) { c.Log.Level = "WARN" }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestApplyEnv_IgnoresBlankValues(t *testing.T) {
	cfg := Default()
	env := map[string]string{"INPUT_DIR": "  ", "OUTPUT_DIR": "out2"}

	err := cfg.applyEnv(func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	})
	require.NoError(t, err)

	assert.Equal(t, "input", cfg.InputDir)
	assert.Equal(t, "out2", cfg.OutputDir)
}
