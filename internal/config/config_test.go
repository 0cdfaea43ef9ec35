package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	// Arrange: an empty directory, no config file.
	dir := t.TempDir()

	// Act
	cfg, err := LoadConfig(dir)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, SourceBOI, cfg.Rates.Source)
	assert.Equal(t, DefaultBaseURL, cfg.Rates.BaseURL)
	assert.Equal(t, "USD", cfg.Rates.Currency)
	assert.Equal(t, 1, cfg.Rates.MaxAttempts)
	assert.False(t, cfg.Rates.AllowDegraded)
	assert.Equal(t, "file::memory:", cfg.Database.DSN)
}

func TestLoadConfig_FileAndEnv(t *testing.T) {
	dir := t.TempDir()
	content := `
logger:
  level: debug
  format: json
rates:
  source: file
  file: rates.csv
  max_attempts: 3
database:
  dsn: cache.db
output:
  explanations: 1325_explanations.pdf
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yml"), []byte(content), 0o644))
	t.Setenv("FORM1325_RATES_ALLOW_DEGRADED", "true")

	cfg, err := LoadConfig(dir)

	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
	assert.Equal(t, SourceFile, cfg.Rates.Source)
	assert.Equal(t, "rates.csv", cfg.Rates.File)
	assert.Equal(t, 3, cfg.Rates.MaxAttempts)
	assert.True(t, cfg.Rates.AllowDegraded)
	assert.Equal(t, "cache.db", cfg.Database.DSN)
	assert.Equal(t, "1325_explanations.pdf", cfg.Output.Explanations)
	assert.Empty(t, cfg.Output.Wkhtmltopdf)
}

func TestConfig_Validate(t *testing.T) {
	valid := Config{Rates: Rates{Source: SourceBOI, BaseURL: DefaultBaseURL, Currency: "USD", MaxAttempts: 1}}

	tests := []struct {
		name   string
		mutate func(c *Config)
		errMsg string
	}{
		{"valid", func(c *Config) {}, ""},
		{"unknown source", func(c *Config) { c.Rates.Source = "ecb" }, "invalid rates.source"},
		{"file source without file", func(c *Config) { c.Rates.Source = SourceFile }, "rates.file is required"},
		{"bad currency", func(c *Config) { c.Rates.Currency = "DOLLAR" }, "3-letter"},
		{"no attempts", func(c *Config) { c.Rates.MaxAttempts = 0 }, "max_attempts"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid
			tt.mutate(&c)
			err := c.Validate()
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}
