package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Logger   Logger   `mapstructure:"logger"`
	Rates    Rates    `mapstructure:"rates"`
	Database Database `mapstructure:"database"`
	Output   Output   `mapstructure:"output"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	File   string `mapstructure:"file"` // optional extra output path
}

// Rates holds the configuration for the exchange rate source.
type Rates struct {
	Source         string  `mapstructure:"source"` // "boi" or "file"
	BaseURL        string  `mapstructure:"base_url"`
	Currency       string  `mapstructure:"currency"`
	File           string  `mapstructure:"file"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
	MaxAttempts    int     `mapstructure:"max_attempts"`
	AllowDegraded  bool    `mapstructure:"allow_degraded"`
}

// Output holds the configuration for PDF documents.
type Output struct {
	Wkhtmltopdf  string `mapstructure:"wkhtmltopdf"`  // binary path, PATH lookup when empty
	Explanations string `mapstructure:"explanations"` // optional PDF appended to the form
}

// Database holds the configuration for the rate cache database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

const (
	SourceBOI  = "boi"
	SourceFile = "file"

	DefaultBaseURL = "https://edge.boi.gov.il/FusionEdgeServer/sdmx/v2/data/dataflow/BOI.STATISTICS/EXR/1.0/"
)

// LoadConfig reads configuration from file or environment variables.
// A missing config file is not an error: defaults and the environment apply.
func LoadConfig(path string) (config Config, err error) {
	v := viper.New()
	v.AddConfigPath(path)
	v.SetConfigName("config") // name of config file (without extension)
	v.SetConfigType("yml")    // or yaml, json

	// Allow environment variables to override config file
	v.SetEnvPrefix("form1325")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err = v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return config, fmt.Errorf("could not read config: %w", err)
		}
	}

	if err = v.Unmarshal(&config); err != nil {
		return config, fmt.Errorf("could not decode config: %w", err)
	}
	err = config.Validate()
	return
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.file", "")

	v.SetDefault("rates.source", SourceBOI)
	v.SetDefault("rates.base_url", DefaultBaseURL)
	v.SetDefault("rates.currency", "USD")
	v.SetDefault("rates.file", "")
	v.SetDefault("rates.rate_limit", 5) // requests per second
	v.SetDefault("rates.rate_limit_burst", 1)
	v.SetDefault("rates.max_attempts", 1) // a single request, no retry
	v.SetDefault("rates.allow_degraded", false)

	v.SetDefault("database.dsn", "file::memory:")

	v.SetDefault("output.wkhtmltopdf", "")
	v.SetDefault("output.explanations", "")
}

// Validate checks the values that cannot be defaulted.
func (c Config) Validate() error {
	switch c.Rates.Source {
	case SourceBOI:
		if c.Rates.BaseURL == "" {
			return errors.New("rates.base_url cannot be empty")
		}
	case SourceFile:
		if c.Rates.File == "" {
			return errors.New("rates.file is required when rates.source is 'file'")
		}
	default:
		return fmt.Errorf("invalid rates.source '%s': must be '%s' or '%s'", c.Rates.Source, SourceBOI, SourceFile)
	}
	if len(c.Rates.Currency) != 3 {
		return fmt.Errorf("rates.currency must be a 3-letter ISO code, got '%s'", c.Rates.Currency)
	}
	if c.Rates.MaxAttempts < 1 {
		return fmt.Errorf("rates.max_attempts must be at least 1, got %d", c.Rates.MaxAttempts)
	}
	return nil
}
