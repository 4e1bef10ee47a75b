package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/dotcommander/praxy/internal/logging"
)

// Config represents the praxy configuration
type Config struct {
	Format      string       `mapstructure:"format"`
	Output      string       `mapstructure:"output"`
	Quiet       bool         `mapstructure:"quiet"`
	Verbose     bool         `mapstructure:"verbose"`
	Concurrency int          `mapstructure:"concurrency"`
	AI          AIConfig     `mapstructure:"ai"`
	Log         LogConfig    `mapstructure:"log"`
	Store       StoreConfig  `mapstructure:"store"`
	Server      ServerConfig `mapstructure:"server"`
}

// AIConfig configures the chat-completion provider. An empty APIKey disables AI scoring.
type AIConfig struct {
	APIKey      string        `mapstructure:"apiKey"`
	Model       string        `mapstructure:"model"`
	Endpoint    string        `mapstructure:"endpoint"`
	MaxTokens   int           `mapstructure:"maxTokens"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
	Validate    bool          `mapstructure:"validate"`
}

// LogConfig contains logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// StoreConfig selects the result store. An empty DSN disables persistence.
type StoreConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

// Enabled reports whether a result store is configured
func (s StoreConfig) Enabled() bool {
	return s.DSN != ""
}

// configFiles are tried in order when no explicit file is given
var configFiles = []string{".praxyrc.json", ".praxyrc.yaml", ".praxyrc.yml"}

// SetDefaults registers every default value with viper
func SetDefaults() {
	viper.SetDefault("format", "console")
	viper.SetDefault("output", "")
	viper.SetDefault("quiet", false)
	viper.SetDefault("verbose", false)
	viper.SetDefault("concurrency", 4)
	viper.SetDefault("ai.apiKey", "")
	viper.SetDefault("ai.model", "openai/gpt-4o-mini")
	viper.SetDefault("ai.endpoint", "https://openrouter.ai/api/v1/chat/completions")
	viper.SetDefault("ai.maxTokens", 1024)
	viper.SetDefault("ai.temperature", 0.3)
	viper.SetDefault("ai.timeout", 10*time.Second)
	viper.SetDefault("ai.validate", true)
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "text")
	viper.SetDefault("store.driver", "sqlite")
	viper.SetDefault("store.dsn", "")
	viper.SetDefault("server.addr", ":8080")
}

// LoadConfig loads configuration from defaults, an optional config file, a
// .env file and PRAXY_* environment variables. configFile may be empty.
func LoadConfig(configFile string) (*Config, error) {
	SetDefaults()

	// .env only fills variables that are not already set
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("error loading .env: %w", err)
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
	} else {
		for _, path := range configFiles {
			viper.SetConfigFile(path)
			if err := viper.ReadInConfig(); err == nil {
				break
			}
		}
	}

	viper.SetEnvPrefix("PRAXY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()
	if err := viper.BindEnv("ai.apiKey", "PRAXY_AI_API_KEY", "OPENROUTER_API_KEY"); err != nil {
		return nil, fmt.Errorf("error binding api key: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	config.AI.APIKey = strings.TrimSpace(config.AI.APIKey)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if config.Format != "console" && config.Format != "json" && config.Format != "markdown" {
		return fmt.Errorf("invalid format: %s. Must be 'console', 'json', or 'markdown'", config.Format)
	}

	if config.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1")
	}

	if config.AI.MaxTokens < 1 {
		return fmt.Errorf("ai.maxTokens must be at least 1")
	}
	if config.AI.Temperature < 0 || config.AI.Temperature > 2 {
		return fmt.Errorf("ai.temperature must be between 0 and 2, got %g", config.AI.Temperature)
	}
	if config.AI.Timeout <= 0 {
		return fmt.Errorf("ai.timeout must be positive")
	}
	if config.AI.Endpoint == "" {
		return fmt.Errorf("ai.endpoint is required")
	}

	if _, err := logging.ParseLevel(config.Log.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	if config.Log.Format != "text" && config.Log.Format != "json" {
		return fmt.Errorf("invalid log format: %s. Must be 'text' or 'json'", config.Log.Format)
	}

	if config.Store.Driver != "sqlite" && config.Store.Driver != "mysql" {
		return fmt.Errorf("invalid store driver: %s. Must be 'sqlite' or 'mysql'", config.Store.Driver)
	}

	if config.Server.Addr == "" {
		return fmt.Errorf("server.addr is required")
	}

	return nil
}
