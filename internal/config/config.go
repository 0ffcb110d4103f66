package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the explicit configuration object passed into each component at
// construction. No component reads ambient globals.
type Config struct {
	Completion CompletionConfig `mapstructure:"completion"`
	Paths      PathsConfig      `mapstructure:"paths"`
	Inspector  InspectorConfig  `mapstructure:"inspector"`
	Watcher    WatcherConfig    `mapstructure:"watcher"`
}

// CompletionConfig configures the local text-completion endpoint.
type CompletionConfig struct {
	Endpoint    string  `mapstructure:"endpoint"`
	Model       string  `mapstructure:"model"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Temperature float64 `mapstructure:"temperature"`
}

// PathsConfig holds the working directories of the pipeline.
type PathsConfig struct {
	Assets   string `mapstructure:"assets"`
	Metadata string `mapstructure:"metadata"`
	History  string `mapstructure:"history"`
	Logs     string `mapstructure:"logs"`
}

// InspectorConfig configures the quality inspection stage.
type InspectorConfig struct {
	// ImproveBelow triggers the auto-rewrite pass for records scored
	// strictly below this value.
	ImproveBelow int `mapstructure:"improve_below"`
}

// WatcherConfig configures watch mode.
type WatcherConfig struct {
	// QueueSize is the buffer of the single-consumer event queue.
	QueueSize int `mapstructure:"queue_size"`
}

// Load reads configuration from an optional YAML file, a .env file, and
// LISTFORGE_* environment variables.
func Load(configPath string) (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("LISTFORGE")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetDefault("completion.endpoint", "http://localhost:1234")
	v.SetDefault("completion.model", "llama3")
	v.SetDefault("completion.max_tokens", 400)
	v.SetDefault("completion.temperature", 0.8)
	v.SetDefault("paths.assets", "./_03_COMPLETED_MOCKUPS")
	v.SetDefault("paths.metadata", "./_05_METADATA_DRAFTS")
	v.SetDefault("paths.history", "./_06_METADATA_HISTORY")
	v.SetDefault("paths.logs", "./logs")
	v.SetDefault("inspector.improve_below", 7)
	v.SetDefault("watcher.queue_size", 64)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.BindEnv("completion.endpoint", "COMPLETION_ENDPOINT")
	v.BindEnv("completion.model", "COMPLETION_MODEL")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// EnsureDirs creates all working directories the pipeline relies on.
func (c *Config) EnsureDirs() error {
	for _, dir := range []string{c.Paths.Assets, c.Paths.Metadata, c.Paths.History, c.Paths.Logs} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}
