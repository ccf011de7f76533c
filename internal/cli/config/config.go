package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Config represents the unknot project configuration, read from unknot.yml.
type Config struct {
	ProjectName string         `mapstructure:"project_name"`
	Source      SourceConfig   `mapstructure:"source"`
	Output      OutputConfig   `mapstructure:"output"`
	Analysis    AnalysisConfig `mapstructure:"analysis"`
	Watch       WatchConfig    `mapstructure:"watch"`
}

// SourceConfig locates the knot declaration files.
type SourceConfig struct {
	Dir string `mapstructure:"dir"`
}

// OutputConfig controls where rewritten declarations are written. An empty
// Dir means in-place rewrites with --write and stdout otherwise.
type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// AnalysisConfig tunes cycle analysis. Tracked overrides the capabilities
// designated in source; an empty list defers to the track declarations.
// ExpansionLimit caps solver steps, 0 meaning unbounded.
type AnalysisConfig struct {
	Tracked        []string `mapstructure:"tracked"`
	ExpansionLimit int      `mapstructure:"expansion_limit"`
}

// WatchConfig tunes watch mode.
type WatchConfig struct {
	DebounceMs int `mapstructure:"debounce_ms"`
}

// Load loads the configuration from unknot.yml or unknot.yaml in the
// current directory, falling back to defaults when no file exists.
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("source.dir", "knot")
	v.SetDefault("analysis.expansion_limit", 10000)
	v.SetDefault("watch.debounce_ms", 100)

	v.SetConfigName("unknot")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// InProject checks if the current directory is an unknot project.
func InProject() bool {
	if _, err := os.Stat("unknot.yml"); err == nil {
		return true
	}
	if _, err := os.Stat("unknot.yaml"); err == nil {
		return true
	}
	return false
}

// GetProjectRoot walks upward looking for unknot.yml.
func GetProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "unknot.yml")); err == nil {
			return dir, nil
		}
		if _, err := os.Stat(filepath.Join(dir, "unknot.yaml")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", fmt.Errorf("not in an unknot project (no unknot.yml found)")
		}
		dir = parent
	}
}

func validateConfig(cfg *Config) error {
	if cfg.Source.Dir == "" {
		return fmt.Errorf("source.dir must not be empty")
	}
	if cfg.Analysis.ExpansionLimit < 0 {
		return fmt.Errorf("analysis.expansion_limit must not be negative, got: %d", cfg.Analysis.ExpansionLimit)
	}
	if cfg.Watch.DebounceMs < 0 {
		return fmt.Errorf("watch.debounce_ms must not be negative, got: %d", cfg.Watch.DebounceMs)
	}
	return nil
}
