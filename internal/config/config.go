package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	AI     AIConfig    `yaml:"ai" validate:"required"`
	Paths  PathsConfig `yaml:"paths"`
	Limits Limits      `yaml:"limits" validate:"required"`
}

type AIConfig struct {
	APIKey  string `yaml:"api_key" validate:"omitempty,min=20"`
	Model   string `yaml:"model" validate:"required"`
	BaseURL string `yaml:"base_url" validate:"required,url"`
	Timeout int    `yaml:"timeout" validate:"required,min=10,max=3600"`
}

type PathsConfig struct {
	OutputDir    string `yaml:"output_dir"`
	CheckpointDB string `yaml:"checkpoint_db"`
}

// Load reads the config file, overlays environment variables, applies
// defaults, and validates the result. A missing file is not an error; the
// defaults plus STORYLORD_API_KEY are enough to run. The key may stay empty
// here: commands that never call the API (runs, export, mock runs) do not
// need one, so the requirement is enforced where the real client is built.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}

	configPath := getConfigPath()
	data, err := os.ReadFile(configPath)
	switch {
	case os.IsNotExist(err):
		// Defaults only.
	case err != nil:
		return nil, fmt.Errorf("reading config file: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	if cfg.AI.APIKey == "" || strings.HasPrefix(cfg.AI.APIKey, "${") {
		if key := os.Getenv("STORYLORD_API_KEY"); key != "" {
			cfg.AI.APIKey = key
		} else if key := os.Getenv("ANTHROPIC_API_KEY"); key != "" {
			cfg.AI.APIKey = key
		}
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

func getConfigPath() string {
	if path := os.Getenv("STORYLORD_CONFIG"); path != "" {
		return path
	}
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "storylord", "config.yaml")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "storylord", "config.yaml")
}

func dataDir() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "storylord")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "storylord")
}

// expandTilde expands a leading ~ to the user's home directory.
func expandTilde(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}

func (c *Config) applyDefaults() {
	if c.AI.Model == "" {
		c.AI.Model = "claude-sonnet-4-20250514"
	}
	if c.AI.BaseURL == "" {
		c.AI.BaseURL = "https://api.anthropic.com/v1"
	}
	if c.AI.Timeout == 0 {
		c.AI.Timeout = 120
	}

	if c.Paths.OutputDir == "" {
		c.Paths.OutputDir = filepath.Join(dataDir(), "output")
	} else {
		c.Paths.OutputDir = expandTilde(c.Paths.OutputDir)
	}
	if c.Paths.CheckpointDB == "" {
		c.Paths.CheckpointDB = filepath.Join(dataDir(), "runs.db")
	} else {
		c.Paths.CheckpointDB = expandTilde(c.Paths.CheckpointDB)
	}

	// Each limit defaults independently so a file can tune one knob
	// without restating the rest.
	defaults := DefaultLimits()
	if c.Limits.MaxEditorWorkers == 0 {
		c.Limits.MaxEditorWorkers = defaults.MaxEditorWorkers
	}
	if c.Limits.MaxRetries == 0 {
		c.Limits.MaxRetries = defaults.MaxRetries
	}
	if c.Limits.MaxTokens == 0 {
		c.Limits.MaxTokens = defaults.MaxTokens
	}
	if c.Limits.RateLimit.RequestsPerMinute == 0 {
		c.Limits.RateLimit.RequestsPerMinute = defaults.RateLimit.RequestsPerMinute
	}
	if c.Limits.RateLimit.BurstSize == 0 {
		c.Limits.RateLimit.BurstSize = defaults.RateLimit.BurstSize
	}
}

func (c *Config) validate() error {
	validate := validator.New()
	if err := validate.Struct(c); err != nil {
		return err
	}
	return nil
}
