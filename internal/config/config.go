package config

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	DBPath            string `json:"db_path" env:"TASKFLOW_DB_PATH"`
	APIBaseURL        string `json:"api_base_url" env:"TASKFLOW_API_URL" env-default:"http://localhost:5000/api"`
	APITimeoutSeconds int    `json:"api_timeout_seconds" env:"TASKFLOW_API_TIMEOUT" env-default:"15"`
	WebEnabled        bool   `json:"web_enabled" env:"TASKFLOW_WEB_ENABLED"`
	WebPort           int    `json:"web_port" env:"TASKFLOW_WEB_PORT" env-default:"8080"`
	LogLevel          string `json:"log_level" env:"TASKFLOW_LOG_LEVEL" env-default:"info"`
	Locale            string `json:"locale" env:"TASKFLOW_LOCALE" env-default:"en"`
	SnapshotKeep      int    `json:"snapshot_keep" env:"TASKFLOW_SNAPSHOT_KEEP" env-default:"20"`
}

func Default() Config {
	return Config{
		APIBaseURL:        "http://localhost:5000/api",
		APITimeoutSeconds: 15,
		WebPort:           8080,
		LogLevel:          "info",
		Locale:            "en",
		SnapshotKeep:      20,
	}
}

func DefaultConfigPath() (string, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(configDir, "taskflow", "config.json"), nil
}

func EnsureDir(path string) error {
	dir := filepath.Dir(path)
	return os.MkdirAll(dir, 0o755)
}

// Load reads the JSON config at path and applies TASKFLOW_* environment
// overrides. A missing file yields defaults plus environment.
func Load(path string) (Config, error) {
	var config Config

	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return Config{}, err
		}
		if err := cleanenv.ReadEnv(&config); err != nil {
			return Config{}, fmt.Errorf("read env: %w", err)
		}
		return config, nil
	}

	if err := cleanenv.ReadConfig(path, &config); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return config, nil
}

// LoadFile reads only the JSON file at path over the defaults, ignoring the
// environment. It is the base for saving back flag changes.
func LoadFile(path string) (Config, error) {
	config := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return Config{}, err
	}
	if err := json.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	return config, nil
}

func Save(path string, cfg Config) error {
	if err := EnsureDir(path); err != nil {
		return err
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0o644)
}

func (c Config) APITimeout() time.Duration {
	if c.APITimeoutSeconds <= 0 {
		return 15 * time.Second
	}
	return time.Duration(c.APITimeoutSeconds) * time.Second
}

func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(c.LogLevel))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q", c.LogLevel)
	}
	return level, nil
}

// Usage describes every environment variable Load understands.
func Usage() string {
	var config Config
	text, err := cleanenv.GetDescription(&config, nil)
	if err != nil {
		return ""
	}
	return text
}
