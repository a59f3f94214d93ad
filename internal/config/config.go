package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	envConfigPath    = "CONFIG"
	envHealthPort    = "SENTINEL_HEALTH_PORT"
	envMetricsPort   = "SENTINEL_METRICS_PORT"
	envShutdownGrace = "SENTINEL_SHUTDOWN_GRACE"
	envDryRun        = "SENTINEL_DRY_RUN"
	envLogLevel      = "SENTINEL_LOG_LEVEL"
)

const (
	defaultConfigPath    = "./config.yml"
	defaultShutdownGrace = 10 * time.Second
)

// Settings describes process-level configuration loaded from the environment.
// The monitored resources and notifiers themselves live in the config file
// named by Settings.ConfigPath.
type Settings struct {
	ConfigPath    string
	HealthPort    int
	MetricsPort   int
	ShutdownGrace time.Duration
	DryRun        bool
	LogLevel      string
}

// Load reads settings from environment variables and a local .env file if
// present. Existing environment variables take precedence over values in .env.
func Load() (Settings, error) {
	if err := loadDotEnvIfPresent(".env"); err != nil {
		return Settings{}, err
	}

	settings := Settings{
		ConfigPath:    defaultConfigPath,
		ShutdownGrace: defaultShutdownGrace,
	}

	if value, ok := lookupTrimmed(envConfigPath); ok && value != "" {
		settings.ConfigPath = value
	}

	if value, ok := lookupTrimmed(envHealthPort); ok {
		port, err := parsePort(value, envHealthPort)
		if err != nil {
			return Settings{}, err
		}
		settings.HealthPort = port
	}

	if value, ok := lookupTrimmed(envMetricsPort); ok {
		port, err := parsePort(value, envMetricsPort)
		if err != nil {
			return Settings{}, err
		}
		settings.MetricsPort = port
	}

	if value, ok := lookupTrimmed(envShutdownGrace); ok {
		grace, err := time.ParseDuration(value)
		if err != nil {
			return Settings{}, fmt.Errorf("invalid %s: %w", envShutdownGrace, err)
		}
		if grace <= 0 {
			return Settings{}, fmt.Errorf("%s must be greater than zero", envShutdownGrace)
		}
		settings.ShutdownGrace = grace
	}

	if value, ok := lookupTrimmed(envDryRun); ok {
		dryRun, err := strconv.ParseBool(value)
		if err != nil {
			return Settings{}, fmt.Errorf("invalid %s: %w", envDryRun, err)
		}
		settings.DryRun = dryRun
	}

	if value, ok := lookupTrimmed(envLogLevel); ok {
		settings.LogLevel = value
	}

	return settings, nil
}

func parsePort(value, name string) (int, error) {
	port, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	if port < 0 || port > 65535 {
		return 0, fmt.Errorf("%s must be between 0 and 65535", name)
	}
	return port, nil
}

func lookupTrimmed(key string) (string, bool) {
	value, ok := os.LookupEnv(key)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(value), true
}

func loadDotEnvIfPresent(path string) error {
	err := godotenv.Load(path)
	if err == nil {
		return nil
	}

	var pathErr *os.PathError
	if errors.As(err, &pathErr) && errors.Is(pathErr.Err, os.ErrNotExist) {
		return nil
	}

	return err
}
