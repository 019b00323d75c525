package cfg

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Settings is the resolved service configuration.
type Settings struct {
	ListenPort      int
	DataPath        string
	UploadPath      string
	ModelType       string
	TestFraction    float64
	Seed            int64
	Trees           int
	MaxDepth        int
	MaxUploadBytes  int64
	UploadMaxAge    time.Duration
	CleanupInterval time.Duration
	AlertWebhookURL string
	AlertTimeout    time.Duration
	LogLevel        string
}

// ConfigFile mirrors the YAML layout.
type ConfigFile struct {
	Server struct {
		Port           int   `yaml:"port"`
		MaxUploadBytes int64 `yaml:"maxUploadBytes"`
	} `yaml:"server"`

	Model struct {
		Type         string  `yaml:"type"`
		TestFraction float64 `yaml:"testFraction"`
		Seed         int64   `yaml:"seed"`
		Trees        int     `yaml:"trees"`
		MaxDepth     int     `yaml:"maxDepth"`
	} `yaml:"model"`

	System struct {
		DataPath        string `yaml:"dataPath"`
		UploadPath      string `yaml:"uploadPath"`
		UploadMaxAge    string `yaml:"uploadMaxAge"`
		CleanupInterval string `yaml:"cleanupInterval"`
		LogLevel        string `yaml:"logLevel"`
	} `yaml:"system"`

	Alerts struct {
		WebhookURL string `yaml:"webhookURL"`
		Timeout    string `yaml:"timeout"`
	} `yaml:"alerts"`
}

// Load resolves the configuration from the YAML file named by
// CONFIG_FILE when set, otherwise from environment variables alone.
// Environment variables always win over file values.
func Load() (Settings, error) {
	if configPath := os.Getenv("CONFIG_FILE"); configPath != "" {
		return loadFromYAML(configPath)
	}
	return loadFromEnv()
}

func loadFromYAML(path string) (Settings, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Settings{}, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	var config ConfigFile
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Settings{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	uploadMaxAge, err := time.ParseDuration(config.System.UploadMaxAge)
	if err != nil {
		uploadMaxAge = 24 * time.Hour
	}
	cleanupInterval, err := time.ParseDuration(config.System.CleanupInterval)
	if err != nil {
		cleanupInterval = time.Hour
	}
	alertTimeout, err := time.ParseDuration(config.Alerts.Timeout)
	if err != nil {
		alertTimeout = 5 * time.Second
	}

	settings := Settings{
		ListenPort:      getIntFromEnvOrConfig("LISTEN_PORT", config.Server.Port, 5000),
		DataPath:        getEnvOrDefault("DATA_PATH", orDefault(config.System.DataPath, "data")),
		UploadPath:      getEnvOrDefault("UPLOAD_PATH", orDefault(config.System.UploadPath, "uploads")),
		ModelType:       getEnvOrDefault("MODEL_TYPE", orDefault(config.Model.Type, "random_forest")),
		TestFraction:    getFloatFromEnvOrConfig("TEST_FRACTION", config.Model.TestFraction, 0.2),
		Seed:            getInt64FromEnvOrConfig("MODEL_SEED", config.Model.Seed, 42),
		Trees:           getIntFromEnvOrConfig("MODEL_TREES", config.Model.Trees, 100),
		MaxDepth:        getIntFromEnvOrConfig("MODEL_MAX_DEPTH", config.Model.MaxDepth, 10),
		MaxUploadBytes:  getInt64FromEnvOrConfig("MAX_UPLOAD_BYTES", config.Server.MaxUploadBytes, 16<<20),
		UploadMaxAge:    getDurationOrDefault("UPLOAD_MAX_AGE", uploadMaxAge),
		CleanupInterval: getDurationOrDefault("CLEANUP_INTERVAL", cleanupInterval),
		AlertWebhookURL: getEnvOrDefault("ALERT_WEBHOOK_URL", config.Alerts.WebhookURL),
		AlertTimeout:    getDurationOrDefault("ALERT_TIMEOUT", alertTimeout),
		LogLevel:        getEnvOrDefault("LOG_LEVEL", orDefault(config.System.LogLevel, "info")),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		ListenPort:      getIntOrDefault("LISTEN_PORT", 5000),
		DataPath:        getEnvOrDefault("DATA_PATH", "data"),
		UploadPath:      getEnvOrDefault("UPLOAD_PATH", "uploads"),
		ModelType:       getEnvOrDefault("MODEL_TYPE", "random_forest"),
		TestFraction:    getFloatOrDefault("TEST_FRACTION", 0.2),
		Seed:            getInt64OrDefault("MODEL_SEED", 42),
		Trees:           getIntOrDefault("MODEL_TREES", 100),
		MaxDepth:        getIntOrDefault("MODEL_MAX_DEPTH", 10),
		MaxUploadBytes:  getInt64OrDefault("MAX_UPLOAD_BYTES", 16<<20),
		UploadMaxAge:    getDurationOrDefault("UPLOAD_MAX_AGE", 24*time.Hour),
		CleanupInterval: getDurationOrDefault("CLEANUP_INTERVAL", time.Hour),
		AlertWebhookURL: os.Getenv("ALERT_WEBHOOK_URL"), // optional
		AlertTimeout:    getDurationOrDefault("ALERT_TIMEOUT", 5*time.Second),
		LogLevel:        getEnvOrDefault("LOG_LEVEL", "info"),
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return settings, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultValue
}

func orDefault(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func getDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultValue
}

func getIntOrDefault(key string, defaultValue int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultValue
}

func getInt64OrDefault(key string, defaultValue int64) int64 {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.ParseInt(v, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getIntFromEnvOrConfig(key string, configValue, defaultValue int) int {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.Atoi(env); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

func getInt64FromEnvOrConfig(key string, configValue, defaultValue int64) int64 {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.ParseInt(env, 10, 64); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

func getFloatFromEnvOrConfig(key string, configValue, defaultValue float64) float64 {
	if env := os.Getenv(key); env != "" {
		if val, err := strconv.ParseFloat(env, 64); err == nil {
			return val
		}
	}
	if configValue != 0 {
		return configValue
	}
	return defaultValue
}

// validateSettings performs validation of configuration values.
func validateSettings(settings *Settings) error {
	if settings.ListenPort < 1 || settings.ListenPort > 65535 {
		return fmt.Errorf("listen port must be between 1 and 65535, got %d", settings.ListenPort)
	}
	if settings.ModelType != "random_forest" && settings.ModelType != "logistic_regression" {
		return fmt.Errorf("model type must be random_forest or logistic_regression, got %s", settings.ModelType)
	}
	if settings.TestFraction <= 0 || settings.TestFraction >= 1 {
		return fmt.Errorf("test fraction must be between 0 and 1 exclusive, got %f", settings.TestFraction)
	}
	if settings.Trees < 1 || settings.Trees > 1000 {
		return fmt.Errorf("tree count must be between 1 and 1000, got %d", settings.Trees)
	}
	if settings.MaxDepth < 1 || settings.MaxDepth > 64 {
		return fmt.Errorf("max depth must be between 1 and 64, got %d", settings.MaxDepth)
	}
	if settings.MaxUploadBytes < 1024 {
		return fmt.Errorf("max upload size must be at least 1KiB, got %d", settings.MaxUploadBytes)
	}
	if settings.UploadMaxAge < time.Minute {
		return fmt.Errorf("upload max age must be at least 1m, got %v", settings.UploadMaxAge)
	}
	if settings.CleanupInterval < time.Minute {
		return fmt.Errorf("cleanup interval must be at least 1m, got %v", settings.CleanupInterval)
	}
	if settings.AlertTimeout < time.Second || settings.AlertTimeout > time.Minute {
		return fmt.Errorf("alert timeout must be between 1s and 1m, got %v", settings.AlertTimeout)
	}
	return nil
}
