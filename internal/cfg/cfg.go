package cfg

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"diabetes-api/internal/common"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// Load reads `.env` (if present), then the YAML file named by CONFIG_FILE,
// falling back to environment variables alone. Environment variables always
// win over the file.
func Load() (Settings, error) {
	if err := loadDotEnv(getEnvOrDefault(common.EnvDotEnvFile, common.DefaultDotEnvFile)); err != nil {
		return Settings{}, err
	}

	if configPath := os.Getenv(common.EnvConfigFile); configPath != "" {
		return loadFromYAML(configPath)
	}
	return loadFromEnv()
}

// loadDotEnv exports the variables of an env file without overriding ones
// already set. A missing file is not an error.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
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

	readTimeout, err := parseDurationOr(config.Server.ReadTimeout, common.DefaultReadTimeoutSec*time.Second)
	if err != nil {
		return Settings{}, fmt.Errorf("server.readTimeout: %w", err)
	}
	writeTimeout, err := parseDurationOr(config.Server.WriteTimeout, common.DefaultWriteTimeoutSec*time.Second)
	if err != nil {
		return Settings{}, fmt.Errorf("server.writeTimeout: %w", err)
	}
	shutdownTimeout, err := parseDurationOr(config.Server.ShutdownTimeout, common.DefaultShutdownSec*time.Second)
	if err != nil {
		return Settings{}, fmt.Errorf("server.shutdownTimeout: %w", err)
	}

	metricsEnabled := true
	if config.Server.MetricsEnabled != nil {
		metricsEnabled = *config.Server.MetricsEnabled
	}
	seed := int64(common.DefaultSeed)
	if config.Training.Seed != nil {
		seed = *config.Training.Seed
	}

	settings := Settings{
		Host:            getEnvOrDefault(common.EnvHost, orString(config.Server.Host, common.DefaultHost)),
		Port:            getIntOrDefault(common.EnvPort, orInt(config.Server.Port, common.DefaultPort)),
		ModelPath:       getEnvOrDefault(common.EnvModelPath, orString(config.Artifacts.ModelPath, common.DefaultModelPath)),
		ScalerPath:      getEnvOrDefault(common.EnvScalerPath, orString(config.Artifacts.ScalerPath, common.DefaultScalerPath)),
		RunsPath:        getEnvOrDefault(common.EnvRunsPath, orString(config.Artifacts.RunsPath, common.DefaultRunsPath)),
		LogLevel:        getEnvOrDefault(common.EnvLogLevel, orString(config.Logging.Level, common.DefaultLogLevel)),
		LogFormat:       getEnvOrDefault(common.EnvLogFormat, orString(config.Logging.Format, common.DefaultLogFormat)),
		MetricsEnabled:  getBoolOrDefault(common.EnvMetricsEnabled, metricsEnabled),
		CORSOrigin:      getEnvOrDefault(common.EnvCORSOrigin, orString(config.Server.CORSOrigin, common.DefaultCORSOrigin)),
		ReadTimeout:     getDurationOrDefault(common.EnvReadTimeout, readTimeout),
		WriteTimeout:    getDurationOrDefault(common.EnvWriteTimeout, writeTimeout),
		ShutdownTimeout: getDurationOrDefault(common.EnvShutdownTimeout, shutdownTimeout),
		MaxBodyBytes:    int64(getIntOrDefault(common.EnvMaxBodyBytes, int(orInt64(config.Server.MaxBodyBytes, common.DefaultMaxBodyBytes)))),
		Training: Training{
			DataPath:        getEnvOrDefault(common.EnvDataPath, orString(config.Training.DataPath, common.DefaultDataPath)),
			Trees:           getIntOrDefault(common.EnvTrees, orInt(config.Training.Trees, common.DefaultTrees)),
			MaxDepth:        getIntOrDefault(common.EnvMaxDepth, orInt(config.Training.MaxDepth, common.DefaultMaxDepth)),
			TestSize:        getFloatOrDefault(common.EnvTestSize, orFloat(config.Training.TestSize, common.DefaultTestSize)),
			Seed:            int64(getIntOrDefault(common.EnvSeed, int(seed))),
			Jobs:            getIntOrDefault(common.EnvJobs, config.Training.Jobs),
			ScaleAfterSplit: getBoolOrDefault(common.EnvScaleAfterSplit, config.Training.ScaleAfterSplit),
		},
	}

	if err := validateSettings(&settings); err != nil {
		return Settings{}, fmt.Errorf("configuration validation failed: %w", err)
	}
	return settings, nil
}

func loadFromEnv() (Settings, error) {
	settings := Settings{
		Host:            getEnvOrDefault(common.EnvHost, common.DefaultHost),
		Port:            getIntOrDefault(common.EnvPort, common.DefaultPort),
		ModelPath:       getEnvOrDefault(common.EnvModelPath, common.DefaultModelPath),
		ScalerPath:      getEnvOrDefault(common.EnvScalerPath, common.DefaultScalerPath),
		RunsPath:        getEnvOrDefault(common.EnvRunsPath, common.DefaultRunsPath),
		LogLevel:        getEnvOrDefault(common.EnvLogLevel, common.DefaultLogLevel),
		LogFormat:       getEnvOrDefault(common.EnvLogFormat, common.DefaultLogFormat),
		MetricsEnabled:  getBoolOrDefault(common.EnvMetricsEnabled, true),
		CORSOrigin:      getEnvOrDefault(common.EnvCORSOrigin, common.DefaultCORSOrigin),
		ReadTimeout:     getDurationOrDefault(common.EnvReadTimeout, common.DefaultReadTimeoutSec*time.Second),
		WriteTimeout:    getDurationOrDefault(common.EnvWriteTimeout, common.DefaultWriteTimeoutSec*time.Second),
		ShutdownTimeout: getDurationOrDefault(common.EnvShutdownTimeout, common.DefaultShutdownSec*time.Second),
		MaxBodyBytes:    int64(getIntOrDefault(common.EnvMaxBodyBytes, common.DefaultMaxBodyBytes)),
		Training: Training{
			DataPath:        getEnvOrDefault(common.EnvDataPath, common.DefaultDataPath),
			Trees:           getIntOrDefault(common.EnvTrees, common.DefaultTrees),
			MaxDepth:        getIntOrDefault(common.EnvMaxDepth, common.DefaultMaxDepth),
			TestSize:        getFloatOrDefault(common.EnvTestSize, common.DefaultTestSize),
			Seed:            int64(getIntOrDefault(common.EnvSeed, common.DefaultSeed)),
			Jobs:            getIntOrDefault(common.EnvJobs, 0),
			ScaleAfterSplit: getBoolOrDefault(common.EnvScaleAfterSplit, false),
		},
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

func getFloatOrDefault(key string, defaultValue float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getBoolOrDefault(key string, defaultValue bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return defaultValue
}

func parseDurationOr(v string, def time.Duration) (time.Duration, error) {
	if v == "" {
		return def, nil
	}
	return time.ParseDuration(v)
}

func orString(v, def string) string {
	if v != "" {
		return v
	}
	return def
}

func orInt(v, def int) int {
	if v != 0 {
		return v
	}
	return def
}

func orInt64(v, def int64) int64 {
	if v != 0 {
		return v
	}
	return def
}

func orFloat(v, def float64) float64 {
	if v != 0 {
		return v
	}
	return def
}

// validateSettings checks ranges for every value either binary depends on.
func validateSettings(settings *Settings) error {
	if settings.Host == "" {
		return fmt.Errorf("host cannot be empty")
	}
	if settings.Port < common.MinPort || settings.Port > common.MaxPort {
		return fmt.Errorf("port must be between %d and %d, got %d", common.MinPort, common.MaxPort, settings.Port)
	}

	if settings.ModelPath == "" {
		return fmt.Errorf("model path cannot be empty")
	}
	if settings.ScalerPath == "" {
		return fmt.Errorf("scaler path cannot be empty")
	}
	if settings.ModelPath == settings.ScalerPath {
		return fmt.Errorf("model and scaler paths must differ, both are %s", settings.ModelPath)
	}

	if _, err := zerolog.ParseLevel(strings.ToLower(settings.LogLevel)); err != nil {
		return fmt.Errorf("invalid log level %q: %w", settings.LogLevel, err)
	}
	switch strings.ToLower(settings.LogFormat) {
	case common.LogFormatJSON, common.LogFormatConsole:
	default:
		return fmt.Errorf("log format must be %q or %q, got %q", common.LogFormatJSON, common.LogFormatConsole, settings.LogFormat)
	}

	if settings.ReadTimeout <= 0 || settings.WriteTimeout <= 0 || settings.ShutdownTimeout <= 0 {
		return fmt.Errorf("server timeouts must be positive")
	}
	if settings.MaxBodyBytes <= 0 {
		return fmt.Errorf("max body bytes must be positive, got %d", settings.MaxBodyBytes)
	}

	t := settings.Training
	if t.DataPath == "" {
		return fmt.Errorf("training data path cannot be empty")
	}
	if t.Trees < 1 || t.Trees > common.MaxTrees {
		return fmt.Errorf("trees must be between 1 and %d, got %d", common.MaxTrees, t.Trees)
	}
	if t.MaxDepth < 1 || t.MaxDepth > common.MaxTreeDepth {
		return fmt.Errorf("max depth must be between 1 and %d, got %d", common.MaxTreeDepth, t.MaxDepth)
	}
	if t.TestSize <= 0 || t.TestSize >= 1 {
		return fmt.Errorf("test size must be in (0, 1), got %f", t.TestSize)
	}
	if t.Jobs < 0 || t.Jobs > common.MaxJobs {
		return fmt.Errorf("jobs must be between 0 and %d, got %d", common.MaxJobs, t.Jobs)
	}

	return nil
}

// Validate exposes the range checks for settings assembled outside Load,
// such as after command-line overrides.
func (s *Settings) Validate() error {
	return validateSettings(s)
}
