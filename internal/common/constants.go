package common

import "time"

// Environment variable keys
const (
	EnvConfigFile = "CONFIG_FILE"
	EnvDotEnvFile = "ENV_FILE"

	EnvHost            = "HOST"
	EnvPort            = "PORT"
	EnvModelPath       = "MODEL_PATH"
	EnvScalerPath      = "SCALER_PATH"
	EnvRunsPath        = "RUNS_PATH"
	EnvLogLevel        = "LOG_LEVEL"
	EnvLogFormat       = "LOG_FORMAT"
	EnvMetricsEnabled  = "METRICS_ENABLED"
	EnvCORSOrigin      = "CORS_ORIGIN"
	EnvReadTimeout     = "READ_TIMEOUT"
	EnvWriteTimeout    = "WRITE_TIMEOUT"
	EnvShutdownTimeout = "SHUTDOWN_TIMEOUT"
	EnvMaxBodyBytes    = "MAX_BODY_BYTES"

	EnvDataPath        = "DATA_PATH"
	EnvTrees           = "TREES"
	EnvMaxDepth        = "MAX_DEPTH"
	EnvTestSize        = "TEST_SIZE"
	EnvSeed            = "SEED"
	EnvJobs            = "JOBS"
	EnvScaleAfterSplit = "SCALE_AFTER_SPLIT"
)

// Configuration defaults
const (
	DefaultDotEnvFile      = ".env"
	DefaultHost            = "0.0.0.0"
	DefaultPort            = 5001
	DefaultModelPath       = "diabetes_model.gob"
	DefaultScalerPath      = "scaler.gob"
	DefaultRunsPath        = "data"
	DefaultLogLevel        = "info"
	DefaultLogFormat       = "json"
	DefaultCORSOrigin      = "*"
	DefaultMaxBodyBytes    = 1 << 20
	DefaultDataPath        = "diabetes.csv"
	DefaultTrees           = 50
	DefaultMaxDepth        = 10
	DefaultTestSize        = 0.2
	DefaultSeed            = 42
	DefaultReadTimeoutSec  = 15
	DefaultWriteTimeoutSec = 15
	DefaultShutdownSec     = 10
)

// Validation constants
const (
	MinPort      = 1
	MaxPort      = 65535
	MaxTrees     = 1000
	MaxTreeDepth = 64
	MaxJobs      = 256
)

// Run history reported by /api/model
const (
	RunHistoryWindow = 30 * 24 * time.Hour
	RunHistoryLimit  = 10
)

// Log formats
const (
	LogFormatJSON    = "json"
	LogFormatConsole = "console"
)
