package cfg

import (
	"net"
	"strconv"
	"time"
)

// Settings configures both binaries. The predictor reads the server and
// artifact fields; the trainer reads Training and the artifact paths.
type Settings struct {
	Host            string
	Port            int
	ModelPath       string
	ScalerPath      string
	RunsPath        string // directory of the training run store; empty disables it
	LogLevel        string
	LogFormat       string
	MetricsEnabled  bool
	CORSOrigin      string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	MaxBodyBytes    int64
	Training        Training
}

// Training holds the trainer's hyperparameters.
type Training struct {
	DataPath        string
	Trees           int
	MaxDepth        int
	TestSize        float64
	Seed            int64
	Jobs            int // 0 means GOMAXPROCS
	ScaleAfterSplit bool
}

// Addr is the listen address.
func (s Settings) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}

// ConfigFile is the YAML layout read from CONFIG_FILE.
type ConfigFile struct {
	Server struct {
		Host            string `yaml:"host"`
		Port            int    `yaml:"port"`
		CORSOrigin      string `yaml:"corsOrigin"`
		ReadTimeout     string `yaml:"readTimeout"`
		WriteTimeout    string `yaml:"writeTimeout"`
		ShutdownTimeout string `yaml:"shutdownTimeout"`
		MaxBodyBytes    int64  `yaml:"maxBodyBytes"`
		MetricsEnabled  *bool  `yaml:"metricsEnabled"`
	} `yaml:"server"`

	Artifacts struct {
		ModelPath  string `yaml:"modelPath"`
		ScalerPath string `yaml:"scalerPath"`
		RunsPath   string `yaml:"runsPath"`
	} `yaml:"artifacts"`

	Training struct {
		DataPath        string  `yaml:"dataPath"`
		Trees           int     `yaml:"trees"`
		MaxDepth        int     `yaml:"maxDepth"`
		TestSize        float64 `yaml:"testSize"`
		Seed            *int64  `yaml:"seed"`
		Jobs            int     `yaml:"jobs"`
		ScaleAfterSplit bool    `yaml:"scaleAfterSplit"`
	} `yaml:"training"`

	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"logging"`
}
