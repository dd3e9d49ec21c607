package gammascout

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// Config is the file configuration for programs driving a Gamma Scout.
type Config struct {
	Serial  SerialConfig  `yaml:"serial"`
	Log     LogConfig     `yaml:"log"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// SerialConfig selects and configures the serial port.
type SerialConfig struct {
	Device          string        `yaml:"device"`
	Driver          string        `yaml:"driver"` // "termios" (default) or "portable"
	BaudRate        int           `yaml:"baud_rate"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	ResponseTimeout time.Duration `yaml:"response_timeout"`
}

// LogConfig configures the logrus logger built by NewLogger.
type LogConfig struct {
	Level    string `yaml:"level"`
	Format   string `yaml:"format"` // "text" or "json"
	FilePath string `yaml:"file_path"`
}

// MetricsConfig configures the prometheus endpoint of the example program.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"`
	Addr    string `yaml:"addr"`
}

// DefaultConfig returns the configuration used when no file is given.
func DefaultConfig() *Config {
	return &Config{
		Serial: SerialConfig{
			Device:          "/dev/ttyUSB0",
			Driver:          DriverTermios,
			BaudRate:        BaudRate,
			ReadTimeout:     DefaultReadTimeout,
			ResponseTimeout: DefaultResponseTimeout,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Addr: ":9090",
		},
	}
}

// LoadConfig reads a YAML file. Keys missing from the file keep their
// DefaultConfig values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return cfg, nil
}

// Options translates the serial settings into Conn options.
func (c SerialConfig) Options() []Option {
	return []Option{WithResponseTimeout(c.ResponseTimeout)}
}

// NewLogger builds a logrus logger from cfg. An unknown level falls back to
// info. The returned closer releases the log file, if any.
func NewLogger(cfg LogConfig) (*logrus.Logger, io.Closer, error) {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{
			TimestampFormat: "2006-01-02 15:04:05.000",
		})
	} else {
		log.SetFormatter(&logrus.TextFormatter{
			FullTimestamp:   true,
			TimestampFormat: "2006-01-02 15:04:05.000",
		})
	}

	if cfg.FilePath == "" {
		return log, io.NopCloser(nil), nil
	}
	file, err := os.OpenFile(cfg.FilePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file: %w", err)
	}
	log.SetOutput(file)
	return log, file, nil
}
