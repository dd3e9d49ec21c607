package gammascout

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
serial:
  device: /dev/ttyS1
  driver: portable
  response_timeout: 1500ms
log:
  level: debug
  format: json
metrics:
  enabled: true
`), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	require.Equal(t, "/dev/ttyS1", cfg.Serial.Device)
	require.Equal(t, DriverPortable, cfg.Serial.Driver)
	require.Equal(t, 1500*time.Millisecond, cfg.Serial.ResponseTimeout)
	require.True(t, cfg.Metrics.Enabled)
	require.Equal(t, "json", cfg.Log.Format)

	// untouched keys keep their defaults
	require.Equal(t, BaudRate, cfg.Serial.BaudRate)
	require.Equal(t, DefaultReadTimeout, cfg.Serial.ReadTimeout)
	require.Equal(t, ":9090", cfg.Metrics.Addr)
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("serial: [unterminated"), 0644))
	_, err = LoadConfig(path)
	require.Error(t, err)
}

func TestSerialConfig_Options(t *testing.T) {
	cfg := SerialConfig{ResponseTimeout: 3 * time.Second}
	o := defaultOptions()
	for _, opt := range cfg.Options() {
		opt(&o)
	}
	require.Equal(t, 3*time.Second, o.responseTimeout)

	// zero keeps the default
	o = defaultOptions()
	for _, opt := range (SerialConfig{}).Options() {
		opt(&o)
	}
	require.Equal(t, DefaultResponseTimeout, o.responseTimeout)
}

func TestNewLogger(t *testing.T) {
	log, closer, err := NewLogger(LogConfig{Level: "debug", Format: "json"})
	require.NoError(t, err)
	require.NoError(t, closer.Close())
	require.Equal(t, logrus.DebugLevel, log.GetLevel())
	require.IsType(t, &logrus.JSONFormatter{}, log.Formatter)

	log, _, err = NewLogger(LogConfig{Level: "nonsense"})
	require.NoError(t, err)
	require.Equal(t, logrus.InfoLevel, log.GetLevel())
	require.IsType(t, &logrus.TextFormatter{}, log.Formatter)

	path := filepath.Join(t.TempDir(), "gammascout.log")
	log, closer, err = NewLogger(LogConfig{FilePath: path})
	require.NoError(t, err)
	log.Info("hello")
	require.NoError(t, closer.Close())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(data), "hello")
}

func TestOpenPort_UnknownDriver(t *testing.T) {
	_, err := OpenPort(SerialConfig{Device: "/dev/null", Driver: "carrier-pigeon"})
	require.Error(t, err)
}
