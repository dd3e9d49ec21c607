package gammascout

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Protocol timing. SlowWriteDelay is a receiver limit of the device:
// 0.4 s drops bytes, 0.5 s works.
const (
	DefaultResponseTimeout = 1 * time.Second
	ModeSwitchTimeout      = 2 * time.Second
	SlowWriteDelay         = 550 * time.Millisecond
	DefaultReadSize        = 128
)

type options struct {
	logger          logrus.FieldLogger
	metrics         *Metrics
	responseTimeout time.Duration
	readSize        int
}

func defaultOptions() options {
	return options{
		logger:          logrus.StandardLogger(),
		responseTimeout: DefaultResponseTimeout,
		readSize:        DefaultReadSize,
	}
}

// Option configures a Conn.
type Option func(*options)

// WithLogger sets the logger used for wire tracing (debug level) and
// checksum warnings.
//
// Example:
//
//	log := logrus.New()
//	log.SetLevel(logrus.DebugLevel)
//	conn := gammascout.New(port, gammascout.WithLogger(log))
func WithLogger(logger logrus.FieldLogger) Option {
	return func(o *options) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithMetrics records traffic and error counters into m.
func WithMetrics(m *Metrics) Option {
	return func(o *options) {
		o.metrics = m
	}
}

// WithResponseTimeout sets how long a command waits for each response line.
// The same bound marks the end of a bulk transfer. Default is 1s.
func WithResponseTimeout(timeout time.Duration) Option {
	return func(o *options) {
		if timeout > 0 {
			o.responseTimeout = timeout
		}
	}
}

// WithReadSize sets the buffer size of a single port read. Default is 128 bytes.
func WithReadSize(size int) Option {
	return func(o *options) {
		if size > 0 {
			o.readSize = size
		}
	}
}
