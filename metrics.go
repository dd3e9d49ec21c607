package gammascout

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the prometheus collectors a Conn updates. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	BytesReceived  prometheus.Counter
	LinesReceived  prometheus.Counter
	Commands       *prometheus.CounterVec
	ProtocolErrors prometheus.Counter
	ChecksumErrors prometheus.Counter
}

// NewMetrics creates the collectors and registers them with reg.
// reg may be nil to skip registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		BytesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gammascout_bytes_received_total",
			Help: "Bytes read from the serial port.",
		}),
		LinesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gammascout_lines_received_total",
			Help: "Complete protocol lines received.",
		}),
		Commands: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "gammascout_commands_total",
			Help: "Commands written to the device.",
		}, []string{"command"}),
		ProtocolErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gammascout_protocol_errors_total",
			Help: "Responses that did not match the expected text or format.",
		}),
		ChecksumErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "gammascout_checksum_errors_total",
			Help: "Log lines received with a wrong checksum.",
		}),
	}
	if reg != nil {
		reg.MustRegister(
			m.BytesReceived,
			m.LinesReceived,
			m.Commands,
			m.ProtocolErrors,
			m.ChecksumErrors,
		)
	}
	return m
}

func (m *Metrics) received(bytes, lines int) {
	if m == nil {
		return
	}
	m.BytesReceived.Add(float64(bytes))
	m.LinesReceived.Add(float64(lines))
}

func (m *Metrics) command(cmd string) {
	if m == nil {
		return
	}
	m.Commands.WithLabelValues(cmd).Inc()
}

func (m *Metrics) protocolError() {
	if m == nil {
		return
	}
	m.ProtocolErrors.Inc()
}

func (m *Metrics) checksumError() {
	if m == nil {
		return
	}
	m.ChecksumErrors.Inc()
}
