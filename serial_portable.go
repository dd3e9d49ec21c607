package gammascout

import (
	"fmt"

	serial "go.bug.st/serial"
)

// openSerial is a seam so tests can avoid touching real hardware.
var openSerial = func(name string, mode *serial.Mode) (serial.Port, error) { return serial.Open(name, mode) }

// PortablePort wraps a go.bug.st/serial port. It works wherever that package
// does (Linux, macOS, Windows, BSD).
type PortablePort struct {
	serial.Port
}

// portableMode returns the 7E1 line mode for the given baud rate.
func portableMode(baud int) *serial.Mode {
	if baud <= 0 {
		baud = BaudRate
	}
	return &serial.Mode{
		BaudRate: baud,
		DataBits: 7,
		Parity:   serial.EvenParity,
		StopBits: serial.OneStopBit,
	}
}

// OpenPortable opens cfg.Device through go.bug.st/serial with the Gamma Scout
// line settings and a bounded read timeout.
func OpenPortable(cfg SerialConfig) (*PortablePort, error) {
	p, err := openSerial(cfg.Device, portableMode(cfg.BaudRate))
	if err != nil {
		return nil, fmt.Errorf("failed to open serial %s: %w", cfg.Device, err)
	}
	timeout := cfg.ReadTimeout
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}
	if err := p.SetReadTimeout(timeout); err != nil {
		p.Close()
		return nil, fmt.Errorf("set read timeout on %s: %w", cfg.Device, err)
	}
	return &PortablePort{Port: p}, nil
}
