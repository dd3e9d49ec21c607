package gammascout

import (
	"fmt"
	"time"
)

// Line settings of the Gamma Scout serial interface (9600-7E1).
const (
	BaudRate           = 9600
	DefaultReadTimeout = 100 * time.Millisecond
)

// Port is the byte-level transport a Conn talks through.
//
// Read must block for at most the port's read timeout and return 0, nil when
// no data arrived in that window. Write and Close follow io.Writer and io.Closer.
type Port interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Close() error
}

// Driver names accepted in SerialConfig.Driver.
const (
	DriverTermios  = "termios"
	DriverPortable = "portable"
)

// OpenPort opens the serial device described by cfg with the selected driver.
func OpenPort(cfg SerialConfig) (Port, error) {
	switch cfg.Driver {
	case "", DriverTermios:
		p, err := OpenTermios(cfg)
		if err != nil {
			return nil, err
		}
		return p, nil
	case DriverPortable:
		p, err := OpenPortable(cfg)
		if err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown serial driver %q", cfg.Driver)
	}
}
