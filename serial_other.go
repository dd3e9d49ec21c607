//go:build !linux

package gammascout

import "errors"

// TermiosPort is only available on Linux; use the portable driver elsewhere.
type TermiosPort struct{}

// OpenTermios always fails outside Linux.
func OpenTermios(cfg SerialConfig) (*TermiosPort, error) {
	return nil, errors.New("termios driver is only supported on linux, use the portable driver")
}

func (s *TermiosPort) Read(p []byte) (int, error) {
	return 0, ErrClosed
}

func (s *TermiosPort) Write(p []byte) (int, error) {
	return 0, ErrClosed
}

func (s *TermiosPort) Close() error {
	return nil
}
