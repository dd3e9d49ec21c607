//go:build linux

package gammascout

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"golang.org/x/sys/unix"
)

// TermiosPort is a raw Linux serial port configured through termios.
// Reads are bounded by the configured read timeout; Close unblocks a pending Read.
type TermiosPort struct {
	fd        int
	file      *os.File
	timeout   time.Duration
	done      chan struct{}
	closeOnce sync.Once
	pipeR     int // self-pipe read fd
	pipeW     int // self-pipe write fd
}

// OpenTermios opens cfg.Device in raw mode with the Gamma Scout line settings:
// 7 data bits, even parity, one stop bit.
func OpenTermios(cfg SerialConfig) (*TermiosPort, error) {
	fd, err := unix.Open(cfg.Device, unix.O_RDWR|unix.O_NOCTTY|unix.O_NONBLOCK|unix.O_CLOEXEC, 0666)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Device, err)
	}

	termios, err := unix.IoctlGetTermios(fd, unix.TCGETS)
	if err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("get termios: %w", err)
	}

	// Raw mode
	termios.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	termios.Oflag &^= unix.OPOST
	termios.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN

	// 7E1
	termios.Cflag &^= unix.CSIZE | unix.PARODD | unix.CSTOPB
	termios.Cflag |= unix.CS7 | unix.PARENB | unix.CREAD | unix.CLOCAL

	baud := baudToUnix(cfg.BaudRate)
	termios.Cflag &^= unix.CBAUD
	termios.Cflag |= baud

	// poll decides when data is there; a read then returns whatever arrived.
	termios.Cc[unix.VMIN] = 1
	termios.Cc[unix.VTIME] = 0

	if err := unix.IoctlSetTermios(fd, unix.TCSETS, termios); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("set termios: %w", err)
	}

	if err := unix.SetNonblock(fd, false); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("set blocking: %w", err)
	}

	// Create self-pipe for killability
	pipeFds := make([]int, 2)
	if err := unix.Pipe2(pipeFds, unix.O_CLOEXEC); err != nil {
		unix.Close(fd)
		return nil, fmt.Errorf("pipe: %w", err)
	}

	timeout := cfg.ReadTimeout
	if timeout <= 0 {
		timeout = DefaultReadTimeout
	}

	return &TermiosPort{
		fd:      fd,
		file:    os.NewFile(uintptr(fd), cfg.Device),
		timeout: timeout,
		done:    make(chan struct{}),
		pipeR:   pipeFds[0],
		pipeW:   pipeFds[1],
	}, nil
}

// Read waits up to the read timeout for data. It returns 0, nil if none arrived.
func (s *TermiosPort) Read(p []byte) (int, error) {
	select {
	case <-s.done:
		return 0, ErrClosed
	default:
	}

	pfd := []unix.PollFd{
		{Fd: int32(s.fd), Events: unix.POLLIN},
		{Fd: int32(s.pipeR), Events: unix.POLLIN},
	}
	ready, err := unix.Poll(pfd, int(s.timeout/time.Millisecond))
	// Check killability
	select {
	case <-s.done:
		return 0, ErrClosed
	default:
	}
	if err == unix.EINTR {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("poll: %w", err)
	}
	if ready == 0 {
		return 0, nil
	}
	if pfd[1].Revents&unix.POLLIN != 0 {
		return 0, ErrClosed
	}

	revents := pfd[0].Revents
	if revents&unix.POLLIN == 0 {
		if revents&(unix.POLLHUP|unix.POLLERR|unix.POLLNVAL) != 0 {
			return 0, fmt.Errorf("serial device hung up (revents 0x%x)", revents)
		}
		return 0, nil
	}

	n, err := unix.Read(s.fd, p)
	switch {
	case err == unix.EINTR || err == unix.EAGAIN:
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("read: %w", err)
	case n == 0:
		return 0, io.EOF
	}
	return n, nil
}

// Write sends p to the device.
func (s *TermiosPort) Write(p []byte) (int, error) {
	select {
	case <-s.done:
		return 0, ErrClosed
	default:
	}
	return s.file.Write(p)
}

// Close closes the serial port and unblocks a pending Read.
// Safe to call multiple times; subsequent calls are no-ops.
func (s *TermiosPort) Close() error {
	var err error
	s.closeOnce.Do(func() {
		close(s.done)
		// Wake up poll using self-pipe
		unix.Write(s.pipeW, []byte{1})
		err = s.file.Close()
		unix.Close(s.pipeR)
		unix.Close(s.pipeW)
	})
	return err
}

func baudToUnix(baud int) uint32 {
	switch baud {
	case 1200:
		return unix.B1200
	case 2400:
		return unix.B2400
	case 4800:
		return unix.B4800
	case 9600:
		return unix.B9600
	case 19200:
		return unix.B19200
	case 38400:
		return unix.B38400
	case 57600:
		return unix.B57600
	case 115200:
		return unix.B115200
	default:
		return unix.B9600 // fallback
	}
}
