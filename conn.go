package gammascout

import (
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"go.uber.org/atomic"
)

// Conn is a connection to a Gamma Scout. A background reader turns the port's
// byte stream into lines; the command methods write to the port and consume
// those lines.
//
// The protocol is half-duplex: command methods must not be called
// concurrently. Close may be called from any goroutine.
type Conn struct {
	port    Port
	queue   *MessageQueue
	log     logrus.FieldLogger
	metrics *Metrics

	responseTimeout time.Duration
	readSize        int
	slowDelay       time.Duration
	now             func() time.Time

	quit      atomic.Bool
	closed    atomic.Bool
	readErr   atomic.Error
	done      chan struct{}
	closeOnce sync.Once
}

// New starts a connection on an already opened port.
//
// Example:
//
//	port, err := gammascout.OpenPort(cfg.Serial)
//	if err != nil {
//	    return err
//	}
//	conn := gammascout.New(port, gammascout.WithLogger(log))
//	defer conn.Close()
func New(port Port, opts ...Option) *Conn {
	if port == nil {
		panic("port cannot be nil")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	c := &Conn{
		port:            port,
		queue:           NewMessageQueue(),
		log:             o.logger,
		metrics:         o.metrics,
		responseTimeout: o.responseTimeout,
		readSize:        o.readSize,
		slowDelay:       SlowWriteDelay,
		now:             time.Now,
		done:            make(chan struct{}),
	}
	go c.readLoop()
	return c
}

// Open opens the serial device described by cfg and starts a connection on it.
// Options given here override those derived from cfg.
func Open(cfg SerialConfig, opts ...Option) (*Conn, error) {
	port, err := OpenPort(cfg)
	if err != nil {
		return nil, err
	}
	return New(port, append(cfg.Options(), opts...)...), nil
}

// Close stops the reader and closes the port. The reader finishes its
// current read first, so Close returns within the port's read timeout.
// Safe to call multiple times; subsequent calls are no-ops.
func (c *Conn) Close() error {
	var err error
	c.closeOnce.Do(func() {
		c.closed.Store(true)
		c.quit.Store(true)
		<-c.done
		err = c.port.Close()
	})
	return err
}

// Done is closed when the reader loop has exited, after Close or a read error.
func (c *Conn) Done() <-chan struct{} {
	return c.done
}

// Err returns the read error that stopped the reader loop, or nil.
func (c *Conn) Err() error {
	return c.readErr.Load()
}

// writable reports why no command can be sent: the connection was closed or
// the reader loop stopped, so no answer could ever arrive.
func (c *Conn) writable() error {
	if c.closed.Load() {
		return ErrClosed
	}
	select {
	case <-c.done:
		if err := c.Err(); err != nil {
			return fmt.Errorf("reader stopped: %w", err)
		}
		return ErrClosed
	default:
		return nil
	}
}

// write sends cmd in a single port write.
func (c *Conn) write(cmd string) error {
	if err := c.writable(); err != nil {
		return err
	}
	c.log.Debugf("-> %s", cmd)
	c.metrics.command(cmd[:1])
	if _, err := c.port.Write([]byte(cmd)); err != nil {
		return fmt.Errorf("write %q: %w", cmd, err)
	}
	return nil
}

// writeSlow sends cmd one byte at a time, pausing after every byte. The
// device's receiver drops characters that arrive faster.
func (c *Conn) writeSlow(cmd string) error {
	if err := c.writable(); err != nil {
		return err
	}
	c.log.Debugf("-> slow: %s", cmd)
	c.metrics.command(cmd[:1])
	b := []byte(cmd)
	for i := range b {
		if _, err := c.port.Write(b[i : i+1]); err != nil {
			return fmt.Errorf("write %q (byte %d): %w", cmd, i, err)
		}
		time.Sleep(c.slowDelay)
	}
	return nil
}

// nextLine pops the next received line, waiting up to timeout.
func (c *Conn) nextLine(timeout time.Duration) (string, bool) {
	line, ok := c.queue.Pop(timeout)
	if ok {
		c.log.Debugf("# %q", line)
	} else {
		c.log.Debug("# <none>")
	}
	return line, ok
}

// expectResponse consumes the empty acknowledgement line followed by want.
func (c *Conn) expectResponse(op, want string, timeout time.Duration) error {
	line, ok := c.nextLine(timeout)
	if !ok {
		return fmt.Errorf("%s: %w (acknowledgement)", op, ErrTimeout)
	}
	if line != "" {
		c.metrics.protocolError()
		return &ProtocolError{Op: op, Got: line, Want: "an empty acknowledgement line"}
	}

	line, ok = c.nextLine(timeout)
	if !ok {
		return fmt.Errorf("%s: %w (expected %q)", op, ErrTimeout, want)
	}
	if line != want {
		c.metrics.protocolError()
		return &ProtocolError{Op: op, Got: line, Want: fmt.Sprintf("%q", want)}
	}
	return nil
}
