package gammascout

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

const pcVersionLine = "Version 6.00 00123 01F4 15.03.21 10:30:00"

// deviceSim answers protocol commands the way a Gamma Scout does. Input is
// processed byte by byte, so slow and fast writes both work.
type deviceSim struct {
	mu sync.Mutex

	mode        Mode
	versionLine string   // PC-mode version line
	logLines    []string // hex lines sent after the log header
	configLines []string // lines sent after 'c'
	mute        bool     // never answer

	clock     string // digits received with the last 't' command
	timeBuf   []byte
	inTime    bool
	cleared   bool
	resets    int
	unhandled []byte
}

func newDeviceSim(mode Mode) *deviceSim {
	return &deviceSim{mode: mode, versionLine: pcVersionLine}
}

func crlf(lines ...string) []byte {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteString("\r\n")
	}
	return []byte(b.String())
}

// feed consumes bytes written by the host and returns the device's answer.
func (d *deviceSim) feed(in []byte) []byte {
	d.mu.Lock()
	defer d.mu.Unlock()

	var out []byte
	for _, c := range in {
		out = append(out, d.handle(c)...)
	}
	if d.mute {
		return nil
	}
	return out
}

func (d *deviceSim) handle(c byte) []byte {
	if d.inTime {
		d.timeBuf = append(d.timeBuf, c)
		if len(d.timeBuf) < 12 {
			return nil
		}
		d.inTime = false
		d.clock = string(d.timeBuf)
		d.timeBuf = nil
		return crlf("", respTimeSet)
	}

	switch c {
	case 'v':
		if d.mode == ModePC {
			return crlf("", d.versionLine)
		}
		return crlf("", "Standard")
	case 'P':
		d.mode = ModePC
		return crlf("", respPCModeStarted)
	case 'X':
		d.mode = ModeStandard
		return crlf("", respPCModeEnded)
	case 't':
		d.inTime = true
		return nil
	case 'b':
		return append(crlf("", respLogHeader), crlf(d.logLines...)...)
	case 'z':
		d.cleared = true
		return crlf("", respLogCleared)
	case 'i':
		d.resets++
		return nil
	case 'c':
		return crlf(d.configLines...)
	default:
		d.unhandled = append(d.unhandled, c)
		return nil
	}
}

func (d *deviceSim) currentMode() Mode {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.mode
}

// logLineHex encodes payload as a log transfer line with checksum.
func logLineHex(payload ...byte) string {
	return fmt.Sprintf("%X%02X", payload, LineChecksum(payload))
}

// fakePort is an in-memory Port wired to a deviceSim. Answers are delivered
// in small chunks to exercise line framing.
type fakePort struct {
	sim       *deviceSim
	chunkSize int

	mu         sync.Mutex
	writes     []string
	writeTimes []time.Time
	readErr    error

	rx        chan []byte
	pending   []byte // only touched by the reader
	closed    chan struct{}
	closeOnce sync.Once
}

func newFakePort(sim *deviceSim) *fakePort {
	return &fakePort{
		sim:       sim,
		chunkSize: 5,
		rx:        make(chan []byte, 4096),
		closed:    make(chan struct{}),
	}
}

func (p *fakePort) Read(b []byte) (int, error) {
	p.mu.Lock()
	err := p.readErr
	p.mu.Unlock()
	if err != nil {
		return 0, err
	}

	if len(p.pending) == 0 {
		select {
		case chunk := <-p.rx:
			p.pending = chunk
		case <-p.closed:
			return 0, ErrClosed
		case <-time.After(10 * time.Millisecond):
			return 0, nil
		}
	}
	n := copy(b, p.pending)
	p.pending = p.pending[n:]
	return n, nil
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	p.writes = append(p.writes, string(b))
	p.writeTimes = append(p.writeTimes, time.Now())
	p.mu.Unlock()

	p.inject(p.sim.feed(b))
	return len(b), nil
}

// inject delivers raw bytes as if the device had sent them.
func (p *fakePort) inject(b []byte) {
	for len(b) > 0 {
		n := p.chunkSize
		if n > len(b) {
			n = len(b)
		}
		p.rx <- b[:n]
		b = b[n:]
	}
}

func (p *fakePort) Close() error {
	p.closeOnce.Do(func() { close(p.closed) })
	return nil
}

func (p *fakePort) setReadErr(err error) {
	p.mu.Lock()
	p.readErr = err
	p.mu.Unlock()
}

func (p *fakePort) written() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.writes...)
}

func (p *fakePort) times() []time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]time.Time(nil), p.writeTimes...)
}
