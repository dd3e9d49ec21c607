package gammascout

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"
)

// Command characters and the status lines the device answers them with.
const (
	cmdVersion     = "v"
	cmdPCModeStart = "P"
	cmdPCModeEnd   = "X"
	cmdSetTime     = "t"
	cmdReadLog     = "b"
	cmdClearLog    = "z"
	cmdReset       = "i"
	cmdReadConfig  = "c"

	respPCModeStarted = "PC-Mode gestartet"
	respPCModeEnded   = "PC-Mode beendet"
	respTimeSet       = "Datum und Zeit gestellt"
	respLogHeader     = "GAMMA-SCOUT Protokoll"
	respLogCleared    = "Protokollspeicher wieder frei"
)

// LogRecord is the measurement log read from the device.
type LogRecord struct {
	// BufferFill is the byte count the device reported before the transfer.
	BufferFill int

	// Data is the concatenated payload of all transfer lines, checksum bytes removed.
	Data []byte

	// ChecksumErrors counts lines whose checksum did not match. Those lines
	// are still part of Data; the device cannot resend them.
	ChecksumErrors int
}

// ConfigRecord is the raw configuration memory read from the device.
type ConfigRecord []byte

// Version queries the device mode and, in PC mode, its firmware version,
// serial number, log fill level and clock.
func (c *Conn) Version() (*VersionInfo, error) {
	if err := c.write(cmdVersion); err != nil {
		return nil, fmt.Errorf("version: %w", err)
	}
	if _, ok := c.nextLine(c.responseTimeout); !ok {
		return nil, fmt.Errorf("version: %w (first line)", ErrTimeout)
	}
	line, ok := c.nextLine(c.responseTimeout)
	if !ok {
		return nil, fmt.Errorf("version: %w (second line)", ErrTimeout)
	}

	info, err := ParseVersion(line)
	if err != nil {
		c.metrics.protocolError()
		return nil, err
	}
	return info, nil
}

// SwitchMode puts the device into target mode, which must be ModeStandard or
// ModePC. The current mode is queried first; nothing is sent if it already
// matches.
func (c *Conn) SwitchMode(target Mode) error {
	if target != ModeStandard && target != ModePC {
		return &InvalidModeError{Mode: target}
	}

	info, err := c.Version()
	if err != nil {
		return fmt.Errorf("switch mode: %w", err)
	}
	if info.Mode == target {
		return nil
	}

	cmd, want := cmdPCModeStart, respPCModeStarted
	if target == ModeStandard {
		cmd, want = cmdPCModeEnd, respPCModeEnded
	}
	if err := c.write(cmd); err != nil {
		return fmt.Errorf("switch mode: %w", err)
	}
	if err := c.expectResponse("switch mode", want, ModeSwitchTimeout); err != nil {
		return err
	}
	c.log.WithField("mode", target).Info("device mode switched")
	return nil
}

// ensurePCMode switches to PC mode unless the device already reports it.
// The mode is never cached, the front panel can change it at any time.
func (c *Conn) ensurePCMode(op string) error {
	if err := c.SwitchMode(ModePC); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// SetTime sets the device clock to t (two-digit year, no time zone). The
// command is sent slowly, so this takes about seven seconds.
func (c *Conn) SetTime(t time.Time) error {
	cmd := fmt.Sprintf("%s%02d%02d%02d%02d%02d%02d", cmdSetTime,
		t.Day(), int(t.Month()), t.Year()%100, t.Hour(), t.Minute(), t.Second())
	if err := c.writeSlow(cmd); err != nil {
		return fmt.Errorf("set time: %w", err)
	}
	return c.expectResponse("set time", respTimeSet, c.responseTimeout)
}

// SyncTime sets the device clock to the host's local time.
func (c *Conn) SyncTime() error {
	return c.SetTime(c.now())
}

// ReadLog switches to PC mode and transfers the measurement log. The end of
// the transfer is detected by the response timeout.
//
// Lines with a wrong checksum are logged, counted and kept.
func (c *Conn) ReadLog() (*LogRecord, error) {
	if err := c.ensurePCMode("read log"); err != nil {
		return nil, err
	}
	info, err := c.Version()
	if err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	if info.Mode != ModePC {
		c.metrics.protocolError()
		return nil, &ProtocolError{Op: "read log", Got: info.Mode.String(), Want: "PC mode"}
	}

	if err := c.write(cmdReadLog); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}
	if err := c.expectResponse("read log", respLogHeader, c.responseTimeout); err != nil {
		return nil, err
	}

	rec := &LogRecord{BufferFill: info.BufferFill}
	for lineNo := 1; ; lineNo++ {
		line, ok := c.nextLine(c.responseTimeout)
		if !ok {
			break
		}
		l, err := decodeLogLine(line)
		if err != nil {
			c.metrics.protocolError()
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if !l.valid() {
			rec.ChecksumErrors++
			c.metrics.checksumError()
			c.log.WithFields(logrus.Fields{
				"line":        lineNo,
				"calculated":  fmt.Sprintf("0x%02x", l.calculated),
				"transmitted": fmt.Sprintf("0x%02x", l.transmitted),
			}).Warn("log line has checksum error")
		}
		rec.Data = append(rec.Data, l.payload...)
	}

	c.log.WithFields(logrus.Fields{
		"buffer_fill":     rec.BufferFill,
		"bytes":           len(rec.Data),
		"checksum_errors": rec.ChecksumErrors,
	}).Info("log read")
	return rec, nil
}

// ClearLog switches to PC mode and erases the measurement log.
func (c *Conn) ClearLog() error {
	if err := c.ensurePCMode("clear log"); err != nil {
		return err
	}
	if err := c.write(cmdClearLog); err != nil {
		return fmt.Errorf("clear log: %w", err)
	}
	return c.expectResponse("clear log", respLogCleared, c.responseTimeout)
}

// Reset switches to PC mode and sends the device reset command. The device
// does not answer it.
func (c *Conn) Reset() error {
	if err := c.ensurePCMode("reset"); err != nil {
		return err
	}
	if err := c.write(cmdReset); err != nil {
		return fmt.Errorf("reset: %w", err)
	}
	return nil
}

// ReadConfig switches to PC mode and transfers the configuration memory.
func (c *Conn) ReadConfig() (ConfigRecord, error) {
	if err := c.ensurePCMode("read config"); err != nil {
		return nil, err
	}
	if err := c.write(cmdReadConfig); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var rec ConfigRecord
	for lineNo := 1; ; lineNo++ {
		line, ok := c.nextLine(c.responseTimeout)
		if !ok {
			break
		}

		var (
			data []byte
			err  error
		)
		switch lineNo {
		case 1:
			// boundary marker
			continue
		case 2:
			data, err = decodeConfigHeader(line)
		default:
			data, err = decodeHexLine("read config", line)
		}
		if err != nil {
			c.metrics.protocolError()
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		rec = append(rec, data...)
	}
	return rec, nil
}
