package gammascout

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Mode is the operating mode reported by the device.
type Mode int

const (
	ModeUnknown Mode = iota
	ModeStandard
	ModePC
)

func (m Mode) String() string {
	switch m {
	case ModeStandard:
		return "Standard"
	case ModePC:
		return "PC"
	case ModeUnknown:
		return "Unknown"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// ParseMode converts "Standard" or "PC" (case-insensitive) to a Mode.
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(s) {
	case "standard":
		return ModeStandard, nil
	case "pc":
		return ModePC, nil
	default:
		return ModeUnknown, fmt.Errorf("unknown mode %q", s)
	}
}

// VersionInfo is the answer to the version query. Only Mode is set in
// Standard mode; the remaining fields are filled in PC mode.
type VersionInfo struct {
	Mode        Mode
	Version     string
	Serial      int
	BufferFill  int // bytes in the device log memory
	DeviceClock time.Time
}

func (v *VersionInfo) String() string {
	if v.Mode != ModePC {
		return v.Mode.String() + " mode"
	}
	return fmt.Sprintf("PC mode, firmware %s, serial %d, %d bytes logged, clock %s",
		v.Version, v.Serial, v.BufferFill, v.DeviceClock.Format("2006-01-02 15:04:05"))
}

const (
	standardVersionLine = "Standard"
	versionFormat       = `"Standard" or "Version X.YY <serial> <hex fill> DD.MM.YY HH:MM:SS"`
)

// ParseVersion parses the second line of a version response. It accepts the
// literal "Standard" or a PC-mode line such as
//
//	Version 6.00 00123 01F4 15.03.21 10:30:00
//
// The device clock is interpreted in the local time zone.
func ParseVersion(line string) (*VersionInfo, error) {
	if line == standardVersionLine {
		return &VersionInfo{Mode: ModeStandard}, nil
	}

	bad := &ProtocolError{Op: "version", Got: line, Want: versionFormat}

	fields := strings.Split(line, " ")
	if len(fields) != 6 || fields[0] != "Version" {
		return nil, bad
	}
	if !isFirmwareVersion(fields[1]) {
		return nil, bad
	}
	serial, err := strconv.ParseUint(fields[2], 10, 32)
	if err != nil {
		return nil, bad
	}
	fill, err := strconv.ParseUint(fields[3], 16, 32)
	if err != nil {
		return nil, bad
	}
	clock, ok := parseDeviceClock(fields[4], fields[5])
	if !ok {
		return nil, bad
	}

	return &VersionInfo{
		Mode:        ModePC,
		Version:     fields[1],
		Serial:      int(serial),
		BufferFill:  int(fill),
		DeviceClock: clock,
	}, nil
}

// isFirmwareVersion matches D.DD.
func isFirmwareVersion(s string) bool {
	return len(s) == 4 && isDigit(s[0]) && s[1] == '.' && isDigit(s[2]) && isDigit(s[3])
}

// parseDeviceClock parses "DD.MM.YY" and "HH:MM:SS"; years are 20YY.
func parseDeviceClock(date, clock string) (time.Time, bool) {
	d, ok := splitTwoDigits(date, '.')
	if !ok {
		return time.Time{}, false
	}
	c, ok := splitTwoDigits(clock, ':')
	if !ok {
		return time.Time{}, false
	}
	day, month, year := d[0], time.Month(d[1]), 2000+d[2]
	hour, minute, second := c[0], c[1], c[2]
	if hour > 23 || minute > 59 || second > 59 {
		return time.Time{}, false
	}
	t := time.Date(year, month, day, hour, minute, second, 0, time.Local)
	// time.Date normalizes out-of-range values, e.g. 31.02. becomes 03.03.
	if t.Day() != day || t.Month() != month {
		return time.Time{}, false
	}
	return t, true
}

// splitTwoDigits parses "NNsNNsNN" into three integers.
func splitTwoDigits(s string, sep byte) ([3]int, bool) {
	var out [3]int
	if len(s) != 8 || s[2] != sep || s[5] != sep {
		return out, false
	}
	for i := range out {
		hi, lo := s[3*i], s[3*i+1]
		if !isDigit(hi) || !isDigit(lo) {
			return out, false
		}
		out[i] = int(hi-'0')*10 + int(lo-'0')
	}
	return out, true
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
