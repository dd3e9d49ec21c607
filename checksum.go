package gammascout

import (
	"encoding/hex"
	"strconv"
	"strings"
)

// LineChecksum returns the 8-bit sum of payload. A log line carries it as
// its last byte.
func LineChecksum(payload []byte) byte {
	var sum byte
	for _, b := range payload {
		sum += b
	}
	return sum
}

// decodeHexLine decodes a bulk-transfer line of even-length hex text.
func decodeHexLine(op, line string) ([]byte, error) {
	if len(line)%2 != 0 {
		return nil, &ProtocolError{Op: op, Got: line, Want: "an even number of hex digits"}
	}
	data, err := hex.DecodeString(line)
	if err != nil {
		return nil, &ProtocolError{Op: op, Got: line, Want: "hexadecimal digits"}
	}
	return data, nil
}

// logLine is one decoded log transfer line.
type logLine struct {
	payload     []byte
	transmitted byte
	calculated  byte
}

func (l logLine) valid() bool {
	return l.transmitted == l.calculated
}

// decodeLogLine splits a log line into payload and trailing checksum.
func decodeLogLine(line string) (logLine, error) {
	data, err := decodeHexLine("read log", line)
	if err != nil {
		return logLine{}, err
	}
	if len(data) == 0 {
		return logLine{}, &ProtocolError{Op: "read log", Got: line, Want: "payload bytes followed by a checksum byte"}
	}
	payload := data[:len(data)-1]
	return logLine{
		payload:     payload,
		transmitted: data[len(data)-1],
		calculated:  LineChecksum(payload),
	}, nil
}

// decodeConfigHeader parses the first configuration data line, three hex
// fields separated by single spaces: two single-byte values followed by the
// start of the hex payload.
func decodeConfigHeader(line string) ([]byte, error) {
	bad := &ProtocolError{Op: "read config", Got: line, Want: "three space-separated hex fields"}

	fields := strings.Split(line, " ")
	if len(fields) != 3 {
		return nil, bad
	}
	out := make([]byte, 0, 2+len(fields[2])/2)
	for _, f := range fields[:2] {
		v, err := strconv.ParseUint(f, 16, 8)
		if err != nil {
			return nil, bad
		}
		out = append(out, byte(v))
	}
	if fields[2] == "" {
		return nil, bad
	}
	payload, err := decodeHexLine("read config", fields[2])
	if err != nil {
		return nil, err
	}
	return append(out, payload...), nil
}
