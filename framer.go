package gammascout

import (
	"bytes"
	"unicode/utf8"
)

var lineTerminator = []byte("\r\n")

// Framer splits a byte stream into CRLF-terminated lines. Chunk boundaries
// need not match line boundaries; the trailing partial line is held until
// the rest of it arrives.
//
// A Framer is not safe for concurrent use. The reader loop owns it.
type Framer struct {
	pending []byte
}

// Feed appends chunk and returns every line completed by it, in order,
// without the terminator.
func (f *Framer) Feed(chunk []byte) []string {
	f.pending = append(f.pending, chunk...)

	var lines []string
	for {
		idx := bytes.Index(f.pending, lineTerminator)
		if idx < 0 {
			break
		}
		lines = append(lines, decodeLatin1(f.pending[:idx]))
		f.pending = f.pending[idx+len(lineTerminator):]
	}
	if len(f.pending) == 0 {
		f.pending = nil
	}
	return lines
}

// Pending returns the number of buffered bytes not yet terminated.
func (f *Framer) Pending() int {
	return len(f.pending)
}

// decodeLatin1 maps every byte to the code point of the same value.
func decodeLatin1(b []byte) string {
	ascii := true
	for _, c := range b {
		if c >= utf8.RuneSelf {
			ascii = false
			break
		}
	}
	if ascii {
		return string(b)
	}
	runes := make([]rune, len(b))
	for i, c := range b {
		runes[i] = rune(c)
	}
	return string(runes)
}
