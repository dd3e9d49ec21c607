// Package gammascout drives a Gamma Scout Geiger counter over its serial
// interface (9600 baud, 7 data bits, even parity, 1 stop bit).
//
// The device speaks a half-duplex, line-oriented text protocol: the host
// sends a single command character (optionally followed by fixed-width
// digits) and the device answers with CRLF-terminated lines, usually an
// empty acknowledgement line followed by a status line. Bulk transfers
// (log, configuration) are sent as hex lines and end when the device stops
// talking.
//
// Features:
//   - Raw Linux termios driver with poll-bounded reads and killable Close
//   - Portable driver on top of go.bug.st/serial
//   - Background reader that frames lines into a blocking message queue
//   - Mode switching, clock setting, log and configuration download
//   - Per-line checksum verification of the log transfer
//   - logrus tracing and optional prometheus counters
//
// Example usage:
//
//	conn, err := gammascout.Open(gammascout.SerialConfig{
//	    Device: "/dev/ttyUSB0",
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer conn.Close()
//
//	info, err := conn.Version()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(info)
//
//	rec, err := conn.ReadLog()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("%d of %d bytes, %d bad lines\n", len(rec.Data), rec.BufferFill, rec.ChecksumErrors)
//
// Command methods must be called from one goroutine at a time. The device
// mode is queried before every operation that needs PC mode, because it can
// be changed on the device itself.
package gammascout
