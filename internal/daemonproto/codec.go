package daemonproto

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
)

// MaxLineBytes bounds a single NDJSON line; a query can carry long paths
// but nothing close to this.
const MaxLineBytes = 1 << 20

// ReadLine reads one NDJSON line (trimming its trailing newline) from r. A
// final line with no trailing newline before EOF is still returned.
func ReadLine(r *bufio.Reader) ([]byte, error) {
	line, err := r.ReadBytes('\n')
	if err != nil {
		if err == io.EOF && len(line) > 0 {
			return bytes.TrimRight(line, "\r\n"), nil
		}
		return nil, err
	}
	if len(line) > MaxLineBytes {
		return nil, fmt.Errorf("request line exceeds %d bytes", MaxLineBytes)
	}
	return bytes.TrimRight(line, "\r\n"), nil
}

// WriteLine writes payload followed by a newline, per the NDJSON wire
// format, and flushes w.
func WriteLine(w *bufio.Writer, payload []byte) error {
	if _, err := w.Write(payload); err != nil {
		return err
	}
	if err := w.WriteByte('\n'); err != nil {
		return err
	}
	return w.Flush()
}
