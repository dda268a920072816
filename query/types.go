package query

import "sync/atomic"

// request is the envelope travelling from a caller to the writer loop: the
// dispatch bytes of one command plus a single-shot sink for its response.
type request struct {
	data []byte
	resp chan RawResponse // buffered, capacity 1
}

// RawResponse holds the undecoded reply to a single command: zero or more
// content lines followed by exactly one status line. split marks the start
// of the status line within buf.
type RawResponse struct {
	buf   []byte
	split int
}

// Content returns the content lines with the final line terminator removed.
// It is empty for commands that only acknowledge.
func (r RawResponse) Content() []byte {
	return trimLine(r.buf[:r.split])
}

// StatusLine returns the terminating status line with its terminator
// removed.
func (r RawResponse) StatusLine() []byte {
	return trimLine(r.buf[r.split:])
}

// trimLine removes the trailing LF CR pair of a server line.
func trimLine(b []byte) []byte {
	if n := len(b); n >= 2 && b[n-2] == '\n' && b[n-1] == '\r' {
		return b[:n-2]
	}
	return b
}

// connStats carries the per-connection counters exposed by the Collector.
type connStats struct {
	commandsSent  atomic.Int64
	responses     atomic.Int64
	events        atomic.Int64
	keepAlives    atomic.Int64
	bytesRead     atomic.Int64
	bytesWritten  atomic.Int64
	decodeErrors  atomic.Int64
	eventsDropped atomic.Int64
}
