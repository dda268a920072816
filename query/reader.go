package query

import (
	"bufio"
	"bytes"
	"io"
)

var (
	banner       = []byte("TS3\n\r")
	statusPrefix = []byte("error ")
	notifyPrefix = []byte("notify")
)

// frameReader consumes the raw byte stream and splits it into the three
// frame kinds: content lines accumulate, a status line completes the
// in-flight response, a notify line is excised and dispatched as an event.
type frameReader struct {
	c  *Client
	rd *bufio.Reader

	buf      []byte
	lastCR   int // end of the last line known to be content
	lastScan int // scan resumes here; bytes from lastCR up to it hold no CR
	readBuf  []byte
}

func newFrameReader(c *Client, r io.Reader) *frameReader {
	return &frameReader{
		c:       c,
		rd:      bufio.NewReader(r),
		readBuf: make([]byte, 512),
	}
}

// handshake reads the banner line and the human-readable welcome line that
// follows it. Anything other than the exact banner fails the connection.
func (r *frameReader) handshake() error {
	line, err := r.rd.ReadBytes('\r')
	if err != nil {
		return &TransportError{Op: "read", Err: err}
	}
	if !bytes.Equal(line, banner) {
		return ErrNotTS3Server
	}
	if _, err := r.rd.ReadBytes('\r'); err != nil {
		return &TransportError{Op: "read", Err: err}
	}
	return nil
}

// run reads frames until the connection dies. Responses go to the writer's
// response channel, events to the dispatcher.
func (r *frameReader) run() error {
	for {
		resp, ok, err := r.scan()
		if err != nil {
			return err
		}
		if !ok {
			n, rerr := r.rd.Read(r.readBuf)
			if n > 0 {
				r.buf = append(r.buf, r.readBuf[:n]...)
				r.c.stats.bytesRead.Add(int64(n))
			}
			if rerr != nil {
				return &TransportError{Op: "read", Err: rerr}
			}
			continue
		}

		r.c.stats.responses.Add(1)
		select {
		case r.c.respCh <- resp:
		case <-r.c.done:
			return nil
		}
	}
}

// scan looks for complete lines from lastScan onwards, classifying each at
// its CR. It returns the next complete response, if any; notify lines are
// dispatched as a side effect. Classification happens at CR boundaries
// only, so a partial line never influences a frame decision.
func (r *frameReader) scan() (RawResponse, bool, error) {
	for r.lastScan < len(r.buf) {
		i := bytes.IndexByte(r.buf[r.lastScan:], '\r')
		if i < 0 {
			r.lastScan = len(r.buf)
			return RawResponse{}, false, nil
		}
		end := r.lastScan + i + 1
		line := r.buf[r.lastCR:end]

		switch {
		case bytes.HasPrefix(line, statusPrefix):
			// status line: everything up to here is one response
			raw := make([]byte, end)
			copy(raw, r.buf[:end])
			resp := RawResponse{buf: raw, split: r.lastCR}

			r.buf = r.buf[:copy(r.buf, r.buf[end:])]
			r.lastCR, r.lastScan = 0, 0

			if r.c.logger != nil {
				if content := resp.Content(); len(content) > 0 {
					r.c.logger.Printf("[DEBUG] %s [S->C] %s", r.c.id, content)
				}
				r.c.logger.Printf("[DEBUG] %s [S->C] %s", r.c.id, resp.StatusLine())
			}
			return resp, true, nil

		case bytes.HasPrefix(line, notifyPrefix):
			// excise the event, keeping accumulated content intact
			event := make([]byte, len(line))
			copy(event, line)
			r.buf = append(r.buf[:r.lastCR], r.buf[end:]...)
			r.lastScan = r.lastCR

			if err := r.c.dispatchEvent(trimLine(event)); err != nil {
				return RawResponse{}, false, err
			}

		default:
			// content line of the in-flight command
			r.lastCR, r.lastScan = end, end
		}
	}
	return RawResponse{}, false, nil
}
