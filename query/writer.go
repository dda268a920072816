package query

import "io"

// commandWriter serializes outbound commands. Exactly one command is in
// flight: the next request is not written until the response to the
// previous one has been forwarded, which keeps request/response pairing
// strictly positional.
type commandWriter struct {
	c *Client
	w io.Writer
}

func newCommandWriter(c *Client, w io.Writer) *commandWriter {
	return &commandWriter{c: c, w: w}
}

func (w *commandWriter) run() error {
	for {
		var req *request
		select {
		case <-w.c.done:
			return nil
		case req = <-w.c.cmdCh:
		}

		if w.c.logger != nil {
			w.c.logger.Printf("[DEBUG] %s [C->S] %s", w.c.id, trimDispatch(req.data))
		}

		n, err := w.w.Write(req.data)
		w.c.stats.bytesWritten.Add(int64(n))
		if err != nil {
			return &TransportError{Op: "write", Err: err}
		}
		w.c.stats.commandsSent.Add(1)

		select {
		case <-w.c.done:
			return nil
		case resp := <-w.c.respCh:
			req.resp <- resp
		}
	}
}

// trimDispatch removes the LF CR terminator for logging.
func trimDispatch(b []byte) []byte {
	if n := len(b); n >= 2 {
		return b[:n-2]
	}
	return b
}
