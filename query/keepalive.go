package query

import (
	"time"

	"github.com/teamspeak-go/ts3query/parser"
)

// keepAliveLoop issues a benign command at a fixed period so that the
// server does not drop an idle query connection. The request goes through
// the regular command channel, so user traffic simply delays it. The body
// is discarded, but a failing status tears the connection down.
func (c *Client) keepAliveLoop() error {
	ticker := time.NewTicker(c.keepAlive)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return nil
		case <-ticker.C:
		}

		req := &request{
			data: parser.NewCommand("version").Bytes(),
			resp: make(chan RawResponse, 1),
		}

		select {
		case c.cmdCh <- req:
		case <-c.done:
			return nil
		}

		var resp RawResponse
		select {
		case resp = <-req.resp:
		case <-c.done:
			return nil
		}

		st, err := parser.ParseStatus(resp.StatusLine())
		if err != nil {
			return err
		}
		if !st.OK() {
			return &QueryError{ID: st.ID, Msg: st.Msg, ExtraMsg: st.ExtraMsg}
		}

		c.stats.keepAlives.Add(1)
		if c.logger != nil {
			c.logger.Printf("[DEBUG] %s Sent keep alive", c.id)
		}
	}
}
