package query

import (
	"context"
	"log"
	"net"
	"sync"
	"time"

	"github.com/rs/xid"

	"github.com/teamspeak-go/ts3query/parser"
)

const (
	defaultKeepAlivePeriod = 60 * time.Second
	defaultEventBuffer     = 64
)

// Config holds the parameters for a query connection. The zero value is
// usable: no logging, 60 second keep-alive, events buffered for NextEvent.
type Config struct {
	Logger          *log.Logger   // optional logger; nil disables logging
	KeepAlivePeriod time.Duration // 0 means the 60 second default
	EventBuffer     int           // capacity of the NextEvent queue
	Handler         EventHandler  // optional; may also be set later
}

// Client is a single query connection. Three tasks run per connection: a
// reader, a writer and a keep-alive loop. They communicate over channels
// only; the failure of any one of them tears down the rest.
type Client struct {
	conn      net.Conn
	id        string
	logger    *log.Logger
	keepAlive time.Duration

	cmdCh   chan *request
	respCh  chan RawResponse
	eventCh chan Event

	mu      sync.RWMutex
	handler EventHandler

	done      chan struct{}
	closeOnce sync.Once
	closeErr  error
	wg        sync.WaitGroup

	stats connStats
}

// Connect dials addr, performs the banner handshake and starts the
// connection tasks. The context bounds the dial and handshake only.
func Connect(ctx context.Context, addr string, cfg *Config) (*Client, error) {
	if cfg == nil {
		cfg = &Config{}
	}

	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, &TransportError{Op: "connect", Err: err}
	}

	return setup(ctx, conn, cfg)
}

// setup runs the handshake on an established connection and starts the
// tasks. Split from Connect so tests can drive a pipe.
func setup(ctx context.Context, conn net.Conn, cfg *Config) (*Client, error) {
	keepAlive := cfg.KeepAlivePeriod
	if keepAlive == 0 {
		keepAlive = defaultKeepAlivePeriod
	}
	eventBuffer := cfg.EventBuffer
	if eventBuffer == 0 {
		eventBuffer = defaultEventBuffer
	}

	c := &Client{
		conn:      conn,
		id:        xid.New().String(),
		logger:    cfg.Logger,
		keepAlive: keepAlive,
		cmdCh:     make(chan *request),
		respCh:    make(chan RawResponse),
		eventCh:   make(chan Event, eventBuffer),
		handler:   cfg.Handler,
		done:      make(chan struct{}),
	}

	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	reader := newFrameReader(c, conn)
	if err := reader.handshake(); err != nil {
		conn.Close()
		return nil, err
	}
	conn.SetDeadline(time.Time{})

	if c.logger != nil {
		c.logger.Printf("[INFO] %s Connected to %v", c.id, conn.RemoteAddr())
	}

	c.wg.Add(3)
	go c.runTask("reader", reader.run)
	go c.runTask("writer", newCommandWriter(c, conn).run)
	go c.runTask("keep-alive", c.keepAliveLoop)

	return c, nil
}

// runTask runs one connection task to completion and tears the connection
// down when it returns, whatever the reason.
func (c *Client) runTask(name string, fn func() error) {
	defer c.wg.Done()
	if err := fn(); err != nil {
		if c.logger != nil {
			c.logger.Printf("[ERROR] %s %s failed: %v", c.id, name, err)
		}
		c.fail(err)
		return
	}
	c.fail(ErrConnectionClosed)
}

// fail records the first error, signals shutdown and closes the socket so
// that blocked tasks unwind. Subsequent calls are no-ops.
func (c *Client) fail(err error) {
	c.closeOnce.Do(func() {
		c.closeErr = err
		close(c.done)
		c.conn.Close()
		if c.logger != nil {
			c.logger.Printf("[INFO] %s Connection closed: %v", c.id, err)
		}
	})
}

// Close tears the connection down and waits for its tasks to unwind.
// Pending sends observe ErrConnectionClosed.
func (c *Client) Close() error {
	c.fail(ErrConnectionClosed)
	c.wg.Wait()
	return nil
}

// Done returns a channel that is closed when the connection has been torn
// down.
func (c *Client) Done() <-chan struct{} {
	return c.done
}

// Err returns the error that closed the connection, or nil while it is
// still live.
func (c *Client) Err() error {
	select {
	case <-c.done:
		return c.closeErr
	default:
		return nil
	}
}

// ID returns the connection's log and metric identity.
func (c *Client) ID() string {
	return c.id
}

// exchange enqueues one command and waits for its raw response.
func (c *Client) exchange(ctx context.Context, cmd *parser.Command) (RawResponse, error) {
	req := &request{data: cmd.Bytes(), resp: make(chan RawResponse, 1)}

	select {
	case c.cmdCh <- req:
	case <-c.done:
		return RawResponse{}, ErrConnectionClosed
	case <-ctx.Done():
		return RawResponse{}, ctx.Err()
	}

	select {
	case resp := <-req.resp:
		return resp, nil
	case <-c.done:
		return RawResponse{}, ErrConnectionClosed
	case <-ctx.Done():
		return RawResponse{}, ctx.Err()
	}
}

// send performs an exchange and gates on the status line: a non-zero id
// becomes a QueryError and the body is not decoded.
func (c *Client) send(ctx context.Context, cmd *parser.Command) ([]byte, error) {
	resp, err := c.exchange(ctx, cmd)
	if err != nil {
		return nil, err
	}
	st, err := parser.ParseStatus(resp.StatusLine())
	if err != nil {
		return nil, err
	}
	if !st.OK() {
		return nil, &QueryError{ID: st.ID, Msg: st.Msg, ExtraMsg: st.ExtraMsg}
	}
	return resp.Content(), nil
}

// SendNoResponse sends a command whose reply carries no body worth keeping.
func (c *Client) SendNoResponse(ctx context.Context, cmd *parser.Command) error {
	_, err := c.send(ctx, cmd)
	return err
}

// SendDecode sends a command and decodes the body as a single record.
func (c *Client) SendDecode(ctx context.Context, cmd *parser.Command, rec parser.Record) error {
	content, err := c.send(ctx, cmd)
	if err != nil {
		return err
	}
	d := parser.NewDecoder(content)
	d.SetLogger(c.logger)
	return d.Decode(rec)
}

// SendDecodeList sends a command and decodes the body as a pipe-separated
// list, invoking each once per record. each may decode a fixed record type
// or pick apart dynamic shapes, so this covers caller-supplied decoders
// too. An empty body yields zero invocations.
func (c *Client) SendDecodeList(ctx context.Context, cmd *parser.Command, each func(d *parser.Decoder) error) error {
	content, err := c.send(ctx, cmd)
	if err != nil {
		return err
	}
	if len(content) == 0 {
		return nil
	}
	d := parser.NewDecoder(content)
	d.SetLogger(c.logger)
	return d.DecodeList(each)
}

// SendRaw sends a command and returns the raw response for bodies that are
// opaque, e.g. help text. The status line is still checked.
func (c *Client) SendRaw(ctx context.Context, cmd *parser.Command) (RawResponse, error) {
	resp, err := c.exchange(ctx, cmd)
	if err != nil {
		return RawResponse{}, err
	}
	st, err := parser.ParseStatus(resp.StatusLine())
	if err != nil {
		return RawResponse{}, err
	}
	if !st.OK() {
		return RawResponse{}, &QueryError{ID: st.ID, Msg: st.Msg, ExtraMsg: st.ExtraMsg}
	}
	return resp, nil
}

// NextEvent returns the next queued notification. Events are only queued
// while no handler is installed.
func (c *Client) NextEvent(ctx context.Context) (Event, error) {
	select {
	case ev := <-c.eventCh:
		return ev, nil
	case <-c.done:
		return nil, ErrConnectionClosed
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// SetEventHandler swaps the event handler. The swap is serialized against
// dispatch: an event is delivered to the handler observed at the moment of
// delivery, never to a torn pair.
func (c *Client) SetEventHandler(h EventHandler) {
	c.mu.Lock()
	c.handler = h
	c.mu.Unlock()
}

func (c *Client) snapshotHandler() EventHandler {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.handler
}

// dispatchEvent decodes one notify line and routes it. Decode failures go
// to the handler's error hook, which decides whether they are fatal; they
// default to not being so.
func (c *Client) dispatchEvent(line []byte) error {
	if c.logger != nil {
		c.logger.Printf("[DEBUG] %s [S->C] %s", c.id, line)
	}

	ev, err := parseEvent(line)
	if err != nil {
		c.stats.decodeErrors.Add(1)
		if h := c.snapshotHandler(); h != nil {
			if h.HandleError(err) {
				return err
			}
			return nil
		}
		if c.logger != nil {
			c.logger.Printf("[WARN] %s Unhandled event error: %v", c.id, err)
		}
		return nil
	}

	c.stats.events.Add(1)
	if h := c.snapshotHandler(); h != nil {
		h.HandleEvent(ev)
		return nil
	}

	select {
	case c.eventCh <- ev:
	default:
		c.stats.eventsDropped.Add(1)
		if c.logger != nil {
			c.logger.Printf("[WARN] %s Event queue full, dropping %s", c.id, ev.EventName())
		}
	}
	return nil
}
