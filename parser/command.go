package parser

import (
	"strconv"
	"strings"
)

// Command assembles a single outbound query line: a verb followed by
// arguments, flags and pipe-separated lists. The line terminator is not part
// of the command; it is appended once at send time by the connection.
type Command struct {
	buf strings.Builder
	// cont suppresses the leading separator for the next addition; set
	// while writing the pairs of a multi-record list entry.
	cont bool
}

// ListEncoder writes one record of a multi-record batch into a command. The
// record's pairs are space separated internally; the command inserts the
// pipes between records.
type ListEncoder interface {
	EncodeList(c *Command)
}

// NewCommand starts a command with the given verb.
func NewCommand(verb string) *Command {
	c := &Command{}
	c.buf.WriteString(verb)
	return c
}

func (c *Command) sep() {
	if c.cont {
		c.cont = false
		return
	}
	c.buf.WriteByte(' ')
}

// Action appends a bare "-name" token unconditionally.
func (c *Command) Action(name string) *Command {
	c.sep()
	c.buf.WriteByte('-')
	c.buf.WriteString(name)
	return c
}

// Flag appends "-name" when on is true and is a no-op otherwise.
func (c *Command) Flag(name string, on bool) *Command {
	if on {
		c.Action(name)
	}
	return c
}

// Arg appends "key=value" with the value escaped.
func (c *Command) Arg(key, val string) *Command {
	c.sep()
	c.buf.WriteString(key)
	c.buf.WriteByte('=')
	Escape(val, &c.buf)
	return c
}

// ArgInt appends "key=value" with a decimal value.
func (c *Command) ArgInt(key string, val int) *Command {
	c.sep()
	c.buf.WriteString(key)
	c.buf.WriteByte('=')
	c.buf.WriteString(strconv.Itoa(val))
	return c
}

// ArgBool appends "key=1" or "key=0".
func (c *Command) ArgBool(key string, val bool) *Command {
	c.sep()
	c.buf.WriteString(key)
	c.buf.WriteByte('=')
	if val {
		c.buf.WriteByte('1')
	} else {
		c.buf.WriteByte('0')
	}
	return c
}

// ArgFloat appends "key=value" with a plain decimal float value.
func (c *Command) ArgFloat(key string, val float64) *Command {
	c.sep()
	c.buf.WriteString(key)
	c.buf.WriteByte('=')
	c.buf.WriteString(strconv.FormatFloat(val, 'f', -1, 64))
	return c
}

// OptArg appends "key=value" when val is non-nil and is a no-op otherwise.
func (c *Command) OptArg(key string, val *string) *Command {
	if val != nil {
		c.Arg(key, *val)
	}
	return c
}

// OptArgInt appends "key=value" when val is non-nil and is a no-op otherwise.
func (c *Command) OptArgInt(key string, val *int) *Command {
	if val != nil {
		c.ArgInt(key, *val)
	}
	return c
}

// OptArgBool appends "key=1"/"key=0" when val is non-nil and is a no-op
// otherwise.
func (c *Command) OptArgBool(key string, val *bool) *Command {
	if val != nil {
		c.ArgBool(key, *val)
	}
	return c
}

// ArgList appends "key=v1|key=v2|..." with each value escaped. An empty
// slice is a no-op.
func (c *Command) ArgList(key string, vals []string) *Command {
	for i, v := range vals {
		if i == 0 {
			c.sep()
		} else {
			c.buf.WriteByte('|')
		}
		c.buf.WriteString(key)
		c.buf.WriteByte('=')
		Escape(v, &c.buf)
	}
	return c
}

// ArgIntList appends "key=v1|key=v2|..." with decimal values. An empty
// slice is a no-op.
func (c *Command) ArgIntList(key string, vals []int) *Command {
	for i, v := range vals {
		if i == 0 {
			c.sep()
		} else {
			c.buf.WriteByte('|')
		}
		c.buf.WriteString(key)
		c.buf.WriteByte('=')
		c.buf.WriteString(strconv.Itoa(v))
	}
	return c
}

// MultiList appends a pipe-separated batch of records, each encoded by its
// own ListEncoder. An empty slice is a no-op.
func (c *Command) MultiList(recs []ListEncoder) *Command {
	for i, r := range recs {
		if i == 0 {
			c.sep()
		} else {
			c.buf.WriteByte('|')
		}
		c.cont = true
		r.EncodeList(c)
		c.cont = false
	}
	return c
}

// Raw appends s verbatim, preceded by a separator.
func (c *Command) Raw(s string) *Command {
	c.sep()
	c.buf.WriteString(s)
	return c
}

// String returns the assembled line without a terminator.
func (c *Command) String() string {
	return c.buf.String()
}

// Bytes returns the dispatch form of the command, terminated with LF CR.
func (c *Command) Bytes() []byte {
	s := c.buf.String()
	b := make([]byte, 0, len(s)+2)
	b = append(b, s...)
	b = append(b, '\n', '\r')
	return b
}
