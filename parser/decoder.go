package parser

import (
	"errors"
	"log"
	"strconv"
	"strings"
)

// Separator classifies the byte that terminated the most recently consumed
// token.
type Separator int

const (
	SepPair Separator = iota // space: another pair of the same record follows
	SepList                  // pipe: the next pair starts a new record
	SepEOF                   // carriage return or end of input
)

// pair is one "key" or "key=value" token. A flag-style token has hasValue
// unset and an empty value.
type pair struct {
	key      string
	value    string
	hasValue bool
}

// scope stashes pairs that were consumed while searching for some other key,
// so that later lookups can resolve them regardless of wire order.
type scope struct {
	pending []pair
}

// Record decodes itself from a decoder. An inline sub-record decodes with
// the caller's decoder directly and therefore shares its scope.
type Record interface {
	Decode(d *Decoder) error
}

// Decoder is a cursor over one response or notification body. Key lookup is
// order independent within a record: pairs skipped while searching are
// stashed in the current scope and served from there first. A list
// separator bounds the lookup; once seen, further keys of the current
// record resolve to absent.
type Decoder struct {
	buf     []byte
	pos     int
	lastSep Separator
	scopes  []*scope
	logger  *log.Logger
}

// errExhausted reports that the token stream ran out while searching.
var errExhausted = errors.New("no more pairs")

// NewDecoder returns a decoder over buf with a single root scope.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{
		buf:    buf,
		scopes: []*scope{{}},
	}
}

// SetLogger installs a logger used for diagnostics about discarded pairs.
func (d *Decoder) SetLogger(logger *log.Logger) {
	d.logger = logger
}

// LastSep returns the separator that terminated the most recently consumed
// token.
func (d *Decoder) LastSep() Separator {
	return d.lastSep
}

func (d *Decoder) scope() *scope {
	return d.scopes[len(d.scopes)-1]
}

// PushScope starts a fresh lookahead stash, e.g. for a record list.
func (d *Decoder) PushScope() {
	d.scopes = append(d.scopes, &scope{})
}

// PopScope discards the current stash. Leftover pairs are dropped; they are
// keys the caller never asked for.
func (d *Decoder) PopScope() {
	if len(d.scopes) == 1 {
		return
	}
	d.discardPending()
	d.scopes = d.scopes[:len(d.scopes)-1]
}

func (d *Decoder) discardPending() {
	sc := d.scope()
	if d.logger != nil {
		for _, p := range sc.pending {
			d.logger.Printf("[DEBUG] Discarding unread pair %s=%q", p.key, p.value)
		}
	}
	sc.pending = sc.pending[:0]
}

// nextPair consumes one key[=value] token and the separator after it.
func (d *Decoder) nextPair() (pair, error) {
	if d.pos >= len(d.buf) {
		d.lastSep = SepEOF
		return pair{}, errExhausted
	}

	start := d.pos
	for d.pos < len(d.buf) && !isPairDelim(d.buf[d.pos]) && d.buf[d.pos] != '=' {
		d.pos++
	}

	p := pair{key: string(d.buf[start:d.pos])}

	if d.pos < len(d.buf) && d.buf[d.pos] == '=' {
		d.pos++
		vstart := d.pos
		for d.pos < len(d.buf) && !isPairDelim(d.buf[d.pos]) {
			d.pos++
		}
		val, err := Unescape(d.buf[vstart:d.pos])
		if err != nil {
			return pair{}, err
		}
		p.value = val
		p.hasValue = true
	}

	if d.pos >= len(d.buf) {
		d.lastSep = SepEOF
		return p, nil
	}
	switch d.buf[d.pos] {
	case ' ':
		d.lastSep = SepPair
	case '|':
		d.lastSep = SepList
	default: // CR or LF
		d.lastSep = SepEOF
	}
	d.pos++
	return p, nil
}

func isPairDelim(c byte) bool {
	return c == ' ' || c == '|' || c == '\r' || c == '\n'
}

// DecodeName consumes one key-only token, e.g. the verb of a status line or
// the name of a notification.
func (d *Decoder) DecodeName() (string, error) {
	p, err := d.nextPair()
	if err != nil {
		return "", &MissingKeyError{Key: "name"}
	}
	if p.hasValue {
		return "", &UnexpectedTokenError{Token: p.key + "=" + p.value, Want: "name"}
	}
	return p.key, nil
}

// Advance resolves key within the current record. It searches the scope's
// stash first, then consumes further pairs from the input, stashing the
// ones that do not match. found is false when a list boundary was reached
// first; errExhausted is reported when the whole input ran out.
func (d *Decoder) Advance(key string) (val string, found bool, err error) {
	sc := d.scope()
	for i, p := range sc.pending {
		if p.key == key {
			sc.pending = append(sc.pending[:i], sc.pending[i+1:]...)
			return p.value, true, nil
		}
	}

	for {
		if d.lastSep == SepList {
			return "", false, nil
		}
		p, err := d.nextPair()
		if err != nil {
			return "", false, err
		}
		if p.key == key {
			return p.value, true, nil
		}
		sc.pending = append(sc.pending, p)
	}
}

// value resolves key or fails: a list boundary yields MissingValueError,
// exhausted input yields MissingKeyError.
func (d *Decoder) value(key string) (string, error) {
	v, found, err := d.Advance(key)
	if err != nil {
		if errors.Is(err, errExhausted) {
			return "", &MissingKeyError{Key: key}
		}
		return "", err
	}
	if !found {
		return "", &MissingValueError{Key: key}
	}
	return v, nil
}

// optValue resolves key, mapping both absence conditions to nil.
func (d *Decoder) optValue(key string) (*string, error) {
	v, found, err := d.Advance(key)
	if err != nil {
		if errors.Is(err, errExhausted) {
			return nil, nil
		}
		return nil, err
	}
	if !found {
		return nil, nil
	}
	return &v, nil
}

// String resolves a required string field.
func (d *Decoder) String(key string) (string, error) {
	return d.value(key)
}

// OptString resolves an optional string field; nil when absent.
func (d *Decoder) OptString(key string) (*string, error) {
	return d.optValue(key)
}

// StringDefault resolves a string field, substituting def when absent.
func (d *Decoder) StringDefault(key, def string) (string, error) {
	v, err := d.optValue(key)
	if err != nil {
		return "", err
	}
	if v == nil {
		return def, nil
	}
	return *v, nil
}

// Int resolves a required integer field.
func (d *Decoder) Int(key string) (int, error) {
	v, err := d.value(key)
	if err != nil {
		return 0, err
	}
	return parseInt(key, v)
}

// OptInt resolves an optional integer field; nil when absent.
func (d *Decoder) OptInt(key string) (*int, error) {
	v, err := d.optValue(key)
	if err != nil || v == nil {
		return nil, err
	}
	n, err := parseInt(key, *v)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// IntDefault resolves an integer field, substituting def when absent.
func (d *Decoder) IntDefault(key string, def int) (int, error) {
	v, err := d.OptInt(key)
	if err != nil {
		return 0, err
	}
	if v == nil {
		return def, nil
	}
	return *v, nil
}

// Bool resolves a required boolean field; only "1" and "0" are accepted.
func (d *Decoder) Bool(key string) (bool, error) {
	v, err := d.value(key)
	if err != nil {
		return false, err
	}
	return parseBool(key, v)
}

// OptBool resolves an optional boolean field; nil when absent.
func (d *Decoder) OptBool(key string) (*bool, error) {
	v, err := d.optValue(key)
	if err != nil || v == nil {
		return nil, err
	}
	b, err := parseBool(key, *v)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// BoolDefault resolves a boolean field, substituting def when absent.
func (d *Decoder) BoolDefault(key string, def bool) (bool, error) {
	v, err := d.OptBool(key)
	if err != nil {
		return false, err
	}
	if v == nil {
		return def, nil
	}
	return *v, nil
}

// Float resolves a required float field.
func (d *Decoder) Float(key string) (float64, error) {
	v, err := d.value(key)
	if err != nil {
		return 0, err
	}
	f, perr := strconv.ParseFloat(v, 64)
	if perr != nil {
		return 0, &InvalidValueError{Key: key, Value: v, Want: "float", Err: perr}
	}
	return f, nil
}

// StringList resolves a comma-separated list held in a single value.
// Absent keys and empty values decode to an empty list.
func (d *Decoder) StringList(key string) ([]string, error) {
	v, err := d.optValue(key)
	if err != nil || v == nil || *v == "" {
		return nil, err
	}
	return strings.Split(*v, ","), nil
}

// IntList resolves a comma-separated integer list held in a single value.
// Absent keys and empty values decode to an empty list.
func (d *Decoder) IntList(key string) ([]int, error) {
	v, err := d.optValue(key)
	if err != nil || v == nil || *v == "" {
		return nil, err
	}
	parts := strings.Split(*v, ",")
	out := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := parseInt(key, p)
		if err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, nil
}

// Composite resolves key and hands the whole value to a caller-supplied
// decoder, e.g. for colon-separated descriptor values. Absent keys are
// skipped without invoking fn.
func (d *Decoder) Composite(key string, fn func(value string) error) error {
	v, err := d.optValue(key)
	if err != nil || v == nil {
		return err
	}
	return fn(*v)
}

// Decode decodes rec inline, sharing the current scope.
func (d *Decoder) Decode(rec Record) error {
	return rec.Decode(d)
}

// DecodeList decodes a pipe-separated sequence of records under a fresh
// scope, invoking fn once per record. Pairs a record never asked for are
// discarded at the record boundary.
func (d *Decoder) DecodeList(fn func(d *Decoder) error) error {
	d.PushScope()
	defer d.PopScope()

	for {
		if err := fn(d); err != nil {
			return err
		}
		// drive the cursor to the record boundary
		for d.lastSep == SepPair {
			if _, err := d.nextPair(); err != nil {
				if errors.Is(err, errExhausted) {
					break
				}
				return err
			}
		}
		if d.lastSep != SepList {
			return nil
		}
		d.discardPending()
		d.lastSep = SepPair
	}
}

func parseInt(key, v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, &InvalidValueError{Key: key, Value: v, Want: "integer", Err: err}
	}
	return n, nil
}

func parseBool(key, v string) (bool, error) {
	switch v {
	case "1":
		return true, nil
	case "0":
		return false, nil
	}
	return false, &InvalidValueError{Key: key, Value: v, Want: "boolean"}
}
