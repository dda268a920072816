package parser

import (
	"strings"
	"unicode/utf8"
)

// Escape appends the wire form of src to dst. Every reserved byte maps to a
// two byte backslash sequence; everything else is copied through. All
// escaped bytes are ASCII, so operating on bytes is safe for UTF-8 input.
func Escape(src string, dst *strings.Builder) {
	for i := 0; i < len(src); i++ {
		switch c := src[i]; c {
		case '\\':
			dst.WriteString(`\\`)
		case '/':
			dst.WriteString(`\/`)
		case ' ':
			dst.WriteString(`\s`)
		case '|':
			dst.WriteString(`\p`)
		case '\a':
			dst.WriteString(`\a`)
		case '\b':
			dst.WriteString(`\b`)
		case '\f':
			dst.WriteString(`\f`)
		case '\n':
			dst.WriteString(`\n`)
		case '\r':
			dst.WriteString(`\r`)
		case '\t':
			dst.WriteString(`\t`)
		case '\v':
			dst.WriteString(`\v`)
		default:
			dst.WriteByte(c)
		}
	}
}

// EscapeString is a convenience wrapper around Escape.
func EscapeString(src string) string {
	var dst strings.Builder
	dst.Grow(len(src))
	Escape(src, &dst)
	return dst.String()
}

// Unescape reverses Escape. A backslash followed by a letter outside the
// escape alphabet is passed through literally; a trailing backslash is an
// error. The input must be valid UTF-8.
func Unescape(src []byte) (string, error) {
	if !utf8.Valid(src) {
		return "", &InvalidUTF8Error{Src: string(src)}
	}

	var dst strings.Builder
	dst.Grow(len(src))

	esc := false
	for i := 0; i < len(src); i++ {
		c := src[i]
		if esc {
			switch c {
			case '\\':
				dst.WriteByte('\\')
			case '/':
				dst.WriteByte('/')
			case 's':
				dst.WriteByte(' ')
			case 'p':
				dst.WriteByte('|')
			case 'a':
				dst.WriteByte('\a')
			case 'b':
				dst.WriteByte('\b')
			case 'f':
				dst.WriteByte('\f')
			case 'n':
				dst.WriteByte('\n')
			case 'r':
				dst.WriteByte('\r')
			case 't':
				dst.WriteByte('\t')
			case 'v':
				dst.WriteByte('\v')
			default:
				dst.WriteByte('\\')
				dst.WriteByte(c)
			}
			esc = false
		} else if c == '\\' {
			esc = true
		} else {
			dst.WriteByte(c)
		}
	}

	if esc {
		return "", &MalformedEscapeError{Src: string(src)}
	}
	return dst.String(), nil
}
