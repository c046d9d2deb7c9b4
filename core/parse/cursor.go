package parse

import "strings"

// cursor is a small byte-offset scanner over one statement's text. Every
// token insign's geometry/metadata grammar cares about outside of JSON
// values and expression sub-strings is ASCII, so a byte cursor is
// sufficient; JSON string values are handed off to encoding/json, which
// is itself UTF-8 safe regardless of where in the byte stream it starts.
type cursor struct {
	s   string
	pos int
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

func (c *cursor) skipWS() {
	for c.pos < len(c.s) && isSpace(c.s[c.pos]) {
		c.pos++
	}
}

func (c *cursor) eof() bool { return c.pos >= len(c.s) }

func (c *cursor) peek() byte {
	if c.eof() {
		return 0
	}
	return c.s[c.pos]
}

// consumeByte skips leading whitespace, then consumes b if present.
func (c *cursor) consumeByte(b byte) bool {
	c.skipWS()
	if c.peek() == b {
		c.pos++
		return true
	}
	return false
}

// consumeStr skips leading whitespace, then consumes the literal prefix s.
func (c *cursor) consumeStr(s string) bool {
	c.skipWS()
	if strings.HasPrefix(c.s[c.pos:], s) {
		c.pos += len(s)
		return true
	}
	return false
}

// identChar reports whether b is part of the RegionId charset, optionally
// extended with '$' and '*' for metadata target tokens.
func identChar(b byte, extra string) bool {
	if b >= 'A' && b <= 'Z' || b >= 'a' && b <= 'z' || b >= '0' && b <= '9' || b == '_' || b == '.' {
		return true
	}
	return strings.IndexByte(extra, b) >= 0
}

// parseToken skips leading whitespace and consumes a run of identChar
// bytes (with the given extra-allowed characters), returning it and
// whether anything was consumed.
func (c *cursor) parseToken(extra string) (string, bool) {
	c.skipWS()
	start := c.pos
	for c.pos < len(c.s) && identChar(c.s[c.pos], extra) {
		c.pos++
	}
	if c.pos == start {
		return "", false
	}
	return c.s[start:c.pos], true
}

// parseInt32 parses an optionally-signed decimal integer, skipping
// leading whitespace.
func (c *cursor) parseInt32() (int32, bool) {
	c.skipWS()
	start := c.pos
	if c.pos < len(c.s) && c.s[c.pos] == '-' {
		c.pos++
	}
	digitsStart := c.pos
	for c.pos < len(c.s) && c.s[c.pos] >= '0' && c.s[c.pos] <= '9' {
		c.pos++
	}
	if c.pos == digitsStart {
		c.pos = start
		return 0, false
	}
	var v int64
	neg := c.s[start] == '-'
	digits := c.s[digitsStart:c.pos]
	for i := 0; i < len(digits); i++ {
		v = v*10 + int64(digits[i]-'0')
		if v > 1<<32 {
			break // clamp scanning; range check happens below
		}
	}
	if neg {
		v = -v
	}
	if v < int64(minInt32) || v > int64(maxInt32) {
		return 0, false
	}
	return int32(v), true
}

const (
	minInt32 = -2147483648
	maxInt32 = 2147483647
)

// rest returns the unconsumed remainder of the statement, without
// trimming (callers trim as needed).
func (c *cursor) rest() string {
	return c.s[c.pos:]
}
