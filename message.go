package main

import "bytes"

// aslice addresses a byte range inside a RawMessage's backing buffer. Keeping
// offsets instead of copied strings lets setPrefix rewrite the buffer once
// and shift every stored range instead of re-allocating each field.
type aslice struct {
	start, end int
}

func (s aslice) of(buf []byte) []byte {
	return buf[s.start:s.end]
}

// RawMessage is the wire representation of a single IRC protocol line: an
// immutable byte buffer plus offset slices into it for the prefix, command,
// and parameters. The buffer never contains the trailing CRLF.
type RawMessage struct {
	buf     []byte
	prefix  *aslice
	command aslice
	params  []aslice
}

// errParse is returned by ParseRawMessage when a line has no command token.
type errParse string

func (e errParse) Error() string { return string(e) }

// NewRawMessage builds a RawMessage from a command, its parameters, and an
// optional prefix. The last parameter is always rendered using the " :"
// trailing form, sidestepping re-split ambiguity for params that contain
// spaces or are empty.
func NewRawMessage(command string, params []string, prefix string) RawMessage {
	buf := make([]byte, 0, 32)

	var pfx *aslice
	if prefix != "" {
		buf = append(buf, ':')
		start := len(buf)
		buf = append(buf, prefix...)
		pfx = &aslice{start: start, end: len(buf)}
		buf = append(buf, ' ')
	}

	cmdStart := len(buf)
	buf = append(buf, command...)
	cmd := aslice{start: cmdStart, end: len(buf)}

	ps := make([]aslice, 0, len(params))
	for i, p := range params {
		buf = append(buf, ' ')
		if i == len(params)-1 {
			buf = append(buf, ':')
		}
		start := len(buf)
		buf = append(buf, p...)
		ps = append(ps, aslice{start: start, end: len(buf)})
	}

	return RawMessage{buf: buf, prefix: pfx, command: cmd, params: ps}
}

// position finds the first occurrence of needle in this, mirroring the
// substring search the original implementation wrote by hand (the standard
// library's bytes.Index does the same job; kept as a thin wrapper so the
// parse logic below reads the same as the reference it's grounded on).
func position(this, needle []byte) int {
	return bytes.Index(this, needle)
}

// ParseRawMessage parses one line (without CRLF) per RFC 1459 section 2.3.1:
//
//	message = [ ":" prefix SPACE ] command *( SPACE param ) [ SPACE ":" trailing ]
//
// The first " :" found in the remainder after the prefix introduces the
// trailing parameter, which may contain spaces. Everything before it is
// split on single spaces into the command and middle parameters.
func ParseRawMessage(line []byte) (RawMessage, error) {
	buf := make([]byte, len(line))
	copy(buf, line)

	rest := buf
	var pfx *aslice
	if len(rest) > 0 && rest[0] == ':' {
		sp := bytes.IndexByte(rest, ' ')
		if sp == -1 {
			return RawMessage{}, errParse("RawMessage does not contain a command")
		}
		pfx = &aslice{start: 1, end: sp}
		rest = rest[sp+1:]
	}

	cmdStart := 0
	if pfx != nil {
		cmdStart = pfx.end + 1
	}

	middle := rest
	var trailing *aslice
	if idx := position(rest, []byte(" :")); idx != -1 {
		middle = rest[:idx]
		trailing = &aslice{start: cmdStart + idx + 2, end: len(buf)}
	}

	fields := bytes.Split(middle, []byte{' '})
	if len(fields) == 0 || len(fields[0]) == 0 {
		return RawMessage{}, errParse("RawMessage does not contain a command")
	}
	command := aslice{start: cmdStart, end: cmdStart + len(fields[0])}

	start := command.end + 1
	params := make([]aslice, 0, len(fields)-1+1)
	for _, f := range fields[1:] {
		p := aslice{start: start, end: start + len(f)}
		start = p.end + 1
		params = append(params, p)
	}
	if trailing != nil {
		params = append(params, *trailing)
	}

	return RawMessage{buf: buf, prefix: pfx, command: command, params: params}, nil
}

// Prefix returns the message prefix, or "" if it has none.
func (m RawMessage) Prefix() string {
	if m.prefix == nil {
		return ""
	}
	return string(m.prefix.of(m.buf))
}

// HasPrefix reports whether the message carries a prefix at all, which
// distinguishes an absent prefix from one that happens to be empty.
func (m RawMessage) HasPrefix() bool {
	return m.prefix != nil
}

// Command returns the message's command token or three-digit numeric.
func (m RawMessage) Command() string {
	return string(m.command.of(m.buf))
}

// Params returns the message's parameters in order.
func (m RawMessage) Params() []string {
	out := make([]string, len(m.params))
	for i, p := range m.params {
		out[i] = string(p.of(m.buf))
	}
	return out
}

// Bytes returns the raw wire bytes (without CRLF) backing this message. The
// caller must not mutate the returned slice.
func (m RawMessage) Bytes() []byte {
	return m.buf
}

// String renders the message for logging/debugging.
func (m RawMessage) String() string {
	return string(m.buf)
}

// SetPrefix rewrites the backing buffer so the message carries newPrefix,
// preserving every other field's content by shifting their stored offsets by
// the same amount the buffer grew or shrank. Calling it twice in a row
// yields the same buffer as calling it once with the final value.
func (m *RawMessage) SetPrefix(newPrefix string) {
	var rebuilt []byte
	var offset int

	if m.prefix != nil {
		head := make([]byte, 0, len(newPrefix)+1)
		head = append(head, ':')
		head = append(head, newPrefix...)
		tail := m.buf[m.prefix.end:]
		rebuilt = make([]byte, 0, len(head)+len(tail))
		rebuilt = append(rebuilt, head...)
		rebuilt = append(rebuilt, tail...)
		offset = len(head) - m.prefix.end
		m.prefix.end = len(head)
	} else {
		head := make([]byte, 0, len(newPrefix)+2)
		head = append(head, ':')
		head = append(head, newPrefix...)
		head = append(head, ' ')
		rebuilt = make([]byte, 0, len(head)+len(m.buf))
		rebuilt = append(rebuilt, head...)
		rebuilt = append(rebuilt, m.buf...)
		offset = len(head)
		m.prefix = &aslice{start: 1, end: len(head) - 1}
	}

	m.buf = rebuilt
	m.command.start += offset
	m.command.end += offset
	for i := range m.params {
		m.params[i].start += offset
		m.params[i].end += offset
	}
}

// Clone returns a copy of m. The backing buffer is copied defensively;
// RawMessage callers treat the result of Bytes()/Command()/Params() as
// read-only, so in a hotter path this could share the buffer instead, but a
// defensive copy keeps the invariant trivially true without auditing every
// caller.
func (m RawMessage) Clone() RawMessage {
	buf := make([]byte, len(m.buf))
	copy(buf, m.buf)
	var pfx *aslice
	if m.prefix != nil {
		p := *m.prefix
		pfx = &p
	}
	params := make([]aslice, len(m.params))
	copy(params, m.params)
	return RawMessage{buf: buf, prefix: pfx, command: m.command, params: params}
}
