package main

import (
	"bufio"
	"net"
	"strings"
	"time"

	"github.com/pkg/errors"
)

// maxLineLength is the protocol's per-line cap, including CRLF (RFC 1459).
const maxLineLength = 512

// Conn is a thin wrapper around net.Conn giving line-oriented reads/writes
// with a rolling I/O deadline, grounded on the teacher's net.go Conn.
type Conn struct {
	conn   net.Conn
	rw     *bufio.ReadWriter
	ioWait time.Duration

	IP net.IP
}

// NewConn wraps conn. ioWait is applied as a fresh deadline before every
// Read/Write call.
func NewConn(conn net.Conn, ioWait time.Duration) (Conn, error) {
	host, _, err := net.SplitHostPort(conn.RemoteAddr().String())
	if err != nil {
		return Conn{}, errors.Wrap(err, "unable to parse remote address")
	}

	return Conn{
		conn:   conn,
		rw:     bufio.NewReadWriter(bufio.NewReader(conn), bufio.NewWriter(conn)),
		ioWait: ioWait,
		IP:     net.ParseIP(host),
	}, nil
}

// Close closes the underlying connection.
func (c Conn) Close() error {
	return c.conn.Close()
}

// RemoteAddr returns the remote network address.
func (c Conn) RemoteAddr() net.Addr {
	return c.conn.RemoteAddr()
}

// ReadLine reads one CRLF- or LF-terminated line, capped at maxLineLength
// bytes (the spec requires lines over that cap to be truncated rather than
// stall the reader indefinitely).
func (c Conn) ReadLine() (string, error) {
	if err := c.conn.SetReadDeadline(time.Now().Add(c.ioWait)); err != nil {
		return "", errors.Wrap(err, "unable to set read deadline")
	}

	line, err := c.rw.ReadString('\n')
	if err != nil {
		return "", err
	}

	if len(line) > maxLineLength {
		line = line[:maxLineLength]
	}

	return strings.TrimRight(line, "\r\n"), nil
}

// WriteLine writes s followed by CRLF and flushes.
func (c Conn) WriteLine(s string) error {
	if err := c.conn.SetWriteDeadline(time.Now().Add(c.ioWait)); err != nil {
		return errors.Wrap(err, "unable to set write deadline")
	}

	if _, err := c.rw.WriteString(s); err != nil {
		return err
	}
	if _, err := c.rw.WriteString("\r\n"); err != nil {
		return err
	}
	if err := c.rw.Flush(); err != nil {
		return errors.Wrap(err, "flush error")
	}

	return nil
}

// WriteMessage renders message to the wire.
func (c Conn) WriteMessage(message RawMessage) error {
	return c.WriteLine(message.String())
}
