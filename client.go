package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"time"

	"golang.org/x/time/rate"
)

// eventConnected and eventMessageReceived are the event kinds a connection
// actor emits onto the server's event channel (a dead connection is reported
// as a MessageReceived carrying disconnectSentinel); eventChannelLost carries
// a lost channel's name. They are modelled as a single ServerEvent struct with a kind tag
// rather than an interface, matching the teacher's own Event{Type: ...}
// convention in its event-bus draft.
type serverEventKind int

const (
	eventConnected serverEventKind = iota
	eventMessageReceived
	eventChannelLost
)

// ServerEvent is one message on the server dispatcher's inbound channel.
type ServerEvent struct {
	kind serverEventKind

	client *Client     // eventConnected
	peerId PeerId      // eventMessageReceived
	raw    RawMessage  // eventMessageReceived
	lost   channelLost // eventChannelLost
}

// Client is the connection actor: it owns one TCP socket and runs a reader
// and a writer goroutine sharing one outbound queue. Everything it does
// before registration completes is tracked here; its Peer and UserInfo exist
// from the moment it is accepted, and once NICK+USER succeed the UserInfo is
// marked registered. The Client struct (and its queue) lives for the whole
// connection.
type Client struct {
	conn   Conn
	server *Server

	id   PeerId
	info *UserInfo
	peer Peer

	sendQueue chan RawMessage
	limiter   *rate.Limiter

	// lastActivity is read and written only by the dispatcher goroutine
	// (the event that updates it and the ticker that reads it both run
	// inside Server.run's select loop), so it needs no lock.
	lastActivity time.Time
}

// maxQueueDepth bounds the outbound queue so one frozen client cannot grow
// memory without limit; once full, further sends are dropped rather than
// blocking the sender (see maybeQueueMessage).
const maxQueueDepth = 256

// newClientLimiter allows a sustained 10 messages/sec with bursts up to 20,
// a generous flood-control ceiling grounded on the rate limits senpai/soju
// apply to their own outbound traffic (see SPEC_FULL.md §11).
func newClientLimiter() *rate.Limiter {
	return rate.NewLimiter(10, 20)
}

// NewClient accepts conn and mints a PeerId and pre-registration UserInfo
// for it, but does not yet start its goroutines; call Listen for that.
func NewClient(server *Server, conn Conn, hostname string) *Client {
	id := newPeerId(hostIPBits(conn.IP))
	info := NewUserInfo(id, server.Config.ServerName, hostname)
	queue := make(chan RawMessage, maxQueueDepth)

	return &Client{
		conn:         conn,
		server:       server,
		id:           id,
		info:         info,
		peer:         NewPeer(info, queue),
		sendQueue:    queue,
		limiter:      newClientLimiter(),
		lastActivity: time.Now(),
	}
}

func hostIPBits(ip net.IP) uint64 {
	ip4 := ip.To4()
	if ip4 == nil {
		// IPv6: fold the high 8 bytes down, matching the original's approach
		// of packing whatever address bits are available into the PeerId.
		var hi uint64
		for i := 0; i < 8 && i < len(ip); i++ {
			hi = hi<<8 | uint64(ip[i])
		}
		return hi
	}
	return uint64(ip4[0])<<24 | uint64(ip4[1])<<16 | uint64(ip4[2])<<8 | uint64(ip4[3])
}

func (c *Client) String() string {
	return fmt.Sprintf("%s %s", c.id, c.conn.RemoteAddr())
}

// Listen spawns the reader and writer goroutines and reports the new
// connection to the server. The Connected event is sent before either
// goroutine starts, so the server's directories always contain the client
// before any MessageReceived event referencing it can arrive.
func (c *Client) Listen() {
	c.server.events <- ServerEvent{kind: eventConnected, client: c}

	go c.readLoop()
	go c.writeLoop()
}

// readLoop parses incoming lines and forwards them to the server as
// MessageReceived events, or replies directly (with the server's hostname
// as prefix) when a line fails to parse.
func (c *Client) readLoop() {
	for {
		line, err := c.conn.ReadLine()
		if err != nil {
			break
		}
		if line == "" {
			continue
		}

		if err := c.limiter.Wait(context.Background()); err != nil {
			break
		}

		raw, err := ParseRawMessage([]byte(line))
		if err != nil {
			errMsg := NewRawMessage(ErrUnknownCommand, []string{"*", "Malformed message"}, c.server.Config.ServerName)
			maybeQueueMessage(c.sendQueue, errMsg)
			continue
		}

		c.server.events <- ServerEvent{kind: eventMessageReceived, peerId: c.id, raw: raw}
	}

	c.server.events <- ServerEvent{kind: eventMessageReceived, peerId: c.id, raw: disconnectSentinel}
}

// disconnectSentinel is a synthetic RawMessage the reader sends when its
// connection dies, so the dispatcher can run QUIT fanout + directory
// cleanup from its own goroutine instead of the reader's.
var disconnectSentinel = NewRawMessage("*DISCONNECT*", nil, "")

func isDisconnectSentinel(m RawMessage) bool {
	return m.Command() == "*DISCONNECT*"
}

// writeLoop drains the outbound queue, appends CRLF, and flushes. A write
// error closes the socket; the reader then observes EOF and exits on its
// own.
func (c *Client) writeLoop() {
	for message := range c.sendQueue {
		if err := c.conn.WriteMessage(message); err != nil {
			log.Printf("client %s: write error: %s", c, err)
			break
		}
	}
	_ = c.conn.Close()
}

// Close tears the connection down, which unblocks both the reader (EOF) and
// the writer (the queue is not closed here, but the socket close causes the
// next write to error and the writer to exit).
func (c *Client) Close() {
	_ = c.conn.Close()
}

// maybeQueueMessage is the connection's non-blocking send: if the queue is
// full the message is dropped rather than stalling the sender (which could
// be a channel actor or the dispatcher itself). This is the mechanism that
// keeps one slow client from ever blocking anyone else.
func maybeQueueMessage(queue chan<- RawMessage, message RawMessage) {
	select {
	case queue <- message:
	default:
		log.Printf("dropping message to a saturated client queue")
	}
}
