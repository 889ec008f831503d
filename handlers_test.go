package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer() *Server {
	return NewServer(Config{
		ServerName:    "irc.test",
		Version:       "1.0",
		CreatedDate:   "today",
		MaxNickLength: defaultMaxNickLength,
		MOTD:          "welcome",
		Opers:         map[string]string{"root": "hunter2"},
	})
}

func newTestClient(s *Server, id PeerId) *Client {
	info := NewUserInfo(id, s.Config.ServerName, "host.example")
	queue := make(chan RawMessage, 16)
	return &Client{
		server:    s,
		id:        id,
		info:      info,
		peer:      NewPeer(info, queue),
		sendQueue: queue,
		limiter:   newClientLimiter(),
	}
}

func drainQueue(c *Client) {
	for {
		select {
		case <-c.sendQueue:
		default:
			return
		}
	}
}

func registerClient(t *testing.T, s *Server, c *Client, nick string) {
	t.Helper()
	s.addClient(c)
	s.handleNick(c, []string{nick})
	s.handleUser(c, []string{nick, "0", "*", "Real Name"})
	require.Equal(t, statusRegistered, c.info.Status())
	drainQueue(c)
}

// waitForChannelActor blocks until a named channel's actor has processed
// every event sent to it so far, by sending a no-op event behind them and
// waiting for it to run. Actors process their mailbox strictly in order, so
// this is a deterministic barrier rather than a sleep.
func waitForChannelActor(s *Server, name string) {
	proxy, ok := s.channels[canonicalizeChannel(name)]
	if !ok {
		return
	}
	done := make(chan struct{})
	proxy.Send(Handle(func(ch *Channel) { close(done) }))
	<-done
}

func TestNickThenUserCompletesRegistration(t *testing.T) {
	s := newTestServer()
	c := newTestClient(s, newPeerId(1))
	s.addClient(c)

	s.handleNick(c, []string{"alice"})
	assert.Equal(t, "alice", c.info.Nick())
	assert.NotEqual(t, statusRegistered, c.info.Status())

	s.handleUser(c, []string{"alice", "0", "*", "Alice Example"})
	assert.Equal(t, statusRegistered, c.info.Status())

	reply := <-c.sendQueue
	assert.Equal(t, ReplyWelcome, reply.Command())
}

func TestNickCollisionRejected(t *testing.T) {
	s := newTestServer()
	a := newTestClient(s, newPeerId(1))
	b := newTestClient(s, newPeerId(2))
	s.addClient(a)
	s.addClient(b)

	s.handleNick(a, []string{"alice"})
	drainQueue(a)
	s.handleNick(b, []string{"alice"})

	reply := <-b.sendQueue
	assert.Equal(t, ErrNicknameInUse, reply.Command())
}

func TestNickTooLongRejected(t *testing.T) {
	s := newTestServer()
	c := newTestClient(s, newPeerId(1))
	s.addClient(c)

	s.handleNick(c, []string{"wayyytoolongnick"})

	reply := <-c.sendQueue
	assert.Equal(t, ErrErroneusNickname, reply.Command())
}

func TestJoinAndPrivmsgBroadcast(t *testing.T) {
	s := newTestServer()
	a := newTestClient(s, newPeerId(1))
	b := newTestClient(s, newPeerId(2))
	registerClient(t, s, a, "alice")
	registerClient(t, s, b, "bob")

	s.handleJoin(a, []string{"#dev"})
	s.handleJoin(b, []string{"#dev"})
	waitForChannelActor(s, "#dev")
	drainQueue(a)
	drainQueue(b)

	s.handlePrivmsgOrNotice(a, []string{"#dev", "hello"}, false)
	waitForChannelActor(s, "#dev")

	msg := <-b.sendQueue
	assert.Equal(t, cmdPrivmsg, msg.Command())
	assert.Equal(t, []string{"#dev", "hello"}, msg.Params())
}

func TestPartRemovesMembershipAndClosesEmptyChannel(t *testing.T) {
	s := newTestServer()
	a := newTestClient(s, newPeerId(1))
	registerClient(t, s, a, "alice")

	s.handleJoin(a, []string{"#dev"})
	waitForChannelActor(s, "#dev")
	drainQueue(a)

	s.handlePart(a, []string{"#dev", "bye"})

	// The actor reports itself lost asynchronously once it processes the
	// PART event and finds itself empty; block until that arrives rather
	// than racing it with a non-blocking receive.
	lost := <-s.chanLost
	assert.Equal(t, "#dev", lost.name)

	assert.False(t, a.peer.channels.has("#dev"))
}

func TestPartWhenNotOnChannel(t *testing.T) {
	s := newTestServer()
	a := newTestClient(s, newPeerId(1))
	registerClient(t, s, a, "alice")

	s.handlePart(a, []string{"#dev"})

	reply := <-a.sendQueue
	assert.Equal(t, ErrNotOnChannel, reply.Command())
}

func TestModeRequiresChannelOperator(t *testing.T) {
	s := newTestServer()
	a := newTestClient(s, newPeerId(1))
	b := newTestClient(s, newPeerId(2))
	registerClient(t, s, a, "alice")
	registerClient(t, s, b, "bob")

	s.handleJoin(a, []string{"#dev"})
	s.handleJoin(b, []string{"#dev"})
	waitForChannelActor(s, "#dev")
	drainQueue(a)
	drainQueue(b)

	// bob is not a channel operator (alice, the founder, is), so bob's MODE
	// attempt should be refused.
	s.handleMode(b, []string{"#dev", "+m"})
	waitForChannelActor(s, "#dev")

	reply := <-b.sendQueue
	assert.Equal(t, ErrChanOPrivsNeeded, reply.Command())
}

func TestOperWithCorrectPassword(t *testing.T) {
	s := newTestServer()
	c := newTestClient(s, newPeerId(1))
	registerClient(t, s, c, "alice")

	s.handleOper(c, []string{"root", "hunter2"})

	reply := <-c.sendQueue
	assert.Equal(t, ReplyYoureOper, reply.Command())
	assert.True(t, c.info.IsOperator())
}

func TestOperWithWrongPassword(t *testing.T) {
	s := newTestServer()
	c := newTestClient(s, newPeerId(1))
	registerClient(t, s, c, "alice")

	s.handleOper(c, []string{"root", "wrong"})

	reply := <-c.sendQueue
	assert.Equal(t, ErrPasswdMismatch, reply.Command())
	assert.False(t, c.info.IsOperator())
}

func TestBoolToSign(t *testing.T) {
	assert.Equal(t, byte('+'), boolToSign(true))
	assert.Equal(t, byte('-'), boolToSign(false))
}
