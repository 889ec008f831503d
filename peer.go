package main

import (
	"fmt"
	"sync"

	"github.com/google/uuid"
)

// PeerId is a process-unique, opaque identifier minted at connection
// acceptance. It never changes for the connection's lifetime and is never
// reused, and it is the primary key for the server's user and member
// directories.
type PeerId struct {
	addrHi uint64
	rand   uint64
}

// newPeerId mints a PeerId from the connection's remote address bits
// plus a process-wide unique random component. The random half comes from
// google/uuid's generator rather than a bare math/rand call so collisions
// are vanishingly unlikely even across restarts on the same host.
func newPeerId(addrHi uint64) PeerId {
	id := uuid.New()
	hi := uint64(0)
	for i := 0; i < 8; i++ {
		hi = hi<<8 | uint64(id[i])
	}
	return PeerId{addrHi: addrHi, rand: hi}
}

func (p PeerId) String() string {
	return fmt.Sprintf("%016x%016x", p.addrHi, p.rand)
}

// registrationStatus tracks a connection's progress through the NICK/USER
// handshake.
type registrationStatus int

const (
	statusConnected registrationStatus = iota
	statusGotNick
	statusGotUser
	statusRegistered
)

// UserInfo is the shared, read-mostly record describing one user. It is
// guarded by a single-writer/multi-reader lock because multiple channel
// actors may read a nick/mask snapshot concurrently while only the server
// dispatcher goroutine (which runs every command handler) writes to it.
type UserInfo struct {
	mu sync.RWMutex

	id         PeerId
	nick       string
	username   string
	realname   string
	hostname   string
	serverName string
	status     registrationStatus
	operator   bool
}

// NewUserInfo creates the pre-registration UserInfo for a freshly accepted
// connection. Its nick starts as "*", matching the spec's pre-registration
// reply envelope convention.
func NewUserInfo(id PeerId, serverName, hostname string) *UserInfo {
	return &UserInfo{
		id:         id,
		nick:       "*",
		hostname:   hostname,
		serverName: serverName,
		status:     statusConnected,
	}
}

func (u *UserInfo) Nick() string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.nick
}

func (u *UserInfo) setNick(n string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.nick = n
	if u.status == statusConnected {
		u.status = statusGotNick
	}
}

func (u *UserInfo) Username() string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.username
}

func (u *UserInfo) RealName() string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.realname
}

func (u *UserInfo) Hostname() string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.hostname
}

func (u *UserInfo) setUser(username, realname string) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.username = username
	u.realname = realname
	if u.status == statusConnected || u.status == statusGotNick {
		u.status = statusGotUser
	}
}

func (u *UserInfo) Status() registrationStatus {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.status
}

// readyToRegister reports whether both halves of the NICK/USER handshake
// have completed.
func (u *UserInfo) readyToRegister() bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.nick != "*" && (u.status == statusGotUser || u.status == statusRegistered)
}

func (u *UserInfo) markRegistered() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.status = statusRegistered
}

func (u *UserInfo) setOperator(v bool) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.operator = v
}

func (u *UserInfo) IsOperator() bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.operator
}

// PublicHostMask returns "nick!username@hostname".
func (u *UserInfo) PublicHostMask() string {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return fmt.Sprintf("%s!%s@%s", u.nick, u.username, u.hostname)
}

// Peer is the handle passed to command handlers: a cheaply cloneable
// reference bundling UserInfo with a non-blocking send endpoint for
// outbound RawMessages. Holding a Peer never blocks the owner's write path
// because sendQueue is buffered and overflow is dropped rather than
// awaited; see maybeQueueMessage in client.go.
type Peer struct {
	Info      *UserInfo
	sendQueue chan<- RawMessage
	channels  *channelSet
}

// channelSet caches the set of channels a peer currently belongs to, so
// "iterate over all channels a user is in" (QUIT fanout, NICK-change
// rewrites) does not require scanning every channel in the server.
type channelSet struct {
	mu     sync.Mutex
	byName map[string]*ChannelProxy
}

func newChannelSet() *channelSet {
	return &channelSet{byName: make(map[string]*ChannelProxy)}
}

func (c *channelSet) add(name string, proxy *ChannelProxy) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.byName[name] = proxy
}

func (c *channelSet) remove(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.byName, name)
}

func (c *channelSet) has(name string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.byName[name]
	return ok
}

func (c *channelSet) snapshot() map[string]*ChannelProxy {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]*ChannelProxy, len(c.byName))
	for k, v := range c.byName {
		out[k] = v
	}
	return out
}

// NewPeer wraps a UserInfo and send queue into a Peer handle.
func NewPeer(info *UserInfo, sendQueue chan<- RawMessage) Peer {
	return Peer{Info: info, sendQueue: sendQueue, channels: newChannelSet()}
}

func (p Peer) Id() PeerId { return p.Info.id }

// Send enqueues message for delivery to this peer. It never blocks; see
// maybeQueueMessage.
func (p Peer) Send(message RawMessage) {
	maybeQueueMessage(p.sendQueue, message)
}

// SendReply builds and enqueues a numeric reply, prefixed by serverName and
// addressed to the peer's current nick (or "*" pre-registration), per the
// spec's reply envelope (§6).
func (p Peer) SendReply(serverName, code string, params []string) {
	nick := p.Info.Nick()
	full := append([]string{nick}, params...)
	p.Send(NewRawMessage(code, full, serverName))
}
