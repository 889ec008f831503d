package main

import "sort"

// memberFlag is a per-member privilege within one channel.
type memberFlag byte

const (
	flagChannelCreator memberFlag = 'O'
	flagOperator       memberFlag = 'o'
	flagVoice          memberFlag = 'v'
)

// Member is one user's membership record in exactly one Channel. It is
// owned by that channel's actor goroutine; nothing outside the actor
// mutates it.
type Member struct {
	id       PeerId
	peer     Peer
	nick     string
	username string
	realname string
	hostname string
	flags    map[memberFlag]struct{}
}

func newMember(peer Peer) *Member {
	return &Member{
		id:       peer.Id(),
		peer:     peer,
		nick:     peer.Info.Nick(),
		username: peer.Info.Username(),
		realname: peer.Info.RealName(),
		hostname: peer.Info.Hostname(),
		flags:    make(map[memberFlag]struct{}),
	}
}

func (m *Member) isOp() bool {
	_, ok := m.flags[flagOperator]
	return ok
}

func (m *Member) isVoiced() bool {
	_, ok := m.flags[flagVoice]
	return ok
}

func (m *Member) mask() string {
	return m.nick + "!" + m.username + "@" + m.hostname
}

// decoratedNick returns "@nick" for an op, "+nick" for voice, else "nick".
func (m *Member) decoratedNick() string {
	if m.isOp() {
		return "@" + m.nick
	}
	if m.isVoiced() {
		return "+" + m.nick
	}
	return m.nick
}

func (m *Member) promote(f memberFlag) { m.flags[f] = struct{}{} }
func (m *Member) demote(f memberFlag)  { delete(m.flags, f) }

// channelFlag is a boolean channel mode (no parameter).
type channelFlag byte

const (
	flagAnonymous      channelFlag = 'a'
	flagInviteOnly     channelFlag = 'i'
	flagModerated      channelFlag = 'm'
	flagNoExternalMsgs channelFlag = 'n'
	flagQuiet          channelFlag = 'q'
	flagPrivate        channelFlag = 'p'
	flagSecret         channelFlag = 's'
	flagReop           channelFlag = 'r'
	flagTopicProtect   channelFlag = 't'
)

// Channel is owned by exactly one channel actor goroutine. Every field here
// is private to that goroutine; the rest of the server only ever reaches it
// through a ChannelProxy's Handle/HandleMut events.
type Channel struct {
	name       string
	serverName string

	topic    string
	password string
	hasKey   bool
	limit    int
	hasLimit bool

	flags map[channelFlag]struct{}

	members   map[string]*Member // canonical nick -> Member
	nicknames map[PeerId]string  // PeerId -> canonical nick

	banMasks    map[string]HostMask
	exceptMasks map[string]HostMask
	inviteMasks map[string]HostMask
}

// NewChannel creates an empty channel with the given default flags.
func NewChannel(name, serverName string, defaultFlags ...channelFlag) *Channel {
	c := &Channel{
		name:        name,
		serverName:  serverName,
		flags:       make(map[channelFlag]struct{}),
		members:     make(map[string]*Member),
		nicknames:   make(map[PeerId]string),
		banMasks:    make(map[string]HostMask),
		exceptMasks: make(map[string]HostMask),
		inviteMasks: make(map[string]HostMask),
	}
	for _, f := range defaultFlags {
		c.flags[f] = struct{}{}
	}
	return c
}

func (c *Channel) Name() string       { return c.name }
func (c *Channel) ServerName() string { return c.serverName }
func (c *Channel) Topic() string      { return c.topic }
func (c *Channel) SetTopic(t string)  { c.topic = t }

func (c *Channel) hasFlag(f channelFlag) bool {
	_, ok := c.flags[f]
	return ok
}

func (c *Channel) addFlag(f channelFlag)    { c.flags[f] = struct{}{} }
func (c *Channel) removeFlag(f channelFlag) { delete(c.flags, f) }

// flagString renders the channel's boolean flags as "abc" (no leading '+';
// callers that want "+abc" prepend it themselves, matching RPL_CHANNELMODEIS
// usage).
func (c *Channel) flagString() string {
	letters := make([]byte, 0, len(c.flags))
	for f := range c.flags {
		letters = append(letters, byte(f))
	}
	sort.Slice(letters, func(i, j int) bool { return letters[i] < letters[j] })
	return string(letters)
}

func (c *Channel) memberCount() int { return len(c.members) }

func (c *Channel) memberByNick(nick string) (*Member, bool) {
	m, ok := c.members[canonicalizeNick(nick)]
	return m, ok
}

func (c *Channel) memberById(id PeerId) (*Member, bool) {
	nick, ok := c.nicknames[id]
	if !ok {
		return nil, false
	}
	return c.memberByNick(nick)
}

// addMember adds m to the channel, keyed by its canonical nick. Returns
// false if the member's PeerId is already present.
func (c *Channel) addMember(m *Member) bool {
	if _, exists := c.memberById(m.id); exists {
		return false
	}
	key := canonicalizeNick(m.nick)
	c.nicknames[m.id] = key
	c.members[key] = m
	return true
}

// removeMember removes the member with the given PeerId, if present.
func (c *Channel) removeMember(id PeerId) bool {
	nick, ok := c.nicknames[id]
	if !ok {
		return false
	}
	delete(c.nicknames, id)
	delete(c.members, nick)
	return true
}

// orderedMembers returns members in nick order, for deterministic NAMES/WHO
// output.
func (c *Channel) orderedMembers() []*Member {
	out := make([]*Member, 0, len(c.members))
	for _, m := range c.members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].nick < out[j].nick })
	return out
}

// broadcast clones message and enqueues it to every member's write queue.
// Cloning is cheap: RawMessage's buffer is small and the clone only ever
// happens fan-out-many, not hot-loop-many.
func (c *Channel) broadcast(message RawMessage) {
	for _, m := range c.orderedMembers() {
		m.peer.Send(message.Clone())
	}
}

// broadcastExcept is broadcast but skips the member with id except.
func (c *Channel) broadcastExcept(message RawMessage, except PeerId) {
	for _, m := range c.orderedMembers() {
		if m.id == except {
			continue
		}
		m.peer.Send(message.Clone())
	}
}

// ChannelEvent is a closure dispatched to a channel actor. Handle runs
// read-only; HandleMut may mutate the channel. Go has first-class closures,
// so this is modelled directly rather than as a tagged sum of request
// records (the fallback the spec suggests for languages without them).
type ChannelEvent struct {
	mut bool
	fn  func(*Channel)
}

// Handle builds a read-only channel event.
func Handle(f func(*Channel)) ChannelEvent {
	return ChannelEvent{mut: false, fn: f}
}

// HandleMut builds a mutating channel event.
func HandleMut(f func(*Channel)) ChannelEvent {
	return ChannelEvent{mut: true, fn: f}
}

// channelLost is the notification sent to the server dispatcher when a
// proxy's mailbox send fails because the actor goroutine has exited.
type channelLost struct {
	name string
}

// ChannelProxy is the only handle the rest of the server ever holds to a
// channel's state; it forwards events to the channel's private goroutine.
type ChannelProxy struct {
	name     string
	mailbox  chan ChannelEvent
	lostChan chan<- channelLost
}

// listenChannel starts channel's actor goroutine and returns a proxy to it.
// The goroutine owns channel exclusively from this point on.
func listenChannel(channel *Channel, lostChan chan<- channelLost) *ChannelProxy {
	mailbox := make(chan ChannelEvent, 64)
	proxy := &ChannelProxy{name: channel.name, mailbox: mailbox, lostChan: lostChan}

	go func() {
		for event := range mailbox {
			event.fn(channel)
		}
	}()

	return proxy
}

// Send forwards event to the channel actor. If the mailbox is gone the
// proxy reports ChannelLost to the server so the directory entry gets
// cleaned up; it never blocks the caller waiting for that notification.
func (p *ChannelProxy) Send(event ChannelEvent) {
	defer func() {
		if recover() != nil {
			select {
			case p.lostChan <- channelLost{name: p.name}:
			default:
			}
		}
	}()
	p.mailbox <- event
}

// Close shuts the actor goroutine down; used when the server observes the
// channel has become empty.
func (p *ChannelProxy) Close() {
	close(p.mailbox)
}
