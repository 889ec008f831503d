package main

import (
	"log"
	"net"
	"os"
	"time"

	"github.com/pkg/errors"
)

// Server is the single dispatcher: one goroutine owns every directory below
// and is the only thing that ever mutates them. Connection actors and
// channel actors only ever reach it by sending on events/chanLost; this is
// what lets the directories be plain maps with no locking.
type Server struct {
	Config Config

	events   chan ServerEvent
	chanLost chan channelLost

	clients  map[PeerId]*Client
	nicks    map[string]PeerId // canonical nick -> PeerId, claimed from NICK onward
	channels map[string]*ChannelProxy

	listener net.Listener

	pingTicker *time.Ticker
}

// NewServer builds a Server from a parsed Config. Call Start to accept
// connections and run the dispatcher loop (it blocks).
func NewServer(config Config) *Server {
	return &Server{
		Config:   config,
		events:   make(chan ServerEvent, 256),
		chanLost: make(chan channelLost, 64),
		clients:  make(map[PeerId]*Client),
		nicks:    make(map[string]PeerId),
		channels: make(map[string]*ChannelProxy),
	}
}

// Start opens the listening socket, starts the accept loop and the
// idle/ping alarm, then runs the dispatcher loop. It only returns on a
// listener error. A listenFD of -1 opens a fresh TCP socket from
// Config.ListenHost/ListenPort; a listenFD >= 0 instead adopts that already-
// open, already-listening file descriptor (inherited from a supervisor doing
// socket activation or a graceful restart), skipping net.Listen entirely.
func (s *Server) Start(listenFD int) error {
	ln, err := s.listen(listenFD)
	if err != nil {
		return err
	}
	s.listener = ln

	s.pingTicker = time.NewTicker(s.Config.WakeupTime)
	defer s.pingTicker.Stop()

	go s.acceptConnections()

	s.run()
	return nil
}

// listen builds the listening socket: from an inherited file descriptor when
// listenFD >= 0, otherwise a fresh net.Listen on the configured host/port.
func (s *Server) listen(listenFD int) (net.Listener, error) {
	if listenFD >= 0 {
		file := os.NewFile(uintptr(listenFD), "listen-fd")
		ln, err := net.FileListener(file)
		if err != nil {
			return nil, errors.Wrap(err, "unable to adopt inherited listen-fd")
		}
		return ln, nil
	}

	ln, err := net.Listen("tcp", net.JoinHostPort(s.Config.ListenHost, s.Config.ListenPort))
	if err != nil {
		return nil, errors.Wrap(err, "unable to listen")
	}
	return ln, nil
}

// acceptConnections accepts TCP connections forever, handing each off to a
// new connection actor. A single bad accept is logged and retried rather
// than fatal, matching the teacher's accept loop.
func (s *Server) acceptConnections() {
	for {
		netConn, err := s.listener.Accept()
		if err != nil {
			log.Printf("accept error: %s", err)
			continue
		}

		conn, err := NewConn(netConn, s.Config.PingTime+s.Config.DeadTime)
		if err != nil {
			log.Printf("rejecting connection: %s", err)
			_ = netConn.Close()
			continue
		}

		client := NewClient(s, conn, conn.IP.String())
		client.Listen()
	}
}

// run is the dispatcher's event loop: it owns clients/nicks/channels and is
// the only goroutine that ever touches them.
func (s *Server) run() {
	for {
		select {
		case ev := <-s.events:
			s.handleServerEvent(ev)

		case lost := <-s.chanLost:
			delete(s.channels, canonicalizeChannel(lost.name))

		case <-s.pingTicker.C:
			s.checkAndPingClients()
		}
	}
}

func (s *Server) handleServerEvent(ev ServerEvent) {
	switch ev.kind {
	case eventConnected:
		s.addClient(ev.client)

	case eventMessageReceived:
		client, ok := s.clients[ev.peerId]
		if !ok {
			return
		}
		client.lastActivity = time.Now()

		if isDisconnectSentinel(ev.raw) {
			s.removeClient(client, "Connection reset by peer")
			return
		}

		s.dispatchCommand(client, ev.raw)

	case eventChannelLost:
		delete(s.channels, canonicalizeChannel(ev.lost.name))
	}
}

func (s *Server) addClient(c *Client) {
	if _, dup := s.clients[c.id]; dup {
		log.Printf("duplicate connection id, closing new connection: %s", c)
		c.Close()
		return
	}
	s.clients[c.id] = c
	log.Printf("new connection: %s", c)
}

// getOrCreateChannel returns the proxy for name, spawning a fresh channel
// actor if none exists yet. Only ever called from the dispatcher goroutine.
func (s *Server) getOrCreateChannel(name string) *ChannelProxy {
	if proxy, ok := s.channels[name]; ok {
		return proxy
	}
	channel := NewChannel(name, s.Config.ServerName, flagTopicProtect, flagNoExternalMsgs)
	proxy := listenChannel(channel, s.chanLost)
	s.channels[name] = proxy
	return proxy
}

// partAllChannels sends quitMsg (a QUIT, or the PART of "JOIN 0") to the
// other members of every channel c belongs to and removes c's membership
// from each one, closing any channel left empty.
func (s *Server) partAllChannels(c *Client, quitMsg RawMessage) {
	for name, proxy := range c.peer.channels.snapshot() {
		channelName := name
		p := proxy
		p.Send(HandleMut(func(ch *Channel) {
			if _, ok := ch.memberById(c.id); !ok {
				return
			}
			ch.broadcastExcept(quitMsg, c.id)
			ch.removeMember(c.id)
			if ch.memberCount() == 0 {
				p.Close()
				s.chanLost <- channelLost{name: channelName}
			}
		}))
	}
}

// removeClient tears a client down: QUIT-fanout to its channels (if it had
// completed registration), frees its nick, drops it from the client
// directory, and closes its socket.
func (s *Server) removeClient(c *Client, reason string) {
	if _, ok := s.clients[c.id]; !ok {
		return
	}

	if c.info.Status() == statusRegistered {
		quitMsg := NewRawMessage(cmdQuit, []string{reason}, c.info.PublicHostMask())
		s.partAllChannels(c, quitMsg)
	}

	if nick := c.info.Nick(); nick != "*" {
		delete(s.nicks, canonicalizeNick(nick))
	}

	delete(s.clients, c.id)
	c.Close()
}

// checkAndPingClients pings clients idle past PingTime and disconnects ones
// idle past DeadTime, concretizing SPEC_FULL.md §12's keepalive sweep.
func (s *Server) checkAndPingClients() {
	now := time.Now()

	for _, c := range s.clients {
		idle := now.Sub(c.lastActivity)

		if idle > s.Config.DeadTime {
			s.removeClient(c, "Ping timeout")
			continue
		}

		if c.info.Status() == statusRegistered && idle > s.Config.PingTime {
			c.peer.Send(NewRawMessage(cmdPing, []string{s.Config.ServerName}, s.Config.ServerName))
		}
	}
}
