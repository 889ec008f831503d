package main

import (
	"fmt"
	"strconv"
	"strings"
)

// dispatchCommand routes one parsed message from a client to its handler.
// It runs entirely inside the dispatcher goroutine, so handlers may touch
// s.clients/s.nicks/s.channels directly.
func (s *Server) dispatchCommand(c *Client, raw RawMessage) {
	if raw.HasPrefix() {
		c.peer.Send(NewRawMessage("ERROR", []string{"Do not send a prefix"}, s.Config.ServerName))
		return
	}

	command := raw.Command()
	params := raw.Params()

	switch command {
	case cmdCap:
		s.handleCap(c, params)
		return
	case cmdNick:
		s.handleNick(c, params)
		return
	case cmdUser:
		s.handleUser(c, params)
		return
	case cmdPing:
		s.handlePing(c, params)
		return
	case cmdPong:
		return
	case cmdQuit:
		s.handleQuit(c, params)
		return
	}

	if c.info.Status() != statusRegistered {
		c.peer.SendReply(s.Config.ServerName, ErrNotRegistered, []string{"You have not registered"})
		return
	}

	switch command {
	case cmdJoin:
		s.handleJoin(c, params)
	case cmdPart:
		s.handlePart(c, params)
	case cmdPrivmsg:
		s.handlePrivmsgOrNotice(c, params, false)
	case cmdNotice:
		s.handlePrivmsgOrNotice(c, params, true)
	case cmdMode:
		s.handleMode(c, params)
	case cmdTopic:
		s.handleTopic(c, params)
	case cmdNames:
		s.handleNames(c, params)
	case cmdWho:
		s.handleWho(c, params)
	case cmdOper:
		s.handleOper(c, params)
	default:
		c.peer.SendReply(s.Config.ServerName, ErrUnknownCommand, []string{command, "Unknown command"})
	}
}

// handleCap implements just enough of the capability negotiation handshake
// (LS/LIST/REQ/END) for clients that send it unconditionally; no capability
// is ever advertised since SASL/extensions are out of scope, and every REQ is
// answered with a NAK echoing the requested capabilities.
func (s *Server) handleCap(c *Client, params []string) {
	if len(params) == 0 {
		return
	}
	sub := strings.ToUpper(params[0])
	switch sub {
	case "LS", "LIST":
		c.peer.Send(NewRawMessage(cmdCap, []string{c.info.Nick(), sub, ""}, s.Config.ServerName))
	case "REQ":
		requested := ""
		if len(params) > 1 {
			requested = params[1]
		}
		c.peer.Send(NewRawMessage(cmdCap, []string{c.info.Nick(), "NAK", requested}, s.Config.ServerName))
	case "END":
		// nothing to do; registration proceeds independently of CAP END
	}
}

func (s *Server) handleNick(c *Client, params []string) {
	if len(params) == 0 {
		c.peer.SendReply(s.Config.ServerName, ErrNoNicknameGiven, []string{"No nickname given"})
		return
	}

	nick := params[0]
	if !isValidNick(s.Config.MaxNickLength, nick) {
		c.peer.SendReply(s.Config.ServerName, ErrErroneusNickname, []string{nick, "Erroneous nickname"})
		return
	}

	canon := canonicalizeNick(nick)
	if existing, exists := s.nicks[canon]; exists && existing != c.id {
		c.peer.SendReply(s.Config.ServerName, ErrNicknameInUse, []string{nick, "Nickname is already in use"})
		return
	}

	oldNick := c.info.Nick()
	wasRegistered := c.info.Status() == statusRegistered

	if oldNick != "*" {
		delete(s.nicks, canonicalizeNick(oldNick))
	}
	s.nicks[canon] = c.id
	c.info.setNick(nick)

	if wasRegistered {
		nickMsg := NewRawMessage(cmdNick, []string{nick}, oldNick+"!"+c.info.Username()+"@"+c.info.Hostname())
		s.announceToPeerChannels(c, nickMsg)
		c.peer.Send(nickMsg.Clone())
	}

	s.maybeCompleteRegistration(c)
}

func (s *Server) handleUser(c *Client, params []string) {
	if c.info.Status() == statusRegistered {
		c.peer.SendReply(s.Config.ServerName, ErrAlreadyRegistred, []string{"Unauthorized command (already registered)"})
		return
	}

	if len(params) != 4 {
		c.peer.SendReply(s.Config.ServerName, ErrNeedMoreParams, []string{cmdUser, "Not enough parameters"})
		return
	}

	username := params[0]
	if !isValidUser(username) {
		c.peer.Send(NewRawMessage("ERROR", []string{"Invalid username"}, s.Config.ServerName))
		return
	}

	c.info.setUser(username, params[3])
	s.maybeCompleteRegistration(c)
}

// maybeCompleteRegistration sends the post-registration burst (welcome,
// LUSERS, MOTD) the first time both NICK and USER have landed.
func (s *Server) maybeCompleteRegistration(c *Client) {
	if c.info.Status() == statusRegistered || !c.info.readyToRegister() {
		return
	}
	c.info.markRegistered()

	c.peer.SendReply(s.Config.ServerName, ReplyWelcome,
		[]string{fmt.Sprintf("Welcome to the Internet Relay Network %s", c.info.PublicHostMask())})
	c.peer.SendReply(s.Config.ServerName, "002",
		[]string{fmt.Sprintf("Your host is %s, running version %s", s.Config.ServerName, s.Config.Version)})
	c.peer.SendReply(s.Config.ServerName, "003",
		[]string{fmt.Sprintf("This server was created %s", s.Config.CreatedDate)})
	c.peer.SendReply(s.Config.ServerName, "004",
		[]string{s.Config.ServerName, s.Config.Version, "io", "ntimsqpbeIl"})

	s.sendLusers(c)
	s.sendMotd(c)
}

func (s *Server) sendLusers(c *Client) {
	c.peer.SendReply(s.Config.ServerName, "251", []string{
		fmt.Sprintf("There are %d users and 0 services on 1 servers.", len(s.nicks)),
	})
	if unknown := len(s.clients) - len(s.nicks); unknown > 0 {
		c.peer.SendReply(s.Config.ServerName, "253", []string{strconv.Itoa(unknown), "unknown connection(s)"})
	}
	if len(s.channels) > 0 {
		c.peer.SendReply(s.Config.ServerName, "254", []string{strconv.Itoa(len(s.channels)), "channels formed"})
	}
	c.peer.SendReply(s.Config.ServerName, "255", []string{
		fmt.Sprintf("I have %d clients and 1 servers", len(s.clients)),
	})
}

func (s *Server) sendMotd(c *Client) {
	if s.Config.MOTD == "" {
		c.peer.SendReply(s.Config.ServerName, ReplyNoMOTD, []string{"MOTD File is missing"})
		return
	}
	c.peer.SendReply(s.Config.ServerName, ReplyMOTDStart,
		[]string{fmt.Sprintf("- %s Message of the day - ", s.Config.ServerName)})
	for _, line := range strings.Split(s.Config.MOTD, "\n") {
		c.peer.SendReply(s.Config.ServerName, ReplyMOTD, []string{"- " + line})
	}
	c.peer.SendReply(s.Config.ServerName, ReplyEndOfMOTD, []string{"End of MOTD command"})
}

func (s *Server) handlePing(c *Client, params []string) {
	if len(params) == 0 {
		c.peer.SendReply(s.Config.ServerName, ErrNoOrigin, []string{"No origin specified"})
		return
	}
	c.peer.Send(NewRawMessage(cmdPong, []string{s.Config.ServerName, params[0]}, s.Config.ServerName))
}

func (s *Server) handleQuit(c *Client, params []string) {
	msg := "Client quit"
	if len(params) > 0 {
		msg = params[0]
	}
	c.peer.Send(NewRawMessage("ERROR", []string{msg}, s.Config.ServerName))
	s.removeClient(c, msg)
}

// announceToPeerChannels sends message to every member of every channel c
// belongs to except c itself (callers send c its own copy), deduplicating so
// a member in several shared channels is only told once. The member lists are fetched one channel actor
// at a time and the dedup/send happens back here in the dispatcher
// goroutine, so nothing but this goroutine ever touches the informed map
// (sharing it directly into concurrently-running channel actors would be an
// unsynchronized concurrent map access).
func (s *Server) announceToPeerChannels(c *Client, message RawMessage) {
	informed := map[PeerId]struct{}{c.id: {}}
	for _, proxy := range c.peer.channels.snapshot() {
		members := make(chan []*Member, 1)
		proxy.Send(Handle(func(ch *Channel) {
			members <- ch.orderedMembers()
		}))
		for _, m := range <-members {
			if _, done := informed[m.id]; done {
				continue
			}
			m.peer.Send(message.Clone())
			informed[m.id] = struct{}{}
		}
	}
}

func (s *Server) handleJoin(c *Client, params []string) {
	if len(params) == 0 {
		c.peer.SendReply(s.Config.ServerName, ErrNeedMoreParams, []string{cmdJoin, "Not enough parameters"})
		return
	}

	if params[0] == "0" {
		partMsg := NewRawMessage(cmdPart, []string{"leaving all channels"}, c.info.PublicHostMask())
		s.partAllChannels(c, partMsg)
		c.peer.channels = newChannelSet()
		return
	}

	names := strings.Split(params[0], ",")
	var keys []string
	if len(params) > 1 {
		keys = strings.Split(params[1], ",")
	}

	for i, rawName := range names {
		key := ""
		if i < len(keys) {
			key = keys[i]
		}
		s.joinOne(c, rawName, key)
	}
}

func (s *Server) joinOne(c *Client, rawName, key string) {
	name := canonicalizeChannel(rawName)
	if !isValidChannel(name) {
		c.peer.SendReply(s.Config.ServerName, ErrNoSuchChannel, []string{rawName, "Invalid channel name"})
		return
	}

	proxy := s.getOrCreateChannel(name)
	peer := c.peer
	serverName := s.Config.ServerName
	hostmask := c.info.PublicHostMask()
	channels := c.peer.channels

	proxy.Send(HandleMut(func(ch *Channel) {
		if _, exists := ch.memberById(peer.Id()); exists {
			return
		}

		if ch.hasLimit && ch.memberCount() >= ch.limit {
			peer.SendReply(serverName, ErrChannelIsFull, []string{name, "Cannot join channel (+l)"})
			return
		}
		if ch.hasKey && ch.password != key {
			peer.SendReply(serverName, ErrBadChannelKey, []string{name, "Cannot join channel (+k)"})
			return
		}
		if ch.hasFlag(flagInviteOnly) {
			invited := false
			for _, im := range ch.inviteMasks {
				if im.Matches(hostmask) {
					invited = true
					break
				}
			}
			if !invited {
				peer.SendReply(serverName, ErrInviteOnlyChan, []string{name, "Cannot join channel (+i)"})
				return
			}
		}
		for _, mask := range ch.banMasks {
			if !mask.Matches(hostmask) {
				continue
			}
			excepted := false
			for _, ex := range ch.exceptMasks {
				if ex.Matches(hostmask) {
					excepted = true
					break
				}
			}
			if !excepted {
				peer.SendReply(serverName, ErrBannedFromChan, []string{name, "Cannot join channel (+b)"})
				return
			}
		}

		channels.add(name, proxy)
		m := newMember(peer)
		if ch.memberCount() == 0 {
			m.promote(flagChannelCreator)
			m.promote(flagOperator)
		}
		ch.addMember(m)

		joinMsg := NewRawMessage(cmdJoin, []string{name}, hostmask)
		ch.broadcast(joinMsg)

		if ch.topic != "" {
			peer.SendReply(serverName, ReplyTopic, []string{name, ch.topic})
		} else {
			peer.SendReply(serverName, ReplyNoTopic, []string{name, "No topic is set"})
		}

		decorated := make([]string, 0, ch.memberCount())
		for _, mm := range ch.orderedMembers() {
			decorated = append(decorated, mm.decoratedNick())
		}
		peer.SendReply(serverName, ReplyNameReply, []string{namesSymbol(ch), name, strings.Join(decorated, " ")})
		peer.SendReply(serverName, ReplyEndOfNames, []string{name, "End of NAMES list"})
	}))
}

// namesSymbol reports the channel-type marker RPL_NAMREPLY expects: "=" for
// public, "@" for secret, "*" for private.
func namesSymbol(ch *Channel) string {
	if ch.hasFlag(flagSecret) {
		return "@"
	}
	if ch.hasFlag(flagPrivate) {
		return "*"
	}
	return "="
}

func (s *Server) handlePart(c *Client, params []string) {
	if len(params) == 0 {
		c.peer.SendReply(s.Config.ServerName, ErrNeedMoreParams, []string{cmdPart, "Not enough parameters"})
		return
	}

	reason := ""
	if len(params) > 1 {
		reason = params[1]
	}

	for _, rawName := range strings.Split(params[0], ",") {
		s.partOne(c, rawName, reason)
	}
}

func (s *Server) partOne(c *Client, rawName, reason string) {
	name := canonicalizeChannel(rawName)
	if !c.peer.channels.has(name) {
		c.peer.SendReply(s.Config.ServerName, ErrNotOnChannel, []string{name, "You're not on that channel"})
		return
	}

	proxy := s.getOrCreateChannel(name)
	c.peer.channels.remove(name)
	hostmask := c.info.PublicHostMask()

	partParams := []string{name}
	if reason != "" {
		partParams = append(partParams, reason)
	}
	partMsg := NewRawMessage(cmdPart, partParams, hostmask)

	channelName := name
	proxy.Send(HandleMut(func(ch *Channel) {
		if _, ok := ch.memberById(c.id); !ok {
			return
		}
		ch.broadcast(partMsg)
		ch.removeMember(c.id)
		if ch.memberCount() == 0 {
			proxy.Close()
			s.chanLost <- channelLost{name: channelName}
		}
	}))
}

func (s *Server) handlePrivmsgOrNotice(c *Client, params []string, isNotice bool) {
	command := cmdPrivmsg
	if isNotice {
		command = cmdNotice
	}

	if len(params) == 0 {
		if !isNotice {
			c.peer.SendReply(s.Config.ServerName, ErrNoRecipient, []string{fmt.Sprintf("No recipient given (%s)", command)})
		}
		return
	}
	if len(params) == 1 {
		if !isNotice {
			c.peer.SendReply(s.Config.ServerName, ErrNoTextToSend, []string{"No text to send"})
		}
		return
	}

	target := params[0]
	text := params[1]
	hostmask := c.info.PublicHostMask()

	switch classifyReceiver(s.Config.MaxNickLength, target) {
	case receiverChannel:
		name := canonicalizeChannel(target)
		proxy, ok := s.channels[name]
		if !ok {
			if !isNotice {
				c.peer.SendReply(s.Config.ServerName, ErrNoSuchChannel, []string{target, "No such channel"})
			}
			return
		}
		senderId := c.id
		proxy.Send(Handle(func(ch *Channel) {
			_, isMember := ch.memberById(senderId)
			if ch.hasFlag(flagNoExternalMsgs) && !isMember {
				if !isNotice {
					c.peer.SendReply(s.Config.ServerName, ErrCannotSendToChan, []string{target, "Cannot send to channel"})
				}
				return
			}
			if ch.hasFlag(flagModerated) {
				m, _ := ch.memberById(senderId)
				if m == nil || (!m.isOp() && !m.isVoiced()) {
					if !isNotice {
						c.peer.SendReply(s.Config.ServerName, ErrCannotSendToChan, []string{target, "Cannot send to channel"})
					}
					return
				}
			}
			msg := NewRawMessage(command, []string{target, text}, hostmask)
			ch.broadcastExcept(msg, senderId)
		}))

	case receiverNick:
		nick := canonicalizeNick(target)
		id, ok := s.nicks[nick]
		if !ok {
			if !isNotice {
				c.peer.SendReply(s.Config.ServerName, ErrNoSuchNick, []string{target, "No such nick/channel"})
			}
			return
		}
		dest, ok := s.clients[id]
		if !ok {
			return
		}
		dest.peer.Send(NewRawMessage(command, []string{dest.info.Nick(), text}, hostmask))

	default:
		if !isNotice {
			c.peer.SendReply(s.Config.ServerName, ErrNoSuchNick, []string{target, "No such nick/channel"})
		}
	}
}

func (s *Server) handleTopic(c *Client, params []string) {
	if len(params) == 0 {
		c.peer.SendReply(s.Config.ServerName, ErrNeedMoreParams, []string{cmdTopic, "Not enough parameters"})
		return
	}

	name := canonicalizeChannel(params[0])
	proxy, ok := s.channels[name]
	if !ok {
		c.peer.SendReply(s.Config.ServerName, ErrNoSuchChannel, []string{params[0], "No such channel"})
		return
	}

	peer := c.peer
	serverName := s.Config.ServerName
	hostmask := c.info.PublicHostMask()

	if len(params) == 1 {
		proxy.Send(Handle(func(ch *Channel) {
			if ch.topic == "" {
				peer.SendReply(serverName, ReplyNoTopic, []string{name, "No topic is set"})
				return
			}
			peer.SendReply(serverName, ReplyTopic, []string{name, ch.topic})
		}))
		return
	}

	newTopic := params[1]
	proxy.Send(HandleMut(func(ch *Channel) {
		m, isMember := ch.memberById(peer.Id())
		if !isMember {
			peer.SendReply(serverName, ErrNotOnChannel, []string{name, "You're not on that channel"})
			return
		}
		if ch.hasFlag(flagTopicProtect) && !m.isOp() {
			peer.SendReply(serverName, ErrChanOPrivsNeeded, []string{name, "You're not channel operator"})
			return
		}
		ch.SetTopic(newTopic)
		ch.broadcast(NewRawMessage(cmdTopic, []string{name, newTopic}, hostmask))
	}))
}

func (s *Server) handleNames(c *Client, params []string) {
	if len(params) == 0 {
		return
	}
	peer := c.peer
	serverName := s.Config.ServerName
	for _, rawName := range strings.Split(params[0], ",") {
		name := canonicalizeChannel(rawName)
		proxy, ok := s.channels[name]
		if !ok {
			c.peer.SendReply(s.Config.ServerName, ReplyEndOfNames, []string{rawName, "End of NAMES list"})
			continue
		}
		proxy.Send(Handle(func(ch *Channel) {
			_, isMember := ch.memberById(peer.Id())
			if !isMember && (ch.hasFlag(flagSecret) || ch.hasFlag(flagPrivate)) {
				peer.SendReply(serverName, ReplyEndOfNames, []string{name, "End of NAMES list"})
				return
			}
			decorated := make([]string, 0, ch.memberCount())
			for _, m := range ch.orderedMembers() {
				decorated = append(decorated, m.decoratedNick())
			}
			peer.SendReply(serverName, ReplyNameReply, []string{namesSymbol(ch), name, strings.Join(decorated, " ")})
			peer.SendReply(serverName, ReplyEndOfNames, []string{name, "End of NAMES list"})
		}))
	}
}

func (s *Server) handleWho(c *Client, params []string) {
	if len(params) == 0 {
		c.peer.SendReply(s.Config.ServerName, ReplyEndOfWho, []string{"*", "End of WHO list"})
		return
	}

	mask := params[0]
	if classifyReceiver(s.Config.MaxNickLength, mask) != receiverChannel {
		c.peer.SendReply(s.Config.ServerName, ReplyEndOfWho, []string{mask, "End of WHO list"})
		return
	}

	name := canonicalizeChannel(mask)
	proxy, ok := s.channels[name]
	if !ok {
		c.peer.SendReply(s.Config.ServerName, ReplyEndOfWho, []string{mask, "End of WHO list"})
		return
	}

	opsOnly := len(params) > 1 && params[1] == "o"
	peer := c.peer
	serverName := s.Config.ServerName
	proxy.Send(Handle(func(ch *Channel) {
		_, isMember := ch.memberById(peer.Id())
		if !isMember && (ch.hasFlag(flagSecret) || ch.hasFlag(flagPrivate)) {
			peer.SendReply(serverName, ReplyEndOfWho, []string{mask, "End of WHO list"})
			return
		}
		for _, m := range ch.orderedMembers() {
			if opsOnly && !m.isOp() {
				continue
			}
			flags := "H"
			if m.isOp() {
				flags += "@"
			} else if m.isVoiced() {
				flags += "+"
			}
			peer.SendReply(serverName, ReplyWhoReply, []string{
				name, m.username, m.hostname, serverName, m.nick, flags,
				"0 " + m.realname,
			})
		}
		peer.SendReply(serverName, ReplyEndOfWho, []string{mask, "End of WHO list"})
	}))
}

func (s *Server) handleMode(c *Client, params []string) {
	if len(params) == 0 {
		c.peer.SendReply(s.Config.ServerName, ErrNeedMoreParams, []string{cmdMode, "Not enough parameters"})
		return
	}

	target := params[0]

	if classifyReceiver(s.Config.MaxNickLength, target) == receiverNick {
		// User modes are not modelled beyond the operator flag, which OPER
		// sets directly; report current (empty) mode string.
		c.peer.SendReply(s.Config.ServerName, ReplyChannelModeIs, []string{target, "+"})
		return
	}

	name := canonicalizeChannel(target)
	proxy, ok := s.channels[name]
	if !ok {
		c.peer.SendReply(s.Config.ServerName, ErrNoSuchChannel, []string{target, "No such channel"})
		return
	}

	if len(params) == 1 {
		peer := c.peer
		serverName := s.Config.ServerName
		proxy.Send(Handle(func(ch *Channel) {
			peer.SendReply(serverName, ReplyChannelModeIs, []string{name, "+" + ch.flagString()})
		}))
		return
	}

	changes := params[1]
	args := params[2:]
	peer := c.peer
	serverName := s.Config.ServerName
	hostmask := c.info.PublicHostMask()

	isServerOper := c.info.IsOperator()

	proxy.Send(HandleMut(func(ch *Channel) {
		m, isMember := ch.memberById(peer.Id())
		if !isServerOper && (!isMember || !m.isOp()) {
			peer.SendReply(serverName, ErrChanOPrivsNeeded, []string{name, "You're not channel operator"})
			return
		}

		argi := 0
		nextArg := func() string {
			if argi >= len(args) {
				return ""
			}
			a := args[argi]
			argi++
			return a
		}

		// broadcastChange emits one MODE line per applied change, per
		// SPEC_FULL.md §4.F/§4.G: clients must see intermediate states, not
		// one coalesced line for the whole modestring.
		broadcastChange := func(sign byte, letter byte, arg string) {
			modeParams := []string{name, string([]byte{sign, letter})}
			if arg != "" {
				modeParams = append(modeParams, arg)
			}
			ch.broadcast(NewRawMessage(cmdMode, modeParams, hostmask))
		}

		adding := true

		for i := 0; i < len(changes); i++ {
			switch changes[i] {
			case '+':
				adding = true
			case '-':
				adding = false
			case 'o', 'v':
				nick := nextArg()
				subject, ok := ch.memberByNick(nick)
				if !ok {
					continue
				}
				flag := flagOperator
				if changes[i] == 'v' {
					flag = flagVoice
				}
				if adding {
					subject.promote(flag)
				} else {
					subject.demote(flag)
				}
				broadcastChange(boolToSign(adding), changes[i], nick)
			case 'b':
				maskArg := nextArg()
				if maskArg == "" {
					for _, bm := range ch.banMasks {
						peer.SendReply(serverName, ReplyBanList, []string{name, bm.String()})
					}
					peer.SendReply(serverName, ReplyEndOfBanList, []string{name, "End of channel ban list"})
					continue
				}
				if adding {
					ch.banMasks[maskArg] = NewHostMask(maskArg)
				} else {
					delete(ch.banMasks, maskArg)
				}
				broadcastChange(boolToSign(adding), 'b', maskArg)
			case 'e':
				maskArg := nextArg()
				if maskArg == "" {
					for _, em := range ch.exceptMasks {
						peer.SendReply(serverName, ReplyExceptList, []string{name, em.String()})
					}
					peer.SendReply(serverName, ReplyEndOfExceptList, []string{name, "End of channel exception list"})
					continue
				}
				if adding {
					ch.exceptMasks[maskArg] = NewHostMask(maskArg)
				} else {
					delete(ch.exceptMasks, maskArg)
				}
				broadcastChange(boolToSign(adding), 'e', maskArg)
			case 'I':
				maskArg := nextArg()
				if maskArg == "" {
					for _, im := range ch.inviteMasks {
						peer.SendReply(serverName, ReplyInviteList, []string{name, im.String()})
					}
					peer.SendReply(serverName, ReplyEndOfInviteList, []string{name, "End of channel invite list"})
					continue
				}
				if adding {
					ch.inviteMasks[maskArg] = NewHostMask(maskArg)
				} else {
					delete(ch.inviteMasks, maskArg)
				}
				broadcastChange(boolToSign(adding), 'I', maskArg)
			case 'k':
				if adding {
					key := nextArg()
					if key == "" {
						continue
					}
					ch.password = key
					ch.hasKey = true
					broadcastChange('+', 'k', key)
				} else {
					ch.password = ""
					ch.hasKey = false
					broadcastChange('-', 'k', "")
				}
			case 'l':
				if adding {
					limArg := nextArg()
					limit, err := strconv.Atoi(limArg)
					if err != nil || limit <= 0 {
						continue
					}
					ch.limit = limit
					ch.hasLimit = true
					broadcastChange('+', 'l', limArg)
				} else {
					ch.hasLimit = false
					ch.limit = 0
					broadcastChange('-', 'l', "")
				}
			case 'a', 'i', 'm', 'n', 'q', 'p', 's', 'r', 't':
				f := channelFlag(changes[i])
				if adding {
					ch.addFlag(f)
				} else {
					ch.removeFlag(f)
				}
				broadcastChange(boolToSign(adding), changes[i], "")
			default:
				// Unknown mode letters, and 'O' (granted only to a channel's
				// first joiner), are skipped without a reply.
			}
		}
	}))
}

func boolToSign(adding bool) byte {
	if adding {
		return '+'
	}
	return '-'
}

func (s *Server) handleOper(c *Client, params []string) {
	if len(params) < 2 {
		c.peer.SendReply(s.Config.ServerName, ErrNeedMoreParams, []string{cmdOper, "Not enough parameters"})
		return
	}

	name, password := params[0], params[1]
	expected, known := s.Config.Opers[name]
	if !known || expected != password {
		c.peer.SendReply(s.Config.ServerName, ErrPasswdMismatch, []string{"Password incorrect"})
		return
	}

	c.info.setOperator(true)
	c.peer.SendReply(s.Config.ServerName, ReplyYoureOper, []string{"You are now an IRC operator"})
}
