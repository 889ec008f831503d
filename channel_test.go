package main

import "testing"

func newTestPeer(nick string, queue chan RawMessage) Peer {
	info := NewUserInfo(newPeerId(1), "irc.test", "host.example")
	info.setNick(nick)
	info.setUser("user", "Real Name")
	return NewPeer(info, queue)
}

func TestChannelAddRemoveMember(t *testing.T) {
	ch := NewChannel("#dev", "irc.test")
	queue := make(chan RawMessage, 4)
	m := newMember(newTestPeer("alice", queue))

	if !ch.addMember(m) {
		t.Fatal("expected addMember to succeed")
	}
	if ch.addMember(m) {
		t.Fatal("expected second addMember of same peer to fail")
	}
	if ch.memberCount() != 1 {
		t.Fatalf("memberCount() = %d, want 1", ch.memberCount())
	}

	found, ok := ch.memberByNick("ALICE")
	if !ok || found.nick != "alice" {
		t.Fatal("expected case-insensitive lookup to find alice")
	}

	if !ch.removeMember(m.id) {
		t.Fatal("expected removeMember to succeed")
	}
	if ch.memberCount() != 0 {
		t.Fatalf("memberCount() = %d, want 0 after removal", ch.memberCount())
	}
}

func TestChannelFlagString(t *testing.T) {
	ch := NewChannel("#dev", "irc.test", flagModerated, flagTopicProtect)
	if got := ch.flagString(); got != "mt" {
		t.Errorf("flagString() = %q, want %q", got, "mt")
	}
}

func TestMemberDecoratedNick(t *testing.T) {
	queue := make(chan RawMessage, 1)
	m := newMember(newTestPeer("bob", queue))

	if got := m.decoratedNick(); got != "bob" {
		t.Errorf("decoratedNick() = %q, want %q", got, "bob")
	}
	m.promote(flagVoice)
	if got := m.decoratedNick(); got != "+bob" {
		t.Errorf("decoratedNick() = %q, want %q", got, "+bob")
	}
	m.promote(flagOperator)
	if got := m.decoratedNick(); got != "@bob" {
		t.Errorf("decoratedNick() = %q, want %q (op outranks voice)", got, "@bob")
	}
}

func TestChannelBroadcastExcept(t *testing.T) {
	ch := NewChannel("#dev", "irc.test")
	aQueue := make(chan RawMessage, 4)
	bQueue := make(chan RawMessage, 4)
	a := newMember(newTestPeer("alice", aQueue))
	b := newMember(newTestPeer("bob", bQueue))
	ch.addMember(a)
	ch.addMember(b)

	ch.broadcastExcept(NewRawMessage(cmdJoin, []string{"#dev"}, "alice!user@host"), a.id)

	select {
	case <-aQueue:
		t.Fatal("broadcastExcept should not have queued a message for the excluded member")
	default:
	}

	select {
	case msg := <-bQueue:
		if msg.Command() != cmdJoin {
			t.Errorf("bob received command %q, want %q", msg.Command(), cmdJoin)
		}
	default:
		t.Fatal("expected bob to receive the broadcast message")
	}
}

// TestChannelProxyDispatch checks that events sent to a ChannelProxy are
// processed by its actor goroutine in send order, using a trailing read-only
// event that reports the member count as a barrier.
func TestChannelProxyDispatch(t *testing.T) {
	lost := make(chan channelLost, 1)
	proxy := listenChannel(NewChannel("#dev", "irc.test"), lost)

	queue := make(chan RawMessage, 1)
	peer := newTestPeer("alice", queue)

	proxy.Send(HandleMut(func(ch *Channel) {
		ch.addMember(newMember(peer))
	}))

	done := make(chan int)
	proxy.Send(Handle(func(ch *Channel) {
		done <- ch.memberCount()
	}))

	if got := <-done; got != 1 {
		t.Fatalf("memberCount() after actor processed AddMember = %d, want 1", got)
	}
}
