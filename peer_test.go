package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPeerIdUnique(t *testing.T) {
	a := newPeerId(1)
	b := newPeerId(1)
	assert.Equal(t, a.addrHi, b.addrHi)
	assert.NotEqual(t, a.rand, b.rand, "two PeerIds minted for the same address should not collide")
}

func TestUserInfoRegistrationFlow(t *testing.T) {
	info := NewUserInfo(newPeerId(1), "irc.test", "host.example")
	assert.Equal(t, "*", info.Nick())
	assert.False(t, info.readyToRegister())

	info.setNick("alice")
	assert.False(t, info.readyToRegister(), "nick alone is not enough to register")

	info.setUser("alice", "Alice Example")
	assert.True(t, info.readyToRegister())

	info.markRegistered()
	assert.Equal(t, statusRegistered, info.Status())
	assert.Equal(t, "alice!alice@host.example", info.PublicHostMask())
}

func TestUserInfoOperatorFlag(t *testing.T) {
	info := NewUserInfo(newPeerId(1), "irc.test", "host.example")
	assert.False(t, info.IsOperator())
	info.setOperator(true)
	assert.True(t, info.IsOperator())
}

func TestChannelSetAddRemove(t *testing.T) {
	set := newChannelSet()
	proxy := &ChannelProxy{name: "#dev"}

	assert.False(t, set.has("#dev"))
	set.add("#dev", proxy)
	assert.True(t, set.has("#dev"))

	snap := set.snapshot()
	assert.Len(t, snap, 1)

	set.remove("#dev")
	assert.False(t, set.has("#dev"))
}
