package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRawMessage(t *testing.T) {
	m, err := ParseRawMessage([]byte(":prefix JOIN #channel"))
	require.NoError(t, err)
	assert.Equal(t, "prefix", m.Prefix())
	assert.Equal(t, "JOIN", m.Command())
	assert.Equal(t, []string{"#channel"}, m.Params())
}

func TestParseRawMessageNoPrefix(t *testing.T) {
	m, err := ParseRawMessage([]byte("PRIVMSG #channel :hello there"))
	require.NoError(t, err)
	assert.False(t, m.HasPrefix())
	assert.Equal(t, "PRIVMSG", m.Command())
	assert.Equal(t, []string{"#channel", "hello there"}, m.Params())
}

func TestParseRawMessageEmptyTrailing(t *testing.T) {
	m, err := ParseRawMessage([]byte("PRIVMSG #channel :"))
	require.NoError(t, err)
	assert.Equal(t, []string{"#channel", ""}, m.Params())
}

func TestParseRawMessageNoParams(t *testing.T) {
	m, err := ParseRawMessage([]byte("PING"))
	require.NoError(t, err)
	assert.Equal(t, "PING", m.Command())
	assert.Empty(t, m.Params())
}

func TestParseRawMessageMissingCommand(t *testing.T) {
	_, err := ParseRawMessage([]byte(""))
	assert.Error(t, err)
}

func TestSetPrefix(t *testing.T) {
	m, err := ParseRawMessage([]byte(":prefix JOIN #channel"))
	require.NoError(t, err)
	m.SetPrefix("new prefix")
	assert.Equal(t, "new prefix", m.Prefix())
	assert.Equal(t, "JOIN", m.Command())
	assert.Equal(t, []string{"#channel"}, m.Params())
	assert.Equal(t, ":new prefix JOIN #channel", m.String())
}

func TestSetPrefixIdempotent(t *testing.T) {
	m, err := ParseRawMessage([]byte(":prefix JOIN #channel"))
	require.NoError(t, err)
	m.SetPrefix("a")
	m.SetPrefix("final")
	want, err := ParseRawMessage([]byte(":prefix JOIN #channel"))
	require.NoError(t, err)
	want.SetPrefix("final")
	assert.Equal(t, want.String(), m.String())
}

func TestSetPrefixNoExistingPrefix(t *testing.T) {
	m, err := ParseRawMessage([]byte("JOIN #channel"))
	require.NoError(t, err)
	m.SetPrefix("server.example")
	assert.Equal(t, "server.example", m.Prefix())
	assert.Equal(t, ":server.example JOIN #channel", m.String())
}

func TestNewRawMessage(t *testing.T) {
	m := NewRawMessage("JOIN", []string{"#channel"}, "prefix")
	assert.Equal(t, "prefix", m.Prefix())
	assert.Equal(t, "JOIN", m.Command())
	assert.Equal(t, []string{"#channel"}, m.Params())
	assert.Equal(t, ":prefix JOIN :#channel", m.String())
}

// Round-trip law from the spec: parse(render(M)) == M for every legal
// message, modulo trailing-parameter whitespace normalisation.
func TestRoundTripLaw(t *testing.T) {
	cases := []struct {
		command string
		params  []string
		prefix  string
	}{
		{"PRIVMSG", []string{"#dev", "hello world"}, "alice!a@host"},
		{"MODE", []string{"#dev", "+o", "bob"}, "alice"},
		{"001", []string{"alice", "Welcome"}, "irc.example"},
		{"PING", nil, ""},
		{"NICK", []string{"alice"}, ""},
	}
	for _, c := range cases {
		m := NewRawMessage(c.command, c.params, c.prefix)
		reparsed, err := ParseRawMessage(m.Bytes())
		require.NoError(t, err)
		assert.Equal(t, m.Prefix(), reparsed.Prefix())
		assert.Equal(t, m.Command(), reparsed.Command())
		assert.Equal(t, m.Params(), reparsed.Params())
	}
}

func TestClone(t *testing.T) {
	m := NewRawMessage("JOIN", []string{"#channel"}, "alice")
	c := m.Clone()
	c.SetPrefix("bob")
	assert.Equal(t, "alice", m.Prefix())
	assert.Equal(t, "bob", c.Prefix())
}
