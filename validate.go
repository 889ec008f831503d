package main

import "strings"

// defaultMaxNickLength is the default from the spec grammar. The limit the
// handlers apply is Config.MaxNickLength, taken as configured; no floor is
// enforced on it.
const defaultMaxNickLength = 9

// 50 from RFC.
const maxChannelLength = 50

// isSpecial reports whether r is one of the nick grammar's "special" octets:
// %x5B-60 / %x7B-7D, i.e. [\]^_`{|}.
func isSpecial(r byte) bool {
	return (r >= 0x5B && r <= 0x60) || (r >= 0x7B && r <= 0x7D)
}

func isLetter(r byte) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

func isDigit(r byte) bool {
	return r >= '0' && r <= '9'
}

// isValidNick checks a nick against:
//
//	nick = ( letter / special ) 0*8( letter / digit / special / "-" )
//
// maxLen overrides the trailing-run length bound (the spec fixes total
// length at 9; Config.MaxNickLength may raise that ceiling).
func isValidNick(maxLen int, n string) bool {
	if len(n) == 0 || len(n) > maxLen {
		return false
	}
	if !isLetter(n[0]) && !isSpecial(n[0]) {
		return false
	}
	for i := 1; i < len(n); i++ {
		c := n[i]
		if isLetter(c) || isDigit(c) || isSpecial(c) || c == '-' {
			continue
		}
		return false
	}
	return true
}

// isValidUser checks a USER command's <user> parameter. RFC is lenient here;
// we exclude only the octets that would break the wire grammar (space, NUL,
// CR, LF, '@').
func isValidUser(u string) bool {
	if len(u) == 0 {
		return false
	}
	for i := 0; i < len(u); i++ {
		switch u[i] {
		case ' ', 0, '\r', '\n', '@':
			return false
		}
	}
	return true
}

// isValidChannel checks a channel name: starts with '#' or '&', does not
// contain ' ', ',', or 0x07 (BELL), length >= 2.
//
// Canonicalize before calling this (case folding is done by the caller).
func isValidChannel(c string) bool {
	if len(c) < 2 || len(c) > maxChannelLength {
		return false
	}
	if c[0] != '#' && c[0] != '&' {
		return false
	}
	for i := 1; i < len(c); i++ {
		switch c[i] {
		case ' ', ',', 0x07:
			return false
		}
	}
	return true
}

// canonicalizeNick converts n to its canonical (unique-comparison) form.
//
// Note: this does not validate or trim whitespace.
func canonicalizeNick(n string) string {
	return strings.ToLower(n)
}

// canonicalizeChannel converts c to its canonical (unique-comparison) form.
func canonicalizeChannel(c string) string {
	return strings.ToLower(c)
}

// receiverKind classifies a PRIVMSG/NOTICE/MODE target.
type receiverKind int

const (
	receiverInvalid receiverKind = iota
	receiverChannel
	receiverNick
)

// classifyReceiver checks whether name is a valid channel name or a valid
// nick, per the spec's Receiver grammar (§4.B).
func classifyReceiver(maxNickLen int, name string) receiverKind {
	if isValidChannel(name) {
		return receiverChannel
	}
	if isValidNick(maxNickLen, name) {
		return receiverNick
	}
	return receiverInvalid
}
