package main

import (
	"log"
	"strings"

	"github.com/gobwas/glob"
)

// HostMask is a nick!user@host pattern with '*' wildcards, used for ban,
// exception, and invite matching. Matching is left-to-right; '*' greedily
// consumes until the next literal character matches; a trailing '*' matches
// any remainder. Non-'*' bytes must match literally (case-sensitive).
type HostMask struct {
	raw     string
	pattern glob.Glob
}

// NewHostMask compiles s into a matchable HostMask. The only special
// character is '*'; every other glob metacharacter ('?', '[', ']', '{', '}',
// '\') is escaped so it matches itself literally, matching the spec's
// fnmatch-style rule that only '*' is a wildcard. A mask that still fails to
// compile is kept around but never matches anything, rather than panicking
// the channel actor that applies it.
func NewHostMask(s string) HostMask {
	pattern, err := glob.Compile(escapeForGlob(s), '\x00')
	if err != nil {
		log.Printf("hostmask: %q does not compile as a mask, it will never match: %s", s, err)
		return HostMask{raw: s}
	}
	return HostMask{raw: s, pattern: pattern}
}

// escapeForGlob neutralises every glob metacharacter gobwas/glob recognises
// except '*', so HostMask only ever treats '*' as special, per the spec.
func escapeForGlob(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '?', '[', ']', '{', '}', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}

// String returns the mask's original pattern text.
func (h HostMask) String() string { return h.raw }

// Matches reports whether s matches this mask. A mask that failed to compile
// never matches.
func (h HostMask) Matches(s string) bool {
	if h.pattern == nil {
		return false
	}
	return h.pattern.Match(s)
}
