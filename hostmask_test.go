package main

import "testing"

func TestHostMaskMatches(t *testing.T) {
	cases := []struct {
		mask, s string
		want    bool
	}{
		{"*!*@evil.example", "charlie!c@evil.example", true},
		{"*!*@evil.example", "charlie!c@good.example", false},
		{"*!charlie@*", "charlie!charlie@anywhere", true},
		{"alice!*@*", "alice!a@host", true},
		{"alice!*@*", "bob!a@host", false},
	}
	for _, c := range cases {
		m := NewHostMask(c.mask)
		if got := m.Matches(c.s); got != c.want {
			t.Errorf("NewHostMask(%q).Matches(%q) = %v, want %v", c.mask, c.s, got, c.want)
		}
	}
}
