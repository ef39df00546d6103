package proto

import (
	"sort"
	"strings"
	"testing"
)

func TestParse(t *testing.T) {
	for _, test := range []struct {
		raw  string
		kind Kind
	}{
		{"EXIT", Exit},
		{"EXIT now", Unknown},
		{"PING", Ping},
		{"/STATE", GetState},
		{"/NICK", GetNick},
		{"/HELP", Help},
		{"/ALL_CLIENTS", GetAllClients},
		{"NICK joe", SetNick},
		{"  NICK   joe  ", SetNick},
		{"NICK", Unknown},
		{"NICK joe doe", Unknown},
		{"RQ joe", Invite},
		{"RQ_CANCELED joe", CancelInvite},
		{"RPL joe YES", Reply},
		{"RPL joe NO", Reply},
		{"RPL joe MAYBE", Unknown},
		{"RPL joe", Unknown},
		{"GAME_CANCELED", CancelGame},
		{"GAME_PLAY 0", Play},
		{"GAME_PLAY 6", Play},
		{"GAME_PLAY 7", Unknown},
		{"GAME_PLAY -1", Unknown},
		{"GAME_PLAY x", Unknown},
		{"GAME_PLAY", Unknown},
		{"", Unknown},
		{"frobnicate", Unknown},
	} {
		if kind, _ := Parse(test.raw); kind != test.kind {
			t.Errorf("Parse(%q) = %v, expected %v", test.raw, kind, test.kind)
		}
	}
}

func TestParseTokens(t *testing.T) {
	kind, tokens := Parse("RPL joe YES")
	if kind != Reply {
		t.Fatalf("unexpected kind %v", kind)
	}
	if len(tokens) != 3 || tokens[1] != "joe" || tokens[2] != "YES" {
		t.Errorf("unexpected tokens %q", tokens)
	}
}

func TestHelpLines(t *testing.T) {
	lines := HelpLines()
	if len(lines) != len(commands) {
		t.Fatalf("%d lines for %d commands", len(lines), len(commands))
	}
	if !sort.StringsAreSorted(lines) {
		t.Error("help lines are not sorted")
	}
	for _, l := range lines {
		if strings.HasPrefix(l, "EXIT ") && l != "EXIT leaves the server" {
			t.Errorf("unexpected description %q", l)
		}
	}
}
