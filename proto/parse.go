// Command table
//
// Copyright (c) 2024, 2025  Jakub Silhavy
//
// This file is part of the Connect4 server.
//
// The Connect4 server is free software: you can redistribute it and/or
// modify it under the terms of the GNU Affero General Public License,
// version 3, as published by the Free Software Foundation.
//
// The Connect4 server is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
// Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public
// License, version 3, along with the Connect4 server.  If not, see
// <http://www.gnu.org/licenses/>

package proto

import (
	"sort"
	"strings"

	connect4 "github.com/silhavyj/Connect4-server-client-game"
)

// Kind identifies a client command.
type Kind uint8

const (
	Unknown Kind = iota
	Exit
	Ping
	GetState
	GetNick
	Help
	GetAllClients
	SetNick
	Invite
	CancelInvite
	Reply
	CancelGame
	Play
)

type command struct {
	kind  Kind
	valid func([]string) bool
	descr string
}

func arity(n int) func([]string) bool {
	return func(tokens []string) bool { return len(tokens) == n }
}

var commands = map[string]command{
	"EXIT":         {Exit, arity(1), "leaves the server"},
	"PING":         {Ping, arity(1), "pings the server (test)"},
	"/STATE":       {GetState, arity(1), "returns client's current state"},
	"/NICK":        {GetNick, arity(1), "returns client's nick"},
	"/HELP":        {Help, arity(1), "prints out help"},
	"/ALL_CLIENTS": {GetAllClients, arity(1), "returns nicks of all clients connected to the server"},

	"NICK": {SetNick, arity(2), "<nick> sets the client's nick to the value given as a parameter (one word)"},
	"RQ":   {Invite, arity(2), "<nick> sends a game request to the client"},
	"RQ_CANCELED": {CancelInvite, arity(2),
		"<nick> cancels the game request sent to the client"},
	"RPL": {Reply, validReply, "<nick> <YES/NO> accepts/rejects the game request sent from the client"},

	"GAME_CANCELED": {CancelGame, arity(1), "exists the current game"},
	"GAME_PLAY":     {Play, validPlay, "x plays the game (one move)"},
}

func validReply(tokens []string) bool {
	if len(tokens) != 3 {
		return false
	}
	return tokens[2] == "YES" || tokens[2] == "NO"
}

func validPlay(tokens []string) bool {
	if len(tokens) != 2 {
		return false
	}
	col := 0
	for _, c := range tokens[1] {
		if c < '0' || c > '9' {
			return false
		}
		if col = col*10 + int(c-'0'); col >= connect4.Columns {
			return false
		}
	}
	return true
}

// Parse splits RAW into tokens and identifies the command.  A keyword
// whose argument check fails is Unknown, just like a keyword that is
// not in the table.
func Parse(raw string) (Kind, []string) {
	tokens := strings.Fields(raw)
	if len(tokens) == 0 {
		return Unknown, nil
	}
	cmd, ok := commands[tokens[0]]
	if !ok || !cmd.valid(tokens) {
		return Unknown, tokens
	}
	return cmd.kind, tokens
}

// HelpLines returns one description per command, in keyword order.
func HelpLines() []string {
	keys := make([]string, 0, len(commands))
	for k := range commands {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, len(keys))
	for i, k := range keys {
		lines[i] = k + " " + commands[k].descr
	}
	return lines
}
