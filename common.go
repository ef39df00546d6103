// Common types and protocol constants
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

package connect4

import "fmt"

// State is the lifecycle state of one client session.  The numeric
// values are part of the protocol: /STATE replies with the ordinal.
type State uint8

const (
	AwaitNick      State = iota // connected, no nick chosen yet
	Lobby                       // free to send or receive game requests
	SentInvite                  // sent a game request, awaiting the reply
	ReceivedInvite              // received a game request, must reply
	InGame                      // playing a game
	Terminating                 // being torn down; timers must exit
)

func (s State) String() string {
	switch s {
	case AwaitNick:
		return "AwaitNick"
	case Lobby:
		return "Lobby"
	case SentInvite:
		return "SentInvite"
	case ReceivedInvite:
		return "ReceivedInvite"
	case InGame:
		return "InGame"
	case Terminating:
		return "Terminating"
	default:
		panic(fmt.Sprintf("Illegal state: %d", uint8(s)))
	}
}

// Busy reports whether a client in this state is shown as unavailable
// in the lobby (GAME_PLAYER_STATE ... OFF).
func (s State) Busy() bool {
	return s == SentInvite || s == ReceivedInvite || s == InGame
}

// UndefinedNick is the reserved placeholder a session carries before a
// nick has been chosen.  Clients may not claim it.
const UndefinedNick = "UNDEFINED_NICK"

// Keywords of messages sent from the server to clients.
const (
	MsgOK               = "OK"
	MsgInvalidProtocol  = "INVALID_PROTOCOL"
	MsgAddClient        = "ADD_CLIENT"
	MsgRemoveClient     = "REMOVE_CLIENT"
	MsgRq               = "RQ"
	MsgRqCanceled       = "RQ_CANCELED"
	MsgGameStart        = "GAME_START"
	MsgGameCanceled     = "GAME_CANCELED"
	MsgGamePlay         = "GAME_PLAY"
	MsgGameMsg          = "GAME_MSG"
	MsgGameRecovery     = "GAME_RECOVERY"
	MsgGamePlayerState  = "GAME_PLAYER_STATE"
	MsgGameWinningTails = "GAME_WINNING_TAILS"
	MsgGameResult       = "GAME_RESULT"
)
