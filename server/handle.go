// Session dispatch
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

package server

import (
	"errors"
	"strconv"
	"sync/atomic"

	connect4 "github.com/silhavyj/Connect4-server-client-game"
	"github.com/silhavyj/Connect4-server-client-game/game"
	"github.com/silhavyj/Connect4-server-client-game/proto"
)

// handle is the session's reader loop.  It owns all state transitions
// and runs until the client leaves, misbehaves or disappears.
func (c *Client) handle() {
	defer c.srv.remove(c)
	connect4.Info.Printf("thread handling client %s started successfully", c)

	go c.watchNick()
	go c.watchPing()

	for {
		raw, err := c.codec.ReadFrame(c.alive)
		switch {
		case errors.Is(err, proto.ErrFraming):
			connect4.Err.Printf("client %s violated the wire format: %s", c, err)
			c.Send(connect4.MsgInvalidProtocol + " unknown message")
			c.srv.kick(c)
			return
		case err != nil:
			connect4.Warning.Printf("lost connection with the client %s", c)
			c.srv.lostConnection(c)
			return
		}
		if raw == "" {
			continue
		}
		connect4.Msg.Printf("received message from client %s: '%s'", c, raw)
		if over := c.srv.dispatch(c, raw); over {
			return
		}
	}
}

// dispatch interprets one message and reports whether the session is
// over.
func (s *Server) dispatch(c *Client, raw string) bool {
	kind, tokens := proto.Parse(raw)
	switch kind {
	case proto.Unknown:
		connect4.Err.Printf("client %s sent an unknown message: '%s'", c, raw)
		c.Send(connect4.MsgInvalidProtocol + " unknown message")
		s.kick(c)
		return true

	case proto.Exit:
		return s.handleExit(c)

	case proto.Ping:
		atomic.StoreUint32(&c.pinged, 1)
		c.Send(connect4.MsgOK)
		return false

	case proto.GetState:
		c.Send(strconv.Itoa(int(c.State())))
		return false

	case proto.GetNick:
		c.Send(c.Nick())
		return false

	case proto.GetAllClients:
		c.Send(s.allNicks())
		return false

	case proto.Help:
		// One frame per command keeps each reply within the frame cap
		for _, line := range proto.HelpLines() {
			c.Send(line)
		}
		return false
	}

	switch c.State() {
	case connect4.AwaitNick:
		return s.handleAwaitNick(c, kind, tokens)
	case connect4.Lobby:
		return s.handleLobby(c, kind, tokens)
	case connect4.SentInvite:
		return s.handleSentInvite(c, kind, tokens)
	case connect4.ReceivedInvite:
		return s.handleReceivedInvite(c, kind, tokens)
	case connect4.InGame:
		return s.handleInGame(c, kind, tokens)
	}
	return true
}

// kick removes a misbehaving session, cleaning up whatever match or
// invitation it was part of.  The caller has already sent the
// INVALID_PROTOCOL explanation, if one is due.
func (s *Server) kick(c *Client) {
	switch c.State() {
	case connect4.InGame:
		s.dissolveRoom(c.Nick(),
			"your opponent was not following the protocol and was kicked out of the server")
	case connect4.SentInvite, connect4.ReceivedInvite:
		s.cancelInviteFor(c)
	}
	s.remove(c)
}

// lostConnection handles a disconnect: a session in a match gets the
// reconnect grace period, everything else is cleaned up for good.
func (s *Server) lostConnection(c *Client) {
	switch c.State() {
	case connect4.InGame:
		s.beginReconnectWait(c)
	case connect4.SentInvite, connect4.ReceivedInvite:
		s.cancelInviteFor(c)
	}
	s.remove(c)
}

func (s *Server) handleExit(c *Client) bool {
	if c.State() == connect4.InGame {
		s.dissolveRoom(c.Nick(),
			"your opponent has suddenly left the server (on purpose)")
	}
	c.Send(connect4.MsgOK)
	s.cancelInviteFor(c)
	s.remove(c)
	return true
}

func (s *Server) handleAwaitNick(c *Client, kind proto.Kind, tokens []string) bool {
	if kind != proto.SetNick {
		connect4.Err.Printf(
			"client %s is not following the protocol by not setting their name first", c)
		c.Send(connect4.MsgInvalidProtocol + " you are supposed to set your nick first")
		s.remove(c)
		return true
	}

	nick := tokens[1]
	if !s.register(nick, c) {
		connect4.Err.Printf(
			"client %s is trying to set their nick to a name that already exists ('%s'). Closing their connection.",
			c, nick)
		s.remove(c)
		return true
	}
	c.setNick(nick)
	c.setState(connect4.Lobby)

	s.broadcast(nick, connect4.MsgAddClient+" "+nick)
	c.Send(connect4.MsgOK)

	// The newcomer gets the lobby snapshot: who is online, who is busy
	for _, other := range s.others(nick) {
		c.Send(connect4.MsgAddClient + " " + other.Nick())
	}
	for _, other := range s.others(nick) {
		if other.State().Busy() {
			c.Send(connect4.MsgGamePlayerState + " " + other.Nick() + " OFF")
		}
	}
	connect4.Info.Printf("client %s just set their nick to '%s'", c, nick)

	if opponent, ok := s.takeWaiter(nick); ok {
		s.rejoinGame(c, opponent)
	}
	return false
}

func (s *Server) handleLobby(c *Client, kind proto.Kind, tokens []string) bool {
	if kind != proto.Invite {
		connect4.Err.Printf(
			"client %s is in the lobby and not sending a game request to another client", c)
		c.Send(connect4.MsgInvalidProtocol +
			" in the lobby, you're supposed to send a game request to another player")
		s.kick(c)
		return true
	}

	receiver := tokens[1]
	nick := c.Nick()
	switch state, ok := s.stateOf(receiver); {
	case !ok:
		connect4.Err.Printf(
			"client %s is attempting to send a game request to client '%s' that does not exist",
			c, receiver)
		c.Send(connect4.MsgInvalidProtocol + " there is no client with nick '" + receiver + "'")
		s.kick(c)
		return true
	case receiver == nick:
		connect4.Err.Printf("client %s is attempting to send a game request to himself", c)
		c.Send(connect4.MsgInvalidProtocol + " you cannot send a game request to yourself")
		s.kick(c)
		return true
	case state != connect4.Lobby:
		connect4.Err.Printf(
			"client %s is attempting to send a game request to client '%s' that is now already playing a game",
			c, receiver)
		c.Send(connect4.MsgInvalidProtocol +
			" you cannot send a game request to a client that is already playing a game")
		s.kick(c)
		return true
	}

	c.setState(connect4.SentInvite)
	s.setStateOf(receiver, connect4.ReceivedInvite)
	gen := s.addInvite(nick, receiver)

	c.Send(connect4.MsgOK)
	s.sendTo(receiver, connect4.MsgRq+" "+nick)
	s.broadcast(nick, connect4.MsgGamePlayerState+" "+nick+" OFF")
	s.broadcast(receiver, connect4.MsgGamePlayerState+" "+receiver+" OFF")

	go s.waitReply(nick, receiver, gen)
	return false
}

func (s *Server) handleSentInvite(c *Client, kind proto.Kind, tokens []string) bool {
	if kind != proto.CancelInvite {
		connect4.Err.Printf(
			"client %s is supposed to either wait for a reply to the game request or cancel it", c)
		c.Send(connect4.MsgInvalidProtocol +
			" you can either cancel the request or wait for a reply from the other player")
		s.kick(c)
		return true
	}

	nick := c.Nick()
	receiver, _ := s.invitePeer(nick)
	switch {
	case s.lookup(tokens[1]) == nil:
		connect4.Err.Printf(
			"client %s is attempting to cancel a game request from client '%s' that does not exist",
			c, tokens[1])
		c.Send(connect4.MsgInvalidProtocol + " there is no client with nick '" + tokens[1] + "'")
		s.kick(c)
		return true
	case tokens[1] != receiver:
		connect4.Err.Printf(
			"client %s is attempting to cancel someone else's game request - client '%s'",
			c, tokens[1])
		c.Send(connect4.MsgInvalidProtocol + " you can only cancel your own game request")
		s.kick(c)
		return true
	}

	s.takeInvite(nick)
	c.setState(connect4.Lobby)
	s.setStateOf(receiver, connect4.Lobby)

	c.Send(connect4.MsgOK)
	s.sendTo(receiver, connect4.MsgRqCanceled+" "+nick)
	s.broadcast(nick, connect4.MsgGamePlayerState+" "+nick+" ON")
	s.broadcast(receiver, connect4.MsgGamePlayerState+" "+receiver+" ON")
	return false
}

func (s *Server) handleReceivedInvite(c *Client, kind proto.Kind, tokens []string) bool {
	nick := c.Nick()
	sender, _ := s.invitePeer(nick)

	if kind != proto.Reply {
		connect4.Err.Printf(
			"client %s is supposed to reply to the game request (accept or reject)", c)
		c.Send(connect4.MsgInvalidProtocol + " you're supposed to reply to the game request")
		s.kick(c)
		return true
	}
	switch {
	case s.lookup(tokens[1]) == nil:
		connect4.Err.Printf(
			"client %s is attempting to reply to a game request from client '%s' that does not exist",
			c, tokens[1])
		c.Send(connect4.MsgInvalidProtocol + " there is no client with nick '" + tokens[1] + "'")
		s.kick(c)
		return true
	case tokens[1] != sender:
		connect4.Err.Printf(
			"client %s is attempting to reply to a game request from client '%s' that did not send him the game request",
			c, tokens[1])
		c.Send(connect4.MsgInvalidProtocol + " client '" + tokens[1] + "' did not send you the game request")
		s.kick(c)
		return true
	}

	s.takeInvite(nick)
	if tokens[2] == "YES" {
		c.setState(connect4.InGame)
		s.setStateOf(sender, connect4.InGame)

		c.Send(connect4.MsgGameStart + " " + sender)
		s.sendTo(sender, connect4.MsgGameStart+" "+nick)

		// The inviter moves first
		s.addRoom(game.NewRoom(s, sender, nick, s.conf.TurnTimeout))
		connect4.Game.Printf("a game between clients '%s' and '%s' just started",
			sender, nick)
	} else {
		c.setState(connect4.Lobby)
		s.setStateOf(sender, connect4.Lobby)

		s.sendTo(sender, connect4.MsgRqCanceled+" "+nick)
		c.Send(connect4.MsgOK)
		s.broadcast(nick, connect4.MsgGamePlayerState+" "+nick+" ON")
		s.broadcast(sender, connect4.MsgGamePlayerState+" "+sender+" ON")

		connect4.Info.Printf("client '%s' rejected a game request sent from client '%s'",
			nick, sender)
	}
	return false
}

func (s *Server) handleInGame(c *Client, kind proto.Kind, tokens []string) bool {
	nick := c.Nick()
	switch kind {
	case proto.Play:
		col, _ := strconv.Atoi(tokens[1])
		if room := s.room(nick); room != nil {
			room.Play(nick, col)
		}
		return false

	case proto.CancelGame:
		connect4.Game.Printf("client '%s' canceled the game", nick)
		s.dissolveRoom(nick, "your opponent canceled the game")
		c.Send(connect4.MsgGameCanceled + " you just canceled the game")
		return false

	default:
		connect4.Err.Printf("client '%s' is playing a game and not following the protocol",
			nick)
		s.dissolveRoom(nick,
			"your opponent was not following the protocol and was kicked out of the server")
		c.Send(connect4.MsgInvalidProtocol +
			" when you're playing a game, you're supposed to either play or cancel it")
		s.remove(c)
		return true
	}
}
