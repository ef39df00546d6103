// Server core
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
	"fmt"
	"io"
	"sync/atomic"
	"time"

	connect4 "github.com/silhavyj/Connect4-server-client-game"
	"github.com/silhavyj/Connect4-server-client-game/conf"
)

// Server hosts the sessions and the matches between them.  It
// implements game.Sink, so rooms report through it without knowing
// about sessions or sockets.
type Server struct {
	conf *conf.Conf
	registry

	count int64 // admitted sessions, including unregistered ones
}

func New(c *conf.Conf) *Server {
	return &Server{conf: c, registry: makeRegistry()}
}

// Admit takes ownership of a fresh connection.  Over capacity the
// connection is closed right away, without a session.
func (s *Server) Admit(rwc io.ReadWriteCloser, addr string) {
	connect4.Info.Printf("new client (%s) just got connected to the server", addr)
	for {
		n := atomic.LoadInt64(&s.count)
		if n >= int64(s.conf.MaxClients) {
			connect4.Warning.Printf("the maximum number of clients has been reached")
			connect4.Warning.Printf("disconnecting client %s from the server", addr)
			rwc.Close()
			return
		}
		if atomic.CompareAndSwapInt64(&s.count, n, n+1) {
			break
		}
	}

	c := newClient(s, rwc, addr)
	go c.handle()
}

// sendTo delivers MSG to the session registered under NICK, if any.
func (s *Server) sendTo(nick, msg string) {
	c := s.lookup(nick)
	if c == nil {
		connect4.Warning.Printf(
			"trying to send a message to client '%s' that no longer exists", nick)
		return
	}
	c.Send(msg)
}

// Send implements game.Sink.
func (s *Server) Send(nick, msg string) { s.sendTo(nick, msg) }

// Dissolve implements game.Sink.
func (s *Server) Dissolve(player, msg string) {
	s.dissolveRoom(player, msg)
}

// broadcast sends MSG to every registered session except EXCEPT.  The
// recipients are snapshotted first; no table lock is held while
// writing.
func (s *Server) broadcast(except, msg string) {
	for _, c := range s.others(except) {
		c.Send(msg)
	}
}

func (s *Server) setStateOf(nick string, state connect4.State) {
	c := s.lookup(nick)
	if c == nil {
		connect4.Warning.Printf(
			"trying to change the state of client '%s' that no longer exists", nick)
		return
	}
	c.setState(state)
}

func (s *Server) stateOf(nick string) (connect4.State, bool) {
	c := s.lookup(nick)
	if c == nil {
		return connect4.Terminating, false
	}
	return c.State(), true
}

// remove tears the session down: at most once, regardless of how many
// paths race to it.
func (s *Server) remove(c *Client) {
	c.gone.Do(func() {
		nick := c.Nick()
		c.setState(connect4.Terminating)
		c.kill()
		c.codec.Close()
		atomic.AddInt64(&s.count, -1)

		connect4.Info.Printf("closing the connection for the client %s", c)
		if s.unregister(nick, c) {
			s.broadcast(nick, connect4.MsgRemoveClient+" "+nick)
		}
	})
}

// dissolveRoom ends the match PLAYER is part of.  The opponent, if
// still bound, returns to the lobby with GAME_CANCELED and MSG; an
// opponent off waiting to reconnect is simply dropped from the
// reconnect table.
func (s *Server) dissolveRoom(player, msg string) {
	room := s.unbindRoom(player)
	if room == nil {
		return
	}
	room.Stop()
	opponent := room.Opponent(player)

	if s.unbindRoom(opponent) != nil {
		s.setStateOf(opponent, connect4.Lobby)
		s.sendTo(opponent, connect4.MsgGameCanceled+" "+msg)
		s.broadcast(opponent, connect4.MsgGamePlayerState+" "+opponent+" ON")
	} else {
		connect4.Game.Printf(
			"taking opponent '%s' of player '%s' off the list of clients waiting to reconnect",
			opponent, player)
		s.dropWaiters(opponent)
	}

	s.setStateOf(player, connect4.Lobby)
	s.broadcast(player, connect4.MsgGamePlayerState+" "+player+" ON")
	connect4.Game.Printf("the game between '%s' and '%s' is over", player, opponent)
}

// cancelInviteFor withdraws the pending game request C is part of.
// Both parties are notified; the peer returns to the lobby and is
// announced available again.
func (s *Server) cancelInviteFor(c *Client) {
	nick := c.Nick()
	peer, ok := s.takeInvite(nick)
	if !ok {
		return
	}
	s.setStateOf(peer, connect4.Lobby)
	s.sendTo(peer, connect4.MsgRqCanceled+" "+nick)
	c.Send(connect4.MsgRqCanceled + " " + peer)
	s.broadcast(peer, connect4.MsgGamePlayerState+" "+peer+" ON")
}

// waitReply gives RECEIVER a fixed number of seconds to answer the
// game request from SENDER.  On expiry the request is withdrawn for
// both, unless it has been replaced by a newer one in the meantime.
func (s *Server) waitReply(sender, receiver string, gen uint64) {
	limit := int(s.conf.ReplyTimeout / time.Second)
	for i := 0; i < limit; i++ {
		sState, sOk := s.stateOf(sender)
		rState, rOk := s.stateOf(receiver)
		if sOk && rOk &&
			(sState != connect4.SentInvite || rState != connect4.ReceivedInvite) {
			connect4.Countdown.Printf(
				"waiting of client '%s' for client '%s' to reply to the game request was interrupted",
				sender, receiver)
			return
		}
		if !sOk || !rOk {
			connect4.Countdown.Printf(
				"waiting of client '%s' for client '%s' was interrupted. One of the clients is no longer connected to the server",
				sender, receiver)
			break
		}
		connect4.Countdown.Printf(
			"client '%s' is waiting for client '%s' to reply to their game request (remaining second: %d)",
			sender, receiver, limit-i)
		time.Sleep(time.Second)
	}

	// A racing cleanup may have withdrawn the request already, or a
	// fresh request between the same pair replaced it
	if !s.takeInviteIf(sender, gen) {
		return
	}
	s.setStateOf(sender, connect4.Lobby)
	s.setStateOf(receiver, connect4.Lobby)
	s.sendTo(sender, connect4.MsgRqCanceled+" "+receiver)
	s.sendTo(receiver, connect4.MsgRqCanceled+" "+sender)
	s.broadcast(sender, connect4.MsgGamePlayerState+" "+sender+" ON")
	s.broadcast(receiver, connect4.MsgGamePlayerState+" "+receiver+" ON")
}

// beginReconnectWait is called when C drops out of a running match.
// The opponent keeps the room; C gets a grace period to come back
// under the same nick.
func (s *Server) beginReconnectWait(c *Client) {
	nick := c.Nick()
	room := s.unbindRoom(nick)
	if room == nil {
		return
	}
	opponent := room.Opponent(nick)

	if s.room(opponent) == nil {
		// Nobody is left in the match
		connect4.Game.Printf(
			"the opponent of player '%s' is not connected to the server either -> deleting the game",
			nick)
		s.dropWaiters(nick, opponent)
		room.Stop()
		return
	}

	grace := int(s.conf.ReconnectTimeout / time.Second)
	connect4.Game.Printf("client '%s' lost their connection. Waiting for them %ds",
		nick, grace)
	s.addWaiter(nick, opponent)
	s.sendTo(opponent, fmt.Sprintf(
		"%s other player lost their connection. Waiting for him %ds",
		connect4.MsgGameMsg, grace))
	room.SetPaused(true)
	go s.waitReconnect(nick, opponent)
}

func (s *Server) waitReconnect(player, opponent string) {
	limit := int(s.conf.ReconnectTimeout / time.Second)
	for i := 0; i < limit; i++ {
		if s.room(opponent) == nil || !s.isWaiter(player) {
			connect4.Countdown.Printf(
				"waiting for client '%s' to reconnect back to the server was interrupted",
				player)
			s.dropWaiters(player, opponent)
			return
		}
		connect4.Countdown.Printf(
			"waiting for client '%s' to reconnect back to the server (remaining second: %d)",
			player, limit-i)
		time.Sleep(time.Second)
	}
	s.reconnectExpired(player)
}

// reconnectExpired gives up on PLAYER and releases the opponent back
// into the lobby.
func (s *Server) reconnectExpired(player string) {
	opponent, ok := s.takeWaiter(player)
	if !ok {
		return
	}
	connect4.Game.Printf(
		"client '%s' has NOT yet been connected back to the server - ending the game against client '%s'",
		player, opponent)

	grace := int(s.conf.ReconnectTimeout / time.Second)
	s.sendTo(opponent, fmt.Sprintf(
		"%s the other player has not been connected back to the server within %ds",
		connect4.MsgGameCanceled, grace))
	if room := s.unbindRoom(opponent); room != nil {
		room.Stop()
	}
	s.setStateOf(opponent, connect4.Lobby)
	s.broadcast(opponent, connect4.MsgGamePlayerState+" "+opponent+" ON")
}

// rejoinGame puts a reconnected session back into its match.
func (s *Server) rejoinGame(c *Client, opponent string) {
	nick := c.Nick()
	room := s.room(opponent)
	if room == nil {
		return
	}
	s.bindRoom(nick, room)
	c.setState(connect4.InGame)

	c.Send(connect4.MsgGameStart + " " + opponent)
	c.Send(fmt.Sprintf("%s you've been successfully added back to the game against %s",
		connect4.MsgGameMsg, opponent))
	c.Send(connect4.MsgGameRecovery + " " + room.Recovery())
	s.sendTo(opponent, connect4.MsgGameMsg+" your opponent is back in the game")
	room.SetPaused(false)

	connect4.Game.Printf(
		"client '%s' has been successfully added back to the game against client '%s'",
		nick, opponent)
	s.broadcast(nick, connect4.MsgGamePlayerState+" "+nick+" OFF")
}
