// Session and match registry
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
	"sort"
	"strings"

	connect4 "github.com/silhavyj/Connect4-server-client-game"
	"github.com/silhavyj/Connect4-server-client-game/game"
)

// The registry holds four tables, each behind its own ranked mutex.
// Every method acquires exactly one lock and never performs I/O, so
// callers send messages only after the table operation is done.
type registry struct {
	sessions rankedMutex
	clients  map[string]*Client // registered sessions, by nick

	rooms    rankedMutex
	byPlayer map[string]*game.Room // active match, by player nick

	invites rankedMutex
	peer    map[string]invite // pending game request, both directions
	nextGen uint64            // generation of the latest invitation

	waiters rankedMutex
	waiting map[string]string // disconnected player -> opponent
}

func makeRegistry() registry {
	return registry{
		sessions: rankedMutex{rank: rankSessions},
		clients:  make(map[string]*Client),
		rooms:    rankedMutex{rank: rankRooms},
		byPlayer: make(map[string]*game.Room),
		invites:  rankedMutex{rank: rankInvites},
		peer:     make(map[string]invite),
		waiters:  rankedMutex{rank: rankWaiters},
		waiting:  make(map[string]string),
	}
}

// Session table

// register claims NICK for C.  It fails when the nick is taken or
// reserved.
func (r *registry) register(nick string, c *Client) bool {
	if nick == connect4.UndefinedNick {
		return false
	}
	r.sessions.Lock()
	defer r.sessions.Unlock()
	if _, taken := r.clients[nick]; taken {
		return false
	}
	r.clients[nick] = c
	return true
}

func (r *registry) unregister(nick string, c *Client) bool {
	r.sessions.Lock()
	defer r.sessions.Unlock()
	if r.clients[nick] != c {
		return false
	}
	delete(r.clients, nick)
	return true
}

func (r *registry) lookup(nick string) *Client {
	r.sessions.Lock()
	defer r.sessions.Unlock()
	return r.clients[nick]
}

// others snapshots all registered sessions except NICK, so messages
// can be sent with no table lock held.
func (r *registry) others(nick string) []*Client {
	r.sessions.Lock()
	defer r.sessions.Unlock()
	snap := make([]*Client, 0, len(r.clients))
	for n, c := range r.clients {
		if n != nick {
			snap = append(snap, c)
		}
	}
	return snap
}

// allNicks returns every registered nick, bracketed, the payload of an
// /ALL_CLIENTS reply.
func (r *registry) allNicks() string {
	r.sessions.Lock()
	nicks := make([]string, 0, len(r.clients))
	for n := range r.clients {
		nicks = append(nicks, n)
	}
	r.sessions.Unlock()
	sort.Strings(nicks)
	return "[" + strings.Join(nicks, " ") + "]"
}

// Room table

func (r *registry) addRoom(room *game.Room) {
	a, b := room.Players()
	r.rooms.Lock()
	defer r.rooms.Unlock()
	r.byPlayer[a] = room
	r.byPlayer[b] = room
}

func (r *registry) room(nick string) *game.Room {
	r.rooms.Lock()
	defer r.rooms.Unlock()
	return r.byPlayer[nick]
}

// unbindRoom releases NICK's binding and returns the room it pointed
// to, if any.
func (r *registry) unbindRoom(nick string) *game.Room {
	r.rooms.Lock()
	defer r.rooms.Unlock()
	room := r.byPlayer[nick]
	delete(r.byPlayer, nick)
	return room
}

// bindRoom points NICK at ROOM again after a reconnect.
func (r *registry) bindRoom(nick string, room *game.Room) {
	r.rooms.Lock()
	defer r.rooms.Unlock()
	r.byPlayer[nick] = room
}

// Invitation table

// An invite carries the generation it was created under, so a timer
// armed for an earlier request cannot withdraw a renewed one between
// the same two players.
type invite struct {
	peer string
	gen  uint64
}

// addInvite records a pending game request in both directions and
// returns its generation.
func (r *registry) addInvite(sender, receiver string) uint64 {
	r.invites.Lock()
	defer r.invites.Unlock()
	r.nextGen++
	r.peer[sender] = invite{receiver, r.nextGen}
	r.peer[receiver] = invite{sender, r.nextGen}
	return r.nextGen
}

func (r *registry) invitePeer(nick string) (string, bool) {
	r.invites.Lock()
	defer r.invites.Unlock()
	entry, ok := r.peer[nick]
	return entry.peer, ok
}

// takeInvite removes the invitation NICK is part of and returns the
// peer.  Exactly one caller wins when cleanup paths race.
func (r *registry) takeInvite(nick string) (string, bool) {
	r.invites.Lock()
	defer r.invites.Unlock()
	entry, ok := r.peer[nick]
	if !ok {
		return "", false
	}
	r.dropInviteLocked(nick, entry)
	return entry.peer, true
}

// takeInviteIf removes the invitation only when it still belongs to the
// given generation.
func (r *registry) takeInviteIf(nick string, gen uint64) bool {
	r.invites.Lock()
	defer r.invites.Unlock()
	entry, ok := r.peer[nick]
	if !ok || entry.gen != gen {
		return false
	}
	r.dropInviteLocked(nick, entry)
	return true
}

func (r *registry) dropInviteLocked(nick string, entry invite) {
	delete(r.peer, nick)
	if back, ok := r.peer[entry.peer]; ok && back.peer == nick {
		delete(r.peer, entry.peer)
	}
}

// Reconnect table

func (r *registry) addWaiter(player, opponent string) {
	r.waiters.Lock()
	defer r.waiters.Unlock()
	r.waiting[player] = opponent
}

func (r *registry) isWaiter(player string) bool {
	r.waiters.Lock()
	defer r.waiters.Unlock()
	_, ok := r.waiting[player]
	return ok
}

// takeWaiter removes PLAYER from the reconnect table and returns the
// opponent that kept the match alive.
func (r *registry) takeWaiter(player string) (string, bool) {
	r.waiters.Lock()
	defer r.waiters.Unlock()
	opponent, ok := r.waiting[player]
	if ok {
		delete(r.waiting, player)
	}
	return opponent, ok
}

func (r *registry) dropWaiters(players ...string) {
	r.waiters.Lock()
	defer r.waiters.Unlock()
	for _, p := range players {
		delete(r.waiting, p)
	}
}

// Status snapshots, consumed by the web interface.

// Online returns the registered nicks, sorted.
func (r *registry) Online() []string {
	r.sessions.Lock()
	nicks := make([]string, 0, len(r.clients))
	for n := range r.clients {
		nicks = append(nicks, n)
	}
	r.sessions.Unlock()
	sort.Strings(nicks)
	return nicks
}

// A RoomStatus describes one running match.
type RoomStatus struct {
	Id      string `json:"id"`
	PlayerA string `json:"playerA"`
	PlayerB string `json:"playerB"`
}

// Rooms returns the running matches, one entry per room.
func (r *registry) Rooms() []RoomStatus {
	r.rooms.Lock()
	seen := make(map[string]bool)
	rooms := make([]RoomStatus, 0, len(r.byPlayer))
	for _, room := range r.byPlayer {
		id := room.Id.String()
		if seen[id] {
			continue
		}
		seen[id] = true
		a, b := room.Players()
		rooms = append(rooms, RoomStatus{Id: id, PlayerA: a, PlayerB: b})
	}
	r.rooms.Unlock()
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].Id < rooms[j].Id })
	return rooms
}
