// Game room
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

package game

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	connect4 "github.com/silhavyj/Connect4-server-client-game"
)

// A Sink delivers game output to the sessions.  The room never talks
// to the network or the registry directly.
type Sink interface {
	// Send delivers MSG to the session known under NICK, if any.
	Send(nick, msg string)

	// Dissolve tears down the room PLAYER is part of: both players
	// return to the lobby and the opponent is notified with
	// GAME_CANCELED followed by MSG.
	Dissolve(player, msg string)
}

// A Room hosts one match between two players.  PlayerA is the one who
// sent the game request and moves first.  A background watcher cancels
// the match when the player to move stays idle for too long; the
// watcher is put on hold while a player is given time to reconnect.
type Room struct {
	Id      uuid.UUID
	playerA string
	playerB string
	sink    Sink
	timeout time.Duration

	mu      sync.Mutex
	board   *connect4.Board
	paused  bool
	elapsed int // seconds the current mover has been idle

	stop chan struct{}
	once sync.Once
}

func NewRoom(sink Sink, a, b string, timeout time.Duration) *Room {
	r := &Room{
		Id:      uuid.New(),
		playerA: a,
		playerB: b,
		sink:    sink,
		timeout: timeout,
		board:   connect4.NewBoard(),
		stop:    make(chan struct{}),
	}
	go r.watchTurns()
	return r
}

func (r *Room) String() string {
	return fmt.Sprintf("game between '%s' and '%s'", r.playerA, r.playerB)
}

// Players returns both nicks, the first mover first.
func (r *Room) Players() (string, string) {
	return r.playerA, r.playerB
}

// Opponent returns the other player's nick.
func (r *Room) Opponent(nick string) string {
	if nick == r.playerA {
		return r.playerB
	}
	return r.playerA
}

func (r *Room) moverLocked() string {
	if r.board.ToMoveA() {
		return r.playerA
	}
	return r.playerB
}

// Mover returns the nick of the player whose turn it is.
func (r *Room) Mover() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.moverLocked()
}

// Recovery serializes the grid for a GAME_RECOVERY message.
func (r *Room) Recovery() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.board.Recovery()
}

// SetPaused puts the turn watcher on hold, or resumes it.  While
// paused the turn clock stays at zero.
func (r *Room) SetPaused(paused bool) {
	r.mu.Lock()
	r.paused = paused
	r.elapsed = 0
	r.mu.Unlock()
	if paused {
		connect4.Game.Printf("the %s was paused", r)
	} else {
		connect4.Game.Printf("the %s was resumed", r)
	}
}

// Stop ends the turn watcher.  Safe to call more than once.
func (r *Room) Stop() {
	r.once.Do(func() { close(r.stop) })
}

// Play applies one move by NICK into column COL.  Moves out of turn or
// into a full column only earn the mover a GAME_MSG; a decisive move
// announces the result to both players and dissolves the room.
func (r *Room) Play(nick string, col int) {
	r.mu.Lock()
	if nick != r.moverLocked() {
		r.mu.Unlock()
		r.sink.Send(nick, connect4.MsgGameMsg+" it is not your turn")
		return
	}
	if r.board.Full(col) {
		r.mu.Unlock()
		r.sink.Send(nick, connect4.MsgGameMsg+" this column is full. Choose another one")
		return
	}

	row := r.board.Drop(col)
	win := r.board.Winning()
	draw := win == nil && r.board.Draw()
	if win == nil && !draw {
		r.board.Flip()
	}
	r.elapsed = 0
	r.mu.Unlock()

	r.both(fmt.Sprintf("%s %s %d %d", connect4.MsgGamePlay, nick, row, col))

	switch {
	case win != nil:
		r.announceWinner(nick, win)
	case draw:
		r.both(connect4.MsgGameResult + " draw")
	default:
		return
	}

	connect4.Game.Printf("the %s is over", r)
	r.Stop()
	r.sink.Dissolve(nick, "the game is over")
	r.sink.Send(nick, connect4.MsgGameCanceled+" the game is over")
}

func (r *Room) both(msg string) {
	r.sink.Send(r.playerA, msg)
	r.sink.Send(r.playerB, msg)
}

func (r *Room) announceWinner(winner string, win []connect4.Point) {
	for _, p := range []string{r.playerA, r.playerB} {
		result := " You lost"
		if p == winner {
			result = " You won"
		}
		r.sink.Send(p, connect4.MsgGameResult+result)
	}

	tails := connect4.MsgGameWinningTails
	for _, p := range win {
		tails += fmt.Sprintf(" %d %d", p.Row, p.Col)
	}
	r.both(tails)
}

func (r *Room) watchTurns() {
	tick := time.NewTicker(time.Second)
	defer tick.Stop()
	for {
		select {
		case <-r.stop:
			connect4.Countdown.Printf("counter of the %s was interrupted (end of the game)", r)
			return
		case <-tick.C:
			if r.tick() {
				return
			}
		}
	}
}

// tick advances the turn clock by one second and reports whether the
// match expired.
func (r *Room) tick() bool {
	r.mu.Lock()
	if r.paused {
		r.elapsed = 0
		r.mu.Unlock()
		return false
	}
	r.elapsed++
	mover := r.moverLocked()
	elapsed := r.elapsed
	r.mu.Unlock()

	limit := int(r.timeout / time.Second)
	if elapsed < limit {
		connect4.Countdown.Printf("counter of the %s: %ds", r, limit-elapsed)
		return false
	}

	connect4.Warning.Printf("counter of the %s was interrupted (nobody's played in %ds)",
		r, limit)
	r.Stop()
	r.sink.Dissolve(mover, fmt.Sprintf("your opponent hasn't played for %ds", limit))
	r.sink.Send(mover, connect4.MsgGameCanceled+" the game has been terminated due to you not playing")
	return true
}
