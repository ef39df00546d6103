// Board model
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

import (
	"errors"
	"strconv"
	"strings"
)

const (
	// Board dimensions
	Rows    = 6
	Columns = 7
	// Length of a winning run
	WinRun = 4
)

// Cell is the content of one position on the grid.  The numeric values
// appear verbatim in GAME_RECOVERY messages.
type Cell uint8

const (
	Free  Cell = iota // unoccupied
	CellA             // token of player A (moves first)
	CellB             // token of player B
)

// Outcome of applying one move.
type Outcome uint8

const (
	Continue Outcome = iota
	WinA
	WinB
	Draw
)

func (o Outcome) String() string {
	switch o {
	case Continue:
		return "Continue"
	case WinA:
		return "WinA"
	case WinB:
		return "WinB"
	case Draw:
		return "Draw"
	default:
		panic("Illegal outcome")
	}
}

// Over reports whether the outcome ends the game.
func (o Outcome) Over() bool { return o != Continue }

// Point is a position on the grid, row 0 at the top.
type Point struct{ Row, Col int }

// All scan lines, precomputed once, in announcement order: rows left to
// right, columns bottom to top, diagonals running up-right, diagonals
// running down-right.  The first run of four found along these decides
// which cells GAME_WINNING_TAILS names.
var lines = buildLines()

func buildLines() (l [][]Point) {
	for r := 0; r < Rows; r++ {
		var row []Point
		for c := 0; c < Columns; c++ {
			row = append(row, Point{r, c})
		}
		l = append(l, row)
	}
	for c := 0; c < Columns; c++ {
		var col []Point
		for r := Rows - 1; r >= 0; r-- {
			col = append(col, Point{r, c})
		}
		l = append(l, col)
	}
	for i := 0; i < Rows+Columns; i++ {
		if i == Rows {
			continue
		}
		r, c := i, 0
		if i > Rows {
			r, c = Rows-1, i-Rows
		}
		var diag []Point
		for r >= 0 && c < Columns {
			diag = append(diag, Point{r, c})
			r--
			c++
		}
		l = append(l, diag)
	}
	for i := 0; i < Rows+Columns; i++ {
		if i == Rows {
			continue
		}
		r, c := Rows-1-i, 0
		if i > Rows {
			r, c = 0, i-Rows
		}
		var diag []Point
		for r < Rows && c < Columns {
			diag = append(diag, Point{r, c})
			r++
			c++
		}
		l = append(l, diag)
	}
	return l
}

// Board is one Connect Four grid together with whose turn it is.  It
// knows nothing about sessions or sockets; the game room drives it and
// translates results into protocol messages.
type Board struct {
	cells   [Rows][Columns]Cell
	aToMove bool
}

func NewBoard() *Board {
	return &Board{aToMove: true}
}

// ToMoveA reports whether player A is to move.
func (b *Board) ToMoveA() bool { return b.aToMove }

// Flip passes the turn to the other player.
func (b *Board) Flip() { b.aToMove = !b.aToMove }

// Full reports whether no token fits into the column anymore.
func (b *Board) Full(col int) bool {
	return b.cells[0][col] != Free
}

// Drop places the current mover's token into the column and returns the
// row it landed in.  The caller must have checked Full.
func (b *Board) Drop(col int) int {
	r := 0
	for r+1 < Rows && b.cells[r+1][col] == Free {
		r++
	}
	if b.aToMove {
		b.cells[r][col] = CellA
	} else {
		b.cells[r][col] = CellB
	}
	return r
}

// Winning returns the first run of four identical tokens in scan order,
// or nil if there is none.
func (b *Board) Winning() []Point {
	for _, line := range lines {
		if len(line) < WinRun {
			continue
		}
		run := 0
		for i, p := range line {
			prev := Free
			if i > 0 {
				prev = b.cells[line[i-1].Row][line[i-1].Col]
			}
			switch cur := b.cells[p.Row][p.Col]; {
			case cur == Free:
				run = 0
			case i > 0 && cur == prev:
				run++
			default:
				run = 1
			}
			if run == WinRun {
				return line[i-WinRun+1 : i+1]
			}
		}
	}
	return nil
}

// Draw reports whether the grid is completely filled.
func (b *Board) Draw() bool {
	for c := 0; c < Columns; c++ {
		if !b.Full(c) {
			return false
		}
	}
	return true
}

// At returns the content of one cell.
func (b *Board) At(p Point) Cell {
	return b.cells[p.Row][p.Col]
}

// Recovery serializes the grid row-major as space-separated cell codes,
// the payload of a GAME_RECOVERY message.
func (b *Board) Recovery() string {
	var sb strings.Builder
	for r := 0; r < Rows; r++ {
		for c := 0; c < Columns; c++ {
			if r != 0 || c != 0 {
				sb.WriteByte(' ')
			}
			sb.WriteString(strconv.Itoa(int(b.cells[r][c])))
		}
	}
	return sb.String()
}

var errBadRecovery = errors.New("malformed recovery state")

// Restore rebuilds a board from its Recovery serialization.
func Restore(state string, aToMove bool) (*Board, error) {
	fields := strings.Fields(state)
	if len(fields) != Rows*Columns {
		return nil, errBadRecovery
	}
	b := &Board{aToMove: aToMove}
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil || v > int(CellB) {
			return nil, errBadRecovery
		}
		b.cells[i/Columns][i%Columns] = Cell(v)
	}
	return b, nil
}
