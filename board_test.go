package connect4

import "testing"

// play drops a sequence of columns, alternating movers, and returns the
// outcome after the last drop.
func play(t *testing.T, b *Board, cols ...int) (last []Point, draw bool) {
	t.Helper()
	for _, c := range cols {
		if b.Full(c) {
			t.Fatalf("column %d unexpectedly full", c)
		}
		b.Drop(c)
		if win := b.Winning(); win != nil {
			return win, false
		}
		if b.Draw() {
			return nil, true
		}
		b.Flip()
	}
	return nil, false
}

func TestWinning(t *testing.T) {
	for _, test := range []struct {
		name string
		cols []int
		win  []Point
	}{
		{
			name: "vertical",
			cols: []int{3, 4, 3, 4, 3, 4, 3},
			win:  []Point{{5, 3}, {4, 3}, {3, 3}, {2, 3}},
		}, {
			name: "horizontal",
			cols: []int{0, 0, 1, 1, 2, 2, 3},
			win:  []Point{{5, 0}, {5, 1}, {5, 2}, {5, 3}},
		}, {
			name: "diagonal up-right",
			cols: []int{0, 1, 1, 2, 2, 3, 2, 3, 3, 5, 3},
			win:  []Point{{5, 0}, {4, 1}, {3, 2}, {2, 3}},
		}, {
			name: "diagonal down-right",
			cols: []int{3, 2, 2, 1, 1, 0, 1, 0, 0, 5, 0},
			win:  []Point{{2, 0}, {3, 1}, {4, 2}, {5, 3}},
		}, {
			name: "no win",
			cols: []int{0, 1, 2, 3, 4, 5, 6},
			win:  nil,
		},
	} {
		t.Run(test.name, func(t *testing.T) {
			win, draw := play(t, NewBoard(), test.cols...)
			if draw {
				t.Fatal("unexpected draw")
			}
			if len(win) != len(test.win) {
				t.Fatalf("winning run %v, expected %v", win, test.win)
			}
			for i := range win {
				if win[i] != test.win[i] {
					t.Errorf("winning cell %d is %v, expected %v",
						i, win[i], test.win[i])
				}
			}
		})
	}
}

func TestWinnerToken(t *testing.T) {
	b := NewBoard()
	win, _ := play(t, b, 3, 4, 3, 4, 3, 4, 3)
	if win == nil {
		t.Fatal("expected a winning run")
	}
	if b.At(win[0]) != CellA {
		t.Errorf("winning token is %d, expected player A", b.At(win[0]))
	}
}

func TestFullColumn(t *testing.T) {
	b := NewBoard()
	for i := 0; i < Rows; i++ {
		b.Drop(0)
		b.Flip()
	}
	if !b.Full(0) {
		t.Error("column 0 should be full after six drops")
	}
	if b.Full(1) {
		t.Error("column 1 should not be full")
	}
}

func TestDraw(t *testing.T) {
	// Fill the grid with a tiling that never lines up four: token
	// pairs alternate along rows and the pairing shifts every row.
	b := NewBoard()
	for r := 0; r < Rows; r++ {
		for c := 0; c < Columns; c++ {
			cell := CellB
			if (c/2+r)%2 == 0 {
				cell = CellA
			}
			b.cells[r][c] = cell
		}
	}
	if win := b.Winning(); win != nil {
		t.Fatalf("tiling unexpectedly contains the run %v", win)
	}
	if !b.Draw() {
		t.Error("a filled grid must be a draw")
	}
}

func TestRecoveryRoundTrip(t *testing.T) {
	b := NewBoard()
	if win, draw := play(t, b, 3, 4, 3, 4, 3); win != nil || draw {
		t.Fatal("game ended unexpectedly")
	}

	r, err := Restore(b.Recovery(), b.ToMoveA())
	if err != nil {
		t.Fatal(err)
	}
	// The restored board must admit exactly the same follow-up moves.
	for c := 0; c < Columns; c++ {
		if b.Full(c) != r.Full(c) {
			t.Errorf("column %d: Full %v after restore, expected %v",
				c, r.Full(c), b.Full(c))
		}
	}
	for r2 := 0; r2 < Rows; r2++ {
		for c := 0; c < Columns; c++ {
			p := Point{r2, c}
			if b.At(p) != r.At(p) {
				t.Errorf("cell %v differs after round trip", p)
			}
		}
	}
	if r.ToMoveA() != b.ToMoveA() {
		t.Error("turn flag lost in round trip")
	}
}

func TestRestoreRejectsGarbage(t *testing.T) {
	for _, state := range []string{
		"",
		"0 1 2",
		"x 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0",
		"7 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0 0",
	} {
		if _, err := Restore(state, true); err == nil {
			t.Errorf("Restore(%q) should fail", state)
		}
	}
}
