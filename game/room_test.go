package game

import (
	"strings"
	"sync"
	"testing"
	"time"

	connect4 "github.com/silhavyj/Connect4-server-client-game"
)

func TestMain(m *testing.M) {
	connect4.Silence()
	m.Run()
}

// recorder collects everything a room sends, per nick.
type recorder struct {
	mu        sync.Mutex
	sent      map[string][]string
	dissolved []string // "player: msg"
}

func newRecorder() *recorder {
	return &recorder{sent: make(map[string][]string)}
}

func (r *recorder) Send(nick, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent[nick] = append(r.sent[nick], msg)
}

func (r *recorder) Dissolve(player, msg string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.dissolved = append(r.dissolved, player+": "+msg)
}

func (r *recorder) got(nick, msg string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, m := range r.sent[nick] {
		if m == msg {
			return true
		}
	}
	return false
}

func (r *recorder) last(nick string) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n := len(r.sent[nick]); n > 0 {
		return r.sent[nick][n-1]
	}
	return ""
}

// quiet creates a room whose background watcher is already stopped, so
// tests control the clock through tick directly.
func quiet(t *testing.T, sink Sink, timeout time.Duration) *Room {
	t.Helper()
	r := NewRoom(sink, "alice", "bob", timeout)
	r.Stop()
	return r
}

func TestFirstMover(t *testing.T) {
	rec := newRecorder()
	r := quiet(t, rec, time.Minute)

	if r.Mover() != "alice" {
		t.Errorf("the inviter must move first, not %q", r.Mover())
	}
	r.Play("bob", 0)
	if !rec.got("bob", "GAME_MSG it is not your turn") {
		t.Error("bob was not told to wait for his turn")
	}
	if len(rec.sent["alice"]) != 0 {
		t.Errorf("alice received %q", rec.sent["alice"])
	}
}

func TestPlayBroadcast(t *testing.T) {
	rec := newRecorder()
	r := quiet(t, rec, time.Minute)

	r.Play("alice", 3)
	for _, nick := range []string{"alice", "bob"} {
		if !rec.got(nick, "GAME_PLAY alice 5 3") {
			t.Errorf("%s did not see the move: %q", nick, rec.sent[nick])
		}
	}
	if r.Mover() != "bob" {
		t.Error("the turn did not pass to bob")
	}
}

func TestFullColumn(t *testing.T) {
	rec := newRecorder()
	r := quiet(t, rec, time.Minute)

	for i := 0; i < connect4.Rows; i++ {
		r.Play(r.Mover(), 0)
	}
	mover := r.Mover()
	r.Play(mover, 0)
	if rec.last(mover) != "GAME_MSG this column is full. Choose another one" {
		t.Errorf("mover received %q", rec.last(mover))
	}
}

func TestWinFlow(t *testing.T) {
	rec := newRecorder()
	r := quiet(t, rec, time.Minute)

	// Vertical four in column 3 for alice
	for _, move := range []struct {
		nick string
		col  int
	}{
		{"alice", 3}, {"bob", 4},
		{"alice", 3}, {"bob", 4},
		{"alice", 3}, {"bob", 4},
		{"alice", 3},
	} {
		r.Play(move.nick, move.col)
	}

	if !rec.got("alice", "GAME_RESULT You won") {
		t.Errorf("alice received %q", rec.sent["alice"])
	}
	if !rec.got("bob", "GAME_RESULT You lost") {
		t.Errorf("bob received %q", rec.sent["bob"])
	}
	for _, nick := range []string{"alice", "bob"} {
		if !rec.got(nick, "GAME_WINNING_TAILS 5 3 4 3 3 3 2 3") {
			t.Errorf("%s did not see the winning run: %q", nick, rec.sent[nick])
		}
	}
	if !rec.got("alice", "GAME_CANCELED the game is over") {
		t.Error("the winner was not moved out of the game")
	}
	if len(rec.dissolved) != 1 || rec.dissolved[0] != "alice: the game is over" {
		t.Errorf("dissolved %q", rec.dissolved)
	}
}

func TestTurnExpiry(t *testing.T) {
	rec := newRecorder()
	r := quiet(t, rec, 2*time.Second)

	if r.tick() {
		t.Fatal("expired too early")
	}
	if !r.tick() {
		t.Fatal("did not expire")
	}
	if len(rec.dissolved) != 1 ||
		rec.dissolved[0] != "alice: your opponent hasn't played for 2s" {
		t.Errorf("dissolved %q", rec.dissolved)
	}
	if rec.last("alice") != "GAME_CANCELED the game has been terminated due to you not playing" {
		t.Errorf("alice received %q", rec.last("alice"))
	}
}

func TestPauseHoldsClock(t *testing.T) {
	rec := newRecorder()
	r := quiet(t, rec, 2*time.Second)

	r.SetPaused(true)
	for i := 0; i < 10; i++ {
		if r.tick() {
			t.Fatal("expired while paused")
		}
	}
	r.SetPaused(false)
	if r.tick() {
		t.Fatal("the clock was not reset by the pause")
	}
	if !r.tick() {
		t.Fatal("did not expire after resuming")
	}
}

func TestRecovery(t *testing.T) {
	rec := newRecorder()
	r := quiet(t, rec, time.Minute)

	r.Play("alice", 0)
	state := r.Recovery()
	if fields := strings.Fields(state); len(fields) != connect4.Rows*connect4.Columns {
		t.Fatalf("recovery state has %d cells", len(fields))
	}
	if !strings.HasSuffix(state, "1 0 0 0 0 0 0") {
		t.Errorf("alice's token is missing from %q", state)
	}
}
