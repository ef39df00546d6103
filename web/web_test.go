package web

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	connect4 "github.com/silhavyj/Connect4-server-client-game"
	"github.com/silhavyj/Connect4-server-client-game/conf"
	"github.com/silhavyj/Connect4-server-client-game/server"
)

func TestMain(m *testing.M) {
	connect4.Silence()
	m.Run()
}

func TestStatusEndpoint(t *testing.T) {
	w := &Web{srv: server.New(conf.Default()), ws: true}
	ts := httptest.NewServer(w.routes())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/status")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status endpoint replied %d", resp.StatusCode)
	}

	var got status
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if len(got.Online) != 0 || len(got.Rooms) != 0 {
		t.Errorf("fresh server reports %+v", got)
	}
}

// The websocket endpoint only exists when it has been enabled in the
// configuration.
func TestSocketGate(t *testing.T) {
	for _, enabled := range []bool{true, false} {
		w := &Web{srv: server.New(conf.Default()), ws: enabled}
		ts := httptest.NewServer(w.routes())

		// A plain GET is not a websocket handshake: an enabled
		// endpoint rejects the upgrade, a disabled one does not exist.
		resp, err := http.Get(ts.URL + "/socket")
		if err != nil {
			t.Fatal(err)
		}
		resp.Body.Close()
		ts.Close()

		want := http.StatusNotFound
		if enabled {
			want = http.StatusBadRequest
		}
		if resp.StatusCode != want {
			t.Errorf("enabled=%v: /socket replied %d, expected %d",
				enabled, resp.StatusCode, want)
		}
	}
}
