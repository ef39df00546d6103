package conf

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestLoad(t *testing.T) {
	c, err := load(strings.NewReader(`
[proto]
id = "secret"
port = 4242
clients = 3
websocket = true

[timeout]
turn = 45

[web]
enabled = true
port = 9090
`))
	if err != nil {
		t.Fatal(err)
	}
	if c.ProtocolID != "secret" {
		t.Errorf("protocol id is %q", c.ProtocolID)
	}
	if c.TCPPort != 4242 {
		t.Errorf("port is %d", c.TCPPort)
	}
	if c.MaxClients != 3 {
		t.Errorf("client limit is %d", c.MaxClients)
	}
	if c.TurnTimeout != 45*time.Second {
		t.Errorf("turn timeout is %v", c.TurnTimeout)
	}
	if c.WebPort != 9090 {
		t.Errorf("web port is %d", c.WebPort)
	}
	// Unset values fall back to the defaults
	if c.PingTimeout != defaultConfig.PingTimeout {
		t.Errorf("ping timeout is %v", c.PingTimeout)
	}
	if c.ReconnectTimeout != defaultConfig.ReconnectTimeout {
		t.Errorf("reconnect timeout is %v", c.ReconnectTimeout)
	}
}

func TestLoadGarbage(t *testing.T) {
	if _, err := load(strings.NewReader(`[proto`)); err == nil {
		t.Error("expected a decode error")
	}
}

func TestDumpRoundTrip(t *testing.T) {
	before := Default()
	before.TCPPort = 1234
	before.MaxClients = 7
	before.TurnTimeout = 20 * time.Second

	var buf bytes.Buffer
	if err := before.Dump(&buf); err != nil {
		t.Fatal(err)
	}
	after, err := load(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if after.ProtocolID != before.ProtocolID ||
		after.TCPPort != before.TCPPort ||
		after.MaxClients != before.MaxClients ||
		after.TurnTimeout != before.TurnTimeout ||
		after.ReconnectTimeout != before.ReconnectTimeout ||
		after.LogDir != before.LogDir ||
		after.WebPort != before.WebPort {
		t.Errorf("round trip changed the configuration:\n%+v\n%+v",
			before, after)
	}
}
