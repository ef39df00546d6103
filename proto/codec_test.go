package proto

import (
	"errors"
	"io"
	"net"
	"testing"
	"time"

	connect4 "github.com/silhavyj/Connect4-server-client-game"
)

func TestMain(m *testing.M) {
	connect4.Silence()
	m.Run()
}

func always() bool { return true }

const testPoll = 10 * time.Millisecond

func pair(t *testing.T) (*Codec, net.Conn) {
	t.Helper()
	server, client := net.Pipe()
	t.Cleanup(func() {
		server.Close()
		client.Close()
	})
	return NewCodec(server, "silhavyj", testPoll), client
}

func TestReadFrame(t *testing.T) {
	c, peer := pair(t)
	go io.WriteString(peer, "silhavyj0013NICK somebody\r")

	payload, err := c.ReadFrame(always)
	if err != nil {
		t.Fatal(err)
	}
	if payload != "NICK somebody" {
		t.Errorf("read %q", payload)
	}
}

func TestReadFrameSplit(t *testing.T) {
	// Frames may arrive in arbitrary chunks
	c, peer := pair(t)
	go func() {
		for _, part := range []string{"silh", "avyj00", "04PI", "NG\r"} {
			io.WriteString(peer, part)
			time.Sleep(2 * testPoll)
		}
	}()

	payload, err := c.ReadFrame(always)
	if err != nil {
		t.Fatal(err)
	}
	if payload != "PING" {
		t.Errorf("read %q", payload)
	}
}

func TestReadFrameViolations(t *testing.T) {
	for _, test := range []struct {
		name string
		raw  string
	}{
		{"bad id", "sxlhavyj0004PING\r"},
		{"bad length", "silhavyj00x4PING\r"},
		{"oversized", "silhavyj0255"},
		{"huge", "silhavyj9999"},
	} {
		t.Run(test.name, func(t *testing.T) {
			c, peer := pair(t)
			go io.WriteString(peer, test.raw)

			_, err := c.ReadFrame(always)
			if !errors.Is(err, ErrFraming) {
				t.Errorf("got %v, expected a framing violation", err)
			}
		})
	}
}

func TestReadFrameDisconnect(t *testing.T) {
	c, peer := pair(t)
	go peer.Close()

	if _, err := c.ReadFrame(always); !errors.Is(err, ErrDisconnect) {
		t.Errorf("got %v, expected a disconnect", err)
	}
}

func TestReadFrameDead(t *testing.T) {
	// A session declared dead stops waiting for input
	c, _ := pair(t)

	done := make(chan error, 1)
	go func() {
		_, err := c.ReadFrame(func() bool { return false })
		done <- err
	}()

	select {
	case err := <-done:
		if !errors.Is(err, ErrDisconnect) {
			t.Errorf("got %v, expected a disconnect", err)
		}
	case <-time.After(time.Second):
		t.Fatal("read did not notice the dead session")
	}
}

func TestWriteFrame(t *testing.T) {
	c, peer := pair(t)
	go func() {
		if err := c.WriteFrame("OK"); err != nil {
			t.Error(err)
		}
	}()

	buf := make([]byte, len("silhavyj0002OK\r\n"))
	if _, err := io.ReadFull(peer, buf); err != nil {
		t.Fatal(err)
	}
	if string(buf) != "silhavyj0002OK\r\n" {
		t.Errorf("peer received %q", buf)
	}
}

func TestWriteFrameOversized(t *testing.T) {
	c, peer := pair(t)

	big := make([]byte, MaxFrameSize)
	for i := range big {
		big[i] = 'x'
	}
	if err := c.WriteFrame(string(big)); err != nil {
		t.Fatal(err)
	}

	// The frame was dropped, so nothing must arrive
	peer.SetReadDeadline(time.Now().Add(5 * testPoll))
	buf := make([]byte, 1)
	if n, _ := peer.Read(buf); n != 0 {
		t.Errorf("peer received %q", buf[:n])
	}
}
