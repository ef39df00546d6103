// TCP interface tests
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
	"net"
	"testing"
)

// The whole stack over a real socket: an ephemeral listener, a dialed
// connection and a framed round trip through it.
func TestTCPRoundTrip(t *testing.T) {
	srv := testServer(nil)
	l := StartListener(srv)
	t.Cleanup(l.Shutdown)

	if l.Port() == 0 {
		t.Fatal("no port was extracted from the listener")
	}
	conn, err := net.Dial("tcp", fmt.Sprintf("127.0.0.1:%d", l.Port()))
	if err != nil {
		t.Fatal(err)
	}
	tc := &testClient{
		t:      t,
		conn:   conn,
		id:     srv.conf.ProtocolID,
		frames: make(chan string, 64),
	}
	t.Cleanup(func() { conn.Close() })
	go tc.pump()

	tc.join("alice")
	tc.send("/NICK")
	tc.expect("alice")
	tc.send("EXIT")
	tc.expect("OK")
	tc.expectClosed()
}
