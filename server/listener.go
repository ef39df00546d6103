// TCP interface
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
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"

	connect4 "github.com/silhavyj/Connect4-server-client-game"
	"github.com/silhavyj/Connect4-server-client-game/conf"
)

type Listener struct {
	srv  *Server
	conn net.Listener
	port uint16
}

func (*Listener) String() string {
	return "TCP Handler"
}

// Initialise a listener, unless it has already been initialised
func (t *Listener) init() {
	if t.conn != nil {
		return
	}

	var err error
	tcp := fmt.Sprintf(":%d", t.port)
	t.conn, err = net.Listen("tcp", tcp)
	if err != nil {
		connect4.Err.Fatal(err)
	}
	if t.port == 0 {
		// Extract port number the operating system bound the listener
		// to, since port 0 is redirected to a "random" open port
		addr := t.conn.Addr().String()
		i := strings.LastIndexByte(addr, ':')
		if i == -1 || i+1 == len(addr) {
			connect4.Err.Fatal("Invalid address ", addr)
		}
		port, err := strconv.ParseUint(addr[i+1:], 10, 16)
		if err != nil {
			connect4.Err.Fatal("Unexpected error ", err)
		}
		t.port = uint16(port)
	}
}

func (t *Listener) Start() {
	t.init()

	connect4.Booting.Printf("<[ SERVER STARTED ]>")
	connect4.Booting.Printf("[port=%d max clients=%d]", t.port, t.srv.conf.MaxClients)
	for {
		conn, err := t.conn.Accept()
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}
			continue
		}
		t.srv.Admit(conn, conn.RemoteAddr().String())
	}
}

func (t *Listener) Port() uint16 {
	return t.port
}

func (t *Listener) Shutdown() {
	if err := t.conn.Close(); err != nil {
		connect4.Err.Print(err)
	}
}

func MakeListener(srv *Server, port uint16) *Listener {
	return &Listener{srv: srv, port: port}
}

// StartListener brings a listener up right away on an ephemeral port.
// Tests use it to talk to a real socket.
func StartListener(srv *Server) *Listener {
	l := &Listener{srv: srv}
	l.init()
	go l.Start()
	return l
}

// Prepare registers the TCP endpoint with the system configuration.
func Prepare(c *conf.Conf, srv *Server) {
	c.Register(MakeListener(srv, c.TCPPort))
}
