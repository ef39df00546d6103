// Client session
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
	"context"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	connect4 "github.com/silhavyj/Connect4-server-client-game"
	"github.com/silhavyj/Connect4-server-client-game/proto"
)

// A Client is one connected session.  The reader goroutine owns the
// state transitions; the nick and ping watchers only flip the dead
// flag, which the reader notices on its next poll.
type Client struct {
	srv   *Server
	codec *proto.Codec
	addr  string

	ctx  context.Context
	kill context.CancelFunc

	dead   uint32 // a watcher gave the session up
	pinged uint32 // a PING arrived since the last watcher round

	mu    sync.Mutex
	nick  string
	state connect4.State

	gone sync.Once // session teardown ran
}

func newClient(srv *Server, rwc io.ReadWriteCloser, addr string) *Client {
	ctx, kill := context.WithCancel(context.Background())
	return &Client{
		srv:   srv,
		codec: proto.NewCodec(rwc, srv.conf.ProtocolID, srv.conf.PollInterval),
		addr:  addr,
		ctx:   ctx,
		kill:  kill,
		nick:  connect4.UndefinedNick,
		state: connect4.AwaitNick,
	}
}

func (c *Client) String() string {
	return fmt.Sprintf("[nick='%s' | addr=%s]", c.Nick(), c.addr)
}

func (c *Client) Nick() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.nick
}

func (c *Client) setNick(nick string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nick = nick
}

func (c *Client) State() connect4.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

func (c *Client) setState(state connect4.State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != connect4.Terminating {
		c.state = state
	}
}

// alive reports whether the reader should keep waiting for input.
func (c *Client) alive() bool {
	select {
	case <-c.ctx.Done():
		return false
	default:
		return atomic.LoadUint32(&c.dead) == 0
	}
}

// markDead makes the reader fail with a disconnect: polled readers
// notice the flag, blocking ones the closed connection.
func (c *Client) markDead() {
	atomic.StoreUint32(&c.dead, 1)
	c.codec.Close()
}

// Send frames MSG and hands it to the connection.  Write failures are
// not the sender's problem; the reader tears the session down.
func (c *Client) Send(msg string) {
	connect4.Msg.Printf("sending a message to client %s: '%s'", c, msg)
	if err := c.codec.WriteFrame(msg); err != nil {
		connect4.Warning.Printf("writing to client %s failed: %s", c, err)
	}
}

// watchNick gives the session a fixed number of seconds to pick a
// nick.
func (c *Client) watchNick() {
	limit := int(c.srv.conf.NickTimeout / time.Second)
	for i := 0; i < limit; i++ {
		if c.State() != connect4.AwaitNick {
			connect4.Countdown.Printf("waiting for client %s was interrupted", c)
			return
		}
		connect4.Countdown.Printf(
			"waiting for client %s to enter their nick (remaining second: %d)",
			c, limit-i)
		select {
		case <-c.ctx.Done():
			return
		case <-time.After(time.Second):
		}
	}
	connect4.Err.Printf("client %s did not enter their nick within %ds", c, limit)
	c.markDead()
}

// watchPing declares the session dead when no PING arrives for the
// configured stretch of seconds.
func (c *Client) watchPing() {
	limit := int(c.srv.conf.PingTimeout / time.Second)
	counter := 0
	for counter != limit {
		connect4.Countdown.Printf("waiting for client %s to send a PING msg %ds",
			c, limit-counter)
		select {
		case <-c.ctx.Done():
			connect4.Countdown.Printf(
				"waiting for client %s to send a PING msg was interrupted", c)
			return
		case <-time.After(time.Second):
		}
		if atomic.SwapUint32(&c.pinged, 0) == 1 {
			counter = 0
		} else {
			counter++
		}
	}
	connect4.Countdown.Printf("client %s has not sent a PING within %ds", c, limit)
	c.markDead()
}
