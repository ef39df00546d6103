// Wire format
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

package proto

import (
	"errors"
	"fmt"
	"io"
	"net"
	"sync"
	"time"

	connect4 "github.com/silhavyj/Connect4-server-client-game"
)

const (
	// MaxRecvPayload is the largest inbound payload length the codec
	// accepts.  Anything longer cannot have come from a well-behaved
	// client.
	MaxRecvPayload = 255

	// MaxFrameSize caps outbound frames.  An oversized frame is
	// logged and dropped, never truncated.
	MaxFrameSize = 128
)

var (
	// ErrDisconnect reports that the peer is gone (closed connection,
	// reset, or a liveness timeout).
	ErrDisconnect = errors.New("peer disconnected")

	// ErrFraming reports data that violates the wire format.  A
	// session producing it is beyond recovery.
	ErrFraming = errors.New("framing violation")
)

// Connections support read deadlines, in-memory pipes used by tests do
// too.  Anything else is read without polling.
type deadlineReader interface {
	SetReadDeadline(t time.Time) error
}

// A Codec frames messages for one connection.  Inbound frames are the
// protocol id, a 4-digit length, the payload and one delimiter byte;
// outbound frames carry a trailing "\r\n" instead.  Writes from
// concurrent goroutines are serialized.
type Codec struct {
	id    string
	rwc   io.ReadWriteCloser
	poll  time.Duration
	wlock sync.Mutex
}

func NewCodec(rwc io.ReadWriteCloser, id string, poll time.Duration) *Codec {
	return &Codec{id: id, rwc: rwc, poll: poll}
}

// readFull fills BUF, renewing a short read deadline so that ALIVE can
// be consulted while the connection is idle.
func (c *Codec) readFull(buf []byte, alive func() bool) error {
	dr, polled := c.rwc.(deadlineReader)
	for read := 0; read < len(buf); {
		if polled {
			_ = dr.SetReadDeadline(time.Now().Add(c.poll))
		}
		n, err := c.rwc.Read(buf[read:])
		read += n

		var nerr net.Error
		switch {
		case err == nil:
		case errors.As(err, &nerr) && nerr.Timeout():
			if !alive() {
				return ErrDisconnect
			}
		default:
			return fmt.Errorf("%w: %s", ErrDisconnect, err)
		}
	}
	return nil
}

// ReadFrame blocks until a whole frame has arrived and returns its
// payload.  An empty payload is a legal frame; callers skip it.  The
// error is ErrDisconnect or ErrFraming, nothing else.
func (c *Codec) ReadFrame(alive func() bool) (string, error) {
	head := make([]byte, len(c.id)+4)
	if err := c.readFull(head, alive); err != nil {
		return "", err
	}
	if string(head[:len(c.id)]) != c.id {
		return "", fmt.Errorf("%w: bad protocol id %q", ErrFraming, head[:len(c.id)])
	}

	length := 0
	for _, d := range head[len(c.id):] {
		if d < '0' || d > '9' {
			return "", fmt.Errorf("%w: malformed length %q", ErrFraming, head[len(c.id):])
		}
		length = length*10 + int(d-'0')
	}
	if length >= MaxRecvPayload {
		return "", fmt.Errorf("%w: oversized payload (%d bytes)", ErrFraming, length)
	}

	// The payload is followed by a single delimiter byte
	body := make([]byte, length+1)
	if err := c.readFull(body, alive); err != nil {
		return "", err
	}
	return string(body[:length]), nil
}

// WriteFrame frames PAYLOAD and sends it.
func (c *Codec) WriteFrame(payload string) error {
	frame := fmt.Sprintf("%s%04d%s\r\n", c.id, len(payload), payload)
	if len(frame) > MaxFrameSize {
		connect4.Warning.Printf("Dropping oversized frame (%d bytes): %q",
			len(frame), payload)
		return nil
	}

	c.wlock.Lock()
	defer c.wlock.Unlock()
	if _, err := io.WriteString(c.rwc, frame); err != nil {
		return fmt.Errorf("%w: %s", ErrDisconnect, err)
	}
	return nil
}

func (c *Codec) Close() error {
	return c.rwc.Close()
}
