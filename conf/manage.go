// Configuration management
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

package conf

import (
	"fmt"
	"os"
	"os/signal"

	connect4 "github.com/silhavyj/Connect4-server-client-game"
)

// A Manager is a subsystem with its own lifecycle, started when the
// server comes up and shut down on interrupt.
type Manager interface {
	fmt.Stringer
	Start()
	Shutdown()
}

func (c *Conf) Register(m Manager) {
	if c.run {
		panic(fmt.Sprintf("Late register: %#v", m))
	}

	c.man = append(c.man, m)
}

// Start brings up all registered managers and blocks until an
// interrupt is caught, then shuts them down in registration order.
func (c *Conf) Start() {
	// Start the service
	for _, m := range c.man {
		connect4.Debug.Printf("Starting %s", m)
		go m.Start()
	}
	c.run = true

	// Catch an interrupt request...
	intr := make(chan os.Signal, 1)
	signal.Notify(intr, os.Interrupt)
	<-intr
	connect4.Debug.Println("Caught interrupt")

	// ...and request all managers to shut down.
	connect4.Debug.Println("Waiting for managers to shutdown...")
	for _, m := range c.man {
		connect4.Debug.Printf("Shutting %s down", m)
		m.Shutdown()
	}
	connect4.Info.Println("Shutting down")
}
