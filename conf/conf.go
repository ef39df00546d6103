// Configuration specification
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
	"time"
)

// Internal representation
type conf struct {
	Proto struct {
		Id        string `toml:"id"`
		Port      uint   `toml:"port"`
		Clients   uint   `toml:"clients"`
		Websocket bool   `toml:"websocket"`
	} `toml:"proto"`
	Timeout struct {
		Nick      uint `toml:"nick"`
		Ping      uint `toml:"ping"`
		Reply     uint `toml:"reply"`
		Turn      uint `toml:"turn"`
		Reconnect uint `toml:"reconnect"`
	} `toml:"timeout"`
	Log struct {
		Dir string `toml:"dir"`
	} `toml:"log"`
	Web struct {
		Enabled bool `toml:"enabled"`
		Port    uint `toml:"port"`
	} `toml:"web"`
}

// Public configuration
type Conf struct {
	// Protocol Configuration
	ProtocolID string // Frame prefix clients must present
	TCPPort    uint16 // Port for accepting connections
	MaxClients uint   // Connections admitted at the same time
	WebSocket  bool   // Are Websocket connections enabled

	// Timer Configuration
	NickTimeout      time.Duration // Time to choose a nick
	PingTimeout      time.Duration // Silence before a session is dead
	ReplyTimeout     time.Duration // Time to answer a game request
	TurnTimeout      time.Duration // Time to make a move
	ReconnectTimeout time.Duration // Grace period after a dropout
	PollInterval     time.Duration // Socket read deadline granularity

	// Logging Configuration
	LogDir string // Directory the session log is written to

	// Website configuration
	WebInterface bool   // Has the web interface been enabled?
	WebPort      uint16 // Port that the web server listens on

	// Internal state
	man []Manager // List of system managers
	run bool      // Running flag
}

// Configuration object used by default
var defaultConfig = Conf{
	// Protocol Configuration
	ProtocolID: "silhavyj",
	TCPPort:    53333,
	MaxClients: 10,
	WebSocket:  true,

	// Timer Configuration
	NickTimeout:      10 * time.Second,
	PingTimeout:      6 * time.Second,
	ReplyTimeout:     30 * time.Second,
	TurnTimeout:      30 * time.Second,
	ReconnectTimeout: 60 * time.Second,
	PollInterval:     10 * time.Millisecond,

	// Logging Configuration
	LogDir: "log",

	// Website configuration
	WebInterface: true,
	WebPort:      8080,
}
