// Configuration loading and dumping
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
	"io"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

// Parse a configuration from R into CONF
func load(r io.Reader) (*Conf, error) {
	// Load configuration data
	var data conf
	_, err := toml.NewDecoder(r).Decode(&data)
	if err != nil {
		return nil, err
	}

	// Create a configuration object
	c := defaultConfig

	// Apply configuration requests
	if data.Proto.Id != "" {
		c.ProtocolID = data.Proto.Id
	}
	if data.Proto.Port != 0 {
		c.TCPPort = uint16(data.Proto.Port)
	}
	if data.Proto.Clients != 0 {
		c.MaxClients = data.Proto.Clients
	}
	c.WebSocket = data.Proto.Websocket
	if data.Timeout.Nick != 0 {
		c.NickTimeout = time.Duration(data.Timeout.Nick) * time.Second
	}
	if data.Timeout.Ping != 0 {
		c.PingTimeout = time.Duration(data.Timeout.Ping) * time.Second
	}
	if data.Timeout.Reply != 0 {
		c.ReplyTimeout = time.Duration(data.Timeout.Reply) * time.Second
	}
	if data.Timeout.Turn != 0 {
		c.TurnTimeout = time.Duration(data.Timeout.Turn) * time.Second
	}
	if data.Timeout.Reconnect != 0 {
		c.ReconnectTimeout = time.Duration(data.Timeout.Reconnect) * time.Second
	}
	if data.Log.Dir != "" {
		c.LogDir = data.Log.Dir
	}
	c.WebInterface = data.Web.Enabled
	if data.Web.Port != 0 {
		c.WebPort = uint16(data.Web.Port)
	}

	return &c, nil
}

// Open a configuration file and return it
func Open(name string) (*Conf, error) {
	file, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	return load(file)
}

// Return a reference to the default configuration
func Default() *Conf {
	conf := defaultConfig
	return &conf
}

// Serialise the configuration into a writer
func (c *Conf) Dump(wr io.Writer) error {
	var data conf

	data.Proto.Id = c.ProtocolID
	data.Proto.Port = uint(c.TCPPort)
	data.Proto.Clients = c.MaxClients
	data.Proto.Websocket = c.WebSocket
	data.Timeout.Nick = uint(c.NickTimeout / time.Second)
	data.Timeout.Ping = uint(c.PingTimeout / time.Second)
	data.Timeout.Reply = uint(c.ReplyTimeout / time.Second)
	data.Timeout.Turn = uint(c.TurnTimeout / time.Second)
	data.Timeout.Reconnect = uint(c.ReconnectTimeout / time.Second)
	data.Log.Dir = c.LogDir
	data.Web.Enabled = c.WebInterface
	data.Web.Port = uint(c.WebPort)

	return toml.NewEncoder(wr).Encode(data)
}
