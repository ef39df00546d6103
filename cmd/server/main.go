// Entry point
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

package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	connect4 "github.com/silhavyj/Connect4-server-client-game"
	"github.com/silhavyj/Connect4-server-client-game/conf"
	"github.com/silhavyj/Connect4-server-client-game/server"
	"github.com/silhavyj/Connect4-server-client-game/web"
)

// Default file name for the configuration file
const defconf = "server.toml"

func main() {
	var (
		confFile = flag.String("conf", defconf, "Name of configuration file")
		dumpConf = flag.Bool("dump-config", false, "Dump default configuration")
		debug    = flag.Bool("debug", false, "Enable debug logging")
		port     = flag.Int("p", -1, "Port the server listens on")
		clients  = flag.Int("c", -1, "Maximum number of connected clients")
	)

	flag.Parse()
	if flag.NArg() != 0 {
		fmt.Fprintf(flag.CommandLine.Output(),
			"Too many arguments passed to %s.\nUsage:\n",
			os.Args[0])
		flag.PrintDefaults()
		os.Exit(1)
	}

	// Load the configuration from disk (if available)
	config, err := conf.Open(*confFile)
	if err != nil {
		if !os.IsNotExist(err) || *confFile != defconf {
			log.Fatal(err)
		}
		config = conf.Default()
	}

	// Command line flags override the configuration file
	if *port >= 0 {
		if *port > 65535 {
			log.Fatalf("Invalid port %d", *port)
		}
		config.TCPPort = uint16(*port)
	}
	if *clients >= 0 {
		config.MaxClients = uint(*clients)
	}

	if *debug {
		connect4.EnableDebug()
		connect4.Debug.Println("Debug logging has been enabled")
	}

	// Dump the configuration onto the disk if requested
	if *dumpConf {
		err = config.Dump(os.Stdout)
		if err != nil {
			log.Fatalln("Failed to dump default configuration:", err)
		}
		os.Exit(0)
	}

	// Tee every log level into a session log file
	closeLog, err := connect4.OpenLogFile(config.LogDir)
	if err != nil {
		log.Fatalln("Failed to open the log file:", err)
	}
	defer closeLog()

	connect4.Booting.Printf("<[STARTING SERVER]>")
	srv := server.New(config)

	// Enable the web interface
	web.Prepare(config, srv)

	// Allow TCP connections
	server.Prepare(config, srv)

	// Launch the server
	config.Start()
}
