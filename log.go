// Shared logging
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

package connect4

import (
	"io"
	"log"
	"os"
	"path/filepath"
	"time"
)

const logFlags = log.Ldate | log.Ltime

// One handle per level.  Everything the server does is reported through
// these; no other code constructs loggers.
var (
	Err       = log.New(os.Stderr, "[ERROR]     ", logFlags)
	Info      = log.New(os.Stderr, "[INFO]      ", logFlags)
	Countdown = log.New(os.Stderr, "[COUNTDOWN] ", logFlags)
	Booting   = log.New(os.Stderr, "[BOOTING]   ", logFlags)
	Warning   = log.New(os.Stderr, "[WARNING]   ", logFlags)
	Game      = log.New(os.Stderr, "[GAME]      ", logFlags)
	Msg       = log.New(os.Stderr, "[MSG]       ", logFlags)

	Debug = log.New(io.Discard, "[debug] ", log.Ltime|log.Lshortfile|log.Lmicroseconds)
)

var levels = []*log.Logger{Err, Info, Countdown, Booting, Warning, Game, Msg}

// EnableDebug turns on debug output.
func EnableDebug() {
	Debug.SetOutput(os.Stderr)
}

// OpenLogFile creates dir if necessary, opens an append-only log file
// named after the current date and time, and tees every level into it.
// The returned function closes the file.
func OpenLogFile(dir string) (func() error, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	name := filepath.Join(dir, time.Now().Format("2006-01-02_15-04-05")+".txt")
	file, err := os.OpenFile(name, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}

	for _, l := range levels {
		l.SetOutput(io.MultiWriter(l.Writer(), file))
	}
	return file.Close, nil
}

// Silence discards all leveled output.  Used by tests.
func Silence() {
	for _, l := range levels {
		l.SetOutput(io.Discard)
	}
}
