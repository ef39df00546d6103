// Web interface
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

package web

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	connect4 "github.com/silhavyj/Connect4-server-client-game"
	"github.com/silhavyj/Connect4-server-client-game/conf"
	"github.com/silhavyj/Connect4-server-client-game/server"
)

// Web serves the WebSocket transport and a small status endpoint.
type Web struct {
	srv  *server.Server
	port uint16
	ws   bool
	http *http.Server
}

func (*Web) String() string {
	return "Web Server"
}

type status struct {
	Online []string            `json:"online"`
	Rooms  []server.RoomStatus `json:"rooms"`
}

func (w *Web) routes() *http.ServeMux {
	mux := http.NewServeMux()
	if w.ws {
		mux.HandleFunc("/socket", upgrader(w.srv))
	}
	mux.HandleFunc("/status", func(hw http.ResponseWriter, r *http.Request) {
		hw.Header().Set("Content-Type", "application/json")
		err := json.NewEncoder(hw).Encode(status{
			Online: w.srv.Online(),
			Rooms:  w.srv.Rooms(),
		})
		if err != nil {
			connect4.Debug.Printf("Encoding the status failed: %s", err)
		}
	})
	return mux
}

func (w *Web) Start() {
	w.http = &http.Server{
		Addr:    fmt.Sprintf(":%d", w.port),
		Handler: w.routes(),
	}
	connect4.Booting.Printf("Web interface listening on :%d", w.port)
	err := w.http.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		connect4.Err.Print(err)
	}
}

func (w *Web) Shutdown() {
	if w.http == nil {
		return
	}
	if err := w.http.Shutdown(context.Background()); err != nil {
		connect4.Err.Print(err)
	}
}

// Prepare registers the web interface, when enabled.
func Prepare(c *conf.Conf, srv *server.Server) {
	if !c.WebInterface {
		return
	}
	c.Register(&Web{srv: srv, port: c.WebPort, ws: c.WebSocket})
}
