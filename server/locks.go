// Lock ordering
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
	"runtime"
	"strconv"
	"strings"
	"sync"
)

// The registry tables may only be locked in this order.  Holding a
// table while locking an earlier one deadlocks two sessions that run
// the same flows in opposite order.
const (
	rankSessions = iota
	rankRooms
	rankInvites
	rankWaiters
)

// CheckLockOrder turns the rank assertion on.  Tests enable it; the
// goroutine id lookup is too expensive for production.
var CheckLockOrder = false

var (
	heldMu sync.Mutex
	held   = make(map[uint64][]int) // ranks held, per goroutine
)

func goid() uint64 {
	buf := make([]byte, 64)
	buf = buf[:runtime.Stack(buf, false)]
	// The dump starts with "goroutine <id> [...]"
	fields := strings.Fields(string(buf))
	id, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		panic(fmt.Sprintf("unparsable stack header %q", buf))
	}
	return id
}

// A rankedMutex is a mutex that, when CheckLockOrder is set, panics on
// acquisitions that violate the table order above.
type rankedMutex struct {
	mu   sync.Mutex
	rank int
}

func (m *rankedMutex) Lock() {
	if CheckLockOrder {
		id := goid()
		heldMu.Lock()
		for _, r := range held[id] {
			if r >= m.rank {
				heldMu.Unlock()
				panic(fmt.Sprintf(
					"lock order violation: rank %d acquired while holding rank %d",
					m.rank, r))
			}
		}
		held[id] = append(held[id], m.rank)
		heldMu.Unlock()
	}
	m.mu.Lock()
}

func (m *rankedMutex) Unlock() {
	m.mu.Unlock()
	if CheckLockOrder {
		id := goid()
		heldMu.Lock()
		ranks := held[id]
		for i := len(ranks) - 1; i >= 0; i-- {
			if ranks[i] == m.rank {
				held[id] = append(ranks[:i], ranks[i+1:]...)
				break
			}
		}
		if len(held[id]) == 0 {
			delete(held, id)
		}
		heldMu.Unlock()
	}
}
