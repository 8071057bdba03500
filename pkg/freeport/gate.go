// SPDX-License-Identifier: LGPL-3.0-or-later

package freeport

import (
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
)

// recentlyVended is how many vended ports are remembered. A port handed out
// moments ago may not be bound by its new owner yet and must not be handed out
// again.
const recentlyVended = 128

var vended = mustGate(recentlyVended)

func mustGate(size int) *gate {
	g, err := newGate(size)
	if err != nil {
		panic("cannot initialize vended port gate: " + err.Error())
	}
	return g
}

type gate struct {
	mu    sync.Mutex
	ports *lru.Cache[Port, struct{}]
}

func newGate(size int) (*gate, error) {
	cache, err := lru.New[Port, struct{}](size)
	if err != nil {
		return nil, err
	}
	return &gate{ports: cache}, nil
}

// claim records p as vended and returns true, or returns false when p was
// vended recently.
func (g *gate) claim(p Port) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	seen, _ := g.ports.ContainsOrAdd(p, struct{}{})
	return !seen
}

// release forgets p so it may be vended again.
func (g *gate) release(p Port) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.ports.Remove(p)
}
