// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mempool

import "sync"

// registry is the set of subscribed readers.
//
// Its mutex is independent of the arena lock. Subscribe and unsubscribe
// take only this mutex; the producer takes it nested inside the exclusive
// arena lock while scanning cursors and moving the write cursor.
type registry struct {
	mu   sync.Mutex
	list []*Reader
}

// add registers r. mu must be held.
func (g *registry) add(r *Reader) {
	g.list = append(g.list, r)
}

// remove unregisters r. Reports whether r was registered.
func (g *registry) remove(r *Reader) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i, x := range g.list {
		if x == r {
			last := len(g.list) - 1
			g.list[i] = g.list[last]
			g.list[last] = nil
			g.list = g.list[:last]
			return true
		}
	}
	return false
}

func (g *registry) len() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.list)
}
