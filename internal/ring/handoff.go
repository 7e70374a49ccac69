// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ring

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
)

// Handoff is a single-producer single-consumer FIFO of slot indices.
//
// Lamport ring with cached indices: the producer caches the consumer's
// head and the consumer caches the producer's tail, so each side touches
// the other's cache line only when its cached view runs out.
type Handoff struct {
	_          pad
	head       atomix.Uint64 // consumer position
	_          pad
	cachedTail uint64 // consumer's view of tail
	_          pad
	tail       atomix.Uint64 // producer position
	_          pad
	cachedHead uint64 // producer's view of head
	_          pad
	cells      []uintptr
	mask       uint64
}

// NewHandoff creates a hand-off ring holding up to capacity indices.
// Panics if capacity < 1.
func NewHandoff(capacity int) *Handoff {
	if capacity < 1 {
		panic("ring: capacity must be >= 1")
	}

	n := uint64(roundToPow2(capacity))
	return &Handoff{
		cells: make([]uintptr, n),
		mask:  n - 1,
	}
}

// Push appends idx (producer only).
// Returns iox.ErrWouldBlock if the ring is full.
func (q *Handoff) Push(idx uintptr) error {
	tail := q.tail.LoadRelaxed()
	if tail-q.cachedHead > q.mask {
		q.cachedHead = q.head.LoadAcquire()
		if tail-q.cachedHead > q.mask {
			return iox.ErrWouldBlock
		}
	}

	q.cells[tail&q.mask] = idx
	q.tail.StoreRelease(tail + 1)
	return nil
}

// Peek returns the oldest index without removing it (consumer only).
// Returns (0, iox.ErrWouldBlock) if the ring is empty.
func (q *Handoff) Peek() (uintptr, error) {
	head := q.head.LoadRelaxed()
	if head >= q.cachedTail {
		q.cachedTail = q.tail.LoadAcquire()
		if head >= q.cachedTail {
			return 0, iox.ErrWouldBlock
		}
	}
	return q.cells[head&q.mask], nil
}

// Pop removes and returns the oldest index (consumer only).
// Returns (0, iox.ErrWouldBlock) if the ring is empty.
func (q *Handoff) Pop() (uintptr, error) {
	idx, err := q.Peek()
	if err != nil {
		return 0, err
	}
	q.head.StoreRelease(q.head.LoadRelaxed() + 1)
	return idx, nil
}

// Cap returns the ring capacity.
func (q *Handoff) Cap() int {
	return int(q.mask + 1)
}
