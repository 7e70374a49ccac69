// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package ring

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/spin"
)

// vacant marks a cell as empty. The low 63 bits hold the lap number.
const vacant = 1 << 63

// Free is a compact MPMC queue of slot indices.
//
// Each cell holds either an index or (vacant | lap). The lap lets a cell be
// reused without ABA confusion while keeping 8 bytes per cell, so index 0
// is a valid value.
type Free struct {
	_     pad
	tail  atomix.Uint64
	_     pad
	head  atomix.Uint64
	_     pad
	cells []atomix.Uintptr
	mask  uint64
	order uint64 // log2(len(cells))
}

// NewFree creates a free list holding up to capacity indices.
// Panics if capacity < 1.
func NewFree(capacity int) *Free {
	if capacity < 1 {
		panic("ring: capacity must be >= 1")
	}

	n := uint64(roundToPow2(capacity))
	order := uint64(0)
	for (1 << order) < n {
		order++
	}

	q := &Free{
		cells: make([]atomix.Uintptr, n),
		mask:  n - 1,
		order: order,
	}
	for i := range q.cells {
		q.cells[i].StoreRelaxed(vacant)
	}
	return q
}

// Push returns idx to the list. Safe for concurrent use.
// Returns iox.ErrWouldBlock if the list is full.
func (q *Free) Push(idx uintptr) error {
	if idx&vacant != 0 {
		panic("ring: index exceeds 63 bits")
	}

	sw := spin.Wait{}
	for {
		tail := q.tail.LoadAcquire()
		head := q.head.LoadAcquire()
		if tail != q.tail.LoadAcquire() {
			continue
		}
		if tail >= head+q.mask+1 {
			return iox.ErrWouldBlock
		}

		cell := &q.cells[tail&q.mask]
		lap := (tail >> q.order) & (vacant - 1)
		if cell.CompareAndSwapAcqRel(vacant|uintptr(lap), idx) {
			q.tail.CompareAndSwapAcqRel(tail, tail+1)
			return nil
		}
		// Help a stalled pusher move tail past its filled cell.
		q.tail.CompareAndSwapAcqRel(tail, tail+1)
		sw.Once()
	}
}

// Pop takes an index from the list. Safe for concurrent use.
// Returns (0, iox.ErrWouldBlock) if the list is empty.
func (q *Free) Pop() (uintptr, error) {
	sw := spin.Wait{}
	for {
		head := q.head.LoadAcquire()
		tail := q.tail.LoadAcquire()

		cell := &q.cells[head&q.mask]
		v := cell.LoadAcquire()
		if head != q.head.LoadAcquire() {
			continue
		}
		if head >= tail {
			return 0, iox.ErrWouldBlock
		}

		nextLap := ((head >> q.order) + 1) & (vacant - 1)
		emptied := vacant | uintptr(nextLap)
		if v == emptied {
			// Already taken by another popper; move head along.
			q.head.CompareAndSwapAcqRel(head, head+1)
			continue
		}
		if v&vacant != 0 {
			// Tail claimed the cell but the index is not stored yet.
			sw.Once()
			continue
		}
		if cell.CompareAndSwapAcqRel(v, emptied) {
			q.head.CompareAndSwapAcqRel(head, head+1)
			return v, nil
		}
		q.head.CompareAndSwapAcqRel(head, head+1)
		sw.Once()
	}
}

// Cap returns the list capacity.
func (q *Free) Cap() int {
	return int(q.mask + 1)
}
