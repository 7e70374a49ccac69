// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mempool

import "encoding/binary"

// HeaderSize is the size in bytes of the header that prefixes every frame.
//
// Header layout (little-endian):
//
//	| slot uint32 | length uint32 |
//
// slot is the total number of bytes the record occupies, header included.
// length is the number of valid payload bytes. slot == 0 marks the end of
// the published stream; length == 0 with a non-zero slot marks filler.
const HeaderSize = 8

// maxCapacity keeps every slot size within the header's 32-bit field.
const maxCapacity = 1<<32 - 1 - 2*HeaderSize

// arena is the circular byte region holding framed records.
//
// The ring is one header longer than capacity: the sentinel that follows
// each allocation must fit even after a frame that uses the full capacity.
//
// Invariant: size-wc >= HeaderSize, so the write cursor always has room for
// a header before the ring end.
type arena struct {
	buf      []byte
	capacity int // usable bytes, the largest slot
	size     int // len(buf)
	wc       int // write cursor, always holds a sentinel
}

func newArena(capacity int) *arena {
	size := capacity + HeaderSize
	a := &arena{
		buf:      make([]byte, size),
		capacity: capacity,
		size:     size,
	}
	a.setHeader(0, 0, 0)
	return a
}

func (a *arena) slot(off int) int {
	return int(binary.LittleEndian.Uint32(a.buf[off:]))
}

func (a *arena) length(off int) int {
	return int(binary.LittleEndian.Uint32(a.buf[off+4:]))
}

func (a *arena) setHeader(off, slot, length int) {
	binary.LittleEndian.PutUint32(a.buf[off:], uint32(slot))
	binary.LittleEndian.PutUint32(a.buf[off+4:], uint32(length))
}

func (a *arena) setLength(off, length int) {
	binary.LittleEndian.PutUint32(a.buf[off+4:], uint32(length))
}

// payload returns the first n payload bytes of the record at off. The
// slice capacity ends at the record's slot boundary.
func (a *arena) payload(off, n int) []byte {
	start := off + HeaderSize
	end := off + a.slot(off)
	return a.buf[start : start+n : end]
}

// advance moves off forward by n bytes around the ring.
func (a *arena) advance(off, n int) int {
	return (off + n) % a.size
}

// distance returns how many bytes to lies ahead of from in ring order.
func (a *arena) distance(from, to int) int {
	d := to - from
	if d < 0 {
		d += a.size
	}
	return d
}

// allocation describes where the next frame goes and which bytes placing
// it rewrites. It is computed by plan before the arena is touched so the
// loss detector can still walk the old headers.
type allocation struct {
	start  int // write cursor before the allocation
	filler int // filler record size at start, 0 if none
	frame  int // header offset of the new frame
	slot   int // frame slot size, absorbed tail included
	next   int // write cursor after the allocation (sentinel offset)
	span   int // bytes rewritten from start, sentinel excluded
}

// region is the number of bytes from start that the allocation rewrites,
// the trailing sentinel included.
func (al *allocation) region() int {
	return al.span + HeaderSize
}

// plan computes the allocation for a payload of size bytes.
// size must be in [1, capacity-HeaderSize].
func (a *arena) plan(size int) allocation {
	al := allocation{
		start: a.wc,
		frame: a.wc,
		slot:  HeaderSize + size,
	}

	// Tail too short for the frame: pad it with filler and wrap.
	if tail := a.size - a.wc; tail < al.slot {
		al.filler = tail
		al.frame = 0
	}

	// Fewer bytes than a header would be left before the ring end:
	// absorb them so walking by slot lands on offset 0.
	if rest := a.size - (al.frame + al.slot); rest < HeaderSize {
		al.slot += rest
	}

	al.next = a.advance(al.frame, al.slot)
	al.span = al.filler + al.slot
	return al
}

// apply writes the filler, the unpublished frame header and the sentinel,
// and moves the write cursor.
func (a *arena) apply(al allocation) {
	if al.filler > 0 {
		a.setHeader(al.start, al.filler, 0)
	}
	a.setHeader(al.frame, al.slot, 0)
	a.setHeader(al.next, 0, 0)
	a.wc = al.next
}
