// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mempool

import "sync"

// Pool is a fixed-capacity single-producer multi-consumer frame ring.
//
// The producer publishes variable-length frames with Write or with the
// zero-copy Reserve/Commit pair. Any number of readers created by
// Subscribe drain the published frames independently, each at its own pace.
// The producer never waits: a reader that falls a full ring behind loses
// the overwritten frames, is flagged (see [Reader.Lost]), and resumes at the
// oldest intact frame.
//
// Locking: mu is the arena lock, held exclusively by the producer for the
// whole allocate-copy-publish sequence (or from Reserve until Commit) and
// shared by readers for one read call. readers.mu guards the registry and
// is nested inside the exclusive arena lock during loss detection.
//
// Memory: capacity + HeaderSize bytes, allocated once by New.
type Pool struct {
	mu      sync.RWMutex
	arena   *arena
	readers registry
	closed  bool // written under both locks

	// Producer-owned reservation state.
	reserving bool
	reserved  allocation

	frames uint64 // frames published
	bytes  uint64 // payload bytes published
}

// New creates a pool whose arena holds capacity bytes of framed records.
//
// The largest frame a pool accepts is capacity - HeaderSize payload bytes.
// Returns ErrInvalidCapacity if capacity <= HeaderSize.
//
// Example:
//
//	p, err := mempool.New(4 << 20)
//	if err != nil {
//	    return err
//	}
//	defer p.Close()
func New(capacity int) (*Pool, error) {
	if capacity <= HeaderSize || uint64(capacity) > maxCapacity {
		return nil, ErrInvalidCapacity
	}
	return &Pool{arena: newArena(capacity)}, nil
}

// Cap returns the pool capacity in bytes.
func (p *Pool) Cap() int {
	if p == nil {
		return 0
	}
	return p.arena.capacity
}

// MaxFrameSize returns the largest payload a single frame can carry.
func (p *Pool) MaxFrameSize() int {
	if p == nil {
		return 0
	}
	return p.arena.capacity - HeaderSize
}

// Write copies p into a new frame and publishes it (producer only).
//
// Write never waits for readers. Returns ErrTooLarge if len(p) exceeds
// MaxFrameSize, ErrEmptyFrame if p is empty, ErrClosed after Close.
// The arena is left untouched on error.
func (p *Pool) Write(b []byte) (int, error) {
	if p == nil {
		return 0, ErrClosed
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return 0, ErrClosed
	}

	al, err := p.allocate(len(b))
	if err != nil {
		return 0, err
	}
	copy(p.arena.payload(al.frame, len(b)), b)
	p.publish(al, len(b))
	return len(b), nil
}

// Reserve allocates a frame for size payload bytes and returns its window
// for in-place filling (producer only).
//
// Readers that would lose data are handled at Reserve time for the full
// size. The pool stays exclusively locked, so readers are excluded, until
// the matching Commit. Call no other producer method in between.
//
// The returned slice has length size. Its capacity may be larger when the
// slot absorbed unusable tail bytes; Commit accepts up to cap bytes.
func (p *Pool) Reserve(size int) ([]byte, error) {
	if p == nil {
		return nil, ErrClosed
	}
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, ErrClosed
	}

	al, err := p.allocate(size)
	if err != nil {
		p.mu.Unlock()
		return nil, err
	}
	p.reserving = true
	p.reserved = al
	return p.arena.payload(al.frame, size), nil
}

// Commit publishes n bytes of the window returned by Reserve and releases
// the arena lock (producer only).
//
// Returns (0, ErrTooLarge) if n exceeds the window capacity; the frame is
// then published empty, which readers skip. Returns ErrNotReserved when no
// reservation is open.
func (p *Pool) Commit(n int) (int, error) {
	if p == nil {
		return 0, ErrClosed
	}
	if !p.reserving {
		return 0, ErrNotReserved
	}
	defer p.mu.Unlock()

	al := p.reserved
	p.reserving = false
	p.reserved = allocation{}
	if n < 0 || n > al.slot-HeaderSize {
		p.publish(al, 0)
		return 0, ErrTooLarge
	}
	p.publish(al, n)
	return n, nil
}

// Subscribe registers a new reader positioned at the write cursor.
// The reader sees only frames written after Subscribe returns.
func (p *Pool) Subscribe() (*Reader, error) {
	if p == nil {
		return nil, ErrClosed
	}
	p.readers.mu.Lock()
	defer p.readers.mu.Unlock()
	if p.closed {
		return nil, ErrClosed
	}
	r := &Reader{pool: p, cursor: p.arena.wc}
	p.readers.add(r)
	return r, nil
}

// Close releases the arena. Subsequent calls on the pool and its readers
// return ErrClosed.
//
// Close must not be called while a reservation is open or from inside
// another pool call.
func (p *Pool) Close() error {
	if p == nil {
		return ErrClosed
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.readers.mu.Lock()
	defer p.readers.mu.Unlock()
	if p.closed {
		return ErrClosed
	}
	p.closed = true
	p.readers.list = nil
	p.arena.buf = nil
	return nil
}

// allocate plans the slot for size payload bytes, runs loss detection over
// the span it rewrites, then writes the headers and moves the write cursor.
// The registry lock covers the cursor move so Subscribe never observes a
// write cursor the scan did not account for.
//
// p.mu must be held exclusively.
func (p *Pool) allocate(size int) (allocation, error) {
	if size <= 0 {
		return allocation{}, ErrEmptyFrame
	}
	if size > p.arena.capacity-HeaderSize {
		return allocation{}, ErrTooLarge
	}

	al := p.arena.plan(size)
	p.readers.mu.Lock()
	p.detectLoss(al)
	p.arena.apply(al)
	p.readers.mu.Unlock()
	return al, nil
}

// publish sets the frame length, making it visible to readers once the
// arena lock is released. p.mu must be held exclusively.
func (p *Pool) publish(al allocation, n int) {
	p.arena.setLength(al.frame, n)
	if n > 0 {
		p.frames++
		p.bytes += uint64(n)
	}
}
