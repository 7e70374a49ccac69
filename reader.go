// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mempool

// Reader is one consumer's cursor into a pool.
//
// A Reader is owned by a single goroutine: Read, ReadFrame, Lost, Stats and
// Close must not be called concurrently on the same Reader. Different
// readers of the same pool read in parallel.
//
// A Reader holds a non-owning reference to its pool. After the pool is
// closed, or after Close, every call returns ErrClosed.
type Reader struct {
	pool   *Pool
	cursor int  // offset of the next record header
	lost   bool // verdict of the latest overlap check
	closed bool
	stats  ReaderStats
}

// Read copies the next published frame into p and returns its length.
//
// Read is the bounded read: if the frame is longer than len(p) it returns
// (0, ErrShortBuffer) and leaves the frame in place for a retry with a
// larger buffer. Returns (0, ErrWouldBlock) when the reader has caught up.
func (r *Reader) Read(p []byte) (int, error) {
	n := 0
	err := r.next(len(p), func(frame []byte) {
		n = copy(p, frame)
	})
	return n, err
}

// ReadFrame appends the next published frame to buf[:0] and returns the
// result, growing buf when needed.
//
// ReadFrame is the unbounded read: a frame, once found, is always consumed.
// Returns (buf[:0], ErrWouldBlock) when the reader has caught up.
func (r *Reader) ReadFrame(buf []byte) ([]byte, error) {
	out := buf[:0]
	err := r.next(-1, func(frame []byte) {
		out = append(out, frame...)
	})
	return out, err
}

// Lost reports whether the most recent write overwrote frames this reader
// had not consumed. The flag is cleared by the next write that leaves the
// reader's data intact.
func (r *Reader) Lost() bool {
	p, ok := r.acquire()
	if !ok {
		return r != nil && r.lost
	}
	defer p.mu.RUnlock()
	return r.lost
}

// Close unsubscribes the reader. Closing twice returns ErrClosed.
func (r *Reader) Close() error {
	if r == nil || r.closed {
		return ErrClosed
	}
	r.closed = true
	r.pool.readers.remove(r)
	return nil
}

// acquire takes the shared arena lock. It reports false, with the lock
// released, when the reader or its pool is closed.
func (r *Reader) acquire() (*Pool, bool) {
	if r == nil || r.closed {
		return nil, false
	}
	p := r.pool
	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		return nil, false
	}
	return p, true
}

// next locates the next published frame, skipping filler, and hands its
// payload to fn under the shared arena lock. limit < 0 disables the size
// bound.
func (r *Reader) next(limit int, fn func(frame []byte)) error {
	p, ok := r.acquire()
	if !ok {
		return ErrClosed
	}
	defer p.mu.RUnlock()

	a := p.arena
	cur := r.cursor
	for {
		slot := a.slot(cur)
		if slot == 0 {
			r.cursor = cur
			return ErrWouldBlock
		}
		n := a.length(cur)
		if n == 0 {
			cur = a.advance(cur, slot)
			continue
		}
		if limit >= 0 && n > limit {
			r.cursor = cur
			return ErrShortBuffer
		}
		fn(a.payload(cur, n))
		r.cursor = a.advance(cur, slot)
		r.stats.Frames++
		r.stats.Bytes += uint64(n)
		return nil
	}
}
