// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mempool

// PoolStats is a snapshot of producer-side counters.
type PoolStats struct {
	Capacity int    // arena capacity in bytes
	Readers  int    // subscribed readers
	Frames   uint64 // frames published
	Bytes    uint64 // payload bytes published
}

// ReaderStats is a snapshot of one reader's counters.
//
// From the moment a reader subscribes, every published payload byte is
// accounted for exactly once: Bytes + LostBytes equals the bytes published
// since Subscribe, once the reader has drained the pool.
type ReaderStats struct {
	Frames     uint64 // frames read
	Bytes      uint64 // payload bytes read
	LossEvents uint64 // writes that overwrote unread data
	LostFrames uint64 // frames skipped by fast-forwarding
	LostBytes  uint64 // payload bytes skipped by fast-forwarding
}

// Stats returns the pool counters. Safe for concurrent use.
func (p *Pool) Stats() PoolStats {
	if p == nil {
		return PoolStats{}
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return PoolStats{
		Capacity: p.arena.capacity,
		Readers:  p.readers.len(),
		Frames:   p.frames,
		Bytes:    p.bytes,
	}
}

// Stats returns the reader counters. Like Read, it must be called from the
// goroutine that owns the reader.
func (r *Reader) Stats() ReaderStats {
	p, ok := r.acquire()
	if !ok {
		if r == nil {
			return ReaderStats{}
		}
		return r.stats
	}
	defer p.mu.RUnlock()
	return r.stats
}
