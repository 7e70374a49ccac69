// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mempool

// overlaps reports whether the allocation rewrites bytes the reader at
// cursor has not consumed yet. It must run before apply.
func (a *arena) overlaps(al allocation, cursor int) bool {
	region := al.region()
	switch {
	case cursor == al.start && a.slot(cursor) == 0:
		// Caught up. The reader resumes from the record written at start,
		// unless the write wraps all the way around and rewrites it.
		return region > a.size
	case cursor == al.start:
		// Full: everything the reader has left is about to go.
		return true
	case cursor > al.start:
		return cursor-al.start < region
	default:
		tail := a.size - al.start
		return region > tail+cursor
	}
}

// resume walks the reader's header chain from cursor past the rewritten
// region. It returns the first intact frame boundary, together with the
// number of frames and payload bytes skipped on the way. When the chain
// runs into the write cursor the reader resumes at the new frame.
func (a *arena) resume(al allocation, cursor int) (off, frames, bytes int) {
	region := al.region()
	for cursor != al.start {
		if a.distance(al.start, cursor) >= region {
			return cursor, frames, bytes
		}
		slot := a.slot(cursor)
		if slot == 0 {
			break
		}
		if n := a.length(cursor); n > 0 {
			frames++
			bytes += n
		}
		cursor = a.advance(cursor, slot)
	}
	return al.frame, frames, bytes
}

// detectLoss flags and fast-forwards every registered reader whose unread
// data the allocation overwrites, and clears the flag of all others.
//
// p.mu must be held exclusively and p.readers.mu must be held.
func (p *Pool) detectLoss(al allocation) {
	a := p.arena
	for _, r := range p.readers.list {
		if !a.overlaps(al, r.cursor) {
			r.lost = false
			continue
		}
		off, frames, bytes := a.resume(al, r.cursor)
		r.cursor = off
		r.lost = true
		r.stats.LossEvents++
		r.stats.LostFrames += uint64(frames)
		r.stats.LostBytes += uint64(bytes)
	}
}
