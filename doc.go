// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package mempool provides a loss-tolerant broadcast ring for
// variable-length binary frames.
//
// A [Pool] is a fixed-capacity arena with one producer and any number of
// independent readers. Typical use is fanning out a live capture stream
// (video or audio samples) to preview, encoding and recording consumers
// that run at different speeds.
//
//   - The producer never blocks and never fails for lack of space.
//   - Each [Reader] drains frames in write order at its own pace.
//   - A reader that falls a full ring behind is flagged lost and resumes at
//     the oldest intact frame; it never sees a torn or overwritten frame.
//
// # Quick Start
//
//	p, err := mempool.New(8 << 20)
//	if err != nil {
//	    return err
//	}
//	defer p.Close()
//
//	r, _ := p.Subscribe()
//	defer r.Close()
//
//	p.Write(frame)             // producer
//	n, err := r.Read(buf)      // consumer
//
// # Frame Layout
//
// Every record in the arena is prefixed by a [HeaderSize]-byte header
// holding the record's slot size and its payload length:
//
//	slot == 0                  end of the published stream
//	slot != 0, length == 0     filler, skipped by readers
//	slot != 0, length != 0     published frame
//
// When the tail of the ring cannot hold the next frame, the tail is covered
// by a filler record and the frame is placed at offset 0. A tail too short
// to hold even a header is absorbed into the preceding frame's slot. After
// every allocation a zero sentinel header marks the end of the stream.
//
// # Producer
//
// Copying write:
//
//	if _, err := p.Write(frame); err != nil {
//	    // ErrTooLarge: frame exceeds p.MaxFrameSize()
//	}
//
// Zero-copy write. Reserve allocates the frame and keeps the arena locked
// until Commit, so the window can be filled in place, e.g. by a decoder:
//
//	buf, err := p.Reserve(maxSampleSize)
//	if err != nil {
//	    return err
//	}
//	n := decode(buf)
//	p.Commit(n)
//
// Only one goroutine may produce at a time. The pool does not detect
// concurrent producers.
//
// # Consumers
//
// Reads never block. A reader that has caught up gets [ErrWouldBlock]:
//
//	backoff := iox.Backoff{}
//	for {
//	    n, err := r.Read(buf)
//	    if mempool.IsWouldBlock(err) {
//	        backoff.Wait()
//	        continue
//	    }
//	    if err != nil {
//	        return err
//	    }
//	    backoff.Reset()
//	    if r.Lost() {
//	        // frames were dropped before this one
//	    }
//	    consume(buf[:n])
//	}
//
// [Reader.Read] is bounded by len(buf): a larger frame yields
// [ErrShortBuffer] and stays queued. [Reader.ReadFrame] is unbounded and
// grows its buffer instead.
//
// # Loss
//
// Before each allocation the producer checks every reader cursor against
// the bytes the allocation rewrites. A reader whose unread frames would be
// overwritten is flagged lost and moved to the first frame boundary past
// the rewritten bytes (or to the new frame). Readers whose data stays
// intact have the flag cleared: loss is a point-in-time signal, not a
// sticky failure. Loss is never returned as an error; it is observed with
// [Reader.Lost] and counted in [Reader.Stats].
//
// # Thread Safety
//
// The pool uses two locks:
//
//   - the arena lock, exclusive for a whole write (Reserve to Commit) and
//     shared for a single read, so readers proceed in parallel with each
//     other and never with the producer;
//   - the registry lock, taken alone by Subscribe and Close, and nested in
//     the arena lock while the producer scans reader cursors.
//
// A [Reader] belongs to one goroutine at a time.
//
// # Dependencies
//
// This package uses [code.hybscloud.com/iox] for semantic errors. The
// companion package [code.hybscloud.com/mempool/slotpool] provides a
// fixed-slot buffer pool for single-consumer hand-off.
package mempool
