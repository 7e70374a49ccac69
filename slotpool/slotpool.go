// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package slotpool

import (
	"errors"

	"code.hybscloud.com/atomix"
	"code.hybscloud.com/iox"
	"code.hybscloud.com/mempool/internal/ring"
)

// ErrWouldBlock indicates that no buffer is free (Get, Write) or that no
// buffer has been handed off yet (Read). Alias for [iox.ErrWouldBlock].
var ErrWouldBlock = iox.ErrWouldBlock

var (
	// ErrTooLarge is returned when data does not fit one buffer.
	ErrTooLarge = errors.New("slotpool: data too large")

	// ErrShortBuffer is returned by Read when the next buffer holds more
	// bytes than the destination. The buffer stays queued.
	ErrShortBuffer = errors.New("slotpool: short buffer")

	// ErrClosed is returned after Close.
	ErrClosed = errors.New("slotpool: closed")
)

// IsWouldBlock reports whether err indicates the operation would block.
// Delegates to [iox.IsWouldBlock].
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// Buffer is one fixed-size slot of a Pool.
type Buffer struct {
	pool *Pool
	idx  uintptr
	data []byte
	n    int
}

// Write copies p into the buffer, replacing its contents.
// Returns ErrTooLarge if len(p) exceeds Cap.
func (b *Buffer) Write(p []byte) (int, error) {
	if len(p) > len(b.data) {
		return 0, ErrTooLarge
	}
	b.n = copy(b.data, p)
	return b.n, nil
}

// Bytes returns the valid contents of the buffer.
func (b *Buffer) Bytes() []byte {
	return b.data[:b.n]
}

// Len returns the number of valid bytes.
func (b *Buffer) Len() int {
	return b.n
}

// Cap returns the buffer size.
func (b *Buffer) Cap() int {
	return len(b.data)
}

// Pool is a fixed set of buffers with a free list and a FIFO hand-off
// queue.
//
// Get and Put are safe from any goroutine. Write must be called from one
// producer goroutine and Read from one consumer goroutine.
type Pool struct {
	mem    []byte
	bufs   []Buffer
	free   *ring.Free
	ready  *ring.Handoff
	size   int
	nfree  atomix.Int64
	closed atomix.Bool
}

// New creates a pool of count buffers of size bytes each.
// Panics if size < 1 or count < 1.
func New(size, count int) *Pool {
	if size < 1 || count < 1 {
		panic("slotpool: size and count must be >= 1")
	}

	p := &Pool{
		mem:   make([]byte, size*count),
		bufs:  make([]Buffer, count),
		free:  ring.NewFree(count),
		ready: ring.NewHandoff(count),
		size:  size,
	}
	for i := range p.bufs {
		off := i * size
		p.bufs[i] = Buffer{
			pool: p,
			idx:  uintptr(i),
			data: p.mem[off : off+size : off+size],
		}
		p.free.Push(uintptr(i))
	}
	p.nfree.StoreRelaxed(int64(count))
	return p
}

// Get takes a free buffer. Returns ErrWouldBlock if every buffer is in
// use, ErrClosed after Close.
func (p *Pool) Get() (*Buffer, error) {
	if p.closed.LoadAcquire() {
		return nil, ErrClosed
	}
	idx, err := p.free.Pop()
	if err != nil {
		return nil, ErrWouldBlock
	}
	p.nfree.Add(-1)
	b := &p.bufs[idx]
	b.n = 0
	return b, nil
}

// Put returns b to the free list. Buffers of other pools and nil are
// ignored.
func (p *Pool) Put(b *Buffer) {
	if b == nil || b.pool != p {
		return
	}
	b.n = 0
	// The free list holds every index, so it cannot be full.
	p.free.Push(b.idx)
	p.nfree.Add(1)
}

// Write copies data into a free buffer and hands it to the consumer
// (producer only).
func (p *Pool) Write(data []byte) (int, error) {
	if len(data) > p.size {
		return 0, ErrTooLarge
	}
	b, err := p.Get()
	if err != nil {
		return 0, err
	}
	n, _ := b.Write(data)
	p.ready.Push(b.idx)
	return n, nil
}

// Read copies the oldest handed-off buffer into dst and recycles it
// (consumer only).
//
// Returns ErrWouldBlock when nothing is queued and ErrShortBuffer, leaving
// the buffer queued, when dst is too small.
func (p *Pool) Read(dst []byte) (int, error) {
	if p.closed.LoadAcquire() {
		return 0, ErrClosed
	}
	idx, err := p.ready.Peek()
	if err != nil {
		return 0, ErrWouldBlock
	}
	b := &p.bufs[idx]
	if b.n > len(dst) {
		return 0, ErrShortBuffer
	}
	n := copy(dst, b.Bytes())
	p.ready.Pop()
	p.Put(b)
	return n, nil
}

// BufferSize returns the size of each buffer.
func (p *Pool) BufferSize() int {
	return p.size
}

// Total returns the number of buffers.
func (p *Pool) Total() int {
	return len(p.bufs)
}

// Free returns the number of buffers currently on the free list.
func (p *Pool) Free() int {
	return int(p.nfree.Load())
}

// Close marks the pool closed. Get, Write and Read return ErrClosed
// afterwards; buffers already taken stay valid until Put.
func (p *Pool) Close() {
	p.closed.StoreRelease(true)
}
