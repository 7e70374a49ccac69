// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mempool

import "io"

// Producer is the interface for publishing frames into a pool.
//
// Exactly one goroutine may act as the producer at a time. The pool does not
// detect concurrent producers; violating this contract corrupts the arena.
//
// Producer calls never wait for consumers. When the arena is full the oldest
// frames are overwritten and the readers that had not consumed them are
// flagged lost.
type Producer interface {
	// Write copies p into a new frame and publishes it.
	// Returns len(p) on success, ErrTooLarge if p does not fit the pool,
	// ErrEmptyFrame for a zero-length p.
	Write(p []byte) (int, error)

	// Reserve allocates a frame of size bytes and returns its payload window
	// for the caller to fill in place. The frame stays unpublished and the
	// arena stays exclusively locked until Commit.
	Reserve(size int) ([]byte, error)

	// Commit publishes the first n bytes of the reserved window.
	// Returns (0, ErrTooLarge) and discards the frame if n exceeds the window.
	Commit(n int) (int, error)
}

// Consumer is the interface for draining frames from a pool.
//
// Each consumer owns one cursor. A consumer is not safe for concurrent use
// by multiple goroutines; distinct consumers run fully in parallel.
type Consumer interface {
	// Read copies the next frame into p (bounded read).
	// Returns (0, ErrWouldBlock) if no frame is available and
	// (0, ErrShortBuffer) without consuming the frame if it exceeds len(p).
	Read(p []byte) (int, error)

	// ReadFrame appends the next frame to buf[:0] (unbounded read).
	// The frame is always consumed when one is available.
	ReadFrame(buf []byte) ([]byte, error)

	// Lost reports whether the most recent write overwrote unread data of
	// this consumer.
	Lost() bool

	// Close unsubscribes the consumer.
	Close() error
}

var (
	_ Producer  = (*Pool)(nil)
	_ Consumer  = (*Reader)(nil)
	_ io.Writer = (*Pool)(nil)
	_ io.Reader = (*Reader)(nil)
)
