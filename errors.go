// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mempool

import (
	"errors"

	"code.hybscloud.com/iox"
)

// ErrWouldBlock indicates that a reader has caught up with the producer
// and no published frame is available yet.
//
// ErrWouldBlock is a control flow signal, not a failure. Reads never block;
// the caller decides how to wait (backoff, yield, or an external signal).
//
// This is an alias for [iox.ErrWouldBlock] for ecosystem consistency.
//
// Example:
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
//	    consume(buf[:n])
//	}
var ErrWouldBlock = iox.ErrWouldBlock

var (
	// ErrInvalidCapacity is returned by New when the capacity cannot hold
	// a single frame header or does not fit the 32-bit slot size field.
	ErrInvalidCapacity = errors.New("mempool: invalid capacity")

	// ErrTooLarge is returned when a frame does not fit the pool
	// (payload larger than Cap() - HeaderSize), or when Commit publishes
	// more bytes than were reserved.
	ErrTooLarge = errors.New("mempool: frame too large")

	// ErrEmptyFrame is returned when writing or reserving a zero-length
	// frame. A zero payload length is the filler encoding.
	ErrEmptyFrame = errors.New("mempool: empty frame")

	// ErrShortBuffer is returned by a bounded read when the next frame is
	// larger than the destination. The frame is not consumed.
	ErrShortBuffer = errors.New("mempool: short buffer")

	// ErrClosed is returned by operations on a closed pool or reader.
	ErrClosed = errors.New("mempool: closed")

	// ErrNotReserved is returned by Commit without a preceding Reserve.
	ErrNotReserved = errors.New("mempool: no reservation")
)

// IsWouldBlock reports whether err indicates that no frame is available.
// Delegates to [iox.IsWouldBlock] for wrapped error support.
func IsWouldBlock(err error) bool {
	return iox.IsWouldBlock(err)
}

// IsSemantic reports whether err is a control flow signal (not a failure).
// Delegates to [iox.IsSemantic].
func IsSemantic(err error) bool {
	return iox.IsSemantic(err)
}

// IsNonFailure reports whether err represents a non-failure condition.
// Returns true for nil, ErrWouldBlock, or ErrMore.
// Delegates to [iox.IsNonFailure].
func IsNonFailure(err error) bool {
	return iox.IsNonFailure(err)
}
