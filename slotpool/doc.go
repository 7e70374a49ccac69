// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package slotpool provides a fixed pool of equally sized buffers for
// single-consumer hand-off between pipeline stages.
//
// Unlike [code.hybscloud.com/mempool], a slotpool never overwrites data:
// when every buffer is in use, Get and Write return [ErrWouldBlock] and the
// caller applies its own backpressure.
//
// Two ways to use it:
//
// Hand-off (one producer, one consumer):
//
//	p := slotpool.New(64<<10, 8)
//
//	// producer
//	if _, err := p.Write(sample); slotpool.IsWouldBlock(err) {
//	    // consumer is behind; drop or retry
//	}
//
//	// consumer
//	n, err := p.Read(buf)
//
// Manual buffers (any goroutine):
//
//	b, err := p.Get()
//	if err != nil {
//	    return err
//	}
//	b.Write(data)
//	send(b)       // the receiver calls p.Put(b) when done
//
// Memory is allocated once by New as a single contiguous block.
package slotpool
