// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package ring provides bounded index queues for buffer-slot bookkeeping.
//
//   - [Free]: multi-producer multi-consumer free list of slot indices
//   - [Handoff]: single-producer single-consumer FIFO of slot indices
//
// Both are non-blocking and return [iox.ErrWouldBlock] when full or empty.
// Capacity rounds up to the next power of 2.
package ring
