// ©Hayabusa Cloud Co., Ltd. 2026. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package mempool_test

import (
	"math/rand/v2"
	"testing"

	"code.hybscloud.com/mempool"
)

// =============================================================================
// Loss Detection
// =============================================================================

// Layouts use capacity 128 (ring length 136) with HeaderSize 8.

// TestLossCaughtUpOverwrite: A (40) and B (40) are read, then C (100) needs
// a fresh slot at offset 0 and its payload runs over the position the
// reader waits at. The reader is flagged and resumes at C.
func TestLossCaughtUpOverwrite(t *testing.T) {
	p := newPool(t, 128)
	r := subscribe(t, p)

	a, b, c := frame(1, 40), frame(2, 40), frame(3, 100)
	mustWrite(t, p, a)
	mustWrite(t, p, b)
	if seq := checkFrame(t, mustRead(t, r)); seq != 1 {
		t.Fatalf("got seq %d, want 1", seq)
	}
	if seq := checkFrame(t, mustRead(t, r)); seq != 2 {
		t.Fatalf("got seq %d, want 2", seq)
	}
	expectEmpty(t, r)

	mustWrite(t, p, c)
	if !r.Lost() {
		t.Fatal("Lost: got false, want true")
	}
	got := mustRead(t, r)
	if len(got) != 100 || checkFrame(t, got) != 3 {
		t.Fatalf("after loss: got %d bytes, want frame C", len(got))
	}
	expectEmpty(t, r)

	// Nothing unread was dropped.
	if s := r.Stats(); s.LossEvents != 1 || s.LostFrames != 0 || s.LostBytes != 0 {
		t.Fatalf("Stats: %+v", s)
	}
}

// TestLossUnreadOverwrite is the same stream with A and B still unread
// when C arrives. Both are dropped and the next read returns C.
func TestLossUnreadOverwrite(t *testing.T) {
	p := newPool(t, 128)
	r := subscribe(t, p)

	mustWrite(t, p, frame(1, 40))
	mustWrite(t, p, frame(2, 40))
	if r.Lost() {
		t.Fatal("Lost before overwrite: got true")
	}

	mustWrite(t, p, frame(3, 100))
	if !r.Lost() {
		t.Fatal("Lost: got false, want true")
	}
	if seq := checkFrame(t, mustRead(t, r)); seq != 3 {
		t.Fatalf("after loss: got seq %d, want 3", seq)
	}
	expectEmpty(t, r)

	s := r.Stats()
	if s.LossEvents != 1 || s.LostFrames != 2 || s.LostBytes != 80 {
		t.Fatalf("Stats: got %+v, want 1 event, 2 frames, 80 bytes", s)
	}
	if s.Bytes+s.LostBytes != p.Stats().Bytes {
		t.Fatalf("accounting: read %d + lost %d != written %d", s.Bytes, s.LostBytes, p.Stats().Bytes)
	}
}

// TestLossClears checks that the flag reflects only the most recent write.
func TestLossClears(t *testing.T) {
	p := newPool(t, 128)
	r := subscribe(t, p)

	mustWrite(t, p, frame(1, 40))
	mustWrite(t, p, frame(2, 40))
	mustWrite(t, p, frame(3, 100))
	if !r.Lost() {
		t.Fatal("Lost: got false, want true")
	}
	checkFrame(t, mustRead(t, r))

	mustWrite(t, p, frame(4, 10))
	if r.Lost() {
		t.Fatal("Lost after recovery: got true, want false")
	}
	if seq := checkFrame(t, mustRead(t, r)); seq != 4 {
		t.Fatalf("got seq %d, want 4", seq)
	}
}

// TestLossReaderBehind: the reader's cursor lies behind the write cursor
// and the write wraps far enough to reach it. Only the overwritten frame
// is skipped; the reader resumes at the first intact one.
func TestLossReaderBehind(t *testing.T) {
	p := newPool(t, 128)
	r := subscribe(t, p)

	// Slots at 0, 40, 80; cursor 120.
	for i := range 3 {
		mustWrite(t, p, frame(uint32(i), 32))
	}
	checkFrame(t, mustRead(t, r)) // reader at 40

	// Filler [120, 136), frame [0, 40), sentinel [40, 48): frame 1 is hit.
	mustWrite(t, p, frame(3, 32))
	if !r.Lost() {
		t.Fatal("Lost: got false, want true")
	}
	for _, want := range []uint32{2, 3} {
		if seq := checkFrame(t, mustRead(t, r)); seq != want {
			t.Fatalf("got seq %d, want %d", seq, want)
		}
	}
	expectEmpty(t, r)

	if s := r.Stats(); s.LostFrames != 1 || s.LostBytes != 32 {
		t.Fatalf("Stats: got %+v, want 1 frame, 32 bytes lost", s)
	}
}

// TestLossReaderAhead: the reader's cursor lies ahead of the write cursor.
// Overlap depends on whether the write, sentinel included, reaches it.
func TestLossReaderAhead(t *testing.T) {
	setup := func(t *testing.T) (*mempool.Pool, *mempool.Reader) {
		p := newPool(t, 128)
		r := subscribe(t, p)
		for i := range 3 {
			mustWrite(t, p, frame(uint32(i), 32)) // slots at 0, 40, 80
		}
		checkFrame(t, mustRead(t, r))
		checkFrame(t, mustRead(t, r)) // reader at 80
		mustWrite(t, p, frame(3, 32)) // filler at 120, slot at 0, cursor 40
		if r.Lost() {
			t.Fatal("setup: reader flagged lost")
		}
		return p, r
	}

	t.Run("clear", func(t *testing.T) {
		p, r := setup(t)
		// Slot [40, 68), sentinel [68, 76): stops short of 80.
		mustWrite(t, p, frame(4, 20))
		if r.Lost() {
			t.Fatal("Lost: got true, want false")
		}
		for _, want := range []uint32{2, 3, 4} {
			if seq := checkFrame(t, mustRead(t, r)); seq != want {
				t.Fatalf("got seq %d, want %d", seq, want)
			}
		}
	})

	t.Run("sentinel", func(t *testing.T) {
		p, r := setup(t)
		// Slot [40, 73), sentinel [73, 81): clobbers the header at 80.
		mustWrite(t, p, frame(4, 25))
		if !r.Lost() {
			t.Fatal("Lost: got false, want true")
		}
		for _, want := range []uint32{3, 4} {
			if seq := checkFrame(t, mustRead(t, r)); seq != want {
				t.Fatalf("got seq %d, want %d", seq, want)
			}
		}
		if s := r.Stats(); s.LostFrames != 1 {
			t.Fatalf("LostFrames: got %d, want 1", s.LostFrames)
		}
	})

	t.Run("frame", func(t *testing.T) {
		p, r := setup(t)
		// Slot [40, 80), sentinel [80, 88).
		mustWrite(t, p, frame(4, 32))
		if !r.Lost() {
			t.Fatal("Lost: got false, want true")
		}
		for _, want := range []uint32{3, 4} {
			if seq := checkFrame(t, mustRead(t, r)); seq != want {
				t.Fatalf("got seq %d, want %d", seq, want)
			}
		}
		expectEmpty(t, r)
	})
}

// TestLossOnlySlowReader: the reader that keeps up is never flagged; the
// one that does not is.
func TestLossOnlySlowReader(t *testing.T) {
	p := newPool(t, 256)
	fast := subscribe(t, p)
	slow := subscribe(t, p)

	for i := range 20 {
		mustWrite(t, p, frame(uint32(i), 50))
		if fast.Lost() {
			t.Fatalf("write %d: fast reader flagged lost", i)
		}
		if seq := checkFrame(t, mustRead(t, fast)); seq != uint32(i) {
			t.Fatalf("fast: got seq %d, want %d", seq, i)
		}
	}

	if !slow.Lost() {
		t.Fatal("slow reader: Lost got false, want true")
	}
	prev := int64(-1)
	for {
		b, err := slow.ReadFrame(nil)
		if mempool.IsWouldBlock(err) {
			break
		}
		if err != nil {
			t.Fatalf("slow ReadFrame: %v", err)
		}
		seq := int64(checkFrame(t, b))
		if seq <= prev {
			t.Fatalf("slow reader: seq %d after %d", seq, prev)
		}
		prev = seq
	}
	if prev != 19 {
		t.Fatalf("slow reader: last seq %d, want 19", prev)
	}

	s := slow.Stats()
	if s.Frames+s.LostFrames != 20 || s.Bytes+s.LostBytes != 20*50 {
		t.Fatalf("slow accounting: %+v", s)
	}
}

// TestLossAccounting runs a random interleaving of writes and reads across
// three readers. Whatever a reader did not read must be reported lost,
// frame for frame and byte for byte.
func TestLossAccounting(t *testing.T) {
	p := newPool(t, 512)
	rng := rand.New(rand.NewPCG(1, 2))

	readers := make([]*mempool.Reader, 3)
	last := make([]int64, len(readers))
	for i := range readers {
		readers[i] = subscribe(t, p)
		last[i] = -1
	}

	drain := func(i, limit int) {
		for range limit {
			b, err := readers[i].ReadFrame(nil)
			if mempool.IsWouldBlock(err) {
				return
			}
			if err != nil {
				t.Fatalf("reader %d: %v", i, err)
			}
			seq := int64(checkFrame(t, b))
			if seq <= last[i] {
				t.Fatalf("reader %d: seq %d after %d", i, seq, last[i])
			}
			last[i] = seq
		}
	}

	for i := range 10000 {
		mustWrite(t, p, frame(uint32(i), 4+rng.IntN(200)))
		// Reader 0 keeps up, 1 lags a little, 2 lags a lot.
		drain(0, 4)
		if rng.IntN(3) == 0 {
			drain(1, 2)
		}
		if rng.IntN(20) == 0 {
			drain(2, 1)
		}
	}
	for i := range readers {
		drain(i, 1<<20)
	}

	ps := p.Stats()
	for i, r := range readers {
		s := r.Stats()
		if s.Frames+s.LostFrames != ps.Frames {
			t.Fatalf("reader %d: frames read %d + lost %d != written %d", i, s.Frames, s.LostFrames, ps.Frames)
		}
		if s.Bytes+s.LostBytes != ps.Bytes {
			t.Fatalf("reader %d: bytes read %d + lost %d != written %d", i, s.Bytes, s.LostBytes, ps.Bytes)
		}
		if last[i] != int64(ps.Frames-1) {
			t.Fatalf("reader %d: last seq %d, want %d", i, last[i], ps.Frames-1)
		}
	}
	if readers[2].Stats().LossEvents == 0 {
		t.Fatal("lagging reader: expected loss events")
	}
}
