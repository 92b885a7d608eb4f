// Package ringbuf provides a fixed-capacity candle window. Once full, each
// push overwrites the oldest bar, so the buffer always holds the most recent
// history. Capacity is rounded to a power of two for bitwise indexing.
package ringbuf

import (
	"sync"

	"signalbot/internal/model"
)

// Ring holds the last Cap() candles pushed. Safe for concurrent use.
type Ring struct {
	mu   sync.RWMutex
	buf  []model.Candle
	mask uint64
	head uint64 // total pushes; buf[(head-1)&mask] is the newest bar

	evicted uint64
}

// New creates a ring. capacity is rounded up to the next power of two,
// minimum 2.
func New(capacity int) *Ring {
	c := nextPow2(capacity)
	if c < 2 {
		c = 2
	}
	return &Ring{
		buf:  make([]model.Candle, c),
		mask: uint64(c - 1),
	}
}

// Push appends a candle, overwriting the oldest bar when full. Returns true
// if a bar was evicted.
func (r *Ring) Push(c model.Candle) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	full := r.head >= uint64(len(r.buf))
	r.buf[r.head&r.mask] = c
	r.head++
	if full {
		r.evicted++
	}
	return full
}

// Len returns the number of candles currently held.
func (r *Ring) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.lenLocked()
}

func (r *Ring) lenLocked() int {
	if r.head >= uint64(len(r.buf)) {
		return len(r.buf)
	}
	return int(r.head)
}

// Cap returns the window capacity.
func (r *Ring) Cap() int { return len(r.buf) }

// Evicted returns the total number of overwritten bars.
func (r *Ring) Evicted() uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.evicted
}

// Last returns the newest candle, ok=false when empty.
func (r *Ring) Last() (model.Candle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.head == 0 {
		return model.Candle{}, false
	}
	return r.buf[(r.head-1)&r.mask], true
}

// Snapshot copies the held candles, oldest first.
func (r *Ring) Snapshot() []model.Candle {
	r.mu.RLock()
	defer r.mu.RUnlock()

	n := r.lenLocked()
	out := make([]model.Candle, n)
	start := r.head - uint64(n)
	for i := 0; i < n; i++ {
		out[i] = r.buf[(start+uint64(i))&r.mask]
	}
	return out
}

// Tail copies the newest n candles, oldest first. n larger than Len returns
// everything.
func (r *Ring) Tail(n int) []model.Candle {
	snap := r.Snapshot()
	if n < len(snap) {
		snap = snap[len(snap)-n:]
	}
	return snap
}

// nextPow2 returns the smallest power of 2 >= n.
func nextPow2(n int) int {
	if n <= 0 {
		return 1
	}
	n--
	n |= n >> 1
	n |= n >> 2
	n |= n >> 4
	n |= n >> 8
	n |= n >> 16
	n |= n >> 32
	return n + 1
}
