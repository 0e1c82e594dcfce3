package util

import (
	"sync"
)

// RingBuffer implements a circular buffer of audio samples.
type RingBuffer struct {
	sync.RWMutex
	buf   []float64
	index int
	count int
}

// NewRingBuffer creates a new ring buffer with the given size.
func NewRingBuffer(size int) *RingBuffer {
	return &RingBuffer{buf: make([]float64, size)}
}

// Size is the capacity of the buffer.
func (r *RingBuffer) Size() int { return len(r.buf) }

// Filled reports how many samples have been written, saturating at Size.
func (r *RingBuffer) Filled() int {
	r.RLock()
	defer r.RUnlock()
	return r.count
}

// Push data onto the ring buffer. If data is longer than the buffer only its most
// recent Size samples are kept.
func (r *RingBuffer) Push(data []float64) {
	if len(data) > len(r.buf) {
		data = data[len(data)-len(r.buf):]
	}

	r.Lock()
	defer r.Unlock()

	n := copy(r.buf[r.index:], data)
	copy(r.buf, data[n:])

	r.index = (r.index + len(data)) % len(r.buf)
	r.count += len(data)
	if r.count > len(r.buf) {
		r.count = len(r.buf)
	}
}

// Reset zeroes the buffer.
func (r *RingBuffer) Reset() {
	r.Lock()
	defer r.Unlock()
	for i := range r.buf {
		r.buf[i] = 0
	}
	r.index = 0
	r.count = 0
}

// GetInto fills dst with the len(dst) samples ending offset samples before the newest one.
func (r *RingBuffer) GetInto(dst []float64, offset int) {
	if len(dst) > len(r.buf) {
		panic("cant get size greater than size of buffer")
	}

	r.RLock()
	defer r.RUnlock()

	n := len(r.buf)
	st := ((r.index-offset-len(dst))%n + n) % n
	c := copy(dst, r.buf[st:])
	copy(dst[c:], r.buf)
}
