package audio

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// ErrCapacity is returned for ring sizes that are not a power of two.
var ErrCapacity = errors.New("ring capacity must be a power of two")

// MaxCapacity bounds the ring size.
const MaxCapacity = 1 << 20

// Frame is one stereo sample pair. Zero is the engine's silence; device
// specific bias is applied by sinks.
type Frame struct {
	L, R int16
}

// Mono duplicates s into both sides.
func Mono(s int16) Frame { return Frame{L: s, R: s} }

// Bias returns f with both samples XORed against mask, converting between
// signed and offset-binary representations.
func (f Frame) Bias(mask uint16) Frame {
	return Frame{L: int16(uint16(f.L) ^ mask), R: int16(uint16(f.R) ^ mask)}
}

// Ring is a fixed-capacity single-producer single-consumer frame queue.
// The producer alone advances the write counter and the consumer alone
// advances the read counter; each side only reads the other's counter.
type Ring struct {
	frames []Frame
	mask   uint32
	write  atomic.Uint32
	read   atomic.Uint32
}

// NewRing allocates a ring of capacity frames.
func NewRing(capacity int) (*Ring, error) {
	if capacity <= 0 || capacity > MaxCapacity || capacity&(capacity-1) != 0 {
		return nil, fmt.Errorf("%w: %d", ErrCapacity, capacity)
	}
	return &Ring{
		frames: make([]Frame, capacity),
		mask:   uint32(capacity - 1),
	}, nil
}

// Capacity returns the number of frame slots.
func (r *Ring) Capacity() int { return len(r.frames) }

// Occupied returns how many frames are waiting to be read.
func (r *Ring) Occupied() int {
	return int(r.write.Load() - r.read.Load())
}

// Free returns how many frames may be pushed without overrunning.
func (r *Ring) Free() int {
	return len(r.frames) - r.Occupied()
}

// Position returns the consumer's slot index.
func (r *Ring) Position() uint32 { return r.read.Load() & r.mask }

// Consumed returns the running count of frames read.
func (r *Ring) Consumed() uint32 { return r.read.Load() }

// Push appends f. It reports false, writing nothing, when the ring is full.
// Producer side only.
func (r *Ring) Push(f Frame) bool {
	w := r.write.Load()
	if w-r.read.Load() >= uint32(len(r.frames)) {
		return false
	}
	r.frames[w&r.mask] = f
	r.write.Store(w + 1)
	return true
}

// PushFrames appends as many of fs as fit and returns the count written.
// Producer side only.
func (r *Ring) PushFrames(fs []Frame) int {
	w := r.write.Load()
	room := uint32(len(r.frames)) - (w - r.read.Load())
	n := min(uint32(len(fs)), room)
	for i := range n {
		r.frames[(w+i)&r.mask] = fs[i]
	}
	r.write.Store(w + n)
	return int(n)
}

// Fill pushes f until the ring is full. Producer side only.
func (r *Ring) Fill(f Frame) int {
	n := 0
	for r.Push(f) {
		n++
	}
	return n
}

// Pop removes the oldest frame. It reports false when the ring is empty.
// Consumer side only.
func (r *Ring) Pop() (Frame, bool) {
	rd := r.read.Load()
	if rd == r.write.Load() {
		return Frame{}, false
	}
	f := r.frames[rd&r.mask]
	r.read.Store(rd + 1)
	return f, true
}
