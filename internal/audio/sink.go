// Package audio bridges the synth engine to an output device: a lock-free
// frame ring, the sinks that drain it, and the streamer that refills it.
package audio

import "sync/atomic"

// Sink is the periodic consumer side of the ring.
type Sink interface {
	// Position returns the consumer's slot index in the ring.
	Position() uint32
	// Capacity returns the size of the ring being drained.
	Capacity() int
	// SetSampleRate changes the pull rate. Sinks bound to a fixed-rate
	// device return an error.
	SetSampleRate(rate int) error
	// Underruns returns how many pulls found the ring empty.
	Underruns() uint64
}

// consumer holds the drain logic shared by every sink: pop one frame, or
// repeat the last one when the producer has fallen behind.
type consumer struct {
	ring      *Ring
	last      Frame
	underruns atomic.Uint64
}

func (c *consumer) pull() Frame {
	if f, ok := c.ring.Pop(); ok {
		c.last = f
		return f
	}
	c.underruns.Add(1)
	return c.last
}

func (c *consumer) Position() uint32  { return c.ring.Position() }
func (c *consumer) Capacity() int     { return c.ring.Capacity() }
func (c *consumer) Underruns() uint64 { return c.underruns.Load() }
