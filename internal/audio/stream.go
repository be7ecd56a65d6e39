package audio

import (
	"context"
	"sync"
	"time"
)

// Renderer produces mono samples on demand.
type Renderer interface {
	Render(out []int16)
	SetSampleRate(rate int) error
}

const chunkFrames = 512

// Streamer is the producer side of the ring: it renders exactly as many
// frames as the sink has drained since the last poll.
type Streamer struct {
	mu      sync.Mutex
	r       Renderer
	ring    *Ring
	sink    Sink
	mono    []int16
	frames  []Frame
	last    uint32
	polls   uint64
	drained uint64
}

// NewStreamer connects r to ring, which sink drains.
func NewStreamer(r Renderer, ring *Ring, sink Sink) *Streamer {
	return &Streamer{
		r:      r,
		ring:   ring,
		sink:   sink,
		mono:   make([]int16, chunkFrames),
		frames: make([]Frame, chunkFrames),
	}
}

// Prime fills the ring with silence so the consumer never starts empty.
func (s *Streamer) Prime() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := s.ring.Fill(Frame{})
	s.last = s.ring.Consumed()
	return n
}

// Poll renders the frames drained since the previous poll and pushes them.
// It returns the number of frames produced.
func (s *Streamer) Poll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pollLocked()
}

func (s *Streamer) pollLocked() int {
	consumed := s.ring.Consumed()
	drained := int(consumed - s.last)
	s.last = consumed
	s.polls++

	s.drained += uint64(drained)

	// Once primed the free space equals the frames drained since the last
	// poll; filling it also recovers from an earlier short poll.
	n := s.ring.Free()

	done := 0
	for done < n {
		k := min(n-done, len(s.mono))
		s.r.Render(s.mono[:k])
		for i, v := range s.mono[:k] {
			s.frames[i] = Mono(v)
		}
		done += s.ring.PushFrames(s.frames[:k])
	}
	return done
}

// Do runs fn while holding the producer lock, so control surfaces can
// read or mutate the renderer between polls.
func (s *Streamer) Do(fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn()
}

// SetSampleRate reconfigures the sink and the renderer together. The sink
// is asked first so a fixed-rate device leaves the renderer untouched.
func (s *Streamer) SetSampleRate(rate int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.sink.SetSampleRate(rate); err != nil {
		return err
	}
	return s.r.SetSampleRate(rate)
}

// Run polls every interval until ctx is done.
func (s *Streamer) Run(ctx context.Context, interval time.Duration) error {
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
			s.Poll()
		}
	}
}

// Stats reports producer and consumer counters.
type Stats struct {
	Polls     uint64
	Drained   uint64
	Occupied  int
	Capacity  int
	Underruns uint64
}

// Stats returns a snapshot of the pipeline counters.
func (s *Streamer) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Stats{
		Polls:     s.polls,
		Drained:   s.drained,
		Occupied:  s.ring.Occupied(),
		Capacity:  s.ring.Capacity(),
		Underruns: s.sink.Underruns(),
	}
}
