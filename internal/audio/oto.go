//go:build !headless

package audio

import (
	"fmt"
	"sync"

	"github.com/ebitengine/oto/v3"
)

// OtoSink drains the ring from oto's playback goroutine.
type OtoSink struct {
	consumer
	ctx     *oto.Context
	player  *oto.Player
	format  Format
	rate    int
	started bool
	mutex   sync.Mutex // Only for setup/control operations
}

// NewOtoSink opens the default output device. oto allows one context per
// process, so only one OtoSink may exist.
func NewOtoSink(r *Ring, cfg Config) (*OtoSink, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	op := &oto.NewContextOptions{
		SampleRate:   cfg.SampleRate,
		ChannelCount: 2,
		Format:       oto.FormatSignedInt16LE,
		BufferSize:   cfg.Latency,
	}
	if cfg.Format == FormatU8 {
		op.Format = oto.FormatUnsignedInt8
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		return nil, fmt.Errorf("failed to open audio device: %w", err)
	}
	<-ready

	s := &OtoSink{
		consumer: consumer{ring: r},
		ctx:      ctx,
		format:   cfg.Format,
		rate:     cfg.SampleRate,
	}
	s.player = ctx.NewPlayer(s)
	return s, nil
}

// Read implements io.Reader for the oto player. It is the periodic pull:
// every whole frame requested is taken from the ring.
func (s *OtoSink) Read(p []byte) (int, error) {
	size := s.format.FrameSize()
	n := len(p) / size

	for i := range n {
		f := s.pull()
		b := p[i*size:]
		switch s.format {
		case FormatU8:
			// The device's silence is 0x80; flip the sign bit.
			f = f.Bias(0x8000)
			b[0] = byte(uint16(f.L) >> 8)
			b[1] = byte(uint16(f.R) >> 8)
		default:
			b[0] = byte(f.L)
			b[1] = byte(uint16(f.L) >> 8)
			b[2] = byte(f.R)
			b[3] = byte(uint16(f.R) >> 8)
		}
	}
	return n * size, nil
}

// Start begins playback.
func (s *OtoSink) Start() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if !s.started {
		s.player.Play()
		s.started = true
	}
}

// Stop pauses the device. Frames stay in the ring.
func (s *OtoSink) Stop() {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	if s.started {
		s.player.Pause()
		s.started = false
	}
}

// SetSampleRate fails for any rate other than the one the device was
// opened with; oto cannot reopen its context.
func (s *OtoSink) SetSampleRate(rate int) error {
	if rate != s.rate {
		return fmt.Errorf("%w: device opened at %d Hz", ErrFixedRate, s.rate)
	}
	return nil
}
