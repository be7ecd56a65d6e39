package audio

import (
	"errors"
	"fmt"
	"time"
)

// ErrFixedRate is returned by sinks that cannot change rate after opening.
var ErrFixedRate = errors.New("sink sample rate is fixed")

// Format is the device sample encoding.
type Format int

const (
	// FormatS16 is signed 16-bit little endian; silence is 0.
	FormatS16 Format = iota
	// FormatU8 is unsigned 8-bit; silence is 0x80.
	FormatU8
)

// FrameSize returns the bytes per stereo frame.
func (f Format) FrameSize() int {
	if f == FormatU8 {
		return 2
	}
	return 4
}

const (
	DefaultCapacity = 2048
	DefaultLatency  = 20 * time.Millisecond
	DefaultPoll     = 5 * time.Millisecond
)

// Config describes the output side of the pipeline.
type Config struct {
	SampleRate int
	Capacity   int
	Format     Format
	Latency    time.Duration
	Poll       time.Duration
}

// Validate checks the settings before any device or ring is created.
func (c Config) Validate() error {
	if c.SampleRate <= 0 {
		return fmt.Errorf("invalid output sample rate %d", c.SampleRate)
	}
	if c.Capacity <= 0 || c.Capacity > MaxCapacity || c.Capacity&(c.Capacity-1) != 0 {
		return fmt.Errorf("%w: %d", ErrCapacity, c.Capacity)
	}
	if c.Format != FormatS16 && c.Format != FormatU8 {
		return fmt.Errorf("unknown sample format %d", c.Format)
	}
	if c.Poll <= 0 {
		return fmt.Errorf("invalid poll interval %s", c.Poll)
	}
	return nil
}
