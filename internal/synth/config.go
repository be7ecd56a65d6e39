package synth

import (
	"errors"
	"fmt"
)

const (
	MinSampleRate = 8000
	MaxSampleRate = 192000
	MaxChannels   = 16

	DefaultSampleRate = 22050
	DefaultTickRate   = 60
	DefaultChannels   = 4
)

var (
	ErrSampleRate = errors.New("invalid sample rate")
	ErrTickRate   = errors.New("invalid tick rate")
	ErrChannels   = errors.New("invalid channel count")
	ErrChannel    = errors.New("channel out of range")
	ErrSubroutine = errors.New("subroutine index out of range")
)

// Config holds the engine's initialization constants.
type Config struct {
	SampleRate int
	TickRate   int
	Channels   int
}

// DefaultConfig returns the settings used when nothing is overridden.
func DefaultConfig() Config {
	return Config{
		SampleRate: DefaultSampleRate,
		TickRate:   DefaultTickRate,
		Channels:   DefaultChannels,
	}
}

// Validate rejects settings the renderer cannot run with.
func (c Config) Validate() error {
	if c.SampleRate < MinSampleRate || c.SampleRate > MaxSampleRate {
		return fmt.Errorf("%w: %d (want %d..%d)", ErrSampleRate, c.SampleRate, MinSampleRate, MaxSampleRate)
	}
	if c.TickRate <= 0 || c.TickRate > c.SampleRate {
		return fmt.Errorf("%w: %d", ErrTickRate, c.TickRate)
	}
	if c.Channels <= 0 || c.Channels > MaxChannels {
		return fmt.Errorf("%w: %d (want 1..%d)", ErrChannels, c.Channels, MaxChannels)
	}
	return nil
}

// SamplesPerTick is the envelope and interpreter cadence in samples.
func (c Config) SamplesPerTick() int {
	return c.SampleRate / c.TickRate
}
