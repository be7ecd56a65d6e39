package audio

import "fmt"

// ManualSink is a consumer clocked by its caller instead of a device. It
// drives offline rendering and tests.
type ManualSink struct {
	consumer
	rate int
	bias uint16
}

// NewManualSink returns a sink draining r at rate frames per second.
func NewManualSink(r *Ring, rate int) *ManualSink {
	return &ManualSink{consumer: consumer{ring: r}, rate: rate}
}

// SetBias sets the XOR mask applied to every pulled frame.
func (s *ManualSink) SetBias(mask uint16) { s.bias = mask }

// Rate returns the configured pull rate.
func (s *ManualSink) Rate() int { return s.rate }

// SetSampleRate changes the pull rate.
func (s *ManualSink) SetSampleRate(rate int) error {
	if rate <= 0 {
		return fmt.Errorf("invalid sink rate %d", rate)
	}
	s.rate = rate
	return nil
}

// Pull drains exactly n frames, one per simulated period, appending them
// to dst.
func (s *ManualSink) Pull(n int, dst []Frame) []Frame {
	for range n {
		dst = append(dst, s.pull().Bias(s.bias))
	}
	return dst
}
