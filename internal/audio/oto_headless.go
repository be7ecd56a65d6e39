//go:build headless

package audio

import "errors"

// OtoSink is unavailable in headless builds.
type OtoSink struct {
	consumer
}

func NewOtoSink(r *Ring, cfg Config) (*OtoSink, error) {
	return nil, errors.New("built without audio output (headless)")
}

func (s *OtoSink) Start() {}

func (s *OtoSink) Stop() {}

func (s *OtoSink) SetSampleRate(rate int) error {
	return ErrFixedRate
}
