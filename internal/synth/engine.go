// Package synth implements the score interpreter, oscillators, envelopes
// and mixer. An Engine is not safe for concurrent use; callers that share
// one between goroutines serialize access themselves.
package synth

import (
	"fmt"

	"github.com/icco/scoresynth/internal/score"
)

// EventKind identifies what an Event reports.
type EventKind int

const (
	EventNote EventKind = iota
	EventRest
	EventDebug
	EventEnd
)

func (k EventKind) String() string {
	switch k {
	case EventNote:
		return "note"
	case EventRest:
		return "rest"
	case EventDebug:
		return "debug"
	case EventEnd:
		return "end"
	}
	return "unknown"
}

// Event is emitted by the interpreter as commands execute. Tick is the
// engine tick on which the command ran.
type Event struct {
	Kind    EventKind
	Channel int
	Pitch   uint8
	Ticks   int
	Value   uint8
	Tick    uint64
}

// Listener receives interpreter events. It runs on the rendering path and
// must not block.
type Listener func(Event)

// ChannelStatus is a read-only view of one channel.
type ChannelStatus struct {
	Active  bool
	Playing bool
	Pitch   uint8
	Wave    score.Waveform
	Volume  int
	Level   int
	Total   int
}

// Engine is the synthesizer context: channels, subroutine table, tick clock.
type Engine struct {
	cfg      Config
	freq     FreqTable
	spt      int
	tickPos  int
	ticks    uint64
	paused   bool
	channels []channel
	subs     [score.NumSubroutines]*score.Score
	listener Listener
}

// New validates cfg and returns an engine with every channel idle.
func New(cfg Config) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:      cfg,
		freq:     NewFreqTable(cfg.SampleRate),
		spt:      cfg.SamplesPerTick(),
		channels: make([]channel, cfg.Channels),
	}, nil
}

// Config returns the active configuration.
func (e *Engine) Config() Config { return e.cfg }

// SamplesPerTick returns the current tick cadence in samples.
func (e *Engine) SamplesPerTick() int { return e.spt }

// SetListener installs l, replacing any previous listener. nil removes it.
func (e *Engine) SetListener(l Listener) { e.listener = l }

func (e *Engine) emit(ev Event) {
	if e.listener != nil {
		ev.Tick = e.ticks
		e.listener(ev)
	}
}

// SetScore attaches s to channel ch, resetting its state. A nil score
// leaves the channel inactive.
func (e *Engine) SetScore(ch int, s *score.Score) error {
	if ch < 0 || ch >= len(e.channels) {
		return fmt.Errorf("%w: %d", ErrChannel, ch)
	}
	e.channels[ch].reset(s)
	return nil
}

// SetSubroutine installs s at index i of the subroutine table.
func (e *Engine) SetSubroutine(i int, s *score.Score) error {
	if i < 0 || i >= score.NumSubroutines {
		return fmt.Errorf("%w: %d", ErrSubroutine, i)
	}
	e.subs[i] = s
	return nil
}

// Load attaches every channel and subroutine of song. Channels beyond the
// engine's count are reported as an error; unused engine channels are
// cleared.
func (e *Engine) Load(song *score.Song) error {
	if len(song.Channels) > len(e.channels) {
		return fmt.Errorf("%w: song uses %d channels, engine has %d", ErrChannel, len(song.Channels), len(e.channels))
	}
	e.subs = song.Subroutines
	for i := range e.channels {
		var s *score.Score
		if i < len(song.Channels) {
			s = song.Channels[i]
		}
		e.channels[i].reset(s)
	}
	e.tickPos = 0
	return nil
}

// Stop marks channel ch inactive.
func (e *Engine) Stop(ch int) {
	if ch >= 0 && ch < len(e.channels) && e.channels[ch].active {
		e.channels[ch].stop(e, ch)
	}
}

// Pause freezes or resumes rendering. While paused Render outputs silence
// and no state advances.
func (e *Engine) Pause(p bool) { e.paused = p }

// Paused reports whether the engine is paused.
func (e *Engine) Paused() bool { return e.paused }

// TotalDuration returns the ticks of notes and rests channel ch has started.
func (e *Engine) TotalDuration(ch int) int {
	if ch < 0 || ch >= len(e.channels) {
		return 0
	}
	return e.channels[ch].total
}

// Active reports whether channel ch still has a score running.
func (e *Engine) Active(ch int) bool {
	return ch >= 0 && ch < len(e.channels) && e.channels[ch].active
}

// Done reports whether every channel has finished.
func (e *Engine) Done() bool {
	for i := range e.channels {
		if e.channels[i].active {
			return false
		}
	}
	return true
}

// Ticks returns the number of ticks serviced so far.
func (e *Engine) Ticks() uint64 { return e.ticks }

// Status returns a view of every channel.
func (e *Engine) Status() []ChannelStatus {
	out := make([]ChannelStatus, len(e.channels))
	for i := range e.channels {
		c := &e.channels[i]
		out[i] = ChannelStatus{
			Active:  c.active,
			Playing: c.sounding(),
			Pitch:   c.pitch,
			Wave:    c.wave,
			Volume:  c.volume,
			Level:   c.env.level,
			Total:   c.total,
		}
	}
	return out
}

// SetSampleRate switches the output rate, rebuilding the frequency table
// and the tick cadence. Invalid rates are rejected and nothing changes.
func (e *Engine) SetSampleRate(rate int) error {
	cfg := e.cfg
	cfg.SampleRate = rate
	if err := cfg.Validate(); err != nil {
		return err
	}
	e.cfg = cfg
	e.freq = NewFreqTable(rate)
	e.spt = cfg.SamplesPerTick()
	if e.tickPos >= e.spt {
		e.tickPos = 0
	}
	for i := range e.channels {
		e.channels[i].recompute(&e.freq)
	}
	return nil
}

// Service advances every channel by one tick.
func (e *Engine) Service() {
	for i := range e.channels {
		e.channels[i].tick(e, i)
	}
	e.ticks++
}

// Render fills out with mixed samples, servicing the channels at every
// tick boundary.
func (e *Engine) Render(out []int16) {
	if e.paused {
		clear(out)
		return
	}
	for i := range out {
		if e.tickPos == 0 {
			e.Service()
		}
		e.tickPos++
		if e.tickPos >= e.spt {
			e.tickPos = 0
		}
		out[i] = e.mix()
	}
}

// mix produces one sample. The divisor carries one extra unit of headroom
// over the number of sounding channels.
func (e *Engine) mix() int16 {
	var sum int32
	active := int32(0)
	for i := range e.channels {
		c := &e.channels[i]
		if !c.sounding() {
			continue
		}
		c.phase += c.inc
		sum += sample(c.phase, c.wave, c.env.level)
		active++
	}
	if active == 0 {
		return 0
	}
	return int16(sum / (active + 1))
}
