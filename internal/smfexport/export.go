// Package smfexport converts a song into a Standard MIDI File by running the
// interpreter tick by tick without rendering audio.
package smfexport

import (
	"errors"
	"fmt"

	"github.com/icco/scoresynth/internal/score"
	"github.com/icco/scoresynth/internal/synth"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

// One quarter note lasts one second, so a MIDI tick equals an engine tick.
const exportBPM = 60

const defaultMaxTicks = 60 * 60 * 10

// Options tunes the export.
type Options struct {
	// MaxTicks bounds songs that loop forever. Zero means ten minutes at 60 Hz.
	MaxTicks int
	Velocity uint8
}

type trackState struct {
	track    smf.Track
	last     uint64
	sounding bool
	note     uint8
	ended    bool
}

func (t *trackState) add(tick uint64, msg []byte) {
	t.track.Add(uint32(tick-t.last), msg) //nolint:gosec // ticks are bounded by MaxTicks
	t.last = tick
}

func (t *trackState) release(ch uint8, tick uint64) {
	if t.sounding {
		t.add(tick, midi.NoteOff(ch, t.note))
		t.sounding = false
	}
}

// Export interprets song with cfg and returns the resulting SMF. The tick
// rate of cfg becomes the file's resolution.
func Export(song *score.Song, cfg synth.Config, opts Options) (*smf.SMF, error) {
	if len(song.Channels) == 0 {
		return nil, errors.New("song has no channels")
	}
	cfg.Channels = len(song.Channels)
	eng, err := synth.New(cfg)
	if err != nil {
		return nil, err
	}
	if err := eng.Load(song); err != nil {
		return nil, err
	}
	if opts.MaxTicks <= 0 {
		opts.MaxTicks = defaultMaxTicks
	}
	if opts.Velocity == 0 {
		opts.Velocity = 100
	}

	tracks := make([]trackState, len(song.Channels))
	eng.SetListener(func(ev synth.Event) {
		t := &tracks[ev.Channel]
		ch := uint8(ev.Channel) //nolint:gosec // bounded by synth.MaxChannels
		switch ev.Kind {
		case synth.EventNote:
			t.release(ch, ev.Tick)
			t.note = score.MIDINote(ev.Pitch)
			t.add(ev.Tick, midi.NoteOn(ch, t.note, opts.Velocity))
			t.sounding = true
		case synth.EventRest:
			t.release(ch, ev.Tick)
		case synth.EventDebug:
			t.add(ev.Tick, smf.MetaText(fmt.Sprintf("debug %d", ev.Value)))
		case synth.EventEnd:
			t.release(ch, ev.Tick)
			t.ended = true
		}
	})

	for range opts.MaxTicks {
		if eng.Done() {
			break
		}
		eng.Service()
	}

	sm := smf.New()
	sm.TimeFormat = smf.MetricTicks(uint16(cfg.TickRate)) //nolint:gosec // validated against MaxSampleRate

	var tempo smf.Track
	tempo.Add(0, smf.MetaMeter(4, 4))
	tempo.Add(0, smf.MetaTempo(exportBPM))
	tempo.Close(0)
	if err := sm.Add(tempo); err != nil {
		return nil, fmt.Errorf("error adding tempo track: %w", err)
	}

	end := eng.Ticks()
	for i := range tracks {
		t := &tracks[i]
		t.release(uint8(i), end) //nolint:gosec // bounded by synth.MaxChannels
		t.track.Close(uint32(end - t.last))
		if err := sm.Add(t.track); err != nil {
			return nil, fmt.Errorf("error adding track %d: %w", i, err)
		}
	}
	return sm, nil
}

// WriteFile exports song to path.
func WriteFile(path string, song *score.Song, cfg synth.Config, opts Options) error {
	sm, err := Export(song, cfg, opts)
	if err != nil {
		return err
	}
	if err := sm.WriteFile(path); err != nil {
		return fmt.Errorf("error writing MIDI file: %w", err)
	}
	return nil
}
