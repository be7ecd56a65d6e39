package cmd

import (
	"fmt"

	"github.com/icco/scoresynth/internal/score"
	"github.com/icco/scoresynth/internal/synth"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"

	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv"
)

// midiMirror echoes interpreter notes to a MIDI output port. Events arrive
// ahead of the audio by the ring buffer's latency.
type midiMirror struct {
	out     drivers.Out
	send    func(msg midi.Message) error
	playing map[int]uint8
}

func openMIDIMirror(name string) (*midiMirror, error) {
	out, err := midi.FindOutPort(name)
	if err != nil {
		return nil, fmt.Errorf("failed to find MIDI output %q: %w", name, err)
	}
	send, err := midi.SendTo(out)
	if err != nil {
		return nil, fmt.Errorf("failed to open port %s: %w", out.String(), err)
	}
	return &midiMirror{out: out, send: send, playing: make(map[int]uint8)}, nil
}

// Handle is installed as the engine listener.
func (m *midiMirror) Handle(ev synth.Event) {
	ch := uint8(ev.Channel & 0x0F) //nolint:gosec // masked to the MIDI channel range
	switch ev.Kind {
	case synth.EventNote:
		m.noteOff(ev.Channel, ch)
		note := score.MIDINote(ev.Pitch)
		_ = m.send(midi.NoteOn(ch, note, 100))
		m.playing[ev.Channel] = note
	case synth.EventRest, synth.EventEnd:
		m.noteOff(ev.Channel, ch)
	}
}

func (m *midiMirror) noteOff(channel int, ch uint8) {
	if note, ok := m.playing[channel]; ok {
		_ = m.send(midi.NoteOff(ch, note))
		delete(m.playing, channel)
	}
}

// Close silences every channel and closes the port.
func (m *midiMirror) Close() {
	for channel := range m.playing {
		m.noteOff(channel, uint8(channel&0x0F)) //nolint:gosec // masked to the MIDI channel range
	}
	for ch := uint8(0); ch < 16; ch++ {
		_ = m.send(midi.ControlChange(ch, 123, 0)) // All notes off
	}
	_ = m.out.Close()
	midi.CloseDriver()
}
