package score

import (
	"fmt"
	"strconv"
	"strings"
)

// Pitch index 0 is A0 (MIDI 21); index 48 is A4.
const midiOffset = 21

var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

var letterSemitone = map[byte]int{'C': 0, 'D': 2, 'E': 4, 'F': 5, 'G': 7, 'A': 9, 'B': 11}

// PitchName returns the scientific name of a pitch index, e.g. "A4".
func PitchName(pitch uint8) string {
	if pitch > MaxPitch {
		return "rest"
	}
	midi := int(pitch) + midiOffset
	return fmt.Sprintf("%s%d", noteNames[midi%12], midi/12-1)
}

// MIDINote converts a pitch index to a MIDI note number.
func MIDINote(pitch uint8) uint8 {
	return pitch + midiOffset
}

// ParsePitch accepts a note name ("A4", "C#3", "Bb2") or a raw index ("48").
func ParsePitch(s string) (uint8, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 || n > MaxPitch {
			return 0, fmt.Errorf("pitch index %d out of range 0..%d", n, MaxPitch)
		}
		return uint8(n), nil
	}

	name := strings.ToUpper(s)
	if len(name) < 2 {
		return 0, fmt.Errorf("invalid pitch %q", s)
	}
	semi, ok := letterSemitone[name[0]]
	if !ok {
		return 0, fmt.Errorf("invalid pitch %q", s)
	}
	rest := name[1:]
	switch rest[0] {
	case '#':
		semi++
		rest = rest[1:]
	case 'B':
		semi--
		rest = rest[1:]
	}
	octave, err := strconv.Atoi(rest)
	if err != nil {
		return 0, fmt.Errorf("invalid octave in pitch %q", s)
	}

	idx := (octave+1)*12 + semi - midiOffset
	if idx < 0 || idx > MaxPitch {
		return 0, fmt.Errorf("pitch %q out of range A0..C8", s)
	}
	return uint8(idx), nil
}
