package synth

import (
	"math"
	"testing"

	"github.com/icco/scoresynth/internal/score"
)

func TestFreqTableAllOctaves(t *testing.T) {
	for _, rate := range []int{8000, 22050, 44100, 48000} {
		table := NewFreqTable(rate)
		for octave := 0; octave < 8; octave++ {
			for semi := 0; semi < 12; semi++ {
				want := BaseFrequency * math.Pow(2, float64(semi)/12) / math.Pow(2, float64(7-octave))
				got := Frequency(table[semi]>>(7-octave), rate)
				if math.Abs(got-want) > 0.01 {
					t.Errorf("rate %d octave %d semitone %d: got %.4f Hz, want %.4f Hz", rate, octave, semi, got, want)
				}
			}
		}
	}
}

func TestIncrementKnownPitches(t *testing.T) {
	table := NewFreqTable(DefaultSampleRate)

	tests := []struct {
		name string
		hz   float64
	}{
		{"A0", 27.5},
		{"A4", 440},
		{"C4", 261.6256},
		{"C8", 4186.009},
	}

	for _, tt := range tests {
		p, err := score.ParsePitch(tt.name)
		if err != nil {
			t.Fatalf("ParsePitch(%q): %v", tt.name, err)
		}
		inc, ok := table.Increment(p)
		if !ok {
			t.Fatalf("Increment(%s) reported not a note", tt.name)
		}
		got := Frequency(inc, DefaultSampleRate)
		if math.Abs(got-tt.hz) > 0.01 {
			t.Errorf("%s: got %.4f Hz, want %.4f Hz", tt.name, got, tt.hz)
		}
	}
}

func TestIncrementRejectsRest(t *testing.T) {
	table := NewFreqTable(DefaultSampleRate)
	for _, p := range []uint8{88, 89, 200, 255} {
		if inc, ok := table.Increment(p); ok || inc != 0 {
			t.Errorf("Increment(%d) = %d, %v; want 0, false", p, inc, ok)
		}
	}
}
