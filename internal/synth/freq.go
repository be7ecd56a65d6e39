package synth

import (
	"math"

	"github.com/icco/scoresynth/internal/score"
)

const (
	// BaseFrequency is A7, the first semitone of the top octave.
	BaseFrequency = 3520.0
	topOctave     = 7
	phaseScale    = 1 << 32
)

// FreqTable holds one phase increment per semitone of the top octave.
// Lower octaves are derived by right shifts.
type FreqTable [12]uint32

// NewFreqTable computes the increments for sampleRate. The caller
// validates sampleRate; see Config.Validate.
func NewFreqTable(sampleRate int) FreqTable {
	var t FreqTable
	for k := range t {
		f := BaseFrequency * math.Pow(2, float64(k)/12)
		t[k] = uint32(math.Round(f * phaseScale / float64(sampleRate)))
	}
	return t
}

// Increment returns the phase increment for a pitch index. Indices at or
// above the rest sentinel are not notes.
func (t *FreqTable) Increment(pitch uint8) (uint32, bool) {
	if pitch > score.MaxPitch {
		return 0, false
	}
	octave := pitch / 12
	return t[pitch%12] >> (topOctave - octave), true
}

// Frequency converts a phase increment back to Hz.
func Frequency(inc uint32, sampleRate int) float64 {
	return float64(inc) * float64(sampleRate) / phaseScale
}
