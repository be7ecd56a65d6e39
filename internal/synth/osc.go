package synth

import "github.com/icco/scoresynth/internal/score"

const (
	maxLevel   = 255
	squareMag  = 15
	levelShift = 7
)

// sample produces one signed output value for the given phase, waveform
// and envelope level.
func sample(phase uint32, wave score.Waveform, level int) int32 {
	amp := int32(level) << levelShift
	negative := phase&(1<<31) != 0

	var v int32
	switch wave {
	case score.Triangle:
		s := int32(phase>>27) & 7
		if phase&(1<<30) != 0 {
			s = 7 - s
		}
		mag := s<<1 | 1
		v = (amp * mag) >> 4
	default:
		// Squares are de-emphasized against the triangle.
		v = amp - amp>>3
		negative = !squareHigh(phase, wave)
	}
	if negative {
		return -v
	}
	return v
}

func squareHigh(phase uint32, wave score.Waveform) bool {
	top := phase >> 30
	switch wave {
	case score.Square25:
		return top == 0
	case score.Square75:
		return top != 3
	default:
		return top < 2
	}
}

// envelope is the per-channel amplitude shaper, stepped once per tick.
type envelope struct {
	level    int
	attack   int
	release  int
	lead     int
	released bool
}

// start returns the envelope to the beginning of its attack.
func (e *envelope) start() {
	e.level = 0
	e.released = false
}

// step moves the level one tick toward volume, or toward zero once released.
func (e *envelope) step(volume int) {
	if e.released {
		if e.level == 0 {
			return
		}
		dec := (e.level * e.release) >> 8
		if dec < 1 {
			dec = 1
		}
		e.level -= dec
		if e.level < 0 {
			e.level = 0
		}
		return
	}

	if e.attack == 0 || e.level == volume {
		return
	}
	delta := ((volume - e.level) * e.attack) >> 8
	switch {
	case volume > e.level && delta < 1:
		delta = 1
	case volume < e.level && delta > -1:
		delta = -1
	}
	e.level += delta
}
