// Package score defines the compact score bytecode, its decoded command form,
// and helpers to build, assemble and disassemble scores.
package score

// Opcode is the leading byte of a score entry.
type Opcode uint8

const (
	// MaxPitch is the highest playable pitch index (C8).
	MaxPitch = 87
	// NumPitches is the number of playable pitch indices.
	NumPitches = MaxPitch + 1
	// NumSubroutines is the size of the subroutine table.
	NumSubroutines = 8
)

const (
	OpRest Opcode = iota + NumPitches // 88
	OpEnd
	OpWave
	OpVolume
	OpFade
	OpTempo
	OpLoop
	OpEndLoop
	OpCall
	OpReturn
	OpRestart
	OpAttack
	OpRelease
	OpTranspose
	OpDebug
)

// operandCount returns how many operand bytes follow op.
func operandCount(op Opcode) int {
	switch {
	case op <= OpRest:
		return 1
	case op == OpFade, op == OpRelease:
		return 2
	case op == OpWave, op == OpVolume, op == OpTempo, op == OpLoop,
		op == OpCall, op == OpAttack, op == OpTranspose, op == OpDebug:
		return 1
	default:
		return 0
	}
}

// Waveform selects the oscillator shape.
type Waveform uint8

const (
	Square25 Waveform = iota
	Square50
	Square75
	Triangle
)

var waveNames = [...]string{"sq25", "sq50", "sq75", "tri"}

func (w Waveform) String() string {
	if int(w) < len(waveNames) {
		return waveNames[w]
	}
	return "wave?"
}

// Valid reports whether w is a known waveform.
func (w Waveform) Valid() bool { return w <= Triangle }

// Command is one decoded score entry.
type Command interface {
	command()
}

type (
	// Note plays Pitch for Duration beats.
	Note struct {
		Pitch    uint8
		Duration uint8
	}
	// Rest silences the channel for Duration beats.
	Rest struct{ Duration uint8 }
	// End stops the channel.
	End struct{}
	// SetWave changes the waveform.
	SetWave struct{ Wave Waveform }
	// SetVolume sets the envelope target.
	SetVolume struct{ Volume uint8 }
	// SetFade glides the volume toward Target, Speed/256 steps per tick.
	SetFade struct{ Target, Speed uint8 }
	// SetTempo sets the ticks per beat.
	SetTempo struct{ Ticks uint8 }
	// LoopBegin opens a loop played Count times.
	LoopBegin struct{ Count uint8 }
	// LoopEnd closes the innermost loop.
	LoopEnd struct{}
	// Call jumps into a subroutine.
	Call struct{ Index uint8 }
	// Return leaves the current subroutine.
	Return struct{}
	// Restart jumps back to the start of the channel score.
	Restart struct{}
	// SetAttack sets the attack rate.
	SetAttack struct{ Rate uint8 }
	// SetRelease sets the release lead (ticks before note end) and decay rate.
	SetRelease struct{ Lead, Rate uint8 }
	// SetTranspose sets a semitone offset applied to every note.
	SetTranspose struct{ Semitones int8 }
	// Debug emits Value on the engine's side channel.
	Debug struct{ Value uint8 }
	// Unknown is an unrecognized opcode, executed as a no-op.
	Unknown struct{ Op Opcode }
)

func (Note) command()         {}
func (Rest) command()         {}
func (End) command()          {}
func (SetWave) command()      {}
func (SetVolume) command()    {}
func (SetFade) command()      {}
func (SetTempo) command()     {}
func (LoopBegin) command()    {}
func (LoopEnd) command()      {}
func (Call) command()         {}
func (Return) command()       {}
func (Restart) command()      {}
func (SetAttack) command()    {}
func (SetRelease) command()   {}
func (SetTranspose) command() {}
func (Debug) command()        {}
func (Unknown) command()      {}

// Score is an immutable decoded command sequence.
type Score struct {
	cmds []Command
}

// New wraps already decoded commands. The slice is copied.
func New(cmds ...Command) *Score {
	return &Score{cmds: append([]Command(nil), cmds...)}
}

// Len returns the number of commands.
func (s *Score) Len() int {
	if s == nil {
		return 0
	}
	return len(s.cmds)
}

// At returns the command at position i and whether i is in range.
func (s *Score) At(i int) (Command, bool) {
	if s == nil || i < 0 || i >= len(s.cmds) {
		return nil, false
	}
	return s.cmds[i], true
}

// Commands returns a copy of the command list.
func (s *Score) Commands() []Command {
	if s == nil {
		return nil
	}
	return append([]Command(nil), s.cmds...)
}
