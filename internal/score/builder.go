package score

// Builder accumulates commands for one score. The zero value is ready to use.
type Builder struct {
	cmds []Command
}

func (b *Builder) add(c Command) *Builder {
	b.cmds = append(b.cmds, c)
	return b
}

// Note plays pitch for duration ticks.
func (b *Builder) Note(pitch, duration uint8) *Builder {
	return b.add(Note{Pitch: pitch, Duration: duration})
}

// Rest silences the channel for duration ticks.
func (b *Builder) Rest(duration uint8) *Builder { return b.add(Rest{Duration: duration}) }

// End stops the channel.
func (b *Builder) End() *Builder { return b.add(End{}) }

// Wave selects the oscillator waveform.
func (b *Builder) Wave(w Waveform) *Builder { return b.add(SetWave{Wave: w}) }

// Volume sets the envelope target and cancels any fade.
func (b *Builder) Volume(v uint8) *Builder { return b.add(SetVolume{Volume: v}) }

// Tempo sets the ticks per duration unit.
func (b *Builder) Tempo(t uint8) *Builder { return b.add(SetTempo{Ticks: t}) }

// Loop opens a loop that plays its body count times.
func (b *Builder) Loop(count uint8) *Builder { return b.add(LoopBegin{Count: count}) }

// EndLoop closes the innermost loop.
func (b *Builder) EndLoop() *Builder { return b.add(LoopEnd{}) }

// Call jumps into subroutine index.
func (b *Builder) Call(index uint8) *Builder { return b.add(Call{Index: index}) }

// Return resumes the caller.
func (b *Builder) Return() *Builder { return b.add(Return{}) }

// Restart jumps back to the start of the channel score.
func (b *Builder) Restart() *Builder { return b.add(Restart{}) }

// Attack sets the envelope attack rate.
func (b *Builder) Attack(rate uint8) *Builder { return b.add(SetAttack{Rate: rate}) }

// Debug emits v to the engine listener.
func (b *Builder) Debug(v uint8) *Builder { return b.add(Debug{Value: v}) }

// Fade moves the volume toward target at speed/256 steps per tick.
func (b *Builder) Fade(target, speed uint8) *Builder {
	return b.add(SetFade{Target: target, Speed: speed})
}

// Release sets how many ticks before a note ends the release starts, and
// its rate.
func (b *Builder) Release(lead, rate uint8) *Builder {
	return b.add(SetRelease{Lead: lead, Rate: rate})
}

// Transpose shifts following notes by semitones.
func (b *Builder) Transpose(semitones int8) *Builder {
	return b.add(SetTranspose{Semitones: semitones})
}

// Byte adds an unassigned opcode, which the interpreter skips.
func (b *Builder) Byte(op Opcode) *Builder { return b.add(Unknown{Op: op}) }

// Len returns the number of commands added so far.
func (b *Builder) Len() int { return len(b.cmds) }

// Bytes encodes the accumulated commands.
func (b *Builder) Bytes() []byte { return Encode(b.cmds) }

// Score returns the accumulated commands as a Score, going through the
// byte encoding so the result matches what a loaded score would contain.
func (b *Builder) Score() *Score { return Decode(b.Bytes()) }
