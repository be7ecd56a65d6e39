package score

// Decode converts raw score bytes into a Score. Decoding never fails:
// unknown opcodes become Unknown no-ops and a truncated trailing entry
// decodes as End.
func Decode(data []byte) *Score {
	s := &Score{cmds: make([]Command, 0, len(data)/2+1)}
	for i := 0; i < len(data); {
		op := Opcode(data[i])
		n := operandCount(op)
		if n > 0 && i+n >= len(data) {
			s.cmds = append(s.cmds, End{})
			break
		}
		args := data[i+1 : i+1+n]
		i += 1 + n

		s.cmds = append(s.cmds, decodeOne(op, args))
	}
	return s
}

func decodeOne(op Opcode, args []byte) Command {
	switch op {
	case OpRest:
		return Rest{Duration: args[0]}
	case OpEnd:
		return End{}
	case OpWave:
		return SetWave{Wave: Waveform(args[0])}
	case OpVolume:
		return SetVolume{Volume: args[0]}
	case OpFade:
		return SetFade{Target: args[0], Speed: args[1]}
	case OpTempo:
		return SetTempo{Ticks: args[0]}
	case OpLoop:
		return LoopBegin{Count: args[0]}
	case OpEndLoop:
		return LoopEnd{}
	case OpCall:
		return Call{Index: args[0]}
	case OpReturn:
		return Return{}
	case OpRestart:
		return Restart{}
	case OpAttack:
		return SetAttack{Rate: args[0]}
	case OpRelease:
		return SetRelease{Lead: args[0], Rate: args[1]}
	case OpTranspose:
		return SetTranspose{Semitones: int8(args[0])}
	case OpDebug:
		return Debug{Value: args[0]}
	}
	if op < OpRest {
		return Note{Pitch: uint8(op), Duration: args[0]}
	}
	return Unknown{Op: op}
}

// Encode converts commands back into score bytes.
func Encode(cmds []Command) []byte {
	out := make([]byte, 0, len(cmds)*2)
	for _, c := range cmds {
		out = appendCommand(out, c)
	}
	return out
}

func appendCommand(out []byte, c Command) []byte {
	switch c := c.(type) {
	case Note:
		pitch := c.Pitch
		if pitch > MaxPitch {
			pitch = MaxPitch
		}
		return append(out, pitch, c.Duration)
	case Rest:
		return append(out, byte(OpRest), c.Duration)
	case End:
		return append(out, byte(OpEnd))
	case SetWave:
		return append(out, byte(OpWave), byte(c.Wave))
	case SetVolume:
		return append(out, byte(OpVolume), c.Volume)
	case SetFade:
		return append(out, byte(OpFade), c.Target, c.Speed)
	case SetTempo:
		return append(out, byte(OpTempo), c.Ticks)
	case LoopBegin:
		return append(out, byte(OpLoop), c.Count)
	case LoopEnd:
		return append(out, byte(OpEndLoop))
	case Call:
		return append(out, byte(OpCall), c.Index)
	case Return:
		return append(out, byte(OpReturn))
	case Restart:
		return append(out, byte(OpRestart))
	case SetAttack:
		return append(out, byte(OpAttack), c.Rate)
	case SetRelease:
		return append(out, byte(OpRelease), c.Lead, c.Rate)
	case SetTranspose:
		return append(out, byte(OpTranspose), byte(c.Semitones))
	case Debug:
		return append(out, byte(OpDebug), c.Value)
	case Unknown:
		if operandCount(c.Op) == 0 {
			return append(out, byte(c.Op))
		}
	}
	return out
}
