package score

import (
	"fmt"
	"strings"
)

// Line is one disassembled command.
type Line struct {
	Index    int
	Mnemonic string
	Args     []string
}

func (l Line) String() string {
	if len(l.Args) == 0 {
		return l.Mnemonic
	}
	return l.Mnemonic + " " + strings.Join(l.Args, " ")
}

// Disassemble renders a score back into assembler mnemonics.
func Disassemble(s *Score) []Line {
	lines := make([]Line, 0, s.Len())
	for i := 0; i < s.Len(); i++ {
		c, _ := s.At(i)
		m, args := mnemonic(c)
		lines = append(lines, Line{Index: i, Mnemonic: m, Args: args})
	}
	return lines
}

func mnemonic(c Command) (string, []string) {
	d := func(v uint8) string { return fmt.Sprintf("%d", v) }
	switch c := c.(type) {
	case Note:
		return "note", []string{PitchName(c.Pitch), d(c.Duration)}
	case Rest:
		return "rest", []string{d(c.Duration)}
	case End:
		return "end", nil
	case SetWave:
		if !c.Wave.Valid() {
			return "wave", []string{d(uint8(c.Wave))}
		}
		return "wave", []string{c.Wave.String()}
	case SetVolume:
		return "vol", []string{d(c.Volume)}
	case SetFade:
		return "fade", []string{d(c.Target), d(c.Speed)}
	case SetTempo:
		return "tempo", []string{d(c.Ticks)}
	case LoopBegin:
		return "loop", []string{d(c.Count)}
	case LoopEnd:
		return "endloop", nil
	case Call:
		return "call", []string{d(c.Index)}
	case Return:
		return "ret", nil
	case Restart:
		return "restart", nil
	case SetAttack:
		return "attack", []string{d(c.Rate)}
	case SetRelease:
		return "release", []string{d(c.Lead), d(c.Rate)}
	case SetTranspose:
		return "transpose", []string{fmt.Sprintf("%d", c.Semitones)}
	case Debug:
		return "debug", []string{d(c.Value)}
	case Unknown:
		return "db", []string{fmt.Sprintf("0x%02x", uint8(c.Op))}
	}
	return "?", nil
}
