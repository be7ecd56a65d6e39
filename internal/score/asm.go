package score

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"
)

// SyntaxError reports a problem in assembly source.
type SyntaxError struct {
	Line int
	Msg  string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Assembler collects commands into channel and subroutine sections. It is
// shared by the text assembler and the Lua front end.
type Assembler struct {
	channels map[int]*Builder
	subs     map[int]*Builder
	cur      *Builder
}

// NewAssembler returns an assembler whose current section is channel 0.
func NewAssembler() *Assembler {
	a := &Assembler{
		channels: make(map[int]*Builder),
		subs:     make(map[int]*Builder),
	}
	a.cur = a.section(a.channels, 0)
	return a
}

func (a *Assembler) section(m map[int]*Builder, n int) *Builder {
	b, ok := m[n]
	if !ok {
		b = &Builder{}
		m[n] = b
	}
	return b
}

// Channel makes channel n the current section.
func (a *Assembler) Channel(n int) error {
	if n < 0 || n > 255 {
		return fmt.Errorf("channel %d out of range", n)
	}
	a.cur = a.section(a.channels, n)
	return nil
}

// Sub makes subroutine n the current section.
func (a *Assembler) Sub(n int) error {
	if n < 0 || n >= NumSubroutines {
		return fmt.Errorf("subroutine %d out of range 0..%d", n, NumSubroutines-1)
	}
	a.cur = a.section(a.subs, n)
	return nil
}

// Current returns the builder of the current section.
func (a *Assembler) Current() *Builder { return a.cur }

// Song returns the assembled song. Empty sections are dropped.
func (a *Assembler) Song() *Song {
	song := &Song{}
	maxCh := -1
	for n, b := range a.channels {
		if b.Len() > 0 && n > maxCh {
			maxCh = n
		}
	}
	song.Channels = make([]*Score, maxCh+1)
	for n, b := range a.channels {
		if b.Len() > 0 {
			song.Channels[n] = b.Score()
		}
	}
	for n, b := range a.subs {
		song.Subroutines[n] = b.Score()
	}
	return song
}

// Assemble parses text assembly into a Song.
func Assemble(src string) (*Song, error) {
	a := NewAssembler()
	sc := bufio.NewScanner(strings.NewReader(src))
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if i := strings.IndexByte(text, '#'); i >= 0 {
			text = text[:i]
		}
		fields := strings.Fields(text)
		if len(fields) == 0 {
			continue
		}
		if err := a.Exec(fields[0], fields[1:]); err != nil {
			return nil, &SyntaxError{Line: line, Msg: err.Error()}
		}
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return a.Song(), nil
}

// Exec applies one mnemonic with its textual arguments.
func (a *Assembler) Exec(mnemonic string, args []string) error {
	mnemonic = strings.ToLower(mnemonic)
	want, ok := arity[mnemonic]
	if !ok {
		return fmt.Errorf("unknown mnemonic %q", mnemonic)
	}
	if len(args) != want {
		return fmt.Errorf("%s takes %d argument(s), got %d", mnemonic, want, len(args))
	}

	b := a.cur
	switch mnemonic {
	case "channel", "sub":
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid section number %q", args[0])
		}
		if mnemonic == "sub" {
			return a.Sub(n)
		}
		return a.Channel(n)
	case "note":
		p, err := ParsePitch(args[0])
		if err != nil {
			return err
		}
		d, err := parseByte(args[1])
		if err != nil {
			return err
		}
		b.Note(p, d)
	case "rest":
		d, err := parseByte(args[0])
		if err != nil {
			return err
		}
		b.Rest(d)
	case "wave":
		w, err := ParseWaveform(args[0])
		if err != nil {
			return err
		}
		b.Wave(w)
	case "transpose":
		n, err := strconv.Atoi(args[0])
		if err != nil || n < -128 || n > 127 {
			return fmt.Errorf("invalid transpose %q", args[0])
		}
		b.Transpose(int8(n))
	case "end":
		b.End()
	case "endloop":
		b.EndLoop()
	case "ret":
		b.Return()
	case "restart":
		b.Restart()
	case "db":
		v, err := parseByte(args[0])
		if err != nil {
			return err
		}
		if Opcode(v) <= OpDebug {
			return fmt.Errorf("db %#02x is an assigned opcode", v)
		}
		b.Byte(Opcode(v))
	default:
		vals := make([]uint8, len(args))
		for i, s := range args {
			v, err := parseByte(s)
			if err != nil {
				return err
			}
			vals[i] = v
		}
		switch mnemonic {
		case "vol":
			b.Volume(vals[0])
		case "fade":
			b.Fade(vals[0], vals[1])
		case "tempo":
			b.Tempo(vals[0])
		case "loop":
			b.Loop(vals[0])
		case "call":
			b.Call(vals[0])
		case "attack":
			b.Attack(vals[0])
		case "release":
			b.Release(vals[0], vals[1])
		case "debug":
			b.Debug(vals[0])
		}
	}
	return nil
}

var arity = map[string]int{
	"channel": 1, "sub": 1,
	"note": 2, "rest": 1, "end": 0,
	"wave": 1, "vol": 1, "fade": 2, "tempo": 1,
	"loop": 1, "endloop": 0, "call": 1, "ret": 0, "restart": 0,
	"attack": 1, "release": 2, "transpose": 1, "debug": 1,
	"db": 1,
}

func parseByte(s string) (uint8, error) {
	n, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("invalid byte value %q", s)
	}
	return uint8(n), nil
}

// ParseWaveform accepts a waveform name or its number.
func ParseWaveform(s string) (Waveform, error) {
	s = strings.ToLower(s)
	for i, name := range waveNames {
		if s == name {
			return Waveform(i), nil
		}
	}
	switch s {
	case "square", "sq":
		return Square50, nil
	case "triangle":
		return Triangle, nil
	}
	n, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("unknown waveform %q", s)
	}
	return Waveform(n), nil
}
