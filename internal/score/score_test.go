package score

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestDecode(t *testing.T) {
	data := []byte{
		48, 4, // note A4 4
		byte(OpRest), 2,
		byte(OpFade), 10, 20,
		byte(OpTranspose), 0xF4, // -12
		0xC0, // unknown
		byte(OpEnd),
	}
	want := []Command{
		Note{Pitch: 48, Duration: 4},
		Rest{Duration: 2},
		SetFade{Target: 10, Speed: 20},
		SetTranspose{Semitones: -12},
		Unknown{Op: 0xC0},
		End{},
	}

	got := Decode(data).Commands()
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Decode:\n got %#v\nwant %#v", got, want)
	}
	if enc := Encode(got); !bytes.Equal(enc, data) {
		t.Errorf("Encode = %v, want %v", enc, data)
	}
}

func TestDecodeTruncated(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want []Command
	}{
		{"empty", nil, []Command{}},
		{"note without duration", []byte{48}, []Command{End{}}},
		{"release missing rate", []byte{48, 1, byte(OpRelease), 3}, []Command{Note{Pitch: 48, Duration: 1}, End{}}},
		{"no trailing end", []byte{byte(OpRest), 1}, []Command{Rest{Duration: 1}}},
	}

	for _, tt := range tests {
		got := Decode(tt.data).Commands()
		if len(got) == 0 && len(tt.want) == 0 {
			continue
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("%s: got %#v, want %#v", tt.name, got, tt.want)
		}
	}
}

func TestScoreAtBounds(t *testing.T) {
	s := New(End{})
	if _, ok := s.At(-1); ok {
		t.Error("At(-1) should be out of range")
	}
	if _, ok := s.At(1); ok {
		t.Error("At(1) should be out of range")
	}
	var nilScore *Score
	if nilScore.Len() != 0 {
		t.Error("nil score should be empty")
	}
	if _, ok := nilScore.At(0); ok {
		t.Error("nil score has no commands")
	}
}

func TestParsePitch(t *testing.T) {
	tests := []struct {
		in   string
		want uint8
		ok   bool
	}{
		{"A0", 0, true},
		{"A4", 48, true},
		{"a4", 48, true},
		{"C4", 39, true},
		{"C#4", 40, true},
		{"Db4", 40, true},
		{"Bb3", 37, true},
		{"C8", 87, true},
		{"60", 60, true},
		{"G#0", 0, false},
		{"C#8", 0, false},
		{"88", 0, false},
		{"H4", 0, false},
		{"C", 0, false},
		{"Cx", 0, false},
	}

	for _, tt := range tests {
		got, err := ParsePitch(tt.in)
		if tt.ok && err != nil {
			t.Errorf("ParsePitch(%q): %v", tt.in, err)
			continue
		}
		if !tt.ok {
			if err == nil {
				t.Errorf("ParsePitch(%q) = %d, want error", tt.in, got)
			}
			continue
		}
		if got != tt.want {
			t.Errorf("ParsePitch(%q) = %d, want %d", tt.in, got, tt.want)
		}
		if tt.in != "60" && tt.in != "a4" && tt.in != "Db4" && tt.in != "Bb3" && PitchName(got) != tt.in {
			t.Errorf("PitchName(%d) = %q, want %q", got, PitchName(got), tt.in)
		}
	}
	if MIDINote(48) != 69 {
		t.Errorf("MIDINote(A4) = %d, want 69", MIDINote(48))
	}
}

const demoSource = `
# two channels sharing a subroutine
channel 0
  wave tri
  vol 200
  loop 3
    note C4 1   # repeated
  endloop
  call 2
  end

channel 1
  tempo 2
  transpose -12
  release 2 64
  note A4 4
  rest 2
  fade 0 16
  restart

sub 2
  attack 32
  note E4 2
  debug 7
  ret
`

func TestAssemble(t *testing.T) {
	song, err := Assemble(demoSource)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	if len(song.Channels) != 2 {
		t.Fatalf("got %d channels, want 2", len(song.Channels))
	}

	ch0 := []Command{
		SetWave{Wave: Triangle},
		SetVolume{Volume: 200},
		LoopBegin{Count: 3},
		Note{Pitch: 39, Duration: 1},
		LoopEnd{},
		Call{Index: 2},
		End{},
	}
	if got := song.Channels[0].Commands(); !reflect.DeepEqual(got, ch0) {
		t.Errorf("channel 0:\n got %#v\nwant %#v", got, ch0)
	}
	if song.Subroutines[2].Len() != 4 {
		t.Errorf("sub 2 has %d commands, want 4", song.Subroutines[2].Len())
	}
	for i, s := range song.Subroutines {
		if i != 2 && s != nil {
			t.Errorf("sub %d should be unset", i)
		}
	}
}

func TestAssembleErrors(t *testing.T) {
	tests := []struct {
		src  string
		line int
	}{
		{"note A4", 1},
		{"vol 200\nbogus 1", 2},
		{"\n\nnote Z9 1", 3},
		{"vol 300", 1},
		{"sub 8", 1},
		{"wave saw", 1},
		{"transpose 200", 1},
		{"channel x", 1},
	}

	for _, tt := range tests {
		_, err := Assemble(tt.src)
		var se *SyntaxError
		if !errors.As(err, &se) {
			t.Errorf("Assemble(%q) = %v, want SyntaxError", tt.src, err)
			continue
		}
		if se.Line != tt.line {
			t.Errorf("Assemble(%q): error on line %d, want %d", tt.src, se.Line, tt.line)
		}
	}
}

func TestDisassembleReassembles(t *testing.T) {
	song, err := Assemble(demoSource)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}

	var src bytes.Buffer
	for i, s := range song.Channels {
		src.WriteString("channel " + string(rune('0'+i)) + "\n")
		for _, l := range Disassemble(s) {
			src.WriteString(l.String() + "\n")
		}
	}
	src.WriteString("sub 2\n")
	for _, l := range Disassemble(song.Subroutines[2]) {
		src.WriteString(l.String() + "\n")
	}

	again, err := Assemble(src.String())
	if err != nil {
		t.Fatalf("reassembling disassembly: %v\n%s", err, src.String())
	}
	for i := range song.Channels {
		a := Encode(song.Channels[i].Commands())
		b := Encode(again.Channels[i].Commands())
		if !bytes.Equal(a, b) {
			t.Errorf("channel %d: bytes differ after round trip: %v vs %v", i, a, b)
		}
	}
}

func TestReadFile(t *testing.T) {
	dir := t.TempDir()

	asm := filepath.Join(dir, "tune.sss")
	if err := os.WriteFile(asm, []byte(demoSource), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	song, err := ReadFile(asm)
	if err != nil {
		t.Fatalf("ReadFile(.sss): %v", err)
	}
	if song.Name != "tune" || len(song.Channels) != 2 {
		t.Errorf("got song %q with %d channels", song.Name, len(song.Channels))
	}

	var b Builder
	b.Note(48, 4).End()
	bin := filepath.Join(dir, "beep.bin")
	if err := os.WriteFile(bin, b.Bytes(), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	song, err = ReadFile(bin)
	if err != nil {
		t.Fatalf("ReadFile(.bin): %v", err)
	}
	if len(song.Channels) != 1 || song.Channels[0].Len() != 2 {
		t.Errorf("binary song decoded to %d channels", len(song.Channels))
	}

	if _, err := ReadFile(filepath.Join(dir, "song.wav")); err == nil {
		t.Error("missing file should fail")
	}
	other := filepath.Join(dir, "song.xyz")
	_ = os.WriteFile(other, nil, 0600)
	if _, err := ReadFile(other); !errors.Is(err, ErrFormat) {
		t.Errorf("unknown extension: %v, want ErrFormat", err)
	}
}

func TestDisassembleReassemblesRawBytes(t *testing.T) {
	data := []byte{byte(OpWave), 9, 0xF0, 48, 1, byte(OpEnd)}
	s := Decode(data)

	var src bytes.Buffer
	for _, l := range Disassemble(s) {
		src.WriteString(l.String() + "\n")
	}
	song, err := Assemble(src.String())
	if err != nil {
		t.Fatalf("reassembling %q: %v", src.String(), err)
	}
	if got := Encode(song.Channels[0].Commands()); !bytes.Equal(got, data) {
		t.Errorf("round trip = %v, want %v", got, data)
	}

	if _, err := Assemble("db 0x59"); err == nil {
		t.Error("db with an assigned opcode should be rejected")
	}
}
