package cmd

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/icco/scoresynth/internal/audio"
	"github.com/icco/scoresynth/internal/score"
	"github.com/icco/scoresynth/internal/synth"
)

func newOfflinePipeline(t *testing.T, src string) (*synth.Engine, *audio.Streamer, *audio.Ring, *audio.ManualSink) {
	t.Helper()
	song, err := score.Assemble(src)
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	cfg := synth.DefaultConfig()
	cfg.Channels = len(song.Channels)
	eng, err := synth.New(cfg)
	if err != nil {
		t.Fatalf("synth.New: %v", err)
	}
	if err := eng.Load(song); err != nil {
		t.Fatalf("Load: %v", err)
	}
	ring, err := audio.NewRing(1024)
	if err != nil {
		t.Fatalf("NewRing: %v", err)
	}
	sink := audio.NewManualSink(ring, cfg.SampleRate)
	return eng, audio.NewStreamer(eng, ring, sink), ring, sink
}

func TestRenderOfflineSingleNote(t *testing.T) {
	eng, st, ring, sink := newOfflinePipeline(t, "note A4 4\nend\n")

	var pcm bytes.Buffer
	stats, err := renderOffline(eng, st, ring, sink, &pcm, 1<<20)
	if err != nil {
		t.Fatalf("renderOffline: %v", err)
	}

	spt := eng.SamplesPerTick()
	if stats.audible != 4*spt {
		t.Errorf("audible = %d frames, want %d", stats.audible, 4*spt)
	}
	if stats.peak == 0 {
		t.Error("peak should be non-zero")
	}
	if stats.underruns != 0 {
		t.Errorf("underruns = %d", stats.underruns)
	}
	if pcm.Len() != stats.frames*4 {
		t.Errorf("wrote %d PCM bytes for %d frames", pcm.Len(), stats.frames)
	}
	if !eng.Done() || ring.Occupied() != 0 {
		t.Error("render should stop once the song ended and the ring drained")
	}
}

func TestRenderOfflineLimit(t *testing.T) {
	eng, st, ring, sink := newOfflinePipeline(t, "note A4 10\nrestart\n")

	stats, err := renderOffline(eng, st, ring, sink, &bytes.Buffer{}, 5000)
	if err != nil {
		t.Fatalf("renderOffline: %v", err)
	}
	if stats.frames != 5000 {
		t.Errorf("frames = %d, want the 5000 frame limit", stats.frames)
	}
	if eng.Done() {
		t.Error("a restarting song never finishes")
	}
}

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) { return 0, errors.New("disk full") }

func TestRenderPCMReportsFlushError(t *testing.T) {
	eng, st, ring, sink := newOfflinePipeline(t, "note A4 4\nend\n")

	// 500 frames fit the write buffer, so the failure only surfaces on flush.
	_, err := renderPCM(eng, st, ring, sink, failingWriter{}, 500)
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("renderPCM = %v, want the write error", err)
	}

	eng, st, ring, sink = newOfflinePipeline(t, "note A4 4\nend\n")
	var pcm bytes.Buffer
	stats, err := renderPCM(eng, st, ring, sink, &pcm, 500)
	if err != nil {
		t.Fatalf("renderPCM: %v", err)
	}
	if pcm.Len() != stats.frames*4 {
		t.Errorf("flushed %d bytes for %d frames", pcm.Len(), stats.frames)
	}
}

func TestDisassembleSong(t *testing.T) {
	song, err := score.Assemble("note A4 4\nloop 2\nrest 1\nendloop\nend\nsub 3\nret\n")
	if err != nil {
		t.Fatalf("Assemble: %v", err)
	}
	out := disassembleSong(song)
	for _, want := range []string{"channel 0", "note A4 4", "loop 2", "endloop", "sub 3", "ret"} {
		if !strings.Contains(out, want) {
			t.Errorf("disassembly missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(out, "sub 0") {
		t.Errorf("unset subroutines should be skipped:\n%s", out)
	}
}
