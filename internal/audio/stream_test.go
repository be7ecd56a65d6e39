package audio

import (
	"context"
	"errors"
	"testing"
	"time"
)

// rampRenderer emits 1, 2, 3, ... so tests can see exactly which samples
// reached the sink.
type rampRenderer struct {
	next int16
	rate int
}

func (r *rampRenderer) Render(out []int16) {
	for i := range out {
		r.next++
		out[i] = r.next
	}
}

func (r *rampRenderer) SetSampleRate(rate int) error {
	r.rate = rate
	return nil
}

type fixedSink struct {
	ManualSink
}

func (s *fixedSink) SetSampleRate(rate int) error { return ErrFixedRate }

func newPipeline(t *testing.T, capacity int) (*Ring, *ManualSink, *rampRenderer, *Streamer) {
	t.Helper()
	ring, err := NewRing(capacity)
	if err != nil {
		t.Fatalf("NewRing: %v", err)
	}
	sink := NewManualSink(ring, 22050)
	r := &rampRenderer{}
	return ring, sink, r, NewStreamer(r, ring, sink)
}

func TestPrimeFillsSilence(t *testing.T) {
	ring, sink, r, st := newPipeline(t, 32)
	if n := st.Prime(); n != 32 {
		t.Fatalf("Prime wrote %d frames, want 32", n)
	}
	if r.next != 0 {
		t.Fatal("Prime should not render")
	}
	for _, f := range sink.Pull(32, nil) {
		if f != (Frame{}) {
			t.Fatalf("primed frame %v is not silence", f)
		}
	}
	if ring.Occupied() != 0 || sink.Underruns() != 0 {
		t.Fatalf("occupied %d underruns %d", ring.Occupied(), sink.Underruns())
	}
}

func TestPollRendersDrainedFrames(t *testing.T) {
	ring, sink, _, st := newPipeline(t, 16)
	st.Prime()

	if n := st.Poll(); n != 0 {
		t.Fatalf("Poll on a full ring rendered %d", n)
	}

	var out []Frame
	for _, drain := range []int{5, 16, 1, 7} {
		out = sink.Pull(drain, out)
		if n := st.Poll(); n != drain {
			t.Fatalf("drained %d, Poll rendered %d", drain, n)
		}
		if ring.Occupied() != ring.Capacity() {
			t.Fatalf("ring not refilled: %d/%d", ring.Occupied(), ring.Capacity())
		}
	}

	// 16 frames of priming silence, then the ramp in order.
	out = sink.Pull(16, out)
	rendered := out[16:]
	for i, f := range rendered {
		if f.L != int16(i+1) || f.R != f.L {
			t.Fatalf("frame %d: got %v, want %d", i, f, i+1)
		}
	}
	if sink.Underruns() != 0 {
		t.Errorf("unexpected underruns: %d", sink.Underruns())
	}
	if st.Stats().Drained != 29 {
		t.Errorf("Drained = %d, want 29", st.Stats().Drained)
	}
}

func TestPollLargerThanChunk(t *testing.T) {
	_, sink, r, st := newPipeline(t, 4096)
	st.Prime()
	sink.Pull(4096, nil)
	if n := st.Poll(); n != 4096 {
		t.Fatalf("Poll rendered %d, want 4096", n)
	}
	if r.next != 4096 {
		t.Fatalf("renderer produced %d samples", r.next)
	}
}

func TestUnderrunHoldsLastFrame(t *testing.T) {
	ring, sink, _, st := newPipeline(t, 4)
	st.Prime()
	sink.Pull(4, nil)
	st.Poll()

	out := sink.Pull(7, nil)
	if sink.Underruns() != 3 {
		t.Fatalf("Underruns = %d, want 3", sink.Underruns())
	}
	for _, f := range out[4:] {
		if f != out[3] {
			t.Fatalf("underrun frame %v, want held %v", f, out[3])
		}
	}
	if ring.Occupied() != 0 {
		t.Fatalf("Occupied = %d after underrun", ring.Occupied())
	}

	// The producer catches up on the next poll.
	if n := st.Poll(); n != 4 {
		t.Fatalf("Poll after underrun rendered %d, want 4", n)
	}
}

func TestManualSinkBias(t *testing.T) {
	ring, _ := NewRing(2)
	sink := NewManualSink(ring, 8000)
	sink.SetBias(0x8000)
	ring.Push(Frame{})
	out := sink.Pull(1, nil)
	if uint16(out[0].L) != 0x8000 {
		t.Errorf("biased silence = %#04x, want 0x8000", uint16(out[0].L))
	}
}

func TestStreamerSetSampleRate(t *testing.T) {
	ring, _ := NewRing(8)
	sink := NewManualSink(ring, 22050)
	r := &rampRenderer{}
	st := NewStreamer(r, ring, sink)

	if err := st.SetSampleRate(44100); err != nil {
		t.Fatalf("SetSampleRate: %v", err)
	}
	if sink.Rate() != 44100 || r.rate != 44100 {
		t.Errorf("sink rate %d renderer rate %d, want 44100", sink.Rate(), r.rate)
	}

	fixed := &fixedSink{ManualSink{consumer: consumer{ring: ring}, rate: 22050}}
	r2 := &rampRenderer{}
	st2 := NewStreamer(r2, ring, fixed)
	if err := st2.SetSampleRate(8000); !errors.Is(err, ErrFixedRate) {
		t.Fatalf("SetSampleRate on fixed sink = %v, want ErrFixedRate", err)
	}
	if r2.rate != 0 {
		t.Error("renderer must not change when the sink refuses")
	}
}

func TestStreamerRunStopsOnCancel(t *testing.T) {
	_, sink, _, st := newPipeline(t, 64)
	st.Prime()
	ctx, cancel := context.WithCancel(context.Background())

	errc := make(chan error, 1)
	go func() { errc <- st.Run(ctx, time.Millisecond) }()

	var out []Frame
	deadline := time.Now().Add(2 * time.Second)
	for len(out) < 256 && time.Now().Before(deadline) {
		st.Do(func() { out = sink.Pull(16, out) })
		time.Sleep(time.Millisecond)
	}
	cancel()

	if err := <-errc; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v, want context.Canceled", err)
	}
	if st.Stats().Polls == 0 {
		t.Fatal("Run never polled")
	}
}

func TestConfigValidate(t *testing.T) {
	good := Config{SampleRate: 22050, Capacity: 1024, Format: FormatS16, Poll: DefaultPoll}
	if err := good.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	bad := good
	bad.Capacity = 1000
	if err := bad.Validate(); !errors.Is(err, ErrCapacity) {
		t.Errorf("capacity 1000: %v, want ErrCapacity", err)
	}
	bad = good
	bad.SampleRate = 0
	if err := bad.Validate(); err == nil {
		t.Error("zero sample rate should be rejected")
	}
	bad = good
	bad.Format = Format(7)
	if err := bad.Validate(); err == nil {
		t.Error("unknown format should be rejected")
	}
}
