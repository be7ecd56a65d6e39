package synth

import "github.com/icco/scoresynth/internal/score"

const (
	stackDepth = 4
	// maxStepsPerTick bounds command execution within one tick so a score
	// of control commands that never yields cannot stall the renderer.
	maxStepsPerTick = 256

	defaultVolume  = 192
	defaultAttack  = 255
	defaultRelease = 32
	defaultTempo   = 1
)

// callFrame restores the caller's position and loop depth on return.
type callFrame struct {
	score    *score.Score
	pos      int
	numLoops int
	dropped  int
}

type loopFrame struct {
	pos   int
	count int
}

// channel is the state of one voice: its interpreter position and the
// oscillator and envelope it drives. It is touched only by the engine.
type channel struct {
	root   *score.Score
	cur    *score.Score
	pos    int
	active bool

	phase uint32
	inc   uint32
	pitch uint8
	wave  score.Waveform

	volume    int
	env       envelope
	fadeOn    bool
	fadeTo    int
	fadeSpeed int
	fadeAcc   int

	tempo     int
	counter   int
	transpose int
	total     int

	calls    [stackDepth]callFrame
	numCalls int
	loops    [stackDepth]loopFrame
	numLoops int
	// dropped counts loops opened while the stack was full; their
	// endloops are skipped.
	dropped int
}

// reset attaches s and restores every default.
func (c *channel) reset(s *score.Score) {
	*c = channel{
		root:   s,
		cur:    s,
		active: s != nil,
		wave:   score.Square50,
		volume: defaultVolume,
		tempo:  defaultTempo,
		env: envelope{
			attack:  defaultAttack,
			release: defaultRelease,
		},
	}
}

// sounding reports whether the channel contributes to the mix.
func (c *channel) sounding() bool {
	return c.active && c.inc != 0
}

// tick advances the interpreter by one tick and then the envelope and fade.
func (c *channel) tick(e *Engine, idx int) {
	if !c.active {
		return
	}
	if c.counter > 0 {
		c.counter--
	}
	if c.counter == 0 {
		c.run(e, idx)
	}
	if !c.active {
		return
	}

	if !c.env.released && c.inc != 0 && c.counter <= c.env.lead {
		c.env.released = true
	}
	c.env.step(c.volume)
	c.stepFade()
}

func (c *channel) stepFade() {
	if !c.fadeOn || c.fadeSpeed == 0 {
		return
	}
	c.fadeAcc += c.fadeSpeed
	if c.fadeAcc < 256 {
		return
	}
	c.fadeAcc -= 256
	switch {
	case c.volume < c.fadeTo:
		c.volume++
	case c.volume > c.fadeTo:
		c.volume--
	default:
		c.fadeOn = false
	}
}

// run executes commands until one consumes ticks or the channel ends.
func (c *channel) run(e *Engine, idx int) {
	for range maxStepsPerTick {
		cmd, ok := c.cur.At(c.pos)
		if !ok {
			if !c.ret() {
				c.stop(e, idx)
				return
			}
			continue
		}
		c.pos++
		if c.exec(e, idx, cmd) {
			return
		}
		if !c.active {
			return
		}
	}
}

// exec applies one command and reports whether it consumed ticks.
func (c *channel) exec(e *Engine, idx int, cmd score.Command) bool {
	switch cmd := cmd.(type) {
	case score.Note:
		c.noteOn(e, cmd)
		e.emit(Event{Kind: EventNote, Channel: idx, Pitch: c.pitch, Ticks: c.counter})
		return c.counter > 0
	case score.Rest:
		c.inc = 0
		c.counter = int(cmd.Duration) * c.tempo
		c.total += c.counter
		e.emit(Event{Kind: EventRest, Channel: idx, Ticks: c.counter})
		return c.counter > 0
	case score.End:
		c.stop(e, idx)
	case score.SetWave:
		if cmd.Wave.Valid() {
			c.wave = cmd.Wave
		}
	case score.SetVolume:
		c.volume = int(cmd.Volume)
		c.fadeOn = false
	case score.SetFade:
		c.fadeTo = int(cmd.Target)
		c.fadeSpeed = int(cmd.Speed)
		c.fadeAcc = 0
		c.fadeOn = true
	case score.SetTempo:
		if cmd.Ticks > 0 {
			c.tempo = int(cmd.Ticks)
		}
	case score.LoopBegin:
		if c.numLoops >= stackDepth {
			c.dropped++
			break
		}
		count := int(cmd.Count)
		if count == 0 {
			count = 1
		}
		c.loops[c.numLoops] = loopFrame{pos: c.pos, count: count}
		c.numLoops++
	case score.LoopEnd:
		c.endLoop()
	case score.Call:
		c.call(e, cmd.Index)
	case score.Return:
		c.ret()
	case score.Restart:
		c.cur = c.root
		c.pos = 0
		c.numCalls = 0
		c.numLoops = 0
		c.dropped = 0
	case score.SetAttack:
		c.env.attack = int(cmd.Rate)
	case score.SetRelease:
		c.env.lead = int(cmd.Lead)
		c.env.release = int(cmd.Rate)
	case score.SetTranspose:
		c.transpose = int(cmd.Semitones)
	case score.Debug:
		e.emit(Event{Kind: EventDebug, Channel: idx, Value: cmd.Value})
	}
	return false
}

func (c *channel) noteOn(e *Engine, n score.Note) {
	p := int(n.Pitch)
	if p <= score.MaxPitch {
		p += c.transpose
	}
	p = min(max(p, 0), score.MaxPitch)

	c.pitch = uint8(p)
	c.inc, _ = e.freq.Increment(c.pitch)
	c.phase = 0
	c.env.start()
	c.counter = int(n.Duration) * c.tempo
	c.total += c.counter
}

func (c *channel) endLoop() {
	// Frames below the current call's base belong to the caller.
	baseLoops, baseDropped := 0, 0
	if c.numCalls > 0 {
		f := &c.calls[c.numCalls-1]
		baseLoops, baseDropped = f.numLoops, f.dropped
	}
	if c.dropped > baseDropped {
		c.dropped--
		return
	}
	if c.numLoops <= baseLoops {
		return
	}
	top := &c.loops[c.numLoops-1]
	if top.count > 1 {
		top.count--
		c.pos = top.pos
		return
	}
	c.numLoops--
}

func (c *channel) call(e *Engine, index uint8) {
	if int(index) >= score.NumSubroutines || c.numCalls >= stackDepth {
		return
	}
	sub := e.subs[index]
	if sub == nil {
		return
	}
	c.calls[c.numCalls] = callFrame{score: c.cur, pos: c.pos, numLoops: c.numLoops, dropped: c.dropped}
	c.numCalls++
	c.cur = sub
	c.pos = 0
}

// ret pops the call stack and reports whether there was a frame to pop.
func (c *channel) ret() bool {
	if c.numCalls == 0 {
		return false
	}
	c.numCalls--
	f := c.calls[c.numCalls]
	c.cur = f.score
	c.pos = f.pos
	c.numLoops = f.numLoops
	c.dropped = f.dropped
	return true
}

func (c *channel) stop(e *Engine, idx int) {
	c.active = false
	c.inc = 0
	c.env.level = 0
	e.emit(Event{Kind: EventEnd, Channel: idx})
}

// recompute refreshes the increment after a sample rate change.
func (c *channel) recompute(t *FreqTable) {
	if c.inc != 0 {
		c.inc, _ = t.Increment(c.pitch)
	}
}
