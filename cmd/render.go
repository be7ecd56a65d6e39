package cmd

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/icco/scoresynth/internal/audio"
	"github.com/icco/scoresynth/internal/synth"
	"github.com/spf13/cobra"
)

var (
	rawOut     string
	maxSeconds int
)

var renderCmd = &cobra.Command{
	Use:   "render FILE",
	Short: "Render a song offline and report statistics",
	Long: `Render a song through the full streaming pipeline with a manually clocked
sink instead of the audio device, then print duration, peak and per-channel
statistics.

Use --raw to dump the rendered frames as signed 16-bit little-endian stereo PCM.`,
	Args: cobra.ExactArgs(1),
	RunE: runRender,
}

func init() {
	renderCmd.Flags().StringVarP(&rawOut, "raw", "o", "", "Write raw s16le stereo PCM to this file")
	renderCmd.Flags().IntVar(&maxSeconds, "max-seconds", 600, "Stop rendering after this many seconds")
	rootCmd.AddCommand(renderCmd)
}

// renderStats summarizes an offline render.
type renderStats struct {
	frames    int
	audible   int
	peak      int
	underruns uint64
}

func (r *renderStats) add(frames []audio.Frame) {
	for _, f := range frames {
		v := int(f.L)
		if v < 0 {
			v = -v
		}
		if v != 0 {
			r.audible++
		}
		r.peak = max(r.peak, v)
	}
	r.frames += len(frames)
}

func runRender(cmd *cobra.Command, args []string) error {
	song, err := loadSong(args[0])
	if err != nil {
		return err
	}
	eng, err := newEngine(song)
	if err != nil {
		return err
	}
	ring, err := audio.NewRing(bufferFrames)
	if err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	var w io.Writer = io.Discard
	var f *os.File
	if rawOut != "" {
		f, err = os.Create(rawOut)
		if err != nil {
			return fmt.Errorf("error creating %s: %w", rawOut, err)
		}
		defer f.Close()
		w = f
	}

	sink := audio.NewManualSink(ring, sampleRate)
	st := audio.NewStreamer(eng, ring, sink)
	stats, err := renderPCM(eng, st, ring, sink, w, maxSeconds*sampleRate)
	if err != nil {
		return err
	}
	if f != nil {
		if err := f.Close(); err != nil {
			return fmt.Errorf("error closing %s: %w", rawOut, err)
		}
	}

	fmt.Printf("Song:      %s\n", song.Name)
	fmt.Printf("Duration:  %.2fs (%d frames, %d ticks)\n",
		float64(stats.frames)/float64(sampleRate), stats.frames, eng.Ticks())
	fmt.Printf("Audible:   %d frames\n", stats.audible)
	fmt.Printf("Peak:      %d\n", stats.peak)
	fmt.Printf("Underruns: %d\n", stats.underruns)
	for i := range song.Channels {
		fmt.Printf("Ch %d:      %d ticks\n", i+1, eng.TotalDuration(i))
	}
	return nil
}

// renderPCM runs renderOffline through a buffered writer on w and flushes it.
func renderPCM(eng *synth.Engine, st *audio.Streamer, ring *audio.Ring, sink *audio.ManualSink, w io.Writer, limit int) (renderStats, error) {
	bw := bufio.NewWriter(w)
	stats, err := renderOffline(eng, st, ring, sink, bw, limit)
	if err != nil {
		return stats, err
	}
	if err := bw.Flush(); err != nil {
		return stats, fmt.Errorf("error writing PCM: %w", err)
	}
	return stats, nil
}

// renderOffline clocks sink one block at a time, letting st refill the ring
// before every block, until the song ends and the ring is empty or limit
// frames were produced. The silence used to prime the ring is not reported.
func renderOffline(eng *synth.Engine, st *audio.Streamer, ring *audio.Ring, sink *audio.ManualSink, w io.Writer, limit int) (renderStats, error) {
	var stats renderStats
	block := max(eng.SamplesPerTick(), 1)
	sink.Pull(st.Prime(), nil)

	buf := make([]audio.Frame, 0, block)
	pcm := make([]byte, 0, block*4)
	for stats.frames < limit {
		if !eng.Done() {
			st.Poll()
		}
		n := min(block, ring.Occupied(), limit-stats.frames)
		if n == 0 {
			break
		}
		buf = sink.Pull(n, buf[:0])
		stats.add(buf)
		if err := writePCM(w, pcm[:0], buf); err != nil {
			return stats, err
		}
	}
	stats.underruns = sink.Underruns()
	return stats, nil
}

func writePCM(w io.Writer, pcm []byte, frames []audio.Frame) error {
	for _, f := range frames {
		pcm = binary.LittleEndian.AppendUint16(pcm, uint16(f.L))
		pcm = binary.LittleEndian.AppendUint16(pcm, uint16(f.R))
	}
	if _, err := w.Write(pcm); err != nil {
		return fmt.Errorf("error writing PCM: %w", err)
	}
	return nil
}
