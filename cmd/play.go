package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/icco/scoresynth/internal/audio"
	"github.com/icco/scoresynth/internal/synth"
	"github.com/icco/scoresynth/internal/tui"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	midiOutName string
	unsigned8   bool
	plain       bool
)

var playCmd = &cobra.Command{
	Use:   "play FILE",
	Short: "Play a song through the audio device",
	Long: `Play a song through the default audio device.

When stdout is a terminal an interactive player is shown (space pauses, q quits);
otherwise playback runs until the song ends or the process is interrupted.

Example:
  scoresynth play song.sss --midi-out "IAC Driver Bus 1"
`,
	Args: cobra.ExactArgs(1),
	RunE: runPlay,
}

func init() {
	playCmd.Flags().StringVarP(&midiOutName, "midi-out", "m", "", "Mirror notes to the named MIDI output port")
	playCmd.Flags().BoolVar(&unsigned8, "u8", false, "Open the device in unsigned 8-bit mode")
	playCmd.Flags().BoolVar(&plain, "plain", false, "Disable the interactive player")
	rootCmd.AddCommand(playCmd)
}

func runPlay(cmd *cobra.Command, args []string) error {
	song, err := loadSong(args[0])
	if err != nil {
		return err
	}
	eng, err := newEngine(song)
	if err != nil {
		return err
	}

	acfg := audio.Config{
		SampleRate: sampleRate,
		Capacity:   bufferFrames,
		Format:     audio.FormatS16,
		Latency:    audio.DefaultLatency,
		Poll:       audio.DefaultPoll,
	}
	if unsigned8 {
		acfg.Format = audio.FormatU8
	}
	if err := acfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	ring, err := audio.NewRing(acfg.Capacity)
	if err != nil {
		return err
	}
	sink, err := audio.NewOtoSink(ring, acfg)
	if err != nil {
		return err
	}

	st := audio.NewStreamer(eng, ring, sink)
	if midiOutName != "" {
		mirror, err := openMIDIMirror(midiOutName)
		if err != nil {
			return err
		}
		eng.SetListener(mirror.Handle)
		defer func() {
			// Detach under the producer lock so no event races Close.
			st.Do(func() { eng.SetListener(nil) })
			mirror.Close()
		}()
	}

	st.Prime()
	sink.Start()
	defer sink.Stop()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	go func() {
		_ = st.Run(ctx, acfg.Poll)
	}()

	if !plain && term.IsTerminal(int(os.Stdout.Fd())) {
		p := tea.NewProgram(tui.NewPlayer(song.Name, st, eng), tea.WithAltScreen())
		m, err := p.Run()
		if err != nil {
			return fmt.Errorf("error running player: %w", err)
		}
		if player, ok := m.(*tui.Player); ok && player.Done() {
			drain(ring, sampleRate)
		}
		return nil
	}

	fmt.Printf("Playing %s (%d channels, %d Hz)\n", song.Name, len(song.Channels), sampleRate)
	if waitDone(ctx, st, eng) {
		drain(ring, sampleRate)
	}
	stats := st.Stats()
	fmt.Printf("Stopped after %d ticks, %d underruns\n", eng.Ticks(), stats.Underruns)
	return nil
}

// waitDone blocks until the song ends or ctx is cancelled, and reports
// whether the song ended.
func waitDone(ctx context.Context, st *audio.Streamer, eng *synth.Engine) bool {
	t := time.NewTicker(100 * time.Millisecond)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return false
		case <-t.C:
			done := false
			st.Do(func() { done = eng.Done() })
			if done {
				return true
			}
		}
	}
}

// drain waits roughly long enough for the device to play what is queued.
func drain(ring *audio.Ring, rate int) {
	time.Sleep(time.Duration(ring.Capacity()) * time.Second / time.Duration(rate))
}
