package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/icco/scoresynth/internal/audio"
	"github.com/icco/scoresynth/internal/score"
	"github.com/icco/scoresynth/internal/scorelua"
	"github.com/icco/scoresynth/internal/synth"
	"github.com/spf13/cobra"
)

var (
	sampleRate   int
	tickRate     int
	numChannels  int
	bufferFrames int
)

var rootCmd = &cobra.Command{
	Use:   "scoresynth",
	Short: "A score-driven chip-style software synthesizer",
	Long: `scoresynth interprets compact tick-driven scores into square and triangle
oscillator voices and streams the mix to the audio device through a lock-free
ring buffer.

Songs are written as text assembly (.sss), Lua scripts (.lua) or raw score
bytes (.bin).`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().IntVar(&sampleRate, "sample-rate", synth.DefaultSampleRate, "Output sample rate in Hz")
	rootCmd.PersistentFlags().IntVar(&tickRate, "tick-rate", synth.DefaultTickRate, "Interpreter and envelope ticks per second")
	rootCmd.PersistentFlags().IntVar(&numChannels, "channels", synth.DefaultChannels, "Number of synth channels")
	rootCmd.PersistentFlags().IntVar(&bufferFrames, "buffer", audio.DefaultCapacity, "Ring buffer capacity in frames (power of two)")
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadSong picks the front end by file extension.
func loadSong(path string) (*score.Song, error) {
	if strings.EqualFold(filepath.Ext(path), ".lua") {
		return scorelua.ReadFile(path)
	}
	return score.ReadFile(path)
}

// engineConfig builds the synth settings from the flags, widening the
// channel count to whatever song needs.
func engineConfig(song *score.Song) synth.Config {
	return synth.Config{
		SampleRate: sampleRate,
		TickRate:   tickRate,
		Channels:   max(numChannels, len(song.Channels)),
	}
}

// newEngine validates the flags and loads song into a fresh engine.
func newEngine(song *score.Song) (*synth.Engine, error) {
	eng, err := synth.New(engineConfig(song))
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if err := eng.Load(song); err != nil {
		return nil, fmt.Errorf("error loading %s: %w", song.Name, err)
	}
	return eng, nil
}
