package cmd

import (
	"fmt"

	"github.com/icco/scoresynth/internal/smfexport"
	"github.com/spf13/cobra"
)

var exportMaxTicks int

var exportCmd = &cobra.Command{
	Use:   "export FILE OUT.mid",
	Short: "Convert a song into a Standard MIDI File",
	Long: `Run the score interpreter without audio and write every channel's notes
as a track of a Standard MIDI File. One MIDI tick equals one interpreter tick.

Example:
  scoresynth export song.lua song.mid
`,
	Args: cobra.ExactArgs(2),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().IntVar(&exportMaxTicks, "max-ticks", 0, "Stop after this many ticks (0 = ten minutes at 60 Hz)")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	song, err := loadSong(args[0])
	if err != nil {
		return err
	}
	opts := smfexport.Options{MaxTicks: exportMaxTicks}
	if err := smfexport.WriteFile(args[1], song, engineConfig(song), opts); err != nil {
		return err
	}
	fmt.Printf("Wrote %s (%d tracks)\n", args[1], len(song.Channels)+1)
	return nil
}
