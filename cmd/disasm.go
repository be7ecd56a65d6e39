package cmd

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/icco/scoresynth/internal/score"
	"github.com/spf13/cobra"
)

var (
	sectionStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	indexStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262")).
			Width(6).
			Align(lipgloss.Left)

	noteStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700"))

	controlStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00AAFF"))

	flowStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)
)

var disasmCmd = &cobra.Command{
	Use:   "disasm FILE",
	Short: "List the decoded commands of a song",
	Long: `Decode a song and print every channel and subroutine as assembler
mnemonics. The output can be fed back to the assembler.`,
	Args: cobra.ExactArgs(1),
	RunE: runDisasm,
}

func init() {
	rootCmd.AddCommand(disasmCmd)
}

func runDisasm(cmd *cobra.Command, args []string) error {
	song, err := loadSong(args[0])
	if err != nil {
		return err
	}
	fmt.Print(disassembleSong(song))
	return nil
}

func disassembleSong(song *score.Song) string {
	var b strings.Builder
	for i, s := range song.Channels {
		if s == nil {
			continue
		}
		writeSection(&b, fmt.Sprintf("channel %d", i), s)
	}
	for i, s := range song.Subroutines {
		if s == nil {
			continue
		}
		writeSection(&b, fmt.Sprintf("sub %d", i), s)
	}
	return b.String()
}

func writeSection(b *strings.Builder, header string, s *score.Score) {
	b.WriteString(sectionStyle.Render(header) + "\n")
	for _, l := range score.Disassemble(s) {
		style := controlStyle
		switch l.Mnemonic {
		case "note", "rest":
			style = noteStyle
		case "loop", "endloop", "call", "ret", "restart", "end":
			style = flowStyle
		}
		b.WriteString("  " + style.Render(fmt.Sprintf("%-18s", l.String())))
		b.WriteString(indexStyle.Render(fmt.Sprintf("# %d", l.Index)) + "\n")
	}
	b.WriteString("\n")
}
