// Package tui is the interactive player: pause/resume and quit controls
// over a running stream, with a text status line per channel.
package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/icco/scoresynth/internal/audio"
	"github.com/icco/scoresynth/internal/score"
	"github.com/icco/scoresynth/internal/synth"
)

// Styles
var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#FAFAFA")).
			Background(lipgloss.Color("#7D56F4")).
			Padding(0, 1)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#00FF00")).
			Bold(true)

	pausedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFD700")).
			Bold(true)

	idleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	helpStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#626262"))
)

const refreshInterval = 100 * time.Millisecond

// Controller is the subset of the pipeline the player drives.
type Controller interface {
	Do(fn func())
	Stats() audio.Stats
}

// tickMsg triggers a status refresh
type tickMsg time.Time

// Player is the bubbletea model.
type Player struct {
	name     string
	ctl      Controller
	eng      *synth.Engine
	status   []synth.ChannelStatus
	stats    audio.Stats
	paused   bool
	done     bool
	quitting bool
}

// NewPlayer returns a model controlling eng through ctl. Every engine
// access goes through ctl.Do.
func NewPlayer(name string, ctl Controller, eng *synth.Engine) *Player {
	return &Player{name: name, ctl: ctl, eng: eng}
}

func (p *Player) Init() tea.Cmd {
	p.refresh()
	return tick()
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func (p *Player) refresh() {
	p.ctl.Do(func() {
		p.status = p.eng.Status()
		p.paused = p.eng.Paused()
		p.done = p.eng.Done()
	})
	p.stats = p.ctl.Stats()
}

// Done reports whether the song finished while the player was running.
func (p *Player) Done() bool { return p.done }

func (p *Player) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		p.refresh()
		if p.done {
			p.quitting = true
			return p, tea.Quit
		}
		return p, tick()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "q", "esc":
			p.quitting = true
			return p, tea.Quit
		case " ", "p":
			p.ctl.Do(func() {
				p.eng.Pause(!p.eng.Paused())
				p.paused = p.eng.Paused()
			})
		}
	}
	return p, nil
}

func (p *Player) View() string {
	if p.quitting {
		return ""
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("scoresynth - "+p.name) + "\n\n")

	if p.paused {
		b.WriteString(pausedStyle.Render("Paused") + "\n\n")
	} else {
		b.WriteString(statusStyle.Render("Playing") + "\n\n")
	}

	for i, st := range p.status {
		line := fmt.Sprintf("Ch %d  ", i+1)
		switch {
		case !st.Active:
			b.WriteString(idleStyle.Render(line+"idle") + "\n")
			continue
		case st.Playing:
			line += fmt.Sprintf("%-4s %-4s", score.PitchName(st.Pitch), st.Wave)
		default:
			line += fmt.Sprintf("%-4s %-4s", "--", st.Wave)
		}
		line += fmt.Sprintf("  vol %3d  env %3d  ticks %d", st.Volume, st.Level, st.Total)
		b.WriteString(line + "\n")
	}

	b.WriteString(fmt.Sprintf("\nBuffer: %d/%d frames  Underruns: %d\n",
		p.stats.Occupied, p.stats.Capacity, p.stats.Underruns))
	b.WriteString("\n" + helpStyle.Render("space/p: pause • q: quit"))
	return b.String()
}
