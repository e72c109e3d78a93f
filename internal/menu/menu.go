// Package menu is the interactive terminal menu: an effect list with
// playback and brightness controls and a live preview of the strip.
package menu

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"libdb.so/stripglow/internal/effects"
	"libdb.so/stripglow/internal/led"
)

// Player is what the menu controls.
type Player interface {
	// Effects lists the effects that can be played.
	Effects() []effects.Entry
	// Play starts the named effect, stopping the current one first.
	Play(name string) error
	// Stop stops the current effect.
	Stop()
	// Playing returns the name of the current effect, or "" if none is
	// running.
	Playing() string
	Brightness() uint8
	SetBrightness(uint8)
	// Frame returns the last flushed frame.
	Frame() led.LEDs
}

const (
	refreshInterval = 100 * time.Millisecond
	brightnessStep  = 16
	maxPreview      = 120
)

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065")).
			Bold(true)

	playingStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFA500")).
			Bold(true)

	mutedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888"))

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#A40000")).
			Bold(true)
)

type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// Model is the bubbletea model of the menu.
type Model struct {
	player  Player
	entries []effects.Entry
	cursor  int
	playing string
	frame   led.LEDs
	err     error
}

// New creates the menu model.
func New(p Player) Model {
	return Model{
		player:  p,
		entries: p.Effects(),
		playing: p.Playing(),
		frame:   p.Frame(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tick()
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.playing = m.player.Playing()
		m.frame = m.player.Frame()
		return m, tick()

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit

		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}

		case "down", "j":
			if m.cursor < len(m.entries)-1 {
				m.cursor++
			}

		case "enter", " ":
			if len(m.entries) == 0 {
				break
			}
			name := m.entries[m.cursor].Name
			m.err = m.player.Play(name)
			m.playing = m.player.Playing()

		case "s":
			m.player.Stop()
			m.err = nil
			m.playing = m.player.Playing()

		case "+", "=":
			b := int(m.player.Brightness()) + brightnessStep
			m.player.SetBrightness(uint8(min(b, 0xFF)))

		case "-", "_":
			b := int(m.player.Brightness()) - brightnessStep
			m.player.SetBrightness(uint8(max(b, 0)))
		}
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("stripglow"))
	b.WriteString("\n\n")

	for i, e := range m.entries {
		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		name := e.Name
		if e.Audio {
			name += " ♪"
		}

		switch {
		case e.Name == m.playing:
			name = playingStyle.Render(name)
		case i == m.cursor:
			name = selectedStyle.Render(name)
		}

		fmt.Fprintf(&b, "%s%s  %s\n", cursor, name, mutedStyle.Render(e.Description))
	}

	b.WriteString("\n")

	playing := m.playing
	if playing == "" {
		playing = "nothing"
	}
	fmt.Fprintf(&b, "playing: %s  brightness: %d\n", playing, m.player.Brightness())
	b.WriteString(Render(m.frame, maxPreview))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()))
		b.WriteString("\n")
	}

	b.WriteString(mutedStyle.Render("↑/↓ select • enter play • s stop • +/- brightness • q quit"))
	b.WriteString("\n")

	return b.String()
}

// Render draws frame as a row of colored blocks, at most width wide. Longer
// frames are sampled evenly.
func Render(frame led.LEDs, width int) string {
	if len(frame) == 0 || width <= 0 {
		return ""
	}

	n := min(len(frame), width)

	var b strings.Builder
	for i := range n {
		c := frame[i*len(frame)/n]
		b.WriteString(lipgloss.NewStyle().Foreground(terminalColor(c)).Render("█"))
	}
	return b.String()
}

// terminalColor approximates c on a terminal by mixing the white channel into
// red, green and blue.
func terminalColor(c led.Color) lipgloss.Color {
	r, g, bl, w := c.Channels()
	mix := func(v uint8) int { return min(int(v)+int(w), 0xFF) }
	return lipgloss.Color(led.RGB(mix(r), mix(g), mix(bl)).String())
}

// Run runs the menu until the user quits or ctx is done.
func Run(ctx context.Context, p Player) error {
	_, err := tea.NewProgram(New(p), tea.WithContext(ctx)).Run()
	if err != nil && (ctx.Err() != nil || errors.Is(err, tea.ErrProgramKilled)) {
		return nil
	}
	return err
}
