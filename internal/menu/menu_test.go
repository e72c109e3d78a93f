package menu

import (
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"libdb.so/stripglow/internal/effects"
	"libdb.so/stripglow/internal/led"
)

type fakePlayer struct {
	entries    []effects.Entry
	playing    string
	brightness uint8
	frame      led.LEDs
	playErr    error
}

func (p *fakePlayer) Effects() []effects.Entry { return p.entries }
func (p *fakePlayer) Playing() string          { return p.playing }
func (p *fakePlayer) Stop()                    { p.playing = "" }
func (p *fakePlayer) Brightness() uint8        { return p.brightness }
func (p *fakePlayer) SetBrightness(b uint8)    { p.brightness = b }
func (p *fakePlayer) Frame() led.LEDs          { return p.frame }

func (p *fakePlayer) Play(name string) error {
	if p.playErr != nil {
		return p.playErr
	}
	p.playing = name
	return nil
}

func newFakePlayer() *fakePlayer {
	return &fakePlayer{
		entries: []effects.Entry{
			{Name: "rainbow", Description: "colors"},
			{Name: "strobe", Description: "flashes"},
			{Name: "spectrum", Description: "audio", Audio: true},
		},
		brightness: 0xFF,
		frame:      led.LEDs{led.RGB(255, 0, 0), led.RGB(0, 255, 0)},
	}
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}

		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestMenuPlay(t *testing.T) {
	p := newFakePlayer()
	m := press(t, New(p), "down", "enter")

	if p.playing != "strobe" {
		t.Fatalf("playing %q, want strobe", p.playing)
	}
	if !strings.Contains(m.View(), "playing: strobe") {
		t.Errorf("view does not show the current effect:\n%s", m.View())
	}

	m = press(t, m, "s")
	if p.playing != "" {
		t.Error("stop did not stop the effect")
	}
	if !strings.Contains(m.View(), "playing: nothing") {
		t.Errorf("view still shows an effect after stopping:\n%s", m.View())
	}
}

func TestMenuCursorBounds(t *testing.T) {
	p := newFakePlayer()

	m := press(t, New(p), "up", "up")
	if m.cursor != 0 {
		t.Errorf("cursor = %d after moving up from the top", m.cursor)
	}

	m = press(t, m, "down", "down", "down", "down")
	if m.cursor != 2 {
		t.Errorf("cursor = %d after moving past the bottom", m.cursor)
	}

	m = press(t, m, "k", "j", "k")
	if m.cursor != 1 {
		t.Errorf("cursor = %d after vim keys", m.cursor)
	}
}

func TestMenuBrightness(t *testing.T) {
	p := newFakePlayer()
	m := press(t, New(p), "+")
	if p.brightness != 0xFF {
		t.Errorf("brightness = %d, want it clamped at 255", p.brightness)
	}

	press(t, m, "-", "-")
	if p.brightness != 0xFF-2*brightnessStep {
		t.Errorf("brightness = %d after two steps down", p.brightness)
	}

	p.brightness = 5
	press(t, m, "-")
	if p.brightness != 0 {
		t.Errorf("brightness = %d, want it clamped at 0", p.brightness)
	}
}

func TestMenuShowsPlayError(t *testing.T) {
	p := newFakePlayer()
	p.playErr = errors.New("no audio device")

	m := press(t, New(p), "enter")
	if !strings.Contains(m.View(), "no audio device") {
		t.Errorf("error not shown:\n%s", m.View())
	}
}

func TestMenuQuit(t *testing.T) {
	m := New(newFakePlayer())
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q did not return a command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("q did not quit")
	}
}

func TestMenuTickRefreshes(t *testing.T) {
	p := newFakePlayer()
	m := New(p)

	p.playing = "rainbow"
	p.frame = led.LEDs{led.RGB(0, 0, 255)}

	next, cmd := m.Update(tickMsg{})
	m = next.(Model)

	if cmd == nil {
		t.Error("tick did not schedule the next tick")
	}
	if m.playing != "rainbow" || len(m.frame) != 1 {
		t.Errorf("tick did not refresh the state: %q %v", m.playing, m.frame)
	}
}

func TestRender(t *testing.T) {
	if got := Render(nil, 10); got != "" {
		t.Errorf("empty frame rendered as %q", got)
	}

	frame := make(led.LEDs, 300)
	if n := strings.Count(Render(frame, 50), "█"); n != 50 {
		t.Errorf("rendered %d blocks, want 50", n)
	}
	if n := strings.Count(Render(frame[:7], 50), "█"); n != 7 {
		t.Errorf("rendered %d blocks, want 7", n)
	}
}

func TestTerminalColor(t *testing.T) {
	if c := terminalColor(led.RGBW(10, 20, 250, 100)); c != "#6e78ff" {
		t.Errorf("terminal color = %v", c)
	}
}
