package tui

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"patchbox/src/dsp"
)

const frameInterval = time.Second / 30

// tickMsg drives the foreground loop; every tick runs one engine UI frame.
type tickMsg time.Time

func tick() tea.Cmd {
	return tea.Tick(frameInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// Model is the terminal front panel: it forwards key presses to the engine as
// commands and renders the rig snapshot it gets back.
type Model struct {
	engine   *dsp.Engine
	frame    dsp.PanelFrame
	knobSel  int
	noteHeld bool
	dirty    bool
	quitting bool
}

func NewModel(engine *dsp.Engine) Model {
	return Model{engine: engine}
}

func (m Model) Init() tea.Cmd {
	return tick()
}

func (m Model) send(command ...string) {
	select {
	case m.engine.CommandCh <- command:
	default:
		// dropping is better than blocking the UI loop
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.quitting = true
			return m, tea.Quit

		case "tab":
			m.engine.NextPatch()

		case "1", "2", "3", "4":
			m.knobSel = int(msg.String()[0] - '1')

		case "up", "right":
			m.send("knob_delta", fmt.Sprint(m.knobSel), "0.02")
		case "down", "left":
			m.send("knob_delta", fmt.Sprint(m.knobSel), "-0.02")

		case "[":
			m.send("encoder", "-1")
		case "]":
			m.send("encoder", "1")
		case "enter":
			m.send("encoder_press")

		case "z":
			m.send("button", "0", fmt.Sprint(!m.frame.Button[0]))
		case "x":
			m.send("button", "1", fmt.Sprint(!m.frame.Button[1]))

		case "n":
			if m.noteHeld {
				m.send("note_off", "60")
				m.noteHeld = false
			} else {
				m.send("note_on", "60", "100")
				m.noteHeld = true
			}
		case "m":
			m.send("note_on", "72", "100")
		}

	case tickMsg:
		m.frame = m.engine.UIFrame()
		if m.engine.Changes.Has("data") {
			m.engine.Changes.Delete("data")
			m.dirty = true
		}
		return m, tick()
	}
	return m, nil
}
