package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"patchbox/src/dsp"
)

const (
	oledCols = dsp.DisplayWidth / 2
	oledRows = dsp.DisplayHeight / 4
)

var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	activeStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("84"))
	oledStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Foreground(lipgloss.Color("51"))
	gateOnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("226")).Bold(true)
)

// brailleDots maps a pixel inside a 2x4 cell to its braille dot bit.
var brailleDots = [4][2]rune{
	{0x01, 0x08},
	{0x02, 0x10},
	{0x04, 0x20},
	{0x40, 0x80},
}

// renderOLED packs the 128x64 framebuffer into braille cells and overlays the
// patch's text entries on top.
func renderOLED(f *dsp.PanelFrame) string {
	var grid [oledRows][oledCols]rune
	for ry := 0; ry < oledRows; ry++ {
		for cx := 0; cx < oledCols; cx++ {
			cell := rune(0x2800)
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if f.Pixels[ry*4+dy][cx*2+dx] {
						cell |= brailleDots[dy][dx]
					}
				}
			}
			grid[ry][cx] = cell
		}
	}
	for _, t := range f.Texts {
		row := t.Y / 4
		col := t.X / 2
		if row < 0 || row >= oledRows {
			continue
		}
		for i, r := range t.S {
			if col+i >= oledCols {
				break
			}
			grid[row][col+i] = r
		}
	}
	var b strings.Builder
	for ry := 0; ry < oledRows; ry++ {
		b.WriteString(string(grid[ry][:]))
		if ry < oledRows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func ledSwatch(led [3]float64) string {
	r := int(led[0]*5) * 51
	g := int(led[1]*5) * 51
	b := int(led[2]*5) * 51
	color := lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r, g, b))
	return lipgloss.NewStyle().Foreground(color).Render("●")
}

func knobBar(v float64, selected bool) string {
	const width = 10
	filled := int(v*width + 0.5)
	if filled > width {
		filled = width
	}
	bar := strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
	if selected {
		return activeStyle.Render(bar)
	}
	return dimStyle.Render(bar)
}

var sparkRunes = []rune(" ▁▂▃▄▅▆▇█")

// sparkline folds the magnitude bins into width columns on a log amplitude
// scale, keeping the lower half of the spectrum where the action is.
func sparkline(mags []float64, width int) string {
	if len(mags) == 0 {
		return dimStyle.Render(strings.Repeat("·", width))
	}
	bins := len(mags) / 2
	per := bins / width
	if per < 1 {
		per = 1
	}
	var b strings.Builder
	for c := 0; c < width; c++ {
		peak := 0.0
		for i := c * per; i < (c+1)*per && i < bins; i++ {
			if mags[i] > peak {
				peak = mags[i]
			}
		}
		// -60 dB floor
		db := 20 * math.Log10(peak+1e-12)
		norm := (db + 60) / 60
		if norm < 0 {
			norm = 0
		}
		if norm > 1 {
			norm = 1
		}
		b.WriteRune(sparkRunes[int(norm*float64(len(sparkRunes)-1))])
	}
	return activeStyle.Render(b.String())
}

func (m Model) View() string {
	if m.quitting {
		return "bye\n"
	}
	f := m.frame

	var header strings.Builder
	for _, name := range f.Patches {
		if name == f.Patch {
			header.WriteString(titleStyle.Render(" " + name + " "))
		} else {
			header.WriteString(dimStyle.Render(" " + name + " "))
		}
	}
	if m.dirty {
		header.WriteString(dimStyle.Render(" *"))
	}

	var knobs strings.Builder
	for i := 0; i < 4; i++ {
		knobs.WriteString(fmt.Sprintf("K%d %s %.2f   ", i+1, knobBar(f.Knob[i], i == m.knobSel), f.Knob[i]))
	}

	gate := dimStyle.Render("GATE ○")
	if f.Gate {
		gate = gateOnStyle.Render("GATE ●")
	}
	status := fmt.Sprintf("%s  %s %s   DAC1 %4d  DAC2 %4d   %s  %s",
		gate,
		ledSwatch(f.LED[0]), ledSwatch(f.LED[1]),
		f.DAC[0], f.DAC[1],
		buttonTag("B1", f.Button[0]), buttonTag("B2", f.Button[1]))

	help := dimStyle.Render(
		"tab patch  1-4 knob  arrows turn  [/] encoder  enter press  z/x buttons  n note  m extra  q quit")

	return strings.Join([]string{
		header.String(),
		oledStyle.Render(renderOLED(&f)),
		knobs.String(),
		status,
		sparkline(f.Spectrum, oledCols),
		help,
	}, "\n") + "\n"
}

func buttonTag(label string, held bool) string {
	if held {
		return activeStyle.Render("[" + label + "]")
	}
	return dimStyle.Render(" " + label + " ")
}
