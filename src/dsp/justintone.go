package dsp

import (
	"encoding/json"
	"fmt"
)

// ----- JustInTone ----- //

// justInTone is a utility quantizer: knob 0 sweeps a 1 V/octave control
// voltage over 0-8 V, DAC 1 carries it snapped to 12-TET and DAC 2 carries
// the just-intonation version of the same scale degree. The audio outputs
// stay silent.
type justInTone struct {
	inVolts   float64
	eqVolts   float64
	justVolts float64
}

func newJustInTone() *justInTone {
	return &justInTone{}
}

func (p *justInTone) Name() string { return "just_in_tone" }

func (p *justInTone) Init(samplerate float64) {}

func (p *justInTone) HandleEvent(r *Rig, e midiEvent) {}

func (p *justInTone) Render(r *Rig, frames int) {
	p.inVolts = r.Knob[0] * 8
	p.eqVolts = quantizeEqualCV(p.inVolts)
	p.justVolts = quantizeJustCV(p.inVolts)
	r.WriteDAC(1, voltsToDAC(p.eqVolts))
	r.WriteDAC(2, voltsToDAC(p.justVolts))
	for c := range r.Audio {
		for i := 0; i < frames; i++ {
			r.Audio[c][i] = 0
		}
	}
}

func (p *justInTone) UpdateControls(r *Rig) {
	r.takeEncoder()
	r.SetLED(0, 0, p.eqVolts/8, 0)
	r.SetLED(1, 0, p.justVolts/8, 0)
}

func (p *justInTone) Draw(d *Display) {
	d.Clear()
	d.Text(0, 0, "JustInTone")
	d.Text(0, 14, fmt.Sprintf("In:   %.3f V", p.inVolts))
	d.Text(0, 26, fmt.Sprintf("Eq:   %.3f V", p.eqVolts))
	d.Text(0, 38, fmt.Sprintf("Just: %.3f V", p.justVolts))

	// bar showing the quantized voltage against the DAC span
	const y, h = 52, 8
	d.Line(0, y, DisplayWidth-1, y)
	d.Line(0, y+h, DisplayWidth-1, y+h)
	d.Line(0, y, 0, y+h)
	d.Line(DisplayWidth-1, y, DisplayWidth-1, y+h)
	w := int(clampf(p.eqVolts, 0, 5) / 5 * (DisplayWidth - 1))
	for row := y + 1; row < y+h; row++ {
		d.Line(0, row, w, row)
	}
}

func (p *justInTone) Set(key, value string) error {
	return fmt.Errorf("unknown key %q for %v", key, p.Name())
}

func (p *justInTone) ApplyJSON(data json.RawMessage) {}

func (p *justInTone) ToJSON() json.RawMessage {
	return toRawMessage(struct{}{})
}
