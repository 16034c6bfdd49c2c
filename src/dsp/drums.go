package dsp

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
)

// ----- Drums ----- //

type drumsJSON struct {
	Tempo float64 `json:"tempo"`
	Seed  uint32  `json:"seed"`
}

// drums plays a self-randomizing kick: a metro fires at the tempo, and every
// hit draws a fresh tone, decay and self-FM amount from the patch's own
// generator. A MIDI note-on sneaks an extra hit in.
//
// Buttons: tempo down/up. No knobs.
type drums struct {
	tempo float64

	tick    metro
	bd      bassDrum
	rng     lcg
	pending bool
}

func newDrums() *drums {
	return &drums{
		tempo: 2,
		rng:   newLCG(1),
	}
}

func (p *drums) Name() string { return "drums" }

func (p *drums) Init(samplerate float64) {
	p.tick.init(p.tempo, samplerate)
	p.bd.init(samplerate)
}

func (p *drums) HandleEvent(r *Rig, e midiEvent) {
	if _, ok := e.(noteOn); ok {
		p.pending = true
	}
}

func (p *drums) Render(r *Rig, frames int) {
	for i := 0; i < frames; i++ {
		trig := p.tick.process() || p.pending
		p.pending = false
		if trig {
			p.bd.setTone(0.7 * p.rng.rand01())
			p.bd.setDecay(p.rng.rand01())
			p.bd.setSelfFM(p.rng.rand01())
		}
		s := p.bd.process(trig)
		for c := range r.Audio {
			r.Audio[c][i] = s
		}
	}
}

func (p *drums) UpdateControls(r *Rig) {
	r.takeEncoder()
	if r.Button[0] {
		p.tempo = clampf(p.tempo-0.05, 0.5, 10)
	}
	if r.Button[1] {
		p.tempo = clampf(p.tempo+0.05, 0.5, 10)
	}
	p.tick.setFreq(p.tempo)
	r.SetLED(0, p.tempo/10, 0, 0)
	r.SetLED(1, p.bd.ampEnv, 0, 0)
}

func (p *drums) Draw(d *Display) {
	d.Clear()
	d.Text(0, 0, "Drums")
	d.Text(0, 14, fmt.Sprintf("Tempo: %.2f Hz", p.tempo))
	d.Text(0, 26, fmt.Sprintf("Tone:  %.2f", p.bd.tone))
	d.Text(0, 38, fmt.Sprintf("Decay: %.2f", p.bd.decay))
}

func (p *drums) Set(key, value string) error {
	switch key {
	case "tempo":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		p.tempo = clampf(v, 0.5, 10)
		p.tick.setFreq(p.tempo)
	case "seed":
		v, err := strconv.ParseUint(value, 10, 32)
		if err != nil {
			return err
		}
		p.rng = newLCG(uint32(v))
	default:
		return fmt.Errorf("unknown key %q for %v", key, p.Name())
	}
	return nil
}

func (p *drums) ApplyJSON(data json.RawMessage) {
	var j drumsJSON
	if err := json.Unmarshal(data, &j); err != nil {
		log.Println("failed to apply JSON to drums", err)
		return
	}
	if j.Tempo > 0 {
		p.tempo = clampf(j.Tempo, 0.5, 10)
		p.tick.setFreq(p.tempo)
	}
	p.rng = newLCG(j.Seed)
}

func (p *drums) ToJSON() json.RawMessage {
	return toRawMessage(drumsJSON{Tempo: p.tempo, Seed: p.rng.seed})
}
