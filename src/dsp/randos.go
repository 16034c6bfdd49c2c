package dsp

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strconv"
)

// ----- Randos ----- //

const (
	randosMinStepHz = 0.3333
	randosMaxStepHz = 30
)

// randos UI pages selected by the encoder press.
const (
	randosPageRoot = iota
	randosPageRange
	randosPageJust
	randosPageIdle
	randosPageCount
)

type randosJSON struct {
	Root     int     `json:"root"`
	OctRange float64 `json:"octRange"`
	Just     bool    `json:"just"`
}

// randos is a stepped random voltage source with audio. While a note is held
// it periodically draws a new pitch through the quantizer plus two random
// control voltages; all three pass through slew limiters. The pitch feeds a
// four-waveform oscillator bank, the voltages feed the two DAC channels.
//
// Knobs: 0 step rate, 1 level and CV1 depth, 2 CV2 depth, 3 slew time.
// Encoder: press cycles pages (root, range, just, idle); turning edits the
// page's value. The just toggle flips on clockwise turns only.
type randos struct {
	sr float64

	q    quantizer
	page int

	v        voice
	pitch    slewLimiter
	cv1      slewLimiter
	cv2      slewLimiter
	oscs     [4]oscillator
	cv1Volts float64
	cv2Volts float64
}

func newRandos() *randos {
	return &randos{
		q: quantizer{rootIndex: 0, octRange: 2},
	}
}

func (p *randos) Name() string { return "randos" }

func (p *randos) Init(samplerate float64) {
	p.sr = samplerate
	p.pitch.init(samplerate)
	p.pitch.setValue(220)
	p.cv1.init(samplerate)
	p.cv2.init(samplerate)
	waves := [4]waveform{waveSin, waveSquare, waveTri, waveSaw}
	for i := range p.oscs {
		p.oscs[i].init(samplerate)
		p.oscs[i].setWaveform(waves[i])
	}
}

func (p *randos) HandleEvent(r *Rig, e midiEvent) {
	switch ev := e.(type) {
	case noteOn:
		p.v.duration = 0
		p.v.noteOn(ev.note, ev.vel, 1, 0)
	case noteOff:
		p.v.noteOff(ev.note)
	}
	r.SetGate(p.v.on)
}

func (p *randos) Render(r *Rig, frames int) {
	ratio := randosMaxStepHz / randosMinStepHz
	stepFreq := randosMinStepHz * math.Pow(ratio, r.Knob[0])
	amp := r.Knob[1]
	slewT := r.Knob[3]
	p.pitch.setRiseFall(slewT)
	p.cv1.setRiseFall(slewT)
	p.cv2.setRiseFall(slewT)

	inc := stepFreq / p.sr
	for i := 0; i < frames; i++ {
		if !p.v.on {
			for c := range r.Audio {
				r.Audio[c][i] = 0
			}
			r.WriteDAC(1, 0)
			r.WriteDAC(2, 0)
			continue
		}
		// the voice phase doubles as the step accumulator; one wrap is one
		// draw of pitch, CV2 then CV1 in that order
		p.v.phase += inc
		if p.v.phase >= 1 {
			p.v.phase -= 1
			p.pitch.setDest(p.q.randomFreq(&p.v.rng))
			p.cv2.setDest(p.v.rng.rand01() * 5)
			p.cv1.setDest(p.v.rng.rand01() * 5)
		}
		freq := p.pitch.process()
		p.cv1Volts = p.cv1.process()
		p.cv2Volts = p.cv2.process()

		for o := range p.oscs {
			p.oscs[o].setFreq(freq)
			r.Audio[o][i] = p.oscs[o].process() * amp
		}
		r.WriteDAC(1, voltsToDAC(p.cv1Volts*r.Knob[1]))
		r.WriteDAC(2, voltsToDAC(p.cv2Volts*r.Knob[2]))
	}
}

func (p *randos) UpdateControls(r *Rig) {
	inc, pressed := r.takeEncoder()
	if pressed {
		p.page = (p.page + 1) % randosPageCount
	}
	if inc != 0 {
		switch p.page {
		case randosPageRoot:
			root := p.q.rootIndex + inc
			if root < 0 {
				root = 0
			}
			if root > 12 {
				root = 12
			}
			p.q.rootIndex = root
		case randosPageRange:
			p.q.octRange = clampf(p.q.octRange+0.5*float64(inc), 0.5, 6)
		case randosPageJust:
			if inc > 0 {
				p.q.just = !p.q.just
			}
		}
	}
	r.SetLED(0, 0, 0, 0)
	if p.v.on {
		r.SetLED(0, 0, 0, 1)
	}
	r.SetLED(1, p.cv1Volts/5, p.cv2Volts/5, 0)
}

func (p *randos) Draw(d *Display) {
	d.Clear()
	d.Text(0, 0, "Randos")
	d.Text(0, 14, fmt.Sprintf("Root: %s", rootNames[p.q.rootIndex]))
	d.Text(0, 26, fmt.Sprintf("Range: %.1f oct", p.q.octRange))
	just := "OFF"
	if p.q.just {
		just = "ON"
	}
	d.Text(0, 38, fmt.Sprintf("Just: %s", just))
	pages := [randosPageCount]string{"root", "range", "just", ""}
	d.Text(80, 52, fmt.Sprintf("[%s]", pages[p.page]))
}

func (p *randos) Set(key, value string) error {
	switch key {
	case "root":
		v, err := strconv.ParseInt(value, 10, 32)
		if err != nil {
			return err
		}
		if v < 0 || v > 12 {
			return fmt.Errorf("root out of range: %v", v)
		}
		p.q.rootIndex = int(v)
	case "octRange":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		p.q.octRange = clampf(v, 0.5, 6)
	case "just":
		v, err := strconv.ParseBool(value)
		if err != nil {
			return err
		}
		p.q.just = v
	default:
		return fmt.Errorf("unknown key %q for %v", key, p.Name())
	}
	return nil
}

func (p *randos) ApplyJSON(data json.RawMessage) {
	var j randosJSON
	if err := json.Unmarshal(data, &j); err != nil {
		log.Println("failed to apply JSON to randos", err)
		return
	}
	if j.Root >= 0 && j.Root <= 12 {
		p.q.rootIndex = j.Root
	}
	p.q.octRange = clampf(j.OctRange, 0.5, 6)
	p.q.just = j.Just
}

func (p *randos) ToJSON() json.RawMessage {
	return toRawMessage(randosJSON{
		Root:     p.q.rootIndex,
		OctRange: p.q.octRange,
		Just:     p.q.just,
	})
}
