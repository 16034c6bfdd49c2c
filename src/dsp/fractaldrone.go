package dsp

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strconv"
)

// ----- FractalDrone ----- //

const (
	droneMinZoom     = 0.125 // 3 octaves below
	droneMaxZoom     = 32    // 5 octaves above
	droneVoiceOffset = 0.4
	droneBaseFreq    = 55 // A1
)

type fractalDroneJSON struct {
	Zoom float64 `json:"zoom"`
	Slew float64 `json:"slew"`
	Base float64 `json:"base"`
}

// fractalDrone is the note-free companion to fractalZoom: a loop timer wraps
// at a knob-set length and two sine voices read fBm along the zoomed loop,
// the right voice at a small domain offset with its own roughness. Pitches
// snap to the just-intonation major scale over the 55 Hz base and slew
// between evaluations. It runs continuously; MIDI is ignored and the gate
// stays low.
//
// Knobs: 0 loop length [0.5,3] s, 1 eval rate [1,15] Hz.
// Encoder: slew time [0,2] s in 0.006 s steps. Buttons: zoom in/out.
type fractalDrone struct {
	sr float64

	base    float64
	zoom    float64
	slewSec float64
	fbmL    fbmParams
	fbmR    fbmParams

	loopLen   float64
	evalRate  float64
	loopT     float64
	evalTimer float64
	slews     [2]slewLimiter
	oscs      [2]oscillator
}

func newFractalDrone() *fractalDrone {
	return &fractalDrone{
		base:    droneBaseFreq,
		zoom:    1,
		slewSec: 0.02,
		fbmL:    fbmParams{octaves: 7, lacunarity: 4.3, gain: 0.5},
		fbmR:    fbmParams{octaves: 7, lacunarity: 2, gain: 0.7},
	}
}

func (d *fractalDrone) Name() string { return "fractal_drone" }

func (d *fractalDrone) Init(samplerate float64) {
	d.sr = samplerate
	for i := range d.slews {
		d.slews[i].init(samplerate)
		d.slews[i].setValue(440)
		d.oscs[i].init(samplerate)
		d.oscs[i].setWaveform(waveSin)
		d.oscs[i].setAmp(0.5)
	}
}

// the drone has no voice; note events pass through untouched
func (d *fractalDrone) HandleEvent(r *Rig, e midiEvent) {}

func (d *fractalDrone) Render(r *Rig, frames int) {
	d.loopLen = 0.5 + r.Knob[0]*2.5
	d.evalRate = 1 + r.Knob[1]*14
	interval := 1 / d.evalRate
	for i := range d.slews {
		d.slews[i].setRiseFall(d.slewSec)
	}

	for i := 0; i < frames; i++ {
		d.loopT += secPerSample
		if d.loopT > d.loopLen {
			d.loopT -= d.loopLen
		}
		d.evalTimer += secPerSample
		if d.evalTimer < 0 {
			d.evalTimer = 0
		}
		if d.evalTimer >= interval {
			d.evalTimer = 0
			domL := d.loopT * d.zoom
			domR := domL + droneVoiceOffset
			d.slews[0].setDest(justMajorFreq(fbm1D(domL, d.fbmL), d.base))
			d.slews[1].setDest(justMajorFreq(fbm1D(domR, d.fbmR), d.base))
		}
		for v := range d.oscs {
			d.oscs[v].setFreq(d.slews[v].process())
			s := d.oscs[v].process()
			r.Audio[v][i] = s
			r.Audio[v+2][i] = s
		}
	}
}

func (d *fractalDrone) UpdateControls(r *Rig) {
	inc, _ := r.takeEncoder()
	if inc != 0 {
		d.slewSec = clampf(d.slewSec+0.006*float64(inc), 0, 2)
	}
	if r.Button[0] {
		d.zoom = clampf(d.zoom+0.01, droneMinZoom, droneMaxZoom)
	}
	if r.Button[1] {
		d.zoom = clampf(d.zoom-0.01, droneMinZoom, droneMaxZoom)
	}

	lo, hi := math.Log2(droneMinZoom), math.Log2(droneMaxZoom)
	r.SetLED(0, (math.Log2(d.zoom)-lo)/(hi-lo), 0, 0)
	evalRate := 1 + r.Knob[1]*14
	r.SetLED(1, 0, (evalRate-1)/29, 0)
}

func (d *fractalDrone) Draw(disp *Display) {
	disp.Clear()
	disp.Text(0, 0, "FractalDrone")
	disp.Text(0, 14, fmt.Sprintf("Loop %.2fs  Eval %.1fHz", d.loopLen, d.evalRate))
	disp.Text(0, 26, fmt.Sprintf("Slew %.3fs", d.slewSec))
	disp.Text(0, 38, fmt.Sprintf("Zoom %.2f", d.zoom))
}

func (d *fractalDrone) Set(key, value string) error {
	switch key {
	case "zoom":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		d.zoom = clampf(v, droneMinZoom, droneMaxZoom)
	case "slew":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		d.slewSec = clampf(v, 0, 2)
	case "base":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		if v <= 0 {
			return fmt.Errorf("base out of range: %v", v)
		}
		d.base = v
	default:
		return fmt.Errorf("unknown key %q for %v", key, d.Name())
	}
	return nil
}

func (d *fractalDrone) ApplyJSON(data json.RawMessage) {
	var j fractalDroneJSON
	if err := json.Unmarshal(data, &j); err != nil {
		log.Println("failed to apply JSON to fractalDrone", err)
		return
	}
	if j.Zoom != 0 {
		d.zoom = clampf(j.Zoom, droneMinZoom, droneMaxZoom)
	}
	d.slewSec = clampf(j.Slew, 0, 2)
	if j.Base > 0 {
		d.base = j.Base
	}
}

func (d *fractalDrone) ToJSON() json.RawMessage {
	return toRawMessage(fractalDroneJSON{Zoom: d.zoom, Slew: d.slewSec, Base: d.base})
}
