package dsp

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"strconv"
)

// ----- FractalZoom ----- //

// fractalZoomJSON carries the patch parameters that live outside the knobs.
type fractalZoomJSON struct {
	EvalRate   float64 `json:"evalRate"`
	Octaves    int     `json:"octaves"`
	Lacunarity float64 `json:"lacunarity"`
	Gain       float64 `json:"gain"`
	Duration   float64 `json:"duration"`
}

// fractalZoom walks a fractal noise curve and plays it as pitch. Each note
// captures a zoom factor and a zoom point, then reads fBm along
// (phase + point) * zoom for a fixed duration; the pitch is re-evaluated at a
// decimated rate and slewed between evaluations.
//
// Knobs: 0 zoom (3^k), 1 zoom point (0..5), 2 slew time (0..1 s), 3 level.
// Encoder: evaluation rate in Hz; press resets the button zoom trim.
// Buttons: trim the zoom factor down/up.
type fractalZoom struct {
	sr float64

	evalRate   float64
	fbm        fbmParams
	duration   float64
	zoomTrim   float64
	zoomPrev   float64 // last captured or previewed zoom, for the LED

	v         voice
	pitchSlew slewLimiter
	oscs      [4]oscillator
	evalTimer float64
	evalNow   bool
}

func newFractalZoom() *fractalZoom {
	return &fractalZoom{
		evalRate: 15,
		fbm:      defaultFbmParams(),
		duration: 5,
		zoomTrim: 1,
		zoomPrev: 1,
	}
}

func (f *fractalZoom) Name() string { return "fractal_zoom" }

func (f *fractalZoom) Init(samplerate float64) {
	f.sr = samplerate
	f.pitchSlew.init(samplerate)
	f.pitchSlew.setValue(220)
	waves := [4]waveform{waveSin, waveSquare, waveTri, waveSaw}
	for i := range f.oscs {
		f.oscs[i].init(samplerate)
		f.oscs[i].setWaveform(waves[i])
	}
}

func (f *fractalZoom) HandleEvent(r *Rig, e midiEvent) {
	switch ev := e.(type) {
	case noteOn:
		zoom := math.Pow(3, r.Knob[0]) * f.zoomTrim
		point := r.Knob[1] * 5
		f.v.duration = f.duration
		f.v.noteOn(ev.note, ev.vel, zoom, point)
		if f.v.on {
			f.zoomPrev = zoom
			f.evalTimer = 0
			f.evalNow = true
		}
	case noteOff:
		f.v.noteOff(ev.note)
	}
	r.SetGate(f.v.on)
}

func (f *fractalZoom) Render(r *Rig, frames int) {
	f.pitchSlew.setRiseFall(r.Knob[2])
	amp := r.Knob[3]
	interval := 1 / f.evalRate

	for i := 0; i < frames; i++ {
		if !f.v.on {
			for c := range r.Audio {
				r.Audio[c][i] = 0
			}
			continue
		}
		f.evalTimer += secPerSample
		if f.evalTimer < 0 {
			f.evalTimer = 0
		}
		if f.evalNow || f.evalTimer >= interval {
			f.evalNow = false
			f.evalTimer = 0
			x := (f.v.phase + f.v.zoomPoint) * f.v.zoomFactor
			f.pitchSlew.setDest(freeFreq(fbm1D(x, f.fbm)))
		}
		freq := f.pitchSlew.process()
		mix := 0.0
		for o := range f.oscs {
			f.oscs[o].setFreq(freq)
			mix += f.oscs[o].process()
		}
		mix *= 0.25 * amp
		for c := range r.Audio {
			r.Audio[c][i] = mix
		}
		f.v.advance(secPerSample)
		if !f.v.on {
			r.SetGate(false)
		}
	}
}

func (f *fractalZoom) UpdateControls(r *Rig) {
	inc, pressed := r.takeEncoder()
	if inc != 0 {
		f.evalRate = clampf(f.evalRate+float64(inc), 1, 30)
	}
	if pressed {
		f.zoomTrim = 1
	}
	if r.Button[0] {
		f.zoomTrim = clampf(f.zoomTrim-0.05, 0.25, 8)
	}
	if r.Button[1] {
		f.zoomTrim = clampf(f.zoomTrim+0.05, 0.25, 8)
	}

	zoom := f.zoomPrev
	if !f.v.on {
		zoom = math.Pow(3, r.Knob[0]) * f.zoomTrim
	}
	lo, hi := math.Log2(0.25), math.Log2(24)
	r.SetLED(0, (math.Log2(zoom)-lo)/(hi-lo), 0, 0)
	r.SetLED(1, 0, (f.evalRate-1)/29, 0)
}

func (f *fractalZoom) Draw(d *Display) {
	d.Clear()
	d.Text(0, 0, "FractalZoom")
	d.Text(0, 10, fmt.Sprintf("Zoom %.2f  Eval %.0fHz", f.zoomPrev, f.evalRate))

	// preview of the noise curve the next note would walk
	zoom := f.zoomPrev
	point := f.v.zoomPoint
	const steps = 32
	prevX, prevY := 0, 0
	for i := 0; i < steps; i++ {
		t := f.duration * float64(i) / float64(steps-1)
		val := fbm1D((t+point)*zoom, f.fbm)
		norm := clampf((val+2)*0.25, 0, 1)
		x := i * (DisplayWidth - 1) / (steps - 1)
		y := 22 + int((1-norm)*40)
		if i > 0 {
			d.Line(prevX, prevY, x, y)
		}
		prevX, prevY = x, y
	}
}

func (f *fractalZoom) Set(key, value string) error {
	switch key {
	case "evalRate":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		f.evalRate = clampf(v, 1, 30)
	case "octaves":
		v, err := strconv.ParseInt(value, 10, 32)
		if err != nil {
			return err
		}
		if v < 1 || v > 10 {
			return fmt.Errorf("octaves out of range: %v", v)
		}
		f.fbm.octaves = int(v)
	case "lacunarity":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		f.fbm.lacunarity = v
	case "gain":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		f.fbm.gain = clampf(v, 0, 1)
	case "duration":
		v, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return err
		}
		if v < 0 {
			return fmt.Errorf("duration out of range: %v", v)
		}
		f.duration = v
	default:
		return fmt.Errorf("unknown key %q for %v", key, f.Name())
	}
	return nil
}

func (f *fractalZoom) ApplyJSON(data json.RawMessage) {
	var j fractalZoomJSON
	if err := json.Unmarshal(data, &j); err != nil {
		log.Println("failed to apply JSON to fractalZoom", err)
		return
	}
	f.evalRate = clampf(j.EvalRate, 1, 30)
	if j.Octaves >= 1 && j.Octaves <= 10 {
		f.fbm.octaves = j.Octaves
	}
	f.fbm.lacunarity = j.Lacunarity
	f.fbm.gain = clampf(j.Gain, 0, 1)
	if j.Duration >= 0 {
		f.duration = j.Duration
	}
}

func (f *fractalZoom) ToJSON() json.RawMessage {
	return toRawMessage(fractalZoomJSON{
		EvalRate:   f.evalRate,
		Octaves:    f.fbm.octaves,
		Lacunarity: f.fbm.lacunarity,
		Gain:       f.fbm.gain,
		Duration:   f.duration,
	})
}
