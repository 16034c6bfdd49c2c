package dsp

import "math"

// ----- Bass Drum ----- //

// bassDrum is an analog-style kick: a sine carrier with an exponential pitch
// sweep, an exponential amplitude decay, and a self-FM term feeding the
// previous output back into the phase increment.
type bassDrum struct {
	sr     float64
	freq   float64 // resting frequency
	tone   float64 // 0..1, sweep height
	decay  float64 // 0..1
	selfFM float64 // 0..1

	phase    float64
	ampEnv   float64
	pitchEnv float64
	ampCoef  float64
	pitCoef  float64
	prev     float64
}

func (d *bassDrum) init(samplerate float64) {
	d.sr = samplerate
	d.freq = 50
	d.setTone(0.5)
	d.setDecay(0.5)
	d.selfFM = 0.25
}

func (d *bassDrum) setFreq(f float64) { d.freq = f }
func (d *bassDrum) setTone(t float64) { d.tone = clampf(t, 0, 1) }

func (d *bassDrum) setDecay(v float64) {
	d.decay = clampf(v, 0, 1)
	// amplitude settles over 0.05..0.6 s, the pitch sweep about 4x faster
	ampTau := 0.05 + 0.55*d.decay
	d.ampCoef = math.Exp(-1 / (ampTau * d.sr))
	d.pitCoef = math.Exp(-1 / (ampTau * 0.25 * d.sr))
}

func (d *bassDrum) setSelfFM(v float64) { d.selfFM = clampf(v, 0, 1) }

func (d *bassDrum) trig() {
	d.ampEnv = 1
	d.pitchEnv = 1
}

func (d *bassDrum) process(trig bool) float64 {
	if trig {
		d.trig()
	}
	if d.ampEnv < 1e-4 {
		d.prev = 0
		return 0
	}
	// sweep from up to 6x the resting frequency back down to it
	f := d.freq * (1 + d.pitchEnv*5*d.tone)
	f += d.selfFM * d.prev * d.freq * 2

	d.phase += f / d.sr
	_, d.phase = math.Modf(d.phase)

	out := math.Sin(2*math.Pi*d.phase) * d.ampEnv
	d.ampEnv *= d.ampCoef
	d.pitchEnv *= d.pitCoef
	d.prev = out
	return out
}
