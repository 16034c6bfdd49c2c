package dsp

import "math"

// ----- Oscillator ----- //

type waveform int

const (
	waveSin waveform = iota
	waveSquare
	waveTri
	waveSaw
)

// oscillator is a plain phase-accumulator oscillator. Phase is kept in
// [0, 1); the waveform switch mirrors the four shapes the hardware patches
// use.
type oscillator struct {
	wave  waveform
	sr    float64
	freq  float64
	amp   float64
	phase float64
}

func (o *oscillator) init(samplerate float64) {
	o.sr = samplerate
	o.freq = 440
	o.amp = 1
}

func (o *oscillator) setWaveform(w waveform) { o.wave = w }
func (o *oscillator) setFreq(f float64)      { o.freq = f }
func (o *oscillator) setAmp(a float64)       { o.amp = a }

func (o *oscillator) process() float64 {
	p := o.phase
	value := 0.0
	switch o.wave {
	case waveSin:
		value = math.Sin(2 * math.Pi * p)
	case waveSquare:
		if p < 0.5 {
			value = 1
		} else {
			value = -1
		}
	case waveTri:
		if p < 0.5 {
			value = p*4 - 1
		} else {
			value = p*(-4) + 3
		}
	case waveSaw:
		value = p*2 - 1
	}
	o.phase += o.freq / o.sr
	_, o.phase = math.Modf(o.phase)
	return value * o.amp
}

// ----- Metro ----- //

// metro emits a trigger every 1/freq seconds.
type metro struct {
	sr    float64
	freq  float64
	phase float64
}

func (m *metro) init(freq, samplerate float64) {
	m.sr = samplerate
	m.freq = freq
	m.phase = 0
}

func (m *metro) setFreq(f float64) { m.freq = f }

func (m *metro) process() bool {
	m.phase += m.freq / m.sr
	if m.phase >= 1 {
		m.phase -= 1
		return true
	}
	return false
}
