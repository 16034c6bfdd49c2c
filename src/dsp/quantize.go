package dsp

import "math"

// ----- Quantizer ----- //

// Root numbering: 0 means "none" (unquantized), 1..12 are C..B as semitones
// above MIDI note 48 (C3).
const rootBaseNote = 48

var rootNames = [13]string{
	"None", "C", "C#", "D", "D#", "E", "F",
	"F#", "G", "G#", "A", "A#", "B",
}

// majorOffsets are the semitone offsets of the 12-TET major scale, with the
// octave repeated so a snap below can always land on an entry.
var majorOffsets = [8]int{0, 2, 4, 5, 7, 9, 11, 12}

// justMajor7 is one octave of the just-intonation major scale.
var justMajor7 = [7]float64{
	1,           // root
	9.0 / 8.0,   // major second
	5.0 / 4.0,   // major third
	4.0 / 3.0,   // perfect fourth
	3.0 / 2.0,   // perfect fifth
	5.0 / 3.0,   // major sixth
	15.0 / 8.0,  // major seventh
}

// justRatios12 maps each of the twelve semitones to a just ratio.
var justRatios12 = [12]float64{
	1,            // unison
	16.0 / 15.0,  // minor second
	9.0 / 8.0,    // major second
	6.0 / 5.0,    // minor third
	5.0 / 4.0,    // major third
	4.0 / 3.0,    // perfect fourth
	45.0 / 32.0,  // tritone
	3.0 / 2.0,    // perfect fifth
	8.0 / 5.0,    // minor sixth
	5.0 / 3.0,    // major sixth
	9.0 / 5.0,    // minor seventh
	15.0 / 8.0,   // major seventh
}

func midiToFreq(note int) float64 {
	return 440 * math.Pow(2, float64(note-69)/12)
}

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// freeFreq maps an unquantized control value in [-2, 2] linearly onto
// [50, 2000] Hz.
func freeFreq(v float64) float64 {
	v = clampf(v, -2, 2)
	return 50 + (v+2)*(1950.0/4.0)
}

// quantizeEqualCV snaps a 1 V/octave value to the nearest 12-TET semitone,
// carrying into the next octave when rounding lands on semitone 12.
func quantizeEqualCV(volts float64) float64 {
	octave := math.Floor(volts)
	frac := volts - octave
	semitone := int(math.Round(frac * 12))
	if semitone >= 12 {
		semitone = 0
		octave++
	}
	return octave + float64(semitone)/12
}

// quantizeJustCV snaps to the nearest semitone like quantizeEqualCV, then
// replaces the fractional part with the just ratio of that scale degree
// expressed in volts (log2 of the ratio).
func quantizeJustCV(volts float64) float64 {
	octave := math.Floor(volts)
	frac := volts - octave
	semitone := int(math.Round(frac * 12))
	if semitone >= 12 {
		semitone = 0
		octave++
	}
	return octave + math.Log2(justRatios12[semitone])
}

// equal12Freq converts fractional octaves above rootHz into a frequency on
// the nearest equal-tempered semitone.
func equal12Freq(value, rootHz float64) float64 {
	return rootHz * math.Pow(2, quantizeEqualCV(value))
}

// justMajorFreq maps a control value in [-2, 2] onto a four-octave
// just-major scale above base: the range is shifted to [0, 4], scaled to the
// 28 scale steps, floored and clamped.
func justMajorFreq(v, base float64) float64 {
	v = clampf(v, -2, 2)
	step := int(math.Floor((v + 2) * (28.0 / 4.0)))
	if step < 0 {
		step = 0
	}
	if step > 27 {
		step = 27
	}
	ratio := justMajor7[step%7] * math.Pow(2, float64(step/7))
	return base * ratio
}

// quantizer holds the stepped-random configuration shared by the Randos
// patch: a root, an octave range and the just/equal choice. It is stateless
// with respect to the values it maps; all randomness comes from the caller's
// generator.
type quantizer struct {
	rootIndex int     // 0 = none, 1..12 = C..B
	octRange  float64 // >= 0.5
	just      bool
}

func (q *quantizer) rootFreq() float64 {
	if q.rootIndex == 0 {
		return 0
	}
	return midiToFreq(rootBaseNote + q.rootIndex - 1)
}

// randomFreq draws the next stepped pitch. With no root the draw is uniform
// over the free range. With a root it either picks from the just-major scale
// with a random octave, or picks a random semitone span and snaps it down to
// the 12-TET major scale.
func (q *quantizer) randomFreq(rng *lcg) float64 {
	if q.rootIndex == 0 {
		return 50 + 1950*rng.rand01()
	}
	base := q.rootFreq()
	if q.just {
		return q.justRandomFreq(rng, base)
	}

	pick := int(rng.rand01() * 12 * q.octRange)
	fullOct := pick / 12
	leftover := pick % 12

	chosen := 0
	for _, off := range majorOffsets {
		if off > leftover {
			break
		}
		chosen = off
	}
	note := rootBaseNote + (q.rootIndex - 1) + fullOct*12 + chosen
	if note < 0 {
		note = 0
	}
	if note > 127 {
		note = 127
	}
	return midiToFreq(note)
}

// justRandomFreq picks one of the seven just ratios (or the octave) and an
// integer octave up to the configured range.
func (q *quantizer) justRandomFreq(rng *lcg, base float64) float64 {
	idx := int(rng.rand01() * 8)
	if idx > 7 {
		idx = 7
	}
	maxOct := int(q.octRange)
	oct := int(rng.rand01() * float64(maxOct+1))
	if oct > maxOct {
		oct = maxOct
	}
	ratio := 2.0 // index 7 is the octave above the seven scale degrees
	if idx < 7 {
		ratio = justMajor7[idx]
	}
	return base * ratio * math.Pow(2, float64(oct))
}
