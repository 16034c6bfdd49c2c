package dsp

import (
	"math"
	"testing"
)

func TestFreeFreqRange(t *testing.T) {
	if got := freeFreq(-2); got != 50 {
		t.Errorf("freeFreq(-2) = %v, want 50", got)
	}
	if got := freeFreq(2); got != 2000 {
		t.Errorf("freeFreq(2) = %v, want 2000", got)
	}
	if got := freeFreq(0); got != 1025 {
		t.Errorf("freeFreq(0) = %v, want 1025", got)
	}
	// out-of-range values clamp instead of extrapolating
	if freeFreq(-10) != 50 || freeFreq(10) != 2000 {
		t.Error("freeFreq does not clamp")
	}
}

func TestEqualCVSnap(t *testing.T) {
	if got := quantizeEqualCV(1.0); got != 1.0 {
		t.Errorf("quantizeEqualCV(1.0) = %v, want 1.0", got)
	}
	// 0.99 V rounds up to the next octave, not semitone 12
	if got := quantizeEqualCV(0.99); got != 1.0 {
		t.Errorf("quantizeEqualCV(0.99) = %v, want 1.0", got)
	}
	for v := -2.0; v < 8; v += 0.0173 {
		once := quantizeEqualCV(v)
		twice := quantizeEqualCV(once)
		if math.Abs(once-twice) > 1e-9 {
			t.Fatalf("not idempotent at %v: %v then %v", v, once, twice)
		}
	}
}

func TestEqual12RoundTrip(t *testing.T) {
	root := midiToFreq(rootBaseNote) // C3
	if math.Abs(root-130.8128) > 1e-4 {
		t.Fatalf("C3 = %v, want 130.8128", root)
	}
	for k := 0; k <= 24; k++ {
		v := float64(k) / 12
		want := root * math.Pow(2, v)
		got := equal12Freq(v, root)
		if math.Abs(got-want)/want > 1e-5 {
			t.Errorf("semitone %d: got %v, want %v", k, got, want)
		}
	}
	// 1 V above C3 is C4
	if got := equal12Freq(1.0, root); math.Abs(got-261.6256) > 0.01 {
		t.Errorf("1 V above C3 = %v, want 261.6256", got)
	}
}

func TestJustCV(t *testing.T) {
	if got := quantizeJustCV(0); got != 0 {
		t.Errorf("quantizeJustCV(0) = %v, want 0", got)
	}
	// the perfect fifth lands on log2(3/2)
	fifth := 7.0 / 12
	if got := quantizeJustCV(fifth); math.Abs(got-math.Log2(1.5)) > 1e-12 {
		t.Errorf("fifth = %v, want %v", got, math.Log2(1.5))
	}
	for v := 0.0; v < 8; v += 0.0173 {
		once := quantizeJustCV(v)
		twice := quantizeJustCV(once)
		// re-quantizing a just voltage snaps back to the same degree
		if math.Abs(once-twice) > 0.04 {
			t.Fatalf("drift at %v: %v then %v", v, once, twice)
		}
	}
}

func TestJustMajorFreq(t *testing.T) {
	if got := justMajorFreq(-2, 100); got != 100 {
		t.Errorf("bottom of range = %v, want 100", got)
	}
	want := 100 * (15.0 / 8.0) * 8 // top scale degree, three octaves up
	if got := justMajorFreq(2, 100); math.Abs(got-want) > 1e-9 {
		t.Errorf("top of range = %v, want %v", got, want)
	}
	if got := justMajorFreq(0, 100); got != 400 {
		// midpoint is step 14: the root two octaves up
		t.Errorf("midpoint = %v, want 400", got)
	}
}

func TestQuantizerFreeRange(t *testing.T) {
	q := quantizer{rootIndex: 0}
	rng := newLCG(7)
	for i := 0; i < 1000; i++ {
		f := q.randomFreq(&rng)
		if f < 50 || f >= 2000 {
			t.Fatalf("draw %d out of range: %v", i, f)
		}
	}
}

func TestQuantizerMajorSnap(t *testing.T) {
	q := quantizer{rootIndex: 1, octRange: 2} // root C
	rng := newLCG(99)
	inScale := map[int]bool{}
	for _, off := range majorOffsets {
		inScale[off%12] = true
	}
	for i := 0; i < 1000; i++ {
		f := q.randomFreq(&rng)
		// recover the semitone and check it sits on the major scale
		semis := 12 * math.Log2(f/midiToFreq(rootBaseNote))
		n := int(math.Round(semis))
		if math.Abs(semis-float64(n)) > 1e-6 {
			t.Fatalf("draw %d not on a semitone: %v Hz", i, f)
		}
		if !inScale[((n%12)+12)%12] {
			t.Fatalf("draw %d off the scale: %d semitones", i, n)
		}
	}
}

func TestQuantizerJustDraws(t *testing.T) {
	q := quantizer{rootIndex: 1, octRange: 2, just: true}
	base := q.rootFreq()
	valid := map[float64]bool{2: true}
	for _, r := range justMajor7 {
		valid[r] = true
	}
	rng := newLCG(5)
	for i := 0; i < 1000; i++ {
		f := q.randomFreq(&rng)
		// strip whole octaves, then the remainder must be a scale ratio
		ratio := f / base
		for ratio > 2.0000001 {
			ratio /= 2
		}
		ok := false
		for r := range valid {
			if math.Abs(ratio-r) < 1e-9 {
				ok = true
			}
		}
		if !ok {
			t.Fatalf("draw %d ratio %v not in the just scale", i, ratio)
		}
	}
}

func TestVoltsToDAC(t *testing.T) {
	if got := voltsToDAC(0); got != 0 {
		t.Errorf("0 V = %v, want 0", got)
	}
	if got := voltsToDAC(5); got != 4095 {
		t.Errorf("5 V = %v, want 4095", got)
	}
	if got := voltsToDAC(7.3); got != 4095 {
		t.Errorf("7.3 V = %v, want 4095 (clamped)", got)
	}
	if got := voltsToDAC(-1); got != 0 {
		t.Errorf("-1 V = %v, want 0 (clamped)", got)
	}
	if got := voltsToDAC(2.5); got != 2047 {
		t.Errorf("2.5 V = %v, want 2047", got)
	}
}
