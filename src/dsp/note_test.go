package dsp

import "testing"

func TestVoiceVelocityZeroIsNoteOff(t *testing.T) {
	var v voice
	v.noteOn(60, 0, 1, 0)
	if v.on {
		t.Error("velocity 0 on an idle voice should not start it")
	}
	v.noteOn(60, 100, 1, 0)
	v.noteOn(60, 0, 1, 0)
	if v.on {
		t.Error("velocity 0 should release the sounding note")
	}
}

func TestVoiceRetriggerReseeds(t *testing.T) {
	var v voice
	v.noteOn(60, 100, 1, 0)
	first := []float64{v.rng.rand01(), v.rng.rand01(), v.rng.rand01()}
	v.noteOn(60, 100, 1, 0)
	for i, w := range first {
		if got := v.rng.rand01(); got != w {
			t.Errorf("draw %d after retrigger: got %v, want %v", i, got, w)
		}
	}
	if v.phase != 0 {
		t.Errorf("retrigger should reset phase, got %v", v.phase)
	}
}

func TestVoiceNoteOffMatches(t *testing.T) {
	var v voice
	v.noteOn(60, 100, 1, 0)
	v.noteOff(61)
	if !v.on {
		t.Error("note-off for a different note should be ignored")
	}
	v.noteOff(60)
	if v.on {
		t.Error("matching note-off should release the voice")
	}
}

func TestVoiceDurationExpiry(t *testing.T) {
	var v voice
	v.duration = 0.01
	v.noteOn(60, 100, 1, 0)
	dt := 1.0 / 48000
	for i := 0; i < 479; i++ {
		v.advance(dt)
	}
	if !v.on {
		t.Fatal("voice expired early")
	}
	v.advance(dt)
	v.advance(dt)
	if v.on {
		t.Error("voice should expire after its duration")
	}

	// duration 0 holds until note-off
	v.duration = 0
	v.noteOn(60, 100, 1, 0)
	for i := 0; i < 48000; i++ {
		v.advance(dt)
	}
	if !v.on {
		t.Error("duration 0 voice should hold")
	}
}
