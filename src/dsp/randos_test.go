package dsp

import "testing"

func TestRandosDACTracksCV(t *testing.T) {
	p := newRandos()
	p.Init(sampleRate)
	rig := newRig(samplesPerCycle)
	rig.SetKnob(0, 1) // fastest steps
	rig.SetKnob(1, 1)
	rig.SetKnob(2, 0.5)
	p.HandleEvent(rig, noteOn{note: 60, vel: 100})
	for b := 0; b < 10; b++ {
		p.Render(rig, samplesPerCycle)
	}
	if got, want := rig.DAC(1), voltsToDAC(p.cv1Volts*1); got != want {
		t.Errorf("DAC1 = %v, want %v", got, want)
	}
	if got, want := rig.DAC(2), voltsToDAC(p.cv2Volts*0.5); got != want {
		t.Errorf("DAC2 = %v, want %v", got, want)
	}

	p.HandleEvent(rig, noteOff{note: 60})
	p.Render(rig, samplesPerCycle)
	if rig.DAC(1) != 0 || rig.DAC(2) != 0 {
		t.Errorf("released voice should zero the DACs, got %v %v", rig.DAC(1), rig.DAC(2))
	}
}
