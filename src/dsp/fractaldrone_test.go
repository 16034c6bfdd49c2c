package dsp

import (
	"math"
	"testing"
)

func TestFractalDroneRunsWithoutNotes(t *testing.T) {
	d := newFractalDrone()
	d.Init(sampleRate)
	rig := newRig(samplesPerCycle)
	rig.SetKnob(0, 0.5)
	rig.SetKnob(1, 1)
	for b := 0; b < 10; b++ {
		d.Render(rig, samplesPerCycle)
	}
	nonzero := false
	for i := 0; i < samplesPerCycle; i++ {
		if rig.Audio[0][i] != 0 || rig.Audio[1][i] != 0 {
			nonzero = true
			break
		}
	}
	if !nonzero {
		t.Error("drone should sound with no note input")
	}
	if rig.Gate() {
		t.Error("drone never raises the gate")
	}
}

func TestFractalDronePitchOnJustScale(t *testing.T) {
	d := newFractalDrone()
	d.Init(sampleRate)
	rig := newRig(samplesPerCycle)
	rig.SetKnob(1, 1) // fastest evals

	valid := append([]float64{2}, justMajor7[:]...)
	for b := 0; b < 50; b++ {
		d.Render(rig, samplesPerCycle)
		for v := range d.slews {
			// strip whole octaves; what remains must be a scale ratio
			ratio := d.slews[v].dest / d.base
			for ratio > 2.0000001 {
				ratio /= 2
			}
			ok := false
			for _, want := range valid {
				if math.Abs(ratio-want) < 1e-9 {
					ok = true
				}
			}
			if !ok {
				t.Fatalf("block %d voice %d: ratio %v off the just scale", b, v, ratio)
			}
		}
	}
}

func TestFractalDroneLoopWraps(t *testing.T) {
	d := newFractalDrone()
	d.Init(sampleRate)
	rig := newRig(samplesPerCycle)
	// knob 0 at zero is the shortest loop, half a second
	for b := 0; b < 94; b++ {
		d.Render(rig, samplesPerCycle)
	}
	if d.loopLen != 0.5 {
		t.Errorf("loop length = %v, want 0.5", d.loopLen)
	}
	if d.loopT > d.loopLen {
		t.Errorf("loop timer %v escaped the loop length %v", d.loopT, d.loopLen)
	}
}

func TestFractalDroneControls(t *testing.T) {
	d := newFractalDrone()
	d.Init(sampleRate)
	rig := newRig(samplesPerCycle)

	rig.Turn(10)
	d.UpdateControls(rig)
	if math.Abs(d.slewSec-0.08) > 1e-9 {
		t.Errorf("slew after 10 clicks = %v, want 0.08", d.slewSec)
	}

	rig.SetButton(0, true)
	d.UpdateControls(rig)
	if math.Abs(d.zoom-1.01) > 1e-9 {
		t.Errorf("zoom after one in-tick = %v, want 1.01", d.zoom)
	}
	rig.SetButton(0, false)
	rig.SetButton(1, true)
	d.UpdateControls(rig)
	d.UpdateControls(rig)
	if math.Abs(d.zoom-0.99) > 1e-9 {
		t.Errorf("zoom after two out-ticks = %v, want 0.99", d.zoom)
	}
}
